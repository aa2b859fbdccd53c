package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/anseconv/internal/convert"
	"github.com/JonMunkholm/anseconv/internal/source"
)

type exportOptions struct {
	input      string
	output     string
	appendMode bool
}

func newExportCmd(a *app) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a model database to declaration text or a workbook",
		Long: `Read every table of a model database and export the rows whose table name
is a record type of the schema. Tables without a type are skipped.

The input is a SQLite model file or a postgres:// URL; without -i the
DATABASE_URL environment variable is used.

The output extension picks the format:
  .in    declaration text, one block per table
  .xlsx  a workbook with one sheet per schema group (the default)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Model database: a SQLite file or a postgres:// URL (default: DATABASE_URL)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file, .in or .xlsx (default: the model name with .xlsx)")
	cmd.Flags().BoolVarP(&opts.appendMode, "append", "a", false, "Append to a .in output file instead of overwriting it")

	return cmd
}

func (a *app) runExport(cmd *cobra.Command, opts exportOptions) error {
	target := opts.input
	if target == "" {
		target = a.cfg.Database.URL
	}
	if target == "" {
		return errors.New("no model database given; pass -i or set DATABASE_URL")
	}

	var ext string
	if opts.output != "" {
		var err error
		if ext, err = convert.CheckExtension(opts.output, convert.ExtText, convert.ExtWorkbook); err != nil {
			return err
		}
	}

	s, err := a.loadSchema()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Database.QueryTimeout)
	defer cancel()

	db, err := source.OpenDatabase(ctx, target, source.PoolOptions{
		MaxConns:        a.cfg.Database.MaxConns,
		MinConns:        a.cfg.Database.MinConns,
		MaxConnLifetime: a.cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: a.cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if opts.output == "" {
		opts.output = convert.DefaultOutput(db.Name(), convert.ExtWorkbook)
		ext = convert.ExtWorkbook
	}

	slog.Info("exporting model", "model", db.Name(), "output", opts.output)
	conv := convert.New(s, slog.Default())

	var stats convert.Stats
	switch ext {
	case convert.ExtText:
		out, err := convert.OpenOutput(opts.output, opts.appendMode)
		if err != nil {
			return err
		}
		defer out.Close()

		if stats, err = conv.DatabaseToText(ctx, db, out); err != nil {
			return err
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}

	case convert.ExtWorkbook:
		if opts.appendMode {
			slog.Warn("append applies to .in output only; writing a new workbook", "output", opts.output)
		}
		grid, st, err := conv.DatabaseToWorkbook(ctx, db)
		if err != nil {
			return err
		}
		stats = st
		if err := grid.SaveFile(opts.output); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Conversion completed! %d records from %d tables written to %s (%d tables skipped)\n",
		stats.Records, stats.Sources, opts.output, stats.Skipped)
	return nil
}
