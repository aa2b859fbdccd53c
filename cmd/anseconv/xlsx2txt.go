package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/anseconv/internal/convert"
	"github.com/JonMunkholm/anseconv/internal/source"
)

type xlsxOptions struct {
	input      string
	output     string
	worksheet  string
	appendMode bool
}

func newXlsx2TxtCmd(a *app) *cobra.Command {
	var opts xlsxOptions

	cmd := &cobra.Command{
		Use:   "xlsx2txt",
		Short: "Convert workbook input sheets into declaration text",
		Long: `Scan the selected worksheets of an .xlsx workbook for declaration rows and
write them to a .in text file with the schema's delimiters.

The first non-empty cell of a row decides what it is: the comment marker
starts a comment line, the keyword marker starts a decorative header that is
skipped, and any other text names the record type of a declaration.

Without -w every sheet whose name starts with "INPUT" (any case) is read.
To pick sheets, pass one string with the names separated by semicolons:
  -w "name1;name2;long name - 3, with many chars"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runXlsx2Txt(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Workbook to convert (.xlsx)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: the input name with .in)")
	cmd.Flags().StringVarP(&opts.worksheet, "worksheet", "w", "", "Worksheets to read: ALL or a semicolon list (default: ANSECONV_WORKSHEET)")
	cmd.Flags().BoolVarP(&opts.appendMode, "append", "a", false, "Append to the output file instead of overwriting it")
	cmd.MarkFlagRequired("input")

	return cmd
}

func (a *app) runXlsx2Txt(cmd *cobra.Command, opts xlsxOptions) error {
	if _, err := convert.CheckExtension(opts.input, convert.ExtWorkbook); err != nil {
		return err
	}
	if opts.output == "" {
		opts.output = convert.DefaultOutput(opts.input, convert.ExtText)
	}
	if opts.worksheet == "" {
		opts.worksheet = a.cfg.Convert.Worksheet
	}

	s, err := a.loadSchema()
	if err != nil {
		return err
	}

	wb, err := source.OpenWorkbook(opts.input)
	if err != nil {
		return err
	}
	defer wb.Close()

	out, err := convert.OpenOutput(opts.output, opts.appendMode)
	if err != nil {
		return err
	}
	defer out.Close()

	slog.Info("converting workbook",
		"input", opts.input,
		"output", opts.output,
		"worksheet", opts.worksheet,
		"append", opts.appendMode,
	)

	stats, err := convert.New(s, slog.Default()).WorkbookToText(cmd.Context(), wb, opts.worksheet, out)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Conversion completed! %d records from %d sheets written to %s\n",
		stats.Records, stats.Sources, opts.output)
	return nil
}
