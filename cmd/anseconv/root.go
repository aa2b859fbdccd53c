package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/anseconv/internal/config"
	"github.com/JonMunkholm/anseconv/internal/logging"
	"github.com/JonMunkholm/anseconv/internal/schema"
)

// app holds what every subcommand shares: the global flags, the loaded
// configuration and the open log file.
type app struct {
	schemaPath string
	logBasic   bool
	verbose    bool

	cfg     *config.Config
	logFile *os.File
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "anseconv",
		Short: "Schema-driven converter for ANSE model data",
		Long: `Convert engineering-model data into ANSE declaration text.

Commands:
  xlsx2txt  Convert the input sheets of a workbook into a .in text file.
  export    Export a model database to a .in text file or a .xlsx workbook.
  serve     Serve workbook conversion over HTTP.
  schema    Validate a schema file and summarize its record types.

Logging:
  default   Errors on the console only
  -l        Info and above to the log file, errors on the console
  -v        Everything to the log file, warnings on the console

Examples:
  anseconv xlsx2txt -c schema.json -i model.xlsx
  anseconv xlsx2txt -c schema.json -i model.xlsx -w "INPUT - PIPES;INPUT - PUMPS" -o model.in -a
  anseconv export -c schema.json -i model.db -o model.xlsx
  anseconv export -c schema.json -i postgres://localhost/model -o model.in`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return a.setup()
		},
	}

	root.PersistentFlags().StringVarP(&a.schemaPath, "config", "c", "", "Schema file (.json, .yaml or .yml); defaults to ANSECONV_SCHEMA")
	root.PersistentFlags().BoolVarP(&a.logBasic, "logging", "l", false, "Write info logs to the log file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Write debug logs to the log file and warnings to the console")

	root.AddCommand(
		newXlsx2TxtCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newSchemaCmd(a),
	)
	return root
}

// setup loads .env and the environment configuration, then installs the
// run logger.
func (a *app) setup() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	return a.setupLogging()
}

// setupLogging installs the run logger. -v takes precedence over -l.
func (a *app) setupLogging() error {
	opts := logging.RunOptions{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
	}
	switch {
	case a.verbose:
		opts.Level, opts.FileLevel = "warn", "debug"
	case a.logBasic:
		opts.Level, opts.FileLevel = "error", "info"
	}

	if opts.FileLevel != "" {
		f, err := os.OpenFile(a.cfg.Convert.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		opts.File = f
	}

	logging.SetupRun(opts)
	slog.Debug("configuration loaded", "config", a.cfg.String())
	return nil
}

// loadSchema reads the schema named by -c or ANSECONV_SCHEMA.
func (a *app) loadSchema() (*schema.Schema, error) {
	path := a.schemaPath
	if path == "" {
		path = a.cfg.Convert.Schema
	}
	if path == "" {
		return nil, errors.New("no schema file given; pass -c or set ANSECONV_SCHEMA")
	}

	s, err := schema.Load(path)
	if err != nil {
		return nil, err
	}
	slog.Info("schema loaded", "path", path, "types", len(s.TypeNames()))
	return s, nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}
