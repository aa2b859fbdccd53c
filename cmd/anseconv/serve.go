package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/anseconv/internal/logging"
	"github.com/JonMunkholm/anseconv/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve workbook conversion over HTTP",
		Long: `Start an HTTP server that converts uploaded workbooks with the schema.

Routes:
  POST /api/convert/workbook  multipart "file" (.xlsx), optional "worksheet"
  GET  /healthz               liveness and the number of record types

Server, upload, rate limit and API key settings come from the environment
(SERVER_*, UPLOAD_*, RATE_LIMIT_*, REQUIRE_API_KEY, API_KEYS).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != 0 {
				a.cfg.Server.Port = port
			}
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: SERVER_PORT)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	// A server logs requests; without an explicit LOG_LEVEL it runs at info.
	level := a.cfg.Logging.Level
	if os.Getenv("LOG_LEVEL") == "" && !a.verbose && !a.logBasic {
		level = "info"
	}
	if a.logFile == nil {
		logging.Setup(level, a.cfg.Logging.Format)
	}

	s, err := a.loadSchema()
	if err != nil {
		return err
	}

	slog.Info("configuration loaded",
		"port", a.cfg.Server.Port,
		"upload_max_size", a.cfg.Upload.MaxSize,
		"upload_max_concurrent", a.cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", a.cfg.Rate.Enabled,
		"require_api_key", a.cfg.Security.RequireAPIKey,
	)

	server := web.NewServer(s, a.cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}
