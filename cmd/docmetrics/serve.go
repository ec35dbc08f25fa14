package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/docmetrics/internal/config"
	"github.com/nao1215/docmetrics/internal/log"
	"github.com/nao1215/docmetrics/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and HTTP API",
		Long: `Serve starts a web server with an upload form and an HTTP API:

  GET  /         upload form
  POST /analyze  analyze uploaded documents (multipart field "files"), JSON result
  POST /export   analyze and download a report (?format=json|markdown|pdf|xlsx|text)
  GET  /health   health check

Variables from a .env file in the working directory are loaded before the
configuration is read. Access logs are written to stderr as JSON.

Examples:
  # Listen on the default address
  docmetrics serve

  # Listen on all interfaces with a larger upload limit
  docmetrics serve --addr :8080 --max-size 20971520

  # Analyze against the reference corpus
  docmetrics serve --corpus`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", config.DefaultServerAddr, "Listen address")
	cmd.Flags().Duration("rate-every", config.DefaultRateLimitEvery,
		"Per-client rate limit refill interval (0 disables rate limiting)")
	cmd.Flags().Int("rate-burst", config.DefaultRateLimitBurst, "Per-client rate limit burst")
	cmd.Flags().Int("max-concurrent", config.DefaultMaxConcurrent, "Maximum concurrent analysis requests")
	cmd.Flags().StringSlice("env-file", nil, "Environment files to load (default: .env)")

	addAnalysisFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	envFiles, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return err
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := log.NewSecureJSONLogger(cmd.ErrOrStderr(), level)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "docmetrics listening on http://%s\n", srv.Addr())
	return srv.ListenAndServe(ctx)
}

// newServer builds the web server for cfg.
func newServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*server.Server, error) {
	opts, err := analysisOptions(ctx, cfg, newCorpusLoader(cfg.CorpusDir), logger)
	if err != nil {
		return nil, err
	}

	return server.New(opts,
		server.WithAddr(cfg.Server.Addr),
		server.WithMaxUploadBytes(cfg.MaxUploadBytes),
		server.WithMaxConcurrent(cfg.Server.MaxConcurrent),
		server.WithRateLimit(cfg.Server.RateLimitEvery, cfg.Server.RateLimitBurst),
		server.WithVersion(getVersion()),
		server.WithLogger(logger),
	), nil
}
