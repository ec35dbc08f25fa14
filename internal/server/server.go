package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nao1215/docmetrics/internal/pipeline"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultMaxUploadBytes limits each uploaded document.
	DefaultMaxUploadBytes = 10 << 20

	// DefaultMaxFiles limits the number of documents per request.
	DefaultMaxFiles = 20

	// DefaultMaxConcurrent limits analysis requests running at once.
	DefaultMaxConcurrent = 4

	// DefaultShutdownTimeout bounds the graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// limiterIdleTime is how long an unused per-client limiter is kept.
	limiterIdleTime = 10 * time.Minute
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the web UI and the HTTP API.
type Server struct {
	// analysis holds the options every upload is analyzed with.
	analysis pipeline.Options

	addr            string
	maxUploadBytes  int64
	maxFiles        int
	maxConcurrent   int64
	rateEvery       time.Duration
	rateBurst       int
	shutdownTimeout time.Duration
	version         string

	sem      *semaphore.Weighted
	limiters *ipLimiter
	inFlight atomic.Int64

	tmpl   *template.Template
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithMaxUploadBytes sets the size limit of each uploaded document.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithMaxFiles sets the maximum number of documents per request.
func WithMaxFiles(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxFiles = n
		}
	}
}

// WithMaxConcurrent sets the number of analysis requests served at once.
func WithMaxConcurrent(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxConcurrent = int64(n)
		}
	}
}

// WithRateLimit enables a per-client token bucket that refills one
// request every interval up to burst. A zero interval disables it.
func WithRateLimit(every time.Duration, burst int) Option {
	return func(s *Server) {
		s.rateEvery = every
		s.rateBurst = burst
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock sets the clock used for export timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Server that analyzes uploads with the given options.
func New(analysis pipeline.Options, opts ...Option) *Server {
	s := &Server{
		analysis:        analysis,
		addr:            DefaultAddr,
		maxUploadBytes:  DefaultMaxUploadBytes,
		maxFiles:        DefaultMaxFiles,
		maxConcurrent:   DefaultMaxConcurrent,
		shutdownTimeout: DefaultShutdownTimeout,
		version:         "dev",
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.analysis.Logger == nil {
		s.analysis.Logger = s.logger
	}

	s.sem = semaphore.NewWeighted(s.maxConcurrent)
	if s.rateEvery > 0 {
		if s.rateBurst < 1 {
			s.rateBurst = 1
		}
		s.limiters = newIPLimiter(s.rateEvery, s.rateBurst)
	}
	s.tmpl = template.Must(template.ParseFS(templateFS, "templates/*.html"))
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", withMethod(http.MethodGet, s.handleHealth))
	mux.HandleFunc("/analyze",
		s.withRateLimit(
			withMethod(http.MethodPost,
				s.withConcurrencyLimit(s.handleAnalyze))))
	mux.HandleFunc("/export",
		s.withRateLimit(
			withMethod(http.MethodPost,
				s.withConcurrencyLimit(s.handleExport))))
	mux.HandleFunc("/", withMethod(http.MethodGet, s.handleIndex))

	return s.withRequestID(s.withLogging(s.withRecovery(mux)))
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	if s.limiters != nil {
		go s.limiters.cleanupLoop(ctx, limiterIdleTime)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("server listening",
		"addr", ln.Addr().String(),
		"max_concurrent", s.maxConcurrent,
		"max_upload_bytes", s.maxUploadBytes,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
