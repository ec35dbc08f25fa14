package tor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultStartupTimeout bounds the bootstrap of the embedded daemon.
// Bootstrapping downloads directory information and builds the first
// circuits, which usually takes one to three minutes.
const DefaultStartupTimeout = 3 * time.Minute

// Daemon manages an embedded Tor process.
type Daemon struct {
	mu             sync.Mutex
	process        *tornago.TorProcess
	socksAddr      string
	startupTimeout time.Duration
	logger         *slog.Logger
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(d *Daemon) {
		if timeout > 0 {
			d.startupTimeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Daemon) {
		d.logger = logger
	}
}

// NewDaemon creates a Daemon. Call Start to launch Tor.
func NewDaemon(opts ...Option) *Daemon {
	d := &Daemon{
		startupTimeout: DefaultStartupTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches Tor on OS-assigned ports and blocks until it has
// bootstrapped. Calling Start on a running daemon does nothing.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.process != nil {
		return nil
	}

	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(d.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create tor launch config: %w", err)
	}

	d.logger.Info("starting tor", "timeout", d.startupTimeout)
	started := time.Now()

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start tor: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return err
	}

	d.process = process
	d.socksAddr = process.SocksAddr()
	d.logger.Info("tor ready", "socks", d.socksAddr, "duration", time.Since(started).Round(time.Second))
	return nil
}

// Stop shuts the daemon down. It is safe to call on a daemon that was
// never started or is already stopped.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.process == nil {
		return nil
	}
	err := d.process.Stop()
	d.process = nil
	d.socksAddr = ""
	return err
}

// Running reports whether the daemon has been started and not stopped.
func (d *Daemon) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.process != nil
}

// SocksAddr returns the host:port of the SOCKS5 listener.
func (d *Daemon) SocksAddr() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.process == nil {
		return "", ErrNotRunning
	}
	return d.socksAddr, nil
}
