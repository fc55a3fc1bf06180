package tor

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultStartupTimeout bounds the Tor bootstrap.
const DefaultStartupTimeout = 3 * time.Minute

// Daemon manages an embedded Tor process.
//
// Bootstrapping downloads directory information and builds the first
// circuits, which usually takes one to three minutes.
type Daemon struct {
	// process is the running Tor process, nil until Start succeeds.
	process *tornago.TorProcess

	// socksAddr is the SOCKS5 listener of the running process.
	socksAddr string

	startupTimeout time.Duration
}

// DaemonOption configures a Daemon.
type DaemonOption func(*Daemon)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) DaemonOption {
	return func(d *Daemon) {
		d.startupTimeout = timeout
	}
}

// NewDaemon creates a Daemon. Call Start to launch Tor.
func NewDaemon(opts ...DaemonOption) *Daemon {
	d := &Daemon{
		startupTimeout: DefaultStartupTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches Tor on OS-assigned ports and blocks until it has
// bootstrapped. The tor binary must be installed.
func (d *Daemon) Start(ctx context.Context) error {
	if d.IsRunning() {
		return nil
	}

	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(d.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	// StartTorDaemon does not take a context; honor a cancel that
	// arrived while it was bootstrapping.
	if err := ctx.Err(); err != nil {
		_ = process.Stop() //nolint:errcheck // best effort
		return err
	}

	d.process = process
	d.socksAddr = process.SocksAddr()
	return nil
}

// Stop shuts Tor down. It is safe to call on a daemon that never started.
func (d *Daemon) Stop() error {
	if d.process == nil {
		return nil
	}
	err := d.process.Stop()
	d.process = nil
	d.socksAddr = ""
	return err
}

// SocksAddr returns the SOCKS5 address ("host:port") of the running
// daemon, or "" when it is not running.
func (d *Daemon) SocksAddr() string {
	return d.socksAddr
}

// IsRunning reports whether the daemon has been started.
func (d *Daemon) IsRunning() bool {
	return d.process != nil
}
