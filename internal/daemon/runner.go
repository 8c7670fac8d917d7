// Package daemon runs the warpalarm service: it owns the listener, serves
// RPC on it and tears everything down in order on shutdown.
package daemon

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/warpdl/warpalarm/common"
	"go.uber.org/multierr"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown() is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// Config holds the configuration for the daemon runner.
type Config struct {
	// Addr is the TCP listen address. "127.0.0.1:0" picks an ephemeral port.
	Addr string

	// ShutdownTimeout bounds ShutdownFunc. Zero means no limit.
	ShutdownTimeout time.Duration
}

// Dependencies holds the pieces the runner drives. This enables dependency
// injection for testing.
type Dependencies struct {
	// ListenerFactory creates network listeners. Defaults to net.Listen.
	ListenerFactory func(network, address string) (net.Listener, error)

	// Serve is run on the listener until it returns. It should return nil
	// once ShutdownFunc has stopped it. Nil means nothing is served.
	Serve func(l net.Listener) error

	// ShutdownFunc stops Serve and releases resources. Nil means no cleanup.
	ShutdownFunc func(ctx context.Context) error
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config *Config
	deps   *Dependencies

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	listener net.Listener

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a runner. A nil config listens on the default address.
func New(config *Config, deps *Dependencies) *Runner {
	return &Runner{
		config: applyConfigDefaults(config),
		deps:   applyDependencyDefaults(deps),
		ready:  make(chan struct{}),
	}
}

func applyConfigDefaults(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	if config.Addr == "" {
		config.Addr = common.DefaultListenAddr
	}
	return config
}

func applyDependencyDefaults(deps *Dependencies) *Dependencies {
	if deps == nil {
		deps = &Dependencies{}
	}
	if deps.ListenerFactory == nil {
		deps.ListenerFactory = net.Listen
	}
	return deps
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config
}

// Ready is closed once the listener has been opened for the first time.
func (r *Runner) Ready() <-chan struct{} {
	return r.ready
}

// Addr returns the bound address while running, nil otherwise.
func (r *Runner) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Start opens the listener, serves on it and blocks until ctx is cancelled,
// Shutdown is called or Serve fails. It returns Serve's error if Serve
// failed and ctx.Err() otherwise.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, r.cancel = context.WithCancel(ctx)

	// open the listener before marking the runner as running
	listener, err := r.deps.ListenerFactory("tcp", r.config.Addr)
	if err != nil {
		r.cancel()
		r.mu.Unlock()
		return err
	}
	r.listener = listener
	r.running = true
	r.mu.Unlock()
	r.readyOnce.Do(func() { close(r.ready) })

	served := make(chan error, 1)
	if r.deps.Serve != nil {
		go func() { served <- r.deps.Serve(listener) }()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-served:
	}
	r.cleanupOnStop()
	if serveErr != nil {
		return serveErr
	}
	return ctx.Err()
}

func (r *Runner) cleanupOnStop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	if r.cancel != nil {
		r.cancel()
	}
	r.closeListener()
}

// closeListener closes the listener if it exists. Caller must hold r.mu.
func (r *Runner) closeListener() {
	if r.listener != nil {
		// Serve may already have closed it
		_ = r.listener.Close()
		r.listener = nil
	}
}

// Shutdown runs ShutdownFunc, bounded by the configured timeout, and stops
// Start. Returns ErrNotRunning if the daemon is not running and
// ErrShutdownTimeout if ShutdownFunc overruns the timeout.
func (r *Runner) Shutdown() error {
	if !r.IsRunning() {
		return ErrNotRunning
	}
	err := r.executeShutdownFunc()
	r.performShutdown()
	return err
}

func (r *Runner) executeShutdownFunc() error {
	if r.deps.ShutdownFunc == nil {
		return nil
	}
	if r.config.ShutdownTimeout <= 0 {
		return r.deps.ShutdownFunc(context.Background())
	}
	return r.executeWithTimeout(r.deps.ShutdownFunc, r.config.ShutdownTimeout)
}

// executeWithTimeout runs fn with a deadline. fn gets a context that
// expires at the deadline; if fn has not returned by then the runner stops
// waiting and reports ErrShutdownTimeout.
func (r *Runner) executeWithTimeout(fn func(context.Context) error, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return multierr.Append(ErrShutdownTimeout, err)
		}
		return err
	case <-ctx.Done():
		return ErrShutdownTimeout
	}
}

func (r *Runner) performShutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	if r.cancel != nil {
		r.cancel()
	}
	r.closeListener()
}

// IsRunning returns true if the daemon is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
