package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/warpdl/warpalarm/internal/api"
	"github.com/warpdl/warpalarm/internal/config"
	"github.com/warpdl/warpalarm/internal/daemon"
	"github.com/warpdl/warpalarm/internal/server"
	"github.com/warpdl/warpalarm/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

const logOwner = "warpalarm"

// daemonOptions builds the daemon's component graph:
//
//	config -> logger -> notifier -> api -> rpc server -> server -> runner
//
// Expired timers are printed to stdout, logs go to stderr. With debug on,
// every timer event is logged as well. Components are
// stopped in reverse order, so the listener closes before the scheduler.
func daemonOptions(cfg *config.Config, stdout, stderr io.Writer) fx.Option {
	fxLogger := fx.NopLogger
	if cfg.Debug {
		fxLogger = fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ConsoleLogger{W: stderr}
		})
	}
	return fx.Options(
		fxLogger,
		fx.Supply(cfg),
		fx.Provide(
			func() afero.Fs { return afero.NewOsFs() },
			newDaemonLogger(stderr),
			newNotifier,
			newDaemonApi(stdout),
			newRPCServer,
			server.NewServer,
			newRunner,
		),
		fx.Invoke(runDaemon),
	)
}

// newDaemonLogger logs to stderr and, when log_file is set, appends to
// that file as well.
func newDaemonLogger(stderr io.Writer) func(fx.Lifecycle, *config.Config, afero.Fs) (logger.Logger, error) {
	return func(lc fx.Lifecycle, cfg *config.Config, fs afero.Fs) (logger.Logger, error) {
		console := logger.New(logOwner, stderr)
		console.SetDebug(cfg.Debug)
		var l logger.Logger = console
		if cfg.LogFile != "" {
			f, err := fs.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			fileLog := logger.NewFileLogger(logOwner, f)
			fileLog.SetDebug(cfg.Debug)
			l = logger.NewMultiLogger(console, fileLog)
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return l.Close() },
		})
		return l, nil
	}
}

func newNotifier(lc fx.Lifecycle, l logger.Logger, cfg *config.Config) (*server.RPCNotifier, error) {
	n, err := server.NewRPCNotifier(l, cfg.PushWorkers)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			n.Close()
			return nil
		},
	})
	return n, nil
}

// expiryPrinter writes each expired timer's message to w.
func expiryPrinter(w io.Writer) api.Sink {
	return api.SinkFunc(func(e api.Event) {
		if e.Kind != api.EventExpired {
			return
		}
		for _, line := range e.Lines {
			fmt.Fprintln(w, line)
		}
	})
}

func newDaemonApi(stdout io.Writer) func(fx.Lifecycle, logger.Logger, *config.Config, *server.RPCNotifier) (*api.Api, error) {
	return func(lc fx.Lifecycle, l logger.Logger, cfg *config.Config, n *server.RPCNotifier) (*api.Api, error) {
		sink := api.MultiSink{expiryPrinter(stdout), n}
		if cfg.Debug {
			sink = append(sink, api.LogSink(l))
		}
		a, err := api.NewApi(l, sink, cfg.SchedulerOptions())
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				// the start context only bounds startup
				a.Start(context.Background())
				return nil
			},
			OnStop: func(context.Context) error { return a.Close() },
		})
		return a, nil
	}
}

func newRPCServer(l logger.Logger, cfg *config.Config, a *api.Api, n *server.RPCNotifier) *server.RPCServer {
	return server.NewRPCServer(l, &server.RPCConfig{
		Secret:    cfg.Secret,
		Version:   currentBuildArgs.Version,
		Commit:    currentBuildArgs.Commit,
		BuildType: currentBuildArgs.BuildType,
	}, a, n)
}

func newRunner(cfg *config.Config, srv *server.Server) *daemon.Runner {
	return daemon.New(&daemon.Config{
		Addr:            cfg.Listen,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, &daemon.Dependencies{
		Serve:        srv.Serve,
		ShutdownFunc: srv.Shutdown,
	})
}

// runDaemon starts the runner with the app and stops it first on shutdown.
// If serving fails later on, the whole app is shut down with exit code 1.
func runDaemon(lc fx.Lifecycle, sd fx.Shutdowner, r *daemon.Runner, l logger.Logger, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			errc := make(chan error, 1)
			go func() { errc <- r.Start(context.Background()) }()
			select {
			case <-r.Ready():
			case err := <-errc:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
			if cfg.GeneratedSecret {
				l.Warning("no secret configured, using %s for this run", cfg.Secret)
			}
			go func() {
				err := <-errc
				if err == nil || errors.Is(err, context.Canceled) {
					return
				}
				l.Error("daemon stopped: %v", err)
				_ = sd.Shutdown(fx.ExitCode(1))
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			err := r.Shutdown()
			if errors.Is(err, daemon.ErrNotRunning) {
				return nil
			}
			return err
		},
	})
}
