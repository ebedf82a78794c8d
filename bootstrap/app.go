package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/remotekit/config"
	"github.com/kbukum/remotekit/logger"
	"github.com/kbukum/remotekit/observability"
	"github.com/kbukum/remotekit/version"
)

// App carries the configuration and logger of one remotekit invocation and
// runs a finite task between its start and stop hooks.
//
// Example:
//
//	app, _ := bootstrap.NewApp(cfg)
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := client.Call(ctx, "host.get", nil)
//	    return err
//	})
type App struct {
	Name    string
	Version string
	Cfg     *config.AppConfig
	Logger  *logger.Logger

	gracefulTimeout time.Duration
	signals         []os.Signal

	onStart []Hook
	onStop  []Hook
}

// NewApp applies defaults, validates cfg and initializes the logger. When
// tracing is enabled a tracer provider is installed on start and flushed on
// stop.
func NewApp(cfg *config.AppConfig, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	app := &App{
		Name:            cfg.Name,
		Version:         version.GetShortVersion(),
		Cfg:             cfg,
		gracefulTimeout: 5 * time.Second,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(cfg.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	if cfg.Tracing.Enabled {
		app.OnStart(app.startTracing)
	}
	return app, nil
}

func (a *App) startTracing(ctx context.Context) error {
	tp, err := observability.InitTracer(ctx, a.Cfg.Tracing.TracerConfig)
	if err != nil {
		return err
	}
	a.OnStop(tp.Shutdown)
	return nil
}

// RunTask runs the start hooks, then task, then the stop hooks. task's
// context is canceled on SIGINT or SIGTERM. The task error wins over a stop
// error.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	a.Logger.Debug("Starting task", logger.Fields("name", a.Name, "version", a.Version))

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, a.signals...)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// stop runs the stop hooks within the graceful timeout.
func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("shutdown", err))
		return err
	}
	return nil
}
