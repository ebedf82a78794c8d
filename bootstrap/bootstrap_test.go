package bootstrap

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/kbukum/remotekit/config"
	"github.com/kbukum/remotekit/logger"
)

func newTestApp(t *testing.T, cfg *config.AppConfig) *App {
	t.Helper()
	app, err := NewApp(cfg, WithLogger(logger.Nop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, &config.AppConfig{Name: "ops"})
	if app.Name != "ops" {
		t.Errorf("expected name 'ops', got %q", app.Name)
	}
	if app.Version == "" {
		t.Error("expected a version")
	}
	if app.Cfg.Logging.Level != "info" {
		t.Errorf("expected defaults applied, got level %q", app.Cfg.Logging.Level)
	}
	if len(app.onStart) != 0 {
		t.Error("tracing is disabled, no start hook expected")
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.SSH.HostKeyPolicy = "maybe"
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewApp_TracingRegistersHook(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Tracing.Enabled = true
	app := newTestApp(t, cfg)
	if len(app.onStart) != 1 {
		t.Fatalf("expected tracing start hook, got %d", len(app.onStart))
	}
}

func TestRunTask_HookOrder(t *testing.T) {
	app := newTestApp(t, &config.AppConfig{})

	var order []string
	app.OnStart(func(context.Context) error { order = append(order, "start"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if len(order) != 3 || order[0] != "start" || order[1] != "task" || order[2] != "stop" {
		t.Errorf("unexpected order %v", order)
	}
}

func TestRunTask_StartFailureSkipsTask(t *testing.T) {
	app := newTestApp(t, &config.AppConfig{})
	app.OnStart(func(context.Context) error { return errors.New("boom") })

	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
	if err == nil {
		t.Fatal("expected start error")
	}
	if ran {
		t.Error("task must not run after a failed start hook")
	}
}

func TestRunTask_TaskErrorWins(t *testing.T) {
	app := newTestApp(t, &config.AppConfig{})
	app.OnStop(func(context.Context) error { return errors.New("stop failed") })

	taskErr := errors.New("task failed")
	err := app.RunTask(context.Background(), func(context.Context) error { return taskErr })
	if !errors.Is(err, taskErr) {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestRunTask_StopErrorReported(t *testing.T) {
	app := newTestApp(t, &config.AppConfig{})
	app.OnStop(func(context.Context) error { return errors.New("stop failed") })

	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected stop error")
	}
}

func TestRunTask_SignalCancelsTask(t *testing.T) {
	app := newTestApp(t, &config.AppConfig{})
	app.signals = []os.Signal{syscall.SIGUSR1}

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return errors.New("task was not canceled")
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
