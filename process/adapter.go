package process

import (
	"context"
	"time"

	"github.com/kbukum/remotekit/logger"
)

// Runner executes commands. The SSH adapter depends on it so tests can
// substitute a fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) (*Result, error)

// Run calls f(ctx, cmd).
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (*Result, error) {
	return f(ctx, cmd)
}

// compile-time assertions
var (
	_ Runner = (*Adapter)(nil)
	_ Runner = RunnerFunc(nil)
)

// Config configures a process adapter.
type Config struct {
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout is the default execution timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Adapter is the default Runner. It fills in adapter-level defaults and logs
// every command line at debug level.
type Adapter struct {
	config Config
	log    *logger.Logger
}

// NewAdapter creates a new process adapter.
func NewAdapter(cfg Config, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Adapter{config: cfg, log: log.WithComponent("process")}
}

// Run executes a command, applying adapter-level defaults.
func (a *Adapter) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && a.config.GracePeriod > 0 {
		cmd.GracePeriod = a.config.GracePeriod
	}
	if cmd.Timeout == 0 && a.config.Timeout > 0 {
		cmd.Timeout = a.config.Timeout
	}

	a.log.Debug("running command", logger.Fields(logger.FieldCommand, CommandLine(cmd.Binary, cmd.Args...)))

	result, err := Run(ctx, cmd)
	if err != nil {
		a.log.WithError(err).Debug("command failed", logger.Fields(logger.FieldCommand, CommandLine(cmd.Binary, cmd.Args...)))
		return result, err
	}

	a.log.Debug("command finished",
		logger.DurationFields("run", result.Duration),
		logger.Fields(logger.FieldExitCode, result.ExitCode),
	)
	return result, nil
}
