// Package cli implements the remotekit command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/remotekit/bootstrap"
	"github.com/kbukum/remotekit/config"
	"github.com/kbukum/remotekit/httpclient"
	"github.com/kbukum/remotekit/logger"
	"github.com/kbukum/remotekit/process"
	"github.com/kbukum/remotekit/version"
)

// ExitError carries the process exit code for main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Option injects dependencies, mainly for tests.
type Option func(*session)

// WithHTTPTransport replaces the network transport of every HTTP adapter.
func WithHTTPTransport(t httpclient.Transport) Option {
	return func(s *session) { s.httpTransport = t }
}

// WithSSHRunner replaces the process runner used for ssh and scp.
func WithSSHRunner(pr process.Runner) Option {
	return func(s *session) { s.sshRunner = pr }
}

// WithLogger bypasses logger initialization from the config.
func WithLogger(l *logger.Logger) Option {
	return func(s *session) { s.log = l }
}

type session struct {
	httpTransport httpclient.Transport
	sshRunner     process.Runner
	log           *logger.Logger

	cfgFile  string
	logLevel string
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	s := &session{}
	for _, opt := range opts {
		opt(s)
	}

	root := &cobra.Command{
		Use:   "remotekit",
		Short: "Run HTTP requests, SSH commands and JSON-RPC calls against remote hosts",
		Long: `remotekit drives remote systems from one configuration file.

HTTP requests go through a configurable adapter (auth, headers, strict
resolve), commands and file copies go through the system ssh and scp
binaries, and JSON-RPC 2.0 calls are posted over HTTP.`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&s.cfgFile, "config", "", "config file (default: remotekit.yml, config/remotekit.yml or ~/.config/remotekit/config.yml)")
	root.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(newHTTPCmd(s))
	root.AddCommand(newSSHCmd(s))
	root.AddCommand(newRPCCmd(s))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (s *session) app() (*bootstrap.App, error) {
	cfg, err := config.Load(s.cfgFile)
	if err != nil {
		return nil, err
	}
	if s.logLevel != "" {
		cfg.Logging.Level = s.logLevel
	}

	var opts []bootstrap.Option
	if s.log != nil {
		opts = append(opts, bootstrap.WithLogger(s.log))
	}
	return bootstrap.NewApp(cfg, opts...)
}

// run loads the configuration and runs task inside the app lifecycle.
func (s *session) run(cmd *cobra.Command, task func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := s.app()
	if err != nil {
		return err
	}
	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		return task(ctx, app)
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the remotekit version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.GetFullVersion())
		},
	}
}
