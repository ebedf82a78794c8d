package sshclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"al.essio.dev/pkg/shellescape"

	"github.com/kbukum/remotekit/errors"
	"github.com/kbukum/remotekit/logger"
	"github.com/kbukum/remotekit/observability"
	"github.com/kbukum/remotekit/process"
	"github.com/kbukum/remotekit/resilience"
	"github.com/kbukum/remotekit/util"
)

const (
	// DefaultUser is the remote user when none is set.
	DefaultUser = "root"
	// DefaultTimeout is the initial connect timeout value.
	DefaultTimeout = 60 * time.Second
	// DefaultControlPath is the ssh multiplexing socket template.
	DefaultControlPath = "/tmp/remotekit-ssh-%C"
	// DefaultUploadFolder is the usual remote destination for uploads.
	DefaultUploadFolder = "/tmp"
	// DefaultDownloadFolder is the usual local destination for downloads.
	DefaultDownloadFolder = "/tmp/"
)

// ErrHostNotSet is returned when a command is issued before a host is set.
var ErrHostNotSet = errors.Precondition("The SSH host not set.")

// Adapter runs commands and copies files through the ssh and scp binaries.
// Its option list only grows; every call builds its argv from a snapshot.
type Adapter struct {
	runner     process.Runner
	log        *logger.Logger
	loginRetry resilience.RetryConfig

	mu         sync.RWMutex
	host       string
	user       string
	timeout    time.Duration
	timeoutSet bool
	options    []string
}

type settings struct {
	runner         process.Runner
	log            *logger.Logger
	host           string
	user           string
	policy         HostKeyPolicy
	knownHostsFile string
	controlPath    string
	loginRetry     *resilience.RetryConfig
}

// Option configures an Adapter at construction.
type Option func(*settings)

// WithRunner sets the process runner. Defaults to a process.Adapter.
func WithRunner(r process.Runner) Option {
	return func(s *settings) { s.runner = r }
}

// WithLogger sets the logger. Every spawned command line is logged at debug level.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithHost sets the remote host.
func WithHost(host string) Option {
	return func(s *settings) { s.host = host }
}

// WithUser sets the remote user.
func WithUser(user string) Option {
	return func(s *settings) { s.user = user }
}

// WithHostKeyPolicy selects lenient or strict host key checking.
func WithHostKeyPolicy(p HostKeyPolicy) Option {
	return func(s *settings) { s.policy = p }
}

// WithKnownHostsFile sets the known_hosts file used by the strict policy.
func WithKnownHostsFile(path string) Option {
	return func(s *settings) { s.knownHostsFile = path }
}

// WithControlPath overrides the ssh ControlPath template.
func WithControlPath(path string) Option {
	return func(s *settings) { s.controlPath = path }
}

// WithLoginRetry overrides the WaitForLogin retry policy.
func WithLoginRetry(cfg resilience.RetryConfig) Option {
	return func(s *settings) { s.loginRetry = &cfg }
}

// DefaultLoginRetry polls without a bound, pausing 100ms between attempts.
func DefaultLoginRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    resilience.UnlimitedAttempts,
		InitialBackoff: 100 * time.Millisecond,
		BackoffFactor:  1,
	}
}

// New creates an Adapter with the baseline ssh options in place.
func New(opts ...Option) (*Adapter, error) {
	s := settings{user: DefaultUser, controlPath: DefaultControlPath}
	for _, opt := range opts {
		opt(&s)
	}

	if s.policy == HostKeyStrict && s.knownHostsFile != "" {
		if err := checkKnownHosts(s.knownHostsFile); err != nil {
			return nil, err
		}
	}

	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.runner == nil {
		s.runner = process.NewAdapter(process.Config{}, s.log)
	}
	loginRetry := DefaultLoginRetry()
	if s.loginRetry != nil {
		loginRetry = *s.loginRetry
	}

	options := []string{
		"-o", "ControlMaster=auto",
		"-o", "ControlPath=" + s.controlPath,
		"-o", "ControlPersist=60m",
		"-o", "HostKeyAlgorithms=+ssh-dss",
	}
	options = append(options, s.policy.options(s.knownHostsFile)...)

	return &Adapter{
		runner:     s.runner,
		log:        s.log.WithComponent("sshclient"),
		loginRetry: loginRetry,
		host:       s.host,
		user:       s.user,
		timeout:    DefaultTimeout,
		timeoutSet: true,
		options:    options,
	}, nil
}

// --- configuration ---

func (a *Adapter) Host() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.host
}

func (a *Adapter) SetHost(host string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.host = host
}

func (a *Adapter) User() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

func (a *Adapter) SetUser(user string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = user
}

// Timeout returns the stored connect timeout and whether one is set.
func (a *Adapter) Timeout() (time.Duration, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.timeout, a.timeoutSet
}

// SetTimeout stores d and appends "-o ConnectTimeout=<seconds>". Partial
// seconds round up so a positive timeout never becomes 0 (no limit).
func (a *Adapter) SetTimeout(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timeout, a.timeoutSet = d, true
	a.options = append(a.options, "-o", "ConnectTimeout="+strconv.FormatInt(connectTimeoutSeconds(d), 10))
}

func connectTimeoutSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// ClearTimeout unsets the timeout and appends "-o ConnectTimeout=0".
func (a *Adapter) ClearTimeout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timeout, a.timeoutSet = 0, false
	a.options = append(a.options, "-o", "ConnectTimeout=0")
}

// Options returns a copy of the accumulated ssh/scp flags.
func (a *Adapter) Options() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string{}, a.options...)
}

func (a *Adapter) appendFlag(flag, value string) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.options = append(a.options, flag, value)
	return a
}

// AddOption appends "-o option".
func (a *Adapter) AddOption(option string) *Adapter { return a.appendFlag("-o", option) }

// AddConfigFile appends "-F path".
func (a *Adapter) AddConfigFile(path string) *Adapter { return a.appendFlag("-F", path) }

// AddJump appends "-J host".
func (a *Adapter) AddJump(host string) *Adapter { return a.appendFlag("-J", host) }

// AddIdentityFile appends "-i path".
func (a *Adapter) AddIdentityFile(path string) *Adapter { return a.appendFlag("-i", path) }

// ApplyConfig adds every option of cfg. A nil cfg is ignored.
func (a *Adapter) ApplyConfig(cfg *Config) *Adapter {
	if cfg == nil {
		return a
	}
	for _, opt := range cfg.Options {
		a.AddOption(opt)
	}
	return a
}

// --- execution ---

type snapshot struct {
	host    string
	user    string
	options []string
}

func (a *Adapter) snapshot() (snapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.host == "" {
		return snapshot{}, ErrHostNotSet
	}
	return snapshot{host: a.host, user: a.user, options: append([]string{}, a.options...)}, nil
}

func (s snapshot) target() string {
	return s.user + "@" + s.host
}

func (s snapshot) args(extra ...string) []string {
	return append(append([]string{}, s.options...), extra...)
}

// CommandRequest describes a remote command.
type CommandRequest struct {
	// Command is the remote argv; it is shell-quoted into one argument.
	Command []string
	// Input, when non-nil, is written to the command's stdin.
	Input *string
	// Timeout bounds the whole ssh process. Zero means unbounded.
	Timeout time.Duration
	// Output receives stdout and stderr lines as they arrive.
	Output process.OutputFunc
}

// RunCommand runs req.Command on the remote host. A non-zero exit status is
// returned in the result. Errors are reserved for timeouts and for an ssh
// binary that cannot be started.
func (a *Adapter) RunCommand(ctx context.Context, req CommandRequest) (*CommandResult, error) {
	s, err := a.snapshot()
	if err != nil {
		return nil, err
	}

	cmd := process.Command{
		Binary:  "ssh",
		Args:    s.args(s.target(), shellescape.QuoteCommand(req.Command)),
		Timeout: req.Timeout,
		Output:  req.Output,
	}
	if req.Input != nil {
		cmd.Stdin = strings.NewReader(*req.Input)
	}

	res, err := a.run(ctx, observability.SpanSSHCommand, s, cmd)
	if err != nil {
		return nil, err
	}
	return NewCommandResult(res.ExitCode, string(res.Stdout), string(res.Stderr), res.CommandLine), nil
}

// loginAttemptError marks a login attempt that ran and failed.
type loginAttemptError struct{ err error }

func (e *loginAttemptError) Error() string { return e.err.Error() }
func (e *loginAttemptError) Unwrap() error { return e.err }

// WaitForLogin opens plain ssh sessions until one exits with 0. It polls
// according to the login retry policy (unbounded by default) and returns
// ctx's error once ctx is done. Errors starting ssh end the wait at once.
func (a *Adapter) WaitForLogin(ctx context.Context) error {
	s, err := a.snapshot()
	if err != nil {
		return err
	}

	cmd := process.Command{Binary: "ssh", Args: s.args(s.target())}

	cfg := a.loginRetry
	cfg.RetryIf = func(err error) bool {
		var attempt *loginAttemptError
		return stderrors.As(err, &attempt)
	}
	cfg.OnRetry = func(attempt int, err error, _ time.Duration) {
		a.log.Debug("ssh login not ready", logger.Fields(
			logger.FieldHost, s.host,
			logger.FieldAttempt, attempt,
			logger.FieldError, err.Error(),
		))
	}

	ctx, span := observability.StartClientSpan(ctx, observability.SpanSSHLogin, observability.AttrSSHHost.String(s.host))
	err = resilience.RetryFunc(ctx, cfg, func() error {
		res, err := a.runner.Run(ctx, cmd)
		if err != nil {
			return err
		}
		if res.ExitCode != 0 {
			return &loginAttemptError{errors.ProcessFailed(
				fmt.Sprintf("SSH login to %s exited with %d", s.target(), res.ExitCode),
				strings.TrimSpace(string(res.Stderr)),
			)}
		}
		return nil
	})
	observability.EndSpan(span, err)
	return err
}

// SecureCopyFileUpload copies the local file source into the remote folder
// destFolder, which must not end with a slash.
func (a *Adapter) SecureCopyFileUpload(ctx context.Context, source, destFolder string, timeout time.Duration) (*File, error) {
	if strings.HasSuffix(destFolder, "/") {
		return nil, errors.InvalidInput("destination_folder", "The destination folder path cannot end with a slash.")
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, errors.ResourceUnavailable(source, "The source file does not exist.").WithCause(err)
	}

	s, err := a.snapshot()
	if err != nil {
		return nil, err
	}

	cmd := process.Command{
		Binary:  "scp",
		Args:    s.args(source, s.target()+":"+destFolder+"/"),
		Timeout: timeout,
	}
	res, err := a.run(ctx, observability.SpanSCPUpload, s, cmd)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, scpError("uploading", source, res)
	}

	return &File{Path: destFolder + "/" + filepath.Base(source), Size: util.Ptr(info.Size())}, nil
}

// SecureCopyFileDownload copies the remote file source into the local folder
// destFolder.
func (a *Adapter) SecureCopyFileDownload(ctx context.Context, source, destFolder string, timeout time.Duration) error {
	s, err := a.snapshot()
	if err != nil {
		return err
	}

	cmd := process.Command{
		Binary:  "scp",
		Args:    s.args(s.target()+":"+source, destFolder),
		Timeout: timeout,
	}
	res, err := a.run(ctx, observability.SpanSCPDownload, s, cmd)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return scpError("downloading", source, res)
	}
	return nil
}

func scpError(direction, source string, res *process.Result) error {
	stderr := strings.TrimSpace(string(res.Stderr))
	msg := fmt.Sprintf("SCP failed %s %s.", direction, source)
	if stderr != "" {
		msg += " " + stderr
	}
	return errors.ProcessFailed(msg, stderr).WithDetail("exit_code", res.ExitCode)
}

func (a *Adapter) run(ctx context.Context, spanName string, s snapshot, cmd process.Command) (*process.Result, error) {
	ctx, span := observability.StartClientSpan(ctx, spanName, observability.AttrSSHHost.String(s.host))

	a.log.Debug(process.CommandLine(cmd.Binary, cmd.Args...))
	res, err := a.runner.Run(ctx, cmd)
	if err == nil {
		span.SetAttributes(observability.AttrExitCode.Int(res.ExitCode))
	}
	observability.EndSpan(span, err)
	return res, err
}
