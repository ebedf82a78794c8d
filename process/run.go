package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"al.essio.dev/pkg/shellescape"

	"github.com/kbukum/remotekit/errors"
)

// ErrTimeout matches, via errors.Is, the error returned when Command.Timeout elapses.
var ErrTimeout = errors.Sentinel(errors.ErrCodeTimeout)

const defaultGracePeriod = 5 * time.Second

// Run executes a subprocess and waits for it to complete.
//
// A non-zero exit status is reported through Result.ExitCode, not as an error.
// Errors are returned when the process cannot be started, when Command.Timeout
// elapses (ErrTimeout) or when ctx is done. A process that exits while a
// descendant still holds its output open is not an error once GracePeriod
// has passed. If the process has to be stopped,
// SIGTERM is sent to its process group first, then SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.InvalidInput("binary", "process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = defaultGracePeriod
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	var mu sync.Mutex
	stdout := &lineWriter{stream: StreamStdout, fn: cmd.Output, mu: &mu}
	stderr := &lineWriter{stream: StreamStderr, fn: cmd.Output, mu: &mu}
	c.Stdout = stdout
	c.Stderr = stderr

	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	// Use process group so we can kill the entire tree
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Don't let exec.CommandContext kill with SIGKILL immediately
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()
	duration := time.Since(start)

	stdout.flush()
	stderr.flush()

	result := &Result{
		Stdout:      stdout.buf.Bytes(),
		Stderr:      stderr.buf.Bytes(),
		ExitCode:    c.ProcessState.ExitCode(),
		Duration:    duration,
		CommandLine: CommandLine(cmd.Binary, cmd.Args...),
	}

	if err == nil {
		return result, nil
	}

	switch {
	case ctx.Err() != nil:
		return result, fmt.Errorf("process: killed by context: %w", ctx.Err())
	case runCtx.Err() != nil:
		return result, errors.Timeout(cmd.Binary).
			WithDetail("command", result.CommandLine).
			WithDetail("timeout", cmd.Timeout.String())
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return result, nil
	}
	// The process exited cleanly but a descendant kept stdout or stderr open
	// past GracePeriod. Output written until then is kept.
	if stderrors.Is(err, exec.ErrWaitDelay) {
		return result, nil
	}

	return result, errors.ProcessFailed(
		fmt.Sprintf("process: unable to start %s", cmd.Binary), "",
	).WithCause(err)
}

// CommandLine renders binary and args as a single shell-quoted string.
func CommandLine(binary string, args ...string) string {
	return shellescape.QuoteCommand(append([]string{binary}, args...))
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}

// lineWriter buffers everything written to it and hands complete lines to fn.
type lineWriter struct {
	stream  Stream
	fn      OutputFunc
	mu      *sync.Mutex
	buf     bytes.Buffer
	pending []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	if w.fn == nil {
		return len(p), nil
	}
	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimSuffix(w.pending[:i], []byte{'\r'}))
		w.pending = w.pending[i+1:]
		w.emit(line)
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if w.fn == nil || len(w.pending) == 0 {
		return
	}
	line := string(w.pending)
	w.pending = nil
	w.emit(line)
}

func (w *lineWriter) emit(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fn(w.stream, line)
}
