package sshclient

// CommandResult is the outcome of a remote command. A non-zero return code
// is a normal result, not an error.
type CommandResult struct {
	returnCode  int
	stdout      string
	stderr      string
	commandLine string
}

// NewCommandResult creates a CommandResult.
func NewCommandResult(returnCode int, stdout, stderr, commandLine string) *CommandResult {
	return &CommandResult{
		returnCode:  returnCode,
		stdout:      stdout,
		stderr:      stderr,
		commandLine: commandLine,
	}
}

func (r *CommandResult) ReturnCode() int     { return r.returnCode }
func (r *CommandResult) Stdout() string      { return r.stdout }
func (r *CommandResult) Stderr() string      { return r.stderr }
func (r *CommandResult) CommandLine() string { return r.commandLine }

// IsSuccess reports whether the remote command exited with 0.
func (r *CommandResult) IsSuccess() bool { return r.returnCode == 0 }

// File describes a file copied to a remote host.
type File struct {
	// Path is the remote path.
	Path string
	// Size is the size of the local source in bytes. The remote copy is not
	// inspected.
	Size *int64
}
