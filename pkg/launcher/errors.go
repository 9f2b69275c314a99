package launcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

var (
	// ErrServerNotFound is returned when the server binary cannot be located.
	ErrServerNotFound = errors.New("server binary not found")
	// ErrServerNotExecutable is returned when the server binary exists but cannot be executed.
	ErrServerNotExecutable = errors.New("server binary not executable")
	// ErrNoCommand is returned when Options.Command is empty.
	ErrNoCommand = errors.New("no server command")
)

// Shell-compatible exit statuses.
const (
	ExitFailure       = 1
	ExitNotExecutable = 126
	ExitNotFound      = 127
	exitSignalBase    = 128
)

// ExitError carries the exit status of a server process that ran and
// terminated unsuccessfully.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("server exited with status %d", e.Code)
}

// ExitCode maps an error returned by Run to a process exit status.
// A nil error maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, ErrServerNotFound):
		return ExitNotFound
	case errors.Is(err, ErrServerNotExecutable):
		return ExitNotExecutable
	default:
		return ExitFailure
	}
}

// classifyStartErr wraps an error from locating or starting the server
// binary with the matching sentinel.
func classifyStartErr(name string, err error) error {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s: %v", ErrServerNotFound, name, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %v", ErrServerNotExecutable, name, err)
	default:
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
}
