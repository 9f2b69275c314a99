//go:build unix

package launcher

import (
	"errors"
	"os"
	"syscall"
)

var errExecUnsupported = errors.New("exec unsupported")

var forwardedSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}

// execServer replaces the current process image. It only returns on failure.
func execServer(path string, argv, env []string) error {
	return syscall.Exec(path, argv, env)
}

func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}

// exitStatus mirrors the shell: 128+n for a child killed by signal n.
func exitStatus(state *os.ProcessState) int {
	if state == nil {
		return ExitFailure
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return exitSignalBase + int(ws.Signal())
	}
	return state.ExitCode()
}
