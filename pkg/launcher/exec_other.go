//go:build !unix

package launcher

import (
	"errors"
	"os"
)

var errExecUnsupported = errors.New("exec unsupported")

var forwardedSignals = []os.Signal{os.Interrupt}

func execServer(string, []string, []string) error {
	return errExecUnsupported
}

func terminate(p *os.Process) error {
	return p.Kill()
}

func exitStatus(state *os.ProcessState) int {
	if state == nil {
		return ExitFailure
	}
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	return ExitFailure
}
