package run

import (
	"fmt"

	"github.com/hwclass/docker-beta-wasm-example/internal/host"
)

type runExitError struct {
	code int
	msg  string
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }

// evaluateRunExit maps a finished run to the process outcome. Host failures
// (read, compile, trap, timeout) pass through and exit 1; a guest exit code is
// mirrored as is.
func evaluateRunExit(res host.Result, runErr error) error {
	if runErr != nil {
		return runErr
	}
	if res.ExitCode != 0 {
		return runExitError{code: int(res.ExitCode), msg: fmt.Sprintf("module exited with code %d", res.ExitCode)}
	}
	return nil
}
