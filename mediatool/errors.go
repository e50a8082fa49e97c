package mediatool

import (
	"errors"
	"fmt"
	"strings"
)

// ExecError describes a failed run of an external media binary.
type ExecError struct {
	Binary   string
	Args     []string
	ExitCode int
	Stderr   string
	Timeout  bool
}

func (e *ExecError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timed out", e.Binary)
	}

	msg := fmt.Sprintf("%s exited with code %d", e.Binary, e.ExitCode)
	if tail := lastStderrLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// AsExecError unwraps err into an ExecError when possible.
func AsExecError(err error) (*ExecError, bool) {
	var execErr *ExecError
	if errors.As(err, &execErr) {
		return execErr, true
	}
	return nil, false
}

// IsTimeout reports whether err represents an external tool hitting its
// execution deadline.
func IsTimeout(err error) bool {
	execErr, ok := AsExecError(err)
	return ok && execErr.Timeout
}

func lastStderrLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
