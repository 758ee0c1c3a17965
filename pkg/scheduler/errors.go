package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates the scheduler binary is not installed or not on
// PATH. This is an environment-wide condition: a submission sweep aborts
// on it instead of skipping to the next candidate.
var ErrNotFound = errors.New("scheduler binary not found")

// SubmitError reports a scheduler invocation that ran but exited
// non-zero. It is candidate-local: a sweep logs it and continues.
type SubmitError struct {
	// Binary is the scheduler binary that was invoked.
	Binary string

	// Dir is the working directory of the failed invocation.
	Dir string

	// ExitCode is the scheduler's exit code, or -1 if unknown.
	ExitCode int

	// Stderr is the captured diagnostic output.
	Stderr string
}

func (e *SubmitError) Error() string {
	msg := fmt.Sprintf("%s failed in %s (exit %d)", e.Binary, e.Dir, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// IsSubmitError reports whether err is a candidate-local submission
// failure and returns it if so.
func IsSubmitError(err error) (*SubmitError, bool) {
	var se *SubmitError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
