package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultBinary is the PBS submission binary.
const DefaultBinary = "qsub"

// PBS submits jobs through the qsub command-line binary.
//
// Invocation contract:
//
//	qsub -v RESTART=<0|1> <script>    (working directory = job directory)
//
// On success qsub prints a dot-delimited job identifier such as
// "12345.pbs-server" on stdout; the portion before the first dot is the
// job ID.
type PBS struct {
	binary string
}

// NewPBS creates a PBS scheduler client. An empty binary selects
// DefaultBinary.
func NewPBS(binary string) *PBS {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &PBS{binary: binary}
}

// Binary returns the configured scheduler binary name.
func (p *PBS) Binary() string {
	return p.binary
}

// Submit runs qsub for one job directory and returns the parsed job ID.
func (p *PBS) Submit(ctx context.Context, req Request) (string, error) {
	if req.Dir == "" {
		return "", fmt.Errorf("job directory is required")
	}
	if req.Script == "" {
		return "", fmt.Errorf("job script is required")
	}

	cmd := exec.CommandContext(ctx, p.binary, "-v", fmt.Sprintf("RESTART=%d", req.Restart), req.Script)
	cmd.Dir = req.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// A bare name off $PATH yields exec.ErrNotFound; an explicit
		// path that does not exist yields a PathError.
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p.binary)
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &SubmitError{
			Binary:   p.binary,
			Dir:      req.Dir,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
		}
	}

	return ParseJobID(stdout.String()), nil
}

// ParseJobID extracts the job identifier from a scheduler response of the
// form "<id>.<server-name>". Responses without a dot are returned as-is.
func ParseJobID(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// Compile-time check that PBS implements Scheduler.
var _ Scheduler = (*PBS)(nil)
