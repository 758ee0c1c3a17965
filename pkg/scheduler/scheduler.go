// Package scheduler wraps submission to an external batch scheduler.
//
// The only implementation targets PBS via the qsub binary; the Scheduler
// interface exists so the submission sweep can be tested without a
// cluster.
package scheduler

import "context"

// Request describes one job submission.
type Request struct {
	// Dir is the working directory for the scheduler invocation. The
	// script is resolved relative to it, mirroring a manual shell
	// invocation from inside the job directory.
	Dir string

	// Script is the bare filename of the job script inside Dir.
	Script string

	// Restart is exported to the job via the RESTART environment
	// variable: 1 when resuming a PARTIAL job, 0 otherwise.
	Restart int
}

// Scheduler submits jobs to a batch system.
type Scheduler interface {
	// Submit enqueues one job and returns the scheduler-assigned job ID.
	// A missing scheduler binary is reported via ErrNotFound; a non-zero
	// exit via *SubmitError.
	Submit(ctx context.Context, req Request) (string, error)
}
