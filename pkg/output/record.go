// Package output provides JSONL output for submission sweeps.
//
// Output is structured as typed record envelopes containing submissions,
// skips, errors, and a final summary. Each line is a self-contained JSON
// object that can be parsed independently, which keeps the sweep easy to
// drive from scripts and agents.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: skong.<type>.v<version>
const (
	// TypeSubmission identifies successful job submission records.
	TypeSubmission = "skong.submission.v1"

	// TypeSkip identifies skipped-candidate records.
	TypeSkip = "skong.skip.v1"

	// TypeError identifies error records.
	TypeError = "skong.error.v1"

	// TypeSummary identifies final sweep summary records.
	TypeSummary = "skong.summary.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line of JSONL output contains a Record with a type-specific
// payload in the Data field.
type Record struct {
	// Type identifies the record type (e.g., "skong.submission.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// SweepID is the correlation ID for this submission sweep.
	SweepID string `json:"sweep_id"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// SubmissionRecord is the data payload for one successful submission.
type SubmissionRecord struct {
	// Dir is the submitted project directory.
	Dir string `json:"dir"`

	// Name is the project directory's base name.
	Name string `json:"name"`

	// JobID is the scheduler-assigned job identifier.
	JobID string `json:"job_id"`

	// Timestamp is the submission time in the history-log format
	// (local "2006-01-02 15:04:05").
	Timestamp string `json:"timestamp"`

	// Restart is 1 when the job was resumed from PARTIAL, 0 otherwise.
	Restart int `json:"restart"`

	// PreviousStatus is the status the project held before submission.
	PreviousStatus string `json:"previous_status"`
}

// SkipRecord is the data payload for a candidate the sweep passed over.
type SkipRecord struct {
	// Dir is the skipped project directory.
	Dir string `json:"dir"`

	// Reason explains the skip (e.g., "missing job script").
	Reason string `json:"reason"`
}

// Error codes for ErrorRecord.
const (
	// ErrCodeSchedulerNotFound indicates the scheduler binary is absent;
	// the sweep aborted.
	ErrCodeSchedulerNotFound = "SCHEDULER_NOT_FOUND"

	// ErrCodeSubmitFailed indicates a per-candidate qsub failure.
	ErrCodeSubmitFailed = "SUBMIT_FAILED"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal = "INTERNAL"
)

// ErrorRecord is the data payload for sweep errors.
type ErrorRecord struct {
	// Code is a stable machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Dir is the candidate directory, when the error is candidate-local.
	Dir string `json:"dir,omitempty"`
}

// SummaryRecord is the data payload for the final sweep summary.
type SummaryRecord struct {
	// Candidates is the number of directories matching the target status.
	Candidates int `json:"candidates"`

	// Submitted is the number of jobs successfully submitted.
	Submitted int `json:"submitted"`

	// Skipped is the number of candidates passed over.
	Skipped int `json:"skipped"`

	// Errors is the number of per-candidate failures.
	Errors int `json:"errors"`

	// Aborted reports whether the sweep stopped on a fatal condition.
	Aborted bool `json:"aborted"`

	// Duration is the sweep wall time.
	Duration time.Duration `json:"duration_ns"`
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("writer is closed")

// WriteError wraps output write failures with the failing operation.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return "output " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
