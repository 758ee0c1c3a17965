// Package project implements directory-based tracking of computational
// jobs. Each tracked project is a plain directory carrying a hidden
// .skong/ subdirectory; the current lifecycle status is encoded as the
// presence of a marker file named after the status, and an append-only
// history.jsonl records events.
//
// The marker-file layout is operator-visible on purpose: `ls .skong`
// answers "what state is this job in" without any tooling.
package project

import "fmt"

// Status is the lifecycle status of a tracked project.
//
// NOTE: Status values double as marker file names inside .skong/ and are
// part of the stable on-disk contract.
type Status string

const (
	StatusInitialized Status = "INITIALIZED"
	StatusFinished    Status = "FINISHED"
	StatusRunning     Status = "RUNNING"
	StatusDone        Status = "DONE"
	StatusSubmitted   Status = "SUBMITTED"
	StatusFailed      Status = "FAILED"
	StatusPartial     Status = "PARTIAL"
)

// statuses lists every status in declaration order. Reads resolve marker
// ties by scanning this slice front to back, so the order is load-bearing
// and must not be rearranged.
var statuses = []Status{
	StatusInitialized,
	StatusFinished,
	StatusRunning,
	StatusDone,
	StatusSubmitted,
	StatusFailed,
	StatusPartial,
}

// Statuses returns all valid statuses in declaration order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// StatusNames returns the string form of every valid status, for CLI
// completion and flag validation.
func StatusNames() []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// ParseStatus converts a user-supplied string into a Status.
func ParseStatus(s string) (Status, error) {
	for _, known := range statuses {
		if string(known) == s {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown status: %q", s)
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
