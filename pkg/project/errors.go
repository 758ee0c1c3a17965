package project

import (
	"errors"
	"fmt"
)

// Sentinel errors for project store operations.
var (
	// ErrNotInitialized indicates the directory has no .skong tracking
	// directory. Run `skong init` first.
	ErrNotInitialized = errors.New("not initialized")

	// ErrNoStatus indicates the tracking directory exists but carries no
	// status marker at all.
	ErrNoStatus = errors.New("no status found")
)

// NotInitializedError wraps ErrNotInitialized with the offending path so
// the CLI can point the operator at the right directory.
type NotInitializedError struct {
	Dir string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("no %s directory found in %s: run 'skong init' first", TrackingDirName, e.Dir)
}

func (e *NotInitializedError) Unwrap() error {
	return ErrNotInitialized
}
