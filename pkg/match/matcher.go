// Package match filters candidate project directories by name.
//
// Include/exclude globs let an operator scope a listing or submission
// sweep to part of a project tree, e.g. --include 'run-*' --exclude
// '*-broken'.
package match

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates glob patterns against project directory names.
//
//   - Include patterns: the name must match at least one (an empty
//     include list matches everything).
//   - Exclude patterns: the name must not match any.
//
// The Matcher is safe for concurrent use after creation.
type Matcher struct {
	includes []string
	excludes []string
}

// Config configures a Matcher.
type Config struct {
	// Includes are glob patterns the directory name must match. Empty
	// means match all.
	Includes []string

	// Excludes are glob patterns the directory name must not match.
	Excludes []string
}

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// New creates a Matcher, validating every pattern up front so a typo
// fails the command instead of silently matching nothing.
func New(cfg Config) (*Matcher, error) {
	for _, raw := range append(append([]string{}, cfg.Includes...), cfg.Excludes...) {
		if !doublestar.ValidatePattern(raw) {
			return nil, &PatternError{Pattern: raw, Err: ErrInvalidPattern}
		}
	}
	return &Matcher{
		includes: cfg.Includes,
		excludes: cfg.Excludes,
	}, nil
}

// Match reports whether a directory name passes the include/exclude
// patterns. Excludes win over includes.
func (m *Matcher) Match(name string) bool {
	for _, p := range m.excludes {
		if ok, _ := doublestar.Match(p, name); ok {
			return false
		}
	}
	if len(m.includes) == 0 {
		return true
	}
	for _, p := range m.includes {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Empty reports whether the matcher has no patterns at all (matches
// every name).
func (m *Matcher) Empty() bool {
	return len(m.includes) == 0 && len(m.excludes) == 0
}
