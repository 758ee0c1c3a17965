package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Entry describes one tracked project found by Scan.
type Entry struct {
	// Name is the directory's base name.
	Name string `json:"name"`

	// Path is the full project directory path.
	Path string `json:"path"`

	// Status is the project's current status, or empty if the tracking
	// directory carries no marker.
	Status Status `json:"status,omitempty"`
}

// Scan lists every immediate child of parent that is a tracked project
// (a directory containing a .skong tracking directory), sorted by name.
// Non-directories and untracked directories are silently skipped.
func Scan(parent string) ([]Entry, error) {
	children, err := os.ReadDir(parent)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", parent, err)
	}

	var entries []Entry
	for _, child := range children {
		if !child.IsDir() {
			continue
		}
		store := NewStore(filepath.Join(parent, child.Name()))
		if !store.Initialized() {
			continue
		}
		entry := Entry{Name: child.Name(), Path: store.Dir()}
		if status, err := store.ReadStatus(); err == nil {
			entry.Status = status
		}
		entries = append(entries, entry)
	}

	// os.ReadDir already sorts by filename, but the ordering is a
	// documented contract here (deterministic submission order), so
	// don't rely on it implicitly.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// ListStatus returns the path of every immediate child of parent whose
// marker file for status exists, in sorted-name order. Matching is on
// marker presence, not on resolved status, so a tampered directory with
// several markers matches each of them — the same answer `ls */.skong`
// would give.
//
// keep, when non-nil, further filters candidates by directory name.
func ListStatus(parent string, status Status, keep func(name string) bool) ([]string, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status: %q", status)
	}

	children, err := os.ReadDir(parent)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", parent, err)
	}

	var matches []string
	for _, child := range children {
		if !child.IsDir() {
			continue
		}
		if keep != nil && !keep(child.Name()) {
			continue
		}
		store := NewStore(filepath.Join(parent, child.Name()))
		if !store.Initialized() {
			continue
		}
		if store.HasMarker(status) {
			matches = append(matches, store.Dir())
		}
	}

	sort.Strings(matches)
	return matches, nil
}
