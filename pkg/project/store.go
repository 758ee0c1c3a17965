package project

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	// TrackingDirName is the hidden per-project directory holding marker
	// files and the history log.
	TrackingDirName = ".skong"

	// HistoryFileName is the append-only JSON-lines history log inside
	// the tracking directory.
	HistoryFileName = "history.jsonl"
)

// Store reads and writes the tracking state of a single project directory.
//
// Directory layout:
//
//	<dir>/.skong/<STATUS>        status marker (zero-byte or metadata text)
//	<dir>/.skong/history.jsonl   append-only history log
//
// The store enforces the single-marker invariant on every write: setting a
// status removes every other marker first. Reads tolerate a violated
// invariant (manual tampering) by resolving to the first status in
// declaration order and logging the inconsistency.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a store for the given project directory.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Clean(dir), logger: zap.NewNop()}
}

// WithLogger attaches a logger used for inconsistency warnings.
func (s *Store) WithLogger(logger *zap.Logger) *Store {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Dir returns the project directory.
func (s *Store) Dir() string {
	return s.dir
}

// TrackingDir returns the .skong directory for this project.
func (s *Store) TrackingDir() string {
	return filepath.Join(s.dir, TrackingDirName)
}

// MarkerPath returns the marker file path for the given status.
func (s *Store) MarkerPath(status Status) string {
	return filepath.Join(s.TrackingDir(), string(status))
}

// HistoryPath returns the history log path for this project.
func (s *Store) HistoryPath() string {
	return filepath.Join(s.TrackingDir(), HistoryFileName)
}

// Initialized reports whether the tracking directory exists.
func (s *Store) Initialized() bool {
	info, err := os.Stat(s.TrackingDir())
	return err == nil && info.IsDir()
}

// requireInitialized returns an error unless the tracking directory exists.
func (s *Store) requireInitialized() error {
	if !s.Initialized() {
		abs, err := filepath.Abs(s.dir)
		if err != nil {
			abs = s.dir
		}
		return &NotInitializedError{Dir: abs}
	}
	return nil
}

// Init creates the tracking directory (idempotent) and sets the status to
// INITIALIZED. It returns the tracking directory path.
func (s *Store) Init() (string, error) {
	tracking := s.TrackingDir()
	if err := os.MkdirAll(tracking, 0755); err != nil {
		return "", fmt.Errorf("create tracking dir: %w", err)
	}
	if err := s.SetStatus(StatusInitialized); err != nil {
		return "", err
	}
	return tracking, nil
}

// SetStatus transitions the project to status, removing every other marker
// first. Any status may overwrite any other; no transition table is
// enforced. The batch submitter relies on this direct-overwrite semantic.
//
// INITIALIZED is the bootstrap case and may be set before the tracking
// directory exists (Init creates it); every other status requires an
// initialized project.
func (s *Store) SetStatus(status Status) error {
	return s.writeMarker(status, nil)
}

// SetStatusNote transitions the project to status like SetStatus, but
// writes human-readable metadata text into the marker file. The submitter
// uses this to embed the timestamp and job ID in the SUBMITTED marker.
func (s *Store) SetStatusNote(status Status, note string) error {
	return s.writeMarker(status, []byte(note))
}

func (s *Store) writeMarker(status Status, content []byte) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status: %q", status)
	}
	if status != StatusInitialized {
		if err := s.requireInitialized(); err != nil {
			return err
		}
	}

	tracking := s.TrackingDir()
	for _, known := range statuses {
		if known == status {
			continue
		}
		if err := os.Remove(filepath.Join(tracking, string(known))); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s marker: %w", known, err)
		}
	}

	if err := os.WriteFile(filepath.Join(tracking, string(status)), content, 0644); err != nil {
		return fmt.Errorf("write %s marker: %w", status, err)
	}
	return nil
}

// ReadStatus returns the current status of the project.
//
// Markers are probed in declaration order, so if the single-marker
// invariant has been violated the first declared status wins; the extra
// markers are logged, not treated as an error.
func (s *Store) ReadStatus() (Status, error) {
	if err := s.requireInitialized(); err != nil {
		return "", err
	}

	found := s.markers()
	if len(found) == 0 {
		return "", ErrNoStatus
	}
	if len(found) > 1 {
		s.logger.Warn("Multiple status markers present; using first declared",
			zap.String("dir", s.dir),
			zap.Strings("markers", statusStrings(found)))
	}
	return found[0], nil
}

// HasMarker reports whether the marker file for status exists, without
// resolving declaration-order ties. The batch scanner matches on marker
// presence, mirroring a manual `ls .skong`.
func (s *Store) HasMarker(status Status) bool {
	_, err := os.Stat(s.MarkerPath(status))
	return err == nil
}

// ReadNote returns the metadata text stored in the marker file for status.
func (s *Store) ReadNote(status Status) (string, error) {
	if err := s.requireInitialized(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(s.MarkerPath(status))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// markers returns every present marker in declaration order.
func (s *Store) markers() []Status {
	var found []Status
	for _, status := range statuses {
		if s.HasMarker(status) {
			found = append(found, status)
		}
	}
	return found
}

func statusStrings(in []Status) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
