package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_InitSetsInitialized(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	tracking, err := s.Init()
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if tracking != filepath.Join(dir, TrackingDirName) {
		t.Fatalf("unexpected tracking dir: %s", tracking)
	}

	got, err := s.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus() error: %v", err)
	}
	if got != StatusInitialized {
		t.Fatalf("status mismatch: got=%q want=%q", got, StatusInitialized)
	}
}

func TestStore_InitIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if _, err := s.Init(); err != nil {
		t.Fatalf("first Init() error: %v", err)
	}
	if err := s.SetStatus(StatusRunning); err != nil {
		t.Fatalf("SetStatus() error: %v", err)
	}
	if _, err := s.Init(); err != nil {
		t.Fatalf("second Init() error: %v", err)
	}

	got, err := s.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus() error: %v", err)
	}
	if got != StatusInitialized {
		t.Fatalf("re-init should reset status: got=%q", got)
	}
}

func TestStore_SetStatusRoundTripLeavesSingleMarker(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if _, err := s.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	for _, status := range Statuses() {
		if err := s.SetStatus(status); err != nil {
			t.Fatalf("SetStatus(%s) error: %v", status, err)
		}

		got, err := s.ReadStatus()
		if err != nil {
			t.Fatalf("ReadStatus() after %s error: %v", status, err)
		}
		if got != status {
			t.Fatalf("status mismatch: got=%q want=%q", got, status)
		}

		entries, err := os.ReadDir(s.TrackingDir())
		if err != nil {
			t.Fatalf("read tracking dir: %v", err)
		}
		markers := 0
		for _, e := range entries {
			if e.Name() != HistoryFileName {
				markers++
			}
		}
		if markers != 1 {
			t.Fatalf("expected exactly one marker after SetStatus(%s), got %d", status, markers)
		}
	}
}

func TestStore_SetStatusRequiresInit(t *testing.T) {
	s := NewStore(t.TempDir())

	err := s.SetStatus(StatusRunning)
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestStore_SetStatusRejectsUnknown(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	if err := s.SetStatus(Status("BOGUS")); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestStore_ReadStatusRequiresInit(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.ReadStatus()
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestStore_ReadStatusNoMarker(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := os.MkdirAll(s.TrackingDir(), 0755); err != nil {
		t.Fatalf("mkdir tracking: %v", err)
	}

	_, err := s.ReadStatus()
	if !errors.Is(err, ErrNoStatus) {
		t.Fatalf("expected ErrNoStatus, got %v", err)
	}
}

func TestStore_ReadStatusFirstDeclaredWinsOnTamperedTree(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if _, err := s.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	// Manually violate the single-marker invariant: RUNNING declares
	// before PARTIAL, so RUNNING must win regardless of file mtimes.
	for _, name := range []string{"PARTIAL", "RUNNING"} {
		if err := os.WriteFile(filepath.Join(s.TrackingDir(), name), nil, 0644); err != nil {
			t.Fatalf("write marker %s: %v", name, err)
		}
	}
	if err := os.Remove(s.MarkerPath(StatusInitialized)); err != nil {
		t.Fatalf("remove INITIALIZED marker: %v", err)
	}

	got, err := s.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus() error: %v", err)
	}
	if got != StatusRunning {
		t.Fatalf("expected first declared status RUNNING, got %q", got)
	}
}

func TestStore_SetStatusNotePersistsContent(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if _, err := s.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	note := "Timestamp: 2026-08-23 10:00:00\nJob ID: 9876\n"
	if err := s.SetStatusNote(StatusSubmitted, note); err != nil {
		t.Fatalf("SetStatusNote() error: %v", err)
	}

	got, err := s.ReadNote(StatusSubmitted)
	if err != nil {
		t.Fatalf("ReadNote() error: %v", err)
	}
	if got != note {
		t.Fatalf("note mismatch: got=%q want=%q", got, note)
	}

	status, err := s.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus() error: %v", err)
	}
	if status != StatusSubmitted {
		t.Fatalf("status mismatch: got=%q", status)
	}
}

func TestParseStatus(t *testing.T) {
	for _, status := range Statuses() {
		got, err := ParseStatus(string(status))
		if err != nil {
			t.Fatalf("ParseStatus(%s) error: %v", status, err)
		}
		if got != status {
			t.Fatalf("ParseStatus(%s) = %q", status, got)
		}
	}

	if _, err := ParseStatus("running"); err == nil {
		t.Fatal("expected error for lowercase status")
	}
	if _, err := ParseStatus(""); err == nil {
		t.Fatal("expected error for empty status")
	}
}
