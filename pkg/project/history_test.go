package project

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestStore_LogAppendsInOrder(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if _, err := s.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	const n = 5
	for i := 0; i < n; i++ {
		if err := s.Log(map[string]any{"step": i, "energy": -42.5}); err != nil {
			t.Fatalf("Log(%d) error: %v", i, err)
		}
	}

	f, err := os.Open(s.HistoryPath())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lines := 0
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		if got := entry["step"]; got != float64(lines) {
			t.Fatalf("line %d out of order: step=%v", lines+1, got)
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan history: %v", err)
	}
	if lines != n {
		t.Fatalf("expected %d lines, got %d", n, lines)
	}
}

func TestStore_LogRequiresInit(t *testing.T) {
	s := NewStore(t.TempDir())

	err := s.Log(map[string]any{"event": "test"})
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestStore_HistoryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if _, err := s.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	want := []map[string]any{
		{"event": "submitted", "job_id": "9876"},
		{"note": "manual restart"},
	}
	for _, entry := range want {
		if err := s.Log(entry); err != nil {
			t.Fatalf("Log() error: %v", err)
		}
	}

	got, err := s.History()
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("entry count mismatch: got=%d want=%d", len(got), len(want))
	}
	if got[0]["event"] != "submitted" || got[0]["job_id"] != "9876" {
		t.Fatalf("unexpected first entry: %v", got[0])
	}
	if got[1]["note"] != "manual restart" {
		t.Fatalf("unexpected second entry: %v", got[1])
	}
}

func TestStore_HistoryMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if _, err := s.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	got, err := s.History()
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(got))
	}
}

func TestStore_HistorySurvivesStatusChanges(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if _, err := s.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Log(map[string]any{"step": fmt.Sprintf("%d", i)}); err != nil {
			t.Fatalf("Log() error: %v", err)
		}
		if err := s.SetStatus(StatusRunning); err != nil {
			t.Fatalf("SetStatus() error: %v", err)
		}
	}

	got, err := s.History()
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("status changes must not truncate history: got %d entries", len(got))
	}
}
