package project

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Log appends entry as one JSON line to the project's history.jsonl,
// creating the file if absent. Entries carry no fixed schema; system
// events (submission) populate event, job_id, timestamp, restart, and
// previous_status, while operators may log arbitrary objects.
//
// There is no rotation, size limit, or concurrent-writer protection: the
// log is an operator-scale audit trail, not a message bus.
func (s *Store) Log(entry map[string]any) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(s.HistoryPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open history log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := writeAll(f, line); err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// History returns every entry in the project's history log, in append
// order. A missing log file yields an empty history, not an error.
func (s *Store) History() ([]map[string]any, error) {
	if err := s.requireInitialized(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.HistoryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("parse history line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history log: %w", err)
	}
	return entries, nil
}

// writeAll writes all bytes to w, handling short writes.
//
// io.Writer.Write may return n < len(p) with a nil error; a short write
// here would truncate a JSONL line and corrupt the history log.
func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
