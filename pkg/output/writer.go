package output

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Writer outputs JSONL records for a submission sweep.
//
// Implementations must be safe for concurrent use. Each Write* method
// emits a complete record as a single line of JSON followed by a newline.
type Writer interface {
	// WriteSubmission emits a successful submission record.
	WriteSubmission(ctx context.Context, sub *SubmissionRecord) error

	// WriteSkip emits a skipped-candidate record.
	WriteSkip(ctx context.Context, skip *SkipRecord) error

	// WriteError emits an error record.
	WriteError(ctx context.Context, rec *ErrorRecord) error

	// WriteSummary emits the final sweep summary.
	WriteSummary(ctx context.Context, sum *SummaryRecord) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// Writes are serialized with a mutex so lines are never interleaved.
type JSONLWriter struct {
	w       io.Writer
	sweepID string
	mu      sync.Mutex
	closed  bool
}

// NewJSONLWriter creates a JSONL writer stamping every record with the
// given sweep correlation ID.
func NewJSONLWriter(w io.Writer, sweepID string) *JSONLWriter {
	return &JSONLWriter{w: w, sweepID: sweepID}
}

func (jw *JSONLWriter) WriteSubmission(ctx context.Context, sub *SubmissionRecord) error {
	return jw.writeRecord(ctx, TypeSubmission, sub)
}

func (jw *JSONLWriter) WriteSkip(ctx context.Context, skip *SkipRecord) error {
	return jw.writeRecord(ctx, TypeSkip, skip)
}

func (jw *JSONLWriter) WriteError(ctx context.Context, rec *ErrorRecord) error {
	return jw.writeRecord(ctx, TypeError, rec)
}

func (jw *JSONLWriter) WriteSummary(ctx context.Context, sum *SummaryRecord) error {
	return jw.writeRecord(ctx, TypeSummary, sum)
}

// Close marks the writer as closed. The underlying io.Writer is NOT
// closed; that remains the caller's responsibility.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	jw.closed = true
	return nil
}

func (jw *JSONLWriter) writeRecord(ctx context.Context, recordType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return &WriteError{Op: "marshal_data", Err: err}
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	record := Record{
		Type:    recordType,
		TS:      time.Now().UTC(),
		SweepID: jw.sweepID,
		Data:    dataBytes,
	}

	recordBytes, err := json.Marshal(record)
	if err != nil {
		return &WriteError{Op: "marshal_record", Err: err}
	}

	// io.Writer may return n < len(p) with a nil error; a short write
	// would truncate a JSONL line, so loop until fully written.
	recordBytes = append(recordBytes, '\n')
	if err := writeAll(jw.w, recordBytes); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}

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

// Discard is a Writer that drops every record; the sweep uses it when no
// machine-readable output was requested.
type Discard struct{}

func (Discard) WriteSubmission(context.Context, *SubmissionRecord) error { return nil }
func (Discard) WriteSkip(context.Context, *SkipRecord) error            { return nil }
func (Discard) WriteError(context.Context, *ErrorRecord) error          { return nil }
func (Discard) WriteSummary(context.Context, *SummaryRecord) error      { return nil }
func (Discard) Close() error                                            { return nil }

// Compile-time checks that both writers implement Writer.
var (
	_ Writer = (*JSONLWriter)(nil)
	_ Writer = Discard{}
)
