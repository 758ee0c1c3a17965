// Package submit implements the batch submission sweep: scan sibling
// project directories for a target status, submit each one's job script
// to the scheduler, and transition the survivors to SUBMITTED.
//
// The sweep is strictly sequential. Submission order and limit accounting
// are part of the operator contract, so candidates are never processed
// concurrently.
package submit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/skonghq/skong/pkg/output"
	"github.com/skonghq/skong/pkg/project"
	"github.com/skonghq/skong/pkg/scheduler"
)

// TimestampLayout is the local-time format embedded in SUBMITTED markers
// and history entries. Part of the on-disk contract.
const TimestampLayout = "2006-01-02 15:04:05"

// Config configures a submission sweep.
type Config struct {
	// TargetStatus selects candidate directories. PARTIAL implies
	// restart semantics (RESTART=1). Default: INITIALIZED.
	TargetStatus project.Status

	// Limit caps the number of successful submissions. Zero or negative
	// submits nothing; DefaultConfig carries the conventional budget
	// of 10.
	Limit int

	// JobScript is the PBS script filename expected inside each
	// candidate. Default: job.pbs.
	JobScript string

	// RateLimit is the maximum scheduler invocations per second.
	// Zero means unlimited.
	RateLimit float64
}

// DefaultConfig returns the default sweep configuration.
func DefaultConfig() Config {
	return Config{
		TargetStatus: project.StatusInitialized,
		Limit:        10,
		JobScript:    "job.pbs",
	}
}

// Result records one successful submission.
type Result struct {
	// Dir is the submitted project directory.
	Dir string `json:"dir"`

	// Name is the directory's base name.
	Name string `json:"name"`

	// JobID is the scheduler-assigned job identifier.
	JobID string `json:"job_id"`

	// Timestamp is the submission time in TimestampLayout.
	Timestamp string `json:"timestamp"`
}

// Summary contains aggregate statistics from a completed sweep.
type Summary struct {
	// Candidates is the number of directories that matched the target
	// status when the sweep started.
	Candidates int

	// Submitted is the number of jobs successfully handed to the
	// scheduler.
	Submitted int

	// Skipped counts candidates passed over (missing script, status
	// changed underfoot).
	Skipped int

	// Errors counts per-candidate scheduler failures.
	Errors int

	// Aborted reports that the scheduler binary was missing and the
	// sweep stopped early; Submitted reflects only the successes
	// gathered before the abort.
	Aborted bool

	// Duration is the sweep wall time.
	Duration time.Duration
}

// Submitter executes one submission sweep over a parent directory.
//
// Submitter is safe for single use only. Create a new Submitter for each
// sweep.
type Submitter struct {
	parent  string
	sched   scheduler.Scheduler
	writer  output.Writer
	logger  *zap.Logger
	keep    func(name string) bool
	config  Config
	sweepID string

	// Rate limiter (nil if unlimited)
	limiter *rate.Limiter

	now func() time.Time
}

// New creates a submitter for the given parent directory.
func New(parent string, sched scheduler.Scheduler, cfg Config) *Submitter {
	defaults := DefaultConfig()
	if cfg.TargetStatus == "" {
		cfg.TargetStatus = defaults.TargetStatus
	}
	if cfg.JobScript == "" {
		cfg.JobScript = defaults.JobScript
	}

	s := &Submitter{
		parent:  parent,
		sched:   sched,
		writer:  output.Discard{},
		logger:  zap.NewNop(),
		config:  cfg,
		sweepID: uuid.New().String(),
		now:     time.Now,
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return s
}

// WithWriter attaches a machine-readable record writer for the sweep.
func (s *Submitter) WithWriter(w output.Writer) *Submitter {
	if w != nil {
		s.writer = w
	}
	return s
}

// WithLogger attaches the operator-facing logger.
func (s *Submitter) WithLogger(logger *zap.Logger) *Submitter {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithKeep restricts the sweep to candidate directory names the keep
// function accepts.
func (s *Submitter) WithKeep(keep func(name string) bool) *Submitter {
	s.keep = keep
	return s
}

// SweepID returns the correlation ID stamped on this sweep's records.
func (s *Submitter) SweepID() string {
	return s.sweepID
}

// restart returns the RESTART flag value for the configured target:
// 1 when resuming PARTIAL jobs, 0 otherwise.
func (s *Submitter) restart() int {
	if s.config.TargetStatus == project.StatusPartial {
		return 1
	}
	return 0
}

// Run executes the sweep and returns the per-candidate success records.
//
// Failure handling follows the candidate-local vs environment-wide split:
// a missing job script or a non-zero qsub exit skips the candidate and
// continues; a missing scheduler binary aborts the whole sweep, returning
// the successes gathered so far with Summary.Aborted set. Filesystem
// failures while recording a submission are returned as errors: at that
// point the job is already queued and the tracking state must not be
// silently wrong.
func (s *Submitter) Run(ctx context.Context) ([]Result, Summary, error) {
	start := s.now()
	restart := s.restart()

	candidates, err := project.ListStatus(s.parent, s.config.TargetStatus, s.keep)
	if err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{Candidates: len(candidates)}
	var results []Result
	remaining := s.config.Limit

	for _, dir := range candidates {
		if remaining <= 0 {
			s.logger.Info("Job limit reached. Stopping submission.",
				zap.Int("limit", s.config.Limit))
			break
		}
		if err := ctx.Err(); err != nil {
			return results, s.finish(ctx, summary, start), err
		}

		name := filepath.Base(dir)
		store := project.NewStore(dir).WithLogger(s.logger)

		// Re-check the marker right before submitting: a concurrent
		// sweep or the job itself may have moved the status since the
		// scan. Narrows the scan/submit window; does not close it.
		if !store.HasMarker(s.config.TargetStatus) {
			s.skip(ctx, &summary, dir, fmt.Sprintf("status is no longer %s", s.config.TargetStatus))
			continue
		}

		if _, err := os.Stat(filepath.Join(dir, s.config.JobScript)); err != nil {
			s.logger.Warn(fmt.Sprintf("No %s in %s. Skipping.", s.config.JobScript, name),
				zap.String("dir", dir),
				zap.String("job_script", s.config.JobScript))
			s.skip(ctx, &summary, dir, "missing job script")
			continue
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return results, s.finish(ctx, summary, start), err
			}
		}

		jobID, err := s.sched.Submit(ctx, scheduler.Request{
			Dir:     dir,
			Script:  s.config.JobScript,
			Restart: restart,
		})
		if errors.Is(err, scheduler.ErrNotFound) {
			s.logger.Error("Scheduler binary not found - are you on a cluster with PBS installed?",
				zap.Error(err))
			s.writeError(ctx, &output.ErrorRecord{
				Code:    output.ErrCodeSchedulerNotFound,
				Message: err.Error(),
			})
			summary.Aborted = true
			break
		}
		if err != nil {
			msg := err.Error()
			if se, ok := scheduler.IsSubmitError(err); ok {
				msg = se.Stderr
			}
			s.logger.Error(fmt.Sprintf("Submission failed for %s", name),
				zap.String("dir", dir),
				zap.String("stderr", msg))
			s.writeError(ctx, &output.ErrorRecord{
				Code:    output.ErrCodeSubmitFailed,
				Message: msg,
				Dir:     dir,
			})
			summary.Errors++
			continue
		}

		timestamp := s.now().Format(TimestampLayout)
		note := fmt.Sprintf("Timestamp: %s\nJob ID: %s\n", timestamp, jobID)
		if err := store.SetStatusNote(project.StatusSubmitted, note); err != nil {
			return results, s.finish(ctx, summary, start), fmt.Errorf("record submission for %s: %w", dir, err)
		}
		if err := store.Log(map[string]any{
			"event":           "submitted",
			"job_id":          jobID,
			"timestamp":       timestamp,
			"restart":         restart,
			"previous_status": string(s.config.TargetStatus),
		}); err != nil {
			return results, s.finish(ctx, summary, start), fmt.Errorf("log submission for %s: %w", dir, err)
		}

		s.logger.Info(fmt.Sprintf("%s submitted from %s with ID: %s", s.config.JobScript, name, jobID),
			zap.String("dir", dir),
			zap.String("job_id", jobID))
		if err := s.writer.WriteSubmission(ctx, &output.SubmissionRecord{
			Dir:            dir,
			Name:           name,
			JobID:          jobID,
			Timestamp:      timestamp,
			Restart:        restart,
			PreviousStatus: string(s.config.TargetStatus),
		}); err != nil {
			s.logger.Warn("Failed to write submission record", zap.Error(err))
		}

		results = append(results, Result{
			Dir:       dir,
			Name:      name,
			JobID:     jobID,
			Timestamp: timestamp,
		})
		summary.Submitted++
		remaining--
	}

	return results, s.finish(ctx, summary, start), nil
}

func (s *Submitter) skip(ctx context.Context, summary *Summary, dir, reason string) {
	summary.Skipped++
	if err := s.writer.WriteSkip(ctx, &output.SkipRecord{Dir: dir, Reason: reason}); err != nil {
		s.logger.Warn("Failed to write skip record", zap.Error(err))
	}
}

func (s *Submitter) writeError(ctx context.Context, rec *output.ErrorRecord) {
	if err := s.writer.WriteError(ctx, rec); err != nil {
		s.logger.Warn("Failed to write error record", zap.Error(err))
	}
}

func (s *Submitter) finish(ctx context.Context, summary Summary, start time.Time) Summary {
	summary.Duration = s.now().Sub(start)
	if err := s.writer.WriteSummary(ctx, &output.SummaryRecord{
		Candidates: summary.Candidates,
		Submitted:  summary.Submitted,
		Skipped:    summary.Skipped,
		Errors:     summary.Errors,
		Aborted:    summary.Aborted,
		Duration:   summary.Duration,
	}); err != nil {
		s.logger.Warn("Failed to write summary record", zap.Error(err))
	}
	return summary
}
