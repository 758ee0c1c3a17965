// Package manifest loads submission sweep manifests.
//
// A manifest captures a repeatable sweep as a file: which status to
// target, how many jobs to submit, which script to run, and which
// candidate directories are in scope. `skong sub --job-manifest
// sweep.yaml` replays it.
package manifest

import (
	"fmt"

	"github.com/skonghq/skong/pkg/project"
)

// SupportedVersion is the manifest schema version this build accepts.
const SupportedVersion = "1.0"

// Manifest describes one submission sweep.
type Manifest struct {
	// Version is the manifest schema version. Required; must equal
	// SupportedVersion.
	Version string `yaml:"version" json:"version"`

	// Sweep configures the submission pass.
	Sweep SweepSpec `yaml:"sweep" json:"sweep"`

	// Match scopes the sweep to a subset of candidate directory names.
	Match MatchSpec `yaml:"match,omitempty" json:"match,omitempty"`
}

// SweepSpec configures the submission pass.
type SweepSpec struct {
	// Status selects candidates; defaults to INITIALIZED. PARTIAL
	// implies restart semantics.
	Status string `yaml:"status,omitempty" json:"status,omitempty"`

	// Path is the parent directory to scan; defaults to the CLI --path.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Limit caps the number of submissions; defaults to 10.
	Limit int `yaml:"limit,omitempty" json:"limit,omitempty"`

	// JobScript is the PBS script filename inside each candidate;
	// defaults to job.pbs.
	JobScript string `yaml:"job_script,omitempty" json:"job_script,omitempty"`

	// Rate caps scheduler invocations per second; 0 means unlimited.
	Rate float64 `yaml:"rate,omitempty" json:"rate,omitempty"`
}

// MatchSpec holds candidate-name glob patterns.
type MatchSpec struct {
	Includes []string `yaml:"includes,omitempty" json:"includes,omitempty"`
	Excludes []string `yaml:"excludes,omitempty" json:"excludes,omitempty"`
}

// DefaultJobScript is the conventional PBS script filename.
const DefaultJobScript = "job.pbs"

// DefaultLimit is the conventional submission budget.
const DefaultLimit = 10

// ApplyDefaults fills optional fields with their documented defaults.
func (m *Manifest) ApplyDefaults() {
	if m.Sweep.Status == "" {
		m.Sweep.Status = string(project.StatusInitialized)
	}
	if m.Sweep.Limit == 0 {
		m.Sweep.Limit = DefaultLimit
	}
	if m.Sweep.JobScript == "" {
		m.Sweep.JobScript = DefaultJobScript
	}
}

// Validate checks the manifest for structural problems. Call after
// ApplyDefaults.
func (m *Manifest) Validate() error {
	if m.Version != SupportedVersion {
		return fmt.Errorf("unsupported manifest version %q (want %q)", m.Version, SupportedVersion)
	}
	if _, err := project.ParseStatus(m.Sweep.Status); err != nil {
		return fmt.Errorf("sweep.status: %w", err)
	}
	if m.Sweep.Limit < 0 {
		return fmt.Errorf("sweep.limit must be >= 0, got %d", m.Sweep.Limit)
	}
	if m.Sweep.Rate < 0 {
		return fmt.Errorf("sweep.rate must be >= 0, got %g", m.Sweep.Rate)
	}
	return nil
}

// TargetStatus returns the parsed sweep status. Validate must have
// succeeded.
func (m *Manifest) TargetStatus() project.Status {
	status, _ := project.ParseStatus(m.Sweep.Status)
	return status
}
