package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skonghq/skong/pkg/project"
)

func TestLoadFromBytes_YAMLWithDefaults(t *testing.T) {
	data := []byte(`version: "1.0"
sweep:
  status: PARTIAL
match:
  includes:
    - "run-*"
`)

	m, err := LoadFromBytes(data, "sweep.yaml")
	if err != nil {
		t.Fatalf("LoadFromBytes() error: %v", err)
	}

	if m.TargetStatus() != project.StatusPartial {
		t.Fatalf("status mismatch: %q", m.Sweep.Status)
	}
	if m.Sweep.Limit != DefaultLimit {
		t.Fatalf("limit default not applied: %d", m.Sweep.Limit)
	}
	if m.Sweep.JobScript != DefaultJobScript {
		t.Fatalf("job_script default not applied: %q", m.Sweep.JobScript)
	}
	if len(m.Match.Includes) != 1 || m.Match.Includes[0] != "run-*" {
		t.Fatalf("includes not parsed: %v", m.Match.Includes)
	}
}

func TestLoadFromBytes_JSON(t *testing.T) {
	data := []byte(`{"version":"1.0","sweep":{"status":"INITIALIZED","limit":3,"job_script":"run.pbs","rate":2.5}}`)

	m, err := LoadFromBytes(data, "sweep.json")
	if err != nil {
		t.Fatalf("LoadFromBytes() error: %v", err)
	}
	if m.Sweep.Limit != 3 || m.Sweep.JobScript != "run.pbs" || m.Sweep.Rate != 2.5 {
		t.Fatalf("unexpected sweep spec: %+v", m.Sweep)
	}
}

func TestLoadFromBytes_Rejections(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"bad version", `version: "2.0"` + "\nsweep:\n  status: INITIALIZED\n"},
		{"bad status", `version: "1.0"` + "\nsweep:\n  status: initialized\n"},
		{"negative limit", `version: "1.0"` + "\nsweep:\n  limit: -1\n"},
		{"negative rate", `version: "1.0"` + "\nsweep:\n  rate: -0.5\n"},
		{"not yaml or json", "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromBytes([]byte(tt.data), "sweep.yaml"); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_RoundTripFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yml")
	data := []byte("version: \"1.0\"\nsweep:\n  status: INITIALIZED\n  limit: 2\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.Sweep.Limit != 2 {
		t.Fatalf("limit mismatch: %d", m.Sweep.Limit)
	}
}

func TestLoadFromBytes_UnknownExtensionFallsBack(t *testing.T) {
	m, err := LoadFromBytes([]byte("version: \"1.0\"\nsweep:\n  status: DONE\n"), "sweep.conf")
	if err != nil {
		t.Fatalf("LoadFromBytes() error: %v", err)
	}
	if m.TargetStatus() != project.StatusDone {
		t.Fatalf("status mismatch: %q", m.Sweep.Status)
	}
}
