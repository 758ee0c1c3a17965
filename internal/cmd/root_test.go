package cmd

import (
	"errors"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"
)

func TestSetVersionInfo(t *testing.T) {
	origVersion := versionInfo.Version
	origCommit := versionInfo.Commit
	origBuildDate := versionInfo.BuildDate
	defer func() {
		SetVersionInfo(origVersion, origCommit, origBuildDate)
	}()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
	}{
		{
			name:      "set all values",
			version:   "1.0.0",
			commit:    "abc123",
			buildDate: "2026-01-15",
		},
		{
			name:      "set dev version",
			version:   "dev",
			commit:    "HEAD",
			buildDate: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersionInfo(tt.version, tt.commit, tt.buildDate)

			assert.Equal(t, tt.version, versionInfo.Version)
			assert.Equal(t, tt.commit, versionInfo.Commit)
			assert.Equal(t, tt.buildDate, versionInfo.BuildDate)
			assert.Equal(t, tt.version, rootCmd.Version)
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "coded error",
			err:  exitError(foundry.ExitInvalidArgument, "bad input", errors.New("boom")),
			want: foundry.ExitInvalidArgument,
		},
		{
			name: "wrapped coded error",
			err:  errors.Join(errors.New("outer"), exitError(foundry.ExitFileNotFound, "missing", nil)),
			want: foundry.ExitFileNotFound,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	err := exitError(3, "bad flag", errors.New("boom"))
	assert.Contains(t, err.Error(), "bad flag")
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "exit code 3")
}
