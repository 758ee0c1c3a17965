// Package cmd implements the skong command line interface.
package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/gofulmen/foundry"

	"github.com/skonghq/skong/internal/config"
	"github.com/skonghq/skong/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "skong",
	Short: "Track and submit PBS batch job directories",
	Long: `skong tracks the lifecycle of batch job directories through marker
files in a .skong tracking directory, and sweeps sibling directories to
submit their job scripts to a PBS scheduler.

Each tracked directory carries exactly one status marker (INITIALIZED,
FINISHED, RUNNING, DONE, SUBMITTED, FAILED, PARTIAL) plus an append-only
history log. Jobs themselves update the markers as they run; skong reads
them back to decide what to submit next.

Examples:
  skong init runs/exp-001
  skong set-status RUNNING runs/exp-001
  skong ls INITIALIZED --path runs
  skong sub 5 --path runs
  skong continue --path runs`,
	SilenceUsage: true,
	// A bare invocation is an operator mistake: show usage but fail so
	// scripts notice.
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cmd.Help(); err != nil {
			return err
		}
		cmd.SilenceErrors = true
		return exitError(foundry.ExitInvalidArgument, "no command given", nil)
	},
}

// versionInfo is the build identity stamped in by main.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version: "dev",
}

// SetVersionInfo records the build identity for the version command and
// the status server.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	rootCmd.Version = version
}

var (
	flagPath       string
	flagLogLevel   string
	flagLogProfile string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPath, "path", ".", "Directory to operate on (parent directory for sweep commands)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&flagLogProfile, "log-profile", "", "Log profile (console|structured)")

	rootCmd.PersistentPreRunE = initRuntime
	rootCmd.Version = versionInfo.Version
}

// initRuntime loads configuration and reconfigures the logger before any
// command runs. Flag values become runtime overrides, so they beat both
// environment and config file.
func initRuntime(cmd *cobra.Command, _ []string) error {
	overrides := map[string]any{}
	logging := map[string]any{}
	if flagLogLevel != "" {
		logging["level"] = flagLogLevel
	}
	if flagLogProfile != "" {
		logging["profile"] = flagLogProfile
	}
	if len(logging) > 0 {
		overrides["logging"] = logging
	}

	cfg, err := config.Load(cmd.Context(), overrides)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}
	if err := observability.Init(cfg.Logging.Level, cfg.Logging.Profile); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid logging configuration", err)
	}
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		return ExitCode(err)
	}
	return 0
}

// exitCodeError carries a process exit code alongside the failure.
type exitCodeError struct {
	code    int
	message string
	err     error
}

func (e *exitCodeError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s (exit code %d)", e.message, e.code)
	}
	return fmt.Sprintf("%s: %v (exit code %d)", e.message, e.err, e.code)
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

func exitError(code int, message string, err error) error {
	return &exitCodeError{code: code, message: message, err: err}
}

// ExitCode resolves the process exit code for a command error.
func ExitCode(err error) int {
	var coded *exitCodeError
	if errors.As(err, &coded) {
		return coded.code
	}
	return 1
}

// targetDir resolves the directory a project-scoped command operates on:
// an optional positional argument wins over the --path flag.
func targetDir(args []string, index int) (string, error) {
	dir := flagPath
	if len(args) > index {
		dir = args[index]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", exitError(foundry.ExitInvalidArgument, "Invalid path", err)
	}
	return abs, nil
}
