package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skonghq/skong/internal/config"
	"github.com/skonghq/skong/internal/observability"
	"github.com/skonghq/skong/pkg/manifest"
	"github.com/skonghq/skong/pkg/output"
	"github.com/skonghq/skong/pkg/project"
	"github.com/skonghq/skong/pkg/scheduler"
	"github.com/skonghq/skong/pkg/submit"
)

var subCmd = &cobra.Command{
	Use:   "sub [limit]",
	Short: "Submit INITIALIZED sibling directories to the scheduler",
	Long: `Scan the sub-directories of --path for status INITIALIZED and submit
each one's job script with qsub, up to the limit. Submitted directories
move to SUBMITTED and gain a history entry.

A missing job script skips that directory; a missing scheduler binary
aborts the sweep.

Examples:
  skong sub
  skong sub 5 --path runs
  skong sub --include 'exp-*' --rate 2
  skong sub --job-manifest sweep.yaml --output jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd, args, project.StatusInitialized)
	},
}

var continueCmd = &cobra.Command{
	Use:   "continue [limit]",
	Short: "Re-submit PARTIAL sibling directories with RESTART=1",
	Long: `Like sub, but targets directories whose jobs stopped partway
(status PARTIAL) and submits them with RESTART=1 so the job script can
resume from its last checkpoint.

Examples:
  skong continue
  skong continue 3 --path runs`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd, args, project.StatusPartial)
	},
}

var (
	sweepJobScript string
	sweepManifest  string
	sweepIncludes  []string
	sweepExcludes  []string
	sweepRate      float64
	sweepOutput    string
)

func init() {
	rootCmd.AddCommand(subCmd)
	rootCmd.AddCommand(continueCmd)

	for _, c := range []*cobra.Command{subCmd, continueCmd} {
		c.Flags().StringVar(&sweepJobScript, "job", "", "Job script filename (default from config, normally job.pbs)")
		c.Flags().StringVar(&sweepManifest, "job-manifest", "", "Sweep manifest file (YAML or JSON)")
		c.Flags().StringArrayVar(&sweepIncludes, "include", nil, "Include glob pattern for directory names (repeatable)")
		c.Flags().StringArrayVar(&sweepExcludes, "exclude", nil, "Exclude glob pattern for directory names (repeatable)")
		c.Flags().Float64Var(&sweepRate, "rate", 0, "Max scheduler submissions per second (0=unlimited)")
		c.Flags().StringVar(&sweepOutput, "output", "text", "Output format (text|jsonl)")
	}
}

// schedulerConfig returns the loaded scheduler config, falling back to
// hard defaults when commands run outside the cobra lifecycle (tests).
func schedulerConfig() config.SchedulerConfig {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg.Scheduler
	}
	return config.SchedulerConfig{
		Binary:    scheduler.DefaultBinary,
		JobScript: manifest.DefaultJobScript,
		Limit:     manifest.DefaultLimit,
	}
}

// buildSweepConfig layers flag values over the manifest over config
// defaults. The positional limit argument wins over everything.
func buildSweepConfig(cmd *cobra.Command, args []string, target project.Status) (submit.Config, func(string) bool, string, error) {
	sched := schedulerConfig()

	cfg := submit.Config{
		TargetStatus: target,
		Limit:        sched.Limit,
		JobScript:    sched.JobScript,
		RateLimit:    sched.Rate,
	}
	includes := sweepIncludes
	excludes := sweepExcludes
	parent := flagPath

	if sweepManifest != "" {
		m, err := manifest.Load(sweepManifest)
		if err != nil {
			return submit.Config{}, nil, "", exitError(foundry.ExitInvalidArgument, "Invalid sweep manifest", err)
		}
		if m.TargetStatus() != target {
			return submit.Config{}, nil, "", exitError(foundry.ExitInvalidArgument, "Manifest status conflicts with command",
				fmt.Errorf("manifest targets %s but the command targets %s", m.Sweep.Status, target))
		}
		cfg.Limit = m.Sweep.Limit
		cfg.JobScript = m.Sweep.JobScript
		if m.Sweep.Rate > 0 {
			cfg.RateLimit = m.Sweep.Rate
		}
		if m.Sweep.Path != "" {
			parent = m.Sweep.Path
		}
		if len(includes) == 0 {
			includes = m.Match.Includes
		}
		if len(excludes) == 0 {
			excludes = m.Match.Excludes
		}
	}

	if sweepJobScript != "" {
		cfg.JobScript = sweepJobScript
	}
	if cmd.Flags().Changed("rate") {
		cfg.RateLimit = sweepRate
	}
	if len(args) > 0 {
		limit, err := strconv.Atoi(args[0])
		if err != nil || limit < 0 {
			return submit.Config{}, nil, "", exitError(foundry.ExitInvalidArgument, "Invalid limit",
				fmt.Errorf("limit must be a non-negative integer, got %q", args[0]))
		}
		cfg.Limit = limit
	}

	keep, err := buildKeepFilter(includes, excludes)
	if err != nil {
		return submit.Config{}, nil, "", exitError(foundry.ExitInvalidArgument, "Invalid include/exclude patterns", err)
	}

	abs, err := filepath.Abs(parent)
	if err != nil {
		return submit.Config{}, nil, "", exitError(foundry.ExitInvalidArgument, "Invalid path", err)
	}
	return cfg, keep, abs, nil
}

func runSweep(cmd *cobra.Command, args []string, target project.Status) error {
	cfg, keep, parent, err := buildSweepConfig(cmd, args, target)
	if err != nil {
		return err
	}

	sub := submit.New(parent, scheduler.NewPBS(schedulerConfig().Binary), cfg).
		WithLogger(observability.CLILogger).
		WithKeep(keep)

	switch sweepOutput {
	case "jsonl":
		sub = sub.WithWriter(output.NewJSONLWriter(os.Stdout, sub.SweepID()))
	case "text", "":
	default:
		return exitError(foundry.ExitInvalidArgument, "Invalid --output value",
			fmt.Errorf("expected text or jsonl, got %q", sweepOutput))
	}

	results, summary, err := sub.Run(cmd.Context())
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Submission sweep failed", err)
	}

	observability.CLILogger.Debug("Sweep finished",
		zap.Int("candidates", summary.Candidates),
		zap.Int("submitted", summary.Submitted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
		zap.Bool("aborted", summary.Aborted),
		zap.Duration("duration", summary.Duration))

	if sweepOutput != "jsonl" {
		verb := "submitted"
		if target == project.StatusPartial {
			verb = "re-submitted"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d job(s) %s.\n", len(results), verb)
	}
	return nil
}
