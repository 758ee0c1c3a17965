package cmd

import (
	"errors"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skonghq/skong/internal/observability"
	"github.com/skonghq/skong/pkg/project"
)

var setStatusCmd = &cobra.Command{
	Use:   "set-status <status> [dir]",
	Short: "Set the status of a tracked directory",
	Long: `Replace the directory's status marker. The status must be one of
INITIALIZED, FINISHED, RUNNING, DONE, SUBMITTED, FAILED, PARTIAL.

Examples:
  skong set-status RUNNING
  skong set-status DONE runs/exp-001`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSetStatus,
}

var readStatusCmd = &cobra.Command{
	Use:   "read-status [dir]",
	Short: "Print the status of a tracked directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReadStatus,
	// The no-status case prints its own message; everything else is
	// logged below.
	SilenceErrors: true,
}

var readStatusJSON bool

func init() {
	rootCmd.AddCommand(setStatusCmd)
	rootCmd.AddCommand(readStatusCmd)

	readStatusCmd.Flags().BoolVar(&readStatusJSON, "json", false, "Emit the status as JSON")
}

func runSetStatus(cmd *cobra.Command, args []string) error {
	status, err := project.ParseStatus(args[0])
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid status", err)
	}

	dir, err := targetDir(args, 1)
	if err != nil {
		return err
	}

	store := project.NewStore(dir).WithLogger(observability.CLILogger)
	if err := store.SetStatus(status); err != nil {
		if errors.Is(err, project.ErrNotInitialized) {
			return exitError(foundry.ExitFileNotFound, "Directory is not tracked", err)
		}
		return exitError(foundry.ExitFileWriteError, "Failed to set status", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Status set to %s\n", status)
	return nil
}

func runReadStatus(cmd *cobra.Command, args []string) error {
	dir, err := targetDir(args, 0)
	if err != nil {
		return err
	}

	store := project.NewStore(dir).WithLogger(observability.CLILogger)
	status, err := store.ReadStatus()
	if errors.Is(err, project.ErrNoStatus) {
		fmt.Fprintln(cmd.OutOrStdout(), "No status found.")
		return exitError(1, "no status found", err)
	}
	if err != nil {
		if errors.Is(err, project.ErrNotInitialized) {
			observability.CLILogger.Error("Directory is not tracked",
				zap.String("dir", dir), zap.Error(err))
			return exitError(foundry.ExitFileNotFound, "Directory is not tracked", err)
		}
		observability.CLILogger.Error("Failed to read status",
			zap.String("dir", dir), zap.Error(err))
		return exitError(foundry.ExitFileNotFound, "Failed to read status", err)
	}

	if readStatusJSON {
		fmt.Fprintf(cmd.OutOrStdout(), "{\"status\":%q}\n", status)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}
