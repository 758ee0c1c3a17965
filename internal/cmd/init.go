package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skonghq/skong/internal/observability"
	"github.com/skonghq/skong/pkg/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Start tracking a directory",
	Long: `Create the .skong tracking directory and set the status to
INITIALIZED. Re-running init on a tracked directory resets it to
INITIALIZED without touching the history log.

Examples:
  skong init
  skong init runs/exp-001`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := targetDir(args, 0)
	if err != nil {
		return err
	}

	store := project.NewStore(dir).WithLogger(observability.CLILogger)
	tracking, err := store.Init()
	if err != nil {
		observability.CLILogger.Error("Failed to initialize tracking directory",
			zap.String("dir", dir), zap.Error(err))
		return exitError(foundry.ExitFileWriteError, "Failed to initialize tracking directory", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s in %s\n", project.TrackingDirName, tracking)
	return nil
}
