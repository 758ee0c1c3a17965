package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skonghq/skong/internal/observability"
	"github.com/skonghq/skong/pkg/project"
)

var logCmd = &cobra.Command{
	Use:   "log <entry-json> [dir]",
	Short: "Append an entry to a directory's history log",
	Long: `Append one JSON object to the directory's history.jsonl. The entry
must be a JSON object; arrays and scalars are rejected.

Examples:
  skong log '{"event":"checkpoint","step":4000}'
  skong log '{"event":"note","text":"reran with larger basis"}' runs/exp-001`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLog,
}

var logShow bool

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().BoolVar(&logShow, "show", false, "Print the history log instead of appending")
}

func runLog(cmd *cobra.Command, args []string) error {
	dir, err := targetDir(args, 1)
	if err != nil {
		return err
	}

	store := project.NewStore(dir).WithLogger(observability.CLILogger)

	if logShow {
		entries, err := store.History()
		if err != nil {
			return historyExitError(dir, err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, entry := range entries {
			if err := enc.Encode(entry); err != nil {
				return exitError(foundry.ExitFileWriteError, "Failed to write history", err)
			}
		}
		return nil
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(args[0]), &entry); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Entry must be a JSON object", err)
	}
	if entry == nil {
		return exitError(foundry.ExitInvalidArgument, "Entry must be a JSON object",
			fmt.Errorf("got JSON null"))
	}

	if err := store.Log(entry); err != nil {
		return historyExitError(dir, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Entry logged.")
	return nil
}

func historyExitError(dir string, err error) error {
	if errors.Is(err, project.ErrNotInitialized) {
		observability.CLILogger.Error("Directory is not tracked",
			zap.String("dir", dir), zap.Error(err))
		return exitError(foundry.ExitFileNotFound, "Directory is not tracked", err)
	}
	return exitError(foundry.ExitFileWriteError, "Failed to access history log", err)
}
