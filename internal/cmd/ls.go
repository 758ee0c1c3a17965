package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/skonghq/skong/pkg/match"
	"github.com/skonghq/skong/pkg/project"
)

var lsCmd = &cobra.Command{
	Use:   "ls <status>",
	Short: "List sub-directories with a given status",
	Long: `List the sub-directories of --path whose status marker matches the
given status, sorted by name.

Examples:
  skong ls INITIALIZED
  skong ls PARTIAL --path runs
  skong ls DONE --include 'exp-*' --json`,
	Args: cobra.ExactArgs(1),
	RunE: runLs,
}

var (
	lsIncludes []string
	lsExcludes []string
	lsJSON     bool
)

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().StringArrayVar(&lsIncludes, "include", nil, "Include glob pattern for directory names (repeatable)")
	lsCmd.Flags().StringArrayVar(&lsExcludes, "exclude", nil, "Exclude glob pattern for directory names (repeatable)")
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "Emit the listing as JSON")
}

// buildKeepFilter compiles --include/--exclude patterns into a name
// filter, or nil when no patterns were given.
func buildKeepFilter(includes, excludes []string) (func(name string) bool, error) {
	if len(includes) == 0 && len(excludes) == 0 {
		return nil, nil
	}
	m, err := match.New(match.Config{Includes: includes, Excludes: excludes})
	if err != nil {
		return nil, err
	}
	return m.Match, nil
}

func runLs(cmd *cobra.Command, args []string) error {
	status, err := project.ParseStatus(args[0])
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid status", err)
	}

	parent, err := filepath.Abs(flagPath)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid path", err)
	}

	keep, err := buildKeepFilter(lsIncludes, lsExcludes)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid include/exclude patterns", err)
	}

	dirs, err := project.ListStatus(parent, status, keep)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Failed to list directories", err)
	}

	names := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		names = append(names, filepath.Base(dir))
	}

	if lsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(map[string]any{
			"status":      status,
			"directories": names,
		})
	}

	if len(names) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No sub-directories with status %s.\n", status)
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
