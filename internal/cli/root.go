// Package cli wires the stagesync commands into a cobra command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stagesync",
		Short: "stagesync merges remote stage snapshots into a local working tree",
		Long: `stagesync merges remote stage snapshots into a local working tree.

Each stage has a local and a remote index of tracked elements. Merging
reconciles them element by element, fast-forwarding where possible and
falling back to a three-way merge with conflict markers.`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress console output.")

	// Add subcommands
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newAbortCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newCatIndexCmd())
	rootCmd.AddCommand(newStagesCmd())

	return rootCmd
}
