package cli

import (
	"github.com/spf13/cobra"

	"stagesync.dev/stagesync/internal/actions"
	"stagesync.dev/stagesync/internal/cli/helpers"
	"stagesync.dev/stagesync/internal/runtime"
)

// newAbortCmd creates the abort command
func newAbortCmd() *cobra.Command {
	var (
		force bool
	)

	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Drop the pending merge",
		Long: `Removes the merge-pending and conflict markers left by the last merge.

Element files already written to the working tree are not reverted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.AbortAction(ctx, actions.AbortOptions{Force: force})
			})
		},
	}

	// Add flags
	cmd.Flags().BoolVarP(&force, "yes", "y", false, "Do not prompt for confirmation; abort immediately.")

	return cmd
}
