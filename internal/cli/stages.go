package cli

import (
	"github.com/spf13/cobra"

	"stagesync.dev/stagesync/internal/actions"
	"stagesync.dev/stagesync/internal/cli/helpers"
	"stagesync.dev/stagesync/internal/runtime"
)

// newStagesCmd creates the stages command
func newStagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List the stages with a local or remote index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				_, err := actions.StagesAction(ctx)
				return err
			})
		},
	}
	return cmd
}
