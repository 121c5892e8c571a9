package cli

import (
	"github.com/spf13/cobra"

	"stagesync.dev/stagesync/internal/actions"
	"stagesync.dev/stagesync/internal/cli/helpers"
	"stagesync.dev/stagesync/internal/runtime"
)

// newCatIndexCmd creates the cat-index command
func newCatIndexCmd() *cobra.Command {
	var (
		remote bool
	)

	cmd := &cobra.Command{
		Use:               "cat-index <stage|hash>",
		Short:             "Print an index as JSON",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: helpers.CompleteStages,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				_, err := actions.CatIndexAction(ctx, actions.CatIndexOptions{
					Identifier: args[0],
					Remote:     remote,
				})
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Read the remote index of the stage instead of the local one.")

	return cmd
}
