package cli

import (
	"github.com/spf13/cobra"

	"stagesync.dev/stagesync/internal/actions"
	"stagesync.dev/stagesync/internal/cli/helpers"
	"stagesync.dev/stagesync/internal/runtime"
)

// newDiffCmd creates the diff command
func newDiffCmd() *cobra.Command {
	var (
		outDir string
	)

	cmd := &cobra.Command{
		Use:               "diff <stage> <type/name>",
		Short:             "Show how a working file differs from the remote content",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: helpers.CompleteStages,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				_, err := actions.DiffAction(ctx, actions.DiffOptions{
					Stage:  args[0],
					Key:    args[1],
					OutDir: outDir,
				})
				return err
			})
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "Read element files under this directory of the checkout.")

	return cmd
}
