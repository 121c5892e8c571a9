package cli

import (
	"github.com/spf13/cobra"

	"stagesync.dev/stagesync/internal/actions/merge"
	"stagesync.dev/stagesync/internal/cli/helpers"
	"stagesync.dev/stagesync/internal/runtime"
)

// newMergeCmd creates the merge command
func newMergeCmd() *cobra.Command {
	var (
		files         []string
		noWorkingTree bool
		outDir        string
	)

	cmd := &cobra.Command{
		Use:   "merge <stage> [remote-stage]",
		Short: "Merge the remote index of a stage into the working tree",
		Long: `Merges the remote index of a stage into its local state.

Either stage may be given as a name or as an index hash. The remote stage
defaults to the local one. When no local index exists yet, it is created from
the remote. Otherwise the merge is recorded as pending, together with the list
of elements left with conflict markers.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: helpers.CompleteStages,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				opts := merge.Options{
					Stage:  args[0],
					Files:  files,
					Engine: ctx.EngineOptions(),
				}
				if len(args) == 2 {
					opts.RemoteStage = args[1]
				}
				if noWorkingTree {
					opts.Engine.IncludeWorkingTree = false
				}
				opts.Engine.OutDir = outDir

				_, err := merge.Action(ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Only merge this element (<type>/<name>); repeatable.")
	cmd.Flags().BoolVar(&noWorkingTree, "no-working-tree", false, "Decide from index hashes only, ignoring existing working files.")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Write element files under this directory of the checkout.")

	return cmd
}
