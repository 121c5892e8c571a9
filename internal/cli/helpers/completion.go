package helpers

import (
	"github.com/spf13/cobra"

	"stagesync.dev/stagesync/internal/runtime"
)

// CompleteStages is a helper for cobra.ValidArgsFunction that returns the
// names of all stages with a remote index
func CompleteStages(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) >= 2 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx, err := runtime.GetContext(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer func() {
		_ = ctx.Splog.Close()
	}()

	stages, err := ctx.Refs.ListStages(ctx.Context, true)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return stages, cobra.ShellCompDirectiveNoFileComp
}
