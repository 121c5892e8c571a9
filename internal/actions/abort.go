package actions

import (
	"fmt"

	"stagesync.dev/stagesync/internal/config"
	"stagesync.dev/stagesync/internal/runtime"
	"stagesync.dev/stagesync/internal/tui"
)

// AbortOptions contains options for the abort command
type AbortOptions struct {
	Force bool
}

// AbortAction drops the pending merge by removing its markers.
// Working-tree files written by the merge are left as they are.
func AbortAction(ctx *runtime.Context, opts AbortOptions) error {
	splog := ctx.Splog

	if !config.IsMergeInProgress(ctx.RepoRoot) {
		splog.Info("No merge in progress to abort.")
		return nil
	}

	// Confirm unless force is used
	if !opts.Force {
		msg := "Are you sure you want to abort the pending merge? Merged files in the working tree are not reverted."
		confirmed, err := tui.Confirm(msg, false)
		if err != nil {
			return fmt.Errorf("failed to get confirmation: %w", err)
		}
		if !confirmed {
			splog.Info("Abort canceled.")
			return nil
		}
	}

	if err := config.ClearMergeState(ctx.RepoRoot); err != nil {
		return err
	}
	splog.Info("Merge aborted.")
	return nil
}
