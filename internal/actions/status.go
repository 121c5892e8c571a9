package actions

import (
	"errors"

	"stagesync.dev/stagesync/internal/config"
	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/internal/runtime"
	"stagesync.dev/stagesync/internal/tui"
)

// Status describes the pending merge, if any
type Status struct {
	MergeInProgress bool
	RemoteHash      index.Hash
	// RemoteStage is the stage name recorded in the pending remote index
	RemoteStage string
	Conflicts   []string
}

// StatusAction reports the merge state markers
func StatusAction(ctx *runtime.Context) (*Status, error) {
	splog := ctx.Splog

	hash, err := config.ReadMergePending(ctx.RepoRoot)
	if errors.Is(err, stagesyncerrors.ErrNoMergeInProgress) {
		splog.Info("No merge in progress.")
		return &Status{}, nil
	}
	if err != nil {
		return nil, err
	}

	conflicts, err := config.ReadMergeConflicts(ctx.RepoRoot)
	if err != nil {
		return nil, err
	}

	status := &Status{
		MergeInProgress: true,
		RemoteHash:      hash,
		Conflicts:       conflicts,
	}

	description := hash.Short()
	if remote, err := loadIndex(ctx, hash); err == nil {
		status.RemoteStage = remote.StageName
		description = remote.StageName + " (" + hash.Short() + ")"
	} else {
		splog.Debug("Could not load pending remote index %s: %v", hash, err)
	}

	splog.Info("Merge in progress from %s.", tui.ColorCyan(description))
	if len(conflicts) == 0 {
		splog.Info("%s", tui.ColorGreen("All elements merged cleanly."))
		return status, nil
	}

	splog.Newline()
	PrintConflictStatus(splog, status.RemoteStage, conflicts)
	return status, nil
}
