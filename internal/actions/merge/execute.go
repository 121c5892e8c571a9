package merge

import (
	"context"
	"slices"

	"github.com/samber/lo"

	"stagesync.dev/stagesync/internal/config"
	"stagesync.dev/stagesync/internal/engine"
	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/internal/runtime"
)

// Summary is the aggregated result of a merge
type Summary struct {
	Stage       string
	RemoteStage string

	Created    bool
	AllMerged  bool
	HasUpdates bool
	// ConflictFiles lists the keys left with conflict markers, sorted
	ConflictFiles []string

	Outcomes map[string]engine.Outcome
	Failures map[string]error

	// LocalHash is the hash of the newly written local index (first-time
	// population only)
	LocalHash  index.Hash
	RemoteHash index.Hash
}

// Keys returns the resolved element keys in sorted order
func (s *Summary) Keys() []string {
	keys := lo.Keys(s.Outcomes)
	slices.Sort(keys)
	return keys
}

// Execute runs the engine over a plan and persists the outcome
func Execute(ctx *runtime.Context, plan *Plan, files []string, opts engine.Options) (*Summary, error) {
	result, err := ctx.Engine().MergeStages(ctx.Context, plan.Local, plan.Remote, files, opts)
	if err != nil {
		// Nothing has been persisted, so an interrupted merge can be rerun
		return nil, err
	}

	summary := &Summary{
		Stage:         plan.LocalName,
		RemoteStage:   plan.RemoteName,
		Created:       plan.Created,
		AllMerged:     result.AllMerged(),
		HasUpdates:    result.HasUpdates(),
		ConflictFiles: result.Conflicts(),
		Outcomes:      result.Outcomes,
		Failures:      result.Failures,
		RemoteHash:    plan.RemoteHash,
	}

	switch {
	case plan.Created:
		hash, err := persistLocal(ctx.Context, ctx.Objects, ctx.Refs, plan.LocalName, result.Local)
		if err != nil {
			return nil, err
		}
		summary.LocalHash = hash
	case summary.HasUpdates:
		if err := writeMergeState(ctx.RepoRoot, plan.RemoteHash, summary.ConflictFiles); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// persistLocal writes the index, then points the local ref at it
func persistLocal(ctx context.Context, objects git.ObjectStore, refs git.RefStore, stage string, idx *index.Index) (index.Hash, error) {
	hash, err := git.WriteIndex(ctx, objects, idx)
	if err != nil {
		return "", stagesyncerrors.NewIndexWriteError(stage, err)
	}
	if hash == "" {
		return "", stagesyncerrors.NewIndexWriteError(stage, nil)
	}
	if err := refs.WriteRef(ctx, git.LocalRef(stage), hash); err != nil {
		return "", stagesyncerrors.NewIndexWriteError(stage, err)
	}
	return hash, nil
}

// writeMergeState records the pending merge for the commit step
func writeMergeState(repoRoot string, remoteHash index.Hash, conflicts []string) error {
	if err := config.WriteMergePending(repoRoot, remoteHash); err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return config.WriteMergeConflicts(repoRoot, conflicts)
	}
	return config.ClearMergeConflicts(repoRoot)
}
