package actions

import (
	"fmt"

	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/internal/runtime"
)

func loadIndex(ctx *runtime.Context, hash index.Hash) (*index.Index, error) {
	return git.ReadIndex(ctx.Context, ctx.Objects, hash)
}

// loadStageIndex loads the index named by identifier: an index hash, or the
// local or remote ref of a stage
func loadStageIndex(ctx *runtime.Context, identifier string, remote bool) (*index.Index, index.Hash, error) {
	if hash, err := index.ParseHash(identifier); err == nil {
		idx, err := loadIndex(ctx, hash)
		if err != nil {
			return nil, "", stagesyncerrors.NewResolutionError(identifier, err)
		}
		return idx, hash, nil
	}

	if err := git.ValidateStageName(identifier); err != nil {
		return nil, "", stagesyncerrors.NewResolutionError(identifier, err)
	}

	ref := git.LocalRef(identifier)
	if remote {
		ref = git.RemoteRef(identifier)
	}
	hash, ok, err := ctx.Refs.ReadRef(ctx.Context, ref)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", stagesyncerrors.NewResolutionError(identifier, fmt.Errorf("%s does not exist", ref))
	}

	idx, err := loadIndex(ctx, hash)
	if err != nil {
		return nil, "", err
	}
	return idx, hash, nil
}
