package merge

import (
	"context"
	"errors"

	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
)

// Side is one resolved side of a merge.
// Pinned is set when the identifier was an index hash; the pinned index is
// used instead of the stage's ref.
type Side struct {
	Name       string
	Pinned     *index.Index
	PinnedHash index.Hash
}

// IsPinned reports whether the side was given as an index hash
func (s Side) IsPinned() bool {
	return s.Pinned != nil
}

// Resolution holds the canonical local and remote sides of a merge
type Resolution struct {
	Local  Side
	Remote Side
}

// Resolve turns the stage identifiers into canonical stage names, loading
// the index of any identifier given as a hash. An empty remoteStage defaults
// to the resolved local stage name.
func Resolve(ctx context.Context, objects git.ObjectStore, stage, remoteStage string) (*Resolution, error) {
	local, err := resolveIdentifier(ctx, objects, stage)
	if err != nil {
		return nil, err
	}

	remote := Side{Name: local.Name}
	if remoteStage != "" {
		remote, err = resolveIdentifier(ctx, objects, remoteStage)
		if err != nil {
			return nil, err
		}
	}

	return &Resolution{Local: local, Remote: remote}, nil
}

func resolveIdentifier(ctx context.Context, objects git.ObjectStore, identifier string) (Side, error) {
	if identifier == "" {
		return Side{}, stagesyncerrors.NewResolutionError(identifier, errors.New("empty stage identifier"))
	}

	if hash, err := index.ParseHash(identifier); err == nil {
		idx, err := git.ReadIndex(ctx, objects, hash)
		if err != nil {
			return Side{}, stagesyncerrors.NewResolutionError(identifier, err)
		}
		if err := git.ValidateStageName(idx.StageName); err != nil {
			return Side{}, stagesyncerrors.NewResolutionError(identifier, err)
		}
		return Side{Name: idx.StageName, Pinned: idx, PinnedHash: hash}, nil
	}

	if err := git.ValidateStageName(identifier); err != nil {
		return Side{}, stagesyncerrors.NewResolutionError(identifier, err)
	}
	return Side{Name: identifier}, nil
}
