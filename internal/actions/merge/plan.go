package merge

import (
	"context"

	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
)

// Plan is a resolved merge with both indexes loaded
type Plan struct {
	LocalName  string
	RemoteName string

	Local  *index.Index
	Remote *index.Index

	// LocalSource describes where the local index came from, empty when it is
	// created from the remote
	LocalSource string
	RemoteHash  index.Hash

	// Created is set on first-time population: no local index existed and the
	// remote was cloned under the local name
	Created bool
}

// CreatePlan loads the indexes for a resolution.
//
// The local index is taken, in order, from the pinned hash, the origin ref
// inherited from the remote stage, or the local ref. If none exists the remote
// index is cloned under the local name.
func CreatePlan(ctx context.Context, objects git.ObjectStore, refs git.RefStore, res *Resolution) (*Plan, error) {
	plan := &Plan{
		LocalName:  res.Local.Name,
		RemoteName: res.Remote.Name,
	}

	remote, remoteHash, err := loadRemote(ctx, objects, refs, res.Remote)
	if err != nil {
		return nil, err
	}
	plan.Remote = remote
	plan.RemoteHash = remoteHash

	local, source, err := loadLocal(ctx, objects, refs, res)
	if err != nil {
		return nil, err
	}

	switch {
	case local != nil && remote == nil:
		return nil, stagesyncerrors.NewNoRemoteError(plan.LocalName, plan.RemoteName)
	case local == nil && remote == nil:
		return nil, stagesyncerrors.NewNothingToMergeError(plan.LocalName, plan.RemoteName)
	case local == nil:
		plan.Local = remote.Clone(plan.LocalName)
		plan.Created = true
	default:
		plan.Local = local
		plan.LocalSource = source
	}

	return plan, nil
}

func loadRemote(ctx context.Context, objects git.ObjectStore, refs git.RefStore, side Side) (*index.Index, index.Hash, error) {
	if side.IsPinned() {
		return side.Pinned, side.PinnedHash, nil
	}
	return loadRef(ctx, objects, refs, git.RemoteRef(side.Name))
}

func loadLocal(ctx context.Context, objects git.ObjectStore, refs git.RefStore, res *Resolution) (*index.Index, string, error) {
	if res.Local.IsPinned() {
		return res.Local.Pinned, res.Local.PinnedHash.Short(), nil
	}

	candidates := []git.Ref{git.LocalRef(res.Local.Name)}
	if res.Local.Name != res.Remote.Name {
		candidates = append([]git.Ref{git.OriginRef(res.Local.Name, res.Remote.Name)}, candidates...)
	}

	for _, ref := range candidates {
		idx, _, err := loadRef(ctx, objects, refs, ref)
		if err != nil {
			return nil, "", err
		}
		if idx != nil {
			return idx, ref.String(), nil
		}
	}
	return nil, "", nil
}

// loadRef returns the index ref points at, or nil if the ref does not exist
func loadRef(ctx context.Context, objects git.ObjectStore, refs git.RefStore, ref git.Ref) (*index.Index, index.Hash, error) {
	hash, ok, err := refs.ReadRef(ctx, ref)
	if err != nil || !ok {
		return nil, "", err
	}
	idx, err := git.ReadIndex(ctx, objects, hash)
	if err != nil {
		return nil, "", err
	}
	return idx, hash, nil
}
