package actions

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/internal/runtime"
	"stagesync.dev/stagesync/internal/tui"
)

// StageInfo describes the refs recorded for one stage.
// A hash is empty when the stage has no ref in that partition.
type StageInfo struct {
	Name       string
	LocalHash  index.Hash
	RemoteHash index.Hash
}

// StagesAction lists every stage with a local or remote index
func StagesAction(ctx *runtime.Context) ([]StageInfo, error) {
	splog := ctx.Splog

	local, err := ctx.Refs.ListStages(ctx.Context, false)
	if err != nil {
		return nil, err
	}
	remote, err := ctx.Refs.ListStages(ctx.Context, true)
	if err != nil {
		return nil, err
	}

	names := lo.Union(local, remote)
	slices.Sort(names)

	stages := make([]StageInfo, 0, len(names))
	for _, name := range names {
		info := StageInfo{Name: name}
		if info.LocalHash, err = readRef(ctx, git.LocalRef(name)); err != nil {
			return nil, err
		}
		if info.RemoteHash, err = readRef(ctx, git.RemoteRef(name)); err != nil {
			return nil, err
		}
		stages = append(stages, info)
	}

	if len(stages) == 0 {
		splog.Info("No stages yet.")
		return stages, nil
	}
	for _, info := range stages {
		splog.Info("%s  local %s  remote %s", tui.ColorCyan(info.Name), describeHash(info.LocalHash), describeHash(info.RemoteHash))
	}
	return stages, nil
}

func readRef(ctx *runtime.Context, ref git.Ref) (index.Hash, error) {
	hash, ok, err := ctx.Refs.ReadRef(ctx.Context, ref)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", ref, err)
	}
	if !ok {
		return "", nil
	}
	return hash, nil
}

func describeHash(hash index.Hash) string {
	if hash == "" {
		return tui.ColorDim("-------")
	}
	return hash.Short()
}
