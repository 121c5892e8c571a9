package engine

import (
	"context"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/internal/merger"
	"stagesync.dev/stagesync/internal/tui"
)

// Engine decides and realizes per-element merge outcomes
type Engine struct {
	objects git.ObjectStore
	tree    git.WorkingTree
	merger  merger.Merger
	splog   *tui.Splog
}

// NewEngine creates an engine over the given collaborators.
// A nil merger uses the diff3 text merger; a nil splog logs to stdout.
func NewEngine(objects git.ObjectStore, tree git.WorkingTree, m merger.Merger, splog *tui.Splog) *Engine {
	if m == nil {
		m = merger.NewTextMerger()
	}
	if splog == nil {
		splog = tui.NewSplog()
	}
	return &Engine{
		objects: objects,
		tree:    tree,
		merger:  m,
		splog:   splog,
	}
}

// element is one candidate key with both sides looked up
type element struct {
	key         string
	local       *index.Entry
	remote      *index.Entry
	synthesized bool
}

// MergeStages reconciles local with remote, restricted to files when files is
// non-empty. Either index may be nil (treated as empty) but not both.
//
// If ctx is cancelled the partial result is returned together with ctx.Err();
// the source indexes are never modified, so the pass is safe to retry.
func (e *Engine) MergeStages(ctx context.Context, local, remote *index.Index, files []string, opts Options) (*Result, error) {
	if local == nil && remote == nil {
		return nil, stagesyncerrors.ErrNoIndex
	}
	if remote == nil {
		remote = index.New(local.StageName)
	}
	if local == nil {
		local = index.New(remote.StageName)
	}

	working := local.Clone(local.StageName)
	result := newResult(working)

	keys := candidateKeys(local, remote, files)
	e.splog.Debug("Merging %d element(s) of %s from %s", len(keys), local.StageName, remote.StageName)

	// Classification and synthesis run sequentially so that the parallel phase
	// only reads entries.
	var pending []element
	for _, key := range keys {
		remoteEntry, inRemote := remote.Get(key)
		if !inRemote {
			e.splog.Debug("%s: deleted remotely", key)
			result.record(key, OutcomeDeleted)
			continue
		}

		localEntry, inLocal := working.Get(key)
		synthesized := false
		if !inLocal {
			localEntry = synthesizeEntry(remoteEntry)
			working.Put(localEntry)
			synthesized = true
		}
		pending = append(pending, element{
			key:         key,
			local:       localEntry,
			remote:      remoteEntry,
			synthesized: synthesized,
		})
	}

	var g errgroup.Group
	g.SetLimit(opts.parallelism())
	for _, el := range pending {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcome, err := e.mergeElement(ctx, el, opts)
			if err != nil {
				e.splog.Warn("Could not merge %s: %v", el.key, err)
				result.fail(el.key, err)
				return nil
			}
			result.record(el.key, outcome)
			return nil
		})
	}
	_ = g.Wait()

	return result, ctx.Err()
}

// candidateKeys returns the sorted union of both key sets, restricted to files
func candidateKeys(local, remote *index.Index, files []string) []string {
	keys := lo.Union(local.Keys(), remote.Keys())
	if len(files) > 0 {
		keys = lo.Filter(keys, func(key string, _ int) bool {
			return lo.Contains(files, key)
		})
	}
	slices.Sort(keys)
	return keys
}

// synthesizeEntry creates a local entry for an element that only exists
// remotely. It has no base, so it is always decided on content.
func synthesizeEntry(remote *index.Entry) *index.Entry {
	entry := remote.Clone()
	entry.BaseContentHash = nil
	return entry
}
