package engine

import (
	"context"
	"fmt"
	"path"

	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/internal/merger"
)

// mergeElement decides the outcome for an element present remotely, and
// realizes it in the working tree. The steps run in a fixed order since each
// depends on the previous one.
func (e *Engine) mergeElement(ctx context.Context, el element, opts Options) (Outcome, error) {
	filePath := path.Join(opts.OutDir, el.key)
	exists := e.tree.Exists(ctx, filePath)

	// Fingerprints are the remote's cheap "nothing changed" signal and are
	// checked before any hashing. Synthesized entries never take this path,
	// and an empty fingerprint is absent, so it never matches.
	if exists && !el.synthesized && fingerprintsMatch(el.local, el.remote) {
		e.splog.Debug("%s: up to date", el.key)
		return OutcomeUpToDate, nil
	}

	if !exists || !opts.IncludeWorkingTree {
		return e.mergeFromIndex(ctx, el, filePath)
	}
	return e.mergeWithWorkingFile(ctx, el, filePath)
}

func fingerprintsMatch(local, remote *index.Entry) bool {
	return local.Fingerprint != "" && local.Fingerprint == remote.Fingerprint
}

// mergeFromIndex decides using index hashes only
func (e *Engine) mergeFromIndex(ctx context.Context, el element, filePath string) (Outcome, error) {
	localHash := el.local.LocalContentHash
	remoteHash := el.remote.LocalContentHash

	switch {
	case localHash == remoteHash:
		e.splog.Debug("%s: restoring shared content", el.key)
		return OutcomeMerged, e.materialize(ctx, filePath, localHash)
	case el.local.BaseEquals(localHash):
		e.splog.Debug("%s: fast-forward", el.key)
		return OutcomeMerged, e.materialize(ctx, filePath, remoteHash)
	}

	base, err := e.readBase(ctx, el.local.BaseContentHash)
	if err != nil {
		return "", err
	}
	local, err := e.objects.Read(ctx, localHash, git.KindBlob)
	if err != nil {
		return "", fmt.Errorf("failed to read local content: %w", err)
	}
	return e.mergeThreeWay(ctx, el, filePath, base, local)
}

// mergeWithWorkingFile decides with the working file as the local side
func (e *Engine) mergeWithWorkingFile(ctx context.Context, el element, filePath string) (Outcome, error) {
	working, err := e.tree.Read(ctx, filePath)
	if err != nil {
		return "", err
	}
	workingHash := e.objects.Hash(working, git.KindBlob)
	remoteHash := el.remote.LocalContentHash

	switch {
	case workingHash == remoteHash:
		e.splog.Debug("%s: working file already matches remote", el.key)
		return OutcomeMerged, nil
	case el.local.BaseEquals(workingHash):
		e.splog.Debug("%s: no local edits, taking remote", el.key)
		return OutcomeMerged, e.materialize(ctx, filePath, remoteHash)
	case el.local.BaseEquals(remoteHash):
		e.splog.Debug("%s: remote unchanged, keeping local edits", el.key)
		return OutcomeMerged, nil
	}

	base, err := e.readBase(ctx, el.local.BaseContentHash)
	if err != nil {
		return "", err
	}
	return e.mergeThreeWay(ctx, el, filePath, base, working)
}

// mergeThreeWay fetches the remote content, merges and writes the result.
// The outcome is taken from the merger's status.
func (e *Engine) mergeThreeWay(ctx context.Context, el element, filePath string, base, local []byte) (Outcome, error) {
	remote, err := e.objects.Read(ctx, el.remote.LocalContentHash, git.KindBlob)
	if err != nil {
		return "", fmt.Errorf("failed to read remote content: %w", err)
	}

	result, err := e.merger.Merge3(base, local, remote)
	if err != nil {
		return "", err
	}
	if err := e.tree.Write(ctx, filePath, result.Content); err != nil {
		return "", err
	}

	if result.Status == merger.StatusConflict {
		e.splog.Debug("%s: three-way merge left conflicts", el.key)
		return OutcomeConflict, nil
	}
	e.splog.Debug("%s: three-way merge", el.key)
	return OutcomeMerged, nil
}

// readBase returns the base content, or nil when the entry has no base
func (e *Engine) readBase(ctx context.Context, base *index.Hash) ([]byte, error) {
	if base == nil {
		return nil, nil
	}
	content, err := e.objects.Read(ctx, *base, git.KindBlob)
	if err != nil {
		return nil, fmt.Errorf("failed to read base content: %w", err)
	}
	return content, nil
}

// materialize writes the blob stored under hash to filePath
func (e *Engine) materialize(ctx context.Context, filePath string, hash index.Hash) error {
	content, err := e.objects.Read(ctx, hash, git.KindBlob)
	if err != nil {
		return err
	}
	return e.tree.Write(ctx, filePath, content)
}
