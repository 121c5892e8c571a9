package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
)

// Marker file names under .stagesync
const (
	MergePendingFile   = "MERGE_PENDING"
	MergeConflictsFile = "MERGE_CONFLICTS"
)

func mergePendingPath(repoRoot string) string {
	return filepath.Join(git.MetaDir(repoRoot), MergePendingFile)
}

func mergeConflictsPath(repoRoot string) string {
	return filepath.Join(git.MetaDir(repoRoot), MergeConflictsFile)
}

// WriteMergePending records the remote index a merge was started from.
// The file holds the raw hash without a trailing newline.
func WriteMergePending(repoRoot string, remoteHash index.Hash) error {
	if err := os.WriteFile(mergePendingPath(repoRoot), []byte(remoteHash), 0600); err != nil {
		return fmt.Errorf("failed to write merge-pending marker: %w", err)
	}
	return nil
}

// ReadMergePending returns the remote index hash of the pending merge
func ReadMergePending(repoRoot string) (index.Hash, error) {
	data, err := os.ReadFile(mergePendingPath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return "", stagesyncerrors.ErrNoMergeInProgress
		}
		return "", fmt.Errorf("failed to read merge-pending marker: %w", err)
	}
	hash, err := index.ParseHash(string(data))
	if err != nil {
		return "", fmt.Errorf("corrupt merge-pending marker: %w", err)
	}
	return hash, nil
}

// IsMergeInProgress reports whether a merge-pending marker exists
func IsMergeInProgress(repoRoot string) bool {
	_, err := os.Stat(mergePendingPath(repoRoot))
	return err == nil
}

// WriteMergeConflicts records the conflicting element keys, one per line
func WriteMergeConflicts(repoRoot string, keys []string) error {
	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(mergeConflictsPath(repoRoot), []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write conflict marker: %w", err)
	}
	return nil
}

// ReadMergeConflicts returns the recorded conflicting keys, or nil if there
// is no conflict marker
func ReadMergeConflicts(repoRoot string) ([]string, error) {
	data, err := os.ReadFile(mergeConflictsPath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read conflict marker: %w", err)
	}

	var keys []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			keys = append(keys, line)
		}
	}
	return keys, nil
}

// ClearMergeConflicts removes the conflict marker if present
func ClearMergeConflicts(repoRoot string) error {
	err := os.Remove(mergeConflictsPath(repoRoot))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear conflict marker: %w", err)
	}
	return nil
}

// ClearMergeState removes both merge markers
func ClearMergeState(repoRoot string) error {
	err := os.Remove(mergePendingPath(repoRoot))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear merge-pending marker: %w", err)
	}
	return ClearMergeConflicts(repoRoot)
}
