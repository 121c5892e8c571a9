package testhelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stagesync.dev/stagesync/internal/config"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectFile asserts that a working-tree file holds content
func ExpectFile(t *testing.T, scene *Scene, rel, content string) {
	t.Helper()
	got, err := scene.ReadFile(rel)
	require.NoError(t, err, "Failed to read %s", rel)
	require.Equal(t, content, got, "Content of %s does not match", rel)
}

// ExpectNoFile asserts that a working-tree file does not exist
func ExpectNoFile(t *testing.T, scene *Scene, rel string) {
	t.Helper()
	require.False(t, scene.FileExists(rel), "Expected %s to be absent", rel)
}

// ExpectRef asserts that ref points at hash
func ExpectRef(t *testing.T, scene *Scene, ref git.Ref, hash index.Hash) {
	t.Helper()
	got, ok, err := scene.Repo.Refs().ReadRef(context.Background(), ref)
	require.NoError(t, err)
	require.True(t, ok, "Expected ref %s to exist", ref)
	require.Equal(t, hash, got, "Ref %s does not match", ref)
}

// ExpectNoRef asserts that ref does not exist
func ExpectNoRef(t *testing.T, scene *Scene, ref git.Ref) {
	t.Helper()
	_, ok, err := scene.Repo.Refs().ReadRef(context.Background(), ref)
	require.NoError(t, err)
	require.False(t, ok, "Expected ref %s to be absent", ref)
}

// ExpectMergePending asserts that the merge-pending marker holds remoteHash
// and the conflict marker lists exactly conflicts
func ExpectMergePending(t *testing.T, scene *Scene, remoteHash index.Hash, conflicts []string) {
	t.Helper()
	got, err := config.ReadMergePending(scene.Dir)
	require.NoError(t, err, "Expected a merge to be pending")
	require.Equal(t, remoteHash, got)

	keys, err := config.ReadMergeConflicts(scene.Dir)
	require.NoError(t, err)
	if len(conflicts) == 0 {
		require.Empty(t, keys, "Expected no conflict marker")
		return
	}
	require.Equal(t, conflicts, keys)
}

// ExpectNoMergeState asserts that neither merge marker exists
func ExpectNoMergeState(t *testing.T, scene *Scene) {
	t.Helper()
	require.False(t, config.IsMergeInProgress(scene.Dir), "Expected no merge in progress")
	keys, err := config.ReadMergeConflicts(scene.Dir)
	require.NoError(t, err)
	require.Empty(t, keys)
}
