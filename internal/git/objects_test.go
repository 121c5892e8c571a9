package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"

	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
)

func TestObjectStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips content", func(t *testing.T) {
		store := git.NewObjectStore(memory.NewStorage())

		hash, err := store.Write(ctx, []byte("REPORT zmain.\n"), git.KindBlob)
		require.NoError(t, err)
		require.True(t, index.IsHash(string(hash)))

		content, err := store.Read(ctx, hash, git.KindBlob)
		require.NoError(t, err)
		require.Equal(t, "REPORT zmain.\n", string(content))
	})

	t.Run("hashing is deterministic and matches write", func(t *testing.T) {
		store := git.NewObjectStore(memory.NewStorage())

		first, err := store.Write(ctx, []byte("same"), git.KindBlob)
		require.NoError(t, err)
		second, err := store.Write(ctx, []byte("same"), git.KindBlob)
		require.NoError(t, err)

		require.Equal(t, first, second)
		require.Equal(t, first, store.Hash([]byte("same"), git.KindBlob))
	})

	t.Run("matches git blob hashing", func(t *testing.T) {
		store := git.NewObjectStore(memory.NewStorage())
		// git hash-object of an empty file
		require.Equal(t, index.Hash("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"), store.Hash(nil, git.KindBlob))
	})

	t.Run("missing hash is not found", func(t *testing.T) {
		store := git.NewObjectStore(memory.NewStorage())

		_, err := store.Read(ctx, "0123456789012345678901234567890123456789", git.KindBlob)
		require.ErrorIs(t, err, stagesyncerrors.ErrObjectNotFound)

		_, err = store.Read(ctx, "none", git.KindBlob)
		require.ErrorIs(t, err, stagesyncerrors.ErrObjectNotFound)
	})

	t.Run("indexes round trip", func(t *testing.T) {
		store := git.NewObjectStore(memory.NewStorage())
		blob, err := store.Write(ctx, []byte("content"), git.KindBlob)
		require.NoError(t, err)

		idx := index.New("dev")
		idx.Put(&index.Entry{ElementKey: "PROG/ZMAIN", LocalContentHash: blob, Fingerprint: "1"})

		hash, err := git.WriteIndex(ctx, store, idx)
		require.NoError(t, err)

		loaded, err := git.ReadIndex(ctx, store, hash)
		require.NoError(t, err)
		require.Equal(t, idx, loaded)

		again, err := git.WriteIndex(ctx, store, loaded)
		require.NoError(t, err)
		require.Equal(t, hash, again)
	})

	t.Run("reading a blob as an index fails", func(t *testing.T) {
		store := git.NewObjectStore(memory.NewStorage())
		blob, err := store.Write(ctx, []byte("content"), git.KindBlob)
		require.NoError(t, err)

		_, err = git.ReadIndex(ctx, store, blob)
		require.ErrorIs(t, err, stagesyncerrors.ErrInvalidIndex)
	})
}

func TestRefStore(t *testing.T) {
	ctx := context.Background()
	hash := index.Hash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	t.Run("missing ref reports absent", func(t *testing.T) {
		refs := git.NewRefStore(memory.NewStorage())

		_, ok, err := refs.ReadRef(ctx, git.LocalRef("dev"))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("partitions are independent", func(t *testing.T) {
		refs := git.NewRefStore(memory.NewStorage())
		require.NoError(t, refs.WriteRef(ctx, git.RemoteRef("dev"), hash))

		_, ok, err := refs.ReadRef(ctx, git.LocalRef("dev"))
		require.NoError(t, err)
		require.False(t, ok)

		got, ok, err := refs.ReadRef(ctx, git.RemoteRef("dev"))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, hash, got)

		_, ok, err = refs.ReadRef(ctx, git.OriginRef("dev", "prod"))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("lists stages per partition", func(t *testing.T) {
		refs := git.NewRefStore(memory.NewStorage())
		require.NoError(t, refs.WriteRef(ctx, git.RemoteRef("qa"), hash))
		require.NoError(t, refs.WriteRef(ctx, git.RemoteRef("dev"), hash))
		require.NoError(t, refs.WriteRef(ctx, git.LocalRef("dev"), hash))
		require.NoError(t, refs.WriteRef(ctx, git.OriginRef("dev", "qa"), hash))

		remote, err := refs.ListStages(ctx, true)
		require.NoError(t, err)
		require.Equal(t, []string{"dev", "qa"}, remote)

		local, err := refs.ListStages(ctx, false)
		require.NoError(t, err)
		require.Equal(t, []string{"dev"}, local)
	})

	t.Run("reference names", func(t *testing.T) {
		require.Equal(t, "refs/stages/local/dev", git.LocalRef("dev").String())
		require.Equal(t, "refs/stages/remote/dev", git.RemoteRef("dev").String())
		require.Equal(t, "refs/stages/origin/prod/dev", git.OriginRef("dev", "prod").String())
	})

	t.Run("rejects invalid stage names", func(t *testing.T) {
		refs := git.NewRefStore(memory.NewStorage())
		require.Error(t, refs.WriteRef(ctx, git.LocalRef("../escape"), hash))
		require.Error(t, refs.WriteRef(ctx, git.LocalRef(""), hash))
		require.Error(t, refs.WriteRef(ctx, git.LocalRef("dev"), "nothash"))
		require.Error(t, refs.WriteRef(ctx, git.LocalRef("dev/qa"), hash))
		require.Error(t, refs.WriteRef(ctx, git.OriginRef("b", "a/x"), hash))
		_, _, err := refs.ReadRef(ctx, git.OriginRef("x/b", "a"))
		require.Error(t, err)
	})

	t.Run("origin refs of different pairs never share a name", func(t *testing.T) {
		refs := git.NewRefStore(memory.NewStorage())
		require.NoError(t, refs.WriteRef(ctx, git.OriginRef("qa", "dev"), hash))

		_, ok, err := refs.ReadRef(ctx, git.OriginRef("dev", "qa"))
		require.NoError(t, err)
		require.False(t, ok)
		require.NotEqual(t, git.OriginRef("qa", "dev").String(), git.OriginRef("dev", "qa").String())
	})

	t.Run("stage names that prefix each other coexist on disk", func(t *testing.T) {
		repo, err := git.InitRepository(t.TempDir())
		require.NoError(t, err)
		refs := repo.Refs()

		require.NoError(t, refs.WriteRef(ctx, git.LocalRef("DEV"), hash))
		require.NoError(t, refs.WriteRef(ctx, git.LocalRef("DEV-QA"), hash))
		require.NoError(t, refs.WriteRef(ctx, git.LocalRef("DEV.QA"), hash))

		stages, err := refs.ListStages(ctx, false)
		require.NoError(t, err)
		require.Equal(t, []string{"DEV", "DEV-QA", "DEV.QA"}, stages)
	})
}

func TestFileTree(t *testing.T) {
	ctx := context.Background()

	t.Run("writes nested element paths", func(t *testing.T) {
		tree := git.NewFileTree(memfs.New())
		require.False(t, tree.Exists(ctx, "PROG/ZMAIN"))

		require.NoError(t, tree.Write(ctx, "out/PROG/ZMAIN", []byte("v1")))
		require.True(t, tree.Exists(ctx, "out/PROG/ZMAIN"))
		require.False(t, tree.Exists(ctx, "out/PROG"))

		content, err := tree.Read(ctx, "out/PROG/ZMAIN")
		require.NoError(t, err)
		require.Equal(t, "v1", string(content))
	})

	t.Run("reading a missing file wraps not exist", func(t *testing.T) {
		tree := git.NewFileTree(memfs.New())
		_, err := tree.Read(ctx, "PROG/ZNONE")
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRepository(t *testing.T) {
	t.Run("init is idempotent and open finds storage", func(t *testing.T) {
		dir := t.TempDir()

		repo, err := git.InitRepository(dir)
		require.NoError(t, err)
		hash, err := repo.Objects().Write(context.Background(), []byte("x"), git.KindBlob)
		require.NoError(t, err)

		again, err := git.InitRepository(dir)
		require.NoError(t, err)
		content, err := again.Objects().Read(context.Background(), hash, git.KindBlob)
		require.NoError(t, err)
		require.Equal(t, "x", string(content))

		opened, err := git.OpenRepository(dir)
		require.NoError(t, err)
		require.Equal(t, repo.GetRepoRoot(), opened.GetRepoRoot())
	})

	t.Run("open fails outside a repository", func(t *testing.T) {
		_, err := git.OpenRepository(t.TempDir())
		require.ErrorIs(t, err, git.ErrNotARepository)
	})

	t.Run("find walks up to the root", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.InitRepository(dir)
		require.NoError(t, err)

		nested := filepath.Join(dir, "PROG", "deep")
		require.NoError(t, os.MkdirAll(nested, 0o755))

		root, err := git.FindRepoRoot(nested)
		require.NoError(t, err)
		expected, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		actual, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		require.Equal(t, expected, actual)
	})
}
