package merge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"stagesync.dev/stagesync/internal/actions/merge"
	"stagesync.dev/stagesync/internal/config"
	"stagesync.dev/stagesync/internal/engine"
	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/testhelpers"
	"stagesync.dev/stagesync/testhelpers/scenario"
)

const key = "PROG/ZMAIN"

func options(stage, remote string, files ...string) merge.Options {
	return merge.Options{
		Stage:       stage,
		RemoteStage: remote,
		Files:       files,
		Engine:      engine.DefaultOptions(),
	}
}

func TestAction(t *testing.T) {
	t.Run("first merge creates the local index from the remote", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		remoteHash := s.WithRemote("DEV", s.Element(key, "remote\n", "", "fp-1"))

		summary, err := merge.Action(s.Context, options("DEV", ""))
		require.NoError(t, err)
		require.True(t, summary.Created)
		require.True(t, summary.AllMerged)
		require.Equal(t, engine.OutcomeMerged, summary.Outcomes[key])
		require.Equal(t, remoteHash, summary.RemoteHash)
		s.ExpectFile(key, "remote\n")

		testhelpers.ExpectRef(t, s.Scene, git.LocalRef("DEV"), summary.LocalHash)
		_, local := s.LoadRef(git.LocalRef("DEV"))
		require.Equal(t, "DEV", local.StageName)
		entry, ok := local.Get(key)
		require.True(t, ok)
		require.False(t, entry.HasBase())
		require.Equal(t, "fp-1", entry.Fingerprint)

		testhelpers.ExpectNoMergeState(t, s.Scene)
		s.ExpectOutput("Created local index")
	})

	t.Run("conflicts are recorded and the local ref is untouched", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		localHash := s.WithLocal("DEV", s.Element(key, "one\ntwo\nthree\n", "one\ntwo\nthree\n", "fp-1"))
		remoteHash := s.WithRemote("DEV", s.Element(key, "one\nremote\nthree\n", "", "fp-2"))
		s.WithFile(key, "one\nlocal\nthree\n")

		summary, err := merge.Action(s.Context, options("DEV", ""))
		require.NoError(t, err)
		require.False(t, summary.AllMerged)
		require.True(t, summary.HasUpdates)
		require.Equal(t, []string{key}, summary.ConflictFiles)

		testhelpers.ExpectMergePending(t, s.Scene, remoteHash, []string{key})
		testhelpers.ExpectRef(t, s.Scene, git.LocalRef("DEV"), localHash)
		s.ExpectOutput("Hit conflicts merging DEV")

		content, err := s.Scene.ReadFile(key)
		require.NoError(t, err)
		require.Contains(t, content, "<<<<<<<")
	})

	t.Run("clean merge records the pending remote and clears stale conflicts", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithLocal("DEV", s.Element(key, "base\n", "base\n", "fp-1"))
		remoteHash := s.WithRemote("DEV", s.Element(key, "remote\n", "", "fp-2"))
		require.NoError(t, config.WriteMergeConflicts(s.Scene.Dir, []string{"CLAS/ZSTALE"}))

		summary, err := merge.Action(s.Context, options("DEV", ""))
		require.NoError(t, err)
		require.True(t, summary.AllMerged)
		require.Empty(t, summary.ConflictFiles)
		testhelpers.ExpectMergePending(t, s.Scene, remoteHash, nil)
		s.ExpectFile(key, "remote\n")
	})

	t.Run("up to date writes nothing", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithLocal("DEV", s.Element(key, "same\n", "same\n", "fp-1"))
		s.WithRemote("DEV", s.Element(key, "same\n", "", "fp-1"))
		s.WithFile(key, "same\n")

		summary, err := merge.Action(s.Context, options("DEV", ""))
		require.NoError(t, err)
		require.False(t, summary.HasUpdates)
		require.Equal(t, engine.OutcomeUpToDate, summary.Outcomes[key])
		testhelpers.ExpectNoMergeState(t, s.Scene)
		s.ExpectOutput("Already up to date.")
	})

	t.Run("deletions count as updates", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithLocal("DEV",
			s.Element(key, "same\n", "same\n", "fp-1"),
			s.Element("CLAS/ZGONE", "gone\n", "gone\n", "fp-2"),
		)
		remoteHash := s.WithRemote("DEV", s.Element(key, "same\n", "", "fp-1"))
		s.WithFile(key, "same\n")

		summary, err := merge.Action(s.Context, options("DEV", ""))
		require.NoError(t, err)
		require.True(t, summary.HasUpdates)
		require.Equal(t, engine.OutcomeDeleted, summary.Outcomes["CLAS/ZGONE"])
		testhelpers.ExpectMergePending(t, s.Scene, remoteHash, nil)
	})

	t.Run("rejects malformed file filters before loading anything", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)

		_, err := merge.Action(s.Context, options("NOPE", "", key, "BADKEY"))
		require.ErrorIs(t, err, stagesyncerrors.ErrInvalidFileFormat)
		require.ErrorContains(t, err, "BADKEY")
		require.NotContains(t, err.Error(), key)
		testhelpers.ExpectNoMergeState(t, s.Scene)
	})

	t.Run("restricts the merge to the listed files", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithRemote("DEV",
			s.Element(key, "main\n", "", "fp-1"),
			s.Element("CLAS/ZCL", "class\n", "", "fp-2"),
		)

		summary, err := merge.Action(s.Context, options("DEV", "", "CLAS/ZCL"))
		require.NoError(t, err)
		require.Equal(t, []string{"CLAS/ZCL"}, summary.Keys())
		testhelpers.ExpectNoFile(t, s.Scene, key)
	})

	t.Run("local state without a remote fails", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithLocal("DEV", s.Element(key, "local\n", "local\n", "fp-1"))

		_, err := merge.Action(s.Context, options("DEV", ""))
		require.ErrorIs(t, err, stagesyncerrors.ErrNoRemote)
	})

	t.Run("failed index write leaves the local ref unset", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithRemote("DEV", s.Element(key, "remote\n", "", "fp-1"))
		s.Context.Objects = &failingObjects{ObjectStore: s.Context.Objects, kind: git.KindIndex}

		_, err := merge.Action(s.Context, options("DEV", ""))
		require.ErrorIs(t, err, stagesyncerrors.ErrIndexWrite)
		testhelpers.ExpectNoRef(t, s.Scene, git.LocalRef("DEV"))
		testhelpers.ExpectNoMergeState(t, s.Scene)
	})

	t.Run("failed ref write is an index write error", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithRemote("DEV", s.Element(key, "remote\n", "", "fp-1"))
		s.Context.Refs = &failingRefs{RefStore: s.Context.Refs}

		_, err := merge.Action(s.Context, options("DEV", ""))
		require.ErrorIs(t, err, stagesyncerrors.ErrIndexWrite)
		require.ErrorContains(t, err, "ref storage offline")
		testhelpers.ExpectNoRef(t, s.Scene, git.LocalRef("DEV"))
		testhelpers.ExpectNoMergeState(t, s.Scene)
	})

	t.Run("no state at all fails", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)

		_, err := merge.Action(s.Context, options("DEV", "QA"))
		require.ErrorIs(t, err, stagesyncerrors.ErrNothingToMerge)
	})

	t.Run("cross-stage merge prefers the inherited index", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithLocal("DEV", s.Element(key, "dev\n", "dev\n", "fp-dev"))
		s.WithOrigin("DEV", "QA", s.Element(key, "qa\n", "qa\n", "fp-qa"))
		remoteHash := s.WithRemote("QA", s.Element(key, "qa-new\n", "", "fp-qa-2"))

		summary, err := merge.Action(s.Context, options("DEV", "QA"))
		require.NoError(t, err)
		require.Equal(t, "DEV", summary.Stage)
		require.Equal(t, "QA", summary.RemoteStage)
		// fast-forward from the inherited base
		s.ExpectFile(key, "qa-new\n")
		testhelpers.ExpectMergePending(t, s.Scene, remoteHash, nil)
	})

	t.Run("resolves a hash to its stage", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		pinned := s.Index("DEV", s.Element(key, "base\n", "base\n", "fp-1"))
		s.WithRemote("DEV", s.Element(key, "remote\n", "", "fp-2"))

		summary, err := merge.Action(s.Context, options(string(pinned), ""))
		require.NoError(t, err)
		require.Equal(t, "DEV", summary.Stage)
		require.False(t, summary.Created)
		s.ExpectFile(key, "remote\n")
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("names resolve to themselves", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)

		res, err := merge.Resolve(ctx, s.Context.Objects, "DEV", "")
		require.NoError(t, err)
		require.Equal(t, "DEV", res.Local.Name)
		require.Equal(t, "DEV", res.Remote.Name)
		require.False(t, res.Local.IsPinned())
	})

	t.Run("hashes pin the loaded index", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		hash := s.Index("QA", s.Element(key, "qa\n", "", "fp-1"))

		res, err := merge.Resolve(ctx, s.Context.Objects, "DEV", string(hash))
		require.NoError(t, err)
		require.Equal(t, "DEV", res.Local.Name)
		require.Equal(t, "QA", res.Remote.Name)
		require.True(t, res.Remote.IsPinned())
		require.Equal(t, hash, res.Remote.PinnedHash)
	})

	t.Run("pinned local leaves the remote on its ref", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		hash := s.Index("QA", s.Element(key, "qa\n", "", "fp-1"))

		res, err := merge.Resolve(ctx, s.Context.Objects, string(hash), "")
		require.NoError(t, err)
		require.True(t, res.Local.IsPinned())
		require.Equal(t, "QA", res.Remote.Name)
		require.False(t, res.Remote.IsPinned())
	})

	t.Run("unknown hash fails", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)

		_, err := merge.Resolve(ctx, s.Context.Objects, "0123456789abcdef0123456789abcdef01234567", "")
		require.ErrorIs(t, err, stagesyncerrors.ErrResolution)
		require.ErrorIs(t, err, stagesyncerrors.ErrObjectNotFound)
	})

	t.Run("empty and invalid names fail", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)

		_, err := merge.Resolve(ctx, s.Context.Objects, "", "")
		require.ErrorIs(t, err, stagesyncerrors.ErrResolution)

		_, err = merge.Resolve(ctx, s.Context.Objects, "DEV", "../QA")
		require.ErrorIs(t, err, stagesyncerrors.ErrResolution)
	})
}

func TestCreatePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("origin ref wins over the local ref", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithLocal("DEV", s.Element(key, "dev\n", "dev\n", "fp-dev"))
		s.WithOrigin("DEV", "QA", s.Element(key, "qa\n", "qa\n", "fp-qa"))
		s.WithRemote("QA", s.Element(key, "qa\n", "", "fp-qa"))

		res, err := merge.Resolve(ctx, s.Context.Objects, "DEV", "QA")
		require.NoError(t, err)
		plan, err := merge.CreatePlan(ctx, s.Context.Objects, s.Context.Refs, res)
		require.NoError(t, err)
		require.Equal(t, git.OriginRef("DEV", "QA").String(), plan.LocalSource)
		entry, _ := plan.Local.Get(key)
		require.Equal(t, "fp-qa", entry.Fingerprint)
	})

	t.Run("same-stage merge ignores origin refs", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithLocal("DEV", s.Element(key, "dev\n", "dev\n", "fp-dev"))
		s.WithRemote("DEV", s.Element(key, "dev\n", "", "fp-dev"))

		res, err := merge.Resolve(ctx, s.Context.Objects, "DEV", "")
		require.NoError(t, err)
		plan, err := merge.CreatePlan(ctx, s.Context.Objects, s.Context.Refs, res)
		require.NoError(t, err)
		require.Equal(t, git.LocalRef("DEV").String(), plan.LocalSource)
		require.False(t, plan.Created)
	})

	t.Run("missing local clones the remote", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithRemote("QA", s.Element(key, "qa\n", "", "fp-qa"))

		res, err := merge.Resolve(ctx, s.Context.Objects, "DEV", "QA")
		require.NoError(t, err)
		plan, err := merge.CreatePlan(ctx, s.Context.Objects, s.Context.Refs, res)
		require.NoError(t, err)
		require.True(t, plan.Created)
		require.Equal(t, "DEV", plan.Local.StageName)
		require.Equal(t, 1, plan.Local.Len())
		require.NotSame(t, plan.Remote, plan.Local)
	})
}

func TestValidateFiles(t *testing.T) {
	require.NoError(t, merge.ValidateFiles(nil))
	require.NoError(t, merge.ValidateFiles([]string{"PROG/ZMAIN", "CLAS/Z CL.txt"}))
	require.ErrorIs(t, merge.ValidateFiles([]string{"BADKEY"}), stagesyncerrors.ErrInvalidFileFormat)
	require.ErrorIs(t, merge.ValidateFiles([]string{"/ZMAIN"}), stagesyncerrors.ErrInvalidFileFormat)
}

// failingObjects fails every write of one object kind
type failingObjects struct {
	git.ObjectStore
	kind git.Kind
}

func (o *failingObjects) Write(ctx context.Context, content []byte, kind git.Kind) (index.Hash, error) {
	if kind == o.kind {
		return "", stagesyncerrors.NewStoreIOError("write", errors.New("object storage offline"))
	}
	return o.ObjectStore.Write(ctx, content, kind)
}

// failingRefs fails every ref update
type failingRefs struct {
	git.RefStore
}

func (r *failingRefs) WriteRef(_ context.Context, _ git.Ref, _ index.Hash) error {
	return errors.New("ref storage offline")
}
