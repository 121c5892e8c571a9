// Package scenario provides a high-level test scenario that combines a Scene
// and a runtime Context to provide a terse API for action tests.
package scenario

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stagesync.dev/stagesync/internal/config"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/internal/runtime"
	"stagesync.dev/stagesync/internal/tui"
	"stagesync.dev/stagesync/testhelpers"
)

// Scenario represents a repository with stages written straight into its
// stores, plus a runtime Context whose console output is captured
type Scenario struct {
	T       *testing.T
	Scene   *testhelpers.Scene
	Context *runtime.Context
	Output  *bytes.Buffer
}

// NewScenario creates a new Scenario with an optional setup function.
// The scene directory is not entered, so scenarios are safe for parallel tests.
func NewScenario(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()

	scene := testhelpers.NewSceneParallel(t, setup)
	cfg, err := config.GetRepoConfig(scene.Dir)
	require.NoError(t, err)

	output := &bytes.Buffer{}
	ctx := runtime.NewContext(context.Background(), scene.Repo, cfg, tui.NewSplogWithWriter(output))

	return &Scenario{
		T:       t,
		Scene:   scene,
		Context: ctx,
		Output:  output,
	}
}

// Blob stores content and returns its hash
func (s *Scenario) Blob(content string) index.Hash {
	s.T.Helper()
	hash, err := s.Context.Objects.Write(context.Background(), []byte(content), git.KindBlob)
	require.NoError(s.T, err)
	return hash
}

// Element builds an entry whose content is stored in the object store.
// An empty base means the entry has no base.
func (s *Scenario) Element(key, content, base, fingerprint string) *index.Entry {
	s.T.Helper()
	entry := &index.Entry{
		ElementKey:       key,
		LocalContentHash: s.Blob(content),
		Fingerprint:      fingerprint,
	}
	if base != "" {
		entry.BaseContentHash = index.HashPtr(s.Blob(base))
	}
	return entry
}

// Index stores an index with the given entries and returns its hash
func (s *Scenario) Index(stage string, entries ...*index.Entry) index.Hash {
	s.T.Helper()
	idx := index.New(stage)
	for _, entry := range entries {
		idx.Put(entry)
	}
	hash, err := git.WriteIndex(context.Background(), s.Context.Objects, idx)
	require.NoError(s.T, err)
	return hash
}

// SetRef points ref at hash
func (s *Scenario) SetRef(ref git.Ref, hash index.Hash) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Context.Refs.WriteRef(context.Background(), ref, hash))
	return s
}

// WithRemote stores a remote index for stage and returns its hash
func (s *Scenario) WithRemote(stage string, entries ...*index.Entry) index.Hash {
	s.T.Helper()
	hash := s.Index(stage, entries...)
	s.SetRef(git.RemoteRef(stage), hash)
	return hash
}

// WithLocal stores a local index for stage and returns its hash
func (s *Scenario) WithLocal(stage string, entries ...*index.Entry) index.Hash {
	s.T.Helper()
	hash := s.Index(stage, entries...)
	s.SetRef(git.LocalRef(stage), hash)
	return hash
}

// WithOrigin stores the local index of stage inherited from origin
func (s *Scenario) WithOrigin(stage, origin string, entries ...*index.Entry) index.Hash {
	s.T.Helper()
	hash := s.Index(stage, entries...)
	s.SetRef(git.OriginRef(stage, origin), hash)
	return hash
}

// WithFile writes a working-tree file
func (s *Scenario) WithFile(rel, content string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.WriteFile(rel, content))
	return s
}

// LoadRef reads the index ref points at
func (s *Scenario) LoadRef(ref git.Ref) (index.Hash, *index.Index) {
	s.T.Helper()
	hash, ok, err := s.Context.Refs.ReadRef(context.Background(), ref)
	require.NoError(s.T, err)
	require.True(s.T, ok, "Expected ref %s to exist", ref)
	idx, err := git.ReadIndex(context.Background(), s.Context.Objects, hash)
	require.NoError(s.T, err)
	return hash, idx
}

// ExpectFile asserts that a working-tree file holds content
func (s *Scenario) ExpectFile(rel, content string) *Scenario {
	s.T.Helper()
	testhelpers.ExpectFile(s.T, s.Scene, rel, content)
	return s
}

// ExpectOutput asserts that the captured console output contains text
func (s *Scenario) ExpectOutput(text string) *Scenario {
	s.T.Helper()
	require.Contains(s.T, s.Output.String(), text)
	return s
}
