// Package testhelpers provides testing utilities for stagesync, including a
// scene system over a temporary repository and custom assertions.
package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"stagesync.dev/stagesync/internal/config"
	"stagesync.dev/stagesync/internal/git"
)

// Scene represents a test scene with a temporary directory holding an
// initialized stagesync repository
type Scene struct {
	Dir    string
	Repo   *git.Repository
	oldDir string
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene and changes into its directory.
// It automatically handles cleanup using t.Cleanup().
// NOTE: This function is NOT safe for parallel tests since it changes the
// working directory.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()
	scene := newScene(t, setup)

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	scene.oldDir = oldDir

	if err := os.Chdir(scene.Dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldDir)
	})

	return scene
}

// NewSceneParallel creates a new test scene without changing directory
func NewSceneParallel(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()
	return newScene(t, setup)
}

func newScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	// Resolve symlinks so paths compare equal to what FindRepoRoot returns
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}

	repo, err := git.InitRepository(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	if err := config.EnsureRepoConfig(tmpDir); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	scene := &Scene{
		Dir:  tmpDir,
		Repo: repo,
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	return scene
}

// Path returns the absolute path of a file relative to the scene root
func (s *Scene) Path(rel string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(rel))
}

// WriteFile writes a working-tree file, creating parent directories
func (s *Scene) WriteFile(rel, content string) error {
	p := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(content), 0o644)
}

// ReadFile returns the content of a working-tree file
func (s *Scene) ReadFile(rel string) (string, error) {
	data, err := os.ReadFile(s.Path(rel))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FileExists reports whether a working-tree file exists
func (s *Scene) FileExists(rel string) bool {
	_, err := os.Stat(s.Path(rel))
	return err == nil
}
