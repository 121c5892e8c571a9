package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	sharedBinaryPath string
	binaryOnce       sync.Once
	binaryErr        error
)

// GetSharedBinaryPath returns the stagesync binary built by TestMain, building
// it lazily if TestMain was not used
func GetSharedBinaryPath() (string, error) {
	binaryOnce.Do(func() {
		if sharedBinaryPath != "" {
			return
		}
		sharedBinaryPath, _, binaryErr = buildBinary()
	})
	return sharedBinaryPath, binaryErr
}

// TestMain builds the stagesync binary once before running the package tests
func TestMain(m *testing.M) {
	binaryPath, cleanup, err := buildBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build stagesync binary: %v\n", err)
		os.Exit(1)
	}
	sharedBinaryPath = binaryPath
	binaryOnce.Do(func() {})

	code := m.Run()
	cleanup()
	os.Exit(code)
}

// buildBinary builds ./cmd/stagesync into a temp directory
func buildBinary() (string, func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	moduleRoot := findModuleRoot(wd)
	if moduleRoot == "" {
		return "", nil, fmt.Errorf("could not find module root (go.mod) starting from %s", wd)
	}

	tmpDir, err := os.MkdirTemp("", "stagesync-test-binary-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() {
		_ = os.RemoveAll(tmpDir)
	}

	binaryPath := filepath.Join(tmpDir, "stagesync")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/stagesync")
	cmd.Dir = moduleRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to build: %s: %w", string(output), err)
	}

	return binaryPath, cleanup, nil
}

// findModuleRoot walks up from startDir to the directory containing go.mod
func findModuleRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
