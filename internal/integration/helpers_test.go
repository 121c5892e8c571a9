package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/testhelpers"
	"stagesync.dev/stagesync/testhelpers/scenario"
)

// =============================================================================
// Test Shell - A helper to make integration tests read like terminal sessions
// =============================================================================

// TestShell wraps a scenario and provides a fluent interface for running
// commands. Stages are published straight into the repository stores, the
// way a fetch from the remote system would leave them.
type TestShell struct {
	t          *testing.T
	scenario   *scenario.Scenario
	binaryPath string
	logFile    string
	lastOutput string
}

// NewTestShell creates a shell-like test environment with an initialized repo.
func NewTestShell(t *testing.T, binaryPath string) *TestShell {
	t.Helper()
	return &TestShell{
		t:          t,
		scenario:   scenario.NewScenario(t, nil),
		binaryPath: binaryPath,
		logFile:    filepath.Join(t.TempDir(), "stagesync.log"),
	}
}

// Scenario returns the underlying scenario for direct access when needed.
func (s *TestShell) Scenario() *scenario.Scenario {
	return s.scenario
}

// Dir returns the working directory of the test shell.
func (s *TestShell) Dir() string {
	return s.scenario.Scene.Dir
}

// =============================================================================
// Publishing Stages
// =============================================================================

// Element is a key with its content and fingerprint, published into an index
type Element struct {
	Key         string
	Content     string
	Base        string
	Fingerprint string
}

func (s *TestShell) entries(elements []Element) []*index.Entry {
	entries := make([]*index.Entry, 0, len(elements))
	for _, el := range elements {
		entries = append(entries, s.scenario.Element(el.Key, el.Content, el.Base, el.Fingerprint))
	}
	return entries
}

// PublishRemote replaces the remote index of stage and returns its hash
func (s *TestShell) PublishRemote(stage string, elements ...Element) index.Hash {
	s.t.Helper()
	return s.scenario.WithRemote(stage, s.entries(elements)...)
}

// PublishLocal replaces the local index of stage and returns its hash
func (s *TestShell) PublishLocal(stage string, elements ...Element) index.Hash {
	s.t.Helper()
	return s.scenario.WithLocal(stage, s.entries(elements)...)
}

// PublishOrigin records the local index of stage inherited from origin
func (s *TestShell) PublishOrigin(stage, origin string, elements ...Element) index.Hash {
	s.t.Helper()
	return s.scenario.WithOrigin(stage, origin, s.entries(elements)...)
}

// =============================================================================
// Command Execution
// =============================================================================

func (s *TestShell) exec(args string) error {
	cmd := exec.Command(s.binaryPath, splitArgs(args)...)
	cmd.Dir = s.Dir()
	cmd.Env = append(os.Environ(),
		"STAGESYNC_NON_INTERACTIVE=true",
		"DEBUG=",
		"STAGESYNC_LOG_FILE="+s.logFile,
	)
	output, err := cmd.CombinedOutput()
	s.lastOutput = string(output)
	return err
}

// Run executes a stagesync CLI command (e.g., "merge DEV -f PROG/ZMAIN")
func (s *TestShell) Run(args string) *TestShell {
	s.t.Helper()
	err := s.exec(args)
	require.NoError(s.t, err, "$ stagesync %s\n%s", args, s.lastOutput)
	return s
}

// RunExpectError executes a stagesync CLI command and expects it to fail.
func (s *TestShell) RunExpectError(args string) *TestShell {
	s.t.Helper()
	err := s.exec(args)
	require.Error(s.t, err, "$ stagesync %s (expected error)\n%s", args, s.lastOutput)
	return s
}

// =============================================================================
// File Operations
// =============================================================================

// Write creates or modifies a working file (simulates editing an element)
func (s *TestShell) Write(rel, content string) *TestShell {
	s.t.Helper()
	s.scenario.WithFile(rel, content)
	return s
}

// =============================================================================
// Output Inspection
// =============================================================================

// Output returns the last command's output
func (s *TestShell) Output() string {
	return s.lastOutput
}

// OutputContains asserts the last output contains the given string
func (s *TestShell) OutputContains(substr string) *TestShell {
	s.t.Helper()
	require.Contains(s.t, s.lastOutput, substr)
	return s
}

// OutputNotContains asserts the last output does NOT contain the given string
func (s *TestShell) OutputNotContains(substr string) *TestShell {
	s.t.Helper()
	require.NotContains(s.t, s.lastOutput, substr)
	return s
}

// =============================================================================
// Assertions
// =============================================================================

// HasFile asserts a working file holds content
func (s *TestShell) HasFile(rel, content string) *TestShell {
	s.t.Helper()
	testhelpers.ExpectFile(s.t, s.scenario.Scene, rel, content)
	return s
}

// HasNoFile asserts a working file does not exist
func (s *TestShell) HasNoFile(rel string) *TestShell {
	s.t.Helper()
	testhelpers.ExpectNoFile(s.t, s.scenario.Scene, rel)
	return s
}

// FileContains asserts a working file contains text
func (s *TestShell) FileContains(rel, text string) *TestShell {
	s.t.Helper()
	content, err := s.scenario.Scene.ReadFile(rel)
	require.NoError(s.t, err)
	require.Contains(s.t, content, text)
	return s
}

// MergePending asserts the merge markers record remote and conflicts
func (s *TestShell) MergePending(remote index.Hash, conflicts ...string) *TestShell {
	s.t.Helper()
	testhelpers.ExpectMergePending(s.t, s.scenario.Scene, remote, conflicts)
	return s
}

// NoMergePending asserts no merge markers exist
func (s *TestShell) NoMergePending() *TestShell {
	s.t.Helper()
	testhelpers.ExpectNoMergeState(s.t, s.scenario.Scene)
	return s
}

// =============================================================================
// Logging
// =============================================================================

// Log prints a message (useful for documenting test steps)
func (s *TestShell) Log(msg string) *TestShell {
	s.t.Log(msg)
	return s
}

// LogFileContains asserts the rotated log file recorded text
func (s *TestShell) LogFileContains(text string) *TestShell {
	s.t.Helper()
	data, err := os.ReadFile(s.logFile)
	require.NoError(s.t, err)
	require.Contains(s.t, string(data), text)
	return s
}

// =============================================================================
// Utility Functions
// =============================================================================

// splitArgs splits a command string into args, respecting quotes
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	for _, r := range s {
		switch {
		case r == '"' || r == '\'':
			switch {
			case inQuote && r == quoteChar:
				inQuote = false
			case !inQuote:
				inQuote = true
				quoteChar = r
			default:
				current.WriteRune(r)
			}
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}
