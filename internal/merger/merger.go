// Package merger provides three-way content merging of element files.
package merger

import (
	"bytes"
	"fmt"
	"io"

	"github.com/epiclabs-io/diff3"
)

// Status is the outcome of a content merge
type Status string

const (
	// StatusMerged means all changes were combined without overlap
	StatusMerged Status = "MERGED"
	// StatusConflict means overlapping edits were left between conflict markers
	StatusConflict Status = "CONFLICT"
)

// Default labels written after the conflict markers
const (
	DefaultLocalLabel  = "LOCAL"
	DefaultRemoteLabel = "REMOTE"
)

// Result is the merged content and its status
type Result struct {
	Content []byte
	Status  Status
}

// Merger performs a three-way merge of raw byte buffers.
// Implementations must be deterministic and safe for concurrent use.
type Merger interface {
	Merge3(base, local, remote []byte) (*Result, error)
}

// TextMerger implements Merger with the diff3 algorithm and git-style markers
type TextMerger struct {
	LocalLabel  string
	RemoteLabel string
}

// NewTextMerger creates a TextMerger with the default labels
func NewTextMerger() *TextMerger {
	return &TextMerger{
		LocalLabel:  DefaultLocalLabel,
		RemoteLabel: DefaultRemoteLabel,
	}
}

// Merge3 combines the local and remote edits of base
func (m *TextMerger) Merge3(base, local, remote []byte) (*Result, error) {
	// Trivial cases need no line matching
	switch {
	case bytes.Equal(local, remote):
		return &Result{Content: clone(local), Status: StatusMerged}, nil
	case bytes.Equal(local, base):
		return &Result{Content: clone(remote), Status: StatusMerged}, nil
	case bytes.Equal(remote, base):
		return &Result{Content: clone(local), Status: StatusMerged}, nil
	}

	result, err := diff3.Merge(
		bytes.NewReader(local),
		bytes.NewReader(base),
		bytes.NewReader(remote),
		true,
		m.LocalLabel,
		m.RemoteLabel,
	)
	if err != nil {
		return nil, fmt.Errorf("diff3 merge failed: %w", err)
	}

	merged, err := io.ReadAll(result.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to read merge result: %w", err)
	}

	status := StatusMerged
	if result.Conflicts {
		status = StatusConflict
	}
	return &Result{Content: merged, Status: status}, nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
