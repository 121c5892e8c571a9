// Package errors provides sentinel errors and custom error types for the stagesync application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrResolution indicates that a stage identifier could not be resolved
	ErrResolution = errors.New("stage resolution failed")

	// ErrNoRemote indicates that a local index exists but the remote side has no ref
	ErrNoRemote = errors.New("no remote index")

	// ErrNothingToMerge indicates that neither a local nor a remote index exists
	ErrNothingToMerge = errors.New("nothing to merge")

	// ErrInvalidFileFormat indicates that a file filter entry is not an element key
	ErrInvalidFileFormat = errors.New("invalid file format")

	// ErrIndexWrite indicates that a new index could not be persisted
	ErrIndexWrite = errors.New("index write failed")

	// ErrNoIndex indicates that the merge engine was given no index at all
	ErrNoIndex = errors.New("no index to merge")

	// ErrObjectNotFound indicates that a hash is absent from the object store
	ErrObjectNotFound = errors.New("object not found")

	// ErrStoreIO indicates an underlying object store write failure
	ErrStoreIO = errors.New("object store I/O error")

	// ErrInvalidIndex indicates that a serialized index violates its invariants
	ErrInvalidIndex = errors.New("invalid index")

	// ErrNoMergeInProgress indicates that no merge-pending marker exists
	ErrNoMergeInProgress = errors.New("no merge in progress")
)

// ResolutionError represents a stage identifier that could not be resolved
type ResolutionError struct {
	Identifier string
	Err        error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve stage %q: %v", e.Identifier, e.Err)
	}
	return fmt.Sprintf("cannot resolve stage %q", e.Identifier)
}

// Is returns true if the target error is ErrResolution
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NewResolutionError creates a new ResolutionError
func NewResolutionError(identifier string, err error) *ResolutionError {
	return &ResolutionError{Identifier: identifier, Err: err}
}

// NoRemoteError is returned when a stage has local state but no remote ref
type NoRemoteError struct {
	Stage       string
	RemoteStage string
}

func (e *NoRemoteError) Error() string {
	return fmt.Sprintf("stage %s has a local index but no remote index for %s", e.Stage, e.RemoteStage)
}

// Is returns true if the target error is ErrNoRemote
func (e *NoRemoteError) Is(target error) bool {
	return target == ErrNoRemote
}

// NewNoRemoteError creates a new NoRemoteError
func NewNoRemoteError(stage, remoteStage string) *NoRemoteError {
	return &NoRemoteError{Stage: stage, RemoteStage: remoteStage}
}

// NothingToMergeError is returned when neither side of a merge has an index
type NothingToMergeError struct {
	Stage       string
	RemoteStage string
}

func (e *NothingToMergeError) Error() string {
	return fmt.Sprintf("nothing to merge: no local index for %s and no remote index for %s", e.Stage, e.RemoteStage)
}

// Is returns true if the target error is ErrNothingToMerge
func (e *NothingToMergeError) Is(target error) bool {
	return target == ErrNothingToMerge
}

// NewNothingToMergeError creates a new NothingToMergeError
func NewNothingToMergeError(stage, remoteStage string) *NothingToMergeError {
	return &NothingToMergeError{Stage: stage, RemoteStage: remoteStage}
}

// InvalidFileFormatError lists file filter entries that are not element keys
type InvalidFileFormatError struct {
	Entries []string
}

func (e *InvalidFileFormatError) Error() string {
	return fmt.Sprintf("invalid file format (expected <type>/<name>): %s", strings.Join(e.Entries, ", "))
}

// Is returns true if the target error is ErrInvalidFileFormat
func (e *InvalidFileFormatError) Is(target error) bool {
	return target == ErrInvalidFileFormat
}

// NewInvalidFileFormatError creates a new InvalidFileFormatError
func NewInvalidFileFormatError(entries ...string) *InvalidFileFormatError {
	return &InvalidFileFormatError{Entries: entries}
}

// IndexWriteError is returned when a new index cannot be stored
type IndexWriteError struct {
	Stage string
	Err   error
}

func (e *IndexWriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to write index for stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("failed to write index for stage %s: no hash produced", e.Stage)
}

// Is returns true if the target error is ErrIndexWrite
func (e *IndexWriteError) Is(target error) bool {
	return target == ErrIndexWrite
}

func (e *IndexWriteError) Unwrap() error {
	return e.Err
}

// NewIndexWriteError creates a new IndexWriteError
func NewIndexWriteError(stage string, err error) *IndexWriteError {
	return &IndexWriteError{Stage: stage, Err: err}
}

// ObjectNotFoundError represents a hash that is absent from the object store
type ObjectNotFoundError struct {
	Hash string
	Kind string
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("%s object %s not found", e.Kind, e.Hash)
}

// Is returns true if the target error is ErrObjectNotFound
func (e *ObjectNotFoundError) Is(target error) bool {
	return target == ErrObjectNotFound
}

// NewObjectNotFoundError creates a new ObjectNotFoundError
func NewObjectNotFoundError(hash, kind string) *ObjectNotFoundError {
	return &ObjectNotFoundError{Hash: hash, Kind: kind}
}

// StoreIOError wraps a failure of the underlying object storage
type StoreIOError struct {
	Op  string
	Err error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("object store %s failed: %v", e.Op, e.Err)
}

// Is returns true if the target error is ErrStoreIO
func (e *StoreIOError) Is(target error) bool {
	return target == ErrStoreIO
}

func (e *StoreIOError) Unwrap() error {
	return e.Err
}

// NewStoreIOError creates a new StoreIOError
func NewStoreIOError(op string, err error) *StoreIOError {
	return &StoreIOError{Op: op, Err: err}
}

// InvalidIndexError describes a serialized index that violates its invariants
type InvalidIndexError struct {
	Key    string
	Reason string
}

func (e *InvalidIndexError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid index: %s", e.Reason)
	}
	return fmt.Sprintf("invalid index entry %s: %s", e.Key, e.Reason)
}

// Is returns true if the target error is ErrInvalidIndex
func (e *InvalidIndexError) Is(target error) bool {
	return target == ErrInvalidIndex
}

// NewInvalidIndexError creates a new InvalidIndexError
func NewInvalidIndexError(key, reason string) *InvalidIndexError {
	return &InvalidIndexError{Key: key, Reason: reason}
}
