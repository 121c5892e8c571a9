package git

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"

	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/index"
)

// Kind names what an object holds. Both kinds are stored as git blobs, so a
// hash is valid for either kind and the hashing function is shared.
type Kind string

const (
	// KindBlob is raw element content
	KindBlob Kind = "blob"
	// KindIndex is a serialized index
	KindIndex Kind = "index"
)

// ObjectStore is content-addressed storage for blobs and serialized indexes
type ObjectStore interface {
	// Read returns the content stored under hash.
	// Fails with an ObjectNotFoundError if the hash is absent.
	Read(ctx context.Context, hash index.Hash, kind Kind) ([]byte, error)
	// Write stores content and returns its hash. Identical content always
	// yields the identical hash.
	Write(ctx context.Context, content []byte, kind Kind) (index.Hash, error)
	// Hash returns the hash Write would return for content, without storing it
	Hash(content []byte, kind Kind) index.Hash
}

// GitObjectStore implements ObjectStore on a go-git object storer
type GitObjectStore struct {
	storer storer.EncodedObjectStorer
}

// NewObjectStore creates an ObjectStore backed by the given storer
// (filesystem storage for repositories, memory storage in tests)
func NewObjectStore(s storer.EncodedObjectStorer) *GitObjectStore {
	return &GitObjectStore{storer: s}
}

// Read retrieves the content of the object with the given hash
func (s *GitObjectStore) Read(ctx context.Context, hash index.Hash, kind Kind) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !index.IsHash(string(hash)) {
		return nil, stagesyncerrors.NewObjectNotFoundError(string(hash), string(kind))
	}

	obj, err := s.storer.EncodedObject(plumbing.BlobObject, plumbing.NewHash(string(hash)))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, stagesyncerrors.NewObjectNotFoundError(string(hash), string(kind))
		}
		return nil, stagesyncerrors.NewStoreIOError("read", err)
	}

	reader, err := obj.Reader()
	if err != nil {
		return nil, stagesyncerrors.NewStoreIOError("read", fmt.Errorf("failed to open object reader: %w", err))
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, stagesyncerrors.NewStoreIOError("read", fmt.Errorf("failed to read object content: %w", err))
	}
	return content, nil
}

// Write stores content as a blob object and returns its hash
func (s *GitObjectStore) Write(ctx context.Context, content []byte, kind Kind) (index.Hash, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	obj := s.storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(content)))

	writer, err := obj.Writer()
	if err != nil {
		return "", stagesyncerrors.NewStoreIOError("write", fmt.Errorf("failed to create object writer: %w", err))
	}
	if _, err := writer.Write(content); err != nil {
		_ = writer.Close()
		return "", stagesyncerrors.NewStoreIOError("write", fmt.Errorf("failed to write %s content: %w", kind, err))
	}
	if err := writer.Close(); err != nil {
		return "", stagesyncerrors.NewStoreIOError("write", err)
	}

	hash, err := s.storer.SetEncodedObject(obj)
	if err != nil {
		return "", stagesyncerrors.NewStoreIOError("write", fmt.Errorf("failed to store %s: %w", kind, err))
	}
	return index.Hash(hash.String()), nil
}

// Hash computes the blob hash of content
func (s *GitObjectStore) Hash(content []byte, _ Kind) index.Hash {
	return index.Hash(plumbing.ComputeHash(plumbing.BlobObject, content).String())
}

// ReadIndex loads and decodes the index stored under hash
func ReadIndex(ctx context.Context, store ObjectStore, hash index.Hash) (*index.Index, error) {
	data, err := store.Read(ctx, hash, KindIndex)
	if err != nil {
		return nil, err
	}
	idx, err := index.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", hash.Short(), err)
	}
	return idx, nil
}

// WriteIndex encodes idx and stores it, returning the index hash
func WriteIndex(ctx context.Context, store ObjectStore, idx *index.Index) (index.Hash, error) {
	data, err := index.Encode(idx)
	if err != nil {
		return "", err
	}
	return store.Write(ctx, data, KindIndex)
}
