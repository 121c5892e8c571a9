package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

// MetaDirName is the directory under the repository root holding object and
// ref storage, configuration and merge markers
const MetaDirName = ".stagesync"

// ErrNotARepository is returned when no .stagesync directory can be found
var ErrNotARepository = errors.New("not a stagesync repository")

// Repository wraps the bare go-git repository used as object and ref storage
type Repository struct {
	*gogit.Repository
	root string
}

// InitRepository creates storage under root/.stagesync, or opens it if it
// already exists
func InitRepository(root string) (*Repository, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainInit(MetaDir(absRoot), true)
	if errors.Is(err, gogit.ErrRepositoryAlreadyExists) {
		return OpenRepository(absRoot)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &Repository{Repository: repo, root: absRoot}, nil
}

// OpenRepository opens the storage of the repository rooted at root
func OpenRepository(root string) (*Repository, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	if _, err := os.Stat(MetaDir(absRoot)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, absRoot)
	}

	repo, err := gogit.PlainOpen(MetaDir(absRoot))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return &Repository{Repository: repo, root: absRoot}, nil
}

// FindRepoRoot walks up from dir to the first directory containing .stagesync
func FindRepoRoot(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	for {
		info, err := os.Stat(MetaDir(current))
		if err == nil && info.IsDir() {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNotARepository
		}
		current = parent
	}
}

// MetaDir returns the .stagesync directory for a repository root
func MetaDir(root string) string {
	return filepath.Join(root, MetaDirName)
}

// GetRepoRoot returns the root directory of the repository
func (r *Repository) GetRepoRoot() string {
	return r.root
}

// Objects returns the repository's object store
func (r *Repository) Objects() *GitObjectStore {
	return NewObjectStore(r.Storer)
}

// Refs returns the repository's ref store
func (r *Repository) Refs() *GitRefStore {
	return NewRefStore(r.Storer)
}
