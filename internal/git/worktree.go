package git

import (
	"context"
	"fmt"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// WorkingTree reads and writes element files under a checkout root.
// Paths are slash-separated and relative to the root.
type WorkingTree interface {
	Exists(ctx context.Context, path string) bool
	// Read fails with an error wrapping os.ErrNotExist if the file is absent
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, content []byte) error
}

// FileTree implements WorkingTree on a billy filesystem
type FileTree struct {
	fs billy.Filesystem
}

// NewFileTree creates a WorkingTree over fs (memfs in tests)
func NewFileTree(fs billy.Filesystem) *FileTree {
	return &FileTree{fs: fs}
}

// NewCheckoutTree creates a WorkingTree rooted at dir on the local disk
func NewCheckoutTree(dir string) *FileTree {
	return NewFileTree(osfs.New(dir))
}

// Root returns the checkout root directory
func (t *FileTree) Root() string {
	return t.fs.Root()
}

// Exists reports whether a regular file exists at p
func (t *FileTree) Exists(_ context.Context, p string) bool {
	info, err := t.fs.Stat(p)
	return err == nil && !info.IsDir()
}

// Read returns the content of the file at p
func (t *FileTree) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := util.ReadFile(t.fs, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return content, nil
}

// Write replaces the file at p, creating parent directories as needed
func (t *FileTree) Write(ctx context.Context, p string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := path.Dir(p); dir != "." && dir != "/" {
		if err := t.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
	}
	if err := util.WriteFile(t.fs, p, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}
