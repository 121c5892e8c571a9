package runtime

import (
	"context"
	"fmt"
	"os"

	"stagesync.dev/stagesync/internal/config"
	"stagesync.dev/stagesync/internal/engine"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/merger"
	"stagesync.dev/stagesync/internal/tui"
)

// Context provides access to storage and output for commands
type Context struct {
	Context  context.Context
	RepoRoot string
	Config   *config.RepoConfig
	Splog    *tui.Splog
	Objects  git.ObjectStore
	Refs     git.RefStore
	Tree     git.WorkingTree
	Merger   merger.Merger
}

// NewContext creates a context over an opened repository
func NewContext(ctx context.Context, repo *git.Repository, cfg *config.RepoConfig, splog *tui.Splog) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if splog == nil {
		splog = tui.NewSplog()
	}
	return &Context{
		Context:  ctx,
		RepoRoot: repo.GetRepoRoot(),
		Config:   cfg,
		Splog:    splog,
		Objects:  repo.Objects(),
		Refs:     repo.Refs(),
		Tree:     git.NewCheckoutTree(cfg.CheckoutRoot()),
		Merger:   merger.NewTextMerger(),
	}
}

// Engine returns a merge engine wired to the context's collaborators
func (c *Context) Engine() *engine.Engine {
	return engine.NewEngine(c.Objects, c.Tree, c.Merger, c.Splog)
}

// EngineOptions returns the merge options derived from the configuration
func (c *Context) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	if c.Config != nil {
		opts.IncludeWorkingTree = c.Config.IncludeWorkingTree()
		opts.Parallelism = c.Config.Parallelism()
	}
	return opts
}

// OpenContext opens the repository rooted at repoRoot and builds a context,
// logging to the configured log file
func OpenContext(ctx context.Context, repoRoot string) (*Context, error) {
	repo, err := git.OpenRepository(repoRoot)
	if err != nil {
		return nil, err
	}

	cfg, err := config.GetRepoConfig(repo.GetRepoRoot())
	if err != nil {
		return nil, err
	}

	splog, err := tui.NewSplogWithConfig(tui.GetLogFilePath(cfg.LogFile()))
	if err != nil {
		// The file log is optional; fall back to the console only
		splog = tui.NewSplog()
		splog.Debug("File logging disabled: %v", err)
	}

	return NewContext(ctx, repo, cfg, splog), nil
}

// GetContext locates the repository containing the working directory and
// returns a context for it
func GetContext(ctx context.Context) (*Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	repoRoot, err := git.FindRepoRoot(cwd)
	if err != nil {
		return nil, fmt.Errorf("%w. Run 'stagesync init' first", err)
	}

	return OpenContext(ctx, repoRoot)
}
