package actions

import (
	"os"

	"stagesync.dev/stagesync/internal/config"
	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/tui"
)

// InitOptions contains options for the init command
type InitOptions struct {
	Dir string
}

// InitAction creates the .stagesync storage and a default configuration.
// Running it on an initialized repository changes nothing.
func InitAction(splog *tui.Splog, opts InitOptions) (*git.Repository, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	_, statErr := os.Stat(git.MetaDir(dir))
	existing := statErr == nil

	repo, err := git.InitRepository(dir)
	if err != nil {
		return nil, err
	}
	root := repo.GetRepoRoot()
	if err := config.EnsureRepoConfig(root); err != nil {
		return nil, err
	}

	if existing {
		splog.Info("Reinitialized stagesync repository in %s", tui.ColorCyan(git.MetaDir(root)))
	} else {
		splog.Info("Initialized stagesync repository in %s", tui.ColorCyan(git.MetaDir(root)))
	}
	splog.Tip("Settings live in %s", config.ConfigPath(root))
	return repo, nil
}
