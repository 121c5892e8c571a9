package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"stagesync.dev/stagesync/internal/git"
)

// Configuration keys
const (
	KeyCheckoutRoot       = "checkout.root"
	KeyParallelism        = "merge.parallelism"
	KeyIncludeWorkingTree = "merge.include_working_tree"
	KeyLogFile            = "log.file"
)

const (
	configFileName = "config.json"
	envPrefix      = "STAGESYNC"
)

// RepoConfig is the configuration of one repository
type RepoConfig struct {
	v        *viper.Viper
	repoRoot string
}

// ConfigPath returns the path of the repository configuration file
func ConfigPath(repoRoot string) string {
	return filepath.Join(git.MetaDir(repoRoot), configFileName)
}

func newViper(repoRoot string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(ConfigPath(repoRoot))
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyCheckoutRoot, ".")
	v.SetDefault(KeyParallelism, 8)
	v.SetDefault(KeyIncludeWorkingTree, true)
	v.SetDefault(KeyLogFile, "")
	return v
}

// GetRepoConfig reads the repository configuration.
// A missing file yields the defaults.
func GetRepoConfig(repoRoot string) (*RepoConfig, error) {
	v := newViper(repoRoot)

	if _, err := os.Stat(ConfigPath(repoRoot)); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse repo config: %w", err)
		}
	}

	return &RepoConfig{v: v, repoRoot: repoRoot}, nil
}

// CheckoutRoot returns the absolute directory element files are written under
func (c *RepoConfig) CheckoutRoot() string {
	root := c.v.GetString(KeyCheckoutRoot)
	if root == "" {
		root = "."
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	return filepath.Join(c.repoRoot, root)
}

// Parallelism returns how many elements a merge processes concurrently
func (c *RepoConfig) Parallelism() int {
	return c.v.GetInt(KeyParallelism)
}

// IncludeWorkingTree returns whether merges consider existing working files
func (c *RepoConfig) IncludeWorkingTree() bool {
	return c.v.GetBool(KeyIncludeWorkingTree)
}

// LogFile returns the configured log file path, empty for the default
func (c *RepoConfig) LogFile() string {
	return c.v.GetString(KeyLogFile)
}

// Set overrides a configuration value in memory
func (c *RepoConfig) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Save writes the configuration file
func (c *RepoConfig) Save() error {
	if err := c.v.WriteConfigAs(ConfigPath(c.repoRoot)); err != nil {
		return fmt.Errorf("failed to write repo config: %w", err)
	}
	return nil
}

// EnsureRepoConfig writes a configuration file with the defaults unless one
// already exists
func EnsureRepoConfig(repoRoot string) error {
	v := newViper(repoRoot)
	err := v.SafeWriteConfigAs(ConfigPath(repoRoot))
	var exists viper.ConfigFileAlreadyExistsError
	if err != nil && !errors.As(err, &exists) {
		return fmt.Errorf("failed to write repo config: %w", err)
	}
	return nil
}
