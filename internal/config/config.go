package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// envConfigPath overrides the config file location.
const envConfigPath = "ARBOR_CONFIG"

// Config holds the user-tunable settings consumed by the worktree
// lifecycle components. Zero values are replaced by defaults in Load.
type Config struct {
	// DefaultBranch is the branch cleanup must never remove and the base
	// for new branches created with -b when no --base is given.
	DefaultBranch string `json:"defaultBranch"`

	// DefaultRemote is the remote probed and fetched by the branch
	// resolver.
	DefaultRemote string `json:"defaultRemote"`

	// CleanThresholdDays is the minimum age, in days, for a worktree to be
	// a cleanup candidate when the age threshold is applied.
	CleanThresholdDays int `json:"cleanThresholdDays"`

	// ForceAutoClean skips the safety checks (uncommitted/unpushed state)
	// during cleanup. Protected branches are still never removed.
	ForceAutoClean bool `json:"forceAutoClean"`

	// ProtectedBranches lists branch names cleanup must skip in addition
	// to DefaultBranch.
	ProtectedBranches []string `json:"protectedBranches"`

	// WorktreeDir, when set, is the directory new worktrees are created
	// under (as <WorktreeDir>/<name>). Empty means sibling directories
	// next to the repository root.
	WorktreeDir string `json:"worktreeDir"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		DefaultBranch:      "main",
		DefaultRemote:      "origin",
		CleanThresholdDays: 7,
	}
}

// Load reads the configuration, searching in order: the explicit path
// argument, $ARBOR_CONFIG, then ~/.config/arbor/config.json. A missing
// file yields defaults; a file that exists but cannot be parsed is an
// error, because silently ignoring a broken config would surprise the
// user with default behavior.
func Load(explicitPath string) (Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		path = filepath.Join(home, ".config", "arbor", "config.json")
	}

	cfg, err := loadFile(path)
	if err != nil {
		if os.IsNotExist(err) && explicitPath == "" {
			// No config file is the normal case.
			return Default(), nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// loadFile parses one JSONC config file, applying defaults for absent
// fields.
func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.DefaultBranch == "" {
		cfg.DefaultBranch = "main"
	}
	if cfg.DefaultRemote == "" {
		cfg.DefaultRemote = "origin"
	}
	if cfg.CleanThresholdDays < 0 {
		return Config{}, fmt.Errorf("cleanThresholdDays must be >= 0, got %d", cfg.CleanThresholdDays)
	}

	return cfg, nil
}
