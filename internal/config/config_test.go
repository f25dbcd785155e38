package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoadDefaults verifies the defaults when no config file exists
// anywhere.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("ARBOR_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.DefaultBranch)
	assert.Equal(t, "origin", cfg.DefaultRemote)
	assert.Equal(t, 7, cfg.CleanThresholdDays)
	assert.False(t, cfg.ForceAutoClean)
	assert.Empty(t, cfg.ProtectedBranches)
}

// TestLoadJSONCWithComments verifies that a commented, trailing-comma
// config file parses — the whole point of using JSONC for a user-edited
// file.
func TestLoadJSONCWithComments(t *testing.T) {
	path := writeConfig(t, `{
  // keep release branches around
  "protectedBranches": ["develop", "release"],
  "defaultBranch": "trunk",
  "cleanThresholdDays": 14, // two weeks
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "trunk", cfg.DefaultBranch)
	assert.Equal(t, 14, cfg.CleanThresholdDays)
	assert.Equal(t, []string{"develop", "release"}, cfg.ProtectedBranches)
	assert.Equal(t, "origin", cfg.DefaultRemote, "unset fields keep their defaults")
}

// TestLoadEnvOverride verifies $ARBOR_CONFIG is honored when no explicit
// path is passed.
func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `{"defaultRemote": "upstream"}`)
	t.Setenv("ARBOR_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "upstream", cfg.DefaultRemote)
}

// TestLoadExplicitMissingFile verifies an explicitly named file that does
// not exist is an error rather than silent defaults.
func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

// TestLoadMalformed verifies a broken config file fails loudly.
func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, `{"defaultBranch": `)

	_, err := Load(path)
	assert.Error(t, err)
}

// TestLoadNegativeThreshold verifies validation of cleanThresholdDays.
func TestLoadNegativeThreshold(t *testing.T) {
	path := writeConfig(t, `{"cleanThresholdDays": -1}`)

	_, err := Load(path)
	assert.Error(t, err)
}
