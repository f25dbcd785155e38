package navigate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// envMarkerPath overrides the marker location, mainly for tests and for
// users with unusual temp-dir setups.
const envMarkerPath = "ARBOR_NAV_FILE"

// MarkerPath returns the location of the navigation marker file: the
// ARBOR_NAV_FILE environment variable when set, otherwise a per-user file
// in the system temp directory.
func MarkerPath() string {
	if p := os.Getenv(envMarkerPath); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("arbor-nav-%d", os.Getuid()))
}

// Write records target as the path the shell wrapper should cd into.
// The target must be absolute — the wrapper runs with an unknown working
// directory. Last write wins.
func Write(target string) error {
	return writeTo(MarkerPath(), target)
}

// writeTo writes one absolute path as a single line of UTF-8 text.
func writeTo(markerPath, target string) error {
	if !filepath.IsAbs(target) {
		return fmt.Errorf("navigation target %q is not an absolute path", target)
	}
	// 0600: the marker names a directory in the user's checkout layout and
	// nothing else needs to read it.
	return os.WriteFile(markerPath, []byte(target+"\n"), 0600)
}

// Read returns the currently recorded target, with the trailing newline
// stripped. Used by tests and by the wrapper-equivalent logic.
func Read(markerPath string) (string, error) {
	data, err := os.ReadFile(markerPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
