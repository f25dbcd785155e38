// Package navigate emits the side-channel instruction that tells the
// shell wrapper where to cd.
//
// A child process cannot change its parent shell's working directory, so
// arbor writes the resolved worktree path to a well-known marker file and
// the wrapper function installed by `arbor shell-init` reads it after the
// binary exits. The marker holds exactly one absolute path; each write
// replaces the previous content, and deleting the file after use is the
// wrapper's responsibility, not this package's.
package navigate
