// Package worktree drives the creation state machine that turns a
// (worktree path, branch name) pair into an on-disk worktree.
//
// A request resolves to exactly one of:
//   - navigating to an existing worktree (the branch is already checked
//     out somewhere, or the path is already registered),
//   - a rejection (ref-namespace conflict, or a leftover directory at the
//     target path), or
//   - creation of a new worktree, with upstream tracking fixed up when
//     the branch was started from a remote ref.
//
// All resolution errors abort before any filesystem mutation; a partial
// worktree is never left behind.
package worktree
