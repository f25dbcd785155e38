// Package git provides the git subprocess layer for the arbor CLI:
// the worktree registry, the branch resolver, and the working-state
// probes used by cleanup.
//
// All Git operations are performed via os/exec calls to the git binary,
// rather than using a Git library like go-git. This approach:
//   - Avoids CGO dependencies (libgit2)
//   - Uses the exact same Git behavior the user sees in their terminal
//   - Requires Git >= 2.15 (when worktree support matured)
//
// Every invocation is a blocking call; each command's result gates the
// next decision. The package holds no state between calls other than the
// repository path the Client was constructed with.
package git
