package git

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/arbor/internal/model"
)

// Client provides git operations scoped to one repository. All methods
// shell out to the git binary with `-C <repoPath>` so the process working
// directory never matters; the current worktree is always passed in
// explicitly by callers that need it.
type Client struct {
	repoPath string
}

// New creates a Client bound to the repository at repoPath. The path may
// be the main checkout, a linked worktree, or a bare store — git resolves
// the common directory itself.
func New(repoPath string) *Client {
	return &Client{repoPath: repoPath}
}

// RepoRoot returns the absolute path to the top-level directory of the
// working tree containing dir.
//
// This uses `git rev-parse --show-toplevel` which works for both the main
// repository and linked worktrees — it returns the root of whichever
// working tree contains the specified path.
func RepoRoot(dir string) (string, error) {
	output, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// ListWorktrees returns one record per worktree registered with the
// repository, plus the bare central-store entry when the repository uses
// a bare layout.
//
// It runs `git worktree list --porcelain` which produces machine-parseable
// output: blocks separated by blank lines, each containing a path line, an
// optional HEAD line, an optional branch line, and optional standalone
// markers like "bare" or "detached".
//
// A non-zero exit is fatal for callers — no command can proceed safely
// without ground truth about existing worktrees.
func (c *Client) ListWorktrees() ([]model.WorktreeRecord, error) {
	output, err := runGit(c.repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGitError, "failed to list worktrees", err)
	}
	return parseWorktreeList(output), nil
}

// AddWorktree creates a worktree at path checking out the existing local
// branch. The branch name is always passed explicitly as the start-point
// argument — git must never infer a branch from the last path segment,
// because a path like team/feature has to check out branch "team/feature",
// not "feature".
func (c *Client) AddWorktree(path, branch string) error {
	_, err := runGit(c.repoPath, "worktree", "add", path, branch)
	return err
}

// AddWorktreeNewBranch creates a worktree at path on a brand-new branch
// started at startPoint (a remote-tracking ref, FETCH_HEAD, or a local
// ref).
func (c *Client) AddWorktreeNewBranch(path, branch, startPoint string) error {
	_, err := runGit(c.repoPath, "worktree", "add", "-b", branch, path, startPoint)
	return err
}

// RemoveWorktree deletes the worktree at path. With force, `--force` is
// added so worktrees with uncommitted or untracked changes can still be
// removed.
func (c *Client) RemoveWorktree(path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := runGit(c.repoPath, args...)
	return err
}

// PruneWorktrees drops stale administrative entries for worktree
// directories that no longer exist on disk.
func (c *Client) PruneWorktrees() error {
	_, err := runGit(c.repoPath, "worktree", "prune")
	return err
}

// currentBranch returns the short name of the branch checked out in dir,
// or "HEAD" for a detached HEAD state.
func (c *Client) currentBranch(dir string) (string, error) {
	output, err := runGit(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// IsDirty reports whether the worktree at dir has uncommitted changes,
// including untracked files. Probe failures surface as errors so the
// caller can fail toward safety.
func (c *Client) IsDirty(dir string) (bool, error) {
	output, err := runGit(dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

// AheadOfUpstream returns the number of commits in dir's checked-out
// branch that its upstream does not have. The second return value is
// false when no upstream is configured, in which case the count is 0.
//
// A branch without an upstream and a probe that failed outright are
// different states: the first is normal for never-pushed branches, the
// second must surface as an error so callers can fail toward safety.
func (c *Client) AheadOfUpstream(dir string) (int, bool, error) {
	if _, err := runGit(dir, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}"); err != nil {
		if isNoUpstream(err) {
			return 0, false, nil
		}
		return 0, false, err
	}

	output, err := runGit(dir, "rev-list", "--count", "@{u}..HEAD")
	if err != nil {
		return 0, true, err
	}

	count := 0
	if _, scanErr := fmt.Sscanf(strings.TrimSpace(output), "%d", &count); scanErr != nil {
		return 0, true, fmt.Errorf("unexpected rev-list output %q: %w", output, scanErr)
	}
	return count, true, nil
}

// isNoUpstream reports whether a failed `rev-parse @{u}` means the
// normal no-upstream state rather than a broken probe. runGit embeds
// git's stderr in the error, which is where these diagnostics land:
// "no upstream configured" for never-pushed branches, "does not point
// to a branch" for detached HEADs.
func isNoUpstream(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no upstream configured") ||
		strings.Contains(msg, "does not point to a branch")
}

// runGit executes a git command with the given arguments, using `-C dir`
// so git changes into the target directory itself rather than the process
// doing so.
//
// It captures stdout and stderr separately. On success it returns stdout;
// on failure it returns an error that includes the trimmed stderr output,
// which is where git writes its diagnostics.
func runGit(dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderrStr)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	return stdout.String(), nil
}

// parseWorktreeList parses `git worktree list --porcelain` output into
// records. Blocks are separated by blank lines; within a block each line
// is a key, optionally followed by a space and a value. "bare" and
// "detached" appear as standalone markers.
func parseWorktreeList(output string) []model.WorktreeRecord {
	var records []model.WorktreeRecord

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var current *model.WorktreeRecord
	for _, line := range lines {
		if line == "" {
			if current != nil {
				records = append(records, *current)
				current = nil
			}
			continue
		}

		key, value, _ := strings.Cut(line, " ")

		switch key {
		case "worktree":
			current = &model.WorktreeRecord{Path: value}
		case "HEAD":
			if current != nil {
				current.HeadCommit = value
			}
		case "branch":
			if current != nil {
				current.Branch = model.ShortBranch(value)
			}
		case "bare":
			if current != nil {
				current.IsBare = true
			}
			// "detached" needs no handling — a detached worktree simply has
			// an empty Branch field.
		}
	}

	if current != nil {
		records = append(records, *current)
	}

	return records
}
