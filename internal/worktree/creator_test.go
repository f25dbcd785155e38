package worktree

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/arbor/internal/git"
	"github.com/mmr-tortoise/arbor/internal/model"
)

// setupTestRepo creates a temporary git repository with one commit.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\n"), 0644))
	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

// setupBareRemote wires a bare repository up as "origin" and pushes the
// current branch.
func setupBareRemote(t *testing.T, repo string) {
	t.Helper()

	bare := t.TempDir()
	runTestGit(t, bare, "init", "--bare")
	runTestGit(t, repo, "remote", "add", "origin", bare)
	runTestGit(t, repo, "push", "-u", "origin", defaultBranch(t, repo))
}

// defaultBranch returns the branch created by `git init` (main or master
// depending on configuration).
func defaultBranch(t *testing.T, repo string) string {
	t.Helper()
	out := runTestGit(t, repo, "rev-parse", "--abbrev-ref", "HEAD")
	return strings.TrimSpace(out)
}

// runTestGit runs a git command in dir, failing the test on non-zero exit.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// TestEnsureExistingLocalBranch verifies creation of a worktree for a
// branch that already exists locally: the branch is passed explicitly,
// no new branch is created, and tracking configuration is untouched.
func TestEnsureExistingLocalBranch(t *testing.T) {
	repo := setupTestRepo(t)
	runTestGit(t, repo, "branch", "team/feature")

	c := NewCreator(git.New(repo))
	wt := filepath.Join(t.TempDir(), "team-feature")

	outcome, err := c.Ensure(Request{Branch: "team/feature", Path: wt})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome.Kind)
	assert.False(t, outcome.NewBranchCreated)
	assert.False(t, outcome.UpstreamSet)

	branch := strings.TrimSpace(runTestGit(t, wt, "rev-parse", "--abbrev-ref", "HEAD"))
	assert.Equal(t, "team/feature", branch)
}

// TestEnsureRemoteOnlyBranch verifies the fetch path: a branch
// that exists only on origin is fetched, a local branch is created from
// the tracking ref, and upstream is rewritten to point at
// origin/<branch> with the matching merge ref.
func TestEnsureRemoteOnlyBranch(t *testing.T) {
	repo := setupTestRepo(t)
	setupBareRemote(t, repo)
	runTestGit(t, repo, "push", "origin", defaultBranch(t, repo)+":feature/x")

	c := NewCreator(git.New(repo))
	wt := filepath.Join(t.TempDir(), "feature-x")

	outcome, err := c.Ensure(Request{Branch: "feature/x", Path: wt, Remote: "origin"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome.Kind)
	assert.True(t, outcome.NewBranchCreated)
	assert.True(t, outcome.UpstreamSet)
	assert.True(t, outcome.Start.Fetched)

	remote := strings.TrimSpace(runTestGit(t, wt, "config", "branch.feature/x.remote"))
	merge := strings.TrimSpace(runTestGit(t, wt, "config", "branch.feature/x.merge"))
	assert.Equal(t, "origin", remote)
	assert.Equal(t, "refs/heads/feature/x", merge)
}

// TestEnsureIdempotent verifies invoking the same request twice navigates
// the second time instead of erroring or duplicating.
func TestEnsureIdempotent(t *testing.T) {
	repo := setupTestRepo(t)
	runTestGit(t, repo, "branch", "twice")

	c := NewCreator(git.New(repo))
	wt := filepath.Join(t.TempDir(), "twice-wt")

	first, err := c.Ensure(Request{Branch: "twice", Path: wt})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, first.Kind)

	second, err := c.Ensure(Request{Branch: "twice", Path: wt})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNavigated, second.Kind)
	assert.Equal(t, "twice", second.Branch)

	// Still exactly one worktree for the branch.
	records, err := git.New(repo).ListWorktrees()
	require.NoError(t, err)
	count := 0
	for _, r := range records {
		if r.Branch == "twice" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

// TestEnsureBranchCheckedOutElsewhere verifies redirect to the worktree
// that already holds the branch, even when a different target path was
// requested.
func TestEnsureBranchCheckedOutElsewhere(t *testing.T) {
	repo := setupTestRepo(t)
	base := defaultBranch(t, repo)

	c := NewCreator(git.New(repo))
	elsewhere := filepath.Join(t.TempDir(), "elsewhere")

	outcome, err := c.Ensure(Request{Branch: base, Path: elsewhere})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNavigated, outcome.Kind)

	resolvedRepo, _ := filepath.EvalSymlinks(repo)
	resolvedOutcome, _ := filepath.EvalSymlinks(outcome.Path)
	assert.Equal(t, resolvedRepo, resolvedOutcome, "should point at the main checkout")

	_, statErr := os.Stat(elsewhere)
	assert.True(t, os.IsNotExist(statErr), "requested path must not be created")
}

// TestEnsureRegisteredPath verifies transition 2: a path that is already
// a registered worktree navigates even when branches do not match.
func TestEnsureRegisteredPath(t *testing.T) {
	repo := setupTestRepo(t)

	wt := filepath.Join(t.TempDir(), "detached-wt")
	runTestGit(t, repo, "worktree", "add", "--detach", wt)

	// Use the path exactly as git registered it.
	records, err := git.New(repo).ListWorktrees()
	require.NoError(t, err)
	var registered string
	for _, r := range records {
		if r.Branch == "" && !r.IsBare {
			registered = r.Path
		}
	}
	require.NotEmpty(t, registered)

	c := NewCreator(git.New(repo))
	outcome, err := c.Ensure(Request{Branch: "whatever", Path: registered})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNavigated, outcome.Kind)
	assert.Equal(t, registered, outcome.Path)
}

// TestEnsureLeftoverRejected verifies the checkout policy: a directory at
// the target path that git does not know about fails loudly and is never
// deleted.
func TestEnsureLeftoverRejected(t *testing.T) {
	repo := setupTestRepo(t)
	runTestGit(t, repo, "branch", "blocked")

	leftover := filepath.Join(t.TempDir(), "leftover")
	require.NoError(t, os.MkdirAll(leftover, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(leftover, "precious.txt"), []byte("data"), 0644))

	c := NewCreator(git.New(repo))
	_, err := c.Ensure(Request{Branch: "blocked", Path: leftover})

	var leftoverErr *model.LeftoverPathError
	require.True(t, errors.As(err, &leftoverErr))

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitLeftoverPath, cliErr.Code)

	// The user's data survives.
	_, statErr := os.Stat(filepath.Join(leftover, "precious.txt"))
	assert.NoError(t, statErr)
}

// TestEnsureLeftoverRemovedWhenEmpty verifies the add policy: a known-empty
// leftover directory is removed and creation proceeds.
func TestEnsureLeftoverRemovedWhenEmpty(t *testing.T) {
	repo := setupTestRepo(t)
	runTestGit(t, repo, "branch", "reclaim")

	leftover := filepath.Join(t.TempDir(), "empty-leftover")
	require.NoError(t, os.MkdirAll(leftover, 0755))

	c := NewCreator(git.New(repo))
	outcome, err := c.Ensure(Request{Branch: "reclaim", Path: leftover, RemoveLeftover: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome.Kind)
}

// TestEnsureLeftoverNonEmptyStillRejected verifies the add policy never
// extends to directories with content.
func TestEnsureLeftoverNonEmptyStillRejected(t *testing.T) {
	repo := setupTestRepo(t)
	runTestGit(t, repo, "branch", "careful")

	leftover := filepath.Join(t.TempDir(), "full-leftover")
	require.NoError(t, os.MkdirAll(leftover, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(leftover, "keep.txt"), []byte("keep"), 0644))

	c := NewCreator(git.New(repo))
	_, err := c.Ensure(Request{Branch: "careful", Path: leftover, RemoveLeftover: true})

	var leftoverErr *model.LeftoverPathError
	require.True(t, errors.As(err, &leftoverErr))
	_, statErr := os.Stat(filepath.Join(leftover, "keep.txt"))
	assert.NoError(t, statErr)
}

// TestEnsureRefConflict verifies the rel / rel/v2 sequence:
// creating rel succeeds, then rel/v2 fails naming rel, with no
// filesystem mutation.
func TestEnsureRefConflict(t *testing.T) {
	repo := setupTestRepo(t)
	c := NewCreator(git.New(repo))

	relPath := filepath.Join(t.TempDir(), "rel")
	outcome, err := c.Ensure(Request{Branch: "rel", Path: relPath, NewBranch: true, Source: defaultBranch(t, repo)})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome.Kind)

	v2Path := filepath.Join(t.TempDir(), "rel-v2")
	_, err = c.Ensure(Request{Branch: "rel/v2", Path: v2Path})

	var conflictErr *model.RefConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, "rel", conflictErr.Conflicting)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitRefConflict, cliErr.Code)

	_, statErr := os.Stat(v2Path)
	assert.True(t, os.IsNotExist(statErr), "conflict must be detected before touching the filesystem")
}

// TestEnsureNewBranchFlagExisting verifies -b with an existing branch is
// an error rather than a silent checkout.
func TestEnsureNewBranchFlagExisting(t *testing.T) {
	repo := setupTestRepo(t)
	runTestGit(t, repo, "branch", "taken")

	c := NewCreator(git.New(repo))
	_, err := c.Ensure(Request{Branch: "taken", Path: filepath.Join(t.TempDir(), "wt"), NewBranch: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

// TestEnsureNewBranchFromSource verifies -b with an explicit base: the
// new branch starts at the base branch, and with no remote configured no
// upstream is set.
func TestEnsureNewBranchFromSource(t *testing.T) {
	repo := setupTestRepo(t)
	base := defaultBranch(t, repo)

	c := NewCreator(git.New(repo))
	wt := filepath.Join(t.TempDir(), "topic-wt")

	outcome, err := c.Ensure(Request{Branch: "topic", Path: wt, NewBranch: true, Source: base, Remote: "origin"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome.Kind)
	assert.True(t, outcome.NewBranchCreated)
	assert.False(t, outcome.UpstreamSet)
	assert.Equal(t, "no remote configured", outcome.Start.Note)

	branch := strings.TrimSpace(runTestGit(t, wt, "rev-parse", "--abbrev-ref", "HEAD"))
	assert.Equal(t, "topic", branch)
}

// TestEnsureBranchNotFound verifies a branch that exists nowhere fails
// with the branch-not-found exit code.
func TestEnsureBranchNotFound(t *testing.T) {
	repo := setupTestRepo(t)
	setupBareRemote(t, repo)

	c := NewCreator(git.New(repo))
	_, err := c.Ensure(Request{Branch: "ghost", Path: filepath.Join(t.TempDir(), "wt"), Remote: "origin"})

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitBranchNotFound, cliErr.Code)
}
