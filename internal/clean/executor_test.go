package clean

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/arbor/internal/git"
	"github.com/mmr-tortoise/arbor/internal/model"
)

// stubRemover records removal calls and can fail selected paths.
type stubRemover struct {
	removed []string
	fail    map[string]error
}

func (s *stubRemover) RemoveWorktree(path string, force bool) error {
	if err := s.fail[path]; err != nil {
		return err
	}
	s.removed = append(s.removed, path)
	return nil
}

func cleanable(path string) model.CleanableWorktree {
	return model.CleanableWorktree{
		WorktreeRecord: model.WorktreeRecord{Path: path, Branch: filepath.Base(path)},
		CanClean:       true,
	}
}

func skipped(path, reason string) model.CleanableWorktree {
	return model.CleanableWorktree{
		WorktreeRecord: model.WorktreeRecord{Path: path, Branch: filepath.Base(path)},
		Reason:         reason,
	}
}

// TestRunDryRun verifies dry-run reports the identical partition and
// performs zero removals.
func TestRunDryRun(t *testing.T) {
	remover := &stubRemover{}
	e := NewExecutor(remover, strings.NewReader(""), &strings.Builder{})

	items := []model.CleanableWorktree{
		cleanable("/wt/a"),
		skipped("/wt/b", ReasonDefaultBranch),
	}

	report, err := e.Run(items, RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Len(t, report.Cleanable, 1)
	assert.Len(t, report.Skipped, 1)
	assert.Empty(t, report.Removed)
	assert.Empty(t, remover.removed, "dry-run must not remove anything")
}

// TestRunConfirmDeclined verifies that answering "n" cancels the whole
// batch with no removals.
func TestRunConfirmDeclined(t *testing.T) {
	remover := &stubRemover{}
	out := &strings.Builder{}
	e := NewExecutor(remover, strings.NewReader("n\n"), out)

	report, err := e.Run([]model.CleanableWorktree{cleanable("/wt/a")}, RunOptions{})
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	assert.Empty(t, remover.removed)
	assert.Contains(t, out.String(), "Remove 1 worktree?")
}

// TestRunConfirmAccepted verifies a single "y" covers the entire batch.
func TestRunConfirmAccepted(t *testing.T) {
	remover := &stubRemover{}
	out := &strings.Builder{}
	e := NewExecutor(remover, strings.NewReader("y\n"), out)

	items := []model.CleanableWorktree{cleanable("/wt/a"), cleanable("/wt/b")}
	report, err := e.Run(items, RunOptions{})
	require.NoError(t, err)
	assert.False(t, report.Cancelled)
	assert.Equal(t, []string{"/wt/a", "/wt/b"}, report.Removed)
	assert.Contains(t, out.String(), "Remove 2 worktrees?")
}

// TestRunClosedStdin verifies a closed stdin counts as "no".
func TestRunClosedStdin(t *testing.T) {
	remover := &stubRemover{}
	e := NewExecutor(remover, strings.NewReader(""), &strings.Builder{})

	report, err := e.Run([]model.CleanableWorktree{cleanable("/wt/a")}, RunOptions{})
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	assert.Empty(t, remover.removed)
}

// TestRunPartialFailure verifies one failed removal does not abort the
// rest and ends up in the failure tally.
func TestRunPartialFailure(t *testing.T) {
	remover := &stubRemover{fail: map[string]error{"/wt/bad": errors.New("locked")}}
	e := NewExecutor(remover, strings.NewReader(""), &strings.Builder{})

	items := []model.CleanableWorktree{
		cleanable("/wt/good"),
		cleanable("/wt/bad"),
		cleanable("/wt/also-good"),
	}

	report, err := e.Run(items, RunOptions{AssumeYes: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"/wt/good", "/wt/also-good"}, report.Removed)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "/wt/bad", report.Failed[0].Path)
	assert.Contains(t, report.Failed[0].Reason, "locked")
}

// snapshotRemover captures everything written to out at the moment the
// first removal starts.
type snapshotRemover struct {
	out      *strings.Builder
	snapshot string
	taken    bool
	removed  []string
}

func (s *snapshotRemover) RemoveWorktree(path string, force bool) error {
	if !s.taken {
		s.snapshot = s.out.String()
		s.taken = true
	}
	s.removed = append(s.removed, path)
	return nil
}

// TestRunPreviewBeforeConfirm verifies every doomed path has been shown
// before the confirmation prompt, and therefore before any removal — the
// user never confirms a batch deletion blind.
func TestRunPreviewBeforeConfirm(t *testing.T) {
	out := &strings.Builder{}
	remover := &snapshotRemover{out: out}
	e := NewExecutor(remover, strings.NewReader("y\n"), out)

	items := []model.CleanableWorktree{
		cleanable("/wt/doomed-a"),
		cleanable("/wt/doomed-b"),
	}

	report, err := e.Run(items, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/wt/doomed-a", "/wt/doomed-b"}, report.Removed)

	require.True(t, remover.taken)
	promptAt := strings.Index(remover.snapshot, "Remove 2 worktrees?")
	require.GreaterOrEqual(t, promptAt, 0, "prompt must precede the first removal")

	for _, path := range []string{"/wt/doomed-a", "/wt/doomed-b"} {
		at := strings.Index(remover.snapshot, path)
		require.GreaterOrEqual(t, at, 0, "%s must be shown before removal starts", path)
		assert.Less(t, at, promptAt, "%s must be shown before the prompt", path)
	}
}

// TestRunNothingCleanable verifies no prompt is shown when there is
// nothing to remove.
func TestRunNothingCleanable(t *testing.T) {
	remover := &stubRemover{}
	out := &strings.Builder{}
	e := NewExecutor(remover, strings.NewReader(""), out)

	report, err := e.Run([]model.CleanableWorktree{skipped("/wt/a", ReasonUnpushed)}, RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Cleanable)
	assert.Empty(t, out.String(), "no prompt when nothing is cleanable")
}

// TestRunIntegration removes a real worktree from a real repository and
// leaves protected siblings alone.
func TestRunIntegration(t *testing.T) {
	repo := setupTestRepo(t)
	client := git.New(repo)

	wt := filepath.Join(t.TempDir(), "doomed")
	runTestGit(t, repo, "worktree", "add", "-b", "doomed-branch", wt)

	records, err := client.ListWorktrees()
	require.NoError(t, err)

	a := NewAnalyzer(client)
	classified := a.Analyze(records, Options{CurrentPath: repo, DefaultBranch: "main"})

	e := NewExecutor(client, strings.NewReader(""), &strings.Builder{})
	report, err := e.Run(classified, RunOptions{AssumeYes: true})
	require.NoError(t, err)
	require.Len(t, report.Removed, 1)
	assert.Empty(t, report.Failed)

	_, statErr := os.Stat(wt)
	assert.True(t, os.IsNotExist(statErr), "worktree directory should be gone")

	// The main checkout (current worktree) survives.
	_, statErr = os.Stat(repo)
	assert.NoError(t, statErr)
}
