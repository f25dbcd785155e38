package worktree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/arbor/internal/model"
)

// gitService is the slice of the git client the creator needs. Declared
// here so tests can substitute failure cases without a real repository.
type gitService interface {
	ListWorktrees() ([]model.WorktreeRecord, error)
	HasLocalBranch(name string) bool
	DetectRefConflict(name string) (*model.RefConflict, error)
	FetchStartPoint(branch, remote string) (model.StartPoint, error)
	AddWorktree(path, branch string) error
	AddWorktreeNewBranch(path, branch, startPoint string) error
	SetUpstream(worktreeDir, branch, remote string) error
}

// OutcomeKind names the terminal state a creation request reached.
type OutcomeKind string

const (
	// OutcomeNavigated means no worktree was created: the branch was
	// already checked out somewhere (or the path already registered) and
	// the caller should send the user there instead.
	OutcomeNavigated OutcomeKind = "navigated"

	// OutcomeCreated means a new worktree now exists at Outcome.Path.
	OutcomeCreated OutcomeKind = "created"
)

// Request describes one checkout/add invocation.
type Request struct {
	// Branch is the branch to check out or create.
	Branch string

	// Path is the absolute target path for the worktree.
	Path string

	// Remote is the remote to probe and fetch from. Empty disables all
	// network access.
	Remote string

	// Source overrides the start point for a brand-new branch (the --base
	// flag). Empty means the branch itself, fetched from the remote.
	Source string

	// NewBranch requires that Branch not exist yet (the -b flag).
	NewBranch bool

	// RemoveLeftover selects the `add` family policy for a non-worktree
	// directory at Path: remove it when empty instead of rejecting. The
	// checkout family leaves this false and fails loudly — a non-empty
	// directory is never deleted by either policy.
	RemoveLeftover bool
}

// Outcome reports what the state machine did.
type Outcome struct {
	Kind   OutcomeKind
	Path   string
	Branch string

	// Start is the resolved start point when a new branch was created.
	Start model.StartPoint

	// NewBranchCreated is true when the branch did not exist before.
	NewBranchCreated bool

	// UpstreamSet is true when tracking configuration was rewritten to
	// point at <remote>/<branch>.
	UpstreamSet bool
}

// Creator runs the creation state machine against a git service.
type Creator struct {
	git gitService
}

// NewCreator creates a Creator backed by the given git service.
func NewCreator(git gitService) *Creator {
	return &Creator{git: git}
}

// Ensure resolves a request to a worktree the user can enter, creating
// one if needed. Transition rules are evaluated in fixed priority order;
// the first match wins:
//
//  1. Branch already bound to a worktree → navigate there. A branch can
//     only be checked out in one worktree at a time, so creation is
//     impossible and redirecting beats failing.
//  2. Target path already registered → navigate there (idempotent
//     re-invocation).
//  3. Target path exists on disk but is not a worktree → reject, or for
//     the add policy remove it first when empty.
//  4. Creating the branch would collide in the ref namespace → reject,
//     naming the conflicting branch, before touching the filesystem.
//  5. Otherwise create, resolving a start point for new branches and
//     fixing up upstream tracking afterward.
func (c *Creator) Ensure(req Request) (*Outcome, error) {
	records, err := c.git.ListWorktrees()
	if err != nil {
		// Already a CLIError; without ground truth nothing can proceed.
		return nil, err
	}

	// Transition 1: branch checked out elsewhere.
	for _, r := range records {
		if !r.IsBare && r.Branch != "" && r.Branch == req.Branch {
			return &Outcome{Kind: OutcomeNavigated, Path: r.Path, Branch: r.Branch}, nil
		}
	}

	// Transition 2: the path itself is already a registered worktree.
	cleanPath := filepath.Clean(req.Path)
	for _, r := range records {
		if filepath.Clean(r.Path) == cleanPath {
			return &Outcome{Kind: OutcomeNavigated, Path: r.Path, Branch: r.Branch}, nil
		}
	}

	// Transition 3: leftover directory from a failed or aborted run.
	if _, statErr := os.Lstat(req.Path); statErr == nil {
		if !req.RemoveLeftover || !isEmptyDir(req.Path) {
			leftover := &model.LeftoverPathError{Path: req.Path}
			return nil, model.WrapCLIError(model.ExitLeftoverPath, "cannot create worktree", leftover)
		}
		if rmErr := os.Remove(req.Path); rmErr != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to remove leftover directory %s", req.Path), rmErr)
		}
	}

	localExists := c.git.HasLocalBranch(req.Branch)

	if req.NewBranch && localExists {
		return nil, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("branch %q already exists; drop -b to check it out", req.Branch))
	}

	// Transition 4: ref-namespace conflict, checked whenever a branch
	// would be created.
	if !localExists {
		conflict, conflictErr := c.git.DetectRefConflict(req.Branch)
		if conflictErr != nil {
			return nil, model.WrapCLIError(model.ExitGitError, "failed to check branch names", conflictErr)
		}
		if conflict != nil {
			refErr := &model.RefConflictError{Requested: conflict.Requested, Conflicting: conflict.ConflictingBranch}
			return nil, model.WrapCLIError(model.ExitRefConflict, "cannot create branch", refErr)
		}
	}

	// Transition 5: create.
	if localExists {
		if addErr := c.git.AddWorktree(req.Path, req.Branch); addErr != nil {
			return nil, model.WrapCLIError(model.ExitGitError, "failed to create worktree", addErr)
		}
		return &Outcome{Kind: OutcomeCreated, Path: req.Path, Branch: req.Branch}, nil
	}

	source := req.Source
	if source == "" {
		source = req.Branch
	}

	start, err := c.git.FetchStartPoint(source, req.Remote)
	if err != nil {
		var notFound *model.BranchNotFoundError
		if errors.As(err, &notFound) {
			return nil, model.WrapCLIError(model.ExitBranchNotFound, "cannot resolve start point", err)
		}
		return nil, model.WrapCLIError(model.ExitGitError, "cannot resolve start point", err)
	}

	if addErr := c.git.AddWorktreeNewBranch(req.Path, req.Branch, start.Ref); addErr != nil {
		return nil, model.WrapCLIError(model.ExitGitError, "failed to create worktree", addErr)
	}

	outcome := &Outcome{
		Kind:             OutcomeCreated,
		Path:             req.Path,
		Branch:           req.Branch,
		Start:            start,
		NewBranchCreated: true,
	}

	// A branch created from a remote start point would otherwise track the
	// source ref and push to the wrong branch. Branches that existed
	// before keep whatever tracking they had.
	if start.Fetched {
		if upErr := c.git.SetUpstream(req.Path, req.Branch, req.Remote); upErr != nil {
			return nil, model.WrapCLIError(model.ExitGitError,
				fmt.Sprintf("worktree created but upstream configuration failed for %q", req.Branch), upErr)
		}
		outcome.UpstreamSet = true
	}

	return outcome, nil
}

// isEmptyDir reports whether path is a directory with no entries.
func isEmptyDir(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) == 0
}
