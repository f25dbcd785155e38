package model

import (
	"fmt"
	"strings"
)

// BranchLocation classifies where a branch name currently exists.
// It is derived by probing local refs and remote-tracking refs, and is
// never cached across calls because hooks or the user can create branches
// mid-session.
type BranchLocation string

const (
	// LocationNowhere means the branch exists neither locally nor on the
	// configured remote.
	LocationNowhere BranchLocation = "nowhere"

	// LocationLocalOnly means a local ref exists but no remote-tracking ref.
	LocationLocalOnly BranchLocation = "local"

	// LocationRemoteOnly means the remote-tracking ref exists but there is
	// no local branch yet.
	LocationRemoteOnly BranchLocation = "remote"

	// LocationBoth means the branch exists locally and on the remote.
	LocationBoth BranchLocation = "both"
)

// String returns the string representation of BranchLocation.
func (l BranchLocation) String() string {
	return string(l)
}

// ExistsLocally reports whether a local branch ref exists.
func (l BranchLocation) ExistsLocally() bool {
	return l == LocationLocalOnly || l == LocationBoth
}

// ExistsOnRemote reports whether a remote-tracking ref exists.
func (l BranchLocation) ExistsOnRemote() bool {
	return l == LocationRemoteOnly || l == LocationBoth
}

// WorktreeRecord is one entry parsed from `git worktree list --porcelain`.
// It is an immutable snapshot; callers re-query rather than mutate.
type WorktreeRecord struct {
	// Path is the absolute filesystem path to the worktree directory.
	Path string `json:"path" yaml:"path"`

	// Branch is the short branch name (e.g., "feature/auth").
	// Empty when the worktree is in a detached HEAD state or bare.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`

	// HeadCommit is the commit SHA the worktree currently points to.
	HeadCommit string `json:"head,omitempty" yaml:"head,omitempty"`

	// IsBare marks the bare central-store entry that git reports alongside
	// real worktrees when the repository uses a bare layout.
	IsBare bool `json:"bare,omitempty" yaml:"bare,omitempty"`
}

// RefConflict records a `/`-namespace collision between a requested branch
// name and an existing branch. Git cannot hold refs/heads/a and
// refs/heads/a/b at the same time, so either direction of prefix overlap
// blocks creation.
type RefConflict struct {
	// Requested is the branch name the user asked for.
	Requested string `json:"requested" yaml:"requested"`

	// ConflictingBranch is the existing branch that collides with it.
	ConflictingBranch string `json:"conflictingBranch" yaml:"conflictingBranch"`
}

// CleanableWorktree is a WorktreeRecord augmented with the safety
// classification computed by the clean analyzer. Built once per cleanup
// invocation.
//
// Invariant: CanClean is false whenever the worktree is bare, is the
// current worktree, is bound to the default branch or a protected branch,
// or (absent force) has uncommitted or unpushed state.
type CleanableWorktree struct {
	WorktreeRecord `yaml:",inline"`

	// AgeDays is the whole number of days since the worktree's on-disk
	// metadata timestamp. 0 on any filesystem error.
	AgeDays int `json:"ageDays" yaml:"ageDays"`

	// HasUncommitted is true when `git status --porcelain` reports anything,
	// or when the status probe itself fails.
	HasUncommitted bool `json:"hasUncommitted" yaml:"hasUncommitted"`

	// HasUnpushed is true when commits exist locally that the upstream does
	// not have. False when no upstream is configured.
	HasUnpushed bool `json:"hasUnpushed" yaml:"hasUnpushed"`

	// CanClean reports whether the cleanup executor may remove this worktree.
	CanClean bool `json:"canClean" yaml:"canClean"`

	// Reason explains the first blocking condition when CanClean is false.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// StartPoint is the outcome of resolving the commit a new branch should
// start from. Degraded resolution (fetch failed but a local fallback
// exists) is a value here, not an error.
type StartPoint struct {
	// Ref is a commit reference usable as the start-point argument to
	// `git worktree add -b` (a tracking ref, FETCH_HEAD, or a local branch).
	Ref string `json:"ref" yaml:"ref"`

	// Fetched is true when the remote branch was successfully fetched and
	// Ref points at the freshly updated remote state.
	Fetched bool `json:"fetched" yaml:"fetched"`

	// Note carries a human-readable explanation for degraded outcomes,
	// e.g. "no remote configured" or the fetch error that was tolerated.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// ExitCode defines the CLI process exit codes. Scripts and the shell
// wrapper rely on these to distinguish outcomes programmatically.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitGitError indicates a git subprocess failed, including the fatal
	// case where the worktree listing itself cannot be obtained.
	ExitGitError ExitCode = 2

	// ExitBranchNotFound indicates the requested branch exists neither
	// locally nor on any configured remote.
	ExitBranchNotFound ExitCode = 3

	// ExitRefConflict indicates the requested branch name collides with an
	// existing branch under the `/`-segmented ref namespace.
	ExitRefConflict ExitCode = 4

	// ExitLeftoverPath indicates the target path exists on disk but is not
	// a registered worktree. The tool never silently deletes such paths.
	ExitLeftoverPath ExitCode = 5

	// ExitUserCancelled indicates the user declined an interactive prompt.
	ExitUserCancelled ExitCode = 6
)

// RefConflictError is returned when creating a branch would collide with
// an existing branch name. It carries the conflicting name so callers can
// suggest alternatives.
type RefConflictError struct {
	Requested   string
	Conflicting string
}

// Error satisfies the error interface.
func (e *RefConflictError) Error() string {
	return fmt.Sprintf("branch %q conflicts with existing branch %q", e.Requested, e.Conflicting)
}

// BranchNotFoundError is returned when a branch cannot be resolved locally
// or on the remote.
type BranchNotFoundError struct {
	Branch string
	Remote string
}

// Error satisfies the error interface.
func (e *BranchNotFoundError) Error() string {
	if e.Remote == "" {
		return fmt.Sprintf("branch %q not found locally and no remote is configured", e.Branch)
	}
	return fmt.Sprintf("branch %q not found locally or on remote %q", e.Branch, e.Remote)
}

// LeftoverPathError is returned when the target worktree path already
// exists on disk but git does not know it as a worktree. This usually
// means a prior run failed partway or the user created the directory
// manually.
type LeftoverPathError struct {
	Path string
}

// Error satisfies the error interface.
func (e *LeftoverPathError) Error() string {
	return fmt.Sprintf("path %q exists but is not a registered worktree; remove it or choose another name", e.Path)
}

// CLIError is an error that carries a process exit code. The CLI layer
// translates these into os.Exit codes; everything below the CLI returns
// them as ordinary errors.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// ShortBranch strips the refs/heads/ prefix from a full branch ref,
// returning the short name users type. Non-branch refs pass through
// unchanged.
func ShortBranch(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}
