package clean

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mmr-tortoise/arbor/internal/model"
)

// remover is the slice of the git client the executor needs.
type remover interface {
	RemoveWorktree(path string, force bool) error
}

// RemovalFailure records one worktree that could not be removed. Failures
// are reported, never fatal — sibling removals proceed regardless.
type RemovalFailure struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report is the full outcome of one cleanup run, in both dry-run and
// real mode. Dry-run produces the identical classification with zero
// mutations.
type Report struct {
	// Cleanable lists the worktrees eligible for removal.
	Cleanable []model.CleanableWorktree `json:"cleanable" yaml:"cleanable"`

	// Skipped lists the worktrees kept, each with its blocking reason.
	Skipped []model.CleanableWorktree `json:"skipped" yaml:"skipped"`

	// Removed lists the paths actually deleted.
	Removed []string `json:"removed,omitempty" yaml:"removed,omitempty"`

	// Failed lists per-item removal failures.
	Failed []RemovalFailure `json:"failed,omitempty" yaml:"failed,omitempty"`

	// DryRun is true when no mutation was attempted.
	DryRun bool `json:"dryRun" yaml:"dryRun"`

	// Cancelled is true when the user declined the confirmation prompt.
	Cancelled bool `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
}

// RunOptions controls one executor run.
type RunOptions struct {
	// DryRun reports the classification and performs no removal.
	DryRun bool

	// AssumeYes skips the confirmation prompt.
	AssumeYes bool

	// Force is passed through to `git worktree remove --force` so that
	// force-cleaned dirty worktrees can actually be deleted.
	Force bool
}

// Executor removes classified worktrees. The confirmation prompt reads
// from in and writes to out, so tests can drive it without a terminal.
type Executor struct {
	git remover
	in  io.Reader
	out io.Writer
}

// NewExecutor creates an Executor backed by the given git remover.
func NewExecutor(git remover, in io.Reader, out io.Writer) *Executor {
	return &Executor{git: git, in: in, out: out}
}

// Partition splits classified worktrees into cleanable and skipped.
func Partition(items []model.CleanableWorktree) (cleanable, skipped []model.CleanableWorktree) {
	for _, item := range items {
		if item.CanClean {
			cleanable = append(cleanable, item)
		} else {
			skipped = append(skipped, item)
		}
	}
	return cleanable, skipped
}

// Run previews, confirms, and removes the cleanable worktrees. The full
// list of doomed paths is written before the prompt — the user never
// confirms a deletion they have not seen. One yes/no answer covers the
// whole batch; there is no per-item confirmation. Individual removal
// failures are recorded and never abort the rest of the batch.
func (e *Executor) Run(items []model.CleanableWorktree, opts RunOptions) (*Report, error) {
	cleanable, skipped := Partition(items)
	report := &Report{Cleanable: cleanable, Skipped: skipped, DryRun: opts.DryRun}

	if opts.DryRun || len(cleanable) == 0 {
		return report, nil
	}

	if !opts.AssumeYes {
		e.preview(cleanable)
		confirmed, err := e.confirm(len(cleanable))
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to read confirmation", err)
		}
		if !confirmed {
			report.Cancelled = true
			return report, nil
		}
	}

	for _, item := range cleanable {
		if err := e.git.RemoveWorktree(item.Path, opts.Force); err != nil {
			report.Failed = append(report.Failed, RemovalFailure{Path: item.Path, Reason: err.Error()})
			continue
		}
		report.Removed = append(report.Removed, item.Path)
	}

	return report, nil
}

// preview lists what is about to be removed, so the confirmation that
// follows is informed rather than blind.
func (e *Executor) preview(cleanable []model.CleanableWorktree) {
	fmt.Fprintln(e.out, "About to remove:")
	for _, item := range cleanable {
		if item.Branch != "" {
			fmt.Fprintf(e.out, "  %s  (%s)\n", item.Path, item.Branch)
		} else {
			fmt.Fprintf(e.out, "  %s\n", item.Path)
		}
	}
}

// confirm asks one yes/no question for the whole batch. A closed stdin
// counts as "no".
func (e *Executor) confirm(count int) (bool, error) {
	noun := "worktree"
	if count != 1 {
		noun = "worktrees"
	}
	fmt.Fprintf(e.out, "Remove %d %s? [y/N] ", count, noun)

	scanner := bufio.NewScanner(e.in)
	if scanner.Scan() {
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}
	return false, nil
}
