package clean

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mmr-tortoise/arbor/internal/model"
)

// Blocking reasons, in the order they are checked. Only the first
// matching reason is reported; the user gets one explanation per
// worktree.
const (
	ReasonCurrentWorktree = "current worktree"
	ReasonDefaultBranch   = "default branch protected"
	ReasonProtectedBranch = "protected branch"
	ReasonUncommitted     = "has uncommitted changes"
	ReasonUnpushed        = "has unpushed commits"
)

// prober is the slice of the git client the analyzer needs.
type prober interface {
	IsDirty(dir string) (bool, error)
	AheadOfUpstream(dir string) (int, bool, error)
}

// Options carries the inputs the analyzer needs. Everything is passed in
// explicitly — the analyzer never reads config or the process working
// directory itself.
type Options struct {
	// CurrentPath is the worktree the user is standing in. It is always
	// blocked from cleaning.
	CurrentPath string

	// DefaultBranch is never cleaned regardless of age or cleanliness.
	DefaultBranch string

	// ProtectedBranches lists additional never-clean branch names.
	ProtectedBranches []string

	// ThresholdDays excludes worktrees younger than this many days when
	// UseThreshold is set. Young worktrees are not candidates at all, as
	// opposed to protected ones, which are reported as skipped.
	ThresholdDays int

	// UseThreshold applies ThresholdDays filtering.
	UseThreshold bool

	// Force overrides the uncommitted/unpushed safety checks. It does not
	// override the current-worktree, default-branch, or protected-branch
	// rules.
	Force bool
}

// Analyzer classifies worktrees for the cleanup executor.
type Analyzer struct {
	git prober

	// ageOf computes a worktree's age in days. Overridable in tests.
	ageOf func(path string) int
}

// NewAnalyzer creates an Analyzer backed by the given git prober.
func NewAnalyzer(git prober) *Analyzer {
	return &Analyzer{git: git, ageOf: metadataAgeDays}
}

// Analyze computes the cleanup classification for each non-bare worktree.
// Bare central-store entries are not candidates and are omitted from the
// result entirely.
func (a *Analyzer) Analyze(records []model.WorktreeRecord, opts Options) []model.CleanableWorktree {
	current := normalizePath(opts.CurrentPath)

	var result []model.CleanableWorktree
	for _, record := range records {
		if record.IsBare {
			continue
		}

		item := model.CleanableWorktree{WorktreeRecord: record}
		item.AgeDays = a.ageOf(record.Path)

		if opts.UseThreshold && item.AgeDays < opts.ThresholdDays {
			// Too young to be a candidate; not even reported as skipped.
			continue
		}

		dirty, err := a.git.IsDirty(record.Path)
		item.HasUncommitted = dirty || err != nil

		ahead, hasUpstream, err := a.git.AheadOfUpstream(record.Path)
		if err != nil {
			// A failed probe is never "no upstream"; fail closed.
			item.HasUnpushed = true
		} else if hasUpstream {
			item.HasUnpushed = ahead > 0
		}

		item.CanClean, item.Reason = classify(item, current, opts)
		result = append(result, item)
	}
	return result
}

// classify applies the protection rules in fixed order and returns the
// first blocking reason, if any.
func classify(item model.CleanableWorktree, currentPath string, opts Options) (bool, string) {
	if normalizePath(item.Path) == currentPath {
		return false, ReasonCurrentWorktree
	}
	if item.Branch != "" && item.Branch == opts.DefaultBranch {
		return false, ReasonDefaultBranch
	}
	for _, protected := range opts.ProtectedBranches {
		if item.Branch == protected {
			return false, ReasonProtectedBranch
		}
	}
	if !opts.Force {
		if item.HasUncommitted {
			return false, ReasonUncommitted
		}
		if item.HasUnpushed {
			return false, ReasonUnpushed
		}
	}
	return true, ""
}

// metadataAgeDays returns the whole days elapsed since the worktree's
// on-disk metadata timestamp. The .git pointer file is written once at
// creation and rarely touched afterward, which makes it a stable age
// marker; the directory itself changes mtime on every file operation.
// Any filesystem error yields 0 so the worktree looks new and stays out
// of threshold-based cleaning.
func metadataAgeDays(path string) int {
	info, err := os.Stat(filepath.Join(path, ".git"))
	if err != nil {
		info, err = os.Stat(path)
		if err != nil {
			return 0
		}
	}

	days := int(time.Since(info.ModTime()).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// normalizePath cleans a path and resolves symlinks when possible, so
// current-worktree comparison survives /var vs /private/var style
// differences.
func normalizePath(path string) string {
	if path == "" {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return filepath.Clean(resolved)
	}
	return filepath.Clean(path)
}
