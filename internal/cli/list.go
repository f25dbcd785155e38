// Package cli — list.go implements the "arbor list" command.
//
// The list command displays every worktree registered with the
// repository, straight from `git worktree list --porcelain`. Worktrees
// are presented as a text table or as a structured document, depending
// on the global --output flag.
package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/arbor/internal/model"
)

// NewListCommand creates the "list" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all worktrees",
		Long: `List every worktree registered with the repository.

Each worktree is shown with its path, checked-out branch, and HEAD
commit. Bare entries and detached HEADs are marked as such.

Examples:
  arbor list
  arbor list --output json`,

		// No positional arguments are required for the list command.
		Args: cobra.NoArgs,

		// RunE returns an error to the root command's error handler.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}

	return cmd
}

// runList is the main logic function for the list command.
func runList() error {
	s, err := newSession()
	if err != nil {
		return err
	}

	records, err := s.git.ListWorktrees()
	if err != nil {
		return err // ListWorktrees already returns CLIError
	}
	VerboseLog("Found %d worktrees", len(records))

	// Sort by path for consistent output; git's own order is creation
	// order with the main worktree first, which is stable but surprising
	// once worktrees have been removed and re-added.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})

	return printListResult(records)
}

// printListResult outputs the worktree list in the format selected by
// the global --output flag.
func printListResult(records []model.WorktreeRecord) error {
	if isStructuredOutput() {
		type resultDoc struct {
			Worktrees []model.WorktreeRecord `json:"worktrees" yaml:"worktrees"`
		}
		// Use an empty slice instead of nil so JSON output shows []
		// instead of null when no worktrees are found.
		doc := resultDoc{Worktrees: make([]model.WorktreeRecord, 0, len(records))}
		doc.Worktrees = append(doc.Worktrees, records...)
		return printStructured(doc)
	}

	if len(records) == 0 {
		fmt.Println("No worktrees found.")
		return nil
	}

	// Print header row.
	fmt.Printf("%-40s %-25s %s\n", "PATH", "BRANCH", "HEAD")
	for _, r := range records {
		fmt.Printf("%-40s %-25s %s\n", r.Path, branchColumn(r), headColumn(r))
	}
	return nil
}

// branchColumn renders the branch cell: bare entries have no branch,
// detached HEADs have an empty branch field in the porcelain output.
func branchColumn(r model.WorktreeRecord) string {
	switch {
	case r.IsBare:
		return "(bare)"
	case r.Branch == "":
		return "(detached)"
	default:
		return r.Branch
	}
}

// headColumn renders an abbreviated HEAD commit, or "-" for bare entries.
func headColumn(r model.WorktreeRecord) string {
	if r.HeadCommit == "" {
		return "-"
	}
	if len(r.HeadCommit) > 12 {
		return r.HeadCommit[:12]
	}
	return r.HeadCommit
}
