// Package cli — clean.go implements the "arbor clean" command.
//
// clean classifies every worktree as cleanable or protected, previews
// the partition, asks for one batch confirmation, and removes the
// cleanable set. Safety rules are fixed: the current worktree, the
// default branch, and configured protected branches are never removed;
// dirty or unpushed worktrees are skipped unless --force.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/arbor/internal/clean"
	"github.com/mmr-tortoise/arbor/internal/model"
)

// cleanFlags holds the flag values for the clean command.
// These are bound to cobra flags in NewCleanCommand.
type cleanFlags struct {
	force        bool // --force: override the uncommitted/unpushed checks
	dryRun       bool // --dry-run: classify and report, remove nothing
	useThreshold bool // --use-age-threshold: skip worktrees younger than the configured age
	yes          bool // --yes: skip the confirmation prompt
}

// NewCleanCommand creates the "clean" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale worktrees in one confirmed batch",
		Long: `Classify all worktrees and remove the stale ones.

Protected worktrees are always kept: the one you are standing in, the
default branch, and any branch listed in protectedBranches. Worktrees
with uncommitted changes or unpushed commits are skipped unless --force.
With --use-age-threshold, worktrees younger than cleanThresholdDays are
not candidates at all.

One confirmation covers the whole batch. A failed removal is reported
and does not stop the rest.

Examples:
  arbor clean --dry-run
  arbor clean --use-age-threshold
  arbor clean --force --yes`,

		Args: cobra.NoArgs,

		// RunE returns an error to the root command's error handler.
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			return runCleanEngine(s, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false,
		"Remove worktrees with uncommitted or unpushed work too")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false,
		"Report what would be removed without removing anything")
	cmd.Flags().BoolVar(&flags.useThreshold, "use-age-threshold", false,
		"Only consider worktrees older than cleanThresholdDays")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false,
		"Skip the confirmation prompt")

	return cmd
}

// runCleanEngine runs the analyze/confirm/remove pipeline. It is shared
// with "prune --clean".
func runCleanEngine(s *session, flags *cleanFlags) error {
	records, err := s.git.ListWorktrees()
	if err != nil {
		return err
	}

	force := flags.force || s.cfg.ForceAutoClean

	analyzer := clean.NewAnalyzer(s.git)
	classified := analyzer.Analyze(records, clean.Options{
		CurrentPath:       s.repoRoot,
		DefaultBranch:     s.cfg.DefaultBranch,
		ProtectedBranches: s.cfg.ProtectedBranches,
		ThresholdDays:     s.cfg.CleanThresholdDays,
		UseThreshold:      flags.useThreshold,
		Force:             force,
	})
	VerboseLog("Classified %d worktrees", len(classified))

	// In structured modes stdout must hold nothing but the report
	// document, so the preview and prompt go to stderr instead.
	promptOut := io.Writer(os.Stdout)
	if isStructuredOutput() {
		promptOut = os.Stderr
	}

	executor := clean.NewExecutor(s.git, os.Stdin, promptOut)
	report, err := executor.Run(classified, clean.RunOptions{
		DryRun:    flags.dryRun,
		AssumeYes: flags.yes,
		Force:     force,
	})
	if err != nil {
		return err
	}

	if err := printCleanReport(report); err != nil {
		return err
	}

	if report.Cancelled {
		return model.NewCLIError(model.ExitUserCancelled, "cleanup cancelled")
	}
	return nil
}

// printCleanReport outputs the cleanup report in the format selected by
// the global --output flag.
func printCleanReport(report *clean.Report) error {
	if isStructuredOutput() {
		return printStructured(report)
	}

	if len(report.Cleanable) == 0 && len(report.Skipped) == 0 {
		fmt.Println("No worktrees to consider.")
		return nil
	}

	// An interactive run already listed the cleanable paths in the
	// executor's preview. Dry runs never reach the preview, so they list
	// here; --yes runs list what was actually removed in the tally.
	if report.DryRun {
		fmt.Println("Dry run — nothing will be removed.")
		if len(report.Cleanable) > 0 {
			fmt.Println("Would remove:")
			for _, item := range report.Cleanable {
				fmt.Printf("  %s  (%s, %dd old)\n", item.Path, branchColumn(item.WorktreeRecord), item.AgeDays)
			}
		} else {
			fmt.Println("Nothing to clean.")
		}
	} else if len(report.Cleanable) == 0 {
		fmt.Println("Nothing to clean.")
	}

	if len(report.Skipped) > 0 {
		fmt.Println("Skipped:")
		for _, item := range report.Skipped {
			fmt.Printf("  %s  — %s\n", item.Path, item.Reason)
		}
	}

	if report.Cancelled {
		return nil
	}

	if len(report.Removed) > 0 || len(report.Failed) > 0 {
		for _, path := range report.Removed {
			fmt.Printf("Removed %s\n", path)
		}
		for _, failure := range report.Failed {
			fmt.Printf("Failed to remove %s: %s\n", failure.Path, failure.Reason)
		}

		noun := "worktree"
		if len(report.Removed) != 1 {
			noun = "worktrees"
		}
		fmt.Printf("Removed %d %s.\n", len(report.Removed), noun)
	}
	return nil
}
