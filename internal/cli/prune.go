// Package cli — prune.go implements the "arbor prune" command.
//
// prune drops stale administrative entries for worktree directories that
// were deleted by hand (`git worktree prune`). With --clean it then runs
// the same cleanup engine as the clean command, so one invocation both
// repairs the registry and removes stale-but-registered worktrees.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/arbor/internal/model"
)

// pruneFlags holds the flag values for the prune command.
type pruneFlags struct {
	clean bool // --clean: run the cleanup engine after pruning
	cleanFlags
}

// NewPruneCommand creates the "prune" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewPruneCommand() *cobra.Command {
	flags := &pruneFlags{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Prune stale worktree registrations",
		Long: `Prune administrative entries for worktree directories that no
longer exist on disk, then optionally run the cleanup engine.

Examples:
  arbor prune
  arbor prune --clean --dry-run`,

		Args: cobra.NoArgs,

		// RunE returns an error to the root command's error handler.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.clean, "clean", false,
		"Run the cleanup engine after pruning")
	cmd.Flags().BoolVar(&flags.force, "force", false,
		"With --clean, remove worktrees with uncommitted or unpushed work too")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false,
		"With --clean, report what would be removed without removing anything")
	cmd.Flags().BoolVar(&flags.useThreshold, "use-age-threshold", false,
		"With --clean, only consider worktrees older than cleanThresholdDays")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false,
		"With --clean, skip the confirmation prompt")

	return cmd
}

// runPrune is the main logic function for the prune command.
func runPrune(flags *pruneFlags) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	if err := s.git.PruneWorktrees(); err != nil {
		return model.WrapCLIError(model.ExitGitError, "failed to prune worktrees", err)
	}

	if flags.clean {
		// The cleanup report is the output document in structured modes.
		if outputFormat == formatText {
			fmt.Println("Pruned stale worktree registrations.")
		}
		return runCleanEngine(s, &flags.cleanFlags)
	}

	if isStructuredOutput() {
		return printStructured(map[string]bool{"pruned": true})
	}
	fmt.Println("Pruned stale worktree registrations.")
	return nil
}
