// Package cli — add.go implements the "arbor add" command.
//
// add runs the same resolution/creation engine as checkout but is
// addressed by worktree name rather than branch: the first argument
// names the directory, the optional second argument names the branch
// (defaulting to the worktree name). Unlike checkout, add removes a
// leftover empty directory at the target path instead of rejecting it —
// non-empty directories are still never touched.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/arbor/internal/worktree"
)

// addFlags holds the flag values for the add command.
type addFlags struct {
	base string // --base: explicit start point for a brand-new branch
	noCd bool   // --no-cd: skip the navigation marker
}

// NewAddCommand creates the "add" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewAddCommand() *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "add <name> [<branch>]",
		Short: "Add a named worktree",
		Long: `Add a worktree with an explicit directory name.

The branch defaults to the worktree name. Resolution follows the same
rules as checkout: existing checkouts are navigated to, remote branches
are fetched, and unknown branches are created. An empty leftover
directory at the target path is removed and reused; a non-empty one is
an error.

Examples:
  arbor add review
  arbor add auth feature/auth
  arbor add hotfix hotfix-123 --base release/2.1`,

		Args: cobra.RangeArgs(1, 2),

		// RunE returns an error to the root command's error handler.
		RunE: func(cmd *cobra.Command, args []string) error {
			branch := args[0]
			if len(args) == 2 {
				branch = args[1]
			}
			return runAdd(args[0], branch, flags)
		},
	}

	cmd.Flags().StringVar(&flags.base, "base", "",
		"Start point for a new branch (default: the branch itself, fetched when remote)")
	cmd.Flags().BoolVar(&flags.noCd, "no-cd", false,
		"Do not write the navigation marker for the shell wrapper")

	return cmd
}

// runAdd is the main logic function for the add command.
func runAdd(name, branch string, flags *addFlags) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	location := s.git.LocateBranch(s.cfg.DefaultRemote, branch)
	VerboseLog("Branch %q location: %s", branch, location)

	path, err := s.worktreePathFor(sanitizeBranchName(name))
	if err != nil {
		return err
	}
	VerboseLog("Target worktree path: %s", path)

	creator := worktree.NewCreator(s.git)
	outcome, err := creator.Ensure(worktree.Request{
		Branch:         branch,
		Path:           path,
		Remote:         s.cfg.DefaultRemote,
		Source:         flags.base,
		RemoveLeftover: true,
	})
	if err != nil {
		return err
	}

	return finishEnsure(outcome, location, flags.noCd)
}
