// Package cli — checkout.go implements the "arbor checkout" command.
//
// checkout is the primary user-facing operation. It resolves a branch
// that may exist locally, on the remote, both, or nowhere, and guarantees
// the user ends up with a worktree they can enter:
//
//  1. Branch already checked out in some worktree → navigate there
//  2. Target path already registered → navigate there
//  3. Otherwise create the worktree, fetching a start point from the
//     remote when the branch is not local yet
//
// The resolved path is written to the navigation marker (unless --no-cd)
// so the shell wrapper installed by "arbor shell-init" can cd into it.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/arbor/internal/model"
	"github.com/mmr-tortoise/arbor/internal/navigate"
	"github.com/mmr-tortoise/arbor/internal/worktree"
)

// checkoutFlags holds the flag values for the checkout command.
// These are bound to cobra flags in NewCheckoutCommand.
type checkoutFlags struct {
	newBranch string // -b: create this branch, using the positional arg as its base
	base      string // --base: explicit start point for a brand-new branch
	path      string // --path: custom worktree directory path
	noCd      bool   // --no-cd: skip the navigation marker
}

// NewCheckoutCommand creates the "checkout" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCheckoutCommand() *cobra.Command {
	flags := &checkoutFlags{}

	cmd := &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Check a branch out into its own worktree",
		Long: `Check a branch out into its own worktree, creating it if needed.

The branch may exist locally, only on the remote, or nowhere yet:
  - a local branch is checked out directly
  - a remote-only branch is fetched first and gets upstream tracking
  - an unknown branch becomes a new branch (with -b, based on the
    positional argument; otherwise based on the fetched branch itself)

If the branch is already checked out in another worktree, checkout
navigates there instead of failing.

Examples:
  arbor checkout feature/auth
  arbor checkout main -b feature/payments
  arbor checkout main -b hotfix --base release/2.1
  arbor checkout feature/auth --no-cd`,

		// Args validates that exactly one positional argument (branch name) is provided.
		Args: cobra.ExactArgs(1),

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(args[0], flags)
		},
	}

	// Register command-specific flags.
	cmd.Flags().StringVarP(&flags.newBranch, "new-branch", "b", "",
		"Create this branch, starting from <branch>")
	cmd.Flags().StringVar(&flags.base, "base", "",
		"Start point for a new branch (default: the branch itself, fetched when remote)")
	cmd.Flags().StringVar(&flags.path, "path", "",
		"Worktree directory path (default: configured worktreeDir or ../<repo>-<branch>)")
	cmd.Flags().BoolVar(&flags.noCd, "no-cd", false,
		"Do not write the navigation marker for the shell wrapper")

	return cmd
}

// runCheckout is the main logic function for the checkout command.
func runCheckout(branchArg string, flags *checkoutFlags) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	// With -b the positional argument is the base and -b names the branch
	// to create. Without it, the positional argument is the branch itself.
	branch := branchArg
	source := flags.base
	newBranch := false
	if flags.newBranch != "" {
		branch = flags.newBranch
		newBranch = true
		if source == "" {
			source = branchArg
		}
	}

	location := s.git.LocateBranch(s.cfg.DefaultRemote, branch)
	VerboseLog("Branch %q location: %s", branch, location)
	if location.ExistsOnRemote() && !location.ExistsLocally() {
		VerboseLog("Branch %q exists only on %s and will be fetched", branch, s.cfg.DefaultRemote)
	}

	path := flags.path
	if path == "" {
		path, err = s.worktreePathFor(sanitizeBranchName(branch))
		if err != nil {
			return err
		}
	}
	VerboseLog("Target worktree path: %s", path)

	creator := worktree.NewCreator(s.git)
	outcome, err := creator.Ensure(worktree.Request{
		Branch:    branch,
		Path:      path,
		Remote:    s.cfg.DefaultRemote,
		Source:    source,
		NewBranch: newBranch,
		// checkout never deletes a leftover directory, not even an empty
		// one — it rejects so the user can inspect what is there.
		RemoveLeftover: false,
	})
	if err != nil {
		return err
	}

	return finishEnsure(outcome, location, flags.noCd)
}

// finishEnsure handles the shared tail of checkout and add: write the
// navigation marker and print the outcome.
func finishEnsure(outcome *worktree.Outcome, location model.BranchLocation, noCd bool) error {
	if !noCd {
		if err := navigate.Write(outcome.Path); err != nil {
			// The worktree exists; a failed marker only costs the cd.
			VerboseLog("Could not write navigation marker: %v", err)
		} else {
			VerboseLog("Navigation marker written: %s", navigate.MarkerPath())
		}
	}

	return printEnsureResult(outcome, location)
}

// ensureResult is the structured output for checkout and add.
type ensureResult struct {
	Action      string `json:"action" yaml:"action"`
	Path        string `json:"path" yaml:"path"`
	Branch      string `json:"branch" yaml:"branch"`
	Location    string `json:"branchLocation,omitempty" yaml:"branchLocation,omitempty"`
	NewBranch   bool   `json:"newBranch,omitempty" yaml:"newBranch,omitempty"`
	StartPoint  string `json:"startPoint,omitempty" yaml:"startPoint,omitempty"`
	Fetched     bool   `json:"fetched,omitempty" yaml:"fetched,omitempty"`
	UpstreamSet bool   `json:"upstreamSet,omitempty" yaml:"upstreamSet,omitempty"`
	Note        string `json:"note,omitempty" yaml:"note,omitempty"`
}

// printEnsureResult outputs the checkout/add outcome in the format
// selected by --output. Location reports where the branch lived before
// the command ran, which is what explains the action taken.
func printEnsureResult(outcome *worktree.Outcome, location model.BranchLocation) error {
	if isStructuredOutput() {
		return printStructured(ensureResult{
			Action:      string(outcome.Kind),
			Path:        outcome.Path,
			Branch:      outcome.Branch,
			Location:    location.String(),
			NewBranch:   outcome.NewBranchCreated,
			StartPoint:  outcome.Start.Ref,
			Fetched:     outcome.Start.Fetched,
			UpstreamSet: outcome.UpstreamSet,
			Note:        outcome.Start.Note,
		})
	}

	if outcome.Kind == worktree.OutcomeNavigated {
		fmt.Printf("Branch %q is already checked out\n", outcome.Branch)
		fmt.Printf("  Path: %s\n", outcome.Path)
		return nil
	}

	fmt.Printf("Created worktree for branch %q\n", outcome.Branch)
	fmt.Printf("  Path: %s\n", outcome.Path)
	if outcome.NewBranchCreated {
		fmt.Printf("  Start point: %s\n", outcome.Start.Ref)
	}
	if outcome.UpstreamSet {
		fmt.Printf("  Tracking: %s\n", outcome.Start.Ref)
	}
	if outcome.Start.Note != "" {
		fmt.Printf("Warning: %s\n", outcome.Start.Note)
	}
	return nil
}

// sanitizeBranchName converts a Git branch name to a valid directory name.
// Replaces "/" with "-" and strips invalid characters.
func sanitizeBranchName(branch string) string {
	// Replace common branch name separators with hyphens.
	name := strings.ReplaceAll(branch, "/", "-")
	name = strings.ReplaceAll(name, "_", "-")

	// Remove any characters that aren't alphanumeric, hyphens, or dots.
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '.' {
			result.WriteRune(r)
		}
	}
	name = result.String()

	// Trim leading/trailing hyphens and dots.
	name = strings.Trim(name, "-.")

	if name == "" {
		name = "worktree"
	}
	return name
}
