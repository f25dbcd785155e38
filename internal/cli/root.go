// Package cli implements the cobra-based CLI commands for arbor.
//
// Each subcommand (checkout, add, list, clean, prune, shell-init) is
// defined in its own file within this package. This file defines the root
// command that serves as the parent for all subcommands and handles
// global flags.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/arbor/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// outputFormat selects how command results are rendered: "text"
	// (default, human-readable), "json", or "yaml" for machine consumption.
	outputFormat string

	// verbose enables detailed logging output for debugging.
	// When true, additional information about operations is printed to stderr.
	verbose bool

	// configPath points at an explicit config file, overriding the
	// $ARBOR_CONFIG and ~/.config/arbor/config.json lookup chain.
	configPath string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action — it only provides
// help text and global flags. Actual functionality is provided by
// subcommands (checkout, add, list, clean, prune, shell-init).
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		// Use is the one-line usage pattern shown in help output.
		Use:   "arbor",
		Short: "Branch-aware Git worktree manager",
		Long: `arbor layers branch-aware semantics on top of git worktree:

  - checkout resolves a branch that may live locally, on the remote,
    both, or nowhere, and creates (or navigates to) its worktree
  - a branch already checked out elsewhere redirects you there instead
    of failing
  - clean removes stale worktrees in one confirmed batch, always
    skipping anything dirty, unpushed, or protected

Run 'arbor shell-init' to install the shell wrapper that lets checkout
change your shell's directory into the resolved worktree.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text, JSON, or YAML based on --output).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// PersistentFlags are inherited by all subcommands. This is the cobra
	// mechanism for global flags — any flag defined here is automatically
	// available in every subcommand without re-declaration.
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"Output format: text, json, or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default: $ARBOR_CONFIG, then ~/.config/arbor/config.json)")

	// Register subcommands. Each subcommand is defined in its own file
	// (checkout.go, clean.go, etc.) and returns a *cobra.Command.
	rootCmd.AddCommand(NewCheckoutCommand())
	rootCmd.AddCommand(NewAddCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewCleanCommand())
	rootCmd.AddCommand(NewPruneCommand())
	rootCmd.AddCommand(NewShellInitCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into appropriate OS exit codes. CLIError types carry their own
// exit codes; other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		// Check if the error is a CLIError with a specific exit code.
		// errors.As would also work here, but a type assertion is simpler
		// for this single-level check.
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		// Generic error — exit with code 1.
		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format based on
// the --output global flag. Errors always go to stderr, even in
// structured modes, because stdout is reserved for successful command
// output.
func printError(message string, underlying error) {
	if outputFormat == formatText {
		// Text format: "Error: <message>" on stderr.
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
		return
	}

	errMap := map[string]interface{}{"message": message}
	if underlying != nil {
		errMap["detail"] = underlying.Error()
	}
	data, err := renderStructured(map[string]interface{}{"error": errMap})
	if err != nil {
		// Rendering the error itself failed; fall back to plain text.
		fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		return
	}
	fmt.Fprintln(os.Stderr, data)
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
// This is used throughout the CLI for debug/trace output that helps
// users understand which git operations are being performed.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
