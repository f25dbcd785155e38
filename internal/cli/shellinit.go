// Package cli — shellinit.go implements the "arbor shell-init" command.
//
// A child process cannot change its parent shell's working directory, so
// checkout records the resolved path in a marker file and a shell
// wrapper performs the cd. shell-init prints that wrapper; users eval it
// from their shell rc:
//
//	eval "$(arbor shell-init)"
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/arbor/internal/model"
)

// shellWrapper is the function installed into the user's shell. It runs
// the real binary, then consumes the navigation marker if the invocation
// wrote one. The marker is removed after use so a later plain `arbor
// list` does not replay a stale cd. Compatible with bash and zsh.
const shellWrapper = `arbor() {
    command arbor "$@"
    local __arbor_status=$?
    local __arbor_marker="${ARBOR_NAV_FILE:-${TMPDIR:-/tmp}/arbor-nav-$(id -u)}"
    if [ -f "$__arbor_marker" ]; then
        local __arbor_target
        __arbor_target="$(cat "$__arbor_marker")"
        rm -f "$__arbor_marker"
        if [ -d "$__arbor_target" ]; then
            cd "$__arbor_target" || return 1
        fi
    fi
    return $__arbor_status
}
`

// NewShellInitCommand creates the "shell-init" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewShellInitCommand() *cobra.Command {
	var shell string

	cmd := &cobra.Command{
		Use:   "shell-init",
		Short: "Print the shell wrapper that enables directory navigation",
		Long: `Print a shell function that wraps arbor and changes directory into
the worktree resolved by checkout or add.

Add to your ~/.bashrc or ~/.zshrc:

  eval "$(arbor shell-init)"`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runShellInit(shell)
		},
	}

	cmd.Flags().StringVar(&shell, "shell", "bash", "Target shell: bash or zsh")

	return cmd
}

// runShellInit prints the wrapper for the requested shell. The bash and
// zsh wrappers are identical today; the flag exists so the interface
// stays stable if they ever diverge.
func runShellInit(shell string) error {
	switch shell {
	case "bash", "zsh":
		fmt.Print(shellWrapper)
		return nil
	default:
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("unsupported shell %q: valid values are bash, zsh", shell))
	}
}
