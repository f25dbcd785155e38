// Package model defines the domain types and value objects for the
// arbor CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (WorktreeRecord, CleanableWorktree, StartPoint, etc.) are
// transient snapshots reconstructed from live git state on every command
// invocation — there are no persistent state files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
