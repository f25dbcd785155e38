// Package clean implements the safety-checked cleanup engine: the
// analyzer that classifies each worktree as cleanable or protected, and
// the executor that previews, confirms, and removes the cleanable batch.
//
// Classification fails toward safety in both directions: an unreadable
// metadata timestamp makes a worktree look brand new (age 0, so the age
// threshold keeps it), while a failed status or upstream probe makes it
// look dirty or unpushed (so the safety checks keep it too).
//
// Removal is partial-failure tolerant — a batch of independent deletions
// is never all-or-nothing, and one failed removal does not abort its
// siblings.
package clean
