// Package cli — session.go holds the per-invocation setup shared by the
// worktree commands: config loading, repository detection, and the git
// client bound to it.
package cli

import (
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/arbor/internal/config"
	"github.com/mmr-tortoise/arbor/internal/git"
	"github.com/mmr-tortoise/arbor/internal/model"
)

// session is the shared context a command runs in. It is built once at
// the start of RunE; everything downstream receives explicit values from
// it instead of re-reading the environment.
type session struct {
	cfg config.Config
	git *git.Client

	// repoRoot is the root of the worktree the command was invoked in.
	// It doubles as the "current worktree" for cleanup protection.
	repoRoot string
}

// newSession validates global flags, loads the configuration, and binds a
// git client to the enclosing repository.
func newSession() (*session, error) {
	if err := validateOutputFormat(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	repoRoot, err := git.RepoRoot(cwd)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGitError, "not inside a Git repository", err)
	}
	VerboseLog("Repository: %s", repoRoot)

	return &session{
		cfg:      cfg,
		git:      git.New(repoRoot),
		repoRoot: repoRoot,
	}, nil
}

// worktreePathFor computes the target directory for a new worktree.
// With worktreeDir configured, worktrees collect under it as
// <worktreeDir>/<name>; otherwise they become sibling directories named
// <repo>-<name>, next to the repository root.
func (s *session) worktreePathFor(name string) (string, error) {
	var path string
	if s.cfg.WorktreeDir != "" {
		path = filepath.Join(s.cfg.WorktreeDir, name)
	} else {
		repoName := filepath.Base(s.repoRoot)
		path = filepath.Join(filepath.Dir(s.repoRoot), repoName+"-"+name)
	}

	// Resolve to absolute path for consistency across the codebase.
	path, err := filepath.Abs(path)
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError, "failed to resolve worktree path", err)
	}
	return path, nil
}
