package git

import (
	"fmt"
	"strings"

	"github.com/mmr-tortoise/arbor/internal/model"
)

// HasLocalBranch reports whether a local branch ref exists. Only the exit
// code of `rev-parse --verify` matters; the output (a commit SHA) is
// discarded.
func (c *Client) HasLocalBranch(name string) bool {
	_, err := runGit(c.repoPath, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// HasRemoteBranch reports whether the remote-tracking ref
// refs/remotes/<remote>/<name> exists.
func (c *Client) HasRemoteBranch(remote, name string) bool {
	_, err := runGit(c.repoPath, "rev-parse", "--verify", "--quiet", "refs/remotes/"+remote+"/"+name)
	return err == nil
}

// LocateBranch classifies where the branch currently exists. Both probes
// are independent subprocess calls; the result is never cached because
// branches can appear mid-session.
func (c *Client) LocateBranch(remote, name string) model.BranchLocation {
	local := c.HasLocalBranch(name)
	remoteExists := remote != "" && c.HasRemoteBranch(remote, name)

	switch {
	case local && remoteExists:
		return model.LocationBoth
	case local:
		return model.LocationLocalOnly
	case remoteExists:
		return model.LocationRemoteOnly
	default:
		return model.LocationNowhere
	}
}

// LocalBranches returns the short names of all local branches.
func (c *Client) LocalBranches() ([]string, error) {
	output, err := runGit(c.repoPath, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	if err != nil {
		return nil, err
	}

	var branches []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// DetectRefConflict checks whether creating a branch called name would
// collide with an existing branch under git's `/`-segmented ref
// namespace: refs/heads/a and refs/heads/a/b cannot coexist, in either
// direction of nesting.
//
// The first matching branch wins. Order among local branches is
// irrelevant — a conflict is a symmetric pairwise fact, so any match is
// as good as another.
func (c *Client) DetectRefConflict(name string) (*model.RefConflict, error) {
	branches, err := c.LocalBranches()
	if err != nil {
		return nil, err
	}

	for _, b := range branches {
		if strings.HasPrefix(b, name+"/") || strings.HasPrefix(name, b+"/") {
			return &model.RefConflict{Requested: name, ConflictingBranch: b}, nil
		}
	}
	return nil, nil
}

// Remotes returns the names of all configured remotes.
func (c *Client) Remotes() ([]string, error) {
	output, err := runGit(c.repoPath, "remote")
	if err != nil {
		return nil, err
	}

	var remotes []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line != "" {
			remotes = append(remotes, line)
		}
	}
	return remotes, nil
}

// HasRemote reports whether the named remote is configured.
func (c *Client) HasRemote(remote string) bool {
	remotes, err := c.Remotes()
	if err != nil {
		return false
	}
	for _, r := range remotes {
		if r == remote {
			return true
		}
	}
	return false
}

// FetchStartPoint resolves the commit a new branch should start from,
// fetching branch from remote when possible. It walks a four-tier
// fallback, stopping at the first tier that yields a usable reference:
//
//  1. No remote configured: skip the network entirely and use the local
//     branch. This is an acceptable degraded outcome, not an error.
//  2. Fetch refs/heads/<branch> directly into the tracking ref. This is
//     the cheapest and most precise form — it works even when no local
//     branch exists and nothing is checked out.
//  3. Plain `git fetch <remote> <branch>`, accepting either the tracking
//     ref or FETCH_HEAD afterward. Covers remotes and git versions that
//     reject the explicit refspec form.
//  4. Fall back to the local branch, carrying the fetch error as a note.
//
// When no tier yields a reference, the branch exists nowhere reachable
// and a model.BranchNotFoundError is returned.
func (c *Client) FetchStartPoint(branch, remote string) (model.StartPoint, error) {
	trackingRef := "refs/remotes/" + remote + "/" + branch

	// Tier 1: no remote at all.
	if remote == "" || !c.HasRemote(remote) {
		if !c.HasLocalBranch(branch) {
			return model.StartPoint{}, &model.BranchNotFoundError{Branch: branch}
		}
		return model.StartPoint{Ref: branch, Note: "no remote configured"}, nil
	}

	// Tier 2: explicit refspec fetch straight into the tracking ref.
	refspec := fmt.Sprintf("refs/heads/%s:%s", branch, trackingRef)
	_, fetchErr := runGit(c.repoPath, "fetch", remote, refspec)
	if fetchErr == nil && c.refResolves(trackingRef) {
		return model.StartPoint{Ref: trackingRef, Fetched: true}, nil
	}

	// Tier 3: plain fetch; the tracking ref may or may not be updated
	// depending on the remote's refspec configuration.
	_, plainErr := runGit(c.repoPath, "fetch", remote, branch)
	if plainErr == nil {
		if c.refResolves(trackingRef) {
			return model.StartPoint{Ref: trackingRef, Fetched: true}, nil
		}
		if c.refResolves("FETCH_HEAD") {
			return model.StartPoint{
				Ref:     "FETCH_HEAD",
				Fetched: true,
				Note:    fmt.Sprintf("tracking ref %s unavailable, using FETCH_HEAD", trackingRef),
			}, nil
		}
	}

	// Tier 4: both fetches failed; a local branch still serves.
	if c.HasLocalBranch(branch) {
		note := "fetch failed, using local branch"
		if plainErr != nil {
			note = fmt.Sprintf("fetch failed (%v), using local branch", plainErr)
		}
		return model.StartPoint{Ref: branch, Note: note}, nil
	}

	return model.StartPoint{}, &model.BranchNotFoundError{Branch: branch, Remote: remote}
}

// SetUpstream points branch's upstream configuration at
// <remote>/<branch>. Run after creating a branch from a remote-tracking
// start point: without this, git leaves the new branch tracking the
// source ref, and pushes would go to the wrong branch. Branches that
// already carried their own tracking configuration are never touched.
func (c *Client) SetUpstream(worktreeDir, branch, remote string) error {
	if _, err := runGit(worktreeDir, "config", fmt.Sprintf("branch.%s.remote", branch), remote); err != nil {
		return err
	}
	_, err := runGit(worktreeDir, "config", fmt.Sprintf("branch.%s.merge", branch), "refs/heads/"+branch)
	return err
}

// refResolves reports whether ref resolves to a commit.
func (c *Client) refResolves(ref string) bool {
	_, err := runGit(c.repoPath, "rev-parse", "--verify", "--quiet", ref)
	return err == nil
}
