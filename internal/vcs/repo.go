// SPDX-License-Identifier: MPL-2.0

// Package vcs derives version tokens from a git repository and materializes
// clean exports of the tracked tree. It is the version-control collaborator
// of the build pipeline: everything here is read-only with respect to the
// repository itself.
package vcs

import (
	"github.com/go-git/go-git/v5"
)

// Version selectors accepted by ParseVersion. Anything else is treated as an
// explicit version string and returned unchanged.
const (
	// VersionDev is the provisional token used for builds of a modified
	// working tree that carries no tag.
	VersionDev = "dev"

	// VersionCurrent selects the most-recent-commit rule: the tag at HEAD,
	// or a describe-style token derived from the nearest ancestor tag.
	VersionCurrent = "current"
)

// Repo wraps a git repository rooted at the add-on project directory.
type Repo struct {
	repo *git.Repository
	root string
}

// Open opens the repository at root. The directory must contain the
// repository worktree (discovery does not walk upwards).
func Open(root string) (*Repo, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, WrapErrorf(ErrNoRepository, "open %s", root)
	}
	return &Repo{repo: repo, root: root}, nil
}

// Root returns the worktree root the repository was opened at.
func (r *Repo) Root() string {
	return r.root
}

// IsClean reports whether the working tree is byte-identical to HEAD:
// no staged, modified, or untracked-but-added files.
func (r *Repo) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, WrapError(err, "failed to get worktree")
	}
	status, err := wt.Status()
	if err != nil {
		return false, WrapError(err, "failed to get worktree status")
	}
	return status.IsClean(), nil
}
