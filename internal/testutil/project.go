// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultAddonJSON is a minimal valid addon.json used as a project fixture.
const DefaultAddonJSON = `{
  "display_name": "Demo Add-on",
  "module_name": "demo_addon",
  "repo_name": "demo-addon",
  "author": "Jane Doe",
  "ankiweb_id": "1234567890",
  "conflicts": ["other_addon"],
  "min_anki_version": "2.1.45"
}
`

// Project is a scratch add-on repository backed by a real git worktree in a
// temporary directory. It is the shared fixture for pipeline, vcs, and CLI
// tests.
type Project struct {
	t    testing.TB
	Dir  string
	Repo *git.Repository
}

// NewProject creates an empty git repository in a fresh temp directory.
func NewProject(t testing.TB) *Project {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init git repository: %v", err)
	}
	return &Project{t: t, Dir: dir, Repo: repo}
}

// NewAddonProject creates a repository pre-populated with an addon.json and a
// src/demo_addon module, committed and tagged v1.0.0.
func NewAddonProject(t testing.TB) *Project {
	t.Helper()
	p := NewProject(t)
	p.WriteFile("addon.json", DefaultAddonJSON)
	p.WriteFile("src/demo_addon/__init__.py", "# demo add-on\n")
	p.WriteFile("src/demo_addon/main.py", "def run():\n    pass\n")
	p.Commit("initial import")
	p.Tag("v1.0.0")
	return p
}

// WriteFile writes content below the project root. Parent directories are
// created as needed. The file is not staged.
func (p *Project) WriteFile(rel, content string) {
	p.t.Helper()
	MustWriteFile(p.t, filepath.Join(p.Dir, rel), content)
}

// RemoveFile deletes a file below the project root.
func (p *Project) RemoveFile(rel string) {
	p.t.Helper()
	if err := os.Remove(filepath.Join(p.Dir, rel)); err != nil {
		p.t.Fatalf("failed to remove %s: %v", rel, err)
	}
}

// Commit stages everything and commits with a fixed author, returning the
// commit hash.
func (p *Project) Commit(msg string) plumbing.Hash {
	p.t.Helper()
	wt, err := p.Repo.Worktree()
	if err != nil {
		p.t.Fatalf("failed to get worktree: %v", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		p.t.Fatalf("failed to stage files: %v", err)
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test Author",
			Email: "test@example.com",
			When:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		p.t.Fatalf("failed to commit: %v", err)
	}
	return hash
}

// Tag creates a lightweight tag pointing at HEAD.
func (p *Project) Tag(name string) {
	p.t.Helper()
	head, err := p.Repo.Head()
	if err != nil {
		p.t.Fatalf("failed to resolve HEAD: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), head.Hash())
	if err := p.Repo.Storer.SetReference(ref); err != nil {
		p.t.Fatalf("failed to create tag %s: %v", name, err)
	}
}
