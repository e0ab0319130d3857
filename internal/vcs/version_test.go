// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"errors"
	"fmt"
	"testing"

	"aab-cli/internal/testutil"
)

func TestResolve(t *testing.T) {
	t.Run("tagged commit with clean tree resolves to tag", func(t *testing.T) {
		p := testutil.NewAddonProject(t)
		repo, err := Open(p.Dir)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}

		version, err := repo.Resolve("")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if version != "v1.0.0" {
			t.Errorf("Resolve() = %q, want %q", version, "v1.0.0")
		}
	})

	t.Run("modified tree at untagged commit resolves to dev", func(t *testing.T) {
		p := testutil.NewAddonProject(t)
		p.WriteFile("src/demo_addon/extra.py", "x = 1\n")
		p.Commit("untagged change")
		p.WriteFile("src/demo_addon/extra.py", "x = 2\n")

		repo, err := Open(p.Dir)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		version, err := repo.Resolve("")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if version != VersionDev {
			t.Errorf("Resolve() = %q, want %q", version, VersionDev)
		}
	})

	t.Run("clean tree at untagged commit falls back to ancestor tag", func(t *testing.T) {
		p := testutil.NewAddonProject(t)
		p.WriteFile("src/demo_addon/extra.py", "x = 1\n")
		p.Commit("untagged change")

		repo, err := Open(p.Dir)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		version, err := repo.Resolve("")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if version == VersionDev {
			t.Fatalf("Resolve() = %q, want describe-style token", version)
		}

		// The suffix carries the described commit's (HEAD's) short hash,
		// matching git describe output.
		head, err := p.Repo.Head()
		if err != nil {
			t.Fatalf("Head() failed: %v", err)
		}
		want := fmt.Sprintf("v1.0.0-1-g%s", head.Hash().String()[:7])
		if version != want {
			t.Errorf("Resolve() = %q, want %q", version, want)
		}
	})

	t.Run("clean tree with no tags fails", func(t *testing.T) {
		p := testutil.NewProject(t)
		p.WriteFile("file.py", "pass\n")
		p.Commit("only commit")

		repo, err := Open(p.Dir)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		_, err = repo.Resolve("")
		if !errors.Is(err, ErrVersionUnresolved) {
			t.Errorf("Resolve() error = %v, want ErrVersionUnresolved", err)
		}
	})

	t.Run("explicit version passes through", func(t *testing.T) {
		p := testutil.NewAddonProject(t)
		repo, err := Open(p.Dir)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		version, err := repo.Resolve("2.5.1")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if version != "2.5.1" {
			t.Errorf("Resolve() = %q, want %q", version, "2.5.1")
		}
	})

	t.Run("current selector uses the most recent commit rule", func(t *testing.T) {
		p := testutil.NewAddonProject(t)
		repo, err := Open(p.Dir)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		version, err := repo.Resolve(VersionCurrent)
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if version != "v1.0.0" {
			t.Errorf("Resolve(current) = %q, want %q", version, "v1.0.0")
		}
	})

	t.Run("dev selector is a literal token", func(t *testing.T) {
		p := testutil.NewAddonProject(t)
		repo, err := Open(p.Dir)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		version, err := repo.Resolve(VersionDev)
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if version != VersionDev {
			t.Errorf("Resolve(dev) = %q, want %q", version, VersionDev)
		}
	})
}

func TestOpen(t *testing.T) {
	t.Run("missing repository", func(t *testing.T) {
		_, err := Open(t.TempDir())
		if !errors.Is(err, ErrNoRepository) {
			t.Errorf("Open() error = %v, want ErrNoRepository", err)
		}
	})
}

func TestIsClean(t *testing.T) {
	p := testutil.NewAddonProject(t)
	repo, err := Open(p.Dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	clean, err := repo.IsClean()
	if err != nil {
		t.Fatalf("IsClean() failed: %v", err)
	}
	if !clean {
		t.Error("IsClean() = false for freshly committed tree")
	}

	p.WriteFile("scratch.txt", "dirty\n")
	clean, err = repo.IsClean()
	if err != nil {
		t.Fatalf("IsClean() failed: %v", err)
	}
	if clean {
		t.Error("IsClean() = true after writing an untracked file")
	}
}
