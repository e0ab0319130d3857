// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"aab-cli/internal/manifest"
	"aab-cli/internal/testutil"
	"aab-cli/internal/ui"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		name     string
		targets  []ui.QtVersion
		distType string
		want     string
	}{
		{
			name:     "local dist omits suffix",
			targets:  []ui.QtVersion{ui.Qt5, ui.Qt6},
			distType: manifest.DistLocal,
			want:     "foo-1.2.3-qt5+qt6.ankiaddon",
		},
		{
			name:     "ankiweb dist keeps suffix",
			targets:  []ui.QtVersion{ui.Qt5, ui.Qt6},
			distType: manifest.DistAnkiWeb,
			want:     "foo-1.2.3-qt5+qt6-ankiweb.ankiaddon",
		},
		{
			name:     "single target",
			targets:  []ui.QtVersion{ui.Qt6},
			distType: manifest.DistLocal,
			want:     "foo-1.2.3-qt6.ankiaddon",
		},
		{
			name:     "custom dist",
			targets:  []ui.QtVersion{ui.Qt5},
			distType: "beta",
			want:     "foo-1.2.3-qt5-beta.ankiaddon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputName("foo", "1.2.3", tt.targets, tt.distType)
			if got != tt.want {
				t.Errorf("OutputName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPackage(t *testing.T) {
	t.Run("entries are subtree relative", func(t *testing.T) {
		root := t.TempDir()
		subtree := filepath.Join(root, "dist", "src", "demo_addon")
		testutil.MustWriteFile(t, filepath.Join(subtree, "a.py"), "print('a')\n")
		testutil.MustWriteFile(t, filepath.Join(subtree, "sub", "b.py"), "print('b')\n")

		buildDir := filepath.Join(root, "build")
		out, err := Package(subtree, buildDir, "demo-addon", "1.0.0", []ui.QtVersion{ui.Qt5, ui.Qt6}, manifest.DistLocal)
		if err != nil {
			t.Fatalf("Package() error = %v", err)
		}
		if filepath.Base(out) != "demo-addon-1.0.0-qt5+qt6.ankiaddon" {
			t.Errorf("output name = %q", filepath.Base(out))
		}

		entries := readArchive(t, out)
		if got := entries["a.py"]; got != "print('a')\n" {
			t.Errorf("a.py content = %q", got)
		}
		if got := entries["sub/b.py"]; got != "print('b')\n" {
			t.Errorf("sub/b.py content = %q", got)
		}
		for name := range entries {
			if filepath.IsAbs(name) {
				t.Errorf("entry %q is not relative", name)
			}
		}
	})

	t.Run("re-run overwrites previous artifact", func(t *testing.T) {
		root := t.TempDir()
		subtree := filepath.Join(root, "mod")
		testutil.MustWriteFile(t, filepath.Join(subtree, "a.py"), "old\n")

		buildDir := filepath.Join(root, "build")
		targets := []ui.QtVersion{ui.Qt6}
		if _, err := Package(subtree, buildDir, "foo", "1.0.0", targets, manifest.DistLocal); err != nil {
			t.Fatalf("first Package() error = %v", err)
		}

		testutil.MustWriteFile(t, filepath.Join(subtree, "a.py"), "new\n")
		out, err := Package(subtree, buildDir, "foo", "1.0.0", targets, manifest.DistLocal)
		if err != nil {
			t.Fatalf("second Package() error = %v", err)
		}

		entries := readArchive(t, out)
		if got := entries["a.py"]; got != "new\n" {
			t.Errorf("a.py content = %q, want %q", got, "new\n")
		}
	})

	t.Run("missing subtree", func(t *testing.T) {
		root := t.TempDir()
		_, err := Package(filepath.Join(root, "absent"), filepath.Join(root, "build"), "foo", "1.0.0", []ui.QtVersion{ui.Qt5}, manifest.DistLocal)
		if !errors.Is(err, ErrPackaging) {
			t.Errorf("error = %v, want ErrPackaging", err)
		}
	})

	t.Run("no partial file left on failure", func(t *testing.T) {
		root := t.TempDir()
		buildDir := filepath.Join(root, "build")
		_, err := Package(filepath.Join(root, "absent"), buildDir, "foo", "1.0.0", []ui.QtVersion{ui.Qt5}, manifest.DistLocal)
		if err == nil {
			t.Fatal("Package() succeeded on missing subtree")
		}

		matches, globErr := filepath.Glob(filepath.Join(buildDir, "*.partial"))
		if globErr != nil {
			t.Fatal(globErr)
		}
		if len(matches) != 0 {
			t.Errorf("partial files left behind: %v", matches)
		}
	})
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer func() { _ = zr.Close() }()

	entries := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %q: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %q: %v", f.Name, err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

func TestPackageStat(t *testing.T) {
	// The output must be a regular file, not a dangling rename target.
	root := t.TempDir()
	subtree := filepath.Join(root, "mod")
	testutil.MustWriteFile(t, filepath.Join(subtree, "__init__.py"), "")

	out, err := Package(subtree, filepath.Join(root, "build"), "foo", "0.1.0", []ui.QtVersion{ui.Qt5}, manifest.DistLocal)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.Mode().IsRegular() {
		t.Errorf("output mode = %v, want regular file", info.Mode())
	}
}
