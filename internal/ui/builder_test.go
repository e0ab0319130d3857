// SPDX-License-Identifier: MPL-2.0

package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"aab-cli/internal/testutil"
)

func TestParseTargets(t *testing.T) {
	tests := []struct {
		name      string
		selectors []string
		want      string
		wantErr   bool
	}{
		{name: "single", selectors: []string{"qt5"}, want: "qt5"},
		{name: "ordered pair", selectors: []string{"qt6", "qt5"}, want: "qt6+qt5"},
		{name: "all expands in order", selectors: []string{"all"}, want: "qt5+qt6"},
		{name: "duplicates dropped", selectors: []string{"qt5", "qt5", "qt6"}, want: "qt5+qt6"},
		{name: "empty defaults to all", selectors: nil, want: "qt5+qt6"},
		{name: "case insensitive", selectors: []string{"Qt6"}, want: "qt6"},
		{name: "unknown", selectors: []string{"qt7"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets, err := ParseTargets(tt.selectors)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTargets(%v) error = %v, wantErr %v", tt.selectors, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := JoinTargets(targets); got != tt.want {
				t.Errorf("ParseTargets(%v) = %q, want %q", tt.selectors, got, tt.want)
			}
		})
	}
}

// stubInterpreter writes a fake python that "compiles" by copying the input
// form to the -o output path, and returns its path.
func stubInterpreter(t *testing.T, fail bool) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub interpreter requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "python-stub")
	script := "#!/bin/sh\n# $1=-m $2=module $3=form $4=-o $5=out\ncp \"$3\" \"$5\"\n"
	if fail {
		script = "#!/bin/sh\necho 'uic exploded' >&2\nexit 1\n"
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}
	return path
}

func TestBuilder(t *testing.T) {
	newExport := func(t *testing.T) *Builder {
		t.Helper()
		root := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(root, "designer", "dialog.ui"), "<ui/>")
		testutil.MustWriteFile(t, filepath.Join(root, "src", "demo_addon", "__init__.py"), "")
		return &Builder{Root: root, Module: "demo_addon"}
	}

	t.Run("compiles forms per target", func(t *testing.T) {
		b := newExport(t)
		stub := stubInterpreter(t, false)

		if err := b.Build(context.Background(), Qt5, stub); err != nil {
			t.Fatalf("Build(qt5) failed: %v", err)
		}
		if err := b.Build(context.Background(), Qt6, stub); err != nil {
			t.Fatalf("Build(qt6) failed: %v", err)
		}

		for _, target := range []string{"qt5", "qt6"} {
			compiled := filepath.Join(b.Root, "src", "demo_addon", "gui", "forms", target, "dialog.py")
			if _, err := os.Stat(compiled); err != nil {
				t.Errorf("compiled form missing for %s: %v", target, err)
			}
			marker := filepath.Join(b.Root, "src", "demo_addon", "gui", "forms", target, "__init__.py")
			if _, err := os.Stat(marker); err != nil {
				t.Errorf("package marker missing for %s: %v", target, err)
			}
		}
	})

	t.Run("compiler failure is fatal", func(t *testing.T) {
		b := newExport(t)
		err := b.Build(context.Background(), Qt5, stubInterpreter(t, true))
		if !errors.Is(err, ErrCompile) {
			t.Fatalf("Build() error = %v, want ErrCompile", err)
		}
		if !strings.Contains(err.Error(), "uic exploded") {
			t.Errorf("error %q does not carry compiler output", err)
		}
	})

	t.Run("no definitions is a no-op", func(t *testing.T) {
		b := &Builder{Root: t.TempDir(), Module: "demo_addon"}
		if b.DefinitionsExist() {
			t.Fatal("DefinitionsExist() = true without designer dir")
		}
		if err := b.Build(context.Background(), Qt5, "/nonexistent-python"); err != nil {
			t.Errorf("Build() failed without definitions: %v", err)
		}
	})

	t.Run("shim selects compiled variant", func(t *testing.T) {
		b := newExport(t)
		if err := b.CreateQtShim(); err != nil {
			t.Fatalf("CreateQtShim() failed: %v", err)
		}
		shim := testutil.MustReadFile(t, filepath.Join(b.Root, "src", "demo_addon", "gui", "forms", "__init__.py"))
		if !strings.Contains(shim, "PyQt6") || !strings.Contains(shim, ".qt5") {
			t.Errorf("shim content unexpected:\n%s", shim)
		}
	})
}
