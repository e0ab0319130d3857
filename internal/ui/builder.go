// SPDX-License-Identifier: MPL-2.0

package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ErrCompile is returned when the external user-interface compiler fails.
var ErrCompile = errors.New("resource compilation failed")

// designerDir holds the .ui form definitions inside the export.
const designerDir = "designer"

// qtShim selects the compiled variant matching the Qt binding that Anki
// loaded. Written as gui/forms/__init__.py after all targets compiled.
const qtShim = `import sys

if "PyQt6" in sys.modules:
    from .qt6 import *  # noqa: F401,F403
else:
    from .qt5 import *  # noqa: F401,F403
`

// Builder compiles form definitions for one export tree.
//
// Each target writes exclusively below its own forms/<target> directory, so
// compiling targets in sequence is deterministic and order-independent in
// content (only the caller-given order is observed).
type Builder struct {
	// Root is the export directory (the dist tree).
	Root string
	// Module is the add-on module name below src/.
	Module string
}

// DefinitionsExist reports whether the export carries UI form definitions.
func (b *Builder) DefinitionsExist() bool {
	info, err := os.Stat(filepath.Join(b.Root, designerDir))
	return err == nil && info.IsDir()
}

// formsDir returns the compiled-forms directory for a target.
func (b *Builder) formsDir(target QtVersion) string {
	return filepath.Join(b.Root, "src", b.Module, "gui", "forms", string(target))
}

// Build compiles every designer/*.ui form for one target. The interpreter
// selector (pyenv) overrides the python executable used to run the uic
// module; empty means "python".
func (b *Builder) Build(ctx context.Context, target QtVersion, pyenv string) error {
	if !b.DefinitionsExist() {
		return nil
	}

	forms, err := filepath.Glob(filepath.Join(b.Root, designerDir, "*.ui"))
	if err != nil {
		return WrapError(err, "failed to enumerate forms")
	}
	sort.Strings(forms)
	if len(forms) == 0 {
		return nil
	}

	outDir := b.formsDir(target)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WrapError(err, "failed to create forms directory")
	}

	interpreter := pyenv
	if interpreter == "" {
		interpreter = "python"
	}

	for _, form := range forms {
		stem := strings.TrimSuffix(filepath.Base(form), ".ui")
		out := filepath.Join(outDir, stem+".py")

		cmd := exec.CommandContext(ctx, interpreter, "-m", target.uicModule(), form, "-o", out)
		var combined bytes.Buffer
		cmd.Stdout = &combined
		cmd.Stderr = &combined
		if err := cmd.Run(); err != nil {
			return WrapErrorf(ErrCompile, "%s (%s): %s", filepath.Base(form), target, strings.TrimSpace(combined.String()))
		}
	}

	// Package marker so the variant is importable.
	initPath := filepath.Join(outDir, "__init__.py")
	if _, err := os.Stat(initPath); os.IsNotExist(err) {
		if err := os.WriteFile(initPath, []byte(""), 0o644); err != nil {
			return WrapError(err, "failed to write package marker")
		}
	}
	return nil
}

// CreateQtShim writes the compatibility shim enabling the packaged code to
// pick the compiled variant at load time.
func (b *Builder) CreateQtShim() error {
	dir := filepath.Join(b.Root, "src", b.Module, "gui", "forms")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return WrapError(err, "failed to create forms directory")
	}
	if err := os.WriteFile(filepath.Join(dir, "__init__.py"), []byte(qtShim), 0o644); err != nil {
		return WrapError(err, "failed to write qt shim")
	}
	return nil
}

// WrapError wraps an error with context, preserving errors.Is checks.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf is the formatted variant of WrapError.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
