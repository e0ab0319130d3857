// SPDX-License-Identifier: MPL-2.0

// Package dist augments an exported source tree into a distributable add-on
// layout. Augmentation is a fixed sequence of steps over the export: copy
// licenses and changelog, merge optional icon assets, run the user hook,
// write the manifest, and compile UI resources for every requested target.
package dist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"aab-cli/internal/addon"
	"aab-cli/internal/hook"
	"aab-cli/internal/manifest"
	"aab-cli/internal/ui"
)

// ChangelogName is the changelog file looked up in the export root and
// carried into the module directory.
const ChangelogName = "CHANGELOG.md"

// Augmenter enriches an exported tree in place. All paths are absolute.
type Augmenter struct {
	// Root is the project root, the source for optional assets that live
	// outside version control.
	Root string
	// DistDir is the export root (the dist/ working tree).
	DistDir string
	// ModuleDir is the add-on module directory inside the export,
	// dist/src/<module_name>. Licenses, changelog and manifest land here.
	ModuleDir string

	Props    *addon.Properties
	Version  string
	DistType string
	Targets  []ui.QtVersion
	PyEnv    string

	// Hook is an optional shell snippet run after the asset steps and
	// before manifest generation.
	Hook string

	Logger *log.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// step is one unit of augmentation. Non-fatal steps treat a missing source
// as a no-op; fatal steps abort the build on any failure.
type step struct {
	name  string
	fatal bool
	skip  func() bool
	run   func(ctx context.Context) error
}

// Augment runs every step in order. The first fatal failure aborts; real
// I/O errors from non-fatal steps abort too, only missing sources are
// skipped.
func (a *Augmenter) Augment(ctx context.Context) error {
	steps := []step{
		{name: "copy licenses", run: a.copyLicenses},
		{
			name: "copy changelog",
			skip: func() bool { return !fileExists(filepath.Join(a.DistDir, ChangelogName)) },
			run:  a.copyChangelog,
		},
		{
			name: "copy optional icons",
			skip: func() bool { return !dirExists(a.optionalIconsDir()) },
			run:  a.copyOptionalIcons,
		},
		{
			name: "run hook",
			skip: func() bool { return strings.TrimSpace(a.Hook) == "" },
			run:  a.runHook,
		},
		{name: "write manifest", fatal: true, run: a.writeManifest},
		{name: "compile UI resources", fatal: true, run: a.compileUI},
	}

	for _, s := range steps {
		if s.skip != nil && s.skip() {
			a.logf("skipping %s", s.name)
			continue
		}
		a.logf("%s", s.name)
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// licenseDirs is the ordered list of directories searched for LICENSE*
// files, both inside the export.
func (a *Augmenter) licenseDirs() []string {
	return []string{a.DistDir, filepath.Join(a.DistDir, "resources")}
}

func (a *Augmenter) optionalIconsDir() string {
	return filepath.Join(a.Root, "resources", "icons", "optional")
}

// copyLicenses copies every LICENSE* file from the candidate directories
// into the module directory, normalizing the extension to .txt. Zero
// matches is not an error.
func (a *Augmenter) copyLicenses(_ context.Context) error {
	for _, dir := range a.licenseDirs() {
		if !dirExists(dir) {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, "LICENSE*"))
		if err != nil {
			return err
		}
		for _, src := range matches {
			stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
			if err := copyFile(src, filepath.Join(a.ModuleDir, stem+".txt")); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Augmenter) copyChangelog(_ context.Context) error {
	return copyFile(filepath.Join(a.DistDir, ChangelogName), filepath.Join(a.ModuleDir, ChangelogName))
}

// copyOptionalIcons merges <root>/resources/icons/optional into the
// export's resources/icons tree, overwriting on collision.
func (a *Augmenter) copyOptionalIcons(_ context.Context) error {
	src := a.optionalIconsDir()
	dst := filepath.Join(a.DistDir, "resources", "icons")
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(p, target)
	})
}

func (a *Augmenter) runHook(ctx context.Context) error {
	env := hook.Env{
		Root:      a.Root,
		ModuleDir: a.ModuleDir,
		Version:   a.Version,
		Dist:      a.DistType,
	}
	return hook.Run(ctx, a.Hook, env, os.Environ(), a.Stdout, a.Stderr)
}

func (a *Augmenter) writeManifest(_ context.Context) error {
	return manifest.GenerateAndWrite(a.Props, a.Version, a.DistType, a.ModuleDir, time.Now())
}

func (a *Augmenter) compileUI(ctx context.Context) error {
	builder := &ui.Builder{Root: a.DistDir, Module: a.Props.ModuleName}
	if !builder.DefinitionsExist() {
		a.logf("no UI definitions, skipping compile")
		return nil
	}
	for _, target := range a.Targets {
		a.logf("compiling UI resources for %s", target)
		if err := builder.Build(ctx, target, a.PyEnv); err != nil {
			return err
		}
	}
	return builder.CreateQtShim()
}

func (a *Augmenter) logf(format string, args ...any) {
	if a.Logger != nil {
		a.Logger.Debugf(format, args...)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil && info.IsDir()
}
