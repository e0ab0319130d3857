// SPDX-License-Identifier: MPL-2.0

// Package build orchestrates the packaging pipeline: resolve the version,
// clean the working area, export the tracked tree, augment the export, and
// archive the module subtree. Stages run strictly in order and the first
// failure aborts the run.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5/osfs"

	"aab-cli/internal/addon"
	"aab-cli/internal/archive"
	"aab-cli/internal/dist"
	"aab-cli/internal/ui"
	"aab-cli/internal/vcs"
)

// Options are the user-facing build inputs. Zero values fall back to the
// project defaults from .aab.toml, then to built-in defaults.
type Options struct {
	// Version is an explicit version selector; empty triggers repository
	// state resolution.
	Version string
	// Targets are the requested UI framework versions; empty means all.
	Targets []string
	// DistType tags the distribution channel; empty means local.
	DistType string
	// PyEnv selects the interpreter used by the resource compiler.
	PyEnv string
	// Hook overrides the post-augment shell hook from .aab.toml.
	Hook string
}

// applyDefaults fills unset options from the project's build defaults.
func (o *Options) applyDefaults(d *addon.Defaults) {
	if len(o.Targets) == 0 {
		o.Targets = d.Build.Targets
	}
	if o.DistType == "" {
		o.DistType = d.Build.Dist
	}
	if o.PyEnv == "" {
		o.PyEnv = d.Build.PyEnv
	}
	if o.Hook == "" {
		o.Hook = d.Build.Hook
	}
	if o.DistType == "" {
		o.DistType = "local"
	}
}

// Context carries the resolved state a build run threads through its
// stages. It is constructed once, before any filesystem mutation.
type Context struct {
	Root      string
	DistDir   string
	ModuleDir string
	BuildDir  string

	Props    *addon.Properties
	Repo     *vcs.Repo
	Version  string
	Targets  []ui.QtVersion
	DistType string
	PyEnv    string
	Hook     string
}

// Pipeline runs builds for one project root.
type Pipeline struct {
	Root   string
	Logger *log.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// Prepare resolves everything a build needs without touching the
// filesystem: properties, defaults, targets, and the version. A version
// resolution failure surfaces here, before any destructive step.
func (p *Pipeline) Prepare(opts Options) (*Context, error) {
	props, err := addon.Load(p.Root)
	if err != nil {
		return nil, err
	}
	defaults, err := addon.LoadDefaults(p.Root)
	if err != nil {
		return nil, err
	}
	opts.applyDefaults(defaults)

	targets, err := ui.ParseTargets(opts.Targets)
	if err != nil {
		return nil, err
	}

	repo, err := vcs.Open(p.Root)
	if err != nil {
		return nil, err
	}
	version, err := repo.Resolve(opts.Version)
	if err != nil {
		return nil, err
	}

	distDir := filepath.Join(p.Root, "dist")
	return &Context{
		Root:      p.Root,
		DistDir:   distDir,
		ModuleDir: filepath.Join(distDir, "src", props.ModuleName),
		BuildDir:  filepath.Join(p.Root, "build"),
		Props:     props,
		Repo:      repo,
		Version:   version,
		Targets:   targets,
		DistType:  opts.DistType,
		PyEnv:     opts.PyEnv,
		Hook:      opts.Hook,
	}, nil
}

// Run executes the full pipeline and returns the path of the packaged
// archive.
func (p *Pipeline) Run(ctx context.Context, opts Options) (string, error) {
	bctx, err := p.Prepare(opts)
	if err != nil {
		return "", err
	}
	p.logger().Info("building add-on",
		"name", bctx.Props.DisplayName,
		"version", bctx.Version,
		"targets", ui.JoinTargets(bctx.Targets),
		"dist", bctx.DistType)

	p.logger().Debug("cleaning working area")
	if err := cleanWorkingArea(bctx.Root, bctx.DistDir); err != nil {
		return "", fmt.Errorf("failed to clean working area: %w", err)
	}

	p.logger().Debug("exporting tracked tree", "version", bctx.Version)
	if err := os.MkdirAll(bctx.DistDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create working area: %w", err)
	}
	if err := bctx.Repo.Export(ctx, bctx.Version, osfs.New(bctx.DistDir)); err != nil {
		return "", err
	}

	p.logger().Debug("augmenting export")
	augmenter := &dist.Augmenter{
		Root:      bctx.Root,
		DistDir:   bctx.DistDir,
		ModuleDir: bctx.ModuleDir,
		Props:     bctx.Props,
		Version:   bctx.Version,
		DistType:  bctx.DistType,
		Targets:   bctx.Targets,
		PyEnv:     bctx.PyEnv,
		Hook:      bctx.Hook,
		Logger:    p.Logger,
		Stdout:    p.Stdout,
		Stderr:    p.Stderr,
	}
	if err := augmenter.Augment(ctx); err != nil {
		return "", err
	}

	p.logger().Debug("packaging module subtree")
	out, err := archive.Package(bctx.ModuleDir, bctx.BuildDir, bctx.Props.RepoName, bctx.Version, bctx.Targets, bctx.DistType)
	if err != nil {
		return "", err
	}
	p.logger().Info("package written", "path", out)
	return out, nil
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}
