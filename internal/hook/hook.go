// SPDX-License-Identifier: MPL-2.0

// Package hook runs user-supplied shell snippets between pipeline stages.
// Scripts execute in an embedded POSIX shell interpreter, so hooks behave
// the same on every platform and never depend on a system /bin/sh.
package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ErrHook is returned when a hook script fails to parse or exits non-zero.
var ErrHook = errors.New("hook failed")

// Env describes the variables exported to a hook on top of the parent
// process environment.
type Env struct {
	// Root is the project root, exported as AAB_ROOT and used as the
	// working directory.
	Root string
	// ModuleDir is the exported add-on module directory (AAB_MODULE_DIR).
	ModuleDir string
	// Version is the resolved build version (AAB_VERSION).
	Version string
	// Dist is the distribution type (AAB_DIST).
	Dist string
}

func (e Env) list(base []string) []string {
	return append(base,
		"AAB_ROOT="+e.Root,
		"AAB_MODULE_DIR="+e.ModuleDir,
		"AAB_VERSION="+e.Version,
		"AAB_DIST="+e.Dist,
	)
}

// Run parses and executes script with env applied, writing the script's
// output to stdout and stderr. An empty script is a no-op.
func Run(ctx context.Context, script string, env Env, environ []string, stdout, stderr io.Writer) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "hook")
	if err != nil {
		return fmt.Errorf("%w: syntax error: %w", ErrHook, err)
	}

	runner, err := interp.New(
		interp.Dir(env.Root),
		interp.Env(expand.ListEnviron(env.list(environ)...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create interpreter: %w", ErrHook, err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return fmt.Errorf("%w: exit status %d", ErrHook, int(exitStatus))
		}
		return fmt.Errorf("%w: %w", ErrHook, err)
	}
	return nil
}
