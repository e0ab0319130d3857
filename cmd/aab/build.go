// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"aab-cli/internal/build"
	"aab-cli/internal/issue"
	"aab-cli/internal/vcs"
)

var (
	buildTargets []string
	buildDist    string
	buildPyEnv   string
)

// buildCmd runs the full packaging pipeline.
var buildCmd = &cobra.Command{
	Use:   "build [version]",
	Short: "Build and package the add-on for distribution",
	Long: `Build and package the add-on into an installable .ankiaddon archive.

The version may be given explicitly, or as one of the selectors
"current" (most recent commit) and "dev" (development build). With no
argument the version is derived from the repository state: the tag at
HEAD if the tree is clean, "dev" if it is dirty, otherwise a
git-describe style token from the nearest ancestor tag.

Examples:
  aab build                     Version derived from git state
  aab build v1.2.0              Explicit version
  aab build -q qt6 -d ankiweb   Qt6-only AnkiWeb build`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringSliceVarP(&buildTargets, "qt-version", "q", nil,
		"Qt framework targets to compile for (qt5, qt6, all)")
	buildCmd.Flags().StringVarP(&buildDist, "dist", "d", "",
		"distribution channel (local, ankiweb)")
	buildCmd.Flags().StringVar(&buildPyEnv, "pyenv", "",
		"Python environment whose interpreter runs the form compiler")
}

func runBuild(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}

	opts := build.Options{
		Targets:  buildTargets,
		DistType: buildDist,
		PyEnv:    buildPyEnv,
	}
	if len(args) > 0 {
		opts.Version = args[0]
	}

	pipe := &build.Pipeline{
		Root:   root,
		Logger: newLogger(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
	out, err := pipe.Run(cmd.Context(), opts)
	if err != nil {
		return buildFailure(cmd, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Package written: ")+out)
	return nil
}

// buildFailure prints a formatted error and converts it to a non-zero exit.
func buildFailure(cmd *cobra.Command, err error) error {
	if errors.Is(err, vcs.ErrVersionUnresolved) {
		err = &issue.ActionableError{
			Operation: "resolve version",
			Cause:     err,
			Suggestions: []string{
				"Tag a release (git tag vX.Y.Z) and retry",
				"Pass an explicit version: aab build <version>",
			},
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: 1, Err: err}
}
