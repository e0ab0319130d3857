// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"aab-cli/internal/build"
)

// cleanCmd removes everything a build run produces.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build output and bytecode caches",
	Long: `Remove the dist/ export tree, the build/ archive directory, and any
Python bytecode caches in the working copy.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	if err := build.CleanAll(root); err != nil {
		return buildFailure(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Build output removed"))
	return nil
}
