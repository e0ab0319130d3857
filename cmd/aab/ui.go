// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"aab-cli/internal/addon"
	"aab-cli/internal/ui"
)

var (
	uiTargets []string
	uiPyEnv   string
)

// uiCmd compiles designer forms into the source tree in place, outside of
// a packaging run. Useful during development, when the add-on is loaded
// from the working copy.
var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Compile Qt designer forms into the source tree",
	Long: `Compile designer/*.ui forms into src/<module>/gui/forms for each
requested Qt target and write the version-dispatch shim. The compiled
forms land in the working copy, not in a build export.`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func init() {
	uiCmd.Flags().StringSliceVarP(&uiTargets, "qt-version", "q", nil,
		"Qt framework targets to compile for (qt5, qt6, all)")
	uiCmd.Flags().StringVar(&uiPyEnv, "pyenv", "",
		"Python environment whose interpreter runs the form compiler")
}

func runUI(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	props, err := addon.Load(root)
	if err != nil {
		return buildFailure(cmd, err)
	}
	targets, err := ui.ParseTargets(uiTargets)
	if err != nil {
		return buildFailure(cmd, err)
	}

	builder := &ui.Builder{Root: root, Module: props.ModuleName}
	if !builder.DefinitionsExist() {
		fmt.Fprintln(cmd.OutOrStdout(), WarningStyle.Render("No designer forms found, nothing to compile"))
		return nil
	}

	logger := newLogger()
	for _, target := range targets {
		logger.Info("compiling forms", "target", target)
		if err := builder.Build(cmd.Context(), target, uiPyEnv); err != nil {
			return buildFailure(cmd, err)
		}
	}
	if err := builder.CreateQtShim(); err != nil {
		return buildFailure(cmd, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Forms compiled for ")+ui.JoinTargets(targets))
	return nil
}
