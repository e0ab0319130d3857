// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"aab-cli/internal/dist"
	"aab-cli/internal/issue"
)

// changelogCmd renders the project changelog in the terminal.
var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Render the project changelog",
	Long:  `Render CHANGELOG.md from the project root as styled markdown.`,
	Args:  cobra.NoArgs,
	RunE:  runChangelog,
}

func runChangelog(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}

	path := filepath.Join(root, dist.ChangelogName)
	data, err := os.ReadFile(path)
	if err != nil {
		return buildFailure(cmd, &issue.ActionableError{
			Operation: "read changelog",
			Resource:  path,
			Cause:     err,
			Suggestions: []string{
				"Create a CHANGELOG.md in the project root",
			},
		})
	}

	rendered, err := glamour.Render(string(data), "auto")
	if err != nil {
		return buildFailure(cmd, err)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}
