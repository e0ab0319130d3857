// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"aab-cli/internal/addon"
	"aab-cli/internal/manifest"
	"aab-cli/internal/vcs"
)

var manifestDist string

// manifestCmd generates the manifest for inspection without running a
// build.
var manifestCmd = &cobra.Command{
	Use:   "manifest [version]",
	Short: "Print the generated add-on manifest",
	Long: `Generate the manifest.json that a build would embed and print it to
stdout. The version argument follows the same rules as 'aab build'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runManifest,
}

func init() {
	manifestCmd.Flags().StringVarP(&manifestDist, "dist", "d", manifest.DistLocal,
		"distribution channel (local, ankiweb)")
}

func runManifest(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	props, err := addon.Load(root)
	if err != nil {
		return buildFailure(cmd, err)
	}

	repo, err := vcs.Open(root)
	if err != nil {
		return buildFailure(cmd, err)
	}
	explicit := ""
	if len(args) > 0 {
		explicit = args[0]
	}
	version, err := repo.Resolve(explicit)
	if err != nil {
		return buildFailure(cmd, err)
	}

	m, err := manifest.Generate(props, version, manifestDist, time.Now())
	if err != nil {
		return buildFailure(cmd, err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return buildFailure(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
