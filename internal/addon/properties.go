// SPDX-License-Identifier: MPL-2.0

// Package addon loads the add-on project configuration.
//
// addon.json at the project root carries the distribution metadata (display
// name, module name, AnkiWeb id, version constraints). The file is read with
// Viper and validated against a CUE schema (addon_schema.cue) so that shape
// errors surface with the offending JSON path. An optional .aab.toml holds
// build defaults (targets, distribution type, hook script).
package addon

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"aab-cli/pkg/cueutil"
)

// ConfigFileName is the add-on metadata file expected at the project root.
const ConfigFileName = "addon.json"

// ErrMissingKey is returned when a required addon.json key is absent.
var ErrMissingKey = errors.New("missing required configuration key")

// Properties is the immutable add-on configuration. It is loaded once before
// the pipeline starts and treated as read-only input.
type Properties struct {
	DisplayName       string   `json:"display_name" mapstructure:"display_name"`
	ModuleName        string   `json:"module_name" mapstructure:"module_name"`
	RepoName          string   `json:"repo_name" mapstructure:"repo_name"`
	AnkiWebID         string   `json:"ankiweb_id" mapstructure:"ankiweb_id"`
	Author            string   `json:"author" mapstructure:"author"`
	Contact           string   `json:"contact" mapstructure:"contact"`
	Homepage          string   `json:"homepage" mapstructure:"homepage"`
	Tags              string   `json:"tags" mapstructure:"tags"`
	CopyrightStart    int      `json:"copyright_start" mapstructure:"copyright_start"`
	Conflicts         []string `json:"conflicts" mapstructure:"conflicts"`
	MinAnkiVersion    string   `json:"min_anki_version" mapstructure:"min_anki_version"`
	MaxAnkiVersion    string   `json:"max_anki_version" mapstructure:"max_anki_version"`
	TestedAnkiVersion string   `json:"tested_anki_version" mapstructure:"tested_anki_version"`

	// AnkiWebConflictsWithLocal controls whether the AnkiWeb build lists the
	// local module as a conflict, and vice versa. Both default to true.
	AnkiWebConflictsWithLocal *bool `json:"ankiweb_conflicts_with_local" mapstructure:"ankiweb_conflicts_with_local"`
	LocalConflictsWithAnkiWeb *bool `json:"local_conflicts_with_ankiweb" mapstructure:"local_conflicts_with_ankiweb"`
}

//go:embed addon_schema.cue
var addonSchema []byte

// requiredKeys must be present and non-empty in addon.json.
var requiredKeys = []string{"display_name", "module_name", "repo_name", "author"}

// Load reads and validates addon.json from the project root.
func Load(root string) (*Properties, error) {
	path := filepath.Join(root, ConfigFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	// Schema validation first: JSON is a subset of CUE, so the raw document
	// unifies directly with the embedded schema.
	if _, err := cueutil.ParseAndDecode[Properties](addonSchema, raw, "#Addon",
		cueutil.WithFilename(ConfigFileName)); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	for _, key := range requiredKeys {
		if v.GetString(key) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
		}
	}

	var props Properties
	if err := v.Unmarshal(&props); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ConfigFileName, err)
	}
	return &props, nil
}

// ConflictsWith reports the cross-distribution conflict flags, defaulting to
// true when unset.
func (p *Properties) ConflictsWith() (ankiwebWithLocal, localWithAnkiweb bool) {
	ankiwebWithLocal = p.AnkiWebConflictsWithLocal == nil || *p.AnkiWebConflictsWithLocal
	localWithAnkiweb = p.LocalConflictsWithAnkiWeb == nil || *p.LocalConflictsWithAnkiWeb
	return ankiwebWithLocal, localWithAnkiweb
}
