// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultsFileName is the optional build-defaults file at the project root.
const DefaultsFileName = ".aab.toml"

// Defaults carries per-project build defaults. CLI flags override them.
type Defaults struct {
	Build BuildDefaults `toml:"build"`
}

// BuildDefaults mirrors the build command's flags.
type BuildDefaults struct {
	// Targets is the default ordered set of UI framework targets.
	Targets []string `toml:"targets"`
	// Dist is the default distribution type.
	Dist string `toml:"dist"`
	// PyEnv is the default interpreter selector for the resource compiler.
	PyEnv string `toml:"pyenv"`
	// Hook is a shell snippet run after the export has been augmented,
	// before manifest generation.
	Hook string `toml:"hook"`
}

// LoadDefaults reads .aab.toml from the project root. A missing file is not
// an error and yields zero defaults.
func LoadDefaults(root string) (*Defaults, error) {
	raw, err := os.ReadFile(filepath.Join(root, DefaultsFileName))
	if os.IsNotExist(err) {
		return &Defaults{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", DefaultsFileName, err)
	}

	var d Defaults
	if err := toml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", DefaultsFileName, err)
	}
	return &d, nil
}
