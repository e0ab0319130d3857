// SPDX-License-Identifier: MPL-2.0

// Package manifest synthesizes the manifest.json that Anki reads when
// installing a packaged add-on. Generation is a pure function of the add-on
// properties, the resolved version, the distribution type, and a timestamp;
// writing is a separate step so tests can inspect the value directly.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"aab-cli/internal/addon"
)

// FileName is the manifest file written into the module output directory.
const FileName = "manifest.json"

// DistLocal is the default distribution type; DistAnkiWeb marks store
// submissions.
const (
	DistLocal   = "local"
	DistAnkiWeb = "ankiweb"
)

// ErrManifest is returned when the add-on properties cannot produce a valid
// manifest for the requested distribution type.
var ErrManifest = errors.New("manifest generation failed")

// Manifest mirrors the manifest.json schema consumed by Anki.
type Manifest struct {
	Name            string   `json:"name"`
	Package         string   `json:"package"`
	AnkiWebID       string   `json:"ankiweb_id,omitempty"`
	Author          string   `json:"author,omitempty"`
	Version         string   `json:"version"`
	HumanVersion    string   `json:"human_version"`
	Homepage        string   `json:"homepage,omitempty"`
	Conflicts       []string `json:"conflicts"`
	Mod             int64    `json:"mod"`
	MinPointVersion int      `json:"min_point_version,omitempty"`
	MaxPointVersion int      `json:"max_point_version,omitempty"`
}

// Generate builds the manifest value for the given distribution type.
//
// Local builds ship under the module name and declare the AnkiWeb copy as a
// conflict; AnkiWeb builds ship under the AnkiWeb id and declare the local
// module as a conflict. The cross-conflict entries honor the opt-out flags
// in addon.json.
func Generate(props *addon.Properties, version, distType string, now time.Time) (*Manifest, error) {
	if props.ModuleName == "" || props.DisplayName == "" {
		return nil, WrapError(ErrManifest, "module_name and display_name are required")
	}

	m := &Manifest{
		Name:         props.DisplayName,
		Package:      props.ModuleName,
		AnkiWebID:    props.AnkiWebID,
		Author:       props.Author,
		Version:      version,
		HumanVersion: version,
		Homepage:     props.Homepage,
		Conflicts:    append([]string(nil), props.Conflicts...),
		Mod:          now.Unix(),
	}

	ankiwebWithLocal, localWithAnkiweb := props.ConflictsWith()
	switch distType {
	case DistAnkiWeb:
		if props.AnkiWebID == "" {
			return nil, WrapError(ErrManifest, "ankiweb distribution requires ankiweb_id")
		}
		m.Package = props.AnkiWebID
		if ankiwebWithLocal {
			m.Conflicts = append(m.Conflicts, props.ModuleName)
		}
	case DistLocal:
		if props.AnkiWebID != "" && localWithAnkiweb {
			m.Conflicts = append(m.Conflicts, props.AnkiWebID)
		}
	default:
		// Unknown distribution types keep local semantics; the tag only
		// affects the archive name.
		if props.AnkiWebID != "" && localWithAnkiweb {
			m.Conflicts = append(m.Conflicts, props.AnkiWebID)
		}
	}

	m.MinPointVersion = pointVersion(props.MinAnkiVersion)
	switch {
	case props.MaxAnkiVersion != "":
		// A hard ceiling is expressed as a negative point version.
		m.MaxPointVersion = -pointVersion(props.MaxAnkiVersion)
	case props.TestedAnkiVersion != "":
		m.MaxPointVersion = pointVersion(props.TestedAnkiVersion)
	}

	return m, nil
}

// GenerateAndWrite renders the manifest into targetDir.
func GenerateAndWrite(props *addon.Properties, version, distType, targetDir string, now time.Time) error {
	m, err := Generate(props, version, distType, now)
	if err != nil {
		return err
	}
	return m.Write(targetDir)
}

// Write serializes the manifest as indented JSON into dir.
func (m *Manifest) Write(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return WrapError(ErrManifest, "failed to encode manifest")
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		return WrapError(err, "failed to write manifest")
	}
	return nil
}

// WrapError wraps an error with context, preserving errors.Is checks.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// pointVersion extracts the point release from an Anki version string
// ("2.1.45" -> 45). Unparseable input yields 0, which omits the field.
func pointVersion(version string) int {
	parts := strings.Split(version, ".")
	if len(parts) == 0 {
		return 0
	}
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return n
}
