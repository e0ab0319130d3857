// SPDX-License-Identifier: MPL-2.0

// Package ui compiles Qt Designer form definitions into the exported source
// tree, once per requested Qt target, and writes the load-time shim that
// selects the matching variant.
package ui

import (
	"fmt"
	"strings"
)

// QtVersion identifies one UI framework target.
type QtVersion string

// Supported targets. TargetAll is a CLI convenience that expands to every
// supported target in order.
const (
	Qt5       QtVersion = "qt5"
	Qt6       QtVersion = "qt6"
	TargetAll           = "all"
)

// allTargets is the expansion order for TargetAll.
var allTargets = []QtVersion{Qt5, Qt6}

// uicModule returns the Python module that compiles .ui files for the target.
func (q QtVersion) uicModule() string {
	if q == Qt6 {
		return "PyQt6.uic.pyuic"
	}
	return "PyQt5.uic.pyuic"
}

// String implements fmt.Stringer.
func (q QtVersion) String() string {
	return string(q)
}

// ParseTargets expands and validates the CLI target selector into an ordered
// set. Duplicates are dropped, order is preserved.
func ParseTargets(selectors []string) ([]QtVersion, error) {
	var targets []QtVersion
	seen := make(map[QtVersion]bool)

	add := func(q QtVersion) {
		if !seen[q] {
			seen[q] = true
			targets = append(targets, q)
		}
	}

	for _, sel := range selectors {
		switch strings.ToLower(strings.TrimSpace(sel)) {
		case string(Qt5):
			add(Qt5)
		case string(Qt6):
			add(Qt6)
		case TargetAll:
			for _, q := range allTargets {
				add(q)
			}
		default:
			return nil, fmt.Errorf("unknown qt version %q (expected qt5, qt6, or all)", sel)
		}
	}

	if len(targets) == 0 {
		for _, q := range allTargets {
			add(q)
		}
	}
	return targets, nil
}

// JoinTargets renders an ordered target set for the archive name, e.g.
// "qt5+qt6".
func JoinTargets(targets []QtVersion) string {
	names := make([]string, len(targets))
	for i, q := range targets {
		names[i] = string(q)
	}
	return strings.Join(names, "+")
}
