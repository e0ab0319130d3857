// SPDX-License-Identifier: MPL-2.0

package build

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// trashDirs and trashExts are the bytecode cache patterns purged from the
// repository working copy before every export.
var (
	trashDirs = []string{"__pycache__"}
	trashExts = []string{".pyc", ".pyo"}
)

// cleanWorkingArea removes the previous export and purges trash from the
// working copy. It runs unconditionally, even when nothing exists yet.
func cleanWorkingArea(root, distDir string) error {
	if err := os.RemoveAll(distDir); err != nil {
		return err
	}
	return purgeTrash(root)
}

// CleanAll removes all build output: the export tree, the packaged
// archives, and any bytecode caches in the working copy.
func CleanAll(root string) error {
	for _, dir := range []string{filepath.Join(root, "dist"), filepath.Join(root, "build")} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return purgeTrash(root)
}

// purgeTrash walks the working copy and deletes bytecode caches. The .git
// directory is left alone.
func purgeTrash(root string) error {
	var doomed []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			switch {
			case d.Name() == ".git":
				return filepath.SkipDir
			case matchesAny(d.Name(), trashDirs):
				doomed = append(doomed, p)
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range trashExts {
			if strings.HasSuffix(d.Name(), ext) {
				doomed = append(doomed, p)
				break
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, p := range doomed {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if name == p {
			return true
		}
	}
	return false
}
