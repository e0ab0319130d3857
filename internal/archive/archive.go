// SPDX-License-Identifier: MPL-2.0

// Package archive writes the packaged add-on: one deflate-compressed ZIP of
// the module subtree, under a deterministic name derived from the build
// inputs. Anki consumes the file under the .ankiaddon extension.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"aab-cli/internal/manifest"
	"aab-cli/internal/ui"
)

// Ext is the package file extension.
const Ext = "ankiaddon"

// ErrPackaging is returned on any I/O failure while enumerating or writing
// the archive.
var ErrPackaging = errors.New("packaging failed")

// OutputName composes the deterministic archive file name:
// {repo}-{version}-{targets joined by +}[-{dist}].ankiaddon. The dist suffix
// is omitted for the default local distribution.
func OutputName(repoName, version string, targets []ui.QtVersion, distType string) string {
	dist := ""
	if distType != manifest.DistLocal {
		dist = "-" + distType
	}
	return fmt.Sprintf("%s-%s-%s%s.%s", repoName, version, ui.JoinTargets(targets), dist, Ext)
}

// Package archives every file under subtree into buildDir using the
// composed output name and returns the resolved output path. Entry names are
// subtree-relative with forward slashes, so the archive's top level mirrors
// the module's internal layout. Directory entries are not stored.
//
// A pre-existing file at the output path is replaced. The archive is written
// to a temporary path and renamed on success, so a failed run never leaves a
// file that looks complete.
func Package(subtree, buildDir, repoName, version string, targets []ui.QtVersion, distType string) (string, error) {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return "", wrap(err, "failed to create build directory")
	}

	outPath := filepath.Join(buildDir, OutputName(repoName, version, targets, distType))
	if err := os.Remove(outPath); err != nil && !os.IsNotExist(err) {
		return "", wrap(err, "failed to remove previous package")
	}

	tmpPath := outPath + ".partial"
	if err := writeArchive(subtree, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", wrap(err, "failed to finalize package")
	}
	return outPath, nil
}

func writeArchive(subtree, path string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return wrap(err, "failed to create package file")
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = wrap(closeErr, "failed to close package file")
		}
	}()

	zw := zip.NewWriter(out)
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = wrap(closeErr, "failed to close archive")
		}
	}()

	// WalkDir visits entries in lexical order, which keeps the entry
	// sequence stable across runs.
	walkErr := filepath.WalkDir(subtree, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(subtree, p)
		if relErr != nil {
			return relErr
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		header, headerErr := zip.FileInfoHeader(info)
		if headerErr != nil {
			return headerErr
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		w, createErr := zw.CreateHeader(header)
		if createErr != nil {
			return createErr
		}
		src, openErr := os.Open(p)
		if openErr != nil {
			return openErr
		}
		defer func() { _ = src.Close() }()
		_, copyErr := io.Copy(w, src)
		return copyErr
	})
	if walkErr != nil {
		return wrap(walkErr, "failed to archive module tree")
	}
	return nil
}

// wrap attaches context to err and chains the package sentinel so callers
// can match on ErrPackaging.
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrPackaging, err)
}
