// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"io"
	"os"
	"path"
	"regexp"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// describeToken matches describe-style version tokens (tag-N-gshort),
// capturing the embedded commit hash.
var describeToken = regexp.MustCompile(`^.+-\d+-g([0-9a-f]{7,40})$`)

// Export materializes the tracked files of the tree at version into dest.
// Only committed content is written: uncommitted and ignored files never
// reach the export. The dev token exports the HEAD tree, since dev builds
// describe the state of the last commit plus local modifications that are
// by definition not packagable. Describe-style tokens export the commit
// named by their embedded hash.
//
// dest is expected to be empty; existing files are overwritten, nothing is
// removed. Context cancellation is honored between files.
func (r *Repo) Export(ctx context.Context, version string, dest billy.Filesystem) error {
	revision := version
	if revision == VersionDev {
		revision = "HEAD"
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		// Describe-style tokens are not revisions git can resolve; the
		// commit hash embedded in the suffix is.
		if m := describeToken.FindStringSubmatch(revision); m != nil {
			hash, err = r.repo.ResolveRevision(plumbing.Revision(m[1]))
		}
		if err != nil {
			return WrapErrorf(ErrExport, "unknown revision %q", revision)
		}
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return WrapErrorf(ErrExport, "revision %q is not a commit", revision)
	}
	tree, err := commit.Tree()
	if err != nil {
		return WrapError(ErrExport, "failed to read commit tree")
	}

	files := tree.Files()
	defer files.Close()

	err = files.ForEach(func(f *object.File) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		return writeExportedFile(f, dest)
	})
	if err != nil {
		return WrapError(err, "export failed")
	}
	return nil
}

// writeExportedFile writes one tracked file into dest, preserving the
// executable bit recorded in the tree.
func writeExportedFile(f *object.File, dest billy.Filesystem) error {
	if dir := path.Dir(f.Name); dir != "." {
		if err := dest.MkdirAll(dir, 0o755); err != nil {
			return WrapErrorf(err, "failed to create directory %q", dir)
		}
	}

	mode, err := f.Mode.ToOSFileMode()
	if err != nil {
		mode = 0o644
	}

	reader, err := f.Reader()
	if err != nil {
		return WrapErrorf(err, "failed to read blob for %q", f.Name)
	}
	defer func() { _ = reader.Close() }()

	out, err := dest.OpenFile(f.Name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return WrapErrorf(err, "failed to create %q", f.Name)
	}
	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()
		return WrapErrorf(err, "failed to write %q", f.Name)
	}
	if err := out.Close(); err != nil {
		return WrapErrorf(err, "failed to close %q", f.Name)
	}
	return nil
}
