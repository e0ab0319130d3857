// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// ParseVersion turns a version selector into a version token:
//
//   - VersionCurrent: tag at HEAD, or "<tag>-<n>-g<short>" from the nearest
//     ancestor tag, or "" when the repository has no reachable tag
//   - VersionDev: the literal dev token
//   - "": tag exactly at HEAD, or ""
//   - anything else: returned unchanged (explicit version)
//
// An empty result means the selector produced no usable token; callers decide
// whether a fallback applies. Resolve implements the full fallback policy.
func (r *Repo) ParseVersion(selector string) (string, error) {
	switch selector {
	case VersionDev:
		return VersionDev, nil
	case VersionCurrent:
		return r.describeHead()
	case "":
		return r.tagAtHead()
	default:
		return selector, nil
	}
}

// Resolve derives the build version from an optional explicit selector.
//
// Without a selector, the tag at HEAD wins. An untagged HEAD resolves to the
// dev token only when the working tree has uncommitted changes; a clean tree
// re-resolves through the most-recent-commit rule so that unmodified trees
// are not tagged as dev builds. ErrVersionUnresolved is returned when no
// token can be produced at all.
func (r *Repo) Resolve(explicit string) (string, error) {
	if explicit != "" {
		version, err := r.ParseVersion(explicit)
		if err != nil {
			return "", err
		}
		if version == "" {
			return "", WrapErrorf(ErrVersionUnresolved, "selector %q", explicit)
		}
		return version, nil
	}

	version, err := r.tagAtHead()
	if err != nil {
		return "", err
	}
	if version == "" {
		clean, cleanErr := r.IsClean()
		if cleanErr != nil {
			return "", cleanErr
		}
		if !clean {
			return VersionDev, nil
		}
		version, err = r.describeHead()
		if err != nil {
			return "", err
		}
	}
	if version == "" {
		return "", WrapError(ErrVersionUnresolved, "no tag reachable from HEAD")
	}
	return version, nil
}

// tagsByCommit maps peeled commit hashes to tag names. Annotated tags are
// resolved to their target commit; lightweight tags already point at one.
func (r *Repo) tagsByCommit() (map[plumbing.Hash]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, WrapError(err, "failed to list tags")
	}
	defer iter.Close()

	tags := make(map[plumbing.Hash]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tagObj, tagErr := r.repo.TagObject(hash); tagErr == nil {
			hash = tagObj.Target
		} else if !errors.Is(tagErr, plumbing.ErrObjectNotFound) {
			return tagErr
		}
		tags[hash] = ref.Name().Short()
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to resolve tags")
	}
	return tags, nil
}

// tagAtHead returns the tag pointing exactly at HEAD, or "".
func (r *Repo) tagAtHead() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", WrapError(err, "failed to resolve HEAD")
	}
	tags, err := r.tagsByCommit()
	if err != nil {
		return "", err
	}
	return tags[head.Hash()], nil
}

// describeHead renders a git-describe style token for HEAD: the exact tag
// when HEAD is tagged, otherwise "<tag>-<n>-g<short>" for the nearest
// ancestor tag at distance n. Returns "" when no tag is reachable.
func (r *Repo) describeHead() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", WrapError(err, "failed to resolve HEAD")
	}
	tags, err := r.tagsByCommit()
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return "", nil
	}

	// Breadth-first walk over ancestors; depth approximates the commit
	// distance that git describe reports.
	type step struct {
		hash  plumbing.Hash
		depth int
	}
	queue := []step{{hash: head.Hash()}}
	seen := map[plumbing.Hash]bool{head.Hash(): true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if tag, ok := tags[cur.hash]; ok {
			if cur.depth == 0 {
				return tag, nil
			}
			// git describe embeds the described commit's hash, not the
			// tagged ancestor's.
			short := head.Hash().String()[:7]
			return fmt.Sprintf("%s-%d-g%s", tag, cur.depth, short), nil
		}

		commit, commitErr := r.repo.CommitObject(cur.hash)
		if commitErr != nil {
			return "", WrapError(commitErr, "failed to read commit")
		}
		for _, parent := range commit.ParentHashes {
			if !seen[parent] {
				seen[parent] = true
				queue = append(queue, step{hash: parent, depth: cur.depth + 1})
			}
		}
	}
	return "", nil
}
