// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"errors"
	"fmt"
)

// Sentinel errors for repository operations. All errors returned by this
// package can be checked with errors.Is().

// ErrNoRepository is returned when the project root does not contain a
// usable git repository.
var ErrNoRepository = errors.New("no git repository found")

// ErrVersionUnresolved is returned when no version token can be derived from
// the repository state, even after all fallbacks. It is always raised before
// any filesystem mutation has happened.
var ErrVersionUnresolved = errors.New("version could not be resolved")

// ErrExport is returned when a resolved version cannot be materialized into
// an export directory (unknown revision, unreadable objects, write failure).
var ErrExport = errors.New("source tree export failed")

// WrapError wraps an error with additional context while preserving
// errors.Is() checks against the sentinels above.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf is the formatted variant of WrapError.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
