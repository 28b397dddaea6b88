// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotFound is matched by every lookup failure.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned when mounting on a closed provider.
	ErrClosed = errors.New("vfs: provider closed")
)

// NotFoundError reports that Get could not produce a payload for Path.
// Cause is the most relevant internal failure (a sanitizer rejection or
// an archive read error), or nil when no source knew the path.
type NotFoundError struct {
	Path  string
	Cause error
}

func (e *NotFoundError) Error() string {
	if e.Cause != nil {
		return "vfs: " + e.Path + ": not found: " + e.Cause.Error()
	}
	return "vfs: " + e.Path + ": not found"
}

func (e *NotFoundError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrNotFound or fs.ErrNotExist.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound || target == fs.ErrNotExist
}
