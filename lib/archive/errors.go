// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"fmt"
)

// Sentinel errors for each [FormatKind]. A [*FormatError] unwraps to
// the sentinel of its kind.
var (
	ErrBadMagic           = errors.New("bad magic")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrTruncated          = errors.New("truncated")
	ErrCorrupt            = errors.New("corrupt")
)

// ErrClosed is returned when reading from a container whose data
// source has already been released.
var ErrClosed = errors.New("archive container is closed")

// FormatKind classifies structural archive failures.
type FormatKind int

const (
	// BadMagic means the file does not start with the archive
	// signature.
	BadMagic FormatKind = iota + 1

	// UnsupportedVersion means the signature matched but the format
	// version is not one this package reads.
	UnsupportedVersion

	// DuplicateKey means two entries in one container share a key.
	DuplicateKey

	// Truncated means the header, entry table or an entry's byte
	// range does not fit inside the file's data region.
	Truncated

	// Corrupt means a field holds a value the format forbids
	// (non-zero reserved bytes, unknown compression tag).
	Corrupt
)

func (k FormatKind) String() string {
	return k.sentinel().Error()
}

func (k FormatKind) sentinel() error {
	switch k {
	case BadMagic:
		return ErrBadMagic
	case UnsupportedVersion:
		return ErrUnsupportedVersion
	case DuplicateKey:
		return ErrDuplicateKey
	case Truncated:
		return ErrTruncated
	case Corrupt:
		return ErrCorrupt
	default:
		return fmt.Errorf("format kind %d", int(k))
	}
}

// FormatError reports a structural problem found while loading an
// archive.
type FormatError struct {
	// Kind classifies the failure.
	Kind FormatKind

	// Path is the archive source path.
	Path string

	// Detail describes the offending field or entry.
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("archive %s: %s: %s", e.Path, e.Kind, e.Detail)
}

// Unwrap returns the sentinel error of the failure kind.
func (e *FormatError) Unwrap() error {
	return e.Kind.sentinel()
}

func formatError(kind FormatKind, path, format string, args ...any) *FormatError {
	return &FormatError{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}

// IOError reports a failure of the underlying byte source.
type IOError struct {
	// Op is the operation that failed ("open", "read").
	Op string

	// Path is the archive source path.
	Path string

	// Err is the underlying error.
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("archive %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
