// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package sanitize

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrDecode is returned when the path is not valid percent-encoded
	// UTF-8.
	ErrDecode = errors.New("malformed path encoding")

	// ErrRejected is returned when the decoded path fails a
	// validation gate.
	ErrRejected = errors.New("path rejected")
)

// Error records a sanitization failure for one raw path.
type Error struct {
	// Path is the raw path as supplied by the caller.
	Path string

	// Reason is a short description of the gate that failed.
	Reason string

	// Err is ErrDecode or ErrRejected.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sanitize %q: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Path is a logical path that passed sanitization.
type Path struct {
	// Root is the configured overlay root.
	Root string

	// Rel is the decoded path relative to Root, using the host
	// separator and without a leading separator. It is empty for the
	// root itself.
	Rel string
}

// String returns the on-disk location of the path.
func (p Path) String() string {
	return filepath.Join(p.Root, p.Rel)
}

// markupCharacters may never appear in a path served from disk.
const markupCharacters = `<>&"`

// Sanitizer validates logical paths against a fixed overlay root.
// The zero value sanitizes relative to the current directory.
type Sanitizer struct {
	root string
}

// New returns a Sanitizer for the given overlay root.
func New(root string) *Sanitizer {
	return &Sanitizer{root: filepath.Clean(root)}
}

// Root returns the overlay root.
func (s *Sanitizer) Root() string {
	return s.root
}

// Sanitize decodes and validates raw. It performs no I/O.
func (s *Sanitizer) Sanitize(raw string) (Path, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return Path{}, &Error{Path: raw, Reason: err.Error(), Err: ErrDecode}
	}
	if !utf8.ValidString(decoded) {
		return Path{}, &Error{Path: raw, Reason: "invalid UTF-8", Err: ErrDecode}
	}

	if decoded == "" || decoded[0] != '/' {
		return Path{}, reject(raw, "must begin with /")
	}

	native := translateSeparators(decoded)
	if reason := denied(native); reason != "" {
		return Path{}, reject(raw, reason)
	}

	rel := strings.TrimLeft(native, string(filepath.Separator))
	for component := range strings.SplitSeq(rel, string(filepath.Separator)) {
		if component == "." || component == ".." {
			return Path{}, reject(raw, "dot segment")
		}
	}

	root := s.root
	if root == "" {
		root = "."
	}
	joined := filepath.Join(root, rel)
	within, err := filepath.Rel(root, joined)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return Path{}, reject(raw, "escapes root")
	}

	if rel != "" {
		rel = filepath.Clean(rel)
	}
	return Path{Root: root, Rel: rel}, nil
}

// translateSeparators converts both slash forms to the host separator.
func translateSeparators(path string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return filepath.Separator
		}
		return r
	}, path)
}

// denied applies the substring denylist and returns the reason for
// rejection, or "" if the path passes.
func denied(path string) string {
	separator := string(filepath.Separator)
	switch {
	case strings.Contains(path, separator+"."):
		return "dot after separator"
	case strings.Contains(path, "."+separator):
		return "dot before separator"
	case path[0] == '.' || path[len(path)-1] == '.':
		return "leading or trailing dot"
	case strings.ContainsAny(path, markupCharacters):
		return "markup character"
	case strings.IndexByte(path, 0) >= 0:
		return "NUL byte"
	}
	return ""
}

func reject(raw, reason string) *Error {
	return &Error{Path: raw, Reason: reason, Err: ErrRejected}
}
