// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package sanitize validates untrusted logical paths before they are
// allowed to touch the disk overlay.
//
// [Sanitizer.Sanitize] percent-decodes the path, requires a leading
// "/", translates separators to the host form and then applies two
// gates: a coarse substring denylist (dot segments in either
// orientation, a leading or trailing dot, and the markup characters
// < > & ") followed by a component-wise check that the joined path
// cannot leave the configured root. Anything that fails is reported
// as an [*Error] wrapping [ErrDecode] or [ErrRejected].
//
// The lexical check here is not the last line of defense: the vfs
// package opens overlay files through an [os.Root], which also
// refuses symlinks that escape the root.
package sanitize
