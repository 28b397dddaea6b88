// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package vfs implements the read-only lookup façade over an optional
// disk overlay and a list of mounted archives.
//
// [Provider.Get] resolves a logical path in two stages. When the disk
// overlay is enabled, the path is sanitized against the overlay root
// and a regular file at the resulting location is returned directly.
// Otherwise the path is hashed with [pathkey.Hash] and the mounted
// archives are scanned in mount order; the first archive that indexes
// the key supplies the payload. Every failure is reported as a
// [*NotFoundError], which matches both [ErrNotFound] and
// [fs.ErrNotExist] under errors.Is and carries the underlying cause.
//
// The mount table is an immutable snapshot published through an
// atomic pointer. Lookups never take a lock; mount and unmount build a
// new table under a mutex and swap it in. Each archive is reference
// counted, so [Provider.Unmount] may run while lookups are reading
// from the archive: its data source is closed after the last of them
// finishes.
package vfs
