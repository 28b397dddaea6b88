// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive implements the Veloxio archive container: an
// immutable packed file holding many logical files addressed by
// [pathkey.Key].
//
// # Format
//
// All integers are little-endian.
//
//	header (24 bytes)
//	  0  [6]byte  magic "VELOXA"
//	  6  uint8    format version (1 or 2)
//	  7  uint8    reserved, zero
//	  8  uint32   entry count
//	  12 uint32   reserved, zero
//	  16 uint64   absolute offset of the entry table
//	entry table (entry count records)
//	  version 1, 24 bytes: key, offset, length
//	  version 2, 48 bytes: key, offset, length, size,
//	                       compression tag (1 byte), 7 reserved bytes,
//	                       checksum
//	data region (end of entry table to end of file)
//
// Entry offsets are absolute within the file and must fall inside the
// data region. Version 1 entries are stored raw. Version 2 entries may
// be compressed (see package compress); length is the stored byte
// count, size the original byte count, and checksum the first 8 bytes
// of a BLAKE3 keyed hash of the original bytes.
//
// # Loading and reading
//
// [Load] opens a file with one of three [Backing] strategies
// (buffered in memory, positional file reads, or a read-only memory
// map) and validates the whole index before returning a [Container].
// Structural problems are reported as [*FormatError] values whose
// kind can be tested with errors.Is against [ErrBadMagic],
// [ErrUnsupportedVersion], [ErrDuplicateKey], [ErrTruncated] and
// [ErrCorrupt]. Duplicate keys are always a load failure: a silently
// shadowed entry would be unreachable forever.
//
// A Container is immutable once loaded and safe for concurrent use.
// Its data source is reference counted: [Container.Close] drops the
// owner reference, and the source is released only after the last
// in-flight [ReadEntry] finishes.
//
// # Building
//
// [Builder] produces archives offline. Entries are keyed by
// [pathkey.Hash] of the logical path exactly as clients will request
// it.
package archive
