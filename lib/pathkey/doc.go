// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package pathkey maps logical paths to the 64-bit keys used to index
// archive containers.
//
// A key is the first 8 bytes (little-endian) of a BLAKE3 keyed hash
// of the raw, undecoded logical path. The BLAKE3 key is a fixed
// domain constant, so the same path hashes to the same key in every
// process. Offline archive builders and runtime lookups must agree
// bit-for-bit; changing [Hash] invalidates every archive ever built.
//
// Keys are rendered as 16 lowercase hex digits by [Key.String] and
// parsed back by [Parse].
//
// This package has no Veloxio-internal dependencies.
package pathkey
