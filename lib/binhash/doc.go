// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes whole-file BLAKE3 digests of archives.
//
// Archive entries carry their own checksums; the file digest
// identifies an archive as a whole, so two deployments can confirm
// they mount the same bytes. [HashFile] streams the file with constant
// memory, [FormatDigest] and [ParseDigest] convert to and from the hex
// form printed by "veloxio inspect".
package binhash
