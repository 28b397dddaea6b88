// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress implements the per-entry payload codecs used by
// version 2 archive containers.
//
// Three codecs are defined by [Tag]: none, LZ4 block compression and
// zstd. Tags are stored in the archive entry table, so their numeric
// values are part of the file format. [Compress] reports
// [ErrIncompressible] when a codec does not shrink the input; the
// builder then stores the payload raw. [Select] trial-compresses a
// payload and picks a codec automatically. [Bound] limits the size a
// stored payload may declare, so decoding never allocates more than
// the codec could produce.
package compress
