// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"

	"github.com/veloxio/veloxio/lib/compress"
)

// ReadEntry returns the payload of entry. It reads exactly
// entry.Length bytes at entry.Offset from the container's source,
// then for version 2 containers decompresses them and verifies the
// checksum. Source failures are reported as [*IOError]; reading a
// fully released container returns [ErrClosed].
func ReadEntry(c *Container, entry Entry) ([]byte, error) {
	if !c.Acquire() {
		return nil, ErrClosed
	}
	defer c.Release()

	stored := make([]byte, entry.Length)
	if err := readFull(c.data, stored, int64(entry.Offset)); err != nil {
		return nil, &IOError{
			Op:   fmt.Sprintf("read entry %s (%d bytes at %d)", entry.Key, entry.Length, entry.Offset),
			Path: c.source,
			Err:  err,
		}
	}

	if c.version == Version1 {
		return stored, nil
	}

	payload, err := compress.Decompress(stored, entry.Compression, int(entry.Size))
	if err != nil {
		return nil, fmt.Errorf("archive %s: entry %s: %w", c.source, entry.Key, err)
	}
	if actual := Checksum(payload); actual != entry.Checksum {
		return nil, fmt.Errorf("archive %s: entry %s: checksum mismatch: expected %016x, got %016x",
			c.source, entry.Key, entry.Checksum, actual)
	}
	return payload, nil
}
