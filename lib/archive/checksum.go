// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// checksumDomainKey separates entry checksums from path keys, which
// use the same hash function.
var checksumDomainKey = [32]byte{
	'v', 'e', 'l', 'o', 'x', 'i', 'o', '.', 'e', 'n', 't', 'r', 'y',
}

// Checksum returns the version 2 entry checksum of an uncompressed
// payload.
func Checksum(payload []byte) uint64 {
	hasher, err := blake3.NewKeyed(checksumDomainKey[:])
	if err != nil {
		panic("archive: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(payload)

	var digest [32]byte
	hasher.Sum(digest[:0])
	return binary.LittleEndian.Uint64(digest[:8])
}
