// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/binary"

	"github.com/veloxio/veloxio/lib/compress"
	"github.com/veloxio/veloxio/lib/pathkey"
)

// Format versions.
const (
	// Version1 stores raw payloads with 24-byte entry records.
	Version1 uint8 = 1

	// Version2 adds per-entry compression and checksums with 48-byte
	// entry records.
	Version2 uint8 = 2
)

// SupportedVersions lists the format versions Load accepts.
var SupportedVersions = []uint8{Version1, Version2}

const (
	// HeaderSize is the fixed header length.
	HeaderSize = 24

	recordSizeV1 = 24
	recordSizeV2 = 48
)

// magic is the 6-byte file signature preceding the version byte.
var magic = [6]byte{'V', 'E', 'L', 'O', 'X', 'A'}

// header is the decoded fixed header.
type header struct {
	version     uint8
	entryCount  uint32
	indexOffset uint64
}

// recordSize returns the entry record length for a format version,
// or 0 for unknown versions.
func recordSize(version uint8) int {
	switch version {
	case Version1:
		return recordSizeV1
	case Version2:
		return recordSizeV2
	default:
		return 0
	}
}

func encodeHeader(h header) [HeaderSize]byte {
	var buffer [HeaderSize]byte
	copy(buffer[0:6], magic[:])
	buffer[6] = h.version
	binary.LittleEndian.PutUint32(buffer[8:12], h.entryCount)
	binary.LittleEndian.PutUint64(buffer[16:24], h.indexOffset)
	return buffer
}

// encodeRecord appends the on-disk form of entry to buffer.
func encodeRecord(buffer []byte, version uint8, entry Entry) []byte {
	buffer = binary.LittleEndian.AppendUint64(buffer, uint64(entry.Key))
	buffer = binary.LittleEndian.AppendUint64(buffer, entry.Offset)
	buffer = binary.LittleEndian.AppendUint64(buffer, entry.Length)
	if version == Version1 {
		return buffer
	}
	buffer = binary.LittleEndian.AppendUint64(buffer, entry.Size)
	var tag [8]byte
	tag[0] = byte(entry.Compression)
	buffer = append(buffer, tag[:]...)
	return binary.LittleEndian.AppendUint64(buffer, entry.Checksum)
}

// decodeRecord decodes one record. For version 2 it also returns the
// reserved bytes so the caller can reject non-zero padding.
func decodeRecord(record []byte, version uint8) (Entry, [7]byte) {
	entry := Entry{
		Key:    pathkey.Key(binary.LittleEndian.Uint64(record[0:8])),
		Offset: binary.LittleEndian.Uint64(record[8:16]),
		Length: binary.LittleEndian.Uint64(record[16:24]),
	}

	var reserved [7]byte
	if version == Version1 {
		entry.Size = entry.Length
		entry.Compression = compress.None
		return entry, reserved
	}

	entry.Size = binary.LittleEndian.Uint64(record[24:32])
	entry.Compression = compress.Tag(record[32])
	copy(reserved[:], record[33:40])
	entry.Checksum = binary.LittleEndian.Uint64(record[40:48])
	return entry, reserved
}
