// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/veloxio/veloxio/lib/compress"
	"github.com/veloxio/veloxio/lib/pathkey"
)

// Load opens the archive at path with the given backing strategy and
// validates its header and entry table. On any failure the data
// source is closed and no container is returned. Structural problems
// are [*FormatError] values; failures of the file itself are
// [*IOError] values.
func Load(path string, backing Backing) (*Container, error) {
	source, err := Open(path, backing)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}

	container, err := Parse(path, source)
	if err != nil {
		source.Close()
		return nil, err
	}
	return container, nil
}

// Parse validates an already open source and returns a container
// that takes ownership of it. The name is used in errors and as the
// container's source path. Parse does not close the source on error.
func Parse(name string, source DataSource) (*Container, error) {
	size := source.Size()

	var headerBytes [HeaderSize]byte
	if err := readFull(source, headerBytes[:], 0); err != nil {
		if size < HeaderSize {
			if !hasMagicPrefix(headerBytes[:min(size, int64(len(magic)))]) {
				return nil, formatError(BadMagic, name, "file is %d bytes and does not start with the archive signature", size)
			}
			return nil, formatError(Truncated, name, "file is %d bytes, header needs %d", size, HeaderSize)
		}
		return nil, &IOError{Op: "read header", Path: name, Err: err}
	}

	h, err := parseHeader(name, headerBytes)
	if err != nil {
		return nil, err
	}

	stride := uint64(recordSize(h.version))
	tableSize := uint64(h.entryCount) * stride
	if h.indexOffset < HeaderSize {
		return nil, formatError(Corrupt, name, "entry table offset %d overlaps the header", h.indexOffset)
	}
	if h.indexOffset > uint64(size) || tableSize > uint64(size)-h.indexOffset {
		return nil, formatError(Truncated, name, "entry table of %d entries at offset %d exceeds file size %d",
			h.entryCount, h.indexOffset, size)
	}
	dataStart := h.indexOffset + tableSize

	table := make([]byte, tableSize)
	if err := readFull(source, table, int64(h.indexOffset)); err != nil {
		return nil, &IOError{Op: "read entry table", Path: name, Err: err}
	}

	entries := make(map[pathkey.Key]Entry, h.entryCount)
	for i := uint64(0); i < uint64(h.entryCount); i++ {
		entry, reserved := decodeRecord(table[i*stride:(i+1)*stride], h.version)
		if err := validateEntry(name, i, entry, reserved, dataStart, uint64(size)); err != nil {
			return nil, err
		}
		if _, exists := entries[entry.Key]; exists {
			return nil, formatError(DuplicateKey, name, "entry %d reuses key %s", i, entry.Key)
		}
		entries[entry.Key] = entry
	}

	return newContainer(name, h.version, int64(dataStart), entries, source), nil
}

func parseHeader(name string, buffer [HeaderSize]byte) (header, error) {
	if !hasMagicPrefix(buffer[:len(magic)]) {
		return header{}, formatError(BadMagic, name, "signature %q is not %q", buffer[:len(magic)], magic[:])
	}

	version := buffer[6]
	if recordSize(version) == 0 {
		return header{}, formatError(UnsupportedVersion, name,
			"format version %d is not supported (this code reads versions %d and %d)", version, Version1, Version2)
	}

	if buffer[7] != 0 || binary.LittleEndian.Uint32(buffer[12:16]) != 0 {
		return header{}, formatError(Corrupt, name, "non-zero reserved header bytes")
	}

	return header{
		version:     version,
		entryCount:  binary.LittleEndian.Uint32(buffer[8:12]),
		indexOffset: binary.LittleEndian.Uint64(buffer[16:24]),
	}, nil
}

func validateEntry(name string, index uint64, entry Entry, reserved [7]byte, dataStart, size uint64) error {
	if entry.Offset < dataStart {
		return formatError(Truncated, name, "entry %d (key %s) starts at %d, before the data region at %d",
			index, entry.Key, entry.Offset, dataStart)
	}
	if entry.Length > math.MaxUint64-entry.Offset || entry.Offset+entry.Length > size {
		return formatError(Truncated, name, "entry %d (key %s) range [%d, +%d) exceeds file size %d",
			index, entry.Key, entry.Offset, entry.Length, size)
	}
	if reserved != [7]byte{} {
		return formatError(Corrupt, name, "entry %d (key %s) has non-zero reserved bytes %x", index, entry.Key, reserved)
	}
	if entry.Compression > compress.MaxTag {
		return formatError(Corrupt, name, "entry %d (key %s) has unsupported compression tag %d",
			index, entry.Key, entry.Compression)
	}
	if entry.Compression == compress.None && entry.Size != entry.Length {
		return formatError(Corrupt, name, "entry %d (key %s) is uncompressed but size %d differs from length %d",
			index, entry.Key, entry.Size, entry.Length)
	}
	if bound := compress.Bound(entry.Compression, entry.Length); entry.Size > bound {
		return formatError(Corrupt, name, "entry %d (key %s) declares size %d, but %d %s bytes decode to at most %d",
			index, entry.Key, entry.Size, entry.Length, entry.Compression, bound)
	}
	return nil
}

func hasMagicPrefix(prefix []byte) bool {
	return string(prefix) == string(magic[:len(prefix)])
}

// readFull reads exactly len(buffer) bytes at offset.
func readFull(source io.ReaderAt, buffer []byte, offset int64) error {
	read, err := source.ReadAt(buffer, offset)
	if read == len(buffer) {
		return nil
	}
	if err == nil || err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
