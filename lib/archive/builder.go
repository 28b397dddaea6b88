// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"
	"math"

	"github.com/veloxio/veloxio/lib/compress"
	"github.com/veloxio/veloxio/lib/pathkey"
)

// Builder accumulates payloads and writes them as one archive. The
// entry table precedes the data region, so payloads are buffered in
// memory until [Builder.Flush].
//
//	builder, _ := archive.NewBuilder(archive.Version2)
//	builder.Add("/index.html", html)
//	builder.Add("/css/site.css", css)
//	written, err := builder.Flush(file)
type Builder struct {
	version uint8
	entries []Entry
	data    [][]byte
	paths   map[pathkey.Key]string
}

// NewBuilder returns a builder for the given format version.
func NewBuilder(version uint8) (*Builder, error) {
	if recordSize(version) == 0 {
		return nil, fmt.Errorf("cannot build archive format version %d", version)
	}
	return &Builder{
		version: version,
		paths:   make(map[pathkey.Key]string),
	}, nil
}

// Version returns the format version being built.
func (b *Builder) Version() uint8 { return b.version }

// Len returns the number of entries added so far.
func (b *Builder) Len() int { return len(b.entries) }

// Add stores data under the key of the logical path. Version 2
// builders pick a codec automatically; version 1 stores it raw.
func (b *Builder) Add(path string, data []byte) error {
	if b.version == Version1 {
		return b.add(path, pathkey.Hash(path), data, compress.None)
	}
	stored, tag, err := compress.Auto(data)
	if err != nil {
		return fmt.Errorf("compressing %s: %w", path, err)
	}
	return b.addStored(path, pathkey.Hash(path), data, stored, tag)
}

// AddWith stores data under the key of the logical path using the
// given codec. The payload is stored raw when the codec does not
// shrink it. Version 1 builders accept only compress.None.
func (b *Builder) AddWith(path string, data []byte, tag compress.Tag) error {
	return b.add(path, pathkey.Hash(path), data, tag)
}

// AddKey stores raw data under an explicit key. The label is only
// used in error messages.
func (b *Builder) AddKey(label string, key pathkey.Key, data []byte) error {
	return b.add(label, key, data, compress.None)
}

func (b *Builder) add(label string, key pathkey.Key, data []byte, tag compress.Tag) error {
	if b.version == Version1 && tag != compress.None {
		return fmt.Errorf("adding %s: format version 1 cannot store %s compressed entries", label, tag)
	}
	stored, used, err := compress.WithFallback(data, tag)
	if err != nil {
		return fmt.Errorf("compressing %s: %w", label, err)
	}
	return b.addStored(label, key, data, stored, used)
}

func (b *Builder) addStored(label string, key pathkey.Key, data, stored []byte, tag compress.Tag) error {
	if previous, exists := b.paths[key]; exists {
		return fmt.Errorf("adding %s: %w: key %s already used by %s", label, ErrDuplicateKey, key, previous)
	}
	b.paths[key] = label

	entry := Entry{
		Key:         key,
		Length:      uint64(len(stored)),
		Size:        uint64(len(data)),
		Compression: tag,
	}
	if b.version == Version2 {
		entry.Checksum = Checksum(data)
	}
	b.entries = append(b.entries, entry)
	b.data = append(b.data, stored)
	return nil
}

// Flush writes the archive to w and returns the number of bytes
// written. The builder is reset afterwards. An empty builder writes a
// valid archive with no entries.
func (b *Builder) Flush(w io.Writer) (int64, error) {
	if uint64(len(b.entries)) > math.MaxUint32 {
		return 0, fmt.Errorf("archive has %d entries, format allows at most %d", len(b.entries), uint32(math.MaxUint32))
	}

	stride := recordSize(b.version)
	tableOffset := uint64(HeaderSize)
	offset := tableOffset + uint64(len(b.entries)*stride)

	table := make([]byte, 0, len(b.entries)*stride)
	for i := range b.entries {
		b.entries[i].Offset = offset
		offset += b.entries[i].Length
		table = encodeRecord(table, b.version, b.entries[i])
	}

	headerBytes := encodeHeader(header{
		version:     b.version,
		entryCount:  uint32(len(b.entries)),
		indexOffset: tableOffset,
	})

	var written int64
	write := func(what string, p []byte) error {
		n, err := w.Write(p)
		written += int64(n)
		if err != nil {
			return fmt.Errorf("writing %s: %w", what, err)
		}
		return nil
	}

	if err := write("archive header", headerBytes[:]); err != nil {
		return written, err
	}
	if err := write("entry table", table); err != nil {
		return written, err
	}
	for i, data := range b.data {
		if err := write(fmt.Sprintf("entry %d data", i), data); err != nil {
			return written, err
		}
	}

	b.entries = b.entries[:0]
	b.data = b.data[:0]
	clear(b.paths)
	return written, nil
}
