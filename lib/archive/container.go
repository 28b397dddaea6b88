// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"cmp"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/veloxio/veloxio/lib/compress"
	"github.com/veloxio/veloxio/lib/pathkey"
)

// Entry locates one logical file inside a container.
type Entry struct {
	// Key is the path key the entry is indexed under.
	Key pathkey.Key

	// Offset is the absolute byte offset of the stored payload.
	Offset uint64

	// Length is the number of stored bytes at Offset.
	Length uint64

	// Size is the payload length after decompression. Equal to
	// Length for uncompressed entries.
	Size uint64

	// Compression is the codec of the stored bytes. Always
	// compress.None in version 1 containers.
	Compression compress.Tag

	// Checksum is the first 8 bytes of the BLAKE3 keyed digest of the
	// original payload. Zero and unverified in version 1 containers.
	Checksum uint64
}

// Container is one loaded archive. It is immutable after [Load] and
// safe for concurrent use.
type Container struct {
	source    string
	version   uint8
	dataStart int64
	entries   map[pathkey.Key]Entry
	data      DataSource

	// refs counts the owner reference plus every in-flight read. The
	// data source is closed when it drops to zero.
	refs     atomic.Int64
	closed   atomic.Bool
	closeErr error
}

func newContainer(source string, version uint8, dataStart int64, entries map[pathkey.Key]Entry, data DataSource) *Container {
	container := &Container{
		source:    source,
		version:   version,
		dataStart: dataStart,
		entries:   entries,
		data:      data,
	}
	container.refs.Store(1)
	return container
}

// SourcePath returns the path the container was loaded from.
func (c *Container) SourcePath() string { return c.source }

// Version returns the container's format version.
func (c *Container) Version() uint8 { return c.version }

// Len returns the number of entries.
func (c *Container) Len() int { return len(c.entries) }

// Size returns the byte length of the backing source.
func (c *Container) Size() int64 { return c.data.Size() }

// DataStart returns the absolute offset of the data region.
func (c *Container) DataStart() int64 { return c.dataStart }

// Lookup returns the entry indexed under key.
func (c *Container) Lookup(key pathkey.Key) (Entry, bool) {
	entry, ok := c.entries[key]
	return entry, ok
}

// Has reports whether the container indexes key.
func (c *Container) Has(key pathkey.Key) bool {
	_, ok := c.entries[key]
	return ok
}

// Entries returns all entries ordered by offset.
func (c *Container) Entries() []Entry {
	entries := slices.Collect(maps.Values(c.entries))
	slices.SortFunc(entries, func(a, b Entry) int {
		if order := cmp.Compare(a.Offset, b.Offset); order != 0 {
			return order
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return entries
}

// Read returns the payload indexed under key. The boolean is false
// when the key is not present.
func (c *Container) Read(key pathkey.Key) ([]byte, bool, error) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	data, err := ReadEntry(c, entry)
	return data, true, err
}

// Acquire takes a reference that keeps the data source open until
// the matching [Container.Release]. It returns false once the
// container has been fully released.
func (c *Container) Acquire() bool {
	for {
		current := c.refs.Load()
		if current <= 0 {
			return false
		}
		if c.refs.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// Release drops a reference taken by [Container.Acquire].
func (c *Container) Release() {
	if c.refs.Add(-1) == 0 {
		c.closeErr = c.data.Close()
	}
}

// Close drops the owner reference. The data source is closed once no
// reads are in flight. Close is idempotent; it returns the source's
// close error only when it performed the final release.
func (c *Container) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.refs.Add(-1) == 0 {
		c.closeErr = c.data.Close()
		return c.closeErr
	}
	return nil
}
