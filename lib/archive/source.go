// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// DataSource is the random-access byte source behind a container.
// Each container owns its source exclusively and closes it when the
// last reference is released.
type DataSource interface {
	io.ReaderAt

	// Size returns the total byte length of the source.
	Size() int64

	// Close releases the source. No ReadAt calls are made after it.
	Close() error
}

// Backing selects how [Load] accesses an archive file.
type Backing int

const (
	// BackingBuffered reads the whole file into memory at load time.
	BackingBuffered Backing = iota

	// BackingFile keeps the file open and issues a positional read
	// per entry.
	BackingFile

	// BackingMapped maps the file read-only into memory. On platforms
	// without mmap support it behaves like BackingFile.
	BackingMapped
)

// String returns the configuration name of a backing strategy.
func (b Backing) String() string {
	switch b {
	case BackingBuffered:
		return "buffered"
	case BackingFile:
		return "file"
	case BackingMapped:
		return "mapped"
	default:
		return fmt.Sprintf("unknown(%d)", int(b))
	}
}

// ParseBacking parses a backing strategy name. The empty string
// selects BackingBuffered.
func ParseBacking(name string) (Backing, error) {
	switch name {
	case "", "buffered":
		return BackingBuffered, nil
	case "file":
		return BackingFile, nil
	case "mapped":
		return BackingMapped, nil
	default:
		return 0, fmt.Errorf("unknown archive backing %q (want buffered, file or mapped)", name)
	}
}

// Open opens path read-only with the given strategy.
func Open(path string, backing Backing) (DataSource, error) {
	switch backing {
	case BackingBuffered:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return NewBuffered(data), nil
	case BackingFile:
		source, err := openFile(path)
		if err != nil {
			return nil, err
		}
		return source, nil
	case BackingMapped:
		return openMapped(path)
	default:
		return nil, fmt.Errorf("unknown archive backing %d", int(backing))
	}
}

// NewBuffered returns a DataSource over an in-memory archive image.
// The slice must not be modified afterwards.
func NewBuffered(data []byte) DataSource {
	return bufferedSource{bytes.NewReader(data)}
}

type bufferedSource struct {
	*bytes.Reader
}

func (bufferedSource) Close() error { return nil }

type fileSource struct {
	file *os.File
	size int64
}

func openFile(path string) (*fileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	return &fileSource{file: file, size: info.Size()}, nil
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

func (s *fileSource) Size() int64 { return s.size }

func (s *fileSource) Close() error { return s.file.Close() }
