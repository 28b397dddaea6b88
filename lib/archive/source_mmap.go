// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package archive

import (
	"fmt"
	"io"
	"runtime/debug"

	"golang.org/x/sys/unix"
)

// mappedSource serves reads from a read-only MAP_SHARED mapping of
// the archive file. ReadAt is lock-free.
type mappedSource struct {
	data []byte
	size int64
}

func openMapped(path string) (DataSource, error) {
	file, err := openFile(path)
	if err != nil {
		return nil, err
	}
	// The mapping stays valid after the descriptor is closed.
	defer file.Close()

	// Zero-length mappings are rejected by the kernel.
	if file.size == 0 {
		return NewBuffered(nil), nil
	}

	data, err := unix.Mmap(int(file.file.Fd()), 0, int(file.size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("memory-mapping %s: %w", path, err)
	}
	return &mappedSource{data: data, size: file.size}, nil
}

func (s *mappedSource) ReadAt(p []byte, off int64) (readCount int, err error) {
	if off < 0 || off >= s.size {
		return 0, io.EOF
	}

	// A truncated or failing backing file turns into SIGBUS on access.
	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)
		if r := recover(); r != nil {
			err = fmt.Errorf("page fault reading mapped archive at offset %d: %v", off, r)
		}
	}()

	readCount = copy(p, s.data[off:])
	if readCount < len(p) {
		return readCount, io.EOF
	}
	return readCount, nil
}

func (s *mappedSource) Size() int64 { return s.size }

func (s *mappedSource) Close() error {
	if s.data == nil {
		return nil
	}
	err := unix.Munmap(s.data)
	s.data = nil
	if err != nil {
		return fmt.Errorf("unmapping archive: %w", err)
	}
	return nil
}
