// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// WriteFile writes data to the slash-separated relative path under
// dir, creating parent directories, and returns the absolute path.
func WriteFile(t testing.TB, dir, relative string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(relative))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent of %s: %v", relative, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", relative, err)
	}
	return path
}

// WriteTree writes each file in files (relative path to contents)
// under a new temporary directory and returns the directory. Files are
// written in sorted order.
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		WriteFile(t, dir, name, []byte(files[name]))
	}
	return dir
}
