// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/veloxio/veloxio/lib/archive"
	"github.com/veloxio/veloxio/lib/config"
	"github.com/veloxio/veloxio/lib/testutil"
)

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	base := buildArchive(t, dir, archive.Version2, map[string]string{"/a.txt": "base", "/b.txt": "b"})
	patch := buildArchive(t, dir, archive.Version1, map[string]string{"/a.txt": "patch"})
	overlay := testutil.WriteTree(t, map[string]string{"b.txt": "disk"})

	cfg := config.Default()
	cfg.Archives = []string{patch, base}
	cfg.Overlay.Enabled = true
	cfg.Overlay.Root = overlay
	cfg.Backing = "mapped"

	provider, err := NewFromConfig(cfg, quietLogger())
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	defer provider.Close()

	if mounts := provider.Mounts(); len(mounts) != 2 || mounts[0] != patch || mounts[1] != base {
		t.Errorf("Mounts() = %v, want configured order", mounts)
	}
	for path, want := range map[string]string{"/a.txt": "patch", "/b.txt": "disk"} {
		data, err := provider.Get(path)
		if err != nil || string(data) != want {
			t.Errorf("Get(%q) = %q, %v; want %q", path, data, err, want)
		}
	}
}

func TestNewFromConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	archivePath := buildArchive(t, dir, archive.Version1, map[string]string{"/a.txt": "hello"})
	configPath := testutil.WriteFile(t, dir, "veloxio.yaml", []byte(
		"archives:\n  - "+filepath.Base(archivePath)+"\nbacking: file\n"))

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	provider, err := NewFromConfig(cfg, quietLogger())
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	defer provider.Close()

	if data, err := provider.Get("/a.txt"); err != nil || string(data) != "hello" {
		t.Errorf("Get(/a.txt) = %q, %v", data, err)
	}
}

func TestNewFromConfigErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := testutil.WriteFile(t, dir, "garbage.vxa", []byte("not an archive at all, clearly"))

	invalid := config.Default()
	invalid.Backing = "network"
	if _, err := NewFromConfig(invalid, quietLogger()); err == nil {
		t.Error("NewFromConfig accepted an invalid backing")
	}

	broken := config.Default()
	broken.Archives = []string{garbage}
	_, err := NewFromConfig(broken, quietLogger())
	if !errors.Is(err, archive.ErrBadMagic) {
		t.Errorf("NewFromConfig error = %v, want ErrBadMagic", err)
	}
}
