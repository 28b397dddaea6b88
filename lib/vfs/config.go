// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"fmt"
	"log/slog"

	"github.com/veloxio/veloxio/lib/archive"
	"github.com/veloxio/veloxio/lib/config"
)

// NewFromConfig validates cfg, builds a provider from it and mounts
// every configured archive in order. A configured archive that fails
// to load is an error: the partially built provider is closed.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	backing, err := archive.ParseBacking(cfg.Backing)
	if err != nil {
		return nil, err
	}

	provider, err := New(Options{
		DiskOverlay: cfg.Overlay.Enabled,
		DiskRoot:    cfg.Overlay.Root,
		Backing:     backing,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	for _, path := range cfg.Archives {
		if _, err := provider.RegisterArchive(path); err != nil {
			provider.Close()
			return nil, err
		}
	}
	return provider, nil
}
