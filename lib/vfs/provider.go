// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/veloxio/veloxio/lib/archive"
	"github.com/veloxio/veloxio/lib/pathkey"
	"github.com/veloxio/veloxio/lib/sanitize"
)

// Options configures a Provider. The overlay settings are fixed for
// the provider's lifetime.
type Options struct {
	// DiskOverlay enables lookups in DiskRoot before any archive.
	DiskOverlay bool

	// DiskRoot is the overlay directory. Required when DiskOverlay is
	// set.
	DiskRoot string

	// Backing selects how mounted archives are read.
	Backing archive.Backing

	// Logger receives mount events and per-lookup debug records.
	// Nil means slog.Default().
	Logger *slog.Logger
}

// Provider resolves logical paths against the disk overlay and the
// mounted archives. All methods are safe for concurrent use.
type Provider struct {
	logger  *slog.Logger
	backing archive.Backing

	// overlay and sanitizer are nil when the disk overlay is disabled.
	overlay   *os.Root
	sanitizer *sanitize.Sanitizer

	// mu serializes mount table writers. Readers load table without it.
	mu     sync.Mutex
	table  atomic.Pointer[mountTable]
	closed bool
}

type mount struct {
	path      string
	container *archive.Container
}

// mountTable is never modified after it is published.
type mountTable struct {
	mounts []mount
}

func (t *mountTable) index(path string) int {
	return slices.IndexFunc(t.mounts, func(m mount) bool { return m.path == path })
}

// New returns a provider with no archives mounted. When the overlay is
// enabled its root directory must exist.
func New(options Options) (*Provider, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	provider := &Provider{
		logger:  logger,
		backing: options.Backing,
	}
	provider.table.Store(&mountTable{})

	if options.DiskOverlay {
		if options.DiskRoot == "" {
			return nil, fmt.Errorf("vfs: disk overlay enabled without a root directory")
		}
		root, err := os.OpenRoot(options.DiskRoot)
		if err != nil {
			return nil, fmt.Errorf("vfs: opening overlay root: %w", err)
		}
		provider.overlay = root
		provider.sanitizer = sanitize.New(options.DiskRoot)
		logger.Info("disk overlay enabled", "root", options.DiskRoot)
	}

	return provider, nil
}

// RegisterArchive loads the archive at path and appends it to the
// mount order. It returns false with a nil error when path is already
// mounted, leaving the existing mount untouched. A load failure
// mounts nothing and is returned wrapped.
//
// Mounts are keyed by path exactly as given; two spellings of the same
// file are two mounts.
func (p *Provider) RegisterArchive(path string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false, ErrClosed
	}

	current := p.table.Load()
	if current.index(path) >= 0 {
		p.logger.Debug("archive already mounted", "archive", path)
		return false, nil
	}

	container, err := archive.Load(path, p.backing)
	if err != nil {
		attrs := []any{"archive", path, "error", err}
		var formatErr *archive.FormatError
		if errors.As(err, &formatErr) {
			attrs = append(attrs, "kind", formatErr.Kind.String())
		}
		p.logger.Warn("archive mount failed", attrs...)
		return false, fmt.Errorf("mounting %s: %w", path, err)
	}

	next := &mountTable{mounts: make([]mount, 0, len(current.mounts)+1)}
	next.mounts = append(next.mounts, current.mounts...)
	next.mounts = append(next.mounts, mount{path: path, container: container})
	p.table.Store(next)

	p.logger.Info("archive mounted",
		"archive", path,
		"entries", container.Len(),
		"version", container.Version(),
		"backing", p.backing.String(),
	)
	return true, nil
}

// Unmount removes the archive mounted from path. Lookups already
// reading from it finish normally; its data source is closed after the
// last of them. It returns false when path is not mounted.
func (p *Provider) Unmount(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.table.Load()
	position := current.index(path)
	if position < 0 {
		return false
	}

	removed := current.mounts[position].container
	next := &mountTable{mounts: slices.Delete(slices.Clone(current.mounts), position, position+1)}
	p.table.Store(next)

	if err := removed.Close(); err != nil {
		p.logger.Warn("closing unmounted archive failed", "archive", path, "error", err)
	}
	p.logger.Info("archive unmounted", "archive", path)
	return true
}

// Mounts returns the mounted archive paths in mount order.
func (p *Provider) Mounts() []string {
	current := p.table.Load()
	paths := make([]string, len(current.mounts))
	for i, m := range current.mounts {
		paths[i] = m.path
	}
	return paths
}

// Get returns the payload for the logical path raw. The overlay, when
// enabled, is consulted first; then archives in mount order. Any
// failure is a [*NotFoundError].
func (p *Provider) Get(raw string) ([]byte, error) {
	var cause error

	if p.overlay != nil {
		data, found, err := p.readOverlay(raw)
		if found {
			p.logger.Debug("lookup served from overlay", "path", raw)
			return data, nil
		}
		cause = err
	}

	key := pathkey.Hash(raw)
	for _, m := range p.table.Load().mounts {
		entry, ok := m.container.Lookup(key)
		if !ok {
			continue
		}
		data, err := archive.ReadEntry(m.container, entry)
		if errors.Is(err, archive.ErrClosed) {
			// Unmounted after the snapshot was taken.
			continue
		}
		if err != nil {
			p.logger.Debug("archive read failed", "path", raw, "archive", m.path, "error", err)
			return nil, &NotFoundError{Path: raw, Cause: err}
		}
		p.logger.Debug("lookup served from archive", "path", raw, "archive", m.path, "key", key)
		return data, nil
	}

	p.logger.Debug("lookup missed", "path", raw, "key", key)
	return nil, &NotFoundError{Path: raw, Cause: cause}
}

// Has reports whether Get would find raw, without reading archive
// payloads.
func (p *Provider) Has(raw string) bool {
	if p.overlay != nil {
		if _, ok := p.statOverlay(raw); ok {
			return true
		}
	}
	key := pathkey.Hash(raw)
	for _, m := range p.table.Load().mounts {
		if m.container.Has(key) {
			return true
		}
	}
	return false
}

// Close unmounts every archive and releases the overlay root. Lookups
// after Close fail with NotFound; mounts fail with [ErrClosed].
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	current := p.table.Swap(&mountTable{})
	var errs []error
	for _, m := range current.mounts {
		if err := m.container.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", m.path, err))
		}
	}
	if p.overlay != nil {
		if err := p.overlay.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing overlay root: %w", err))
		}
	}
	return errors.Join(errs...)
}

// overlayName sanitizes raw and returns its location relative to the
// overlay root.
func (p *Provider) overlayName(raw string) (string, error) {
	location, err := p.sanitizer.Sanitize(raw)
	if err != nil {
		p.logger.Debug("overlay rejected path", "path", raw, "error", err)
		return "", err
	}
	if location.Rel == "" {
		return ".", nil
	}
	return location.Rel, nil
}

func (p *Provider) statOverlay(raw string) (os.FileInfo, bool) {
	name, err := p.overlayName(raw)
	if err != nil {
		return nil, false
	}
	info, err := p.overlay.Stat(name)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	return info, true
}

// readOverlay returns the contents of the regular file at the
// sanitized location of raw. found is false when the path is rejected
// or no regular file exists there; err then explains why, if known.
func (p *Provider) readOverlay(raw string) (data []byte, found bool, err error) {
	name, err := p.overlayName(raw)
	if err != nil {
		return nil, false, err
	}

	file, err := p.overlay.Open(name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.logger.Debug("overlay open failed", "path", raw, "error", err)
		}
		return nil, false, nil
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return nil, false, nil
	}

	data, err = io.ReadAll(file)
	if err != nil {
		return nil, false, fmt.Errorf("reading overlay file: %w", err)
	}
	return data, true, nil
}
