// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Veloxio
// providers and tools.
//
// Configuration is loaded from a single file specified by either the
// VELOXIO_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic discovery.
//
// Files are YAML. Files ending in .json or .jsonc are accepted too;
// comments and trailing commas are stripped with tidwall/jsonc, and
// the document is then decoded through the same YAML struct tags.
//
// The file may contain environment sections (development, production)
// that override base values when [Config].Environment matches.
// Production defaults are stricter: the disk overlay is disabled
// unless the production section enables it explicitly.
//
// ${HOME}, ${VELOXIO_ROOT} and ${VAR:-default} patterns are expanded
// in path fields after loading.
//
// This package depends on no other Veloxio packages.
package config
