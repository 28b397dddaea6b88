// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Command veloxio packs directories into archives, inspects archives,
// and resolves logical paths through a provider from the command line.
//
//	veloxio pack --output assets.vxa ./assets
//	veloxio inspect --format json assets.vxa
//	veloxio get --archive assets.vxa /index.html
//	veloxio hash /index.html
//	veloxio sanitize --root ./assets /index.html /../etc/passwd
package main
