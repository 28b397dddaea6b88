// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for Veloxio
// binaries.
//
// Three package-level variables are injected at build time via
// -ldflags -X:
//
//	go build -ldflags "-X github.com/veloxio/veloxio/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When GitCommit is not injected, the VCS revision recorded by the Go
// toolchain in the binary's build info is used instead.
package version
