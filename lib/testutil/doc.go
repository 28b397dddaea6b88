// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Veloxio packages.
//
// [WriteFile] and [WriteTree] lay out overlay directories and archive
// inputs under a test's temporary directory.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern used by concurrency tests, so a deadlock fails the test with
// a message instead of hanging until the package timeout.
//
// [UniqueID] generates monotonically increasing identifiers for
// archive and path names that must not collide across subtests.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no Veloxio-internal dependencies, so any package's
// internal tests can import it.
package testutil
