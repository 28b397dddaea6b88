// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the veloxio
// binary: a tree of [Command] values with lazily built pflag flag
// sets, generated help, typo suggestions for unknown commands and
// flags, and [ExitError] for commands whose non-zero exit is an
// expected outcome rather than a failure to report.
package cli
