// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/veloxio/veloxio/lib/archive"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit(), BuildTime)
}

// Full returns detailed version information including the Go version
// and the archive format versions this build can read.
func Full() string {
	formats := make([]string, 0, len(archive.SupportedVersions))
	for _, v := range archive.SupportedVersions {
		formats = append(formats, fmt.Sprint(v))
	}
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s\n  Archive formats: %s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH, strings.Join(formats, ", "))
}

// Commit returns the git commit SHA, falling back to the revision
// stamped by the Go toolchain.
func Commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return GitCommit
	}
	revision, modified := "", false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return GitCommit
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified {
		revision += "-dirty"
	}
	return revision
}
