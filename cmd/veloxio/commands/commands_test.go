// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veloxio/veloxio/cmd/veloxio/cli"
	"github.com/veloxio/veloxio/lib/codec"
	"github.com/veloxio/veloxio/lib/pathkey"
	"github.com/veloxio/veloxio/lib/testutil"
)

// execute runs the command tree with args and returns stdout, stderr
// and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Root(Streams{Stdout: &stdout, Stderr: &stderr}).Execute(args)
	return stdout.String(), stderr.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := execute(t, args...)
	if err != nil {
		t.Fatalf("veloxio %s failed: %v\nstderr: %s", strings.Join(args, " "), err, stderr)
	}
	return stdout
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *cli.ExitError", err)
	}
	if exitErr.Code != code {
		t.Errorf("exit code = %d, want %d", exitErr.Code, code)
	}
}

var sampleTree = map[string]string{
	"a.txt":           "hello",
	"img/logo.svg":    "<svg></svg>",
	"site/index.html": strings.Repeat("<p>veloxio</p>\n", 200),
}

func packSample(t *testing.T, extra ...string) string {
	t.Helper()
	dir := testutil.WriteTree(t, sampleTree)
	output := filepath.Join(t.TempDir(), "sample.vxa")
	args := append([]string{"pack", "--output", output}, extra...)
	mustExecute(t, append(args, dir)...)
	return output
}

func TestPackAndGet(t *testing.T) {
	t.Setenv("VELOXIO_CONFIG", "")

	for _, flags := range [][]string{
		nil,
		{"--version", "1"},
		{"--compression", "zstd"},
		{"--compression", "lz4"},
		{"--version", "1", "--compression", "none"},
	} {
		t.Run(strings.Join(flags, " "), func(t *testing.T) {
			archivePath := packSample(t, flags...)

			for name, want := range sampleTree {
				got := mustExecute(t, "get", "--archive", archivePath, "/"+name)
				if got != want {
					t.Errorf("get /%s = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestPackReportsSummary(t *testing.T) {
	dir := testutil.WriteTree(t, sampleTree)
	output := filepath.Join(t.TempDir(), "sample.vxa")

	stdout := mustExecute(t, "pack", "-o", output, dir)
	if !strings.HasPrefix(stdout, "packed 3 files") {
		t.Errorf("pack output = %q, want file count", stdout)
	}
}

func TestPackErrors(t *testing.T) {
	dir := testutil.WriteTree(t, sampleTree)
	output := filepath.Join(t.TempDir(), "sample.vxa")

	tests := []struct {
		name string
		args []string
	}{
		{"missing output", []string{"pack", dir}},
		{"missing directory", []string{"pack", "-o", output}},
		{"unknown version", []string{"pack", "-o", output, "--version", "3", dir}},
		{"unknown compression", []string{"pack", "-o", output, "--compression", "brotli", dir}},
		{"compression in version 1", []string{"pack", "-o", output, "--version", "1", "--compression", "lz4", dir}},
		{"nonexistent directory", []string{"pack", "-o", output, filepath.Join(dir, "absent")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Errorf("veloxio %s succeeded, want error", strings.Join(tt.args, " "))
			}
		})
	}
}

func TestGetNotFound(t *testing.T) {
	t.Setenv("VELOXIO_CONFIG", "")
	archivePath := packSample(t)

	stdout, stderr, err := execute(t, "get", "-a", archivePath, "/missing.txt")
	requireExitCode(t, err, 1)
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, "/missing.txt: not found") {
		t.Errorf("stderr = %q, want not found message", stderr)
	}
}

func TestGetOverlayWins(t *testing.T) {
	t.Setenv("VELOXIO_CONFIG", "")
	archivePath := packSample(t)
	overlay := testutil.WriteTree(t, map[string]string{"a.txt": "from disk"})

	got := mustExecute(t, "get", "--overlay-root", overlay, "--archive", archivePath, "/a.txt")
	if got != "from disk" {
		t.Errorf("get /a.txt = %q, want overlay contents", got)
	}

	// Traversal out of the overlay is never served from disk.
	_, _, err := execute(t, "get", "--overlay-root", overlay, "/../a.txt")
	requireExitCode(t, err, 1)
}

func TestGetFirstArchiveWins(t *testing.T) {
	t.Setenv("VELOXIO_CONFIG", "")
	first := packSample(t)

	patchDir := testutil.WriteTree(t, map[string]string{"a.txt": "patched"})
	patch := filepath.Join(t.TempDir(), "patch.vxa")
	mustExecute(t, "pack", "-o", patch, patchDir)

	if got := mustExecute(t, "get", "-a", patch, "-a", first, "/a.txt"); got != "patched" {
		t.Errorf("get with patch first = %q, want patched", got)
	}
	if got := mustExecute(t, "get", "-a", first, "-a", patch, "/a.txt"); got != "hello" {
		t.Errorf("get with base first = %q, want hello", got)
	}
}

func TestGetWithConfig(t *testing.T) {
	archivePath := packSample(t)
	configDir := t.TempDir()
	configPath := testutil.WriteFile(t, configDir, "veloxio.yaml", []byte(
		"archives:\n  - "+archivePath+"\nbacking: mapped\n"))

	t.Setenv("VELOXIO_CONFIG", "")
	if got := mustExecute(t, "get", "--config", configPath, "/img/logo.svg"); got != "<svg></svg>" {
		t.Errorf("get with --config = %q", got)
	}

	t.Setenv("VELOXIO_CONFIG", configPath)
	if got := mustExecute(t, "get", "/a.txt"); got != "hello" {
		t.Errorf("get with VELOXIO_CONFIG = %q", got)
	}
}

func TestGetRejectsBrokenArchive(t *testing.T) {
	t.Setenv("VELOXIO_CONFIG", "")
	broken := testutil.WriteFile(t, t.TempDir(), "broken.vxa", []byte("this is not an archive file"))

	_, stderr, err := execute(t, "get", "-a", broken, "/a.txt")
	if err == nil {
		t.Fatal("get with a broken archive succeeded")
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("broken archive reported as not found: %v", err)
	}
	if !strings.Contains(stderr, "archive mount failed") {
		t.Errorf("stderr = %q, want mount failure log", stderr)
	}
}

func TestInspectFormats(t *testing.T) {
	archivePath := packSample(t)

	var fromJSON archiveListing
	if err := json.Unmarshal([]byte(mustExecute(t, "inspect", "--format", "json", archivePath)), &fromJSON); err != nil {
		t.Fatalf("decoding JSON listing: %v", err)
	}
	if fromJSON.Version != 2 || len(fromJSON.Entries) != len(sampleTree) {
		t.Fatalf("JSON listing = %+v, want version 2 with %d entries", fromJSON, len(sampleTree))
	}

	found := false
	for _, entry := range fromJSON.Entries {
		if entry.Key == pathkey.Hash("/a.txt") {
			found = true
			if entry.Size != 5 {
				t.Errorf("/a.txt size = %d, want 5", entry.Size)
			}
		}
	}
	if !found {
		t.Error("JSON listing lacks the key of /a.txt")
	}

	var fromCBOR archiveListing
	if err := codec.Unmarshal([]byte(mustExecute(t, "inspect", "--format", "cbor", archivePath)), &fromCBOR); err != nil {
		t.Fatalf("decoding CBOR listing: %v", err)
	}
	if fromJSON.Digest == "" || fromCBOR.Digest != fromJSON.Digest {
		t.Errorf("digests differ or are empty: CBOR %q, JSON %q", fromCBOR.Digest, fromJSON.Digest)
	}
	if fromCBOR.DataStart != fromJSON.DataStart || len(fromCBOR.Entries) != len(fromJSON.Entries) {
		t.Errorf("CBOR listing %+v differs from JSON listing %+v", fromCBOR, fromJSON)
	}
	for i := range fromJSON.Entries {
		if fromCBOR.Entries[i] != fromJSON.Entries[i] {
			t.Errorf("entry %d: CBOR %+v, JSON %+v", i, fromCBOR.Entries[i], fromJSON.Entries[i])
		}
	}

	text := mustExecute(t, "inspect", "--verify", archivePath)
	for _, want := range []string{"version:    2", "entries:    3", pathkey.Hash("/a.txt").String(), "COMPRESSION"} {
		if !strings.Contains(text, want) {
			t.Errorf("text listing missing %q:\n%s", want, text)
		}
	}
}

func TestInspectVersion1(t *testing.T) {
	archivePath := packSample(t, "--version", "1")

	text := mustExecute(t, "inspect", archivePath)
	if !strings.Contains(text, "version:    1") {
		t.Errorf("text listing = %q, want version 1", text)
	}
	if strings.Contains(text, "CHECKSUM") {
		t.Errorf("version 1 listing shows checksums:\n%s", text)
	}
}

func TestInspectErrors(t *testing.T) {
	archivePath := packSample(t)
	broken := testutil.WriteFile(t, t.TempDir(), "broken.vxa", []byte("VELOX"))

	for _, args := range [][]string{
		{"inspect"},
		{"inspect", "--format", "xml", archivePath},
		{"inspect", broken},
		{"inspect", "--backing", "network", archivePath},
	} {
		if _, _, err := execute(t, args...); err == nil {
			t.Errorf("veloxio %s succeeded, want error", strings.Join(args, " "))
		}
	}
}

func TestHash(t *testing.T) {
	stdout := mustExecute(t, "hash", "/a.txt", "/a%20b.txt")
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("hash output = %q, want two lines", stdout)
	}
	if want := pathkey.Hash("/a.txt").String() + "  /a.txt"; lines[0] != want {
		t.Errorf("line 0 = %q, want %q", lines[0], want)
	}

	var results []hashResult
	if err := json.Unmarshal([]byte(mustExecute(t, "hash", "--json", "/a.txt")), &results); err != nil {
		t.Fatalf("decoding hash JSON: %v", err)
	}
	if len(results) != 1 || results[0].Key != pathkey.Hash("/a.txt") {
		t.Errorf("hash JSON = %+v", results)
	}
}

func TestSanitize(t *testing.T) {
	root := t.TempDir()

	stdout := mustExecute(t, "sanitize", "--root", root, "/a.txt", "/img/logo.svg")
	if !strings.Contains(stdout, "/a.txt -> "+filepath.Join(root, "a.txt")) {
		t.Errorf("sanitize output = %q, want resolved location", stdout)
	}

	stdout, _, err := execute(t, "sanitize", "--root", root, "/a.txt", "/../etc/passwd")
	requireExitCode(t, err, 1)
	if !strings.Contains(stdout, "/../etc/passwd: path rejected") {
		t.Errorf("sanitize output = %q, want rejection", stdout)
	}
}

func TestRootVersion(t *testing.T) {
	stdout := mustExecute(t, "--version")
	if !strings.HasPrefix(stdout, "veloxio ") {
		t.Errorf("--version output = %q", stdout)
	}
	if full := mustExecute(t, "version"); !strings.Contains(full, "Archive formats") {
		t.Errorf("version output = %q", full)
	}
}

func TestRootWithoutCommand(t *testing.T) {
	_, stderr, err := execute(t)
	if err == nil {
		t.Fatal("bare veloxio succeeded, want subcommand required")
	}
	if !strings.Contains(stderr, "Commands:") || !strings.Contains(stderr, "Exit status:") {
		t.Errorf("stderr = %q, want help", stderr)
	}
	if code := cli.ExitCodeOf(err); code != cli.ExitUsage {
		t.Errorf("exit code = %d, want %d", code, cli.ExitUsage)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing operand", args: []string{"hash"}, want: "usage: veloxio hash PATH..."},
		{name: "unknown command", args: []string{"inpsect"}, want: `did you mean "inspect"`},
		{name: "unknown flag", args: []string{"pack", "--ouput", "a.vxa", "."}, want: "did you mean --output (-o)"},
		{name: "flag prefix", args: []string{"pack", "--comp", "lz4", "."}, want: "did you mean --compression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if err == nil {
				t.Fatalf("veloxio %v succeeded, want usage error", tt.args)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
			if code := cli.ExitCodeOf(err); code != cli.ExitUsage {
				t.Errorf("exit code = %d, want %d", code, cli.ExitUsage)
			}
		})
	}
}

func TestHelpCommand(t *testing.T) {
	_, stderr, err := execute(t, "help", "get")
	if err != nil {
		t.Fatalf("help get failed: %v", err)
	}
	for _, want := range []string{"veloxio get [--config FILE]", "Environment:", "VELOXIO_CONFIG"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("help get output missing %q:\n%s", want, stderr)
		}
	}

	_, stderr, err = execute(t, "help", "hash")
	if err != nil {
		t.Fatalf("help hash failed: %v", err)
	}
	if !strings.Contains(stderr, "veloxio hash [flags] PATH...") {
		t.Errorf("help hash output = %q, want synthesized usage", stderr)
	}

	if _, _, err := execute(t, "help", "pakc"); cli.ExitCodeOf(err) != cli.ExitUsage {
		t.Errorf("help for unknown command error = %v, want usage error", err)
	}
}
