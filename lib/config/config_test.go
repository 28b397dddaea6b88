// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Overlay.Enabled {
		t.Error("expected overlay disabled by default")
	}
	if cfg.Backing != "buffered" {
		t.Errorf("expected backing=buffered, got %s", cfg.Backing)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log_level=info, got %s", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_RequiresVeloxioConfig(t *testing.T) {
	t.Setenv("VELOXIO_CONFIG", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when VELOXIO_CONFIG not set, got nil")
	}

	expectedMsg := "VELOXIO_CONFIG environment variable not set"
	if !strings.HasPrefix(err.Error(), expectedMsg) {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithVeloxioConfig(t *testing.T) {
	configPath := writeConfig(t, "veloxio.yaml", `
environment: development
archives:
  - /srv/assets/base.vxa
backing: mapped
`)
	t.Setenv("VELOXIO_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Backing != "mapped" {
		t.Errorf("expected backing=mapped, got %s", cfg.Backing)
	}
	if len(cfg.Archives) != 1 || cfg.Archives[0] != "/srv/assets/base.vxa" {
		t.Errorf("expected archives=[/srv/assets/base.vxa], got %v", cfg.Archives)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, "veloxio.yaml", `
environment: development
root: /var/lib/veloxio
overlay:
  enabled: true
archives:
  - ${VELOXIO_ROOT}/base.vxa
  - patches.vxa
log_level: debug
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if !cfg.Overlay.Enabled {
		t.Error("expected overlay enabled")
	}
	if cfg.Overlay.Root != "/var/lib/veloxio/overlay" {
		t.Errorf("expected overlay root=/var/lib/veloxio/overlay, got %s", cfg.Overlay.Root)
	}
	if cfg.Archives[0] != "/var/lib/veloxio/base.vxa" {
		t.Errorf("expected first archive expanded, got %s", cfg.Archives[0])
	}

	expectedRelative := filepath.Join(filepath.Dir(configPath), "patches.vxa")
	if cfg.Archives[1] != expectedRelative {
		t.Errorf("expected relative archive resolved to %s, got %s", expectedRelative, cfg.Archives[1])
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug log level, got %v", cfg.SlogLevel())
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	configPath := writeConfig(t, "veloxio.jsonc", `{
	// Serve loose files while iterating.
	"overlay": {"enabled": true, "root": "/tmp/overlay"},
	"archives": ["/a.vxa", "/b.vxa",],
	"backing": "file",
}`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if !cfg.Overlay.Enabled || cfg.Overlay.Root != "/tmp/overlay" {
		t.Errorf("expected overlay enabled at /tmp/overlay, got %+v", cfg.Overlay)
	}
	if len(cfg.Archives) != 2 || cfg.Archives[1] != "/b.vxa" {
		t.Errorf("expected two archives, got %v", cfg.Archives)
	}
	if cfg.Backing != "file" {
		t.Errorf("expected backing=file, got %s", cfg.Backing)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist cause, got %v", err)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	configPath := writeConfig(t, "veloxio.yaml", "archives: [unterminated\n")

	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected parse error for malformed YAML")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantOverlay bool
		wantBacking string
		wantLevel   string
	}{
		{
			name: "development section applies",
			content: `
environment: development
development:
  overlay:
    enabled: true
  log_level: debug
production:
  backing: mapped
`,
			wantOverlay: true,
			wantBacking: "buffered",
			wantLevel:   "debug",
		},
		{
			name: "production section applies",
			content: `
environment: production
overlay:
  enabled: true
production:
  overlay:
    enabled: false
  backing: mapped
`,
			wantOverlay: false,
			wantBacking: "mapped",
			wantLevel:   "info",
		},
		{
			name: "production disables overlay without a section",
			content: `
environment: production
overlay:
  enabled: true
`,
			wantOverlay: false,
			wantBacking: "buffered",
			wantLevel:   "info",
		},
		{
			name: "production section leaves overlay alone when unset",
			content: `
environment: production
overlay:
  enabled: true
production:
  log_level: warn
`,
			wantOverlay: true,
			wantBacking: "buffered",
			wantLevel:   "warn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFile(writeConfig(t, "veloxio.yaml", tt.content))
			if err != nil {
				t.Fatalf("LoadFile() failed: %v", err)
			}
			if cfg.Overlay.Enabled != tt.wantOverlay {
				t.Errorf("expected overlay enabled=%v, got %v", tt.wantOverlay, cfg.Overlay.Enabled)
			}
			if cfg.Backing != tt.wantBacking {
				t.Errorf("expected backing=%s, got %s", tt.wantBacking, cfg.Backing)
			}
			if cfg.LogLevel != tt.wantLevel {
				t.Errorf("expected log_level=%s, got %s", tt.wantLevel, cfg.LogLevel)
			}
		})
	}
}

func TestProductionArchivesReplaceBase(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "veloxio.yaml", `
environment: production
archives: [/dev/base.vxa, /dev/extra.vxa]
production:
  archives: [/prod/base.vxa]
`))
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if len(cfg.Archives) != 1 || cfg.Archives[0] != "/prod/base.vxa" {
		t.Errorf("expected production archives, got %v", cfg.Archives)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/veloxio",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/veloxio",
		},
		{
			input:    "${VELOXIO_TEST_MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestExpandVars_FallsBackToEnvironment(t *testing.T) {
	t.Setenv("VELOXIO_TEST_ASSETS", "/opt/assets")

	result := expandVars("${VELOXIO_TEST_ASSETS}/base.vxa", map[string]string{})
	if result != "/opt/assets/base.vxa" {
		t.Errorf("expected environment expansion, got %q", result)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid environment",
			modify: func(c *Config) {
				c.Environment = "invalid"
			},
			wantErr: true,
		},
		{
			name: "overlay enabled without root",
			modify: func(c *Config) {
				c.Overlay.Enabled = true
				c.Overlay.Root = ""
			},
			wantErr: true,
		},
		{
			name: "overlay disabled without root",
			modify: func(c *Config) {
				c.Overlay.Root = ""
			},
			wantErr: false,
		},
		{
			name: "unknown backing",
			modify: func(c *Config) {
				c.Backing = "network"
			},
			wantErr: true,
		},
		{
			name: "unknown log level",
			modify: func(c *Config) {
				c.LogLevel = "verbose"
			},
			wantErr: true,
		},
		{
			name: "empty archive path",
			modify: func(c *Config) {
				c.Archives = []string{""}
			},
			wantErr: true,
		},
		{
			name: "duplicate archive path",
			modify: func(c *Config) {
				c.Archives = []string{"/a.vxa", "/a.vxa"}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Backing = "network"
	cfg.LogLevel = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	message := err.Error()
	if !strings.Contains(message, "backing") || !strings.Contains(message, "log_level") {
		t.Errorf("expected both problems reported, got %q", message)
	}
}
