// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for a Veloxio provider.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Root is the base directory that ${VELOXIO_ROOT} expands to.
	Root string `yaml:"root"`

	// Overlay configures the disk overlay checked before archives.
	Overlay OverlayConfig `yaml:"overlay"`

	// Archives lists archive files to mount, in priority order: when
	// two archives hold the same key, the earlier one wins.
	Archives []string `yaml:"archives"`

	// Backing selects how archives are read: buffered, file or mapped.
	// Default: buffered
	Backing string `yaml:"backing"`

	// LogLevel is debug, info, warn or error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// Environment sections applied after the base config is loaded.
	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	Overlay  *OverlayOverrides `yaml:"overlay,omitempty"`
	Archives []string          `yaml:"archives,omitempty"`
	Backing  string            `yaml:"backing,omitempty"`
	LogLevel string            `yaml:"log_level,omitempty"`
}

// OverlayConfig configures the disk overlay.
type OverlayConfig struct {
	// Enabled turns on disk lookups before archive lookups.
	Enabled bool `yaml:"enabled"`

	// Root is the directory served by the overlay.
	// Default: ${VELOXIO_ROOT}/overlay
	Root string `yaml:"root"`
}

// OverlayOverrides distinguishes "not set" from false.
type OverlayOverrides struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Root    string `yaml:"root,omitempty"`
}

// Default returns the default configuration used as the base before
// loading a file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "share", "veloxio")

	return &Config{
		Environment: Development,
		Root:        defaultRoot,
		Overlay: OverlayConfig{
			Enabled: false,
			Root:    "${VELOXIO_ROOT}/overlay",
		},
		Backing:  "buffered",
		LogLevel: "info",
	}
}

// Load loads configuration from the VELOXIO_CONFIG environment
// variable. There is no fallback when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv("VELOXIO_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("VELOXIO_CONFIG environment variable not set; " +
			"set it to the path of your veloxio.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applies the
// matching environment section and expands path variables. Relative
// archive and overlay paths are resolved against the directory of the
// config file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	cfg.resolveRelative(filepath.Dir(path))

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data, err = jsoncToYAML(data)
		if err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// jsoncToYAML strips comments and trailing commas, then re-encodes the
// document as YAML. YAML rejects tab indentation, which JSON allows.
func jsoncToYAML(data []byte) ([]byte, error) {
	var document any
	if err := json.Unmarshal(jsonc.ToJSON(data), &document); err != nil {
		return nil, err
	}
	return yaml.Marshal(document)
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		// Production never serves from disk unless asked to.
		if overrides == nil {
			disabled := false
			overrides = &Overrides{Overlay: &OverlayOverrides{Enabled: &disabled}}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Overlay != nil {
		if overrides.Overlay.Enabled != nil {
			c.Overlay.Enabled = *overrides.Overlay.Enabled
		}
		if overrides.Overlay.Root != "" {
			c.Overlay.Root = overrides.Overlay.Root
		}
	}
	if len(overrides.Archives) > 0 {
		c.Archives = slices.Clone(overrides.Archives)
	}
	if overrides.Backing != "" {
		c.Backing = overrides.Backing
	}
	if overrides.LogLevel != "" {
		c.LogLevel = overrides.LogLevel
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"VELOXIO_ROOT": c.Root,
		"HOME":         os.Getenv("HOME"),
	}

	c.Root = expandVars(c.Root, vars)
	vars["VELOXIO_ROOT"] = c.Root

	c.Overlay.Root = expandVars(c.Overlay.Root, vars)
	for i, archive := range c.Archives {
		c.Archives[i] = expandVars(archive, vars)
	}
}

func (c *Config) resolveRelative(base string) {
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(base, path)
	}

	c.Overlay.Root = resolve(c.Overlay.Root)
	for i, archive := range c.Archives {
		c.Archives[i] = resolve(archive)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var (
	backingValues  = []string{"buffered", "file", "mapped"}
	logLevelValues = []string{"debug", "info", "warn", "error"}
)

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Overlay.Enabled && c.Overlay.Root == "" {
		errs = append(errs, fmt.Errorf("overlay.root is required when the overlay is enabled"))
	}

	if !slices.Contains(backingValues, c.Backing) {
		errs = append(errs, fmt.Errorf("backing must be one of: %v", backingValues))
	}

	if !slices.Contains(logLevelValues, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level must be one of: %v", logLevelValues))
	}

	seen := make(map[string]bool, len(c.Archives))
	for _, archive := range c.Archives {
		if archive == "" {
			errs = append(errs, fmt.Errorf("archives must not contain empty paths"))
			continue
		}
		if seen[archive] {
			errs = append(errs, fmt.Errorf("archive %s is listed more than once", archive))
		}
		seen[archive] = true
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel returns the configured log level for slog handlers.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
