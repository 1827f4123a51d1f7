// Package config handles shrink configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HartBrook/shrink/internal/errors"
	"gopkg.in/yaml.v3"
)

// File permission constants for consistent file creation.
const (
	DefaultFileMode = 0644
	DefaultDirMode  = 0755
)

// LimitsConfig bounds the input the engine accepts.
type LimitsConfig struct {
	MaxInputSize ByteSize `yaml:"max_input_size"`
}

// CacheConfig contains cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	TTL     string `yaml:"ttl"` // e.g., "168h"
}

// OutputConfig contains presentation defaults for the CLI.
type OutputConfig struct {
	Format string `yaml:"format"` // table, json or github
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// GitHubConfig contains defaults for fetching inputs from GitHub.
type GitHubConfig struct {
	// Repo is used when --path is given without --repo.
	Repo string `yaml:"repo,omitempty"`
	// Ref is the branch, tag or commit to read. Empty means the default branch.
	Ref string `yaml:"ref,omitempty"`
}

// Config represents the shrink configuration file.
type Config struct {
	Version int `yaml:"version"`

	Limits LimitsConfig `yaml:"limits"`
	Cache  CacheConfig  `yaml:"cache"`
	Output OutputConfig `yaml:"output"`

	// Verify checks every minified output for equivalence with its input.
	Verify bool `yaml:"verify"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	GitHub GitHubConfig `yaml:"github,omitempty"`
}

// Default values.
const (
	DefaultVersion      = 1
	DefaultMaxInputSize = ByteSize(1 << 20)
	DefaultCacheTTL     = "168h"
	DefaultFormat       = "table"
	DefaultLogLevel     = "warn"
	DefaultServerAddr   = "127.0.0.1:8787"
)

// Formats lists the accepted output formats.
var Formats = []string{"table", "json", "github"}

// LogLevels lists the accepted log levels.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadOrDefault reads config from path, falling back to defaults when the
// file does not exist. Other failures are returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if errors.CodeOf(err) == errors.ErrConfigNotFound {
		return Default(), nil
	}
	return cfg, err
}

// LoadFrom reads and validates config from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to read config", "", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to parse config YAML", "Check config syntax", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveTo writes config to a specific path.
func SaveTo(cfg *Config, path string) error {
	cfg.applyDefaults()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, "failed to marshal config", "", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirMode); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, "failed to create config directory", "", err)
	}

	return os.WriteFile(path, data, DefaultFileMode)
}

// Validate checks config for valid values.
func (c *Config) Validate() error {
	if c.Limits.MaxInputSize < 0 {
		return errors.ConfigInvalid("limits.max_input_size must not be negative")
	}

	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return errors.ConfigInvalid("invalid cache.ttl format, use Go duration format (e.g., 24h)")
		}
	}

	if c.Output.Format != "" && !contains(Formats, c.Output.Format) {
		return errors.ConfigInvalid(fmt.Sprintf("output.format must be one of %s", strings.Join(Formats, ", ")))
	}

	if c.Log.Level != "" && !contains(LogLevels, strings.ToLower(c.Log.Level)) {
		return errors.ConfigInvalid(fmt.Sprintf("log.level must be one of %s", strings.Join(LogLevels, ", ")))
	}

	if c.GitHub.Repo != "" {
		if _, _, err := ParseRepo(c.GitHub.Repo); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("invalid github.repo: %v", err))
		}
	}

	return nil
}

// applyDefaults sets default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = DefaultVersion
	}
	if c.Limits.MaxInputSize == 0 {
		c.Limits.MaxInputSize = DefaultMaxInputSize
	}
	if c.Cache.Enabled == nil {
		enabled := true
		c.Cache.Enabled = &enabled
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
}

// IsEnabled reports whether the result cache is on. It defaults to true.
func (c *CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// TTLDuration returns the cache TTL as a time.Duration.
func (c *CacheConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		d, _ = time.ParseDuration(DefaultCacheTTL)
	}
	return d
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
