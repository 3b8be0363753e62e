// Package config provides configuration types and defaults for loom.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loomkit/loom/internal/log"
)

// Config holds all configuration options for loom.
type Config struct {
	// Locations are the definition documents loaded by default, in order.
	// Each entry is a resolver location: a plain path, "file:...",
	// "fs:...", "glob:..." or an http(s) URL.
	Locations []string `mapstructure:"locations"`

	// Profiles are the active profiles for registration passes.
	Profiles []string `mapstructure:"profiles"`

	// AllowOverride lets later definitions replace earlier ones instead of
	// being rejected as duplicates.
	AllowOverride bool `mapstructure:"allow_override"`

	// Properties feed ${...} placeholder expansion, ahead of OS
	// environment variables.
	Properties map[string]string `mapstructure:"properties"`

	Watch   WatchConfig   `mapstructure:"watch"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// WatchConfig holds file watching configuration for the watch command.
type WatchConfig struct {
	// Debounce is how long edits must settle before a reload pass runs.
	Debounce time.Duration `mapstructure:"debounce"`
}

// CacheConfig holds resource resolution caching configuration.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// TTL is how long resolved resource handles stay cached.
	TTL time.Duration `mapstructure:"ttl"`
}

// TracingConfig holds tracing configuration for registration passes.
type TracingConfig struct {
	// Enabled controls whether pass spans are exported to stderr.
	// Default: false
	Enabled bool `mapstructure:"enabled"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Watch: WatchConfig{
			Debounce: 1 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     5 * time.Minute,
		},
		Tracing: TracingConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for errors. Empty values fall back to
// defaults and are valid.
func Validate(cfg Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", cfg.Watch.Debounce)
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when the cache is enabled, got %v", cfg.Cache.TTL)
	}
	for i, loc := range cfg.Locations {
		if loc == "" {
			return fmt.Errorf("locations[%d] must not be empty", i)
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Loom Configuration

# Definition documents to load, in order. Each entry is a location:
# a plain path, "file:...", "fs:...", "glob:..." or an http(s) URL.
# locations:
#   - defs/app.xml
#   - glob:defs/modules/*.xml

# Active profiles for registration passes.
# Scopes gated on a profile are skipped unless it is active here;
# "!name" gates on a profile being inactive.
# profiles:
#   - prod

# Let later definitions replace earlier ones instead of rejecting
# duplicates (default: false)
# allow_override: true

# Properties for ${...} placeholder expansion in documents.
# Explicit properties win over OS environment variables.
# properties:
#   flavor: prod

# File watching (loom watch)
watch:
  debounce: 1s   # How long edits must settle before reloading

# Resource resolution caching
cache:
  enabled: false
  ttl: 5m

# Registration pass tracing (spans printed to stderr)
tracing:
  enabled: false
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "writing default config to %s", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "created default config at %s", configPath)
	return nil
}
