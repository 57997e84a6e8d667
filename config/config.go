// Package config loads the dashboard configuration.
// Priority: environment variables > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "ETLDASH_"

// FileName is the default config file name in the home directory.
const FileName = ".etldash.yaml"

// Config is passed explicitly to the components that need it.
type Config struct {
	// Base URL of the test-execution service
	APIURL string `koanf:"api_url"`
	// Substitute fallback data when the service fails
	DemoMode bool `koanf:"demo_mode"`
	// Never contact the service; implies demo mode
	Offline bool `koanf:"offline"`
	// Per-request timeout
	Timeout time.Duration `koanf:"timeout"`
	// zerolog level name
	LogLevel string `koanf:"log_level"`
	// Listen address of the HTTP dashboard
	ListenAddr string `koanf:"listen_addr"`
	// File holding the last fetched listing; empty disables snapshots
	SnapshotPath string `koanf:"snapshot_path"`
}

// Defaults returns the default configuration.
func Defaults() map[string]any {
	return map[string]any{
		"api_url":       "http://localhost:3001",
		"demo_mode":     false,
		"offline":       false,
		"timeout":       "10s",
		"log_level":     "info",
		"listen_addr":   ":8090",
		"snapshot_path": "",
	}
}

// DefaultPath returns the config file path used when none is given.
func DefaultPath() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(homeDir, FileName)
}

// Load reads defaults, the YAML file at path and ETLDASH_* environment
// variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}

	// ETLDASH_API_URL -> api_url
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Offline {
		c.DemoMode = true
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
