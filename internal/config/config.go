// Package config defines the application configuration tree and its loader.
// Values come from defaults, an optional YAML file, TABULA_* environment
// variables, and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/tabula/internal/extract"
)

// Config is the root configuration.
type Config struct {
	LogLevel string               `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool                 `mapstructure:"verbose"   yaml:"verbose"   json:"verbose"`
	Engine   extract.EngineConfig `mapstructure:"engine"    yaml:"engine"    json:"engine"`
}

// DefaultConfig returns the full default tree.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Engine:   extract.DefaultEngineConfig(),
	}
}

// Validate checks the whole tree.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if err := c.Engine.Table.Validate(); err != nil {
		return fmt.Errorf("engine.table: %w", err)
	}
	if err := c.Engine.OCR.Validate(); err != nil {
		return fmt.Errorf("engine.ocr: %w", err)
	}
	if c.Engine.Options.MaxFileSize <= 0 {
		return fmt.Errorf("engine.options.max_file_size must be positive, got %d", c.Engine.Options.MaxFileSize)
	}
	if c.Engine.Options.MinTextChars <= 0 {
		return fmt.Errorf("engine.options.min_text_chars must be positive, got %d", c.Engine.Options.MinTextChars)
	}
	return nil
}

// SlogLevel maps the configured level name onto a slog level. Verbose
// overrides the level down to debug.
func (c *Config) SlogLevel() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}

// NewLogger builds the application logger from the configured level.
func (c *Config) NewLogger() (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

// SaveYAML writes the configuration as YAML.
func (c *Config) SaveYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadYAML reads a YAML file over the defaults.
func LoadYAML(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is expected
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}
