package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/swmc/pkg/export"
)

// Config stores persistent CLI settings
type Config struct {
	MicrocontrollerDir string `yaml:"microcontroller_dir,omitempty"` // empty: look the folder up
	Strict             bool   `yaml:"strict"`                        // reject unknown attributes and elements
	DumpFormat         string `yaml:"dump_format"`                   // json, yaml or cbor
	LogLevel           string `yaml:"log_level"`                     // debug, info, warn or error
}

// DefaultConfig returns the settings used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Strict:     false,
		DumpFormat: string(export.JSON),
		LogLevel:   "warn",
	}
}

// Validate checks the configuration and expands ~ in paths
func (c *Config) Validate() error {
	if c.DumpFormat == "" {
		c.DumpFormat = string(export.JSON)
	}
	if _, err := export.ParseFormat(c.DumpFormat); err != nil {
		return fmt.Errorf("config: dump_format: %w", err)
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	if c.MicrocontrollerDir != "" {
		dir, err := homedir.Expand(c.MicrocontrollerDir)
		if err != nil {
			return fmt.Errorf("config: microcontroller_dir: %w", err)
		}
		c.MicrocontrollerDir = dir
	}
	return nil
}

// Level maps LogLevel to a slog level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Path returns the location of the config file
func Path() (string, error) {
	if dir := os.Getenv("APPDATA"); dir != "" {
		// Windows: %APPDATA%\swmc
		return filepath.Join(dir, "swmc", "config.yaml"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "swmc", "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config file, creating its directory
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
