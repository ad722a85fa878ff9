// Package config loads the command-line tool's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings for simulation runs.
type Config struct {
	// Size is the cube edge length.
	Size int `yaml:"size"`

	// Simulation settings
	Workers   int `yaml:"workers"`
	Rotations int `yaml:"rotations"` // per worker
	// ShowEvery makes each worker call Show after every n rotations (0 disables).
	ShowEvery int `yaml:"show_every"`
	// HookDelay is slept inside the before-rotation hook, e.g. "1ms".
	HookDelay string `yaml:"hook_delay"`
	Seed      int64  `yaml:"seed"`

	// Watch settings
	RefreshInterval string `yaml:"refresh_interval"`

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090".
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Size:            3,
		Workers:         8,
		Rotations:       100,
		ShowEvery:       10,
		HookDelay:       "0s",
		Seed:            1,
		RefreshInterval: "100ms",
		LogLevel:        "info",
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ValidLogLevels lists the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Size < 1 {
		return fmt.Errorf("invalid size: %d (must be at least 1)", c.Size)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers: %d (must be at least 1)", c.Workers)
	}
	if c.Rotations < 0 {
		return fmt.Errorf("invalid rotations: %d", c.Rotations)
	}
	if c.ShowEvery < 0 {
		return fmt.Errorf("invalid show_every: %d", c.ShowEvery)
	}
	if _, err := time.ParseDuration(c.HookDelay); err != nil {
		return fmt.Errorf("invalid hook_delay: %w", err)
	}
	if _, err := time.ParseDuration(c.RefreshInterval); err != nil {
		return fmt.Errorf("invalid refresh_interval: %w", err)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.LogLevel == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log_level: %s (valid: %v)", c.LogLevel, ValidLogLevels)
	}

	return nil
}

// GetHookDelay returns the parsed hook delay, or zero if it does not parse.
func (c *Config) GetHookDelay() time.Duration {
	d, err := time.ParseDuration(c.HookDelay)
	if err != nil {
		return 0
	}
	return d
}

// GetRefreshInterval returns the parsed refresh interval, defaulting to 100ms.
func (c *Config) GetRefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}
