// Package config provides configuration loading and management for sfview.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Engine parameters that are fixed for the lifetime of a dataset
	Engine struct {
		// CorrectPhaseOnly restricts the receive-chain calibration to the phase.
		// When false, the magnitude is corrected as well.
		CorrectPhaseOnly bool `yaml:"correctPhaseOnly"`

		// CacheCapacity is the number of calibrated voxel blocks kept in memory
		CacheCapacity int `yaml:"cacheCapacity"`

		// MaxMixingOrder bounds the L1 norm of searched mixing terms
		MaxMixingOrder int `yaml:"maxMixingOrder"`

		// LegacyTolerance is the relative magnitude drop above which a
		// reconstructed value replaces the stored one when migrating a
		// version 1 modification table
		LegacyTolerance float64 `yaml:"legacyTolerance"`
	} `yaml:"engine"`

	// Edit parameters
	Edit struct {
		// Threshold is the default minimum relative magnitude drop for an
		// interpolation to be committed
		Threshold float64 `yaml:"threshold"`
	} `yaml:"edit"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`

		// JSON switches the log output to JSON records
		JSON bool `yaml:"json"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Engine.CorrectPhaseOnly = true
	cfg.Engine.CacheCapacity = 10
	cfg.Engine.MaxMixingOrder = 50
	cfg.Engine.LegacyTolerance = 0.1

	cfg.Edit.Threshold = 0.0

	cfg.Logging.Level = "info"
	cfg.Logging.JSON = false

	return cfg
}

// Validate checks that the values are usable by the engine
func (c *Config) Validate() error {
	if c.Engine.CacheCapacity < 1 {
		return fmt.Errorf("engine.cacheCapacity must be at least 1, got %d", c.Engine.CacheCapacity)
	}
	if c.Engine.MaxMixingOrder < 0 {
		return fmt.Errorf("engine.maxMixingOrder must not be negative, got %d", c.Engine.MaxMixingOrder)
	}
	if c.Engine.LegacyTolerance < 0 {
		return fmt.Errorf("engine.legacyTolerance must not be negative, got %v", c.Engine.LegacyTolerance)
	}
	if c.Edit.Threshold < 0 || c.Edit.Threshold >= 1 {
		return fmt.Errorf("edit.threshold must be in [0,1), got %v", c.Edit.Threshold)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
