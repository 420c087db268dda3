// Package config provides configuration loading for the diplib demo
// tool. It handles loading configuration from YAML files and provides
// default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/Abhijit-2592/diplib/pkg/boundary"
)

// Config represents the tool configuration loaded from YAML.
type Config struct {
	// Processing parameters
	Processing struct {
		// Workers specifies how many worker goroutines the engines use
		Workers int `yaml:"workers"`

		// Boundary names the boundary condition used at image edges,
		// one of the names accepted by boundary.Parse
		Boundary string `yaml:"boundary"`
	} `yaml:"processing"`

	// Smoothing parameters
	Smoothing struct {
		// Sigma is the Gaussian sigma in pixels
		Sigma float64 `yaml:"sigma"`

		// Size is the uniform filter width in pixels
		Size float64 `yaml:"size"`
	} `yaml:"smoothing"`

	// Neighborhood parameters for the local mean
	Neighborhood struct {
		// Shape is one of elliptic, rectangular or diamond
		Shape string `yaml:"shape"`

		// Size is the neighborhood diameter in pixels
		Size float64 `yaml:"size"`
	} `yaml:"neighborhood"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.Workers = runtime.NumCPU()
	cfg.Processing.Boundary = boundary.Default.String()

	cfg.Smoothing.Sigma = 1.0
	cfg.Smoothing.Size = 3

	cfg.Neighborhood.Shape = "elliptic"
	cfg.Neighborhood.Size = 5

	cfg.Output.Verbose = true

	return cfg
}

// BoundaryConditions resolves the configured boundary condition name.
func (c *Config) BoundaryConditions() ([]boundary.Condition, error) {
	bc, err := boundary.Parse(c.Processing.Boundary)
	if err != nil {
		return nil, fmt.Errorf("invalid boundary setting: %w", err)
	}
	return []boundary.Condition{bc}, nil
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

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

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
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

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
