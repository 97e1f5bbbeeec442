// Package config provides configuration loading and management for camposevis.
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
	// Visualization parameters
	Visualization struct {
		// ImageDownsampleFactor is the stride used when sampling image pixels
		ImageDownsampleFactor int `yaml:"imageDownsampleFactor"`

		// SkipProbability is the per-camera chance of being skipped at random
		SkipProbability float64 `yaml:"skipProbability"`

		// ImagePlane is the distance from the camera center to the projected
		// image plane
		ImagePlane float64 `yaml:"imagePlane"`

		// SelectedFrames restricts visualization to these frame indices.
		// Empty means all frames.
		SelectedFrames []int `yaml:"selectedFrames"`

		// ShowImage controls whether per-camera imagery is projected and drawn
		ShowImage bool `yaml:"showImage"`

		// StrictSelection applies SelectedFrames even when ShowImage is off.
		// The default (false) keeps the historical behaviour where frame
		// selection only takes effect while images are shown.
		StrictSelection bool `yaml:"strictSelection"`

		// Seed seeds the random skip sampling; 0 means time-seeded
		Seed int64 `yaml:"seed"`
	} `yaml:"visualization"`

	// Dataset parameters
	Dataset struct {
		// Dir is the dataset directory containing the transforms file and images
		Dir string `yaml:"dir"`

		// TransformsFile is the transforms filename within Dir
		TransformsFile string `yaml:"transformsFile"`
	} `yaml:"dataset"`

	// Output parameters
	Output struct {
		// Listen is the HTTP address the figure is served on
		Listen string `yaml:"listen"`

		// HTMLFile, when set, writes the rendered figure to this file
		HTMLFile string `yaml:"htmlFile"`

		// Title is the figure title
		Title string `yaml:"title"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Visualization.ImageDownsampleFactor = 5
	cfg.Visualization.SkipProbability = 0.0
	cfg.Visualization.ImagePlane = 1.0
	cfg.Visualization.ShowImage = false
	cfg.Visualization.StrictSelection = false
	cfg.Visualization.Seed = 0

	cfg.Dataset.TransformsFile = "transforms.json"

	cfg.Output.Listen = "127.0.0.1:8412"
	cfg.Output.Title = "Camera Poses"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
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

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration values are usable
func (cfg *Config) Validate() error {
	v := &cfg.Visualization

	if v.ImageDownsampleFactor < 1 {
		return fmt.Errorf("imageDownsampleFactor must be >= 1, got %d", v.ImageDownsampleFactor)
	}
	if v.SkipProbability < 0 || v.SkipProbability > 1 {
		return fmt.Errorf("skipProbability must be in [0, 1], got %v", v.SkipProbability)
	}
	if v.ImagePlane <= 0 {
		return fmt.Errorf("imagePlane must be > 0, got %v", v.ImagePlane)
	}
	for _, frame := range v.SelectedFrames {
		if frame < 0 {
			return fmt.Errorf("selectedFrames must be non-negative, got %d", frame)
		}
	}

	if cfg.Dataset.TransformsFile == "" {
		return fmt.Errorf("dataset transformsFile must not be empty")
	}
	if cfg.Output.Listen == "" && cfg.Output.HTMLFile == "" {
		return fmt.Errorf("output requires a listen address or an HTML file")
	}

	return nil
}
