// Package config provides configuration loading and management for labelreview.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"labelreview/internal/fileutil"
	"labelreview/internal/models"
)

// DefaultConfigPath is used when no --config flag is given
const DefaultConfigPath = "labelreview.yaml"

// LayerConfig describes one layer loaded from disk
type LayerConfig struct {
	// Name is shown in the review window
	Name string `yaml:"name"`

	// Kind is "labels" or "image"
	Kind string `yaml:"kind"`

	// Path is an image file or a directory of numbered slices
	Path string `yaml:"path"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Review parameters
	Review struct {
		// LabelList is the YAML file listing label ids to review
		LabelList string `yaml:"labelList"`

		// LabelsLayer names the labels layer the bounding boxes come from
		LabelsLayer string `yaml:"labelsLayer"`

		// Padding is added on every side of a label's bounding box
		Padding int `yaml:"padding"`

		// MinPadding and MaxPadding bound the padding slider
		MinPadding int `yaml:"minPadding"`
		MaxPadding int `yaml:"maxPadding"`
	} `yaml:"review"`

	// Layers are loaded at startup, in display order
	Layers []LayerConfig `yaml:"layers"`

	// Display parameters
	Display struct {
		// Width and Height of the review window
		Width  float32 `yaml:"width"`
		Height float32 `yaml:"height"`

		// HighlightOpacity is the alpha of the highlighted label overlay
		HighlightOpacity float64 `yaml:"highlightOpacity"`

		// LabelOpacity is the alpha of labels layers
		LabelOpacity float64 `yaml:"labelOpacity"`
	} `yaml:"display"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Review.Padding = 18
	cfg.Review.MinPadding = 0
	cfg.Review.MaxPadding = 100

	cfg.Display.Width = 800
	cfg.Display.Height = 800
	cfg.Display.HighlightOpacity = 0.6
	cfg.Display.LabelOpacity = 0.5

	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
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

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := fileutil.WriteAtomic(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks values that would otherwise fail later in a review
func (c *Config) Validate() error {
	if c.Review.Padding < 0 {
		return fmt.Errorf("padding must be non-negative, got %d", c.Review.Padding)
	}
	if c.Review.MinPadding < 0 || c.Review.MaxPadding < c.Review.MinPadding {
		return fmt.Errorf("invalid padding range [%d, %d]", c.Review.MinPadding, c.Review.MaxPadding)
	}

	seen := make(map[string]bool, len(c.Layers))
	for i, l := range c.Layers {
		if l.Name == "" {
			return fmt.Errorf("layer %d has no name", i)
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate layer name %q", l.Name)
		}
		seen[l.Name] = true
		if _, ok := models.ParseLayerKind(l.Kind); !ok {
			return fmt.Errorf("layer %q has unknown kind %q", l.Name, l.Kind)
		}
		if l.Path == "" {
			return fmt.Errorf("layer %q has no path", l.Name)
		}
	}

	if c.Review.LabelsLayer != "" {
		l, ok := c.Layer(c.Review.LabelsLayer)
		if !ok {
			return fmt.Errorf("labels layer %q is not configured", c.Review.LabelsLayer)
		}
		if kind, _ := models.ParseLayerKind(l.Kind); kind != models.LabelsLayer {
			return fmt.Errorf("layer %q is not a labels layer", l.Name)
		}
	}
	return nil
}

// Layer looks up a configured layer by name
func (c *Config) Layer(name string) (LayerConfig, bool) {
	for _, l := range c.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return LayerConfig{}, false
}

// LabelsLayerNames lists the configured labels layers, in order
func (c *Config) LabelsLayerNames() []string {
	var names []string
	for _, l := range c.Layers {
		if kind, ok := models.ParseLayerKind(l.Kind); ok && kind == models.LabelsLayer {
			names = append(names, l.Name)
		}
	}
	return names
}
