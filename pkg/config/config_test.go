package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Review.Padding != 18 {
		t.Errorf("Expected default padding 18, got %d", cfg.Review.Padding)
	}
	if cfg.Review.MinPadding != 0 || cfg.Review.MaxPadding != 100 {
		t.Errorf("Expected padding range [0, 100], got [%d, %d]", cfg.Review.MinPadding, cfg.Review.MaxPadding)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Error("Expected defaults for a missing config file")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "labelreview.yaml")

	cfg := DefaultConfig()
	cfg.Review.LabelList = "labels.yaml"
	cfg.Review.LabelsLayer = "seg"
	cfg.Review.Padding = 4
	cfg.Layers = []LayerConfig{
		{Name: "raw", Kind: "image", Path: "raw.tif"},
		{Name: "seg", Kind: "labels", Path: "seg/"},
	}

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("Round trip changed config:\nsaved  %+v\nloaded %+v", cfg, loaded)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labelreview.yaml")
	if err := os.WriteFile(path, []byte("review:\n  padding: 3\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Review.Padding != 3 {
		t.Errorf("Expected padding 3, got %d", cfg.Review.Padding)
	}
	if cfg.Review.MaxPadding != 100 {
		t.Errorf("Expected default max padding to survive, got %d", cfg.Review.MaxPadding)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labelreview.yaml")
	if err := os.WriteFile(path, []byte("review: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"negative padding", func(c *Config) { c.Review.Padding = -1 }, true},
		{"inverted range", func(c *Config) { c.Review.MaxPadding = -5 }, true},
		{"unknown kind", func(c *Config) {
			c.Layers = []LayerConfig{{Name: "x", Kind: "points", Path: "x"}}
		}, true},
		{"duplicate names", func(c *Config) {
			c.Layers = []LayerConfig{{Name: "x", Kind: "image", Path: "a"}, {Name: "x", Kind: "image", Path: "b"}}
		}, true},
		{"labels layer is an image", func(c *Config) {
			c.Layers = []LayerConfig{{Name: "raw", Kind: "image", Path: "a"}}
			c.Review.LabelsLayer = "raw"
		}, true},
		{"labels layer missing", func(c *Config) { c.Review.LabelsLayer = "seg" }, true},
		{"valid layers", func(c *Config) {
			c.Layers = []LayerConfig{{Name: "raw", Kind: "image", Path: "a"}, {Name: "seg", Kind: "labels", Path: "b"}}
			c.Review.LabelsLayer = "seg"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLabelsLayerNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layers = []LayerConfig{
		{Name: "raw", Kind: "image", Path: "a"},
		{Name: "seg", Kind: "labels", Path: "b"},
		{Name: "gt", Kind: "labels", Path: "c"},
	}
	if got := cfg.LabelsLayerNames(); !reflect.DeepEqual(got, []string{"seg", "gt"}) {
		t.Errorf("Expected [seg gt], got %v", got)
	}
}

func TestSaveConfigReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labelreview.yaml")
	if err := os.WriteFile(path, []byte("review: [broken"), 0644); err != nil {
		t.Fatalf("Failed to seed config: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Review.Padding = 7
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Review.Padding != 7 {
		t.Errorf("Expected padding 7, got %d", loaded.Review.Padding)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected only the config file in %s, got %d entries", dir, len(entries))
	}
}
