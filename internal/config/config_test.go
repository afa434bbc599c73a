package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero variants", func(c *Config) { c.Augment.Variants = 0 }},
		{"probability above one", func(c *Config) { c.Augment.FlipP = 1.5 }},
		{"negative probability", func(c *Config) { c.Augment.DropoutP = -0.1 }},
		{"rotate limit too large", func(c *Config) { c.Augment.RotateLimit = 270 }},
		{"scale limit at one", func(c *Config) { c.Augment.ScaleLimit = 1 }},
		{"crop enabled without size", func(c *Config) { c.Augment.CropP = 0.5 }},
		{"quality out of range", func(c *Config) { c.Output.Quality = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	c := Default()
	c.Augment.Seed = 42
	c.Keypoints.Format = "xyas"

	if err := c.SaveToFile(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Augment.Seed != 42 {
		t.Errorf("seed = %d, want 42", loaded.Augment.Seed)
	}
	if loaded.Keypoints.Format != "xyas" {
		t.Errorf("keypoint format = %q, want %q", loaded.Keypoints.Format, "xyas")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
