package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Augment   AugmentConfig  `json:"augment"`
	Keypoints KeypointConfig `json:"keypoints"`
	Boxes     BoxConfig      `json:"boxes"`
	Output    OutputConfig   `json:"output"`
}

// AugmentConfig holds the tuning knobs for the built-in transform chain
type AugmentConfig struct {
	Seed           int64   `json:"seed"`
	Variants       int     `json:"variants"`
	FlipP          float64 `json:"flip_p"`
	VerticalFlipP  float64 `json:"vertical_flip_p"`
	Rotate90P      float64 `json:"rotate90_p"`
	RotateP        float64 `json:"rotate_p"`
	RotateLimit    float64 `json:"rotate_limit"`
	ScaleP         float64 `json:"scale_p"`
	ScaleLimit     float64 `json:"scale_limit"`
	CropP          float64 `json:"crop_p"`
	CropHeight     int     `json:"crop_height"`
	CropWidth      int     `json:"crop_width"`
	DropoutP       float64 `json:"dropout_p"`
	DropoutHoles   int     `json:"dropout_holes"`
	DropoutMaxSize int     `json:"dropout_max_size"`
}

// KeypointConfig holds the external keypoint representation
type KeypointConfig struct {
	Format      string   `json:"format"`
	AngleUnit   string   `json:"angle_unit"`
	LabelFields []string `json:"label_fields"`
}

// BoxConfig holds the external bounding-box representation
type BoxConfig struct {
	Format      string   `json:"format"`
	LabelFields []string `json:"label_fields"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format    string `json:"format"`
	OutputDir string `json:"output_dir"`
	Prefix    string `json:"prefix"`
	Suffix    string `json:"suffix"`
	Quality   int    `json:"quality"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Augment: AugmentConfig{
			Variants:       1,
			FlipP:          0.5,
			RotateP:        0.5,
			RotateLimit:    15,
			ScaleLimit:     0.1,
			DropoutHoles:   8,
			DropoutMaxSize: 8,
		},
		Keypoints: KeypointConfig{
			Format:    "xy",
			AngleUnit: "degrees",
		},
		Boxes: BoxConfig{
			Format: "pascal_voc",
		},
		Output: OutputConfig{
			Format:    "jpg",
			OutputDir: "./output",
			Prefix:    "",
			Suffix:    "_aug",
			Quality:   90,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Augment.Variants < 1 {
		return fmt.Errorf("augment.variants must be at least 1")
	}

	probs := map[string]float64{
		"augment.flip_p":          c.Augment.FlipP,
		"augment.vertical_flip_p": c.Augment.VerticalFlipP,
		"augment.rotate90_p":      c.Augment.Rotate90P,
		"augment.rotate_p":        c.Augment.RotateP,
		"augment.scale_p":         c.Augment.ScaleP,
		"augment.crop_p":          c.Augment.CropP,
		"augment.dropout_p":       c.Augment.DropoutP,
	}
	for name, p := range probs {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}

	if c.Augment.RotateLimit < 0 || c.Augment.RotateLimit > 180 {
		return fmt.Errorf("augment.rotate_limit must be between 0 and 180")
	}

	if c.Augment.ScaleLimit < 0 || c.Augment.ScaleLimit >= 1 {
		return fmt.Errorf("augment.scale_limit must be in [0, 1)")
	}

	if c.Augment.CropP > 0 && (c.Augment.CropHeight < 1 || c.Augment.CropWidth < 1) {
		return fmt.Errorf("augment.crop_height and augment.crop_width must be positive when cropping is enabled")
	}

	if c.Augment.DropoutHoles < 1 {
		return fmt.Errorf("augment.dropout_holes must be positive")
	}

	if c.Augment.DropoutMaxSize < 1 {
		return fmt.Errorf("augment.dropout_max_size must be positive")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-augment", "config.json")
}
