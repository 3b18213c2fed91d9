package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// MissingMetadataKeep keeps files without any resolvable timestamp and
// routes them to the review bucket; MissingMetadataSkip drops them.
const (
	MissingMetadataKeep = "keep"
	MissingMetadataSkip = "skip"
)

type Config struct {
	ImageExt        []string `mapstructure:"image_extensions"`
	MissingMetadata string   `mapstructure:"missing_metadata"`
	MtimeFallback   bool     `mapstructure:"mtime_fallback"`
	Workers         int      `mapstructure:"workers"`
	OutputName      string   `mapstructure:"output_name"`
}

func LoadConfig() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find user config dir: %w", err)
	}

	viper.SetConfigName("photofix")
	viper.SetConfigType("toml")
	viper.AddConfigPath(filepath.Join(configDir, "photofix"))

	// Set defaults:
	viper.SetDefault("image_extensions", []string{".jpg", ".jpeg", ".png", ".heic", ".heif", ".gif", ".bmp", ".webp"})
	viper.SetDefault("missing_metadata", MissingMetadataKeep)
	viper.SetDefault("mtime_fallback", true)
	viper.SetDefault("workers", 4)
	viper.SetDefault("output_name", "fixed_photos.zip")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; that's OK, just use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks fields that have no safe zero value.
func (c *Config) Validate() error {
	if c.MissingMetadata != MissingMetadataKeep && c.MissingMetadata != MissingMetadataSkip {
		return fmt.Errorf("missing_metadata must be %q or %q, got %q",
			MissingMetadataKeep, MissingMetadataSkip, c.MissingMetadata)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}

// IsImage reports whether the file name carries a configured image extension.
func (c *Config) IsImage(name string) bool {
	ext := normalizedExt(name)
	for _, e := range c.ImageExt {
		if ext == e {
			return true
		}
	}
	return false
}
