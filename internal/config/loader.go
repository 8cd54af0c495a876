package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mizuki-h/pageflow/internal/paginate"
)

// Load reads and parses the configuration file.
// It also supports environment variable overrides with a PF_ prefix.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func Validate(cfg *Config) error {
	if cfg.Reading.FontSize < paginate.MinFontSize || cfg.Reading.FontSize > paginate.MaxFontSize {
		return fmt.Errorf("font size %g out of range [%d, %d]",
			cfg.Reading.FontSize, paginate.MinFontSize, paginate.MaxFontSize)
	}
	if cfg.Reading.LineHeight <= 0 {
		return fmt.Errorf("line height must be positive, got %g", cfg.Reading.LineHeight)
	}
	if cfg.Reading.Viewport.Width <= 0 || cfg.Reading.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %gx%g",
			cfg.Reading.Viewport.Width, cfg.Reading.Viewport.Height)
	}

	if cfg.Images.MaxWidth <= 0 {
		cfg.Images.MaxWidth = 1200 // default
	}
	if cfg.Images.JPEGQuality <= 0 || cfg.Images.JPEGQuality > 100 {
		cfg.Images.JPEGQuality = 85 // default
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
// Environment variables should be prefixed with PF_ (PageFlow).
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("PF_READING_FONT_SIZE"); val != "" {
		fmt.Sscanf(val, "%g", &cfg.Reading.FontSize)
	}
	if val := os.Getenv("PF_READING_LINE_HEIGHT"); val != "" {
		fmt.Sscanf(val, "%g", &cfg.Reading.LineHeight)
	}
	if val := os.Getenv("PF_VIEWPORT_WIDTH"); val != "" {
		fmt.Sscanf(val, "%g", &cfg.Reading.Viewport.Width)
	}
	if val := os.Getenv("PF_VIEWPORT_HEIGHT"); val != "" {
		fmt.Sscanf(val, "%g", &cfg.Reading.Viewport.Height)
	}
	if val := os.Getenv("PF_IMAGES_MAX_WIDTH"); val != "" {
		fmt.Sscanf(val, "%d", &cfg.Images.MaxWidth)
	}
	if val := os.Getenv("PF_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
}

// GetDefault returns a default configuration.
func GetDefault() *Config {
	cfg := &Config{
		Images: ImagesConfig{
			MaxWidth:    1200,
			JPEGQuality: 85,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
	rc := paginate.DefaultConfig()
	cfg.Reading.FontSize = rc.FontSize
	cfg.Reading.LineHeight = rc.LineHeight
	cfg.Reading.CSSEnabled = rc.CSSEnabled
	cfg.Reading.Viewport.Width = rc.Viewport.Width
	cfg.Reading.Viewport.Height = rc.Viewport.Height
	return cfg
}

// RenderConfig converts the reading settings into a pagination config.
func (c *Config) RenderConfig() paginate.RenderConfig {
	return paginate.RenderConfig{
		FontSize:   c.Reading.FontSize,
		LineHeight: c.Reading.LineHeight,
		CSSEnabled: c.Reading.CSSEnabled,
		Viewport: paginate.Viewport{
			Width:  c.Reading.Viewport.Width,
			Height: c.Reading.Viewport.Height,
		},
	}
}
