package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
reading:
  font_size: 18
  line_height: 1.4
  css_enabled: true
  viewport:
    width: 1024
    height: 768

images:
  max_width: 900
  jpeg_quality: 70

logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Reading.FontSize != 18 {
		t.Errorf("Expected font size 18, got %g", cfg.Reading.FontSize)
	}
	if cfg.Reading.Viewport.Width != 1024 {
		t.Errorf("Expected viewport width 1024, got %g", cfg.Reading.Viewport.Width)
	}
	if cfg.Images.MaxWidth != 900 {
		t.Errorf("Expected max width 900, got %d", cfg.Images.MaxWidth)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestLoad_DefaultsFillMissingFields(t *testing.T) {
	path := writeConfig(t, `
reading:
  font_size: 20
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Reading.FontSize != 20 {
		t.Errorf("Expected font size 20, got %g", cfg.Reading.FontSize)
	}
	if cfg.Reading.LineHeight != 1.6 {
		t.Errorf("Expected default line height 1.6, got %g", cfg.Reading.LineHeight)
	}
	if cfg.Reading.Viewport.Width != 800 {
		t.Errorf("Expected default viewport width 800, got %g", cfg.Reading.Viewport.Width)
	}
	if !cfg.Reading.CSSEnabled {
		t.Error("Expected CSS enabled by default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PF_READING_FONT_SIZE", "24")
	t.Setenv("PF_VIEWPORT_WIDTH", "640")
	t.Setenv("PF_LOG_LEVEL", "warn")

	path := writeConfig(t, `
reading:
  font_size: 14
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Reading.FontSize != 24 {
		t.Errorf("Expected overridden font size 24, got %g", cfg.Reading.FontSize)
	}
	if cfg.Reading.Viewport.Width != 640 {
		t.Errorf("Expected overridden viewport width 640, got %g", cfg.Reading.Viewport.Width)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected overridden log level 'warn', got '%s'", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "font size too small",
			modify:  func(c *Config) { c.Reading.FontSize = 8 },
			wantErr: true,
		},
		{
			name:    "font size too large",
			modify:  func(c *Config) { c.Reading.FontSize = 48 },
			wantErr: true,
		},
		{
			name:    "negative line height",
			modify:  func(c *Config) { c.Reading.LineHeight = -1 },
			wantErr: true,
		},
		{
			name:    "zero viewport",
			modify:  func(c *Config) { c.Reading.Viewport.Width = 0 },
			wantErr: true,
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: true,
		},
		{
			name:    "quality defaulted when out of range",
			modify:  func(c *Config) { c.Images.JPEGQuality = 150 },
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenderConfig(t *testing.T) {
	cfg := GetDefault()
	rc := cfg.RenderConfig()
	if err := rc.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if rc.FontSize != cfg.Reading.FontSize {
		t.Errorf("FontSize = %g, want %g", rc.FontSize, cfg.Reading.FontSize)
	}
	if rc.Viewport.Height != cfg.Reading.Viewport.Height {
		t.Errorf("Viewport.Height = %g, want %g", rc.Viewport.Height, cfg.Reading.Viewport.Height)
	}
}
