package config

// Config is the application configuration.
type Config struct {
	Reading ReadingConfig `yaml:"reading"`
	Images  ImagesConfig  `yaml:"images"`
	Logging LoggingConfig `yaml:"logging"`
}

// ReadingConfig holds pagination and typography settings.
type ReadingConfig struct {
	FontSize   float64 `yaml:"font_size"`   // px
	LineHeight float64 `yaml:"line_height"` // ratio of font size
	CSSEnabled bool    `yaml:"css_enabled"`
	Viewport   struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"viewport"`
}

// ImagesConfig holds image optimization settings.
type ImagesConfig struct {
	MaxWidth    int `yaml:"max_width"`
	JPEGQuality int `yaml:"jpeg_quality"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
