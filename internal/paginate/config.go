package paginate

import (
	"errors"
	"fmt"
)

// Font size bounds in CSS pixels.
const (
	MinFontSize = 12
	MaxFontSize = 32
)

const (
	defaultFontSize       = 16
	defaultLineHeight     = 1.6
	defaultViewportWidth  = 800
	defaultViewportHeight = 600
)

// ErrInvalidConfig indicates a render configuration that cannot be clamped
// into a usable one.
var ErrInvalidConfig = errors.New("paginate: invalid render config")

// Viewport is the reading surface size in CSS pixels.
type Viewport struct {
	Width  float64
	Height float64
}

// RenderConfig parameterizes one pagination pass. It is immutable per pass;
// any field change invalidates every computed page.
type RenderConfig struct {
	// FontSize in px, clamped into [MinFontSize, MaxFontSize].
	FontSize float64

	// LineHeight as a ratio of FontSize (e.g. 1.6).
	LineHeight float64

	Viewport Viewport

	// CSSEnabled controls whether book CSS accompanies page content.
	CSSEnabled bool
}

// DefaultConfig returns the standard reading configuration.
func DefaultConfig() RenderConfig {
	return RenderConfig{
		FontSize:   defaultFontSize,
		LineHeight: defaultLineHeight,
		Viewport:   Viewport{Width: defaultViewportWidth, Height: defaultViewportHeight},
		CSSEnabled: true,
	}
}

// Normalize clamps FontSize into bounds and fills a missing LineHeight.
func (c RenderConfig) Normalize() RenderConfig {
	if c.FontSize < MinFontSize {
		c.FontSize = MinFontSize
	}
	if c.FontSize > MaxFontSize {
		c.FontSize = MaxFontSize
	}
	if c.LineHeight <= 0 {
		c.LineHeight = defaultLineHeight
	}
	return c
}

// Validate rejects configurations whose viewport leaves no usable page area.
func (c RenderConfig) Validate() error {
	if c.Viewport.Width <= sidebarAllowance {
		return fmt.Errorf("%w: viewport width %.0f leaves no content area", ErrInvalidConfig, c.Viewport.Width)
	}
	if c.Viewport.Height <= controlsAllowance {
		return fmt.Errorf("%w: viewport height %.0f leaves no page area", ErrInvalidConfig, c.Viewport.Height)
	}
	return nil
}
