// Package config handles viewer and bake configuration loading and management.
package config

import (
	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/outline"
)

// Config holds all tool settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Outline  OutlineConfig  `yaml:"outline"`
	Bake     BakeConfig     `yaml:"bake"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	FPSLimit   int        `yaml:"fps_limit"`
	Background [4]float32 `yaml:"background"`
}

// OutlineConfig holds the per-object outline settings. A value is only
// applied when its override flag is set.
type OutlineConfig struct {
	Enabled bool `yaml:"enabled"`

	CustomizeThickness bool       `yaml:"customize_thickness"`
	Thickness          float32    `yaml:"thickness"`
	CustomizeColor     bool       `yaml:"customize_color"`
	Color              [4]float32 `yaml:"color"`
	OverrideLayer      bool       `yaml:"override_layer"`
	Layer              int32      `yaml:"layer"`
	OverrideStencil    bool       `yaml:"override_stencil"`
	StencilRef         int32      `yaml:"stencil_ref"`
}

// Apply copies every overridden value into s. Fields whose flag is off
// keep resolving through s's fallbacks.
func (c OutlineConfig) Apply(s *outline.Settings) {
	if c.CustomizeThickness {
		s.SetThickness(c.Thickness)
	}
	if c.CustomizeColor {
		s.SetColor(material.Color{R: c.Color[0], G: c.Color[1], B: c.Color[2], A: c.Color[3]})
	}
	if c.OverrideLayer {
		s.SetLayer(c.Layer)
	}
	if c.OverrideStencil {
		s.SetStencilRef(c.StencilRef)
	}
}

// Capture records the current outline state so Save persists it. Only
// overridden values are written; the rest keep following the fallbacks.
func (c *OutlineConfig) Capture(s *outline.Settings, enabled bool) {
	c.Enabled = enabled
	c.CustomizeThickness = s.CustomizeThickness()
	if c.CustomizeThickness {
		c.Thickness = s.Thickness()
	}
	c.CustomizeColor = s.CustomizeColor()
	if c.CustomizeColor {
		col := s.Color()
		c.Color = [4]float32{col.R, col.G, col.B, col.A}
	}
	c.OverrideLayer = s.OverrideLayer()
	if c.OverrideLayer {
		c.Layer = s.Layer()
	}
	c.OverrideStencil = s.OverrideStencil()
	if c.OverrideStencil {
		c.StencilRef = s.StencilRef()
	}
}

// BakeConfig holds outline bake settings.
type BakeConfig struct {
	OutputDir string `yaml:"output_dir"` // Where baked .omsh files go
	Reuse     bool   `yaml:"reuse"`      // Copy the source mesh instead of welding normals
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			Background: [4]float32{0.18, 0.2, 0.24, 1},
		},
		Outline: OutlineConfig{
			Enabled:    true,
			Thickness:  outline.DefaultThickness,
			Color:      [4]float32{1, 1, 1, 1},
			StencilRef: outline.DefaultStencilRef,
		},
		Bake: BakeConfig{
			OutputDir: "outlines",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
