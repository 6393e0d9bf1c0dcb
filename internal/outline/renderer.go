package outline

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/logger"
)

// control holds the enable flag and settings shared by both renderers.
type control struct {
	enabled  bool
	settings *Settings
}

// SetOutline turns outline drawing on or off.
func (c *control) SetOutline(enable bool) {
	c.enabled = enable
}

// Enabled reports whether outlines are drawn.
func (c *control) Enabled() bool {
	return c.enabled
}

// Settings returns the parameter resolver.
func (c *control) Settings() *Settings {
	return c.settings
}

// OutlineColor returns the effective outline colour.
func (c *control) OutlineColor() material.Color {
	return c.settings.Color()
}

// Thickness returns the effective outline thickness.
func (c *control) Thickness() float32 {
	return c.settings.Thickness()
}

// SetOutlineColor sets the colour and enables colour customization.
func (c *control) SetOutlineColor(col material.Color) {
	c.settings.SetColor(col)
}

// SetOutlineThickness sets the thickness and enables thickness customization.
func (c *control) SetOutlineThickness(thickness float32) {
	c.settings.SetThickness(thickness)
}

// ToggleCustomizeColor enables colour customization.
func (c *control) ToggleCustomizeColor(customize bool) {
	c.settings.ToggleCustomizeColor(customize)
}

// ToggleCustomizeThickness enables thickness customization.
func (c *control) ToggleCustomizeThickness(customize bool) {
	c.settings.ToggleCustomizeThickness(customize)
}

// Renderer outlines a single object.
//
// Its stencil fallback is the shared material's stencil uniform. When the
// stencil override is on, the renderer draws with its own copy of the
// material carrying the override value, so the shared material is never
// modified.
type Renderer struct {
	control

	element  *Element
	shared   *material.Material
	instance *material.Material
}

var _ Outliner = (*Renderer)(nil)

// NewRenderer creates a disabled renderer for element.
func NewRenderer(element *Element, shared *material.Material) (*Renderer, error) {
	if shared == nil {
		return nil, ErrNilMaterial
	}
	if element == nil {
		return nil, ErrNilElement
	}
	r := &Renderer{
		element: element,
		shared:  shared,
	}
	r.settings = NewSettings(MaterialFallbacks(shared, element.Object(), true))
	return r, nil
}

// Element returns the element the renderer drives.
func (r *Renderer) Element() *Element {
	return r.element
}

// LateUpdate draws the outline for this frame if enabled.
func (r *Renderer) LateUpdate() error {
	if !r.enabled {
		return nil
	}
	return r.render()
}

func (r *Renderer) render() error {
	mat := r.shared
	if r.settings.OverrideStencil() {
		if r.instance == nil {
			r.instance = r.shared.Clone()
			logger.Debug("cloned outline material for stencil override",
				zap.Stringer("element", r.element.ID()),
				zap.String("material", r.shared.Name()),
			)
		}
		r.instance.SetInt(material.StencilRefProperty, r.settings.StencilRef())
		mat = r.instance
	}
	return r.element.Render(mat, r.settings.Param())
}
