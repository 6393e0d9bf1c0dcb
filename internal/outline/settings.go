package outline

import (
	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/scene"
)

// Defaults of the user-facing values before anything is overridden.
const (
	DefaultThickness  float32 = 0.05
	DefaultStencilRef int32   = 4
)

// Fallbacks supplies the value of each field whose override is off.
type Fallbacks struct {
	Thickness  func() float32
	Color      func() material.Color
	Layer      func() int32
	StencilRef func() int32
}

// MaterialFallbacks reads thickness and colour from the shared material
// and the layer from owner. Stencil comes from the material's stencil
// uniform when stencilFromMaterial is set and is DefaultStencilRef
// otherwise.
func MaterialFallbacks(m *material.Material, owner *scene.Object, stencilFromMaterial bool) Fallbacks {
	f := Fallbacks{
		Thickness: func() float32 { return m.GetFloat(material.ThicknessProperty) },
		Color:     func() material.Color { return m.GetColor(material.ColorProperty) },
		Layer:     func() int32 { return owner.Layer },
		StencilRef: func() int32 {
			return DefaultStencilRef
		},
	}
	if stencilFromMaterial {
		f.StencilRef = func() int32 { return m.GetInt(material.StencilRefProperty) }
	}
	return f
}

// Settings resolves the four outline values. Each field independently
// uses its stored value when its override flag is set and its fallback
// otherwise. Setting a value turns its override on; nothing turns it back
// off.
type Settings struct {
	fallbacks Fallbacks

	thickness  float32
	color      material.Color
	layer      int32
	stencilRef int32

	customizeThickness bool
	customizeColor     bool
	overrideLayer      bool
	overrideStencil    bool
}

// NewSettings creates settings with every override off.
func NewSettings(f Fallbacks) *Settings {
	return &Settings{
		fallbacks:  f,
		thickness:  DefaultThickness,
		color:      material.White,
		stencilRef: DefaultStencilRef,
	}
}

// Thickness returns the effective thickness.
func (s *Settings) Thickness() float32 {
	if s.customizeThickness {
		return s.thickness
	}
	return s.fallbacks.Thickness()
}

// Color returns the effective colour.
func (s *Settings) Color() material.Color {
	if s.customizeColor {
		return s.color
	}
	return s.fallbacks.Color()
}

// Layer returns the effective outline layer.
func (s *Settings) Layer() int32 {
	if s.overrideLayer {
		return s.layer
	}
	return s.fallbacks.Layer()
}

// StencilRef returns the effective stencil reference.
func (s *Settings) StencilRef() int32 {
	if s.overrideStencil {
		return s.stencilRef
	}
	return s.fallbacks.StencilRef()
}

// SetThickness stores thickness and enables its override.
func (s *Settings) SetThickness(thickness float32) {
	s.customizeThickness = true
	s.thickness = thickness
}

// SetColor stores c and enables its override.
func (s *Settings) SetColor(c material.Color) {
	s.customizeColor = true
	s.color = c
}

// SetLayer stores layer and enables its override.
func (s *Settings) SetLayer(layer int32) {
	s.overrideLayer = true
	s.layer = layer
}

// SetStencilRef stores ref and enables its override.
func (s *Settings) SetStencilRef(ref int32) {
	s.overrideStencil = true
	s.stencilRef = ref
}

// ToggleCustomizeThickness enables the thickness override. The argument
// is ignored: customization can only be turned on.
func (s *Settings) ToggleCustomizeThickness(bool) {
	s.customizeThickness = true
}

// ToggleCustomizeColor enables the colour override. The argument is
// ignored: customization can only be turned on.
func (s *Settings) ToggleCustomizeColor(bool) {
	s.customizeColor = true
}

// CustomizeThickness reports whether the thickness override is on.
func (s *Settings) CustomizeThickness() bool { return s.customizeThickness }

// CustomizeColor reports whether the colour override is on.
func (s *Settings) CustomizeColor() bool { return s.customizeColor }

// OverrideLayer reports whether the layer override is on.
func (s *Settings) OverrideLayer() bool { return s.overrideLayer }

// OverrideStencil reports whether the stencil override is on.
func (s *Settings) OverrideStencil() bool { return s.overrideStencil }

// Param resolves all four values.
func (s *Settings) Param() Param {
	return Param{
		Color:      s.Color(),
		Thickness:  s.Thickness(),
		Layer:      s.Layer(),
		StencilRef: s.StencilRef(),
	}
}
