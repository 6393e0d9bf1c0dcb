package material

import "github.com/Faultbox/midgard-outline/internal/engine/shaders"

// Built-in shader names.
const (
	LitShaderName              = "outline/Lit"
	StencilOverwriteShaderName = "outline/StencilOverwrite"
	OutlineShaderName          = "outline/Outline"
	UnlitShaderName            = "outline/Unlit"
)

// Default uniform values of the built-in outline shader.
const (
	DefaultOutlineThickness  float32 = 0.03
	DefaultOutlineStencilRef int32   = 4
)

// LitShader draws a mesh with a single directional light.
func LitShader() *Shader {
	s := &Shader{
		Name:           LitShaderName,
		VertexSource:   shaders.LitVertexShader,
		FragmentSource: shaders.LitFragmentShader,
		Cull:           CullBack,
		ColorWrite:     true,
		DepthTest:      true,
		DepthWrite:     true,
	}
	s.Defaults.SetColor(ColorProperty, Color{0.8, 0.8, 0.8, 1})
	return s
}

// StencilOverwriteShader writes the draw's stencil reference wherever the
// unexpanded mesh covers the screen. It writes neither colour nor depth.
func StencilOverwriteShader() *Shader {
	return &Shader{
		Name:           StencilOverwriteShaderName,
		VertexSource:   shaders.StencilOverwriteVertexShader,
		FragmentSource: shaders.StencilOverwriteFragmentShader,
		Cull:           CullBack,
		Stencil: StencilState{
			Enabled:   true,
			Compare:   CompareAlways,
			Pass:      StencilReplace,
			Fail:      StencilKeep,
			ZFail:     StencilKeep,
			ReadMask:  0xFF,
			WriteMask: 0xFF,
		},
	}
}

// OutlineShader draws the mesh expanded along its normals by _Thickness,
// rejecting pixels where the stencil already holds _StencilRef.
func OutlineShader() *Shader {
	s := &Shader{
		Name:           OutlineShaderName,
		VertexSource:   shaders.OutlineVertexShader,
		FragmentSource: shaders.OutlineFragmentShader,
		Cull:           CullFront,
		ColorWrite:     true,
		DepthTest:      true,
		DepthWrite:     true,
		Stencil: StencilState{
			Enabled:  true,
			Compare:  CompareNotEqual,
			Pass:     StencilKeep,
			Fail:     StencilKeep,
			ZFail:    StencilKeep,
			ReadMask: 0xFF,
		},
	}
	s.Defaults.SetFloat(ThicknessProperty, DefaultOutlineThickness)
	s.Defaults.SetColor(ColorProperty, Black)
	s.Defaults.SetInt(StencilRefProperty, DefaultOutlineStencilRef)
	return s
}

// UnlitShader draws flat-coloured geometry such as debug bounds.
func UnlitShader() *Shader {
	s := &Shader{
		Name:           UnlitShaderName,
		VertexSource:   shaders.UnlitVertexShader,
		FragmentSource: shaders.UnlitFragmentShader,
		Cull:           CullOff,
		ColorWrite:     true,
		DepthTest:      true,
		DepthWrite:     true,
	}
	s.Defaults.SetColor(ColorProperty, Color{0, 1, 0, 1})
	return s
}

// DefaultLibrary returns a library holding the built-in shaders.
func DefaultLibrary() *Library {
	lib := NewLibrary()
	for _, s := range []*Shader{LitShader(), StencilOverwriteShader(), OutlineShader(), UnlitShader()} {
		// Built-in names are unique and sources are embedded.
		if err := lib.Register(s); err != nil {
			panic(err)
		}
	}
	return lib
}
