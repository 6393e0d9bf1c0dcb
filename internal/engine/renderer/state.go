package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-outline/internal/engine/material"
)

func glCompare(c material.CompareFunc) uint32 {
	switch c {
	case material.CompareNever:
		return gl.NEVER
	case material.CompareLess:
		return gl.LESS
	case material.CompareLessEqual:
		return gl.LEQUAL
	case material.CompareEqual:
		return gl.EQUAL
	case material.CompareNotEqual:
		return gl.NOTEQUAL
	case material.CompareGreaterEqual:
		return gl.GEQUAL
	case material.CompareGreater:
		return gl.GREATER
	default:
		return gl.ALWAYS
	}
}

func glStencilOp(op material.StencilOp) uint32 {
	switch op {
	case material.StencilZero:
		return gl.ZERO
	case material.StencilReplace:
		return gl.REPLACE
	case material.StencilIncrement:
		return gl.INCR
	case material.StencilDecrement:
		return gl.DECR
	case material.StencilInvert:
		return gl.INVERT
	default:
		return gl.KEEP
	}
}

// applyState sets the fixed-function state a shader is drawn with.
func applyState(s *material.Shader, stencilRef int32) {
	switch s.Cull {
	case material.CullOff:
		gl.Disable(gl.CULL_FACE)
	case material.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	gl.ColorMask(s.ColorWrite, s.ColorWrite, s.ColorWrite, s.ColorWrite)

	if s.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(s.DepthWrite)

	st := s.Stencil
	if !st.Enabled {
		gl.Disable(gl.STENCIL_TEST)
		return
	}
	gl.Enable(gl.STENCIL_TEST)
	gl.StencilFunc(glCompare(st.Compare), stencilRef, uint32(st.ReadMask))
	gl.StencilOp(glStencilOp(st.Fail), glStencilOp(st.ZFail), glStencilOp(st.Pass))
	gl.StencilMask(uint32(st.WriteMask))
}
