package renderer

import (
	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/outline"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// AllLayers is a culling mask that accepts every layer.
const AllLayers uint32 = 0xFFFFFFFF

// Frame holds the per-frame camera state a flush draws with.
type Frame struct {
	ViewProj     math.Mat4
	PrevViewProj math.Mat4
	// CullingMask selects which object layers are drawn: layer L is drawn
	// when bit L is set.
	CullingMask uint32
	LightDir    math.Vec3
	Ambient     float32
}

// Queue records draw calls in submission order. It implements
// outline.Surface.
type Queue struct {
	calls []outline.DrawCall
}

var _ outline.Surface = (*Queue)(nil)

// Submit appends dc. The property block is copied so the caller may
// reuse it for the next draw.
func (q *Queue) Submit(dc outline.DrawCall) {
	if dc.Properties != nil {
		dc.Properties = dc.Properties.Clone()
	}
	if dc.PrevLocalToWorld != nil {
		prev := *dc.PrevLocalToWorld
		dc.PrevLocalToWorld = &prev
	}
	q.calls = append(q.calls, dc)
}

// Len returns the number of queued draws.
func (q *Queue) Len() int {
	return len(q.calls)
}

// Calls returns the queued draws.
func (q *Queue) Calls() []outline.DrawCall {
	return q.calls
}

// Reset drops every queued draw, keeping capacity.
func (q *Queue) Reset() {
	clear(q.calls)
	q.calls = q.calls[:0]
}

// LayerVisible reports whether layer passes mask. Layers outside 0..31
// never pass.
func LayerVisible(mask uint32, layer int32) bool {
	if layer < 0 || layer > 31 {
		return false
	}
	return mask&(1<<uint32(layer)) != 0
}

// InFrustum reports whether any part of b may be visible under viewProj.
// It is conservative: a box is only rejected when all eight corners lie
// outside the same clip plane.
func InFrustum(viewProj math.Mat4, b math.Bounds) bool {
	var outside [6]int
	for _, c := range b.Corners() {
		p := viewProj.MulVec4(math.Vec4{c.X, c.Y, c.Z, 1})
		x, y, z, w := p[0], p[1], p[2], p[3]
		if x < -w {
			outside[0]++
		}
		if x > w {
			outside[1]++
		}
		if y < -w {
			outside[2]++
		}
		if y > w {
			outside[3]++
		}
		if z < -w {
			outside[4]++
		}
		if z > w {
			outside[5]++
		}
	}
	for _, n := range outside {
		if n == 8 {
			return false
		}
	}
	return true
}

// StencilRef returns the stencil reference of dc: the property block
// value when set, else the material value.
func StencilRef(dc outline.DrawCall) int32 {
	if dc.Properties != nil && dc.Properties.HasInt(material.StencilRefProperty) {
		return dc.Properties.GetInt(material.StencilRefProperty)
	}
	return dc.Material.GetInt(material.StencilRefProperty)
}

// PreviousTransform returns the previous local-to-world of dc, falling
// back to the current one on the first frame.
func PreviousTransform(dc outline.DrawCall) math.Mat4 {
	if dc.PrevLocalToWorld != nil {
		return *dc.PrevLocalToWorld
	}
	return dc.LocalToWorld
}
