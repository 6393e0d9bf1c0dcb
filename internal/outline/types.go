// Package outline draws silhouette outlines around meshes with a two-pass
// stencil trick: a mask pass marks the pixels covered by the unexpanded
// mesh, then an outline pass draws the mesh pushed out along its normals
// only where the mask was not written.
package outline

import (
	"errors"

	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// Outline errors.
var (
	ErrNilMaterial = errors.New("outline material is nil")
	ErrNilSurface  = errors.New("draw surface is nil")
	ErrNilElement  = errors.New("outline element is nil")
)

// Param is the resolved set of values one frame of outline drawing uses.
type Param struct {
	Color      material.Color
	Thickness  float32
	Layer      int32
	StencilRef int32
}

// DrawCall is one sub-mesh draw submitted to a Surface.
type DrawCall struct {
	Mesh    *mesh.Mesh
	SubMesh int

	Material *material.Material
	// Properties overrides material uniforms for this draw. May be nil.
	Properties *material.PropertyBlock

	LocalToWorld math.Mat4
	// PrevLocalToWorld is the transform of the previous frame, nil on the
	// first frame an object is drawn.
	PrevLocalToWorld *math.Mat4

	Layer              int32
	RenderingLayerMask uint32
	WorldBounds        math.Bounds
}

// Surface accepts draw calls. Implementations may draw immediately or
// queue the call for the current frame, but must keep submission order.
type Surface interface {
	Submit(dc DrawCall)
}

// Outliner is the control surface shared by the single-object and
// composite outline renderers.
type Outliner interface {
	// SetOutline turns outline drawing on or off.
	SetOutline(enable bool)
	// OutlineColor returns the effective outline colour.
	OutlineColor() material.Color
	// Thickness returns the effective outline thickness.
	Thickness() float32
	// SetOutlineColor sets the colour and enables colour customization.
	SetOutlineColor(c material.Color)
	// SetOutlineThickness sets the thickness and enables thickness customization.
	SetOutlineThickness(thickness float32)
	// ToggleCustomizeColor enables colour customization.
	ToggleCustomizeColor(customize bool)
	// ToggleCustomizeThickness enables thickness customization.
	ToggleCustomizeThickness(customize bool)
}
