package outline

import (
	"github.com/google/uuid"

	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/internal/scene"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// Element draws the outline of one scene object. Create elements with
// Pipeline.Attach.
type Element struct {
	id       uuid.UUID
	pipeline *Pipeline
	object   *scene.Object
	enabled  bool

	outlineMesh      *mesh.Mesh
	prevLocalToWorld *math.Mat4
	props            *material.PropertyBlock
}

func newElement(p *Pipeline, obj *scene.Object) *Element {
	return &Element{
		id:       uuid.New(),
		pipeline: p,
		object:   obj,
		enabled:  true,
		props:    material.NewPropertyBlock(),
	}
}

// ID returns the element's unique id.
func (e *Element) ID() uuid.UUID {
	return e.id
}

// Object returns the scene object the element outlines.
func (e *Element) Object() *scene.Object {
	return e.object
}

// SetEnabled enables or disables the element itself.
func (e *Element) SetEnabled(enabled bool) {
	e.enabled = enabled
}

// Enabled reports whether the element itself is enabled.
func (e *Element) Enabled() bool {
	return e.enabled
}

// SetOutlineMesh sets the mesh drawn for the outline. A mesh baked with
// welded normals is recommended.
func (e *Element) SetOutlineMesh(m *mesh.Mesh) {
	e.outlineMesh = m
}

// OutlineMesh returns the outline mesh, or nil if none is set.
func (e *Element) OutlineMesh() *mesh.Mesh {
	return e.outlineMesh
}

// ReuseMesh uses the object's own mesh as the outline mesh. Suitable for
// meshes that already have smooth normals.
func (e *Element) ReuseMesh() {
	e.outlineMesh = e.object.Mesh
}

// PreviousLocalToWorld returns the transform recorded by the last
// successful Render.
func (e *Element) PreviousLocalToWorld() (math.Mat4, bool) {
	if e.prevLocalToWorld == nil {
		return math.Mat4{}, false
	}
	return *e.prevLocalToWorld, true
}

// WorldBounds returns a box that contains the outline after the shader
// pushes vertices out by thickness.
func (e *Element) WorldBounds(thickness float32) math.Bounds {
	return e.outlineMesh.Bounds().Expand(thickness * 2).Transform(e.object.LocalToWorld())
}

// Render submits the mask pass and then the outline pass for every
// sub-mesh of the outline mesh. Nothing is drawn when the object is
// inactive, the element is disabled or no outline mesh is set.
func (e *Element) Render(shared *material.Material, p Param) error {
	if shared == nil {
		return ErrNilMaterial
	}
	if !e.object.ActiveInHierarchy() || !e.enabled || e.outlineMesh == nil {
		return nil
	}

	localToWorld := e.object.LocalToWorld()
	dc := DrawCall{
		Mesh:               e.outlineMesh,
		LocalToWorld:       localToWorld,
		PrevLocalToWorld:   e.prevLocalToWorld,
		RenderingLayerMask: e.object.RenderingLayerMask,
		WorldBounds:        e.WorldBounds(p.Thickness),
	}
	subMeshes := e.outlineMesh.SubMeshCount()

	dc.Material = e.pipeline.masks.Get(p.StencilRef)
	dc.Layer = e.object.Layer
	for i := 0; i < subMeshes; i++ {
		dc.SubMesh = i
		e.pipeline.surface.Submit(dc)
	}

	e.props.SetInt(material.StencilRefProperty, p.StencilRef)
	e.props.SetColor(material.ColorProperty, p.Color)
	e.props.SetFloat(material.ThicknessProperty, p.Thickness)

	dc.Material = shared
	dc.Properties = e.props
	dc.Layer = p.Layer
	for i := 0; i < subMeshes; i++ {
		dc.SubMesh = i
		e.pipeline.surface.Submit(dc)
	}

	e.prevLocalToWorld = &localToWorld
	return nil
}
