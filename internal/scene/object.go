// Package scene provides the object hierarchy the outline renderer reads
// its per-object state from: active flags, layers, transforms and the
// source mesh.
package scene

import (
	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// DefaultRenderingLayerMask is the rendering layer mask of new objects.
const DefaultRenderingLayerMask uint32 = 1

// Object is a node in the scene hierarchy.
type Object struct {
	Name string

	// Layer is the culling layer the object is drawn on (0..31).
	Layer int32
	// RenderingLayerMask selects which renderers draw the object.
	RenderingLayerMask uint32

	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3

	// Mesh is the source mesh the object is drawn with, if any.
	Mesh *mesh.Mesh

	active     bool
	parent     *Object
	children   []*Object
	components []any
}

// NewObject creates an active object with an identity transform.
func NewObject(name string) *Object {
	return &Object{
		Name:               name,
		RenderingLayerMask: DefaultRenderingLayerMask,
		Rotation:           math.QuatIdentity(),
		Scale:              math.One3,
		active:             true,
	}
}

// SetActive sets the object's own active flag.
func (o *Object) SetActive(active bool) {
	o.active = active
}

// ActiveSelf returns the object's own active flag.
func (o *Object) ActiveSelf() bool {
	return o.active
}

// ActiveInHierarchy reports whether the object and all its ancestors are
// active.
func (o *Object) ActiveInHierarchy() bool {
	for n := o; n != nil; n = n.parent {
		if !n.active {
			return false
		}
	}
	return true
}

// AddChild reparents child under o.
func (o *Object) AddChild(child *Object) {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = o
	o.children = append(o.children, child)
}

func (o *Object) removeChild(child *Object) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// Parent returns the parent object or nil.
func (o *Object) Parent() *Object {
	return o.parent
}

// Children returns the direct children in insertion order.
func (o *Object) Children() []*Object {
	return o.children
}

// Walk visits o and its descendants depth-first, parents before children.
func (o *Object) Walk(fn func(*Object)) {
	fn(o)
	for _, c := range o.children {
		c.Walk(fn)
	}
}

// LocalMatrix returns the transform relative to the parent.
func (o *Object) LocalMatrix() math.Mat4 {
	return math.TRS(o.Position, o.Rotation, o.Scale)
}

// LocalToWorld returns the world transform.
func (o *Object) LocalToWorld() math.Mat4 {
	m := o.LocalMatrix()
	for p := o.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// LossyScale returns the approximate world scale.
func (o *Object) LossyScale() math.Vec3 {
	return o.LocalToWorld().LossyScale()
}

// TransformPoint converts a local-space point to world space.
func (o *Object) TransformPoint(p math.Vec3) math.Vec3 {
	return o.LocalToWorld().TransformPoint(p)
}
