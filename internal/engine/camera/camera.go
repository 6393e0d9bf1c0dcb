// Package camera provides the orbit camera used by the outline viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-outline/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Projection
	FovY      float32 // Vertical field of view (radians)
	Near, Far float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5.0,
		RotationX:       0.5,
		RotationY:       0.6,
		FovY:            math32.Pi / 4,
		Near:            0.05,
		Far:             500.0,
		MinDistance:     0.2,
		MaxDistance:     200.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sinX, cosX := math32.Sincos(c.RotationX)
	sinY, cosY := math32.Sincos(c.RotationY)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cosX * sinY,
		Y: c.Distance * sinX,
		Z: c.Distance * cosX * cosY,
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProj returns projection * view.
func (c *OrbitCamera) ViewProj(aspect float32) math.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity

	// Clamp pitch
	if c.RotationX < c.MinPitch {
		c.RotationX = c.MinPitch
	}
	if c.RotationX > c.MaxPitch {
		c.RotationX = c.MaxPitch
	}
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// FitToBounds centers the camera on b and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(b math.Bounds) {
	c.Center = b.Center

	radius := b.Extents.Length()
	if radius == 0 {
		radius = 1
	}
	c.Distance = radius / math32.Sin(c.FovY/2) * 1.1
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.MaxDistance = c.Distance * 4
	}
	if c.Far < c.Distance+radius*2 {
		c.Far = c.Distance + radius*2
	}
}
