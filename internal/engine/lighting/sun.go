// Package lighting provides lighting utilities for 3D rendering.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-outline/pkg/math"
)

// Sun is a directional light given as angles in degrees.
type Sun struct {
	Longitude float32 // Rotation around Y (0-360)
	Latitude  float32 // Elevation from the horizon (0-90)
	Ambient   float32 // Light added regardless of orientation, 0-1
}

// DefaultSun lights the scene from the upper front right.
var DefaultSun = Sun{Longitude: 35, Latitude: 55, Ambient: 0.25}

// SunDirection converts longitude/latitude angles to a normalized vector
// pointing towards the sun.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lonRad := math.Radians(longitude)
	latRad := math.Radians(latitude)

	// Longitude is around Y axis, latitude is elevation from horizon
	return math.Vec3{
		X: math32.Cos(latRad) * math32.Sin(lonRad),
		Y: math32.Sin(latRad),
		Z: math32.Cos(latRad) * math32.Cos(lonRad),
	}
}

// ToSun returns the direction towards the sun.
func (s Sun) ToSun() math.Vec3 {
	return SunDirection(s.Longitude, s.Latitude)
}

// LightDir returns the direction the light travels, as shaders expect it.
func (s Sun) LightDir() math.Vec3 {
	return s.ToSun().Scale(-1)
}
