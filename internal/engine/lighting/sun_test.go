package lighting

import (
	"testing"

	"github.com/Faultbox/midgard-outline/pkg/math"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float32
		want     math.Vec3
	}{
		{"horizon front", 0, 0, math.Vec3{Z: 1}},
		{"horizon right", 90, 0, math.Vec3{X: 1}},
		{"zenith", 0, 90, math.Vec3{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunDirection(tt.lon, tt.lat)
			if !got.ApproxEqual(tt.want, 1e-5) {
				t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
			}
		})
	}
}

func TestLightDirPointsAwayFromSun(t *testing.T) {
	s := DefaultSun
	if d := s.LightDir().Dot(s.ToSun()); d > -0.999 {
		t.Errorf("LightDir . ToSun = %v, want -1", d)
	}
	if l := s.LightDir().Length(); l < 0.999 || l > 1.001 {
		t.Errorf("LightDir length = %v, want 1", l)
	}
}
