package math

import stdmath "math"

// Bounds is an axis-aligned bounding box stored as centre and extents
// (half size). The zero value is an empty box at the origin.
type Bounds struct {
	Center  Vec3
	Extents Vec3
}

// NewBounds creates bounds from a centre and a full size.
func NewBounds(center, size Vec3) Bounds {
	return Bounds{Center: center, Extents: size.Scale(0.5).Abs()}
}

// BoundsFromPoints returns the smallest box containing every point.
// An empty slice yields the zero Bounds.
func BoundsFromPoints(points []Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	minP := Vec3{stdmath.MaxFloat32, stdmath.MaxFloat32, stdmath.MaxFloat32}
	maxP := Vec3{-stdmath.MaxFloat32, -stdmath.MaxFloat32, -stdmath.MaxFloat32}
	for _, p := range points {
		minP = Vec3{min(minP.X, p.X), min(minP.Y, p.Y), min(minP.Z, p.Z)}
		maxP = Vec3{max(maxP.X, p.X), max(maxP.Y, p.Y), max(maxP.Z, p.Z)}
	}
	return Bounds{
		Center:  minP.Add(maxP).Scale(0.5),
		Extents: maxP.Sub(minP).Scale(0.5),
	}
}

// Size returns the full size of the box.
func (b Bounds) Size() Vec3 {
	return b.Extents.Scale(2)
}

// Min returns the minimum corner.
func (b Bounds) Min() Vec3 {
	return b.Center.Sub(b.Extents)
}

// Max returns the maximum corner.
func (b Bounds) Max() Vec3 {
	return b.Center.Add(b.Extents)
}

// Expand grows the full size by amount on every axis.
func (b Bounds) Expand(amount float32) Bounds {
	half := amount * 0.5
	b.Extents = b.Extents.Add(Vec3{half, half, half})
	return b
}

// Contains reports whether p lies inside or on the box.
func (b Bounds) Contains(p Vec3) bool {
	lo, hi := b.Min(), b.Max()
	return p.X >= lo.X && p.X <= hi.X &&
		p.Y >= lo.Y && p.Y <= hi.Y &&
		p.Z >= lo.Z && p.Z <= hi.Z
}

// Corners returns the eight corners of the box.
func (b Bounds) Corners() [8]Vec3 {
	lo, hi := b.Min(), b.Max()
	return [8]Vec3{
		{lo.X, lo.Y, lo.Z}, {hi.X, lo.Y, lo.Z},
		{lo.X, hi.Y, lo.Z}, {hi.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z}, {hi.X, lo.Y, hi.Z},
		{lo.X, hi.Y, hi.Z}, {hi.X, hi.Y, hi.Z},
	}
}

// Transform returns the axis-aligned box around the eight corners of b
// transformed by m.
func (b Bounds) Transform(m Mat4) Bounds {
	corners := b.Corners()
	for i, c := range corners {
		corners[i] = m.TransformPoint(c)
	}
	return BoundsFromPoints(corners[:])
}
