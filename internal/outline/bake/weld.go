// Package bake turns a source mesh into an outline mesh whose normals are
// welded across hard edges, so that pushing vertices out along the normal
// leaves no gaps at seams.
package bake

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-outline/pkg/math"
)

// Bake errors.
var (
	ErrNoVertexData        = errors.New("source mesh has no vertex data")
	ErrLengthMismatch      = errors.New("position and normal counts differ")
	ErrUnsupportedTopology = errors.New("only triangle sub-meshes can be baked")
)

// WeldNormals returns one normal per input vertex where every vertex that
// shares an identical position gets the normalized sum of the normals at
// that position. Positions are compared exactly; nearly coincident
// vertices are not merged.
//
// When the normals at a position cancel out, each vertex there keeps its
// own input normal. The result never contains NaN.
func WeldNormals(positions, normals []math.Vec3) ([]math.Vec3, error) {
	if len(positions) != len(normals) {
		return nil, fmt.Errorf("%w: %d positions, %d normals", ErrLengthMismatch, len(positions), len(normals))
	}

	sums := make(map[math.Vec3]math.Vec3, len(positions))
	for i, p := range positions {
		sums[p] = sums[p].Add(normals[i])
	}

	smooth := make([]math.Vec3, len(positions))
	for i, p := range positions {
		sum := sums[p]
		if sum.Length() == 0 {
			smooth[i] = normals[i]
			continue
		}
		smooth[i] = sum.Normalize()
	}
	return smooth, nil
}
