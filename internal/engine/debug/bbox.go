// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// BoundsEdgeIndices lists the 12 edges of a box as index pairs into
// math.Bounds.Corners.
var BoundsEdgeIndices = []uint32{
	// Back face, z = min (4 edges)
	0, 1, 1, 3, 3, 2, 2, 0,
	// Front face, z = max (4 edges)
	4, 5, 5, 7, 7, 6, 6, 4,
	// Edges along z (4 edges)
	0, 4, 1, 5, 2, 6, 3, 7,
}

// BoundsWireframe builds a line mesh outlining b in the space b is
// expressed in. The mesh has 8 vertices and one line sub-mesh.
func BoundsWireframe(b math.Bounds) *mesh.Mesh {
	corners := b.Corners()
	return &mesh.Mesh{
		Name:      "Bounds",
		Positions: corners[:],
		Normals:   make([]math.Vec3, len(corners)),
		SubMeshes: []mesh.SubMesh{{
			Topology: mesh.TopologyLines,
			Indices:  append([]uint32(nil), BoundsEdgeIndices...),
		}},
	}
}
