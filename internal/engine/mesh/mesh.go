// Package mesh holds the vertex/index data shared by the bake step, the
// asset formats and the outline renderer.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-outline/pkg/math"
)

// Mesh validation errors.
var (
	ErrNormalCountMismatch = errors.New("normal count does not match vertex count")
	ErrUVCountMismatch     = errors.New("uv count does not match vertex count")
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrPartialPrimitive    = errors.New("index count is not a multiple of the primitive size")
)

// Topology is the primitive type of a sub-mesh.
type Topology int

const (
	TopologyTriangles Topology = iota
	TopologyLines
	TopologyPoints
)

// String returns a human-readable topology name.
func (t Topology) String() string {
	switch t {
	case TopologyTriangles:
		return "Triangles"
	case TopologyLines:
		return "Lines"
	case TopologyPoints:
		return "Points"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// PrimitiveSize returns the number of indices per primitive.
func (t Topology) PrimitiveSize() int {
	switch t {
	case TopologyTriangles:
		return 3
	case TopologyLines:
		return 2
	default:
		return 1
	}
}

// SubMesh is a slice of the index buffer rendered with one draw call.
type SubMesh struct {
	Topology Topology
	Indices  []uint32
}

// Mesh is an indexed mesh with index-aligned position, normal and uv
// channels. UVs may be empty.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	SubMeshes []SubMesh

	bounds      math.Bounds
	boundsValid bool
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// SubMeshCount returns the number of sub-meshes.
func (m *Mesh) SubMeshCount() int {
	return len(m.SubMeshes)
}

// IndexCount returns the total number of indices across sub-meshes.
func (m *Mesh) IndexCount() int {
	n := 0
	for _, sm := range m.SubMeshes {
		n += len(sm.Indices)
	}
	return n
}

// TriangleCount returns the number of triangles across triangle sub-meshes.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, sm := range m.SubMeshes {
		if sm.Topology == TopologyTriangles {
			n += len(sm.Indices) / 3
		}
	}
	return n
}

// Bounds returns the local-space bounding box of the positions.
// The result is cached until RecalculateBounds is called.
func (m *Mesh) Bounds() math.Bounds {
	if !m.boundsValid {
		m.RecalculateBounds()
	}
	return m.bounds
}

// RecalculateBounds recomputes the cached bounds from Positions.
func (m *Mesh) RecalculateBounds() {
	m.bounds = math.BoundsFromPoints(m.Positions)
	m.boundsValid = true
}

// Validate checks channel lengths and index ranges.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != n {
		return fmt.Errorf("%w: %d normals, %d vertices", ErrNormalCountMismatch, len(m.Normals), n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != n {
		return fmt.Errorf("%w: %d uvs, %d vertices", ErrUVCountMismatch, len(m.UVs), n)
	}
	for i, sm := range m.SubMeshes {
		if len(sm.Indices)%sm.Topology.PrimitiveSize() != 0 {
			return fmt.Errorf("sub-mesh %d: %w", i, ErrPartialPrimitive)
		}
		for _, idx := range sm.Indices {
			if int(idx) >= n {
				return fmt.Errorf("sub-mesh %d: %w: %d >= %d", i, ErrIndexOutOfRange, idx, n)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:      m.Name,
		Positions: append([]math.Vec3(nil), m.Positions...),
		Normals:   append([]math.Vec3(nil), m.Normals...),
		UVs:       append([]math.Vec2(nil), m.UVs...),
		SubMeshes: make([]SubMesh, len(m.SubMeshes)),
	}
	for i, sm := range m.SubMeshes {
		c.SubMeshes[i] = SubMesh{
			Topology: sm.Topology,
			Indices:  append([]uint32(nil), sm.Indices...),
		}
	}
	return c
}
