package bake

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/internal/logger"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// Bake builds an outline mesh from src.
//
// Positions and UVs are copied verbatim and normals are replaced by
// WeldNormals. All sub-meshes are concatenated in order into a single
// triangle sub-mesh without renumbering any index. Duplicated per-face
// vertices are kept, so the vertex count always matches src.
func Bake(src *mesh.Mesh) (*mesh.Mesh, error) {
	if src == nil || len(src.Positions) == 0 {
		return nil, ErrNoVertexData
	}
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("baking %q: %w", src.Name, err)
	}

	smooth, err := WeldNormals(src.Positions, src.Normals)
	if err != nil {
		return nil, fmt.Errorf("baking %q: %w", src.Name, err)
	}

	indices := make([]uint32, 0, src.IndexCount())
	for i, sm := range src.SubMeshes {
		if sm.Topology != mesh.TopologyTriangles {
			return nil, fmt.Errorf("baking %q: sub-mesh %d is %s: %w", src.Name, i, sm.Topology, ErrUnsupportedTopology)
		}
		indices = append(indices, sm.Indices...)
	}

	out := &mesh.Mesh{
		Name:      src.Name + "_Outline",
		Positions: append([]math.Vec3(nil), src.Positions...),
		Normals:   smooth,
		UVs:       append([]math.Vec2(nil), src.UVs...),
		SubMeshes: []mesh.SubMesh{{
			Topology: mesh.TopologyTriangles,
			Indices:  indices,
		}},
	}

	logger.Debug("baked outline mesh",
		zap.String("source", src.Name),
		zap.Int("vertices", out.VertexCount()),
		zap.Int("sourceSubMeshes", src.SubMeshCount()),
		zap.Int("triangles", out.TriangleCount()),
	)
	return out, nil
}

// Reuse returns src itself as the outline mesh. Use it for meshes that
// already have smooth normals to avoid storing a second copy.
func Reuse(src *mesh.Mesh) (*mesh.Mesh, error) {
	if src == nil || len(src.Positions) == 0 {
		return nil, ErrNoVertexData
	}
	return src, nil
}

// Failure records a mesh that BakeAll could not bake.
type Failure struct {
	Index int
	Name  string
	Err   error
}

// Error implements error.
func (f Failure) Error() string {
	return fmt.Sprintf("mesh %d (%s): %v", f.Index, f.Name, f.Err)
}

// Unwrap returns the underlying bake error.
func (f Failure) Unwrap() error {
	return f.Err
}

// BakeAll bakes every source mesh in order. Meshes that fail are skipped:
// their slot in the result is nil and a Failure is reported for them.
func BakeAll(srcs []*mesh.Mesh) ([]*mesh.Mesh, []Failure) {
	out := make([]*mesh.Mesh, len(srcs))
	var failures []Failure
	for i, src := range srcs {
		baked, err := Bake(src)
		if err != nil {
			name := ""
			if src != nil {
				name = src.Name
			}
			logger.Warn("skipping mesh", zap.Int("index", i), zap.String("name", name), zap.Error(err))
			failures = append(failures, Failure{Index: i, Name: name, Err: err})
			continue
		}
		out[i] = baked
	}
	return out, failures
}
