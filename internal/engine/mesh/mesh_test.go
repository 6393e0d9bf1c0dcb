package mesh

import (
	"errors"
	"testing"

	"github.com/Faultbox/midgard-outline/pkg/math"
)

func TestNewCube(t *testing.T) {
	c := NewCube(2)

	if c.VertexCount() != 24 {
		t.Errorf("expected 24 vertices, got %d", c.VertexCount())
	}
	if c.SubMeshCount() != 2 {
		t.Errorf("expected 2 sub-meshes, got %d", c.SubMeshCount())
	}
	if c.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", c.TriangleCount())
	}
	for i, sm := range c.SubMeshes {
		if len(sm.Indices)/3 != 6 {
			t.Errorf("sub-mesh %d: expected 6 triangles, got %d", i, len(sm.Indices)/3)
		}
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("cube should validate: %v", err)
	}

	distinct := map[math.Vec3]struct{}{}
	for _, p := range c.Positions {
		distinct[p] = struct{}{}
	}
	if len(distinct) != 8 {
		t.Errorf("expected 8 distinct corner positions, got %d", len(distinct))
	}

	b := c.Bounds()
	if b.Size() != (math.Vec3{X: 2, Y: 2, Z: 2}) {
		t.Errorf("expected bounds size 2, got %v", b.Size())
	}
}

func TestCubeWindingMatchesNormals(t *testing.T) {
	c := NewCube(1)
	for _, sm := range c.SubMeshes {
		for i := 0; i < len(sm.Indices); i += 3 {
			a := c.Positions[sm.Indices[i]]
			b := c.Positions[sm.Indices[i+1]]
			d := c.Positions[sm.Indices[i+2]]
			faceNormal := b.Sub(a).Cross(d.Sub(a))
			if faceNormal.Dot(c.Normals[sm.Indices[i]]) <= 0 {
				t.Fatalf("triangle %d winds against its normal", i/3)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mesh    *Mesh
		wantErr error
	}{
		{
			name: "normal mismatch",
			mesh: &Mesh{
				Positions: []math.Vec3{{}, {}},
				Normals:   []math.Vec3{{}},
			},
			wantErr: ErrNormalCountMismatch,
		},
		{
			name: "uv mismatch",
			mesh: &Mesh{
				Positions: []math.Vec3{{}},
				Normals:   []math.Vec3{{}},
				UVs:       []math.Vec2{{}, {}},
			},
			wantErr: ErrUVCountMismatch,
		},
		{
			name: "index out of range",
			mesh: &Mesh{
				Positions: []math.Vec3{{}, {}, {}},
				Normals:   []math.Vec3{{}, {}, {}},
				SubMeshes: []SubMesh{{Indices: []uint32{0, 1, 3}}},
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "partial triangle",
			mesh: &Mesh{
				Positions: []math.Vec3{{}, {}, {}},
				Normals:   []math.Vec3{{}, {}, {}},
				SubMeshes: []SubMesh{{Indices: []uint32{0, 1}}},
			},
			wantErr: ErrPartialPrimitive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := NewCube(1)
	clone := c.Clone()
	clone.Positions[0] = math.Vec3{X: 9}
	clone.SubMeshes[0].Indices[0] = 7

	if c.Positions[0] == clone.Positions[0] {
		t.Error("clone shares position storage")
	}
	if c.SubMeshes[0].Indices[0] == 7 {
		t.Error("clone shares index storage")
	}
}
