package formats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

func TestParseOMSH_MagicValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "empty data",
			data:    []byte{},
			wantErr: ErrTruncatedOMSHData,
		},
		{
			name:    "short magic",
			data:    []byte("OM"),
			wantErr: ErrTruncatedOMSHData,
		},
		{
			name:    "wrong magic",
			data:    []byte("GRSM\x01\x00"),
			wantErr: ErrInvalidOMSHMagic,
		},
		{
			name:    "unsupported major version",
			data:    []byte("OMSH\x02\x00"),
			wantErr: ErrUnsupportedOMSHVersion,
		},
		{
			name:    "header only",
			data:    []byte("OMSH\x01\x00"),
			wantErr: ErrTruncatedOMSHData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOMSH(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseOMSH() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOMSHRoundTripCube(t *testing.T) {
	src := mesh.NewCube(2)
	src.Name = "Cube_Outline"

	data, err := EncodeOMSH(src)
	if err != nil {
		t.Fatalf("EncodeOMSH() error = %v", err)
	}
	got, err := ParseOMSH(data)
	if err != nil {
		t.Fatalf("ParseOMSH() error = %v", err)
	}

	if got.Name != src.Name {
		t.Errorf("Name = %q, want %q", got.Name, src.Name)
	}
	if got.VertexCount() != 24 {
		t.Errorf("VertexCount() = %d, want 24", got.VertexCount())
	}
	if got.SubMeshCount() != src.SubMeshCount() {
		t.Fatalf("SubMeshCount() = %d, want %d", got.SubMeshCount(), src.SubMeshCount())
	}
	for i := range src.Positions {
		if got.Positions[i] != src.Positions[i] || got.Normals[i] != src.Normals[i] || got.UVs[i] != src.UVs[i] {
			t.Fatalf("vertex %d differs after round trip", i)
		}
	}
	for i, sm := range src.SubMeshes {
		if got.SubMeshes[i].Topology != sm.Topology {
			t.Errorf("sub-mesh %d topology = %v, want %v", i, got.SubMeshes[i].Topology, sm.Topology)
		}
		if !equalIndices(got.SubMeshes[i].Indices, sm.Indices) {
			t.Errorf("sub-mesh %d indices differ", i)
		}
	}
}

func TestOMSHWithoutUVs(t *testing.T) {
	src := &mesh.Mesh{
		Name:      "tri",
		Positions: []math.Vec3{{X: 0}, {X: 1}, {Y: 1}},
		Normals:   []math.Vec3{{Z: 1}, {Z: 1}, {Z: 1}},
		SubMeshes: []mesh.SubMesh{
			{Topology: mesh.TopologyTriangles, Indices: []uint32{0, 1, 2}},
			{Topology: mesh.TopologyLines, Indices: []uint32{0, 1}},
		},
	}

	data, err := EncodeOMSH(src)
	if err != nil {
		t.Fatalf("EncodeOMSH() error = %v", err)
	}
	h, err := ReadOMSHHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadOMSHHeader() error = %v", err)
	}
	if h.Flags&omshFlagHasUVs != 0 {
		t.Error("UV flag set for mesh without UVs")
	}
	if h.VertexCount != 3 || h.Name != "tri" {
		t.Errorf("header = %+v", h)
	}

	got, err := ParseOMSH(data)
	if err != nil {
		t.Fatalf("ParseOMSH() error = %v", err)
	}
	if len(got.UVs) != 0 {
		t.Errorf("len(UVs) = %d, want 0", len(got.UVs))
	}
	if got.SubMeshes[1].Topology != mesh.TopologyLines {
		t.Errorf("second sub-mesh topology = %v, want Lines", got.SubMeshes[1].Topology)
	}
}

func TestParseOMSHTruncatedBody(t *testing.T) {
	data, err := EncodeOMSH(mesh.NewCube(1))
	if err != nil {
		t.Fatalf("EncodeOMSH() error = %v", err)
	}
	for _, cut := range []int{12, len(data) / 2, len(data) - 1} {
		if _, err := ParseOMSH(data[:cut]); !errors.Is(err, ErrTruncatedOMSHData) {
			t.Errorf("cut at %d: error = %v, want ErrTruncatedOMSHData", cut, err)
		}
	}
}

func TestParseOMSHHugeCountFailsSmall(t *testing.T) {
	// Header claiming 1<<24 vertices followed by a single float.
	data := []byte("OMSH\x01\x00" + "\x00\x00\x00\x00" + "\x00\x00" + "\x00\x00\x00\x01" + "\x00\x00\x80\x3f")

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := ParseOMSH(data)
	runtime.ReadMemStats(&after)

	if !errors.Is(err, ErrTruncatedOMSHData) {
		t.Fatalf("ParseOMSH() error = %v, want ErrTruncatedOMSHData", err)
	}
	if got := after.TotalAlloc - before.TotalAlloc; got > 8<<20 {
		t.Errorf("allocated %d bytes for a %d byte file", got, len(data))
	}
}

func TestParseOMSHRejectsBadIndices(t *testing.T) {
	src := &mesh.Mesh{
		Positions: []math.Vec3{{}, {X: 1}, {Y: 1}},
		Normals:   []math.Vec3{{Z: 1}, {Z: 1}, {Z: 1}},
		SubMeshes: []mesh.SubMesh{{Indices: []uint32{0, 1, 2}}},
	}
	data, err := EncodeOMSH(src)
	if err != nil {
		t.Fatalf("EncodeOMSH() error = %v", err)
	}
	// Last index is the final four bytes.
	data[len(data)-4] = 9

	if _, err := ParseOMSH(data); !errors.Is(err, mesh.ErrIndexOutOfRange) {
		t.Errorf("ParseOMSH() error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestWriteOMSHRejectsInvalidMesh(t *testing.T) {
	bad := &mesh.Mesh{
		Positions: []math.Vec3{{}},
	}
	if _, err := EncodeOMSH(bad); !errors.Is(err, mesh.ErrNormalCountMismatch) {
		t.Errorf("EncodeOMSH() error = %v, want ErrNormalCountMismatch", err)
	}
}

func TestLoadOMSH(t *testing.T) {
	data, err := EncodeOMSH(mesh.NewCube(1))
	if err != nil {
		t.Fatalf("EncodeOMSH() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "Cube_Outline.omsh")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadOMSH(path)
	if err != nil {
		t.Fatalf("LoadOMSH() error = %v", err)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("TriangleCount() = %d, want 12", m.TriangleCount())
	}

	if _, err := LoadOMSH(filepath.Join(t.TempDir(), "missing.omsh")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadOMSH(missing) error = %v, want ErrNotExist", err)
	}
}

func equalIndices(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
