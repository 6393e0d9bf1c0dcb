package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// ErrInvalidOBJ is returned for malformed Wavefront OBJ input.
var ErrInvalidOBJ = errors.New("invalid OBJ data")

// objCorner identifies one face corner by its 1-based v/vt/vn indices
// after resolving negative references. Zero means absent.
type objCorner struct {
	v, vt, vn int
}

type objParser struct {
	positions []math.Vec3
	texcoords []math.Vec2
	normals   []math.Vec3

	m        *mesh.Mesh
	corners  map[objCorner]uint32
	current  int
	hasUVs   bool
	needFlat []bool
	line     int
}

// LoadOBJ reads a Wavefront OBJ file. The mesh is named after the file.
func LoadOBJ(path string) (*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m, nil
}

// ParseOBJ decodes OBJ text into a mesh with one vertex per unique
// v/vt/vn corner. Each g, o or usemtl statement that follows faces
// starts a new triangle sub-mesh. Polygons are fan triangulated and
// corners without a normal get the face normal.
func ParseOBJ(data []byte) (*mesh.Mesh, error) {
	return ReadOBJ(bytes.NewReader(data))
}

// ReadOBJ decodes OBJ text from r.
func ReadOBJ(r io.Reader) (*mesh.Mesh, error) {
	p := &objParser{
		m:       &mesh.Mesh{},
		corners: make(map[objCorner]uint32),
		current: -1,
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, p.line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(p.m.Positions) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrInvalidOBJ)
	}

	if !p.hasUVs {
		p.m.UVs = nil
	}
	// Drop sub-meshes opened by a group statement that never got faces.
	subs := p.m.SubMeshes[:0]
	for _, sm := range p.m.SubMeshes {
		if len(sm.Indices) > 0 {
			subs = append(subs, sm)
		}
	}
	p.m.SubMeshes = subs
	return p.m, nil
}

func (p *objParser) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.texcoords = append(p.texcoords, math.Vec2{X: v[0], Y: v[1]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
	case "g", "o", "usemtl":
		p.startSubMesh()
	case "f":
		return p.parseFace(fields[1:])
	}
	// mtllib, s, l and unknown statements are ignored.
	return nil
}

// startSubMesh opens a new sub-mesh unless the current one is still empty.
func (p *objParser) startSubMesh() {
	if p.current >= 0 && len(p.m.SubMeshes[p.current].Indices) == 0 {
		return
	}
	p.m.SubMeshes = append(p.m.SubMeshes, mesh.SubMesh{Topology: mesh.TopologyTriangles})
	p.current = len(p.m.SubMeshes) - 1
}

func (p *objParser) parseFace(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face has %d corners", len(refs))
	}
	if p.current < 0 {
		p.startSubMesh()
	}

	corners := make([]objCorner, len(refs))
	for i, ref := range refs {
		c, err := p.parseCorner(ref)
		if err != nil {
			return err
		}
		corners[i] = c
	}

	a := p.positions[corners[0].v-1]
	b := p.positions[corners[1].v-1]
	c := p.positions[corners[2].v-1]
	faceNormal := b.Sub(a).Cross(c.Sub(a)).Normalize()

	indices := make([]uint32, len(corners))
	for i, corner := range corners {
		indices[i] = p.vertex(corner, faceNormal)
	}

	sm := &p.m.SubMeshes[p.current]
	for i := 1; i+1 < len(indices); i++ {
		sm.Indices = append(sm.Indices, indices[0], indices[i], indices[i+1])
	}
	return nil
}

// vertex returns the index for corner, emitting a new vertex the first
// time it is seen. Corners without a normal are not shared between faces.
func (p *objParser) vertex(c objCorner, faceNormal math.Vec3) uint32 {
	if c.vn != 0 {
		if idx, ok := p.corners[c]; ok {
			return idx
		}
	}

	idx := uint32(len(p.m.Positions))
	p.m.Positions = append(p.m.Positions, p.positions[c.v-1])
	if c.vn != 0 {
		p.m.Normals = append(p.m.Normals, p.normals[c.vn-1])
		p.corners[c] = idx
	} else {
		p.m.Normals = append(p.m.Normals, faceNormal)
	}
	if c.vt != 0 {
		p.hasUVs = true
		p.m.UVs = append(p.m.UVs, p.texcoords[c.vt-1])
	} else {
		p.m.UVs = append(p.m.UVs, math.Vec2{})
	}
	return idx
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn".
func (p *objParser) parseCorner(ref string) (objCorner, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return objCorner{}, fmt.Errorf("bad face corner %q", ref)
	}

	var c objCorner
	var err error
	if c.v, err = resolveIndex(parts[0], len(p.positions)); err != nil || c.v == 0 {
		return objCorner{}, fmt.Errorf("bad position reference %q", ref)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveIndex(parts[1], len(p.texcoords)); err != nil {
			return objCorner{}, fmt.Errorf("bad texcoord reference %q", ref)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return objCorner{}, fmt.Errorf("bad normal reference %q", ref)
		}
	}
	return c, nil
}

// resolveIndex converts a 1-based or negative OBJ reference into a
// 1-based index into a list of length n.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = n + i + 1
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("index %s out of range", s)
	}
	return i, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
