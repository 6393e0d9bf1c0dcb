// Package formats reads and writes the mesh files used by the outline
// tools: Wavefront OBJ sources and baked OMSH outline meshes.
//
// OMSH layout (little endian):
//
//	magic      [4]byte "OMSH"
//	version    uint8 major, uint8 minor
//	flags      uint32 (bit 0: has UVs)
//	name       uint16 length + bytes
//	vertices   uint32 count
//	positions  count * [3]float32
//	normals    count * [3]float32
//	uvs        count * [2]float32 (only with the UV flag)
//	subMeshes  uint32 count, then per sub-mesh:
//	           uint8 topology, uint32 index count, indices as uint32
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// OMSH format errors.
var (
	ErrInvalidOMSHMagic       = errors.New("invalid OMSH magic: expected 'OMSH'")
	ErrUnsupportedOMSHVersion = errors.New("unsupported OMSH version")
	ErrTruncatedOMSHData      = errors.New("truncated OMSH data")
	ErrOMSHLimit              = errors.New("OMSH count exceeds limit")
)

// OMSH version written by EncodeOMSH.
const (
	OMSHVersionMajor = 1
	OMSHVersionMinor = 0
)

const (
	omshMagic      = "OMSH"
	omshFlagHasUVs = 1 << 0

	maxOMSHVertices  = 1 << 24
	maxOMSHSubMeshes = 1 << 12
	maxOMSHIndices   = 1 << 26
)

// OMSHHeader is the fixed part of an OMSH file.
type OMSHHeader struct {
	Major, Minor uint8
	Flags        uint32
	Name         string
	VertexCount  uint32
}

// EncodeOMSH serializes m.
func EncodeOMSH(m *mesh.Mesh) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteOMSH(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteOMSH serializes m to w.
func WriteOMSH(w io.Writer, m *mesh.Mesh) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("writing OMSH: %w", err)
	}
	if len(m.Name) > 0xFFFF {
		return fmt.Errorf("writing OMSH: name too long (%d bytes)", len(m.Name))
	}

	var flags uint32
	if len(m.UVs) > 0 {
		flags |= omshFlagHasUVs
	}

	fields := []any{
		[]byte(omshMagic),
		uint8(OMSHVersionMajor), uint8(OMSHVersionMinor),
		flags,
		uint16(len(m.Name)), []byte(m.Name),
		uint32(len(m.Positions)),
		m.Positions,
		m.Normals,
	}
	if flags&omshFlagHasUVs != 0 {
		fields = append(fields, m.UVs)
	}
	fields = append(fields, uint32(len(m.SubMeshes)))
	for _, sm := range m.SubMeshes {
		fields = append(fields, uint8(sm.Topology), uint32(len(sm.Indices)), sm.Indices)
	}

	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("writing OMSH: %w", err)
		}
	}
	return nil
}

// ParseOMSH decodes an OMSH file from memory.
func ParseOMSH(data []byte) (*mesh.Mesh, error) {
	return ReadOMSH(bytes.NewReader(data))
}

// LoadOMSH reads and decodes an OMSH file from disk.
func LoadOMSH(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ReadOMSH(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ReadOMSH decodes an OMSH stream.
func ReadOMSH(r io.Reader) (*mesh.Mesh, error) {
	h, err := readOMSHHeader(r)
	if err != nil {
		return nil, err
	}

	m := &mesh.Mesh{Name: h.Name}
	if m.Positions, err = readSlice[math.Vec3](r, h.VertexCount); err != nil {
		return nil, err
	}
	if m.Normals, err = readSlice[math.Vec3](r, h.VertexCount); err != nil {
		return nil, err
	}
	if h.Flags&omshFlagHasUVs != 0 {
		if m.UVs, err = readSlice[math.Vec2](r, h.VertexCount); err != nil {
			return nil, err
		}
	}

	var subCount uint32
	if err := read(r, &subCount); err != nil {
		return nil, err
	}
	if subCount > maxOMSHSubMeshes {
		return nil, fmt.Errorf("%w: %d sub-meshes", ErrOMSHLimit, subCount)
	}
	m.SubMeshes = make([]mesh.SubMesh, subCount)
	for i := range m.SubMeshes {
		var topology uint8
		var count uint32
		if err := read(r, &topology); err != nil {
			return nil, err
		}
		if err := read(r, &count); err != nil {
			return nil, err
		}
		if count > maxOMSHIndices {
			return nil, fmt.Errorf("%w: %d indices in sub-mesh %d", ErrOMSHLimit, count, i)
		}
		if mesh.Topology(topology) > mesh.TopologyPoints {
			return nil, fmt.Errorf("sub-mesh %d: unknown topology %d", i, topology)
		}
		sm := &m.SubMeshes[i]
		sm.Topology = mesh.Topology(topology)
		if sm.Indices, err = readSlice[uint32](r, count); err != nil {
			return nil, err
		}
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("OMSH content: %w", err)
	}
	return m, nil
}

// ReadOMSHHeader decodes only the fixed header, for quick inspection.
func ReadOMSHHeader(r io.Reader) (*OMSHHeader, error) {
	return readOMSHHeader(r)
}

func readOMSHHeader(r io.Reader) (*OMSHHeader, error) {
	magic := make([]byte, 4)
	if err := read(r, magic); err != nil {
		return nil, err
	}
	if string(magic) != omshMagic {
		return nil, ErrInvalidOMSHMagic
	}

	h := &OMSHHeader{}
	if err := read(r, &h.Major); err != nil {
		return nil, err
	}
	if err := read(r, &h.Minor); err != nil {
		return nil, err
	}
	if h.Major != OMSHVersionMajor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedOMSHVersion, h.Major, h.Minor)
	}
	if err := read(r, &h.Flags); err != nil {
		return nil, err
	}

	var nameLen uint16
	if err := read(r, &nameLen); err != nil {
		return nil, err
	}
	name := make([]byte, nameLen)
	if err := read(r, name); err != nil {
		return nil, err
	}
	h.Name = string(name)

	if err := read(r, &h.VertexCount); err != nil {
		return nil, err
	}
	if h.VertexCount > maxOMSHVertices {
		return nil, fmt.Errorf("%w: %d vertices", ErrOMSHLimit, h.VertexCount)
	}
	return h, nil
}

// omshChunk is the most elements readSlice allocates ahead of the data,
// so a corrupt count fails as truncated before it can exhaust memory.
const omshChunk = 1 << 14

// readSlice decodes n values in chunks, growing the result only as data
// actually arrives.
func readSlice[T any](r io.Reader, n uint32) ([]T, error) {
	out := make([]T, 0, min(n, omshChunk))
	buf := make([]T, min(n, omshChunk))
	for remaining := n; remaining > 0; {
		chunk := buf[:min(remaining, omshChunk)]
		if err := read(r, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		remaining -= uint32(len(chunk))
	}
	return out, nil
}

// read decodes one little-endian value, reporting short input as
// ErrTruncatedOMSHData.
func read(r io.Reader, v any) error {
	err := binary.Read(r, binary.LittleEndian, v)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncatedOMSHData
	}
	return err
}
