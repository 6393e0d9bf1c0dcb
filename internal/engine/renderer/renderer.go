// Package renderer draws queued outline.DrawCalls with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/internal/engine/shader"
	"github.com/Faultbox/midgard-outline/internal/logger"
	"github.com/Faultbox/midgard-outline/internal/outline"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background material.Color
}

// Stats counts what the last Flush did.
type Stats struct {
	Submitted   int
	Drawn       int
	LayerCulled int
	Culled      int
}

// gpuMesh is a mesh uploaded to one interleaved VBO and one EBO; each
// sub-mesh is a range of the EBO.
type gpuMesh struct {
	vao, vbo, ebo uint32
	ranges        []indexRange
}

type indexRange struct {
	mode   uint32
	offset int
	count  int32
}

// vertex layout: position(3) normal(3) uv(2)
const vertexStride = 8 * 4

// Renderer handles all OpenGL rendering. It is an outline.Surface:
// draws are queued by Submit and executed in order by Flush.
type Renderer struct {
	config Config

	queue    Queue
	programs *shader.Cache
	meshes   map[*mesh.Mesh]*gpuMesh
	stats    Stats
}

var _ outline.Surface = (*Renderer)(nil)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		programs: shader.NewCache(),
		meshes:   make(map[*mesh.Mesh]*gpuMesh),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	var stencilBits int32
	gl.GetFramebufferAttachmentParameteriv(gl.FRAMEBUFFER, gl.STENCIL, gl.FRAMEBUFFER_ATTACHMENT_STENCIL_SIZE, &stencilBits)
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
		zap.Int32("stencil_bits", stencilBits),
	)

	bg := cfg.Background
	gl.ClearColor(bg.R, bg.G, bg.B, bg.A)
	gl.ClearStencil(0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for m := range r.meshes {
		r.Release(m)
	}
	r.programs.Destroy()
}

// Release frees the GPU buffers of m, e.g. after it was re-baked.
func (r *Renderer) Release(m *mesh.Mesh) {
	g, ok := r.meshes[m]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	delete(r.meshes, m)
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame, clearing colour, depth and stencil.
func (r *Renderer) Begin() {
	gl.StencilMask(0xFF)
	gl.DepthMask(true)
	gl.ColorMask(true, true, true, true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
	r.queue.Reset()
}

// Submit queues dc for the next Flush.
func (r *Renderer) Submit(dc outline.DrawCall) {
	r.queue.Submit(dc)
}

// Flush draws every queued call in submission order and empties the
// queue. Draws whose layer is not in f.CullingMask or whose world bounds
// are outside the frustum are skipped.
func (r *Renderer) Flush(f Frame) error {
	r.stats = Stats{Submitted: r.queue.Len()}
	defer r.queue.Reset()

	for _, dc := range r.queue.Calls() {
		if !LayerVisible(f.CullingMask, dc.Layer) {
			r.stats.LayerCulled++
			continue
		}
		if !InFrustum(f.ViewProj, dc.WorldBounds) {
			r.stats.Culled++
			continue
		}
		if err := r.draw(dc, f); err != nil {
			return err
		}
		r.stats.Drawn++
	}
	return nil
}

// Stats returns the counters of the last Flush.
func (r *Renderer) Stats() Stats {
	return r.stats
}

func (r *Renderer) draw(dc outline.DrawCall, f Frame) error {
	s := dc.Material.Shader()
	prog, err := r.programs.Program(s)
	if err != nil {
		return err
	}
	g, err := r.upload(dc.Mesh)
	if err != nil {
		return err
	}
	if dc.SubMesh < 0 || dc.SubMesh >= len(g.ranges) {
		return fmt.Errorf("mesh %q: sub-mesh %d out of range", dc.Mesh.Name, dc.SubMesh)
	}

	applyState(s, StencilRef(dc))
	gl.UseProgram(prog.ID)

	setMat4(prog, "uViewProj", f.ViewProj)
	setMat4(prog, "uPrevViewProj", f.PrevViewProj)
	setMat4(prog, "uModel", dc.LocalToWorld)
	setMat4(prog, "uPrevModel", PreviousTransform(dc))
	if loc := prog.Uniform("uLightDir"); loc >= 0 {
		gl.Uniform3f(loc, f.LightDir.X, f.LightDir.Y, f.LightDir.Z)
	}
	if loc := prog.Uniform("uAmbient"); loc >= 0 {
		gl.Uniform1f(loc, f.Ambient)
	}

	// Material first, then the block on top of it.
	setProperties(prog, &dc.Material.Properties)
	if dc.Properties != nil {
		setProperties(prog, &dc.Properties.Properties)
	}

	rg := g.ranges[dc.SubMesh]
	gl.BindVertexArray(g.vao)
	gl.DrawElements(rg.mode, rg.count, gl.UNSIGNED_INT, unsafe.Pointer(uintptr(rg.offset)))
	gl.BindVertexArray(0)
	return nil
}

func setMat4(p *shader.Program, name string, m math.Mat4) {
	if loc := p.Uniform(name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, m.Ptr())
	}
}

func setProperties(p *shader.Program, props *material.Properties) {
	props.Visit(
		func(name string, v float32) {
			if loc := p.Uniform(name); loc >= 0 {
				gl.Uniform1f(loc, v)
			}
		},
		func(name string, c material.Color) {
			if loc := p.Uniform(name); loc >= 0 {
				gl.Uniform4f(loc, c.R, c.G, c.B, c.A)
			}
		},
		func(name string, v int32) {
			if loc := p.Uniform(name); loc >= 0 {
				gl.Uniform1i(loc, v)
			}
		},
	)
}

// upload returns the GPU copy of m, creating it on first use.
func (r *Renderer) upload(m *mesh.Mesh) (*gpuMesh, error) {
	if g, ok := r.meshes[m]; ok {
		return g, nil
	}
	if m.VertexCount() == 0 {
		return nil, fmt.Errorf("mesh %q has no vertices", m.Name)
	}

	vertices := make([]float32, 0, m.VertexCount()*8)
	for i, p := range m.Positions {
		n := m.Normals[i]
		var uv math.Vec2
		if len(m.UVs) > 0 {
			uv = m.UVs[i]
		}
		vertices = append(vertices, p.X, p.Y, p.Z, n.X, n.Y, n.Z, uv.X, uv.Y)
	}

	g := &gpuMesh{}
	indices := make([]uint32, 0, m.IndexCount())
	for _, sm := range m.SubMeshes {
		g.ranges = append(g.ranges, indexRange{
			mode:   glTopology(sm.Topology),
			offset: len(indices) * 4,
			count:  int32(len(sm.Indices)),
		})
		indices = append(indices, sm.Indices...)
	}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
	}

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, vertexStride, nil)
	gl.EnableVertexAttribArray(0)
	// Normal attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, vertexStride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)
	// UV attribute (location = 2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, vertexStride, unsafe.Pointer(uintptr(6*4)))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.meshes[m] = g
	logger.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("sub_meshes", len(g.ranges)),
		zap.Uint32("vao", g.vao),
	)
	return g, nil
}

func glTopology(t mesh.Topology) uint32 {
	switch t {
	case mesh.TopologyLines:
		return gl.LINES
	case mesh.TopologyPoints:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

// ReadPixels reads back the default framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels, width, height
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}
