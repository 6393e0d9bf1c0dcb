package outline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/internal/outline/bake"
	"github.com/Faultbox/midgard-outline/internal/scene"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// recorder is a Surface that keeps every draw call.
type recorder struct {
	calls []DrawCall
}

func (r *recorder) Submit(dc DrawCall) {
	r.calls = append(r.calls, dc)
}

func newPipeline(t *testing.T) (*Pipeline, *recorder) {
	t.Helper()
	rec := &recorder{}
	p, err := NewPipeline(rec, material.DefaultLibrary())
	require.NoError(t, err)
	return p, rec
}

func newOutlineMaterial() *material.Material {
	return material.New("Outline", material.OutlineShader())
}

func cubeObject(t *testing.T, p *Pipeline, name string) (*scene.Object, *Element) {
	t.Helper()
	obj := scene.NewObject(name)
	obj.Mesh = mesh.NewCube(1)
	outlineMesh, err := bake.Bake(obj.Mesh)
	require.NoError(t, err)
	e := p.Attach(obj)
	e.SetOutlineMesh(outlineMesh)
	return obj, e
}

func TestNewPipelineMissingMaskShader(t *testing.T) {
	lib := material.NewLibrary()
	require.NoError(t, lib.Register(material.OutlineShader()))

	_, err := NewPipeline(&recorder{}, lib)
	assert.ErrorIs(t, err, material.ErrShaderNotFound)

	_, err = NewPipeline(nil, material.DefaultLibrary())
	assert.ErrorIs(t, err, ErrNilSurface)

	_, err = NewPipeline(&recorder{}, nil)
	assert.ErrorIs(t, err, material.ErrShaderNotFound)
}

func TestAttachIsIdempotent(t *testing.T) {
	p, _ := newPipeline(t)
	obj := scene.NewObject("o")
	a := p.Attach(obj)
	b := p.Attach(obj)
	assert.Same(t, a, b)
	assert.Same(t, obj, a.Object())
}

func TestElementRenderSequence(t *testing.T) {
	p, rec := newPipeline(t)
	obj := scene.NewObject("model")
	obj.Layer = 3
	obj.RenderingLayerMask = 0x5
	obj.Mesh = mesh.NewCube(1)
	e := p.Attach(obj)
	e.SetOutlineMesh(obj.Mesh) // two sub-meshes

	shared := newOutlineMaterial()
	param := Param{Color: material.Color{R: 1, A: 1}, Thickness: 0.1, Layer: 9, StencilRef: 6}
	require.NoError(t, e.Render(shared, param))

	require.Len(t, rec.calls, 4)
	mask := p.Masks().Get(6)
	for i, dc := range rec.calls[:2] {
		assert.Same(t, mask, dc.Material, "mask pass %d", i)
		assert.Nil(t, dc.Properties)
		assert.Equal(t, int32(3), dc.Layer)
		assert.Equal(t, i, dc.SubMesh)
		assert.Equal(t, uint32(0x5), dc.RenderingLayerMask)
		assert.Nil(t, dc.PrevLocalToWorld, "first frame has no previous transform")
	}
	for i, dc := range rec.calls[2:] {
		assert.Same(t, shared, dc.Material, "outline pass %d", i)
		assert.Equal(t, int32(9), dc.Layer)
		assert.Equal(t, i, dc.SubMesh)
		require.NotNil(t, dc.Properties)
		assert.Equal(t, param.Color, dc.Properties.GetColor(material.ColorProperty))
		assert.Equal(t, param.Thickness, dc.Properties.GetFloat(material.ThicknessProperty))
		assert.Equal(t, param.StencilRef, dc.Properties.GetInt(material.StencilRefProperty))
	}
}

func TestElementPreviousTransform(t *testing.T) {
	p, rec := newPipeline(t)
	obj, e := cubeObject(t, p, "mover")
	shared := newOutlineMaterial()

	_, ok := e.PreviousLocalToWorld()
	assert.False(t, ok)

	require.NoError(t, e.Render(shared, Param{StencilRef: 4}))
	first := obj.LocalToWorld()
	prev, ok := e.PreviousLocalToWorld()
	require.True(t, ok)
	assert.Equal(t, first, prev)

	obj.Position = math.Vec3{X: 5}
	rec.calls = nil
	require.NoError(t, e.Render(shared, Param{StencilRef: 4}))
	for _, dc := range rec.calls {
		require.NotNil(t, dc.PrevLocalToWorld)
		assert.Equal(t, first, *dc.PrevLocalToWorld)
		assert.Equal(t, obj.LocalToWorld(), dc.LocalToWorld)
	}
	prev, _ = e.PreviousLocalToWorld()
	assert.Equal(t, obj.LocalToWorld(), prev)
}

func TestElementRenderNoOps(t *testing.T) {
	shared := newOutlineMaterial()

	t.Run("inactive parent", func(t *testing.T) {
		p, rec := newPipeline(t)
		root := scene.NewObject("root")
		obj, e := cubeObject(t, p, "child")
		root.AddChild(obj)
		root.SetActive(false)

		require.NoError(t, e.Render(shared, Param{}))
		assert.Empty(t, rec.calls)
		_, ok := e.PreviousLocalToWorld()
		assert.False(t, ok, "skipped frames do not record a transform")
	})

	t.Run("disabled element", func(t *testing.T) {
		p, rec := newPipeline(t)
		_, e := cubeObject(t, p, "o")
		e.SetEnabled(false)
		require.NoError(t, e.Render(shared, Param{}))
		assert.Empty(t, rec.calls)
	})

	t.Run("no mesh", func(t *testing.T) {
		p, rec := newPipeline(t)
		e := p.Attach(scene.NewObject("empty"))
		require.NoError(t, e.Render(shared, Param{}))
		assert.Empty(t, rec.calls)
	})

	t.Run("nil material", func(t *testing.T) {
		p, rec := newPipeline(t)
		_, e := cubeObject(t, p, "o")
		assert.ErrorIs(t, e.Render(nil, Param{}), ErrNilMaterial)
		assert.Empty(t, rec.calls)
	})
}

func TestElementReuseMesh(t *testing.T) {
	p, _ := newPipeline(t)
	obj := scene.NewObject("o")
	obj.Mesh = mesh.NewCube(1)
	e := p.Attach(obj)
	e.ReuseMesh()
	assert.Same(t, obj.Mesh, e.OutlineMesh())
}

func TestWorldBoundsContainExpandedSilhouette(t *testing.T) {
	p, _ := newPipeline(t)
	obj, e := cubeObject(t, p, "o")
	obj.Position = math.Vec3{X: 10, Y: -2}
	obj.Scale = math.Vec3{X: 2, Y: 1, Z: 3}

	const thickness = 0.25
	b := e.WorldBounds(thickness)

	// Unit cube expanded by 2*thickness on every axis, then scaled.
	assert.True(t, b.Size().ApproxEqual(math.Vec3{X: 3, Y: 1.5, Z: 4.5}, 1e-5), "size %v", b.Size())
	assert.True(t, b.Center.ApproxEqual(math.Vec3{X: 10, Y: -2}, 1e-5), "center %v", b.Center)

	m := obj.LocalToWorld()
	outlineMesh := e.OutlineMesh()
	for i, pos := range outlineMesh.Positions {
		displaced := pos.Add(outlineMesh.Normals[i].Scale(thickness))
		w := m.TransformPoint(displaced)
		assert.True(t, b.Expand(1e-4).Contains(w), "vertex %d at %v escapes %v", i, w, b)
	}

	t.Run("rotated", func(t *testing.T) {
		obj.Position = math.Vec3{}
		obj.Scale = math.Vec3{X: 10, Y: 0.1, Z: 0.1}
		obj.Rotation = math.QuatFromAxisAngle(math.Vec3{Z: 1}, math.Radians(90))

		const thickness = 0.05
		b := e.WorldBounds(thickness)

		// The long axis now lies along y.
		assert.InDelta(t, 10*(1+2*thickness), b.Size().Y, 1e-3)
		assert.InDelta(t, 0.1*(1+2*thickness), b.Size().X, 1e-3)

		m := obj.LocalToWorld()
		for i, pos := range outlineMesh.Positions {
			displaced := pos.Add(outlineMesh.Normals[i].Scale(thickness))
			w := m.TransformPoint(displaced)
			assert.True(t, b.Expand(1e-4).Contains(w), "vertex %d at %v escapes %v", i, w, b)
		}
	})
}

func TestSettingsFallbackAndOverride(t *testing.T) {
	shared := newOutlineMaterial()
	owner := scene.NewObject("owner")
	owner.Layer = 2
	s := NewSettings(MaterialFallbacks(shared, owner, false))

	assert.False(t, s.CustomizeThickness())
	assert.Equal(t, material.DefaultOutlineThickness, s.Thickness())

	shared.SetFloat(material.ThicknessProperty, 0.3)
	assert.Equal(t, float32(0.3), s.Thickness(), "tracks the material while not overridden")

	s.SetThickness(0.2)
	assert.True(t, s.CustomizeThickness())
	assert.Equal(t, float32(0.2), s.Thickness())

	shared.SetFloat(material.ThicknessProperty, 0.4)
	assert.Equal(t, float32(0.2), s.Thickness(), "override wins over later material changes")

	assert.Equal(t, material.Black, s.Color())
	s.SetColor(material.White)
	assert.True(t, s.CustomizeColor())
	assert.Equal(t, material.White, s.Color())

	assert.Equal(t, int32(2), s.Layer())
	owner.Layer = 7
	assert.Equal(t, int32(7), s.Layer())
	s.SetLayer(1)
	assert.True(t, s.OverrideLayer())
	assert.Equal(t, int32(1), s.Layer())

	assert.Equal(t, DefaultStencilRef, s.StencilRef())
	s.SetStencilRef(12)
	assert.True(t, s.OverrideStencil())
	assert.Equal(t, Param{Color: material.White, Thickness: 0.2, Layer: 1, StencilRef: 12}, s.Param())
}

func TestSettingsStencilFallbackSources(t *testing.T) {
	shared := newOutlineMaterial()
	shared.SetInt(material.StencilRefProperty, 9)
	owner := scene.NewObject("owner")

	fromMaterial := NewSettings(MaterialFallbacks(shared, owner, true))
	constant := NewSettings(MaterialFallbacks(shared, owner, false))

	assert.Equal(t, int32(9), fromMaterial.StencilRef())
	assert.Equal(t, int32(4), constant.StencilRef())
}

func TestSettingsToggleOnlyEnables(t *testing.T) {
	s := NewSettings(MaterialFallbacks(newOutlineMaterial(), scene.NewObject("o"), false))
	s.ToggleCustomizeColor(false)
	s.ToggleCustomizeThickness(false)
	assert.True(t, s.CustomizeColor())
	assert.True(t, s.CustomizeThickness())
	assert.Equal(t, DefaultThickness, s.Thickness())
	assert.Equal(t, material.White, s.Color())
}

func TestRendererRespectsEnableFlag(t *testing.T) {
	p, rec := newPipeline(t)
	_, e := cubeObject(t, p, "o")
	r, err := NewRenderer(e, newOutlineMaterial())
	require.NoError(t, err)

	require.NoError(t, r.LateUpdate())
	assert.Empty(t, rec.calls, "renderers start disabled")

	r.SetOutline(true)
	assert.True(t, r.Enabled())
	require.NoError(t, r.LateUpdate())
	assert.Len(t, rec.calls, 2)

	r.SetOutline(false)
	rec.calls = nil
	require.NoError(t, r.LateUpdate())
	assert.Empty(t, rec.calls)
	assert.NotNil(t, e.OutlineMesh(), "disabling keeps resources")
}

func TestRendererStencilOverrideUsesInstance(t *testing.T) {
	p, rec := newPipeline(t)
	_, e := cubeObject(t, p, "o")
	shared := newOutlineMaterial()
	r, err := NewRenderer(e, shared)
	require.NoError(t, err)
	r.SetOutline(true)

	require.NoError(t, r.LateUpdate())
	require.Len(t, rec.calls, 2)
	assert.Same(t, shared, rec.calls[1].Material)
	assert.Same(t, p.Masks().Get(material.DefaultOutlineStencilRef), rec.calls[0].Material)

	r.Settings().SetStencilRef(11)
	rec.calls = nil
	require.NoError(t, r.LateUpdate())
	require.Len(t, rec.calls, 2)

	outlineMat := rec.calls[1].Material
	assert.NotSame(t, shared, outlineMat)
	assert.Equal(t, int32(11), outlineMat.GetInt(material.StencilRefProperty))
	assert.Equal(t, material.DefaultOutlineStencilRef, shared.GetInt(material.StencilRefProperty))
	assert.Equal(t, int32(11), rec.calls[0].Material.GetInt(material.StencilRefProperty))
}

func TestNewRendererErrors(t *testing.T) {
	p, _ := newPipeline(t)
	_, e := cubeObject(t, p, "o")

	_, err := NewRenderer(e, nil)
	assert.ErrorIs(t, err, ErrNilMaterial)
	_, err = NewRenderer(nil, newOutlineMaterial())
	assert.ErrorIs(t, err, ErrNilElement)
	_, err = NewCompositeRenderer(scene.NewObject("o"), nil)
	assert.ErrorIs(t, err, ErrNilMaterial)
}

func TestCompositeDrawCounts(t *testing.T) {
	p, rec := newPipeline(t)
	owner := scene.NewObject("group")
	var elements []*Element
	for _, name := range []string{"a", "b", "c"} {
		obj := scene.NewObject(name)
		obj.Mesh = mesh.NewCube(1)
		e := p.Attach(obj)
		e.SetOutlineMesh(obj.Mesh) // keep two sub-meshes
		owner.AddChild(obj)
		elements = append(elements, e)
	}

	c, err := NewCompositeRenderer(owner, newOutlineMaterial(), elements...)
	require.NoError(t, err)

	require.NoError(t, c.LateUpdate())
	assert.Empty(t, rec.calls, "disabled composite draws nothing")

	c.SetOutline(true)
	c.SetOutlineColor(material.Color{G: 1, A: 1})
	require.NoError(t, c.LateUpdate())

	// Two sub-meshes each: mask, mask, outline, outline per element.
	require.Len(t, rec.calls, 3*2*2)
	mask := p.Masks().Get(DefaultStencilRef)
	for i, e := range elements {
		calls := rec.calls[i*4 : i*4+4]
		for j, dc := range calls {
			assert.Same(t, e.OutlineMesh(), dc.Mesh, "element %d call %d", i, j)
		}
		assert.Same(t, mask, calls[0].Material)
		assert.Same(t, mask, calls[1].Material)
		assert.Equal(t, material.Color{G: 1, A: 1}, calls[2].Properties.GetColor(material.ColorProperty))
		assert.Equal(t, DefaultStencilRef, calls[3].Properties.GetInt(material.StencilRefProperty))
	}
}

func TestCompositeFindAndSetupElements(t *testing.T) {
	p, _ := newPipeline(t)
	owner := scene.NewObject("group")
	withMesh := scene.NewObject("mesh")
	withMesh.Mesh = mesh.NewCube(1)
	bare := scene.NewObject("bare")
	deep := scene.NewObject("deep")
	deep.Mesh = mesh.NewCube(2)
	owner.AddChild(withMesh)
	owner.AddChild(bare)
	bare.AddChild(deep)

	c, err := NewCompositeRenderer(owner, newOutlineMaterial())
	require.NoError(t, err)

	c.FindElements()
	assert.Empty(t, c.Elements())

	c.SetupElements(p)
	require.Len(t, c.Elements(), 2)
	assert.Same(t, withMesh, c.Elements()[0].Object())
	assert.Same(t, deep, c.Elements()[1].Object())

	c.SetElements(nil)
	c.FindElements()
	assert.Len(t, c.Elements(), 2)
}

func TestCompositeSetupKeepsCallerSlice(t *testing.T) {
	p, _ := newPipeline(t)
	_, x := cubeObject(t, p, "x")
	_, y := cubeObject(t, p, "y")
	mine := []*Element{x, y}

	owner := scene.NewObject("group")
	child := scene.NewObject("a")
	child.Mesh = mesh.NewCube(1)
	owner.AddChild(child)

	c, err := NewCompositeRenderer(owner, newOutlineMaterial(), mine...)
	require.NoError(t, err)
	c.SetupElements(p)

	require.Len(t, c.Elements(), 1)
	assert.Same(t, child, c.Elements()[0].Object())
	assert.Same(t, x, mine[0])
	assert.Same(t, y, mine[1])
}

func TestCompositeSkipsNilAndJoinsErrors(t *testing.T) {
	p, rec := newPipeline(t)
	_, a := cubeObject(t, p, "a")
	_, b := cubeObject(t, p, "b")

	c, err := NewCompositeRenderer(scene.NewObject("group"), newOutlineMaterial(), a, nil, b)
	require.NoError(t, err)
	c.SetOutline(true)

	require.NoError(t, c.LateUpdate())
	// One merged sub-mesh each: mask then outline.
	require.Len(t, rec.calls, 4)
	assert.Same(t, a.OutlineMesh(), rec.calls[0].Mesh)
	assert.Same(t, b.OutlineMesh(), rec.calls[2].Mesh)

	rec.calls = nil
	c.shared = nil
	err = c.LateUpdate()
	require.ErrorIs(t, err, ErrNilMaterial)
	assert.Contains(t, err.Error(), "element 0")
	assert.Contains(t, err.Error(), "element 2")
	assert.NotContains(t, err.Error(), "element 1")
	assert.Empty(t, rec.calls)
}

type memorySink struct {
	saved []string
	fail  bool
}

func (s *memorySink) SaveOutlineMesh(m *mesh.Mesh, sourceName string) (string, error) {
	if s.fail {
		return "", errors.New("rejected")
	}
	path := "mem/" + sourceName + "_Outline"
	s.saved = append(s.saved, path)
	return path, nil
}

func TestCreateOutlineForChildren(t *testing.T) {
	p, _ := newPipeline(t)
	root := scene.NewObject("root")
	a := scene.NewObject("a")
	a.Mesh = mesh.NewCube(1)
	empty := scene.NewObject("empty")
	empty.Mesh = &mesh.Mesh{Name: "Empty"}
	root.AddChild(a)
	root.AddChild(empty)

	sink := &memorySink{}
	elements, err := CreateOutlineForChildren(p, root, sink)
	assert.ErrorIs(t, err, bake.ErrNoVertexData)
	require.Len(t, elements, 1)
	assert.Same(t, a, elements[0].Object())
	assert.Equal(t, []string{"mem/Cube_Outline"}, sink.saved)
	assert.Equal(t, 1, elements[0].OutlineMesh().SubMeshCount())

	_, err = CreateOutline(p, a, &memorySink{fail: true})
	assert.Error(t, err)
}
