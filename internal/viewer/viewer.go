// Package viewer implements the outline viewer main loop.
package viewer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/assets"
	"github.com/Faultbox/midgard-outline/internal/config"
	"github.com/Faultbox/midgard-outline/internal/engine/camera"
	"github.com/Faultbox/midgard-outline/internal/engine/debug"
	"github.com/Faultbox/midgard-outline/internal/engine/input"
	"github.com/Faultbox/midgard-outline/internal/engine/lighting"
	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/internal/engine/renderer"
	"github.com/Faultbox/midgard-outline/internal/engine/window"
	"github.com/Faultbox/midgard-outline/internal/logger"
	"github.com/Faultbox/midgard-outline/internal/outline"
	"github.com/Faultbox/midgard-outline/internal/scene"
	"github.com/Faultbox/midgard-outline/pkg/math"
)

// Thickness step applied by the +/- keys.
const thicknessStep float32 = 0.01

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera

	scene   *Scene
	outline *outline.Renderer
	sun     lighting.Sun
	shots   *debug.ScreenshotCapture

	spin         bool
	showBounds   bool
	screenshot   bool
	prevViewProj math.Mat4
	hasPrevFrame bool
}

// New creates the window, GL renderer and scene for the mesh at
// meshPath. An empty path shows a cube.
func New(cfg *config.Config, meshPath string) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("mesh", meshPath),
	)

	v := &Viewer{
		cfg:    cfg,
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		sun:    lighting.DefaultSun,
		shots:  debug.NewScreenshotCapture("screenshots", "outline"),
	}

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      windowTitle(meshPath),
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	dw, dh := v.window.DrawableSize()
	bg := cfg.Graphics.Background
	v.renderer, err = renderer.New(renderer.Config{
		Width:      dw,
		Height:     dh,
		Background: material.Color{R: bg[0], G: bg[1], B: bg[2], A: bg[3]},
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	src, err := loadSource(meshPath)
	if err != nil {
		v.Close()
		return nil, err
	}
	v.scene, err = NewScene(v.renderer, material.DefaultLibrary(), src)
	if err != nil {
		v.Close()
		return nil, err
	}

	store := assets.NewStore(cfg.Bake.OutputDir)
	if err := v.scene.PrepareOutline(store, cfg.Bake.Reuse || isOutlineFile(meshPath)); err != nil {
		v.Close()
		return nil, err
	}

	v.outline, err = outline.NewRenderer(v.scene.Element, v.scene.OutlineMaterial)
	if err != nil {
		v.Close()
		return nil, err
	}
	cfg.Outline.Apply(v.outline.Settings())
	v.outline.SetOutline(cfg.Outline.Enabled)

	v.camera.FitToBounds(v.scene.Object.Mesh.Bounds().Expand(v.outline.Thickness() * 2))

	logger.Info("viewer initialized successfully")
	return v, nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		// 2. Update scene
		if v.spin {
			obj := v.scene.Object
			obj.Rotation = math.QuatFromAxisAngle(math.Vec3{Y: 1}, dt).Mul(obj.Rotation).Normalize()
		}

		// 3. Render
		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		// 4. Present (swap buffers)
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			st := v.renderer.Stats()
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("draws", st.Drawn),
				zap.Int("culled", st.Culled+st.LayerCulled),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			dw, dh := v.window.DrawableSize()
			v.renderer.Resize(dw, dh)
		case input.EventMouseMove:
			if v.input.IsButtonDown(sdl.BUTTON_LEFT) {
				v.camera.HandleDrag(event.DeltaX, event.DeltaY)
			}
		case input.EventMouseWheel:
			v.camera.HandleZoom(event.DeltaY)
		case input.EventKeyDown:
			v.handleKey(event.Key)
		}
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_O:
		v.outline.SetOutline(!v.outline.Enabled())
		logger.Info("outline toggled", zap.Bool("enabled", v.outline.Enabled()))
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		v.outline.SetOutlineThickness(v.outline.Thickness() + thicknessStep)
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		t := v.outline.Thickness() - thicknessStep
		if t < 0 {
			t = 0
		}
		v.outline.SetOutlineThickness(t)
	case sdl.SCANCODE_C:
		v.outline.SetOutlineColor(nextColor(v.outline.OutlineColor()))
	case sdl.SCANCODE_SPACE:
		v.spin = !v.spin
	case sdl.SCANCODE_B:
		v.showBounds = !v.showBounds
	case sdl.SCANCODE_F5:
		v.saveSettings()
	case sdl.SCANCODE_F12:
		v.screenshot = true
	}
}

// saveSettings writes the current outline state to the user config.
func (v *Viewer) saveSettings() {
	v.cfg.Outline.Capture(v.outline.Settings(), v.outline.Enabled())
	path, err := v.cfg.Save()
	if err != nil {
		logger.Warn("saving settings failed", zap.Error(err))
		return
	}
	logger.Info("settings saved", zap.String("path", path))
}

// render draws one frame: the lit object, then its outline passes.
func (v *Viewer) render() error {
	v.renderer.Begin()

	v.scene.SubmitLit()
	if err := v.outline.LateUpdate(); err != nil {
		return err
	}
	if v.showBounds {
		v.scene.SubmitBounds(v.outline.Thickness())
	}

	viewProj := v.camera.ViewProj(v.renderer.Aspect())
	prev := viewProj
	if v.hasPrevFrame {
		prev = v.prevViewProj
	}
	err := v.renderer.Flush(renderer.Frame{
		ViewProj:     viewProj,
		PrevViewProj: prev,
		CullingMask:  renderer.AllLayers,
		LightDir:     v.sun.LightDir(),
		Ambient:      v.sun.Ambient,
	})
	v.prevViewProj = viewProj
	v.hasPrevFrame = true
	if err != nil {
		return err
	}

	if v.screenshot {
		v.screenshot = false
		pixels, w, h := v.renderer.ReadPixels()
		path, err := v.shots.CaptureFromPixels(pixels, w, h)
		if err != nil {
			logger.Warn("screenshot failed", zap.Error(err))
		} else {
			logger.Info("screenshot saved", zap.String("path", path))
		}
	}
	return nil
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

var palette = []material.Color{
	material.White,
	{R: 1, G: 0.55, B: 0.1, A: 1},
	{R: 0.2, G: 0.8, B: 1, A: 1},
	{R: 1, G: 0.2, B: 0.3, A: 1},
	material.Black,
}

// nextColor cycles through palette, starting over from an unknown colour.
func nextColor(c material.Color) material.Color {
	for i, p := range palette {
		if p == c {
			return palette[(i+1)%len(palette)]
		}
	}
	return palette[0]
}

func windowTitle(meshPath string) string {
	if meshPath == "" {
		return "Outline Viewer"
	}
	return "Outline Viewer - " + filepath.Base(meshPath)
}

func isOutlineFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), assets.OutlineExt)
}

func loadSource(path string) (*mesh.Mesh, error) {
	if path == "" {
		return mesh.NewCube(1), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return assets.LoadMesh(path)
}

// Scene is the single outlined object the viewer shows.
type Scene struct {
	Root    *scene.Object
	Object  *scene.Object
	Element *outline.Element

	LitMaterial     *material.Material
	OutlineMaterial *material.Material
	BoundsMaterial  *material.Material

	bounds *mesh.Mesh

	surface  outline.Surface
	pipeline *outline.Pipeline
}

// NewScene builds the object hierarchy and materials for src.
func NewScene(surface outline.Surface, lib *material.Library, src *mesh.Mesh) (*Scene, error) {
	pipeline, err := outline.NewPipeline(surface, lib)
	if err != nil {
		return nil, err
	}
	lit, err := lib.Find(material.LitShaderName)
	if err != nil {
		return nil, err
	}
	outlineShader, err := lib.Find(material.OutlineShaderName)
	if err != nil {
		return nil, err
	}
	unlit, err := lib.Find(material.UnlitShaderName)
	if err != nil {
		return nil, err
	}

	root := scene.NewObject("Root")
	obj := scene.NewObject(src.Name)
	obj.Mesh = src
	root.AddChild(obj)

	return &Scene{
		Root:            root,
		Object:          obj,
		LitMaterial:     material.New("Lit", lit),
		OutlineMaterial: material.New("Outline", outlineShader),
		BoundsMaterial:  material.New("Bounds", unlit),
		surface:         surface,
		pipeline:        pipeline,
	}, nil
}

// PrepareOutline gives the object an outline mesh: the source mesh
// itself when reuse is set, else a previously baked file from store, else
// a fresh bake saved through store.
func (s *Scene) PrepareOutline(store *assets.Store, reuse bool) error {
	if reuse {
		s.Element = s.pipeline.Attach(s.Object)
		s.Element.ReuseMesh()
		return nil
	}

	path := store.OutlinePath(s.Object.Mesh.Name)
	if _, err := os.Stat(path); err == nil {
		m, err := store.LoadOutlineMesh(path)
		if err == nil && m.VertexCount() == s.Object.Mesh.VertexCount() {
			s.Element = s.pipeline.Attach(s.Object)
			s.Element.SetOutlineMesh(m)
			logger.Info("loaded baked outline", zap.String("path", path))
			return nil
		}
		logger.Warn("ignoring stale outline mesh", zap.String("path", path), zap.Error(err))
	}

	e, err := outline.CreateOutline(s.pipeline, s.Object, store)
	if err != nil {
		return err
	}
	s.Element = e
	return nil
}

// SubmitLit queues the lit draw of every sub-mesh of the object.
func (s *Scene) SubmitLit() {
	obj := s.Object
	if !obj.ActiveInHierarchy() || obj.Mesh == nil {
		return
	}
	localToWorld := obj.LocalToWorld()
	dc := outline.DrawCall{
		Mesh:               obj.Mesh,
		Material:           s.LitMaterial,
		LocalToWorld:       localToWorld,
		Layer:              obj.Layer,
		RenderingLayerMask: obj.RenderingLayerMask,
		WorldBounds:        obj.Mesh.Bounds().Transform(localToWorld),
	}
	for i := range obj.Mesh.SubMeshes {
		dc.SubMesh = i
		s.surface.Submit(dc)
	}
}

// SubmitBounds queues a wireframe of the outline's world bounds. The
// wireframe is a unit box scaled into place, so its GPU copy never changes.
func (s *Scene) SubmitBounds(thickness float32) {
	if s.Element == nil || s.Element.OutlineMesh() == nil {
		return
	}
	if s.bounds == nil {
		s.bounds = debug.BoundsWireframe(math.NewBounds(math.Zero3, math.One3))
	}
	wb := s.Element.WorldBounds(thickness)
	size := wb.Size()
	s.surface.Submit(outline.DrawCall{
		Mesh:     s.bounds,
		Material: s.BoundsMaterial,
		LocalToWorld: math.Translate(wb.Center.X, wb.Center.Y, wb.Center.Z).
			Mul(math.Scale(size.X, size.Y, size.Z)),
		Layer:              s.Object.Layer,
		RenderingLayerMask: s.Object.RenderingLayerMask,
		WorldBounds:        wb,
	})
}
