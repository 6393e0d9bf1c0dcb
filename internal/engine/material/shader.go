// Package material describes shaders with their fixed render state, the
// materials built from them, and the cache of stencil mask materials used
// by the outline renderer.
package material

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Library errors.
var (
	ErrShaderNotFound  = errors.New("shader not found")
	ErrDuplicateShader = errors.New("shader already registered")
	ErrInvalidShader   = errors.New("invalid shader")
)

// Uniform names shared by the outline shaders.
const (
	ThicknessProperty  = "_Thickness"
	ColorProperty      = "_BaseColor"
	StencilRefProperty = "_StencilRef"
)

// CompareFunc is a depth or stencil comparison.
type CompareFunc int

const (
	CompareAlways CompareFunc = iota
	CompareNever
	CompareLess
	CompareLessEqual
	CompareEqual
	CompareNotEqual
	CompareGreaterEqual
	CompareGreater
)

// StencilOp is what happens to the stencil value after a test.
type StencilOp int

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilDecrement
	StencilInvert
)

// CullMode selects which faces are discarded.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullOff
)

// StencilState configures the stencil test for a shader. The reference
// value comes from the StencilRefProperty uniform of the draw.
type StencilState struct {
	Enabled   bool
	Compare   CompareFunc
	Pass      StencilOp
	Fail      StencilOp
	ZFail     StencilOp
	ReadMask  uint8
	WriteMask uint8
}

// Shader is a GLSL program description plus the render state it is drawn
// with and the default values of its uniforms.
type Shader struct {
	Name           string
	VertexSource   string
	FragmentSource string

	Cull       CullMode
	ColorWrite bool
	DepthTest  bool
	DepthWrite bool
	Stencil    StencilState

	Defaults Properties
}

// Library resolves shaders by name.
type Library struct {
	mu      sync.RWMutex
	shaders map[string]*Shader
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{shaders: make(map[string]*Shader)}
}

// Register adds a shader. Names must be unique.
func (l *Library) Register(s *Shader) error {
	if s == nil || s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidShader)
	}
	if s.VertexSource == "" || s.FragmentSource == "" {
		return fmt.Errorf("%w: %s has no source", ErrInvalidShader, s.Name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.shaders[s.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateShader, s.Name)
	}
	l.shaders[s.Name] = s
	return nil
}

// Find returns the shader registered under name. A nil library has no
// shaders.
func (l *Library) Find(name string) (*Shader, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: %s (nil library)", ErrShaderNotFound, name)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.shaders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShaderNotFound, name)
	}
	return s, nil
}

// Names returns the registered shader names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.shaders))
	for name := range l.shaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
