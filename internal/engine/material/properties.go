package material

// Color is a linear RGBA colour.
type Color struct {
	R, G, B, A float32
}

// Common colours.
var (
	White = Color{1, 1, 1, 1}
	Black = Color{0, 0, 0, 1}
)

// Vec4 returns the colour as an array for uniform upload.
func (c Color) Vec4() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Properties is a set of named float, colour and integer uniforms.
// The zero value is empty and ready to use.
type Properties struct {
	floats map[string]float32
	colors map[string]Color
	ints   map[string]int32
}

// SetFloat stores a float uniform.
func (p *Properties) SetFloat(name string, v float32) {
	if p.floats == nil {
		p.floats = make(map[string]float32)
	}
	p.floats[name] = v
}

// GetFloat returns a float uniform, or 0 if unset.
func (p *Properties) GetFloat(name string) float32 {
	return p.floats[name]
}

// HasFloat reports whether the float uniform is set.
func (p *Properties) HasFloat(name string) bool {
	_, ok := p.floats[name]
	return ok
}

// SetColor stores a colour uniform.
func (p *Properties) SetColor(name string, c Color) {
	if p.colors == nil {
		p.colors = make(map[string]Color)
	}
	p.colors[name] = c
}

// GetColor returns a colour uniform, or transparent black if unset.
func (p *Properties) GetColor(name string) Color {
	return p.colors[name]
}

// HasColor reports whether the colour uniform is set.
func (p *Properties) HasColor(name string) bool {
	_, ok := p.colors[name]
	return ok
}

// SetInt stores an integer uniform.
func (p *Properties) SetInt(name string, v int32) {
	if p.ints == nil {
		p.ints = make(map[string]int32)
	}
	p.ints[name] = v
}

// GetInt returns an integer uniform, or 0 if unset.
func (p *Properties) GetInt(name string) int32 {
	return p.ints[name]
}

// HasInt reports whether the integer uniform is set.
func (p *Properties) HasInt(name string) bool {
	_, ok := p.ints[name]
	return ok
}

// Clear removes every uniform.
func (p *Properties) Clear() {
	clear(p.floats)
	clear(p.colors)
	clear(p.ints)
}

// Len returns the number of stored uniforms.
func (p *Properties) Len() int {
	return len(p.floats) + len(p.colors) + len(p.ints)
}

// Visit calls the matching callback for every stored uniform. Nil
// callbacks are skipped. Iteration order is unspecified.
func (p *Properties) Visit(floatFn func(string, float32), colorFn func(string, Color), intFn func(string, int32)) {
	if floatFn != nil {
		for k, v := range p.floats {
			floatFn(k, v)
		}
	}
	if colorFn != nil {
		for k, v := range p.colors {
			colorFn(k, v)
		}
	}
	if intFn != nil {
		for k, v := range p.ints {
			intFn(k, v)
		}
	}
}

func (p *Properties) copyFrom(src *Properties) {
	src.Visit(p.SetFloat, p.SetColor, p.SetInt)
}

// PropertyBlock carries per-draw uniform overrides applied on top of a
// material without modifying it.
type PropertyBlock struct {
	Properties
}

// NewPropertyBlock returns an empty property block.
func NewPropertyBlock() *PropertyBlock {
	return &PropertyBlock{}
}

// Clone returns an independent copy of the block.
func (b *PropertyBlock) Clone() *PropertyBlock {
	c := NewPropertyBlock()
	c.copyFrom(&b.Properties)
	return c
}
