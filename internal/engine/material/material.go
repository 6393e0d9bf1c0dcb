package material

// Material is a shader plus a set of uniform values.
type Material struct {
	Properties

	name   string
	shader *Shader
}

// New creates a material for shader, seeded with the shader's defaults.
func New(name string, shader *Shader) *Material {
	m := &Material{name: name, shader: shader}
	m.copyFrom(&shader.Defaults)
	return m
}

// Name returns the material name.
func (m *Material) Name() string {
	return m.name
}

// Shader returns the shader the material is drawn with.
func (m *Material) Shader() *Shader {
	return m.shader
}

// Clone returns an independent copy with the same shader and uniforms.
func (m *Material) Clone() *Material {
	c := &Material{name: m.name + " (Instance)", shader: m.shader}
	c.copyFrom(&m.Properties)
	return c
}
