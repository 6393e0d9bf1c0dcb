// Package shader provides OpenGL shader compilation and a program cache
// keyed by material shader.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/logger"
)

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", string(log))
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

// Program is a linked program with lazily resolved uniform locations.
type Program struct {
	ID       uint32
	name     string
	uniforms map[string]int32
}

// Uniform returns the location of name, or -1 when the program does not
// use it. Locations are cached per program.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.ID, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

// Cache compiles each material shader once. Must be used from the GL thread.
type Cache struct {
	programs map[string]*Program
}

// NewCache creates an empty program cache.
func NewCache() *Cache {
	return &Cache{programs: make(map[string]*Program)}
}

// Program returns the compiled program for s, compiling it on first use.
func (c *Cache) Program(s *material.Shader) (*Program, error) {
	if p, ok := c.programs[s.Name]; ok {
		return p, nil
	}
	id, err := CompileProgram(s.VertexSource, s.FragmentSource)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", s.Name, err)
	}
	p := &Program{ID: id, name: s.Name, uniforms: make(map[string]int32)}
	c.programs[s.Name] = p
	logger.Debug("compiled shader", zap.String("shader", s.Name), zap.Uint32("program", id))
	return p, nil
}

// Destroy deletes every cached program.
func (c *Cache) Destroy() {
	for name, p := range c.programs {
		gl.DeleteProgram(p.ID)
		delete(c.programs, name)
	}
}
