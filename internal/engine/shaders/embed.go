// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// LitVertexShader is the vertex shader for plain lit meshes.
//
//go:embed lit.vert
var LitVertexShader string

// LitFragmentShader is the fragment shader for plain lit meshes.
//
//go:embed lit.frag
var LitFragmentShader string

// StencilOverwriteVertexShader is the vertex shader of the outline mask pass.
//
//go:embed stencil_overwrite.vert
var StencilOverwriteVertexShader string

// StencilOverwriteFragmentShader is the fragment shader of the outline mask pass.
//
//go:embed stencil_overwrite.frag
var StencilOverwriteFragmentShader string

// OutlineVertexShader pushes vertices out along their normals.
//
//go:embed outline.vert
var OutlineVertexShader string

// OutlineFragmentShader fills the expanded silhouette with a flat colour.
//
//go:embed outline.frag
var OutlineFragmentShader string

// UnlitVertexShader is the vertex shader for flat-coloured debug geometry.
//
//go:embed unlit.vert
var UnlitVertexShader string

// UnlitFragmentShader fills with _BaseColor.
//
//go:embed unlit.frag
var UnlitFragmentShader string
