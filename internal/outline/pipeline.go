package outline

import (
	"fmt"

	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/scene"
)

// Pipeline owns what every outline element draws through: the target
// surface and the cache of stencil mask materials.
type Pipeline struct {
	surface Surface
	masks   *material.MaskCache
}

// NewPipeline creates a pipeline drawing to surface. The mask shader is
// resolved from lib here, so a missing shader fails construction.
func NewPipeline(surface Surface, lib *material.Library) (*Pipeline, error) {
	if surface == nil {
		return nil, ErrNilSurface
	}
	masks, err := material.NewMaskCache(lib)
	if err != nil {
		return nil, fmt.Errorf("outline pipeline: %w", err)
	}
	return &Pipeline{surface: surface, masks: masks}, nil
}

// Masks returns the mask material cache.
func (p *Pipeline) Masks() *material.MaskCache {
	return p.masks
}

// Attach returns the element on obj, adding one if it has none.
func (p *Pipeline) Attach(obj *scene.Object) *Element {
	if e, ok := scene.GetComponent[*Element](obj); ok {
		return e
	}
	return scene.AddComponent(obj, newElement(p, obj))
}
