package material

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/logger"
)

// MaskCache hands out one stencil-overwrite material per stencil
// reference value. Entries are created on first use and live as long as
// the cache.
type MaskCache struct {
	shader *Shader

	mu    sync.Mutex
	byRef map[int32]*Material
}

// NewMaskCache resolves the stencil-overwrite shader from lib. A missing
// shader is a configuration error reported here rather than at draw time.
func NewMaskCache(lib *Library) (*MaskCache, error) {
	s, err := lib.Find(StencilOverwriteShaderName)
	if err != nil {
		return nil, fmt.Errorf("mask cache: %w", err)
	}
	return &MaskCache{
		shader: s,
		byRef:  make(map[int32]*Material),
	}, nil
}

// Get returns the mask material writing stencilRef, creating it on first
// use.
func (c *MaskCache) Get(stencilRef int32) *Material {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.byRef[stencilRef]; ok {
		return m
	}
	m := New(fmt.Sprintf("OutlineMask[%d]", stencilRef), c.shader)
	m.SetInt(StencilRefProperty, stencilRef)
	c.byRef[stencilRef] = m

	logger.Debug("created mask material", zap.Int32("stencilRef", stencilRef))
	return m
}

// Len returns the number of cached materials.
func (c *MaskCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byRef)
}
