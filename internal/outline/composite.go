package outline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/engine/material"
	"github.com/Faultbox/midgard-outline/internal/logger"
	"github.com/Faultbox/midgard-outline/internal/scene"
)

// CompositeRenderer outlines a group of elements with one set of
// parameters, so a model built from several meshes gets one consistent
// outline. Elements are drawn in slice order every frame.
type CompositeRenderer struct {
	control

	owner    *scene.Object
	shared   *material.Material
	elements []*Element
}

var _ Outliner = (*CompositeRenderer)(nil)

// NewCompositeRenderer creates a disabled composite renderer. Its layer
// fallback is owner's layer and its stencil fallback is DefaultStencilRef.
func NewCompositeRenderer(owner *scene.Object, shared *material.Material, elements ...*Element) (*CompositeRenderer, error) {
	if shared == nil {
		return nil, ErrNilMaterial
	}
	c := &CompositeRenderer{
		owner:    owner,
		shared:   shared,
		elements: elements,
	}
	c.settings = NewSettings(MaterialFallbacks(shared, owner, false))
	return c, nil
}

// Elements returns the elements in draw order.
func (c *CompositeRenderer) Elements() []*Element {
	return c.elements
}

// SetElements replaces the element list.
func (c *CompositeRenderer) SetElements(elements []*Element) {
	c.elements = elements
}

// AddElement appends e to the draw order.
func (c *CompositeRenderer) AddElement(e *Element) {
	c.elements = append(c.elements, e)
}

// FindElements replaces the element list with every element found in the
// owner's subtree, parents first.
func (c *CompositeRenderer) FindElements() {
	c.elements = scene.GetComponentsInChildren[*Element](c.owner)
	logger.Debug("collected outline elements",
		zap.String("owner", c.owner.Name),
		zap.Int("count", len(c.elements)),
	)
}

// SetupElements attaches an element to every object in the owner's
// subtree that has a mesh, and replaces the element list with them.
func (c *CompositeRenderer) SetupElements(p *Pipeline) {
	var elements []*Element
	c.owner.Walk(func(o *scene.Object) {
		if o.Mesh == nil {
			return
		}
		elements = append(elements, p.Attach(o))
	})
	c.elements = elements
}

// LateUpdate draws every element for this frame if enabled.
func (c *CompositeRenderer) LateUpdate() error {
	if !c.enabled || len(c.elements) == 0 {
		return nil
	}

	p := c.settings.Param()
	var errs []error
	for i, e := range c.elements {
		if e == nil {
			continue
		}
		if err := e.Render(c.shared, p); err != nil {
			errs = append(errs, fmt.Errorf("element %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
