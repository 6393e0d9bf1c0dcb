package outline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/internal/logger"
	"github.com/Faultbox/midgard-outline/internal/outline/bake"
	"github.com/Faultbox/midgard-outline/internal/scene"
)

// MeshSink persists baked outline meshes and reports where each one was
// stored.
type MeshSink interface {
	SaveOutlineMesh(m *mesh.Mesh, sourceName string) (string, error)
}

// CreateOutline bakes obj's mesh, saves it through sink and sets it on
// obj's element, attaching one if needed.
func CreateOutline(p *Pipeline, obj *scene.Object, sink MeshSink) (*Element, error) {
	outlineMesh, err := bake.Bake(obj.Mesh)
	if err != nil {
		return nil, fmt.Errorf("object %q: %w", obj.Name, err)
	}
	path, err := sink.SaveOutlineMesh(outlineMesh, obj.Mesh.Name)
	if err != nil {
		return nil, fmt.Errorf("object %q: saving outline mesh: %w", obj.Name, err)
	}

	e := p.Attach(obj)
	e.SetOutlineMesh(outlineMesh)
	logger.Info("created outline",
		zap.String("object", obj.Name),
		zap.String("path", path),
		zap.Stringer("element", e.ID()),
	)
	return e, nil
}

// CreateOutlineForChildren runs CreateOutline for every object in root's
// subtree that has a mesh. Objects that fail are skipped; their errors
// are joined into the returned error.
func CreateOutlineForChildren(p *Pipeline, root *scene.Object, sink MeshSink) ([]*Element, error) {
	var (
		elements []*Element
		errs     []error
	)
	root.Walk(func(o *scene.Object) {
		if o.Mesh == nil {
			return
		}
		e, err := CreateOutline(p, o, sink)
		if err != nil {
			errs = append(errs, err)
			return
		}
		elements = append(elements, e)
	})
	return elements, errors.Join(errs...)
}
