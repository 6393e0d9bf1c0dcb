package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-outline/pkg/math"
)

func TestActiveInHierarchy(t *testing.T) {
	root := NewObject("root")
	child := NewObject("child")
	root.AddChild(child)

	assert.True(t, child.ActiveInHierarchy())

	root.SetActive(false)
	assert.True(t, child.ActiveSelf())
	assert.False(t, child.ActiveInHierarchy())
}

func TestLocalToWorldChain(t *testing.T) {
	root := NewObject("root")
	root.Position = math.Vec3{X: 10}
	root.Scale = math.Vec3{X: 2, Y: 2, Z: 2}

	child := NewObject("child")
	child.Position = math.Vec3{Y: 1}
	child.Scale = math.Vec3{X: 1, Y: 3, Z: 1}
	root.AddChild(child)

	got := child.TransformPoint(math.Vec3{X: 1})
	assert.True(t, got.ApproxEqual(math.Vec3{X: 12, Y: 2}, 1e-5), "got %v", got)
	assert.True(t, child.LossyScale().ApproxEqual(math.Vec3{X: 2, Y: 6, Z: 2}, 1e-5))
}

func TestReparent(t *testing.T) {
	a, b, c := NewObject("a"), NewObject("b"), NewObject("c")
	a.AddChild(c)
	b.AddChild(c)

	assert.Empty(t, a.Children())
	assert.Equal(t, []*Object{c}, b.Children())
	assert.Same(t, b, c.Parent())
}

type tag struct{ name string }

func TestComponents(t *testing.T) {
	root := NewObject("root")
	child := NewObject("child")
	grandchild := NewObject("grandchild")
	root.AddChild(child)
	child.AddChild(grandchild)

	AddComponent(root, &tag{"r"})
	AddComponent(grandchild, &tag{"g"})

	got, ok := GetComponent[*tag](root)
	require.True(t, ok)
	assert.Equal(t, "r", got.name)

	_, ok = GetComponent[*tag](child)
	assert.False(t, ok)

	all := GetComponentsInChildren[*tag](root)
	require.Len(t, all, 2)
	assert.Equal(t, "r", all[0].name)
	assert.Equal(t, "g", all[1].name)
}
