package mesh

import "github.com/Faultbox/midgard-outline/pkg/math"

// cubeFaces lists each face normal with two in-plane axes whose cross
// product equals the normal, so corners come out counter-clockwise.
var cubeFaces = [6][3]math.Vec3{
	{{X: 1}, {Y: 1}, {Z: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: 1}, {Z: 1}, {X: 1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {Y: 1}, {X: 1}},
}

// NewCube builds a hard-edged cube centred at the origin with per-face
// vertices (24 in total) and flat normals. The first three faces go to
// sub-mesh 0 and the last three to sub-mesh 1, six triangles each.
func NewCube(size float32) *Mesh {
	h := size / 2
	m := &Mesh{
		Name:      "Cube",
		SubMeshes: make([]SubMesh, 2),
	}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	for f, face := range cubeFaces {
		n, u, v := face[0], face[1].Scale(h), face[2].Scale(h)
		c := n.Scale(h)
		base := uint32(len(m.Positions))
		corners := [4]math.Vec3{
			c.Sub(u).Sub(v),
			c.Add(u).Sub(v),
			c.Add(u).Add(v),
			c.Sub(u).Add(v),
		}
		for i, p := range corners {
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, n)
			m.UVs = append(m.UVs, uvs[i])
		}
		sm := &m.SubMeshes[f/3]
		sm.Indices = append(sm.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}
