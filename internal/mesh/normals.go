package mesh

import (
	"github.com/chewxy/math32"
	"github.com/flywave/go3d/vec3"
)

const normalEpsilon = 1e-12

// FaceNormal returns the unnormalized Newell normal of f. Its length is
// twice the polygon's area, which makes it usable as an area weight.
func (m *Mesh) FaceNormal(f Face) vec3.T {
	var n vec3.T
	k := len(f.Loops)
	for i := 0; i < k; i++ {
		cur := m.Vertices[f.Loops[i].Vertex]
		nxt := m.Vertices[f.Loops[(i+1)%k].Vertex]
		n[0] += (cur[1] - nxt[1]) * (cur[2] + nxt[2])
		n[1] += (cur[2] - nxt[2]) * (cur[0] + nxt[0])
		n[2] += (cur[0] - nxt[0]) * (cur[1] + nxt[1])
	}
	return n
}

// ComputeNormals sets one area-weighted normal per vertex. Vertices that no
// face references keep a zero normal.
func (m *Mesh) ComputeNormals() {
	normals := make([]vec3.T, len(m.Vertices))
	for _, f := range m.Faces {
		if len(f.Loops) < 3 {
			continue
		}
		fn := m.FaceNormal(f)
		for _, l := range f.Loops {
			normals[l.Vertex].Add(&fn)
		}
	}
	for i := range normals {
		normals[i] = normalized(normals[i])
	}
	m.Normals = normals
}

func normalized(v vec3.T) vec3.T {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l < normalEpsilon {
		return vec3.T{}
	}
	return vec3.T{v[0] / l, v[1] / l, v[2] / l}
}
