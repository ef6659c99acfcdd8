package geometry

import (
	"fmt"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"

	"genesis-tmf/internal/mesh"
	"genesis-tmf/internal/tmf"
)

// IndexOutOfRangeError reports a triangle corner that points outside its
// object's vertex or UV list.
type IndexOutOfRangeError struct {
	Triangle int
	Corner   int
	Kind     string // "vertex" or "uv"
	Index    uint32
	Len      int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("geometry: triangle %d corner %d: %s index %d out of range [0,%d)", e.Triangle, e.Corner, e.Kind, e.Index, e.Len)
}

// CheckIndices verifies every triangle corner against the object's lists.
func CheckIndices(obj *tmf.Object) error {
	nv, nuv := len(obj.Vertices), len(obj.UVs)
	for i, t := range obj.Triangles {
		for k := 0; k < 3; k++ {
			if uint64(t.Vertex[k]) >= uint64(nv) {
				return &IndexOutOfRangeError{Triangle: i, Corner: k, Kind: "vertex", Index: t.Vertex[k], Len: nv}
			}
			if uint64(t.UV[k]) >= uint64(nuv) {
				return &IndexOutOfRangeError{Triangle: i, Corner: k, Kind: "uv", Index: t.UV[k], Len: nuv}
			}
		}
	}
	return nil
}

// Reconstruct rebuilds a polygon mesh from one TMF object: one triangular
// face per triangle, in file order, sharing the object's vertex positions.
// Each face corner takes its UV through the triangle's own UV index for
// that corner, and its stored normal as the loop's split normal.
// The object's material index is left to the caller.
func Reconstruct(obj *tmf.Object, name string) (*mesh.Mesh, error) {
	if err := CheckIndices(obj); err != nil {
		return nil, err
	}

	m := &mesh.Mesh{
		Name:     name,
		Vertices: make([]vec3.T, len(obj.Vertices)),
		Faces:    make([]mesh.Face, len(obj.Triangles)),
	}
	copy(m.Vertices, obj.Vertices)

	for i, t := range obj.Triangles {
		loops := make([]mesh.Loop, 3)
		for k := range loops {
			loops[k] = mesh.Loop{
				Vertex: int(t.Vertex[k]),
				UV:     obj.UVs[t.UV[k]],
				Normal: t.Normal[k],
			}
		}
		m.Faces[i] = mesh.Face{Loops: loops}
	}

	return m, nil
}

// Buffers are per-corner streams, three entries per triangle, ready for a
// non-indexed vertex buffer.
type Buffers struct {
	Positions []vec3.T
	Normals   []vec3.T
	UVs       []vec2.T
}

// Unroll expands an object into per-corner streams. With flipV set, each
// v becomes 1-v for image loaders whose first row is the top of the image.
func Unroll(obj *tmf.Object, flipV bool) (Buffers, error) {
	if err := CheckIndices(obj); err != nil {
		return Buffers{}, err
	}

	n := 3 * len(obj.Triangles)
	b := Buffers{
		Positions: make([]vec3.T, 0, n),
		Normals:   make([]vec3.T, 0, n),
		UVs:       make([]vec2.T, 0, n),
	}
	for _, t := range obj.Triangles {
		for k := 0; k < 3; k++ {
			b.Positions = append(b.Positions, obj.Vertices[t.Vertex[k]])
			b.Normals = append(b.Normals, t.Normal[k])
			uv := obj.UVs[t.UV[k]]
			if flipV {
				uv[1] = 1 - uv[1]
			}
			b.UVs = append(b.UVs, uv)
		}
	}
	return b, nil
}
