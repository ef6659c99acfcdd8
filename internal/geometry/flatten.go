package geometry

import (
	"fmt"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/jinzhu/copier"

	"genesis-tmf/internal/material"
	"genesis-tmf/internal/mesh"
	"genesis-tmf/internal/tmf"
)

// Flatten turns a polygon mesh into one TMF object. The source mesh is
// left untouched: triangulation runs on a deep copy.
//
// Vertices keep the mesh's order. UVs are emitted per triangle corner in
// triangle order, so triangle i always references UVs 3i, 3i+1, 3i+2.
// Corner normals are the per-vertex normals of the source mesh, computed
// from its faces when the mesh carries none. Loop.Normal is not read, so
// split normals on a source mesh do not survive export; a reader sees one
// normal per vertex on every triangle that shares it.
func Flatten(src *mesh.Mesh, table *material.Table) (tmf.Object, error) {
	if err := src.Validate(); err != nil {
		return tmf.Object{}, fmt.Errorf("geometry: flatten: %w", err)
	}

	var m mesh.Mesh
	if err := copier.CopyWithOption(&m, src, copier.Option{DeepCopy: true}); err != nil {
		return tmf.Object{}, fmt.Errorf("geometry: copy mesh %q: %w", src.Name, err)
	}
	if src.Normals == nil {
		m.ComputeNormals()
	}
	m.Triangulate()

	obj := tmf.Object{
		MaterialIndex: table.Resolve(m.FirstMaterial()),
		Vertices:      make([]vec3.T, len(m.Vertices)),
		UVs:           make([]vec2.T, 0, 3*len(m.Faces)),
		Triangles:     make([]tmf.Triangle, 0, len(m.Faces)),
	}
	copy(obj.Vertices, m.Vertices)

	for i, f := range m.Faces {
		base := uint32(3 * i)
		var t tmf.Triangle
		for k, l := range f.Loops {
			obj.UVs = append(obj.UVs, l.UV)
			t.Vertex[k] = uint32(l.Vertex)
			t.UV[k] = base + uint32(k)
			t.Normal[k] = m.Normals[l.Vertex]
		}
		obj.Triangles = append(obj.Triangles, t)
	}

	return obj, nil
}
