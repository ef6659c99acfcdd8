package mesh

import (
	"fmt"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// Mesh is the host-side polygon mesh: shared vertex positions and faces of
// any arity whose corners (loops) carry their own UV and normal.
type Mesh struct {
	Name     string
	Vertices []vec3.T

	// Normals holds one normal per vertex. Nil means "not computed yet";
	// ComputeNormals fills it from the faces.
	Normals []vec3.T

	Faces []Face

	// Materials lists the material slots. "" is an empty slot.
	Materials []string
}

// Face is a polygon given by its corners in winding order.
type Face struct {
	Loops []Loop
}

// Loop is one vertex's occurrence within one face.
type Loop struct {
	Vertex int
	UV     vec2.T
	Normal vec3.T // split normal; zero when the source had none
}

// Empty is a locator object: a name and a position, nothing else.
type Empty struct {
	Name     string
	Position vec3.T
}

// Scene is what the host hands to the exporter and gets back from the importer.
type Scene struct {
	Meshes  []*Mesh
	Empties []Empty

	// Textures lists texture references per material name, diffuse first.
	Textures map[string][]string
}

// Validate checks that every face has at least three loops and that every
// loop and the normal array agree with the vertex list.
func (m *Mesh) Validate() error {
	nv := len(m.Vertices)
	if m.Normals != nil && len(m.Normals) != nv {
		return fmt.Errorf("mesh %q: %d normals for %d vertices", m.Name, len(m.Normals), nv)
	}
	for fi, f := range m.Faces {
		if len(f.Loops) < 3 {
			return fmt.Errorf("mesh %q: face %d has %d corners", m.Name, fi, len(f.Loops))
		}
		for li, l := range f.Loops {
			if l.Vertex < 0 || l.Vertex >= nv {
				return fmt.Errorf("mesh %q: face %d corner %d references vertex %d of %d", m.Name, fi, li, l.Vertex, nv)
			}
		}
	}
	return nil
}

// FirstMaterial returns the first populated material slot, or "".
func (m *Mesh) FirstMaterial() string {
	for _, name := range m.Materials {
		if name != "" {
			return name
		}
	}
	return ""
}

// LoopCount returns the total number of face corners.
func (m *Mesh) LoopCount() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f.Loops)
	}
	return n
}

// IsTriangulated reports whether every face is a triangle.
func (m *Mesh) IsTriangulated() bool {
	for _, f := range m.Faces {
		if len(f.Loops) != 3 {
			return false
		}
	}
	return true
}
