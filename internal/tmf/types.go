package tmf

import (
	"strings"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

const (
	// Magic is the 3-byte tag every TMF file starts with.
	Magic = "TMF"

	// Version is the format revision written by this package.
	Version uint16 = 91

	// HeaderSize is magic + version + object count + helper count.
	HeaderSize = 3 + 2 + 2 + 2

	objectHeaderSize = 4 * 4
	vertexSize       = 3 * 4
	uvSize           = 2 * 4
	triangleSize     = 3*4 + 3*4 + 9*4
)

// Document is one TMF scene: helpers first, then mesh objects, in file order.
type Document struct {
	Version uint16
	Helpers []Helper
	Objects []Object
}

// Helper is a named positional marker with no geometry.
type Helper struct {
	Name     string
	Position vec3.T
}

// Object holds the flat arrays of one mesh object.
// UVs are stored per triangle corner, so len(UVs) == 3*len(Triangles)
// for anything produced by the flattener.
type Object struct {
	MaterialIndex uint32 // 0 = no material, N = sidecar entry N-1
	Vertices      []vec3.T
	UVs           []vec2.T
	Triangles     []Triangle
}

// Triangle indexes into its object's vertex and UV lists and carries
// one normal per corner.
type Triangle struct {
	Vertex [3]uint32
	UV     [3]uint32
	Normal [3]vec3.T
}

// Helper returns the helper whose name matches case-insensitively.
func (d *Document) Helper(name string) (Helper, bool) {
	for _, h := range d.Helpers {
		if strings.EqualFold(h.Name, name) {
			return h, true
		}
	}
	return Helper{}, false
}

// EncodedSize returns the number of bytes Write produces for d.
func (d *Document) EncodedSize() int64 {
	n := int64(HeaderSize)
	for _, h := range d.Helpers {
		n += 4 + int64(len(h.Name)) + vertexSize
	}
	for i := range d.Objects {
		o := &d.Objects[i]
		n += objectHeaderSize
		n += int64(len(o.Vertices)) * vertexSize
		n += int64(len(o.UVs)) * uvSize
		n += int64(len(o.Triangles)) * triangleSize
	}
	return n
}
