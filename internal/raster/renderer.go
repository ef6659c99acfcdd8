package raster

import (
	"image"
	"math"

	"github.com/flywave/go3d/float64/vec3"

	"genesis-tmf/internal/mesh"
	"genesis-tmf/internal/texture"
)

// Options control RenderScene. Zero fields take defaults.
type Options struct {
	Size        int // output edge in pixels before downsampling
	Supersample int
	Camera      *Camera
	Light       *LightConfig
}

const defaultSize = 256

// RenderScene rasterizes every mesh of scene into a square image of
// Size*Supersample pixels. Each mesh is painted with the first texture of
// its first material, looked up through textures; meshes without one get
// a neutral grey. Corner normals stored on the loops drive the shading.
func RenderScene(scene *mesh.Scene, textures texture.Resolver, opts Options) *image.NRGBA {
	size := opts.Size
	if size <= 0 {
		size = defaultSize
	}
	ss := max(opts.Supersample, 1)
	cam := opts.Camera
	if cam == nil {
		cam = DefaultCamera()
	}
	lc := opts.Light
	if lc == nil {
		d := DefaultLightConfig()
		lc = &d
	}

	renderSize := size * ss
	fb := NewFrameBuffer(renderSize, renderSize)

	views := make([][]vec3.T, len(scene.Meshes))
	lo := vec3.T{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := vec3.T{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	empty := true
	for mi, m := range scene.Meshes {
		views[mi] = make([]vec3.T, len(m.Vertices))
		for i, v := range m.Vertices {
			p := cam.Rotate(v)
			views[mi][i] = p
			for k := 0; k < 3; k++ {
				lo[k] = math.Min(lo[k], p[k])
				hi[k] = math.Max(hi[k], p[k])
			}
			empty = false
		}
	}
	if empty {
		return fb.Image()
	}
	fit := NewFit(lo, hi, renderSize, 16*ss)

	for mi, m := range scene.Meshes {
		s := surfaceFor(scene, m, textures)
		for _, f := range m.Faces {
			// reconstructed meshes are triangles; fan anything else
			for k := 1; k+1 < len(f.Loops); k++ {
				c, n, ok := corners(cam, fit, views[mi], f.Loops[0], f.Loops[k], f.Loops[k+1])
				if ok {
					RasterizeTriangle(fb, c, n, s, lc)
				}
			}
		}
	}
	return fb.Image()
}

// corners projects three loops and sums their view-space normals.
func corners(cam *Camera, fit Fit, view []vec3.T, loops ...mesh.Loop) (c [3]Corner, n vec3.T, ok bool) {
	for j, l := range loops {
		if l.Vertex < 0 || l.Vertex >= len(view) {
			return c, n, false
		}
		c[j].X, c[j].Y, c[j].Z = fit.Project(view[l.Vertex])
		c[j].U, c[j].V = float64(l.UV[0]), float64(l.UV[1])
		rn := cam.Rotate(l.Normal)
		n.Add(&rn)
	}
	return c, n, true
}

func surfaceFor(scene *mesh.Scene, m *mesh.Mesh, textures texture.Resolver) *Surface {
	s := &Surface{R: 160, G: 160, B: 170, A: 255}
	if textures == nil {
		return s
	}
	refs := scene.Textures[m.FirstMaterial()]
	if len(refs) == 0 {
		return s
	}
	s.Tex = textures.Resolve(refs[0])
	return s
}
