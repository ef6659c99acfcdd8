package mesh

import (
	"github.com/chewxy/math32"
	"github.com/flywave/go3d/vec3"
)

// Triangulate replaces every face with triangles, in face order. Quads are
// split along the diagonal that gives the better-shaped pair; larger
// polygons are ear-clipped, always cutting the best-shaped ear first.
// Vertex positions are never touched. Faces with fewer than three corners
// are dropped. Call Validate first: corners must reference valid vertices.
func (m *Mesh) Triangulate() {
	out := make([]Face, 0, len(m.Faces))
	for _, f := range m.Faces {
		switch n := len(f.Loops); {
		case n < 3:
			continue
		case n == 3:
			out = append(out, f)
		case n == 4:
			out = append(out, m.splitQuad(f)...)
		default:
			out = append(out, m.clipEars(f)...)
		}
	}
	m.Faces = out
}

func tri(a, b, c Loop) Face {
	return Face{Loops: []Loop{a, b, c}}
}

// quality is 1 for an equilateral triangle and falls to 0 as it degenerates.
func quality(a, b, c vec3.T) float32 {
	ab := vec3.Sub(&b, &a)
	ac := vec3.Sub(&c, &a)
	bc := vec3.Sub(&c, &b)
	cr := vec3.Cross(&ab, &ac)
	area2 := math32.Sqrt(vec3.Dot(&cr, &cr))
	sq := vec3.Dot(&ab, &ab) + vec3.Dot(&ac, &ac) + vec3.Dot(&bc, &bc)
	if sq < normalEpsilon {
		return 0
	}
	// 4*sqrt(3)*area / sum of squared edges, with area = area2/2.
	return 2 * math32.Sqrt(3) * area2 / sq
}

// facing reports whether triangle abc winds the same way as the polygon normal n.
func facing(a, b, c, n vec3.T) bool {
	ab := vec3.Sub(&b, &a)
	ac := vec3.Sub(&c, &a)
	cr := vec3.Cross(&ab, &ac)
	return vec3.Dot(&cr, &n) >= 0
}

func (m *Mesh) splitQuad(f Face) []Face {
	l := f.Loops
	p := func(i int) vec3.T { return m.Vertices[l[i].Vertex] }
	n := m.FaceNormal(f)

	// Diagonal 0-2 or diagonal 1-3.
	okA := facing(p(0), p(1), p(2), n) && facing(p(0), p(2), p(3), n)
	okB := facing(p(1), p(2), p(3), n) && facing(p(1), p(3), p(0), n)
	qA := min(quality(p(0), p(1), p(2)), quality(p(0), p(2), p(3)))
	qB := min(quality(p(1), p(2), p(3)), quality(p(1), p(3), p(0)))

	if okB && (!okA || qB > qA) {
		return []Face{tri(l[1], l[2], l[3]), tri(l[1], l[3], l[0])}
	}
	return []Face{tri(l[0], l[1], l[2]), tri(l[0], l[2], l[3])}
}

type point2 struct{ x, y float32 }

func cross2(o, a, b point2) float32 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// project drops the dominant axis of n so the polygon can be clipped in 2D.
func project(v, n vec3.T) point2 {
	ax, ay, az := math32.Abs(n[0]), math32.Abs(n[1]), math32.Abs(n[2])
	switch {
	case az >= ax && az >= ay:
		return point2{v[0], v[1]}
	case ax >= ay:
		return point2{v[1], v[2]}
	default:
		return point2{v[2], v[0]}
	}
}

// inside counts points on the triangle's boundary as inside, so an ear never
// cuts through a reflex vertex lying on its diagonal.
func inside(p, a, b, c point2, sign float32) bool {
	return cross2(a, b, p)*sign >= 0 && cross2(b, c, p)*sign >= 0 && cross2(c, a, p)*sign >= 0
}

func (m *Mesh) clipEars(f Face) []Face {
	n := m.FaceNormal(f)
	pts := make([]point2, len(f.Loops))
	var area float32
	for i, l := range f.Loops {
		pts[i] = project(m.Vertices[l.Vertex], n)
	}
	for i := range pts {
		area += cross2(point2{}, pts[i], pts[(i+1)%len(pts)])
	}
	sign := float32(1)
	if area < 0 {
		sign = -1
	}

	remaining := make([]int, len(f.Loops))
	for i := range remaining {
		remaining[i] = i
	}

	out := make([]Face, 0, len(f.Loops)-2)
	for len(remaining) > 3 {
		k := len(remaining)
		best, bestQ := -1, float32(-1)
		for i := 0; i < k; i++ {
			ia, ib, ic := remaining[(i+k-1)%k], remaining[i], remaining[(i+1)%k]
			a, b, c := pts[ia], pts[ib], pts[ic]
			if cross2(a, b, c)*sign <= 0 {
				continue
			}
			ear := true
			for _, j := range remaining {
				if j == ia || j == ib || j == ic || pts[j] == a || pts[j] == b || pts[j] == c {
					continue
				}
				if inside(pts[j], a, b, c, sign) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			q := quality(m.Vertices[f.Loops[ia].Vertex], m.Vertices[f.Loops[ib].Vertex], m.Vertices[f.Loops[ic].Vertex])
			if q > bestQ {
				best, bestQ = i, q
			}
		}
		if best < 0 {
			// Degenerate or self-intersecting outline: fan the rest.
			for i := 1; i+1 < len(remaining); i++ {
				out = append(out, tri(f.Loops[remaining[0]], f.Loops[remaining[i]], f.Loops[remaining[i+1]]))
			}
			return out
		}
		ia, ib, ic := remaining[(best+k-1)%k], remaining[best], remaining[(best+1)%k]
		out = append(out, tri(f.Loops[ia], f.Loops[ib], f.Loops[ic]))
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	out = append(out, tri(f.Loops[remaining[0]], f.Loops[remaining[1]], f.Loops[remaining[2]]))
	return out
}
