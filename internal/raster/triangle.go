package raster

import (
	"image"
	"math"

	"github.com/flywave/go3d/float64/vec3"
)

// Corner is one projected triangle corner.
type Corner struct {
	X, Y, Z float64 // pixels, depth
	U, V    float64
}

// Surface is what a triangle is painted with: a texture, or a flat color
// when Tex is nil.
type Surface struct {
	Tex        *image.NRGBA
	R, G, B, A uint8
}

// RasterizeTriangle fills one triangle with z-buffering, sRGB-correct
// shading and ACES tone mapping. The whole triangle uses one shade,
// computed from the view-space normal n.
func RasterizeTriangle(fb *FrameBuffer, c [3]Corner, n vec3.T, s *Surface, lc *LightConfig) {
	x0, y0, z0 := c[0].X, c[0].Y, c[0].Z
	x1, y1, z1 := c[1].X, c[1].Y, c[1].Z
	x2, y2, z2 := c[2].X, c[2].Y, c[2].Z

	if n.Length() < 1e-12 {
		// no usable stored normal: fall back to the screen-space face normal
		e1 := vec3.T{x1 - x0, y0 - y1, z1 - z0}
		e2 := vec3.T{x2 - x0, y0 - y2, z2 - z0}
		n = vec3.Cross(&e1, &e2)
		if n.Length() < 1e-12 {
			return
		}
	}
	n = n.Normalized()
	shade := lc.ComputeShade(n) * lc.Exposure

	minX := max(int(math.Floor(min(x0, x1, x2))), 0)
	maxX := min(int(math.Ceil(max(x0, x1, x2))), fb.Width-1)
	minY := max(int(math.Floor(min(y0, y1, y2))), 0)
	maxY := min(int(math.Ceil(max(y0, y1, y2))), fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if math.Abs(det) < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12, dx21 := y1-y2, x2-x1
	dy20, dx02 := y2-y0, x0-x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := s.R, s.G, s.B, s.A
			if s.Tex != nil {
				u := w0*c[0].U + w1*c[1].U + w2*c[2].U
				v := w0*c[0].V + w1*c[1].V + w2*c[2].V
				cr, cg, cb, ca = SampleTexture(s.Tex, u, v)
			}
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			i := zIdx * 4
			fb.Color[i] = toneMap(cr, shade, lc.InvGamma)
			fb.Color[i+1] = toneMap(cg, shade, lc.InvGamma)
			fb.Color[i+2] = toneMap(cb, shade, lc.InvGamma)
			fb.Color[i+3] = ca
		}
	}
}

// toneMap shades an sRGB channel in linear space and encodes it back.
func toneMap(c uint8, shade, invGamma float64) uint8 {
	return clamp255(math.Pow(ACESTonemap(srgbToLinear[c]*shade), invGamma) * 255)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
