package raster

import (
	"image"
	"math"
)

// SampleTexture performs bilinear filtering with repeat wrapping. UVs use
// the TMF convention: v=0 is the bottom row of the image. A NaN or
// infinite coordinate samples as 0.
func SampleTexture(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	u, v = finite(u), finite(v)
	u -= math.Floor(u)
	v = 1 - (v - math.Floor(v))

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0, y0 := int(fx), int(fy)
	x1, y1 := (x0+1)%w, (y0+1)%h
	dx, dy := fx-float64(x0), fy-float64(y0)

	pix, stride := tex.Pix, tex.Stride
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	mix := func(c int) uint8 {
		f := float64(pix[i00+c])*w00 + float64(pix[i10+c])*w10 + float64(pix[i01+c])*w01 + float64(pix[i11+c])*w11
		return uint8(f + 0.5)
	}
	return mix(0), mix(1), mix(2), mix(3)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
