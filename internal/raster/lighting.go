package raster

import (
	"math"

	"github.com/flywave/go3d/float64/vec3"
)

// LightConfig holds precomputed lighting parameters. Directions are in
// view space: x right, y up, z toward the viewer.
type LightConfig struct {
	LightDir vec3.T
	RimDir   vec3.T
	HalfMain vec3.T // Blinn-Phong half-vector of LightDir and the view axis
	Ambient  float64
	Hemi     float64
	Direct   float64
	Rim      float64
	SpecInt  float64
	SpecPow  float64
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig is a key light from the upper right, a cool rim from
// behind and a soft hemisphere fill.
func DefaultLightConfig() LightConfig {
	light := vec3.T{0.45, 0.65, 0.6}
	rim := vec3.T{-0.5, 0.4, -0.65}
	view := vec3.T{0, 0, 1}

	light = light.Normalized()
	half := vec3.Add(&light, &view)

	return LightConfig{
		LightDir: light,
		RimDir:   rim.Normalized(),
		HalfMain: half.Normalized(),
		Ambient:  0.55,
		Hemi:     0.50,
		Direct:   1.30,
		Rim:      0.45,
		SpecInt:  0.35,
		SpecPow:  12.0,
		Exposure: 1.05,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a unit normal.
// Faces are lit the same from both sides.
func (lc *LightConfig) ComputeShade(n vec3.T) float64 {
	ndlMain := math.Abs(vec3.Dot(&n, &lc.LightDir))
	ndlRim := math.Abs(vec3.Dot(&n, &lc.RimDir))
	hemi := (1.0-math.Abs(n[1]))*0.5 + 0.5

	ndh := math.Abs(vec3.Dot(&n, &lc.HalfMain))
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt

	return lc.Ambient + hemi*lc.Hemi + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}
