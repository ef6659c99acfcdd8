package raster

import (
	"math"

	"github.com/flywave/go3d/float64/vec3"
	f32 "github.com/flywave/go3d/vec3"
)

// Camera is an orthographic turntable view: the model is turned by Yaw
// around the vertical axis, then tilted by Pitch, both in degrees.
type Camera struct {
	Yaw   float64
	Pitch float64
	rot   [3]vec3.T // rows of the view rotation
}

// DefaultCamera looks at the model from the front right, slightly above.
func DefaultCamera() *Camera {
	return NewCamera(35, 20)
}

// NewCamera precomputes the rotation for the given angles.
func NewCamera(yaw, pitch float64) *Camera {
	cy, sy := math.Cos(yaw*math.Pi/180), math.Sin(yaw*math.Pi/180)
	cp, sp := math.Cos(pitch*math.Pi/180), math.Sin(pitch*math.Pi/180)
	// Rx(pitch) * Ry(yaw)
	return &Camera{
		Yaw:   yaw,
		Pitch: pitch,
		rot: [3]vec3.T{
			{cy, 0, sy},
			{sp * sy, cp, -sp * cy},
			{-cp * sy, sp, cp * cy},
		},
	}
}

// Rotate turns a model-space vector into view space.
func (c *Camera) Rotate(v f32.T) vec3.T {
	p := vec3.T{float64(v[0]), float64(v[1]), float64(v[2])}
	return vec3.T{
		vec3.Dot(&c.rot[0], &p),
		vec3.Dot(&c.rot[1], &p),
		vec3.Dot(&c.rot[2], &p),
	}
}

// Fit maps view-space points into a size x size viewport with the given
// margin, keeping the aspect ratio and centering the bounding box.
type Fit struct {
	center vec3.T
	scale  float64
	half   float64
}

// NewFit computes the viewport mapping for a set of view-space bounds.
func NewFit(lo, hi vec3.T, size, margin int) Fit {
	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 1e-6 {
		span = 1e-6
	}
	return Fit{
		center: vec3.T{(lo[0] + hi[0]) / 2, (lo[1] + hi[1]) / 2, 0},
		scale:  float64(size-2*margin) / span,
		half:   float64(size) / 2,
	}
}

// Project returns pixel coordinates and depth. Screen y grows downward;
// depth grows toward the viewer.
func (f Fit) Project(v vec3.T) (x, y, z float64) {
	x = (v[0]-f.center[0])*f.scale + f.half
	y = f.half - (v[1]-f.center[1])*f.scale
	return x, y, v[2] * f.scale
}
