package raster

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/flywave/go3d/vec2"
	f32 "github.com/flywave/go3d/vec3"

	"genesis-tmf/internal/mesh"
)

type solid struct{ img *image.NRGBA }

func (s solid) Resolve(string) *image.NRGBA { return s.img }

func triangleScene(mat string) *mesh.Scene {
	m := &mesh.Mesh{
		Name:     "Object0",
		Vertices: []f32.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces: []mesh.Face{{Loops: []mesh.Loop{
			{Vertex: 0, UV: vec2.T{0, 0}, Normal: f32.T{0, 0, 1}},
			{Vertex: 1, UV: vec2.T{1, 0}, Normal: f32.T{0, 0, 1}},
			{Vertex: 2, UV: vec2.T{0, 1}, Normal: f32.T{0, 0, 1}},
		}}},
	}
	s := &mesh.Scene{Meshes: []*mesh.Mesh{m}}
	if mat != "" {
		m.Materials = []string{mat}
		s.Textures = map[string][]string{mat: {"red.png"}}
	}
	return s
}

func TestRenderSceneEmpty(t *testing.T) {
	img := RenderScene(&mesh.Scene{}, nil, Options{Size: 32, Supersample: 2})
	if img.Bounds().Dx() != 64 {
		t.Fatalf("width = %d", img.Bounds().Dx())
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatal("empty scene drew pixels")
		}
	}
}

func TestRenderSceneTextured(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			tex.SetNRGBA(x, y, color.NRGBA{R: 220, A: 255})
		}
	}

	img := RenderScene(triangleScene("Red"), solid{tex}, Options{Size: 64, Camera: NewCamera(0, 0)})
	inside := img.NRGBAAt(20, 40)
	if inside.A != 255 || inside.R == 0 || inside.G != 0 || inside.B != 0 {
		t.Errorf("inside pixel = %v", inside)
	}
	if outside := img.NRGBAAt(45, 20); outside.A != 0 {
		t.Errorf("pixel past the hypotenuse = %v", outside)
	}
}

func TestRenderSceneUntexturedFallsBackToGrey(t *testing.T) {
	s := triangleScene("")
	s.Meshes[0].Faces[0].Loops[1].Normal = f32.T{}
	s.Meshes[0].Faces[0].Loops[0].Normal = f32.T{}
	s.Meshes[0].Faces[0].Loops[2].Normal = f32.T{}

	img := RenderScene(s, nil, Options{Size: 64, Camera: NewCamera(0, 0)})
	p := img.NRGBAAt(20, 40)
	if p.A != 255 || p.R != p.G {
		t.Errorf("pixel = %v", p)
	}
}

func TestCameraRotate(t *testing.T) {
	c := NewCamera(90, 0)
	v := c.Rotate(f32.T{1, 0, 0})
	if math.Abs(v[0]) > 1e-9 || math.Abs(v[2]+1) > 1e-9 {
		t.Errorf("rotate = %v, want (0,0,-1)", v)
	}
}

func TestSampleTextureFlipsV(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	tex.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255}) // top row
	tex.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255}) // bottom row

	if r, _, b, _ := SampleTexture(tex, 0.5, 0); b != 255 || r != 0 {
		t.Errorf("v=0 sampled r=%d b=%d, want the bottom row", r, b)
	}
	if r, _, _, _ := SampleTexture(tex, 0.5, 0.999); r < 250 {
		t.Errorf("v~1 sampled r=%d, want the top row", r)
	}
}

func TestSampleTextureNonFiniteUV(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		tex.SetNRGBA(i%2, i/2, color.NRGBA{G: 200, A: 255})
	}
	bad := []float64{math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, x := range bad {
		for _, uv := range [][2]float64{{x, 0.5}, {0.5, x}, {x, x}} {
			_, g, _, a := SampleTexture(tex, uv[0], uv[1])
			if g != 200 || a != 255 {
				t.Errorf("SampleTexture(%v, %v) = g%d a%d, want the texel at 0", uv[0], uv[1], g, a)
			}
		}
	}
}

func TestRenderSceneNaNUV(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		tex.SetNRGBA(i%2, i/2, color.NRGBA{R: 220, A: 255})
	}
	s := triangleScene("Red")
	nan := float32(math.NaN())
	s.Meshes[0].Faces[0].Loops[0].UV = vec2.T{nan, nan}
	img := RenderScene(s, solid{tex}, Options{Size: 64, Camera: NewCamera(0, 0)})
	if p := img.NRGBAAt(20, 40); p.A != 255 {
		t.Errorf("inside pixel = %v", p)
	}
}
