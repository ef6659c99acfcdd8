package batch

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genesis-tmf/internal/raster"

	"github.com/HugoSmits86/nativewebp"
)

const triangleOBJ = `mtllib tri.mtl
o Tri
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
usemtl Red
f 1/1 2/2 3/3
`

const triangleMTL = `newmtl Red
map_Kd red.png
`

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: 220, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// source writes an OBJ/MTL/PNG set into a fresh directory.
func source(t *testing.T) (dir, obj string) {
	t.Helper()
	dir = t.TempDir()
	obj = filepath.Join(dir, "tri.obj")
	writeFile(t, obj, triangleOBJ)
	writeFile(t, filepath.Join(dir, "tri.mtl"), triangleMTL)
	writePNG(t, filepath.Join(dir, "red.png"))
	return dir, obj
}

func nonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func TestConvertThenPreview(t *testing.T) {
	srcDir, obj := source(t)
	out := t.TempDir()

	conv := Run(Config{Mode: Convert, OutputDir: out, Workers: 2}, []string{obj})
	if len(conv) != 1 || !conv[0].Success {
		t.Fatalf("convert = %+v", conv)
	}
	r := conv[0]
	if r.Output != filepath.Join(out, "tri.tmf") || r.Sidecar != filepath.Join(out, "tri.tml") || r.Objects != 1 {
		t.Errorf("convert result = %+v", r)
	}
	side, err := os.ReadFile(r.Sidecar)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(side), "Red\n") || !strings.Contains(string(side), "red.png") {
		t.Errorf("sidecar = %q", side)
	}

	prev := Run(Config{
		Mode:          Preview,
		OutputDir:     out,
		TextureDirs:   []string{srcDir},
		RenderSize:    32,
		Supersample:   2,
		ThumbnailSize: 8,
		FillRatio:     0.9,
		Camera:        raster.NewCamera(0, 0),
		Workers:       1,
	}, []string{r.Output})
	if len(prev) != 1 || !prev[0].Success {
		t.Fatalf("preview = %+v", prev)
	}
	p := prev[0]
	if p.Objects != 1 || p.Failures != 0 || p.Warnings != 0 {
		t.Errorf("preview result = %+v", p)
	}
	nonEmpty(t, filepath.Join(out, "tri.webp"))
	nonEmpty(t, filepath.Join(out, "tri_thumb.webp"))
}

// reddish counts covered pixels whose red channel clearly dominates.
func reddish(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := nativewebp.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A > 0 && int(c.R) > int(c.G)+60 && int(c.R) > int(c.B)+60 {
				n++
			}
		}
	}
	return n
}

func TestPreviewPaintsSidecarTexture(t *testing.T) {
	srcDir, obj := source(t)
	tmfDir := t.TempDir()
	conv := Run(Config{Mode: Convert, OutputDir: tmfDir, Workers: 1}, []string{obj})
	if !conv[0].Success {
		t.Fatalf("convert = %+v", conv[0])
	}

	tests := []struct {
		name     string
		dirs     []string
		textured bool
	}{
		{"texture found through search dirs", []string{srcDir}, true},
		{"texture missing falls back to grey", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			prev := Run(Config{
				Mode:        Preview,
				OutputDir:   out,
				TextureDirs: tt.dirs,
				RenderSize:  32,
				Camera:      raster.NewCamera(0, 0),
				Workers:     1,
			}, []string{conv[0].Output})
			if !prev[0].Success {
				t.Fatalf("preview = %+v", prev[0])
			}
			n := reddish(t, prev[0].Output)
			if tt.textured && n == 0 {
				t.Error("no red texel reached the preview")
			}
			if !tt.textured && n != 0 {
				t.Errorf("%d red pixels without a texture", n)
			}
		})
	}
}

func TestRunReportsFailures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "model.fbx")
	writeFile(t, bad, "")
	missing := filepath.Join(dir, "gone.obj")

	results := Run(Config{Mode: Convert, OutputDir: t.TempDir(), Workers: 4}, []string{bad, missing})
	for i, r := range results {
		if r.Success || r.Error == "" {
			t.Errorf("result %d = %+v, want failure", i, r)
		}
	}
	if !strings.Contains(results[0].Error, "unsupported") {
		t.Errorf("error = %q", results[0].Error)
	}
}

func TestPreviewRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.tmf")
	writeFile(t, path, "XYZ garbage")

	results := Run(Config{Mode: Preview, OutputDir: t.TempDir()}, []string{path})
	if results[0].Success {
		t.Fatalf("result = %+v", results[0])
	}
}

func TestOutputStems(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   []string
	}{
		{
			"repeated names",
			[]string{"a/ship.obj", "b/ship.glb", "c/Ship.gltf", "d/hull.obj"},
			[]string{"ship", "ship_2", "Ship_3", "hull"},
		},
		{
			"suffix matches a later input",
			[]string{"a.obj", "a.gltf", "a_2.obj"},
			[]string{"a", "a_2", "a_2_2"},
		},
		{
			"suffix matches an earlier input",
			[]string{"x/a_2.obj", "y/a.obj", "z/a.obj", "w/A.glb"},
			[]string{"a_2", "a", "a_3", "A_4"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputStems(tt.inputs)
			used := make(map[string]bool)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("stem %d = %q, want %q", i, got[i], tt.want[i])
				}
				key := strings.ToLower(got[i])
				if used[key] {
					t.Errorf("stem %q emitted twice", got[i])
				}
				used[key] = true
			}
		})
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	results := []Result{
		{Input: "src/a.obj", Output: filepath.Join(dir, "a.tmf"), Sidecar: filepath.Join(dir, "a.tml"), Objects: 2, Success: true},
		{Input: "src/b.obj", Error: "boom"},
		{Input: "c.tmf", Output: filepath.Join(dir, "c.webp"), Thumbnail: filepath.Join(dir, "c_thumb.webp"), Objects: 1, Failures: 1, Success: true},
	}
	path := filepath.Join(dir, "manifest.json")
	if err := WriteManifest(path, results); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Output != "a.tmf" || entries[0].Sidecar != "a.tml" || entries[0].Objects != 2 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Thumbnail != "c_thumb.webp" || entries[1].Failures != 1 {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestModeString(t *testing.T) {
	if Convert.String() != "convert" || Preview.String() != "preview" {
		t.Error("mode names")
	}
}
