package geometry

import (
	"errors"
	"testing"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"

	"genesis-tmf/internal/material"
	"genesis-tmf/internal/mesh"
	"genesis-tmf/internal/tmf"
)

func redTriangle() *mesh.Mesh {
	return &mesh.Mesh{
		Name:     "Tri",
		Vertices: []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces: []mesh.Face{{Loops: []mesh.Loop{
			{Vertex: 0, UV: vec2.T{0, 0}},
			{Vertex: 1, UV: vec2.T{1, 0}},
			{Vertex: 2, UV: vec2.T{0, 1}},
		}}},
		Materials: []string{"Red"},
	}
}

// cube returns a unit cube of six quads with a distinct UV per corner.
func cube() *mesh.Mesh {
	m := &mesh.Mesh{
		Name: "Cube",
		Vertices: []vec3.T{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		},
		Materials: []string{"", "Steel"},
	}
	quads := [][4]int{
		{0, 3, 2, 1}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {2, 3, 7, 6},
		{1, 2, 6, 5}, {0, 4, 7, 3},
	}
	for fi, q := range quads {
		var f mesh.Face
		for k, v := range q {
			f.Loops = append(f.Loops, mesh.Loop{Vertex: v, UV: vec2.T{float32(fi) / 6, float32(k) / 4}})
		}
		m.Faces = append(m.Faces, f)
	}
	return m
}

func TestFlattenSingleTriangle(t *testing.T) {
	table := material.NewTable()
	obj, err := Flatten(redTriangle(), table)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if obj.MaterialIndex != 1 {
		t.Errorf("material index = %d, want 1", obj.MaterialIndex)
	}
	if len(obj.Vertices) != 3 || len(obj.UVs) != 3 || len(obj.Triangles) != 1 {
		t.Fatalf("counts = %d/%d/%d", len(obj.Vertices), len(obj.UVs), len(obj.Triangles))
	}
	tri := obj.Triangles[0]
	if tri.Vertex != [3]uint32{0, 1, 2} || tri.UV != [3]uint32{0, 1, 2} {
		t.Errorf("triangle = %+v", tri)
	}
	for k, n := range tri.Normal {
		if n != (vec3.T{0, 0, 1}) {
			t.Errorf("corner %d normal = %v", k, n)
		}
	}
	if obj.UVs[1] != (vec2.T{1, 0}) {
		t.Errorf("uv[1] = %v", obj.UVs[1])
	}
}

func TestFlattenCube(t *testing.T) {
	src := cube()
	faces := len(src.Faces)
	obj, err := Flatten(src, material.NewTable())
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(src.Faces) != faces || len(src.Faces[0].Loops) != 4 || src.Normals != nil {
		t.Error("source mesh was modified")
	}
	if len(obj.Triangles) != 12 {
		t.Fatalf("triangles = %d, want 12", len(obj.Triangles))
	}
	if len(obj.UVs) != 3*len(obj.Triangles) {
		t.Errorf("uvs = %d, want %d", len(obj.UVs), 3*len(obj.Triangles))
	}
	if len(obj.Vertices) != 8 {
		t.Errorf("vertices = %d", len(obj.Vertices))
	}
	for i, tri := range obj.Triangles {
		want := [3]uint32{uint32(3 * i), uint32(3*i + 1), uint32(3*i + 2)}
		if tri.UV != want {
			t.Errorf("triangle %d uv indices = %v, want %v", i, tri.UV, want)
		}
	}
	if obj.MaterialIndex != 1 {
		t.Errorf("material index = %d; first populated slot is Steel", obj.MaterialIndex)
	}
}

func TestFlattenKeepsGivenNormals(t *testing.T) {
	m := redTriangle()
	m.Normals = []vec3.T{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}}
	obj, err := Flatten(m, material.NewTable())
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	for k := 0; k < 3; k++ {
		if obj.Triangles[0].Normal[k] != m.Normals[k] {
			t.Errorf("corner %d normal = %v, want %v", k, obj.Triangles[0].Normal[k], m.Normals[k])
		}
	}
}

func TestFlattenIgnoresLoopNormals(t *testing.T) {
	m := redTriangle()
	m.Normals = []vec3.T{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	for k := range m.Faces[0].Loops {
		m.Faces[0].Loops[k].Normal = vec3.T{1, 0, 0}
	}
	obj, err := Flatten(m, material.NewTable())
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	for k, n := range obj.Triangles[0].Normal {
		if n != (vec3.T{0, 0, 1}) {
			t.Errorf("corner %d normal = %v, want the vertex normal", k, n)
		}
	}
}

func TestFlattenEmptyMesh(t *testing.T) {
	table := material.NewTable()
	obj, err := Flatten(&mesh.Mesh{Name: "Empty"}, table)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if obj.MaterialIndex != 0 || len(obj.Vertices) != 0 || len(obj.UVs) != 0 || len(obj.Triangles) != 0 {
		t.Errorf("object = %+v", obj)
	}
	if table.Len() != 0 {
		t.Error("an object without material consumed a table slot")
	}
}

func TestFlattenSharedTable(t *testing.T) {
	table := material.NewTable()
	a, b, c := redTriangle(), cube(), redTriangle()
	var got []uint32
	for _, m := range []*mesh.Mesh{a, b, c} {
		obj, err := Flatten(m, table)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, obj.MaterialIndex)
	}
	if got[0] != 1 || got[1] != 2 || got[2] != 1 {
		t.Errorf("material indices = %v, want [1 2 1]", got)
	}
}

func TestFlattenRejectsInvalidMesh(t *testing.T) {
	m := redTriangle()
	m.Faces[0].Loops[2].Vertex = 9
	if _, err := Flatten(m, material.NewTable()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRoundTrip(t *testing.T) {
	src := cube()
	obj, err := Flatten(src, material.NewTable())
	if err != nil {
		t.Fatal(err)
	}
	m, err := Reconstruct(&obj, "Object0")
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if m.Name != "Object0" {
		t.Errorf("name = %q", m.Name)
	}
	if len(m.Vertices) != len(src.Vertices) || len(m.Faces) != len(obj.Triangles) {
		t.Fatalf("got %d vertices, %d faces", len(m.Vertices), len(m.Faces))
	}

	// Every reconstructed corner must carry the UV the source gave that
	// vertex on a face lying in the same plane.
	uvs := map[[2]int]vec2.T{}
	for fi, f := range src.Faces {
		for _, l := range f.Loops {
			uvs[[2]int{fi, l.Vertex}] = l.UV
		}
	}
	for i, f := range m.Faces {
		srcFace := i / 2
		for k, l := range f.Loops {
			want, ok := uvs[[2]int{srcFace, l.Vertex}]
			if !ok {
				t.Fatalf("face %d corner %d: vertex %d not on source face %d", i, k, l.Vertex, srcFace)
			}
			if l.UV != want {
				t.Errorf("face %d corner %d uv = %v, want %v", i, k, l.UV, want)
			}
			if l.Normal != obj.Triangles[i].Normal[k] {
				t.Errorf("face %d corner %d normal = %v", i, k, l.Normal)
			}
		}
	}
}

func TestReconstructUsesTriangleUVIndices(t *testing.T) {
	obj := tmf.Object{
		Vertices: []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		UVs:      []vec2.T{{0.5, 0.5}, {0, 1}, {1, 0}, {0, 0}},
		Triangles: []tmf.Triangle{{
			Vertex: [3]uint32{0, 1, 2},
			UV:     [3]uint32{3, 2, 1},
		}},
	}
	m, err := Reconstruct(&obj, "Object0")
	if err != nil {
		t.Fatal(err)
	}
	want := []vec2.T{{0, 0}, {1, 0}, {0, 1}}
	for k, l := range m.Faces[0].Loops {
		if l.UV != want[k] {
			t.Errorf("corner %d uv = %v, want %v", k, l.UV, want[k])
		}
	}
}

func TestReconstructOutOfRange(t *testing.T) {
	base := func() tmf.Object {
		obj, _ := Flatten(redTriangle(), material.NewTable())
		return obj
	}
	tests := []struct {
		name   string
		mutate func(*tmf.Object)
		kind   string
		corner int
	}{
		{"vertex", func(o *tmf.Object) { o.Triangles[0].Vertex[1] = 3 }, "vertex", 1},
		{"uv", func(o *tmf.Object) { o.Triangles[0].UV[2] = 1 << 31 }, "uv", 2},
		{"short uv list", func(o *tmf.Object) { o.UVs = o.UVs[:1] }, "uv", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := base()
			tt.mutate(&obj)
			_, err := Reconstruct(&obj, "Object0")
			var ie *IndexOutOfRangeError
			if !errors.As(err, &ie) {
				t.Fatalf("err = %v, want IndexOutOfRangeError", err)
			}
			if ie.Kind != tt.kind || ie.Corner != tt.corner || ie.Triangle != 0 {
				t.Errorf("error = %+v", ie)
			}
		})
	}
}

func TestUnroll(t *testing.T) {
	obj, err := Flatten(redTriangle(), material.NewTable())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Unroll(&obj, true)
	if err != nil {
		t.Fatalf("Unroll: %v", err)
	}
	if len(b.Positions) != 3 || len(b.Normals) != 3 || len(b.UVs) != 3 {
		t.Fatalf("lengths = %d/%d/%d", len(b.Positions), len(b.Normals), len(b.UVs))
	}
	if b.Positions[1] != (vec3.T{1, 0, 0}) {
		t.Errorf("position[1] = %v", b.Positions[1])
	}
	if b.UVs[0] != (vec2.T{0, 1}) || b.UVs[2] != (vec2.T{0, 0}) {
		t.Errorf("flipped uvs = %v", b.UVs)
	}
	if obj.UVs[0] != (vec2.T{0, 0}) {
		t.Error("Unroll modified the object")
	}

	obj.Triangles[0].Vertex[0] = 5
	if _, err := Unroll(&obj, false); err == nil {
		t.Error("expected out-of-range error")
	}
}
