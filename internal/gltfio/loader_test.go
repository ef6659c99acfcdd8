package gltfio

import (
	"path/filepath"
	"testing"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func quadDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})

	doc.Images = []*gltf.Image{{URI: "hull.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{{
		Name:                 "Hull",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "Plate",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(0),
			Attributes: gltf.Attribute{gltf.POSITION: pos, gltf.NORMAL: nrm, gltf.TEXCOORD_0: uv},
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "Plate", Mesh: gltf.Index(0)},
		{Name: "exhaust", Translation: [3]float64{0, -2, 0.5}},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []uint32{0, 1}}}
	return doc
}

func TestConvert(t *testing.T) {
	scene, err := Convert(quadDocument())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(scene.Meshes) != 1 {
		t.Fatalf("meshes = %d", len(scene.Meshes))
	}
	m := scene.Meshes[0]
	if m.Name != "Plate" || len(m.Vertices) != 4 || len(m.Faces) != 2 {
		t.Fatalf("mesh = %s, %d vertices, %d faces", m.Name, len(m.Vertices), len(m.Faces))
	}
	if m.FirstMaterial() != "Hull" {
		t.Errorf("material = %q", m.FirstMaterial())
	}
	if uv := m.Faces[0].Loops[1].UV; uv != (vec2.T{1, 0}) {
		t.Errorf("corner uv = %v, want v flipped to (1,0)", uv)
	}
	if len(m.Normals) != 4 || m.Faces[1].Loops[2].Normal != (vec3.T{0, 0, 1}) {
		t.Errorf("normals = %v", m.Normals)
	}
	if got := scene.Textures["Hull"]; len(got) != 1 || got[0] != "hull.png" {
		t.Errorf("textures = %v", got)
	}
	if len(scene.Empties) != 1 || scene.Empties[0].Name != "exhaust" || scene.Empties[0].Position != (vec3.T{0, -2, 0.5}) {
		t.Errorf("empties = %+v", scene.Empties)
	}
}

func TestLoadBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plate.glb")
	if err := gltf.SaveBinary(quadDocument(), path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	scene, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(scene.Meshes) != 1 || len(scene.Meshes[0].Faces) != 2 {
		t.Errorf("scene = %+v", scene)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.glb")); err == nil {
		t.Error("expected error")
	}
}

func TestMaterialIndexOutOfRange(t *testing.T) {
	doc := quadDocument()
	doc.Meshes[0].Primitives[0].Material = gltf.Index(5)
	doc.Textures[0].Source = gltf.Index(3)
	scene, err := Convert(doc)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := scene.Meshes[0].FirstMaterial(); got != "Material5" {
		t.Errorf("material = %q, want Material5", got)
	}
	if got := scene.Textures["Material5"]; got != nil {
		t.Errorf("textures = %v, want none", got)
	}
	if got := materialTextures(doc, 0); got != nil {
		t.Errorf("texture with missing image = %v, want none", got)
	}
}
