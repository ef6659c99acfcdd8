package gltfio

import (
	"fmt"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"genesis-tmf/internal/mesh"
)

// Load reads a .gltf or .glb file. Every triangle primitive becomes one
// mesh in mesh space; node transforms are not applied. Nodes without a
// mesh, camera or skin become empties at their translation.
func Load(path string) (*mesh.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltfio: open %s: %w", path, err)
	}
	scene, err := Convert(doc)
	if err != nil {
		return nil, fmt.Errorf("gltfio: %s: %w", path, err)
	}
	return scene, nil
}

// Convert builds a host scene from an already decoded document.
func Convert(doc *gltf.Document) (*mesh.Scene, error) {
	scene := &mesh.Scene{Textures: map[string][]string{}}

	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			m, err := primitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			if m == nil {
				continue
			}
			m.Name = meshName(gm, mi, pi)
			if prim.Material != nil {
				name := materialName(doc, *prim.Material)
				m.Materials = []string{name}
				if _, ok := scene.Textures[name]; !ok {
					scene.Textures[name] = materialTextures(doc, *prim.Material)
				}
			}
			scene.Meshes = append(scene.Meshes, m)
		}
	}

	for i, n := range doc.Nodes {
		if n.Mesh != nil || n.Camera != nil || n.Skin != nil {
			continue
		}
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("Node%d", i)
		}
		t := n.TranslationOrDefault()
		scene.Empties = append(scene.Empties, mesh.Empty{
			Name:     name,
			Position: vec3.T{float32(t[0]), float32(t[1]), float32(t[2])},
		})
	}
	return scene, nil
}

func primitive(doc *gltf.Document, prim *gltf.Primitive) (*mesh.Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for k := range indices {
			indices[k] = uint32(k)
		}
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%d indices do not form triangles", len(indices))
	}

	m := &mesh.Mesh{Vertices: make([]vec3.T, len(positions))}
	for i, p := range positions {
		m.Vertices[i] = vec3.T(p)
	}
	if len(normals) == len(positions) {
		m.Normals = make([]vec3.T, len(normals))
		for i, n := range normals {
			m.Normals[i] = vec3.T(n)
		}
	}

	m.Faces = make([]mesh.Face, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		loops := make([]mesh.Loop, 3)
		for k := range loops {
			vi := int(indices[i+k])
			if vi >= len(positions) {
				return nil, fmt.Errorf("index %d out of range [0,%d)", vi, len(positions))
			}
			loops[k].Vertex = vi
			if vi < len(uvs) {
				// glTF puts v=0 at the top of the image; TMF at the bottom.
				loops[k].UV = vec2.T{uvs[vi][0], 1 - uvs[vi][1]}
			}
			if m.Normals != nil {
				loops[k].Normal = m.Normals[vi]
			}
		}
		m.Faces = append(m.Faces, mesh.Face{Loops: loops})
	}
	return m, nil
}

func meshName(gm *gltf.Mesh, mi, pi int) string {
	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("Mesh%d", mi)
	}
	if len(gm.Primitives) > 1 {
		name = fmt.Sprintf("%s.%d", name, pi)
	}
	return name
}

func materialName(doc *gltf.Document, idx uint32) string {
	if int(idx) < len(doc.Materials) && doc.Materials[idx].Name != "" {
		return doc.Materials[idx].Name
	}
	return fmt.Sprintf("Material%d", idx)
}

// materialTextures returns the base color image URI, if it is an external
// file. Images embedded in buffers have no path a sidecar could name.
func materialTextures(doc *gltf.Document, idx uint32) []string {
	if int(idx) >= len(doc.Materials) {
		return nil
	}
	pbr := doc.Materials[idx].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return nil
	}
	ti := pbr.BaseColorTexture.Index
	if int(ti) >= len(doc.Textures) || doc.Textures[ti].Source == nil {
		return nil
	}
	src := *doc.Textures[ti].Source
	if int(src) >= len(doc.Images) {
		return nil
	}
	img := doc.Images[src]
	if img.URI == "" || img.IsEmbeddedResource() {
		return nil
	}
	return []string{img.URI}
}
