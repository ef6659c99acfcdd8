package main

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"genesis-tmf/internal/geometry"
	"genesis-tmf/internal/tmf"
	"genesis-tmf/internal/tml"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: tmfinspect file.tmf...")
		os.Exit(1)
	}
	failed := false
	for _, path := range os.Args[1:] {
		if err := inspect(path); err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspect(path string) error {
	doc, err := tmf.Parse(path, tmf.ReadOptions{})
	if err != nil {
		return err
	}
	fmt.Printf("%s: version %d, %d helpers, %d objects, %d bytes\n",
		path, doc.Version, len(doc.Helpers), len(doc.Objects), doc.EncodedSize())
	if doc.Version != tmf.Version {
		fmt.Printf("  note: writer emits version %d\n", tmf.Version)
	}

	for _, h := range doc.Helpers {
		fmt.Printf("  Helper %q at (%.3f, %.3f, %.3f)\n", h.Name, h.Position[0], h.Position[1], h.Position[2])
	}

	var materials []tml.Material
	side := tml.SidecarPath(path)
	sd, err := tml.ParseFile(side, nil)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Printf("  Sidecar: none\n")
	case err != nil:
		fmt.Printf("  Sidecar: %v\n", err)
	default:
		materials = sd.Materials
		fmt.Printf("  Sidecar: %s, %d materials, %d warnings\n", side, len(sd.Materials), len(sd.Warnings))
		for _, w := range sd.Warnings {
			fmt.Printf("    warning: %v\n", w)
		}
	}

	for i := range doc.Objects {
		obj := &doc.Objects[i]
		fmt.Printf("  Object[%d]: material=%d (%s), verts=%d, uvs=%d, tris=%d\n",
			i, obj.MaterialIndex, binding(obj.MaterialIndex, materials),
			len(obj.Vertices), len(obj.UVs), len(obj.Triangles))

		if len(obj.Vertices) > 0 {
			lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
			hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
			for _, v := range obj.Vertices {
				for k := 0; k < 3; k++ {
					lo[k] = math.Min(lo[k], float64(v[k]))
					hi[k] = math.Max(hi[k], float64(v[k]))
				}
			}
			fmt.Printf("    BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n", lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])
		}

		buf, err := geometry.Unroll(obj, false)
		if err != nil {
			fmt.Printf("    invalid: %v\n", err)
			continue
		}
		fmt.Printf("    Unrolled: %d corners\n", len(buf.Positions))
	}
	return nil
}

func binding(index uint32, materials []tml.Material) string {
	if index == 0 {
		return "none"
	}
	if int(index) > len(materials) {
		return "unbound"
	}
	m := materials[index-1]
	if tex, ok := m.Diffuse(); ok {
		return fmt.Sprintf("%s, %s", m.Name, tex.Ref)
	}
	return m.Name
}
