package exchange

import (
	"fmt"
	"io"
	"os"

	"genesis-tmf/internal/geometry"
	"genesis-tmf/internal/material"
	"genesis-tmf/internal/mesh"
	"genesis-tmf/internal/tmf"
	"genesis-tmf/internal/tml"
)

// ExportOptions control Export. The zero value writes a version 91 file
// plus its sidecar and logs nothing.
type ExportOptions struct {
	Log         io.Writer // progress lines; nil is silent
	Version     uint16    // 0 means tmf.Version
	SkipSidecar bool
}

// ExportResult summarizes a finished export.
type ExportResult struct {
	Path        string
	SidecarPath string   // "" when no sidecar was written
	Materials   []string // Materials[i] has index i+1
	Objects     int
	Helpers     int
	Size        int64
}

// Export writes scene to path as TMF and, when any object carries a
// material, writes the matching .tml sidecar next to it. Each call uses its
// own material table, so repeated exports of one scene are byte-identical.
func Export(scene *mesh.Scene, path string, opts ExportOptions) (*ExportResult, error) {
	table := material.NewTable()
	doc, err := Build(scene, table, opts.Log)
	if err != nil {
		return nil, err
	}
	if opts.Version != 0 {
		doc.Version = opts.Version
	}

	if err := tmf.Create(path, doc); err != nil {
		return nil, err
	}

	res := &ExportResult{
		Path:      path,
		Materials: table.Names(),
		Objects:   len(doc.Objects),
		Helpers:   len(doc.Helpers),
		Size:      doc.EncodedSize(),
	}
	logf(opts.Log, "Wrote %s (%d bytes, %d objects, %d helpers)\n", path, res.Size, res.Objects, res.Helpers)

	if opts.SkipSidecar || table.Len() == 0 {
		return res, nil
	}
	side := tml.SidecarPath(path)
	if err := tml.WriteFile(side, sidecarMaterials(res.Materials, scene.Textures)); err != nil {
		// Leave no half-exported pair behind.
		os.Remove(path)
		return nil, err
	}
	res.SidecarPath = side
	logf(opts.Log, "Wrote %s (%d materials)\n", side, len(res.Materials))
	return res, nil
}

// Build flattens every mesh and empty of scene into a document, allocating
// material indices from table in object order.
func Build(scene *mesh.Scene, table *material.Table, log io.Writer) (*tmf.Document, error) {
	doc := &tmf.Document{
		Version: tmf.Version,
		Helpers: make([]tmf.Helper, 0, len(scene.Empties)),
		Objects: make([]tmf.Object, 0, len(scene.Meshes)),
	}
	for _, e := range scene.Empties {
		doc.Helpers = append(doc.Helpers, tmf.Helper{Name: e.Name, Position: e.Position})
	}

	for _, m := range scene.Meshes {
		before := table.Len()
		obj, err := geometry.Flatten(m, table)
		if err != nil {
			return nil, fmt.Errorf("exchange: export %q: %w", m.Name, err)
		}
		if table.Len() > before {
			logf(log, "Material %s: %d\n", m.FirstMaterial(), obj.MaterialIndex)
		}
		logf(log, "Object %s: material %d, %d vertices, %d uvs, %d triangles\n",
			m.Name, obj.MaterialIndex, len(obj.Vertices), len(obj.UVs), len(obj.Triangles))
		doc.Objects = append(doc.Objects, obj)
	}
	return doc, nil
}

func sidecarMaterials(names []string, textures map[string][]string) []tml.Material {
	out := make([]tml.Material, len(names))
	for i, name := range names {
		out[i].Name = name
		for _, ref := range textures[name] {
			out[i].Textures = append(out[i].Textures, tml.Texture{Ref: ref})
		}
	}
	return out
}

func logf(w io.Writer, format string, args ...any) {
	if w != nil {
		fmt.Fprintf(w, format, args...)
	}
}
