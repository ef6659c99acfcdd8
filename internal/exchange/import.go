package exchange

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"genesis-tmf/internal/geometry"
	"genesis-tmf/internal/material"
	"genesis-tmf/internal/mesh"
	"genesis-tmf/internal/tmf"
	"genesis-tmf/internal/tml"
)

// Resolution selects how TMF material indices find sidecar descriptors.
type Resolution string

const (
	// ByPosition pairs index N with the sidecar's Nth material.
	ByPosition Resolution = "positional"
	// ByName pairs index N with the descriptor named MaterialNames[N-1].
	ByName Resolution = "name"
)

// ParseResolution accepts "positional", "name" or "" (positional).
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case "", ByPosition:
		return ByPosition, nil
	case ByName:
		return ByName, nil
	}
	return "", fmt.Errorf("exchange: unknown material resolution %q", s)
}

// ImportOptions control Import. The zero value reads leniently, resolves
// materials by position and textures next to the sidecar.
type ImportOptions struct {
	Log    io.Writer
	Strict bool // reject versions other than tmf.Version

	Resolution    Resolution
	MaterialNames []string // names by index for ByName, e.g. ExportResult.Materials

	// Resolver overrides Resolution entirely when set.
	Resolver material.Resolver

	SkipSidecar bool
	Textures    tml.Resolver // nil resolves relative to the sidecar
}

// Object is one successfully reconstructed TMF object.
type Object struct {
	Index         int // position in the file
	Mesh          *mesh.Mesh
	MaterialIndex uint32
	Material      *tml.Material // nil when unbound
}

// ObjectError records an object that was skipped.
type ObjectError struct {
	Index int
	Err   error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("exchange: object %d: %v", e.Index, e.Err)
}

func (e *ObjectError) Unwrap() error { return e.Err }

// ImportResult is a possibly partial scene: objects that failed to
// reconstruct are listed in Failures and missing from Scene.
type ImportResult struct {
	Document *tmf.Document
	Scene    *mesh.Scene
	Objects  []Object
	Failures []*ObjectError
	Sidecar  *tml.Document // nil when absent or skipped
	Warnings []error       // sidecar warnings
}

// Import reads the TMF file at path and its sidecar. Codec and I/O
// errors abort the import. An object whose triangles reference missing
// vertices or UVs is skipped and reported in Failures; the others still
// import.
func Import(path string, opts ImportOptions) (*ImportResult, error) {
	doc, err := tmf.Parse(path, tmf.ReadOptions{Strict: opts.Strict})
	if err != nil {
		return nil, err
	}
	logf(opts.Log, "Read %s: version %d, %d objects, %d helpers\n", path, doc.Version, len(doc.Objects), len(doc.Helpers))

	res := &ImportResult{Document: doc}
	if !opts.SkipSidecar {
		side := tml.SidecarPath(path)
		sd, err := tml.ParseFile(side, opts.Textures)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logf(opts.Log, "No sidecar %s, materials stay unbound\n", side)
		case err != nil:
			return nil, err
		default:
			res.Sidecar = sd
			res.Warnings = sd.Warnings
			for _, w := range sd.Warnings {
				logf(opts.Log, "Warning: %v\n", w)
			}
		}
	}

	resolver := opts.resolver(res.Sidecar)
	res.Scene, res.Objects, res.Failures = assemble(doc, resolver, opts.Log)
	if res.Sidecar != nil {
		res.Scene.Textures = sidecarTextures(res.Sidecar)
	}
	return res, nil
}

// Assemble reconstructs every object of doc and binds materials through
// resolver, which may be nil.
func Assemble(doc *tmf.Document, resolver material.Resolver) (*mesh.Scene, []Object, []*ObjectError) {
	return assemble(doc, resolver, nil)
}

func assemble(doc *tmf.Document, resolver material.Resolver, log io.Writer) (*mesh.Scene, []Object, []*ObjectError) {
	scene := &mesh.Scene{
		Empties: make([]mesh.Empty, 0, len(doc.Helpers)),
	}
	for _, h := range doc.Helpers {
		scene.Empties = append(scene.Empties, mesh.Empty{Name: h.Name, Position: h.Position})
	}

	var objects []Object
	var failures []*ObjectError
	for i := range doc.Objects {
		obj := &doc.Objects[i]
		m, err := geometry.Reconstruct(obj, fmt.Sprintf("Object%d", i))
		if err != nil {
			oe := &ObjectError{Index: i, Err: err}
			logf(log, "Skipping object %d: %v\n", i, err)
			failures = append(failures, oe)
			continue
		}

		o := Object{Index: i, Mesh: m, MaterialIndex: obj.MaterialIndex}
		if resolver != nil {
			if mat, ok := resolver.Resolve(obj.MaterialIndex); ok {
				o.Material = mat
				m.Materials = []string{mat.Name}
			}
		}
		logf(log, "Object%d: %d vertices, %d triangles, material %d\n", i, len(m.Vertices), len(m.Faces), obj.MaterialIndex)

		scene.Meshes = append(scene.Meshes, m)
		objects = append(objects, o)
	}
	return scene, objects, failures
}

func (o *ImportOptions) resolver(sd *tml.Document) material.Resolver {
	if o.Resolver != nil {
		return o.Resolver
	}
	if sd == nil {
		return nil
	}
	if o.Resolution == ByName && o.MaterialNames != nil {
		return material.NewByName(o.MaterialNames, sd.Materials)
	}
	return material.Positional(sd.Materials)
}

// sidecarTextures lists each material's textures, resolved paths where
// available, in slot order.
func sidecarTextures(sd *tml.Document) map[string][]string {
	out := make(map[string][]string, len(sd.Materials))
	for _, m := range sd.Materials {
		refs := make([]string, 0, len(m.Textures))
		for _, t := range m.Textures {
			if t.Resolved {
				refs = append(refs, t.Path)
			} else {
				refs = append(refs, t.Ref)
			}
		}
		out[m.Name] = refs
	}
	return out
}
