package tml

import (
	"fmt"
	"strings"
)

// Document is a parsed material sidecar. Materials keep file order; the
// Nth entry pairs with TMF material index N+1.
type Document struct {
	Materials []Material
	Warnings  []error // *TextureResolutionWarning or *SyntaxWarning
}

// Material is one block of the sidecar.
type Material struct {
	Name     string
	Shader   string // SHADER value without extension, "" if absent
	Textures []Texture
	Params   []Param
}

// Texture is one TEXTUREMAP reference. Slot i binds sampler "k_sampler<i>".
type Texture struct {
	Ref      string // raw path as written in the sidecar
	Path     string // resolved filesystem path, "" when unresolved
	Resolved bool
	Sampler  string
}

// Diffuse returns the first texture, which by convention is the albedo map.
func (m *Material) Diffuse() (Texture, bool) {
	if len(m.Textures) == 0 {
		return Texture{}, false
	}
	return m.Textures[0], true
}

// ParamKind is the declared type of a shader parameter line.
type ParamKind int

const (
	Int ParamKind = iota
	Float
	Float2
	Float3
	Float4
)

var paramKinds = map[string]ParamKind{
	"INT":    Int,
	"FLOAT":  Float,
	"FLOAT2": Float2,
	"FLOAT3": Float3,
	"FLOAT4": Float4,
}

// Arity returns how many values a parameter of kind k carries.
func (k ParamKind) Arity() int {
	switch k {
	case Float2:
		return 2
	case Float3:
		return 3
	case Float4:
		return 4
	default:
		return 1
	}
}

func (k ParamKind) String() string {
	for name, kind := range paramKinds {
		if kind == k {
			return name
		}
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// Param is a typed shader uniform value. INT values are stored as whole floats.
type Param struct {
	Kind   ParamKind
	Name   string
	Values []float64
}

// TextureResolutionWarning reports a TEXTUREMAP that did not resolve to a file.
// It is never fatal to the parse.
type TextureResolutionWarning struct {
	Line     int
	Material string
	Ref      string
	Err      error
}

func (w *TextureResolutionWarning) Error() string {
	return fmt.Sprintf("tml: line %d: material %q: texture %q not found: %v", w.Line, w.Material, w.Ref, w.Err)
}

func (w *TextureResolutionWarning) Unwrap() error { return w.Err }

// SyntaxWarning reports a line that was skipped.
type SyntaxWarning struct {
	Line int
	Text string
	Msg  string
}

func (w *SyntaxWarning) Error() string {
	return fmt.Sprintf("tml: line %d: %s: %q", w.Line, w.Msg, strings.TrimSpace(w.Text))
}
