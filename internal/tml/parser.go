package tml

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Resolver maps a TEXTUREMAP reference to an existing file.
type Resolver interface {
	ResolveTexture(ref string) (string, error)
}

// DirResolver resolves references relative to a directory, normally the
// sidecar's own.
type DirResolver string

func (d DirResolver) ResolveTexture(ref string) (string, error) {
	ref = strings.ReplaceAll(ref, "\\", "/")
	path := filepath.FromSlash(ref)
	if !filepath.IsAbs(path) {
		path = filepath.Join(string(d), path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}

// SidecarPath derives the sidecar path for a model: "ship.tmf" -> "ship.tml".
func SidecarPath(modelPath string) string {
	ext := filepath.Ext(modelPath)
	if strings.EqualFold(ext, ".tmf") {
		return modelPath[:len(modelPath)-1] + sidecarLastChar(ext)
	}
	return strings.TrimSuffix(modelPath, ext) + ".tml"
}

// keeps the case of the model's extension: .TMF -> .TML
func sidecarLastChar(ext string) string {
	if ext[len(ext)-1] == 'F' {
		return "L"
	}
	return "l"
}

// ParseFile reads the sidecar at path, resolving textures next to it
// unless res is non-nil.
func ParseFile(path string, res Resolver) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tml: open %s: %w", path, err)
	}
	defer f.Close()

	if res == nil {
		res = DirResolver(filepath.Dir(path))
	}
	doc, err := Parse(f, res)
	if err != nil {
		return nil, fmt.Errorf("tml: parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse reads sidecar text. A line with no leading whitespace opens a
// material; lines indented by two or more spaces are its attributes.
// Unknown attributes are ignored. Only read errors are fatal.
func Parse(r io.Reader, res Resolver) (*Document, error) {
	// UTF-8 with or without BOM, or UTF-16 with BOM.
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	sc := bufio.NewScanner(dec)

	doc := &Document{}
	var cur *Material
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			doc.Materials = append(doc.Materials, Material{Name: strings.TrimRight(line, " \t")})
			cur = &doc.Materials[len(doc.Materials)-1]
			continue
		}

		if !strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "\t") {
			doc.warn(&SyntaxWarning{Line: lineNo, Text: line, Msg: "attribute needs two leading spaces"})
			continue
		}
		if cur == nil {
			doc.warn(&SyntaxWarning{Line: lineNo, Text: line, Msg: "attribute before any material"})
			continue
		}

		fields := strings.Fields(line)
		keyword := fields[0]
		rest := strings.TrimSpace(strings.TrimSpace(line)[len(keyword):])

		switch keyword {
		case "TEXTUREMAP":
			if rest == "" {
				doc.warn(&SyntaxWarning{Line: lineNo, Text: line, Msg: "TEXTUREMAP without a path"})
				continue
			}
			tex := Texture{Ref: rest, Sampler: fmt.Sprintf("k_sampler%d", len(cur.Textures))}
			if res != nil {
				path, err := res.ResolveTexture(rest)
				if err != nil {
					doc.warn(&TextureResolutionWarning{Line: lineNo, Material: cur.Name, Ref: rest, Err: err})
				} else {
					tex.Path = path
					tex.Resolved = true
				}
			}
			cur.Textures = append(cur.Textures, tex)

		case "SHADER":
			cur.Shader = strings.TrimSuffix(rest, filepath.Ext(rest))

		case "INT", "FLOAT", "FLOAT2", "FLOAT3", "FLOAT4":
			p, err := parseParam(paramKinds[keyword], fields[1:])
			if err != nil {
				doc.warn(&SyntaxWarning{Line: lineNo, Text: line, Msg: err.Error()})
				continue
			}
			cur.Params = append(cur.Params, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return doc, nil
}

func (d *Document) warn(err error) {
	d.Warnings = append(d.Warnings, err)
}

func parseParam(kind ParamKind, args []string) (Param, error) {
	if len(args) < 1+kind.Arity() {
		return Param{}, fmt.Errorf("%s needs a name and %d value(s)", kind, kind.Arity())
	}
	p := Param{Kind: kind, Name: args[0], Values: make([]float64, kind.Arity())}
	for i := range p.Values {
		s := args[1+i]
		if kind == Int {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return Param{}, fmt.Errorf("bad INT value %q", s)
			}
			p.Values[i] = float64(v)
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "f"), 64)
		if err != nil {
			return Param{}, fmt.Errorf("bad %s value %q", kind, s)
		}
		p.Values[i] = v
	}
	return p, nil
}
