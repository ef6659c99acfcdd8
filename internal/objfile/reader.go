package objfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"

	"genesis-tmf/internal/mesh"
)

// Load reads a Wavefront OBJ file and the MTL libraries it references.
// Faces keep their arity; each o/g statement starts a new mesh.
func Load(path string) (*mesh.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("objfile: open %s: %w", path, err)
	}
	defer f.Close()

	scene, err := LoadReader(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("objfile: %s: %w", path, err)
	}
	return scene, nil
}

// LoadReader parses OBJ text. mtllib paths are resolved against dir; pass
// "" to ignore material libraries.
func LoadReader(r io.Reader, dir string) (*mesh.Scene, error) {
	p := &parser{
		// index 0 is a sentinel so OBJ's 1-based indices work directly
		vs:  make([]vec3.T, 1, 1024),
		vts: make([]vec2.T, 1, 1024),
		vns: make([]vec3.T, 1, 1024),
	}
	scene := &mesh.Scene{Textures: map[string][]string{}}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v vec3.T
			err = parseFloats(fields[1:], v[:])
			p.vs = append(p.vs, v)
		case "vt":
			var t vec2.T
			err = parseFloats(fields[1:], t[:])
			p.vts = append(p.vts, t)
		case "vn":
			var n vec3.T
			err = parseFloats(fields[1:], n[:])
			p.vns = append(p.vns, n)
		case "f":
			err = p.face(fields[1:])
		case "o", "g":
			name := strings.TrimSpace(strings.Join(fields[1:], " "))
			p.start(name)
		case "usemtl":
			if len(fields) > 1 {
				p.useMaterial(fields[1])
			}
		case "mtllib":
			if dir != "" {
				for _, lib := range fields[1:] {
					if err := loadMTL(filepath.Join(dir, lib), scene.Textures); err != nil {
						return nil, err
					}
				}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	scene.Meshes = p.done()
	return scene, nil
}

type parser struct {
	vs  []vec3.T
	vts []vec2.T
	vns []vec3.T

	cur    *mesh.Mesh
	remap  map[int]int // global vertex index -> index in cur
	meshes []*mesh.Mesh
}

func (p *parser) start(name string) {
	if p.cur != nil && len(p.cur.Faces) == 0 && len(p.cur.Materials) == 0 {
		// an o directly followed by a g is one object; the first name wins
		if p.cur.Name == "" {
			p.cur.Name = name
		}
		return
	}
	p.cur = &mesh.Mesh{Name: name}
	p.remap = map[int]int{}
	p.meshes = append(p.meshes, p.cur)
}

func (p *parser) ensure() {
	if p.cur == nil {
		p.start("")
	}
}

func (p *parser) useMaterial(name string) {
	p.ensure()
	for _, m := range p.cur.Materials {
		if m == name {
			return
		}
	}
	p.cur.Materials = append(p.cur.Materials, name)
}

func (p *parser) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face with %d corners", len(args))
	}
	p.ensure()

	f := mesh.Face{Loops: make([]mesh.Loop, len(args))}
	for i, arg := range args {
		parts := strings.Split(arg+"//", "/")
		vi, err := fixIndex(parts[0], len(p.vs))
		if err != nil || vi == 0 {
			return fmt.Errorf("bad vertex reference %q", arg)
		}
		ti, err := fixIndex(parts[1], len(p.vts))
		if err != nil {
			return fmt.Errorf("bad uv reference %q", arg)
		}
		ni, err := fixIndex(parts[2], len(p.vns))
		if err != nil {
			return fmt.Errorf("bad normal reference %q", arg)
		}

		local, ok := p.remap[vi]
		if !ok {
			local = len(p.cur.Vertices)
			p.cur.Vertices = append(p.cur.Vertices, p.vs[vi])
			p.remap[vi] = local
		}
		f.Loops[i] = mesh.Loop{Vertex: local, UV: p.vts[ti], Normal: p.vns[ni]}
	}
	p.cur.Faces = append(p.cur.Faces, f)
	return nil
}

func (p *parser) done() []*mesh.Mesh {
	var out []*mesh.Mesh
	for _, m := range p.meshes {
		if len(m.Faces) == 0 {
			continue
		}
		if m.Name == "" {
			m.Name = fmt.Sprintf("Object%d", len(out))
		}
		out = append(out, m)
	}
	return out
}

// fixIndex turns a 1-based or negative OBJ index into a slice index for a
// list holding a sentinel at 0. Empty means "absent" and maps to 0.
func fixIndex(s string, length int) (int, error) {
	if s == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i += length
	}
	if i <= 0 || i >= length {
		return 0, fmt.Errorf("index %s out of range", s)
	}
	return i, nil
}

func parseFloats(args []string, dst []float32) error {
	if len(args) < len(dst) {
		return fmt.Errorf("want %d numbers, got %d", len(dst), len(args))
	}
	for i := range dst {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return err
		}
		dst[i] = float32(f)
	}
	return nil
}

// loadMTL records each material's texture maps, diffuse first.
func loadMTL(path string, textures map[string][]string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("mtllib: %w", err)
	}
	defer f.Close()

	var cur string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "newmtl":
			cur = fields[1]
			if _, ok := textures[cur]; !ok {
				textures[cur] = nil
			}
		case "map_kd":
			if cur != "" {
				// options such as -s 1 1 1 precede the file name
				textures[cur] = append([]string{fields[len(fields)-1]}, textures[cur]...)
			}
		case "map_bump", "bump", "map_ks", "norm":
			if cur != "" {
				textures[cur] = append(textures[cur], fields[len(fields)-1])
			}
		}
	}
	return sc.Err()
}
