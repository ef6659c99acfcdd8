package objfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"genesis-tmf/internal/mesh"
)

// Write dumps scene as OBJ. Every face corner gets its own vt and vn line,
// so per-corner UVs and split normals survive. Empties become comments.
func Write(w io.Writer, scene *mesh.Scene) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# genesis-tmf")
	for _, e := range scene.Empties {
		fmt.Fprintf(bw, "# helper %s %s %s %s\n", e.Name, ff(e.Position[0]), ff(e.Position[1]), ff(e.Position[2]))
	}

	// OBJ indices are global and 1-based.
	vBase, cBase := 1, 1
	for _, m := range scene.Meshes {
		fmt.Fprintf(bw, "o %s\n", m.Name)
		if mat := m.FirstMaterial(); mat != "" {
			fmt.Fprintf(bw, "usemtl %s\n", mat)
		}
		for _, v := range m.Vertices {
			fmt.Fprintf(bw, "v %s %s %s\n", ff(v[0]), ff(v[1]), ff(v[2]))
		}
		for _, f := range m.Faces {
			for _, l := range f.Loops {
				fmt.Fprintf(bw, "vt %s %s\n", ff(l.UV[0]), ff(l.UV[1]))
			}
		}
		for _, f := range m.Faces {
			for _, l := range f.Loops {
				fmt.Fprintf(bw, "vn %s %s %s\n", ff(l.Normal[0]), ff(l.Normal[1]), ff(l.Normal[2]))
			}
		}

		c := cBase
		for _, f := range m.Faces {
			bw.WriteString("f")
			for _, l := range f.Loops {
				fmt.Fprintf(bw, " %d/%d/%d", vBase+l.Vertex, c, c)
				c++
			}
			bw.WriteString("\n")
		}
		vBase += len(m.Vertices)
		cBase = c
	}
	return bw.Flush()
}

// WriteFile writes scene to path.
func WriteFile(path string, scene *mesh.Scene) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("objfile: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("objfile: close %s: %w", path, cerr)
		}
	}()
	if err := Write(f, scene); err != nil {
		return fmt.Errorf("objfile: write %s: %w", path, err)
	}
	return nil
}

func ff(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
