package tml

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Write emits materials in order, so materials[i] pairs with index i+1.
func Write(w io.Writer, materials []Material) error {
	bw := bufio.NewWriter(w)
	for i, m := range materials {
		if m.Name == "" || strings.ContainsAny(m.Name, "\r\n") || strings.HasPrefix(m.Name, " ") || strings.HasPrefix(m.Name, "\t") {
			return fmt.Errorf("tml: material %d has an unwritable name %q", i, m.Name)
		}
		fmt.Fprintln(bw, m.Name)
		if m.Shader != "" {
			fmt.Fprintf(bw, "  SHADER %s\n", m.Shader)
		}
		for _, p := range m.Params {
			vals := make([]string, len(p.Values))
			for j, v := range p.Values {
				if p.Kind == Int {
					vals[j] = strconv.FormatInt(int64(v), 10)
				} else {
					vals[j] = strconv.FormatFloat(v, 'g', -1, 64)
				}
			}
			fmt.Fprintf(bw, "  %s %s %s\n", p.Kind, p.Name, strings.Join(vals, " "))
		}
		for _, t := range m.Textures {
			fmt.Fprintf(bw, "  TEXTUREMAP %s\n", t.Ref)
		}
	}
	return bw.Flush()
}

// WriteFile writes the sidecar to path.
func WriteFile(path string, materials []Material) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tml: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("tml: close %s: %w", path, cerr)
		}
	}()
	if err := Write(f, materials); err != nil {
		return fmt.Errorf("tml: write %s: %w", path, err)
	}
	return nil
}
