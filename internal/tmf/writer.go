package tmf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/flywave/go3d/vec3"
)

// Create writes doc to path, replacing any existing file. The file is
// closed on every path; a failed close is reported like a failed write.
func Create(path string, doc *Document) (err error) {
	if err := Validate(doc); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tmf: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("tmf: close %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Write(bw, doc); err != nil {
		return fmt.Errorf("tmf: write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("tmf: write %s: %w", path, err)
	}
	return nil
}

// Validate checks the constraints the layout itself imposes: counts that
// fit their fields and ASCII helper names. It does not check indices.
func Validate(doc *Document) error {
	if len(doc.Objects) > math.MaxUint16 {
		return fmt.Errorf("tmf: %d objects exceed the uint16 object count", len(doc.Objects))
	}
	if len(doc.Helpers) > math.MaxUint16 {
		return fmt.Errorf("tmf: %d helpers exceed the uint16 helper count", len(doc.Helpers))
	}
	for i, h := range doc.Helpers {
		for j := 0; j < len(h.Name); j++ {
			if h.Name[j] > 0x7f {
				return fmt.Errorf("tmf: helper %d name %q is not ASCII", i, h.Name)
			}
		}
		if uint64(len(h.Name)) > math.MaxUint32 {
			return fmt.Errorf("tmf: helper %d name too long", i)
		}
	}
	for i := range doc.Objects {
		o := &doc.Objects[i]
		if uint64(len(o.Vertices)) > math.MaxUint32 || uint64(len(o.UVs)) > math.MaxUint32 || uint64(len(o.Triangles)) > math.MaxUint32 {
			return fmt.Errorf("tmf: object %d counts exceed uint32", i)
		}
	}
	return nil
}

// Write encodes doc. A zero doc.Version is written as Version.
func Write(w io.Writer, doc *Document) error {
	if err := Validate(doc); err != nil {
		return err
	}

	version := doc.Version
	if version == 0 {
		version = Version
	}

	buf := make([]byte, 0, 4096)
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint16(buf, version)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(doc.Objects)))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(doc.Helpers)))

	for _, h := range doc.Helpers {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(h.Name)))
		buf = append(buf, h.Name...)
		buf = appendVec3(buf, h.Position)
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}

	for i := range doc.Objects {
		o := &doc.Objects[i]
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint32(buf, o.MaterialIndex)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(o.Vertices)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(o.UVs)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(o.Triangles)))

		for _, v := range o.Vertices {
			buf = appendVec3(buf, v)
		}
		for _, uv := range o.UVs {
			buf = appendF32(buf, uv[0])
			buf = appendF32(buf, uv[1])
		}
		for _, t := range o.Triangles {
			for _, vi := range t.Vertex {
				buf = binary.LittleEndian.AppendUint32(buf, vi)
			}
			for _, ti := range t.UV {
				buf = binary.LittleEndian.AppendUint32(buf, ti)
			}
			for _, n := range t.Normal {
				buf = appendVec3(buf, n)
			}
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}

	return nil
}

func appendF32(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}

func appendVec3(b []byte, v vec3.T) []byte {
	b = appendF32(b, v[0])
	b = appendF32(b, v[1])
	return appendF32(b, v[2])
}
