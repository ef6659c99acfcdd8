package tmf

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// maxPrealloc caps slice capacity taken from untrusted counts; slices grow
// past it only as records are actually read.
const maxPrealloc = 1 << 16

// ReadOptions tunes Read. The zero value accepts any version.
type ReadOptions struct {
	// Strict rejects files whose version is not Version.
	Strict bool
}

// Parse reads a TMF file from disk. The file is closed before returning.
func Parse(path string, opts ReadOptions) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tmf: open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("tmf: parse %s: %w", path, err)
	}
	return doc, nil
}

// Read decodes a whole document. It never substitutes zero values for
// missing bytes: a short stream fails with a TruncatedError.
// Indices are not range-checked here.
func Read(r io.Reader, opts ReadOptions) (*Document, error) {
	rd := &reader{r: bufio.NewReader(r)}

	magic, err := rd.magic()
	if err != nil {
		return nil, err
	}
	hdr, err := rd.next(HeaderSize-len(Magic), "header")
	if err != nil {
		return nil, err
	}
	version := binary.LittleEndian.Uint16(hdr[0:])
	if opts.Strict && version != Version {
		return nil, &FormatError{Magic: magic, Version: version, Reason: fmt.Sprintf("unsupported version, want %d", Version)}
	}
	objectCount := int(binary.LittleEndian.Uint16(hdr[2:]))
	helperCount := int(binary.LittleEndian.Uint16(hdr[4:]))

	doc := &Document{
		Version: version,
		Helpers: make([]Helper, 0, helperCount),
		Objects: make([]Object, 0, objectCount),
	}

	for i := 0; i < helperCount; i++ {
		h, err := rd.helper(i)
		if err != nil {
			return nil, err
		}
		doc.Helpers = append(doc.Helpers, h)
	}

	for i := 0; i < objectCount; i++ {
		o, err := rd.object(i)
		if err != nil {
			return nil, err
		}
		doc.Objects = append(doc.Objects, o)
	}

	return doc, nil
}

type reader struct {
	r   *bufio.Reader
	off int64
	buf [triangleSize]byte
}

// next returns the following n bytes (n <= triangleSize). The slice is
// only valid until the next call.
func (r *reader) next(n int, section string) ([]byte, error) {
	b := r.buf[:n]
	got, err := io.ReadFull(r.r, b)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &TruncatedError{Section: section, Offset: r.off + int64(got), Err: err}
		}
		return nil, fmt.Errorf("tmf: read %s: %w", section, err)
	}
	r.off += int64(n)
	return b, nil
}

// magic reads the format tag. Bytes that already differ from Magic are a
// FormatError even when the stream ends before three bytes.
func (r *reader) magic() ([3]byte, error) {
	var m [3]byte
	got, err := io.ReadFull(r.r, m[:])
	r.off += int64(got)
	if string(m[:got]) != Magic[:got] {
		return m, &FormatError{Magic: m, Reason: "bad magic"}
	}
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return m, &TruncatedError{Section: "header", Offset: r.off, Err: err}
		}
		return m, fmt.Errorf("tmf: read header: %w", err)
	}
	return m, nil
}

func (r *reader) helper(i int) (Helper, error) {
	b, err := r.next(4, fmt.Sprintf("helper %d name length", i))
	if err != nil {
		return Helper{}, err
	}
	n := int64(binary.LittleEndian.Uint32(b))

	section := fmt.Sprintf("helper %d name", i)
	var name []byte
	if n > 0 {
		name = make([]byte, 0, min(n, maxPrealloc))
		for remaining := n; remaining > 0; {
			chunk := min(remaining, triangleSize)
			b, err := r.next(int(chunk), section)
			if err != nil {
				return Helper{}, err
			}
			name = append(name, b...)
			remaining -= chunk
		}
	}

	b, err = r.next(vertexSize, fmt.Sprintf("helper %d position", i))
	if err != nil {
		return Helper{}, err
	}
	return Helper{Name: string(name), Position: vec3At(b)}, nil
}

func (r *reader) object(i int) (Object, error) {
	b, err := r.next(objectHeaderSize, fmt.Sprintf("object %d header", i))
	if err != nil {
		return Object{}, err
	}
	materialIndex := binary.LittleEndian.Uint32(b[0:])
	nv := binary.LittleEndian.Uint32(b[4:])
	nuv := binary.LittleEndian.Uint32(b[8:])
	nt := binary.LittleEndian.Uint32(b[12:])

	o := Object{
		MaterialIndex: materialIndex,
		Vertices:      make([]vec3.T, 0, min(nv, maxPrealloc)),
		UVs:           make([]vec2.T, 0, min(nuv, maxPrealloc)),
		Triangles:     make([]Triangle, 0, min(nt, maxPrealloc)),
	}

	section := fmt.Sprintf("object %d vertices", i)
	for j := uint32(0); j < nv; j++ {
		b, err := r.next(vertexSize, section)
		if err != nil {
			return Object{}, err
		}
		o.Vertices = append(o.Vertices, vec3At(b))
	}

	section = fmt.Sprintf("object %d uvs", i)
	for j := uint32(0); j < nuv; j++ {
		b, err := r.next(uvSize, section)
		if err != nil {
			return Object{}, err
		}
		o.UVs = append(o.UVs, vec2.T{f32At(b[0:]), f32At(b[4:])})
	}

	section = fmt.Sprintf("object %d triangles", i)
	for j := uint32(0); j < nt; j++ {
		b, err := r.next(triangleSize, section)
		if err != nil {
			return Object{}, err
		}
		var t Triangle
		for k := 0; k < 3; k++ {
			t.Vertex[k] = binary.LittleEndian.Uint32(b[k*4:])
			t.UV[k] = binary.LittleEndian.Uint32(b[12+k*4:])
			t.Normal[k] = vec3At(b[24+k*12:])
		}
		o.Triangles = append(o.Triangles, t)
	}

	return o, nil
}

func f32At(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func vec3At(b []byte) vec3.T {
	return vec3.T{f32At(b[0:]), f32At(b[4:]), f32At(b[8:])}
}
