package texture

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

type decodeFunc func(io.Reader) (image.Image, error)

// The tga package registers an empty magic string with image.Decode, which
// then claims every stream. Decoders are therefore chosen here directly.
var decoders = map[string]decodeFunc{
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".tga":  tga.Decode,
}

// LoadTexture decodes a PNG, JPEG, GIF, BMP or TGA file into NRGBA. The
// extension picks the decoder; unknown extensions are sniffed.
func LoadTexture(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		decode = sniff(r)
	}
	img, err := decode(r)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return toNRGBA(img), nil
}

// sniff picks a decoder from the leading bytes. TGA has no signature, so
// it is the fallback.
func sniff(r *bufio.Reader) decodeFunc {
	head, _ := r.Peek(8)
	switch {
	case bytes.HasPrefix(head, []byte("\x89PNG\r\n\x1a\n")):
		return png.Decode
	case bytes.HasPrefix(head, []byte("\xff\xd8")):
		return jpeg.Decode
	case bytes.HasPrefix(head, []byte("GIF8")):
		return gif.Decode
	case bytes.HasPrefix(head, []byte("BM")):
		return bmp.Decode
	}
	return tga.Decode
}

// toNRGBA converts any image to NRGBA with its origin at (0,0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
