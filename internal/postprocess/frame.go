package postprocess

import (
	"image"
	"math"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// CropAndCenter crops img to its opaque pixels and centers the result on a
// transparent size x size canvas, scaled so its longer side fills
// fillRatio of the canvas.
func CropAndCenter(img *image.NRGBA, size int, fillRatio float64) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	box, ok := opaqueBounds(img)
	if !ok {
		return canvas
	}

	scale := float64(size) * fillRatio / math.Max(float64(box.Dx()), float64(box.Dy()))
	w := max(int(float64(box.Dx())*scale+0.5), 1)
	h := max(int(float64(box.Dy())*scale+0.5), 1)

	scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, box, draw.Src, nil)

	off := image.Pt((size-w)/2, (size-h)/2)
	draw.Draw(canvas, scaled.Bounds().Add(off), scaled, image.Point{}, draw.Src)
	return canvas
}

// opaqueBounds returns the bounding box of pixels with non-zero alpha.
func opaqueBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// Thumbnail scales img to fit in size x size, keeping its aspect ratio.
func Thumbnail(img image.Image, size int) *image.NRGBA {
	t := resize.Thumbnail(uint(size), uint(size), img, resize.Lanczos3)
	if n, ok := t.(*image.NRGBA); ok {
		return n
	}
	b := t.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), t, b.Min, draw.Src)
	return out
}
