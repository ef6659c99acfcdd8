package postprocess

import "image"

// DropSpecks clears 8-connected groups of covered pixels smaller than
// minRatio of all covered pixels. Sliver triangles seen edge-on leave such
// specks around the silhouette. img is not modified.
func DropSpecks(img *image.NRGBA, minRatio float64) *image.NRGBA {
	if minRatio <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	covered := func(x, y int) bool {
		return img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)+3] > 0
	}

	label := make([]int32, w*h) // 0 = unvisited, k = group k-1
	var sizes []int
	total := 0
	var stack []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if label[y*w+x] != 0 || !covered(x, y) {
				continue
			}
			id := int32(len(sizes) + 1)
			size := 0
			label[y*w+x] = id
			stack = append(stack[:0], y*w+x)
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				size++
				px, py := p%w, p/w
				for ny := max(py-1, 0); ny <= min(py+1, h-1); ny++ {
					for nx := max(px-1, 0); nx <= min(px+1, w-1); nx++ {
						q := ny*w + nx
						if label[q] == 0 && covered(nx, ny) {
							label[q] = id
							stack = append(stack, q)
						}
					}
				}
			}
			sizes = append(sizes, size)
			total += size
		}
	}
	if len(sizes) <= 1 {
		return img
	}

	limit := int(float64(total) * minRatio)
	out := image.NewNRGBA(b)
	copy(out.Pix, img.Pix)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			id := label[y*w+x]
			if id == 0 || sizes[id-1] >= limit {
				continue
			}
			i := out.PixOffset(b.Min.X+x, b.Min.Y+y)
			clear(out.Pix[i : i+4])
		}
	}
	return out
}
