package mask

import "image"

// Dilate applies square-kernel morphological dilation to a binary mask
// and returns a new raster. The kernel size is in pixels (a 5 means a
// 5x5 neighborhood); even sizes are rounded up to the next odd size.
// Dilation is monotonic: every pixel that was 255 before stays 255.
func Dilate(src *image.Gray, kernelSize, iterations int) *image.Gray {
	if kernelSize < 3 || iterations < 1 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}

	radius := kernelSize / 2

	cur := image.NewGray(src.Bounds())
	copy(cur.Pix, src.Pix)

	for i := 0; i < iterations; i++ {
		cur = dilateVertical(dilateHorizontal(cur, radius), radius)
	}
	return cur
}

// dilateHorizontal is one separable pass of the square-kernel max
// filter. Binary masks make the max a simple neighborhood-any test.
func dilateHorizontal(src *image.Gray, radius int) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(bounds)

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := 0; x < w; x++ {
			lo := x - radius
			if lo < 0 {
				lo = 0
			}
			hi := x + radius
			if hi >= w {
				hi = w - 1
			}
			for i := lo; i <= hi; i++ {
				if row[i] == 255 {
					out[x] = 255
					break
				}
			}
		}
	}
	return dst
}

func dilateVertical(src *image.Gray, radius int) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(bounds)

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			lo := y - radius
			if lo < 0 {
				lo = 0
			}
			hi := y + radius
			if hi >= h {
				hi = h - 1
			}
			for i := lo; i <= hi; i++ {
				if src.Pix[i*src.Stride+x] == 255 {
					dst.Pix[y*dst.Stride+x] = 255
					break
				}
			}
		}
	}
	return dst
}
