package mask

import (
	"image"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// DilationParams configures the morphological dilation applied after
// rasterization.
type DilationParams struct {
	// KernelSize is the square kernel side length in pixels.
	KernelSize int

	// Iterations is the number of dilation passes.
	Iterations int
}

// DefaultDilation returns the dilation used for the inpainting mask:
// a 5x5 kernel applied twice, wide enough to absorb anti-aliasing
// halos around erased glyphs.
func DefaultDilation() DilationParams {
	return DilationParams{KernelSize: 5, Iterations: 2}
}

// Synthesizer builds the binary erase/preserve mask from a RegionStore.
type Synthesizer struct {
	keep     model.RoleSet
	dilation DilationParams
}

// NewSynthesizer creates a Synthesizer. Regions whose role is in keep
// are preserved (left black); every other region is marked for erasure.
func NewSynthesizer(keep model.RoleSet, dilation DilationParams) *Synthesizer {
	return &Synthesizer{keep: keep, dilation: dilation}
}

// Synthesize rasterizes every region outside the KEEP set as filled
// white (erase) on a black (preserve) raster sized to the store's
// canonical reference dimensions, then dilates the result. Regions
// without a polygon fall back to their bounding box.
func (s *Synthesizer) Synthesize(store *model.RegionStore) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, store.RefWidth(), store.RefHeight()))

	for _, region := range store.All() {
		if s.keep.Has(region.Role) {
			continue
		}

		if len(region.Polygon) >= 3 {
			FillPolygon(out, region.Polygon)
		} else {
			FillBBox(out, region.BBox)
		}
	}

	return Dilate(out, s.dilation.KernelSize, s.dilation.Iterations)
}

// Coverage returns the fraction of a bounding box covered by erase
// pixels (value 255), between 0 and 1. The box is clamped to the mask
// bounds; boxes fully outside the mask report zero coverage. Used to
// decide whether a region was actually erased before re-rendering it.
func Coverage(m *image.Gray, b model.BBox) float64 {
	rect := image.Rect(int(b.X), int(b.Y), int(b.Right()+0.5), int(b.Bottom()+0.5))
	rect = rect.Intersect(m.Bounds())
	if rect.Empty() {
		return 0
	}

	white := 0
	total := rect.Dx() * rect.Dy()
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := m.Pix[y*m.Stride+rect.Min.X : y*m.Stride+rect.Max.X]
		for _, v := range row {
			if v > 127 {
				white++
			}
		}
	}
	return float64(white) / float64(total)
}

// IsBinary reports whether every pixel of the mask is 0 or 255.
func IsBinary(m *image.Gray) bool {
	for _, v := range m.Pix {
		if v != 0 && v != 255 {
			return false
		}
	}
	return true
}
