package layout

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// Fit is a sized, positioned piece of text ready to draw.
type Fit struct {
	// Face is the sized face to draw with.
	Face font.Face

	// Size is the final point size. Zero when the fallback face is used.
	Size int

	// Dot is the baseline origin for font.Drawer.
	Dot fixed.Point26_6

	// Width and Height are the measured visual dimensions at Size.
	Width, Height float64

	// Fallback is true when measurement failed and the fixed bitmap
	// face was substituted at the box's top-left.
	Fallback bool
}

// Fitter sizes text into target boxes by binary search over the point
// size, measuring rendered visual bounds at each step.
type Fitter struct {
	// MaxSize bounds the search. Defaults to 2000.
	MaxSize int

	// HeightFrac is the fraction of the box height the glyphs may fill.
	// Defaults to 0.95, leaving breathing room for descenders.
	HeightFrac float64

	// HeadingGrace is the width overflow factor permitted for headings
	// before downscaling kicks in. Defaults to 1.10.
	HeadingGrace float64

	// DPI for face instantiation. Defaults to 72 so point size equals
	// pixel size.
	DPI float64
}

// NewFitter returns a Fitter with production defaults.
func NewFitter() *Fitter {
	return &Fitter{MaxSize: 2000, HeightFrac: 0.95, HeadingGrace: 1.10, DPI: 72}
}

// Fit sizes text into box. The largest integer size in [1, MaxSize]
// whose measured visual height stays within HeightFrac of the box
// height is found by binary search, then the width is checked: headings
// may overflow horizontally up to HeadingGrace; past that they are
// scaled back to the grace limit, not the bare box width. Every other
// role is hard-clamped to the box width. Scaling only ever shrinks. The result is horizontally centered and anchored
// to the box top. Any face or measurement failure falls back to the
// fixed bitmap face at the box's top-left.
func (f *Fitter) Fit(fnt *sfnt.Font, text string, box model.BBox, role model.Role) Fit {
	if fnt == nil || text == "" {
		return f.fallback(box)
	}

	size, ok := f.searchHeight(fnt, text, box.Height)
	if !ok {
		return f.fallback(box)
	}

	bounds, err := f.measure(fnt, text, size)
	if err != nil {
		return f.fallback(box)
	}
	width := fixedToFloat(bounds.Max.X - bounds.Min.X)

	if width > box.Width {
		grace := 1.0
		if role == model.RoleHeading {
			grace = f.HeadingGrace
		}
		limit := box.Width * grace
		if width > limit {
			scaled := int(float64(size) * limit / width)
			if scaled < 1 {
				scaled = 1
			}
			size = scaled
			bounds, err = f.measure(fnt, text, size)
			if err != nil {
				return f.fallback(box)
			}
			width = fixedToFloat(bounds.Max.X - bounds.Min.X)
		}
	}

	face, err := f.newFace(fnt, size)
	if err != nil {
		return f.fallback(box)
	}

	height := fixedToFloat(bounds.Max.Y - bounds.Min.Y)
	dot := fixed.Point26_6{
		X: floatToFixed(box.Left()+(box.Width-width)/2) - bounds.Min.X,
		Y: floatToFixed(box.Top()) - bounds.Min.Y,
	}

	return Fit{Face: face, Size: size, Dot: dot, Width: width, Height: height}
}

// searchHeight finds the largest size whose visual height fits.
func (f *Fitter) searchHeight(fnt *sfnt.Font, text string, target float64) (int, bool) {
	limit := target * f.HeightFrac
	best := 0

	lo, hi := 1, f.MaxSize
	for lo <= hi {
		mid := (lo + hi) / 2
		bounds, err := f.measure(fnt, text, mid)
		if err != nil {
			return 0, false
		}
		h := fixedToFloat(bounds.Max.Y - bounds.Min.Y)
		if h <= limit {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	if best == 0 {
		// Even size 1 overflows; keep it rather than render nothing.
		best = 1
	}
	return best, true
}

func (f *Fitter) measure(fnt *sfnt.Font, text string, size int) (fixed.Rectangle26_6, error) {
	face, err := f.newFace(fnt, size)
	if err != nil {
		return fixed.Rectangle26_6{}, err
	}
	bounds, _ := font.BoundString(face, text)
	return bounds, nil
}

func (f *Fitter) newFace(fnt *sfnt.Font, size int) (font.Face, error) {
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     f.DPI,
		Hinting: font.HintingFull,
	})
}

func (f *Fitter) fallback(box model.BBox) Fit {
	face := basicfont.Face7x13
	return Fit{
		Face: face,
		Dot: fixed.Point26_6{
			X: floatToFixed(box.Left()),
			Y: floatToFixed(box.Top()) + face.Metrics().Ascent,
		},
		Fallback: true,
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
