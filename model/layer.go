package model

import (
	"image"
	"image/draw"
)

// Layer is one raster in an ordered image decomposition. Z index 0 is
// the base layer and is never erased; higher layers stack on top of it.
// Layer dimensions may differ from the canonical reference image; the
// reconciler computes per-layer scale factors against the reference.
type Layer struct {
	// Z is the stacking index; 0 is the base.
	Z int

	// Name identifies the layer in reports and persisted artifacts.
	Name string

	// Image is the layer raster with straight (non-premultiplied) alpha.
	Image *image.NRGBA
}

// Width returns the layer raster width in pixels, or 0 for a nil raster.
func (l Layer) Width() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the layer raster height in pixels, or 0 for a nil raster.
func (l Layer) Height() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// CloneImage returns a deep copy of the layer raster, or nil when the
// layer has no raster. Stages that modify pixels work on a clone so the
// original decomposition stays intact for persistence. Copying goes
// through draw.Src so sub-image rasters with a parent's stride clone
// correctly.
func (l Layer) CloneImage() *image.NRGBA {
	if l.Image == nil {
		return nil
	}
	dst := image.NewNRGBA(l.Image.Bounds())
	draw.Draw(dst, dst.Bounds(), l.Image, l.Image.Bounds().Min, draw.Src)
	return dst
}
