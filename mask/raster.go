package mask

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// coverageThreshold converts anti-aliased polygon coverage into a
// binary decision. Pixels at least half covered become part of the
// erase area; everything else stays preserved. Thresholding keeps the
// mask restricted to {0, 255} and byte-stable across runs.
const coverageThreshold = 128

// FillPolygon rasterizes the polygon as filled white onto dst.
// Polygons with fewer than three vertices are ignored. dst must be a
// zero-origin raster (the package only creates such masks): the
// rasterizer's coordinate space starts at (0,0).
func FillPolygon(dst *image.Gray, pg model.Polygon) {
	if len(pg) < 3 {
		return
	}

	bounds := dst.Bounds()
	r := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	r.DrawOp = draw.Src

	r.MoveTo(float32(pg[0].X), float32(pg[0].Y))
	for _, p := range pg[1:] {
		r.LineTo(float32(p.X), float32(p.Y))
	}
	r.ClosePath()

	cov := image.NewAlpha(bounds)
	r.Draw(cov, bounds, image.Opaque, image.Point{})

	thresholdInto(dst, cov)
}

// FillBBox rasterizes the bounding box as filled white onto dst,
// clipped to the raster. Used when a region carries no polygon. Like
// FillPolygon, dst must be a zero-origin raster.
func FillBBox(dst *image.Gray, b model.BBox) {
	rect := image.Rect(int(b.X), int(b.Y), int(b.Right()+0.5), int(b.Bottom()+0.5))
	rect = rect.Intersect(dst.Bounds())

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := dst.Pix[y*dst.Stride+rect.Min.X : y*dst.Stride+rect.Max.X]
		for i := range row {
			row[i] = 255
		}
	}
}

// thresholdInto ORs the thresholded coverage buffer into the mask.
func thresholdInto(dst *image.Gray, cov *image.Alpha) {
	bounds := dst.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if cov.Pix[cov.PixOffset(x, y)] >= coverageThreshold {
				dst.Pix[dst.PixOffset(x, y)] = 255
			}
		}
	}
}
