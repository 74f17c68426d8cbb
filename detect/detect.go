// Package detect defines the local text re-detection boundary used by
// the layer reconciler. Detection itself is an external collaborator;
// this package provides the interface plus a Tesseract-backed
// implementation for runs without a remote detector.
//
// The Tesseract implementation wraps the gosseract library and is only
// compiled with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package detect

import (
	"context"
	"image"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// Detection is one locally detected text fragment on a layer raster,
// in that layer's own pixel coordinates.
type Detection struct {
	// BBox is the axis-aligned envelope of the fragment.
	BBox model.BBox

	// Polygon is the fragment outline. Detectors that only produce
	// rectangles populate it with the box corners.
	Polygon model.Polygon

	// Text is the recognized content, possibly empty.
	Text string

	// Confidence is the detector's score for the fragment, 0..100.
	Confidence float64
}

// Detector re-detects text on a single raster. Implementations must
// honor context cancellation; the reconciler calls with a bounded
// timeout and treats an error as a recoverable per-layer failure.
type Detector interface {
	DetectText(ctx context.Context, img image.Image) ([]Detection, error)
}

// RectPolygon returns the four corners of a bounding box as a polygon,
// clockwise from the top-left.
func RectPolygon(b model.BBox) model.Polygon {
	return model.Polygon{
		{X: b.Left(), Y: b.Top()},
		{X: b.Right(), Y: b.Top()},
		{X: b.Right(), Y: b.Bottom()},
		{X: b.Left(), Y: b.Bottom()},
	}
}
