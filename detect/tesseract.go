//go:build ocr

package detect

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// Tesseract performs local text re-detection through the Tesseract OCR
// engine. A Tesseract value is not safe for concurrent use; create one
// per goroutine or serialize calls.
type Tesseract struct {
	client *gosseract.Client
}

// NewTesseract creates a Tesseract detector.
// The detector should be closed when no longer needed to release resources.
func NewTesseract() (*Tesseract, error) {
	client := gosseract.NewClient()
	return &Tesseract{client: client}, nil
}

// Close releases OCR resources.
func (t *Tesseract) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// SetLanguage sets the language(s) for recognition.
// Multiple languages can be specified as a "+" separated string (e.g. "eng+fra").
// Default is "eng" (English).
func (t *Tesseract) SetLanguage(lang string) error {
	return t.client.SetLanguage(lang)
}

// DetectText runs word-level detection on the raster and returns one
// Detection per recognized word box. The engine itself is not
// cancellable, so the call runs in a goroutine and the result is
// abandoned when the context expires first.
func (t *Tesseract) DetectText(ctx context.Context, img image.Image) ([]Detection, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding detection input: %w", err)
	}

	type result struct {
		boxes []gosseract.BoundingBox
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
			ch <- result{err: fmt.Errorf("failed to set image: %w", err)}
			return
		}
		boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
		if err != nil {
			ch <- result{err: fmt.Errorf("OCR failed: %w", err)}
			return
		}
		ch <- result{boxes: boxes}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return convertBoxes(res.boxes), nil
	}
}

func convertBoxes(boxes []gosseract.BoundingBox) []Detection {
	detections := make([]Detection, 0, len(boxes))
	for _, b := range boxes {
		bbox := model.NewBBox(
			float64(b.Box.Min.X),
			float64(b.Box.Min.Y),
			float64(b.Box.Dx()),
			float64(b.Box.Dy()),
		)
		detections = append(detections, Detection{
			BBox:       bbox,
			Polygon:    RectPolygon(bbox),
			Text:       b.Word,
			Confidence: b.Confidence,
		})
	}
	return detections
}
