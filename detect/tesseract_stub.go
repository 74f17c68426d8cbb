//go:build !ocr

package detect

import (
	"context"
	"errors"
	"image"
)

// ErrOCRNotEnabled is returned when the Tesseract detector is used but
// OCR support was not compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Tesseract is the stub detector used when the "ocr" build tag is not
// set. All operations return ErrOCRNotEnabled.
type Tesseract struct{}

// NewTesseract returns an error indicating OCR support is not enabled.
// To enable it, rebuild with: go build -tags ocr
func NewTesseract() (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub detector.
// It is safe to call on a nil detector.
func (t *Tesseract) Close() error {
	return nil
}

// SetLanguage returns an error indicating OCR support is not enabled.
func (t *Tesseract) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// DetectText returns an error indicating OCR support is not enabled.
func (t *Tesseract) DetectText(ctx context.Context, img image.Image) ([]Detection, error) {
	return nil, ErrOCRNotEnabled
}
