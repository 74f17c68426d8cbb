// Package reconcile erases unwanted text from decomposed image layers
// without destroying protected content.
//
// Each layer is re-detected locally (its RGBA composited over opaque
// white first, since detectors fail on transparent regions), then every
// local detection is judged against the run's global regions scaled
// into layer space and inflated by adaptive padding. Protection has
// absolute priority: a detection touching a padded protected region is
// never erased, regardless of how many removable regions it also
// matches. The base layer (z 0) is never modified.
package reconcile

import (
	"context"
	"image"
	"image/draw"
	"time"

	"github.com/aenuguzocket/texteditor-pipeline/detect"
	"github.com/aenuguzocket/texteditor-pipeline/mask"
	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// Status is the per-layer cleaning outcome.
type Status string

const (
	// StatusPreserved means the layer was not modified.
	StatusPreserved Status = "preserved"

	// StatusCleaned means removable text pixels were erased.
	StatusCleaned Status = "cleaned"

	// StatusDetectionFailed means local re-detection failed or timed
	// out; the layer was preserved and the run continued.
	StatusDetectionFailed Status = "detection_failed"
)

// Outcome reports what happened to one layer.
type Outcome struct {
	Layer  string `json:"layer"`
	Z      int    `json:"z"`
	Status Status `json:"status"`
	Erased int    `json:"erased_regions"`
	Error  string `json:"error,omitempty"`
}

// Config holds the reconciliation policy. All constants are injectable;
// nothing is hard-coded per pipeline variant.
type Config struct {
	// Protected are the roles whose padded regions shield overlapping
	// local detections from erasure.
	Protected model.RoleSet

	// PadBase is the fixed padding in pixels added to each side of a
	// scaled global region.
	PadBase float64

	// PadFrac is the fractional padding added per axis, as a fraction
	// of the scaled dimension.
	PadFrac float64

	// Dilation is applied to each per-layer erase mask so glyph halos
	// are removed along with the glyphs.
	Dilation mask.DilationParams

	// Timeout bounds each per-layer detection call.
	Timeout time.Duration
}

// DefaultConfig returns the reconciliation policy used in production:
// product text, UI elements and logos are protected; padding is
// 15px + 10% per axis; erase masks get one pass of 5x5 dilation;
// detection is bounded at 20 seconds per layer.
func DefaultConfig() Config {
	return Config{
		Protected: model.NewRoleSet(model.RoleProductText, model.RoleUIElement, model.RoleLogo),
		PadBase:   15,
		PadFrac:   0.10,
		Dilation:  mask.DilationParams{KernelSize: 5, Iterations: 1},
		Timeout:   20 * time.Second,
	}
}

// Reconciler cleans decomposed layers against a RegionStore.
type Reconciler struct {
	detector detect.Detector
	cfg      Config
}

// New creates a Reconciler using the given local detector and policy.
func New(detector detect.Detector, cfg Config) *Reconciler {
	return &Reconciler{detector: detector, cfg: cfg}
}

// CleanLayers processes every layer in order and returns the cleaned
// layers plus one Outcome per input layer. Failures are per-layer and
// recoverable: a layer whose detection fails is passed through
// unmodified with StatusDetectionFailed.
func (r *Reconciler) CleanLayers(ctx context.Context, layers []model.Layer, store *model.RegionStore) ([]model.Layer, []Outcome) {
	cleaned := make([]model.Layer, 0, len(layers))
	outcomes := make([]Outcome, 0, len(layers))

	for _, layer := range layers {
		out, outcome := r.cleanLayer(ctx, layer, store)
		cleaned = append(cleaned, out)
		outcomes = append(outcomes, outcome)
	}

	return cleaned, outcomes
}

func (r *Reconciler) cleanLayer(ctx context.Context, layer model.Layer, store *model.RegionStore) (model.Layer, Outcome) {
	outcome := Outcome{Layer: layer.Name, Z: layer.Z, Status: StatusPreserved}

	// The base layer is never erased.
	if layer.Z == 0 || layer.Image == nil {
		return layer, outcome
	}

	detections, err := r.detectOnWhite(ctx, layer)
	if err != nil {
		outcome.Status = StatusDetectionFailed
		outcome.Error = err.Error()
		return layer, outcome
	}

	sx := float64(layer.Width()) / float64(store.RefWidth())
	sy := float64(layer.Height()) / float64(store.RefHeight())

	globals := store.All()
	erase := make([]detect.Detection, 0, len(detections))
	for _, d := range detections {
		if r.shouldErase(d, globals, sx, sy) {
			erase = append(erase, d)
		}
	}

	if len(erase) == 0 {
		return layer, outcome
	}

	layerMask := image.NewGray(image.Rect(0, 0, layer.Width(), layer.Height()))
	for _, d := range erase {
		if len(d.Polygon) >= 3 {
			mask.FillPolygon(layerMask, d.Polygon)
		} else {
			mask.FillBBox(layerMask, d.BBox)
		}
	}
	layerMask = mask.Dilate(layerMask, r.cfg.Dilation.KernelSize, r.cfg.Dilation.Iterations)

	out := layer
	out.Image = eraseAlpha(layer, layerMask)
	outcome.Status = StatusCleaned
	outcome.Erased = len(erase)
	return out, outcome
}

// detectOnWhite composites the layer over an opaque white background
// and runs local detection on the temporary composite, which is
// discarded afterwards. Dark text on a transparent background would
// otherwise vanish into the decoder's implicit black.
func (r *Reconciler) detectOnWhite(ctx context.Context, layer model.Layer) ([]detect.Detection, error) {
	bounds := layer.Image.Bounds()
	composite := image.NewNRGBA(bounds)
	draw.Draw(composite, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(composite, bounds, layer.Image, bounds.Min, draw.Over)

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	return r.detector.DetectText(ctx, composite)
}

// shouldErase decides one local detection against all global regions.
//
// Protection is checked first for each global and wins absolutely: any
// intersection between the detection's bbox and a padded protected
// region stops the scan immediately. Removal requires the detection's
// center to lie inside (boundary inclusive) a padded non-protected
// region that carries actual text; the scan continues across the
// remaining globals so a later protected region can still veto it.
func (r *Reconciler) shouldErase(d detect.Detection, globals []model.Region, sx, sy float64) bool {
	center := d.BBox.Center()
	removable := false

	for _, g := range globals {
		scaled := g.BBox.Scale(sx, sy)
		padded := scaled.ExpandXY(
			r.cfg.PadBase+scaled.Width*r.cfg.PadFrac,
			r.cfg.PadBase+scaled.Height*r.cfg.PadFrac,
		)

		if r.cfg.Protected.Has(g.Role) {
			if d.BBox.Intersects(padded) {
				return false
			}
			continue
		}

		if g.Text != "" && padded.Contains(center) {
			removable = true
		}
	}

	return removable
}

// eraseAlpha returns a copy of the layer raster with alpha zeroed
// wherever the mask is 255. Color channels are left untouched. The mask
// is zero-origin; the raster may be a sub-image with a non-zero origin,
// so indexing goes through the raster's own bounds.
func eraseAlpha(layer model.Layer, m *image.Gray) *image.NRGBA {
	out := layer.CloneImage()
	bounds := out.Bounds()

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if m.Pix[m.PixOffset(x, y)] == 255 {
				out.Pix[out.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)+3] = 0
			}
		}
	}
	return out
}
