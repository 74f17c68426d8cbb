// Package composite rebuilds the cleaned canvas: cleaned layers are
// alpha-stacked in ascending z order, then pre-extracted background
// patches are pasted back so button plates and badges survive the
// erase with their gradients intact.
package composite

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"golang.org/x/image/draw"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// ErrNoUsableLayers is returned when every input layer is missing or
// unreadable and no canvas can be produced.
var ErrNoUsableLayers = errors.New("composite: no usable layers")

// Skip records a layer that could not participate in compositing. Skips
// are recoverable; the run surfaces them as warnings.
type Skip struct {
	Layer  string `json:"layer"`
	Z      int    `json:"z"`
	Reason string `json:"reason"`
}

// Compositor stacks layers into a single canvas.
type Compositor struct {
	scaler draw.Scaler
}

// New creates a Compositor. Size-mismatched layers are resampled with
// bilinear interpolation before stacking.
func New() *Compositor {
	return &Compositor{scaler: draw.BiLinear}
}

// Compose stacks the layers in ascending z order. The first usable
// layer establishes the canvas dimensions; subsequent layers with
// different dimensions are resized to the canvas, anchored top-left,
// before Over compositing. Unusable layers are skipped and reported.
func (c *Compositor) Compose(layers []model.Layer) (*image.NRGBA, []Skip, error) {
	ordered := make([]model.Layer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Z < ordered[j].Z })

	var canvas *image.NRGBA
	var skips []Skip

	for _, layer := range ordered {
		if layer.Image == nil || layer.Width() <= 0 || layer.Height() <= 0 {
			skips = append(skips, Skip{
				Layer:  layer.Name,
				Z:      layer.Z,
				Reason: "layer raster missing or empty",
			})
			continue
		}

		if canvas == nil {
			canvas = image.NewNRGBA(image.Rect(0, 0, layer.Width(), layer.Height()))
			draw.Draw(canvas, canvas.Bounds(), layer.Image, layer.Image.Bounds().Min, draw.Over)
			continue
		}

		if layer.Width() == canvas.Bounds().Dx() && layer.Height() == canvas.Bounds().Dy() {
			draw.Draw(canvas, canvas.Bounds(), layer.Image, layer.Image.Bounds().Min, draw.Over)
			continue
		}

		c.scaler.Scale(canvas, canvas.Bounds(), layer.Image, layer.Image.Bounds(), draw.Over, nil)
	}

	if canvas == nil {
		return nil, skips, ErrNoUsableLayers
	}
	return canvas, skips, nil
}

// PatchSource resolves a background patch reference to its raster.
type PatchSource interface {
	LoadPatch(ref string) (image.Image, error)
}

// PasteBackgroundBoxes pastes every detected background plate onto the
// canvas at its recorded position, using the patch's own alpha. Runs
// after layer stacking and before text rendering. A patch that cannot
// be loaded is skipped and reported; the region's text still renders.
func (c *Compositor) PasteBackgroundBoxes(canvas *image.NRGBA, regions []model.Region, patches PatchSource) []Skip {
	var skips []Skip

	for _, region := range regions {
		bg := region.Background
		if bg == nil || !bg.Detected {
			continue
		}

		patch, err := patches.LoadPatch(bg.Patch)
		if err != nil {
			skips = append(skips, Skip{
				Layer:  region.ID,
				Reason: fmt.Sprintf("background patch unreadable: %v", err),
			})
			continue
		}

		rect := image.Rect(
			int(bg.BBox.Left()), int(bg.BBox.Top()),
			int(bg.BBox.Right()), int(bg.BBox.Bottom()),
		)

		pb := patch.Bounds()
		if pb.Dx() == rect.Dx() && pb.Dy() == rect.Dy() {
			draw.Draw(canvas, rect, patch, pb.Min, draw.Over)
		} else {
			c.scaler.Scale(canvas, rect, patch, pb, draw.Over, nil)
		}
	}

	return skips
}
