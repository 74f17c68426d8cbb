package composite

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

func fillNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCompose_AscendingZRegardlessOfInputOrder(t *testing.T) {
	red := fillNRGBA(10, 10, color.NRGBA{255, 0, 0, 255})
	blue := fillNRGBA(10, 10, color.NRGBA{0, 0, 255, 255})

	// Passed out of order: z2 first. The z2 layer must still end up on top.
	layers := []model.Layer{
		{Z: 2, Name: "layer_02", Image: blue},
		{Z: 0, Name: "layer_00", Image: red},
	}

	canvas, skips, err := New().Compose(layers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skips) != 0 {
		t.Errorf("unexpected skips: %v", skips)
	}
	if got := canvas.NRGBAAt(5, 5); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("top pixel = %+v, want blue", got)
	}
}

func TestCompose_TransparentPixelsRevealLowerLayers(t *testing.T) {
	base := fillNRGBA(10, 10, color.NRGBA{255, 0, 0, 255})

	top := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	top.SetNRGBA(3, 3, color.NRGBA{0, 255, 0, 255}) // single opaque pixel

	canvas, _, err := New().Compose([]model.Layer{
		{Z: 0, Name: "layer_00", Image: base},
		{Z: 1, Name: "layer_01", Image: top},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := canvas.NRGBAAt(3, 3); got != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("opaque top pixel lost: %+v", got)
	}
	if got := canvas.NRGBAAt(7, 7); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("transparent area should reveal base: %+v", got)
	}
}

func TestCompose_MismatchedLayerResizedToCanvas(t *testing.T) {
	base := fillNRGBA(20, 20, color.NRGBA{255, 0, 0, 255})
	half := fillNRGBA(10, 10, color.NRGBA{0, 0, 255, 255})

	canvas, skips, err := New().Compose([]model.Layer{
		{Z: 0, Name: "layer_00", Image: base},
		{Z: 1, Name: "layer_01", Image: half},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skips) != 0 {
		t.Errorf("unexpected skips: %v", skips)
	}

	// The smaller opaque layer must cover the whole canvas after resize.
	for _, p := range []image.Point{{0, 0}, {19, 19}, {10, 10}} {
		if got := canvas.NRGBAAt(p.X, p.Y); got != (color.NRGBA{0, 0, 255, 255}) {
			t.Errorf("pixel %v = %+v, want blue", p, got)
		}
	}
}

func TestCompose_UnreadableLayerSkippedWithWarning(t *testing.T) {
	base := fillNRGBA(10, 10, color.NRGBA{255, 0, 0, 255})

	canvas, skips, err := New().Compose([]model.Layer{
		{Z: 0, Name: "layer_00", Image: base},
		{Z: 1, Name: "layer_01", Image: nil},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skips) != 1 || skips[0].Layer != "layer_01" {
		t.Errorf("expected one skip for layer_01, got %v", skips)
	}
	if got := canvas.NRGBAAt(5, 5); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("canvas corrupted by skipped layer: %+v", got)
	}
}

func TestCompose_NoUsableLayersIsFatal(t *testing.T) {
	_, _, err := New().Compose([]model.Layer{
		{Z: 0, Name: "layer_00", Image: nil},
		{Z: 1, Name: "layer_01", Image: nil},
	})
	if !errors.Is(err, ErrNoUsableLayers) {
		t.Errorf("expected ErrNoUsableLayers, got %v", err)
	}
}

func TestPasteBackgroundBoxes_PatchAlphaRespected(t *testing.T) {
	dir := t.TempDir()

	// Patch: 4x4, opaque green left half, transparent right half.
	patch := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			patch.SetNRGBA(x, y, color.NRGBA{0, 255, 0, 255})
		}
	}
	writePNG(t, filepath.Join(dir, "plate.png"), patch)

	canvas := fillNRGBA(10, 10, color.NRGBA{255, 0, 0, 255})
	regions := []model.Region{{
		ID: "cta-1",
		Background: &model.BackgroundBox{
			Detected: true,
			BBox:     model.NewBBox(2, 2, 4, 4),
			Patch:    "plate.png",
		},
	}}

	skips := New().PasteBackgroundBoxes(canvas, regions, DirPatches{Dir: dir})
	if len(skips) != 0 {
		t.Fatalf("unexpected skips: %v", skips)
	}

	if got := canvas.NRGBAAt(2, 3); got != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("opaque patch half not pasted: %+v", got)
	}
	if got := canvas.NRGBAAt(5, 3); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("transparent patch half should keep canvas: %+v", got)
	}
}

func TestPasteBackgroundBoxes_MissingPatchSkipped(t *testing.T) {
	canvas := fillNRGBA(10, 10, color.NRGBA{255, 0, 0, 255})
	regions := []model.Region{
		{ID: "a", Background: &model.BackgroundBox{Detected: true, BBox: model.NewBBox(0, 0, 4, 4), Patch: "absent.png"}},
		{ID: "b", Background: &model.BackgroundBox{Detected: false}},
		{ID: "c"},
	}

	skips := New().PasteBackgroundBoxes(canvas, regions, DirPatches{Dir: t.TempDir()})
	if len(skips) != 1 || skips[0].Layer != "a" {
		t.Errorf("expected one skip for region a, got %v", skips)
	}
}

func TestCompose_NoBackgroundsRoundTrips(t *testing.T) {
	// Pasting with zero detected backgrounds must leave the canvas
	// byte-identical.
	canvas := fillNRGBA(6, 6, color.NRGBA{9, 8, 7, 255})
	before := append([]byte(nil), canvas.Pix...)

	New().PasteBackgroundBoxes(canvas, []model.Region{{ID: "x"}}, DirPatches{})

	for i := range before {
		if canvas.Pix[i] != before[i] {
			t.Fatal("canvas modified without any background boxes")
		}
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
