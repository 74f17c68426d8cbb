package reconcile

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/aenuguzocket/texteditor-pipeline/detect"
	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// stubDetector returns a fixed set of detections, or an error.
type stubDetector struct {
	detections []detect.Detection
	err        error
}

func (s *stubDetector) DetectText(ctx context.Context, img image.Image) ([]detect.Detection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detections, nil
}

func solidLayer(z int, name string, w, h int) model.Layer {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 10
		img.Pix[i+1] = 20
		img.Pix[i+2] = 30
		img.Pix[i+3] = 255
	}
	return model.Layer{Z: z, Name: name, Image: img}
}

func mustStore(t *testing.T, regions []model.Region, w, h int) *model.RegionStore {
	t.Helper()
	store, err := model.NewRegionStore(regions, w, h)
	if err != nil {
		t.Fatalf("building store: %v", err)
	}
	return store
}

func detection(b model.BBox) detect.Detection {
	return detect.Detection{BBox: b, Polygon: detect.RectPolygon(b), Text: "x"}
}

func TestCleanLayers_LayerZeroNeverModified(t *testing.T) {
	// A detection dead-center in a removable heading: any other layer
	// would be cleaned, but layer 0 must pass through untouched.
	store := mustStore(t, []model.Region{
		{ID: "h", BBox: model.NewBBox(100, 100, 200, 50), Role: model.RoleHeading, Text: "SALE"},
	}, 400, 400)

	det := &stubDetector{detections: []detect.Detection{
		detection(model.NewBBox(150, 110, 100, 30)),
	}}

	layer := solidLayer(0, "layer_00", 400, 400)
	before := append([]byte(nil), layer.Image.Pix...)

	r := New(det, DefaultConfig())
	cleaned, outcomes := r.CleanLayers(context.Background(), []model.Layer{layer}, store)

	if outcomes[0].Status != StatusPreserved {
		t.Errorf("layer 0 status = %s, want preserved", outcomes[0].Status)
	}
	if !bytes.Equal(cleaned[0].Image.Pix, before) {
		t.Error("layer 0 pixels were modified")
	}
}

func TestCleanLayers_RemovableErased(t *testing.T) {
	store := mustStore(t, []model.Region{
		{ID: "h", BBox: model.NewBBox(100, 100, 200, 50), Role: model.RoleHeading, Text: "SALE"},
	}, 400, 400)

	d := detection(model.NewBBox(150, 110, 100, 30))
	det := &stubDetector{detections: []detect.Detection{d}}

	r := New(det, DefaultConfig())
	cleaned, outcomes := r.CleanLayers(context.Background(), []model.Layer{solidLayer(1, "layer_01", 400, 400)}, store)

	if outcomes[0].Status != StatusCleaned || outcomes[0].Erased != 1 {
		t.Fatalf("unexpected outcome: %+v", outcomes[0])
	}

	// Alpha zeroed inside the detection, color channels untouched.
	img := cleaned[0].Image
	c := img.NRGBAAt(200, 125)
	if c.A != 0 {
		t.Errorf("expected alpha 0 inside erased detection, got %d", c.A)
	}
	if c.R != 10 || c.G != 20 || c.B != 30 {
		t.Errorf("color channels modified: %+v", c)
	}

	// Far corner untouched.
	if img.NRGBAAt(390, 390).A != 255 {
		t.Error("alpha erased outside the detection area")
	}
}

func TestCleanLayers_ProtectionWinsRegardlessOfOrder(t *testing.T) {
	// One detection overlapping BOTH a removable heading and a padded
	// protected logo. Whatever the global evaluation order, protection
	// must win.
	heading := model.Region{ID: "h", BBox: model.NewBBox(100, 100, 200, 50), Role: model.RoleHeading, Text: "SALE"}
	logo := model.Region{ID: "l", BBox: model.NewBBox(240, 90, 80, 40), Role: model.RoleLogo, Text: "BRAND"}

	d := detection(model.NewBBox(150, 110, 120, 30)) // center (210,125): inside heading, bbox reaches logo padding

	orderings := [][]model.Region{
		{heading, logo},
		{logo, heading},
	}

	for i, regions := range orderings {
		store := mustStore(t, regions, 400, 400)
		det := &stubDetector{detections: []detect.Detection{d}}

		r := New(det, DefaultConfig())
		cleaned, outcomes := r.CleanLayers(context.Background(), []model.Layer{solidLayer(1, "layer_01", 400, 400)}, store)

		if outcomes[0].Status != StatusPreserved {
			t.Errorf("ordering %d: status = %s, want preserved", i, outcomes[0].Status)
		}
		if cleaned[0].Image.NRGBAAt(200, 125).A != 255 {
			t.Errorf("ordering %d: protected detection was erased", i)
		}
	}
}

func TestCleanLayers_CenterOnPaddedBoundaryIsContained(t *testing.T) {
	// Global heading at (100,100) 200x50, layer == reference scale.
	// Padding: 15 + 10% of dimension -> padded left edge at
	// 100 - (15+20) = 65. A detection centered exactly on x=65 must be
	// treated as contained (boundary inclusive) and erased.
	store := mustStore(t, []model.Region{
		{ID: "h", BBox: model.NewBBox(100, 100, 200, 50), Role: model.RoleHeading, Text: "SALE"},
	}, 400, 400)

	d := detection(model.NewBBox(55, 115, 20, 20)) // center (65, 125)
	det := &stubDetector{detections: []detect.Detection{d}}

	r := New(det, DefaultConfig())
	_, outcomes := r.CleanLayers(context.Background(), []model.Layer{solidLayer(1, "layer_01", 400, 400)}, store)

	if outcomes[0].Status != StatusCleaned {
		t.Errorf("boundary center not treated as contained: %+v", outcomes[0])
	}
}

func TestCleanLayers_EmptyTextNotRemovable(t *testing.T) {
	// A region with no recognized text must not trigger removal, even
	// when the detection center sits inside it.
	store := mustStore(t, []model.Region{
		{ID: "g", BBox: model.NewBBox(100, 100, 200, 50), Role: model.RoleBody, Text: ""},
	}, 400, 400)

	det := &stubDetector{detections: []detect.Detection{
		detection(model.NewBBox(150, 110, 100, 30)),
	}}

	r := New(det, DefaultConfig())
	_, outcomes := r.CleanLayers(context.Background(), []model.Layer{solidLayer(1, "layer_01", 400, 400)}, store)

	if outcomes[0].Status != StatusPreserved {
		t.Errorf("empty-text region caused erasure: %+v", outcomes[0])
	}
}

func TestCleanLayers_DetectionFailureSkipsLayer(t *testing.T) {
	store := mustStore(t, []model.Region{
		{ID: "h", BBox: model.NewBBox(100, 100, 200, 50), Role: model.RoleHeading, Text: "SALE"},
	}, 400, 400)

	det := &stubDetector{err: errors.New("detector offline")}

	layer := solidLayer(1, "layer_01", 400, 400)
	before := append([]byte(nil), layer.Image.Pix...)

	r := New(det, DefaultConfig())
	cleaned, outcomes := r.CleanLayers(context.Background(), []model.Layer{layer}, store)

	if outcomes[0].Status != StatusDetectionFailed {
		t.Errorf("status = %s, want detection_failed", outcomes[0].Status)
	}
	if outcomes[0].Error == "" {
		t.Error("expected error detail in outcome")
	}
	if !bytes.Equal(cleaned[0].Image.Pix, before) {
		t.Error("failed layer was modified")
	}
}

func TestCleanLayers_ScalesGlobalRegionsIntoLayerSpace(t *testing.T) {
	// Reference is 400x400; the layer is 200x200 (scale 0.5). The
	// global heading at (100,100) 200x50 lands at (50,50) 100x25 in
	// layer space. A detection there must be erased.
	store := mustStore(t, []model.Region{
		{ID: "h", BBox: model.NewBBox(100, 100, 200, 50), Role: model.RoleHeading, Text: "SALE"},
	}, 400, 400)

	d := detection(model.NewBBox(60, 52, 40, 15)) // center (80, 59.5) in layer space
	det := &stubDetector{detections: []detect.Detection{d}}

	r := New(det, DefaultConfig())
	_, outcomes := r.CleanLayers(context.Background(), []model.Layer{solidLayer(1, "layer_01", 200, 200)}, store)

	if outcomes[0].Status != StatusCleaned {
		t.Errorf("scaled region not matched: %+v", outcomes[0])
	}
}

func TestCleanLayers_SubImageLayerCleaned(t *testing.T) {
	// A layer raster cut from a larger atlas keeps a non-zero origin and
	// the parent's stride; cleaning must still erase in the raster's own
	// coordinate space without panicking.
	store := mustStore(t, []model.Region{
		{ID: "h", BBox: model.NewBBox(100, 100, 200, 50), Role: model.RoleHeading, Text: "SALE"},
	}, 400, 400)

	atlas := image.NewNRGBA(image.Rect(0, 0, 500, 500))
	for i := 0; i < len(atlas.Pix); i += 4 {
		atlas.Pix[i] = 10
		atlas.Pix[i+1] = 20
		atlas.Pix[i+2] = 30
		atlas.Pix[i+3] = 255
	}
	sub := atlas.SubImage(image.Rect(50, 50, 450, 450)).(*image.NRGBA)

	det := &stubDetector{detections: []detect.Detection{
		detection(model.NewBBox(150, 110, 100, 30)),
	}}

	r := New(det, DefaultConfig())
	cleaned, outcomes := r.CleanLayers(context.Background(), []model.Layer{{Z: 1, Name: "layer_01", Image: sub}}, store)

	if outcomes[0].Status != StatusCleaned || outcomes[0].Erased != 1 {
		t.Fatalf("unexpected outcome: %+v", outcomes[0])
	}

	// Detection coordinates are raster-local: (200,125) maps to the
	// absolute pixel (250,175) in the sub-image's coordinate space.
	img := cleaned[0].Image
	c := img.NRGBAAt(250, 175)
	if c.A != 0 {
		t.Errorf("erasure missed the sub-image raster: %+v", c)
	}
	if c.R != 10 || c.G != 20 || c.B != 30 {
		t.Errorf("clone garbled the color channels: %+v", c)
	}
	if img.NRGBAAt(60, 60).A != 255 {
		t.Error("alpha erased outside the detection area")
	}
}

func TestCleanLayers_WhiteCompositeHandedToDetector(t *testing.T) {
	// A fully transparent layer must reach the detector as opaque white.
	var seen *image.NRGBA
	det := detectFunc(func(ctx context.Context, img image.Image) ([]detect.Detection, error) {
		seen = img.(*image.NRGBA)
		return nil, nil
	})

	store := mustStore(t, []model.Region{
		{ID: "h", BBox: model.NewBBox(0, 0, 10, 10), Role: model.RoleHeading, Text: "x"},
	}, 50, 50)

	transparent := model.Layer{Z: 1, Name: "layer_01", Image: image.NewNRGBA(image.Rect(0, 0, 50, 50))}

	r := New(det, DefaultConfig())
	r.CleanLayers(context.Background(), []model.Layer{transparent}, store)

	if seen == nil {
		t.Fatal("detector was not called")
	}
	if got := seen.NRGBAAt(25, 25); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("expected white composite, got %+v", got)
	}
}

type detectFunc func(ctx context.Context, img image.Image) ([]detect.Detection, error)

func (f detectFunc) DetectText(ctx context.Context, img image.Image) ([]detect.Detection, error) {
	return f(ctx, img)
}
