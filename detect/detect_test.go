package detect

import (
	"testing"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

func TestRectPolygon(t *testing.T) {
	b := model.NewBBox(10, 20, 100, 50)
	pg := RectPolygon(b)

	if len(pg) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(pg))
	}

	want := model.Polygon{{X: 10, Y: 20}, {X: 110, Y: 20}, {X: 110, Y: 70}, {X: 10, Y: 70}}
	for i, p := range want {
		if pg[i] != p {
			t.Errorf("vertex %d: got %v, want %v", i, pg[i], p)
		}
	}

	// The polygon's envelope must reproduce the box.
	if env := pg.BBox(); env != b {
		t.Errorf("envelope mismatch: got %+v, want %+v", env, b)
	}
}
