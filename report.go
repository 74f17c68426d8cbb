package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/aenuguzocket/texteditor-pipeline/fonts"
	"github.com/aenuguzocket/texteditor-pipeline/reconcile"
	"github.com/aenuguzocket/texteditor-pipeline/render"
)

// DecisionCounts summarizes what the run decided, for inspection
// without re-running: how many regions were considered, filtered and
// rendered, and how many detections were erased across all layers.
type DecisionCounts struct {
	RegionsTotal    int `json:"regions_total"`
	RegionsFiltered int `json:"regions_filtered"`
	LinesRendered   int `json:"lines_rendered"`
	ErasedTotal     int `json:"erased_total"`
}

// Report is the structured record of one run, persisted as report.json
// in the run directory.
type Report struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	ReferenceWidth  int `json:"reference_width"`
	ReferenceHeight int `json:"reference_height"`

	Layers     []reconcile.Outcome `json:"layers"`
	Placements []render.Placement  `json:"placements"`
	FontsUsed  []fonts.Resolution  `json:"fonts_used"`
	Decisions  DecisionCounts      `json:"decisions"`

	Warnings []string `json:"warnings,omitempty"`
}

func newReport(refW, refH int) Report {
	return Report{
		RunID:           uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		ReferenceWidth:  refW,
		ReferenceHeight: refH,
	}
}
