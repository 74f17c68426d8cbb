package pipeline

import (
	"fmt"
	"strings"
)

// Warning represents a non-fatal issue encountered during a run.
// Warnings indicate the run succeeded but a stage degraded: a layer's
// detection failed, a font fell back, a background patch was skipped.
type Warning struct {
	// Stage is the pipeline stage that produced the warning
	// (e.g. "reconcile", "composite", "render").
	Stage string

	// Message describes the issue.
	Message string
}

// String returns a human-readable representation of the warning.
func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Stage, w.Message)
}

// FormatWarnings formats a slice of warnings as a multi-line string.
// Returns an empty string if there are no warnings.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}

	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
