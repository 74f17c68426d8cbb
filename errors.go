package pipeline

import (
	"fmt"

	"github.com/aenuguzocket/texteditor-pipeline/composite"
)

// ErrNoUsableLayers is returned when no layer could be composited.
var ErrNoUsableLayers = composite.ErrNoUsableLayers

// InputError reports invalid run inputs. It is fatal and raised before
// any stage executes.
type InputError struct {
	// Field names the offending input ("reference", "regions", "layers").
	Field string

	// Reason describes what is wrong with it.
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

func inputError(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
