// Package pipeline provides a fluent API for reconciling text regions
// in decomposed image layers: unwanted text is erased from the layers,
// the cleaned layers are recomposited with their background patches,
// and the surviving text is re-rendered in its detected style with
// deterministic font resolution.
//
// Basic usage:
//
//	result, warnings, err := pipeline.New(reference, layers, regions).
//	    WithDetector(detector).
//	    OutputDir("runs").
//	    Run(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pipeline.FormatWarnings(warnings))
//	}
//
// With options:
//
//	result, _, err := pipeline.New(reference, layers, regions).
//	    ProtectRoles(model.RoleLogo, model.RoleProductText).
//	    Padding(20, 0.15).
//	    FontCatalog("fonts.json", catalogURL).
//	    Run(ctx)
//
// For advanced use cases the lower-level mask, reconcile, composite,
// layout, fonts and render packages are also available.
package pipeline

import (
	"image"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// New creates a Runner over a reference image, its decomposed layers
// and the detected text regions. Configuration methods return fresh
// Runner instances; execute with the terminal Run.
//
// Example:
//
//	result, warnings, err := pipeline.New(reference, layers, regions).Run(ctx)
func New(reference image.Image, layers []model.Layer, regions []model.Region) *Runner {
	return &Runner{
		reference: reference,
		layers:    layers,
		regions:   regions,
		options:   defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustRun is a helper that wraps a call to Run and panics if the error
// is non-nil. It discards warnings and returns just the result.
func MustRun(res *Result, _ []Warning, err error) *Result {
	if err != nil {
		panic(err)
	}
	return res
}
