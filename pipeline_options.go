package pipeline

import (
	"log/slog"
	"time"

	"github.com/aenuguzocket/texteditor-pipeline/detect"
	"github.com/aenuguzocket/texteditor-pipeline/fonts"
	"github.com/aenuguzocket/texteditor-pipeline/mask"
	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// Options holds configuration for a pipeline run. Every knob a stage
// consults lives here; stages receive values, never globals.
type Options struct {
	// Role policy
	keepRoles       model.RoleSet // survive in the background mask
	protectedRoles  model.RoleSet // shield overlapping detections during reconciliation
	renderableRoles model.RoleSet // eligible for line clustering and re-rendering

	// Reconciliation geometry
	padBase float64
	padFrac float64

	// Dilation
	maskDilation  mask.DilationParams // background mask
	layerDilation mask.DilationParams // per-layer erase masks

	// Region filtering before rendering
	overlapThreshold float64

	// Detection
	detector      detect.Detector
	detectTimeout time.Duration

	// Fonts. catalog and assets, when set, are process-shared instances
	// injected by the caller; clones keep pointing at the same ones so
	// concurrent runs share one catalog cache and one asset memo. When
	// nil, each run opens the catalog from catalogPath/catalogURL and
	// builds its own loader.
	catalog        *fonts.Catalog
	assets         *fonts.Assets
	catalogPath    string
	catalogURL     string
	fontCacheDir   string
	fallbackFamily string
	seedTable      map[string][]string

	// Background patches
	patchDir string

	// Output
	outputDir string

	// Logging
	logger *slog.Logger
}

// defaultOptions returns the production defaults: logos, icons, product
// text and UI elements are kept and protected; headings, subheadings,
// body, CTAs, USPs and labels are re-rendered; padding is 15px + 10%;
// the background mask gets two 5x5 dilation passes and per-layer masks
// one; regions under 20% mask overlap are not re-rendered.
func defaultOptions() Options {
	return Options{
		keepRoles:        model.NewRoleSet(model.RoleLogo, model.RoleIcon, model.RoleProductText, model.RoleUIElement),
		protectedRoles:   model.NewRoleSet(model.RoleProductText, model.RoleUIElement, model.RoleLogo),
		renderableRoles:  model.NewRoleSet(model.RoleHeading, model.RoleSubheading, model.RoleBody, model.RoleCTA, model.RoleUSP, model.RoleLabel),
		padBase:          15,
		padFrac:          0.10,
		maskDilation:     mask.DefaultDilation(),
		layerDilation:    mask.DilationParams{KernelSize: 5, Iterations: 1},
		overlapThreshold: 0.20,
		detectTimeout:    20 * time.Second,
		logger:           slog.Default(),
	}
}

// clone creates a deep copy of Options.
func (o Options) clone() Options {
	newOpts := o

	newOpts.keepRoles = cloneRoleSet(o.keepRoles)
	newOpts.protectedRoles = cloneRoleSet(o.protectedRoles)
	newOpts.renderableRoles = cloneRoleSet(o.renderableRoles)

	if o.seedTable != nil {
		newOpts.seedTable = make(map[string][]string, len(o.seedTable))
		for k, v := range o.seedTable {
			newOpts.seedTable[k] = append([]string(nil), v...)
		}
	}

	return newOpts
}

func cloneRoleSet(s model.RoleSet) model.RoleSet {
	if s == nil {
		return nil
	}
	out := make(model.RoleSet, len(s))
	for r, v := range s {
		out[r] = v
	}
	return out
}
