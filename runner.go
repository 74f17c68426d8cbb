package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/aenuguzocket/texteditor-pipeline/composite"
	"github.com/aenuguzocket/texteditor-pipeline/detect"
	"github.com/aenuguzocket/texteditor-pipeline/fonts"
	"github.com/aenuguzocket/texteditor-pipeline/layout"
	"github.com/aenuguzocket/texteditor-pipeline/mask"
	"github.com/aenuguzocket/texteditor-pipeline/model"
	"github.com/aenuguzocket/texteditor-pipeline/reconcile"
	"github.com/aenuguzocket/texteditor-pipeline/render"
)

// Runner provides a fluent interface for configuring and executing one
// reconciliation run. Each configuration method returns a new Runner
// instance, making it safe for concurrent use and allowing method
// chaining.
type Runner struct {
	// Inputs
	reference image.Image
	layers    []model.Layer
	regions   []model.Region

	// Configuration
	options Options

	// Accumulated error (fail-fast)
	err error
}

// Result holds everything a run produced.
type Result struct {
	// Composed is the final canvas: cleaned layers, background patches,
	// re-rendered text.
	Composed *image.NRGBA

	// Mask is the binary erase/preserve mask for the reference.
	Mask *image.Gray

	// CleanedLayers are the layers after per-layer erasure, same order
	// as the input.
	CleanedLayers []model.Layer

	// Lines are the clustered text lines that were rendered.
	Lines []layout.Line

	// Placements record where and how each line was drawn.
	Placements []render.Placement

	// FontsUsed are the font resolutions actually drawn with.
	FontsUsed []fonts.Resolution

	// Report is the structured run record.
	Report Report

	// RunDir is the artifact directory, empty when persistence is off.
	RunDir string
}

// clone creates a shallow copy of the Runner with a deep copy of options.
func (r *Runner) clone() *Runner {
	return &Runner{
		reference: r.reference,
		layers:    r.layers,
		regions:   r.regions,
		options:   r.options.clone(),
		err:       r.err,
	}
}

// ============================================================================
// Configuration Methods (return new Runner instance)
// ============================================================================

// WithDetector sets the local text detector used during layer
// reconciliation. Without a detector the reconcile stage is skipped and
// every layer passes through preserved.
func (r *Runner) WithDetector(d detect.Detector) *Runner {
	newRun := r.clone()
	newRun.options.detector = d
	return newRun
}

// KeepRoles replaces the set of roles preserved in the background mask.
func (r *Runner) KeepRoles(roles ...model.Role) *Runner {
	newRun := r.clone()
	newRun.options.keepRoles = model.NewRoleSet(roles...)
	return newRun
}

// ProtectRoles replaces the set of roles that shield overlapping
// detections from per-layer erasure.
func (r *Runner) ProtectRoles(roles ...model.Role) *Runner {
	newRun := r.clone()
	newRun.options.protectedRoles = model.NewRoleSet(roles...)
	return newRun
}

// RenderRoles replaces the set of roles eligible for re-rendering.
func (r *Runner) RenderRoles(roles ...model.Role) *Runner {
	newRun := r.clone()
	newRun.options.renderableRoles = model.NewRoleSet(roles...)
	return newRun
}

// Padding sets the protection padding: base pixels plus a fraction of
// each region dimension, applied per axis.
func (r *Runner) Padding(base, frac float64) *Runner {
	newRun := r.clone()
	newRun.options.padBase = base
	newRun.options.padFrac = frac
	return newRun
}

// MaskDilation sets the dilation applied to the background mask.
func (r *Runner) MaskDilation(kernelSize, iterations int) *Runner {
	newRun := r.clone()
	newRun.options.maskDilation = mask.DilationParams{KernelSize: kernelSize, Iterations: iterations}
	return newRun
}

// LayerDilation sets the dilation applied to per-layer erase masks.
func (r *Runner) LayerDilation(kernelSize, iterations int) *Runner {
	newRun := r.clone()
	newRun.options.layerDilation = mask.DilationParams{KernelSize: kernelSize, Iterations: iterations}
	return newRun
}

// OverlapThreshold sets the minimum fraction of a region's box that
// must be covered by the erase mask for the region to be re-rendered.
// Regions below it were preserved and must not be drawn over.
func (r *Runner) OverlapThreshold(t float64) *Runner {
	newRun := r.clone()
	newRun.options.overlapThreshold = t
	return newRun
}

// DetectionTimeout bounds each per-layer detection call.
func (r *Runner) DetectionTimeout(d time.Duration) *Runner {
	newRun := r.clone()
	newRun.options.detectTimeout = d
	return newRun
}

// WithFontService injects a process-shared font catalog and asset
// loader, typically constructed once at startup. Runs sharing a service
// hit one catalog cache (refresh stays single-writer inside Catalog)
// and each (family, weight) font program is fetched and parsed once per
// process. Without it each run opens its own catalog per FontCatalog
// and builds a fresh loader.
func (r *Runner) WithFontService(catalog *fonts.Catalog, assets *fonts.Assets) *Runner {
	newRun := r.clone()
	newRun.options.catalog = catalog
	newRun.options.assets = assets
	return newRun
}

// FontCatalog sets the catalog snapshot path and refresh URL used when
// no shared font service is injected. Either may be empty.
func (r *Runner) FontCatalog(path, url string) *Runner {
	newRun := r.clone()
	newRun.options.catalogPath = path
	newRun.options.catalogURL = url
	return newRun
}

// FontCacheDir sets the directory where fetched font files are cached.
func (r *Runner) FontCacheDir(dir string) *Runner {
	newRun := r.clone()
	newRun.options.fontCacheDir = dir
	return newRun
}

// FallbackFamily sets the caller-preferred fallback font family, tried
// before the similar-family seed table.
func (r *Runner) FallbackFamily(family string) *Runner {
	newRun := r.clone()
	newRun.options.fallbackFamily = family
	return newRun
}

// SeedTable replaces the similar-family table used during font
// resolution.
func (r *Runner) SeedTable(seed map[string][]string) *Runner {
	newRun := r.clone()
	newRun.options.seedTable = seed
	return newRun
}

// PatchDir sets the directory background patch references resolve
// against.
func (r *Runner) PatchDir(dir string) *Runner {
	newRun := r.clone()
	newRun.options.patchDir = dir
	return newRun
}

// OutputDir enables artifact persistence: each run writes its inputs,
// intermediates and report into a fresh directory under dir, named by
// the run ID.
func (r *Runner) OutputDir(dir string) *Runner {
	newRun := r.clone()
	newRun.options.outputDir = dir
	return newRun
}

// WithLogger sets the structured logger for stage progress.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	newRun := r.clone()
	newRun.options.logger = logger
	return newRun
}

// ============================================================================
// Terminal Operation
// ============================================================================

// Run validates the inputs and executes the stages in order: mask
// synthesis, layer reconciliation, compositing with background patches,
// line clustering, glyph fitting, rendering, and (when configured)
// artifact persistence.
//
// Returns the result, any warnings encountered during processing, and
// an error if the run failed. Warnings indicate non-fatal issues (a
// layer's detection failed, a font fell back) where the run succeeded
// but results may be imperfect.
func (r *Runner) Run(ctx context.Context) (*Result, []Warning, error) {
	if r.err != nil {
		return nil, nil, r.err
	}

	store, err := r.validate()
	if err != nil {
		return nil, nil, err
	}

	o := r.options
	log := o.logger
	if log == nil {
		log = slog.Default()
	}

	var warnings []Warning
	warn := func(stage, format string, args ...any) {
		w := Warning{Stage: stage, Message: fmt.Sprintf(format, args...)}
		warnings = append(warnings, w)
		log.Warn(w.Message, "stage", stage)
	}

	report := newReport(store.RefWidth(), store.RefHeight())
	report.Decisions.RegionsTotal = store.Len()
	log.Info("run started", "run_id", report.RunID, "regions", store.Len(), "layers", len(r.layers))

	// Stage 1: background mask.
	eraseMask := mask.NewSynthesizer(o.keepRoles, o.maskDilation).Synthesize(store)
	log.Info("mask synthesized", "width", store.RefWidth(), "height", store.RefHeight())

	// Stage 2: per-layer reconciliation.
	cleaned, outcomes := r.reconcileLayers(ctx, store, warn)
	for _, out := range outcomes {
		report.Decisions.ErasedTotal += out.Erased
	}
	report.Layers = outcomes

	// Stage 3: composite cleaned layers, then paste background patches.
	compositor := composite.New()
	canvas, skips, err := compositor.Compose(cleaned)
	if err != nil {
		return nil, warnings, err
	}
	for _, s := range skips {
		warn("composite", "layer %s (z %d) skipped: %s", s.Layer, s.Z, s.Reason)
	}
	for _, s := range compositor.PasteBackgroundBoxes(canvas, store.All(), composite.DirPatches{Dir: o.patchDir}) {
		warn("composite", "region %s: %s", s.Layer, s.Reason)
	}
	log.Info("layers composited", "width", canvas.Bounds().Dx(), "height", canvas.Bounds().Dy())

	// Stage 4: cluster the regions that were actually erased.
	renderable := r.filterRendered(store, eraseMask, &report)
	lines := layout.NewClusterer(o.renderableRoles).Cluster(renderable)
	report.Decisions.LinesRendered = len(lines)
	log.Info("lines clustered", "regions", len(renderable), "lines", len(lines))

	// Stage 5: resolve fonts, fit and draw.
	placements, used, notes := r.renderLines(ctx, canvas, lines, warn)
	for _, n := range notes {
		warn("render", "%s: %s", n.Line, n.Message)
	}
	report.Placements = placements
	report.FontsUsed = used
	log.Info("text rendered", "placements", len(placements), "fonts", len(used))

	for _, w := range warnings {
		report.Warnings = append(report.Warnings, w.String())
	}

	result := &Result{
		Composed:      canvas,
		Mask:          eraseMask,
		CleanedLayers: cleaned,
		Lines:         lines,
		Placements:    placements,
		FontsUsed:     used,
		Report:        report,
	}

	// Stage 6: persist artifacts.
	if o.outputDir != "" {
		runDir, err := persistRun(o.outputDir, r.reference, r.layers, result)
		if err != nil {
			return nil, warnings, fmt.Errorf("persisting run artifacts: %w", err)
		}
		result.RunDir = runDir
		log.Info("artifacts persisted", "dir", runDir)
	}

	log.Info("run finished", "run_id", report.RunID, "warnings", len(warnings))
	return result, warnings, nil
}

// validate checks the run inputs and builds the region store.
func (r *Runner) validate() (*model.RegionStore, error) {
	if r.reference == nil {
		return nil, inputError("reference", "reference image is nil")
	}
	refBounds := r.reference.Bounds()
	if refBounds.Dx() <= 0 || refBounds.Dy() <= 0 {
		return nil, inputError("reference", "reference image is empty (%dx%d)", refBounds.Dx(), refBounds.Dy())
	}
	if len(r.regions) == 0 {
		return nil, inputError("regions", "no regions supplied")
	}
	if len(r.layers) == 0 {
		return nil, inputError("layers", "no layers supplied")
	}

	store, err := model.NewRegionStore(r.regions, refBounds.Dx(), refBounds.Dy())
	if err != nil {
		return nil, inputError("regions", "%v", err)
	}
	return store, nil
}

// reconcileLayers runs per-layer erasure, or passes layers through when
// no detector is configured.
func (r *Runner) reconcileLayers(ctx context.Context, store *model.RegionStore, warn func(string, string, ...any)) ([]model.Layer, []reconcile.Outcome) {
	o := r.options

	if o.detector == nil {
		warn("reconcile", "no detector configured, layers passed through unmodified")
		outcomes := make([]reconcile.Outcome, len(r.layers))
		for i, layer := range r.layers {
			outcomes[i] = reconcile.Outcome{Layer: layer.Name, Z: layer.Z, Status: reconcile.StatusPreserved}
		}
		return r.layers, outcomes
	}

	reconciler := reconcile.New(o.detector, reconcile.Config{
		Protected: o.protectedRoles,
		PadBase:   o.padBase,
		PadFrac:   o.padFrac,
		Dilation:  o.layerDilation,
		Timeout:   o.detectTimeout,
	})

	cleaned, outcomes := reconciler.CleanLayers(ctx, r.layers, store)
	for _, out := range outcomes {
		if out.Status == reconcile.StatusDetectionFailed {
			warn("reconcile", "layer %s (z %d): %s", out.Layer, out.Z, out.Error)
		}
	}
	return cleaned, outcomes
}

// filterRendered drops regions whose box the erase mask barely touched:
// they were preserved in place and re-rendering would double them.
func (r *Runner) filterRendered(store *model.RegionStore, m *image.Gray, report *Report) []model.Region {
	o := r.options

	var out []model.Region
	for _, region := range store.All() {
		if !o.renderableRoles.Has(region.Role) {
			continue
		}
		if mask.Coverage(m, region.BBox) < o.overlapThreshold {
			report.Decisions.RegionsFiltered++
			continue
		}
		out = append(out, region)
	}
	return out
}

// renderLines builds the font stack and draws the clustered lines.
func (r *Runner) renderLines(ctx context.Context, canvas *image.NRGBA, lines []layout.Line, warn func(string, string, ...any)) ([]render.Placement, []fonts.Resolution, []render.Note) {
	o := r.options

	catalog := o.catalog
	if catalog == nil {
		var err error
		catalog, err = fonts.OpenCatalog(fonts.CatalogConfig{Path: o.catalogPath, URL: o.catalogURL})
		if err != nil {
			warn("fonts", "catalog unavailable, resolving against empty snapshot: %v", err)
			catalog = fonts.NewCatalogFromEntries(nil)
		}
	}

	assets := o.assets
	if assets == nil {
		assets = fonts.NewAssets(o.fontCacheDir, 0)
	}

	resolver := fonts.NewResolver(catalog, o.seedTable)
	renderer := render.New(resolver, assets, layout.NewFitter(), o.fallbackFamily)

	return renderer.Render(ctx, canvas, lines)
}
