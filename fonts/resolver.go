package fonts

import (
	"context"
	"sort"
	"strings"
)

// DefaultFamily is the hard-coded last-resort family, backed by the
// embedded Go fonts so resolution can never fail outright.
const DefaultFamily = "Go"

// weightNames maps CSS-style weight names to numeric values.
var weightNames = map[string]int{
	"thin":       100,
	"hairline":   100,
	"extralight": 200,
	"ultralight": 200,
	"light":      300,
	"regular":    400,
	"normal":     400,
	"medium":     500,
	"semibold":   600,
	"demibold":   600,
	"bold":       700,
	"extrabold":  800,
	"ultrabold":  800,
	"black":      900,
	"heavy":      900,
}

// ParseWeight converts a weight name ("bold", "semi-bold") to its
// numeric value. Unknown names resolve to 400.
func ParseWeight(name string) int {
	key := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(name, "-", ""), " ", ""))
	if w, ok := weightNames[key]; ok {
		return w
	}
	return 400
}

// NormalizeWeight clamps a numeric weight to [100, 900] and rounds it
// to the nearest multiple of 100.
func NormalizeWeight(weight int) int {
	if weight < 100 {
		weight = 100
	}
	if weight > 900 {
		weight = 900
	}
	return ((weight + 50) / 100) * 100
}

// Step identifies which rung of the fallback chain produced a resolution.
type Step int

const (
	StepExact Step = iota
	StepPrimaryNear
	StepFallbackExact
	StepFallbackCloser
	StepSeedExact
	StepSeedCloser
	StepCategoryScan
	StepPrimaryClosest
	StepDefault
)

func (s Step) String() string {
	switch s {
	case StepExact:
		return "exact"
	case StepPrimaryNear:
		return "primary_near"
	case StepFallbackExact:
		return "fallback_exact"
	case StepFallbackCloser:
		return "fallback_closer"
	case StepSeedExact:
		return "seed_exact"
	case StepSeedCloser:
		return "seed_closer"
	case StepCategoryScan:
		return "category_scan"
	case StepPrimaryClosest:
		return "primary_closest"
	default:
		return "default"
	}
}

// Request is a font resolution request.
type Request struct {
	// Family is the primary requested family.
	Family string

	// Fallback is an optional caller-supplied fallback family, tried
	// before the seed table.
	Fallback string

	// Weight is the requested numeric weight. Normalized on entry.
	Weight int
}

// Resolution is the concrete (family, weight) a request resolved to,
// together with the asset source and the chain rung that decided it.
type Resolution struct {
	Family string `json:"family"`
	Weight int    `json:"weight"`
	File   string `json:"file,omitempty"`
	Step   Step   `json:"-"`
}

// Key returns the memoization key for the resolution's asset.
func (r Resolution) Key() string {
	return r.Family + "/" + weightVariant(r.Weight)
}

// Resolver resolves font requests against a catalog. The chain itself
// is a pure function of (request, snapshot); the Resolver adds the one
// stateful behavior on top: a single catalog refresh attempt when the
// primary family is missing from the snapshot.
type Resolver struct {
	catalog *Catalog
	seed    map[string][]string
}

// NewResolver creates a Resolver over the catalog. A nil seed table
// uses DefaultSeedTable.
func NewResolver(catalog *Catalog, seed map[string][]string) *Resolver {
	if seed == nil {
		seed = DefaultSeedTable()
	}
	return &Resolver{catalog: catalog, seed: seed}
}

// Resolve resolves the request. An unknown primary family triggers one
// catalog refresh before resolution proceeds on the fresh snapshot;
// refresh failure is not fatal, resolution continues on the stale
// snapshot and bottoms out at the default family if nothing matches.
func (r *Resolver) Resolve(ctx context.Context, req Request) Resolution {
	snap := r.catalog.Snapshot()

	if _, ok := snap[req.Family]; !ok {
		if err := r.catalog.Refresh(ctx); err == nil {
			snap = r.catalog.Snapshot()
		}
	}

	return ResolveSnapshot(req, snap, r.seed)
}

// ResolveSnapshot walks the fallback chain against a fixed snapshot.
// Resolution order, first success wins:
//
//	(a) exact (family, weight) in the catalog
//	(b) closest available weight on the primary family within ±100
//	(c) exact weight on the fallback family
//	(d) fallback family weight strictly closer than (b)'s distance
//	(e) seed-similar families in table order, first exact weight
//	(f) best seed-similar weight strictly closer than (b)'s distance
//	(g) same-category scan, weight distance ≤200, sorted by
//	    (distance, name), only if strictly better than (b)'s distance
//	(h) primary family at its closest weight regardless of distance
//
// Weight-distance ties throughout resolve to the lighter weight. A
// primary family absent from the snapshot skips to the fallback rungs
// and ultimately the default family at 400 (or 700 when the request is
// ≥600).
func ResolveSnapshot(req Request, snap Snapshot, seed map[string][]string) Resolution {
	weight := NormalizeWeight(req.Weight)

	primary, primaryKnown := snap[req.Family]
	var primaryWeights []int
	if primaryKnown {
		primaryWeights = primary.Weights()
	}

	// (a) exact
	if containsWeight(primaryWeights, weight) {
		return resolved(primary, weight, StepExact)
	}

	primaryClosest, primaryDist := closestWeight(primaryWeights, weight)

	// (b) primary within ±100
	if primaryClosest != 0 && primaryDist <= 100 {
		return resolved(primary, primaryClosest, StepPrimaryNear)
	}

	// (c), (d) fallback family
	if fb, ok := snap[req.Fallback]; ok && req.Fallback != "" {
		fbWeights := fb.Weights()
		if containsWeight(fbWeights, weight) {
			return resolved(fb, weight, StepFallbackExact)
		}
		if fbClosest, fbDist := closestWeight(fbWeights, weight); fbClosest != 0 && fbDist < primaryDist {
			return resolved(fb, fbClosest, StepFallbackCloser)
		}
	}

	// (e), (f) seed table
	var bestSeed Entry
	bestSeedWeight := 0
	bestSeedDist := primaryDist
	for _, name := range seed[req.Family] {
		sim, ok := snap[name]
		if !ok {
			continue
		}
		weights := sim.Weights()
		if containsWeight(weights, weight) {
			return resolved(sim, weight, StepSeedExact)
		}
		if closest, dist := closestWeight(weights, weight); closest != 0 && dist < bestSeedDist {
			bestSeed = sim
			bestSeedWeight = closest
			bestSeedDist = dist
		}
	}
	if bestSeedWeight != 0 {
		return resolved(bestSeed, bestSeedWeight, StepSeedCloser)
	}

	// (g) dynamic same-category scan
	if primaryKnown {
		if cand, candWeight, candDist, ok := scanCategory(primary, weight, snap); ok && candDist < primaryDist {
			return resolved(cand, candWeight, StepCategoryScan)
		}
	}

	// (h) primary at its closest weight, any distance
	if primaryClosest != 0 {
		return resolved(primary, primaryClosest, StepPrimaryClosest)
	}

	// Unresolvable family: hard-coded default.
	return DefaultResolution(weight)
}

// DefaultResolution is the last-resort resolution on the embedded
// default family: 700 for requests of 600 and above, 400 otherwise.
func DefaultResolution(weight int) Resolution {
	w := 400
	if NormalizeWeight(weight) >= 600 {
		w = 700
	}
	return Resolution{Family: DefaultFamily, Weight: w, Step: StepDefault}
}

func resolved(e Entry, weight int, step Step) Resolution {
	file, _ := e.File(weight)
	return Resolution{Family: e.Family, Weight: weight, File: file, Step: step}
}

func containsWeight(weights []int, w int) bool {
	for _, have := range weights {
		if have == w {
			return true
		}
	}
	return false
}

// closestWeight returns the available weight nearest the target and its
// distance. Ties resolve to the lighter weight: weights are scanned in
// ascending order and only a strictly smaller distance displaces the
// current best. Returns (0, large) for an empty list.
func closestWeight(weights []int, target int) (int, int) {
	best, bestDist := 0, 1<<30
	for _, w := range weights {
		dist := w - target
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best, bestDist = w, dist
		}
	}
	return best, bestDist
}

// scanCategory finds the best same-category candidate: weight distance
// at most 200, ordered by (distance, family name).
func scanCategory(primary Entry, target int, snap Snapshot) (Entry, int, int, bool) {
	type candidate struct {
		entry  Entry
		weight int
		dist   int
	}

	var candidates []candidate
	for name, e := range snap {
		if name == primary.Family || e.Category != primary.Category {
			continue
		}
		closest, dist := closestWeight(e.Weights(), target)
		if closest == 0 || dist > 200 {
			continue
		}
		candidates = append(candidates, candidate{entry: e, weight: closest, dist: dist})
	}

	if len(candidates) == 0 {
		return Entry{}, 0, 0, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].entry.Family < candidates[j].entry.Family
	})

	best := candidates[0]
	return best.entry, best.weight, best.dist, true
}
