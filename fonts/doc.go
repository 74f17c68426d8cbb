// Package fonts resolves requested (family, weight) pairs to concrete
// renderable font assets.
//
// The catalog maps font families to their available numeric weights and
// file sources. It is loaded from a local JSON snapshot (the same
// family-keyed shape the Google Fonts webfonts API returns) and can be
// refreshed over HTTP; refresh is single-writer while reads work on
// immutable snapshots, so concurrent runs share one catalog safely.
//
// Resolution walks a deterministic fallback chain: exact match, near
// weight on the primary family, the supplied fallback family, a seed
// table of visually similar families, a same-category catalog scan, and
// finally the primary family at its closest weight. A fully
// unresolvable request lands on the embedded Go fonts.
package fonts
