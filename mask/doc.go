// Package mask synthesizes the binary erase/preserve raster handed to
// the inpainting collaborator. Regions outside the KEEP role-set are
// rasterized as filled white polygons on a black raster; the result is
// dilated so anti-aliasing halos around the original glyphs are
// absorbed into the erase area.
//
// Masks are single-channel rasters restricted to the values 0
// (preserve) and 255 (erase), and synthesis is deterministic: the same
// RegionStore always produces byte-identical mask pixels.
package mask
