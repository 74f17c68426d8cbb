// Package model defines the shared data model for the recomposition
// pipeline: raster-space geometry (points, boxes, polygons), detected
// text regions with their closed role classification and style, image
// layers, and the immutable per-run RegionStore.
//
// Coordinates are raster coordinates throughout: origin at the top-left
// corner, Y increasing downward, matching decoded image memory layout.
package model
