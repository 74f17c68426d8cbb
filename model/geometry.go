package model

import "math"

// Point represents a 2D point in raster coordinates (origin top-left,
// Y increasing downward).
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents an axis-aligned bounding box in raster coordinates.
// X,Y is the top-left corner.
type BBox struct {
	X      float64 // Left
	Y      float64 // Top
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// NewBBoxFromPoints creates a bounding box from two points
func NewBBoxFromPoints(p1, p2 Point) BBox {
	x := math.Min(p1.X, p2.X)
	y := math.Min(p1.Y, p2.Y)
	width := math.Abs(p2.X - p1.X)
	height := math.Abs(p2.Y - p1.Y)
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y + b.Height
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: b.X + b.Width/2,
		Y: b.Y + b.Height/2,
	}
}

// Contains checks if a point is inside the bounding box.
// All four edges are inclusive.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Top() && p.Y <= b.Bottom()
}

// Intersects checks if two bounding boxes intersect
func (b BBox) Intersects(other BBox) bool {
	return !(b.Right() < other.Left() ||
		b.Left() > other.Right() ||
		b.Bottom() < other.Top() ||
		b.Top() > other.Bottom())
}

// Intersection returns the intersection of two bounding boxes
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}

	x := math.Max(b.Left(), other.Left())
	y := math.Max(b.Top(), other.Top())
	right := math.Min(b.Right(), other.Right())
	bottom := math.Min(b.Bottom(), other.Bottom())

	return BBox{
		X:      x,
		Y:      y,
		Width:  right - x,
		Height: bottom - y,
	}
}

// Union returns the union of two bounding boxes
func (b BBox) Union(other BBox) BBox {
	x := math.Min(b.Left(), other.Left())
	y := math.Min(b.Top(), other.Top())
	right := math.Max(b.Right(), other.Right())
	bottom := math.Max(b.Bottom(), other.Bottom())

	return BBox{
		X:      x,
		Y:      y,
		Width:  right - x,
		Height: bottom - y,
	}
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// Expand expands the bounding box by a margin on all sides
func (b BBox) Expand(margin float64) BBox {
	return b.ExpandXY(margin, margin)
}

// ExpandXY expands the bounding box by independent horizontal and
// vertical margins on all sides.
func (b BBox) ExpandXY(marginX, marginY float64) BBox {
	return BBox{
		X:      b.X - marginX,
		Y:      b.Y - marginY,
		Width:  b.Width + 2*marginX,
		Height: b.Height + 2*marginY,
	}
}

// Scale scales the bounding box by independent horizontal and vertical
// factors, anchored at the raster origin.
func (b BBox) Scale(sx, sy float64) BBox {
	return BBox{
		X:      b.X * sx,
		Y:      b.Y * sy,
		Width:  b.Width * sx,
		Height: b.Height * sy,
	}
}

// OverlapRatio calculates the overlap ratio with another box
// Returns value between 0 and 1
func (b BBox) OverlapRatio(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}

	intersection := b.Intersection(other)
	minArea := math.Min(b.Area(), other.Area())

	if minArea == 0 {
		return 0
	}

	return intersection.Area() / minArea
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// IsValid returns true if the bounding box has non-negative dimensions
func (b BBox) IsValid() bool {
	return b.Width >= 0 && b.Height >= 0
}

// Polygon is an ordered list of vertices describing a detected text
// region outline. A polygon with fewer than three vertices carries no
// usable geometry; callers fall back to the bounding box.
type Polygon []Point

// BBox returns the axis-aligned envelope of the polygon.
// The zero BBox is returned for polygons with no vertices.
func (pg Polygon) BBox() BBox {
	if len(pg) == 0 {
		return BBox{}
	}

	minX, maxX := pg[0].X, pg[0].X
	minY, maxY := pg[0].Y, pg[0].Y
	for _, p := range pg[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Scale scales every vertex by independent horizontal and vertical factors.
func (pg Polygon) Scale(sx, sy float64) Polygon {
	if pg == nil {
		return nil
	}
	scaled := make(Polygon, len(pg))
	for i, p := range pg {
		scaled[i] = Point{X: p.X * sx, Y: p.Y * sy}
	}
	return scaled
}
