package otkit

import "golang.org/x/image/font/sfnt"

// Metric types shared by the query API. Values are in design units (the
// font's units-per-em coordinate system); we reuse the Units type of the Go
// core team's sfnt package for interoperability with rasterizing clients.

// BoundingBox is a rectangle in design units.
type BoundingBox struct {
	MinX, MinY sfnt.Units
	MaxX, MaxY sfnt.Units
}

// Empty checks for a degenerate bounding box.
func (bb BoundingBox) Empty() bool {
	return bb.MinX == bb.MaxX && bb.MinY == bb.MaxY
}

// Dx returns the width of the bounding box.
func (bb BoundingBox) Dx() sfnt.Units {
	return bb.MaxX - bb.MinX
}

// Dy returns the height of the bounding box.
func (bb BoundingBox) Dy() sfnt.Units {
	return bb.MaxY - bb.MinY
}

// FontMetricsInfo holds selected font-wide metrics.
type FontMetricsInfo struct {
	UnitsPerEm sfnt.Units
	Ascent     sfnt.Units
	Descent    sfnt.Units
	LineGap    sfnt.Units
	MaxAdvance sfnt.Units
}

// GlyphMetricsInfo holds metrics of a single glyph.
type GlyphMetricsInfo struct {
	Advance sfnt.Units
	LSB     sfnt.Units // left side bearing
	RSB     sfnt.Units // right side bearing
	BBox    BoundingBox
}
