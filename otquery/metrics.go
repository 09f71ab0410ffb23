package otquery

import (
	"math"

	"github.com/npillmayer/otkit"
	"github.com/npillmayer/otkit/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font Information -------------------------------------------------

// FontType returns a short moniker for the outline flavour of a font, i.e.
// "TrueType" for glyf-based outlines, "CFF" for PostScript charstrings, or
// the empty string for fonts this package cannot identify.
func FontType(otf *ot.Font) string {
	if otf == nil || otf.Header == nil {
		return ""
	}
	switch otf.Header.FontType {
	case 0x00010000:
		return "TrueType"
	case 0x4f54544f:
		return "CFF"
	}
	return ""
}

// FontMetrics retrieves selected metrics of a font. On variable fonts away
// from their default position, MVAR deltas for ascender, descender and line
// gap are applied.
func FontMetrics(otf *ot.Font) otkit.FontMetricsInfo {
	metrics := otkit.FontMetricsInfo{}
	if otf == nil {
		return metrics
	}
	hhea := otf.HHea // mandatory table
	metrics.Ascent = sfnt.Units(hhea.Ascender)
	metrics.Descent = sfnt.Units(hhea.Descender)
	metrics.LineGap = sfnt.Units(hhea.LineGap)
	metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	if delta, ok := otf.MetricsVariation(ot.T("hasc")); ok {
		metrics.Ascent += sfnt.Units(math.Round(delta))
	}
	if delta, ok := otf.MetricsVariation(ot.T("hdsc")); ok {
		metrics.Descent += sfnt.Units(math.Round(delta))
	}
	if delta, ok := otf.MetricsVariation(ot.T("hlgp")); ok {
		metrics.LineGap += sfnt.Units(math.Round(delta))
	}
	if upem, ok := otf.UnitsPerEm(); ok {
		metrics.UnitsPerEm = sfnt.Units(upem)
	}
	return metrics
}

// --- Glyph Routines --------------------------------------------------------

// GlyphIndex returns the glyph index for a given code-point.
// If the code-point cannot be found, 0 is returned.
//
// From the OpenType specification: character codes that do not correspond to
// any glyph in the font should be mapped to glyph index 0. The glyph at this
// location must be a special glyph representing a missing character,
// commonly known as '.notdef'.
func GlyphIndex(otf *ot.Font, codepoint rune) ot.GlyphIndex {
	if otf == nil {
		return 0
	}
	gid, ok := otf.GlyphIndex(codepoint)
	if !ok {
		return 0
	}
	return gid
}

// CodePointForGlyph returns the code-point for a given glyph index.
//
// This is an inefficient operation: code-points contained in the font's CMap
// are checked sequentially if they produce the given glyph.
// If the glyph index does not correspond to a code-point, 0 is returned.
func CodePointForGlyph(otf *ot.Font, gid ot.GlyphIndex) rune {
	if otf == nil || otf.CMap == nil || otf.CMap.GlyphIndexMap == nil || gid == 0 {
		return 0
	}
	return otf.CMap.GlyphIndexMap.ReverseLookup(gid)
}

// GlyphMetrics retrieves metrics for a given glyph, with variation deltas
// applied on variable fonts away from their default position.
func GlyphMetrics(otf *ot.Font, gid ot.GlyphIndex) otkit.GlyphMetricsInfo {
	metrics := otkit.GlyphMetricsInfo{}
	if otf == nil {
		return metrics
	}
	if adv, ok := otf.GlyphAdvance(gid); ok {
		metrics.Advance = sfnt.Units(math.Round(adv))
	}
	if lsb, ok := otf.GlyphSideBearing(gid); ok {
		metrics.LSB = sfnt.Units(math.Round(lsb))
	}
	if box, ok := otf.GlyphBoundingBox(gid); ok {
		metrics.BBox = otkit.BoundingBox{
			MinX: sfnt.Units(box.XMin),
			MinY: sfnt.Units(box.YMin),
			MaxX: sfnt.Units(box.XMax),
			MaxY: sfnt.Units(box.YMax),
		}
	}
	// RSB calculation: rsb = aw - (lsb + xMax - xMin)
	// From the spec: if a glyph has no contours, xMax/xMin are not defined,
	// and the left side bearing should be zero.
	if !metrics.BBox.Empty() { // leave RSB zero for empty bboxes
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

// Outline traces the outline of a glyph, emitting draw commands into the
// given sink, and returns the glyph's bounding box. See ot.Font.OutlineGlyph
// for the exact semantics under font variation.
func Outline(otf *ot.Font, gid ot.GlyphIndex, sink ot.OutlineSink) (ot.Rect, bool) {
	if otf == nil || sink == nil {
		return ot.Rect{}, false
	}
	return otf.OutlineGlyph(gid, sink)
}

// Kerning returns the horizontal kerning between a pair of glyphs, from the
// font's 'kern' table. Fonts without legacy kerning data report absent (most
// modern fonts kern through GPOS instead, which this package exposes only as
// raw shaping metadata).
func Kerning(otf *ot.Font, left, right ot.GlyphIndex) (int16, bool) {
	if otf == nil {
		return 0, false
	}
	return otf.GlyphsKerning(left, right)
}

// --- Variation Routines ----------------------------------------------------

// VariationAxes lists the design axes of a variable font. Non-variable
// fonts yield an empty slice.
func VariationAxes(otf *ot.Font) []ot.VariationAxis {
	if otf == nil || otf.Fvar == nil {
		return nil
	}
	axes := make([]ot.VariationAxis, 0, otf.Fvar.AxisCount())
	for i := 0; i < otf.Fvar.AxisCount(); i++ {
		if axis, ok := otf.Fvar.Axis(i); ok {
			axes = append(axes, axis)
		}
	}
	return axes
}

// SetVariation positions a variable font on one of its design axes; see
// ot.Font.SetVariation. It reports absent for non-variable fonts and for
// unknown axis tags.
func SetVariation(otf *ot.Font, axis ot.Tag, value float64) bool {
	if otf == nil {
		return false
	}
	if !otf.SetVariation(axis, value) {
		tracer().Infof("cannot set axis (%s) on font", axis)
		return false
	}
	return true
}
