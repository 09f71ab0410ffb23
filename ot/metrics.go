package ot

// Glyph metrics queries. These are zero-cost views over the parsed metrics
// arrays; on variable fonts positioned away from their default, the
// variation delta of the metric is added.

// GlyphAdvance returns the horizontal advance of a glyph in design units.
func (otf *Font) GlyphAdvance(gid GlyphIndex) (float64, bool) {
	if otf.HMtx == nil {
		return 0, false
	}
	adv, ok := otf.HMtx.Advance(gid)
	if !ok {
		return 0, false
	}
	advance := float64(adv)
	if otf.varCoordsInUse() && otf.HVar != nil {
		if delta, ok := otf.HVar.AdvanceDelta(gid, otf.Coords()); ok {
			advance += delta
		}
	}
	return advance, true
}

// GlyphSideBearing returns the left side bearing of a glyph in design units.
func (otf *Font) GlyphSideBearing(gid GlyphIndex) (float64, bool) {
	if otf.HMtx == nil {
		return 0, false
	}
	sb, ok := otf.HMtx.SideBearing(gid)
	if !ok {
		return 0, false
	}
	bearing := float64(sb)
	if otf.varCoordsInUse() && otf.HVar != nil {
		if delta, ok := otf.HVar.SideBearingDelta(gid, otf.Coords()); ok {
			bearing += delta
		}
	}
	return bearing, true
}

// GlyphVerAdvance returns the vertical advance of a glyph in design units.
// Fonts without vertical metrics report absent.
func (otf *Font) GlyphVerAdvance(gid GlyphIndex) (float64, bool) {
	if otf.VMtx == nil {
		return 0, false
	}
	adv, ok := otf.VMtx.Advance(gid)
	if !ok {
		return 0, false
	}
	advance := float64(adv)
	if otf.varCoordsInUse() && otf.VVar != nil {
		if delta, ok := otf.VVar.AdvanceDelta(gid, otf.Coords()); ok {
			advance += delta
		}
	}
	return advance, true
}

// GlyphVerSideBearing returns the top side bearing of a glyph in design
// units. Fonts without vertical metrics report absent.
func (otf *Font) GlyphVerSideBearing(gid GlyphIndex) (float64, bool) {
	if otf.VMtx == nil {
		return 0, false
	}
	sb, ok := otf.VMtx.SideBearing(gid)
	if !ok {
		return 0, false
	}
	bearing := float64(sb)
	if otf.varCoordsInUse() && otf.VVar != nil {
		if delta, ok := otf.VVar.SideBearingDelta(gid, otf.Coords()); ok {
			bearing += delta
		}
	}
	return bearing, true
}

// GlyphIndex returns the glyph index for a code-point, or absent when the
// character map does not cover the code-point. A returned index is always
// less than the font's glyph count.
func (otf *Font) GlyphIndex(r rune) (GlyphIndex, bool) {
	return otf.CMap.Lookup(r)
}
