package ot

// Metrics variations for glyph advances and side bearings, tables 'HVAR' and
// 'VVAR'. Both share one layout: an item variation store plus optional
// delta-set index maps for advances and side bearings.

// HVarTable holds per-glyph metric deltas of a variable font. The same
// record layout serves tables 'HVAR' and 'VVAR'.
type HVarTable struct {
	tableBase
	store         itemVariationStore
	advanceMap    deltaSetIndexMap // may be empty
	hasAdvanceMap bool
	sbMap         deltaSetIndexMap // may be empty
	hasSbMap      bool
}

func newHVarTable(tag Tag, b binarySegm, offset, size uint32) *HVarTable {
	t := &HVarTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

func parseHVar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	version, err := b.u32(0)
	if err != nil || version != 0x00010000 {
		return nil, errFontFormat("metrics variations version")
	}
	storeLink, err := parseLink32(b, 4, b, "ItemVariationStore")
	if err != nil || storeLink.IsNull() {
		return nil, errFontFormat("metrics variations store offset")
	}
	t := newHVarTable(tag, b, offset, size)
	if t.store, err = parseItemVariationStore(binarySegm(storeLink.Jump().Bytes())); err != nil {
		return nil, err
	}
	if advLink, err := parseLink32(b, 8, b, "DeltaSetIndexMap"); err == nil && !advLink.IsNull() {
		t.advanceMap = deltaSetIndexMap{data: binarySegm(advLink.Jump().Bytes())}
		t.hasAdvanceMap = true
	}
	if sbLink, err := parseLink32(b, 12, b, "DeltaSetIndexMap"); err == nil && !sbLink.IsNull() {
		t.sbMap = deltaSetIndexMap{data: binarySegm(sbLink.Jump().Bytes())}
		t.hasSbMap = true
	}
	return t, nil
}

// AdvanceDelta evaluates the advance delta of a glyph at the given
// coordinates. When no delta-set index map is present, bits 31..16 of the
// glyph id select the outer and bits 15..0 the inner index.
func (t *HVarTable) AdvanceDelta(gid GlyphIndex, coords []NormalizedCoord) (float64, bool) {
	if t == nil {
		return 0, false
	}
	var outer, inner uint16
	if t.hasAdvanceMap {
		var ok bool
		if outer, inner, ok = t.advanceMap.lookup(gid); !ok {
			return 0, false
		}
	} else {
		outer = uint16(uint32(gid) >> 16)
		inner = uint16(uint32(gid) & 0xffff)
	}
	return t.store.Delta(outer, inner, coords)
}

// SideBearingDelta evaluates the side-bearing delta of a glyph at the given
// coordinates. Unlike advances, side bearings always require a delta-set
// index map.
func (t *HVarTable) SideBearingDelta(gid GlyphIndex, coords []NormalizedCoord) (float64, bool) {
	if t == nil || !t.hasSbMap {
		return 0, false
	}
	outer, inner, ok := t.sbMap.lookup(gid)
	if !ok {
		return 0, false
	}
	return t.store.Delta(outer, inner, coords)
}
