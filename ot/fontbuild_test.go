package ot

import (
	"sort"
)

// Helpers to assemble synthetic fonts for testing, byte by byte. Real fonts
// are too large and too opaque to make good regression anchors; these
// builders produce the smallest font that still exercises a code path.

type binWriter struct {
	b []byte
}

func (w *binWriter) u8(v uint8)    { w.b = append(w.b, v) }
func (w *binWriter) u16(v uint16)  { w.b = append(w.b, byte(v>>8), byte(v)) }
func (w *binWriter) i16(v int16)   { w.u16(uint16(v)) }
func (w *binWriter) u32(v uint32)  { w.b = append(w.b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }
func (w *binWriter) tag(s string)  { w.u32(uint32(T(s))) }
func (w *binWriter) raw(p []byte)  { w.b = append(w.b, p...) }
func (w *binWriter) pad4() {
	for len(w.b)%4 != 0 {
		w.b = append(w.b, 0)
	}
}

// testFontBuilder assembles a table directory plus table data into a
// single-font SFNT stream.
type testFontBuilder struct {
	magic  uint32
	tags   []string
	tables map[string][]byte
}

func newTestFont() *testFontBuilder {
	return &testFontBuilder{
		magic:  sfntVersionTrueType,
		tables: make(map[string][]byte),
	}
}

func (fb *testFontBuilder) add(tag string, data []byte) *testFontBuilder {
	if _, ok := fb.tables[tag]; !ok {
		fb.tags = append(fb.tags, tag)
	}
	fb.tables[tag] = data
	return fb
}

// build produces the font with table offsets relative to position 0.
func (fb *testFontBuilder) build() []byte {
	return fb.buildAt(0)
}

// buildAt produces the font with table offsets assuming the font's offset
// table starts at file position base (as within a font collection).
func (fb *testFontBuilder) buildAt(base int) []byte {
	tags := make([]string, len(fb.tags))
	copy(tags, fb.tags)
	sort.Slice(tags, func(i, j int) bool { return T(tags[i]) < T(tags[j]) })

	w := &binWriter{}
	w.u32(fb.magic)
	w.u16(uint16(len(tags)))
	w.u16(0) // searchRange
	w.u16(0) // entrySelector
	w.u16(0) // rangeShift

	offset := base + 12 + 16*len(tags)
	offset = (offset + 3) &^ 3
	for _, tag := range tags {
		data := fb.tables[tag]
		w.tag(tag)
		w.u32(0) // checksum, not validated
		w.u32(uint32(offset))
		w.u32(uint32(len(data)))
		offset += (len(data) + 3) &^ 3
	}
	w.pad4()
	for _, tag := range tags {
		w.raw(fb.tables[tag])
		w.pad4()
	}
	return w.b
}

// --- Standard tables --------------------------------------------------------

func headTable(unitsPerEm, indexToLocFormat uint16) []byte {
	w := &binWriter{}
	w.u32(0x00010000) // version
	w.u32(0)          // fontRevision
	w.u32(0)          // checkSumAdjustment
	w.u32(0x5f0f3cf5) // magicNumber
	w.u16(0)          // flags
	w.u16(unitsPerEm)
	w.raw(make([]byte, 16)) // created, modified
	w.i16(0)                // xMin
	w.i16(0)                // yMin
	w.i16(0)                // xMax
	w.i16(0)                // yMax
	w.u16(0)                // macStyle
	w.u16(8)                // lowestRecPPEM
	w.i16(2)                // fontDirectionHint
	w.u16(indexToLocFormat)
	w.i16(0) // glyphDataFormat
	return w.b
}

func hheaTable(ascender, descender, lineGap int16, numberOfHMetrics uint16) []byte {
	w := &binWriter{}
	w.u32(0x00010000) // version
	w.i16(ascender)
	w.i16(descender)
	w.i16(lineGap)
	w.u16(1000)             // advanceWidthMax
	w.i16(0)                // minLeftSideBearing
	w.i16(0)                // minRightSideBearing
	w.i16(0)                // xMaxExtent
	w.i16(1)                // caretSlopeRise
	w.i16(0)                // caretSlopeRun
	w.i16(0)                // caretOffset
	w.raw(make([]byte, 8))  // reserved
	w.i16(0)                // metricDataFormat
	w.u16(numberOfHMetrics) // numberOfHMetrics
	return w.b
}

func maxpTable(numGlyphs uint16) []byte {
	w := &binWriter{}
	w.u32(0x00005000) // version 0.5
	w.u16(numGlyphs)
	return w.b
}

// hmtxTable writes numberOfHMetrics long records followed by trailing side
// bearings for the remaining glyphs.
func hmtxTable(longMetrics [][2]int16, trailingLSBs []int16) []byte {
	w := &binWriter{}
	for _, m := range longMetrics {
		w.u16(uint16(m[0]))
		w.i16(m[1])
	}
	for _, lsb := range trailingLSBs {
		w.i16(lsb)
	}
	return w.b
}

// locaAndGlyf packs glyph blobs into a glyf table and the matching short
// format loca table. Glyph blobs are padded to even length.
func locaAndGlyf(glyphs ...[]byte) (loca, glyf []byte) {
	lw := &binWriter{}
	gw := &binWriter{}
	offset := 0
	for _, g := range glyphs {
		lw.u16(uint16(offset / 2))
		gw.raw(g)
		if len(g)%2 != 0 {
			gw.u8(0)
		}
		offset += (len(g) + 1) &^ 1
	}
	lw.u16(uint16(offset / 2))
	return lw.b, gw.b
}

// rectGlyph is a simple glyph tracing the rectangle (x0,y0)-(x1,y1)
// clockwise with on-curve points only.
func rectGlyph(x0, y0, x1, y1 int16) []byte {
	w := &binWriter{}
	w.i16(1) // numberOfContours
	w.i16(x0)
	w.i16(y0)
	w.i16(x1)
	w.i16(y1)
	w.u16(3) // endPtsOfContours[0]
	w.u16(0) // instructionLength
	for i := 0; i < 4; i++ {
		w.u8(0x01) // on-curve, long x, long y
	}
	w.i16(x0) // x deltas
	w.i16(0)
	w.i16(x1 - x0)
	w.i16(0)
	w.i16(y0) // y deltas
	w.i16(y1 - y0)
	w.i16(0)
	w.i16(y0 - y1)
	return w.b
}

// compositeGlyph writes a composite glyph from prepared component records.
func compositeGlyph(bounds [4]int16, records ...[]byte) []byte {
	w := &binWriter{}
	w.i16(-1)
	for _, b := range bounds {
		w.i16(b)
	}
	for _, rec := range records {
		w.raw(rec)
	}
	return w.b
}

// componentTranslated is a composite component record with word args and an
// (x, y) offset.
func componentTranslated(gid GlyphIndex, dx, dy int16, more bool) []byte {
	w := &binWriter{}
	flags := uint16(0x0001 | 0x0002) // words | args-are-xy
	if more {
		flags |= 0x0020
	}
	w.u16(flags)
	w.u16(uint16(gid))
	w.i16(dx)
	w.i16(dy)
	return w.b
}

// componentScaled is a composite component record with a uniform 2.14 scale.
func componentScaled(gid GlyphIndex, scale float64, more bool) []byte {
	w := &binWriter{}
	flags := uint16(0x0001 | 0x0002 | 0x0008) // words | args-are-xy | scale
	if more {
		flags |= 0x0020
	}
	w.u16(flags)
	w.u16(uint16(gid))
	w.i16(0)
	w.i16(0)
	w.i16(int16(scale * 16384))
	return w.b
}

// --- cmap -------------------------------------------------------------------

// cmapWithSubtable wraps one subtable for platform/encoding into a cmap
// table.
func cmapWithSubtable(pid, psid uint16, subtable []byte) []byte {
	w := &binWriter{}
	w.u16(0) // version
	w.u16(1) // numTables
	w.u16(pid)
	w.u16(psid)
	w.u32(12) // subtable offset
	w.raw(subtable)
	return w.b
}

// cmapFormat4Subtable maps the inclusive range [first, last] starting at
// glyph id firstGid, via the id-delta mechanism.
func cmapFormat4Subtable(first, last, firstGid uint16) []byte {
	w := &binWriter{}
	w.u16(4) // format
	w.u16(14 + 2*8 + 2)
	w.u16(0) // language
	w.u16(4) // segCountX2
	w.u16(0) // searchRange
	w.u16(0) // entrySelector
	w.u16(0) // rangeShift
	w.u16(last) // endCodes
	w.u16(0xffff)
	w.u16(0) // reservedPad
	w.u16(first) // startCodes
	w.u16(0xffff)
	w.u16(firstGid - first) // idDelta, modulo 65536
	w.u16(1)
	w.u16(0) // idRangeOffsets
	w.u16(0)
	return w.b
}

// cmapFormat12Subtable maps one contiguous group.
func cmapFormat12Subtable(first, last, firstGid uint32) []byte {
	w := &binWriter{}
	w.u16(12) // format
	w.u16(0)  // reserved
	w.u32(16 + 12)
	w.u32(0) // language
	w.u32(1) // numGroups
	w.u32(first)
	w.u32(last)
	w.u32(firstGid)
	return w.b
}

// --- Variation tables -------------------------------------------------------

// fvarTable writes one axis record per given axis: (tag, min, default, max)
// in design units.
func fvarTable(axes ...[4]interface{}) []byte {
	w := &binWriter{}
	w.u32(0x00010000)
	w.u16(16) // axesArrayOffset
	w.u16(2)  // reserved
	w.u16(uint16(len(axes)))
	w.u16(20) // axisSize
	w.u16(0)  // instanceCount
	w.u16(0)  // instanceSize
	for _, axis := range axes {
		w.tag(axis[0].(string))
		w.u32(uint32(int32(axis[1].(int)) << 16))
		w.u32(uint32(int32(axis[2].(int)) << 16))
		w.u32(uint32(int32(axis[3].(int)) << 16))
		w.u16(0) // flags
		w.u16(256 + uint16(len(w.b))) // axisNameID, arbitrary
	}
	return w.b
}

// avarTable writes one segment map per axis; each map is a list of
// (from, to) pairs in normalized 2.14 coordinates.
func avarTable(segmentMaps ...[][2]int16) []byte {
	w := &binWriter{}
	w.u32(0x00010000)
	w.u16(0) // reserved
	w.u16(uint16(len(segmentMaps)))
	for _, segmap := range segmentMaps {
		w.u16(uint16(len(segmap)))
		for _, pair := range segmap {
			w.i16(pair[0])
			w.i16(pair[1])
		}
	}
	return w.b
}

// itemVariationStoreBlob writes a store with one region spanning
// (start, peak, end) per axis and one variation-data subtable with one
// signed 16-bit delta column and the given per-item deltas.
func itemVariationStoreBlob(regions [][3]int16, deltas []int16) []byte {
	w := &binWriter{}
	w.u16(1)  // format
	w.u32(12) // variationRegionListOffset
	w.u16(1)  // itemVariationDataCount
	// one subtable, directly after the region list
	regionListSize := 4 + len(regions)*6
	w.u32(uint32(12 + regionListSize))
	// region list: axisCount = len(regions), regionCount = 1
	w.u16(uint16(len(regions)))
	w.u16(1)
	for _, r := range regions {
		w.i16(r[0])
		w.i16(r[1])
		w.i16(r[2])
	}
	// item variation data subtable
	w.u16(uint16(len(deltas))) // itemCount
	w.u16(1)                   // shortDeltaCount
	w.u16(1)                   // regionIndexCount
	w.u16(0)                   // regionIndexes[0]
	for _, d := range deltas {
		w.i16(d)
	}
	return w.b
}

// hvarTable writes an HVAR/VVAR table with an implicit advance mapping
// (outer = gid high bits, inner = gid low bits) and no side-bearing map.
func hvarTable(store []byte) []byte {
	w := &binWriter{}
	w.u32(0x00010000)
	w.u32(20) // itemVariationStoreOffset
	w.u32(0)  // advanceWidthMappingOffset (none)
	w.u32(0)  // lsbMappingOffset (none)
	w.u32(0)  // padding up to offset 20
	w.raw(store)
	return w.b
}

// mvarTable writes an MVAR table with one value record per (tag, outer,
// inner) triple.
func mvarTable(store []byte, records ...[3]interface{}) []byte {
	w := &binWriter{}
	w.u32(0x00010000)
	w.u16(0) // reserved
	w.u16(8) // valueRecordSize
	w.u16(uint16(len(records)))
	storeOffset := 12 + len(records)*8
	w.u16(uint16(storeOffset))
	for _, rec := range records {
		w.tag(rec[0].(string))
		w.u16(uint16(rec[1].(int)))
		w.u16(uint16(rec[2].(int)))
	}
	w.raw(store)
	return w.b
}

// gvarTable writes a gvar table with short offsets and one serialized
// variation-data blob per glyph (empty blobs allowed).
func gvarTable(axisCount int, glyphData ...[]byte) []byte {
	w := &binWriter{}
	w.u32(0x00010000)
	w.u16(uint16(axisCount))
	w.u16(0) // sharedTupleCount
	w.u32(0) // sharedTuplesOffset
	w.u16(uint16(len(glyphData)))
	w.u16(0) // flags: short offsets
	dataArrayOffset := 20 + (len(glyphData)+1)*2
	w.u32(uint32(dataArrayOffset))
	offset := 0
	for _, g := range glyphData {
		w.u16(uint16(offset / 2))
		offset += (len(g) + 1) &^ 1
	}
	w.u16(uint16(offset / 2))
	for _, g := range glyphData {
		w.raw(g)
		if len(g)%2 != 0 {
			w.u8(0)
		}
	}
	return w.b
}

// gvarGlyphBlob writes the variation data of one glyph: a single tuple with
// an embedded peak, applying to all points, with literal byte-sized x deltas
// and all-zero y deltas.
func gvarGlyphBlob(peak []int16, xDeltas []int8, pointCount int) []byte {
	chunk := &binWriter{}
	// packed x deltas: one literal run, then zeros for the rest
	chunk.u8(uint8(len(xDeltas) - 1))
	for _, d := range xDeltas {
		chunk.u8(uint8(d))
	}
	if rest := pointCount - len(xDeltas); rest > 0 {
		chunk.u8(0x80 | uint8(rest-1))
	}
	// packed y deltas: all zero
	chunk.u8(0x80 | uint8(pointCount-1))

	w := &binWriter{}
	w.u16(1)  // tupleVariationCount
	w.u16(uint16(8 + len(peak)*2)) // dataOffset
	w.u16(uint16(len(chunk.b)))    // variationDataSize
	w.u16(0x8000)                  // tupleIndex: embedded peak
	for _, p := range peak {
		w.i16(p)
	}
	w.raw(chunk.b)
	return w.b
}

// --- Ready-made fonts -------------------------------------------------------

// buildRectFont returns a minimal font with a single glyph: the rectangle
// (50,0)-(450,750).
func buildRectFont() []byte {
	loca, glyf := locaAndGlyf(rectGlyph(50, 0, 450, 750))
	return newTestFont().
		add("head", headTable(1000, 0)).
		add("hhea", hheaTable(750, -250, 0, 1)).
		add("maxp", maxpTable(1)).
		add("hmtx", hmtxTable([][2]int16{{500, 50}}, nil)).
		add("loca", loca).
		add("glyf", glyf).
		build()
}

// buildVariableRectFont returns the rectangle font with a 'wght' axis
// (100/400/900) and gvar deltas shifting all x coordinates by +10 at the
// axis maximum.
func buildVariableRectFont() []byte {
	loca, glyf := locaAndGlyf(rectGlyph(50, 0, 450, 750))
	blob := gvarGlyphBlob([]int16{16384}, []int8{10, 10, 10, 10}, 8)
	return newTestFont().
		add("head", headTable(1000, 0)).
		add("hhea", hheaTable(750, -250, 0, 1)).
		add("maxp", maxpTable(1)).
		add("hmtx", hmtxTable([][2]int16{{500, 50}}, nil)).
		add("loca", loca).
		add("glyf", glyf).
		add("fvar", fvarTable([4]interface{}{"wght", 100, 400, 900})).
		add("gvar", gvarTable(1, blob)).
		build()
}
