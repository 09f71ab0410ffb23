package ot

import "fmt"

// This table defines the mapping of character codes to a default glyph index.
// Different subtables may be defined that each contain mappings for different
// character encoding schemes. The table header indicates the character
// encodings for which subtables are present.
//
// From the spec.: “If a font includes Unicode subtables for both 16-bit
// encoding (typically, format 4) and also 32-bit encoding (formats 10 or 12),
// then the characters supported by the subtable for 32-bit encoding should be
// a superset of the characters supported by the subtable for 16-bit encoding,
// and the 32-bit encoding should be used by applications.”
//
// All in all, we support the following platform/encoding/format combinations:
//
//	0 (Unicode)  3    0, 4, 6   Unicode BMP
//	0 (Unicode)  4    12        Unicode full
//	3 (Win)      1    0, 4, 6   Unicode BMP
//	3 (Win)      10   12        Unicode full

// CMapTable gives access to the character-to-glyph-index map of a font.
type CMapTable struct {
	tableBase
	GlyphIndexMap GlyphIndexMap
	numGlyphs     int // from maxp, for result validation
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// GlyphIndexMap maps code-points to glyph indices. Lookups search the
// underlying sub-table bytes on the fly; no auxiliary lookup structures are
// built.
type GlyphIndexMap interface {
	Lookup(r rune) (GlyphIndex, bool) // glyph index for a code-point
	ReverseLookup(g GlyphIndex) rune  // first code-point producing a glyph
}

// Lookup returns the glyph index for a code-point, or absent. Glyph indices
// at or above the font's glyph count report absent.
func (t *CMapTable) Lookup(r rune) (GlyphIndex, bool) {
	if t == nil || t.GlyphIndexMap == nil {
		return 0, false
	}
	gid, ok := t.GlyphIndexMap.Lookup(r)
	if !ok || (t.numGlyphs > 0 && int(gid) >= t.numGlyphs) {
		return 0, false
	}
	return gid, true
}

// platformEncodingWidth returns the encoding width in bytes for a
// platform/encoding pair, or 0 for unsupported pairs. Wider encodings are
// preferred over narrower ones.
func platformEncodingWidth(pid, psid uint16) int {
	switch pid {
	case 0: // Unicode platform
		switch psid {
		case 3: // Unicode BMP
			return 2
		case 4: // Unicode full repertoire
			return 4
		}
	case 3: // Windows platform
		switch psid {
		case 1: // Unicode BMP
			return 2
		case 10: // Unicode full repertoire
			return 4
		}
	}
	return 0
}

func supportedCmapFormat(format, pid, psid uint16) bool {
	switch format {
	case 0, 4, 6:
		return platformEncodingWidth(pid, psid) == 2
	case 12:
		return platformEncodingWidth(pid, psid) == 4
	}
	return false
}

type encodingRecord struct {
	link   NavLink
	format uint16
	width  int // encoding width in bytes
}

func parseCMap(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	n, err := b.u16(2) // number of sub-tables
	if err != nil {
		return nil, errFontFormat("size of cmap table")
	}
	tracer().Debugf("font cmap has %d sub-tables in %d bytes", n, size)
	t := newCMapTable(tag, b, offset, size)
	const headerSize, entrySize = 4, 8
	if int(size) < headerSize+entrySize*int(n) {
		ec.addError(tag, "Header", fmt.Sprintf("table size %d too small for %d sub-tables", size, n), SeverityMajor, offset)
		return nil, errFontFormat("size of cmap table")
	}
	var enc encodingRecord
	for i := 0; i < int(n); i++ {
		rec, _ := b.view(headerSize+entrySize*i, entrySize)
		pid, psid := u16(rec), u16(rec[2:])
		width := platformEncodingWidth(pid, psid)
		if width <= enc.width {
			continue
		}
		link, err := parseLink32(rec, 4, b, "cmap.Subtable")
		if err != nil {
			ec.addWarning(tag, fmt.Sprintf("sub-table %d (platform=%d, encoding=%d) cannot be parsed", i, pid, psid), offset)
			continue
		}
		subtable := link.Jump()
		format := subtable.U16(0)
		tracer().Debugf("cmap table contains subtable with format %d", format)
		if supportedCmapFormat(format, pid, psid) {
			enc.width = width
			enc.format = format
			enc.link = link
		}
	}
	if enc.width == 0 {
		ec.addError(tag, "Format", "no supported cmap format found", SeverityMajor, offset)
		return nil, errFontFormat("no supported cmap format found")
	}
	if t.GlyphIndexMap, err = makeGlyphIndexMap(enc); err != nil {
		ec.addError(tag, "Subtable", err.Error(), SeverityMajor, offset)
		return nil, err
	}
	return t, nil
}

func makeGlyphIndexMap(enc encodingRecord) (GlyphIndexMap, error) {
	sub := binarySegm(enc.link.Jump().Bytes())
	switch enc.format {
	case 0:
		return parseCMapFormat0(sub)
	case 4:
		return parseCMapFormat4(sub)
	case 6:
		return parseCMapFormat6(sub)
	case 12:
		return parseCMapFormat12(sub)
	}
	return nil, errFontFormat(fmt.Sprintf("unsupported cmap format %d", enc.format))
}

// --- Format 0: byte encoding table -----------------------------------------

type cmapFormat0 struct {
	glyphIds binarySegm // 256 glyph indices, one byte each
}

func parseCMapFormat0(b binarySegm) (GlyphIndexMap, error) {
	ids, err := b.view(6, 256)
	if err != nil {
		return nil, errFontFormat("cmap format 0 subtable incomplete")
	}
	return cmapFormat0{glyphIds: ids}, nil
}

func (f cmapFormat0) Lookup(r rune) (GlyphIndex, bool) {
	if r < 0 || r > 0xff {
		return 0, false
	}
	gid := GlyphIndex(f.glyphIds[r])
	if gid == 0 {
		return 0, false
	}
	return gid, true
}

func (f cmapFormat0) ReverseLookup(g GlyphIndex) rune {
	if g == 0 || g > 0xff {
		return 0
	}
	for c := 0; c < 256; c++ {
		if GlyphIndex(f.glyphIds[c]) == g {
			return rune(c)
		}
	}
	return 0
}

// --- Format 4: segment mapping to delta values -----------------------------

// Format 4 splits the BMP into segments of consecutive code-points. Segments
// are searched by end code; glyph indices are derived per segment either by
// an id-delta or through the trailing glyph-id array addressed by
// idRangeOffset's offset trick.
type cmapFormat4 struct {
	segCount    int
	endCodes    binarySegm // segCount × uint16
	startCodes  binarySegm // segCount × uint16
	idDeltas    binarySegm // segCount × int16
	idRangeData binarySegm // idRangeOffsets plus trailing glyphIdArray
}

func parseCMapFormat4(b binarySegm) (GlyphIndexMap, error) {
	segCountX2, err := b.u16(6)
	if err != nil || segCountX2 == 0 || segCountX2&1 != 0 {
		return nil, errFontFormat("cmap format 4 segment count")
	}
	segCount := int(segCountX2 / 2)
	// Layout: header(14) · endCodes · pad(2) · startCodes · idDeltas ·
	// idRangeOffsets · glyphIdArray.
	endCodes, err := b.view(14, segCount*2)
	if err != nil {
		return nil, errFontFormat("cmap format 4 subtable incomplete")
	}
	startCodes, err := b.view(14+segCount*2+2, segCount*2)
	if err != nil {
		return nil, errFontFormat("cmap format 4 subtable incomplete")
	}
	idDeltas, err := b.view(14+segCount*4+2, segCount*2)
	if err != nil {
		return nil, errFontFormat("cmap format 4 subtable incomplete")
	}
	idRangeStart := 14 + segCount*6 + 2
	if idRangeStart+segCount*2 > len(b) {
		return nil, errFontFormat("cmap format 4 subtable incomplete")
	}
	return cmapFormat4{
		segCount:    segCount,
		endCodes:    endCodes,
		startCodes:  startCodes,
		idDeltas:    idDeltas,
		idRangeData: b[idRangeStart:],
	}, nil
}

func (f cmapFormat4) Lookup(r rune) (GlyphIndex, bool) {
	if r < 0 || r > 0xffff {
		return 0, false
	}
	c := uint16(r)
	// Binary search for the first segment with endCode >= c.
	lo, hi := 0, f.segCount
	for lo < hi {
		mid := (lo + hi) / 2
		if u16(f.endCodes[mid*2:]) < c {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= f.segCount {
		return 0, false
	}
	start := u16(f.startCodes[lo*2:])
	if c < start {
		return 0, false
	}
	idRangeOffset := u16(f.idRangeData[lo*2:])
	if idRangeOffset == 0 {
		gid := GlyphIndex(c + u16(f.idDeltas[lo*2:]))
		if gid == 0 {
			return 0, false
		}
		return gid, true
	}
	// “The character code offset from startCode is added to the
	// idRangeOffset value”, addressing into glyphIdArray relative to the
	// idRangeOffset entry itself.
	pos := lo*2 + int(idRangeOffset) + 2*int(c-start)
	gid16, err := f.idRangeData.u16(pos)
	if err != nil || gid16 == 0 {
		return 0, false
	}
	gid := GlyphIndex(gid16 + u16(f.idDeltas[lo*2:]))
	if gid == 0 {
		return 0, false
	}
	return gid, true
}

func (f cmapFormat4) ReverseLookup(g GlyphIndex) rune {
	if g == 0 {
		return 0
	}
	for seg := 0; seg < f.segCount; seg++ {
		start := u16(f.startCodes[seg*2:])
		end := u16(f.endCodes[seg*2:])
		if start == 0xffff && end == 0xffff {
			break
		}
		for c := start; c <= end; c++ {
			if gid, ok := f.Lookup(rune(c)); ok && gid == g {
				return rune(c)
			}
			if c == 0xffff {
				break
			}
		}
	}
	return 0
}

// --- Format 6: trimmed table mapping ---------------------------------------

type cmapFormat6 struct {
	firstCode uint16
	glyphIds  binarySegm // entryCount × uint16
}

func parseCMapFormat6(b binarySegm) (GlyphIndexMap, error) {
	firstCode, err := b.u16(6)
	if err != nil {
		return nil, errFontFormat("cmap format 6 subtable incomplete")
	}
	entryCount, err := b.u16(8)
	if err != nil {
		return nil, errFontFormat("cmap format 6 subtable incomplete")
	}
	ids, err := b.view(10, int(entryCount)*2)
	if err != nil {
		return nil, errFontFormat("cmap format 6 subtable incomplete")
	}
	return cmapFormat6{firstCode: firstCode, glyphIds: ids}, nil
}

func (f cmapFormat6) Lookup(r rune) (GlyphIndex, bool) {
	if r < rune(f.firstCode) || r >= rune(f.firstCode)+rune(len(f.glyphIds)/2) {
		return 0, false
	}
	gid := GlyphIndex(u16(f.glyphIds[2*(r-rune(f.firstCode)):]))
	if gid == 0 {
		return 0, false
	}
	return gid, true
}

func (f cmapFormat6) ReverseLookup(g GlyphIndex) rune {
	if g == 0 {
		return 0
	}
	for i := 0; i < len(f.glyphIds)/2; i++ {
		if GlyphIndex(u16(f.glyphIds[2*i:])) == g {
			return rune(f.firstCode) + rune(i)
		}
	}
	return 0
}

// --- Format 12: segmented coverage -----------------------------------------

type cmapFormat12 struct {
	groups  binarySegm // nGroups × (startChar, endChar, startGlyph), 12 bytes each
	nGroups int
}

func parseCMapFormat12(b binarySegm) (GlyphIndexMap, error) {
	nGroups, err := b.u32(12)
	if err != nil {
		return nil, errFontFormat("cmap format 12 subtable incomplete")
	}
	size, errMul := checkedMulInt(int(nGroups), 12)
	if errMul != nil {
		return nil, errFontFormat("cmap format 12 group count")
	}
	groups, err := b.view(16, size)
	if err != nil {
		return nil, errFontFormat("cmap format 12 subtable incomplete")
	}
	return cmapFormat12{groups: groups, nGroups: int(nGroups)}, nil
}

func (f cmapFormat12) Lookup(r rune) (GlyphIndex, bool) {
	if r < 0 {
		return 0, false
	}
	c := uint32(r)
	lo, hi := 0, f.nGroups
	for lo < hi {
		mid := (lo + hi) / 2
		if u32(f.groups[mid*12+4:]) < c { // endChar of group mid
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= f.nGroups {
		return 0, false
	}
	start := u32(f.groups[lo*12:])
	if c < start {
		return 0, false
	}
	gid32 := u32(f.groups[lo*12+8:]) + (c - start)
	if gid32 == 0 || gid32 > 0xffff {
		return 0, false
	}
	return GlyphIndex(gid32), true
}

func (f cmapFormat12) ReverseLookup(g GlyphIndex) rune {
	if g == 0 {
		return 0
	}
	for i := 0; i < f.nGroups; i++ {
		start, end := u32(f.groups[i*12:]), u32(f.groups[i*12+4:])
		first := u32(f.groups[i*12+8:])
		if uint32(g) >= first && uint32(g)-first <= end-start {
			return rune(start + uint32(g) - first)
		}
	}
	return 0
}
