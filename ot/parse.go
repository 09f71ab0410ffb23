package ot

import (
	"fmt"
	"math"
)

// Code comments often cite passages from the OpenType specification
// version 1.8.4; see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Limits for font structures. These prevent malicious fonts from claiming
// unreasonably large counts that could lead to excessive work or
// out-of-bounds reads.
const (
	MaxGlyphCount     = 65536 // maximum glyph count (glyph indices are uint16)
	MaxAxisCount      = 32    // variation axes stored per font handle
	MaxComponentDepth = 32    // composite glyph recursion depth
)

// ---------------------------------------------------------------------------

// Checked arithmetic operations to prevent integer overflow.

// checkedMulInt checks for overflow in multiplication of two integers.
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if a < 0 && b < 0 && a < math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if (a < 0 && b > 0 && a < math.MinInt/b) || (a > 0 && b < 0 && b < math.MinInt/a) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddInt checks for overflow in addition of two integers.
func checkedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	if b < 0 && a < math.MinInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values.
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// ---------------------------------------------------------------------------

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("OpenType font format: %s", message)
}

// ---------------------------------------------------------------------------

// Accepted magic values at the start of a font's table directory.
const (
	sfntVersionTrueType = 0x00010000 // TrueType outlines
	sfntVersionOpenType = 0x4f54544f // 'OTTO', CFF outlines
	collectionTag       = 0x74746366 // 'ttcf'
)

// FontsInCollection returns the number of fonts stored in a font collection
// ('ttcf'). Any other input reports absent.
func FontsInCollection(buf []byte) (uint32, bool) {
	b := binarySegm(buf)
	if tag, err := b.u32(0); err != nil || tag != collectionTag {
		return 0, false
	}
	// ttcf · major · minor · numFonts
	n, err := b.u32(8)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Parse parses an OpenType font from a byte slice. For font collections it
// selects the first font; see ParseCollectionEntry.
//
// An ot.Font needs ongoing access to the font's byte data after Parse
// returns. The buffer is assumed immutable while the ot.Font remains in use.
func Parse(font []byte) (*Font, error) {
	return ParseCollectionEntry(font, 0)
}

// ParseCollectionEntry parses one font of an OpenType font collection
// ('ttcf'). For single-font buffers, index must be 0.
func ParseCollectionEntry(buf []byte, index uint32) (*Font, error) {
	src := binarySegm(buf)
	base := src
	if n, isCollection := FontsInCollection(buf); isCollection {
		if index >= n {
			return nil, errFontFormat(fmt.Sprintf("collection font index %d out of range", index))
		}
		// TTC header: ttcf · major · minor · numFonts · numFonts × offset32
		const ttcHeaderSize = 12
		off, err := src.u32(ttcHeaderSize + 4*int(index))
		if err != nil {
			return nil, errFontFormat("font collection header")
		}
		if int64(off) > int64(len(src)) {
			return nil, errFontFormat("font collection offset out of bounds")
		}
		base = src[off:]
	} else if index != 0 {
		return nil, errFontFormat("font index must be 0 for single-font files")
	}
	return parseFont(src, base)
}

// parseFont parses a table directory at base. Sub-table offsets in table
// records are relative to the start of the whole buffer (src), which differs
// from base for collection entries.
func parseFont(src, base binarySegm, options ...ParseOption) (*Font, error) {
	// The Offset Table is 12 bytes: magic, numTables and three search hints.
	h := FontHeader{}
	var err error
	if h.FontType, err = base.u32(0); err != nil {
		return nil, errFontFormat("missing offset table")
	}
	if h.FontType != sfntVersionTrueType && h.FontType != sfntVersionOpenType {
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	if h.TableCount, err = base.u16(4); err != nil {
		return nil, errFontFormat("missing offset table")
	}
	tracer().Debugf("font header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())

	ec := &errorCollector{}
	otf := &Font{Header: &h, tables: make(map[Tag]Table)}

	// "The Offset Table is followed immediately by the Table Record entries",
	// 16 bytes each: tag, checksum, offset, length.
	tableRecordsSize, err := checkedMulInt(16, int(h.TableCount))
	if err != nil {
		return nil, errFontFormat(fmt.Sprintf("table count too large: %v", err))
	}
	records, err := base.view(12, tableRecordsSize)
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b := records; len(b) >= 16; b = b[16:] {
		tag := MakeTag(b)
		off, size := u32(b[8:12]), u32(b[12:16])
		tableEnd, err := checkedAddUint32(off, size)
		if err != nil || int64(off) > int64(len(src)) || int64(tableEnd) > int64(len(src)) {
			// A broken record kills the font only if it belongs to a
			// mandatory table; everything else is skipped.
			if isMandatoryTable(tag) {
				ec.addError(tag, "Bounds", "table bounds exceed font size", SeverityCritical, off)
				return nil, errFontFormat(fmt.Sprintf("table %s: bounds [%d:%d] exceed font size %d",
					tag, off, tableEnd, len(src)))
			}
			ec.addWarning(tag, "table bounds exceed font size, table skipped", off)
			continue
		}
		t, err := parseTable(tag, src[off:tableEnd], off, size, ec)
		if err != nil {
			if isMandatoryTable(tag) {
				return nil, err
			}
			tracer().Infof("optional table (%s) failed to parse: %v", tag, err)
			ec.addWarning(tag, fmt.Sprintf("table failed to parse: %v", err), off)
			continue
		}
		if t != nil {
			otf.tables[tag] = t
		}
	}
	if err := linkTables(otf, ec); err != nil {
		return nil, err
	}
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	return otf, nil
}

// ParseOption values guide and influence the parsing of a font.
type ParseOption int

// mandatoryTables are required for the font handle to function. All other
// tables are optional: if one of them is broken, it is stored as absent.
var mandatoryTables = []string{"head", "hhea", "maxp"}

func isMandatoryTable(tag Tag) bool {
	for _, t := range mandatoryTables {
		if tag == T(t) {
			return true
		}
	}
	return false
}

// linkTables stores shortcuts to the typed tables and cross-checks entries
// that span tables (loca format and length, metric counts, variation axis
// counts). Mandatory tables missing or inconsistent fail the font;
// inconsistent optional tables degrade to absent.
func linkTables(otf *Font, ec *errorCollector) error {
	for _, tag := range mandatoryTables {
		if otf.tables[T(tag)] == nil {
			ec.addError(T(tag), "Missing", "missing required table", SeverityCritical, 0)
			return errFontFormat("missing required table " + tag)
		}
	}
	otf.Head = otf.tables[T("head")].Self().AsHead()
	otf.HHea = otf.tables[T("hhea")].Self().AsHHea()
	otf.MaxP = otf.tables[T("maxp")].Self().AsMaxP()
	if otf.Head == nil || otf.HHea == nil || otf.MaxP == nil {
		return errFontFormat("mandatory table of wrong flavour")
	}
	if otf.MaxP.NumGlyphs == 0 {
		ec.addError(T("maxp"), "NumGlyphs", "font has no glyphs", SeverityCritical, 0)
		return errFontFormat("font has no glyphs")
	}

	if t := otf.tables[T("cmap")]; t != nil {
		otf.CMap = t.Self().AsCMap()
		if otf.CMap != nil {
			otf.CMap.numGlyphs = otf.MaxP.NumGlyphs
		}
	}
	if t := otf.tables[T("vhea")]; t != nil {
		otf.VHea = t.Self().AsVHea()
	}
	if t := otf.tables[T("hmtx")]; t != nil {
		hmtx := t.Self().AsHMtx()
		if err := hmtx.link(otf.HHea.NumberOfHMetrics, otf.MaxP.NumGlyphs); err != nil {
			ec.addWarning(T("hmtx"), err.Error(), 0)
			delete(otf.tables, T("hmtx"))
		} else {
			otf.HMtx = hmtx
		}
	}
	if t := otf.tables[T("vmtx")]; t != nil && otf.VHea != nil {
		vmtx := t.Self().AsHMtx()
		if err := vmtx.link(otf.VHea.NumberOfVMetrics, otf.MaxP.NumGlyphs); err != nil {
			ec.addWarning(T("vmtx"), err.Error(), 0)
			delete(otf.tables, T("vmtx"))
		} else {
			otf.VMtx = vmtx
		}
	}
	if t := otf.tables[T("loca")]; t != nil {
		loca := t.Self().AsLoca()
		// The size of entries in the loca table must be appropriate for the
		// value of the indexToLocFormat field of the head table. The number
		// of entries is numGlyphs + 1.
		entrySize := 2
		if otf.Head.IndexToLocFormat == 1 {
			loca.inx2loc = longLocaVersion
			entrySize = 4
		} else if otf.Head.IndexToLocFormat != 0 {
			ec.addWarning(T("head"), fmt.Sprintf("invalid indexToLocFormat %d", otf.Head.IndexToLocFormat), 0)
			delete(otf.tables, T("loca"))
			loca = nil
		}
		if loca != nil {
			locCnt := otf.MaxP.NumGlyphs + 1
			if locCnt*entrySize > len(loca.data) {
				ec.addWarning(T("loca"), "loca table too small for glyph count", 0)
				delete(otf.tables, T("loca"))
			} else {
				loca.locCnt = locCnt
				otf.Loca = loca
			}
		}
	}
	if t := otf.tables[T("glyf")]; t != nil {
		otf.Glyf = t.Self().AsGlyf()
	}
	if t := otf.tables[T("kern")]; t != nil {
		otf.Kern = t.Self().AsKern()
	}
	if t := otf.tables[T("fvar")]; t != nil {
		otf.Fvar = t.Self().AsFvar()
	}
	if t := otf.tables[T("GSUB")]; t != nil {
		otf.Layout.GSub = t.Self().AsLayoutTable()
	}
	if t := otf.tables[T("GPOS")]; t != nil {
		otf.Layout.GPos = t.Self().AsLayoutTable()
	}
	if t := otf.tables[T("GDEF")]; t != nil {
		otf.Layout.GDef = t.Self().AsGDef()
	}

	// On a variable font, the initial axis coordinate vector has one entry
	// per axis, all zero. Variation sub-tables are only wired for variable
	// fonts.
	if otf.Fvar != nil {
		axisCount := otf.Fvar.AxisCount()
		otf.coords.reset(axisCount)
		otf.userCoords.reset(axisCount)
		if t := otf.tables[T("avar")]; t != nil {
			avar := t.Self().AsAvar()
			if avar != nil && avar.axisCount != axisCount {
				ec.addWarning(T("avar"), fmt.Sprintf("axis count %d does not match fvar (%d)",
					avar.axisCount, axisCount), 0)
				delete(otf.tables, T("avar"))
			} else {
				otf.Avar = avar
			}
		}
		if t := otf.tables[T("HVAR")]; t != nil {
			otf.HVar = t.Self().AsHVar()
		}
		if t := otf.tables[T("VVAR")]; t != nil {
			otf.VVar = t.Self().AsHVar()
		}
		if t := otf.tables[T("MVAR")]; t != nil {
			otf.MVar = t.Self().AsMVar()
		}
		if t := otf.tables[T("gvar")]; t != nil {
			otf.Gvar = t.Self().AsGvar()
		}
	}
	return nil
}

func parseTable(t Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	switch t {
	case T("head"):
		return parseHead(t, b, offset, size, ec)
	case T("hhea"):
		return parseHHea(t, b, offset, size, ec)
	case T("vhea"):
		return parseVHea(t, b, offset, size, ec)
	case T("maxp"):
		return parseMaxP(t, b, offset, size, ec)
	case T("hmtx"), T("vmtx"):
		return newHMtxTable(t, b, offset, size), nil
	case T("loca"):
		return newLocaTable(t, b, offset, size), nil
	case T("glyf"):
		return newGlyfTable(t, b, offset, size), nil
	case T("cmap"):
		return parseCMap(t, b, offset, size, ec)
	case T("kern"):
		return parseKern(t, b, offset, size, ec)
	case T("fvar"):
		return parseFvar(t, b, offset, size, ec)
	case T("avar"):
		return parseAvar(t, b, offset, size, ec)
	case T("HVAR"), T("VVAR"):
		return parseHVar(t, b, offset, size, ec)
	case T("MVAR"):
		return parseMVar(t, b, offset, size, ec)
	case T("gvar"):
		return parseGvar(t, b, offset, size, ec)
	case T("GSUB"), T("GPOS"):
		return parseLayoutTable(t, b, offset, size, ec)
	case T("GDEF"):
		return parseGDef(t, b, offset, size, ec)
	}
	tracer().Infof("font contains table (%s), will not be interpreted", t)
	return newTable(t, b, offset, size), nil
}

// --- Head table ------------------------------------------------------------

func parseHead(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 54 {
		ec.addError(tag, "Size", fmt.Sprintf("head table too small: %d bytes (need 54)", size), SeverityCritical, offset)
		return nil, errFontFormat("size of head table")
	}
	t := newHeadTable(tag, b, offset, size)
	t.Flags, _ = b.u16(16)
	t.UnitsPerEm, _ = b.u16(18)
	// IndexToLocFormat is needed to interpret the loca table:
	// 0 for short offsets, 1 for long.
	t.IndexToLocFormat, _ = b.u16(50)
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

// The 'maxp' table establishes the memory requirements for the font. The only
// field interpreted here is the glyph count.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 6 {
		ec.addError(tag, "Size", fmt.Sprintf("maxp table too small: %d bytes (need 6)", size), SeverityCritical, offset)
		return nil, errFontFormat("size of maxp table")
	}
	t := newMaxPTable(tag, b, offset, size)
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	return t, nil
}

// --- HHea table ------------------------------------------------------------

func parseHHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 36 {
		ec.addError(tag, "Size", fmt.Sprintf("hhea table too small: %d bytes (need 36)", size), SeverityCritical, offset)
		return nil, errFontFormat("hhea table incomplete")
	}
	t := newHHeaTable(tag, b, offset, size)
	t.Ascender, _ = b.i16(4)
	t.Descender, _ = b.i16(6)
	t.LineGap, _ = b.i16(8)
	t.AdvanceWidthMax, _ = b.u16(10)
	n, _ := b.u16(34)
	t.NumberOfHMetrics = int(n)
	return t, nil
}

// --- VHea table ------------------------------------------------------------

func parseVHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 36 {
		return nil, errFontFormat("vhea table incomplete")
	}
	t := newVHeaTable(tag, b, offset, size)
	t.Ascender, _ = b.i16(4)
	t.Descender, _ = b.i16(6)
	t.LineGap, _ = b.i16(8)
	n, _ := b.u16(34)
	t.NumberOfVMetrics = int(n)
	return t, nil
}
