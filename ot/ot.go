package ot

import "fmt"

// Font represents the internal structure of an OpenType font.
// It is an immutable borrow of the font's binary data, plus sub-borrows for
// each known table and cached decoded headers for the three mandatory tables
// (head, hhea, maxp). A Font is produced once by Parse and is cheap to copy.
//
// The axis coordinate vector is the only mutable state of a Font: it is set
// by SetVariation and read by every variation-aware query. Concurrent
// read-only use of a Font from multiple goroutines is safe; SetVariation
// requires exclusive access (it is an unsynchronized mutation).
type Font struct {
	Header *FontHeader
	tables map[Tag]Table
	Head   *HeadTable // font header, mandatory
	HHea   *HHeaTable // horizontal header, mandatory
	MaxP   *MaxPTable // maximum profile, mandatory
	CMap   *CMapTable // character to glyph index mapping
	HMtx   *HMtxTable // horizontal metrics
	VHea   *VHeaTable // vertical header
	VMtx   *HMtxTable // vertical metrics; same record layout as hmtx
	Loca   *LocaTable // glyph index to location
	Glyf   *GlyfTable // glyph outline data
	Kern   *KernTable // kerning pairs
	Fvar   *FvarTable // font variation axes
	Avar   *AvarTable // axis variation segment maps
	HVar   *HVarTable // horizontal metrics variations
	VVar   *HVarTable // vertical metrics variations; same layout as HVAR
	MVar   *MVarTable // font-wide metrics variations
	Gvar   *GvarTable // glyph outline variations
	Layout struct {   // OpenType advanced layout tables, raw access only
		GSub *LayoutTable
		GPos *LayoutTable
		GDef *GDefTable
	}
	coords        varCoords     // normalized axis coordinates, post-avar
	userCoords    varCoords     // normalized axis coordinates, pre-avar
	parseErrors   []FontError   // errors accumulated during parsing
	parseWarnings []FontWarning // warnings accumulated during parsing
}

// FontHeader is a directory of the top-level tables in a font. If the font
// file contains only one font, the table directory will begin at byte 0 of
// the file. If the font file is a font collection, the beginning of the table
// directory for each font is indicated in the collection header.
//
// Fonts with TrueType outlines use the value 0x00010000 for the FontType.
// Fonts containing CFF data (version 1 or 2) use 0x4F54544F ('OTTO', when
// re-interpreted as a Tag).
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// Table tag names are case-sensitive, following the names in the OpenType
// specification.
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// TableTags returns a list of tags, one for each table contained in the font.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	return tags
}

// NumGlyphs returns the total number of glyphs in the font. It is never zero
// for a successfully parsed font.
func (otf *Font) NumGlyphs() int {
	return otf.MaxP.NumGlyphs
}

// UnitsPerEm returns the font's design units per em. Values outside the valid
// range 16…16384 report as absent.
func (otf *Font) UnitsPerEm() (uint16, bool) {
	upem := otf.Head.UnitsPerEm
	if upem < 16 || upem > 16384 {
		return 0, false
	}
	return upem, true
}

// IsVariable returns true if the font carries variation axes.
func (otf *Font) IsVariable() bool {
	return otf.Fvar != nil && otf.Fvar.AxisCount() > 0
}

// Errors returns all errors encountered during font parsing. These represent
// issues that were found but did not prevent parsing from completing.
func (otf *Font) Errors() []FontError {
	if otf.parseErrors == nil {
		return []FontError{}
	}
	return otf.parseErrors
}

// Warnings returns all warnings encountered during font parsing. Warnings
// indicate potential issues that are generally safe to ignore.
func (otf *Font) Warnings() []FontWarning {
	if otf.parseWarnings == nil {
		return []FontWarning{}
	}
	return otf.parseWarnings
}

// GlyphIndex is a glyph index in a font. Index 0 is the '.notdef' glyph,
// which is always present.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the spec as:
// Array of four uint8s (length = 32 bits) used to identify a table,
// design-variation axis, script, language system, feature, or baseline.
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
//
//	MakeTag([]byte("cmap"))
//
// If b is shorter or longer, it will be silently extended or cut as
// appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as
// appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// DFLT is the default script tag.
var DFLT = T("DFLT")

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables.
//
// Required tables, according to this package: 'head' (font header),
// 'hhea' (horizontal header), 'maxp' (maximum profile). All other tables are
// optional; a failing optional table is stored as absent.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; treat as read-only
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}}
	t.self = t
	return t
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting a
// generic table to a concrete table flavour, and for reproducing the name tag
// of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	if k, ok := safeSelf(tself).(*HeadTable); ok {
		return k
	}
	return nil
}

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable {
	if k, ok := safeSelf(tself).(*HHeaTable); ok {
		return k
	}
	return nil
}

// AsVHea returns this table as a vhea table, or nil.
func (tself TableSelf) AsVHea() *VHeaTable {
	if k, ok := safeSelf(tself).(*VHeaTable); ok {
		return k
	}
	return nil
}

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable {
	if k, ok := safeSelf(tself).(*MaxPTable); ok {
		return k
	}
	return nil
}

// AsCMap returns this table as a cmap table, or nil.
func (tself TableSelf) AsCMap() *CMapTable {
	if k, ok := safeSelf(tself).(*CMapTable); ok {
		return k
	}
	return nil
}

// AsHMtx returns this table as a hmtx (or vmtx) table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable {
	if k, ok := safeSelf(tself).(*HMtxTable); ok {
		return k
	}
	return nil
}

// AsLoca returns this table as a loca table, or nil.
func (tself TableSelf) AsLoca() *LocaTable {
	if k, ok := safeSelf(tself).(*LocaTable); ok {
		return k
	}
	return nil
}

// AsGlyf returns this table as a glyf table, or nil.
func (tself TableSelf) AsGlyf() *GlyfTable {
	if k, ok := safeSelf(tself).(*GlyfTable); ok {
		return k
	}
	return nil
}

// AsKern returns this table as a kern table, or nil.
func (tself TableSelf) AsKern() *KernTable {
	if k, ok := safeSelf(tself).(*KernTable); ok {
		return k
	}
	return nil
}

// AsFvar returns this table as an fvar table, or nil.
func (tself TableSelf) AsFvar() *FvarTable {
	if k, ok := safeSelf(tself).(*FvarTable); ok {
		return k
	}
	return nil
}

// AsAvar returns this table as an avar table, or nil.
func (tself TableSelf) AsAvar() *AvarTable {
	if k, ok := safeSelf(tself).(*AvarTable); ok {
		return k
	}
	return nil
}

// AsHVar returns this table as an HVAR (or VVAR) table, or nil.
func (tself TableSelf) AsHVar() *HVarTable {
	if k, ok := safeSelf(tself).(*HVarTable); ok {
		return k
	}
	return nil
}

// AsMVar returns this table as an MVAR table, or nil.
func (tself TableSelf) AsMVar() *MVarTable {
	if k, ok := safeSelf(tself).(*MVarTable); ok {
		return k
	}
	return nil
}

// AsGvar returns this table as a gvar table, or nil.
func (tself TableSelf) AsGvar() *GvarTable {
	if k, ok := safeSelf(tself).(*GvarTable); ok {
		return k
	}
	return nil
}

// AsLayoutTable returns this table as a GSUB or GPOS table, or nil.
func (tself TableSelf) AsLayoutTable() *LayoutTable {
	if k, ok := safeSelf(tself).(*LayoutTable); ok {
		return k
	}
	return nil
}

// AsGDef returns this table as a GDEF table, or nil.
func (tself TableSelf) AsGDef() *GDefTable {
	if k, ok := safeSelf(tself).(*GDefTable); ok {
		return k
	}
	return nil
}

// --- Concrete table implementations ----------------------------------------

// HeadTable gives global information about the font.
// Only a small subset of fields is made public by HeadTable, as they are
// needed for interpreting other tables.
type HeadTable struct {
	tableBase
	Flags            uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	IndexToLocFormat uint16 // needed to interpret the loca table
}

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascender         int16
	Descender        int16
	LineGap          int16
	AdvanceWidthMax  uint16
	NumberOfHMetrics int
}

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) *HHeaTable {
	t := &HHeaTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// VHeaTable contains information for vertical layout.
type VHeaTable struct {
	tableBase
	Ascender         int16
	Descender        int16
	LineGap          int16
	NumberOfVMetrics int
}

func newVHeaTable(tag Tag, b binarySegm, offset, size uint32) *VHeaTable {
	t := &VHeaTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
// By definition, index zero points to the “missing character”.
type LocaTable struct {
	tableBase
	inx2loc func(t *LocaTable, gid GlyphIndex) (uint32, bool) // glyph location for glyph gid
	locCnt  int                                               // number of locations
}

func newLocaTable(tag Tag, b binarySegm, offset, size uint32) *LocaTable {
	t := &LocaTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.inx2loc = shortLocaVersion // may get changed during consistency check
	t.locCnt = 0                 // has to be set during consistency check
	t.self = t
	return t
}

// IndexToLocation returns the byte offset of a glyph's data block within the
// 'glyf' table. Short format offsets are stored divided by 2.
func (t *LocaTable) IndexToLocation(gid GlyphIndex) (uint32, bool) {
	return t.inx2loc(t, gid)
}

// GlyphRange returns start and end offset of a glyph's data within the 'glyf'
// table. A zero-length range denotes an empty glyph without an outline.
// Out-of-range glyph indices report absent.
func (t *LocaTable) GlyphRange(gid GlyphIndex) (uint32, uint32, bool) {
	start, ok := t.inx2loc(t, gid)
	if !ok {
		return 0, 0, false
	}
	end, ok := t.inx2loc(t, gid+1)
	if !ok || end < start {
		return 0, 0, false
	}
	return start, end, true
}

func shortLocaVersion(t *LocaTable, gid GlyphIndex) (uint32, bool) {
	if int(gid) >= t.locCnt {
		return 0, false
	}
	loc, err := t.data.u16(int(gid) * 2)
	if err != nil {
		return 0, false
	}
	return uint32(loc) * 2, true
}

func longLocaVersion(t *LocaTable, gid GlyphIndex) (uint32, bool) {
	if int(gid) >= t.locCnt {
		return 0, false
	}
	loc, err := t.data.u32(int(gid) * 4)
	if err != nil {
		return 0, false
	}
	return loc, true
}

// GlyfTable contains the glyph outline data. It is not decoded up front;
// the outline engine slices out single glyphs on demand.
type GlyfTable struct {
	tableBase
}

func newGlyfTable(tag Tag, b binarySegm, offset, size uint32) *GlyfTable {
	t := &GlyfTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// HMtxTable contains metric information for the horizontal layout of each
// glyph in the font. Each element in the long metrics array has two parts:
// the advance width and a side bearing. The array has NumberOfMetrics
// entries, taken from the hhea (or vhea) table; glyphs past the end of the
// array share the advance of the last entry and have their side bearings
// stored in a trailing array.
//
// The same record layout serves tables 'hmtx' and 'vmtx'.
type HMtxTable struct {
	tableBase
	NumberOfMetrics int
	numGlyphs       int
}

func newHMtxTable(tag Tag, b binarySegm, offset, size uint32) *HMtxTable {
	t := &HMtxTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// link attaches the metric count from hhea/vhea and the glyph count from
// maxp, after validating the table size against both.
func (t *HMtxTable) link(numberOfMetrics, numGlyphs int) error {
	if numberOfMetrics <= 0 || numberOfMetrics > numGlyphs {
		return fmt.Errorf("invalid number of long metrics %d (numGlyphs=%d)",
			numberOfMetrics, numGlyphs)
	}
	required := numberOfMetrics*4 + (numGlyphs-numberOfMetrics)*2
	if required > len(t.data) {
		return fmt.Errorf("metrics table too small: need %d bytes, have %d",
			required, len(t.data))
	}
	t.NumberOfMetrics = numberOfMetrics
	t.numGlyphs = numGlyphs
	return nil
}

// Metrics returns the advance and side bearing for a glyph. Glyph indices
// past the long metrics array share the last advance; indices past the glyph
// count report absent.
func (t *HMtxTable) Metrics(g GlyphIndex) (uint16, int16, bool) {
	if t == nil || t.NumberOfMetrics == 0 || int(g) >= t.numGlyphs {
		return 0, 0, false
	}
	if int(g) < t.NumberOfMetrics {
		aw, err := t.data.u16(int(g) * 4)
		if err != nil {
			return 0, 0, false
		}
		sb, err := t.data.i16(int(g)*4 + 2)
		if err != nil {
			return 0, 0, false
		}
		return aw, sb, true
	}
	aw, err := t.data.u16((t.NumberOfMetrics - 1) * 4)
	if err != nil {
		return 0, 0, false
	}
	sb, err := t.data.i16(t.NumberOfMetrics*4 + (int(g)-t.NumberOfMetrics)*2)
	if err != nil {
		return 0, 0, false
	}
	return aw, sb, true
}

// Advance returns the advance width for a glyph.
func (t *HMtxTable) Advance(g GlyphIndex) (uint16, bool) {
	aw, _, ok := t.Metrics(g)
	return aw, ok
}

// SideBearing returns the side bearing for a glyph.
func (t *HMtxTable) SideBearing(g GlyphIndex) (int16, bool) {
	_, sb, ok := t.Metrics(g)
	return sb, ok
}
