package ot

import "fmt"

// Advanced layout tables 'GSUB', 'GPOS' and 'GDEF'.
//
// This package provides raw access to shaping metadata only: clients can
// enumerate scripts, features and lookups, but no lookup is ever applied
// (shaping is the business of the caller). GSUB and GPOS share a common
// header layout and are both represented by LayoutTable.

// LayoutTable is a common representation for tables 'GSUB' and 'GPOS'.
type LayoutTable struct {
	tableBase
	scripts     tagRecordMap16
	features    tagRecordMap16
	lookupCount int
}

func newLayoutTable(tag Tag, b binarySegm, offset, size uint32) *LayoutTable {
	t := &LayoutTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// parseLayoutTable reads the layout table header, i.e. version information
// and the offsets to the script-, feature- and lookup-lists.
// Header versions 1.0 and 1.1 are supported.
func parseLayoutTable(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if len(b) < 10 {
		ec.addError(tag, "Header", fmt.Sprintf("header too small: %d bytes", len(b)), SeverityMajor, offset)
		return nil, errFontFormat("layout table header too small")
	}
	major, _ := b.u16(0)
	minor, _ := b.u16(2)
	if major != 1 || minor > 1 {
		ec.addError(tag, "Header", fmt.Sprintf("unsupported version %d.%d", major, minor), SeverityMajor, offset)
		return nil, errFontFormat("unsupported layout table version")
	}
	t := newLayoutTable(tag, b, offset, size)
	// The ScriptList enumerates the scripts in the font by tag; each record
	// links to a script table. The FeatureList does the same for features.
	if link, err := parseLink16(b, 4, b, "ScriptList"); err == nil && !link.IsNull() {
		scripts := binarySegm(link.Jump().Bytes())
		t.scripts = parseTagRecordMap16(scripts, 0, scripts, "ScriptList", "Script")
	}
	if link, err := parseLink16(b, 6, b, "FeatureList"); err == nil && !link.IsNull() {
		features := binarySegm(link.Jump().Bytes())
		t.features = parseTagRecordMap16(features, 0, features, "FeatureList", "Feature")
	}
	if link, err := parseLink16(b, 8, b, "LookupList"); err == nil && !link.IsNull() {
		lookups := binarySegm(link.Jump().Bytes())
		if n, err := lookups.u16(0); err == nil {
			t.lookupCount = int(n)
		}
	}
	return t, nil
}

// ScriptTags returns the script tags the layout table carries rules for.
func (t *LayoutTable) ScriptTags() []Tag {
	if t == nil {
		return nil
	}
	return t.scripts.Tags()
}

// SupportsScript checks whether the layout table carries rules for a script.
func (t *LayoutTable) SupportsScript(script Tag) bool {
	if t == nil {
		return false
	}
	return !t.scripts.LookupTag(script).IsNull()
}

// FeatureTags returns the feature tags the layout table carries rules for.
func (t *LayoutTable) FeatureTags() []Tag {
	if t == nil {
		return nil
	}
	return t.features.Tags()
}

// LookupCount returns the number of lookups in the layout table.
func (t *LayoutTable) LookupCount() int {
	if t == nil {
		return 0
	}
	return t.lookupCount
}

// --- GDEF ------------------------------------------------------------------

// GlyphClass is a glyph property defined by the glyph class definition of
// table 'GDEF'.
type GlyphClass uint16

// Glyph classes, as defined by the OpenType specification.
const (
	GlyphClassUnknown   GlyphClass = 0
	GlyphClassBase      GlyphClass = 1
	GlyphClassLigature  GlyphClass = 2
	GlyphClassMark      GlyphClass = 3
	GlyphClassComponent GlyphClass = 4
)

// GDefTable provides various glyph properties used in OpenType layout
// processing.
type GDefTable struct {
	tableBase
	Major, Minor  uint16
	glyphClassDef binarySegm // class definition table for glyph classes
}

func newGDefTable(tag Tag, b binarySegm, offset, size uint32) *GDefTable {
	t := &GDefTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

func parseGDef(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if len(b) < 12 {
		ec.addError(tag, "Header", "GDEF header too small", SeverityMajor, offset)
		return nil, errFontFormat("GDEF table header too small")
	}
	t := newGDefTable(tag, b, offset, size)
	t.Major, _ = b.u16(0)
	t.Minor, _ = b.u16(2)
	if t.Major != 1 || t.Minor > 3 {
		ec.addError(tag, "Version", fmt.Sprintf("unsupported GDEF version %d.%d", t.Major, t.Minor), SeverityMajor, offset)
		return nil, errFontFormat("unsupported GDEF version")
	}
	if link, err := parseLink16(b, 4, b, "GlyphClassDef"); err == nil && !link.IsNull() {
		t.glyphClassDef = binarySegm(link.Jump().Bytes())
	}
	return t, nil
}

// GlyphClass returns the class of a glyph according to the glyph class
// definition table. Glyphs without an assigned class report absent.
//
// The class definition table comes in two formats: format 1 assigns classes
// to a contiguous range of glyph ids, format 2 lists class ranges.
func (t *GDefTable) GlyphClass(gid GlyphIndex) (GlyphClass, bool) {
	if t == nil || len(t.glyphClassDef) == 0 {
		return GlyphClassUnknown, false
	}
	b := t.glyphClassDef
	format, err := b.u16(0)
	if err != nil {
		return GlyphClassUnknown, false
	}
	switch format {
	case 1:
		startGlyph, _ := b.u16(2)
		glyphCount, err := b.u16(4)
		if err != nil {
			return GlyphClassUnknown, false
		}
		if uint16(gid) < startGlyph || uint16(gid) >= startGlyph+glyphCount {
			return GlyphClassUnknown, false
		}
		cls, err := b.u16(6 + int(uint16(gid)-startGlyph)*2)
		if err != nil {
			return GlyphClassUnknown, false
		}
		return GlyphClass(cls), true
	case 2:
		rangeCount, err := b.u16(2)
		if err != nil {
			return GlyphClassUnknown, false
		}
		lo, hi := 0, int(rangeCount)
		for lo < hi {
			mid := (lo + hi) / 2
			rec, err := b.view(4+mid*6, 6)
			if err != nil {
				return GlyphClassUnknown, false
			}
			start, end := u16(rec), u16(rec[2:])
			switch {
			case uint16(gid) < start:
				hi = mid
			case uint16(gid) > end:
				lo = mid + 1
			default:
				return GlyphClass(u16(rec[4:])), true
			}
		}
	}
	return GlyphClassUnknown, false
}
