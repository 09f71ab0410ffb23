package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	tag := Tag(0x636d6170)
	if tag.String() != "cmap" {
		t.Errorf("expected tag 0x636d6170 to be 'cmap', is %s", tag.String())
	}
	tag = MakeTag([]byte("cmap"))
	if tag.String() != "cmap" {
		t.Errorf("expected tag MakeTag(cmap) to be 'cmap', is %s", tag.String())
	}
	tag = T("cmap")
	if tag.String() != "cmap" {
		t.Errorf("expected tag T(cmap) to be 'cmap', is %s", tag.String())
	}
}

func TestParseEmptyBuffer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	if _, err := Parse([]byte{}); err == nil {
		t.Errorf("expected construction from empty buffer to fail")
	}
}

func TestParseTruncatedOffsetTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	w := &binWriter{}
	w.u32(sfntVersionTrueType)
	w.u16(0) // numTables
	w.u16(0) // searchRange
	w.u16(0) // entrySelector
	w.u16(0) // rangeShift
	for i := 0; i < len(w.b); i++ {
		if _, err := Parse(w.b[:i]); err == nil {
			t.Errorf("expected construction from %d header bytes to fail", i)
		}
	}
}

func TestParseZeroTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	w := &binWriter{}
	w.u32(sfntVersionTrueType)
	w.u16(0)
	w.u16(0)
	w.u16(0)
	w.u16(0)
	if _, err := Parse(w.b); err == nil {
		t.Errorf("expected construction without tables to fail (mandatory tables missing)")
	}
}

func TestParseTableCountOverflow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	w := &binWriter{}
	w.u32(sfntVersionTrueType)
	w.u16(0xffff) // numTables
	w.u16(0)
	w.u16(0)
	w.u16(0)
	if _, err := Parse(w.b); err == nil {
		t.Errorf("expected construction with 0xFFFF tables to fail")
	}
}

func TestParseUnknownMagic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	w := &binWriter{}
	w.u32(0xffffffff)
	w.u16(0)
	w.u16(0)
	w.u16(0)
	w.u16(0)
	if _, err := Parse(w.b); err == nil {
		t.Errorf("expected construction with unknown magic to fail")
	}
}

func TestParseMinimalFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	otf, err := Parse(buildRectFont())
	if err != nil {
		t.Fatalf("cannot parse synthetic font: %v", err)
	}
	if otf.NumGlyphs() != 1 {
		t.Errorf("expected font to have 1 glyph, has %d", otf.NumGlyphs())
	}
	if upem, ok := otf.UnitsPerEm(); !ok || upem != 1000 {
		t.Errorf("expected 1000 units per em, have %d", upem)
	}
	if otf.IsVariable() {
		t.Errorf("font should not be variable")
	}
	if aw, lsb, ok := otf.HMtx.Metrics(0); !ok || aw != 500 || lsb != 50 {
		t.Errorf("expected metrics (500, 50), have (%d, %d)", aw, lsb)
	}
	if _, _, ok := otf.HMtx.Metrics(1); ok {
		t.Errorf("expected metrics of out-of-range glyph to be absent")
	}
}

func TestParseBrokenOptionalTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	loca, glyf := locaAndGlyf(rectGlyph(50, 0, 450, 750))
	font := newTestFont().
		add("head", headTable(1000, 0)).
		add("hhea", hheaTable(750, -250, 0, 1)).
		add("maxp", maxpTable(1)).
		add("hmtx", hmtxTable([][2]int16{{500, 50}}, nil)).
		add("loca", loca).
		add("glyf", glyf).
		add("kern", []byte{0, 0, 0, 1, 0xff}). // truncated junk
		build()
	otf, err := Parse(font)
	if err != nil {
		t.Fatalf("broken optional table must not fail construction: %v", err)
	}
	if otf.Kern != nil {
		t.Errorf("expected broken kern table to be absent")
	}
}

func TestParseMissingMandatoryTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	font := newTestFont().
		add("head", headTable(1000, 0)).
		add("maxp", maxpTable(1)).
		build()
	if _, err := Parse(font); err == nil {
		t.Errorf("expected construction without hhea to fail")
	}
}

func TestParseZeroGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	font := newTestFont().
		add("head", headTable(1000, 0)).
		add("hhea", hheaTable(750, -250, 0, 1)).
		add("maxp", maxpTable(0)).
		build()
	if _, err := Parse(font); err == nil {
		t.Errorf("expected construction with zero glyphs to fail")
	}
}

// --- Collections ------------------------------------------------------------

func collectionHeader(numFonts uint32, offsets ...uint32) []byte {
	w := &binWriter{}
	w.tag("ttcf")
	w.u16(1) // majorVersion
	w.u16(0) // minorVersion
	w.u32(numFonts)
	for _, off := range offsets {
		w.u32(off)
	}
	return w.b
}

func TestFontsInCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	if _, ok := FontsInCollection(buildRectFont()); ok {
		t.Errorf("single font misdetected as collection")
	}
	if n, ok := FontsInCollection(collectionHeader(3)); !ok || n != 3 {
		t.Errorf("expected collection with 3 fonts, have %d (ok=%v)", n, ok)
	}
}

func TestCollectionNumFontsOverflow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	// A collection claiming 0xFFFFFFFF fonts reports its font count, but
	// construction of any entry fails.
	data := collectionHeader(0xffffffff)
	if n, ok := FontsInCollection(data); !ok || n != 0xffffffff {
		t.Errorf("expected numFonts 0xFFFFFFFF, have %d (ok=%v)", n, ok)
	}
	if _, err := ParseCollectionEntry(data, 0xfffffffe); err == nil {
		t.Errorf("expected construction of entry 0xFFFFFFFE to fail")
	}
	if _, err := ParseCollectionEntry(data, 0); err == nil {
		t.Errorf("expected construction of entry 0 to fail")
	}
}

func TestCollectionEntry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	const fontBase = 16 // ttcf header with one offset entry
	loca, glyf := locaAndGlyf(rectGlyph(50, 0, 450, 750))
	font := newTestFont().
		add("head", headTable(1000, 0)).
		add("hhea", hheaTable(750, -250, 0, 1)).
		add("maxp", maxpTable(1)).
		add("hmtx", hmtxTable([][2]int16{{500, 50}}, nil)).
		add("loca", loca).
		add("glyf", glyf).
		buildAt(fontBase)
	data := append(collectionHeader(1, fontBase), font...)
	otf, err := ParseCollectionEntry(data, 0)
	if err != nil {
		t.Fatalf("cannot parse collection entry: %v", err)
	}
	if otf.NumGlyphs() != 1 {
		t.Errorf("expected collection font to have 1 glyph, has %d", otf.NumGlyphs())
	}
	if _, err = ParseCollectionEntry(data, 1); err == nil {
		t.Errorf("expected out-of-range collection index to fail")
	}
}

func TestSingleFontIndexMustBeZero(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	if _, err := ParseCollectionEntry(buildRectFont(), 1); err == nil {
		t.Errorf("expected non-zero index on single font to fail")
	}
}
