package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestCMapFormat4(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	// 'A'..'Z' map to glyphs 1..26
	sub := cmapFormat4Subtable('A', 'Z', 1)
	gim, err := parseCMapFormat4(sub)
	if err != nil {
		t.Fatal(err)
	}
	if gid, ok := gim.Lookup('A'); !ok || gid != 1 {
		t.Errorf("expected 'A' to map to glyph 1, got %d (ok=%v)", gid, ok)
	}
	if gid, ok := gim.Lookup('Z'); !ok || gid != 26 {
		t.Errorf("expected 'Z' to map to glyph 26, got %d (ok=%v)", gid, ok)
	}
	if _, ok := gim.Lookup('a'); ok {
		t.Errorf("expected 'a' to be unmapped")
	}
	if _, ok := gim.Lookup('@'); ok {
		t.Errorf("expected '@' to be unmapped")
	}
	if _, ok := gim.Lookup(0x10400); ok {
		t.Errorf("expected non-BMP code-point to be unmapped in format 4")
	}
	if r := gim.ReverseLookup(26); r != 'Z' {
		t.Errorf("expected reverse lookup of glyph 26 to be 'Z', got %q", r)
	}
	if r := gim.ReverseLookup(99); r != 0 {
		t.Errorf("expected reverse lookup of unmapped glyph to be 0, got %q", r)
	}
}

func TestCMapFormat12(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	sub := cmapFormat12Subtable(0x10400, 0x10427, 7)
	gim, err := parseCMapFormat12(sub)
	if err != nil {
		t.Fatal(err)
	}
	if gid, ok := gim.Lookup(0x10400); !ok || gid != 7 {
		t.Errorf("expected U+10400 to map to glyph 7, got %d (ok=%v)", gid, ok)
	}
	if gid, ok := gim.Lookup(0x10427); !ok || gid != 7+0x27 {
		t.Errorf("expected U+10427 to map to glyph %d, got %d (ok=%v)", 7+0x27, gid, ok)
	}
	if _, ok := gim.Lookup(0x10428); ok {
		t.Errorf("expected U+10428 to be unmapped")
	}
	if r := gim.ReverseLookup(7); r != 0x10400 {
		t.Errorf("expected reverse lookup of glyph 7 to be U+10400, got %#x", r)
	}
}

func TestCMapEndToEnd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	// Three glyphs; 'A' and 'B' map to glyphs 1 and 2. Anything mapping at
	// or past the glyph count reports absent.
	glyphs := [][]byte{
		rectGlyph(50, 0, 450, 750),
		rectGlyph(50, 0, 450, 750),
		rectGlyph(50, 0, 450, 750),
	}
	loca, glyf := locaAndGlyf(glyphs...)
	font := newTestFont().
		add("head", headTable(1000, 0)).
		add("hhea", hheaTable(750, -250, 0, 3)).
		add("maxp", maxpTable(3)).
		add("hmtx", hmtxTable([][2]int16{{500, 50}, {500, 50}, {500, 50}}, nil)).
		add("loca", loca).
		add("glyf", glyf).
		add("cmap", cmapWithSubtable(3, 1, cmapFormat4Subtable('A', 'Z', 1))).
		build()
	otf, err := Parse(font)
	if err != nil {
		t.Fatal(err)
	}
	if gid, ok := otf.GlyphIndex('A'); !ok || gid != 1 {
		t.Errorf("expected 'A' to map to glyph 1, got %d (ok=%v)", gid, ok)
	}
	if gid, ok := otf.GlyphIndex('B'); !ok || gid != 2 {
		t.Errorf("expected 'B' to map to glyph 2, got %d (ok=%v)", gid, ok)
	}
	// 'C' would map to glyph 3, beyond the font's glyph count.
	if _, ok := otf.GlyphIndex('C'); ok {
		t.Errorf("expected mapping beyond the glyph count to be absent")
	}
	if _, ok := otf.GlyphIndex('a'); ok {
		t.Errorf("expected 'a' to be unmapped")
	}
}

func TestCMapFormat6(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	w := &binWriter{}
	w.u16(6)  // format
	w.u16(16) // length
	w.u16(0)  // language
	w.u16(0x30) // firstCode '0'
	w.u16(3)  // entryCount
	w.u16(4)  // '0' -> 4
	w.u16(5)
	w.u16(6)
	gim, err := parseCMapFormat6(w.b)
	if err != nil {
		t.Fatal(err)
	}
	if gid, ok := gim.Lookup('1'); !ok || gid != 5 {
		t.Errorf("expected '1' to map to glyph 5, got %d (ok=%v)", gid, ok)
	}
	if _, ok := gim.Lookup('3'); ok {
		t.Errorf("expected '3' to be unmapped")
	}
	if r := gim.ReverseLookup(6); r != '2' {
		t.Errorf("expected reverse lookup of glyph 6 to be '2', got %q", r)
	}
}

func TestCMapFormat0(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	w := &binWriter{}
	w.u16(0)   // format
	w.u16(262) // length
	w.u16(0)   // language
	ids := make([]byte, 256)
	ids['A'] = 1
	w.raw(ids)
	gim, err := parseCMapFormat0(w.b)
	if err != nil {
		t.Fatal(err)
	}
	if gid, ok := gim.Lookup('A'); !ok || gid != 1 {
		t.Errorf("expected 'A' to map to glyph 1, got %d (ok=%v)", gid, ok)
	}
	if _, ok := gim.Lookup('B'); ok {
		t.Errorf("expected 'B' to be unmapped")
	}
	if _, ok := gim.Lookup(0x100); ok {
		t.Errorf("expected code-points above 0xFF to be unmapped in format 0")
	}
}
