package ot

import (
	"sort"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// kernTableData writes an OTF-flavoured kern table with one format-0
// horizontal sub-table.
func kernTableData(pairs map[[2]GlyphIndex]int16) []byte {
	keys := make([]uint32, 0, len(pairs))
	for pair := range pairs {
		keys = append(keys, uint32(pair[0])<<16|uint32(pair[1]))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	w := &binWriter{}
	w.u16(0) // version
	w.u16(1) // nTables
	w.u16(0) // sub-table version
	w.u16(uint16(14 + len(pairs)*6))
	w.u16(0x0001) // coverage: horizontal, format 0
	w.u16(uint16(len(pairs)))
	w.u16(0) // searchRange
	w.u16(0) // entrySelector
	w.u16(0) // rangeShift
	for _, key := range keys {
		w.u32(key)
		w.i16(pairs[[2]GlyphIndex{GlyphIndex(key >> 16), GlyphIndex(key & 0xffff)}])
	}
	return w.b
}

func TestKerningPairs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	loca, glyf := locaAndGlyf(rectGlyph(50, 0, 450, 750), nil, nil)
	font := newTestFont().
		add("head", headTable(1000, 0)).
		add("hhea", hheaTable(750, -250, 0, 1)).
		add("maxp", maxpTable(3)).
		add("hmtx", hmtxTable([][2]int16{{500, 50}}, []int16{0, 0})).
		add("loca", loca).
		add("glyf", glyf).
		add("kern", kernTableData(map[[2]GlyphIndex]int16{
			{1, 2}: -30,
			{2, 1}: 15,
			{0, 2}: 7,
		})).
		build()
	otf, err := Parse(font)
	if err != nil {
		t.Fatal(err)
	}
	if otf.Kern == nil {
		t.Fatalf("expected kern table to be present")
	}
	if kern, ok := otf.GlyphsKerning(1, 2); !ok || kern != -30 {
		t.Errorf("expected kerning (1,2) = -30, got %d (ok=%v)", kern, ok)
	}
	if kern, ok := otf.GlyphsKerning(2, 1); !ok || kern != 15 {
		t.Errorf("expected kerning (2,1) = 15, got %d (ok=%v)", kern, ok)
	}
	if _, ok := otf.GlyphsKerning(2, 2); ok {
		t.Errorf("expected kerning (2,2) to be absent")
	}
}
