package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestSegmentView(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	b := binarySegm([]byte{1, 2, 3, 4})
	if n, err := b.u16(0); err != nil || n != 0x0102 {
		t.Errorf("expected u16(0) = 0x0102, got %x (err=%v)", n, err)
	}
	if n, err := b.u32(0); err != nil || n != 0x01020304 {
		t.Errorf("expected u32(0) = 0x01020304, got %x (err=%v)", n, err)
	}
	if _, err := b.u16(3); err == nil {
		t.Errorf("expected u16(3) on 4 bytes to fail")
	}
	if _, err := b.u32(1); err == nil {
		t.Errorf("expected u32(1) on 4 bytes to fail")
	}
	if _, err := b.view(2, -1); err == nil {
		t.Errorf("expected negative view size to fail")
	}
	if _, err := b.view(-1, 2); err == nil {
		t.Errorf("expected negative view offset to fail")
	}
}

func TestStreamSticksOnError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	s := makeStream(binarySegm([]byte{0x12, 0x34, 0x56}))
	if n := s.u16(); n != 0x1234 || !s.ok() {
		t.Errorf("expected first u16 to succeed, got %x", n)
	}
	if n := s.u16(); n != 0 || s.ok() {
		t.Errorf("expected reading past the segment to fail, got %x", n)
	}
	// once bad, always bad
	if n := s.u8(); n != 0 || s.ok() {
		t.Errorf("expected stream error to be sticky, got %x", n)
	}
}

func TestStreamSkipAndTail(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	s := makeStream(binarySegm([]byte{1, 2, 3, 4, 5}))
	s.skip(3)
	tail := s.tail()
	if tail.Size() != 2 || tail[0] != 4 {
		t.Errorf("expected tail [4 5], got %v", tail)
	}
	s.skip(-1)
	if s.ok() {
		t.Errorf("expected negative skip to fail the stream")
	}
}

func TestLinkJumpBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	base := binarySegm(make([]byte, 10))
	rec := binarySegm([]byte{0x00, 0x40}) // offset 64, beyond base
	if _, err := parseLink16(rec, 0, base, "test"); err == nil {
		t.Errorf("expected out-of-bounds link16 to fail")
	}
	rec = binarySegm([]byte{0x00, 0x08})
	link, err := parseLink16(rec, 0, base, "test")
	if err != nil {
		t.Fatalf("link16 within bounds failed: %v", err)
	}
	if link.IsNull() {
		t.Errorf("expected non-zero link to be non-null")
	}
	if loc := link.Jump(); loc.Size() != 2 {
		t.Errorf("expected jump target of size 2, got %d", loc.Size())
	}
	rec = binarySegm([]byte{0x00, 0x00}) // offset 0 = null link
	link, _ = parseLink16(rec, 0, base, "test")
	if !link.IsNull() {
		t.Errorf("expected zero offset to be a null link")
	}
}

func TestArrayAccess(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	w := &binWriter{}
	for i := 0; i < 4; i++ {
		w.u16(uint16(i * 11))
	}
	a := viewArray(w.b, 2)
	if a.Len() != 4 {
		t.Fatalf("expected array of length 4, got %d", a.Len())
	}
	if v := a.U16(2); v != 22 {
		t.Errorf("expected entry 2 to be 22, got %d", v)
	}
	if loc := a.Get(4); loc.Size() != 0 {
		t.Errorf("expected out-of-range access to yield an empty location")
	}
	if loc := a.Get(-1); loc.Size() != 0 {
		t.Errorf("expected negative index to yield an empty location")
	}
}

func TestTagRecordMap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otkit.ot")
	defer teardown()
	//
	w := &binWriter{}
	w.u16(2) // count
	w.tag("kern")
	w.u16(8)
	w.tag("liga")
	w.u16(10)
	m := parseTagRecordMap16(w.b, 0, w.b, "FeatureList", "Feature")
	if m.Len() != 2 {
		t.Fatalf("expected map of length 2, got %d", m.Len())
	}
	tags := m.Tags()
	if len(tags) != 2 || tags[0] != T("kern") || tags[1] != T("liga") {
		t.Errorf("expected tags [kern liga], got %v", tags)
	}
	if m.LookupTag(T("liga")).IsNull() {
		t.Errorf("expected tag liga to be found")
	}
	if !m.LookupTag(T("smcp")).IsNull() {
		t.Errorf("expected tag smcp to be absent")
	}
}
