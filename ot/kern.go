package ot

import "fmt"

// Kerning pairs, table 'kern'.
//
// TrueType and OpenType slightly differ on formats of kern tables:
// see https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6kern.html
// and https://docs.microsoft.com/en-us/typography/opentype/spec/kern
//
// We only support kern sub-table format 0, which should be supported on any
// platform. In the real world, fonts usually have just one kern sub-table,
// and older Windows versions cannot handle more than one.

// KernTable gives access to the kerning pairs of a font. Only horizontal
// kerning is supported.
type KernTable struct {
	tableBase
	headers []kernSubTableHeader
}

type kernSubTableHeader struct {
	offset   uint16 // start position of this sub-table's kern pairs
	length   uint32 // size of the sub-table in bytes, without header
	coverage uint16 // info about type of information contained in this sub-table
	pairs    int    // number of kerning pairs
}

func newKernTable(tag Tag, b binarySegm, offset, size uint32) *KernTable {
	t := &KernTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

func parseKern(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size <= 4 {
		return nil, errFontFormat("kern table too small")
	}
	var n, suboffset, subheaderlen int
	if version, _ := b.u32(0); version == 0x00010000 {
		tracer().Debugf("font has Apple TTF kern table format")
		cnt, _ := b.u32(4) // number of kerning sub-tables is uint32
		n, suboffset, subheaderlen = int(cnt), 8, 16
	} else {
		tracer().Debugf("font has OTF (MS) kern table format")
		cnt, _ := b.u16(2) // number of kerning sub-tables is uint16
		n, suboffset, subheaderlen = int(cnt), 4, 14
	}
	tracer().Debugf("kern table has %d sub-tables", n)
	t := newKernTable(tag, b, offset, size)
	for i := 0; i < n; i++ {
		if suboffset+subheaderlen >= int(size) {
			ec.addError(tag, "Format", fmt.Sprintf("sub-table %d header exceeds table size", i), SeverityMajor, offset+uint32(suboffset))
			return nil, errFontFormat("kern table format")
		}
		h := kernSubTableHeader{
			offset: uint16(suboffset + subheaderlen),
			// sub-tables are of varying size; size may be off ⇒ see below
			length:   uint32(u16(b[suboffset+2:])) - uint32(subheaderlen),
			coverage: u16(b[suboffset+4:]),
		}
		if format := h.coverage >> 8; format != 0 {
			tracer().Infof("kern sub-table format %d not supported, ignoring sub-table", format)
			suboffset += subheaderlen + int(h.length)
			continue // we only support format 0 kerning tables
		}
		h.pairs = int(u16(b[suboffset+subheaderlen-8:]))
		// For some fonts, size calculation of kern sub-tables is off; see
		// https://github.com/fonttools/fonttools/issues/314
		sz := uint32(h.pairs) * 6 // a kern pair record is 6 bytes
		if sz != h.length {
			ec.addWarning(tag, fmt.Sprintf("kern sub-table size given as 0x%x, should be 0x%x; fixing", h.length, sz), offset+uint32(suboffset))
			h.length = sz
		}
		if uint32(suboffset+subheaderlen)+sz > size {
			ec.addError(tag, "Bounds", fmt.Sprintf("sub-table %d exceeds table bounds", i), SeverityMajor, offset+uint32(suboffset))
			return nil, errFontFormat("kern sub-table size exceeds kern table bounds")
		}
		t.headers = append(t.headers, h)
		suboffset += subheaderlen + int(h.length)
	}
	tracer().Debugf("table kern has %d usable sub-table(s)", len(t.headers))
	return t, nil
}

// horizontal checks the coverage field for horizontal kerning data.
func (h kernSubTableHeader) horizontal() bool {
	return h.coverage&0x0001 != 0
}

// Kerning returns the kerning value for a glyph pair. Pairs are stored
// sorted by their combined key, so a binary search locates the entry.
func (t *KernTable) Kerning(left, right GlyphIndex) (int16, bool) {
	if t == nil {
		return 0, false
	}
	key := uint32(left)<<16 | uint32(right)
	for _, h := range t.headers {
		if !h.horizontal() {
			continue
		}
		pairs := t.data
		lo, hi := 0, h.pairs
		for lo < hi {
			mid := (lo + hi) / 2
			rec, err := pairs.view(int(h.offset)+mid*6, 6)
			if err != nil {
				return 0, false
			}
			k := u32(rec)
			switch {
			case key < k:
				hi = mid
			case key > k:
				lo = mid + 1
			default:
				return i16(rec[4:]), true
			}
		}
	}
	return 0, false
}

// GlyphsKerning returns the horizontal kerning between a glyph pair, or
// absent if the font carries no kerning data for the pair.
func (otf *Font) GlyphsKerning(left, right GlyphIndex) (int16, bool) {
	if otf.Kern == nil {
		return 0, false
	}
	return otf.Kern.Kerning(left, right)
}
