package ot

// Font-wide metrics variations, table 'MVAR'. The table maps metric tags
// (e.g. 'hasc' for the ascender, 'xhgt' for the x-height) to (outer, inner)
// delta-set indices inside an item variation store.

const mvarValueRecordSize = 8 // valueTag, deltaSetOuterIndex, deltaSetInnerIndex

// MVarTable holds metric deltas of a variable font.
type MVarTable struct {
	tableBase
	store   itemVariationStore
	records array // value records, sorted by tag
}

func newMVarTable(tag Tag, b binarySegm, offset, size uint32) *MVarTable {
	t := &MVarTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

func parseMVar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	version, err := b.u32(0)
	if err != nil || version != 0x00010000 {
		return nil, errFontFormat("MVAR version")
	}
	valueRecordSize, _ := b.u16(6)
	if valueRecordSize != mvarValueRecordSize {
		return nil, errFontFormat("MVAR value record size")
	}
	count, err := b.u16(8)
	if err != nil || count == 0 {
		return nil, errFontFormat("MVAR without value records")
	}
	storeLink, err := parseLink16(b, 10, b, "ItemVariationStore")
	if err != nil || storeLink.IsNull() {
		return nil, errFontFormat("MVAR store offset")
	}
	t := newMVarTable(tag, b, offset, size)
	if t.store, err = parseItemVariationStore(binarySegm(storeLink.Jump().Bytes())); err != nil {
		return nil, err
	}
	records, err := b.view(12, int(count)*mvarValueRecordSize)
	if err != nil {
		return nil, errFontFormat("MVAR value records incomplete")
	}
	t.records = viewArray(records, mvarValueRecordSize)
	return t, nil
}

// Delta evaluates the delta for a metric tag at the given coordinates.
// Unknown metric tags report absent. Records are sorted by tag, so a binary
// search locates the record.
func (t *MVarTable) Delta(metric Tag, coords []NormalizedCoord) (float64, bool) {
	if t == nil {
		return 0, false
	}
	lo, hi := 0, t.records.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		rec := binarySegm(t.records.Get(mid).Bytes())
		tag := Tag(rec.U32(0))
		switch {
		case metric < tag:
			hi = mid
		case metric > tag:
			lo = mid + 1
		default:
			return t.store.Delta(rec.U16(4), rec.U16(6), coords)
		}
	}
	return 0, false
}

// MetricsVariation evaluates the delta of a font-wide metric (table 'MVAR')
// at the font's current axis coordinates. Non-variable fonts and unknown
// metric tags report absent.
func (otf *Font) MetricsVariation(metric Tag) (float64, bool) {
	if otf.MVar == nil {
		return 0, false
	}
	return otf.MVar.Delta(metric, otf.Coords())
}
