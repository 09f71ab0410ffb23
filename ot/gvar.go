package ot

// Glyph outline variations, table 'gvar'.
//
// The table stores per-glyph tuple-variation headers plus packed
// point-number and delta streams. A tuple specifies a region in axis space,
// either by index into a global list of shared peaks or inline (optionally
// with intermediate start/end tuples). Applying variation to a glyph means:
// for every tuple with a non-zero weight at the current coordinates, decode
// the affected point set and two parallel packed delta streams, and add
// weight · (δx, δy) to each point's position in floating point — before the
// outline engine translates points into draw commands.

// GvarTable holds the glyph variation data of a variable font.
type GvarTable struct {
	tableBase
	axisCount    int
	sharedTuples binarySegm // sharedTupleCount × axisCount F2DOT14 values
	sharedCount  int
	glyphCount   int
	longOffsets  bool
	offsets      binarySegm // glyphCount+1 offsets into the data array
	dataArray    binarySegm
}

func newGvarTable(tag Tag, b binarySegm, offset, size uint32) *GvarTable {
	t := &GvarTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

func parseGvar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	version, err := b.u32(0)
	if err != nil || version != 0x00010000 {
		return nil, errFontFormat("gvar version")
	}
	axisCount, _ := b.u16(4)
	sharedTupleCount, _ := b.u16(6)
	sharedTuplesOffset, _ := b.u32(8)
	glyphCount, _ := b.u16(12)
	flags, _ := b.u16(14)
	dataArrayOffset, err := b.u32(16)
	if err != nil {
		return nil, errFontFormat("gvar header")
	}
	if axisCount == 0 || int(axisCount) > MaxAxisCount {
		return nil, errFontFormat("gvar axis count")
	}
	t := newGvarTable(tag, b, offset, size)
	t.axisCount = int(axisCount)
	t.glyphCount = int(glyphCount)
	t.longOffsets = flags&0x0001 != 0
	t.sharedCount = int(sharedTupleCount)

	sharedSize, errMul := checkedMulInt(int(sharedTupleCount)*2, int(axisCount))
	if errMul != nil {
		return nil, errFontFormat("gvar shared tuples size")
	}
	if t.sharedTuples, err = b.view(int(sharedTuplesOffset), sharedSize); err != nil && sharedSize > 0 {
		return nil, errFontFormat("gvar shared tuples incomplete")
	}
	entrySize := 2
	if t.longOffsets {
		entrySize = 4
	}
	if t.offsets, err = b.view(20, (int(glyphCount)+1)*entrySize); err != nil {
		return nil, errFontFormat("gvar offsets incomplete")
	}
	if int64(dataArrayOffset) > int64(len(b)) {
		return nil, errFontFormat("gvar data array offset")
	}
	t.dataArray = b[dataArrayOffset:]
	return t, nil
}

// glyphVariationData returns the serialized tuple variation store for one
// glyph. An empty segment means the glyph has no variation data.
func (t *GvarTable) glyphVariationData(gid GlyphIndex) binarySegm {
	if int(gid) >= t.glyphCount {
		return binarySegm{}
	}
	var start, end uint32
	if t.longOffsets {
		start = t.offsets.U32(int(gid) * 4)
		end = t.offsets.U32(int(gid)*4 + 4)
	} else {
		// Short offsets are stored as half the real offset.
		start = uint32(t.offsets.U16(int(gid)*2)) * 2
		end = uint32(t.offsets.U16(int(gid)*2+2)) * 2
	}
	if end < start || int64(end) > int64(len(t.dataArray)) {
		return binarySegm{}
	}
	return t.dataArray[start:end]
}

// sharedPeak returns axis i of shared tuple #index.
func (t *GvarTable) sharedPeak(index, i int) NormalizedCoord {
	if index < 0 || index >= t.sharedCount || i < 0 || i >= t.axisCount {
		return 0
	}
	return NormalizedCoord(int16(t.sharedTuples.U16((index*t.axisCount + i) * 2)))
}

// --- Tuple variation headers ------------------------------------------------

const (
	tupleEmbeddedPeak  = 0x8000 // tupleIndex flag: peak tuple follows inline
	tupleIntermediate  = 0x4000 // tupleIndex flag: start/end tuples follow
	tuplePrivatePoints = 0x2000 // tupleIndex flag: private point numbers
	tupleIndexMask     = 0x0fff
	sharedPointNumbers = 0x8000 // tupleVariationCount flag
	tupleCountMask     = 0x0fff
)

type tupleHeader struct {
	dataSize      int
	index         int // into the shared tuple list, when no embedded peak
	hasPeak       bool
	hasIntermed   bool
	privatePoints bool
	peak          [MaxAxisCount]NormalizedCoord
	intermStart   [MaxAxisCount]NormalizedCoord
	intermEnd     [MaxAxisCount]NormalizedCoord
}

// readTuple reads axisCount F2DOT14 coordinates into a fixed buffer.
func readTuple(s *stream, axisCount int, buf *[MaxAxisCount]NormalizedCoord) {
	for i := 0; i < axisCount; i++ {
		buf[i] = NormalizedCoord(s.i16())
	}
}

// scalarAt computes the tuple's weight at the given coordinates: the product
// of per-axis region tents, with the peak either embedded or from the shared
// tuple list.
func (t *GvarTable) scalarAt(th *tupleHeader, coords []NormalizedCoord) float64 {
	scalar := 1.0
	for i := 0; i < t.axisCount && i < len(coords); i++ {
		peak := th.peak[i]
		if !th.hasPeak {
			peak = t.sharedPeak(th.index, i)
		}
		v := coords[i]
		if peak == 0 || v == peak {
			continue
		}
		if th.hasIntermed {
			start, end := th.intermStart[i], th.intermEnd[i]
			if start > peak || peak > end || (start < 0 && end > 0 && peak != 0) {
				continue
			}
			if v < start || v > end {
				return 0
			}
			if v < peak {
				if peak != start {
					scalar *= float64(v-start) / float64(peak-start)
				}
			} else {
				if peak != end {
					scalar *= float64(end-v) / float64(end-peak)
				}
			}
		} else if v == 0 || v < min(0, peak) || v > max(0, peak) {
			return 0
		} else {
			scalar *= float64(v) / float64(peak)
		}
	}
	return scalar
}

// --- Packed point numbers and deltas ----------------------------------------

// readPackedPointNumbers decodes a packed point-number list. A nil result
// with ok=true means "all points".
func readPackedPointNumbers(s *stream) ([]uint16, bool) {
	control := s.u8()
	if !s.ok() {
		return nil, false
	}
	if control == 0 {
		return nil, true // deltas apply to all points
	}
	var count int
	if control&0x80 != 0 {
		count = int(control&0x7f)<<8 | int(s.u8())
	} else {
		count = int(control)
	}
	if !s.ok() {
		return nil, false
	}
	points := make([]uint16, 0, count)
	var last uint16
	for len(points) < count {
		run := s.u8()
		if !s.ok() {
			return nil, false
		}
		runLength := int(run&0x7f) + 1
		if run&0x80 != 0 { // 16-bit point number runs
			for i := 0; i < runLength && len(points) < count; i++ {
				last += s.u16()
				points = append(points, last)
			}
		} else {
			for i := 0; i < runLength && len(points) < count; i++ {
				last += uint16(s.u8())
				points = append(points, last)
			}
		}
		if !s.ok() {
			return nil, false
		}
	}
	return points, true
}

// readPackedDeltas decodes count packed deltas into out.
func readPackedDeltas(s *stream, out []int16) bool {
	const (
		deltasAreZero     = 0x80
		deltasAreWords    = 0x40
		deltaRunCountMask = 0x3f
	)
	read := 0
	for read < len(out) {
		control := s.u8()
		if !s.ok() {
			return false
		}
		count := int(control&deltaRunCountMask) + 1
		if read+count > len(out) {
			return false
		}
		switch {
		case control&deltasAreZero != 0:
			for i := 0; i < count; i++ {
				out[read] = 0
				read++
			}
		case control&deltasAreWords != 0:
			for i := 0; i < count; i++ {
				out[read] = s.i16()
				read++
			}
		default:
			for i := 0; i < count; i++ {
				out[read] = int16(s.i8())
				read++
			}
		}
		if !s.ok() {
			return false
		}
	}
	return true
}

// --- Delta application -------------------------------------------------------

// varPoint is a glyph point (or composite component offset) in floating
// point, displaced by variation deltas.
type varPoint struct {
	x, y     float64
	onCurve  bool
	endPoint bool
	explicit bool // referenced by the current tuple's point list
}

// The four phantom points (per-glyph metrics points) trail every glyph's
// point list in the delta streams.
const phantomPointCount = 4

// ApplyDeltas displaces points by the glyph's variation deltas at the given
// coordinates. Points unreferenced by a tuple's explicit point list receive
// inferred deltas, interpolated along their contour. Reports false on
// malformed variation data; points are then left partially displaced and the
// caller must discard them.
func (t *GvarTable) ApplyDeltas(gid GlyphIndex, coords []NormalizedCoord, points []varPoint) bool {
	if t == nil {
		return true
	}
	data := t.glyphVariationData(gid)
	if len(data) == 0 {
		return true // no variation data for this glyph
	}
	s := makeStream(data)
	tupleVariationCount := s.u16()
	dataOffset := s.u16()
	if !s.ok() || int(dataOffset) > len(data) {
		return false
	}
	tupleCount := int(tupleVariationCount & tupleCountMask)

	serialized := makeStream(data[dataOffset:])
	var sharedPoints []uint16
	sharedPointsAll := true
	if tupleVariationCount&sharedPointNumbers != 0 {
		var ok bool
		if sharedPoints, ok = readPackedPointNumbers(&serialized); !ok {
			return false
		}
		sharedPointsAll = sharedPoints == nil
	}

	// Original point positions are needed for inferring deltas of
	// unreferenced points.
	orig := make([]varPoint, len(points))
	copy(orig, points)
	deltas := make([]varPoint, len(points))

	var th tupleHeader
	for i := 0; i < tupleCount; i++ {
		th = tupleHeader{}
		th.dataSize = int(s.u16())
		tupleIndex := s.u16()
		if !s.ok() {
			return false
		}
		th.index = int(tupleIndex & tupleIndexMask)
		th.hasPeak = tupleIndex&tupleEmbeddedPeak != 0
		th.hasIntermed = tupleIndex&tupleIntermediate != 0
		th.privatePoints = tupleIndex&tuplePrivatePoints != 0
		if th.hasPeak {
			readTuple(&s, t.axisCount, &th.peak)
		}
		if th.hasIntermed {
			readTuple(&s, t.axisCount, &th.intermStart)
			readTuple(&s, t.axisCount, &th.intermEnd)
		}
		if !s.ok() {
			return false
		}

		chunk := makeStream(serialized.bytes(th.dataSize))
		if !serialized.ok() {
			return false
		}
		scalar := t.scalarAt(&th, coords)

		tuplePoints := sharedPoints
		applyToAll := sharedPointsAll
		if th.privatePoints {
			var ok bool
			if tuplePoints, ok = readPackedPointNumbers(&chunk); !ok {
				return false
			}
			applyToAll = tuplePoints == nil
		}
		if scalar == 0 {
			continue // tuple does not contribute at these coordinates
		}

		deltaCount := len(tuplePoints)
		if applyToAll {
			deltaCount = len(points) + phantomPointCount
		}
		xDeltas := make([]int16, deltaCount)
		yDeltas := make([]int16, deltaCount)
		if !readPackedDeltas(&chunk, xDeltas) || !readPackedDeltas(&chunk, yDeltas) {
			return false
		}

		for j := range deltas {
			deltas[j] = varPoint{}
		}
		for j := 0; j < deltaCount; j++ {
			ptInx := j
			if !applyToAll {
				ptInx = int(tuplePoints[j])
			}
			if ptInx >= len(points) {
				continue // phantom points carry metrics deltas, not outline points
			}
			deltas[ptInx].explicit = true
			deltas[ptInx].x += float64(xDeltas[j]) * scalar
			deltas[ptInx].y += float64(yDeltas[j]) * scalar
		}
		if !applyToAll {
			inferUnreferencedDeltas(orig, deltas)
		}
		for j := range points {
			points[j].x += deltas[j].x
			points[j].y += deltas[j].y
		}
	}
	return true
}

// inferUnreferencedDeltas interpolates deltas for points a tuple's explicit
// point list leaves out. Within each contour, every gap of unreferenced
// points between two referenced neighbours receives deltas interpolated from
// those neighbours; gaps may wrap around the contour ends.
func inferUnreferencedDeltas(orig, deltas []varPoint) {
	startPoint := 0
	for endPoint := 0; endPoint < len(orig); endPoint++ {
		if !orig[endPoint].endPoint {
			continue
		}
		inferContour(orig, deltas, startPoint, endPoint)
		startPoint = endPoint + 1
	}
}

func inferContour(orig, deltas []varPoint, startPoint, endPoint int) {
	unrefCount := 0
	for _, p := range deltas[startPoint : endPoint+1] {
		if !p.explicit {
			unrefCount++
		}
	}
	if unrefCount == 0 || unrefCount > endPoint-startPoint {
		return // no unreferenced points, or no referenced ones to infer from
	}
	j := startPoint
	for {
		// Locate the next gap of unreferenced points between two referenced
		// points prev and next.
		var prev, next, i int
		for {
			i = j
			j = nextIndex(i, startPoint, endPoint)
			if deltas[i].explicit && !deltas[j].explicit {
				break
			}
		}
		prev, j = i, i
		for {
			i = j
			j = nextIndex(i, startPoint, endPoint)
			if !deltas[i].explicit && deltas[j].explicit {
				break
			}
		}
		next = j
		i = prev
		for {
			i = nextIndex(i, startPoint, endPoint)
			if i == next {
				break
			}
			deltas[i].x = inferDelta(orig[i].x, orig[prev].x, orig[next].x, deltas[prev].x, deltas[next].x)
			deltas[i].y = inferDelta(orig[i].y, orig[prev].y, orig[next].y, deltas[prev].y, deltas[next].y)
			unrefCount--
			if unrefCount == 0 {
				return
			}
		}
	}
}

func nextIndex(i, start, end int) int {
	if i >= end {
		return start
	}
	return i + 1
}

func inferDelta(targetVal, prevVal, nextVal, prevDelta, nextDelta float64) float64 {
	if prevVal == nextVal {
		if prevDelta == nextDelta {
			return prevDelta
		}
		return 0
	} else if targetVal <= min(prevVal, nextVal) {
		if prevVal < nextVal {
			return prevDelta
		}
		return nextDelta
	} else if targetVal >= max(prevVal, nextVal) {
		if prevVal > nextVal {
			return prevDelta
		}
		return nextDelta
	}
	r := (targetVal - prevVal) / (nextVal - prevVal)
	return prevDelta + r*(nextDelta-prevDelta)
}

// --- Variable outlines -------------------------------------------------------

// outlineVariableGlyph outlines a glyph with variation deltas applied and
// accumulates a tight bounding box, since the boxes stored in glyph headers
// do not reflect deltas.
func (otf *Font) outlineVariableGlyph(gid GlyphIndex, sink OutlineSink) (Rect, bool) {
	data, ok := otf.GlyphData(gid)
	if !ok || data.Size() == 0 {
		return Rect{}, false
	}
	var bb bbox
	builder := newOutlineBuilder(Identity(), &bb, sink)
	if !otf.varOutlineImpl(gid, 0, &builder) {
		return Rect{}, false
	}
	return bb.toRect()
}

func (otf *Font) varOutlineImpl(gid GlyphIndex, depth int, builder *outlineBuilder) bool {
	if depth >= MaxComponentDepth {
		tracer().Infof("recursion limit exceeded in variable glyph outline")
		return false
	}
	data, ok := otf.GlyphData(gid)
	if !ok || data.Size() == 0 {
		return false
	}
	s := makeStream(binarySegm(data.Bytes()))
	numContours := int(s.i16())
	s.skip(8) // stored bounds are not valid under variation
	if !s.ok() {
		return false
	}

	switch {
	case numContours > 0: // simple glyph
		points, ok := collectGlyphPoints(s.tail(), numContours)
		if !ok {
			return false
		}
		varPoints := make([]varPoint, len(points))
		for i, p := range points {
			varPoints[i] = varPoint{
				x:        float64(p.x),
				y:        float64(p.y),
				onCurve:  p.onCurve,
				endPoint: p.endPoint,
			}
		}
		if !otf.Gvar.ApplyDeltas(gid, otf.Coords(), varPoints) {
			return false
		}
		for _, p := range varPoints {
			builder.pushPoint(p.x, p.y, p.onCurve, p.endPoint)
		}
	case numContours < 0: // composite glyph
		iter := newComponentIter(s.tail())
		comps := make([]componentRecord, 0, 4)
		for {
			comp, ok := iter.next()
			if !ok {
				break
			}
			comps = append(comps, comp)
		}
		// Components have tuple-driven translation deltas applied to their
		// own offsets; each component is treated as one point.
		offsets := make([]varPoint, len(comps))
		for i, comp := range comps {
			offsets[i] = varPoint{x: comp.transform.E, y: comp.transform.F, endPoint: true}
		}
		if !otf.Gvar.ApplyDeltas(gid, otf.Coords(), offsets) {
			return false
		}
		for i, comp := range comps {
			if !comp.flags.argsAreXYValues() {
				tracer().Infof("composite component with point-index anchors skipped")
				continue
			}
			comp.transform.E = offsets[i].x
			comp.transform.F = offsets[i].y
			childData, ok := otf.GlyphData(comp.glyphID)
			if !ok || childData.Size() == 0 {
				continue
			}
			combined := Combine(builder.transform, comp.transform)
			child := newOutlineBuilder(combined, builder.bbox, builder.sink)
			if !otf.varOutlineImpl(comp.glyphID, depth+1, &child) {
				return false
			}
		}
	default:
		return false
	}
	return true
}
