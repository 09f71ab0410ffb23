package ot

// Glyph outlines, stored in table 'glyf' and indexed through table 'loca'.
//
// Two incompatible encodings exist for glyph outlines; this engine decodes
// the contour-and-flag format of table 'glyf'. A glyph is either simple
// (packed flag/coordinate streams forming quadratic Bézier contours),
// composite (a list of transformed references to other glyphs), or empty.

// OutlineSink is a caller-supplied receiver for draw commands. Coordinates
// are floating-point design units (the unit system of the font's
// units-per-em).
//
// Commands arrive inline, in program order. A sink must not re-enter the
// font handle.
type OutlineSink interface {
	MoveTo(x, y float64)                      // start of a contour
	LineTo(x, y float64)                      // straight segment
	QuadTo(cx, cy, x, y float64)              // quadratic Bézier segment
	CurveTo(cx1, cy1, cx2, cy2, x, y float64) // cubic Bézier segment
	ClosePath()                               // end of a contour
}

// nullSink drops all draw commands. It is used when only the side effects of
// outlining are wanted, e.g. a tight bounding box.
type nullSink struct{}

func (nullSink) MoveTo(x, y float64)                      {}
func (nullSink) LineTo(x, y float64)                      {}
func (nullSink) QuadTo(cx, cy, x, y float64)              {}
func (nullSink) CurveTo(c1x, c1y, c2x, c2y, x, y float64) {}
func (nullSink) ClosePath()                               {}

// --- Transforms and bounding boxes -----------------------------------------

// Transform is a 2×3 affine matrix (a b c d e f), applied as
//
//	x' = a·x + c·y + e
//	y' = b·x + d·y + f
//
// Composite glyphs carry one per referenced sub-glyph.
type Transform struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{A: 1, D: 1}
}

// Translation returns a pure translation transform.
func Translation(tx, ty float64) Transform {
	return Transform{A: 1, D: 1, E: tx, F: ty}
}

// Combine composes two transforms (standard 2×3 composition); the result
// applies t2 first, then t1.
func Combine(t1, t2 Transform) Transform {
	return Transform{
		A: t1.A*t2.A + t1.C*t2.B,
		B: t1.B*t2.A + t1.D*t2.B,
		C: t1.A*t2.C + t1.C*t2.D,
		D: t1.B*t2.C + t1.D*t2.D,
		E: t1.A*t2.E + t1.C*t2.F + t1.E,
		F: t1.B*t2.E + t1.D*t2.F + t1.F,
	}
}

// Apply transforms a point.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.C*y + t.E, t.B*x + t.D*y + t.F
}

// IsIdentity checks for the identity transform. A direct float comparison is
// fine in our case.
func (t Transform) IsIdentity() bool {
	return t.A == 1 && t.B == 0 && t.C == 0 && t.D == 1 && t.E == 0 && t.F == 0
}

// Rect is a glyph bounding box in design units.
type Rect struct {
	XMin, YMin, XMax, YMax int16
}

// bbox accumulates a tight bounding box in floating point while outlining.
type bbox struct {
	xMin, yMin, xMax, yMax float64
	valid                  bool
}

func (bb *bbox) extend(x, y float64) {
	if !bb.valid {
		bb.xMin, bb.yMin, bb.xMax, bb.yMax = x, y, x, y
		bb.valid = true
		return
	}
	bb.xMin = min(bb.xMin, x)
	bb.yMin = min(bb.yMin, y)
	bb.xMax = max(bb.xMax, x)
	bb.yMax = max(bb.yMax, y)
}

// toRect clamps the accumulated float corners into the 16-bit range. Corners
// that do not fit report absent.
func (bb *bbox) toRect() (Rect, bool) {
	if !bb.valid {
		return Rect{}, false
	}
	toI16 := func(f float64) (int16, bool) {
		if f < -32768 || f > 32767 {
			return 0, false
		}
		return int16(f), true
	}
	var r Rect
	var ok bool
	if r.XMin, ok = toI16(bb.xMin); !ok {
		return Rect{}, false
	}
	if r.YMin, ok = toI16(bb.yMin); !ok {
		return Rect{}, false
	}
	if r.XMax, ok = toI16(bb.xMax); !ok {
		return Rect{}, false
	}
	if r.YMax, ok = toI16(bb.yMax); !ok {
		return Rect{}, false
	}
	return r, true
}

// --- Contour to command translation ----------------------------------------

type outlinePoint struct {
	x, y float64
}

func midpoint(p, q outlinePoint) outlinePoint {
	return outlinePoint{(p.x + q.x) / 2, (p.y + q.y) / 2}
}

// outlineBuilder translates runs of on-curve/off-curve points into a clean
// sequence of moves, lines and quadratic curves, inserting implied on-curve
// midpoints between consecutive off-curve points. Commands pass through an
// affine transform before reaching the sink; an optional bbox records the
// min/max of every transformed point.
type outlineBuilder struct {
	sink          OutlineSink
	transform     Transform
	isDefaultTs   bool // identity transform short-cut
	bbox          *bbox
	firstOnCurve  *outlinePoint
	firstOffCurve *outlinePoint
	lastOffCurve  *outlinePoint
}

func newOutlineBuilder(t Transform, bb *bbox, sink OutlineSink) outlineBuilder {
	return outlineBuilder{
		sink:        sink,
		transform:   t,
		isDefaultTs: t.IsIdentity(),
		bbox:        bb,
	}
}

func (ob *outlineBuilder) moveTo(x, y float64) {
	if !ob.isDefaultTs {
		x, y = ob.transform.Apply(x, y)
	}
	if ob.bbox != nil {
		ob.bbox.extend(x, y)
	}
	ob.sink.MoveTo(x, y)
}

func (ob *outlineBuilder) lineTo(x, y float64) {
	if !ob.isDefaultTs {
		x, y = ob.transform.Apply(x, y)
	}
	if ob.bbox != nil {
		ob.bbox.extend(x, y)
	}
	ob.sink.LineTo(x, y)
}

func (ob *outlineBuilder) quadTo(cx, cy, x, y float64) {
	if !ob.isDefaultTs {
		cx, cy = ob.transform.Apply(cx, cy)
		x, y = ob.transform.Apply(x, y)
	}
	if ob.bbox != nil {
		ob.bbox.extend(cx, cy)
		ob.bbox.extend(x, y)
	}
	ob.sink.QuadTo(cx, cy, x, y)
}

// pushPoint feeds the next point of a contour into the builder. Useful
// background for the state machine:
// https://developer.apple.com/fonts/TrueType-Reference-Manual/RM01/Chap1.html
func (ob *outlineBuilder) pushPoint(x, y float64, onCurve, lastPoint bool) {
	p := outlinePoint{x, y}
	if ob.firstOnCurve == nil {
		if onCurve {
			ob.firstOnCurve = &p
			ob.moveTo(p.x, p.y)
		} else if ob.firstOffCurve != nil {
			// Two leading off-curve points: the implied on-curve start is
			// their midpoint.
			mid := midpoint(*ob.firstOffCurve, p)
			ob.firstOnCurve = &mid
			ob.lastOffCurve = &p
			ob.moveTo(mid.x, mid.y)
		} else {
			ob.firstOffCurve = &p
		}
	} else {
		switch {
		case ob.lastOffCurve != nil && onCurve:
			off := *ob.lastOffCurve
			ob.lastOffCurve = nil
			ob.quadTo(off.x, off.y, p.x, p.y)
		case ob.lastOffCurve != nil && !onCurve:
			off := *ob.lastOffCurve
			ob.lastOffCurve = &p
			mid := midpoint(off, p)
			ob.quadTo(off.x, off.y, mid.x, mid.y)
		case onCurve:
			ob.lineTo(p.x, p.y)
		default:
			ob.lastOffCurve = &p
		}
	}
	if lastPoint {
		ob.finishContour()
	}
}

func (ob *outlineBuilder) finishContour() {
	if ob.firstOffCurve != nil && ob.lastOffCurve != nil {
		off := *ob.lastOffCurve
		ob.lastOffCurve = nil
		mid := midpoint(off, *ob.firstOffCurve)
		ob.quadTo(off.x, off.y, mid.x, mid.y)
	}
	if ob.firstOnCurve != nil && ob.firstOffCurve != nil {
		ob.quadTo(ob.firstOffCurve.x, ob.firstOffCurve.y, ob.firstOnCurve.x, ob.firstOnCurve.y)
	} else if ob.firstOnCurve != nil && ob.lastOffCurve != nil {
		ob.quadTo(ob.lastOffCurve.x, ob.lastOffCurve.y, ob.firstOnCurve.x, ob.firstOnCurve.y)
	} else if ob.firstOnCurve != nil {
		ob.lineTo(ob.firstOnCurve.x, ob.firstOnCurve.y)
	}
	ob.sink.ClosePath()
	ob.firstOnCurve = nil
	ob.firstOffCurve = nil
	ob.lastOffCurve = nil
}

// --- Simple glyphs ----------------------------------------------------------

// Simple glyph flags, documented at
// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf#simple-glyph-description
type simpleGlyphFlags uint8

func (f simpleGlyphFlags) onCurve() bool         { return f&0x01 != 0 }
func (f simpleGlyphFlags) xShort() bool          { return f&0x02 != 0 }
func (f simpleGlyphFlags) yShort() bool          { return f&0x04 != 0 }
func (f simpleGlyphFlags) repeats() bool         { return f&0x08 != 0 }
func (f simpleGlyphFlags) xSameOrPositive() bool { return f&0x10 != 0 }
func (f simpleGlyphFlags) ySameOrPositive() bool { return f&0x20 != 0 }

// glyphPoint is a decoded contour point in absolute design units.
type glyphPoint struct {
	x, y     int16
	onCurve  bool
	endPoint bool // last point of its contour
}

// glyphPoints walks the three parallel packed streams of a simple glyph
// (flags, x-deltas, y-deltas) and produces absolute points. Points are
// accumulated with wrapping arithmetic, as fonts in the wild rely on it.
type glyphPoints struct {
	endpoints         array  // contour end point indices
	endpointInx       int    // next endpoint to read
	flags             stream
	xcoords           stream
	ycoords           stream
	pointsLeft        int
	lastPointIndex    int
	contourPointsLeft int
	flagRepeats       uint8
	lastFlags         simpleGlyphFlags
	x, y              int16
}

// parseSimpleGlyphPoints prepares a point iterator for the data following a
// simple glyph header. Layout: an array of contour end-point indices, a
// 16-bit instruction count plus that many instruction bytes (skipped), then
// the packed flag, x and y streams.
func parseSimpleGlyphPoints(data binarySegm, numContours int) (glyphPoints, bool) {
	s := makeStream(data)
	endpoints := s.readArray(numContours, 2)
	if !s.ok() || endpoints.Len() == 0 {
		return glyphPoints{}, false
	}
	last := endpoints.U16(endpoints.Len() - 1)
	if last == 0xffff {
		return glyphPoints{}, false
	}
	pointsTotal := int(last) + 1

	// Hinting instructions are noted and skipped.
	instructionLen := s.u16()
	s.skip(int(instructionLen))
	if !s.ok() {
		return glyphPoints{}, false
	}

	// The flag, x and y streams are interleaved at the table level only by
	// offset: the length of the x stream is implied by the flags, so the
	// flags have to be walked once before any coordinate can be read.
	flagsOffset := s.offset()
	xCoordsLen, ok := resolveXCoordsLen(&s, pointsTotal)
	if !ok {
		return glyphPoints{}, false
	}
	xCoordsOffset := s.offset()
	yCoordsOffset := xCoordsOffset + xCoordsLen

	if yCoordsOffset > len(data) {
		return glyphPoints{}, false
	}
	gp := glyphPoints{
		endpoints:         endpoints,
		flags:             makeStream(data[flagsOffset:xCoordsOffset]),
		xcoords:           makeStream(data[xCoordsOffset:yCoordsOffset]),
		ycoords:           makeStream(data[yCoordsOffset:]),
		pointsLeft:        pointsTotal,
		contourPointsLeft: int(endpoints.U16(0)),
		endpointInx:       1,
	}
	return gp, true
}

// resolveXCoordsLen sums the x-bytes implied by all flags (1 per short, 2 per
// long, 0 when x is unchanged), honoring the repeat counts. The y stream
// begins immediately after.
func resolveXCoordsLen(s *stream, pointsTotal int) (int, bool) {
	flagsLeft := pointsTotal
	xLen := 0
	for flagsLeft > 0 {
		flags := simpleGlyphFlags(s.u8())
		repeats := 1
		if flags.repeats() {
			repeats = int(s.u8()) + 1
		}
		if !s.ok() || repeats > flagsLeft {
			return 0, false
		}
		if flags.xShort() {
			xLen += repeats // coordinate is 1 byte long
		} else if !flags.xSameOrPositive() {
			xLen += repeats * 2 // coordinate is 2 bytes long
		}
		flagsLeft -= repeats
	}
	return xLen, true
}

// next produces the next point, or false when the glyph is exhausted or the
// streams are corrupt.
func (gp *glyphPoints) next() (glyphPoint, bool) {
	if gp.pointsLeft == 0 {
		return glyphPoint{}, false
	}
	if gp.flagRepeats == 0 {
		gp.lastFlags = simpleGlyphFlags(gp.flags.u8())
		if gp.lastFlags.repeats() {
			gp.flagRepeats = gp.flags.u8()
		}
		if !gp.flags.ok() {
			return glyphPoint{}, false
		}
	} else {
		gp.flagRepeats--
	}

	var dx int16
	switch {
	case gp.lastFlags.xShort() && gp.lastFlags.xSameOrPositive():
		dx = int16(gp.xcoords.u8())
	case gp.lastFlags.xShort():
		dx = -int16(gp.xcoords.u8())
	case gp.lastFlags.xSameOrPositive():
		dx = 0 // keep previous coordinate
	default:
		dx = gp.xcoords.i16()
	}
	if !gp.xcoords.ok() {
		return glyphPoint{}, false
	}
	gp.x = int16(uint16(gp.x) + uint16(dx)) // wrapping add

	var dy int16
	switch {
	case gp.lastFlags.yShort() && gp.lastFlags.ySameOrPositive():
		dy = int16(gp.ycoords.u8())
	case gp.lastFlags.yShort():
		dy = -int16(gp.ycoords.u8())
	case gp.lastFlags.ySameOrPositive():
		dy = 0
	default:
		dy = gp.ycoords.i16()
	}
	if !gp.ycoords.ok() {
		return glyphPoint{}, false
	}
	gp.y = int16(uint16(gp.y) + uint16(dy))

	gp.pointsLeft--
	lastPoint := gp.contourPointsLeft == 0
	if lastPoint {
		if gp.pointsLeft != 0 {
			// A contour must contain at least two points; degenerate
			// contours are skipped. Endpoints are stored in increasing
			// order, only the delta is needed.
			found := false
			for gp.endpointInx < gp.endpoints.Len() {
				endpoint := int(gp.endpoints.U16(gp.endpointInx))
				gp.endpointInx++
				left := endpoint - gp.lastPointIndex - 1
				if left < 0 {
					return glyphPoint{}, false
				}
				if left >= 1 {
					gp.contourPointsLeft = left
					found = true
					break
				}
			}
			if !found {
				return glyphPoint{}, false
			}
		}
	} else {
		gp.contourPointsLeft--
	}
	gp.lastPointIndex++

	return glyphPoint{
		x:        gp.x,
		y:        gp.y,
		onCurve:  gp.lastFlags.onCurve(),
		endPoint: lastPoint,
	}, true
}

// --- Composite glyphs -------------------------------------------------------

// Composite glyph flags, documented at
// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf#composite-glyph-description
type compositeGlyphFlags uint16

func (f compositeGlyphFlags) arg1And2AreWords() bool { return f&0x0001 != 0 }
func (f compositeGlyphFlags) argsAreXYValues() bool  { return f&0x0002 != 0 }
func (f compositeGlyphFlags) weHaveAScale() bool     { return f&0x0008 != 0 }
func (f compositeGlyphFlags) moreComponents() bool   { return f&0x0020 != 0 }
func (f compositeGlyphFlags) weHaveXAndYScale() bool { return f&0x0040 != 0 }
func (f compositeGlyphFlags) weHaveTwoByTwo() bool   { return f&0x0080 != 0 }

type componentRecord struct {
	glyphID   GlyphIndex
	transform Transform
	flags     compositeGlyphFlags
}

// componentIter walks the record stream of a composite glyph.
type componentIter struct {
	s    stream
	done bool
}

func newComponentIter(data binarySegm) componentIter {
	return componentIter{s: makeStream(data)}
}

func (ci *componentIter) next() (componentRecord, bool) {
	if ci.done || ci.s.atEnd() {
		return componentRecord{}, false
	}
	flags := compositeGlyphFlags(ci.s.u16())
	glyphID := GlyphIndex(ci.s.u16())
	ts := Identity()

	if flags.argsAreXYValues() {
		if flags.arg1And2AreWords() {
			ts.E = float64(ci.s.i16())
			ts.F = float64(ci.s.i16())
		} else {
			ts.E = float64(ci.s.i8())
			ts.F = float64(ci.s.i8())
		}
	} else {
		// The args are point-index anchors; such components are skipped by
		// the outline engine, but the args still have to be consumed.
		if flags.arg1And2AreWords() {
			ci.s.skip(4)
		} else {
			ci.s.skip(2)
		}
	}

	if flags.weHaveTwoByTwo() {
		ts.A = ci.s.f2dot14()
		ts.B = ci.s.f2dot14()
		ts.C = ci.s.f2dot14()
		ts.D = ci.s.f2dot14()
	} else if flags.weHaveXAndYScale() {
		ts.A = ci.s.f2dot14()
		ts.D = ci.s.f2dot14()
	} else if flags.weHaveAScale() {
		// “If the bit WE_HAVE_A_SCALE is set, the scale value is read in
		// 2.14 format. The value can be between -2 to almost +2.”
		ts.A = clampFloat(-2, ci.s.f2dot14(), 2)
		ts.D = ts.A
	}

	if !ci.s.ok() {
		ci.done = true
		return componentRecord{}, false
	}
	if !flags.moreComponents() {
		ci.done = true
	}
	return componentRecord{glyphID: glyphID, transform: ts, flags: flags}, true
}

func clampFloat(lo, v, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- Outline queries --------------------------------------------------------

// GlyphData returns the byte range of a glyph within the glyph-data table.
// A zero-length result denotes an empty glyph without an outline.
// Out-of-range glyph indices report absent.
func (otf *Font) GlyphData(gid GlyphIndex) (NavLocation, bool) {
	if otf.Loca == nil || otf.Glyf == nil {
		return binarySegm{}, false
	}
	start, end, ok := otf.Loca.GlyphRange(gid)
	if !ok || int64(end) > int64(len(otf.Glyf.data)) {
		return binarySegm{}, false
	}
	return otf.Glyf.data[start:end], true
}

// OutlineGlyph emits a glyph's outline as draw commands into a
// caller-supplied sink and returns the glyph's bounding box.
//
// For non-variable fonts (and at all-default axis coordinates) the box is
// the one stored in the glyph header, returned in O(1). With any axis away
// from its default, outline points are displaced by the glyph-variation
// deltas and a tight box is accumulated from the transformed points instead.
//
// Empty glyphs, malformed glyph data and composite nesting deeper than
// MaxComponentDepth report absent; commands already handed to the sink up to
// that point must be disregarded by the caller.
func (otf *Font) OutlineGlyph(gid GlyphIndex, sink OutlineSink) (Rect, bool) {
	if otf.varCoordsInUse() && otf.Gvar != nil {
		return otf.outlineVariableGlyph(gid, sink)
	}
	data, ok := otf.GlyphData(gid)
	if !ok || data.Size() == 0 {
		return Rect{}, false
	}
	builder := newOutlineBuilder(Identity(), nil, sink)
	return otf.outlineImpl(binarySegm(data.Bytes()), 0, &builder)
}

// GlyphBoundingBox returns the bounding box stored in a glyph's header, in
// O(1). For variable fonts with any axis away from its default, it returns
// the tight box of TightGlyphBoundingBox instead, since stored boxes do not
// reflect deltas.
func (otf *Font) GlyphBoundingBox(gid GlyphIndex) (Rect, bool) {
	if otf.varCoordsInUse() && otf.Gvar != nil {
		return otf.TightGlyphBoundingBox(gid)
	}
	data, ok := otf.GlyphData(gid)
	if !ok || data.Size() < 10 {
		return Rect{}, false
	}
	b := binarySegm(data.Bytes())
	return Rect{
		XMin: int16(b.U16(2)),
		YMin: int16(b.U16(4)),
		XMax: int16(b.U16(6)),
		YMax: int16(b.U16(8)),
	}, true
}

// TightGlyphBoundingBox runs the outline through an internal null sink and
// returns the min/max of every emitted point.
func (otf *Font) TightGlyphBoundingBox(gid GlyphIndex) (Rect, bool) {
	if otf.varCoordsInUse() && otf.Gvar != nil {
		return otf.outlineVariableGlyph(gid, nullSink{})
	}
	data, ok := otf.GlyphData(gid)
	if !ok || data.Size() == 0 {
		return Rect{}, false
	}
	var bb bbox
	builder := newOutlineBuilder(Identity(), &bb, nullSink{})
	if _, ok := otf.outlineImpl(binarySegm(data.Bytes()), 0, &builder); !ok {
		return Rect{}, false
	}
	return bb.toRect()
}

// outlineImpl decodes one glyph header and dispatches to the simple or
// composite path. The returned box is the one stored in the header.
func (otf *Font) outlineImpl(data binarySegm, depth int, builder *outlineBuilder) (Rect, bool) {
	if depth >= MaxComponentDepth {
		tracer().Infof("recursion limit exceeded in glyph outline")
		return Rect{}, false
	}
	s := makeStream(data)
	numContours := int(s.i16())
	rect := Rect{
		XMin: s.i16(),
		YMin: s.i16(),
		XMax: s.i16(),
		YMax: s.i16(),
	}
	if !s.ok() {
		return Rect{}, false
	}

	switch {
	case numContours > 0: // simple glyph
		gp, ok := parseSimpleGlyphPoints(s.tail(), numContours)
		if !ok {
			return Rect{}, false
		}
		for {
			pt, ok := gp.next()
			if !ok {
				if gp.pointsLeft != 0 {
					return Rect{}, false // streams ended prematurely
				}
				break
			}
			builder.pushPoint(float64(pt.x), float64(pt.y), pt.onCurve, pt.endPoint)
		}
	case numContours < 0: // composite glyph
		iter := newComponentIter(s.tail())
		for {
			comp, ok := iter.next()
			if !ok {
				break
			}
			if !comp.flags.argsAreXYValues() {
				tracer().Infof("composite component with point-index anchors skipped")
				continue
			}
			childData, ok := otf.GlyphData(comp.glyphID)
			if !ok || childData.Size() == 0 {
				continue
			}
			combined := Combine(builder.transform, comp.transform)
			// The sink is shared across the whole composite tree so all
			// commands land in one stream.
			child := newOutlineBuilder(combined, builder.bbox, builder.sink)
			if _, ok := otf.outlineImpl(binarySegm(childData.Bytes()), depth+1, &child); !ok {
				return Rect{}, false
			}
		}
	default: // an empty glyph
		return Rect{}, false
	}
	return rect, true
}

// collectGlyphPoints decodes all points of a simple glyph into a slice, for
// the variation engine to displace before command translation.
func collectGlyphPoints(data binarySegm, numContours int) ([]glyphPoint, bool) {
	gp, ok := parseSimpleGlyphPoints(data, numContours)
	if !ok {
		return nil, false
	}
	points := make([]glyphPoint, 0, gp.pointsLeft)
	for {
		pt, ok := gp.next()
		if !ok {
			if gp.pointsLeft != 0 {
				return nil, false
			}
			break
		}
		points = append(points, pt)
	}
	return points, true
}
