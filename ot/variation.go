package ot

import (
	"fmt"
	"math"
)

// Font variations, tables 'fvar' and 'avar'.
//
// A variable font carries a set of design axes. Queries are evaluated at the
// font handle's current position in design space, expressed as one
// normalized coordinate per axis.

// NormalizedCoord is a signed coordinate in the closed range
// [-16384, +16384], representing a fractional position on one variation
// axis. 0 is the axis default, ±16384 are the axis endpoints. All variation
// math consumes this form (it is fixed-point 2.14).
type NormalizedCoord int16

const normalizedCoordMax = 16384

// varCoords is a fixed-capacity vector of normalized axis coordinates.
type varCoords struct {
	n   int
	buf [MaxAxisCount]NormalizedCoord
}

func (vc *varCoords) reset(n int) {
	if n > MaxAxisCount {
		n = MaxAxisCount
	}
	vc.n = n
	for i := range vc.buf {
		vc.buf[i] = 0
	}
}

func (vc *varCoords) slice() []NormalizedCoord {
	return vc.buf[:vc.n]
}

// Coords returns the font's current normalized axis coordinates (after axis
// remapping). The slice aliases handle state and must not be modified.
func (otf *Font) Coords() []NormalizedCoord {
	return otf.coords.slice()
}

// varCoordsInUse is true if any axis is away from its default position.
func (otf *Font) varCoordsInUse() bool {
	for _, c := range otf.coords.slice() {
		if c != 0 {
			return true
		}
	}
	return false
}

// --- fvar ------------------------------------------------------------------

// VariationAxis is one design axis of a variable font.
// Min and max are forced to bracket the default.
type VariationAxis struct {
	Tag     Tag
	Minimum float64
	Default float64
	Maximum float64
	NameID  uint16 // axis name in table 'name'
	Hidden  bool
}

// FvarTable lists the variation axes of a variable font.
type FvarTable struct {
	tableBase
	axes array // axisCount records of axisSize bytes
}

func newFvarTable(tag Tag, b binarySegm, offset, size uint32) *FvarTable {
	t := &FvarTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// From the spec: each variation axis record holds
// axisTag · minValue (Fixed) · defaultValue (Fixed) · maxValue (Fixed) ·
// flags · axisNameID, 20 bytes in total.
const fvarAxisRecordSize = 20

func parseFvar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	version, err := b.u32(0)
	if err != nil || version != 0x00010000 {
		return nil, errFontFormat("fvar version")
	}
	axesOffset, _ := b.u16(4)
	axisCount, err := b.u16(8)
	if err != nil {
		return nil, errFontFormat("fvar header")
	}
	axisSize, _ := b.u16(10)
	if axisSize < fvarAxisRecordSize {
		return nil, errFontFormat("fvar axis record size")
	}
	// “If axisCount is zero, then the font is not functional as a variable
	// font, and must be treated as a non-variable font.”
	if axisCount == 0 {
		ec.addWarning(tag, "fvar with zero axes, font treated as non-variable", offset)
		return nil, errFontFormat("fvar without axes")
	}
	if int(axisCount) > MaxAxisCount {
		ec.addWarning(tag, fmt.Sprintf("axis count %d exceeds supported maximum %d", axisCount, MaxAxisCount), offset)
		return nil, errFontFormat("too many variation axes")
	}
	arraySize, errMul := checkedMulInt(int(axisCount), int(axisSize))
	if errMul != nil {
		return nil, errFontFormat("fvar axis array size")
	}
	axesData, err := b.view(int(axesOffset), arraySize)
	if err != nil {
		return nil, errFontFormat("fvar axis array incomplete")
	}
	t := newFvarTable(tag, b, offset, size)
	t.axes = viewArray(axesData, int(axisSize))
	return t, nil
}

// AxisCount returns the number of variation axes.
func (t *FvarTable) AxisCount() int {
	if t == nil {
		return 0
	}
	return t.axes.Len()
}

// Axis returns axis #i. Out-of-range indices report absent.
func (t *FvarTable) Axis(i int) (VariationAxis, bool) {
	if t == nil || i < 0 || i >= t.axes.Len() {
		return VariationAxis{}, false
	}
	b := binarySegm(t.axes.Get(i).Bytes())
	if len(b) < fvarAxisRecordSize {
		return VariationAxis{}, false
	}
	def := fixedToFloat(b.U32(8))
	axis := VariationAxis{
		Tag:     Tag(b.U32(0)),
		Minimum: min(def, fixedToFloat(b.U32(4))),
		Default: def,
		Maximum: max(def, fixedToFloat(b.U32(12))),
		NameID:  b.U16(18),
		Hidden:  (b.U16(16)>>3)&1 == 1,
	}
	return axis, true
}

// AxisIndex locates an axis by its tag.
func (t *FvarTable) AxisIndex(tag Tag) (int, bool) {
	if t == nil {
		return 0, false
	}
	for i := 0; i < t.axes.Len(); i++ {
		if axis, ok := t.Axis(i); ok && axis.Tag == tag {
			return i, true
		}
	}
	return 0, false
}

// fixedToFloat converts a 16.16 fixed-point value.
func fixedToFloat(n uint32) float64 {
	return float64(int32(n)) / 65536.0
}

// normalizeAxisValue maps a design-space value into the normalized
// [-16384, +16384] range using the axis's (min, default, max). Values
// outside [min, max] saturate.
func normalizeAxisValue(axis VariationAxis, value float64) NormalizedCoord {
	v := value
	if v > axis.Maximum {
		v = axis.Maximum
	} else if v < axis.Minimum {
		v = axis.Minimum
	}
	switch {
	case v < axis.Default:
		if axis.Minimum == axis.Default {
			v = 0
		} else {
			v = -(v - axis.Default) / (axis.Minimum - axis.Default)
		}
	case v > axis.Default:
		if axis.Maximum == axis.Default {
			v = 0
		} else {
			v = (v - axis.Default) / (axis.Maximum - axis.Default)
		}
	default:
		v = 0
	}
	n := math.Round(v * normalizedCoordMax)
	if n > normalizedCoordMax {
		n = normalizedCoordMax
	} else if n < -normalizedCoordMax {
		n = -normalizedCoordMax
	}
	return NormalizedCoord(n)
}

// SetVariation positions the font on one variation axis. The value is given
// in design space (e.g. 400 for a 'wght' axis default); it is normalized
// using the axis's (min, default, max) and stored into the handle's
// coordinate vector, after which the axis remapping of table 'avar' is
// applied. Values outside [min, max] saturate.
//
// An unknown axis tag reports absent and leaves the coordinate state
// unchanged. Repeating a call with identical arguments is idempotent.
//
// SetVariation is the only mutating operation of a Font and requires
// exclusive access; all other queries may run concurrently.
func (otf *Font) SetVariation(axisTag Tag, value float64) bool {
	if otf.Fvar == nil {
		tracer().Infof("font is not variable, cannot set axis (%s)", axisTag)
		return false
	}
	inx, ok := otf.Fvar.AxisIndex(axisTag)
	if !ok {
		tracer().Infof("font has no variation axis (%s)", axisTag)
		return false
	}
	axis, _ := otf.Fvar.Axis(inx)
	if inx >= otf.userCoords.n {
		return false
	}
	otf.userCoords.buf[inx] = normalizeAxisValue(axis, value)
	// Remapping works on a copy of the pre-avar coordinates each time, so
	// repeated calls never remap a coordinate twice.
	copy(otf.coords.buf[:], otf.userCoords.buf[:])
	otf.coords.n = otf.userCoords.n
	if otf.Avar != nil {
		otf.Avar.remap(otf.coords.slice())
	}
	return true
}

// --- avar ------------------------------------------------------------------

// AvarTable stores, per axis, a piecewise-linear segment map from input
// normalized coordinate to output normalized coordinate. Records are
// (from, to) pairs in coordinate units, sorted by from.
type AvarTable struct {
	tableBase
	axisCount int
	segments  []array // one map per axis; records are (from, to) pairs
}

func newAvarTable(tag Tag, b binarySegm, offset, size uint32) *AvarTable {
	t := &AvarTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

func parseAvar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	version, err := b.u32(0)
	if err != nil || version != 0x00010000 {
		return nil, errFontFormat("avar version")
	}
	axisCount, err := b.u16(6)
	if err != nil {
		return nil, errFontFormat("avar header")
	}
	t := newAvarTable(tag, b, offset, size)
	t.axisCount = int(axisCount)
	t.segments = make([]array, 0, axisCount)
	s := makeStream(b)
	s.skip(8)
	for i := 0; i < int(axisCount); i++ {
		positionMapCount := s.u16()
		pairs := s.readArray(int(positionMapCount), 4)
		if !s.ok() {
			return nil, errFontFormat("avar segment maps incomplete")
		}
		t.segments = append(t.segments, pairs)
	}
	return t, nil
}

// remap applies the per-axis segment maps to a coordinate vector in place.
func (t *AvarTable) remap(coords []NormalizedCoord) {
	if t == nil {
		return
	}
	for i := range coords {
		if i >= len(t.segments) {
			return
		}
		coords[i] = mapAxisValue(t.segments[i], coords[i])
	}
}

// mapAxisValue remaps one value through one axis segment map. Outside the
// first/last anchor the map degrades to a constant offset; between anchors
// the value is interpolated linearly with a denom/2 rounding bias.
func mapAxisValue(segmap array, value NormalizedCoord) NormalizedCoord {
	if segmap.Len() == 0 {
		return value
	}
	v := int32(value)
	fromAt := func(i int) int32 { return int32(int16(segmap.Get(i).U16(0))) }
	toAt := func(i int) int32 { return int32(int16(segmap.Get(i).U16(2))) }

	if segmap.Len() == 1 {
		return clampCoord(v - fromAt(0) + toAt(0))
	}
	if v <= fromAt(0) {
		return clampCoord(v - fromAt(0) + toAt(0))
	}
	last := segmap.Len() - 1
	if v >= fromAt(last) {
		return clampCoord(v - fromAt(last) + toAt(last))
	}
	// Locate the bracketing pair.
	i := 1
	for i < segmap.Len() && v > fromAt(i) {
		i++
	}
	if v == fromAt(i) {
		return clampCoord(toAt(i))
	}
	prevFrom, prevTo := fromAt(i-1), toAt(i-1)
	nextFrom, nextTo := fromAt(i), toAt(i)
	denom := nextFrom - prevFrom
	if denom == 0 {
		return clampCoord(prevTo)
	}
	out := prevTo + ((nextTo-prevTo)*(v-prevFrom)+denom/2)/denom
	return clampCoord(out)
}

func clampCoord(v int32) NormalizedCoord {
	if v > normalizedCoordMax {
		return normalizedCoordMax
	}
	if v < -normalizedCoordMax {
		return -normalizedCoordMax
	}
	return NormalizedCoord(v)
}
