package ot

import (
	"errors"
)

// Reading bytes from a font's binary representation.
//
// The entire SFNT format is big-endian; on little-endian hosts this is pure
// byte shuffling, not decoding. All of it is centralized here.

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

func i16(b []byte) int16 {
	return int16(u16(b))
}

// --- Locations, i.e. byte segments/slices ----------------------------------

// NavLocation is a position at a byte within a font's binary data.
// It represents the start of a segment/slice of binary data. It is the
// client's responsibility to interpret the structure and impose it onto the
// NavLocation's bytes.
//
// If an error occured somewhere along a chain of navigation calls, the finally
// resulting NavLocation may be of size 0.
type NavLocation interface {
	Size() int                  // size in bytes
	Bytes() []byte              // return as a byte slice
	Slice(int, int) NavLocation // return a sub-segment of this location
	U16(int) uint16             // convenience access to 16 bit data at byte index
	U32(int) uint32             // convenience access to 32 bit data at byte index
}

// binarySegm is a segment of byte data. It implements the NavLocation
// interface. We use it throughout this module to navigate the font's binary
// data.
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

func (b binarySegm) Bytes() []byte {
	return b
}

// return a sub-segment of this location
func (b binarySegm) Slice(from, to int) NavLocation {
	if from < 0 {
		from = 0
	}
	if to > len(b) {
		to = len(b)
	}
	if from > to {
		return binarySegm{}
	}
	return b[from:to]
}

func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) || offset+n < 0 {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// i16 returns the int16 in b at the relative offset i.
func (b binarySegm) i16(i int) (int16, error) {
	n, err := b.u16(i)
	return int16(n), err
}

// --- Stream cursor ----------------------------------------------------------

// stream is a cursor over a byte segment. Every read advances the cursor.
// Reads past the end of the segment set a sticky error flag and return zero
// values; callers check ok() once after a batch of reads. A stream never
// reads bytes outside the segment it was created on.
type stream struct {
	b   binarySegm
	pos int
	bad bool
}

func makeStream(b binarySegm) stream {
	return stream{b: b}
}

func (s *stream) ok() bool {
	return !s.bad
}

func (s *stream) atEnd() bool {
	return s.pos >= len(s.b)
}

func (s *stream) offset() int {
	return s.pos
}

func (s *stream) skip(n int) {
	if n < 0 || s.pos+n < 0 {
		s.bad = true
		return
	}
	s.pos += n
}

func (s *stream) u8() uint8 {
	if s.bad || s.pos+1 > len(s.b) {
		s.bad = true
		return 0
	}
	n := s.b[s.pos]
	s.pos++
	return n
}

func (s *stream) i8() int8 {
	return int8(s.u8())
}

func (s *stream) u16() uint16 {
	if s.bad || s.pos+2 > len(s.b) {
		s.bad = true
		return 0
	}
	n := u16(s.b[s.pos:])
	s.pos += 2
	return n
}

func (s *stream) i16() int16 {
	return int16(s.u16())
}

func (s *stream) u32() uint32 {
	if s.bad || s.pos+4 > len(s.b) {
		s.bad = true
		return 0
	}
	n := u32(s.b[s.pos:])
	s.pos += 4
	return n
}

// f2dot14 reads a signed fixed-point 2.14 number as a float.
func (s *stream) f2dot14() float64 {
	return float64(s.i16()) / 16384.0
}

// bytes returns the next n bytes without copying and advances the cursor.
func (s *stream) bytes(n int) binarySegm {
	if s.bad || n < 0 || s.pos+n > len(s.b) || s.pos+n < 0 {
		s.bad = true
		return binarySegm{}
	}
	b := s.b[s.pos : s.pos+n]
	s.pos += n
	return b
}

// tail returns the not yet consumed rest of the stream's segment.
func (s *stream) tail() binarySegm {
	if s.bad || s.pos > len(s.b) {
		return binarySegm{}
	}
	return s.b[s.pos:]
}

// readArray reads an array of n records of recordSize bytes each, without
// copying.
func (s *stream) readArray(n, recordSize int) array {
	size, err := checkedMulInt(n, recordSize)
	if err != nil {
		s.bad = true
		return array{}
	}
	b := s.bytes(size)
	if s.bad {
		return array{}
	}
	return array{recordSize: recordSize, length: n, loc: b}
}

// --- Link ------------------------------------------------------------------

// NavLink is a type to represent the transfer between one structure element
// and another. Clients use it to arrive at the binary segment of the
// destination (call Jump). An offset of 0 is interpreted as a NULL link.
type NavLink interface {
	Base() NavLocation // source location
	Jump() NavLocation // destination location
	IsNull() bool      // is this a valid link?
	Name() string      // OpenType structure name of destination
}

// parseLink16 parses a uint16 value at b+offset, interpreted as a navigation
// link relative to base.
func parseLink16(b binarySegm, offset int, base binarySegm, target string) (NavLink, error) {
	if len(b) < offset+2 {
		return link16{}, errBufferBounds
	}
	n, _ := b.u16(offset)
	// Offset 0 is a valid NULL pointer
	if n > 0 && int(n) > len(base) {
		return link16{}, errBufferBounds
	}
	return link16{
		target: target,
		base:   base,
		offset: n,
	}, nil
}

func makeLink16(offset uint16, base binarySegm, target string) NavLink {
	return link16{
		target: target,
		base:   base,
		offset: offset,
	}
}

type link16 struct {
	err    error
	target string
	base   binarySegm
	offset uint16
}

func (l16 link16) IsNull() bool {
	if l16.err != nil {
		return true
	}
	return len(l16.base) == 0 || l16.offset == 0
}

func (l16 link16) Name() string {
	return l16.target
}

func (l16 link16) Base() NavLocation {
	return l16.base
}

func (l16 link16) Jump() NavLocation {
	if l16.err != nil {
		return binarySegm{}
	}
	if int(l16.offset) > len(l16.base) {
		tracer().Debugf("offset16 location of %s out of table bounds", l16.target)
		return binarySegm{}
	}
	return l16.base[l16.offset:]
}

func parseLink32(b binarySegm, offset int, base binarySegm, target string) (NavLink, error) {
	if len(b) < offset+4 {
		return link32{}, errBufferBounds
	}
	n, _ := b.u32(offset)
	if n > 0 && int64(n) > int64(len(base)) {
		return link32{}, errBufferBounds
	}
	return link32{
		target: target,
		base:   base,
		offset: n,
	}, nil
}

type link32 struct {
	err    error
	target string
	base   binarySegm
	offset uint32
}

func (l32 link32) IsNull() bool {
	if l32.err != nil {
		return true
	}
	return len(l32.base) == 0 || l32.offset == 0
}

func (l32 link32) Name() string {
	return l32.target
}

func (l32 link32) Base() NavLocation {
	return l32.base
}

func (l32 link32) Jump() NavLocation {
	if l32.err != nil {
		return binarySegm{}
	}
	if int64(l32.offset) > int64(len(l32.base)) {
		tracer().Debugf("offset32 location of %s out of table bounds", l32.target)
		return binarySegm{}
	}
	return l32.base[l32.offset:]
}

// --- Arrays ----------------------------------------------------------------

// array is a lazy view onto a linear sequence of equal-sized records. Records
// are materialized on access; the view itself never copies bytes.
type array struct {
	name       string
	recordSize int
	length     int
	loc        binarySegm
}

// viewArray interprets a byte segment as an array of records of a given size.
func viewArray(b binarySegm, recordSize int) array {
	if recordSize <= 0 {
		return array{}
	}
	n := b.Size() / recordSize
	return array{
		recordSize: recordSize,
		length:     n,
		loc:        b,
	}
}

// parseArray16 reads a uint16 count at b+offset, followed by that many
// records of recordSize bytes.
func parseArray16(b binarySegm, offset, recordSize int, name string) (array, error) {
	if len(b) < offset+2 {
		return array{name: name}, errBufferBounds
	}
	n, err := b.u16(offset)
	if err != nil {
		return array{}, err
	}
	requiredSize := offset + 2 + int(n)*recordSize
	if requiredSize > len(b) {
		return array{}, errBufferBounds
	}
	return array{
		name:       name,
		recordSize: recordSize,
		length:     int(n),
		loc:        b[offset+2:],
	}, nil
}

// Len returns the number of entries in the array.
func (a array) Len() int {
	return a.length
}

// Get returns record #i as a byte location. Out-of-range indices return an
// empty location.
func (a array) Get(i int) NavLocation {
	if i < 0 || i >= a.length || (i+1)*a.recordSize > len(a.loc) {
		return binarySegm{}
	}
	b, _ := a.loc.view(i*a.recordSize, a.recordSize)
	return b
}

// U16 returns record #i, interpreted as a uint16.
func (a array) U16(i int) uint16 {
	return a.Get(i).U16(0)
}

// I16 returns record #i, interpreted as an int16.
func (a array) I16(i int) int16 {
	return int16(a.Get(i).U16(0))
}

// U32 returns record #i, interpreted as a uint32.
func (a array) U32(i int) uint32 {
	return a.Get(i).U32(0)
}

// --- Tag record map --------------------------------------------------------

// tagRecordMap16 is a type for sub-tables which map from a 4-byte tag to a
// target location, as used by the script- and feature-lists of the layout
// tables. Record entries are a tag plus a 16-bit offset.
type tagRecordMap16 struct {
	name    string
	target  string
	base    binarySegm
	records array
}

func parseTagRecordMap16(b binarySegm, offset int, base binarySegm, name, target string) tagRecordMap16 {
	if len(b) < offset+2 {
		tracer().Debugf("buffer too small for tag record map %s", name)
		return tagRecordMap16{}
	}
	const recordSize = 6 // Tag = 4 bytes + offset-value = 2 bytes
	records, err := parseArray16(b, offset, recordSize, name)
	if err != nil {
		tracer().Debugf("tag record map %s: %v", name, err)
		return tagRecordMap16{}
	}
	return tagRecordMap16{
		name:    name,
		target:  target,
		base:    base,
		records: records,
	}
}

// LookupTag returns the link associated with a given tag.
func (m tagRecordMap16) LookupTag(tag Tag) NavLink {
	if len(m.base) == 0 {
		return link16{}
	}
	for i := 0; i < m.records.length; i++ {
		b := m.records.Get(i)
		if b.Size() < 6 {
			return link16{}
		}
		if rtag := MakeTag(b.Bytes()[:4]); tag == rtag {
			link, err := parseLink16(b.Bytes(), 4, m.base, m.target)
			if err != nil {
				return link16{}
			}
			return link
		}
	}
	return link16{}
}

// Tags returns all the tags which the map uses as keys.
func (m tagRecordMap16) Tags() []Tag {
	tags := make([]Tag, 0, m.records.length)
	for i := 0; i < m.records.length; i++ {
		b := m.records.Get(i)
		if b.Size() < 4 {
			break
		}
		tags = append(tags, MakeTag(b.Bytes()[:4]))
	}
	return tags
}

func (m tagRecordMap16) Name() string {
	return m.name
}

func (m tagRecordMap16) Len() int {
	return m.records.length
}
