/*
Package ot provides a zero-allocation, read-only view onto OpenType and
TrueType fonts.

Clients hand over an immutable byte buffer — a complete font file, or one
entry of a font collection — and receive a Font handle which answers
high-level queries: map code-points to glyph indices, fetch metrics,
trace a glyph's vector outline into a caller-supplied sink, and reshape
metrics and outlines of variable fonts along their design axes. Clients
never touch raw table bytes.

The package is organized in layers, leaves first:

▪︎ a bounds-checked big-endian stream and lazy fixed-stride record views
(no read may ever escape the input buffer),

▪︎ the table directory and typed table handles,

▪︎ the glyph outline engine for table 'glyf' (simple and composite
contour glyphs),

▪︎ the variation engine (tables 'fvar', 'avar', 'HVAR', 'VVAR', 'MVAR'
and 'gvar').

Fonts in the wild are malformed in many uninteresting ways, thus there
is no error taxonomy for queries: every failure — malformed input,
missing optional table, out-of-range index, arithmetic overflow, glyph
without outline, recursion limit — maps to the same "absent" signal at
the query boundary (a zero value plus ok=false, or a nil). Construction
of a Font is the only operation returning errors, and fails only if one
of the mandatory tables ('head', 'hhea', 'maxp') is missing or invalid.
No byte sequence must ever cause a panic; any input that does is
considered a critical bug.

# Status

Glyph outlines are decoded from table 'glyf' only. Fonts carrying CFF or
CFF2 charstrings are parsed and queried for everything but outlines;
their outline tables are accessible as raw tables. Hinting instructions
are skipped, not interpreted.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'otkit.ot'
func tracer() tracing.Trace {
	return tracing.Select("otkit.ot")
}
