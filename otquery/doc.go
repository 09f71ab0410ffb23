/*
Package otquery provides a high-level query facade over decoded OpenType
fonts.

Queries are zero-cost views over the parsed bytes of an ot.Font: glyph
look-up, metrics (with variation deltas on variable fonts), vector outlines
and name-table access. No query ever fails with an error; missing or
malformed information reports as absent (zero values plus ok=false).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'otkit.query'
func tracer() tracing.Trace {
	return tracing.Select("otkit.query")
}

func u16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}
