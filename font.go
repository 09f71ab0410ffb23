/*
Package otkit is for reading scalable fonts of the OpenType/TrueType family.

There is a certain confusion with the nomenclature of typesetting. We will
stick to the following definitions:

▪︎ A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

▪︎ A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

Package otkit exposes scalable fonts through read-only handles: clients
query glyph indices, metrics and vector outlines, but never manipulate the
font. For variable fonts the handle may be positioned in design space before
querying. The heavy lifting is done by sub-package `ot`; package otkit wires
it up with font loading and a few convenience calls.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otkit

import (
	"github.com/npillmayer/otkit/internal/fontload"
	"github.com/npillmayer/otkit/ot"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'otkit.font'
func tracer() tracing.Trace {
	return tracing.Select("otkit.font")
}

// FromBinary parses raw OpenType bytes and returns a decoded font handle.
//
// The input is expected to contain a complete single-font SFNT stream. It
// must not change after parsing for the handle to remain usable.
func FromBinary(data []byte) (*ot.Font, error) {
	return ot.Parse(data)
}

// FromCollection parses one font of a font collection ('ttcf'). For
// single-font buffers, index must be 0.
func FromCollection(data []byte, index uint32) (*ot.Font, error) {
	return ot.ParseCollectionEntry(data, index)
}

// FontsInCollection returns the number of fonts stored in a font collection.
// Any other input reports absent.
func FontsInCollection(data []byte) (uint32, bool) {
	return ot.FontsInCollection(data)
}

// LoadFont loads a font file and parses it. Only single-font files are
// accepted: the reference SFNT parse in package fontload reports an error
// for collection files (*.ttc).
func LoadFont(fontfile string) (*ot.Font, error) {
	sf, err := fontload.LoadOpenTypeFont(fontfile)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("loaded font %s (%d bytes)", sf.Fontname, len(sf.Binary))
	return ot.Parse(sf.Binary)
}
