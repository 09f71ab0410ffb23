package fontload

import (
	"os"

	"golang.org/x/image/font/sfnt"
)

// ScalableFont is a loaded scalable font with original bytes and a reference
// SFNT view. The SFNT view is produced by the Go core team's sfnt package
// and serves as a cross-check and as a source for name-table look-ups during
// loading; all structural queries go through package ot instead.
type ScalableFont struct {
	Fontname string
	Binary   []byte
	SFNT     *sfnt.Font
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	return ParseOpenTypeFont(bytez)
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull)
	if err != nil {
		f.Fontname = ""
	}
	return f, nil
}
