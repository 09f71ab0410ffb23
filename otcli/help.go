package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, args []string) (error, bool) {
	topic := ""
	if len(args) > 0 {
		topic = args[0]
	}
	help(topic)
	return nil, false
}

func help(topic string) {
	switch strings.ToLower(topic) {
	case "setvar", "axes", "variation":
		pterm.Info.Println("Variation axes")
		pterm.Println(`
	axes              list the variation axes and the current coordinates
	setvar <tag> <v>  position the font on axis <tag>, e.g.  setvar wght 650

	Axis values are given in design space; values outside [min, max]
	saturate. Non-variable fonts have no axes.
	`)
	case "outline", "glyph", "metrics":
		pterm.Info.Println("Glyph queries")
		pterm.Println(`
	glyph <char>      glyph index for a character, e.g.  glyph A
	metrics <gid>     advance, side bearings and bbox for a glyph id
	outline <gid>     trace a glyph outline as SVG path commands
	kern <gid> <gid>  legacy pair kerning, if table 'kern' is present

	With variation coordinates set (see 'setvar'), metrics and outlines
	reflect the current design-space position.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	info      general font information
	tables    list the font's tables
	axes      list variation axes             (help axes)
	setvar    set a variation axis            (help axes)
	glyph     look up a glyph index           (help glyph)
	metrics   query glyph metrics             (help glyph)
	outline   trace a glyph outline           (help glyph)
	kern      query legacy pair kerning       (help glyph)
	scripts   scripts covered by GSUB/GPOS
	features  features covered by GSUB/GPOS
	quit      leave (also <ctrl>D)
	`)
	}
}
