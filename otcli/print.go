package main

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/npillmayer/otkit/ot"
	"github.com/npillmayer/otkit/otquery"
	"github.com/pterm/pterm"
)

func infoOp(intp *Intp, args []string) (error, bool) {
	family, subfamily := "", ""
	if f, s := fontNames(intp.font); f != "" {
		family, subfamily = f, s
	}
	metrics := otquery.FontMetrics(intp.font)
	data := [][]string{
		{"Property", "Value"},
		{"Family", family},
		{"Subfamily", subfamily},
		{"Type", otquery.FontType(intp.font)},
		{"Glyphs", fmt.Sprintf("%d", intp.font.NumGlyphs())},
		{"Units/em", fmt.Sprintf("%d", metrics.UnitsPerEm)},
		{"Ascent", fmt.Sprintf("%d", metrics.Ascent)},
		{"Descent", fmt.Sprintf("%d", metrics.Descent)},
		{"Line gap", fmt.Sprintf("%d", metrics.LineGap)},
		{"Variable", fmt.Sprintf("%v", intp.font.IsVariable())},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func fontNames(otf *ot.Font) (family, subfamily string) {
	family = otquery.FontName(otf, 1)    // sfnt.NameIDFamily
	subfamily = otquery.FontName(otf, 2) // sfnt.NameIDSubfamily
	return
}

func tablesOp(intp *Intp, args []string) (error, bool) {
	data := [][]string{
		{"Tag", "Offset", "Size"},
	}
	for _, tag := range intp.font.TableTags() {
		table := intp.font.Table(tag)
		offset, size := table.Extent()
		data = append(data, []string{
			tag.String(),
			fmt.Sprintf("%d", offset),
			fmt.Sprintf("%d", size),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func axesOp(intp *Intp, args []string) (error, bool) {
	axes := otquery.VariationAxes(intp.font)
	if len(axes) == 0 {
		pterm.Info.Println("font has no variation axes")
		return nil, false
	}
	data := [][]string{
		{"Tag", "Min", "Default", "Max", "Hidden", "Coord"},
	}
	coords := intp.font.Coords()
	for i, axis := range axes {
		coord := ""
		if i < len(coords) {
			coord = fmt.Sprintf("%d", coords[i])
		}
		data = append(data, []string{
			axis.Tag.String(),
			fmt.Sprintf("%g", axis.Minimum),
			fmt.Sprintf("%g", axis.Default),
			fmt.Sprintf("%g", axis.Maximum),
			fmt.Sprintf("%v", axis.Hidden),
			coord,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func setvarOp(intp *Intp, args []string) (error, bool) {
	if len(args) < 2 {
		return fmt.Errorf("usage: setvar <axis-tag> <value>"), false
	}
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("not an axis value: %q", args[1]), false
	}
	if !otquery.SetVariation(intp.font, ot.T(args[0]), value) {
		return fmt.Errorf("cannot set axis (%s)", args[0]), false
	}
	pterm.Printf("coords: %v\n", intp.font.Coords())
	return nil, false
}

func glyphOp(intp *Intp, args []string) (error, bool) {
	if len(args) < 1 {
		return fmt.Errorf("usage: glyph <character>"), false
	}
	r, _ := utf8.DecodeRuneInString(args[0])
	gid := otquery.GlyphIndex(intp.font, r)
	pterm.Printf("glyph index of %q is %d\n", r, gid)
	return nil, false
}

func metricsOp(intp *Intp, args []string) (error, bool) {
	gid, err := argAsGlyph(intp, args, 0)
	if err != nil {
		return err, false
	}
	m := otquery.GlyphMetrics(intp.font, gid)
	data := [][]string{
		{"Metric", "Value"},
		{"Advance", fmt.Sprintf("%d", m.Advance)},
		{"LSB", fmt.Sprintf("%d", m.LSB)},
		{"RSB", fmt.Sprintf("%d", m.RSB)},
		{"BBox", fmt.Sprintf("(%d,%d)-(%d,%d)", m.BBox.MinX, m.BBox.MinY, m.BBox.MaxX, m.BBox.MaxY)},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// svgSink prints outline commands as SVG path fragments, one per line.
type svgSink struct {
	count int
}

func (s *svgSink) MoveTo(x, y float64) {
	pterm.Printf("M %g %g\n", x, y)
	s.count++
}

func (s *svgSink) LineTo(x, y float64) {
	pterm.Printf("L %g %g\n", x, y)
	s.count++
}

func (s *svgSink) QuadTo(cx, cy, x, y float64) {
	pterm.Printf("Q %g %g %g %g\n", cx, cy, x, y)
	s.count++
}

func (s *svgSink) CurveTo(cx1, cy1, cx2, cy2, x, y float64) {
	pterm.Printf("C %g %g %g %g %g %g\n", cx1, cy1, cx2, cy2, x, y)
	s.count++
}

func (s *svgSink) ClosePath() {
	pterm.Println("Z")
	s.count++
}

func outlineOp(intp *Intp, args []string) (error, bool) {
	gid, err := argAsGlyph(intp, args, 0)
	if err != nil {
		return err, false
	}
	sink := &svgSink{}
	box, ok := otquery.Outline(intp.font, gid, sink)
	if !ok {
		return fmt.Errorf("glyph %d has no outline", gid), false
	}
	pterm.Printf("%d commands, bbox (%d,%d)-(%d,%d)\n", sink.count,
		box.XMin, box.YMin, box.XMax, box.YMax)
	return nil, false
}

func kernOp(intp *Intp, args []string) (error, bool) {
	left, err := argAsGlyph(intp, args, 0)
	if err != nil {
		return err, false
	}
	right, err := argAsGlyph(intp, args, 1)
	if err != nil {
		return err, false
	}
	if kern, ok := otquery.Kerning(intp.font, left, right); ok {
		pterm.Printf("kerning (%d, %d) = %d\n", left, right, kern)
	} else {
		pterm.Printf("no kerning for pair (%d, %d)\n", left, right)
	}
	return nil, false
}

func scriptsOp(intp *Intp, args []string) (error, bool) {
	printLayoutTags(intp.font.Layout.GSub, intp.font.Layout.GPos, "script")
	return nil, false
}

func featuresOp(intp *Intp, args []string) (error, bool) {
	printLayoutTags(intp.font.Layout.GSub, intp.font.Layout.GPos, "feature")
	return nil, false
}

func printLayoutTags(gsub, gpos *ot.LayoutTable, kind string) {
	tags := func(t *ot.LayoutTable) []ot.Tag {
		if kind == "script" {
			return t.ScriptTags()
		}
		return t.FeatureTags()
	}
	if gsub != nil {
		pterm.Printf("GSUB %ss: %v (%d lookups)\n", kind, tags(gsub), gsub.LookupCount())
	} else {
		pterm.Printf("font has no GSUB table\n")
	}
	if gpos != nil {
		pterm.Printf("GPOS %ss: %v (%d lookups)\n", kind, tags(gpos), gpos.LookupCount())
	} else {
		pterm.Printf("font has no GPOS table\n")
	}
}
