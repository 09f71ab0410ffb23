package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/otkit"
	"github.com/npillmayer/otkit/ot"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'otkit.cli'
func tracer() tracing.Trace {
	return tracing.Select("otkit.cli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":  "go",
		"trace.otkit.cli":  "Info",
		"trace.otkit.ot":   "Error",
		"trace.otkit.font": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load")
	fontindex := flag.Uint("index", 0, "Font index within a collection file")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the otkit font inspector")
	//
	// set up REPL
	repl, err := readline.New("otkit > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	if err := intp.loadFont(*fontname, uint32(*fontindex)); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D")
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font *ot.Font
	repl *readline.Instance
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		err, quit := intp.execute(strings.Fields(line))
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

var commandFn = map[string]func(*Intp, []string) (error, bool){
	"quit":     quitOp,
	"help":     helpOp,
	"info":     infoOp,
	"tables":   tablesOp,
	"axes":     axesOp,
	"setvar":   setvarOp,
	"glyph":    glyphOp,
	"metrics":  metricsOp,
	"outline":  outlineOp,
	"kern":     kernOp,
	"scripts":  scriptsOp,
	"features": featuresOp,
}

func (intp *Intp) execute(words []string) (err error, stop bool) {
	tracer().Debugf("cmd = %v", words)
	f, ok := commandFn[strings.ToLower(words[0])]
	if !ok {
		help("")
		return nil, false
	}
	return f(intp, words[1:])
}

func quitOp(intp *Intp, args []string) (error, bool) {
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string, index uint32) (err error) {
	if fontname == "" {
		return fmt.Errorf("no font given; use -font <path>")
	}
	binary, err := os.ReadFile(fontname)
	if err != nil {
		return err
	}
	if n, isCollection := otkit.FontsInCollection(binary); isCollection {
		pterm.Printf("font collection with %d fonts, using index %d\n", n, index)
	}
	intp.font, err = otkit.FromCollection(binary, index)
	if err != nil {
		return err
	}
	pterm.Printf("font tables: %v\n", intp.font.TableTags())
	return nil
}

// ----------------------------------------------------------------------

func argAsGlyph(intp *Intp, args []string, inx int) (ot.GlyphIndex, error) {
	if len(args) <= inx {
		return 0, fmt.Errorf("glyph id argument missing")
	}
	n, err := strconv.ParseUint(args[inx], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("not a glyph id: %q", args[inx])
	}
	if int(n) >= intp.font.NumGlyphs() {
		return 0, fmt.Errorf("glyph id %d out of range (font has %d glyphs)", n, intp.font.NumGlyphs())
	}
	return ot.GlyphIndex(n), nil
}
