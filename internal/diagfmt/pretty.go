package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"goat/internal/diag"
	"goat/internal/source"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	codeColor  = color.New(color.FgCyan)
	noteColor  = color.New(color.FgYellow)
	caretColor = color.New(color.FgGreen, color.Bold)
)

// Pretty renders diagnostics in a human-readable form. It walks bag.Items()
// in order, so the caller sorts first. Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <ID> [<kind>]: <message>
//	    <source line>
//	    ^~~~~
//	  note: <path>:<line>:<col>: <note message>
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts)
	}
	if n := bag.Len(); n > 0 {
		fmt.Fprintf(w, "%d diagnostic(s)\n", n)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := d.Severity.String()
	id := d.Code.ID()
	kind := d.Code.String()
	if opts.Color {
		sev = errorColor.Sprint(sev)
		id = codeColor.Sprint(id)
	}
	fmt.Fprintf(w, "%s: %s %s [%s]: %s\n", locString(d.Primary, fs, opts.PathMode), sev, id, kind, d.Message)

	if opts.ShowPreview {
		writePreview(w, d.Primary, fs, opts.Color)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			label := "note"
			if opts.Color {
				label = noteColor.Sprint(label)
			}
			fmt.Fprintf(w, "  %s: %s: %s\n", label, locString(n.Span, fs, opts.PathMode), n.Msg)
			if opts.ShowPreview {
				writePreview(w, n.Span, fs, opts.Color)
			}
		}
	}
}

func locString(span source.Span, fs *source.FileSet, mode PathMode) string {
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, fs, mode), start.Line, start.Col)
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}

// writePreview prints the first source line the span covers with a caret
// run underneath. Tabs and wide runes keep the caret aligned by measuring
// display width, not byte count.
func writePreview(w io.Writer, span source.Span, fs *source.FileSet, colored bool) {
	f := fs.Get(span.File)
	if f == nil || len(f.Content) == 0 || span.Empty() {
		return
	}
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "    %s\n", line)

	runs := []rune(line)
	startCol := int(start.Col) - 1
	endCol := len(runs)
	if end.Line == start.Line {
		endCol = int(end.Col) - 1
	}
	startCol = clamp(startCol, 0, len(runs))
	endCol = clamp(endCol, startCol, len(runs))

	pad := displayWidth(runs[:startCol])
	width := displayWidth(runs[startCol:endCol])
	if width < 1 {
		width = 1
	}
	caret := "^" + strings.Repeat("~", width-1)
	if colored {
		caret = caretColor.Sprint(caret)
	}
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", pad), caret)
}

func displayWidth(runs []rune) int {
	width := 0
	for _, r := range runs {
		if r == '\t' {
			width += 4
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
