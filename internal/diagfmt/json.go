package diagfmt

import (
	"encoding/json"
	"io"

	"goat/internal/diag"
	"goat/internal/source"
)

// LocationJSON is a span rendered for machine consumption.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON is one secondary note.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON is one finding.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Kind     string       `json:"kind"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON report. Success means the
// count is zero.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	f := fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = formatPath(f, fs, opts.PathMode)
	if opts.IncludePositions {
		start, end := fs.Resolve(span)
		loc.StartLine = start.Line
		loc.StartCol = start.Col
		loc.EndLine = end.Line
		loc.EndCol = end.Col
	}
	return loc
}

// ToJSON converts the bag into the output structure without writing it.
func ToJSON(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	for _, d := range bag.Items() {
		if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
			break
		}
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Kind:     d.Code.String(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts),
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{
					Message:  n.Msg,
					Location: makeLocation(n.Span, fs, opts),
				})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = bag.Len()
	return out
}

// JSON writes the bag as an indented JSON report.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToJSON(bag, fs, opts))
}
