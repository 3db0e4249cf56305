// Package diagfmt renders aggregated diagnostics for humans and tools.
package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color       bool
	PathMode    PathMode
	ShowNotes   bool
	ShowPreview bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // add line/col to locations
	PathMode         PathMode
	Max              int // output truncation; the bag stays intact
	IncludeNotes     bool
}
