package source

import (
	"path/filepath"
	"slices"
)

// normalizeCRLF replaces every \r\n with \n, leaving lone \r untouched.
// The second return value reports whether any replacement happened.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

// buildLineIndex records the byte offset of every \n in content.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, 64)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) //nolint:gosec // file size capped by uint32 offsets
		}
	}
	return out
}

// toLineCol converts a byte offset into a 1-based line/column pair using the
// precomputed newline index. The column is a byte column; renderers that need
// display columns widen it themselves.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// Binary search for the number of newlines strictly before off.
	lo, hi := 0, len(lineIdx)
	for lo < hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	newlines := lo

	var startOff uint32
	if newlines > 0 {
		startOff = lineIdx[newlines-1] + 1
	}

	return LineCol{Line: uint32(newlines) + 1, Col: off - startOff + 1} //nolint:gosec // line count bounded by offsets
}

func normalizePath(p string) string {
	// One canonical spelling for cross-platform diffs.
	return filepath.ToSlash(filepath.Clean(p))
}
