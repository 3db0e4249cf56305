package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside a single file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover extends s to include other. Spans from different files are left as is.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Before reports whether s starts strictly before other in diagnostic order:
// file first, then start offset, then end offset.
func (s Span) Before(other Span) bool {
	if s.File != other.File {
		return s.File < other.File
	}
	if s.Start != other.Start {
		return s.Start < other.Start
	}
	return s.End < other.End
}
