package source

import "testing"

func TestSpanEmptyAndLen(t *testing.T) {
	s := Span{File: 0, Start: 5, End: 5}
	if !s.Empty() {
		t.Error("Expected zero-width span to be empty")
	}
	if s.Len() != 0 {
		t.Errorf("Expected length 0, got %d", s.Len())
	}

	s = Span{File: 0, Start: 3, End: 10}
	if s.Empty() {
		t.Error("Expected non-empty span")
	}
	if s.Len() != 7 {
		t.Errorf("Expected length 7, got %d", s.Len())
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}

	c := a.Cover(b)
	if c.Start != 5 || c.End != 20 {
		t.Errorf("Expected covered span 5-20, got %d-%d", c.Start, c.End)
	}

	// Spans from different files are left as is.
	other := Span{File: 2, Start: 0, End: 100}
	c = a.Cover(other)
	if c != a {
		t.Errorf("Expected cross-file cover to return the receiver, got %v", c)
	}
}

func TestSpanBefore(t *testing.T) {
	a := Span{File: 1, Start: 0, End: 5}
	b := Span{File: 1, Start: 5, End: 10}
	if !a.Before(b) {
		t.Error("Expected a to come before b")
	}
	if b.Before(a) {
		t.Error("Expected b not to come before a")
	}
}
