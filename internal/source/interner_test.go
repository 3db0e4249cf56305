package source

import "testing"

func TestInternerDeduplicates(t *testing.T) {
	in := NewInterner()

	a := in.Intern("status")
	b := in.Intern("status")
	if a != b {
		t.Errorf("Expected the same ID for the same string, got %d and %d", a, b)
	}
	if a == NoStringID {
		t.Error("Expected a valid ID for an interned string")
	}

	c := in.Intern("level")
	if c == a {
		t.Error("Expected distinct IDs for distinct strings")
	}
}

func TestInternerLookup(t *testing.T) {
	in := NewInterner()
	id := in.Intern("append")

	s, ok := in.Lookup(id)
	if !ok || s != "append" {
		t.Errorf("Expected Lookup to return 'append', got %q (ok=%v)", s, ok)
	}

	if _, ok := in.Lookup(NoStringID); ok {
		t.Error("Expected Lookup of NoStringID to fail")
	}
	if in.Has(NoStringID) {
		t.Error("Expected Has(NoStringID) to be false")
	}
}

func TestInternerMustLookup(t *testing.T) {
	in := NewInterner()
	id := in.Intern("x")
	if got := in.MustLookup(id); got != "x" {
		t.Errorf("Expected 'x', got %q", got)
	}
}
