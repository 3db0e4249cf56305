package diag

import (
	"fmt"
	"sort"
)

// Bag accumulates diagnostics from one producer. Producers fill private bags
// and the driver merges them, so ordering never depends on which worker
// finished first.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag holding at most max diagnostics.
func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   max,
	}
}

// Add appends a diagnostic, honoring the limit. Returns false when the bag is
// full and the diagnostic was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// HasErrors reports whether any diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the diagnostics; callers must not modify
// the returned slice.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends every diagnostic from other, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, start, end, severity (desc), code (asc).
// Stable and deterministic, independent of producer scheduling.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup removes duplicates by (code, primary span).
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	out := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s", d.Code.String(), d.Primary.String())
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	b.items = out
}
