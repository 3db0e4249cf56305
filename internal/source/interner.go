package source

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Interner deduplicates identifier spellings. Identifiers are NFC-normalized
// on the way in, so two visually identical spellings always intern to the
// same ID regardless of how the source file encoded them.
type Interner struct {
	byID  []string            // byID[0] = "" for NoStringID
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Intern inserts a string and returns its ID. Existing strings return their
// existing ID.
func (i *Interner) Intern(s string) StringID {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	if id, ok := i.index[s]; ok {
		return id
	}

	// Own copy, so the interner never aliases a caller's buffer.
	cpy := string([]byte(s))
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// LookupID returns the ID of an already-interned spelling without
// inserting it. A published table can be queried concurrently through this
// path; a miss means the spelling was never declared.
func (i *Interner) LookupID(s string) (StringID, bool) {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	id, ok := i.index[s]
	return id, ok
}

// Lookup returns the string for an ID, and false when the ID is unknown.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup returns the string for an ID and panics when the ID is unknown.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

func (i *Interner) Has(id StringID) bool {
	return id != NoStringID && int(id) < len(i.byID)
}

// Len counts interned strings, including the NoStringID slot.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of all interned strings.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
