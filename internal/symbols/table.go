package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"goat/internal/builtins"
	"goat/internal/source"
	"goat/internal/types"
)

// PackageScope is the flat top-level namespace of one package. It holds
// every top-level symbol of the package, including file-private ones; the
// visibility rule decides per reference site what is actually reachable.
type PackageScope struct {
	Name   string
	ByName map[source.StringID][]SymbolID
	Order  []SymbolID // insertion order, deterministic
}

// Table aggregates all symbols of a compilation unit. It is built by the
// collector, published read-only, and only read afterwards.
type Table struct {
	Strings *source.Interner
	Types   *types.Interner

	syms    []Symbol
	pkgs    map[string]*PackageScope
	prelude map[string]bool
}

// NewTable builds an empty table. Nil interners are allocated fresh.
func NewTable(strings *source.Interner, typeInterner *types.Interner) *Table {
	if strings == nil {
		strings = source.NewInterner()
	}
	if typeInterner == nil {
		typeInterner = types.NewInterner()
	}
	prelude := make(map[string]bool)
	for _, m := range builtins.PreludeMembers() {
		prelude[m] = true
	}
	return &Table{
		Strings: strings,
		Types:   typeInterner,
		syms:    make([]Symbol, 0, 64),
		pkgs:    make(map[string]*PackageScope),
		prelude: prelude,
	}
}

// Package returns (and creates if needed) the scope for a package name.
func (t *Table) Package(name string) *PackageScope {
	if s, ok := t.pkgs[name]; ok {
		return s
	}
	s := &PackageScope{Name: name, ByName: make(map[source.StringID][]SymbolID)}
	t.pkgs[name] = s
	return s
}

// HasPackage reports whether the unit declares the package.
func (t *Table) HasPackage(name string) bool {
	_, ok := t.pkgs[name]
	return ok
}

// Add stores a symbol and indexes it in its package scope.
func (t *Table) Add(sym Symbol) SymbolID {
	next, err := safecast.Conv[uint32](len(t.syms) + 1)
	if err != nil {
		panic(fmt.Errorf("symbol count overflow: %w", err))
	}
	id := SymbolID(next)
	t.syms = append(t.syms, sym)
	scope := t.Package(sym.Package)
	scope.ByName[sym.Name] = append(scope.ByName[sym.Name], id)
	scope.Order = append(scope.Order, id)
	return id
}

// Get returns the symbol for a valid ID, nil otherwise.
func (t *Table) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) > len(t.syms) {
		return nil
	}
	return &t.syms[id-1]
}

// Len counts stored symbols.
func (t *Table) Len() int {
	return len(t.syms)
}

// Candidates returns the symbols declared under name in the package, in
// declaration order across files.
func (t *Table) Candidates(pkg string, name source.StringID) []SymbolID {
	scope, ok := t.pkgs[pkg]
	if !ok {
		return nil
	}
	return scope.ByName[name]
}

// IsPreludeNamespace reports whether name is the runtime namespace that the
// builtin rewrite targets. It is visible everywhere unless shadowed.
func (t *Table) IsPreludeNamespace(name string) bool {
	return name == builtins.Namespace
}

// IsPreludeMember reports whether the runtime namespace provides name.
func (t *Table) IsPreludeMember(name string) bool {
	return t.prelude[name]
}
