package symbols

import (
	"fmt"

	"goat/internal/ast"
	"goat/internal/builtins"
	"goat/internal/diag"
	"goat/internal/source"
	"goat/internal/types"
)

// Stage 1, symbol collection. The per-file half (CollectFile) touches no
// shared state and may run on parallel workers; Merge then builds the
// immutable table single-threaded, in unit order, so diagnostics and symbol
// IDs never depend on worker scheduling.

// FileCollection is the output of the per-file phase.
type FileCollection struct {
	Package string
	File    *ast.File
	Bag     *diag.Bag
}

// CollectFile runs the per-file checks that need no shared tables: the
// unconditional visibility-modifier requirement and the reserved-name rule
// for top-level declarations.
func CollectFile(pkgName string, f *ast.File, maxDiagnostics int) *FileCollection {
	bag := diag.NewBag(maxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	for _, d := range f.Decls {
		if d.Vis == ast.VisNone {
			diag.ReportError(reporter, diag.MissingVisibilityModifier, d.NameSpan,
				fmt.Sprintf("top-level declaration %q has no visibility modifier; private, package or public is required", d.Name)).
				Emit()
		}
		if builtins.IsEliminated(d.Name) {
			diag.ReportError(reporter, diag.ReservedIdentifierUsed, d.NameSpan,
				fmt.Sprintf("cannot declare %s named %q; the name is reserved", d.Kind, d.Name)).
				Emit()
		}
		if ed, ok := d.Data.(*ast.EnumData); ok {
			for _, m := range ed.Members {
				if builtins.IsEliminated(m.Name) {
					diag.ReportError(reporter, diag.ReservedIdentifierUsed, m.Span,
						fmt.Sprintf("cannot declare enum member named %q; the name is reserved", m.Name)).
						Emit()
				}
			}
		}
	}

	return &FileCollection{Package: pkgName, File: f, Bag: bag}
}

// Result is the published output of collection: the immutable symbol table
// plus side tables later stages read.
type Result struct {
	Table     *Table
	Bag       *diag.Bag
	SymbolOf  map[*ast.Decl]SymbolID
	EnumTypes map[*ast.Decl]types.TypeID
}

// Merge combines per-file collections into the symbol table. collections
// must be in unit order (packages, then files as declared).
func Merge(unit *ast.Unit, collections []*FileCollection, table *Table, maxDiagnostics int) *Result {
	if table == nil {
		table = NewTable(nil, nil)
	}
	bag := diag.NewBag(maxDiagnostics)
	for _, c := range collections {
		bag.Merge(c.Bag)
	}
	reporter := diag.BagReporter{Bag: bag}

	res := &Result{
		Table:     table,
		Bag:       bag,
		SymbolOf:  make(map[*ast.Decl]SymbolID),
		EnumTypes: make(map[*ast.Decl]types.TypeID),
	}

	m := &merger{table: table, reporter: reporter, res: res}
	for _, pkg := range unit.Packages {
		m.registerTypes(pkg)
	}
	for _, pkg := range unit.Packages {
		m.resolveNamedTypes(pkg)
	}
	for _, pkg := range unit.Packages {
		m.registerValues(pkg)
	}
	for _, pkg := range unit.Packages {
		m.reportDuplicates(pkg)
	}
	for _, pkg := range unit.Packages {
		m.validateEnums(pkg)
	}
	return res
}

type merger struct {
	table    *Table
	reporter diag.Reporter
	res      *Result

	// type decls whose underlying still needs resolution
	pendingNamed []pendingNamed
}

type pendingNamed struct {
	pkg  string
	decl *ast.Decl
	id   SymbolID
}

// registerTypes adds type and enum symbols first, so value declarations can
// reference them regardless of declaration order.
func (m *merger) registerTypes(pkg *ast.Package) {
	for _, f := range pkg.Files {
		for _, d := range f.Decls {
			switch d.Kind {
			case ast.DeclEnum:
				nameID := m.table.Strings.Intern(d.Name)
				enumType := m.table.Types.RegisterEnum(nameID, d.Span)
				id := m.table.Add(Symbol{
					Name: nameID, Kind: SymbolEnum, Vis: d.Vis,
					File: f.ID, Package: pkg.Name, Span: d.NameSpan,
					Type: enumType, Decl: d,
				})
				m.res.SymbolOf[d] = id
				m.res.EnumTypes[d] = enumType
			case ast.DeclType:
				nameID := m.table.Strings.Intern(d.Name)
				id := m.table.Add(Symbol{
					Name: nameID, Kind: SymbolType, Vis: d.Vis,
					File: f.ID, Package: pkg.Name, Span: d.NameSpan,
					Decl: d,
				})
				m.res.SymbolOf[d] = id
				m.pendingNamed = append(m.pendingNamed, pendingNamed{pkg: pkg.Name, decl: d, id: id})
			}
		}
	}
}

// resolveNamedTypes fills in underlying types for named type declarations.
// Aliases of aliases resolve over multiple rounds; anything unresolved after
// that (cycles, unknown names) keeps NoTypeID and surfaces later as an
// unresolvable reference.
func (m *merger) resolveNamedTypes(pkg *ast.Package) {
	for round := 0; round < len(m.pendingNamed)+1; round++ {
		progress := false
		for i := range m.pendingNamed {
			p := &m.pendingNamed[i]
			if p.pkg != pkg.Name {
				continue
			}
			sym := m.table.Get(p.id)
			if sym.Type != types.NoTypeID {
				continue
			}
			td := p.decl.Data.(*ast.TypeData)
			if underlying := m.table.ResolveTypeExpr(p.pkg, td.Underlying); underlying != types.NoTypeID {
				sym.Type = m.table.Types.Named(sym.Name, underlying)
				progress = true
			}
		}
		if !progress {
			break
		}
	}
}

// registerValues adds function, variable and constant symbols with their
// declared types resolved.
func (m *merger) registerValues(pkg *ast.Package) {
	for _, f := range pkg.Files {
		for _, d := range f.Decls {
			switch d.Kind {
			case ast.DeclFunc:
				fd := d.Data.(*ast.FuncData)
				sig := &Signature{}
				for _, p := range fd.Params {
					sig.Params = append(sig.Params, m.table.ResolveTypeExpr(pkg.Name, p.Type))
				}
				for _, r := range fd.Results {
					sig.Results = append(sig.Results, m.table.ResolveTypeExpr(pkg.Name, r))
				}
				id := m.table.Add(Symbol{
					Name: m.table.Strings.Intern(d.Name), Kind: SymbolFunction, Vis: d.Vis,
					File: f.ID, Package: pkg.Name, Span: d.NameSpan,
					Sig: sig, Decl: d,
				})
				m.res.SymbolOf[d] = id
			case ast.DeclVar, ast.DeclConst:
				vd := d.Data.(*ast.VarData)
				kind := SymbolVar
				if d.Kind == ast.DeclConst {
					kind = SymbolConst
				}
				id := m.table.Add(Symbol{
					Name: m.table.Strings.Intern(d.Name), Kind: kind, Vis: d.Vis,
					File: f.ID, Package: pkg.Name, Span: d.NameSpan,
					Type: m.table.ResolveTypeExpr(pkg.Name, vd.Type), Decl: d,
				})
				m.res.SymbolOf[d] = id
			}
		}
	}
}

// reportDuplicates flags same-name pairs whose visibilities overlap. Within
// one package every pairing collides except two file-private declarations in
// different files: a file-private name still occupies its file's slice of
// the package namespace.
func (m *merger) reportDuplicates(pkg *ast.Package) {
	scope := m.table.Package(pkg.Name)
	seen := make(map[source.StringID]bool)
	for _, id := range scope.Order {
		sym := m.table.Get(id)
		if seen[sym.Name] {
			continue
		}
		seen[sym.Name] = true

		candidates := scope.ByName[sym.Name]
		if len(candidates) < 2 {
			continue
		}
		for i := 1; i < len(candidates); i++ {
			later := m.table.Get(candidates[i])
			for j := 0; j < i; j++ {
				earlier := m.table.Get(candidates[j])
				if !declarationsCollide(earlier, later) {
					continue
				}
				name, _ := m.table.Strings.Lookup(sym.Name)
				diag.ReportError(m.reporter, diag.DuplicateDeclaration, later.Span,
					fmt.Sprintf("%q is already declared in package %s", name, pkg.Name)).
					WithNote(earlier.Span, "previous declaration here").
					Emit()
				break
			}
		}
	}
}

// declarationsCollide implements the overlap rule for two same-name symbols
// of one package.
func declarationsCollide(a, b *Symbol) bool {
	if a.Vis == ast.VisPrivate && b.Vis == ast.VisPrivate {
		return a.File == b.File
	}
	// Any other combination resolves into the same namespace at package
	// scope, including private paired with package or public.
	return true
}

// validateEnums runs the declaration state machine for every enum and
// reports rejections. Members without an explicit ordinal take their
// declaration index.
func (m *merger) validateEnums(pkg *ast.Package) {
	for _, f := range pkg.Files {
		for _, d := range f.Decls {
			if d.Kind != ast.DeclEnum {
				continue
			}
			ed := d.Data.(*ast.EnumData)
			enumType := m.res.EnumTypes[d]

			members := make([]types.EnumMemberInfo, 0, len(ed.Members))
			for i, mem := range ed.Members {
				ordinal := int64(i)
				if mem.Ordinal != nil {
					ordinal = *mem.Ordinal
				}
				members = append(members, types.EnumMemberInfo{
					Name:    m.table.Strings.Intern(mem.Name),
					Ordinal: ordinal,
					Span:    mem.Span,
				})
			}

			for _, problem := range m.table.Types.ValidateEnum(enumType, members) {
				name, _ := m.table.Strings.Lookup(problem.Member.Name)
				switch problem.Reason {
				case types.EnumDupName:
					diag.ReportError(m.reporter, diag.DuplicateDeclaration, problem.Member.Span,
						fmt.Sprintf("enum %s already has a member named %q", d.Name, name)).
						WithNote(problem.Prev, "previous member here").
						Emit()
				case types.EnumDupOrdinal:
					diag.ReportError(m.reporter, diag.InvalidEnumValue, problem.Member.Span,
						fmt.Sprintf("ordinal of enum member %q collides with an earlier member", name)).
						WithNote(problem.Prev, "earlier member here").
						Emit()
				case types.EnumOrdinalOutOfRange:
					diag.ReportError(m.reporter, diag.InvalidEnumValue, problem.Member.Span,
						fmt.Sprintf("ordinal of enum member %q is outside [0, %d)", name, len(members))).
						Emit()
				case types.EnumNoMembers:
					diag.ReportError(m.reporter, diag.InvalidEnumValue, d.NameSpan,
						fmt.Sprintf("enum %s declares no members", d.Name)).
						Emit()
				}
			}
		}
	}
}
