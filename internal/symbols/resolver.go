package symbols

import (
	"fmt"
	"strings"

	"goat/internal/ast"
	"goat/internal/builtins"
	"goat/internal/diag"
	"goat/internal/source"
)

// Stage 2, visibility resolution. ResolveFile only reads the published
// table, so files resolve on parallel workers; the driver merges the bags.

// ResolveResult carries per-file resolution output. Refs is the side table
// mapping reference expressions to their resolved symbols; the input tree is
// never annotated in place.
type ResolveResult struct {
	Bag  *diag.Bag
	Refs map[*ast.Expr]SymbolID
}

// ResolveFile resolves every identifier reference in one file against the
// table and reports visibility violations.
func ResolveFile(table *Table, pkg *ast.Package, f *ast.File, maxDiagnostics int) *ResolveResult {
	bag := diag.NewBag(maxDiagnostics)
	fr := &fileResolver{
		table:    table,
		pkg:      pkg.Name,
		site:     RefSite{Package: pkg.Name, File: f.ID},
		reporter: diag.BagReporter{Bag: bag},
		refs:     make(map[*ast.Expr]SymbolID),
		imports:  make(map[string]string),
	}
	for _, imp := range f.Imports {
		if imp.Open {
			fr.openImports = append(fr.openImports, imp.Path)
		} else {
			fr.imports[imp.LocalName()] = imp.Path
		}
	}

	for _, d := range f.Decls {
		fr.resolveDecl(d)
	}
	return &ResolveResult{Bag: bag, Refs: fr.refs}
}

type fileResolver struct {
	table    *Table
	pkg      string
	site     RefSite
	reporter diag.Reporter
	refs     map[*ast.Expr]SymbolID

	imports     map[string]string // local name -> package
	openImports []string
	locals      []map[string]bool
}

func (fr *fileResolver) resolveDecl(d *ast.Decl) {
	switch data := d.Data.(type) {
	case *ast.FuncData:
		for _, p := range data.Params {
			fr.resolveTypeRef(p.Type)
		}
		for _, r := range data.Results {
			fr.resolveTypeRef(r)
		}
		fr.pushScope()
		for _, p := range data.Params {
			fr.declareLocal(p.Name)
		}
		fr.resolveBlock(data.Body)
		fr.popScope()
	case *ast.VarData:
		fr.resolveTypeRef(data.Type)
		fr.resolveExpr(data.Value)
	case *ast.TypeData:
		fr.resolveTypeRef(data.Underlying)
	case *ast.EnumData:
		// Member names live in the enum's own namespace; nothing to resolve.
	}
}

func (fr *fileResolver) resolveBlock(b *ast.Block) {
	if b == nil {
		return
	}
	fr.pushScope()
	for _, s := range b.Stmts {
		fr.resolveStmt(s)
	}
	fr.popScope()
}

func (fr *fileResolver) resolveStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch data := s.Data.(type) {
	case *ast.LetData:
		fr.resolveTypeRef(data.Type)
		fr.resolveExpr(data.Value)
		for i, name := range data.Names {
			if builtins.IsEliminated(name) {
				sp := s.Span
				if i < len(data.NameSpans) {
					sp = data.NameSpans[i]
				}
				diag.ReportError(fr.reporter, diag.ReservedIdentifierUsed, sp,
					fmt.Sprintf("cannot declare binding named %q; the name is reserved", name)).
					Emit()
			}
			fr.declareLocal(name)
		}
	case *ast.AssignData:
		fr.resolveExpr(data.Target)
		fr.resolveExpr(data.Value)
	case *ast.ReturnData:
		for _, v := range data.Values {
			fr.resolveExpr(v)
		}
	case *ast.IfData:
		fr.resolveExpr(data.Cond)
		fr.resolveBlock(data.Then)
		fr.resolveStmt(data.Else)
	case *ast.SwitchData:
		fr.resolveExpr(data.Value)
		for _, c := range data.Cases {
			for _, v := range c.Values {
				fr.resolveExpr(v)
			}
			fr.resolveBlock(c.Body)
		}
		fr.resolveBlock(data.Default)
	case *ast.ExprStmtData:
		fr.resolveExpr(data.X)
	case *ast.BlockStmtData:
		fr.resolveBlock(data.Block)
	}
}

func (fr *fileResolver) resolveExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch data := e.Data.(type) {
	case *ast.IdentData:
		fr.resolveIdent(e, data.Name)
	case *ast.SelectorData:
		fr.resolveSelector(e, data)
	case *ast.CallData:
		// The eliminated-builtin call forms are stage 3's business; resolving
		// their callee as a symbol would only produce noise.
		if name, ok := identName(data.Callee); !ok || !builtins.IsEliminated(name) {
			fr.resolveExpr(data.Callee)
		}
		for _, a := range data.Args {
			fr.resolveExpr(a)
		}
	case *ast.BinaryData:
		fr.resolveExpr(data.Left)
		fr.resolveExpr(data.Right)
	case *ast.UnaryData:
		fr.resolveExpr(data.X)
	case *ast.IndexData:
		fr.resolveExpr(data.X)
		fr.resolveExpr(data.Index)
	case *ast.PropagateData:
		fr.resolveExpr(data.Call)
	case *ast.LaunchData:
		fr.resolveExpr(data.Call)
	}
}

func (fr *fileResolver) resolveIdent(e *ast.Expr, name string) {
	if fr.isLocal(name) {
		return
	}
	// Reserved builtin names are never symbols; stage 3 reports their misuse.
	if builtins.IsEliminated(name) {
		return
	}
	if fr.table.IsPreludeNamespace(name) {
		return
	}
	// An import's local name only means something as a selector qualifier;
	// resolveSelector consumes it before we ever get here.
	if _, ok := fr.imports[name]; ok {
		return
	}

	if id, found := fr.lookupOwnPackage(name); found {
		if id.IsValid() {
			fr.refs[e] = id
		} else {
			// Declared in this package but not reachable from this file; a
			// public symbol from an open import may still win (a private
			// symbol in another file never shadows it).
			if fr.lookupOpenImports(e, name, false) {
				return
			}
			sym := fr.firstCandidate(name)
			diag.ReportError(fr.reporter, diag.SymbolNotVisible, e.Span,
				fmt.Sprintf("%q is not visible from this file", name)).
				WithNote(sym.Span, fmt.Sprintf("declared %s here", sym.Vis)).
				Emit()
		}
		return
	}

	if fr.lookupOpenImports(e, name, false) {
		return
	}
	diag.ReportError(fr.reporter, diag.SymbolNotVisible, e.Span,
		fmt.Sprintf("no visible declaration of %q", name)).
		Emit()
}

// lookupOwnPackage returns (id, true) when the package declares name and a
// candidate is visible, (NoSymbolID, true) when declared but hidden, and
// (NoSymbolID, false) when the package has no such declaration. File-scope
// candidates shadow package-scope ones.
func (fr *fileResolver) lookupOwnPackage(name string) (SymbolID, bool) {
	nameID, ok := fr.table.Strings.LookupID(name)
	if !ok {
		return NoSymbolID, false
	}
	candidates := fr.table.Candidates(fr.pkg, nameID)
	if len(candidates) == 0 {
		return NoSymbolID, false
	}
	// Narrower scope wins: a file-private declaration in this file shadows
	// package-visible ones.
	for _, id := range candidates {
		sym := fr.table.Get(id)
		if sym.Vis == ast.VisPrivate && sym.File == fr.site.File {
			return id, true
		}
	}
	for _, id := range candidates {
		sym := fr.table.Get(id)
		if sym.Vis != ast.VisPrivate && Visible(fr.site, sym) {
			return id, true
		}
	}
	return NoSymbolID, true
}

// firstCandidate is only called after lookupOwnPackage saw candidates, so
// the spelling is guaranteed to be interned.
func (fr *fileResolver) firstCandidate(name string) *Symbol {
	nameID, _ := fr.table.Strings.LookupID(name)
	candidates := fr.table.Candidates(fr.pkg, nameID)
	return fr.table.Get(candidates[0])
}

// lookupOpenImports resolves name against the public names of every open
// import. Two independent hits at this scope are ambiguous. Returns whether
// the reference was settled (resolved or reported).
func (fr *fileResolver) lookupOpenImports(e *ast.Expr, name string, quiet bool) bool {
	nameID, ok := fr.table.Strings.LookupID(name)
	if !ok {
		return false
	}
	var hits []SymbolID
	var hitPkgs []string
	for _, pkg := range fr.openImports {
		for _, id := range fr.table.Candidates(pkg, nameID) {
			sym := fr.table.Get(id)
			if sym.Vis == ast.VisPublic {
				hits = append(hits, id)
				hitPkgs = append(hitPkgs, pkg)
				break
			}
		}
	}
	switch len(hits) {
	case 0:
		return false
	case 1:
		fr.refs[e] = hits[0]
		return true
	default:
		if !quiet {
			b := diag.ReportError(fr.reporter, diag.AmbiguousReference, e.Span,
				fmt.Sprintf("%q is provided by multiple open imports: %s and %s", name, hitPkgs[0], hitPkgs[1]))
			for _, id := range hits {
				b.WithNote(fr.table.Get(id).Span, "candidate declared here")
			}
			b.Emit()
		}
		return true
	}
}

func (fr *fileResolver) resolveSelector(e *ast.Expr, data *ast.SelectorData) {
	if qualifier, ok := identName(data.X); ok {
		if !fr.isLocal(qualifier) {
			if pkg, ok := fr.imports[qualifier]; ok {
				fr.resolvePackageMember(e, pkg, data)
				return
			}
			if fr.table.IsPreludeNamespace(qualifier) {
				if !fr.table.IsPreludeMember(data.Sel) {
					diag.ReportError(fr.reporter, diag.SymbolNotVisible, data.SelSpan,
						fmt.Sprintf("the %s namespace has no member %q", builtins.Namespace, data.Sel)).
						Emit()
				}
				return
			}
		}
	}
	// Enum member access and method calls resolve through the base
	// expression; the member side is checked by the enum stage.
	fr.resolveExpr(data.X)
}

func (fr *fileResolver) resolvePackageMember(e *ast.Expr, pkg string, data *ast.SelectorData) {
	site := fr.site
	var candidates []SymbolID
	if nameID, ok := fr.table.Strings.LookupID(data.Sel); ok {
		candidates = fr.table.Candidates(pkg, nameID)
	}
	if len(candidates) == 0 {
		diag.ReportError(fr.reporter, diag.SymbolNotVisible, data.SelSpan,
			fmt.Sprintf("package %s has no visible declaration of %q", pkg, data.Sel)).
			Emit()
		return
	}
	for _, id := range candidates {
		sym := fr.table.Get(id)
		if Visible(site, sym) {
			fr.refs[e] = id
			return
		}
	}
	sym := fr.table.Get(candidates[0])
	diag.ReportError(fr.reporter, diag.SymbolNotVisible, data.SelSpan,
		fmt.Sprintf("%s.%s is not public", pkg, data.Sel)).
		WithNote(sym.Span, fmt.Sprintf("declared %s here", sym.Vis)).
		Emit()
}

// resolveTypeRef checks visibility of named type references in signatures
// and declarations.
func (fr *fileResolver) resolveTypeRef(te *ast.TypeExpr) {
	if te == nil {
		return
	}
	switch te.Kind {
	case ast.TypeName:
		switch te.Name {
		case "bool", "int", "float", "string", "error":
			return
		}
		name := te.Name
		pkg := fr.pkg
		qualified := false
		if i := strings.IndexByte(name, '.'); i >= 0 {
			pkgLocal := name[:i]
			if p, ok := fr.imports[pkgLocal]; ok {
				pkg = p
				qualified = true
			}
			name = name[i+1:]
		}
		var candidates []SymbolID
		if nameID, ok := fr.table.Strings.LookupID(name); ok {
			candidates = typeCandidates(fr.table, pkg, nameID)
			if len(candidates) == 0 && !qualified {
				// Fall back to open imports for unqualified names.
				for _, open := range fr.openImports {
					for _, id := range typeCandidates(fr.table, open, nameID) {
						if fr.table.Get(id).Vis == ast.VisPublic {
							candidates = append(candidates, id)
						}
					}
				}
			}
		}
		fr.checkTypeCandidates(te, candidates)
	case ast.TypeSlice, ast.TypeChan, ast.TypePromise:
		fr.resolveTypeRef(te.Elem)
	case ast.TypeMap:
		fr.resolveTypeRef(te.Key)
		fr.resolveTypeRef(te.Elem)
	}
}

func (fr *fileResolver) checkTypeCandidates(te *ast.TypeExpr, candidates []SymbolID) {
	if len(candidates) == 0 {
		diag.ReportError(fr.reporter, diag.SymbolNotVisible, te.Span,
			fmt.Sprintf("no visible declaration of type %q", te.Name)).
			Emit()
		return
	}
	for _, id := range candidates {
		if Visible(fr.site, fr.table.Get(id)) {
			return
		}
		// File-private type in this file also counts.
		sym := fr.table.Get(id)
		if sym.Vis == ast.VisPrivate && sym.File == fr.site.File {
			return
		}
	}
	sym := fr.table.Get(candidates[0])
	diag.ReportError(fr.reporter, diag.SymbolNotVisible, te.Span,
		fmt.Sprintf("type %q is not visible from this file", te.Name)).
		WithNote(sym.Span, fmt.Sprintf("declared %s here", sym.Vis)).
		Emit()
}

func typeCandidates(t *Table, pkg string, nameID source.StringID) []SymbolID {
	var out []SymbolID
	for _, id := range t.Candidates(pkg, nameID) {
		sym := t.Get(id)
		if sym.Kind == SymbolType || sym.Kind == SymbolEnum {
			out = append(out, id)
		}
	}
	return out
}

func (fr *fileResolver) pushScope() {
	fr.locals = append(fr.locals, make(map[string]bool))
}

func (fr *fileResolver) popScope() {
	fr.locals = fr.locals[:len(fr.locals)-1]
}

func (fr *fileResolver) declareLocal(name string) {
	if len(fr.locals) > 0 {
		fr.locals[len(fr.locals)-1][name] = true
	}
}

func (fr *fileResolver) isLocal(name string) bool {
	for i := len(fr.locals) - 1; i >= 0; i-- {
		if fr.locals[i][name] {
			return true
		}
	}
	return false
}

func identName(e *ast.Expr) (string, bool) {
	if e == nil || e.Kind != ast.ExprIdent {
		return "", false
	}
	return e.Data.(*ast.IdentData).Name, true
}
