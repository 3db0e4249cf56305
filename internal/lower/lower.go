package lower

import (
	"fmt"

	"goat/internal/ast"
	"goat/internal/source"
	"goat/internal/symbols"
	"goat/internal/types"
)

// Lowerer holds the read-only analysis results the rewrites consult. The
// side tables are keyed by input-tree node identity, so every lookup happens
// against the original node before its replacement is built.
type Lowerer struct {
	table     *symbols.Table
	symbolOf  map[*ast.Decl]symbols.SymbolID
	enumTypes map[*ast.Decl]types.TypeID
	refs      map[*ast.Expr]symbols.SymbolID
	flagged   map[*ast.Expr]bool
}

// New builds a Lowerer over the collector and checker output. flagged may
// be nil when the checker found nothing.
func New(collect *symbols.Result, refs map[*ast.Expr]symbols.SymbolID, flagged map[*ast.Expr]bool) *Lowerer {
	if flagged == nil {
		flagged = make(map[*ast.Expr]bool)
	}
	return &Lowerer{
		table:     collect.Table,
		symbolOf:  collect.SymbolOf,
		enumTypes: collect.EnumTypes,
		refs:      refs,
		flagged:   flagged,
	}
}

// LowerUnit lowers every file and returns the fresh tree.
func (lw *Lowerer) LowerUnit(unit *ast.Unit) *ast.Unit {
	out := &ast.Unit{}
	for _, pkg := range unit.Packages {
		np := &ast.Package{Name: pkg.Name}
		for _, f := range pkg.Files {
			np.Files = append(np.Files, lw.lowerFile(f))
		}
		out.Packages = append(out.Packages, np)
	}
	return out
}

func (lw *Lowerer) lowerFile(f *ast.File) *ast.File {
	out := &ast.File{Path: f.Path, ID: f.ID, Span: f.Span}
	for _, imp := range f.Imports {
		out.Imports = append(out.Imports, imp)
	}
	for _, d := range f.Decls {
		out.Decls = append(out.Decls, lw.lowerDecl(d)...)
	}
	return out
}

func (lw *Lowerer) lowerDecl(d *ast.Decl) []*ast.Decl {
	switch data := d.Data.(type) {
	case *ast.FuncData:
		return []*ast.Decl{lw.lowerFunc(d, data)}
	case *ast.VarData:
		nd := *d
		nd.Data = &ast.VarData{
			Type:  ast.CloneTypeExpr(data.Type),
			Value: lw.lowerFileScopeExpr(data.Value),
		}
		return []*ast.Decl{&nd}
	case *ast.EnumData:
		return lw.lowerEnum(d, data)
	default:
		return []*ast.Decl{ast.CloneDecl(d)}
	}
}

// lowerFileScopeExpr handles initializers, which have no surrounding block
// to hoist into. The checker rejects propagation and launch forms there, so
// only the pure expression rewrites apply.
func (lw *Lowerer) lowerFileScopeExpr(e *ast.Expr) *ast.Expr {
	fl := &funcLower{lw: lw}
	var hoist []*ast.Stmt
	out := fl.lowerExpr(e, &hoist)
	return out
}

func (lw *Lowerer) lowerFunc(d *ast.Decl, data *ast.FuncData) *ast.Decl {
	fl := &funcLower{lw: lw}
	if id, ok := lw.symbolOf[d]; ok {
		fl.sig = lw.table.Get(id).Sig
	}
	nd := *d
	out := &ast.FuncData{
		Params:  append([]ast.Param(nil), data.Params...),
		Results: make([]*ast.TypeExpr, 0, len(data.Results)),
		Body:    fl.lowerBlock(data.Body),
	}
	for i := range out.Params {
		out.Params[i].Type = ast.CloneTypeExpr(out.Params[i].Type)
	}
	for _, r := range data.Results {
		out.Results = append(out.Results, ast.CloneTypeExpr(r))
	}
	nd.Data = out
	return &nd
}

// funcLower carries the per-function lowering state: the enclosing
// signature for the early-return shape and the fresh-name counters.
type funcLower struct {
	lw  *Lowerer
	sig *symbols.Signature

	nErr, nTmp, nPromise int
}

func (fl *funcLower) lowerBlock(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	out := &ast.Block{Span: b.Span}
	for _, s := range b.Stmts {
		out.Stmts = append(out.Stmts, fl.lowerStmt(s)...)
	}
	return out
}

// lowerStmt produces the replacement statements for one input statement:
// any hoisted checks and bindings first, then the rewritten statement.
func (fl *funcLower) lowerStmt(s *ast.Stmt) []*ast.Stmt {
	if s == nil {
		return nil
	}
	var hoist []*ast.Stmt
	var main *ast.Stmt

	switch data := s.Data.(type) {
	case *ast.LetData:
		main = fl.lowerLet(s, data, &hoist)
	case *ast.AssignData:
		main = &ast.Stmt{Kind: s.Kind, Span: s.Span, Data: &ast.AssignData{
			Target: fl.lowerExpr(data.Target, &hoist),
			Value:  fl.lowerExpr(data.Value, &hoist),
		}}
	case *ast.ReturnData:
		nd := &ast.ReturnData{}
		for _, v := range data.Values {
			nd.Values = append(nd.Values, fl.lowerExpr(v, &hoist))
		}
		main = &ast.Stmt{Kind: s.Kind, Span: s.Span, Data: nd}
	case *ast.IfData:
		// Hoists from the condition land before the if;
		// branch bodies hoist internally.
		nd := &ast.IfData{
			Cond: fl.lowerExpr(data.Cond, &hoist),
			Then: fl.lowerBlock(data.Then),
		}
		if data.Else != nil {
			lowered := fl.lowerStmt(data.Else)
			nd.Else = wrapStmts(lowered, data.Else.Span)
		}
		main = &ast.Stmt{Kind: s.Kind, Span: s.Span, Data: nd}
	case *ast.SwitchData:
		nd := &ast.SwitchData{Value: fl.lowerExpr(data.Value, &hoist)}
		for _, cs := range data.Cases {
			nc := ast.SwitchCase{Span: cs.Span, Body: fl.lowerBlock(cs.Body)}
			for _, v := range cs.Values {
				// Case values are member references or literals; nothing
				// hoistable survives the checker here.
				nc.Values = append(nc.Values, fl.lowerExpr(v, &hoist))
			}
			nd.Cases = append(nd.Cases, nc)
		}
		nd.Default = fl.lowerBlock(data.Default)
		main = &ast.Stmt{Kind: s.Kind, Span: s.Span, Data: nd}
	case *ast.ExprStmtData:
		main = fl.lowerExprStmt(s, data, &hoist)
	case *ast.BlockStmtData:
		main = &ast.Stmt{Kind: s.Kind, Span: s.Span, Data: &ast.BlockStmtData{
			Block: fl.lowerBlock(data.Block),
		}}
	default:
		main = ast.CloneStmt(s)
	}

	if main == nil {
		return hoist
	}
	return append(hoist, main)
}

// lowerLet binds a propagation directly on the right-hand side without a
// temporary, so `let v = f()¿` keeps its one-binding shape.
func (fl *funcLower) lowerLet(s *ast.Stmt, data *ast.LetData, hoist *[]*ast.Stmt) *ast.Stmt {
	if p, ok := propagateOperand(data.Value, fl.lw.flagged); ok {
		errName := fl.freshErr()
		call := fl.lowerExpr(p, hoist)
		spans := append([]source.Span(nil), data.NameSpans...)
		if len(spans) == len(data.Names) {
			// The synthesized error binding points at the operator, keeping
			// the span list aligned with the names.
			spans = append(spans, data.Value.Span)
		}
		nd := &ast.LetData{
			Names:     append(append([]string(nil), data.Names...), errName),
			NameSpans: spans,
			Type:      ast.CloneTypeExpr(data.Type),
			Value:     call,
		}
		*hoist = append(*hoist, &ast.Stmt{Kind: ast.StmtLet, Span: s.Span, Data: nd})
		*hoist = append(*hoist, fl.errReturnIf(errName, data.Value.Span))
		return nil
	}
	nd := &ast.LetData{
		Names:     append([]string(nil), data.Names...),
		NameSpans: append([]source.Span(nil), data.NameSpans...),
		Type:      ast.CloneTypeExpr(data.Type),
		Value:     fl.lowerExpr(data.Value, hoist),
	}
	return &ast.Stmt{Kind: s.Kind, Span: s.Span, Data: nd}
}

// lowerExprStmt keeps bare launches as fire-and-forget statements and lets
// a discarded propagation drop its value bindings.
func (fl *funcLower) lowerExprStmt(s *ast.Stmt, data *ast.ExprStmtData, hoist *[]*ast.Stmt) *ast.Stmt {
	x := data.X
	if x != nil && x.Kind == ast.ExprLaunch && !fl.lw.flagged[x] {
		ld := x.Data.(*ast.LaunchData)
		nl := &ast.Expr{Kind: ast.ExprLaunch, Span: x.Span, Data: &ast.LaunchData{
			Call: fl.lowerExpr(ld.Call, hoist),
		}}
		return &ast.Stmt{Kind: s.Kind, Span: s.Span, Data: &ast.ExprStmtData{X: nl}}
	}
	if p, ok := propagateOperand(x, fl.lw.flagged); ok {
		fl.desugarPropagate(p, x.Span, hoist, true)
		return nil
	}
	return &ast.Stmt{Kind: s.Kind, Span: s.Span, Data: &ast.ExprStmtData{
		X: fl.lowerExpr(x, hoist),
	}}
}

// propagateOperand unwraps e when it is an unflagged propagation expression.
func propagateOperand(e *ast.Expr, flagged map[*ast.Expr]bool) (*ast.Expr, bool) {
	if e == nil || e.Kind != ast.ExprPropagate || flagged[e] {
		return nil, false
	}
	return e.Data.(*ast.PropagateData).Call, true
}

func (fl *funcLower) freshErr() string {
	name := fmt.Sprintf("__err%d", fl.nErr)
	fl.nErr++
	return name
}

func (fl *funcLower) freshTmp() string {
	name := fmt.Sprintf("__val%d", fl.nTmp)
	fl.nTmp++
	return name
}

func (fl *funcLower) freshPromise() string {
	name := fmt.Sprintf("__promise%d", fl.nPromise)
	fl.nPromise++
	return name
}

// wrapStmts turns a lowered statement list back into a single statement for
// positions that hold exactly one (an else arm).
func wrapStmts(stmts []*ast.Stmt, sp source.Span) *ast.Stmt {
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &ast.Stmt{Kind: ast.StmtBlock, Span: sp, Data: &ast.BlockStmtData{
		Block: &ast.Block{Span: sp, Stmts: stmts},
	}}
}
