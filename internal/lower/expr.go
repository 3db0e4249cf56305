package lower

import (
	"fmt"

	"goat/internal/ast"
	"goat/internal/builtins"
	"goat/internal/source"
	"goat/internal/symbols"
	"goat/internal/types"
)

// lowerExpr rebuilds e in the output vocabulary. Children lower first, so
// nested propagations hoist their checks before the enclosing call runs,
// preserving left-to-right evaluation order. Flagged nodes are copied
// verbatim; rewriting a site the checker rejected would only compound the
// damage.
func (fl *funcLower) lowerExpr(e *ast.Expr, hoist *[]*ast.Stmt) *ast.Expr {
	if e == nil {
		return nil
	}
	if fl.lw.flagged[e] {
		return ast.CloneExpr(e)
	}
	switch data := e.Data.(type) {
	case *ast.IdentData:
		return ast.NewIdent(data.Name, e.Span)
	case *ast.LitData:
		nd := *data
		return &ast.Expr{Kind: e.Kind, Span: e.Span, Data: &nd}
	case *ast.CallData:
		return fl.lowerCall(e, data, hoist)
	case *ast.SelectorData:
		if name, ok := fl.lw.enumConstName(data); ok {
			return ast.NewIdent(name, e.Span)
		}
		return &ast.Expr{Kind: e.Kind, Span: e.Span, Data: &ast.SelectorData{
			X:       fl.lowerExpr(data.X, hoist),
			Sel:     data.Sel,
			SelSpan: data.SelSpan,
		}}
	case *ast.BinaryData:
		return ast.NewBinary(data.Op,
			fl.lowerExpr(data.Left, hoist),
			fl.lowerExpr(data.Right, hoist),
			e.Span)
	case *ast.UnaryData:
		return &ast.Expr{Kind: e.Kind, Span: e.Span, Data: &ast.UnaryData{
			Op: data.Op,
			X:  fl.lowerExpr(data.X, hoist),
		}}
	case *ast.IndexData:
		return &ast.Expr{Kind: e.Kind, Span: e.Span, Data: &ast.IndexData{
			X:     fl.lowerExpr(data.X, hoist),
			Index: fl.lowerExpr(data.Index, hoist),
		}}
	case *ast.PropagateData:
		return fl.desugarPropagate(data.Call, e.Span, hoist, false)
	case *ast.LaunchData:
		return fl.lowerLaunchValue(e, data, hoist)
	}
	return ast.CloneExpr(e)
}

// lowerCall applies the builtin rewrite table to free-function call forms.
func (fl *funcLower) lowerCall(e *ast.Expr, data *ast.CallData, hoist *[]*ast.Stmt) *ast.Expr {
	args := make([]*ast.Expr, 0, len(data.Args))
	for _, a := range data.Args {
		args = append(args, fl.lowerExpr(a, hoist))
	}

	if name, ok := identName(data.Callee); ok {
		if class, eliminated := builtins.Lookup(name); eliminated {
			switch class {
			case builtins.ClassMethod:
				return rewriteMethodCall(name, args, e, data)
			case builtins.ClassNamespaced:
				ns := ast.NewIdent(builtins.Namespace, data.Callee.Span)
				callee := ast.NewSelector(ns, name, data.Callee.Span)
				return ast.NewCall(callee, args, e.Span)
			case builtins.ClassKeyword:
				// panic/recover call forms are keyword statements; the
				// emitter prints them as such.
				return ast.NewCall(ast.CloneExpr(data.Callee), args, e.Span)
			}
		}
	}
	return ast.NewCall(fl.lowerExpr(data.Callee, hoist), args, e.Span)
}

// rewriteMethodCall turns name(recv, rest...) into recv.name(rest...).
// copy is the one irregular row: copy(dst, src) becomes src.copy(dst).
func rewriteMethodCall(name string, args []*ast.Expr, e *ast.Expr, data *ast.CallData) *ast.Expr {
	recv, rest := args[0], args[1:]
	if name == "copy" {
		recv, rest = args[1], args[:1]
	}
	callee := ast.NewSelector(recv, name, data.Callee.Span)
	return ast.NewCall(callee, rest, e.Span)
}

// desugarPropagate emits the check-and-early-return for one operator
// occurrence and returns the bound value (nil when discarded). The call is
// evaluated exactly once, into fresh bindings.
func (fl *funcLower) desugarPropagate(call *ast.Expr, sp source.Span, hoist *[]*ast.Stmt, discard bool) *ast.Expr {
	lowered := fl.lowerExpr(call, hoist)
	errName := fl.freshErr()

	// One value binding per non-error result of the callee.
	values := fl.lw.valueResultCount(call)
	names := make([]string, 0, values+1)
	var first string
	for i := 0; i < values; i++ {
		n := fl.freshTmp()
		if i == 0 {
			first = n
		}
		names = append(names, n)
	}
	names = append(names, errName)

	*hoist = append(*hoist, ast.NewLet(names, lowered, sp))
	*hoist = append(*hoist, fl.errReturnIf(errName, sp))

	if discard || first == "" {
		return nil
	}
	return ast.NewIdent(first, sp)
}

// errReturnIf builds `if errName != nil { return zeros..., errName }` using
// the enclosing function's declared results.
func (fl *funcLower) errReturnIf(errName string, sp source.Span) *ast.Stmt {
	cond := ast.NewBinary(ast.OpNe,
		ast.NewIdent(errName, sp),
		ast.NewNilLit(sp),
		sp)
	var rets []*ast.Expr
	if fl.sig != nil {
		for _, t := range fl.sig.Results[:len(fl.sig.Results)-1] {
			rets = append(rets, fl.lw.zeroExpr(t, sp))
		}
	}
	rets = append(rets, ast.NewIdent(errName, sp))
	body := &ast.Block{Span: sp, Stmts: []*ast.Stmt{ast.NewReturn(rets, sp)}}
	return ast.NewIf(cond, body, sp)
}

// lowerLaunchValue rewrites a launch used as a value: construct the handle,
// fire the background run, hand the handle to the surrounding expression.
func (fl *funcLower) lowerLaunchValue(e *ast.Expr, data *ast.LaunchData, hoist *[]*ast.Stmt) *ast.Expr {
	name := fl.freshPromise()
	sp := e.Span

	promiseCtor := ast.NewCall(
		ast.NewSelector(ast.NewIdent(builtins.Namespace, sp), "promise", sp),
		nil, sp)
	*hoist = append(*hoist, ast.NewLet([]string{name}, promiseCtor, sp))

	complete := ast.NewCall(
		ast.NewSelector(ast.NewIdent(name, sp), "complete", sp),
		[]*ast.Expr{fl.lowerExpr(data.Call, hoist)},
		sp)
	launch := ast.NewLaunch(complete, sp)
	*hoist = append(*hoist, ast.NewExprStmt(launch))

	return ast.NewIdent(name, sp)
}

// valueResultCount reports how many non-error results the call's callee
// declares; unknown callees count as one.
func (lw *Lowerer) valueResultCount(call *ast.Expr) int {
	if call == nil || call.Kind != ast.ExprCall {
		return 1
	}
	callee := call.Data.(*ast.CallData).Callee
	id, ok := lw.refs[callee]
	if !ok {
		return 1
	}
	sym := lw.table.Get(id)
	if sym == nil || sym.Kind != symbols.SymbolFunction || sym.Sig == nil {
		return 1
	}
	n := len(sym.Sig.Results)
	if n > 0 && lw.table.Types.IsError(sym.Sig.Results[n-1]) {
		n--
	}
	return n
}

// enumConstName maps a Status.Idle member reference to its lowered constant
// name.
func (lw *Lowerer) enumConstName(data *ast.SelectorData) (string, bool) {
	id, ok := lw.refs[data.X]
	if !ok {
		return "", false
	}
	sym := lw.table.Get(id)
	if sym == nil || sym.Kind != symbols.SymbolEnum {
		return "", false
	}
	if lw.table.Types.EnumState(sym.Type) != types.EnumUsable {
		return "", false
	}
	enumName := lw.table.Strings.MustLookup(sym.Name)
	return mangleMember(enumName, data.Sel), true
}

// mangleMember is the lowered constant name for an enum member.
func mangleMember(enumName, member string) string {
	return fmt.Sprintf("%s_%s", enumName, member)
}

func identName(e *ast.Expr) (string, bool) {
	if e == nil || e.Kind != ast.ExprIdent {
		return "", false
	}
	return e.Data.(*ast.IdentData).Name, true
}
