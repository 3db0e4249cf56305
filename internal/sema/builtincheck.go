package sema

import (
	"fmt"

	"goat/internal/ast"
	"goat/internal/builtins"
	"goat/internal/diag"
	"goat/internal/types"
)

// checkCall dispatches on the callee shape. Free-function forms of the
// eliminated builtins get their arity and receiver capability verified here
// so the rewriter only ever sees call sites it can lower. Method forms
// (already-rewritten trees) get the same receiver check, which keeps the
// pipeline clean on its own output.
func (c *checker) checkCall(e *ast.Expr, data *ast.CallData) {
	for _, a := range data.Args {
		c.checkExpr(a)
	}

	if name, ok := calleeIdent(data.Callee); ok {
		if class, eliminated := builtins.Lookup(name); eliminated {
			c.checkFreeBuiltin(e, name, class, data)
			return
		}
		c.checkExpr(data.Callee)
		return
	}

	if sel, ok := data.Callee.Data.(*ast.SelectorData); ok && data.Callee.Kind == ast.ExprSelector {
		if class, eliminated := builtins.Lookup(sel.Sel); eliminated && class == builtins.ClassMethod {
			c.checkExpr(sel.X)
			c.checkMethodReceiver(e, sel.Sel, c.typeOf(sel.X))
			return
		}
	}
	c.checkExpr(data.Callee)
}

func (c *checker) checkFreeBuiltin(e *ast.Expr, name string, class builtins.Class, data *ast.CallData) {
	switch class {
	case builtins.ClassKeyword:
		// panic/recover/new/error call forms belong to the parser and the
		// emitter; the rewriter leaves them untouched.
		return
	case builtins.ClassNamespaced:
		// Namespaced rewrites accept any argument list; the runtime owns
		// their contracts.
		return
	}

	// Method class: one argument becomes the receiver. The check runs on
	// that operand, so the free form passes exactly when its rewritten
	// method form would.
	want := methodArity(name)
	if len(data.Args) < want.min || (want.max >= 0 && len(data.Args) > want.max) {
		c.flagged[e] = true
		diag.ReportError(c.reporter, diag.InvalidBuiltinUsage, e.Span,
			fmt.Sprintf("%s expects %s, got %d", name, want, len(data.Args))).
			Emit()
		return
	}
	recv := data.Args[0]
	if name == "copy" {
		// copy(dst, src) rewrites to src.copy(dst).
		recv = data.Args[1]
	}
	c.checkMethodReceiver(e, name, c.typeOf(recv))
}

func (c *checker) checkMethodReceiver(e *ast.Expr, name string, recv types.TypeID) {
	if recv == types.NoTypeID {
		return // cannot prove anything about an untyped receiver
	}
	in := c.table.Types
	ok := false
	var need string
	switch name {
	case "append", "copy":
		ok = in.IsSequence(recv) || in.IsTextual(recv)
		need = "a sequence or textual value"
	case "len":
		ok = in.IsSequence(recv) || in.IsTextual(recv) || in.IsMapping(recv) || in.IsChannel(recv)
		need = "a sequence, textual, mapping or channel value"
	case "cap":
		ok = in.IsSequence(recv) || in.IsChannel(recv)
		need = "a sequence or channel value"
	case "delete":
		ok = in.IsMapping(recv)
		need = "a mapping value"
	case "close":
		ok = in.IsChannel(recv)
		need = "a channel value"
	default:
		return
	}
	if ok {
		return
	}
	c.flagged[e] = true
	diag.ReportError(c.reporter, diag.InvalidBuiltinUsage, e.Span,
		fmt.Sprintf("%s requires %s, but the receiver has type %s",
			name, need, in.String(recv, c.table.Strings))).
		Emit()
}

type arity struct {
	min, max int // max < 0 means unbounded
}

func (a arity) String() string {
	switch {
	case a.max < 0:
		return fmt.Sprintf("at least %d arguments", a.min)
	case a.min == a.max && a.min == 1:
		return "1 argument"
	case a.min == a.max:
		return fmt.Sprintf("%d arguments", a.min)
	default:
		return fmt.Sprintf("%d to %d arguments", a.min, a.max)
	}
}

func methodArity(name string) arity {
	switch name {
	case "append":
		return arity{min: 2, max: -1}
	case "copy", "delete":
		return arity{min: 2, max: 2}
	default: // len, cap, close
		return arity{min: 1, max: 1}
	}
}

func calleeIdent(e *ast.Expr) (string, bool) {
	if e == nil || e.Kind != ast.ExprIdent {
		return "", false
	}
	return e.Data.(*ast.IdentData).Name, true
}
