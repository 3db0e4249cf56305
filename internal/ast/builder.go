package ast

import (
	"goat/internal/source"
)

// Constructors used by the lowering stages and by tests that build trees in
// memory. The external parser produces the same shapes through the codec.

func NewIdent(name string, sp source.Span) *Expr {
	return &Expr{Kind: ExprIdent, Span: sp, Data: &IdentData{Name: name}}
}

func NewIntLit(v int64, sp source.Span) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Data: &LitData{Kind: LitInt, IntValue: v}}
}

func NewStringLit(v string, sp source.Span) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Data: &LitData{Kind: LitString, StringValue: v}}
}

func NewBoolLit(v bool, sp source.Span) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Data: &LitData{Kind: LitBool, BoolValue: v}}
}

func NewNilLit(sp source.Span) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Data: &LitData{Kind: LitNil}}
}

func NewCall(callee *Expr, args []*Expr, sp source.Span) *Expr {
	return &Expr{Kind: ExprCall, Span: sp, Data: &CallData{Callee: callee, Args: args}}
}

func NewSelector(x *Expr, sel string, sp source.Span) *Expr {
	return &Expr{Kind: ExprSelector, Span: sp, Data: &SelectorData{X: x, Sel: sel, SelSpan: sp}}
}

func NewBinary(op BinOp, left, right *Expr, sp source.Span) *Expr {
	return &Expr{Kind: ExprBinary, Span: sp, Data: &BinaryData{Op: op, Left: left, Right: right}}
}

func NewPropagate(call *Expr, sp source.Span) *Expr {
	return &Expr{Kind: ExprPropagate, Span: sp, Data: &PropagateData{Call: call}}
}

func NewLaunch(call *Expr, sp source.Span) *Expr {
	return &Expr{Kind: ExprLaunch, Span: sp, Data: &LaunchData{Call: call}}
}

func NewLet(names []string, value *Expr, sp source.Span) *Stmt {
	return &Stmt{Kind: StmtLet, Span: sp, Data: &LetData{Names: names, Value: value}}
}

func NewReturn(values []*Expr, sp source.Span) *Stmt {
	return &Stmt{Kind: StmtReturn, Span: sp, Data: &ReturnData{Values: values}}
}

func NewExprStmt(x *Expr) *Stmt {
	return &Stmt{Kind: StmtExpr, Span: x.Span, Data: &ExprStmtData{X: x}}
}

func NewIf(cond *Expr, then *Block, sp source.Span) *Stmt {
	return &Stmt{Kind: StmtIf, Span: sp, Data: &IfData{Cond: cond, Then: then}}
}

func NamedType(name string, sp source.Span) *TypeExpr {
	return &TypeExpr{Kind: TypeName, Span: sp, Name: name}
}

func SliceType(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TypeSlice, Span: elem.Span, Elem: elem}
}

func MapType(key, elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TypeMap, Span: elem.Span, Key: key, Elem: elem}
}

func ChanType(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TypeChan, Span: elem.Span, Elem: elem}
}

func PromiseType(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TypePromise, Span: elem.Span, Elem: elem}
}
