package ast

import (
	"goat/internal/source"
)

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	// ExprIdent is an unqualified name reference.
	ExprIdent ExprKind = iota
	// ExprLit is a literal.
	ExprLit
	// ExprCall is a function or method call.
	ExprCall
	// ExprBinary is a binary operation.
	ExprBinary
	// ExprUnary is a unary operation.
	ExprUnary
	// ExprSelector is X.Sel: package member, enum member, or method.
	ExprSelector
	// ExprIndex is X[Index].
	ExprIndex
	// ExprPropagate is the error-propagation operator applied to a call.
	ExprPropagate
	// ExprLaunch starts the callee concurrently; as a value it denotes the
	// promise handle for the eventual result.
	ExprLaunch
)

func (k ExprKind) String() string {
	switch k {
	case ExprIdent:
		return "Ident"
	case ExprLit:
		return "Lit"
	case ExprCall:
		return "Call"
	case ExprBinary:
		return "Binary"
	case ExprUnary:
		return "Unary"
	case ExprSelector:
		return "Selector"
	case ExprIndex:
		return "Index"
	case ExprPropagate:
		return "Propagate"
	case ExprLaunch:
		return "Launch"
	default:
		return "Unknown"
	}
}

// Expr is an expression node.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData
}

// ExprData is the kind-specific payload of an expression.
type ExprData interface {
	exprData()
}

// IdentData names a symbol.
type IdentData struct {
	Name string
}

func (*IdentData) exprData() {}

// LitKind enumerates literal kinds.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitBool
	LitNil
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitString:
		return "string"
	case LitBool:
		return "bool"
	case LitNil:
		return "nil"
	default:
		return "unknown"
	}
}

// LitData holds a literal value. Text preserves the source spelling for
// numeric literals.
type LitData struct {
	Kind        LitKind
	Text        string
	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}

func (*LitData) exprData() {}

// CallData is a call with positional arguments.
type CallData struct {
	Callee *Expr
	Args   []*Expr
}

func (*CallData) exprData() {}

// BinOp enumerates binary operators.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

// IsComparison reports whether the operator compares its operands.
func (op BinOp) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// BinaryData is Left Op Right.
type BinaryData struct {
	Op    BinOp
	Left  *Expr
	Right *Expr
}

func (*BinaryData) exprData() {}

// UnOp enumerates unary operators.
type UnOp uint8

const (
	OpNeg UnOp = iota
	OpNot
)

func (op UnOp) String() string {
	switch op {
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	default:
		return "?"
	}
}

// UnaryData is Op X.
type UnaryData struct {
	Op UnOp
	X  *Expr
}

func (*UnaryData) exprData() {}

// SelectorData is X.Sel.
type SelectorData struct {
	X       *Expr
	Sel     string
	SelSpan source.Span
}

func (*SelectorData) exprData() {}

// IndexData is X[Index].
type IndexData struct {
	X     *Expr
	Index *Expr
}

func (*IndexData) exprData() {}

// PropagateData wraps the call the operator applies to.
type PropagateData struct {
	Call *Expr
}

func (*PropagateData) exprData() {}

// LaunchData wraps the call the launch expression starts.
type LaunchData struct {
	Call *Expr
}

func (*LaunchData) exprData() {}
