package ast

import (
	"goat/internal/source"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtLet declares one or more local bindings from a single initializer.
	StmtLet StmtKind = iota
	// StmtAssign assigns to an existing location.
	StmtAssign
	// StmtReturn returns from the enclosing function.
	StmtReturn
	// StmtIf is a conditional with an optional else branch.
	StmtIf
	// StmtSwitch switches over a value.
	StmtSwitch
	// StmtExpr evaluates an expression for its effects.
	StmtExpr
	// StmtBlock is a nested block.
	StmtBlock
)

func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "Let"
	case StmtAssign:
		return "Assign"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtSwitch:
		return "Switch"
	case StmtExpr:
		return "Expr"
	case StmtBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

// Stmt is a statement node.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the kind-specific payload of a statement.
type StmtData interface {
	stmtData()
}

// Block is a brace-delimited statement sequence.
type Block struct {
	Span  source.Span
	Stmts []*Stmt
}

// LetData declares local bindings. Multiple names bind the components of a
// tuple-valued initializer, as in `let v, err = f()`.
type LetData struct {
	Names     []string
	NameSpans []source.Span
	Type      *TypeExpr
	Value     *Expr
}

func (*LetData) stmtData() {}

// AssignData assigns Value to Target.
type AssignData struct {
	Target *Expr
	Value  *Expr
}

func (*AssignData) stmtData() {}

// ReturnData returns zero or more values.
type ReturnData struct {
	Values []*Expr
}

func (*ReturnData) stmtData() {}

// IfData is a conditional. Else is nil, a StmtBlock, or another StmtIf.
type IfData struct {
	Cond *Expr
	Then *Block
	Else *Stmt
}

func (*IfData) stmtData() {}

// SwitchCase is one case arm; Values lists the matched expressions.
type SwitchCase struct {
	Span   source.Span
	Values []*Expr
	Body   *Block
}

// SwitchData switches over Value. Default is the optional default arm.
type SwitchData struct {
	Value   *Expr
	Cases   []SwitchCase
	Default *Block
}

func (*SwitchData) stmtData() {}

// ExprStmtData evaluates X for its effects.
type ExprStmtData struct {
	X *Expr
}

func (*ExprStmtData) stmtData() {}

// BlockStmtData nests a block as a statement.
type BlockStmtData struct {
	Block *Block
}

func (*BlockStmtData) stmtData() {}
