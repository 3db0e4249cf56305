package ast

import (
	"goat/internal/source"
)

// DeclKind enumerates top-level declaration kinds.
type DeclKind uint8

const (
	DeclFunc DeclKind = iota
	DeclVar
	DeclConst
	DeclType
	DeclEnum
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunc:
		return "func"
	case DeclVar:
		return "var"
	case DeclConst:
		return "const"
	case DeclType:
		return "type"
	case DeclEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Decl is a named top-level declaration.
type Decl struct {
	Kind     DeclKind
	Span     source.Span
	Vis      Visibility
	Name     string
	NameSpan source.Span
	Data     DeclData
}

// DeclData is the kind-specific payload of a declaration.
type DeclData interface {
	declData()
}

// Param is a function parameter.
type Param struct {
	Name string
	Span source.Span
	Type *TypeExpr
}

// FuncData holds a function's signature and body.
type FuncData struct {
	Params  []Param
	Results []*TypeExpr
	Body    *Block
}

func (*FuncData) declData() {}

// VarData holds a variable or constant declaration; either Type or Value may
// be absent, not both.
type VarData struct {
	Type  *TypeExpr
	Value *Expr
}

func (*VarData) declData() {}

// TypeData holds a named type declaration over an underlying type.
type TypeData struct {
	Underlying *TypeExpr
}

func (*TypeData) declData() {}

// EnumMember is one declared member of an enum type. Ordinal is the optional
// explicit value; when absent the declaration position defines it.
type EnumMember struct {
	Name    string
	Span    source.Span
	Ordinal *int64
}

// EnumData holds an enum declaration's member list in declaration order.
type EnumData struct {
	Members []EnumMember
}

func (*EnumData) declData() {}
