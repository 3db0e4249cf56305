package ast

import (
	"goat/internal/source"
)

// TypeKind enumerates syntactic type expression kinds.
type TypeKind uint8

const (
	// TypeName references a builtin or declared type by name.
	TypeName TypeKind = iota
	// TypeSlice is []Elem.
	TypeSlice
	// TypeMap is map[Key]Elem.
	TypeMap
	// TypeChan is chan Elem.
	TypeChan
	// TypePromise is promise<Elem>, the handle type produced by launch
	// lowering. It only ever appears in lowered trees.
	TypePromise
)

// TypeExpr is a syntactic type as written in the source. Name resolution into
// the semantic type model happens in sema.
type TypeExpr struct {
	Kind TypeKind
	Span source.Span
	Name string    // TypeName
	Key  *TypeExpr // TypeMap
	Elem *TypeExpr // TypeSlice, TypeMap, TypeChan, TypePromise
}

func (t *TypeExpr) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypeName:
		return t.Name
	case TypeSlice:
		return "[]" + t.Elem.String()
	case TypeMap:
		return "map[" + t.Key.String() + "]" + t.Elem.String()
	case TypeChan:
		return "chan " + t.Elem.String()
	case TypePromise:
		return "promise<" + t.Elem.String() + ">"
	default:
		return "<bad type>"
	}
}
