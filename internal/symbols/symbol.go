package symbols

import (
	"goat/internal/ast"
	"goat/internal/source"
	"goat/internal/types"
)

// SymbolID references a symbol in the table. IDs are 1-based; 0 is invalid.
type SymbolID uint32

const NoSymbolID SymbolID = 0

func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolVar
	SymbolConst
	SymbolType
	SymbolEnum
	SymbolBuiltin // prelude namespace entries, e.g. the goat runtime package
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolVar:
		return "variable"
	case SymbolConst:
		return "constant"
	case SymbolType:
		return "type"
	case SymbolEnum:
		return "enum"
	case SymbolBuiltin:
		return "builtin"
	default:
		return "invalid"
	}
}

// Signature is a function's parameter and result shape.
type Signature struct {
	Params  []types.TypeID
	Results []types.TypeID
}

// FinalResult returns the last declared result type, or NoTypeID.
func (s *Signature) FinalResult() types.TypeID {
	if s == nil || len(s.Results) == 0 {
		return types.NoTypeID
	}
	return s.Results[len(s.Results)-1]
}

// Symbol describes one declared name. Visibility is an explicit property;
// the casing of the name is presentation only and is never consulted.
type Symbol struct {
	Name    source.StringID
	Kind    SymbolKind
	Vis     ast.Visibility
	File    source.FileID // declaring file
	Package string        // declaring package
	Span    source.Span   // name span for diagnostics
	Type    types.TypeID  // value type (var/const) or named type (type/enum)
	Sig     *Signature    // functions only
	Decl    *ast.Decl     // declaration node, read-only
}
