package sema

import (
	"goat/internal/ast"
	"goat/internal/builtins"
	"goat/internal/symbols"
	"goat/internal/types"
)

// typeOf computes the type of an expression as far as the checks need.
// NoTypeID means "unknown"; checks treat unknown as unprovable and stay
// silent rather than guessing.
func (c *checker) typeOf(e *ast.Expr) types.TypeID {
	if e == nil {
		return types.NoTypeID
	}
	bt := c.table.Types.Builtins()
	switch data := e.Data.(type) {
	case *ast.LitData:
		switch data.Kind {
		case ast.LitInt:
			return bt.Int
		case ast.LitFloat:
			return bt.Float
		case ast.LitString:
			return bt.String
		case ast.LitBool:
			return bt.Bool
		}
		return types.NoTypeID
	case *ast.IdentData:
		if t, ok := c.localType(data.Name); ok {
			return t
		}
		return c.symbolValueType(e)
	case *ast.SelectorData:
		// Enum member reference carries the enum type.
		if id, ok := c.refs[data.X]; ok {
			if sym := c.table.Get(id); sym != nil && sym.Kind == symbols.SymbolEnum {
				return sym.Type
			}
		}
		return c.symbolValueType(e)
	case *ast.CallData:
		results := c.resultsOf(e)
		if len(results) == 1 {
			return results[0]
		}
		return types.NoTypeID
	case *ast.BinaryData:
		if data.Op.IsComparison() || data.Op == ast.OpAnd || data.Op == ast.OpOr {
			return bt.Bool
		}
		if t := c.typeOf(data.Left); t != types.NoTypeID {
			return t
		}
		return c.typeOf(data.Right)
	case *ast.UnaryData:
		if data.Op == ast.OpNot {
			return bt.Bool
		}
		return c.typeOf(data.X)
	case *ast.IndexData:
		base := c.table.Types.Underlying(c.typeOf(data.X))
		t, ok := c.table.Types.Lookup(base)
		if !ok {
			return types.NoTypeID
		}
		switch t.Kind {
		case types.KindSlice, types.KindMap:
			return t.Elem
		case types.KindString:
			return bt.String
		}
		return types.NoTypeID
	case *ast.PropagateData:
		// The operator strips the trailing error from the call's results.
		results := c.resultsOf(data.Call)
		if len(results) >= 2 && c.table.Types.IsError(results[len(results)-1]) {
			if len(results) == 2 {
				return results[0]
			}
			return types.NoTypeID
		}
		return types.NoTypeID
	case *ast.LaunchData:
		results := c.resultsOf(data.Call)
		elem := types.NoTypeID
		if len(results) > 0 && !c.table.Types.IsError(results[0]) {
			elem = results[0]
		}
		return c.table.Types.Promise(elem)
	}
	return types.NoTypeID
}

// symbolValueType returns the value type of a resolved reference.
func (c *checker) symbolValueType(e *ast.Expr) types.TypeID {
	id, ok := c.refs[e]
	if !ok {
		return types.NoTypeID
	}
	sym := c.table.Get(id)
	if sym == nil {
		return types.NoTypeID
	}
	switch sym.Kind {
	case symbols.SymbolVar, symbols.SymbolConst:
		return sym.Type
	}
	return types.NoTypeID
}

// resultsOf returns the result types a call or launch produces, in order.
func (c *checker) resultsOf(e *ast.Expr) []types.TypeID {
	if e == nil {
		return nil
	}
	switch data := e.Data.(type) {
	case *ast.CallData:
		if name, ok := calleeIdent(data.Callee); ok {
			if class, eliminated := builtins.Lookup(name); eliminated {
				return c.freeBuiltinResults(name, class, data)
			}
		}
		if sel, ok := data.Callee.Data.(*ast.SelectorData); ok && data.Callee.Kind == ast.ExprSelector {
			if class, eliminated := builtins.Lookup(sel.Sel); eliminated && class == builtins.ClassMethod {
				return c.methodBuiltinResults(sel.Sel, c.typeOf(sel.X))
			}
		}
		if sig := c.calleeSignature(e); sig != nil {
			return sig.Results
		}
		return nil
	case *ast.PropagateData:
		results := c.resultsOf(data.Call)
		if n := len(results); n > 0 && c.table.Types.IsError(results[n-1]) {
			return results[:n-1]
		}
		return results
	case *ast.LaunchData:
		return []types.TypeID{c.typeOf(e)}
	}
	if t := c.typeOf(e); t != types.NoTypeID {
		return []types.TypeID{t}
	}
	return nil
}

func (c *checker) freeBuiltinResults(name string, class builtins.Class, data *ast.CallData) []types.TypeID {
	if class == builtins.ClassMethod && len(data.Args) > 0 {
		return c.methodBuiltinResults(name, c.typeOf(data.Args[0]))
	}
	bt := c.table.Types.Builtins()
	switch name {
	case "real", "imag":
		return []types.TypeID{bt.Float}
	case "error":
		return []types.TypeID{bt.Error}
	}
	return nil
}

func (c *checker) methodBuiltinResults(name string, recv types.TypeID) []types.TypeID {
	bt := c.table.Types.Builtins()
	switch name {
	case "len", "cap", "copy":
		return []types.TypeID{bt.Int}
	case "append":
		if recv != types.NoTypeID {
			return []types.TypeID{recv}
		}
	}
	return nil
}
