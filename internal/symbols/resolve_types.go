package symbols

import (
	"strings"

	"goat/internal/ast"
	"goat/internal/types"
)

// ResolveTypeExpr resolves a syntactic type against the table. Builtins win
// over declarations; dotted names ("util.Level") resolve in the named
// package. Unresolvable types yield NoTypeID; the reference diagnostics for
// them come from the resolver walk, not from here.
func (t *Table) ResolveTypeExpr(pkg string, te *ast.TypeExpr) types.TypeID {
	if te == nil {
		return types.NoTypeID
	}
	switch te.Kind {
	case ast.TypeName:
		return t.resolveTypeName(pkg, te.Name)
	case ast.TypeSlice:
		if elem := t.ResolveTypeExpr(pkg, te.Elem); elem != types.NoTypeID {
			return t.Types.Slice(elem)
		}
	case ast.TypeMap:
		key := t.ResolveTypeExpr(pkg, te.Key)
		elem := t.ResolveTypeExpr(pkg, te.Elem)
		if key != types.NoTypeID && elem != types.NoTypeID {
			return t.Types.Map(key, elem)
		}
	case ast.TypeChan:
		if elem := t.ResolveTypeExpr(pkg, te.Elem); elem != types.NoTypeID {
			return t.Types.Chan(elem)
		}
	case ast.TypePromise:
		if elem := t.ResolveTypeExpr(pkg, te.Elem); elem != types.NoTypeID {
			return t.Types.Promise(elem)
		}
	}
	return types.NoTypeID
}

func (t *Table) resolveTypeName(pkg, name string) types.TypeID {
	b := t.Types.Builtins()
	switch name {
	case "bool":
		return b.Bool
	case "int":
		return b.Int
	case "float":
		return b.Float
	case "string":
		return b.String
	case "error":
		return b.Error
	}

	if i := strings.IndexByte(name, '.'); i >= 0 {
		pkg, name = name[:i], name[i+1:]
	}
	nameID, ok := t.Strings.LookupID(name)
	if !ok {
		return types.NoTypeID
	}
	for _, id := range t.Candidates(pkg, nameID) {
		sym := t.Get(id)
		if sym.Kind == SymbolType || sym.Kind == SymbolEnum {
			return sym.Type
		}
	}
	return types.NoTypeID
}
