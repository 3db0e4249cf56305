package lower

import (
	"goat/internal/ast"
	"goat/internal/builtins"
	"goat/internal/source"
	"goat/internal/types"
)

// lowerEnum expands a usable enum declaration into the sugar-free shape:
// a named integer type, one constant per member, and the two generated
// helpers emission relies on. Rejected declarations are copied through
// untouched; their diagnostics already doom the run.
func (lw *Lowerer) lowerEnum(d *ast.Decl, data *ast.EnumData) []*ast.Decl {
	typeID, ok := lw.enumTypes[d]
	if !ok || lw.table.Types.EnumState(typeID) != types.EnumUsable {
		return []*ast.Decl{ast.CloneDecl(d)}
	}
	info, ok := lw.table.Types.EnumInfoFor(typeID)
	if !ok {
		return []*ast.Decl{ast.CloneDecl(d)}
	}
	enumName := d.Name
	sp := d.Span

	out := make([]*ast.Decl, 0, len(info.Members)+3)
	out = append(out, &ast.Decl{
		Kind:     ast.DeclType,
		Span:     sp,
		Vis:      d.Vis,
		Name:     enumName,
		NameSpan: d.NameSpan,
		Data:     &ast.TypeData{Underlying: ast.NamedType("int", sp)},
	})
	for _, m := range info.Members {
		memberName := lw.table.Strings.MustLookup(m.Name)
		out = append(out, &ast.Decl{
			Kind:     ast.DeclConst,
			Span:     m.Span,
			Vis:      d.Vis,
			Name:     mangleMember(enumName, memberName),
			NameSpan: m.Span,
			Data: &ast.VarData{
				Type:  ast.NamedType(enumName, m.Span),
				Value: ast.NewIntLit(m.Ordinal, m.Span),
			},
		})
	}
	out = append(out, lw.genAllValues(d, enumName, info))
	out = append(out, lw.genFromString(d, enumName, info))
	return out
}

// genAllValues builds:
//
//	func Status_allValues() []Status { return goat.enumValues(Status_A, ...) }
func (lw *Lowerer) genAllValues(d *ast.Decl, enumName string, info *types.EnumInfo) *ast.Decl {
	sp := d.Span
	args := make([]*ast.Expr, 0, len(info.Members))
	for _, m := range info.Members {
		memberName := lw.table.Strings.MustLookup(m.Name)
		args = append(args, ast.NewIdent(mangleMember(enumName, memberName), m.Span))
	}
	call := ast.NewCall(
		ast.NewSelector(ast.NewIdent(builtins.Namespace, sp), "enumValues", sp),
		args, sp)
	body := &ast.Block{Span: sp, Stmts: []*ast.Stmt{
		ast.NewReturn([]*ast.Expr{call}, sp),
	}}
	return &ast.Decl{
		Kind:     ast.DeclFunc,
		Span:     sp,
		Vis:      d.Vis,
		Name:     enumName + "_allValues",
		NameSpan: d.NameSpan,
		Data: &ast.FuncData{
			Results: []*ast.TypeExpr{ast.SliceType(ast.NamedType(enumName, sp))},
			Body:    body,
		},
	}
}

// genFromString builds the fallible name lookup:
//
//	func Status_fromString(name string) (Status, error) {
//		switch name {
//		case "Idle":
//			return Status_Idle, nil
//		...
//		}
//		return Status_Idle, goat.enumError(name, "Status")
//	}
//
// The miss arm is a runtime failure result, never a trap; the zero member
// fills the value position.
func (lw *Lowerer) genFromString(d *ast.Decl, enumName string, info *types.EnumInfo) *ast.Decl {
	sp := d.Span
	sw := &ast.SwitchData{Value: ast.NewIdent("name", sp)}
	for _, m := range info.Members {
		memberName := lw.table.Strings.MustLookup(m.Name)
		sw.Cases = append(sw.Cases, ast.SwitchCase{
			Span:   m.Span,
			Values: []*ast.Expr{ast.NewStringLit(memberName, m.Span)},
			Body: &ast.Block{Span: m.Span, Stmts: []*ast.Stmt{
				ast.NewReturn([]*ast.Expr{
					ast.NewIdent(mangleMember(enumName, memberName), m.Span),
					ast.NewNilLit(m.Span),
				}, m.Span),
			}},
		})
	}

	zeroName := mangleMember(enumName, lw.table.Strings.MustLookup(info.Members[0].Name))
	missErr := ast.NewCall(
		ast.NewSelector(ast.NewIdent(builtins.Namespace, sp), "enumError", sp),
		[]*ast.Expr{ast.NewIdent("name", sp), ast.NewStringLit(enumName, sp)},
		sp)
	body := &ast.Block{Span: sp, Stmts: []*ast.Stmt{
		{Kind: ast.StmtSwitch, Span: sp, Data: sw},
		ast.NewReturn([]*ast.Expr{ast.NewIdent(zeroName, sp), missErr}, sp),
	}}
	return &ast.Decl{
		Kind:     ast.DeclFunc,
		Span:     sp,
		Vis:      d.Vis,
		Name:     enumName + "_fromString",
		NameSpan: d.NameSpan,
		Data: &ast.FuncData{
			Params: []ast.Param{{
				Name: "name",
				Span: sp,
				Type: ast.NamedType("string", sp),
			}},
			Results: []*ast.TypeExpr{
				ast.NamedType(enumName, sp),
				ast.NamedType("error", sp),
			},
			Body: body,
		},
	}
}

// zeroExpr builds the zero value expression for a declared result type,
// used in the propagation early return.
func (lw *Lowerer) zeroExpr(t types.TypeID, sp source.Span) *ast.Expr {
	in := lw.table.Types
	switch in.KindOf(t) {
	case types.KindInt:
		return ast.NewIntLit(0, sp)
	case types.KindFloat:
		return &ast.Expr{Kind: ast.ExprLit, Span: sp, Data: &ast.LitData{Kind: ast.LitFloat}}
	case types.KindString:
		return ast.NewStringLit("", sp)
	case types.KindBool:
		return ast.NewBoolLit(false, sp)
	case types.KindEnum:
		if in.EnumState(t) == types.EnumUsable {
			if zero, ok := in.ZeroMember(t); ok {
				if info, ok := in.EnumInfoFor(t); ok {
					enumName := lw.table.Strings.MustLookup(info.Name)
					return ast.NewIdent(mangleMember(enumName, lw.table.Strings.MustLookup(zero.Name)), sp)
				}
			}
		}
		return ast.NewNilLit(sp)
	case types.KindNamed:
		if tt, ok := in.Lookup(t); ok && tt.Elem != types.NoTypeID {
			return lw.zeroExpr(tt.Elem, sp)
		}
		return ast.NewNilLit(sp)
	default:
		// error, slices, mappings, channels, promises and unknowns all zero
		// to nil.
		return ast.NewNilLit(sp)
	}
}
