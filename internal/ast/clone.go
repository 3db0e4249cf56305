package ast

import (
	"goat/internal/source"
)

// Deep copies. Lowering clones the parts of the input tree it keeps, so the
// parser's tree stays untouched no matter what the pipeline rewrites.

// CloneUnit deep-copies an entire compilation unit.
func CloneUnit(u *Unit) *Unit {
	if u == nil {
		return nil
	}
	out := &Unit{Packages: make([]*Package, len(u.Packages))}
	for i, p := range u.Packages {
		out.Packages[i] = ClonePackage(p)
	}
	return out
}

// ClonePackage deep-copies a package.
func ClonePackage(p *Package) *Package {
	if p == nil {
		return nil
	}
	out := &Package{Name: p.Name, Files: make([]*File, len(p.Files))}
	for i, f := range p.Files {
		out.Files[i] = CloneFile(f)
	}
	return out
}

// CloneFile deep-copies a file.
func CloneFile(f *File) *File {
	if f == nil {
		return nil
	}
	out := &File{Path: f.Path, ID: f.ID, Span: f.Span}
	for _, imp := range f.Imports {
		cp := *imp
		out.Imports = append(out.Imports, &cp)
	}
	for _, d := range f.Decls {
		out.Decls = append(out.Decls, CloneDecl(d))
	}
	return out
}

// CloneDecl deep-copies a declaration.
func CloneDecl(d *Decl) *Decl {
	if d == nil {
		return nil
	}
	out := &Decl{Kind: d.Kind, Span: d.Span, Vis: d.Vis, Name: d.Name, NameSpan: d.NameSpan}
	switch data := d.Data.(type) {
	case *FuncData:
		fd := &FuncData{Body: CloneBlock(data.Body)}
		for _, p := range data.Params {
			fd.Params = append(fd.Params, Param{Name: p.Name, Span: p.Span, Type: CloneTypeExpr(p.Type)})
		}
		for _, r := range data.Results {
			fd.Results = append(fd.Results, CloneTypeExpr(r))
		}
		out.Data = fd
	case *VarData:
		out.Data = &VarData{Type: CloneTypeExpr(data.Type), Value: CloneExpr(data.Value)}
	case *TypeData:
		out.Data = &TypeData{Underlying: CloneTypeExpr(data.Underlying)}
	case *EnumData:
		ed := &EnumData{Members: make([]EnumMember, len(data.Members))}
		for i, m := range data.Members {
			ed.Members[i] = EnumMember{Name: m.Name, Span: m.Span}
			if m.Ordinal != nil {
				v := *m.Ordinal
				ed.Members[i].Ordinal = &v
			}
		}
		out.Data = ed
	}
	return out
}

// CloneTypeExpr deep-copies a type expression.
func CloneTypeExpr(t *TypeExpr) *TypeExpr {
	if t == nil {
		return nil
	}
	return &TypeExpr{
		Kind: t.Kind,
		Span: t.Span,
		Name: t.Name,
		Key:  CloneTypeExpr(t.Key),
		Elem: CloneTypeExpr(t.Elem),
	}
}

// CloneBlock deep-copies a block.
func CloneBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	out := &Block{Span: b.Span, Stmts: make([]*Stmt, len(b.Stmts))}
	for i, s := range b.Stmts {
		out.Stmts[i] = CloneStmt(s)
	}
	return out
}

// CloneStmt deep-copies a statement.
func CloneStmt(s *Stmt) *Stmt {
	if s == nil {
		return nil
	}
	out := &Stmt{Kind: s.Kind, Span: s.Span}
	switch data := s.Data.(type) {
	case *LetData:
		ld := &LetData{
			Names:     append([]string(nil), data.Names...),
			NameSpans: append([]source.Span(nil), data.NameSpans...),
			Type:      CloneTypeExpr(data.Type),
			Value:     CloneExpr(data.Value),
		}
		out.Data = ld
	case *AssignData:
		out.Data = &AssignData{Target: CloneExpr(data.Target), Value: CloneExpr(data.Value)}
	case *ReturnData:
		rd := &ReturnData{}
		for _, v := range data.Values {
			rd.Values = append(rd.Values, CloneExpr(v))
		}
		out.Data = rd
	case *IfData:
		out.Data = &IfData{Cond: CloneExpr(data.Cond), Then: CloneBlock(data.Then), Else: CloneStmt(data.Else)}
	case *SwitchData:
		sd := &SwitchData{Value: CloneExpr(data.Value), Default: CloneBlock(data.Default)}
		for _, c := range data.Cases {
			nc := SwitchCase{Span: c.Span, Body: CloneBlock(c.Body)}
			for _, v := range c.Values {
				nc.Values = append(nc.Values, CloneExpr(v))
			}
			sd.Cases = append(sd.Cases, nc)
		}
		out.Data = sd
	case *ExprStmtData:
		out.Data = &ExprStmtData{X: CloneExpr(data.X)}
	case *BlockStmtData:
		out.Data = &BlockStmtData{Block: CloneBlock(data.Block)}
	}
	return out
}

// CloneExpr deep-copies an expression.
func CloneExpr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Span: e.Span}
	switch data := e.Data.(type) {
	case *IdentData:
		out.Data = &IdentData{Name: data.Name}
	case *LitData:
		cp := *data
		out.Data = &cp
	case *CallData:
		cd := &CallData{Callee: CloneExpr(data.Callee)}
		for _, a := range data.Args {
			cd.Args = append(cd.Args, CloneExpr(a))
		}
		out.Data = cd
	case *BinaryData:
		out.Data = &BinaryData{Op: data.Op, Left: CloneExpr(data.Left), Right: CloneExpr(data.Right)}
	case *UnaryData:
		out.Data = &UnaryData{Op: data.Op, X: CloneExpr(data.X)}
	case *SelectorData:
		out.Data = &SelectorData{X: CloneExpr(data.X), Sel: data.Sel, SelSpan: data.SelSpan}
	case *IndexData:
		out.Data = &IndexData{X: CloneExpr(data.X), Index: CloneExpr(data.Index)}
	case *PropagateData:
		out.Data = &PropagateData{Call: CloneExpr(data.Call)}
	case *LaunchData:
		out.Data = &LaunchData{Call: CloneExpr(data.Call)}
	}
	return out
}
