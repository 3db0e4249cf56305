package symbols

import (
	"testing"

	"goat/internal/ast"
	"goat/internal/diag"
	"goat/internal/source"
	"goat/internal/types"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func varDecl(name string, vis ast.Visibility, sp source.Span) *ast.Decl {
	return &ast.Decl{
		Kind: ast.DeclVar, Vis: vis, Name: name,
		Span: sp, NameSpan: sp,
		Data: &ast.VarData{Type: ast.NamedType("int", sp)},
	}
}

func funcDecl(name string, vis ast.Visibility, sp source.Span, params []*ast.TypeExpr, results []*ast.TypeExpr) *ast.Decl {
	fd := &ast.FuncData{Body: &ast.Block{Span: sp}}
	for i, p := range params {
		fd.Params = append(fd.Params, ast.Param{Name: string(rune('a' + i)), Span: sp, Type: p})
	}
	fd.Results = results
	return &ast.Decl{
		Kind: ast.DeclFunc, Vis: vis, Name: name,
		Span: sp, NameSpan: sp, Data: fd,
	}
}

func enumDecl(name string, vis ast.Visibility, sp source.Span, members ...ast.EnumMember) *ast.Decl {
	return &ast.Decl{
		Kind: ast.DeclEnum, Vis: vis, Name: name,
		Span: sp, NameSpan: sp,
		Data: &ast.EnumData{Members: members},
	}
}

func unitOf(pkgs ...*ast.Package) *ast.Unit {
	return &ast.Unit{Packages: pkgs}
}

func collectAll(unit *ast.Unit) *Result {
	var collections []*FileCollection
	for _, pkg := range unit.Packages {
		for _, f := range pkg.Files {
			collections = append(collections, CollectFile(pkg.Name, f, 100))
		}
	}
	return Merge(unit, collections, nil, 100)
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func TestCollectMissingVisibility(t *testing.T) {
	f := &ast.File{Path: "main.goat", ID: 0, Decls: []*ast.Decl{
		{Kind: ast.DeclVar, Name: "count", Span: span(0, 0, 9), NameSpan: span(0, 4, 9),
			Data: &ast.VarData{Type: ast.NamedType("int", span(0, 0, 3))}},
	}}
	c := CollectFile("app", f, 100)
	if got := countCode(c.Bag, diag.MissingVisibilityModifier); got != 1 {
		t.Errorf("Expected 1 MissingVisibilityModifier, got %d", got)
	}
}

func TestCollectReservedNames(t *testing.T) {
	f := &ast.File{Path: "main.goat", ID: 0, Decls: []*ast.Decl{
		varDecl("len", ast.VisPackage, span(0, 0, 3)),
		funcDecl("panic", ast.VisPublic, span(0, 10, 15), nil, nil),
		enumDecl("Status", ast.VisPackage, span(0, 20, 26),
			ast.EnumMember{Name: "copy", Span: span(0, 27, 31)},
		),
	}}
	c := CollectFile("app", f, 100)
	// var len, func panic, and the enum member copy are all reserved.
	if got := countCode(c.Bag, diag.ReservedIdentifierUsed); got != 3 {
		t.Errorf("Expected 3 ReservedIdentifierUsed, got %d", got)
	}
}

func TestMergeDuplicateMatrix(t *testing.T) {
	cases := []struct {
		name     string
		visA     ast.Visibility
		visB     ast.Visibility
		sameFile bool
		collide  bool
	}{
		{"private vs private, different files", ast.VisPrivate, ast.VisPrivate, false, false},
		{"private vs private, same file", ast.VisPrivate, ast.VisPrivate, true, true},
		{"private vs package", ast.VisPrivate, ast.VisPackage, false, true},
		{"package vs public", ast.VisPackage, ast.VisPublic, false, true},
		{"public vs public", ast.VisPublic, ast.VisPublic, false, true},
	}
	for _, tc := range cases {
		a := varDecl("shared", tc.visA, span(0, 0, 6))
		b := varDecl("shared", tc.visB, span(1, 0, 6))
		fileA := &ast.File{Path: "a.goat", ID: 0, Decls: []*ast.Decl{a}}
		var fileB *ast.File
		if tc.sameFile {
			b.Span = span(0, 10, 16)
			b.NameSpan = b.Span
			fileA.Decls = append(fileA.Decls, b)
		} else {
			fileB = &ast.File{Path: "b.goat", ID: 1, Decls: []*ast.Decl{b}}
		}
		pkg := &ast.Package{Name: "app", Files: []*ast.File{fileA}}
		if fileB != nil {
			pkg.Files = append(pkg.Files, fileB)
		}

		res := collectAll(unitOf(pkg))
		got := countCode(res.Bag, diag.DuplicateDeclaration)
		want := 0
		if tc.collide {
			want = 1
		}
		if got != want {
			t.Errorf("%s: expected %d DuplicateDeclaration, got %d", tc.name, want, got)
		}
	}
}

func TestMergeFunctionSignature(t *testing.T) {
	sp := span(0, 0, 5)
	d := funcDecl("fetch", ast.VisPublic, sp,
		[]*ast.TypeExpr{ast.NamedType("string", sp)},
		[]*ast.TypeExpr{ast.NamedType("int", sp), ast.NamedType("error", sp)},
	)
	pkg := &ast.Package{Name: "app", Files: []*ast.File{
		{Path: "main.goat", ID: 0, Decls: []*ast.Decl{d}},
	}}
	res := collectAll(unitOf(pkg))

	id, ok := res.SymbolOf[d]
	if !ok {
		t.Fatal("Expected a symbol for the function declaration")
	}
	sym := res.Table.Get(id)
	if sym.Kind != SymbolFunction || sym.Sig == nil {
		t.Fatalf("Expected a function symbol with a signature, got %+v", sym)
	}
	if len(sym.Sig.Params) != 1 || len(sym.Sig.Results) != 2 {
		t.Fatalf("Expected 1 param and 2 results, got %d and %d", len(sym.Sig.Params), len(sym.Sig.Results))
	}
	if !res.Table.Types.IsError(sym.Sig.FinalResult()) {
		t.Error("Expected the final result to be the error type")
	}
}

func TestMergeEnumValidation(t *testing.T) {
	bad := int64(0)
	d := enumDecl("Status", ast.VisPackage, span(0, 0, 6),
		ast.EnumMember{Name: "Idle", Span: span(0, 10, 14)},
		ast.EnumMember{Name: "Busy", Span: span(0, 20, 24), Ordinal: &bad},
	)
	pkg := &ast.Package{Name: "app", Files: []*ast.File{
		{Path: "main.goat", ID: 0, Decls: []*ast.Decl{d}},
	}}
	res := collectAll(unitOf(pkg))

	if got := countCode(res.Bag, diag.InvalidEnumValue); got != 1 {
		t.Errorf("Expected 1 InvalidEnumValue for the ordinal collision, got %d", got)
	}
	enumType := res.EnumTypes[d]
	if res.Table.Types.EnumState(enumType) != types.EnumRejected {
		t.Errorf("Expected the enum to be rejected, got %s", res.Table.Types.EnumState(enumType))
	}
}

func TestMergeUsableEnum(t *testing.T) {
	d := enumDecl("Status", ast.VisPublic, span(0, 0, 6),
		ast.EnumMember{Name: "Idle", Span: span(0, 10, 14)},
		ast.EnumMember{Name: "Busy", Span: span(0, 20, 24)},
		ast.EnumMember{Name: "Done", Span: span(0, 30, 34)},
	)
	pkg := &ast.Package{Name: "app", Files: []*ast.File{
		{Path: "main.goat", ID: 0, Decls: []*ast.Decl{d}},
	}}
	res := collectAll(unitOf(pkg))

	if res.Bag.HasErrors() {
		t.Fatalf("Expected a clean collection, got %d diagnostics", res.Bag.Len())
	}
	enumType := res.EnumTypes[d]
	if res.Table.Types.EnumState(enumType) != types.EnumUsable {
		t.Fatalf("Expected a usable enum, got %s", res.Table.Types.EnumState(enumType))
	}
	// Implicit ordinals follow declaration order.
	m, ok := res.Table.Types.MemberByName(enumType, res.Table.Strings.Intern("Done"))
	if !ok || m.Ordinal != 2 {
		t.Errorf("Expected Done with ordinal 2, got %+v (ok=%v)", m, ok)
	}
}

func TestMergeDeterministicOrder(t *testing.T) {
	build := func() *Result {
		pkg := &ast.Package{Name: "app", Files: []*ast.File{
			{Path: "a.goat", ID: 0, Decls: []*ast.Decl{
				varDecl("first", ast.VisPackage, span(0, 0, 5)),
				funcDecl("second", ast.VisPublic, span(0, 10, 16), nil, nil),
			}},
			{Path: "b.goat", ID: 1, Decls: []*ast.Decl{
				varDecl("third", ast.VisPrivate, span(1, 0, 5)),
			}},
		}}
		return collectAll(unitOf(pkg))
	}

	r1, r2 := build(), build()
	if r1.Table.Len() != r2.Table.Len() {
		t.Fatalf("Expected equal symbol counts, got %d and %d", r1.Table.Len(), r2.Table.Len())
	}
	for i := 1; i <= r1.Table.Len(); i++ {
		a := r1.Table.Get(SymbolID(i))
		b := r2.Table.Get(SymbolID(i))
		if a.Name != b.Name || a.Kind != b.Kind || a.File != b.File {
			t.Errorf("Symbol %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestMergeEmptyEnumRejected(t *testing.T) {
	d := enumDecl("Status", ast.VisPackage, span(0, 0, 6))
	pkg := &ast.Package{Name: "app", Files: []*ast.File{
		{Path: "main.goat", ID: 0, Decls: []*ast.Decl{d}},
	}}
	res := collectAll(unitOf(pkg))

	if got := countCode(res.Bag, diag.InvalidEnumValue); got != 1 {
		t.Errorf("Expected 1 InvalidEnumValue for the memberless enum, got %d", got)
	}
	enumType := res.EnumTypes[d]
	if res.Table.Types.EnumState(enumType) != types.EnumRejected {
		t.Errorf("Expected the enum to be rejected, got %s", res.Table.Types.EnumState(enumType))
	}
}
