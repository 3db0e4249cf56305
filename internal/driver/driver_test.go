package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"goat/internal/ast"
	"goat/internal/diag"
	"goat/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func named(name string) *ast.TypeExpr {
	return ast.NamedType(name, span(1, 0, 1))
}

func fnDecl(name string, vis ast.Visibility, file source.FileID, results []*ast.TypeExpr, stmts ...*ast.Stmt) *ast.Decl {
	sp := span(file, 0, 1)
	return &ast.Decl{
		Kind: ast.DeclFunc, Vis: vis, Name: name,
		Span: sp, NameSpan: sp,
		Data: &ast.FuncData{
			Results: results,
			Body:    &ast.Block{Span: sp, Stmts: stmts},
		},
	}
}

func fileOf(path string, id source.FileID, decls ...*ast.Decl) *ast.File {
	return &ast.File{Path: path, ID: id, Decls: decls}
}

func unitOf(files ...*ast.File) *ast.Unit {
	return &ast.Unit{Packages: []*ast.Package{{Name: "app", Files: files}}}
}

// sugaredUnit exercises every rewrite in one pass: a fallible callee, the
// propagation operator and a launched value.
func sugaredUnit() *ast.Unit {
	fetch := fnDecl("fetch", ast.VisPackage, 1, []*ast.TypeExpr{named("string"), named("error")},
		ast.NewReturn([]*ast.Expr{
			ast.NewStringLit("ok", span(1, 10, 14)),
			ast.NewNilLit(span(1, 15, 18)),
		}, span(1, 10, 18)),
	)
	run := fnDecl("run", ast.VisPackage, 1, []*ast.TypeExpr{named("string"), named("error")},
		ast.NewLet([]string{"v"},
			ast.NewPropagate(
				ast.NewCall(ast.NewIdent("fetch", span(1, 20, 25)), nil, span(1, 20, 27)),
				span(1, 20, 28)),
			span(1, 20, 28)),
		ast.NewLet([]string{"p"},
			ast.NewLaunch(
				ast.NewCall(ast.NewIdent("fetch", span(1, 30, 35)), nil, span(1, 30, 37)),
				span(1, 30, 44)),
			span(1, 30, 44)),
		ast.NewReturn([]*ast.Expr{
			ast.NewIdent("v", span(1, 45, 46)),
			ast.NewNilLit(span(1, 47, 50)),
		}, span(1, 45, 50)),
	)
	return unitOf(fileOf("main.goat", 1, fetch, run))
}

// brokenUnit misses the visibility modifier on one declaration per file.
func brokenUnit() *ast.Unit {
	a := fnDecl("first", ast.VisNone, 1, nil)
	b := fnDecl("second", ast.VisNone, 2, nil)
	return unitOf(fileOf("a.goat", 1, a), fileOf("b.goat", 2, b))
}

func TestAnalyzeUnitCleanRun(t *testing.T) {
	res, err := AnalyzeUnit(context.Background(), sugaredUnit(), Options{})
	if err != nil {
		t.Fatalf("Expected no pipeline error, got %v", err)
	}
	if !res.Succeeded() {
		t.Fatalf("Expected a clean run, got: %+v", res.Bag.Items())
	}
	if res.Lowered == nil {
		t.Fatal("Expected the lowered tree on a clean run")
	}
	if res.Lowered == res.Unit {
		t.Error("Expected lowering to build a fresh tree")
	}

	stmts := res.Lowered.Packages[0].Files[0].Decls[1].Data.(*ast.FuncData).Body.Stmts
	// let v, __err0 = fetch(); if; promise ctor; launch; bind; return.
	if len(stmts) != 6 {
		t.Errorf("Expected 6 lowered statements, got %d", len(stmts))
	}
}

func TestAnalyzeUnitWithholdsLoweredTree(t *testing.T) {
	res, err := AnalyzeUnit(context.Background(), brokenUnit(), Options{})
	if err != nil {
		t.Fatalf("Expected no pipeline error, got %v", err)
	}
	if res.Succeeded() {
		t.Fatal("Expected the run to fail")
	}
	if res.Lowered != nil {
		t.Error("Expected no lowered tree when the bag has errors")
	}
	n := 0
	for _, d := range res.Bag.Items() {
		if d.Code == diag.MissingVisibilityModifier {
			n++
		}
	}
	if n != 2 {
		t.Errorf("Expected 2 MissingVisibilityModifier, got %d", n)
	}
}

func TestAnalyzeUnitDeterministicOrder(t *testing.T) {
	ref, err := AnalyzeUnit(context.Background(), brokenUnit(), Options{Jobs: 1})
	if err != nil {
		t.Fatalf("Expected no pipeline error, got %v", err)
	}
	for run := 0; run < 4; run++ {
		res, err := AnalyzeUnit(context.Background(), brokenUnit(), Options{Jobs: 4})
		if err != nil {
			t.Fatalf("Expected no pipeline error, got %v", err)
		}
		got, want := res.Bag.Items(), ref.Bag.Items()
		if len(got) != len(want) {
			t.Fatalf("Expected %d diagnostics, got %d", len(want), len(got))
		}
		for i := range got {
			if got[i].Code != want[i].Code || got[i].Primary != want[i].Primary {
				t.Fatalf("Diagnostic %d differs across worker counts: %+v vs %+v", i, got[i], want[i])
			}
		}
	}
}

func TestLoweredTreeReanalyzesClean(t *testing.T) {
	first, err := AnalyzeUnit(context.Background(), sugaredUnit(), Options{})
	if err != nil || !first.Succeeded() {
		t.Fatalf("Expected a clean first run, got %v / %+v", err, first.Bag.Items())
	}
	second, err := AnalyzeUnit(context.Background(), first.Lowered, Options{})
	if err != nil {
		t.Fatalf("Expected no pipeline error, got %v", err)
	}
	if !second.Succeeded() {
		t.Fatalf("Expected the lowered tree to pass the pipeline, got: %+v", second.Bag.Items())
	}
}

func TestRegisterFilesMirrorsTreeTable(t *testing.T) {
	dir := t.TempDir()
	onDisk := filepath.Join(dir, "a.goat")
	if err := os.WriteFile(onDisk, []byte("pub fn first() {}\n"), 0o644); err != nil {
		t.Fatalf("Expected the fixture write to succeed, got %v", err)
	}

	unit := unitOf(
		fileOf(onDisk, 1, fnDecl("first", ast.VisPublic, 1, nil)),
		fileOf(filepath.Join(dir, "gone.goat"), 2, fnDecl("second", ast.VisPublic, 2, nil)),
	)
	fileSet := source.NewFileSet()
	RegisterFiles(unit, fileSet)

	if fileSet.Len() != 2 {
		t.Fatalf("Expected 2 registered files, got %d", fileSet.Len())
	}
	loaded := fileSet.Get(1)
	if loaded == nil || loaded.Flags&source.FileVirtual != 0 {
		t.Error("Expected the on-disk source to load for real")
	}
	missing := fileSet.Get(2)
	if missing == nil || missing.Flags&source.FileVirtual == 0 {
		t.Error("Expected the missing source to register as virtual")
	}
}

func TestAnalyzeUnitRejectsFileScopeLaunch(t *testing.T) {
	work := fnDecl("work", ast.VisPackage, 1, []*ast.TypeExpr{named("int")},
		ast.NewReturn([]*ast.Expr{ast.NewIntLit(1, span(1, 10, 11))}, span(1, 10, 11)),
	)
	handle := &ast.Decl{
		Kind: ast.DeclVar, Vis: ast.VisPackage, Name: "handle",
		Span: span(1, 20, 26), NameSpan: span(1, 20, 26),
		Data: &ast.VarData{Value: ast.NewLaunch(
			ast.NewCall(ast.NewIdent("work", span(1, 29, 33)), nil, span(1, 29, 35)),
			span(1, 29, 42))},
	}

	res, err := AnalyzeUnit(context.Background(), unitOf(fileOf("main.goat", 1, work, handle)), Options{})
	if err != nil {
		t.Fatalf("Expected no pipeline error, got %v", err)
	}
	if res.Succeeded() {
		t.Fatal("Expected a launch-valued initializer to fail the run")
	}
	if !hasCode(res.Bag, diag.LaunchOutsideFunction) {
		t.Errorf("Expected a LaunchOutsideFunction diagnostic, got: %+v", res.Bag.Items())
	}
	if res.Lowered != nil {
		t.Error("Expected no lowered tree for the failed run")
	}
}

func TestAnalyzeUnitEmptyEnum(t *testing.T) {
	status := &ast.Decl{
		Kind: ast.DeclEnum, Vis: ast.VisPackage, Name: "Status",
		Span: span(1, 0, 6), NameSpan: span(1, 0, 6),
		Data: &ast.EnumData{},
	}

	res, err := AnalyzeUnit(context.Background(), unitOf(fileOf("main.goat", 1, status)), Options{})
	if err != nil {
		t.Fatalf("Expected no pipeline error, got %v", err)
	}
	if res.Succeeded() {
		t.Fatal("Expected a memberless enum to fail the run")
	}
	if !hasCode(res.Bag, diag.InvalidEnumValue) {
		t.Errorf("Expected an InvalidEnumValue diagnostic, got: %+v", res.Bag.Items())
	}
	if res.Lowered != nil {
		t.Error("Expected no lowered tree for the failed run")
	}
}
