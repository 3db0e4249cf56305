package sema

import (
	"testing"

	"goat/internal/ast"
	"goat/internal/diag"
	"goat/internal/source"
	"goat/internal/symbols"
)

func span(start, end uint32) source.Span {
	return source.Span{File: 0, Start: start, End: end}
}

func fnDecl(name string, params []ast.Param, results []*ast.TypeExpr, stmts ...*ast.Stmt) *ast.Decl {
	sp := span(0, 1)
	return &ast.Decl{
		Kind: ast.DeclFunc, Vis: ast.VisPackage, Name: name,
		Span: sp, NameSpan: sp,
		Data: &ast.FuncData{
			Params:  params,
			Results: results,
			Body:    &ast.Block{Span: sp, Stmts: stmts},
		},
	}
}

func enumDecl(name string, members ...string) *ast.Decl {
	sp := span(0, 1)
	data := &ast.EnumData{}
	for i, m := range members {
		data.Members = append(data.Members, ast.EnumMember{Name: m, Span: span(uint32(10+i), uint32(12+i))})
	}
	return &ast.Decl{
		Kind: ast.DeclEnum, Vis: ast.VisPackage, Name: name,
		Span: sp, NameSpan: sp, Data: data,
	}
}

func named(name string) *ast.TypeExpr {
	return ast.NamedType(name, span(0, 1))
}

func param(name string, t *ast.TypeExpr) ast.Param {
	return ast.Param{Name: name, Span: span(0, 1), Type: t}
}

// checkDecls runs collection, resolution and the semantic checks over one
// single-file package.
func checkDecls(t *testing.T, opts Options, decls ...*ast.Decl) (*Result, *symbols.Result) {
	t.Helper()
	f := &ast.File{Path: "main.goat", ID: 0, Decls: decls}
	pkg := &ast.Package{Name: "app", Files: []*ast.File{f}}
	unit := &ast.Unit{Packages: []*ast.Package{pkg}}

	collection := symbols.CollectFile(pkg.Name, f, 100)
	collect := symbols.Merge(unit, []*symbols.FileCollection{collection}, nil, 100)
	if collect.Bag.HasErrors() {
		t.Fatalf("Expected clean collection, got: %+v", collect.Bag.Items())
	}
	resolved := symbols.ResolveFile(collect.Table, pkg, f, 100)
	if resolved.Bag.HasErrors() {
		t.Fatalf("Expected clean resolution, got: %+v", resolved.Bag.Items())
	}
	if opts.MaxDiagnostics == 0 {
		opts.MaxDiagnostics = 100
	}
	return CheckUnit(unit, collect, resolved.Refs, opts), collect
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

func call(name string, args ...*ast.Expr) *ast.Expr {
	return ast.NewCall(ast.NewIdent(name, span(0, 1)), args, span(0, 2))
}

func TestPropagateRequiresErrorResult(t *testing.T) {
	fallible := fnDecl("fetch", nil, []*ast.TypeExpr{named("string"), named("error")})
	prop := ast.NewPropagate(call("fetch"), span(30, 38))
	user := fnDecl("run", nil, []*ast.TypeExpr{named("int")},
		ast.NewLet([]string{"v"}, prop, span(30, 38)),
	)

	res, _ := checkDecls(t, Options{}, fallible, user)
	if countCode(res.Bag, diag.PropagationOutsideErrorFunction) != 1 {
		t.Fatalf("Expected 1 PropagationOutsideErrorFunction, got: %+v", res.Bag.Items())
	}
	if !res.Flagged[prop] {
		t.Error("Expected the rejected propagation to be flagged for lowering")
	}
}

func TestPropagateAllowedInErrorFunction(t *testing.T) {
	fallible := fnDecl("fetch", nil, []*ast.TypeExpr{named("string"), named("error")})
	prop := ast.NewPropagate(call("fetch"), span(30, 38))
	user := fnDecl("run", nil, []*ast.TypeExpr{named("string"), named("error")},
		ast.NewLet([]string{"v"}, prop, span(30, 38)),
		ast.NewReturn([]*ast.Expr{ast.NewIdent("v", span(40, 41)), ast.NewNilLit(span(42, 45))}, span(39, 45)),
	)

	res, _ := checkDecls(t, Options{}, fallible, user)
	if res.Bag.HasErrors() {
		t.Errorf("Expected a clean check, got: %+v", res.Bag.Items())
	}
	if res.Flagged[prop] {
		t.Error("Expected the accepted propagation not to be flagged")
	}
}

func TestPropagateAtFileScope(t *testing.T) {
	fallible := fnDecl("fetch", nil, []*ast.TypeExpr{named("string"), named("error")})
	prop := ast.NewPropagate(call("fetch"), span(30, 38))
	v := &ast.Decl{
		Kind: ast.DeclVar, Vis: ast.VisPackage, Name: "cached",
		Span: span(50, 56), NameSpan: span(50, 56),
		Data: &ast.VarData{Value: prop},
	}

	res, _ := checkDecls(t, Options{}, fallible, v)
	if countCode(res.Bag, diag.PropagationOutsideErrorFunction) != 1 {
		t.Errorf("Expected file-scope propagation to be rejected, got: %+v", res.Bag.Items())
	}
}

func TestBareLaunchObservationPolicy(t *testing.T) {
	launchOf := func(callee string) (*ast.Stmt, *ast.Decl, *ast.Decl) {
		var results []*ast.TypeExpr
		if callee == "fail" {
			results = []*ast.TypeExpr{named("error")}
		}
		target := fnDecl(callee, nil, results)
		stmt := ast.NewExprStmt(ast.NewLaunch(call(callee), span(30, 40)))
		runner := fnDecl("run", nil, nil, stmt)
		return stmt, target, runner
	}

	// Fallible callee, policy on: reported.
	_, target, runner := launchOf("fail")
	res, _ := checkDecls(t, Options{ReportUnobservedPromises: true}, target, runner)
	if countCode(res.Bag, diag.PromiseResultDiscardedUnsafely) != 1 {
		t.Errorf("Expected 1 PromiseResultDiscardedUnsafely, got: %+v", res.Bag.Items())
	}

	// Fallible callee, policy off: silent.
	_, target, runner = launchOf("fail")
	res, _ = checkDecls(t, Options{}, target, runner)
	if res.Bag.Len() != 0 {
		t.Errorf("Expected silence with the policy off, got: %+v", res.Bag.Items())
	}

	// Infallible callee: nothing to observe even with the policy on.
	_, target, runner = launchOf("tick")
	res, _ = checkDecls(t, Options{ReportUnobservedPromises: true}, target, runner)
	if res.Bag.Len() != 0 {
		t.Errorf("Expected silence for an infallible callee, got: %+v", res.Bag.Items())
	}
}

func TestBuiltinArity(t *testing.T) {
	cases := []struct {
		name string
		expr *ast.Expr
	}{
		{"len with two args", call("len", ast.NewIdent("xs", span(10, 12)), ast.NewIdent("xs", span(13, 15)))},
		{"delete with one arg", call("delete", ast.NewIdent("m", span(10, 11)))},
		{"append with one arg", call("append", ast.NewIdent("xs", span(10, 12)))},
		{"close with no args", call("close")},
	}
	for _, tc := range cases {
		user := fnDecl("run",
			[]ast.Param{param("xs", ast.SliceType(named("int"))), param("m", ast.MapType(named("string"), named("int")))},
			nil,
			ast.NewExprStmt(tc.expr),
		)
		res, _ := checkDecls(t, Options{}, user)
		if countCode(res.Bag, diag.InvalidBuiltinUsage) != 1 {
			t.Errorf("%s: expected 1 InvalidBuiltinUsage, got: %+v", tc.name, res.Bag.Items())
		}
		if !res.Flagged[tc.expr] {
			t.Errorf("%s: expected the call to be flagged", tc.name)
		}
	}
}

func TestBuiltinReceiverCapability(t *testing.T) {
	params := []ast.Param{
		param("xs", ast.SliceType(named("int"))),
		param("m", ast.MapType(named("string"), named("int"))),
		param("ch", ast.ChanType(named("int"))),
		param("s", named("string")),
		param("k", named("string")),
		param("v", named("int")),
	}
	cases := []struct {
		name string
		expr *ast.Expr
		bad  bool
	}{
		{"delete on slice", call("delete", ast.NewIdent("xs", span(10, 12)), ast.NewIdent("k", span(13, 14))), true},
		{"delete on map", call("delete", ast.NewIdent("m", span(10, 11)), ast.NewIdent("k", span(12, 13))), false},
		{"close on map", call("close", ast.NewIdent("m", span(10, 11))), true},
		{"close on chan", call("close", ast.NewIdent("ch", span(10, 12))), false},
		{"append on map", call("append", ast.NewIdent("m", span(10, 11)), ast.NewIdent("v", span(12, 13))), true},
		{"append on slice", call("append", ast.NewIdent("xs", span(10, 12)), ast.NewIdent("v", span(13, 14))), false},
		{"len on string", call("len", ast.NewIdent("s", span(10, 11))), false},
		{"len on chan", call("len", ast.NewIdent("ch", span(10, 12))), false},
		{"cap on string", call("cap", ast.NewIdent("s", span(10, 11))), true},
		{"cap on slice", call("cap", ast.NewIdent("xs", span(10, 12))), false},
		{"copy on strings", call("copy", ast.NewIdent("s", span(10, 11)), ast.NewIdent("s", span(12, 13))), false},
	}
	for _, tc := range cases {
		user := fnDecl("run", params, nil, ast.NewExprStmt(tc.expr))
		res, _ := checkDecls(t, Options{}, user)
		want := 0
		if tc.bad {
			want = 1
		}
		if got := countCode(res.Bag, diag.InvalidBuiltinUsage); got != want {
			t.Errorf("%s: expected %d InvalidBuiltinUsage, got: %+v", tc.name, want, res.Bag.Items())
		}
	}
}

func TestBuiltinUntypedReceiverStaysSilent(t *testing.T) {
	// The receiver's type is unknown; the checker cannot prove a violation.
	user := fnDecl("run", []ast.Param{param("x", nil)}, nil,
		ast.NewExprStmt(call("len", ast.NewIdent("x", span(10, 11)))),
	)
	res, _ := checkDecls(t, Options{}, user)
	if res.Bag.Len() != 0 {
		t.Errorf("Expected silence for an untyped receiver, got: %+v", res.Bag.Items())
	}
}

func TestMethodFormReceiverChecked(t *testing.T) {
	// Already-rewritten trees get the same receiver rule: xs.delete(k) on a
	// slice is as wrong as delete(xs, k).
	sel := ast.NewSelector(ast.NewIdent("xs", span(10, 12)), "delete", span(10, 19))
	expr := ast.NewCall(sel, []*ast.Expr{ast.NewIdent("k", span(20, 21))}, span(10, 23))
	user := fnDecl("run",
		[]ast.Param{param("xs", ast.SliceType(named("int"))), param("k", named("string"))},
		nil,
		ast.NewExprStmt(expr),
	)
	res, _ := checkDecls(t, Options{}, user)
	if countCode(res.Bag, diag.InvalidBuiltinUsage) != 1 {
		t.Errorf("Expected 1 InvalidBuiltinUsage for the method form, got: %+v", res.Bag.Items())
	}
}

func TestBuiltinNameAsValue(t *testing.T) {
	use := ast.NewIdent("append", span(10, 16))
	user := fnDecl("run", nil, nil,
		ast.NewLet([]string{"f"}, use, span(5, 16)),
	)
	res, _ := checkDecls(t, Options{}, user)
	if countCode(res.Bag, diag.InvalidBuiltinUsage) != 1 {
		t.Errorf("Expected 1 InvalidBuiltinUsage for a bare builtin value, got: %+v", res.Bag.Items())
	}
	if !res.Flagged[use] {
		t.Error("Expected the bare builtin use to be flagged")
	}
}

func TestLaunchAtFileScope(t *testing.T) {
	worker := fnDecl("work", nil, []*ast.TypeExpr{named("int")})
	launch := ast.NewLaunch(call("work"), span(30, 42))
	v := &ast.Decl{
		Kind: ast.DeclVar, Vis: ast.VisPackage, Name: "handle",
		Span: span(50, 56), NameSpan: span(50, 56),
		Data: &ast.VarData{Value: launch},
	}

	res, _ := checkDecls(t, Options{}, worker, v)
	if countCode(res.Bag, diag.LaunchOutsideFunction) != 1 {
		t.Errorf("Expected file-scope launch to be rejected, got: %+v", res.Bag.Items())
	}
	if !res.Flagged[launch] {
		t.Error("Expected the launch to be flagged for verbatim copying")
	}
}

func TestCopyReceiverIsSource(t *testing.T) {
	params := []ast.Param{
		param("xs", ast.SliceType(named("int"))),
		param("n", named("int")),
	}

	// copy(dst, src) rewrites to src.copy(dst); the receiver rule runs on
	// the source operand.
	bad := call("copy", ast.NewIdent("xs", span(10, 12)), ast.NewIdent("n", span(13, 14)))
	res, _ := checkDecls(t, Options{}, fnDecl("run", params, nil, ast.NewExprStmt(bad)))
	if countCode(res.Bag, diag.InvalidBuiltinUsage) != 1 {
		t.Errorf("Expected copy with a non-sequence source to be rejected, got: %+v", res.Bag.Items())
	}

	// A non-sequence destination matches what the method form would see, so
	// the free form stays as silent as its rewrite.
	odd := call("copy", ast.NewIdent("n", span(10, 11)), ast.NewIdent("xs", span(12, 14)))
	res, _ = checkDecls(t, Options{}, fnDecl("run", params, nil, ast.NewExprStmt(odd)))
	if countCode(res.Bag, diag.InvalidBuiltinUsage) != 0 {
		t.Errorf("Expected the free form to match its method form, got: %+v", res.Bag.Items())
	}
}
