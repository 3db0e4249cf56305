package sema

import (
	"strings"
	"testing"

	"goat/internal/ast"
	"goat/internal/diag"
)

func member(enum, name string) *ast.Expr {
	return ast.NewSelector(ast.NewIdent(enum, span(10, 16)), name, span(10, 22))
}

func statusEnum() *ast.Decl {
	return enumDecl("Status", "Idle", "Busy", "Done")
}

func TestEnumMemberReference(t *testing.T) {
	good := member("Status", "Busy")
	user := fnDecl("run", nil, nil,
		ast.NewLet([]string{"s"}, good, span(5, 22)),
	)
	res, _ := checkDecls(t, Options{}, statusEnum(), user)
	if res.Bag.Len() != 0 {
		t.Errorf("Expected a clean check, got: %+v", res.Bag.Items())
	}

	bad := member("Status", "Oops")
	user = fnDecl("run", nil, nil,
		ast.NewLet([]string{"s"}, bad, span(5, 22)),
	)
	res, _ = checkDecls(t, Options{}, statusEnum(), user)
	if countCode(res.Bag, diag.InvalidEnumValue) != 1 {
		t.Fatalf("Expected 1 InvalidEnumValue for Status.Oops, got: %+v", res.Bag.Items())
	}
	if !res.Flagged[bad] {
		t.Error("Expected the unknown member reference to be flagged")
	}
}

func TestEnumRejectsLiteralInteger(t *testing.T) {
	lit := ast.NewIntLit(1, span(20, 21))
	user := fnDecl("run", nil, nil,
		&ast.Stmt{Kind: ast.StmtLet, Span: span(5, 21), Data: &ast.LetData{
			Names: []string{"s"},
			Type:  named("Status"),
			Value: lit,
		}},
	)
	res, _ := checkDecls(t, Options{}, statusEnum(), user)
	if countCode(res.Bag, diag.InvalidEnumValue) != 1 {
		t.Fatalf("Expected 1 InvalidEnumValue for the literal, got: %+v", res.Bag.Items())
	}
	if !res.Flagged[lit] {
		t.Error("Expected the literal to be flagged")
	}
}

func TestEnumRejectsForeignEnum(t *testing.T) {
	level := enumDecl("Level", "Low", "High")
	assignStmt := &ast.Stmt{Kind: ast.StmtLet, Span: span(5, 22), Data: &ast.LetData{
		Names: []string{"s"},
		Type:  named("Status"),
		Value: member("Level", "Low"),
	}}
	user := fnDecl("run", nil, nil, assignStmt)
	res, _ := checkDecls(t, Options{}, statusEnum(), level, user)
	if countCode(res.Bag, diag.InvalidEnumValue) != 1 {
		t.Errorf("Expected 1 InvalidEnumValue for the cross-enum assignment, got: %+v", res.Bag.Items())
	}
}

func TestEnumAssignSameEnumClean(t *testing.T) {
	user := fnDecl("run", nil, nil,
		&ast.Stmt{Kind: ast.StmtLet, Span: span(5, 22), Data: &ast.LetData{
			Names: []string{"s"},
			Type:  named("Status"),
			Value: member("Status", "Idle"),
		}},
	)
	res, _ := checkDecls(t, Options{}, statusEnum(), user)
	if res.Bag.Len() != 0 {
		t.Errorf("Expected a clean check, got: %+v", res.Bag.Items())
	}
}

func TestEnumCompareAgainstLiteral(t *testing.T) {
	cmp := ast.NewBinary(ast.OpEq,
		ast.NewIdent("s", span(30, 31)),
		ast.NewIntLit(0, span(35, 36)),
		span(30, 36))
	user := fnDecl("run", []ast.Param{param("s", named("Status"))}, nil,
		ast.NewExprStmt(cmp),
	)
	res, _ := checkDecls(t, Options{}, statusEnum(), user)
	if countCode(res.Bag, diag.InvalidEnumValue) != 1 {
		t.Errorf("Expected 1 InvalidEnumValue for the literal comparison, got: %+v", res.Bag.Items())
	}
}

func switchOver(subject string, cases [][2]string, withDefault bool) *ast.Stmt {
	data := &ast.SwitchData{Value: ast.NewIdent(subject, span(30, 31))}
	for i, c := range cases {
		sp := span(uint32(40+10*i), uint32(45+10*i))
		data.Cases = append(data.Cases, ast.SwitchCase{
			Span:   sp,
			Values: []*ast.Expr{ast.NewSelector(ast.NewIdent(c[0], sp), c[1], sp)},
			Body:   &ast.Block{Span: sp},
		})
	}
	if withDefault {
		data.Default = &ast.Block{Span: span(90, 95)}
	}
	return &ast.Stmt{Kind: ast.StmtSwitch, Span: span(30, 95), Data: data}
}

func TestEnumSwitchExhaustive(t *testing.T) {
	sw := switchOver("s", [][2]string{{"Status", "Idle"}, {"Status", "Busy"}, {"Status", "Done"}}, false)
	user := fnDecl("run", []ast.Param{param("s", named("Status"))}, nil, sw)
	res, _ := checkDecls(t, Options{}, statusEnum(), user)
	if res.Bag.Len() != 0 {
		t.Errorf("Expected an exhaustive switch to be clean, got: %+v", res.Bag.Items())
	}
}

func TestEnumSwitchMissingMember(t *testing.T) {
	sw := switchOver("s", [][2]string{{"Status", "Idle"}, {"Status", "Busy"}}, false)
	user := fnDecl("run", []ast.Param{param("s", named("Status"))}, nil, sw)
	res, _ := checkDecls(t, Options{}, statusEnum(), user)
	if countCode(res.Bag, diag.NonExhaustiveEnumSwitch) != 1 {
		t.Fatalf("Expected 1 NonExhaustiveEnumSwitch, got: %+v", res.Bag.Items())
	}
	msg := res.Bag.Items()[0].Message
	if !strings.Contains(msg, "Done") {
		t.Errorf("Expected the message to name the missing member, got %q", msg)
	}
}

func TestEnumSwitchDefaultCoversRest(t *testing.T) {
	sw := switchOver("s", [][2]string{{"Status", "Idle"}}, true)
	user := fnDecl("run", []ast.Param{param("s", named("Status"))}, nil, sw)
	res, _ := checkDecls(t, Options{}, statusEnum(), user)
	if res.Bag.Len() != 0 {
		t.Errorf("Expected a default arm to satisfy exhaustiveness, got: %+v", res.Bag.Items())
	}
}

func TestEnumSwitchDuplicateCase(t *testing.T) {
	sw := switchOver("s", [][2]string{{"Status", "Idle"}, {"Status", "Idle"}, {"Status", "Busy"}, {"Status", "Done"}}, false)
	user := fnDecl("run", []ast.Param{param("s", named("Status"))}, nil, sw)
	res, _ := checkDecls(t, Options{}, statusEnum(), user)
	if countCode(res.Bag, diag.DuplicateEnumCase) != 1 {
		t.Errorf("Expected 1 DuplicateEnumCase, got: %+v", res.Bag.Items())
	}
	// The duplicate does not double-count coverage; the switch is complete.
	if countCode(res.Bag, diag.NonExhaustiveEnumSwitch) != 0 {
		t.Errorf("Expected no exhaustiveness report, got: %+v", res.Bag.Items())
	}
}

func TestSwitchOverNonEnumIgnored(t *testing.T) {
	data := &ast.SwitchData{
		Value: ast.NewIdent("n", span(30, 31)),
		Cases: []ast.SwitchCase{{
			Span:   span(40, 45),
			Values: []*ast.Expr{ast.NewIntLit(1, span(40, 41))},
			Body:   &ast.Block{Span: span(40, 45)},
		}},
	}
	sw := &ast.Stmt{Kind: ast.StmtSwitch, Span: span(30, 50), Data: data}
	user := fnDecl("run", []ast.Param{param("n", named("int"))}, nil, sw)
	res, _ := checkDecls(t, Options{}, user)
	if res.Bag.Len() != 0 {
		t.Errorf("Expected integer switches to stay out of scope, got: %+v", res.Bag.Items())
	}
}
