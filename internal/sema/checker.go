package sema

import (
	"fmt"
	"sort"
	"strings"

	"goat/internal/ast"
	"goat/internal/builtins"
	"goat/internal/diag"
	"goat/internal/symbols"
	"goat/internal/types"
)

// Options configure the policy-gated checks.
type Options struct {
	// ReportUnobservedPromises enables PromiseResultDiscardedUnsafely for
	// fire-and-forget launches of fallible functions.
	ReportUnobservedPromises bool
	MaxDiagnostics           int
}

// Result is the checker output consumed by lowering.
type Result struct {
	Bag *diag.Bag
	// Flagged marks expressions rejected by a check; lowering must keep
	// them verbatim.
	Flagged map[*ast.Expr]bool
}

// CheckUnit checks every file of the unit against the published table.
func CheckUnit(unit *ast.Unit, collect *symbols.Result, refs map[*ast.Expr]symbols.SymbolID, opts Options) *Result {
	bag := diag.NewBag(opts.MaxDiagnostics)
	res := &Result{Bag: bag, Flagged: make(map[*ast.Expr]bool)}
	for _, pkg := range unit.Packages {
		for _, f := range pkg.Files {
			c := &checker{
				table:    collect.Table,
				symbolOf: collect.SymbolOf,
				refs:     refs,
				reporter: diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
				flagged:  res.Flagged,
				opts:     opts,
				pkg:      pkg.Name,
			}
			c.checkFile(f)
		}
	}
	return res
}

type checker struct {
	table    *symbols.Table
	symbolOf map[*ast.Decl]symbols.SymbolID
	refs     map[*ast.Expr]symbols.SymbolID
	reporter diag.Reporter
	flagged  map[*ast.Expr]bool
	opts     Options
	pkg      string

	// fn is the signature of the enclosing function body, nil at file scope.
	fn     *symbols.Signature
	scopes []map[string]types.TypeID
}

func (c *checker) checkFile(f *ast.File) {
	for _, d := range f.Decls {
		switch data := d.Data.(type) {
		case *ast.FuncData:
			c.checkFunc(d, data)
		case *ast.VarData:
			c.checkExpr(data.Value)
			if data.Type != nil && data.Value != nil {
				want := c.table.ResolveTypeExpr(c.pkg, data.Type)
				c.checkEnumAssign(want, data.Value)
			}
		}
	}
}

func (c *checker) checkFunc(d *ast.Decl, data *ast.FuncData) {
	prevFn := c.fn
	if id, ok := c.symbolOf[d]; ok {
		c.fn = c.table.Get(id).Sig
	} else {
		c.fn = nil
	}
	c.pushScope()
	for i, p := range data.Params {
		t := types.NoTypeID
		if c.fn != nil && i < len(c.fn.Params) {
			t = c.fn.Params[i]
		}
		c.bind(p.Name, t)
	}
	c.checkBlock(data.Body)
	c.popScope()
	c.fn = prevFn
}

func (c *checker) checkBlock(b *ast.Block) {
	if b == nil {
		return
	}
	c.pushScope()
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
	c.popScope()
}

func (c *checker) checkStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch data := s.Data.(type) {
	case *ast.LetData:
		c.checkLet(data)
	case *ast.AssignData:
		c.checkExpr(data.Target)
		c.checkExpr(data.Value)
		c.checkEnumAssign(c.typeOf(data.Target), data.Value)
	case *ast.ReturnData:
		for _, v := range data.Values {
			c.checkExpr(v)
		}
	case *ast.IfData:
		c.checkExpr(data.Cond)
		c.checkBlock(data.Then)
		c.checkStmt(data.Else)
	case *ast.SwitchData:
		c.checkSwitch(s, data)
	case *ast.ExprStmtData:
		c.checkExpr(data.X)
		c.checkBareLaunch(data.X)
	case *ast.BlockStmtData:
		c.checkBlock(data.Block)
	}
}

func (c *checker) checkLet(data *ast.LetData) {
	c.checkExpr(data.Value)

	var declared types.TypeID
	if data.Type != nil {
		declared = c.table.ResolveTypeExpr(c.pkg, data.Type)
		if data.Value != nil {
			c.checkEnumAssign(declared, data.Value)
		}
	}

	if len(data.Names) > 1 {
		// Tuple bind from a multi-result call.
		results := c.resultsOf(data.Value)
		for i, name := range data.Names {
			t := types.NoTypeID
			if i < len(results) {
				t = results[i]
			}
			c.bind(name, t)
		}
		return
	}
	if len(data.Names) == 1 {
		t := declared
		if t == types.NoTypeID && data.Value != nil {
			t = c.typeOf(data.Value)
		}
		c.bind(data.Names[0], t)
	}
}

func (c *checker) checkExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch data := e.Data.(type) {
	case *ast.IdentData:
		c.checkBuiltinValueUse(e, data.Name)
	case *ast.CallData:
		c.checkCall(e, data)
	case *ast.SelectorData:
		c.checkExpr(data.X)
		c.checkEnumMember(e, data)
	case *ast.BinaryData:
		c.checkExpr(data.Left)
		c.checkExpr(data.Right)
		if data.Op.IsComparison() {
			c.checkEnumCompare(data)
		}
	case *ast.UnaryData:
		c.checkExpr(data.X)
	case *ast.IndexData:
		c.checkExpr(data.X)
		c.checkExpr(data.Index)
	case *ast.PropagateData:
		c.checkExpr(data.Call)
		c.checkPropagate(e)
	case *ast.LaunchData:
		c.checkExpr(data.Call)
		c.checkLaunchContext(e)
	}
}

// checkLaunchContext rejects launch in file-scope initializers, which have
// no block for the handle construction to land in.
func (c *checker) checkLaunchContext(e *ast.Expr) {
	if c.fn != nil {
		return
	}
	c.flagged[e] = true
	diag.ReportError(c.reporter, diag.LaunchOutsideFunction, e.Span,
		"launch cannot appear outside a function body").
		Emit()
}

// checkPropagate enforces the context rule: the operator may appear only in
// a function whose final declared result is error-capable.
func (c *checker) checkPropagate(e *ast.Expr) {
	if c.fn != nil && c.table.Types.IsError(c.fn.FinalResult()) {
		return
	}
	c.flagged[e] = true
	msg := "the propagation operator requires the enclosing function to declare a final error result"
	if c.fn == nil {
		msg = "the propagation operator cannot appear outside a function body"
	}
	diag.ReportError(c.reporter, diag.PropagationOutsideErrorFunction, e.Span, msg).Emit()
}

// checkBareLaunch applies the observation policy to fire-and-forget
// launches. A launch whose callee cannot fail has nothing to observe.
func (c *checker) checkBareLaunch(e *ast.Expr) {
	if e == nil || e.Kind != ast.ExprLaunch || !c.opts.ReportUnobservedPromises {
		return
	}
	call := e.Data.(*ast.LaunchData).Call
	sig := c.calleeSignature(call)
	if sig == nil || !c.table.Types.IsError(sig.FinalResult()) {
		return
	}
	diag.ReportError(c.reporter, diag.PromiseResultDiscardedUnsafely, e.Span,
		"launched function can fail but its result is discarded; bind the promise handle or observe the error").
		Emit()
}

func (c *checker) calleeSignature(call *ast.Expr) *symbols.Signature {
	if call == nil || call.Kind != ast.ExprCall {
		return nil
	}
	callee := call.Data.(*ast.CallData).Callee
	if id, ok := c.refs[callee]; ok {
		if sym := c.table.Get(id); sym != nil && sym.Kind == symbols.SymbolFunction {
			return sym.Sig
		}
	}
	return nil
}

// enumOf returns the enum type behind id, or NoTypeID when id is not a
// usable enum. Rejected enums are skipped so one bad declaration does not
// cascade into every use site.
func (c *checker) enumOf(id types.TypeID) types.TypeID {
	if c.table.Types.KindOf(id) != types.KindEnum {
		return types.NoTypeID
	}
	if c.table.Types.EnumState(id) != types.EnumUsable {
		return types.NoTypeID
	}
	return id
}

// checkEnumMember validates Status.Idle style member references.
func (c *checker) checkEnumMember(e *ast.Expr, data *ast.SelectorData) {
	id, ok := c.refs[data.X]
	if !ok {
		return
	}
	sym := c.table.Get(id)
	if sym == nil || sym.Kind != symbols.SymbolEnum {
		return
	}
	enum := c.enumOf(sym.Type)
	if enum == types.NoTypeID {
		return
	}
	if nameID, ok := c.table.Strings.LookupID(data.Sel); ok {
		if _, found := c.table.Types.MemberByName(enum, nameID); found {
			return
		}
	}
	c.flagged[e] = true
	diag.ReportError(c.reporter, diag.InvalidEnumValue, data.SelSpan,
		fmt.Sprintf("%s is not a member of enum %s",
			data.Sel, c.table.Types.String(enum, c.table.Strings))).
		Emit()
}

// checkEnumAssign rejects values an enum-typed location cannot hold: literal
// integers and values of a different enum type.
func (c *checker) checkEnumAssign(want types.TypeID, value *ast.Expr) {
	enum := c.enumOf(want)
	if enum == types.NoTypeID || value == nil {
		return
	}
	if lit, ok := value.Data.(*ast.LitData); ok {
		if lit.Kind == ast.LitInt {
			c.flagged[value] = true
			diag.ReportError(c.reporter, diag.InvalidEnumValue, value.Span,
				fmt.Sprintf("a literal integer cannot be used as enum %s; use a member reference",
					c.table.Types.String(enum, c.table.Strings))).
				Emit()
		}
		return
	}
	got := c.typeOf(value)
	if got == types.NoTypeID || got == enum {
		return
	}
	if other := c.enumOf(got); other != types.NoTypeID || c.table.Types.KindOf(got) == types.KindInt {
		c.flagged[value] = true
		diag.ReportError(c.reporter, diag.InvalidEnumValue, value.Span,
			fmt.Sprintf("value of type %s cannot be used as enum %s",
				c.table.Types.String(got, c.table.Strings),
				c.table.Types.String(enum, c.table.Strings))).
			Emit()
	}
}

func (c *checker) checkEnumCompare(data *ast.BinaryData) {
	if enum := c.enumOf(c.typeOf(data.Left)); enum != types.NoTypeID {
		c.checkEnumAssign(enum, data.Right)
		return
	}
	if enum := c.enumOf(c.typeOf(data.Right)); enum != types.NoTypeID {
		c.checkEnumAssign(enum, data.Left)
	}
}

// checkSwitch runs the exhaustiveness check when the subject is enum-typed.
func (c *checker) checkSwitch(s *ast.Stmt, data *ast.SwitchData) {
	c.checkExpr(data.Value)
	for _, cs := range data.Cases {
		for _, v := range cs.Values {
			c.checkExpr(v)
		}
		c.checkBlock(cs.Body)
	}
	c.checkBlock(data.Default)

	enum := c.enumOf(c.typeOf(data.Value))
	if enum == types.NoTypeID {
		return
	}
	info, ok := c.table.Types.EnumInfoFor(enum)
	if !ok {
		return
	}

	seen := make(map[int64]ast.SwitchCase)
	for _, cs := range data.Cases {
		for _, v := range cs.Values {
			member, ok := c.memberOf(enum, v)
			if !ok {
				c.checkEnumAssign(enum, v)
				continue
			}
			if prev, dup := seen[member.Ordinal]; dup {
				diag.ReportError(c.reporter, diag.DuplicateEnumCase, cs.Span,
					fmt.Sprintf("enum member %s is already covered by an earlier case",
						c.table.Strings.MustLookup(member.Name))).
					WithNote(prev.Span, "first covered here").
					Emit()
				continue
			}
			seen[member.Ordinal] = cs
		}
	}
	if data.Default != nil || len(seen) >= len(info.Members) {
		return
	}
	var missing []string
	for _, m := range info.Members {
		if _, ok := seen[m.Ordinal]; !ok {
			missing = append(missing, c.table.Strings.MustLookup(m.Name))
		}
	}
	sort.Strings(missing)
	diag.ReportError(c.reporter, diag.NonExhaustiveEnumSwitch, s.Span,
		fmt.Sprintf("switch over %s does not cover %s and has no default",
			c.table.Types.String(enum, c.table.Strings), strings.Join(missing, ", "))).
		Emit()
}

// memberOf recognizes a case value as a member of the enum: a Status.Idle
// selector, or an identifier resolved to a constant carrying the enum type.
func (c *checker) memberOf(enum types.TypeID, v *ast.Expr) (types.EnumMemberInfo, bool) {
	if v == nil {
		return types.EnumMemberInfo{}, false
	}
	if sel, ok := v.Data.(*ast.SelectorData); ok {
		if id, ok := c.refs[sel.X]; ok {
			if sym := c.table.Get(id); sym != nil && sym.Kind == symbols.SymbolEnum && c.enumOf(sym.Type) == enum {
				nameID, ok := c.table.Strings.LookupID(sel.Sel)
				if !ok {
					return types.EnumMemberInfo{}, false
				}
				return c.table.Types.MemberByName(enum, nameID)
			}
		}
	}
	return types.EnumMemberInfo{}, false
}

// checkBuiltinValueUse rejects an eliminated builtin name appearing as a
// plain value. Call sites are handled by checkCall, which never descends
// into the callee ident.
func (c *checker) checkBuiltinValueUse(e *ast.Expr, name string) {
	if !builtins.IsEliminated(name) {
		return
	}
	c.flagged[e] = true
	diag.ReportError(c.reporter, diag.InvalidBuiltinUsage, e.Span,
		fmt.Sprintf("%q is not a value; it is only usable in its rewritten call form", name)).
		Emit()
}

func (c *checker) pushScope() {
	c.scopes = append(c.scopes, make(map[string]types.TypeID))
}

func (c *checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *checker) bind(name string, t types.TypeID) {
	if len(c.scopes) > 0 {
		c.scopes[len(c.scopes)-1][name] = t
	}
}

func (c *checker) localType(name string) (types.TypeID, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i][name]; ok {
			return t, true
		}
	}
	return types.NoTypeID, false
}
