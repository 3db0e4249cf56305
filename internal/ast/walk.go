package ast

// Inspect walks an expression tree depth-first, left to right. fn returning
// false prunes the subtree under the current node.
func Inspect(e *Expr, fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch data := e.Data.(type) {
	case *CallData:
		Inspect(data.Callee, fn)
		for _, a := range data.Args {
			Inspect(a, fn)
		}
	case *BinaryData:
		Inspect(data.Left, fn)
		Inspect(data.Right, fn)
	case *UnaryData:
		Inspect(data.X, fn)
	case *SelectorData:
		Inspect(data.X, fn)
	case *IndexData:
		Inspect(data.X, fn)
		Inspect(data.Index, fn)
	case *PropagateData:
		Inspect(data.Call, fn)
	case *LaunchData:
		Inspect(data.Call, fn)
	}
}

// InspectBlock applies Inspect to every expression in the block, and fn to
// every statement first. fn returning false skips the statement's children.
func InspectBlock(b *Block, stmtFn func(*Stmt) bool, exprFn func(*Expr) bool) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		InspectStmt(s, stmtFn, exprFn)
	}
}

// InspectStmt walks one statement; see InspectBlock.
func InspectStmt(s *Stmt, stmtFn func(*Stmt) bool, exprFn func(*Expr) bool) {
	if s == nil {
		return
	}
	if stmtFn != nil && !stmtFn(s) {
		return
	}
	walkExpr := func(e *Expr) {
		if e != nil && exprFn != nil {
			Inspect(e, exprFn)
		}
	}
	switch data := s.Data.(type) {
	case *LetData:
		walkExpr(data.Value)
	case *AssignData:
		walkExpr(data.Target)
		walkExpr(data.Value)
	case *ReturnData:
		for _, v := range data.Values {
			walkExpr(v)
		}
	case *IfData:
		walkExpr(data.Cond)
		InspectBlock(data.Then, stmtFn, exprFn)
		InspectStmt(data.Else, stmtFn, exprFn)
	case *SwitchData:
		walkExpr(data.Value)
		for _, c := range data.Cases {
			for _, v := range c.Values {
				walkExpr(v)
			}
			InspectBlock(c.Body, stmtFn, exprFn)
		}
		InspectBlock(data.Default, stmtFn, exprFn)
	case *ExprStmtData:
		walkExpr(data.X)
	case *BlockStmtData:
		InspectBlock(data.Block, stmtFn, exprFn)
	}
}
