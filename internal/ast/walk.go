package ast

// Inspect traverses the tree rooted at n in depth-first order. If f returns
// false for a node its children are skipped. Type nodes are not visited.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	switch n := n.(type) {
	case *Program:
		for _, s := range n.Body {
			Inspect(s, f)
		}
	case *FunctionDecl:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *StructDecl:
		for _, fd := range n.Fields {
			Inspect(fd, f)
		}
		for _, m := range n.Methods {
			Inspect(m, f)
		}
	case *VariableDecl:
		inspectExpr(n.Init, f)
	case *Export:
		Inspect(n.Decl, f)
	case *Extern:
		Inspect(n.Fn, f)
	case *If:
		inspectExpr(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *Loop:
		inspectExpr(n.Cond, f)
		Inspect(n.Body, f)
	case *Return:
		inspectExpr(n.Value, f)
	case *Block:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *ExprStmt:
		inspectExpr(n.X, f)
	case *Try:
		Inspect(n.Body, f)
		for _, c := range n.Catches {
			Inspect(c, f)
		}
		if n.CatchAll != nil {
			Inspect(n.CatchAll, f)
		}
	case *Catch:
		Inspect(n.Body, f)
	case *Throw:
		inspectExpr(n.Value, f)
	case *Switch:
		inspectExpr(n.Value, f)
		for _, c := range n.Cases {
			Inspect(c, f)
		}
		if n.Default != nil {
			Inspect(n.Default, f)
		}
	case *Case:
		for _, v := range n.Values {
			inspectExpr(v, f)
		}
		Inspect(n.Body, f)

	case *Binary:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *Unary:
		inspectExpr(n.Operand, f)
	case *Assignment:
		inspectExpr(n.Target, f)
		inspectExpr(n.Value, f)
	case *Call:
		inspectExpr(n.Callee, f)
		for _, a := range n.Args {
			inspectExpr(a, f)
		}
	case *Member:
		inspectExpr(n.Object, f)
	case *Index:
		inspectExpr(n.Object, f)
		inspectExpr(n.Index, f)
	case *Cast:
		inspectExpr(n.Value, f)
	case *Match:
		inspectExpr(n.Value, f)
		for _, arm := range n.Arms {
			Inspect(arm, f)
		}
	case *MatchArm:
		inspectExpr(n.Pattern, f)
		inspectExpr(n.Value, f)
	case *Ternary:
		inspectExpr(n.Cond, f)
		inspectExpr(n.Then, f)
		inspectExpr(n.Else, f)
	case *ArrayLiteral:
		for _, e := range n.Elements {
			inspectExpr(e, f)
		}
	case *StructLiteral:
		for _, fi := range n.Fields {
			Inspect(fi, f)
		}
	case *FieldInit:
		inspectExpr(n.Value, f)
	case *TupleLiteral:
		for _, e := range n.Elements {
			inspectExpr(e, f)
		}
	case *GenericInstantiation:
		inspectExpr(n.Base, f)

	case *Param, *FieldDecl, *TypeAlias, *Import, *Asm, *Break, *Continue,
		*Literal, *Identifier, *Sizeof, *Ident,
		*BasicType, *FunctionType, *TupleType, *MetaType:
		// leaves
	}
}

// inspectExpr skips nil expressions so optional children need no checks.
func inspectExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}
