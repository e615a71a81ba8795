package semantic

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/types"
)

// checkExpr resolves the type of e, records it on the node and returns it.
// Calls to void functions yield the void type; use checkValue where a value
// is required.
func (c *Checker) checkExpr(s *Scope, e ast.Expr) (ast.TypeNode, error) {
	t, err := c.exprType(s, e)
	if err != nil {
		return nil, err
	}
	e.SetResolvedType(t)
	return t, nil
}

// checkValue is checkExpr for positions that need a runtime value.
func (c *Checker) checkValue(s *Scope, e ast.Expr) (ast.TypeNode, error) {
	t, err := c.checkExpr(s, e)
	if err != nil {
		return nil, err
	}
	if types.IsVoid(t) {
		return nil, errors.VoidInExpression(errors.SpanOf(e))
	}
	if meta, ok := t.(*ast.MetaType); ok {
		return nil, errors.New(errors.ErrorInvalidExpression,
			fmt.Sprintf("%s is a type, not a value", ast.TypeString(meta.Inner)), errors.SpanOf(e)).Build()
	}
	return t, nil
}

// expect checks e and requires it to be compatible with want.
func (c *Checker) expect(s *Scope, e ast.Expr, want ast.TypeNode) (ast.TypeNode, error) {
	t, err := c.checkValue(s, e)
	if err != nil {
		return nil, err
	}
	if !types.Compatible(want, t) {
		return nil, errors.TypeMismatch(ast.TypeString(want), ast.TypeString(t), errors.SpanOf(e))
	}
	return t, nil
}

func (c *Checker) exprType(s *Scope, e ast.Expr) (ast.TypeNode, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return literalType(e), nil
	case *ast.Identifier:
		return c.checkIdentifier(s, e)
	case *ast.Binary:
		return c.checkBinary(s, e)
	case *ast.Unary:
		return c.checkUnary(s, e)
	case *ast.Assignment:
		return c.checkAssignment(s, e)
	case *ast.Call:
		return c.checkCall(s, e)
	case *ast.Member:
		return c.checkMember(s, e)
	case *ast.Index:
		return c.checkIndex(s, e)
	case *ast.Cast:
		return c.checkCast(s, e)
	case *ast.Sizeof:
		t, err := c.resolveType(s, e.Target)
		if err != nil {
			return nil, err
		}
		if err := c.checkStorable(t, errors.SpanOf(e)); err != nil {
			return nil, err
		}
		e.Target = t
		return types.Named(types.Int), nil
	case *ast.Match:
		return c.checkMatch(s, e)
	case *ast.Ternary:
		return c.checkTernary(s, e)
	case *ast.ArrayLiteral:
		return c.checkArrayLiteral(s, e)
	case *ast.StructLiteral:
		return c.checkStructLiteral(s, e)
	case *ast.TupleLiteral:
		tuple := &ast.TupleType{}
		for _, el := range e.Elements {
			t, err := c.checkValue(s, el)
			if err != nil {
				return nil, err
			}
			if types.IsNull(t) {
				return nil, errors.New(errors.ErrorCannotInfer, "cannot infer a tuple element type from nullptr", errors.SpanOf(el)).
					WithHint("cast it to a pointer type first").
					Build()
			}
			tuple.Elements = append(tuple.Elements, t)
		}
		return tuple, nil
	case *ast.GenericInstantiation:
		return c.checkGenericInstantiation(s, e)
	}
	return nil, errors.Internal(fmt.Sprintf("unhandled expression %T", e), errors.SpanOf(e))
}

func literalType(l *ast.Literal) ast.TypeNode {
	switch l.Kind {
	case ast.IntLiteral:
		return types.Named(types.Int)
	case ast.FloatLiteral:
		return types.Named(types.Float)
	case ast.StringLiteral:
		return types.Named(types.String)
	case ast.CharLiteral:
		return types.Named(types.Char)
	case ast.BoolLiteral:
		return types.Named(types.Bool)
	case ast.NullLiteral:
		return types.Named(types.Nullptr)
	}
	return nil
}

func (c *Checker) checkIdentifier(s *Scope, id *ast.Identifier) (ast.TypeNode, error) {
	sym := s.Lookup(id.Name)
	if sym == nil {
		return nil, errors.UndefinedVariable(id.Name, errors.SpanOf(id), s.Names(func(sym *Symbol) bool { return sym.IsValue() }))
	}

	switch sym.Kind {
	case SymbolVariable, SymbolParameter:
		return sym.Type, nil
	case SymbolFunction:
		decl := sym.Node.(*ast.FunctionDecl)
		if decl.IsGeneric() {
			return nil, errors.CannotInfer(decl.Name.Value, decl.TypeParams[0].Value, errors.SpanOf(id))
		}
		return types.Signature(decl, nil), nil
	case SymbolStruct:
		return sym.Type, nil
	case SymbolTypeAlias:
		target, err := c.aliasTarget(sym)
		if err != nil {
			return nil, err
		}
		return &ast.MetaType{Inner: target}, nil
	case SymbolTypeParam:
		return &ast.MetaType{Inner: ast.Basic(sym.Name)}, nil
	}
	return nil, errors.Internal(fmt.Sprintf("unhandled symbol kind %s", sym.Kind), errors.SpanOf(id))
}

func (c *Checker) checkBinary(s *Scope, b *ast.Binary) (ast.TypeNode, error) {
	left, err := c.checkValue(s, b.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.checkValue(s, b.Right)
	if err != nil {
		return nil, err
	}
	t, ok := binaryResult(b.Op, left, right)
	if !ok {
		return nil, errors.InvalidOperation(b.Op, ast.TypeString(left), ast.TypeString(right), errors.SpanOf(b))
	}
	return t, nil
}

// binaryResult applies the operator typing rules. Arithmetic needs matching
// numeric operands; pointers take integer offsets on either side and their
// difference is an int.
func binaryResult(op string, left, right ast.TypeNode) (ast.TypeNode, bool) {
	same := types.Identical(left, right)
	switch op {
	case "+", "-":
		if types.IsPointer(left) && types.IsInteger(right) {
			return left, true
		}
		if op == "+" && types.IsInteger(left) && types.IsPointer(right) {
			return right, true
		}
		if op == "-" && types.IsPointer(left) && types.IsPointer(right) && same {
			return types.Named(types.Int), true
		}
		fallthrough
	case "*", "/":
		if types.IsNumeric(left) && same {
			return left, true
		}
	case "%":
		if types.IsInteger(left) && same {
			return left, true
		}
	case "&", "|", "^":
		if (types.IsInteger(left) || types.Is(left, types.Bool)) && same {
			return left, true
		}
	case "<<", ">>":
		if types.IsInteger(left) && same {
			return left, true
		}
	case "&&", "||":
		if types.Is(left, types.Bool) && types.Is(right, types.Bool) {
			return left, true
		}
	case "==", "!=":
		if types.Comparable(left, right) {
			return types.Named(types.Bool), true
		}
	case "<", "<=", ">", ">=":
		if (types.IsNumeric(left) || types.IsPointer(left)) && same {
			return types.Named(types.Bool), true
		}
	}
	return nil, false
}

func (c *Checker) checkUnary(s *Scope, u *ast.Unary) (ast.TypeNode, error) {
	t, err := c.checkValue(s, u.Operand)
	if err != nil {
		return nil, err
	}
	span := errors.SpanOf(u)

	switch u.Op {
	case "-":
		if types.IsNumeric(t) {
			return t, nil
		}
	case "!":
		if types.Is(t, types.Bool) {
			return t, nil
		}
	case "~":
		if types.IsInteger(t) {
			return t, nil
		}
	case "*":
		if types.Is(t, types.String) {
			return types.Named(types.Char), nil
		}
		if !types.IsPointer(t) {
			return nil, errors.InvalidDereference(ast.TypeString(t), span)
		}
		return t.(*ast.BasicType).Deref(), nil
	case "&":
		if !c.addressable(s, u.Operand) {
			return nil, errors.New(errors.ErrorInvalidOperation, "cannot take the address of this expression", span).
				WithHint("only variables, fields, elements and dereferences have an address").
				Build()
		}
		bt, ok := t.(*ast.BasicType)
		if !ok {
			return nil, errors.InvalidUnary(u.Op, ast.TypeString(t), span)
		}
		return bt.Pointer(), nil
	case "++", "--":
		if !c.addressable(s, u.Operand) {
			return nil, errors.InvalidAssignment(fmt.Sprintf("cannot apply %s to this expression", u.Op), span)
		}
		if types.IsInteger(t) || types.IsPointer(t) {
			return t, nil
		}
	}
	return nil, errors.InvalidUnary(u.Op, ast.TypeString(t), span)
}

// addressable reports whether e denotes storage. The operand has already been
// checked.
func (c *Checker) addressable(s *Scope, e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Identifier:
		sym := s.Lookup(e.Name)
		return sym != nil && (sym.Kind == SymbolVariable || sym.Kind == SymbolParameter) && e.Name != "this"
	case *ast.Member:
		if types.IsPointer(e.Object.ResolvedType()) {
			return true
		}
		return c.addressable(s, e.Object)
	case *ast.Index:
		if bt, ok := e.Object.ResolvedType().(*ast.BasicType); ok && bt.IsArray() {
			return c.addressable(s, e.Object)
		}
		return true
	case *ast.Unary:
		return e.Op == "*" && !e.Postfix
	}
	return false
}

func (c *Checker) checkAssignment(s *Scope, a *ast.Assignment) (ast.TypeNode, error) {
	target, err := c.checkValue(s, a.Target)
	if err != nil {
		return nil, err
	}
	if !c.addressable(s, a.Target) {
		return nil, errors.InvalidAssignment("cannot assign to this expression", errors.SpanOf(a.Target))
	}

	value, err := c.checkValue(s, a.Value)
	if err != nil {
		return nil, err
	}

	if a.Op != "=" {
		op := a.Op[:len(a.Op)-1]
		result, ok := binaryResult(op, target, value)
		if !ok {
			return nil, errors.InvalidOperation(op, ast.TypeString(target), ast.TypeString(value), errors.SpanOf(a))
		}
		value = result
	}
	if !types.Compatible(target, value) {
		return nil, errors.TypeMismatch(ast.TypeString(target), ast.TypeString(value), errors.SpanOf(a.Value))
	}
	return target, nil
}

// memberRef locates the member named by m. static reports access through a
// type rather than a value.
func (c *Checker) memberRef(s *Scope, m *ast.Member) (ref *types.Member, static bool, err error) {
	objType, err := c.checkExpr(s, m.Object)
	if err != nil {
		return nil, false, err
	}
	span := errors.SpanOf(&m.Name)

	recv, isType := c.resolvedStruct(objType)
	if !isType {
		if types.IsVoid(objType) {
			return nil, false, errors.VoidInExpression(errors.SpanOf(m.Object))
		}
		var ok bool
		if recv, ok = c.receiver(objType); !ok {
			return nil, false, errors.New(errors.ErrorFieldNotFound,
				fmt.Sprintf("type %s has no member '%s'", ast.TypeString(objType), m.Name.Value), span).Build()
		}
	} else if info := c.registry.Struct(recv); len(recv.Generics) != len(info.Decl.TypeParams) {
		return nil, false, errors.GenericArity(recv.Name, len(info.Decl.TypeParams), len(recv.Generics), errors.SpanOf(m.Object))
	}

	ref, ok := types.LookupMember(c.registry, recv, m.Name.Value)
	if !ok {
		return nil, false, errors.FieldNotFound(ast.TypeString(recv), m.Name.Value, span, types.MemberNames(c.registry, recv))
	}
	// Methods of unexported structs are emitted with internal linkage.
	if ref.Method != nil {
		info := c.registry.Struct(ref.Owner)
		if fn := s.function(); fn != nil && !info.Exported && info.Module != fn.module.path {
			return nil, false, errors.PrivateMethod(ref.Owner.Name, m.Name.Value, info.Module, span)
		}
	}
	return ref, isType, nil
}

func (c *Checker) checkMember(s *Scope, m *ast.Member) (ast.TypeNode, error) {
	ref, static, err := c.memberRef(s, m)
	if err != nil {
		return nil, err
	}
	if ref.Field != nil {
		if static {
			return nil, errors.New(errors.ErrorFieldNotFound,
				fmt.Sprintf("'%s' is a field; access it through a value of type %s", m.Name.Value, ast.TypeString(ref.Owner)),
				errors.SpanOf(&m.Name)).Build()
		}
		return ref.Field.Type, nil
	}
	return nil, errors.New(errors.ErrorInvalidOperation,
		fmt.Sprintf("method '%s' must be called", m.Name.Value), errors.SpanOf(&m.Name)).
		WithHint(fmt.Sprintf("write %s(...)", m.Name.Value)).
		Build()
}

func (c *Checker) checkIndex(s *Scope, ix *ast.Index) (ast.TypeNode, error) {
	obj, err := c.checkValue(s, ix.Object)
	if err != nil {
		return nil, err
	}
	idx, err := c.checkValue(s, ix.Index)
	if err != nil {
		return nil, err
	}
	if !types.IsInteger(idx) {
		return nil, errors.TypeMismatch("int", ast.TypeString(idx), errors.SpanOf(ix.Index))
	}

	if types.Is(obj, types.String) {
		return types.Named(types.Char), nil
	}
	bt, ok := obj.(*ast.BasicType)
	if !ok || (!bt.IsArray() && !bt.IsPointer()) {
		return nil, errors.InvalidIndex(ast.TypeString(obj), errors.SpanOf(ix.Object))
	}
	return bt.Element(), nil
}

func (c *Checker) checkCast(s *Scope, cast *ast.Cast) (ast.TypeNode, error) {
	to, err := c.resolveType(s, cast.Target)
	if err != nil {
		return nil, err
	}
	if err := c.checkStorable(to, errors.SpanOf(cast)); err != nil {
		return nil, err
	}
	cast.Target = to

	from, err := c.checkValue(s, cast.Value)
	if err != nil {
		return nil, err
	}
	if !castAllowed(from, to) {
		return nil, errors.InvalidCast(ast.TypeString(from), ast.TypeString(to), errors.SpanOf(cast))
	}
	return to, nil
}

func (c *Checker) checkMatch(s *Scope, m *ast.Match) (ast.TypeNode, error) {
	value, err := c.checkValue(s, m.Value)
	if err != nil {
		return nil, err
	}

	var result ast.TypeNode
	wildcard := false
	for _, arm := range m.Arms {
		if arm.Pattern == nil {
			wildcard = true
		} else {
			pt, err := c.checkValue(s, arm.Pattern)
			if err != nil {
				return nil, err
			}
			if !types.Comparable(value, pt) {
				return nil, errors.TypeMismatch(ast.TypeString(value), ast.TypeString(pt), errors.SpanOf(arm.Pattern))
			}
		}

		at, err := c.checkValue(s, arm.Value)
		if err != nil {
			return nil, err
		}
		switch {
		case result == nil || types.IsNull(result):
			result = at
		case !types.Compatible(result, at):
			return nil, errors.TypeMismatch(ast.TypeString(result), ast.TypeString(at), errors.SpanOf(arm.Value))
		}
	}

	if !wildcard {
		return nil, errors.NonExhaustiveMatch(errors.SpanOf(m))
	}
	return result, nil
}

func (c *Checker) checkTernary(s *Scope, t *ast.Ternary) (ast.TypeNode, error) {
	if err := c.expectCondition(s, t.Cond, "ternary"); err != nil {
		return nil, err
	}
	then, err := c.checkValue(s, t.Then)
	if err != nil {
		return nil, err
	}
	els, err := c.checkValue(s, t.Else)
	if err != nil {
		return nil, err
	}
	switch {
	case types.IsNull(then) && types.Compatible(els, then):
		return els, nil
	case types.Compatible(then, els):
		return then, nil
	}
	return nil, errors.TypeMismatch(ast.TypeString(then), ast.TypeString(els), errors.SpanOf(t.Else))
}

func (c *Checker) checkArrayLiteral(s *Scope, a *ast.ArrayLiteral) (ast.TypeNode, error) {
	if len(a.Elements) == 0 {
		return nil, errors.New(errors.ErrorCannotInfer, "cannot infer the element type of an empty array", errors.SpanOf(a)).Build()
	}

	first, err := c.checkValue(s, a.Elements[0])
	if err != nil {
		return nil, err
	}
	elem, ok := first.(*ast.BasicType)
	if !ok || types.IsNull(first) {
		return nil, errors.New(errors.ErrorTypeMismatch,
			fmt.Sprintf("arrays cannot hold values of type %s", ast.TypeString(first)), errors.SpanOf(a.Elements[0])).Build()
	}
	for _, el := range a.Elements[1:] {
		if _, err := c.expect(s, el, elem); err != nil {
			return nil, err
		}
	}

	out := elem.Clone()
	out.ArrayDims = append([]int{len(a.Elements)}, elem.ArrayDims...)
	return out, nil
}

func (c *Checker) checkStructLiteral(s *Scope, lit *ast.StructLiteral) (ast.TypeNode, error) {
	resolved, err := c.resolveType(s, lit.Struct)
	if err != nil {
		return nil, err
	}
	t, ok := resolved.(*ast.BasicType)
	if !ok || !types.IsStruct(c.registry, t) {
		return nil, errors.New(errors.ErrorTypeMismatch,
			fmt.Sprintf("%s is not a struct", ast.TypeString(resolved)), errors.SpanOf(lit.Struct)).Build()
	}
	lit.Struct = t

	fields := map[string]*types.Field{}
	var names []string
	for _, f := range types.Fields(c.registry, t) {
		fields[f.Name] = f
		names = append(names, f.Name)
	}

	seen := map[string]bool{}
	for _, init := range lit.Fields {
		f, ok := fields[init.Name.Value]
		if !ok {
			return nil, errors.FieldNotFound(t.String(), init.Name.Value, errors.SpanOf(&init.Name), names)
		}
		if seen[f.Name] {
			return nil, errors.DuplicateField(f.Name, errors.SpanOf(&init.Name))
		}
		seen[f.Name] = true
		if _, err := c.expect(s, init.Value, f.Type); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// checkGenericInstantiation handles `id<int>` and `Box<int>` outside call
// position.
func (c *Checker) checkGenericInstantiation(s *Scope, g *ast.GenericInstantiation) (ast.TypeNode, error) {
	id, ok := g.Base.(*ast.Identifier)
	if !ok {
		return nil, errors.InvalidExpression("type arguments can only follow a name", errors.SpanOf(g))
	}
	args, err := c.resolveTypeArgs(s, g.TypeArgs)
	if err != nil {
		return nil, err
	}
	g.TypeArgs = args

	sym := s.Lookup(id.Name)
	if sym == nil {
		return nil, errors.UndefinedVariable(id.Name, errors.SpanOf(id), s.Names(nil))
	}
	switch sym.Kind {
	case SymbolStruct:
		t, err := c.resolveType(s, &ast.BasicType{Loc: g.Loc, Name: id.Name, Generics: args})
		if err != nil {
			return nil, err
		}
		meta := &ast.MetaType{Inner: t}
		id.SetResolvedType(meta)
		return meta, nil
	case SymbolFunction:
		decl := sym.Node.(*ast.FunctionDecl)
		if len(args) != len(decl.TypeParams) {
			return nil, errors.GenericArity(decl.Name.Value, len(decl.TypeParams), len(args), errors.SpanOf(g))
		}
		sig := types.Signature(decl, types.Bind(decl.TypeParams, args))
		id.SetResolvedType(sig)
		return sig, nil
	}
	return nil, errors.New(errors.ErrorInvalidExpression,
		fmt.Sprintf("%s '%s' does not take type arguments", sym.Kind, id.Name), errors.SpanOf(g)).Build()
}

func (c *Checker) resolveTypeArgs(s *Scope, args []ast.TypeNode) ([]ast.TypeNode, error) {
	out := make([]ast.TypeNode, len(args))
	for i, a := range args {
		t, err := c.resolveType(s, a)
		if err != nil {
			return nil, err
		}
		if err := c.checkStorable(t, errors.SpanOf(a)); err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
