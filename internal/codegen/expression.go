package codegen

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/ir"
	"ember/internal/types"
)

// coerce adapts v to the type of the slot or parameter receiving it. Only
// nullptr needs adapting: it takes the pointer type of its destination.
func coerce(v *ir.Value, t ir.Type) *ir.Value {
	if v != nil && v.Name == "null" && ir.IsPointer(t) && v.Type.String() != t.String() {
		return ir.Const(t, "null")
	}
	return v
}

// generateExpr evaluates e into a register or constant. Calls of void
// functions yield nil.
func (g *Generator) generateExpr(e ast.Expr) (*ir.Value, error) {
	b := g.fn.b
	switch e := e.(type) {
	case *ast.Literal:
		if e.Kind == ast.StringLiteral {
			return g.stringValue(e.Value.(string)), nil
		}
		t, err := g.llType(e)
		if err != nil {
			return nil, err
		}
		text, err := g.literalText(e, t)
		if err != nil {
			return nil, err
		}
		return ir.Const(t, text), nil

	case *ast.Identifier:
		return g.generateIdentifier(e)

	case *ast.Binary:
		if e.Op == "&&" || e.Op == "||" {
			return g.generateLogical(e)
		}
		left, err := g.generateExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := g.generateExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return g.binary(e.Op, left, right, e)

	case *ast.Unary:
		return g.generateUnary(e)

	case *ast.Assignment:
		addr, err := g.generateAddress(e.Target)
		if err != nil {
			return nil, err
		}
		value, err := g.generateExpr(e.Value)
		if err != nil {
			return nil, err
		}
		if e.Op != "=" {
			old := b.Load(addr)
			if value, err = g.binary(e.Op[:len(e.Op)-1], old, value, e); err != nil {
				return nil, err
			}
		}
		value = coerce(value, ir.Elem(addr.Type))
		b.Store(value, addr)
		return value, nil

	case *ast.Call:
		return g.generateCall(e)

	case *ast.Member, *ast.Index:
		addr, err := g.generateAddress(e)
		if err != nil {
			return nil, err
		}
		return b.Load(addr), nil

	case *ast.Cast:
		value, err := g.generateExpr(e.Value)
		if err != nil {
			return nil, err
		}
		to, err := g.lower(e.Target)
		if err != nil {
			return nil, err
		}
		return g.convert(value, to), nil

	case *ast.Sizeof:
		t, err := g.lower(e.Target)
		if err != nil {
			return nil, err
		}
		return g.sizeOf(t), nil

	case *ast.Match:
		return g.generateMatch(e)

	case *ast.Ternary:
		return g.generateTernary(e)

	case *ast.ArrayLiteral:
		t, err := g.llType(e)
		if err != nil {
			return nil, err
		}
		elem := t.(*ir.ArrayType).Elem
		agg := ir.Const(t, "undef")
		for i, el := range e.Elements {
			v, err := g.generateExpr(el)
			if err != nil {
				return nil, err
			}
			agg = b.InsertValue(agg, coerce(v, elem), i)
		}
		return agg, nil

	case *ast.StructLiteral:
		return g.generateStructLiteral(e)

	case *ast.TupleLiteral:
		t, err := g.llType(e)
		if err != nil {
			return nil, err
		}
		agg := ir.Const(t, "undef")
		for i, el := range e.Elements {
			v, err := g.generateExpr(el)
			if err != nil {
				return nil, err
			}
			agg = b.InsertValue(agg, v, i)
		}
		return agg, nil

	case *ast.GenericInstantiation:
		id, ok := e.Base.(*ast.Identifier)
		if !ok {
			return nil, errors.Internal("type arguments on a non-name", errors.SpanOf(e))
		}
		decl := g.function(id.Name)
		if decl == nil {
			return nil, errors.Internal(fmt.Sprintf("%s is not a function", id.Name), errors.SpanOf(e))
		}
		callee, _, err := g.declare(decl, nil, g.resolveAll(e.TypeArgs))
		return callee, err
	}
	return nil, errors.Internal(fmt.Sprintf("unhandled expression %T", e), errors.SpanOf(e))
}

func (g *Generator) resolveAll(ts []ast.TypeNode) []ast.TypeNode {
	out := make([]ast.TypeNode, len(ts))
	for i, t := range ts {
		out[i] = g.resolve(t)
	}
	return out
}

// stringValue returns a pointer to the first byte of a de-duplicated
// string constant.
func (g *Generator) stringValue(s string) *ir.Value {
	c := g.str(s)
	base := &ir.Value{Type: ir.PointerTo(c.Type()), Name: "@" + c.Name}
	return g.fn.b.GEP(ir.I8, base, ir.Const(ir.I64, "0"), ir.Const(ir.I64, "0"))
}

// generateIdentifier loads a local or global, or yields the address of a
// named function.
func (g *Generator) generateIdentifier(id *ast.Identifier) (*ir.Value, error) {
	if slot := g.fn.lookup(id.Name); slot != nil {
		return g.fn.b.Load(slot), nil
	}
	addr, ok, err := g.global(id.Name)
	if err != nil {
		return nil, err
	}
	if ok {
		return g.fn.b.Load(addr), nil
	}
	if decl := g.function(id.Name); decl != nil {
		callee, _, err := g.declare(decl, nil, nil)
		return callee, err
	}
	return nil, errors.Internal(fmt.Sprintf("undefined name %s", id.Name), errors.SpanOf(id))
}

// generateAddress resolves e to the address of its storage. Expressions
// without storage are evaluated into a fresh stack slot.
func (g *Generator) generateAddress(e ast.Expr) (*ir.Value, error) {
	b := g.fn.b
	switch e := e.(type) {
	case *ast.Identifier:
		if slot := g.fn.lookup(e.Name); slot != nil {
			return slot, nil
		}
		addr, ok, err := g.global(e.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			return addr, nil
		}

	case *ast.Member:
		return g.memberAddress(e)

	case *ast.Index:
		objType, err := g.typeOf(e.Object)
		if err != nil {
			return nil, err
		}
		index, err := g.generateExpr(e.Index)
		if err != nil {
			return nil, err
		}
		index = g.widen(index)

		if bt, ok := objType.(*ast.BasicType); ok && bt.IsArray() {
			base, err := g.generateAddress(e.Object)
			if err != nil {
				return nil, err
			}
			elem := base.Type.(*ir.PointerType).Elem.(*ir.ArrayType).Elem
			return b.GEP(elem, base, ir.Const(ir.I64, "0"), index), nil
		}
		// Pointers and strings: load the pointer, then offset it.
		ptr, err := g.generateExpr(e.Object)
		if err != nil {
			return nil, err
		}
		return b.GEP(ir.Elem(ptr.Type), ptr, index), nil

	case *ast.Unary:
		if e.Op == "*" && !e.Postfix {
			return g.generateExpr(e.Operand)
		}
	}

	v, err := g.generateExpr(e)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.Internal("void value has no address", errors.SpanOf(e))
	}
	slot := b.Alloca("tmp", v.Type)
	b.Store(v, slot)
	return slot, nil
}

// memberAddress computes a field address from the receiver's layout. The
// receiver is either a struct in storage or a pointer to one.
func (g *Generator) memberAddress(m *ast.Member) (*ir.Value, error) {
	objType, err := g.typeOf(m.Object)
	if err != nil {
		return nil, err
	}
	bt, ok := objType.(*ast.BasicType)
	if !ok {
		return nil, errors.Internal(fmt.Sprintf("member of %s", ast.TypeString(objType)), errors.SpanOf(m))
	}

	var base *ir.Value
	if bt.IsPointer() {
		base, err = g.generateExpr(m.Object)
	} else {
		base, err = g.generateAddress(m.Object)
	}
	if err != nil {
		return nil, err
	}

	ref, ok := types.LookupMember(g.registry, bt.Base(), m.Name.Value)
	if !ok || ref.Field == nil {
		return nil, errors.Internal(fmt.Sprintf("%s has no field %s", bt.Base(), m.Name.Value), errors.SpanOf(&m.Name))
	}
	ft, err := g.lower(ref.Field.Type)
	if err != nil {
		return nil, err
	}
	return g.fn.b.GEP(ft, base, ir.Const(ir.I32, "0"), ir.Const(ir.I32, fmt.Sprint(ref.Field.Index))), nil
}

// widen sign-extends narrow integers to i64 for indexing and offsets.
func (g *Generator) widen(v *ir.Value) *ir.Value {
	if it, ok := v.Type.(*ir.IntType); ok && it.Bits < 64 {
		return g.fn.b.Cast("sext", v, ir.I64)
	}
	return v
}

var (
	intOps = map[string]string{
		"+": "add", "-": "sub", "*": "mul", "/": "sdiv", "%": "srem",
		"&": "and", "|": "or", "^": "xor", "<<": "shl", ">>": "ashr",
	}
	floatOps = map[string]string{
		"+": "fadd", "-": "fsub", "*": "fmul", "/": "fdiv",
	}
	intPredicates = map[string]string{
		"==": "eq", "!=": "ne", "<": "slt", "<=": "sle", ">": "sgt", ">=": "sge",
	}
	pointerPredicates = map[string]string{
		"==": "eq", "!=": "ne", "<": "ult", "<=": "ule", ">": "ugt", ">=": "uge",
	}
	floatPredicates = map[string]string{
		"==": "oeq", "!=": "une", "<": "olt", "<=": "ole", ">": "ogt", ">=": "oge",
	}
)

// binary applies op to two evaluated operands. Pointer arithmetic is
// handled first: pointer plus or minus an integer offsets by elements, in
// either operand order for plus, and the difference of two pointers counts
// elements.
func (g *Generator) binary(op string, left, right *ir.Value, at ast.Node) (*ir.Value, error) {
	b := g.fn.b
	lp, rp := ir.IsPointer(left.Type), ir.IsPointer(right.Type)
	_, li := left.Type.(*ir.IntType)
	_, ri := right.Type.(*ir.IntType)

	if _, ok := intPredicates[op]; ok {
		return g.compare(op, left, right), nil
	}

	switch {
	case (op == "+" || op == "-") && lp && ri:
		offset := g.widen(right)
		if op == "-" {
			offset = b.Binary("sub", ir.Const(ir.I64, "0"), offset)
		}
		return b.GEP(ir.Elem(left.Type), left, offset), nil

	case op == "+" && li && rp:
		return b.GEP(ir.Elem(right.Type), right, g.widen(left)), nil

	case op == "-" && lp && rp:
		l := b.Cast("ptrtoint", left, ir.I64)
		r := b.Cast("ptrtoint", right, ir.I64)
		diff := b.Binary("sub", l, r)
		return b.Binary("sdiv", diff, g.sizeOf(ir.Elem(left.Type))), nil
	}

	ops := intOps
	if ir.IsFloat(left.Type) {
		ops = floatOps
	}
	name, ok := ops[op]
	if !ok {
		return nil, errors.Internal(fmt.Sprintf("operator %s on %s", op, left.Type), errors.SpanOf(at))
	}
	return b.Binary(name, left, right), nil
}

// compare emits an equality or ordering test. A nullptr operand takes the
// type of the other side.
func (g *Generator) compare(op string, left, right *ir.Value) *ir.Value {
	left = coerce(left, right.Type)
	right = coerce(right, left.Type)

	preds := intPredicates
	switch {
	case ir.IsFloat(left.Type):
		preds = floatPredicates
	case ir.IsPointer(left.Type):
		preds = pointerPredicates
	}
	return g.fn.b.Compare(preds[op], left, right)
}

// generateLogical short-circuits && and || through a stack slot.
func (g *Generator) generateLogical(e *ast.Binary) (*ir.Value, error) {
	b := g.fn.b
	slot := b.Alloca("tmp", ir.I1)
	left, err := g.generateExpr(e.Left)
	if err != nil {
		return nil, err
	}
	b.Store(left, slot)

	prefix := "and"
	if e.Op == "||" {
		prefix = "or"
	}
	labels := b.Labels(prefix+".rhs", prefix+".end")
	if e.Op == "&&" {
		b.Branch(left, labels[0], labels[1])
	} else {
		b.Branch(left, labels[1], labels[0])
	}

	b.StartBlock(labels[0])
	right, err := g.generateExpr(e.Right)
	if err != nil {
		return nil, err
	}
	b.Store(right, slot)
	b.Jump(labels[1])

	b.StartBlock(labels[1])
	return b.Load(slot), nil
}

func (g *Generator) generateUnary(u *ast.Unary) (*ir.Value, error) {
	b := g.fn.b
	switch u.Op {
	case "&":
		return g.generateAddress(u.Operand)

	case "++", "--":
		addr, err := g.generateAddress(u.Operand)
		if err != nil {
			return nil, err
		}
		old := b.Load(addr)
		step := "1"
		if u.Op == "--" {
			step = "-1"
		}
		var updated *ir.Value
		if ir.IsPointer(old.Type) {
			updated = b.GEP(ir.Elem(old.Type), old, ir.Const(ir.I64, step))
		} else {
			updated = b.Binary("add", old, ir.Const(old.Type, step))
		}
		b.Store(updated, addr)
		if u.Postfix {
			return old, nil
		}
		return updated, nil
	}

	v, err := g.generateExpr(u.Operand)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case "-":
		if ir.IsFloat(v.Type) {
			return b.Binary("fsub", ir.Const(v.Type, floatText(negativeZero)), v), nil
		}
		return b.Binary("sub", ir.Const(v.Type, "0"), v), nil
	case "!":
		return b.Binary("xor", v, ir.Const(ir.I1, "true")), nil
	case "~":
		return b.Binary("xor", v, ir.Const(v.Type, "-1")), nil
	case "*":
		return b.Load(v), nil
	}
	return nil, errors.Internal(fmt.Sprintf("unhandled unary %s", u.Op), errors.SpanOf(u))
}

var negativeZero = func() float64 {
	z := 0.0
	return -z
}()

// convert implements cast<T>(v) between the representations involved.
func (g *Generator) convert(v *ir.Value, to ir.Type) *ir.Value {
	b := g.fn.b
	if v.Type.String() == to.String() {
		return v
	}
	if v.Name == "null" && ir.IsPointer(to) {
		return ir.Const(to, "null")
	}

	fromInt, fromIsInt := v.Type.(*ir.IntType)
	toInt, toIsInt := to.(*ir.IntType)
	switch {
	case ir.IsFloat(v.Type) && toIsInt:
		return b.Cast("fptosi", v, to)
	case fromIsInt && ir.IsFloat(to):
		if fromInt.Bits == 1 {
			return b.Cast("uitofp", v, to)
		}
		return b.Cast("sitofp", v, to)
	case fromIsInt && toIsInt:
		switch {
		case toInt.Bits == 1:
			return b.Compare("ne", v, ir.Const(v.Type, "0"))
		case fromInt.Bits == 1:
			return b.Cast("zext", v, to)
		case fromInt.Bits < toInt.Bits:
			return b.Cast("sext", v, to)
		default:
			return b.Cast("trunc", v, to)
		}
	case fromIsInt && ir.IsPointer(to):
		return b.Cast("inttoptr", v, to)
	case ir.IsPointer(v.Type) && toIsInt:
		return b.Cast("ptrtoint", v, to)
	}
	return b.Cast("bitcast", v, to)
}

// sizeOf computes the allocation size of t as the offset of the second
// element of an array of t starting at null.
func (g *Generator) sizeOf(t ir.Type) *ir.Value {
	b := g.fn.b
	end := b.GEP(t, ir.Const(ir.PointerTo(t), "null"), ir.Const(ir.I64, "1"))
	return b.Cast("ptrtoint", end, ir.I64)
}

// generateTernary selects between two values through a stack slot.
func (g *Generator) generateTernary(e *ast.Ternary) (*ir.Value, error) {
	b := g.fn.b
	t, err := g.llType(e)
	if err != nil {
		return nil, err
	}
	slot := b.Alloca("tmp", t)
	cond, err := g.generateExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	labels := b.Labels("cond.then", "cond.else", "cond.end")
	b.Branch(cond, labels[0], labels[1])

	for i, arm := range []ast.Expr{e.Then, e.Else} {
		b.StartBlock(labels[i])
		v, err := g.generateExpr(arm)
		if err != nil {
			return nil, err
		}
		b.Store(coerce(v, t), slot)
		b.Jump(labels[2])
	}

	b.StartBlock(labels[2])
	return b.Load(slot), nil
}

// generateMatch tests the arms in order. The wildcard arm ends the chain.
func (g *Generator) generateMatch(e *ast.Match) (*ir.Value, error) {
	b := g.fn.b
	t, err := g.llType(e)
	if err != nil {
		return nil, err
	}
	slot := b.Alloca("tmp", t)
	value, err := g.generateExpr(e.Value)
	if err != nil {
		return nil, err
	}
	end := b.Labels("match.end")[0]

	for _, arm := range e.Arms {
		if arm.Pattern != nil {
			pattern, err := g.generateExpr(arm.Pattern)
			if err != nil {
				return nil, err
			}
			labels := b.Labels("match.arm", "match.next")
			b.Branch(g.compare("==", value, pattern), labels[0], labels[1])
			b.StartBlock(labels[0])
			if err := g.storeArm(arm, t, slot, end); err != nil {
				return nil, err
			}
			b.StartBlock(labels[1])
			continue
		}
		if err := g.storeArm(arm, t, slot, end); err != nil {
			return nil, err
		}
		break
	}
	if !b.Terminated() {
		b.Unreachable()
	}

	b.StartBlock(end)
	return b.Load(slot), nil
}

func (g *Generator) storeArm(arm *ast.MatchArm, t ir.Type, slot *ir.Value, end string) error {
	v, err := g.generateExpr(arm.Value)
	if err != nil {
		return err
	}
	g.fn.b.Store(coerce(v, t), slot)
	g.fn.b.Jump(end)
	return nil
}

// generateStructLiteral inserts each field in the order written, at the
// slot the struct's layout assigns it. Omitted fields stay zero.
func (g *Generator) generateStructLiteral(lit *ast.StructLiteral) (*ir.Value, error) {
	b := g.fn.b
	bt, ok := g.resolve(lit.Struct).(*ast.BasicType)
	if !ok {
		return nil, errors.Internal("struct literal of a non-struct type", errors.SpanOf(lit))
	}
	t, err := g.lower(bt)
	if err != nil {
		return nil, err
	}

	fields := map[string]*types.Field{}
	for _, f := range types.Fields(g.registry, bt) {
		fields[f.Name] = f
	}

	agg := ir.Const(t, "zeroinitializer")
	for _, init := range lit.Fields {
		f, ok := fields[init.Name.Value]
		if !ok {
			return nil, errors.Internal(fmt.Sprintf("%s has no field %s", bt, init.Name.Value), errors.SpanOf(&init.Name))
		}
		ft, err := g.lower(f.Type)
		if err != nil {
			return nil, err
		}
		v, err := g.generateExpr(init.Value)
		if err != nil {
			return nil, err
		}
		agg = b.InsertValue(agg, coerce(v, ft), f.Index)
	}
	return agg, nil
}
