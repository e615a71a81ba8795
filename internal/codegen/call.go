package codegen

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/ir"
)

// generateCall lowers a call according to how the checker resolved it.
// Methods receive the address of their receiver as the first argument.
func (g *Generator) generateCall(call *ast.Call) (*ir.Value, error) {
	var (
		callee *ir.Value
		sig    *ir.FuncType
		args   []*ir.Value
		err    error
	)

	switch call.Kind {
	case ast.CallFunction:
		if call.Target == nil {
			return nil, errors.Internal("call has no resolved target", errors.SpanOf(call))
		}
		callee, sig, err = g.declare(call.Target, nil, g.resolveAll(call.TypeArgs))

	case ast.CallMethod:
		m, ok := call.Callee.(*ast.Member)
		if !ok || call.Target == nil || call.Owner == nil {
			return nil, errors.Internal("method call has no resolved receiver", errors.SpanOf(call))
		}
		owner, ok := g.resolve(call.Owner).(*ast.BasicType)
		if !ok {
			return nil, errors.Internal("method owner is not a struct", errors.SpanOf(call))
		}
		if callee, sig, err = g.declare(call.Target, owner, nil); err != nil {
			return nil, err
		}
		recv, err := g.receiver(m.Object)
		if err != nil {
			return nil, err
		}
		// Inherited methods take the declaring struct.
		if want := sig.Params[0]; recv.Type.String() != want.String() {
			recv = g.fn.b.Cast("bitcast", recv, want)
		}
		args = append(args, recv)

	case ast.CallStatic:
		if call.Target == nil || call.Owner == nil {
			return nil, errors.Internal("static call has no resolved owner", errors.SpanOf(call))
		}
		owner, ok := g.resolve(call.Owner).(*ast.BasicType)
		if !ok {
			return nil, errors.Internal("static owner is not a struct", errors.SpanOf(call))
		}
		callee, sig, err = g.declare(call.Target, owner, nil)

	case ast.CallIndirect:
		if callee, err = g.generateExpr(call.Callee); err != nil {
			return nil, err
		}
		ft, ok := ir.Elem(callee.Type).(*ir.FuncType)
		if !ok {
			return nil, errors.Internal(fmt.Sprintf("calling a value of type %s", callee.Type), errors.SpanOf(call))
		}
		sig = ft

	default:
		return nil, errors.Internal(fmt.Sprintf("unknown call kind %d", call.Kind), errors.SpanOf(call))
	}
	if err != nil {
		return nil, err
	}

	fixed := len(sig.Params) - len(args)
	for i, a := range call.Args {
		v, err := g.generateExpr(a)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errors.Internal("void argument", errors.SpanOf(a))
		}
		if i < fixed {
			v = coerce(v, sig.Params[len(args)])
		}
		args = append(args, v)
	}
	return g.fn.b.Call(callee, sig, args...), nil
}

// receiver yields the pointer a method is called on. A pointer-typed object
// is the receiver itself; any other object is passed by address.
func (g *Generator) receiver(obj ast.Expr) (*ir.Value, error) {
	t, err := g.typeOf(obj)
	if err != nil {
		return nil, err
	}
	if bt, ok := t.(*ast.BasicType); ok && bt.IsPointer() {
		return g.generateExpr(obj)
	}
	return g.generateAddress(obj)
}
