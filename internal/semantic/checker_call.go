package semantic

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/types"
)

// checkCall resolves the callee statically where it can. Named functions,
// methods and static methods are recorded on the call together with their
// type arguments; anything else must be a function value.
func (c *Checker) checkCall(s *Scope, call *ast.Call) (ast.TypeNode, error) {
	switch callee := call.Callee.(type) {
	case *ast.Identifier:
		sym := s.Lookup(callee.Name)
		if sym == nil {
			return nil, errors.UndefinedFunction(callee.Name, errors.SpanOf(callee),
				s.Names(func(sym *Symbol) bool { return sym.Kind == SymbolFunction }))
		}
		if sym.Kind == SymbolFunction {
			return c.callFunction(s, call, sym.Node.(*ast.FunctionDecl), nil, callee)
		}

	case *ast.GenericInstantiation:
		id, ok := callee.Base.(*ast.Identifier)
		if !ok {
			break
		}
		sym := s.Lookup(id.Name)
		if sym == nil || sym.Kind != SymbolFunction {
			break
		}
		args, err := c.resolveTypeArgs(s, callee.TypeArgs)
		if err != nil {
			return nil, err
		}
		callee.TypeArgs = args
		t, err := c.callFunction(s, call, sym.Node.(*ast.FunctionDecl), args, id)
		if err != nil {
			return nil, err
		}
		callee.SetResolvedType(id.ResolvedType())
		return t, nil

	case *ast.Member:
		return c.callMember(s, call, callee)
	}

	t, err := c.checkValue(s, call.Callee)
	if err != nil {
		return nil, err
	}
	fn, ok := t.(*ast.FunctionType)
	if !ok {
		return nil, errors.NotCallable(ast.TypeString(t), errors.SpanOf(call.Callee))
	}
	argTypes, err := c.checkArgs(s, call.Args)
	if err != nil {
		return nil, err
	}
	if err := c.matchArgs(call, "function value", fn, argTypes); err != nil {
		return nil, err
	}
	call.Kind = ast.CallIndirect
	return returnType(fn), nil
}

func (c *Checker) checkArgs(s *Scope, args []ast.Expr) ([]ast.TypeNode, error) {
	out := make([]ast.TypeNode, len(args))
	for i, a := range args {
		t, err := c.checkValue(s, a)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// matchArgs checks arity and argument compatibility against sig. Extra
// arguments to a variadic function are unchecked.
func (c *Checker) matchArgs(call *ast.Call, name string, sig *ast.FunctionType, argTypes []ast.TypeNode) error {
	if len(argTypes) < len(sig.Params) || (!sig.Variadic && len(argTypes) != len(sig.Params)) {
		return errors.InvalidArguments(name, len(sig.Params), len(argTypes), errors.SpanOf(call))
	}
	for i, p := range sig.Params {
		if !types.Compatible(p, argTypes[i]) {
			return errors.TypeMismatch(ast.TypeString(p), ast.TypeString(argTypes[i]), errors.SpanOf(call.Args[i]))
		}
	}
	return nil
}

func returnType(sig *ast.FunctionType) ast.TypeNode {
	if sig.Return == nil {
		return types.Named(types.Void)
	}
	return sig.Return
}

// callFunction checks a call of a named function. Type arguments are either
// explicit or inferred from the argument types.
func (c *Checker) callFunction(s *Scope, call *ast.Call, decl *ast.FunctionDecl, explicit []ast.TypeNode, callee *ast.Identifier) (ast.TypeNode, error) {
	name := decl.Name.Value
	argTypes, err := c.checkArgs(s, call.Args)
	if err != nil {
		return nil, err
	}

	var env types.Env
	switch {
	case explicit != nil:
		if len(explicit) != len(decl.TypeParams) {
			return nil, errors.GenericArity(name, len(decl.TypeParams), len(explicit), errors.SpanOf(call.Callee))
		}
		env = types.Bind(decl.TypeParams, explicit)

	case decl.IsGeneric():
		params := map[string]bool{}
		for _, tp := range decl.TypeParams {
			params[tp.Value] = true
		}
		env = types.Env{}
		for i, p := range decl.Params {
			if i >= len(argTypes) {
				break
			}
			if !types.Unify(p.Type, argTypes[i], params, env) {
				return nil, errors.TypeMismatch(ast.TypeString(types.Substitute(p.Type, env)), ast.TypeString(argTypes[i]), errors.SpanOf(call.Args[i]))
			}
		}
		for _, tp := range decl.TypeParams {
			if _, ok := env[tp.Value]; !ok {
				return nil, errors.CannotInfer(name, tp.Value, errors.SpanOf(call))
			}
		}
	}

	sig := types.Signature(decl, env)
	if err := c.matchArgs(call, name, sig, argTypes); err != nil {
		return nil, err
	}

	callee.SetResolvedType(sig)
	call.Kind = ast.CallFunction
	call.Target = decl
	if decl.IsGeneric() {
		call.TypeArgs = env.Args(decl.TypeParams)
	}
	return returnType(sig), nil
}

// callMember checks obj.method(...) and Type.static(...). Dispatch is static:
// the method is found on the declared type of the receiver, walking up its
// parents.
func (c *Checker) callMember(s *Scope, call *ast.Call, m *ast.Member) (ast.TypeNode, error) {
	ref, static, err := c.memberRef(s, m)
	if err != nil {
		return nil, err
	}
	span := errors.SpanOf(&m.Name)

	if ref.Field != nil {
		// A field holding a function value.
		if static {
			return nil, errors.New(errors.ErrorFieldNotFound,
				fmt.Sprintf("'%s' is a field, not a static method", m.Name.Value), span).Build()
		}
		m.SetResolvedType(ref.Field.Type)
		fn, ok := ref.Field.Type.(*ast.FunctionType)
		if !ok {
			return nil, errors.NotCallable(ast.TypeString(ref.Field.Type), span)
		}
		argTypes, err := c.checkArgs(s, call.Args)
		if err != nil {
			return nil, err
		}
		if err := c.matchArgs(call, m.Name.Value, fn, argTypes); err != nil {
			return nil, err
		}
		call.Kind = ast.CallIndirect
		return returnType(fn), nil
	}

	method := ref.Method
	switch {
	case static && !method.IsStatic:
		return nil, errors.New(errors.ErrorInvalidOperation,
			fmt.Sprintf("method '%s' needs a receiver of type %s", m.Name.Value, ast.TypeString(ref.Owner)), span).
			WithHint("call it on a value instead of the type").
			Build()
	case !static && method.IsStatic:
		return nil, errors.New(errors.ErrorInvalidOperation,
			fmt.Sprintf("static method '%s' must be called on the type", m.Name.Value), span).
			WithHint(fmt.Sprintf("write %s.%s(...)", ref.Owner.Name, m.Name.Value)).
			Build()
	}

	if !static && !types.IsPointer(m.Object.ResolvedType()) && !c.addressable(s, m.Object) {
		return nil, errors.New(errors.ErrorInvalidOperation,
			fmt.Sprintf("cannot call method '%s' on a temporary value", m.Name.Value), errors.SpanOf(m.Object)).
			WithHint("store the value in a local first").
			Build()
	}

	sig := types.Signature(method, ref.Env)
	argTypes, err := c.checkArgs(s, call.Args)
	if err != nil {
		return nil, err
	}
	if err := c.matchArgs(call, ref.Owner.Name+"."+m.Name.Value, sig, argTypes); err != nil {
		return nil, err
	}

	m.SetResolvedType(sig)
	call.Target = method
	call.Owner = ref.Owner
	call.TypeArgs = ref.Owner.Generics
	if static {
		call.Kind = ast.CallStatic
	} else {
		call.Kind = ast.CallMethod
	}
	return returnType(sig), nil
}
