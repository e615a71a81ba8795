package types

import "ember/internal/ast"

// Unify matches a parameter type that may mention the type parameters in
// params against a concrete argument type, recording bindings in env. It
// reports false when an existing binding conflicts with the argument; shapes
// that do not mention type parameters are left for the compatibility check.
func Unify(param, arg ast.TypeNode, params map[string]bool, env Env) bool {
	if param == nil || arg == nil || IsNull(arg) {
		return true
	}

	switch p := param.(type) {
	case *ast.BasicType:
		if params[p.Name] && p.Module == "" && len(p.Generics) == 0 {
			return bindParam(p, arg, env)
		}
		a, ok := arg.(*ast.BasicType)
		if !ok || a.Name != p.Name || a.Module != p.Module || len(a.Generics) != len(p.Generics) {
			return true
		}
		for i := range p.Generics {
			if !Unify(p.Generics[i], a.Generics[i], params, env) {
				return false
			}
		}
		return true

	case *ast.FunctionType:
		a, ok := arg.(*ast.FunctionType)
		if !ok || len(a.Params) != len(p.Params) {
			return true
		}
		for i := range p.Params {
			if !Unify(p.Params[i], a.Params[i], params, env) {
				return false
			}
		}
		return Unify(p.Return, a.Return, params, env)

	case *ast.TupleType:
		a, ok := arg.(*ast.TupleType)
		if !ok || len(a.Elements) != len(p.Elements) {
			return true
		}
		for i := range p.Elements {
			if !Unify(p.Elements[i], a.Elements[i], params, env) {
				return false
			}
		}
		return true
	}
	return true
}

// bindParam strips the use-site pointers and dimensions of p from arg, the
// inverse of Substitute.
func bindParam(p *ast.BasicType, arg ast.TypeNode, env Env) bool {
	var bound ast.TypeNode = arg
	if p.PointerDepth > 0 || len(p.ArrayDims) > 0 {
		a, ok := arg.(*ast.BasicType)
		if !ok || a.PointerDepth < p.PointerDepth || len(a.ArrayDims) < len(p.ArrayDims) {
			return true
		}
		for i, d := range p.ArrayDims {
			if d != ast.UnsizedDim && d != a.ArrayDims[i] {
				return true
			}
		}
		c := a.Clone()
		c.PointerDepth -= p.PointerDepth
		c.ArrayDims = c.ArrayDims[len(p.ArrayDims):]
		if len(c.ArrayDims) == 0 {
			c.ArrayDims = nil
		}
		bound = c
	}

	if existing, ok := env[p.Name]; ok {
		return Identical(existing, bound)
	}
	env[p.Name] = bound
	return true
}
