package types

import "ember/internal/ast"

// Env binds type parameter names to concrete types.
type Env map[string]ast.TypeNode

// Bind pairs type parameters with arguments. Extra parameters or arguments
// are ignored; arity is checked by the caller.
func Bind(params []ast.Ident, args []ast.TypeNode) Env {
	env := make(Env, len(params))
	for i, p := range params {
		if i < len(args) {
			env[p.Value] = args[i]
		}
	}
	return env
}

// Args returns the bound types of params in order.
func (e Env) Args(params []ast.Ident) []ast.TypeNode {
	out := make([]ast.TypeNode, len(params))
	for i, p := range params {
		out[i] = e[p.Value]
	}
	return out
}

// Substitute replaces type parameter names in t by their bindings in env.
// Struct types never name a type parameter, even when the names agree.
// Pointer depth and array dimensions of the use site accumulate onto the
// bound type: T[3] with T = *int yields *int[3].
func Substitute(t ast.TypeNode, env Env) ast.TypeNode {
	if t == nil || len(env) == 0 {
		return t
	}

	switch t := t.(type) {
	case *ast.BasicType:
		if bound, ok := env[t.Name]; ok && t.Module == "" && len(t.Generics) == 0 {
			return accumulate(t, bound)
		}
		c := t.Clone()
		for i, g := range c.Generics {
			c.Generics[i] = Substitute(g, env)
		}
		return c

	case *ast.FunctionType:
		f := &ast.FunctionType{
			Return:   Substitute(t.Return, env),
			Variadic: t.Variadic,
			Decl:     t.Decl,
		}
		for _, p := range t.Params {
			f.Params = append(f.Params, Substitute(p, env))
		}
		return f

	case *ast.TupleType:
		tt := &ast.TupleType{}
		for _, e := range t.Elements {
			tt.Elements = append(tt.Elements, Substitute(e, env))
		}
		return tt

	case *ast.MetaType:
		return &ast.MetaType{Inner: Substitute(t.Inner, env)}
	}
	return t
}

func accumulate(use *ast.BasicType, bound ast.TypeNode) ast.TypeNode {
	b, ok := bound.(*ast.BasicType)
	if !ok {
		// Only a bare use can take a function or tuple binding.
		return bound
	}
	c := b.Clone()
	c.PointerDepth += use.PointerDepth
	if len(use.ArrayDims) > 0 {
		c.ArrayDims = append(append([]int(nil), use.ArrayDims...), b.ArrayDims...)
	}
	return c
}

// SubstituteAll maps Substitute over ts.
func SubstituteAll(ts []ast.TypeNode, env Env) []ast.TypeNode {
	out := make([]ast.TypeNode, len(ts))
	for i, t := range ts {
		out[i] = Substitute(t, env)
	}
	return out
}

// Signature returns the function type of decl with env applied.
func Signature(decl *ast.FunctionDecl, env Env) *ast.FunctionType {
	f := &ast.FunctionType{
		Return:   Substitute(decl.Return, env),
		Variadic: decl.Variadic,
		Decl:     decl,
	}
	for _, p := range decl.Params {
		f.Params = append(f.Params, Substitute(p.Type, env))
	}
	return f
}
