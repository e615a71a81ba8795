package semantic

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/types"
)

// resolveType turns type syntax into its canonical form: aliases expanded,
// struct generic arity checked, builtins and type parameters validated. The
// result carries no source location.
func (c *Checker) resolveType(s *Scope, t ast.TypeNode) (ast.TypeNode, error) {
	switch t := t.(type) {
	case nil:
		return nil, nil

	case *ast.BasicType:
		return c.resolveBasic(s, t)

	case *ast.FunctionType:
		f := &ast.FunctionType{Variadic: t.Variadic}
		for _, p := range t.Params {
			rp, err := c.resolveType(s, p)
			if err != nil {
				return nil, err
			}
			if err := c.checkStorable(rp, errors.SpanOf(p)); err != nil {
				return nil, err
			}
			f.Params = append(f.Params, rp)
		}
		ret, err := c.resolveType(s, t.Return)
		if err != nil {
			return nil, err
		}
		if !types.IsVoid(ret) {
			f.Return = ret
		}
		return f, nil

	case *ast.TupleType:
		tt := &ast.TupleType{}
		for _, e := range t.Elements {
			re, err := c.resolveType(s, e)
			if err != nil {
				return nil, err
			}
			if err := c.checkStorable(re, errors.SpanOf(e)); err != nil {
				return nil, err
			}
			tt.Elements = append(tt.Elements, re)
		}
		return tt, nil

	case *ast.MetaType:
		inner, err := c.resolveType(s, t.Inner)
		if err != nil {
			return nil, err
		}
		return &ast.MetaType{Inner: inner}, nil
	}
	return nil, errors.Internal(fmt.Sprintf("unhandled type node %T", t), errors.SpanOf(t))
}

func (c *Checker) resolveBasic(s *Scope, t *ast.BasicType) (ast.TypeNode, error) {
	span := errors.SpanOf(t)

	if types.IsBuiltinType(t.Name) {
		if len(t.Generics) > 0 {
			return nil, errors.GenericArity(t.Name, 0, len(t.Generics), span)
		}
		if t.Name == string(types.Void) && !t.IsPlain() {
			return nil, errors.New(errors.ErrorTypeMismatch, "void cannot be pointed to or stored in an array", span).
				WithHint("use *char for an untyped pointer").
				Build()
		}
		return t.Clone(), nil
	}

	sym := s.Lookup(t.Name)
	if sym == nil || sym.IsValue() {
		return nil, errors.UndefinedType(t.Name, span, s.Names(func(sym *Symbol) bool { return sym.IsType() }))
	}

	switch sym.Kind {
	case SymbolTypeParam:
		if len(t.Generics) > 0 {
			return nil, errors.GenericArity(t.Name, 0, len(t.Generics), span)
		}
		return t.Clone(), nil

	case SymbolStruct:
		decl := sym.Node.(*ast.StructDecl)
		if len(t.Generics) != len(decl.TypeParams) {
			return nil, errors.GenericArity(t.Name, len(decl.TypeParams), len(t.Generics), span)
		}
		out := t.Clone()
		out.Module = decl.Module
		for i, g := range t.Generics {
			rg, err := c.resolveType(s, g)
			if err != nil {
				return nil, err
			}
			if err := c.checkStorable(rg, errors.SpanOf(g)); err != nil {
				return nil, err
			}
			out.Generics[i] = rg
		}
		return out, nil

	case SymbolTypeAlias:
		if len(t.Generics) > 0 {
			return nil, errors.GenericArity(t.Name, 0, len(t.Generics), span)
		}
		target, err := c.aliasTarget(sym)
		if err != nil {
			return nil, err
		}
		// The use site's pointers and dimensions wrap the alias target the
		// same way they wrap a type parameter.
		use := &ast.BasicType{Name: t.Name, PointerDepth: t.PointerDepth, ArrayDims: t.ArrayDims}
		return types.Substitute(use, types.Env{t.Name: target}), nil
	}

	return nil, errors.UndefinedType(t.Name, span, nil)
}

// receiver returns the struct a member access applies to. Values of struct
// type and single pointers to structs both qualify.
func (c *Checker) receiver(t ast.TypeNode) (*ast.BasicType, bool) {
	bt, ok := t.(*ast.BasicType)
	if !ok || len(bt.ArrayDims) > 0 || bt.PointerDepth > 1 {
		return nil, false
	}
	if c.registry.Struct(bt) == nil {
		return nil, false
	}
	return bt.Base(), true
}

// resolvedStruct returns the struct named by a MetaType, as used for static
// member access.
func (c *Checker) resolvedStruct(t ast.TypeNode) (*ast.BasicType, bool) {
	meta, ok := t.(*ast.MetaType)
	if !ok {
		return nil, false
	}
	bt, ok := meta.Inner.(*ast.BasicType)
	if !ok || !bt.IsPlain() || c.registry.Struct(bt) == nil {
		return nil, false
	}
	return bt, true
}

// castAllowed reports whether cast<to>(from) is a valid conversion.
func castAllowed(from, to ast.TypeNode) bool {
	if types.Identical(from, to) {
		return true
	}
	numericish := func(t ast.TypeNode) bool { return types.IsNumeric(t) || types.Is(t, types.Bool) }
	switch {
	case numericish(from) && numericish(to):
		// bool only converts to and from integers.
		if types.Is(from, types.Bool) && types.Is(to, types.Float) || types.Is(from, types.Float) && types.Is(to, types.Bool) {
			return false
		}
		return true
	case types.IsPointerLike(from) && types.IsPointerLike(to):
		return !types.IsNull(to)
	case types.IsPointerLike(from) && types.Is(to, types.Int):
		return true
	case types.Is(from, types.Int) && types.IsPointerLike(to):
		return !types.IsNull(to)
	}
	return false
}
