package types

import "ember/internal/ast"

// Compatible reports whether a value of type source can be used where target
// is expected. Comparison is structural: names, pointer depth, dimension
// count and generic arguments must agree. nullptr matches any pointer, and an
// unsized target dimension accepts any size. void is never compatible.
func Compatible(target, source ast.TypeNode) bool {
	if IsVoid(target) || IsVoid(source) {
		return false
	}

	switch t := target.(type) {
	case *ast.BasicType:
		s, ok := source.(*ast.BasicType)
		if !ok {
			return false
		}
		return compatibleBasic(t, s)

	case *ast.FunctionType:
		s, ok := source.(*ast.FunctionType)
		if !ok {
			return false
		}
		return compatibleFunction(t, s)

	case *ast.TupleType:
		s, ok := source.(*ast.TupleType)
		if !ok || len(t.Elements) != len(s.Elements) {
			return false
		}
		for i := range t.Elements {
			if !Compatible(t.Elements[i], s.Elements[i]) {
				return false
			}
		}
		return true

	case *ast.MetaType:
		return false
	}
	return false
}

func compatibleBasic(t, s *ast.BasicType) bool {
	if IsNull(s) {
		return t.PointerDepth > 0 || IsNull(t)
	}
	if IsNull(t) {
		return s.PointerDepth > 0
	}

	if t.Name != s.Name || t.Module != s.Module || t.PointerDepth != s.PointerDepth {
		return false
	}
	if len(t.ArrayDims) != len(s.ArrayDims) {
		return false
	}
	for i, d := range t.ArrayDims {
		if d != ast.UnsizedDim && d != s.ArrayDims[i] {
			return false
		}
	}
	if len(t.Generics) != len(s.Generics) {
		return false
	}
	for i := range t.Generics {
		if !Compatible(t.Generics[i], s.Generics[i]) {
			return false
		}
	}
	return true
}

func compatibleFunction(t, s *ast.FunctionType) bool {
	if len(t.Params) != len(s.Params) || t.Variadic != s.Variadic {
		return false
	}
	if IsVoid(t.Return) != IsVoid(s.Return) {
		return false
	}
	if !IsVoid(t.Return) && !Compatible(t.Return, s.Return) {
		return false
	}
	for i := range t.Params {
		if !Compatible(t.Params[i], s.Params[i]) {
			return false
		}
	}
	return true
}

// Identical is Compatible in both directions.
func Identical(a, b ast.TypeNode) bool {
	if IsVoid(a) && IsVoid(b) {
		return true
	}
	return Compatible(a, b) && Compatible(b, a)
}

// Comparable reports whether == and != apply to values of a and b.
func Comparable(a, b ast.TypeNode) bool {
	if !IsScalar(a) || !IsScalar(b) {
		return false
	}
	return Compatible(a, b) || Compatible(b, a)
}
