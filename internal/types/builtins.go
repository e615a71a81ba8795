package types

import (
	"ember/internal/ast"
	"ember/internal/builtins"
)

// Re-export builtins for callers that only deal in type nodes
type BuiltinType = builtins.BuiltinType

const (
	Int     = builtins.Int
	Float   = builtins.Float
	Bool    = builtins.Bool
	Char    = builtins.Char
	String  = builtins.String
	Void    = builtins.Void
	Nullptr = builtins.Nullptr
)

// Named returns a fresh plain type for a builtin.
func Named(b BuiltinType) *ast.BasicType {
	return ast.Basic(string(b))
}

// IsBuiltinType checks if a type name is a built-in type
func IsBuiltinType(typeName string) bool {
	return builtins.IsBuiltinType(typeName)
}

// Is reports whether t is exactly the plain builtin b.
func Is(t ast.TypeNode, b BuiltinType) bool {
	bt, ok := t.(*ast.BasicType)
	return ok && bt.IsPlain() && bt.Name == string(b) && len(bt.Generics) == 0
}

// IsVoid treats a nil type as void.
func IsVoid(t ast.TypeNode) bool {
	return t == nil || Is(t, Void)
}

func IsNull(t ast.TypeNode) bool { return Is(t, Nullptr) }

// IsInteger reports int and char.
func IsInteger(t ast.TypeNode) bool {
	bt, ok := t.(*ast.BasicType)
	return ok && bt.IsPlain() && builtins.IsIntegerType(bt.Name)
}

// IsNumeric reports int, char and float.
func IsNumeric(t ast.TypeNode) bool {
	bt, ok := t.(*ast.BasicType)
	return ok && bt.IsPlain() && builtins.IsNumericType(bt.Name)
}

// IsPointer reports a pointer type with no array dimensions.
func IsPointer(t ast.TypeNode) bool {
	bt, ok := t.(*ast.BasicType)
	return ok && bt.IsPointer()
}

// IsPointerLike covers pointers, strings and nullptr, the types that are
// addresses in IR.
func IsPointerLike(t ast.TypeNode) bool {
	return IsPointer(t) || Is(t, String) || IsNull(t)
}

// IsScalar reports types that fit in a single IR register without being an
// aggregate.
func IsScalar(t ast.TypeNode) bool {
	return IsNumeric(t) || Is(t, Bool) || IsPointerLike(t)
}
