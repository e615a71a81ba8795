package builtins

// BuiltinType represents the built-in types of the ember language
type BuiltinType string

const (
	Int    BuiltinType = "int"
	Float  BuiltinType = "float"
	Bool   BuiltinType = "bool"
	Char   BuiltinType = "char"
	String BuiltinType = "string"
	Void   BuiltinType = "void"

	// Nullptr is the type of the `nullptr` literal. It cannot be written in
	// source.
	Nullptr BuiltinType = "nullptr"
)

// BuiltinTypes contains all type names usable in source
var BuiltinTypes = map[string]bool{
	string(Int):    true,
	string(Float):  true,
	string(Bool):   true,
	string(Char):   true,
	string(String): true,
	string(Void):   true,
}

// IRTypes maps each builtin to its IR representation.
var IRTypes = map[BuiltinType]string{
	Int:    "i64",
	Float:  "double",
	Bool:   "i1",
	Char:   "i8",
	String: "i8*",
	Void:   "void",
}

// IsBuiltinType checks if a type name is a built-in type
func IsBuiltinType(typeName string) bool {
	return BuiltinTypes[typeName]
}

// IsIntegerType reports whether values of the type are integers in IR.
func IsIntegerType(typeName string) bool {
	switch BuiltinType(typeName) {
	case Int, Char:
		return true
	default:
		return false
	}
}

func IsNumericType(typeName string) bool {
	return IsIntegerType(typeName) || BuiltinType(typeName) == Float
}
