// Package stdlib describes the standard modules an ember program can import
// by name instead of by file path, e.g. `import { puts } from "std::io";`.
// Every standard function is an extern binding to the C library.
package stdlib

import (
	"sort"
	"strings"

	"ember/internal/builtins"
)

// ModuleDefinition defines a standard library module
type ModuleDefinition struct {
	Name      string                        // Module name (e.g., "io")
	Path      string                        // Full module path (e.g., "std::io")
	Functions map[string]FunctionDefinition // Available functions in this module
}

// FunctionDefinition defines a function signature from a standard library module
type FunctionDefinition struct {
	Name       string                // Function name (e.g., "puts")
	Parameters []ParameterDefinition // Function parameters
	ReturnType *TypeRef              // Return type (nil if void)
	Variadic   bool                  // Whether C varargs follow the fixed parameters
}

// ParameterDefinition defines a function parameter
type ParameterDefinition struct {
	Name string   // Parameter name
	Type *TypeRef // Parameter type
}

// TypeRef is a builtin type behind zero or more pointers.
type TypeRef struct {
	Name         string
	PointerDepth int
}

func (t *TypeRef) String() string {
	return strings.Repeat("*", t.PointerDepth) + t.Name
}

// Helper functions for creating type references
func NewTypeRef(name builtins.BuiltinType) *TypeRef {
	return &TypeRef{Name: string(name)}
}

func PointerTo(name builtins.BuiltinType) *TypeRef {
	return &TypeRef{Name: string(name), PointerDepth: 1}
}

func IntType() *TypeRef    { return NewTypeRef(builtins.Int) }
func FloatType() *TypeRef  { return NewTypeRef(builtins.Float) }
func StringType() *TypeRef { return NewTypeRef(builtins.String) }
func BytesType() *TypeRef  { return PointerTo(builtins.Char) }

// Helper function for creating function definitions
func NewFunction(name string, returnType *TypeRef, params ...ParameterDefinition) FunctionDefinition {
	return FunctionDefinition{
		Name:       name,
		Parameters: params,
		ReturnType: returnType,
	}
}

func NewVariadicFunction(name string, returnType *TypeRef, params ...ParameterDefinition) FunctionDefinition {
	fn := NewFunction(name, returnType, params...)
	fn.Variadic = true
	return fn
}

// Helper function for creating parameters
func NewParam(name string, typeRef *TypeRef) ParameterDefinition {
	return ParameterDefinition{Name: name, Type: typeRef}
}

func module(name string, fns ...FunctionDefinition) *ModuleDefinition {
	m := &ModuleDefinition{
		Name:      name,
		Path:      "std::" + name,
		Functions: make(map[string]FunctionDefinition, len(fns)),
	}
	for _, fn := range fns {
		m.Functions[fn.Name] = fn
	}
	return m
}

var standardModules = map[string]*ModuleDefinition{}

func init() {
	for _, m := range []*ModuleDefinition{
		module("io",
			NewFunction("puts", IntType(), NewParam("s", StringType())),
			NewFunction("putchar", IntType(), NewParam("c", IntType())),
			NewFunction("getchar", IntType()),
			NewVariadicFunction("printf", IntType(), NewParam("format", StringType())),
		),
		module("mem",
			NewFunction("malloc", BytesType(), NewParam("size", IntType())),
			NewFunction("calloc", BytesType(), NewParam("count", IntType()), NewParam("size", IntType())),
			NewFunction("realloc", BytesType(), NewParam("ptr", BytesType()), NewParam("size", IntType())),
			NewFunction("free", nil, NewParam("ptr", BytesType())),
			NewFunction("memcpy", BytesType(), NewParam("dst", BytesType()), NewParam("src", BytesType()), NewParam("n", IntType())),
			NewFunction("memset", BytesType(), NewParam("dst", BytesType()), NewParam("value", IntType()), NewParam("n", IntType())),
		),
		module("string",
			NewFunction("strlen", IntType(), NewParam("s", StringType())),
			NewFunction("strcmp", IntType(), NewParam("a", StringType()), NewParam("b", StringType())),
			NewFunction("atoi", IntType(), NewParam("s", StringType())),
		),
		module("math",
			NewFunction("sqrt", FloatType(), NewParam("x", FloatType())),
			NewFunction("pow", FloatType(), NewParam("x", FloatType()), NewParam("y", FloatType())),
			NewFunction("fabs", FloatType(), NewParam("x", FloatType())),
			NewFunction("floor", FloatType(), NewParam("x", FloatType())),
		),
		module("process",
			NewFunction("exit", nil, NewParam("code", IntType())),
			NewFunction("abort", nil),
		),
	} {
		standardModules[m.Path] = m
	}
}

// GetStandardModules returns all built-in standard library modules
func GetStandardModules() map[string]*ModuleDefinition {
	return standardModules
}

// IsKnownModule checks if a module path is a known standard library module
func IsKnownModule(modulePath string) bool {
	_, exists := standardModules[modulePath]
	return exists
}

// GetModuleDefinition returns the definition for a standard library module
func GetModuleDefinition(modulePath string) *ModuleDefinition {
	return standardModules[modulePath]
}

// Source renders the module as ember source: one exported extern per
// function, sorted by name.
func (m *ModuleDefinition) Source() string {
	names := make([]string, 0, len(m.Functions))
	for name := range m.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fn := m.Functions[name]
		params := make([]string, 0, len(fn.Parameters)+1)
		for _, p := range fn.Parameters {
			params = append(params, p.Name+": "+p.Type.String())
		}
		if fn.Variadic {
			params = append(params, "...")
		}
		b.WriteString("export extern frame " + fn.Name + "(" + strings.Join(params, ", ") + ")")
		if fn.ReturnType != nil {
			b.WriteString(" ret " + fn.ReturnType.String())
		}
		b.WriteString(";\n")
	}
	return b.String()
}
