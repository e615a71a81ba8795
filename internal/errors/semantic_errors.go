package errors

import (
	"fmt"
	"strings"
)

// Builder provides a fluent interface for creating compiler errors
type Builder struct {
	err CompilerError
}

// New creates a new error builder
func New(code, message string, span Span) *Builder {
	return &Builder{
		err: CompilerError{
			Level:   Error,
			Code:    code,
			Message: message,
			Span:    span,
		},
	}
}

// NewWarning creates a new warning builder
func NewWarning(code, message string, span Span) *Builder {
	b := New(code, message, span)
	b.err.Level = Warning
	return b
}

// WithHint sets the secondary hint
func (b *Builder) WithHint(hint string) *Builder {
	b.err.Hint = hint
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *Builder) WithSuggestion(message string) *Builder {
	b.err.Suggestions = append(b.err.Suggestions, message)
	return b
}

// WithNote adds a note to the error
func (b *Builder) WithNote(note string) *Builder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// Build returns the completed compiler error
func (b *Builder) Build() *CompilerError {
	err := b.err
	return &err
}

// withSimilar suggests close matches for a misspelled name
func (b *Builder) withSimilar(name string, candidates []string) *Builder {
	similar := SimilarNames(name, candidates)
	switch len(similar) {
	case 0:
	case 1:
		b.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similar[0]))
	default:
		b.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '")))
	}
	return b
}

// Common semantic error constructors

// UndefinedVariable creates an error for undefined variables with suggestions
func UndefinedVariable(name string, span Span, candidates []string) *CompilerError {
	return New(ErrorUndefinedVariable, fmt.Sprintf("undefined variable '%s'", name), span).
		withSimilar(name, candidates).
		WithHint("variables must be declared with 'local' before use").
		Build()
}

// UndefinedFunction creates an error for undefined functions with suggestions
func UndefinedFunction(name string, span Span, candidates []string) *CompilerError {
	return New(ErrorUndefinedFunction, fmt.Sprintf("function '%s' is not imported or defined", name), span).
		withSimilar(name, candidates).
		WithHint("functions must be defined in this module, imported, or declared extern").
		Build()
}

// UndefinedType creates an error for unknown type names
func UndefinedType(name string, span Span, candidates []string) *CompilerError {
	return New(ErrorUndefinedType, fmt.Sprintf("unknown type '%s'", name), span).
		withSimilar(name, candidates).
		WithHint("types are builtins, structs, aliases or generic parameters in scope").
		Build()
}

// TypeMismatch creates an error for incompatible types
func TypeMismatch(expected, actual string, span Span) *CompilerError {
	b := New(ErrorTypeMismatch, fmt.Sprintf("type mismatch: expected %s, found %s", expected, actual), span)
	if isNumericType(expected) && isNumericType(actual) {
		b.WithHint(fmt.Sprintf("convert explicitly with cast<%s>(...)", expected))
	} else if expected == "bool" {
		b.WithHint("use a comparison operator to create a boolean value")
	}
	return b.Build()
}

// InvalidReturnType creates an error for a return value of the wrong type
func InvalidReturnType(functionName, expected, actual string, span Span) *CompilerError {
	return New(ErrorInvalidReturnType,
		fmt.Sprintf("function '%s' returns %s, found %s", functionName, expected, actual), span).
		WithHint("the returned value must match the declared return type").
		Build()
}

// FieldNotFound creates an error for missing struct members with suggestions
func FieldNotFound(structName, fieldName string, span Span, available []string) *CompilerError {
	b := New(ErrorFieldNotFound, fmt.Sprintf("struct '%s' has no member '%s'", structName, fieldName), span).
		withSimilar(fieldName, available)
	if len(available) > 0 {
		b.WithNote(fmt.Sprintf("available members: %s", strings.Join(available, ", ")))
	}
	return b.Build()
}

// DuplicateField creates an error for a field given twice
func DuplicateField(fieldName string, span Span) *CompilerError {
	return New(ErrorDuplicateField, fmt.Sprintf("duplicate field '%s'", fieldName), span).
		WithHint("each field can only be specified once").
		Build()
}

// InvalidOperation creates an error for binary operators applied to unsupported types
func InvalidOperation(op, leftType, rightType string, span Span) *CompilerError {
	b := New(ErrorInvalidBinaryOperation, fmt.Sprintf("invalid operation: %s %s %s", leftType, op, rightType), span)
	switch op {
	case "+", "-", "*", "/", "%":
		b.WithHint("arithmetic requires two numeric operands of the same type, or a pointer and an int")
	case "&&", "||":
		b.WithHint("logical operations require boolean operands")
	case "==", "!=", "<", "<=", ">", ">=":
		b.WithHint("comparison operands must be of compatible types")
	case "&", "|", "^", "<<", ">>":
		b.WithHint("bitwise operations require integer operands")
	}
	return b.Build()
}

// InvalidUnary creates an error for unary operators applied to unsupported types
func InvalidUnary(op, operandType string, span Span) *CompilerError {
	return New(ErrorInvalidOperation, fmt.Sprintf("invalid operation: %s%s", op, operandType), span).Build()
}

// DuplicateDeclaration creates an error for duplicate declarations
func DuplicateDeclaration(name string, span Span) *CompilerError {
	return New(ErrorDuplicateDeclaration, fmt.Sprintf("duplicate declaration: %s", name), span).
		WithHint("identifiers must be unique within their scope").
		Build()
}

// InvalidArguments creates an error for function call arity mismatches
func InvalidArguments(functionName string, expected, actual int, span Span) *CompilerError {
	return New(ErrorInvalidArguments,
		fmt.Sprintf("function '%s' expects %d arguments, got %d", functionName, expected, actual), span).
		WithHint("check the function signature for the correct number of parameters").
		Build()
}

// InvalidAssignment creates an error for invalid assignment operations
func InvalidAssignment(message string, span Span) *CompilerError {
	return New(ErrorInvalidAssignment, message, span).
		WithHint("the target must be a variable, field access, index or dereference").
		Build()
}

// VoidInExpression creates an error for void values used as operands
func VoidInExpression(span Span) *CompilerError {
	return New(ErrorVoidInExpression, "void value used as an expression", span).
		WithHint("functions without a 'ret' clause produce no value").
		Build()
}

// NotCallable creates an error for calls through non-function values
func NotCallable(typeName string, span Span) *CompilerError {
	return New(ErrorNotCallable, fmt.Sprintf("cannot call a value of type %s", typeName), span).Build()
}

// InvalidCast creates an error for unsupported conversions
func InvalidCast(from, to string, span Span) *CompilerError {
	return New(ErrorInvalidCast, fmt.Sprintf("cannot cast %s to %s", from, to), span).
		WithHint("casts convert between numeric types, pointers, and pointers and int").
		Build()
}

// InvalidDereference creates an error for dereferencing a non-pointer
func InvalidDereference(typeName string, span Span) *CompilerError {
	return New(ErrorInvalidDereference, fmt.Sprintf("cannot dereference a value of type %s", typeName), span).Build()
}

// InvalidIndex creates an error for indexing a non-indexable value
func InvalidIndex(typeName string, span Span) *CompilerError {
	return New(ErrorInvalidIndex, fmt.Sprintf("cannot index a value of type %s", typeName), span).
		WithHint("only arrays and pointers can be indexed").
		Build()
}

// Type system errors

// GenericArity creates an error for the wrong number of type arguments
func GenericArity(name string, expected, actual int, span Span) *CompilerError {
	return New(ErrorGenericArity,
		fmt.Sprintf("'%s' expects %d type arguments, got %d", name, expected, actual), span).Build()
}

// UnknownParent creates an error for inheriting from an undefined struct
func UnknownParent(child, parent string, span Span) *CompilerError {
	return New(ErrorUnknownParent, fmt.Sprintf("struct '%s' extends undefined struct '%s'", child, parent), span).
		WithHint("the parent must be a struct declared in this module or imported").
		Build()
}

// InheritanceCycle creates an error for a struct that inherits from itself
func InheritanceCycle(name string, span Span) *CompilerError {
	return New(ErrorInheritanceCycle, fmt.Sprintf("struct '%s' inherits from itself", name), span).Build()
}

// CannotInfer creates an error for generic calls whose bindings are unknown
func CannotInfer(functionName, param string, span Span) *CompilerError {
	return New(ErrorCannotInfer,
		fmt.Sprintf("cannot infer type parameter '%s' of '%s'", param, functionName), span).
		WithHint(fmt.Sprintf("pass type arguments explicitly: %s<...>(...)", functionName)).
		Build()
}

// Import errors

// ModuleNotFound creates an error for an unreadable import
func ModuleNotFound(path string, span Span, cause error) *CompilerError {
	b := New(ErrorModuleNotFound, fmt.Sprintf("cannot import '%s'", path), span).
		WithHint("import paths are relative to the importing file")
	if cause != nil {
		b.WithNote(cause.Error())
	}
	return b.Build()
}

// MissingExport creates an error for importing a name the module does not export
func MissingExport(name, path string, span Span, exported []string) *CompilerError {
	return New(ErrorMissingExport, fmt.Sprintf("module '%s' does not export '%s'", path, name), span).
		withSimilar(name, exported).
		WithHint("mark the declaration with 'export' in the imported module").
		Build()
}

// ImportCycle creates an error for a module that is still being loaded
func ImportCycle(path string, span Span) *CompilerError {
	return New(ErrorImportCycle, fmt.Sprintf("import cycle through '%s'", path), span).Build()
}

// PrivateMethod creates an error for calling a method of a struct that its
// module does not export
func PrivateMethod(structName, method, path string, span Span) *CompilerError {
	return New(ErrorPrivateMethod,
		fmt.Sprintf("method '%s' of struct '%s' is private to '%s'", method, structName, path), span).
		WithHint(fmt.Sprintf("export '%s' from its module", structName)).
		Build()
}

// Flow control errors

// MissingReturn creates an error for functions with a path that does not return
func MissingReturn(functionName, returnType string, span Span) *CompilerError {
	return New(ErrorMissingReturn,
		fmt.Sprintf("function '%s' might not return a value", functionName), span).
		WithHint(fmt.Sprintf("add a return statement that returns a value of type '%s' on every path", returnType)).
		Build()
}

// LoopControl creates an error for break or continue outside a loop
func LoopControl(keyword string, span Span) *CompilerError {
	return New(ErrorLoopControl, fmt.Sprintf("%s outside of loop", keyword), span).Build()
}

// NonExhaustiveMatch creates an error for a match without a wildcard arm
func NonExhaustiveMatch(span Span) *CompilerError {
	return New(ErrorNonExhaustiveMatch, "match expression is not exhaustive", span).
		WithHint("add a '_ => value' arm").
		Build()
}

// UnreachableCode creates a warning for a statement that follows an
// unconditional exit
func UnreachableCode(span Span) *CompilerError {
	return NewWarning(ErrorUnreachableCode, "unreachable code", span).
		WithHint("remove the statement or the exit before it").
		Build()
}

// Internal creates an error for a code generator contract violation
func Internal(message string, span Span) *CompilerError {
	return New(ErrorInternal, message, span).Build()
}

// Helper functions

func isNumericType(typeName string) bool {
	switch typeName {
	case "int", "float", "char":
		return true
	}
	return false
}

// SimilarNames returns the candidates within a small edit distance of target.
func SimilarNames(target string, candidates []string) []string {
	var similar []string
	seen := map[string]bool{}

	for _, candidate := range candidates {
		if candidate == target || seen[candidate] {
			continue
		}
		if levenshteinDistance(target, candidate) <= 2 && len(candidate) > 2 {
			similar = append(similar, candidate)
			seen[candidate] = true
		}
	}

	return similar
}

// Simple Levenshtein distance implementation for finding similar names
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
