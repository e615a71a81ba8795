package errors

// Error codes for the ember compiler.
// These codes are used in diagnostics and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0001-E0099: Semantic analysis errors
// E0100-E0199: Parser errors
// E0200-E0299: Type system errors
// E0300-E0399: Import/module errors
// E0600-E0699: Flow control errors
// E0700-E0799: Lexical errors
// E0900-E0999: Internal code generation errors

const (
	// E0001: Variable resolution errors
	ErrorUndefinedVariable = "E0001"

	// E0002: Function resolution errors
	ErrorUndefinedFunction = "E0002"

	// E0003: Type compatibility errors
	ErrorTypeMismatch = "E0003"

	// E0004: Function return type errors
	ErrorInvalidReturnType = "E0004"

	// E0005: Struct field access errors
	ErrorFieldNotFound = "E0005"

	// E0006: Struct literal validation errors
	ErrorDuplicateField = "E0006"

	// E0008: Binary operation type errors
	ErrorInvalidBinaryOperation = "E0008"

	// E0009: Duplicate declaration errors
	ErrorDuplicateDeclaration = "E0009"

	// E0013: Function call argument errors
	ErrorInvalidArguments = "E0013"

	// E0014: Assignment validation errors
	ErrorInvalidAssignment = "E0014"

	// E0015: Unary operation and statement placement errors
	ErrorInvalidOperation = "E0015"

	// E0020: Void function in expression context
	ErrorVoidInExpression = "E0020"

	// E0022: Call of a value that is not a function
	ErrorNotCallable = "E0022"

	// E0023: Cast between unrelated types
	ErrorInvalidCast = "E0023"

	// E0024: Dereference of a non-pointer
	ErrorInvalidDereference = "E0024"

	// E0025: Indexing a value that is not an array or pointer
	ErrorInvalidIndex = "E0025"

	// E0026: Unknown type name
	ErrorUndefinedType = "E0026"

	// E0100: Token that cannot start or continue the current construct
	ErrorUnexpectedToken = "E0100"

	// E0101: A specific token was required
	ErrorExpectedToken = "E0101"

	// E0102: Malformed type syntax
	ErrorInvalidTypeSyntax = "E0102"

	// E0103: Expression is not valid in this position
	ErrorInvalidExpression = "E0103"

	// E0200: Wrong number of generic arguments
	ErrorGenericArity = "E0200"

	// E0201: Parent struct is not defined
	ErrorUnknownParent = "E0201"

	// E0202: Struct inherits from itself
	ErrorInheritanceCycle = "E0202"

	// E0203: Type arguments could not be inferred
	ErrorCannotInfer = "E0203"

	// E0300: Imported file missing or unreadable
	ErrorModuleNotFound = "E0300"

	// E0301: Imported name is not exported
	ErrorMissingExport = "E0301"

	// E0302: Modules import each other
	ErrorImportCycle = "E0302"

	// E0303: Method of a struct the declaring module does not export
	ErrorPrivateMethod = "E0303"

	// E0600: Missing return statement
	ErrorMissingReturn = "E0600"

	// E0601: break or continue outside a loop
	ErrorLoopControl = "E0601"

	// E0602: match without a wildcard arm
	ErrorNonExhaustiveMatch = "E0602"

	// E0603: Statement after return, break or throw (warning)
	ErrorUnreachableCode = "E0603"

	// E0700: Character outside the language alphabet
	ErrorUnexpectedCharacter = "E0700"

	// E0701: String literal without closing quote
	ErrorUnterminatedString = "E0701"

	// E0702: Block comment without closing ###
	ErrorUnterminatedComment = "E0702"

	// E0703: Malformed numeric literal
	ErrorInvalidNumber = "E0703"

	// E0704: Malformed character literal
	ErrorInvalidChar = "E0704"

	// E0900: Code generator contract violation
	ErrorInternal = "E0900"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUndefinedVariable:
		return "Variable is used but not defined in the current scope"
	case ErrorUndefinedFunction:
		return "Function is called but not imported or defined"
	case ErrorTypeMismatch:
		return "Expression type does not match expected type"
	case ErrorInvalidReturnType:
		return "Function return value type does not match declared return type"
	case ErrorFieldNotFound:
		return "Struct field or method does not exist"
	case ErrorDuplicateField:
		return "Duplicate field in struct literal or declaration"
	case ErrorInvalidBinaryOperation:
		return "Binary operation not supported for these types"
	case ErrorDuplicateDeclaration:
		return "Duplicate declaration found"
	case ErrorInvalidArguments:
		return "Function call has invalid arguments"
	case ErrorInvalidAssignment:
		return "Invalid assignment operation"
	case ErrorInvalidOperation:
		return "Invalid unary operation or statement"
	case ErrorVoidInExpression:
		return "Void value used as an expression"
	case ErrorNotCallable:
		return "Called value is not a function"
	case ErrorInvalidCast:
		return "Cast between incompatible types"
	case ErrorInvalidDereference:
		return "Dereference of a non-pointer value"
	case ErrorInvalidIndex:
		return "Index applied to a value that is not an array or pointer"
	case ErrorUndefinedType:
		return "Type name is not defined"
	case ErrorUnexpectedToken:
		return "Unexpected token"
	case ErrorExpectedToken:
		return "Expected token is missing"
	case ErrorInvalidTypeSyntax:
		return "Malformed type"
	case ErrorInvalidExpression:
		return "Malformed expression"
	case ErrorGenericArity:
		return "Wrong number of generic arguments"
	case ErrorUnknownParent:
		return "Parent struct is not defined"
	case ErrorInheritanceCycle:
		return "Struct inheritance forms a cycle"
	case ErrorCannotInfer:
		return "Generic type arguments cannot be inferred"
	case ErrorModuleNotFound:
		return "Imported module cannot be read"
	case ErrorMissingExport:
		return "Imported name is not exported by the module"
	case ErrorImportCycle:
		return "Modules import each other"
	case ErrorPrivateMethod:
		return "Method of a private struct called from another module"
	case ErrorMissingReturn:
		return "Function might not return a value"
	case ErrorLoopControl:
		return "break or continue outside of a loop"
	case ErrorNonExhaustiveMatch:
		return "match expression has no wildcard arm"
	case ErrorUnreachableCode:
		return "Statement can never execute"
	case ErrorUnexpectedCharacter:
		return "Unexpected character"
	case ErrorUnterminatedString:
		return "Unterminated string literal"
	case ErrorUnterminatedComment:
		return "Unterminated block comment"
	case ErrorInvalidNumber:
		return "Malformed numeric literal"
	case ErrorInvalidChar:
		return "Malformed character literal"
	case ErrorInternal:
		return "Internal compiler error"
	default:
		return "Unknown error code"
	}
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "Semantic Analysis"
	case code >= "E0100" && code < "E0200":
		return "Parser"
	case code >= "E0200" && code < "E0300":
		return "Type System"
	case code >= "E0300" && code < "E0400":
		return "Import/Module"
	case code >= "E0600" && code < "E0700":
		return "Flow Control"
	case code >= "E0700" && code < "E0800":
		return "Lexical"
	case code >= "E0900" && code < "E1000":
		return "Internal"
	default:
		return "Unknown"
	}
}
