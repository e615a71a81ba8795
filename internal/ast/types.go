package ast

type NodeType int

const (
	// Special / error
	ILLEGAL NodeType = iota

	// High-level constructs
	PROGRAM

	// Declarations
	FUNCTION_DECL
	PARAM
	STRUCT_DECL
	FIELD_DECL
	VARIABLE_DECL
	TYPE_ALIAS
	IMPORT
	EXPORT
	EXTERN
	ASM

	// Statements
	IF_STMT
	LOOP_STMT
	RETURN_STMT
	BREAK_STMT
	CONTINUE_STMT
	BLOCK
	EXPR_STMT
	TRY_STMT
	CATCH_CLAUSE
	THROW_STMT
	SWITCH_STMT
	CASE_CLAUSE

	// Expressions
	LITERAL_EXPR
	IDENT_EXPR
	BINARY_EXPR
	UNARY_EXPR
	ASSIGN_EXPR
	CALL_EXPR
	MEMBER_EXPR
	INDEX_EXPR
	CAST_EXPR
	SIZEOF_EXPR
	MATCH_EXPR
	MATCH_ARM
	TERNARY_EXPR
	ARRAY_LITERAL
	STRUCT_LITERAL
	FIELD_INIT
	TUPLE_LITERAL
	GENERIC_INSTANTIATION

	// Types
	BASIC_TYPE
	FUNCTION_TYPE
	TUPLE_TYPE
	META_TYPE
	IDENT
)

var nodeTypeNames = map[NodeType]string{
	ILLEGAL:               "ILLEGAL",
	PROGRAM:               "Program",
	FUNCTION_DECL:         "FunctionDecl",
	PARAM:                 "Param",
	STRUCT_DECL:           "StructDecl",
	FIELD_DECL:            "FieldDecl",
	VARIABLE_DECL:         "VariableDecl",
	TYPE_ALIAS:            "TypeAlias",
	IMPORT:                "Import",
	EXPORT:                "Export",
	EXTERN:                "Extern",
	ASM:                   "Asm",
	IF_STMT:               "If",
	LOOP_STMT:             "Loop",
	RETURN_STMT:           "Return",
	BREAK_STMT:            "Break",
	CONTINUE_STMT:         "Continue",
	BLOCK:                 "Block",
	EXPR_STMT:             "ExpressionStmt",
	TRY_STMT:              "Try",
	CATCH_CLAUSE:          "Catch",
	THROW_STMT:            "Throw",
	SWITCH_STMT:           "Switch",
	CASE_CLAUSE:           "Case",
	LITERAL_EXPR:          "Literal",
	IDENT_EXPR:            "Identifier",
	BINARY_EXPR:           "Binary",
	UNARY_EXPR:            "Unary",
	ASSIGN_EXPR:           "Assignment",
	CALL_EXPR:             "Call",
	MEMBER_EXPR:           "Member",
	INDEX_EXPR:            "Index",
	CAST_EXPR:             "Cast",
	SIZEOF_EXPR:           "Sizeof",
	MATCH_EXPR:            "Match",
	MATCH_ARM:             "MatchArm",
	TERNARY_EXPR:          "Ternary",
	ARRAY_LITERAL:         "ArrayLiteral",
	STRUCT_LITERAL:        "StructLiteral",
	FIELD_INIT:            "FieldInit",
	TUPLE_LITERAL:         "TupleLiteral",
	GENERIC_INSTANTIATION: "GenericInstantiation",
	BASIC_TYPE:            "BasicType",
	FUNCTION_TYPE:         "FunctionType",
	TUPLE_TYPE:            "TupleType",
	META_TYPE:             "MetaType",
	IDENT:                 "Ident",
}

func (nt NodeType) String() string {
	if name, ok := nodeTypeNames[nt]; ok {
		return name
	}
	return "NodeType(?)"
}
