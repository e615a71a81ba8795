package ast

// Position tracks location information for error reporting and tooling
type Position struct {
	Filename string
	Offset   int
	Line     int // 1-based
	Column   int // 1-based
}

type Node interface {
	NodePos() Position
	NodeEndPos() Position
	NodeType() NodeType
	String() string
}

// Expr is implemented by every expression node. The type checker records the
// resolved type of each expression through SetResolvedType.
type Expr interface {
	Node
	ResolvedType() TypeNode
	SetResolvedType(TypeNode)
	isExpr()
}

// Stmt is implemented by statement and declaration nodes.
type Stmt interface {
	Node
	isStmt()
}

// Loc is the source span shared by every node.
type Loc struct {
	Pos    Position
	EndPos Position
}

func (l Loc) NodePos() Position    { return l.Pos }
func (l Loc) NodeEndPos() Position { return l.EndPos }

// Typed holds the type resolved for a node by the checker.
type Typed struct {
	Type TypeNode
}

func (t *Typed) ResolvedType() TypeNode     { return t.Type }
func (t *Typed) SetResolvedType(tn TypeNode) { t.Type = tn }

// Ident represents any identifier like variable names, type names, etc.
type Ident struct {
	Loc
	Value string
}

func (*Ident) NodeType() NodeType { return IDENT }
func (i *Ident) String() string   { return i.Value }

func (*Program) NodeType() NodeType      { return PROGRAM }
func (*FunctionDecl) NodeType() NodeType { return FUNCTION_DECL }
func (*Param) NodeType() NodeType        { return PARAM }
func (*StructDecl) NodeType() NodeType   { return STRUCT_DECL }
func (*FieldDecl) NodeType() NodeType    { return FIELD_DECL }
func (*VariableDecl) NodeType() NodeType { return VARIABLE_DECL }
func (*TypeAlias) NodeType() NodeType    { return TYPE_ALIAS }
func (*Import) NodeType() NodeType       { return IMPORT }
func (*Export) NodeType() NodeType       { return EXPORT }
func (*Extern) NodeType() NodeType       { return EXTERN }
func (*Asm) NodeType() NodeType          { return ASM }
func (*If) NodeType() NodeType           { return IF_STMT }
func (*Loop) NodeType() NodeType         { return LOOP_STMT }
func (*Return) NodeType() NodeType       { return RETURN_STMT }
func (*Break) NodeType() NodeType        { return BREAK_STMT }
func (*Continue) NodeType() NodeType     { return CONTINUE_STMT }
func (*Block) NodeType() NodeType        { return BLOCK }
func (*ExprStmt) NodeType() NodeType     { return EXPR_STMT }
func (*Try) NodeType() NodeType          { return TRY_STMT }
func (*Catch) NodeType() NodeType        { return CATCH_CLAUSE }
func (*Throw) NodeType() NodeType        { return THROW_STMT }
func (*Switch) NodeType() NodeType       { return SWITCH_STMT }
func (*Case) NodeType() NodeType         { return CASE_CLAUSE }

func (*Literal) NodeType() NodeType              { return LITERAL_EXPR }
func (*Identifier) NodeType() NodeType           { return IDENT_EXPR }
func (*Binary) NodeType() NodeType               { return BINARY_EXPR }
func (*Unary) NodeType() NodeType                { return UNARY_EXPR }
func (*Assignment) NodeType() NodeType           { return ASSIGN_EXPR }
func (*Call) NodeType() NodeType                 { return CALL_EXPR }
func (*Member) NodeType() NodeType               { return MEMBER_EXPR }
func (*Index) NodeType() NodeType                { return INDEX_EXPR }
func (*Cast) NodeType() NodeType                 { return CAST_EXPR }
func (*Sizeof) NodeType() NodeType               { return SIZEOF_EXPR }
func (*Match) NodeType() NodeType                { return MATCH_EXPR }
func (*MatchArm) NodeType() NodeType             { return MATCH_ARM }
func (*Ternary) NodeType() NodeType              { return TERNARY_EXPR }
func (*ArrayLiteral) NodeType() NodeType         { return ARRAY_LITERAL }
func (*StructLiteral) NodeType() NodeType        { return STRUCT_LITERAL }
func (*FieldInit) NodeType() NodeType            { return FIELD_INIT }
func (*TupleLiteral) NodeType() NodeType         { return TUPLE_LITERAL }
func (*GenericInstantiation) NodeType() NodeType { return GENERIC_INSTANTIATION }

func (*BasicType) NodeType() NodeType    { return BASIC_TYPE }
func (*FunctionType) NodeType() NodeType { return FUNCTION_TYPE }
func (*TupleType) NodeType() NodeType    { return TUPLE_TYPE }
func (*MetaType) NodeType() NodeType     { return META_TYPE }
