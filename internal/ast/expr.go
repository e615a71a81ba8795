package ast

type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	FloatLiteral
	StringLiteral
	CharLiteral
	BoolLiteral
	NullLiteral
)

// Literal holds a parsed literal. Value is int64, float64, string, byte or
// bool depending on Kind; Raw is the source lexeme.
type Literal struct {
	Loc
	Typed
	Kind  LiteralKind
	Value any
	Raw   string
}

type Identifier struct {
	Loc
	Typed
	Name string
}

type Binary struct {
	Loc
	Typed
	Op    string
	Left  Expr
	Right Expr
}

// Unary covers prefix operators and postfix ++/--.
type Unary struct {
	Loc
	Typed
	Op      string
	Operand Expr
	Postfix bool
}

// Assignment is an expression yielding the stored value.
type Assignment struct {
	Loc
	Typed
	Op     string // "=", "+=", ...
	Target Expr
	Value  Expr
}

type CallKind int

const (
	CallFunction CallKind = iota
	CallMethod
	CallStatic
	CallIndirect
)

// Call is a call expression. The checker fills in Kind, Target, TypeArgs and
// Owner so that later stages need not repeat name resolution.
type Call struct {
	Loc
	Typed
	Callee Expr
	Args   []Expr

	Kind     CallKind
	Target   *FunctionDecl
	TypeArgs []TypeNode // bindings for Target.TypeParams
	Owner    *BasicType // struct declaring the method, for methods and statics
}

type Member struct {
	Loc
	Typed
	Object Expr
	Name   Ident
}

type Index struct {
	Loc
	Typed
	Object Expr
	Index  Expr
}

// Cast: "cast<int>(x)"
type Cast struct {
	Loc
	Typed
	Target TypeNode
	Value  Expr
}

// Sizeof: "sizeof(Point)"
type Sizeof struct {
	Loc
	Typed
	Target TypeNode
}

// Match: "match (x) { 1 => a, _ => b }"
type Match struct {
	Loc
	Typed
	Value Expr
	Arms  []*MatchArm
}

// MatchArm with a nil Pattern is the `_` arm.
type MatchArm struct {
	Loc
	Pattern Expr
	Value   Expr
}

type Ternary struct {
	Loc
	Typed
	Cond Expr
	Then Expr
	Else Expr
}

type ArrayLiteral struct {
	Loc
	Typed
	Elements []Expr
}

// StructLiteral: "Point { x: 1, y: 2 }". Fields keep the order written.
type StructLiteral struct {
	Loc
	Typed
	Struct *BasicType
	Fields []*FieldInit
}

type FieldInit struct {
	Loc
	Name  Ident
	Value Expr
}

type TupleLiteral struct {
	Loc
	Typed
	Elements []Expr
}

// GenericInstantiation: "id<int>" or "Box<int>" used as an expression.
type GenericInstantiation struct {
	Loc
	Typed
	Base     Expr
	TypeArgs []TypeNode
}

func (*Literal) isExpr()              {}
func (*Identifier) isExpr()           {}
func (*Binary) isExpr()               {}
func (*Unary) isExpr()                {}
func (*Assignment) isExpr()           {}
func (*Call) isExpr()                 {}
func (*Member) isExpr()               {}
func (*Index) isExpr()                {}
func (*Cast) isExpr()                 {}
func (*Sizeof) isExpr()               {}
func (*Match) isExpr()                {}
func (*Ternary) isExpr()              {}
func (*ArrayLiteral) isExpr()         {}
func (*StructLiteral) isExpr()        {}
func (*TupleLiteral) isExpr()         {}
func (*GenericInstantiation) isExpr() {}
