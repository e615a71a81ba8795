package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunctionDeclString(t *testing.T) {
	fn := &FunctionDecl{
		Name: Ident{Value: "add"},
		Params: []*Param{
			{Name: Ident{Value: "a"}, Type: Basic("int")},
			{Name: Ident{Value: "b"}, Type: Basic("int")},
		},
		Return: Basic("int"),
		Body: &Block{Stmts: []Stmt{
			&Return{Value: &Binary{Op: "+", Left: &Identifier{Name: "a"}, Right: &Identifier{Name: "b"}}},
		}},
	}

	expected := "frame add(a: int, b: int) ret int {\n  return (a + b);\n}"
	assert.Equal(t, expected, fn.String())
}

func TestExternString(t *testing.T) {
	ext := &Extern{Fn: &FunctionDecl{
		Name:     Ident{Value: "printf"},
		Params:   []*Param{{Name: Ident{Value: "fmt"}, Type: Basic("string")}},
		Return:   Basic("int"),
		Variadic: true,
	}}
	assert.Equal(t, "extern frame printf(fmt: string, ...) ret int;", ext.String())
}

func TestStructDeclString(t *testing.T) {
	s := &StructDecl{
		Name:       Ident{Value: "Box"},
		TypeParams: []Ident{{Value: "T"}},
		Parent:     Basic("Base"),
		Fields: []*FieldDecl{
			{Name: Ident{Value: "value"}, Type: Basic("T")},
		},
		Methods: []*FunctionDecl{{
			Name:     Ident{Value: "get"},
			Return:   Basic("T"),
			Body:     &Block{Stmts: []Stmt{&Return{Value: &Member{Object: &Identifier{Name: "this"}, Name: Ident{Value: "value"}}}}},
			IsMethod: true,
		}},
	}

	expected := "struct Box<T> : Base {\n  value: T,\n  frame get() ret T {\n    return this.value;\n  }\n}"
	assert.Equal(t, expected, s.String())
}

func TestBasicTypeString(t *testing.T) {
	tests := []struct {
		typ      *BasicType
		expected string
	}{
		{Basic("int"), "int"},
		{&BasicType{Name: "int", PointerDepth: 2}, "**int"},
		{&BasicType{Name: "int", ArrayDims: []int{2, 3}}, "int[2][3]"},
		{&BasicType{Name: "char", ArrayDims: []int{UnsizedDim}}, "char[]"},
		{&BasicType{Name: "Box", Generics: []TypeNode{Basic("Box", Basic("int"))}}, "Box<Box<int>>"},
		{&BasicType{Name: "int", PointerDepth: 1, ArrayDims: []int{4}}, "*int[4]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.typ.String())
		})
	}
}

func TestCompositeTypeString(t *testing.T) {
	fn := &FunctionType{Params: []TypeNode{Basic("int"), Basic("bool")}, Return: Basic("float")}
	assert.Equal(t, "Func<float>(int, bool)", fn.String())

	void := &FunctionType{}
	assert.Equal(t, "Func<void>()", void.String())

	tuple := &TupleType{Elements: []TypeNode{Basic("int"), &BasicType{Name: "char", PointerDepth: 1}}}
	assert.Equal(t, "(int, *char)", tuple.String())

	assert.Equal(t, "void", TypeString(nil))
}

func TestBasicTypeElement(t *testing.T) {
	arr := &BasicType{Name: "int", ArrayDims: []int{2, 3}}
	assert.Equal(t, "int[3]", arr.Element().String())
	assert.Equal(t, "int", arr.Element().Element().String())

	ptr := &BasicType{Name: "char", PointerDepth: 2}
	assert.Equal(t, "*char", ptr.Element().String())
	assert.Equal(t, "**char", ptr.String(), "Element must not modify the receiver")
}

func TestExpressionString(t *testing.T) {
	tests := []struct {
		name     string
		expr     Expr
		expected string
	}{
		{
			name:     "nested unary",
			expr:     &Unary{Op: "-", Operand: &Unary{Op: "-", Operand: &Literal{Kind: IntLiteral, Value: int64(1)}}},
			expected: "-(-1)",
		},
		{
			name:     "postfix increment",
			expr:     &Unary{Op: "++", Operand: &Identifier{Name: "i"}, Postfix: true},
			expected: "i++",
		},
		{
			name: "generic call",
			expr: &Call{
				Callee: &GenericInstantiation{Base: &Identifier{Name: "id"}, TypeArgs: []TypeNode{Basic("int")}},
				Args:   []Expr{&Literal{Kind: IntLiteral, Value: int64(3), Raw: "3"}},
			},
			expected: "id<int>(3)",
		},
		{
			name: "struct literal",
			expr: &StructLiteral{Struct: Basic("Point"), Fields: []*FieldInit{
				{Name: Ident{Value: "x"}, Value: &Literal{Kind: IntLiteral, Value: int64(1)}},
				{Name: Ident{Value: "y"}, Value: &Literal{Kind: IntLiteral, Value: int64(2)}},
			}},
			expected: "Point { x: 1, y: 2 }",
		},
		{
			name:     "string escapes",
			expr:     &Literal{Kind: StringLiteral, Value: "a\"b\n"},
			expected: `"a\"b\n"`,
		},
		{
			name:     "char literal",
			expr:     &Literal{Kind: CharLiteral, Value: byte('\'')},
			expected: `'\''`,
		},
		{
			name: "match",
			expr: &Match{Value: &Identifier{Name: "x"}, Arms: []*MatchArm{
				{Pattern: &Literal{Kind: IntLiteral, Value: int64(1)}, Value: &Identifier{Name: "a"}},
				{Value: &Identifier{Name: "b"}},
			}},
			expected: "match (x) { 1 => a, _ => b }",
		},
		{
			name:     "deref call",
			expr:     &Call{Callee: &Unary{Op: "*", Operand: &Identifier{Name: "fp"}}},
			expected: "(*fp)()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.expr.String())
		})
	}
}

func TestSwitchString(t *testing.T) {
	sw := &Switch{
		Value: &Identifier{Name: "x"},
		Cases: []*Case{{
			Values: []Expr{&Literal{Kind: IntLiteral, Value: int64(1)}, &Literal{Kind: IntLiteral, Value: int64(2)}},
			Body:   &Block{Stmts: []Stmt{&Break{}}},
		}},
		Default: &Block{Stmts: []Stmt{&Return{}}},
	}

	expected := "switch (x) {\n  case 1, 2:\n    break;\n  default:\n    return;\n}"
	assert.Equal(t, expected, sw.String())
}

func TestInspectVisitsExpressions(t *testing.T) {
	prog := &Program{Body: []Stmt{
		&FunctionDecl{
			Name: Ident{Value: "f"},
			Body: &Block{Stmts: []Stmt{
				&ExprStmt{X: &Call{Callee: &Identifier{Name: "g"}, Args: []Expr{&Identifier{Name: "x"}}}},
				&If{Cond: &Identifier{Name: "c"}, Then: &Block{}},
			}},
		},
	}}

	var names []string
	Inspect(prog, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			names = append(names, id.Name)
		}
		return true
	})
	assert.Equal(t, []string{"g", "x", "c"}, names)

	count := 0
	Inspect(prog, func(n Node) bool {
		count++
		_, isFn := n.(*FunctionDecl)
		return !isFn
	})
	assert.Equal(t, 2, count, "returning false must prune children")
}
