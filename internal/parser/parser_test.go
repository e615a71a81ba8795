package parser

import (
	"testing"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/lexer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := ParseSource("test.em", source)
	require.NoError(t, err)
	require.NotNil(t, program)
	return program
}

// parseExpr parses source as the only expression statement of a function.
func parseExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	program := parseOK(t, "frame f() { "+source+"; }")
	fn := program.Body[0].(*ast.FunctionDecl)
	require.Len(t, fn.Body.Stmts, 1)
	return fn.Body.Stmts[0].(*ast.ExprStmt).X
}

func TestParseFunction(t *testing.T) {
	program := parseOK(t, `frame add(a: int, b: int) ret int { return a + b; }`)

	require.Len(t, program.Body, 1)
	fn, ok := program.Body[0].(*ast.FunctionDecl)
	require.True(t, ok, "top-level item should be a function")
	assert.Equal(t, "add", fn.Name.Value)
	assert.Len(t, fn.Params, 2)
	assert.Equal(t, "int", fn.Return.String())

	ret := fn.Body.Stmts[0].(*ast.Return)
	bin := ret.Value.(*ast.Binary)
	assert.Equal(t, "+", bin.Op)
	assert.Equal(t, "a", bin.Left.(*ast.Identifier).Name)
	assert.Equal(t, "b", bin.Right.(*ast.Identifier).Name)

	assert.Equal(t, 1, fn.Pos.Line)
	assert.Equal(t, 1, fn.Pos.Column)
	assert.Equal(t, "test.em", fn.Pos.Filename)
}

func TestParseVoidFunction(t *testing.T) {
	program := parseOK(t, `frame a() {} frame b() ret void {}`)
	assert.Nil(t, program.Body[0].(*ast.FunctionDecl).Return)
	assert.Nil(t, program.Body[1].(*ast.FunctionDecl).Return)
}

func TestNestedGenericType(t *testing.T) {
	source := `local b: Box<Box<int>> = make();`
	tokens, errs := lexer.ScanTokens(source, "test.em")
	require.Empty(t, errs)

	program, err := Parse("test.em", tokens)
	require.NoError(t, err)

	decl := program.Body[0].(*ast.VariableDecl)
	outer := decl.Annotation.(*ast.BasicType)
	assert.Equal(t, "Box", outer.Name)
	require.Len(t, outer.Generics, 1)
	inner := outer.Generics[0].(*ast.BasicType)
	assert.Equal(t, "Box", inner.Name)
	require.Len(t, inner.Generics, 1)
	assert.Equal(t, "int", inner.Generics[0].String())
	assert.NotNil(t, decl.Init, "the '=' after '>>' must still be parsed")

	shifts := 0
	for _, tok := range tokens {
		if tok.Type == lexer.SHIFT_RIGHT {
			shifts++
		}
	}
	assert.Equal(t, 1, shifts, "the token slice is not modified")
}

func TestTripleNestedGenericAndGreaterEqual(t *testing.T) {
	program := parseOK(t, `local a: A<B<C<int>>> = x; local b: Box<int>= y;`)
	assert.Equal(t, "A<B<C<int>>>", program.Body[0].(*ast.VariableDecl).Annotation.String())

	second := program.Body[1].(*ast.VariableDecl)
	assert.Equal(t, "Box<int>", second.Annotation.String())
	assert.Equal(t, "y", second.Init.(*ast.Identifier).Name)
}

func TestGenericCallVersusComparison(t *testing.T) {
	call := parseExpr(t, `id<int>(3)`).(*ast.Call)
	inst := call.Callee.(*ast.GenericInstantiation)
	assert.Equal(t, "id", inst.Base.(*ast.Identifier).Name)
	assert.Equal(t, "int", inst.TypeArgs[0].String())

	cmp := parseExpr(t, `a < b`).(*ast.Binary)
	assert.Equal(t, "<", cmp.Op)

	chained := parseExpr(t, `f(a < b, c > d)`).(*ast.Call)
	require.Len(t, chained.Args, 2)
	assert.Equal(t, "<", chained.Args[0].(*ast.Binary).Op)
	assert.Equal(t, ">", chained.Args[1].(*ast.Binary).Op)

	generic := parseExpr(t, `f(a<b, c>(d))`).(*ast.Call)
	require.Len(t, generic.Args, 1)
	_, ok := generic.Args[0].(*ast.Call)
	assert.True(t, ok, "balanced close followed by '(' commits to a generic call")

	shift := parseExpr(t, `x = a >> 2`).(*ast.Assignment)
	assert.Equal(t, ">>", shift.Value.(*ast.Binary).Op)

	nested := parseExpr(t, `make<Box<int>>()`).(*ast.Call)
	assert.Equal(t, "Box<int>", nested.Callee.(*ast.GenericInstantiation).TypeArgs[0].String())

	static := parseExpr(t, `Box<int>.create(1)`).(*ast.Call)
	member := static.Callee.(*ast.Member)
	assert.Equal(t, "create", member.Name.Value)
	_, ok = member.Object.(*ast.GenericInstantiation)
	assert.True(t, ok)
}

func TestComparisonBeforeStatementBoundary(t *testing.T) {
	program := parseOK(t, `frame f() { local c = a < b; if (a < b) { c = a > b; } }`)
	fn := program.Body[0].(*ast.FunctionDecl)
	assert.Equal(t, "<", fn.Body.Stmts[0].(*ast.VariableDecl).Init.(*ast.Binary).Op)
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"a || b && c", "(a || (b && c))"},
		{"a | b ^ c & d", "(a | (b ^ (c & d)))"},
		{"a == b < c", "(a == (b < c))"},
		{"a < b << c", "(a < (b << c))"},
		{"-a * !b", "(-a * !b)"},
		{"a = b = c", "a = b = c"},
		{"c ? x : d ? y : z", "(c ? x : (d ? y : z))"},
		{"*p + 1", "(*p + 1)"},
		{"&x", "&x"},
		{"i++ + --j", "(i++ + --j)"},
		{"a.b[1].c(2)", "a.b[1].c(2)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"x += 2", "x += 2"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseExpr(t, tt.source).String())
		})
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	assign := parseExpr(t, "a = b = c").(*ast.Assignment)
	assert.Equal(t, "a", assign.Target.(*ast.Identifier).Name)
	inner := assign.Value.(*ast.Assignment)
	assert.Equal(t, "b", inner.Target.(*ast.Identifier).Name)
}

func TestStructLiteralDetection(t *testing.T) {
	lit := parseExpr(t, `Point { x: 1, y: 2 }`).(*ast.StructLiteral)
	assert.Equal(t, "Point", lit.Struct.Name)
	require.Len(t, lit.Fields, 2)
	assert.Equal(t, "x", lit.Fields[0].Name.Value)

	empty := parseExpr(t, `Point {}`).(*ast.StructLiteral)
	assert.Empty(t, empty.Fields)

	generic := parseExpr(t, `Box<int> { value: 1 }`).(*ast.StructLiteral)
	assert.Equal(t, "Box<int>", generic.Struct.String())

	program := parseOK(t, `frame f() { if (ok) { x = 1; } loop (x) { y; } }`)
	fn := program.Body[0].(*ast.FunctionDecl)
	_, isIf := fn.Body.Stmts[0].(*ast.If)
	assert.True(t, isIf, "a block after a condition is not a struct literal")
}

func TestParseStruct(t *testing.T) {
	program := parseOK(t, `
struct Point3 : Point {
    z: int,
    w: *int[4],
    frame len() ret int { return this.z; }
    static frame origin() ret Point3 { return Point3 {}; }
}`)

	s := program.Body[0].(*ast.StructDecl)
	assert.Equal(t, "Point3", s.Name.Value)
	assert.Equal(t, "Point", s.Parent.Name)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "z", s.Fields[0].Name.Value)
	assert.Equal(t, "*int[4]", s.Fields[1].Type.String())

	require.Len(t, s.Methods, 2)
	assert.True(t, s.Methods[0].IsMethod)
	assert.False(t, s.Methods[0].IsStatic)
	assert.Equal(t, "Point3", s.Methods[0].Owner)
	assert.True(t, s.Methods[1].IsStatic)
	assert.False(t, s.Methods[1].IsMethod)
}

func TestParseGenericDeclarations(t *testing.T) {
	program := parseOK(t, `
struct Box<T> { value: T }
frame id<T>(v: T) ret T { return v; }
frame pair<A, B>(a: A, b: B) ret (A, B) { return (a, b); }`)

	box := program.Body[0].(*ast.StructDecl)
	assert.Equal(t, "T", box.TypeParams[0].Value)

	id := program.Body[1].(*ast.FunctionDecl)
	assert.True(t, id.IsGeneric())

	pair := program.Body[2].(*ast.FunctionDecl)
	assert.Equal(t, "(A, B)", pair.Return.String())
	tuple := pair.Body.Stmts[0].(*ast.Return).Value.(*ast.TupleLiteral)
	assert.Len(t, tuple.Elements, 2)
}

func TestParseTopLevelDeclarations(t *testing.T) {
	program := parseOK(t, `
import { add, Vec } from "./math.em";
import "./util.em";
export frame twice(x: int) ret int { return x * 2; }
extern frame printf(fmt: string, ...) ret int;
type Size = int;
local counter: int = 0;
local callback: Func<int>(int, int) = add;`)

	require.Len(t, program.Body, 7)

	named := program.Body[0].(*ast.Import)
	assert.Equal(t, "./math.em", named.Path)
	require.Len(t, named.Names, 2)
	assert.Equal(t, "Vec", named.Names[1].Value)

	all := program.Body[1].(*ast.Import)
	assert.Nil(t, all.Names)

	export := program.Body[2].(*ast.Export)
	inner, wrapped := ast.Unwrap(export)
	assert.True(t, wrapped)
	assert.Equal(t, "twice", inner.(*ast.FunctionDecl).Name.Value)

	ext := program.Body[3].(*ast.Extern)
	assert.True(t, ext.Fn.Variadic)
	assert.Nil(t, ext.Fn.Body)

	alias := program.Body[4].(*ast.TypeAlias)
	assert.Equal(t, "Size", alias.Name.Value)

	global := program.Body[5].(*ast.VariableDecl)
	assert.True(t, global.Global)

	fnType := program.Body[6].(*ast.VariableDecl).Annotation.(*ast.FunctionType)
	assert.Equal(t, "Func<int>(int, int)", fnType.String())
}

func TestParseStatements(t *testing.T) {
	program := parseOK(t, `
frame main() ret int {
    local (a, b) = (1, 2);
    local arr: int[3] = [1, 2, 3];
    loop (a < 10) { a += 1; if (a == 5) { continue; } else if (a == 6) { break; } else { a = 7; } }
    loop { break; }
    switch (a) { case 1, 2: b = 0; b = 1; default: b = 2; }
    local m = match (b) { 0 => 10, _ => 20 };
    try { throw 7; } catch (e: int) { b = e; } catch { b = 0; }
    asm("nop");
    { local inner = 1; }
    return cast<int>(3.5) + sizeof(int);
}`)

	stmts := program.Body[0].(*ast.FunctionDecl).Body.Stmts
	require.Len(t, stmts, 10)

	destructure := stmts[0].(*ast.VariableDecl)
	assert.True(t, destructure.Destructure)
	assert.Len(t, destructure.Names, 2)

	loop := stmts[2].(*ast.Loop)
	assert.NotNil(t, loop.Cond)
	elseIf := loop.Body.Stmts[1].(*ast.If).Else.(*ast.If)
	assert.NotNil(t, elseIf.Else)

	assert.Nil(t, stmts[3].(*ast.Loop).Cond)

	sw := stmts[4].(*ast.Switch)
	require.Len(t, sw.Cases, 1)
	assert.Len(t, sw.Cases[0].Values, 2)
	assert.Len(t, sw.Cases[0].Body.Stmts, 2)
	assert.Len(t, sw.Default.Stmts, 1)

	m := stmts[5].(*ast.VariableDecl).Init.(*ast.Match)
	require.Len(t, m.Arms, 2)
	assert.Nil(t, m.Arms[1].Pattern)

	try := stmts[6].(*ast.Try)
	require.Len(t, try.Catches, 1)
	assert.Equal(t, "e", try.Catches[0].Name.Value)
	assert.NotNil(t, try.CatchAll)

	assert.Equal(t, "nop", stmts[7].(*ast.Asm).Code)
	_, isBlock := stmts[8].(*ast.Block)
	assert.True(t, isBlock)

	sum := stmts[9].(*ast.Return).Value.(*ast.Binary)
	_, isCast := sum.Left.(*ast.Cast)
	_, isSizeof := sum.Right.(*ast.Sizeof)
	assert.True(t, isCast)
	assert.True(t, isSizeof)
}

func TestPrintRoundTrip(t *testing.T) {
	sources := []string{
		`frame add(a: int, b: int) ret int { return a + b; }`,
		`struct Point { x: int, y: int, frame len2() ret int { return this.x * this.x + this.y * this.y; } static frame origin() ret Point { return Point { x: 0, y: 0 }; } }`,
		`struct Box<T> : Base { value: T } frame id<T>(v: T) ret T { return v; }`,
		`import { a } from "./a.em"; import "./b.em"; export type S = *char[]; extern frame puts(s: string, ...) ret int;`,
		`local g: float = 1.5e3; frame main() ret int { local (a, b) = (1, 'x'); local s = "q\"\n"; loop { if (a >= 3 || !(b == 'y')) { break; } a++; } return -(-a); }`,
		`frame f(p: **int, xs: int[2][3]) { switch (**p) { case 1: xs[0][1] = *p[0]; default: } try { throw 1; } catch (e: int) { } catch { } asm("nop"); }`,
		`frame g() ret int { local m = match (1) { 1 => 2, _ => 3 }; local c: Func<void>(int) = h; local b = Box<Box<int>> { value: Box<int> { value: 1 } }; return id<int>(m) + sizeof(Box<int>) + cast<int>(2.0); }`,
		`frame t(c: bool) ret int { return c ? 1 : 2; }`,
	}

	for _, source := range sources {
		first := parseOK(t, source)
		printed := ast.Print(first)
		second, err := ParseSource("test.em", printed)
		require.NoError(t, err, "printed source should parse:\n%s", printed)
		assert.Equal(t, printed, ast.Print(second))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
		line   int
	}{
		{"missing semicolon", "frame f() {\n  local x = 1\n}", errors.ErrorExpectedToken, 3},
		{"nested function", "frame f() { frame g() {} }", errors.ErrorUnexpectedToken, 1},
		{"statement at top level", "return 1;", errors.ErrorUnexpectedToken, 1},
		{"untyped uninitialized local", "frame f() { local x; }", errors.ErrorExpectedToken, 1},
		{"variadic outside extern", "frame f(a: int, ...) {}", errors.ErrorUnexpectedToken, 1},
		{"unclosed generic", "local x: Box<int = 1;", errors.ErrorExpectedToken, 1},
		{"condition needs parens", "frame f() { if x { } }", errors.ErrorExpectedToken, 1},
		{"try without catch", "frame f() { try { } }", errors.ErrorExpectedToken, 1},
		{"catch after catch-all", "frame f() { try { } catch { } catch (e: int) { } }", errors.ErrorUnexpectedToken, 1},
		{"bad expression", "frame f() { local x = ); }", errors.ErrorUnexpectedToken, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource("test.em", tt.source)
			require.Error(t, err)
			var ce *errors.CompilerError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.code, ce.Code, ce.Message)
			assert.Equal(t, tt.line, ce.Span.StartLine)
			assert.Equal(t, "test.em", ce.Span.File)
		})
	}
}

func TestLexicalErrorStopsParseSource(t *testing.T) {
	_, err := ParseSource("test.em", `frame f() { local s = "open; }`)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorUnterminatedString, err.(*errors.CompilerError).Code)
}
