package irtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/ir"
)

const sample = `; ModuleID = 'main.em'
source_filename = "main.em"
target triple = "x86_64-pc-linux-gnu"

@.str.0 = private unnamed_addr constant [4 x i8] c"hi\0A\00"

%Point = type { i64, i64 }
%Empty = type {}

@counter = global i64 0
@msg = global i8* getelementptr inbounds ([4 x i8], [4 x i8]* @.str.0, i64 0, i64 0)
@shared = external global i64

declare i32 @printf(i8*, ...)

define linkonce_odr i64 @id_int(i64 %v) {
entry:
  %v.addr = alloca i64
  store i64 %v, i64* %v.addr
  %t0 = load i64, i64* %v.addr
  ret i64 %t0
}

define void @main(i64 %argc) {
entry:
  %p.addr = alloca %Point
  %t0 = getelementptr inbounds %Point, %Point* %p.addr, i32 0, i32 1
  %t1 = icmp slt i64 %argc, 2
  br i1 %t1, label %if.then0, label %if.end0

if.then0:
  %t2 = getelementptr inbounds [4 x i8], [4 x i8]* @.str.0, i64 0, i64 0
  %t3 = call i32 (i8*, ...) @printf(i8* %t2, i64 %argc)
  br label %if.end0

if.end0:
  call void asm sideeffect "nop", ""()
  ret void
}
`

func TestParseSample(t *testing.T) {
	m, err := Parse("sample.ll", sample)
	require.NoError(t, err)

	source, triple := m.Header()
	assert.Equal(t, "main.em", source)
	assert.Equal(t, "x86_64-pc-linux-gnu", triple)

	fns := m.Functions()
	require.Len(t, fns, 2)
	assert.Equal(t, "@id_int", fns[0].Name)
	assert.Equal(t, "linkonce_odr", fns[0].Linkage)
	assert.Equal(t, "i64", fns[0].Return.String())

	main := fns[1]
	assert.Equal(t, "void", main.Return.String())
	require.Len(t, main.Params, 1)
	assert.Equal(t, "%argc", main.Params[0].Name)
	require.Len(t, main.Blocks, 3)
	assert.Equal(t, "if.then0", main.Blocks[1].name())

	call := main.Blocks[1].Instructions[1]
	assert.Equal(t, "%t3", call.Result)
	assert.Equal(t, "call", call.Op)

	var typeDefs []string
	for _, it := range m.Items {
		if it.TypeDef != nil {
			typeDefs = append(typeDefs, it.TypeDef.Name+" = "+it.TypeDef.Type.String())
		}
		if it.Declare != nil {
			assert.Equal(t, "@printf", it.Declare.Name)
			require.Len(t, it.Declare.Params, 2)
			assert.True(t, it.Declare.Params[1].Variadic)
		}
	}
	assert.Equal(t, []string{"%Point = { i64, i64 }", "%Empty = {}"}, typeDefs)

	assert.NoError(t, m.Verify())
}

func TestParseTypes(t *testing.T) {
	m, err := Parse("types.ll", "@f = global i64 (i8*, ...)** null\n@g = global [2 x [3 x double]] zeroinitializer\n")
	require.NoError(t, err)
	require.Len(t, m.Items, 2)
	assert.Equal(t, "i64 (i8*, ...)**", m.Items[0].Global.Type.String())
	assert.Equal(t, "[2 x [3 x double]]", m.Items[1].Global.Type.String())
	assert.Equal(t, []string{"zeroinitializer"}, m.Items[1].Global.Init)
}

func TestVerifyFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			"register defined twice",
			"entry:\n  %t0 = add i64 1, 2\n  %t0 = add i64 3, 4\n  ret void\n",
			"register %t0 defined twice",
		},
		{
			"missing terminator",
			"entry:\n  %t0 = add i64 1, 2\n",
			"does not end in a terminator",
		},
		{
			"empty block",
			"entry:\n  br label %next\n\nnext:\n",
			"block next does not end in a terminator",
		},
		{
			"unknown label",
			"entry:\n  br label %nowhere\n",
			"branch to unknown block %nowhere",
		},
		{
			"undefined register",
			"entry:\n  %t0 = add i64 %t9, 1\n  ret void\n",
			"%t9 is never defined",
		},
		{
			"unknown symbol",
			"entry:\n  call void @missing()\n  ret void\n",
			"unknown symbol @missing",
		},
		{
			"terminator in the middle",
			"entry:\n  ret void\n  %t0 = add i64 1, 2\n  ret void\n",
			"ret in the middle of block entry",
		},
		{
			"duplicate block",
			"entry:\n  br label %entry\n\nentry:\n  ret void\n",
			"block entry defined twice",
		},
		{
			"block named like a register",
			"entry:\n  %next = add i64 1, 2\n  br label %next\n\nnext:\n  ret void\n",
			"block next has the name of a register",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify("bad.ll", "define void @f() {\n"+tt.body+"}\n")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Contains(t, err.Error(), "in @f")
		})
	}
}

func TestVerifyBlockNamedLikeParameter(t *testing.T) {
	err := Verify("param.ll", "define i64 @f(i64 %entry) {\nentry:\n  ret i64 %entry\n}\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block entry has the name of a register")
}

func TestVerifyDuplicateSymbols(t *testing.T) {
	err := Verify("dup.ll", "declare void @f()\n\ndefine void @f() {\nentry:\n  ret void\n}\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol @f defined twice")
}

func TestParseError(t *testing.T) {
	_, err := Parse("broken.ll", "define void @f( {\n")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse broken.ll"))
}

// Whatever the printer emits for a well-formed builder session must read
// back and verify.
func TestPrintedModulesVerify(t *testing.T) {
	fn := &ir.Function{Name: "sum", Return: ir.I64, Params: []*ir.Param{{Name: "n", Type: ir.I64}}}
	b := ir.NewFunctionBuilder(fn)
	slot := b.Alloca("n", ir.I64)
	b.Store(&ir.Value{Type: ir.I64, Name: "%n"}, slot)

	labels := b.Labels("loop.cond", "loop.body", "loop.end")
	b.Jump(labels[0])
	b.StartBlock(labels[0])
	cur := b.Load(slot)
	b.Branch(b.Compare("sgt", cur, ir.Const(ir.I64, "0")), labels[1], labels[2])
	b.StartBlock(labels[1])
	b.Store(b.Binary("sub", b.Load(slot), ir.Const(ir.I64, "1")), slot)
	b.Jump(labels[0])
	b.StartBlock(labels[2])
	b.Return(b.Load(slot))

	module := &ir.Module{
		Source:    "sum.em",
		Types:     []*ir.StructDef{{Name: "Pair", Fields: []ir.Type{ir.I64, ir.PointerTo(ir.I8)}}},
		Globals:   []*ir.Global{{Name: "total", Type: ir.I64, Init: "0"}},
		Functions: []*ir.Function{b.Finish()},
	}
	require.NoError(t, Verify("sum.ll", ir.Print(module)))
}
