package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder() *FunctionBuilder {
	return NewFunctionBuilder(&Function{
		Name:   "f",
		Return: I64,
		Params: []*Param{{Name: "t0", Type: I64}, {Name: "x", Type: I64}},
	})
}

func TestNewValueSkipsParameterNames(t *testing.T) {
	b := newTestBuilder()

	v := b.NewValue(I64)
	assert.Equal(t, "%t1", v.Name)
	assert.Equal(t, "%t2", b.NewValue(I1).Name)
}

func TestAllocasAreHoisted(t *testing.T) {
	b := newTestBuilder()

	first := b.Alloca("x", I64)
	b.Store(Const(I64, "1"), first)

	labels := b.Labels("loop.body", "loop.end")
	assert.Equal(t, []string{"loop.body0", "loop.end0"}, labels)
	b.Jump(labels[0])
	b.StartBlock(labels[0])
	second := b.Alloca("x", I64)
	b.Jump(labels[1])
	b.StartBlock(labels[1])
	b.Return(b.Load(second))

	fn := b.Finish()
	require.Len(t, fn.Blocks, 3)

	entry := fn.Blocks[0].Instructions
	require.Len(t, entry, 4)
	assert.Equal(t, "%x.addr = alloca i64", entry[0].String())
	assert.Equal(t, "%x.addr1 = alloca i64", entry[1].String())
	assert.Equal(t, "store i64 1, i64* %x.addr", entry[2].String())
	assert.Equal(t, "br label %loop.body0", entry[3].String())
	assert.Equal(t, "br label %loop.end0", fn.Blocks[1].Instructions[0].String())
}

func TestJumpNeverFollowsTerminator(t *testing.T) {
	b := newTestBuilder()
	b.Return(Const(I64, "0"))
	b.Jump("elsewhere")

	fn := b.Finish()
	require.Len(t, fn.Blocks, 1)
	require.Len(t, fn.Blocks[0].Instructions, 1)
	assert.Equal(t, "ret i64 0", fn.Blocks[0].Instructions[0].String())
}

func TestCodeAfterTerminatorGetsOwnBlock(t *testing.T) {
	b := newTestBuilder()
	b.Return(Const(I64, "0"))
	b.Binary("add", Const(I64, "1"), Const(I64, "2"))

	fn := b.Finish()
	require.Len(t, fn.Blocks, 2)
	assert.Equal(t, "dead0", fn.Blocks[1].Label)
	assert.True(t, fn.Blocks[1].Terminated())
	assert.Equal(t, "unreachable", fn.Blocks[1].Instructions[1].String())
}

func TestFinishVoidReturns(t *testing.T) {
	b := NewFunctionBuilder(&Function{Name: "g", Return: Void})
	b.Call(&Value{Name: "@h"}, &FuncType{Return: Void})

	fn := b.Finish()
	instructions := fn.Blocks[0].Instructions
	require.Len(t, instructions, 2)
	assert.Equal(t, "call void @h()", instructions[0].String())
	assert.Equal(t, "ret void", instructions[1].String())
}

func TestHelpersProduceTypedResults(t *testing.T) {
	b := newTestBuilder()
	point := &NamedType{Name: "Point"}
	addr := b.Alloca("p", point)

	field := b.GEP(I64, addr, Const(I32, "0"), Const(I32, "1"))
	assert.Equal(t, "i64*", field.Type.String())

	cmp := b.Compare("olt", Const(Double, "0x0000000000000000"), Const(Double, "0x3FF0000000000000"))
	assert.Equal(t, I1, cmp.Type)
	assert.Contains(t, b.Current().Instructions[len(b.Current().Instructions)-1].String(), "fcmp olt")

	wide := b.Cast("sext", Const(I32, "7"), I64)
	assert.Equal(t, "i64", wide.Type.String())

	agg := b.InsertValue(Const(point, "undef"), Const(I64, "3"), 1)
	assert.Equal(t, point, agg.Type)
	assert.Equal(t, I64, b.ExtractValue(agg, 1, I64).Type)
}

func TestBlockLabelsAvoidParameterNames(t *testing.T) {
	b := NewFunctionBuilder(&Function{
		Name:   "f",
		Return: I64,
		Params: []*Param{{Name: "entry", Type: I64}, {Name: "dead0", Type: I64}, {Name: "if.then2", Type: I64}},
	})
	assert.Equal(t, "entry.1", b.Current().Label)

	b.Return(Const(I64, "0"))
	b.Return(Const(I64, "1"))
	assert.Equal(t, "dead1", b.Current().Label)

	assert.Equal(t, []string{"if.then3", "if.end3"}, b.Labels("if.then", "if.end"))
	assert.NotEqual(t, "%dead1", b.NewValue(I64).Name)
}
