package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrinter(t *testing.T) {
	printer := NewPrinter()
	require.NotNil(t, printer)
	assert.Equal(t, 0, printer.indent)
	assert.Equal(t, 0, printer.output.Len())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"hello"`, Quote("hello"))
	assert.Equal(t, `"a\0Ab"`, Quote("a\nb"))
	assert.Equal(t, `"say \22hi\22"`, Quote(`say "hi"`))
	assert.Equal(t, `"back\5Cslash"`, Quote(`back\slash`))
	assert.Equal(t, `"\00"`, Quote("\x00"))
	assert.Equal(t, `"\C3\A9"`, Quote("é"))
}

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		typ      Type
		expected string
	}{
		{I64, "i64"},
		{I1, "i1"},
		{Double, "double"},
		{Void, "void"},
		{PointerTo(I8), "i8*"},
		{PointerTo(PointerTo(I64)), "i64**"},
		{&ArrayType{Len: 4, Elem: I32}, "[4 x i32]"},
		{&ArrayType{Len: 2, Elem: &ArrayType{Len: 3, Elem: I64}}, "[2 x [3 x i64]]"},
		{&NamedType{Name: "Point"}, "%Point"},
		{&StructType{}, "{}"},
		{&StructType{Fields: []Type{I64, Double}}, "{ i64, double }"},
		{&FuncType{Return: I32, Params: []Type{PointerTo(I8)}, Variadic: true}, "i32 (i8*, ...)"},
		{&FuncType{Return: Void, Variadic: true}, "void (...)"},
		{PointerTo(&FuncType{Return: I64, Params: []Type{I64}}), "i64 (i64)*"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.typ.String())
		})
	}
}

func TestInstructionStrings(t *testing.T) {
	a := &Value{Type: I64, Name: "%a"}
	b := &Value{Type: I64, Name: "%b"}
	addr := &Value{Type: PointerTo(I64), Name: "%x.addr"}
	point := &Value{Type: PointerTo(&NamedType{Name: "Point"}), Name: "%p.addr"}

	tests := []struct {
		inst     Instruction
		expected string
	}{
		{&AllocaInstruction{Result: addr, Elem: I64}, "%x.addr = alloca i64"},
		{&LoadInstruction{Result: &Value{Type: I64, Name: "%t0"}, Address: addr}, "%t0 = load i64, i64* %x.addr"},
		{&StoreInstruction{Value: Const(I64, "5"), Address: addr}, "store i64 5, i64* %x.addr"},
		{&BinaryInstruction{Result: &Value{Type: I64, Name: "%t1"}, Op: "add", Left: a, Right: b}, "%t1 = add i64 %a, %b"},
		{&CompareInstruction{Result: &Value{Type: I1, Name: "%t2"}, Predicate: "slt", Left: a, Right: b}, "%t2 = icmp slt i64 %a, %b"},
		{&CompareInstruction{Result: &Value{Type: I1, Name: "%t3"}, Float: true, Predicate: "oeq",
			Left: Const(Double, "0x0000000000000000"), Right: Const(Double, "0x3FF0000000000000")},
			"%t3 = fcmp oeq double 0x0000000000000000, 0x3FF0000000000000"},
		{&GEPInstruction{Result: &Value{Type: PointerTo(Double), Name: "%t4"}, Base: point,
			Indices: []*Value{Const(I32, "0"), Const(I32, "1")}},
			"%t4 = getelementptr inbounds %Point, %Point* %p.addr, i32 0, i32 1"},
		{&CastInstruction{Result: &Value{Type: Double, Name: "%t5"}, Op: "sitofp", Value: a}, "%t5 = sitofp i64 %a to double"},
		{&CallInstruction{Result: &Value{Type: I64, Name: "%t6"}, Callee: &Value{Name: "@add"},
			Sig: &FuncType{Return: I64, Params: []Type{I64, I64}}, Args: []*Value{a, b}},
			"%t6 = call i64 @add(i64 %a, i64 %b)"},
		{&CallInstruction{Callee: &Value{Name: "@printf"},
			Sig:  &FuncType{Return: Void, Params: []Type{PointerTo(I8)}, Variadic: true},
			Args: []*Value{{Type: PointerTo(I8), Name: "%t7"}, a}},
			"call void (i8*, ...) @printf(i8* %t7, i64 %a)"},
		{&InsertValueInstruction{Result: &Value{Type: &NamedType{Name: "Point"}, Name: "%t8"},
			Aggregate: Const(&NamedType{Name: "Point"}, "undef"), Element: a, Index: 0},
			"%t8 = insertvalue %Point undef, i64 %a, 0"},
		{&ExtractValueInstruction{Result: &Value{Type: I64, Name: "%t9"},
			Aggregate: &Value{Type: &NamedType{Name: "Point"}, Name: "%t8"}, Index: 1},
			"%t9 = extractvalue %Point %t8, 1"},
		{&AsmInstruction{Code: "nop"}, `call void asm sideeffect "nop", ""()`},
		{&ReturnTerminator{}, "ret void"},
		{&ReturnTerminator{Value: a}, "ret i64 %a"},
		{&BranchTerminator{Condition: &Value{Type: I1, Name: "%t2"}, TrueLabel: "if.then0", FalseLabel: "if.end0"},
			"br i1 %t2, label %if.then0, label %if.end0"},
		{&JumpTerminator{Target: "loop.cond1"}, "br label %loop.cond1"},
		{&UnreachableTerminator{}, "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.inst.String())
		})
	}
}

func TestPrintModule(t *testing.T) {
	point := &NamedType{Name: "Point"}
	module := &Module{
		Source:       "main.em",
		TargetTriple: "x86_64-pc-linux-gnu",
		Strings:      []*StringConstant{{Name: ".str.0", Value: "hi\n"}},
		Types:        []*StructDef{{Name: "Point", Fields: []Type{I64, I64}}},
		Globals: []*Global{
			{Name: "counter", Type: I64, Init: "0"},
			{Name: "shared", Type: I64, External: true},
		},
		Declares: []*Declare{
			{Name: "printf", Return: I32, Params: []Type{PointerTo(I8)}, Variadic: true},
		},
		Functions: []*Function{
			{
				Name:   "origin",
				Return: point,
				Blocks: []*BasicBlock{{
					Label:        "entry",
					Instructions: []Instruction{&ReturnTerminator{Value: Const(point, "zeroinitializer")}},
				}},
			},
			{
				Name:   "main",
				Return: Void,
				Params: []*Param{{Name: "argc", Type: I64}},
				Blocks: []*BasicBlock{
					{Label: "entry", Instructions: []Instruction{&JumpTerminator{Target: "exit"}}},
					{Label: "exit", Instructions: []Instruction{&ReturnTerminator{}}},
				},
			},
		},
	}

	expected := strings.Join([]string{
		"; ModuleID = 'main.em'",
		`source_filename = "main.em"`,
		`target triple = "x86_64-pc-linux-gnu"`,
		"",
		`@.str.0 = private unnamed_addr constant [4 x i8] c"hi\0A\00"`,
		"",
		"%Point = type { i64, i64 }",
		"",
		"@counter = global i64 0",
		"@shared = external global i64",
		"",
		"declare i32 @printf(i8*, ...)",
		"",
		"define %Point @origin() {",
		"entry:",
		"  ret %Point zeroinitializer",
		"}",
		"",
		"define void @main(i64 %argc) {",
		"entry:",
		"  br label %exit",
		"",
		"exit:",
		"  ret void",
		"}",
		"",
	}, "\n")

	assert.Equal(t, expected, Print(module))
	assert.Equal(t, expected, module.String())
}

func TestPrintEmptyModule(t *testing.T) {
	assert.Empty(t, Print(&Module{}))
}

func TestModuleLookups(t *testing.T) {
	module := &Module{
		Declares:  []*Declare{{Name: "puts", Return: I32, Params: []Type{PointerTo(I8)}}},
		Functions: []*Function{{Name: "main", Return: Void}},
	}

	assert.NotNil(t, module.Function("main"))
	assert.Nil(t, module.Function("puts"))
	assert.True(t, module.Declared("puts"))
	assert.True(t, module.Declared("main"))
	assert.False(t, module.Declared("missing"))
}

func TestPrintLinkage(t *testing.T) {
	module := &Module{Functions: []*Function{{
		Name:    "id_int",
		Linkage: "linkonce_odr",
		Return:  I64,
		Params:  []*Param{{Name: "v", Type: I64}},
		Blocks: []*BasicBlock{{
			Label:        "entry",
			Instructions: []Instruction{&ReturnTerminator{Value: &Value{Type: I64, Name: "%v"}}},
		}},
	}}}

	assert.Contains(t, Print(module), "define linkonce_odr i64 @id_int(i64 %v) {\n")
}
