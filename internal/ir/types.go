package ir

import (
	"fmt"
	"strings"
)

// IR structures for textual, typed-pointer SSA output.
// A Module holds the constant-data preamble followed by function bodies;
// each Function is a list of labeled basic blocks.

// Module represents one compilation unit in IR form
type Module struct {
	Source       string
	TargetTriple string
	Strings      []*StringConstant
	Types        []*StructDef
	Globals      []*Global
	Declares     []*Declare
	Functions    []*Function
}

// StringConstant is a de-duplicated, NUL-terminated string literal
type StringConstant struct {
	Name  string // e.g. ".str.0"
	Value string
}

// Type returns the array type holding the literal and its terminator.
func (s *StringConstant) Type() Type {
	return &ArrayType{Len: len(s.Value) + 1, Elem: I8}
}

// StructDef declares a named aggregate type
type StructDef struct {
	Name   string
	Fields []Type
}

// Global is a module-level variable. External globals are defined by
// another compilation unit.
type Global struct {
	Name     string
	Type     Type
	Init     string
	External bool
}

// Declare is a function defined outside this module
type Declare struct {
	Name     string
	Return   Type
	Params   []Type
	Variadic bool
}

// Function is a function definition. Linkage is empty for external
// linkage; instantiated generics use linkonce_odr.
type Function struct {
	Name     string
	Linkage  string
	Return   Type
	Params   []*Param
	Variadic bool
	Blocks   []*BasicBlock
}

// Param is a function parameter bound to a register
type Param struct {
	Name string
	Type Type
}

// BasicBlock is a labeled straight-line instruction sequence. A block is
// closed once its last instruction is a terminator.
type BasicBlock struct {
	Label        string
	Instructions []Instruction
}

// Terminated reports whether the block already ends in a terminator.
func (b *BasicBlock) Terminated() bool {
	n := len(b.Instructions)
	return n > 0 && b.Instructions[n-1].IsTerminator()
}

// Value is an operand: a register, a global, or a constant, with its type.
type Value struct {
	Type Type
	Name string // "%t1", "@.str.0", "42", "null", "zeroinitializer"
}

// String renders the typed operand, e.g. "i64 %t1".
func (v *Value) String() string {
	return v.Type.String() + " " + v.Name
}

// Const builds a constant operand.
func Const(t Type, text string) *Value {
	return &Value{Type: t, Name: text}
}

// Types

type Type interface {
	String() string
	isType()
}

type IntType struct {
	Bits int
}

type FloatType struct{}

type VoidType struct{}

type PointerType struct {
	Elem Type
}

type ArrayType struct {
	Len  int
	Elem Type
}

// NamedType refers to a StructDef.
type NamedType struct {
	Name string
}

// StructType is an anonymous aggregate, used for tuples.
type StructType struct {
	Fields []Type
}

type FuncType struct {
	Return   Type
	Params   []Type
	Variadic bool
}

var (
	I1     = &IntType{Bits: 1}
	I8     = &IntType{Bits: 8}
	I32    = &IntType{Bits: 32}
	I64    = &IntType{Bits: 64}
	Double = &FloatType{}
	Void   = &VoidType{}
)

func (*IntType) isType()     {}
func (*FloatType) isType()   {}
func (*VoidType) isType()    {}
func (*PointerType) isType() {}
func (*ArrayType) isType()   {}
func (*NamedType) isType()   {}
func (*StructType) isType()  {}
func (*FuncType) isType()    {}

func (i *IntType) String() string     { return fmt.Sprintf("i%d", i.Bits) }
func (*FloatType) String() string     { return "double" }
func (*VoidType) String() string      { return "void" }
func (p *PointerType) String() string { return p.Elem.String() + "*" }
func (a *ArrayType) String() string   { return fmt.Sprintf("[%d x %s]", a.Len, a.Elem) }
func (n *NamedType) String() string   { return "%" + n.Name }
func (s *StructType) String() string {
	if len(s.Fields) == 0 {
		return "{}"
	}
	return "{ " + joinTypes(s.Fields) + " }"
}
func (f *FuncType) String() string {
	params := joinTypes(f.Params)
	if f.Variadic {
		if params != "" {
			params += ", "
		}
		params += "..."
	}
	return fmt.Sprintf("%s (%s)", f.Return, params)
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// PointerTo wraps t in one level of pointer.
func PointerTo(t Type) *PointerType {
	return &PointerType{Elem: t}
}

// IsFloat reports the double type.
func IsFloat(t Type) bool {
	_, ok := t.(*FloatType)
	return ok
}

// IsPointer reports pointer types.
func IsPointer(t Type) bool {
	_, ok := t.(*PointerType)
	return ok
}

// IsVoid reports the void type.
func IsVoid(t Type) bool {
	_, ok := t.(*VoidType)
	return ok
}

// Elem returns the pointee of a pointer type.
func Elem(t Type) Type {
	if p, ok := t.(*PointerType); ok {
		return p.Elem
	}
	return nil
}

// Instructions

type Instruction interface {
	GetResult() *Value
	IsTerminator() bool
	String() string
}

// AllocaInstruction reserves a stack slot in the entry block
type AllocaInstruction struct {
	Result *Value
	Elem   Type
}

type LoadInstruction struct {
	Result  *Value
	Address *Value
}

type StoreInstruction struct {
	Value   *Value
	Address *Value
}

// BinaryInstruction is an arithmetic or bitwise operation, e.g. add, fmul, ashr
type BinaryInstruction struct {
	Result *Value
	Op     string
	Left   *Value
	Right  *Value
}

// CompareInstruction is icmp or fcmp with a predicate such as slt or oeq
type CompareInstruction struct {
	Result    *Value
	Float     bool
	Predicate string
	Left      *Value
	Right     *Value
}

// GEPInstruction computes an element address
type GEPInstruction struct {
	Result  *Value
	Base    *Value
	Indices []*Value
}

// CastInstruction converts between types: sext, trunc, sitofp, bitcast, ...
type CastInstruction struct {
	Result *Value
	Op     string
	Value  *Value
}

// CallInstruction calls a function by name or through a pointer. Result
// is nil for void calls.
type CallInstruction struct {
	Result *Value
	Callee *Value
	Sig    *FuncType
	Args   []*Value
}

type InsertValueInstruction struct {
	Result    *Value
	Aggregate *Value
	Element   *Value
	Index     int
}

type ExtractValueInstruction struct {
	Result    *Value
	Aggregate *Value
	Index     int
}

// AsmInstruction is an inline assembly statement with side effects
type AsmInstruction struct {
	Code string
}

// Terminators

type ReturnTerminator struct {
	Value *Value
}

type BranchTerminator struct {
	Condition  *Value
	TrueLabel  string
	FalseLabel string
}

type JumpTerminator struct {
	Target string
}

type UnreachableTerminator struct{}

func (a *AllocaInstruction) GetResult() *Value       { return a.Result }
func (l *LoadInstruction) GetResult() *Value         { return l.Result }
func (*StoreInstruction) GetResult() *Value          { return nil }
func (b *BinaryInstruction) GetResult() *Value       { return b.Result }
func (c *CompareInstruction) GetResult() *Value      { return c.Result }
func (g *GEPInstruction) GetResult() *Value          { return g.Result }
func (c *CastInstruction) GetResult() *Value         { return c.Result }
func (c *CallInstruction) GetResult() *Value         { return c.Result }
func (i *InsertValueInstruction) GetResult() *Value  { return i.Result }
func (e *ExtractValueInstruction) GetResult() *Value { return e.Result }
func (*AsmInstruction) GetResult() *Value            { return nil }
func (*ReturnTerminator) GetResult() *Value          { return nil }
func (*BranchTerminator) GetResult() *Value          { return nil }
func (*JumpTerminator) GetResult() *Value            { return nil }
func (*UnreachableTerminator) GetResult() *Value     { return nil }

func (*AllocaInstruction) IsTerminator() bool       { return false }
func (*LoadInstruction) IsTerminator() bool         { return false }
func (*StoreInstruction) IsTerminator() bool        { return false }
func (*BinaryInstruction) IsTerminator() bool       { return false }
func (*CompareInstruction) IsTerminator() bool      { return false }
func (*GEPInstruction) IsTerminator() bool          { return false }
func (*CastInstruction) IsTerminator() bool         { return false }
func (*CallInstruction) IsTerminator() bool         { return false }
func (*InsertValueInstruction) IsTerminator() bool  { return false }
func (*ExtractValueInstruction) IsTerminator() bool { return false }
func (*AsmInstruction) IsTerminator() bool          { return false }
func (*ReturnTerminator) IsTerminator() bool        { return true }
func (*BranchTerminator) IsTerminator() bool        { return true }
func (*JumpTerminator) IsTerminator() bool          { return true }
func (*UnreachableTerminator) IsTerminator() bool   { return true }

func (a *AllocaInstruction) String() string {
	return fmt.Sprintf("%s = alloca %s", a.Result.Name, a.Elem)
}

func (l *LoadInstruction) String() string {
	return fmt.Sprintf("%s = load %s, %s", l.Result.Name, l.Result.Type, l.Address)
}

func (s *StoreInstruction) String() string {
	return fmt.Sprintf("store %s, %s", s.Value, s.Address)
}

func (b *BinaryInstruction) String() string {
	return fmt.Sprintf("%s = %s %s, %s", b.Result.Name, b.Op, b.Left, b.Right.Name)
}

func (c *CompareInstruction) String() string {
	op := "icmp"
	if c.Float {
		op = "fcmp"
	}
	return fmt.Sprintf("%s = %s %s %s, %s", c.Result.Name, op, c.Predicate, c.Left, c.Right.Name)
}

func (g *GEPInstruction) String() string {
	parts := make([]string, len(g.Indices))
	for i, idx := range g.Indices {
		parts[i] = idx.String()
	}
	return fmt.Sprintf("%s = getelementptr inbounds %s, %s, %s",
		g.Result.Name, Elem(g.Base.Type), g.Base, strings.Join(parts, ", "))
}

func (c *CastInstruction) String() string {
	return fmt.Sprintf("%s = %s %s to %s", c.Result.Name, c.Op, c.Value, c.Result.Type)
}

func (c *CallInstruction) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	// Variadic callees spell out the full function type.
	callee := c.Sig.Return.String()
	if c.Sig.Variadic {
		callee = c.Sig.String()
	}
	call := fmt.Sprintf("call %s %s(%s)", callee, c.Callee.Name, strings.Join(args, ", "))
	if c.Result != nil {
		return c.Result.Name + " = " + call
	}
	return call
}

func (i *InsertValueInstruction) String() string {
	return fmt.Sprintf("%s = insertvalue %s, %s, %d", i.Result.Name, i.Aggregate, i.Element, i.Index)
}

func (e *ExtractValueInstruction) String() string {
	return fmt.Sprintf("%s = extractvalue %s, %d", e.Result.Name, e.Aggregate, e.Index)
}

func (a *AsmInstruction) String() string {
	return fmt.Sprintf(`call void asm sideeffect %s, ""()`, Quote(a.Code))
}

func (r *ReturnTerminator) String() string {
	if r.Value == nil {
		return "ret void"
	}
	return "ret " + r.Value.String()
}

func (b *BranchTerminator) String() string {
	return fmt.Sprintf("br %s, label %%%s, label %%%s", b.Condition, b.TrueLabel, b.FalseLabel)
}

func (j *JumpTerminator) String() string {
	return fmt.Sprintf("br label %%%s", j.Target)
}

func (*UnreachableTerminator) String() string { return "unreachable" }

// Quote renders s as an IR string literal. Bytes outside printable ASCII,
// quotes and backslashes are written as \XX escapes.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c >= 0x7f || c == '"' || c == '\\' {
			fmt.Fprintf(&sb, "\\%02X", c)
			continue
		}
		sb.WriteByte(c)
	}
	sb.WriteByte('"')
	return sb.String()
}
