package ast

import (
	"fmt"
	"strings"
)

// TypeNode is the tagged variant of type syntax and resolved types.
type TypeNode interface {
	Node
	isType()
}

// UnsizedDim marks an array dimension written as `[]`.
const UnsizedDim = -1

// BasicType is a named type wrapped in pointers and array dimensions.
// ArrayDims are ordered outer-to-inner: int[2][3] is two arrays of three ints.
// Module is set on resolved struct types to the path of the declaring
// module; two structs are the same type only if name and module agree.
// Example: "*Box<int>[4]"
type BasicType struct {
	Loc
	Name         string
	Module       string
	Generics     []TypeNode
	PointerDepth int
	ArrayDims    []int
}

// FunctionType: "Func<int>(int, int)". Decl points back at the declaration a
// function symbol came from, when there is one.
type FunctionType struct {
	Loc
	Params   []TypeNode
	Return   TypeNode
	Variadic bool
	Decl     *FunctionDecl
}

// TupleType: "(int, bool)"
type TupleType struct {
	Loc
	Elements []TypeNode
}

// MetaType denotes a type used as a value, such as a struct name before a
// static member access.
type MetaType struct {
	Loc
	Inner TypeNode
}

func (*BasicType) isType()    {}
func (*FunctionType) isType() {}
func (*TupleType) isType()    {}
func (*MetaType) isType()     {}

// Basic returns a plain named type with no pointers or dimensions.
func Basic(name string, generics ...TypeNode) *BasicType {
	return &BasicType{Name: name, Generics: generics}
}

func (b *BasicType) IsPointer() bool { return b.PointerDepth > 0 && len(b.ArrayDims) == 0 }
func (b *BasicType) IsArray() bool   { return len(b.ArrayDims) > 0 }

// IsPlain reports whether b has neither pointers nor dimensions.
func (b *BasicType) IsPlain() bool { return b.PointerDepth == 0 && len(b.ArrayDims) == 0 }

// Clone copies b without its source location.
func (b *BasicType) Clone() *BasicType {
	c := &BasicType{Name: b.Name, Module: b.Module, PointerDepth: b.PointerDepth}
	if len(b.Generics) > 0 {
		c.Generics = append([]TypeNode(nil), b.Generics...)
	}
	if len(b.ArrayDims) > 0 {
		c.ArrayDims = append([]int(nil), b.ArrayDims...)
	}
	return c
}

// Element returns the type produced by indexing b once.
func (b *BasicType) Element() *BasicType {
	c := b.Clone()
	if len(c.ArrayDims) > 0 {
		c.ArrayDims = c.ArrayDims[1:]
		if len(c.ArrayDims) == 0 {
			c.ArrayDims = nil
		}
		return c
	}
	c.PointerDepth--
	return c
}

// Pointer returns a type one pointer level deeper than b.
func (b *BasicType) Pointer() *BasicType {
	c := b.Clone()
	c.PointerDepth++
	return c
}

// Deref returns the type one pointer level shallower than b.
func (b *BasicType) Deref() *BasicType {
	c := b.Clone()
	c.PointerDepth--
	return c
}

// Base strips pointers and dimensions.
func (b *BasicType) Base() *BasicType {
	return &BasicType{Name: b.Name, Module: b.Module, Generics: b.Generics}
}

func (b *BasicType) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("*", b.PointerDepth))
	sb.WriteString(b.Name)
	if len(b.Generics) > 0 {
		sb.WriteString("<")
		sb.WriteString(joinTypes(b.Generics))
		sb.WriteString(">")
	}
	for _, d := range b.ArrayDims {
		if d == UnsizedDim {
			sb.WriteString("[]")
		} else {
			sb.WriteString(fmt.Sprintf("[%d]", d))
		}
	}
	return sb.String()
}

func (f *FunctionType) String() string {
	params := joinTypes(f.Params)
	if f.Variadic {
		if params != "" {
			params += ", "
		}
		params += "..."
	}
	return fmt.Sprintf("Func<%s>(%s)", TypeString(f.Return), params)
}

func (t *TupleType) String() string {
	return "(" + joinTypes(t.Elements) + ")"
}

func (m *MetaType) String() string {
	return "type " + TypeString(m.Inner)
}

// TypeString renders t, treating nil as void.
func TypeString(t TypeNode) string {
	if t == nil {
		return "void"
	}
	return t.String()
}

func joinTypes(ts []TypeNode) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = TypeString(t)
	}
	return strings.Join(parts, ", ")
}
