package codegen

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/ir"
	"ember/internal/types"
)

// resolve applies the type arguments of the function being generated.
func (g *Generator) resolve(t ast.TypeNode) ast.TypeNode {
	if g.fn == nil {
		return t
	}
	return types.Substitute(t, g.fn.env)
}

// typeOf returns the resolved type the checker recorded on e.
func (g *Generator) typeOf(e ast.Expr) (ast.TypeNode, error) {
	t := e.ResolvedType()
	if t == nil {
		return nil, errors.Internal(fmt.Sprintf("%s has no resolved type", e.NodeType()), errors.SpanOf(e))
	}
	return g.resolve(t), nil
}

// llType maps the resolved type of e to its representation.
func (g *Generator) llType(e ast.Expr) (ir.Type, error) {
	t, err := g.typeOf(e)
	if err != nil {
		return nil, err
	}
	return g.lower(t)
}

// lower maps a type to its representation. The base maps through a fixed
// table, then pointer levels wrap it, then array dimensions from the
// innermost out. A nil type is void.
func (g *Generator) lower(t ast.TypeNode) (ir.Type, error) {
	t = g.resolve(t)
	switch t := t.(type) {
	case nil:
		return ir.Void, nil

	case *ast.BasicType:
		var out ir.Type
		switch t.Name {
		case string(types.Int):
			out = ir.I64
		case string(types.Float):
			out = ir.Double
		case string(types.Bool):
			out = ir.I1
		case string(types.Char):
			out = ir.I8
		case string(types.String), string(types.Nullptr):
			out = ir.PointerTo(ir.I8)
		case string(types.Void):
			out = ir.Void
		default:
			if g.registry.Struct(t) == nil {
				return nil, errors.Internal(fmt.Sprintf("unresolved type %s", t), errors.SpanOf(t))
			}
			named, err := g.structType(t.Base())
			if err != nil {
				return nil, err
			}
			out = named
		}
		for i := 0; i < t.PointerDepth; i++ {
			out = ir.PointerTo(out)
		}
		for i := len(t.ArrayDims) - 1; i >= 0; i-- {
			if t.ArrayDims[i] == ast.UnsizedDim {
				return nil, errors.Internal(fmt.Sprintf("array %s has no size", t), errors.SpanOf(t))
			}
			out = &ir.ArrayType{Len: t.ArrayDims[i], Elem: out}
		}
		return out, nil

	case *ast.FunctionType:
		ft, err := g.funcType(t)
		if err != nil {
			return nil, err
		}
		return ir.PointerTo(ft), nil

	case *ast.TupleType:
		st := &ir.StructType{}
		for _, e := range t.Elements {
			et, err := g.lower(e)
			if err != nil {
				return nil, err
			}
			st.Fields = append(st.Fields, et)
		}
		return st, nil

	case *ast.MetaType:
		return nil, errors.Internal(fmt.Sprintf("%s is not a value type", t), errors.SpanOf(t))
	}
	return nil, errors.Internal(fmt.Sprintf("unhandled type %T", t), errors.Span{})
}

func (g *Generator) funcType(f *ast.FunctionType) (*ir.FuncType, error) {
	ret, err := g.lower(f.Return)
	if err != nil {
		return nil, err
	}
	ft := &ir.FuncType{Return: ret, Variadic: f.Variadic}
	for _, p := range f.Params {
		pt, err := g.lower(p)
		if err != nil {
			return nil, err
		}
		ft.Params = append(ft.Params, pt)
	}
	return ft, nil
}

// structType returns the named aggregate for an instantiated struct and
// emits its definition the first time. Slots follow types.Fields: inherited
// fields first, then declaration order.
func (g *Generator) structType(t *ast.BasicType) (*ir.NamedType, error) {
	name := mangleWith(t, g.structName)
	named := &ir.NamedType{Name: name}
	if g.structs[name] {
		return named, nil
	}
	g.structs[name] = true

	def := &ir.StructDef{Name: name}
	g.module.Types = append(g.module.Types, def)
	for _, f := range types.Fields(g.registry, t) {
		ft, err := g.lower(f.Type)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, ft)
	}
	return named, nil
}

// structName is the IR name of the struct b names, without type
// arguments. Structs of the program keep their source name, and so does an
// imported struct while no other struct of the unit uses it; otherwise the
// importing file's name qualifies it: lib.Node.
func (g *Generator) structName(b *ast.BasicType) string {
	info := g.registry.Struct(b)
	if info == nil {
		return b.Name
	}
	if name, ok := g.typeNames[info.Decl]; ok {
		return name
	}
	name := b.Name
	if g.takenType[name] {
		stem := sanitize(strings.TrimSuffix(filepath.Base(info.Module), filepath.Ext(info.Module)))
		name = stem + "." + b.Name
		for n := 1; g.takenType[name]; n++ {
			name = fmt.Sprintf("%s.%s.%d", stem, b.Name, n)
		}
	}
	g.typeNames[info.Decl] = name
	g.takenType[name] = true
	return name
}

// symbol names t inside a function symbol. Exported structs use their source
// name, which every unit agrees on; the others use the unit's type name.
func (g *Generator) symbol(t ast.TypeNode) string {
	return mangleWith(t, func(b *ast.BasicType) string {
		if info := g.registry.Struct(b); info != nil && !info.Exported {
			return g.structName(b)
		}
		return b.Name
	})
}

func (g *Generator) symbolList(ts []ast.TypeNode) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = g.symbol(t)
	}
	return strings.Join(parts, "_")
}

// private reports whether any of ts mentions a struct its module does not
// export.
func (g *Generator) private(ts ...ast.TypeNode) bool {
	found := false
	for _, t := range ts {
		mangleWith(t, func(b *ast.BasicType) string {
			if info := g.registry.Struct(b); info != nil && !info.Exported {
				found = true
			}
			return b.Name
		})
	}
	return found
}

// sanitize keeps the characters an IR identifier may contain.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '$':
			return r
		}
		return '_'
	}, s)
}

// mangle flattens a type into a symbol fragment: Box<*int> becomes
// Box_ptr_int and int[4] becomes int_a4.
func mangle(t ast.TypeNode) string {
	return mangleWith(t, func(b *ast.BasicType) string { return b.Name })
}

// mangleWith is mangle with name choosing the text of every named type.
func mangleWith(t ast.TypeNode, name func(*ast.BasicType) string) string {
	switch t := t.(type) {
	case *ast.BasicType:
		var sb strings.Builder
		sb.WriteString(strings.Repeat("ptr_", t.PointerDepth))
		sb.WriteString(name(t))
		for _, g := range t.Generics {
			sb.WriteString("_")
			sb.WriteString(mangleWith(g, name))
		}
		for _, d := range t.ArrayDims {
			fmt.Fprintf(&sb, "_a%d", d)
		}
		return sb.String()
	case *ast.FunctionType:
		s := "fn_" + mangleWith(t.Return, name)
		for _, p := range t.Params {
			s += "_" + mangleWith(p, name)
		}
		return s
	case *ast.TupleType:
		s := "tuple"
		for _, e := range t.Elements {
			s += "_" + mangleWith(e, name)
		}
		return s
	case *ast.MetaType:
		return mangleWith(t.Inner, name)
	case nil:
		return "void"
	}
	return "unknown"
}

// floatText renders a double as the exact hexadecimal form of its bits.
func floatText(f float64) string {
	return fmt.Sprintf("0x%016X", math.Float64bits(f))
}

// zeroText is the constant zero of t.
func zeroText(t ir.Type) string {
	switch t.(type) {
	case *ir.IntType:
		return "0"
	case *ir.FloatType:
		return floatText(0)
	case *ir.PointerType:
		return "null"
	}
	return "zeroinitializer"
}

func zero(t ir.Type) *ir.Value {
	return ir.Const(t, zeroText(t))
}

// literalText renders a scalar literal as a constant of type t.
func (g *Generator) literalText(l *ast.Literal, t ir.Type) (string, error) {
	switch v := l.Value.(type) {
	case int64:
		if ir.IsFloat(t) {
			return floatText(float64(v)), nil
		}
		return strconv.FormatInt(v, 10), nil
	case float64:
		return floatText(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case byte:
		return strconv.Itoa(int(int8(v))), nil
	case string:
		c := g.str(v)
		arr := c.Type()
		return fmt.Sprintf("getelementptr inbounds (%s, %s* @%s, i64 0, i64 0)", arr, arr, c.Name), nil
	case nil:
		if l.Kind == ast.NullLiteral {
			return "null", nil
		}
	}
	return "", errors.Internal(fmt.Sprintf("unexpected literal %s", l.Raw), errors.SpanOf(l))
}

// constant renders a global initializer of type t. The checker only admits
// literals and aggregates of literals here.
func (g *Generator) constant(e ast.Expr, t ir.Type) (string, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return g.literalText(e, t)

	case *ast.Unary:
		lit, ok := e.Operand.(*ast.Literal)
		if !ok || e.Op != "-" {
			break
		}
		switch v := lit.Value.(type) {
		case int64:
			return strconv.FormatInt(-v, 10), nil
		case float64:
			return floatText(-v), nil
		}

	case *ast.ArrayLiteral:
		at, ok := t.(*ir.ArrayType)
		if !ok {
			break
		}
		parts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			s, err := g.constant(el, at.Elem)
			if err != nil {
				return "", err
			}
			parts[i] = at.Elem.String() + " " + s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil

	case *ast.TupleLiteral:
		st, ok := t.(*ir.StructType)
		if !ok {
			break
		}
		parts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			s, err := g.constant(el, st.Fields[i])
			if err != nil {
				return "", err
			}
			parts[i] = st.Fields[i].String() + " " + s
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil

	case *ast.StructLiteral:
		bt, ok := g.resolve(e.Struct).(*ast.BasicType)
		if !ok {
			break
		}
		fields := types.Fields(g.registry, bt)
		if len(fields) == 0 {
			return "zeroinitializer", nil
		}
		parts := make([]string, len(fields))
		for i, f := range fields {
			ft, err := g.lower(f.Type)
			if err != nil {
				return "", err
			}
			parts[i] = ft.String() + " " + zeroText(ft)
			for _, init := range e.Fields {
				if init.Name.Value != f.Name {
					continue
				}
				s, err := g.constant(init.Value, ft)
				if err != nil {
					return "", err
				}
				parts[i] = ft.String() + " " + s
			}
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	}
	return "", errors.Internal(fmt.Sprintf("%s is not a constant", e.NodeType()), errors.SpanOf(e))
}
