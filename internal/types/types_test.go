package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/ast"
)

func ptr(name string, depth int, dims ...int) *ast.BasicType {
	return &ast.BasicType{Name: name, PointerDepth: depth, ArrayDims: dims}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name   string
		target ast.TypeNode
		source ast.TypeNode
		want   bool
	}{
		{"same builtin", Named(Int), Named(Int), true},
		{"different builtin", Named(Int), Named(String), false},
		{"pointer depth", ptr("int", 1), ptr("int", 2), false},
		{"nullptr to pointer", ptr("int", 1), Named(Nullptr), true},
		{"pointer to nullptr", Named(Nullptr), ptr("char", 2), true},
		{"nullptr to int", Named(Int), Named(Nullptr), false},
		{"sized arrays", ptr("int", 0, 3), ptr("int", 0, 3), true},
		{"size mismatch", ptr("int", 0, 3), ptr("int", 0, 4), false},
		{"unsized target", ptr("int", 0, ast.UnsizedDim), ptr("int", 0, 8), true},
		{"dimension count", ptr("int", 0, 3), ptr("int", 0, 3, 3), false},
		{"generic args", ast.Basic("Box", Named(Int)), ast.Basic("Box", Named(Int)), true},
		{"generic arg mismatch", ast.Basic("Box", Named(Int)), ast.Basic("Box", Named(Float)), false},
		{"void target", nil, Named(Int), false},
		{"void both", Named(Void), Named(Void), false},
		{"tuple", &ast.TupleType{Elements: []ast.TypeNode{Named(Int), Named(Bool)}},
			&ast.TupleType{Elements: []ast.TypeNode{Named(Int), Named(Bool)}}, true},
		{"function", &ast.FunctionType{Params: []ast.TypeNode{Named(Int)}, Return: Named(Int)},
			&ast.FunctionType{Params: []ast.TypeNode{Named(Int)}, Return: Named(Int)}, true},
		{"function arity", &ast.FunctionType{Params: []ast.TypeNode{Named(Int)}},
			&ast.FunctionType{}, false},
		{"void functions", &ast.FunctionType{}, &ast.FunctionType{}, true},
		{"meta", &ast.MetaType{Inner: Named(Int)}, &ast.MetaType{Inner: Named(Int)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compatible(tt.target, tt.source))
		})
	}
}

func TestSubstituteAccumulates(t *testing.T) {
	env := Env{"T": ptr("int", 1)}

	got := Substitute(ptr("T", 0, 3), env)
	assert.Equal(t, "*int[3]", got.String())

	got = Substitute(ptr("T", 1), env)
	assert.Equal(t, "**int", got.String())

	env = Env{"T": ptr("int", 0, 2)}
	got = Substitute(ptr("T", 0, 3), env)
	assert.Equal(t, "int[3][2]", got.String())

	got = Substitute(ast.Basic("Box", ast.Basic("T")), Env{"T": Named(Char)})
	assert.Equal(t, "Box<char>", got.String())
}

func TestUnifyInvertsSubstitute(t *testing.T) {
	params := map[string]bool{"T": true}

	env := Env{}
	require.True(t, Unify(ptr("T", 1), ptr("int", 2), params, env))
	assert.Equal(t, "*int", env["T"].String())

	env = Env{}
	require.True(t, Unify(ast.Basic("Box", ast.Basic("T")), ast.Basic("Box", Named(Float)), params, env))
	assert.Equal(t, "float", env["T"].String())

	env = Env{"T": Named(Int)}
	assert.False(t, Unify(ast.Basic("T"), Named(Bool), params, env))

	env = Env{}
	require.True(t, Unify(ast.Basic("T"), Named(Nullptr), params, env))
	assert.Empty(t, env)
}

func registry(decls ...*ast.StructDecl) *TypeRegistry {
	tr := NewTypeRegistry()
	for _, d := range decls {
		tr.AddStruct(d, d.Module, false)
	}
	return tr
}

func structDecl(name string, parent *ast.BasicType, typeParams []string, fields ...*ast.FieldDecl) *ast.StructDecl {
	d := &ast.StructDecl{Name: ast.Ident{Value: name}, Parent: parent, Fields: fields}
	for _, tp := range typeParams {
		d.TypeParams = append(d.TypeParams, ast.Ident{Value: tp})
	}
	return d
}

func field(name string, t ast.TypeNode) *ast.FieldDecl {
	return &ast.FieldDecl{Name: ast.Ident{Value: name}, Type: t}
}

func TestInheritedLayoutAndLookup(t *testing.T) {
	point := structDecl("Point", nil, nil, field("x", Named(Int)), field("y", Named(Int)))
	point.Methods = []*ast.FunctionDecl{{Name: ast.Ident{Value: "len"}, Owner: "Point", IsMethod: true}}
	point3 := structDecl("Point3", ast.Basic("Point"), nil, field("z", Named(Int)))
	point4 := structDecl("Point4", ast.Basic("Point3"), nil, field("w", Named(Float)))
	tr := registry(point, point3, point4)

	fields := Fields(tr, ast.Basic("Point4"))
	require.Len(t, fields, 4)
	assert.Equal(t, []string{"x", "y", "z", "w"}, []string{fields[0].Name, fields[1].Name, fields[2].Name, fields[3].Name})
	assert.Equal(t, 3, fields[3].Index)

	m, ok := LookupMember(tr, ast.Basic("Point4"), "y")
	require.True(t, ok)
	assert.Equal(t, 1, m.Field.Index)
	assert.Equal(t, "Point", m.Owner.Name)

	m, ok = LookupMember(tr, ast.Basic("Point4"), "len")
	require.True(t, ok)
	assert.Equal(t, "len", m.Method.Name.Value)
	assert.Equal(t, "Point", m.Owner.Name)

	_, ok = LookupMember(tr, ast.Basic("Point4"), "missing")
	assert.False(t, ok)

	chain, err := Chain(tr, point4)
	require.NoError(t, err)
	assert.Len(t, chain, 2)
}

func TestGenericFieldsAreSubstituted(t *testing.T) {
	box := structDecl("Box", nil, []string{"T"}, field("value", ast.Basic("T")), field("items", ptr("T", 0, 2)))
	tr := registry(box)

	fields := Fields(tr, ast.Basic("Box", ptr("int", 1)))
	require.Len(t, fields, 2)
	assert.Equal(t, "*int", fields[0].Type.String())
	assert.Equal(t, "*int[2]", fields[1].Type.String())
}

func TestChainDetectsCycle(t *testing.T) {
	a := structDecl("A", ast.Basic("B"), nil)
	b := structDecl("B", ast.Basic("A"), nil)
	tr := registry(a, b)

	_, err := Chain(tr, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")

	// Lookups terminate even on a cyclic registry.
	_, ok := LookupMember(tr, ast.Basic("A"), "x")
	assert.False(t, ok)
}

func TestRegistryRejectsRedefinition(t *testing.T) {
	first := structDecl("P", nil, nil)
	tr := registry(first)

	prev, ok := tr.AddStruct(first, "", false)
	assert.True(t, ok)
	assert.Same(t, first, prev.Decl)

	prev, ok = tr.AddStruct(structDecl("P", nil, nil), "", false)
	assert.False(t, ok)
	assert.Same(t, first, prev.Decl)
}

func TestRegistryKeysByModule(t *testing.T) {
	main := structDecl("Node", nil, nil, field("label", ast.Basic("string")))
	main.Module = "/src/main.em"
	list := structDecl("Node", nil, nil, field("value", ast.Basic("int")))
	list.Module = "/src/list.em"

	tr := NewTypeRegistry()
	_, ok := tr.AddStruct(main, main.Module, true)
	require.True(t, ok)
	_, ok = tr.AddStruct(list, list.Module, false)
	require.True(t, ok)

	t.Run("lookup", func(t *testing.T) {
		assert.Same(t, main, tr.Struct(main.SelfType()).Decl)
		assert.Same(t, list, tr.Struct(list.SelfType()).Decl)
		assert.False(t, tr.Struct(list.SelfType()).Exported)
		assert.Nil(t, tr.Struct(ast.Basic("Node")))
	})

	t.Run("fields", func(t *testing.T) {
		fields := Fields(tr, list.SelfType())
		require.Len(t, fields, 1)
		assert.Equal(t, "value", fields[0].Name)
	})

	t.Run("distinct types", func(t *testing.T) {
		assert.False(t, Compatible(main.SelfType(), list.SelfType()))
	})
}
