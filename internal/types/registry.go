package types

import (
	"fmt"

	"ember/internal/ast"
)

// StructInfo is a registered struct declaration and the module it came from.
type StructInfo struct {
	Decl     *ast.StructDecl
	Module   string
	Exported bool
}

// Field is a struct slot resolved against a concrete receiver.
type Field struct {
	Name  string
	Type  ast.TypeNode
	Index int
	Decl  *ast.FieldDecl
}

// Member is the result of a chain-walking member lookup. Owner is the
// instantiated struct that declares the member, which may be an ancestor of
// the receiver.
type Member struct {
	Field  *Field
	Method *ast.FunctionDecl
	Owner  *ast.BasicType
	Env    Env
}

// StructLookup is implemented by anything that can resolve struct types.
type StructLookup interface {
	Struct(t *ast.BasicType) *StructInfo
}

// structKey identifies a struct: modules may each declare their own Node.
type structKey struct {
	module string
	name   string
}

func keyOf(t *ast.BasicType) structKey {
	return structKey{module: t.Module, name: t.Name}
}

// TypeRegistry holds every struct visible to one compilation, including those
// of imported modules, keyed by declaring module and name.
type TypeRegistry struct {
	structs map[structKey]*StructInfo
	order   []structKey
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{structs: make(map[structKey]*StructInfo)}
}

// AddStruct registers decl as declared by module. Registering the same
// declaration twice is a no-op; a different declaration under a name the
// module already uses returns the previous one.
func (tr *TypeRegistry) AddStruct(decl *ast.StructDecl, module string, exported bool) (*StructInfo, bool) {
	key := structKey{module: module, name: decl.Name.Value}
	if prev, ok := tr.structs[key]; ok {
		return prev, prev.Decl == decl
	}
	tr.structs[key] = &StructInfo{Decl: decl, Module: module, Exported: exported}
	tr.order = append(tr.order, key)
	return nil, true
}

// Struct returns the registered struct t names, or nil. Pointers, dimensions
// and generic arguments of t are ignored.
func (tr *TypeRegistry) Struct(t *ast.BasicType) *StructInfo {
	return tr.structs[keyOf(t)]
}

// Structs returns registered structs in registration order.
func (tr *TypeRegistry) Structs() []*StructInfo {
	out := make([]*StructInfo, 0, len(tr.order))
	for _, key := range tr.order {
		out = append(out, tr.structs[key])
	}
	return out
}

// IsStruct reports whether t names a registered struct, with no pointers or
// dimensions.
func IsStruct(lookup StructLookup, t ast.TypeNode) bool {
	bt, ok := t.(*ast.BasicType)
	return ok && bt.IsPlain() && lookup.Struct(bt) != nil
}

// Chain returns decl's ancestors, nearest first. It fails on a cycle or an
// unregistered parent.
func Chain(lookup StructLookup, decl *ast.StructDecl) ([]*ast.StructDecl, error) {
	var chain []*ast.StructDecl
	seen := map[structKey]bool{keyOf(decl.SelfType()): true}
	for cur := decl; cur.Parent != nil; {
		key := keyOf(cur.Parent)
		if seen[key] {
			return nil, fmt.Errorf("inheritance cycle through %q", key.name)
		}
		seen[key] = true
		info := lookup.Struct(cur.Parent)
		if info == nil {
			return nil, fmt.Errorf("unknown parent %q", key.name)
		}
		chain = append(chain, info.Decl)
		cur = info.Decl
	}
	return chain, nil
}

// Parent returns the instantiated parent of recv, or nil.
func Parent(lookup StructLookup, recv *ast.BasicType) *ast.BasicType {
	info := lookup.Struct(recv)
	if info == nil || info.Decl.Parent == nil {
		return nil
	}
	env := Bind(info.Decl.TypeParams, recv.Generics)
	parent, _ := Substitute(info.Decl.Parent, env).(*ast.BasicType)
	return parent
}

// Fields returns the slots of recv in layout order: inherited fields first,
// then the struct's own in declaration order.
func Fields(lookup StructLookup, recv *ast.BasicType) []*Field {
	var fields []*Field
	seen := map[structKey]bool{}
	var collect func(t *ast.BasicType)
	collect = func(t *ast.BasicType) {
		info := lookup.Struct(t)
		if info == nil || seen[keyOf(t)] {
			return
		}
		seen[keyOf(t)] = true
		if parent := Parent(lookup, t); parent != nil {
			collect(parent)
		}
		env := Bind(info.Decl.TypeParams, t.Generics)
		for _, fd := range info.Decl.Fields {
			fields = append(fields, &Field{
				Name:  fd.Name.Value,
				Type:  Substitute(fd.Type, env),
				Index: len(fields),
				Decl:  fd,
			})
		}
	}
	collect(recv.Base())
	return fields
}

// LookupMember finds name on recv, walking from the struct itself up through
// its ancestors. Fields are reported with their layout index in recv.
func LookupMember(lookup StructLookup, recv *ast.BasicType, name string) (*Member, bool) {
	fields := Fields(lookup, recv)
	seen := map[structKey]bool{}
	for cur := recv.Base(); cur != nil; cur = Parent(lookup, cur) {
		if seen[keyOf(cur)] {
			break
		}
		seen[keyOf(cur)] = true
		info := lookup.Struct(cur)
		if info == nil {
			break
		}
		env := Bind(info.Decl.TypeParams, cur.Generics)

		for _, fd := range info.Decl.Fields {
			if fd.Name.Value != name {
				continue
			}
			for _, f := range fields {
				if f.Decl == fd {
					return &Member{Field: f, Owner: cur, Env: env}, true
				}
			}
		}
		for _, m := range info.Decl.Methods {
			if m.Name.Value == name {
				return &Member{Method: m, Owner: cur, Env: env}, true
			}
		}
	}
	return nil, false
}

// MemberNames lists every field and method visible on recv, for suggestions.
func MemberNames(lookup StructLookup, recv *ast.BasicType) []string {
	var names []string
	for _, f := range Fields(lookup, recv) {
		names = append(names, f.Name)
	}
	seen := map[structKey]bool{}
	for cur := recv.Base(); cur != nil && !seen[keyOf(cur)]; cur = Parent(lookup, cur) {
		seen[keyOf(cur)] = true
		info := lookup.Struct(cur)
		if info == nil {
			break
		}
		for _, m := range info.Decl.Methods {
			names = append(names, m.Name.Value)
		}
	}
	return names
}
