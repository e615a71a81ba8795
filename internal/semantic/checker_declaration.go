package semantic

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/types"
)

// hoist is the first pass. Imports are loaded, then every declaration name
// is registered before any signature is resolved, so declarations may refer
// to each other in any order. Globals come last since their initializers may
// name structs.
func (c *Checker) hoist(m *module) error {
	for _, stmt := range m.program.Body {
		if imp, ok := stmt.(*ast.Import); ok {
			if err := c.importModule(m, imp); err != nil {
				return err
			}
		}
	}

	for _, stmt := range m.program.Body {
		if err := c.declare(m, stmt); err != nil {
			return err
		}
	}

	// Parents first: the cycle check walks chains of resolved parents.
	for _, stmt := range m.program.Body {
		decl, _ := ast.Unwrap(stmt)
		if d, ok := decl.(*ast.StructDecl); ok && d.Parent != nil {
			if err := c.resolveParent(m.scope, d); err != nil {
				return err
			}
		}
	}

	for _, stmt := range m.program.Body {
		decl, _ := ast.Unwrap(stmt)
		switch d := decl.(type) {
		case *ast.TypeAlias:
			if _, err := c.aliasTarget(m.scope.LookupLocal(d.Name.Value)); err != nil {
				return err
			}
		case *ast.StructDecl:
			if err := c.resolveStruct(m.scope, d); err != nil {
				return err
			}
		case *ast.FunctionDecl:
			if err := c.resolveSignature(m.scope, d); err != nil {
				return err
			}
		case *ast.Extern:
			if err := c.resolveSignature(m.scope, d.Fn); err != nil {
				return err
			}
		}
	}

	for _, stmt := range m.program.Body {
		decl, exported := ast.Unwrap(stmt)
		if v, ok := decl.(*ast.VariableDecl); ok {
			if err := c.checkGlobal(m, v, exported); err != nil {
				return err
			}
		}
	}
	return nil
}

// declare registers the name of one top-level declaration.
func (c *Checker) declare(m *module, stmt ast.Stmt) error {
	decl, exported := ast.Unwrap(stmt)

	var sym *Symbol
	switch d := decl.(type) {
	case *ast.StructDecl:
		d.Module = m.path
		if prev, ok := c.registry.AddStruct(d, m.path, exported); !ok {
			return errors.New(errors.ErrorDuplicateDeclaration,
				fmt.Sprintf("struct '%s' is already declared", d.Name.Value), errors.SpanOf(&d.Name)).
				WithNote(fmt.Sprintf("previous declaration in %s", prev.Module)).
				Build()
		}
		sym = &Symbol{Name: d.Name.Value, Kind: SymbolStruct, Type: &ast.MetaType{Inner: d.SelfType()}, Node: d}
	case *ast.FunctionDecl:
		sym = &Symbol{Name: d.Name.Value, Kind: SymbolFunction, Node: d}
	case *ast.Extern:
		sym = &Symbol{Name: d.Fn.Name.Value, Kind: SymbolFunction, Node: d.Fn}
	case *ast.TypeAlias:
		sym = &Symbol{Name: d.Name.Value, Kind: SymbolTypeAlias, Node: d}
	case *ast.VariableDecl, *ast.Import:
		return nil
	case *ast.Export, *ast.Asm, *ast.If, *ast.Loop, *ast.Return, *ast.Break, *ast.Continue,
		*ast.Block, *ast.ExprStmt, *ast.Try, *ast.Throw, *ast.Switch:
		return errors.New(errors.ErrorInvalidOperation, "statement is not allowed at the top level", errors.SpanOf(decl)).Build()
	default:
		return errors.Internal(fmt.Sprintf("unhandled declaration %T", decl), errors.SpanOf(decl))
	}

	sym.Position = decl.NodePos()
	sym.home = m.scope
	sym.Global = true
	sym.Exported = exported
	return c.define(m, sym, decl)
}

func (c *Checker) define(m *module, sym *Symbol, at ast.Node) error {
	if prev := m.scope.LookupLocal(sym.Name); prev != nil && prev != sym {
		return errors.New(errors.ErrorDuplicateDeclaration,
			fmt.Sprintf("duplicate declaration: %s", sym.Name), errors.SpanOf(at)).
			WithNote(fmt.Sprintf("'%s' was already declared as a %s at %d:%d", sym.Name, prev.Kind, prev.Position.Line, prev.Position.Column)).
			Build()
	}
	m.scope.Define(sym)
	if sym.Exported {
		m.exports[sym.Name] = sym
	}
	return nil
}

// aliasTarget resolves an alias symbol on first use, in the scope that
// declared it. Reaching an alias that is still being resolved means it refers
// to itself.
func (c *Checker) aliasTarget(sym *Symbol) (ast.TypeNode, error) {
	if sym.Type != nil {
		return sym.Type, nil
	}
	alias := sym.Node.(*ast.TypeAlias)
	if alias.Type != nil {
		// Marked while resolving.
		return nil, errors.New(errors.ErrorUndefinedType,
			fmt.Sprintf("type alias '%s' is defined in terms of itself", sym.Name), errors.SpanOf(alias)).Build()
	}
	alias.Type = &ast.MetaType{}

	target, err := c.resolveType(sym.home, alias.Target)
	if err != nil {
		return nil, err
	}
	alias.Target = target
	alias.Type = &ast.MetaType{Inner: target}
	sym.Type = target
	return target, nil
}

// resolveParent replaces the parent syntax of d with the struct type it
// names.
func (c *Checker) resolveParent(s *Scope, d *ast.StructDecl) error {
	sym := s.Lookup(d.Parent.Name)
	if sym == nil || sym.Kind != SymbolStruct {
		return errors.UnknownParent(d.Name.Value, d.Parent.Name, errors.SpanOf(d.Parent))
	}
	parent, err := c.resolveType(c.structScope(s, d), d.Parent)
	if err != nil {
		return err
	}
	d.Parent = parent.(*ast.BasicType)
	return nil
}

// resolveStruct validates the parent chain and resolves field and method
// signatures in the scope of the struct's type parameters.
func (c *Checker) resolveStruct(s *Scope, d *ast.StructDecl) error {
	structScope := c.structScope(s, d)
	d.Type = d.SelfType()

	if d.Parent != nil {
		if _, err := types.Chain(c.registry, d); err != nil {
			return errors.InheritanceCycle(d.Name.Value, errors.SpanOf(&d.Name))
		}
	}

	seen := map[string]bool{}
	for _, f := range d.Fields {
		if seen[f.Name.Value] {
			return errors.DuplicateField(f.Name.Value, errors.SpanOf(&f.Name))
		}
		seen[f.Name.Value] = true

		t, err := c.resolveType(structScope, f.Type)
		if err != nil {
			return err
		}
		if err := c.checkStorable(t, errors.SpanOf(f)); err != nil {
			return err
		}
		if bt, ok := t.(*ast.BasicType); ok && bt.IsPlain() && bt.Name == d.Name.Value && bt.Module == d.Module {
			return errors.New(errors.ErrorInvalidTypeSyntax,
				fmt.Sprintf("struct '%s' cannot contain itself", d.Name.Value), errors.SpanOf(f)).
				WithHint(fmt.Sprintf("store a pointer instead: *%s", d.Name.Value)).
				Build()
		}
		f.Type = t
	}
	if d.Parent != nil {
		for _, name := range types.MemberNames(c.registry, d.Parent) {
			if seen[name] {
				return errors.New(errors.ErrorDuplicateField,
					fmt.Sprintf("field '%s' is already declared by a parent of '%s'", name, d.Name.Value), errors.SpanOf(d)).Build()
			}
		}
	}

	for _, method := range d.Methods {
		if seen[method.Name.Value] {
			return errors.DuplicateDeclaration(method.Name.Value, errors.SpanOf(&method.Name))
		}
		seen[method.Name.Value] = true
		if method.IsGeneric() {
			return errors.New(errors.ErrorInvalidTypeSyntax, "generic methods are not supported", errors.SpanOf(&method.Name)).
				WithHint("make the struct generic instead").
				Build()
		}
		if err := c.resolveSignature(structScope, method); err != nil {
			return err
		}
	}
	return nil
}

// resolveSignature rewrites parameter and return types of decl to their
// resolved form and records the function type on the declaration.
func (c *Checker) resolveSignature(s *Scope, decl *ast.FunctionDecl) error {
	fnScope := s.child()
	for _, tp := range decl.TypeParams {
		if fnScope.LookupLocal(tp.Value) != nil {
			return errors.DuplicateDeclaration(tp.Value, errors.SpanOf(&tp))
		}
		fnScope.Define(&Symbol{Name: tp.Value, Kind: SymbolTypeParam, Type: ast.Basic(tp.Value), Node: decl, Position: tp.Pos})
	}

	for _, p := range decl.Params {
		t, err := c.resolveType(fnScope, p.Type)
		if err != nil {
			return err
		}
		if err := c.checkStorable(t, errors.SpanOf(p)); err != nil {
			return err
		}
		p.Type = t
	}
	if decl.Return != nil {
		t, err := c.resolveType(fnScope, decl.Return)
		if err != nil {
			return err
		}
		if types.IsVoid(t) {
			t = nil
		} else if err := c.checkStorable(t, errors.SpanOf(decl.Return)); err != nil {
			return err
		}
		decl.Return = t
	}
	decl.Type = types.Signature(decl, nil)
	return nil
}

// checkStorable rejects void and unsized arrays where a value must have a
// known layout.
func (c *Checker) checkStorable(t ast.TypeNode, span errors.Span) error {
	if types.IsVoid(t) {
		return errors.New(errors.ErrorTypeMismatch, "void is only valid as a return type", span).Build()
	}
	if hasUnsizedDim(t) {
		return errors.New(errors.ErrorInvalidTypeSyntax, "array size is required here", span).
			WithHint("'[]' is only allowed on a local with an initializer").
			Build()
	}
	return nil
}

func hasUnsizedDim(t ast.TypeNode) bool {
	switch t := t.(type) {
	case *ast.BasicType:
		for _, d := range t.ArrayDims {
			if d == ast.UnsizedDim {
				return true
			}
		}
		for _, g := range t.Generics {
			if hasUnsizedDim(g) {
				return true
			}
		}
	case *ast.FunctionType:
		for _, p := range t.Params {
			if hasUnsizedDim(p) {
				return true
			}
		}
		return hasUnsizedDim(t.Return)
	case *ast.TupleType:
		for _, e := range t.Elements {
			if hasUnsizedDim(e) {
				return true
			}
		}
	case *ast.MetaType:
		return hasUnsizedDim(t.Inner)
	}
	return false
}

// checkGlobal checks a module-level variable. Its initializer must be a
// constant the code generator can emit as static data.
func (c *Checker) checkGlobal(m *module, v *ast.VariableDecl, exported bool) error {
	if v.Destructure {
		return errors.New(errors.ErrorInvalidOperation, "module-level variables cannot destructure", errors.SpanOf(v)).Build()
	}
	if v.Init != nil && !isConstant(v.Init) {
		return errors.New(errors.ErrorInvalidOperation, "module-level initializer must be a constant", errors.SpanOf(v.Init)).
			WithHint("use a literal, or assign the value inside a function").
			Build()
	}

	t, err := c.variableType(m.scope, v, false)
	if err != nil {
		return err
	}
	sym := &Symbol{
		Name:     v.Names[0].Value,
		Kind:     SymbolVariable,
		Type:     t,
		Node:     v,
		Position: v.Pos,
		Global:   true,
		Exported: exported,
	}
	return c.define(m, sym, &v.Names[0])
}

// isConstant reports literals and aggregates built only from literals.
func isConstant(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Literal:
		return true
	case *ast.Unary:
		lit, ok := e.Operand.(*ast.Literal)
		return ok && e.Op == "-" && !e.Postfix && (lit.Kind == ast.IntLiteral || lit.Kind == ast.FloatLiteral)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			if !isConstant(el) {
				return false
			}
		}
		return true
	case *ast.TupleLiteral:
		for _, el := range e.Elements {
			if !isConstant(el) {
				return false
			}
		}
		return true
	case *ast.StructLiteral:
		for _, f := range e.Fields {
			if !isConstant(f.Value) {
				return false
			}
		}
		return true
	}
	return false
}
