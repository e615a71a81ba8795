package semantic

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/types"
)

func (c *Checker) checkStmt(s *Scope, stmt ast.Stmt) error {
	switch stmt := stmt.(type) {
	case *ast.VariableDecl:
		return c.checkLocal(s, stmt)

	case *ast.If:
		if err := c.expectCondition(s, stmt.Cond, "if"); err != nil {
			return err
		}
		if err := c.checkBlock(s, stmt.Then); err != nil {
			return err
		}
		if stmt.Else != nil {
			return c.checkStmt(s, stmt.Else)
		}
		return nil

	case *ast.Loop:
		if stmt.Cond != nil {
			if err := c.expectCondition(s, stmt.Cond, "loop"); err != nil {
				return err
			}
		}
		body := s.child()
		body.loop = true
		return c.checkBlockIn(body, stmt.Body)

	case *ast.Return:
		return c.checkReturn(s, stmt)

	case *ast.Break:
		if !s.inLoop() {
			return errors.LoopControl("break", errors.SpanOf(stmt))
		}
		return nil

	case *ast.Continue:
		if !s.inLoop() {
			return errors.LoopControl("continue", errors.SpanOf(stmt))
		}
		return nil

	case *ast.Block:
		return c.checkBlock(s, stmt)

	case *ast.ExprStmt:
		_, err := c.checkExpr(s, stmt.X)
		return err

	case *ast.Try:
		if err := c.checkBlock(s, stmt.Body); err != nil {
			return err
		}
		for _, catch := range stmt.Catches {
			t, err := c.resolveType(s, catch.Type)
			if err != nil {
				return err
			}
			if err := c.checkStorable(t, errors.SpanOf(catch)); err != nil {
				return err
			}
			catch.Type = t
			catchScope := s.child()
			catchScope.Define(&Symbol{Name: catch.Name.Value, Kind: SymbolVariable, Type: t, Node: catch, Position: catch.Name.Pos})
			if err := c.checkBlockIn(catchScope, catch.Body); err != nil {
				return err
			}
		}
		if stmt.CatchAll != nil {
			return c.checkBlock(s, stmt.CatchAll)
		}
		return nil

	case *ast.Throw:
		_, err := c.checkValue(s, stmt.Value)
		return err

	case *ast.Switch:
		return c.checkSwitch(s, stmt)

	case *ast.Asm:
		return nil

	case *ast.FunctionDecl, *ast.StructDecl, *ast.TypeAlias, *ast.Import, *ast.Export, *ast.Extern:
		return errors.New(errors.ErrorInvalidOperation, "declarations belong at the top level", errors.SpanOf(stmt)).Build()
	}
	return errors.Internal(fmt.Sprintf("unhandled statement %T", stmt), errors.SpanOf(stmt))
}

// checkBlock checks b in a fresh child scope of s.
func (c *Checker) checkBlock(s *Scope, b *ast.Block) error {
	return c.checkBlockIn(s.child(), b)
}

// checkBlockIn checks b directly in s, for scopes that already hold
// parameters or loop markers.
func (c *Checker) checkBlockIn(s *Scope, b *ast.Block) error {
	for _, stmt := range b.Stmts {
		if err := c.checkStmt(s, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) expectCondition(s *Scope, cond ast.Expr, keyword string) error {
	t, err := c.checkValue(s, cond)
	if err != nil {
		return err
	}
	if !types.Is(t, types.Bool) {
		return errors.New(errors.ErrorTypeMismatch,
			fmt.Sprintf("%s condition must be bool, found %s", keyword, ast.TypeString(t)), errors.SpanOf(cond)).
			WithHint("use a comparison operator to create a boolean value").
			Build()
	}
	return nil
}

func (c *Checker) checkLocal(s *Scope, v *ast.VariableDecl) error {
	t, err := c.variableType(s, v, true)
	if err != nil {
		return err
	}

	if v.Destructure {
		tuple, ok := t.(*ast.TupleType)
		if !ok {
			return errors.New(errors.ErrorTypeMismatch,
				fmt.Sprintf("cannot destructure a value of type %s", ast.TypeString(t)), errors.SpanOf(v)).
				WithHint("only tuples can be destructured").
				Build()
		}
		if len(tuple.Elements) != len(v.Names) {
			return errors.New(errors.ErrorTypeMismatch,
				fmt.Sprintf("cannot destructure %d values into %d names", len(tuple.Elements), len(v.Names)), errors.SpanOf(v)).
				Build()
		}
		for i := range v.Names {
			if err := c.defineLocal(s, &v.Names[i], tuple.Elements[i], v); err != nil {
				return err
			}
		}
		return nil
	}
	return c.defineLocal(s, &v.Names[0], t, v)
}

func (c *Checker) defineLocal(s *Scope, name *ast.Ident, t ast.TypeNode, node ast.Node) error {
	if s.LookupLocal(name.Value) != nil {
		return errors.DuplicateDeclaration(name.Value, errors.SpanOf(name))
	}
	s.Define(&Symbol{Name: name.Value, Kind: SymbolVariable, Type: t, Node: node, Position: name.Pos})
	return nil
}

// variableType computes the declared type of v from its annotation and
// initializer and records it on the declaration. An unsized array dimension
// takes its size from the initializer, which only locals may rely on.
func (c *Checker) variableType(s *Scope, v *ast.VariableDecl, local bool) (ast.TypeNode, error) {
	var annotation ast.TypeNode
	if v.Annotation != nil {
		t, err := c.resolveType(s, v.Annotation)
		if err != nil {
			return nil, err
		}
		if types.IsVoid(t) {
			return nil, errors.New(errors.ErrorTypeMismatch, "variables cannot have type void", errors.SpanOf(v.Annotation)).Build()
		}
		if hasUnsizedDim(t) && (!local || v.Init == nil) {
			return nil, c.checkStorable(t, errors.SpanOf(v.Annotation))
		}
		annotation = t
	}

	if v.Init == nil {
		v.Type = annotation
		return annotation, nil
	}

	initType, err := c.checkValue(s, v.Init)
	if err != nil {
		return nil, err
	}

	if annotation == nil {
		if types.IsNull(initType) {
			return nil, errors.New(errors.ErrorCannotInfer, "cannot infer a type from nullptr", errors.SpanOf(v.Init)).
				WithHint("annotate the variable with a pointer type").
				Build()
		}
		v.Type = initType
		return initType, nil
	}

	if !types.Compatible(annotation, initType) {
		return nil, errors.TypeMismatch(ast.TypeString(annotation), ast.TypeString(initType), errors.SpanOf(v.Init))
	}
	if hasUnsizedDim(annotation) {
		annotation = initType
	}
	v.Type = annotation
	return annotation, nil
}

func (c *Checker) checkReturn(s *Scope, r *ast.Return) error {
	fn := s.function()
	if fn == nil {
		return errors.New(errors.ErrorInvalidOperation, "return outside of a function", errors.SpanOf(r)).Build()
	}
	name := fn.decl.Name.Value

	if types.IsVoid(fn.ret) {
		if r.Value != nil {
			t, err := c.checkExpr(s, r.Value)
			if err != nil {
				return err
			}
			return errors.InvalidReturnType(name, "void", ast.TypeString(t), errors.SpanOf(r.Value))
		}
		return nil
	}

	if r.Value == nil {
		return errors.InvalidReturnType(name, ast.TypeString(fn.ret), "void", errors.SpanOf(r))
	}
	t, err := c.checkValue(s, r.Value)
	if err != nil {
		return err
	}
	if !types.Compatible(fn.ret, t) {
		return errors.InvalidReturnType(name, ast.TypeString(fn.ret), ast.TypeString(t), errors.SpanOf(r.Value))
	}
	return nil
}

func (c *Checker) checkSwitch(s *Scope, sw *ast.Switch) error {
	t, err := c.checkValue(s, sw.Value)
	if err != nil {
		return err
	}
	if !types.IsInteger(t) && !types.Is(t, types.Bool) {
		return errors.New(errors.ErrorTypeMismatch,
			fmt.Sprintf("switch value must be an integer, char or bool, found %s", ast.TypeString(t)), errors.SpanOf(sw.Value)).
			Build()
	}

	for _, cs := range sw.Cases {
		for _, v := range cs.Values {
			vt, err := c.checkValue(s, v)
			if err != nil {
				return err
			}
			if !types.Compatible(t, vt) {
				return errors.TypeMismatch(ast.TypeString(t), ast.TypeString(vt), errors.SpanOf(v))
			}
		}
		if err := c.checkBlock(s, cs.Body); err != nil {
			return err
		}
	}
	if sw.Default != nil {
		return c.checkBlock(s, sw.Default)
	}
	return nil
}
