package codegen

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/ir"
	"ember/internal/types"
)

// funcState is everything generation tracks inside one function body. It is
// replaced for every function, which resets the register and label counters.
type funcState struct {
	decl     *ast.FunctionDecl
	env      types.Env
	b        *ir.FunctionBuilder
	ret      ir.Type
	scopes   []map[string]*ir.Value
	loops    []loopLabels
	handlers []*handler
}

type loopLabels struct {
	cont string
	brk  string
}

// handler is an enclosing try statement. A throw jumps to the first catch
// whose type accepts the thrown value, or to the catch-all.
type handler struct {
	catches  []*catchTarget
	catchAll string
}

type catchTarget struct {
	typ   ast.TypeNode
	slot  *ir.Value
	label string
}

func (f *funcState) push() {
	f.scopes = append(f.scopes, make(map[string]*ir.Value))
}

func (f *funcState) pop() {
	f.scopes = f.scopes[:len(f.scopes)-1]
}

func (f *funcState) bind(name string, slot *ir.Value) {
	f.scopes[len(f.scopes)-1][name] = slot
}

func (f *funcState) lookup(name string) *ir.Value {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if slot, ok := f.scopes[i][name]; ok {
			return slot
		}
	}
	return nil
}

// generateFunction emits one definition. Every parameter, the receiver
// included, is copied into a stack slot in the entry block.
func (g *Generator) generateFunction(decl *ast.FunctionDecl, owner *ast.BasicType, env types.Env, name, linkage string) error {
	if decl.Body == nil {
		return nil
	}
	log.Debugf("generating function %s", name)

	g.fn = &funcState{decl: decl, env: env}
	defer func() { g.fn = nil }()

	ret, err := g.lower(decl.Return)
	if err != nil {
		return err
	}
	fn := &ir.Function{Name: name, Linkage: linkage, Return: ret, Variadic: decl.Variadic}
	if owner != nil && !decl.IsStatic {
		recv, err := g.structType(g.resolve(owner).(*ast.BasicType))
		if err != nil {
			return err
		}
		fn.Params = append(fn.Params, &ir.Param{Name: "this", Type: ir.PointerTo(recv)})
	}
	for _, p := range decl.Params {
		pt, err := g.lower(p.Type)
		if err != nil {
			return err
		}
		fn.Params = append(fn.Params, &ir.Param{Name: p.Name.Value, Type: pt})
	}

	b := ir.NewFunctionBuilder(fn)
	g.fn.b = b
	g.fn.ret = ret
	g.fn.push()
	for _, p := range fn.Params {
		slot := b.Alloca(p.Name, p.Type)
		b.Store(&ir.Value{Type: p.Type, Name: "%" + p.Name}, slot)
		g.fn.bind(p.Name, slot)
	}

	for _, stmt := range decl.Body.Stmts {
		if err := g.generateStmt(stmt); err != nil {
			return err
		}
	}
	g.module.Functions = append(g.module.Functions, b.Finish())
	return nil
}

func (g *Generator) generateStmt(stmt ast.Stmt) error {
	b := g.fn.b
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		return g.generateLocal(s)

	case *ast.If:
		return g.generateIf(s)

	case *ast.Loop:
		return g.generateLoop(s)

	case *ast.Return:
		if s.Value == nil {
			b.Return(nil)
			return nil
		}
		v, err := g.generateExpr(s.Value)
		if err != nil {
			return err
		}
		b.Return(coerce(v, g.fn.ret))
		return nil

	case *ast.Break:
		if len(g.fn.loops) == 0 {
			return errors.Internal("break outside of loop", errors.SpanOf(s))
		}
		b.Jump(g.fn.loops[len(g.fn.loops)-1].brk)
		return nil

	case *ast.Continue:
		if len(g.fn.loops) == 0 {
			return errors.Internal("continue outside of loop", errors.SpanOf(s))
		}
		b.Jump(g.fn.loops[len(g.fn.loops)-1].cont)
		return nil

	case *ast.Block:
		return g.generateBlock(s)

	case *ast.ExprStmt:
		_, err := g.generateExpr(s.X)
		return err

	case *ast.Try:
		return g.generateTry(s)

	case *ast.Throw:
		return g.generateThrow(s)

	case *ast.Switch:
		return g.generateSwitch(s)

	case *ast.Asm:
		b.Emit(&ir.AsmInstruction{Code: s.Code})
		return nil

	case *ast.FunctionDecl, *ast.StructDecl, *ast.TypeAlias, *ast.Import, *ast.Export, *ast.Extern:
		return errors.Internal(fmt.Sprintf("nested %s", stmt.NodeType()), errors.SpanOf(stmt))
	}
	return errors.Internal(fmt.Sprintf("unhandled statement %T", stmt), errors.SpanOf(stmt))
}

func (g *Generator) generateBlock(block *ast.Block) error {
	g.fn.push()
	defer g.fn.pop()
	for _, stmt := range block.Stmts {
		if err := g.generateStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// generateLocal allocates a slot per declared name. The initializer is
// evaluated before the name is bound, so it still sees an outer variable
// of the same name.
func (g *Generator) generateLocal(v *ast.VariableDecl) error {
	b := g.fn.b

	if v.Destructure {
		tuple, ok := g.resolve(v.Type).(*ast.TupleType)
		if !ok {
			return errors.Internal("destructuring a non-tuple", errors.SpanOf(v))
		}
		value, err := g.generateExpr(v.Init)
		if err != nil {
			return err
		}
		for i, name := range v.Names {
			et, err := g.lower(tuple.Elements[i])
			if err != nil {
				return err
			}
			slot := b.Alloca(name.Value, et)
			b.Store(b.ExtractValue(value, i, et), slot)
			g.fn.bind(name.Value, slot)
		}
		return nil
	}

	t, err := g.lower(v.Type)
	if err != nil {
		return err
	}
	value := zero(t)
	if v.Init != nil {
		init, err := g.generateExpr(v.Init)
		if err != nil {
			return err
		}
		value = coerce(init, t)
	}
	slot := b.Alloca(v.Names[0].Value, t)
	b.Store(value, slot)
	g.fn.bind(v.Names[0].Value, slot)
	return nil
}

// generateIf emits then/else/merge blocks. Branches to the merge block are
// only added to blocks that are still open.
func (g *Generator) generateIf(s *ast.If) error {
	b := g.fn.b
	cond, err := g.generateExpr(s.Cond)
	if err != nil {
		return err
	}

	if s.Else == nil {
		labels := b.Labels("if.then", "if.end")
		b.Branch(cond, labels[0], labels[1])
		b.StartBlock(labels[0])
		if err := g.generateBlock(s.Then); err != nil {
			return err
		}
		b.Jump(labels[1])
		b.StartBlock(labels[1])
		return nil
	}

	labels := b.Labels("if.then", "if.else", "if.end")
	b.Branch(cond, labels[0], labels[1])
	b.StartBlock(labels[0])
	if err := g.generateBlock(s.Then); err != nil {
		return err
	}
	b.Jump(labels[2])
	b.StartBlock(labels[1])
	if err := g.generateStmt(s.Else); err != nil {
		return err
	}
	b.Jump(labels[2])
	b.StartBlock(labels[2])
	return nil
}

// generateLoop emits condition, body and end blocks. Without a condition
// the loop enters its body unconditionally and continue restarts the body.
func (g *Generator) generateLoop(s *ast.Loop) error {
	b := g.fn.b
	labels := b.Labels("loop.cond", "loop.body", "loop.end")
	cond, body, end := labels[0], labels[1], labels[2]

	next := cond
	if s.Cond == nil {
		next = body
		b.Jump(body)
	} else {
		b.Jump(cond)
		b.StartBlock(cond)
		c, err := g.generateExpr(s.Cond)
		if err != nil {
			return err
		}
		b.Branch(c, body, end)
	}

	b.StartBlock(body)
	g.fn.loops = append(g.fn.loops, loopLabels{cont: next, brk: end})
	err := g.generateBlock(s.Body)
	g.fn.loops = g.fn.loops[:len(g.fn.loops)-1]
	if err != nil {
		return err
	}
	b.Jump(next)
	b.StartBlock(end)
	return nil
}

// generateSwitch compares the value against each case in order. Cases do
// not fall through.
func (g *Generator) generateSwitch(s *ast.Switch) error {
	b := g.fn.b
	value, err := g.generateExpr(s.Value)
	if err != nil {
		return err
	}
	labels := b.Labels("switch.default", "switch.end")
	def, end := labels[0], labels[1]
	if s.Default == nil {
		def = end
	}

	bodies := make([]string, len(s.Cases))
	for i := range s.Cases {
		bodies[i] = b.Labels("switch.case")[0]
	}
	for i, cs := range s.Cases {
		for _, v := range cs.Values {
			cv, err := g.generateExpr(v)
			if err != nil {
				return err
			}
			next := b.Labels("switch.test")[0]
			b.Branch(g.compare("==", value, cv), bodies[i], next)
			b.StartBlock(next)
		}
	}
	b.Jump(def)

	for i, cs := range s.Cases {
		b.StartBlock(bodies[i])
		if err := g.generateBlock(cs.Body); err != nil {
			return err
		}
		b.Jump(end)
	}
	if s.Default != nil {
		b.StartBlock(def)
		if err := g.generateBlock(s.Default); err != nil {
			return err
		}
		b.Jump(end)
	}
	b.StartBlock(end)
	return nil
}

// generateTry lowers a try statement to local control flow. Handlers are
// chosen statically by the thrown type, so only throws inside the try body
// of this function reach its catches.
func (g *Generator) generateTry(s *ast.Try) error {
	b := g.fn.b
	end := b.Labels("try.end")[0]

	h := &handler{}
	for _, c := range s.Catches {
		ct, err := g.lower(c.Type)
		if err != nil {
			return err
		}
		h.catches = append(h.catches, &catchTarget{
			typ:   g.resolve(c.Type),
			slot:  b.Alloca(c.Name.Value, ct),
			label: b.Labels("try.catch")[0],
		})
	}
	if s.CatchAll != nil {
		h.catchAll = b.Labels("try.all")[0]
	}

	g.fn.handlers = append(g.fn.handlers, h)
	err := g.generateBlock(s.Body)
	g.fn.handlers = g.fn.handlers[:len(g.fn.handlers)-1]
	if err != nil {
		return err
	}
	b.Jump(end)

	for i, c := range s.Catches {
		target := h.catches[i]
		b.StartBlock(target.label)
		g.fn.push()
		g.fn.bind(c.Name.Value, target.slot)
		err := g.generateBlock(c.Body)
		g.fn.pop()
		if err != nil {
			return err
		}
		b.Jump(end)
	}
	if s.CatchAll != nil {
		b.StartBlock(h.catchAll)
		if err := g.generateBlock(s.CatchAll); err != nil {
			return err
		}
		b.Jump(end)
	}
	b.StartBlock(end)
	return nil
}

// generateThrow jumps to the innermost matching handler. With none, the
// program aborts.
func (g *Generator) generateThrow(s *ast.Throw) error {
	b := g.fn.b
	value, err := g.generateExpr(s.Value)
	if err != nil {
		return err
	}
	thrown, err := g.typeOf(s.Value)
	if err != nil {
		return err
	}

	for i := len(g.fn.handlers) - 1; i >= 0; i-- {
		h := g.fn.handlers[i]
		for _, c := range h.catches {
			if types.Compatible(c.typ, thrown) {
				b.Store(coerce(value, ir.Elem(c.slot.Type)), c.slot)
				b.Jump(c.label)
				return nil
			}
		}
		if h.catchAll != "" {
			b.Jump(h.catchAll)
			return nil
		}
	}

	b.Call(g.abort(), &ir.FuncType{Return: ir.Void})
	b.Unreachable()
	return nil
}
