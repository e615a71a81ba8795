package codegen

import (
	"fmt"

	"github.com/tliron/commonlog"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/ir"
	"ember/internal/types"
)

var log = commonlog.GetLogger("ember.codegen")

// instanceLinkage lets every module that needs a generic instance define
// its own copy. Code tied to a struct its module does not export is
// invisible outside the unit.
const (
	instanceLinkage = "linkonce_odr"
	privateLinkage  = "internal"
)

// Generator lowers a checked program to IR. Imports lists the programs of
// every module the program depends on, so that their structs can be laid
// out and their exports referenced. A Generator serves one Generate call.
type Generator struct {
	TargetTriple string
	Imports      []*ast.Program

	registry  *types.TypeRegistry
	module    *ir.Module
	strings   map[string]*ir.StringConstant
	structs   map[string]bool
	typeNames map[*ast.StructDecl]string
	takenType map[string]bool
	own       map[*ast.FunctionDecl]bool
	functions map[string]*ast.FunctionDecl
	globals   map[string]*ir.Value
	exports   map[string]ast.Stmt
	instances map[string]bool
	pending   []*instance

	fn *funcState
}

// instance is a generic function or a method of a generic struct waiting to
// be emitted for concrete type arguments.
type instance struct {
	name    string
	linkage string
	decl    *ast.FunctionDecl
	owner   *ast.BasicType
	env     types.Env
}

// Generate lowers prog, which must have passed type checking, with no
// imports and no target triple.
func Generate(prog *ast.Program) (string, error) {
	return (&Generator{}).Generate(prog)
}

// Generate lowers prog and renders the module as text.
func (g *Generator) Generate(prog *ast.Program) (string, error) {
	m, err := g.Module(prog)
	if err != nil {
		return "", err
	}
	return ir.Print(m), nil
}

// Module lowers prog to an in-memory IR module.
func (g *Generator) Module(prog *ast.Program) (*ir.Module, error) {
	g.reset(prog)
	log.Debugf("generating %s", prog.Path)

	if err := g.collect(prog); err != nil {
		return nil, err
	}
	if err := g.generateDecls(prog); err != nil {
		return nil, err
	}
	for len(g.pending) > 0 {
		inst := g.pending[0]
		g.pending = g.pending[1:]
		if err := g.generateFunction(inst.decl, inst.owner, inst.env, inst.name, inst.linkage); err != nil {
			return nil, err
		}
	}
	return g.module, nil
}

func (g *Generator) reset(prog *ast.Program) {
	g.registry = types.NewTypeRegistry()
	g.module = &ir.Module{Source: prog.Path, TargetTriple: g.TargetTriple}
	g.strings = make(map[string]*ir.StringConstant)
	g.structs = make(map[string]bool)
	g.typeNames = make(map[*ast.StructDecl]string)
	g.takenType = make(map[string]bool)
	g.own = make(map[*ast.FunctionDecl]bool)
	g.functions = make(map[string]*ast.FunctionDecl)
	g.globals = make(map[string]*ir.Value)
	g.exports = make(map[string]ast.Stmt)
	g.instances = make(map[string]bool)
	g.pending = nil
	g.fn = nil
}

// collect registers every struct in the program and its imports, the
// program's own functions, and the names imported modules export.
func (g *Generator) collect(prog *ast.Program) error {
	for _, imp := range g.Imports {
		for _, stmt := range imp.Body {
			decl, exported := ast.Unwrap(stmt)
			switch d := decl.(type) {
			case *ast.StructDecl:
				g.registry.AddStruct(d, d.Module, exported)
			case *ast.FunctionDecl:
				if exported {
					g.exports[d.Name.Value] = d
				}
			case *ast.Extern:
				if exported {
					g.exports[d.Fn.Name.Value] = d
				}
			case *ast.VariableDecl:
				if exported && !d.Destructure {
					g.exports[d.Names[0].Value] = d
				}
			}
		}
	}

	for _, stmt := range prog.Body {
		decl, exported := ast.Unwrap(stmt)
		switch d := decl.(type) {
		case *ast.StructDecl:
			if _, ok := g.registry.AddStruct(d, d.Module, exported); !ok {
				return errors.Internal(fmt.Sprintf("struct %s is declared twice", d.Name.Value), errors.SpanOf(&d.Name))
			}
			// The program's own structs keep their source names.
			g.typeNames[d] = d.Name.Value
			g.takenType[d.Name.Value] = true
			for _, m := range d.Methods {
				g.own[m] = true
			}
		case *ast.FunctionDecl:
			g.own[d] = true
			g.functions[d.Name.Value] = d
		case *ast.Extern:
			g.functions[d.Fn.Name.Value] = d.Fn
		}
	}
	return nil
}

// generateDecls emits the program's own declarations in source order.
// Generic declarations wait until an instance is requested.
func (g *Generator) generateDecls(prog *ast.Program) error {
	for _, stmt := range prog.Body {
		decl, _ := ast.Unwrap(stmt)
		switch d := decl.(type) {
		case *ast.VariableDecl:
			if err := g.generateGlobal(d); err != nil {
				return err
			}
		case *ast.Extern:
			if _, _, err := g.declare(d.Fn, nil, nil); err != nil {
				return err
			}
		case *ast.StructDecl:
			if len(d.TypeParams) > 0 {
				continue
			}
			owner := d.SelfType()
			if _, err := g.structType(owner); err != nil {
				return err
			}
			linkage := ""
			if g.private(owner) {
				linkage = privateLinkage
			}
			for _, m := range d.Methods {
				if err := g.generateFunction(m, owner, nil, g.methodName(owner, m), linkage); err != nil {
					return err
				}
			}
		case *ast.FunctionDecl:
			if d.IsGeneric() {
				continue
			}
			if err := g.generateFunction(d, nil, nil, d.Name.Value, ""); err != nil {
				return err
			}
		case *ast.TypeAlias, *ast.Import:
		case *ast.Export, *ast.Asm, *ast.If, *ast.Loop, *ast.Return, *ast.Break, *ast.Continue,
			*ast.Block, *ast.ExprStmt, *ast.Try, *ast.Throw, *ast.Switch:
			return errors.Internal(fmt.Sprintf("unexpected top-level %s", decl.NodeType()), errors.SpanOf(decl))
		}
	}
	return nil
}

// generateGlobal emits a module-level variable with a constant initializer.
func (g *Generator) generateGlobal(v *ast.VariableDecl) error {
	name := v.Names[0].Value
	t, err := g.lower(v.Type)
	if err != nil {
		return err
	}
	init := zeroText(t)
	if v.Init != nil {
		if init, err = g.constant(v.Init, t); err != nil {
			return err
		}
	}
	g.module.Globals = append(g.module.Globals, &ir.Global{Name: name, Type: t, Init: init})
	g.globals[name] = &ir.Value{Type: ir.PointerTo(t), Name: "@" + name}
	return nil
}

// global returns the address of a module-level variable, declaring it as
// external when an imported module defines it.
func (g *Generator) global(name string) (*ir.Value, bool, error) {
	if addr, ok := g.globals[name]; ok {
		return addr, true, nil
	}
	v, ok := g.exports[name].(*ast.VariableDecl)
	if !ok {
		return nil, false, nil
	}
	t, err := g.lower(v.Type)
	if err != nil {
		return nil, false, err
	}
	g.module.Globals = append(g.module.Globals, &ir.Global{Name: name, Type: t, External: true})
	addr := &ir.Value{Type: ir.PointerTo(t), Name: "@" + name}
	g.globals[name] = addr
	return addr, true, nil
}

// function finds a named function: the program's own first, then imports.
func (g *Generator) function(name string) *ast.FunctionDecl {
	if decl, ok := g.functions[name]; ok {
		return decl
	}
	switch d := g.exports[name].(type) {
	case *ast.FunctionDecl:
		return d
	case *ast.Extern:
		return d.Fn
	}
	return nil
}

// declare makes decl callable from this module and returns its address and
// IR signature. Own definitions are emitted by generateDecls, generic ones
// are queued as instances, and everything else becomes a declare line.
// owner is the instantiated struct for methods; typeArgs bind the
// function's own type parameters.
func (g *Generator) declare(decl *ast.FunctionDecl, owner *ast.BasicType, typeArgs []ast.TypeNode) (*ir.Value, *ir.FuncType, error) {
	env := types.Env{}
	if owner != nil {
		info := g.registry.Struct(owner)
		if info == nil {
			return nil, nil, errors.Internal(fmt.Sprintf("unknown struct %s", owner.Name), errors.SpanOf(decl))
		}
		for k, v := range types.Bind(info.Decl.TypeParams, owner.Generics) {
			env[k] = v
		}
	}
	for k, v := range types.Bind(decl.TypeParams, typeArgs) {
		env[k] = v
	}

	sig, err := g.signature(decl, owner, env)
	if err != nil {
		return nil, nil, err
	}

	var name string
	switch {
	case owner != nil:
		name = g.methodName(owner, decl)
	case decl.IsGeneric():
		name = decl.Name.Value + "_" + g.symbolList(typeArgs)
	default:
		name = decl.Name.Value
	}
	callee := &ir.Value{Type: ir.PointerTo(sig), Name: "@" + name}

	generic := decl.IsGeneric() || (owner != nil && len(owner.Generics) > 0)
	switch {
	case decl.Body != nil && generic:
		if !g.instances[name] {
			g.instances[name] = true
			linkage := instanceLinkage
			if g.private(typeArgs...) || (owner != nil && g.private(owner)) {
				linkage = privateLinkage
			}
			g.pending = append(g.pending, &instance{name: name, linkage: linkage, decl: decl, owner: owner, env: env})
		}
	case decl.Body != nil && g.own[decl]:
	default:
		if !g.module.Declared(name) {
			g.module.Declares = append(g.module.Declares, &ir.Declare{
				Name:     name,
				Return:   sig.Return,
				Params:   sig.Params,
				Variadic: sig.Variadic,
			})
		}
	}
	return callee, sig, nil
}

// signature lowers the type of decl under env. Instance methods take the
// receiver pointer first.
func (g *Generator) signature(decl *ast.FunctionDecl, owner *ast.BasicType, env types.Env) (*ir.FuncType, error) {
	sig, err := g.funcType(types.Signature(decl, env))
	if err != nil {
		return nil, err
	}
	if owner != nil && !decl.IsStatic {
		recv, err := g.structType(owner)
		if err != nil {
			return nil, err
		}
		sig.Params = append([]ir.Type{ir.PointerTo(recv)}, sig.Params...)
	}
	return sig, nil
}

func (g *Generator) methodName(owner *ast.BasicType, decl *ast.FunctionDecl) string {
	return g.symbol(owner) + "_" + decl.Name.Value
}

// str returns the constant holding s, adding it on first use.
func (g *Generator) str(s string) *ir.StringConstant {
	if c, ok := g.strings[s]; ok {
		return c
	}
	c := &ir.StringConstant{Name: fmt.Sprintf(".str.%d", len(g.module.Strings)), Value: s}
	g.module.Strings = append(g.module.Strings, c)
	g.strings[s] = c
	return c
}

// abort declares the runtime abort used for uncaught throws.
func (g *Generator) abort() *ir.Value {
	if !g.module.Declared("abort") {
		g.module.Declares = append(g.module.Declares, &ir.Declare{Name: "abort", Return: ir.Void})
	}
	return &ir.Value{Type: ir.PointerTo(&ir.FuncType{Return: ir.Void}), Name: "@abort"}
}
