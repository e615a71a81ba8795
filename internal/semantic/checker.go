package semantic

import (
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/types"
)

var log = commonlog.GetLogger("ember.semantic")

// module is one source file taking part in a check, with its persistent
// top-level scope.
type module struct {
	path    string
	program *ast.Program
	scope   *Scope
	exports map[string]*Symbol
	loading bool
}

// Module is the read-only view of a checked source file.
type Module struct {
	Path    string
	Program *ast.Program
}

// Option configures a Checker.
type Option func(*Checker)

// WithReadFile replaces os.ReadFile for import resolution, so editors can
// serve unsaved buffers.
func WithReadFile(read func(path string) ([]byte, error)) Option {
	return func(c *Checker) {
		c.readFile = read
	}
}

// Checker type-checks a program and every module it imports. It records the
// resolved type of each expression on the tree and fills in call resolution
// for the code generator. A Checker serves one compilation; create a new one
// per program.
type Checker struct {
	readFile func(string) ([]byte, error)

	registry *types.TypeRegistry
	modules  map[string]*module
	order    []*module
	warnings []*errors.CompilerError
}

func NewChecker(opts ...Option) *Checker {
	c := &Checker{readFile: os.ReadFile}
	for _, opt := range opts {
		opt(c)
	}
	c.reset()
	return c
}

func (c *Checker) reset() {
	c.registry = types.NewTypeRegistry()
	c.modules = make(map[string]*module)
	c.order = nil
	c.warnings = nil
}

// CheckProgram checks prog in two passes: every top-level declaration is
// hoisted into the module scope, then every body is checked. The first error
// stops the check.
func (c *Checker) CheckProgram(prog *ast.Program) error {
	c.reset()

	path, err := filepath.Abs(prog.Path)
	if err != nil {
		path = prog.Path
	}
	m := &module{
		path:    path,
		program: prog,
		scope:   NewScope(nil),
		exports: make(map[string]*Symbol),
		loading: true,
	}
	c.modules[path] = m

	if err := c.checkModule(m); err != nil {
		return err
	}
	log.Debugf("checked %s with %d imported modules", prog.Path, len(c.order)-1)
	return nil
}

func (c *Checker) checkModule(m *module) error {
	if err := c.hoist(m); err != nil {
		return err
	}
	if err := c.checkBodies(m); err != nil {
		return err
	}
	m.loading = false
	c.order = append(c.order, m)
	return nil
}

// Struct implements types.StructLookup over every struct seen so far.
func (c *Checker) Struct(t *ast.BasicType) *types.StructInfo {
	return c.registry.Struct(t)
}

// Registry exposes the struct registry for later stages.
func (c *Checker) Registry() *types.TypeRegistry {
	return c.registry
}

// Modules lists checked modules, imports before their importers; the program
// passed to CheckProgram comes last.
func (c *Checker) Modules() []Module {
	out := make([]Module, len(c.order))
	for i, m := range c.order {
		out[i] = Module{Path: m.path, Program: m.program}
	}
	return out
}

// Warnings returns non-fatal diagnostics gathered during the last check.
func (c *Checker) Warnings() []*errors.CompilerError {
	return c.warnings
}

func (c *Checker) warn(err *errors.CompilerError) {
	c.warnings = append(c.warnings, err)
}

// checkBodies is the second pass: function and method bodies.
func (c *Checker) checkBodies(m *module) error {
	for _, stmt := range m.program.Body {
		decl, _ := ast.Unwrap(stmt)
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			if err := c.checkFunction(m.scope, d, nil, m); err != nil {
				return err
			}
		case *ast.StructDecl:
			structScope := c.structScope(m.scope, d)
			owner := d.SelfType()
			for _, method := range d.Methods {
				if err := c.checkFunction(structScope, method, owner, m); err != nil {
					return err
				}
			}
		case *ast.VariableDecl, *ast.TypeAlias, *ast.Import, *ast.Extern:
			// Completed while hoisting.
		case *ast.Export, *ast.Asm, *ast.If, *ast.Loop, *ast.Return, *ast.Break, *ast.Continue,
			*ast.Block, *ast.ExprStmt, *ast.Try, *ast.Throw, *ast.Switch:
			return errors.New(errors.ErrorInvalidOperation, "statement is not allowed at the top level", errors.SpanOf(decl)).Build()
		}
	}
	return nil
}

func (c *Checker) structScope(parent *Scope, d *ast.StructDecl) *Scope {
	s := parent.child()
	for _, tp := range d.TypeParams {
		s.Define(&Symbol{Name: tp.Value, Kind: SymbolTypeParam, Type: ast.Basic(tp.Value), Node: d, Position: tp.Pos})
	}
	return s
}

// checkFunction checks one body. Extern declarations and other bodiless
// functions are skipped.
func (c *Checker) checkFunction(parent *Scope, decl *ast.FunctionDecl, owner *ast.BasicType, m *module) error {
	if decl.Body == nil {
		return nil
	}
	log.Debugf("checking function %s", functionName(decl))

	s := parent.child()
	s.fn = &funcContext{decl: decl, ret: decl.Return, owner: owner, module: m}
	for _, tp := range decl.TypeParams {
		s.Define(&Symbol{Name: tp.Value, Kind: SymbolTypeParam, Type: ast.Basic(tp.Value), Node: decl, Position: tp.Pos})
	}
	if owner != nil && !decl.IsStatic {
		s.Define(&Symbol{Name: "this", Kind: SymbolParameter, Type: owner.Pointer(), Node: decl, Position: decl.Pos})
	}
	for _, p := range decl.Params {
		if s.LookupLocal(p.Name.Value) != nil {
			return errors.DuplicateDeclaration(p.Name.Value, errors.SpanOf(p))
		}
		s.Define(&Symbol{Name: p.Name.Value, Kind: SymbolParameter, Type: p.Type, Node: p, Position: p.Pos})
	}

	if err := c.checkBlockIn(s, decl.Body); err != nil {
		return err
	}

	flow := NewFlowAnalyzer(c)
	flow.AnalyzeFunction(decl)
	if !types.IsVoid(decl.Return) && !AlwaysExits(decl.Body) {
		return errors.MissingReturn(decl.Name.Value, ast.TypeString(decl.Return), errors.SpanOf(&decl.Name))
	}
	return nil
}

func functionName(decl *ast.FunctionDecl) string {
	if decl.Owner != "" {
		return decl.Owner + "." + decl.Name.Value
	}
	return decl.Name.Value
}
