package ast

// Program is the root of a parsed source file.
type Program struct {
	Loc
	Path string
	Body []Stmt
}

// FunctionDecl covers top-level functions, struct methods and the signature of
// extern declarations (Body is nil for the latter).
// Example: "frame add(a: int, b: int) ret int { return a + b; }"
type FunctionDecl struct {
	Loc
	Typed
	Name       Ident
	TypeParams []Ident
	Params     []*Param
	Return     TypeNode // nil means void
	Body       *Block
	Variadic   bool

	// Set by the parser for declarations nested in a struct body.
	Owner    string
	IsMethod bool
	IsStatic bool
}

// IsGeneric reports whether the declaration has its own type parameters.
func (f *FunctionDecl) IsGeneric() bool { return len(f.TypeParams) > 0 }

type Param struct {
	Loc
	Name Ident
	Type TypeNode
}

// StructDecl declares a struct. Fields keep declaration order, which fixes
// the memory layout.
// Example: "struct Point3 : Point { z: int, frame len() ret int { ... } }"
// Module is filled in by the checker with the path of the declaring module.
type StructDecl struct {
	Loc
	Typed
	Name       Ident
	TypeParams []Ident
	Parent     *BasicType
	Fields     []*FieldDecl
	Methods    []*FunctionDecl
	Module     string
}

// SelfType is the type of the struct seen from inside its own declaration:
// Box<T> for a generic Box.
func (d *StructDecl) SelfType() *BasicType {
	t := &BasicType{Name: d.Name.Value, Module: d.Module}
	for _, tp := range d.TypeParams {
		t.Generics = append(t.Generics, Basic(tp.Value))
	}
	return t
}

type FieldDecl struct {
	Loc
	Name Ident
	Type TypeNode
}

// VariableDecl declares one local or global, or destructures a tuple into
// several names when Destructure is set.
// Example: "local x: int = 5;" or "local (a, b) = pair;"
type VariableDecl struct {
	Loc
	Typed
	Names       []Ident
	Destructure bool
	Annotation  TypeNode
	Init        Expr
	Global      bool
}

// TypeAlias: "type Size = int;"
type TypeAlias struct {
	Loc
	Typed
	Name   Ident
	Target TypeNode
}

// Import: `import { a, b } from "./lib.em";` or `import "./lib.em";`.
// A nil Names slice imports every export of the module.
type Import struct {
	Loc
	Path  string
	Names []Ident
}

// Export wraps a declaration that is visible to importers.
type Export struct {
	Loc
	Decl Stmt
}

// Extern declares a function implemented outside the program.
// Example: "extern frame puts(s: string) ret int;"
type Extern struct {
	Loc
	Fn *FunctionDecl
}

// Asm is an inline assembly statement: `asm("nop");`
type Asm struct {
	Loc
	Code string
}

type If struct {
	Loc
	Cond Expr
	Then *Block
	Else Stmt // nil, *Block or *If
}

// Loop with a nil Cond runs until a break.
type Loop struct {
	Loc
	Cond Expr
	Body *Block
}

type Return struct {
	Loc
	Value Expr
}

type Break struct {
	Loc
}

type Continue struct {
	Loc
}

type Block struct {
	Loc
	Stmts []Stmt
}

type ExprStmt struct {
	Loc
	X Expr
}

// Try: "try { ... } catch (e: int) { ... } catch { ... }"
type Try struct {
	Loc
	Body     *Block
	Catches  []*Catch
	CatchAll *Block
}

type Catch struct {
	Loc
	Name Ident
	Type TypeNode
	Body *Block
}

type Throw struct {
	Loc
	Value Expr
}

// Switch: "switch (x) { case 1, 2: ... default: ... }"
type Switch struct {
	Loc
	Value   Expr
	Cases   []*Case
	Default *Block
}

type Case struct {
	Loc
	Values []Expr
	Body   *Block
}

func (*FunctionDecl) isStmt() {}
func (*StructDecl) isStmt()   {}
func (*VariableDecl) isStmt() {}
func (*TypeAlias) isStmt()    {}
func (*Import) isStmt()       {}
func (*Export) isStmt()       {}
func (*Extern) isStmt()       {}
func (*Asm) isStmt()          {}
func (*If) isStmt()           {}
func (*Loop) isStmt()         {}
func (*Return) isStmt()       {}
func (*Break) isStmt()        {}
func (*Continue) isStmt()     {}
func (*Block) isStmt()        {}
func (*ExprStmt) isStmt()     {}
func (*Try) isStmt()          {}
func (*Throw) isStmt()        {}
func (*Switch) isStmt()       {}

// Unwrap returns the declaration inside an Export, or the statement itself.
func Unwrap(s Stmt) (Stmt, bool) {
	if e, ok := s.(*Export); ok {
		return e.Decl, true
	}
	return s, false
}
