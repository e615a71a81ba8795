package semantic

import (
	"sort"

	"ember/internal/ast"
)

type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolParameter
	SymbolFunction
	SymbolStruct
	SymbolTypeAlias
	SymbolTypeParam
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolParameter:
		return "parameter"
	case SymbolFunction:
		return "function"
	case SymbolStruct:
		return "struct"
	case SymbolTypeAlias:
		return "type alias"
	case SymbolTypeParam:
		return "type parameter"
	}
	return "symbol"
}

type Symbol struct {
	Name     string
	Kind     SymbolKind
	Type     ast.TypeNode
	Node     ast.Node
	Position ast.Position
	Global   bool
	Exported bool

	home *Scope
}

// IsValue reports whether the symbol denotes a runtime value rather than a
// type.
func (s *Symbol) IsValue() bool {
	switch s.Kind {
	case SymbolVariable, SymbolParameter, SymbolFunction:
		return true
	}
	return false
}

// IsType reports whether the symbol names a type.
func (s *Symbol) IsType() bool {
	return !s.IsValue()
}

// funcContext describes the function whose body a scope belongs to.
type funcContext struct {
	decl   *ast.FunctionDecl
	ret    ast.TypeNode
	owner  *ast.BasicType
	module *module
}

// Scope is one level of the lexical scope chain. Check functions receive the
// active scope explicitly; nothing on the Checker tracks the current scope.
type Scope struct {
	symbols map[string]*Symbol
	parent  *Scope
	fn      *funcContext
	loop    bool
}

func NewScope(parent *Scope) *Scope {
	return &Scope{
		symbols: make(map[string]*Symbol),
		parent:  parent,
	}
}

func (s *Scope) Define(sym *Symbol) *Symbol {
	s.symbols[sym.Name] = sym
	return sym
}

func (s *Scope) Lookup(name string) *Symbol {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

func (s *Scope) LookupLocal(name string) *Symbol {
	return s.symbols[name]
}

// Names lists every name visible from s, sorted, for suggestions.
func (s *Scope) Names(filter func(*Symbol) bool) []string {
	seen := map[string]bool{}
	var names []string
	for cur := s; cur != nil; cur = cur.parent {
		for name, sym := range cur.symbols {
			if seen[name] || (filter != nil && !filter(sym)) {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// function returns the context of the innermost enclosing function.
func (s *Scope) function() *funcContext {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.fn != nil {
			return cur.fn
		}
	}
	return nil
}

// inLoop reports whether s is nested in a loop body of the current function.
func (s *Scope) inLoop() bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.loop {
			return true
		}
		if cur.fn != nil {
			return false
		}
	}
	return false
}

func (s *Scope) child() *Scope {
	return NewScope(s)
}
