package semantic

import (
	"ember/internal/ast"
	"ember/internal/errors"
)

// FlowAnalyzer reports statements that can never run because an earlier
// statement in the same block always leaves it.
type FlowAnalyzer struct {
	checker *Checker
}

// NewFlowAnalyzer creates a new flow analyzer
func NewFlowAnalyzer(checker *Checker) *FlowAnalyzer {
	return &FlowAnalyzer{checker: checker}
}

// AnalyzeFunction warns about unreachable statements in fn's body.
func (fa *FlowAnalyzer) AnalyzeFunction(fn *ast.FunctionDecl) {
	if fn.Body != nil {
		fa.analyzeBlock(fn.Body)
	}
}

func (fa *FlowAnalyzer) analyzeBlock(b *ast.Block) {
	warned := false
	for i, stmt := range b.Stmts {
		fa.analyzeNested(stmt)
		if !warned && i+1 < len(b.Stmts) && leavesBlock(stmt) {
			fa.checker.warn(errors.UnreachableCode(errors.SpanOf(b.Stmts[i+1])))
			warned = true
		}
	}
}

func (fa *FlowAnalyzer) analyzeNested(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		fa.analyzeBlock(s)
	case *ast.If:
		fa.analyzeBlock(s.Then)
		if s.Else != nil {
			fa.analyzeNested(s.Else)
		}
	case *ast.Loop:
		fa.analyzeBlock(s.Body)
	case *ast.Try:
		fa.analyzeBlock(s.Body)
		for _, c := range s.Catches {
			fa.analyzeBlock(c.Body)
		}
		if s.CatchAll != nil {
			fa.analyzeBlock(s.CatchAll)
		}
	case *ast.Switch:
		for _, c := range s.Cases {
			fa.analyzeBlock(c.Body)
		}
		if s.Default != nil {
			fa.analyzeBlock(s.Default)
		}
	}
}

// leavesBlock is AlwaysExits extended with break and continue.
func leavesBlock(stmt ast.Stmt) bool {
	switch stmt.(type) {
	case *ast.Break, *ast.Continue:
		return true
	}
	return AlwaysExits(stmt)
}

// AlwaysExits reports whether every path through stmt returns or throws.
// A loop never counts, since a break may leave it.
func AlwaysExits(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.Return, *ast.Throw:
		return true

	case *ast.Block:
		for _, inner := range s.Stmts {
			if AlwaysExits(inner) {
				return true
			}
		}
		return false

	case *ast.If:
		return s.Else != nil && AlwaysExits(s.Then) && AlwaysExits(s.Else)

	case *ast.Switch:
		if s.Default == nil || !AlwaysExits(s.Default) {
			return false
		}
		for _, c := range s.Cases {
			if !AlwaysExits(c.Body) {
				return false
			}
		}
		return true

	case *ast.Try:
		if !AlwaysExits(s.Body) {
			return false
		}
		for _, c := range s.Catches {
			if !AlwaysExits(c.Body) {
				return false
			}
		}
		return s.CatchAll == nil || AlwaysExits(s.CatchAll)

	case *ast.Loop, *ast.VariableDecl, *ast.ExprStmt, *ast.Break, *ast.Continue, *ast.Asm,
		*ast.FunctionDecl, *ast.StructDecl, *ast.TypeAlias, *ast.Import, *ast.Export, *ast.Extern:
		return false
	}
	return false
}
