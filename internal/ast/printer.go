package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a node as source text that parses back to the same tree.
// Binary expressions are fully parenthesized.
func Print(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func (p *Program) String() string {
	var b strings.Builder
	for i, stmt := range p.Body {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(stmt.String())
	}
	return b.String()
}

func (f *FunctionDecl) String() string {
	var b strings.Builder
	if f.IsStatic {
		b.WriteString("static ")
	}
	b.WriteString(f.signature())
	if f.Body == nil {
		b.WriteString(";")
		return b.String()
	}
	b.WriteString(" ")
	b.WriteString(f.Body.String())
	return b.String()
}

func (f *FunctionDecl) signature() string {
	var b strings.Builder
	b.WriteString("frame ")
	b.WriteString(f.Name.Value)
	b.WriteString(typeParams(f.TypeParams))
	b.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	if f.Variadic {
		if len(f.Params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteString(")")
	if f.Return != nil {
		b.WriteString(" ret ")
		b.WriteString(f.Return.String())
	}
	return b.String()
}

func (p *Param) String() string {
	return fmt.Sprintf("%s: %s", p.Name.Value, TypeString(p.Type))
}

func (s *StructDecl) String() string {
	var b strings.Builder
	b.WriteString("struct ")
	b.WriteString(s.Name.Value)
	b.WriteString(typeParams(s.TypeParams))
	if s.Parent != nil {
		b.WriteString(" : ")
		b.WriteString(s.Parent.String())
	}
	if len(s.Fields) == 0 && len(s.Methods) == 0 {
		b.WriteString(" {}")
		return b.String()
	}
	b.WriteString(" {\n")
	for _, field := range s.Fields {
		b.WriteString("  " + field.String() + ",\n")
	}
	for _, m := range s.Methods {
		b.WriteString("  " + strings.ReplaceAll(m.String(), "\n", "\n  ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func (fd *FieldDecl) String() string {
	return fmt.Sprintf("%s: %s", fd.Name.Value, TypeString(fd.Type))
}

func (v *VariableDecl) String() string {
	var b strings.Builder
	b.WriteString("local ")
	if v.Destructure {
		b.WriteString("(")
		for i, n := range v.Names {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n.Value)
		}
		b.WriteString(")")
	} else if len(v.Names) > 0 {
		b.WriteString(v.Names[0].Value)
	}
	if v.Annotation != nil {
		b.WriteString(": ")
		b.WriteString(v.Annotation.String())
	}
	if v.Init != nil {
		b.WriteString(" = ")
		b.WriteString(v.Init.String())
	}
	b.WriteString(";")
	return b.String()
}

func (t *TypeAlias) String() string {
	return fmt.Sprintf("type %s = %s;", t.Name.Value, TypeString(t.Target))
}

func (i *Import) String() string {
	if i.Names == nil {
		return fmt.Sprintf("import %s;", QuoteString(i.Path))
	}
	names := make([]string, len(i.Names))
	for j, n := range i.Names {
		names[j] = n.Value
	}
	return fmt.Sprintf("import { %s } from %s;", strings.Join(names, ", "), QuoteString(i.Path))
}

func (e *Export) String() string {
	return "export " + e.Decl.String()
}

func (e *Extern) String() string {
	return "extern " + e.Fn.signature() + ";"
}

func (a *Asm) String() string {
	return fmt.Sprintf("asm(%s);", QuoteString(a.Code))
}

func (i *If) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("if (%s) %s", i.Cond.String(), i.Then.String()))
	if i.Else != nil {
		b.WriteString(" else ")
		b.WriteString(i.Else.String())
	}
	return b.String()
}

func (l *Loop) String() string {
	if l.Cond == nil {
		return "loop " + l.Body.String()
	}
	return fmt.Sprintf("loop (%s) %s", l.Cond.String(), l.Body.String())
}

func (r *Return) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}

func (*Break) String() string    { return "break;" }
func (*Continue) String() string { return "continue;" }

func (bl *Block) String() string {
	if len(bl.Stmts) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for _, stmt := range bl.Stmts {
		b.WriteString("  " + strings.ReplaceAll(stmt.String(), "\n", "\n  ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func (e *ExprStmt) String() string {
	return e.X.String() + ";"
}

func (t *Try) String() string {
	var b strings.Builder
	b.WriteString("try ")
	b.WriteString(t.Body.String())
	for _, c := range t.Catches {
		b.WriteString(" ")
		b.WriteString(c.String())
	}
	if t.CatchAll != nil {
		b.WriteString(" catch ")
		b.WriteString(t.CatchAll.String())
	}
	return b.String()
}

func (c *Catch) String() string {
	return fmt.Sprintf("catch (%s: %s) %s", c.Name.Value, TypeString(c.Type), c.Body.String())
}

func (t *Throw) String() string {
	return "throw " + t.Value.String() + ";"
}

func (s *Switch) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("switch (%s) {\n", s.Value.String()))
	for _, c := range s.Cases {
		b.WriteString("  " + strings.ReplaceAll(c.String(), "\n", "\n  ") + "\n")
	}
	if s.Default != nil {
		b.WriteString("  default:")
		b.WriteString(strings.ReplaceAll(caseBody(s.Default), "\n", "\n  "))
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func (c *Case) String() string {
	return "case " + joinExprs(c.Values) + ":" + caseBody(c.Body)
}

// case bodies are statement lists, not braced blocks
func caseBody(body *Block) string {
	var b strings.Builder
	for _, stmt := range body.Stmts {
		b.WriteString("\n  " + strings.ReplaceAll(stmt.String(), "\n", "\n  "))
	}
	return b.String()
}

func (l *Literal) String() string {
	if l.Raw != "" {
		return l.Raw
	}
	switch l.Kind {
	case IntLiteral:
		return fmt.Sprintf("%d", l.Value)
	case FloatLiteral:
		s := strconv.FormatFloat(l.Value.(float64), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s
	case StringLiteral:
		return QuoteString(l.Value.(string))
	case CharLiteral:
		return quoteChar(l.Value.(byte))
	case BoolLiteral:
		return fmt.Sprintf("%t", l.Value)
	case NullLiteral:
		return "nullptr"
	}
	return fmt.Sprintf("%v", l.Value)
}

func (i *Identifier) String() string { return i.Name }

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", operand(b.Left), b.Op, operand(b.Right))
}

func (u *Unary) String() string {
	if u.Postfix {
		return postfixOperand(u.Operand) + u.Op
	}
	inner := u.Operand.String()
	switch op := u.Operand.(type) {
	case *Unary:
		if !op.Postfix {
			inner = "(" + inner + ")"
		}
	case *Assignment:
		inner = "(" + inner + ")"
	}
	return u.Op + inner
}

func (a *Assignment) String() string {
	return fmt.Sprintf("%s %s %s", a.Target.String(), a.Op, a.Value.String())
}

func (c *Call) String() string {
	return fmt.Sprintf("%s(%s)", postfixOperand(c.Callee), joinExprs(c.Args))
}

func (m *Member) String() string {
	return postfixOperand(m.Object) + "." + m.Name.Value
}

func (i *Index) String() string {
	return fmt.Sprintf("%s[%s]", postfixOperand(i.Object), i.Index.String())
}

func (c *Cast) String() string {
	return fmt.Sprintf("cast<%s>(%s)", TypeString(c.Target), c.Value.String())
}

func (s *Sizeof) String() string {
	return fmt.Sprintf("sizeof(%s)", TypeString(s.Target))
}

func (m *Match) String() string {
	arms := make([]string, len(m.Arms))
	for i, arm := range m.Arms {
		arms[i] = arm.String()
	}
	return fmt.Sprintf("match (%s) { %s }", m.Value.String(), strings.Join(arms, ", "))
}

func (a *MatchArm) String() string {
	pattern := "_"
	if a.Pattern != nil {
		pattern = a.Pattern.String()
	}
	return pattern + " => " + a.Value.String()
}

func (t *Ternary) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", operand(t.Cond), operand(t.Then), operand(t.Else))
}

func (a *ArrayLiteral) String() string {
	return "[" + joinExprs(a.Elements) + "]"
}

func (s *StructLiteral) String() string {
	if len(s.Fields) == 0 {
		return s.Struct.String() + " {}"
	}
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.String()
	}
	return fmt.Sprintf("%s { %s }", s.Struct.String(), strings.Join(fields, ", "))
}

func (f *FieldInit) String() string {
	return f.Name.Value + ": " + f.Value.String()
}

func (t *TupleLiteral) String() string {
	return "(" + joinExprs(t.Elements) + ")"
}

func (g *GenericInstantiation) String() string {
	return fmt.Sprintf("%s<%s>", postfixOperand(g.Base), joinTypes(g.TypeArgs))
}

func operand(e Expr) string {
	if _, ok := e.(*Assignment); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func postfixOperand(e Expr) string {
	switch x := e.(type) {
	case *Assignment:
		return "(" + e.String() + ")"
	case *Unary:
		if !x.Postfix {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func typeParams(ps []Ident) string {
	if len(ps) == 0 {
		return ""
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Value
	}
	return "<" + strings.Join(names, ", ") + ">"
}

// QuoteString renders s as a double-quoted literal using the escapes the
// lexer understands.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		b.WriteString(escapeByte(s[i], '"'))
	}
	b.WriteByte('"')
	return b.String()
}

func quoteChar(c byte) string {
	return "'" + escapeByte(c, '\'') + "'"
}

func escapeByte(c byte, quote byte) string {
	switch c {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case 0:
		return `\0`
	case '\\':
		return `\\`
	case quote:
		return `\` + string(quote)
	}
	return string([]byte{c})
}
