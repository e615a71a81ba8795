package ir

import (
	"fmt"
	"strings"
)

// Printer provides pretty-printing for IR
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new IR printer
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the textual form of a module
func Print(module *Module) string {
	p := NewPrinter()
	p.printModule(module)
	return p.output.String()
}

// Helper methods

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

// printModule prints the preamble sections in order, each followed by a
// blank line when present, then every function.
func (p *Printer) printModule(m *Module) {
	if m.Source != "" {
		p.writeLine("; ModuleID = '%s'", m.Source)
		p.writeLine("source_filename = %s", Quote(m.Source))
	}
	if m.TargetTriple != "" {
		p.writeLine("target triple = %s", Quote(m.TargetTriple))
	}
	if m.Source != "" || m.TargetTriple != "" {
		p.writeLine("")
	}

	if len(m.Strings) > 0 {
		for _, s := range m.Strings {
			p.writeLine("@%s = private unnamed_addr constant %s c%s", s.Name, s.Type(), Quote(s.Value+"\x00"))
		}
		p.writeLine("")
	}

	if len(m.Types) > 0 {
		for _, t := range m.Types {
			p.writeLine("%%%s = type %s", t.Name, (&StructType{Fields: t.Fields}).String())
		}
		p.writeLine("")
	}

	if len(m.Globals) > 0 {
		for _, g := range m.Globals {
			if g.External {
				p.writeLine("@%s = external global %s", g.Name, g.Type)
			} else {
				p.writeLine("@%s = global %s %s", g.Name, g.Type, g.Init)
			}
		}
		p.writeLine("")
	}

	if len(m.Declares) > 0 {
		for _, d := range m.Declares {
			sig := &FuncType{Return: d.Return, Params: d.Params, Variadic: d.Variadic}
			p.writeLine("declare %s @%s(%s)", d.Return, d.Name, paramList(sig))
		}
		p.writeLine("")
	}

	for i, fn := range m.Functions {
		if i > 0 {
			p.writeLine("")
		}
		p.printFunction(fn)
	}
}

func paramList(sig *FuncType) string {
	s := joinTypes(sig.Params)
	if sig.Variadic {
		if s != "" {
			s += ", "
		}
		s += "..."
	}
	return s
}

// printFunction prints a function definition
func (p *Printer) printFunction(fn *Function) {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = fmt.Sprintf("%s %%%s", param.Type, param.Name)
	}
	sig := strings.Join(params, ", ")
	if fn.Variadic {
		if sig != "" {
			sig += ", "
		}
		sig += "..."
	}
	define := "define "
	if fn.Linkage != "" {
		define += fn.Linkage + " "
	}
	p.writeLine("%s%s @%s(%s) {", define, fn.Return, fn.Name, sig)

	for i, block := range fn.Blocks {
		if i > 0 {
			p.writeLine("")
		}
		p.printBasicBlock(block)
	}

	p.writeLine("}")
}

// printBasicBlock prints a label and its instructions
func (p *Printer) printBasicBlock(block *BasicBlock) {
	p.writeLine("%s:", block.Label)
	p.indent++
	for _, inst := range block.Instructions {
		p.writeLine("%s", inst.String())
	}
	p.indent--
}
