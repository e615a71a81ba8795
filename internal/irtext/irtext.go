// Package irtext reads back the textual IR the code generator prints and
// checks its structure: every register is defined once, every block ends in
// a terminator, and every referenced label, register and symbol exists.
package irtext

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ember.irtext")

var parser = participle.MustBuild[Module](
	participle.Lexer(IRLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

var terminators = map[string]bool{"ret": true, "br": true, "unreachable": true}

// Parse reads IR text into its syntax tree.
func Parse(filename, text string) (*Module, error) {
	m, err := parser.ParseString(filename, text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return m, nil
}

// Verify parses text and checks it. The first problem found is returned.
func Verify(filename, text string) error {
	m, err := Parse(filename, text)
	if err != nil {
		return err
	}
	return m.Verify()
}

// Header returns the source file name and target triple, if present.
func (m *Module) Header() (source, triple string) {
	for _, it := range m.Items {
		if it.Header == nil {
			continue
		}
		if it.Header.Source != "" {
			source = it.Header.value()
		} else {
			triple = it.Header.value()
		}
	}
	return source, triple
}

// Functions returns the definitions in order.
func (m *Module) Functions() []*Define {
	var out []*Define
	for _, it := range m.Items {
		if it.Define != nil {
			out = append(out, it.Define)
		}
	}
	return out
}

// Verify checks every definition against the symbols of the module.
func (m *Module) Verify() error {
	symbols := map[string]bool{}
	typeNames := map[string]bool{}
	for _, it := range m.Items {
		var name string
		switch {
		case it.Global != nil:
			name = it.Global.Name
		case it.Declare != nil:
			name = it.Declare.Name
		case it.Define != nil:
			name = it.Define.Name
		case it.TypeDef != nil:
			if typeNames[it.TypeDef.Name] {
				return fmt.Errorf("type %s defined twice", it.TypeDef.Name)
			}
			typeNames[it.TypeDef.Name] = true
			continue
		default:
			continue
		}
		if symbols[name] {
			return fmt.Errorf("symbol %s defined twice", name)
		}
		symbols[name] = true
	}

	for _, fn := range m.Functions() {
		if err := fn.verify(symbols, typeNames); err != nil {
			return fmt.Errorf("%s: in %s: %w", fn.Pos, fn.Name, err)
		}
	}
	log.Debugf("verified %d functions", len(m.Functions()))
	return nil
}

func (fn *Define) verify(symbols, typeNames map[string]bool) error {
	if len(fn.Blocks) == 0 {
		return fmt.Errorf("definition has no blocks")
	}

	defined := map[string]bool{}
	for _, p := range fn.Params {
		if p.Name == "" {
			continue
		}
		if defined[p.Name] {
			return fmt.Errorf("parameter %s repeated", p.Name)
		}
		defined[p.Name] = true
	}

	labels := map[string]bool{}
	for _, b := range fn.Blocks {
		label := b.name()
		if labels[label] {
			return fmt.Errorf("%s: block %s defined twice", b.Pos, label)
		}
		labels[label] = true

		for _, inst := range b.Instructions {
			if inst.Result == "" {
				continue
			}
			if defined[inst.Result] {
				return fmt.Errorf("%s: register %s defined twice", inst.Pos, inst.Result)
			}
			defined[inst.Result] = true
		}
	}

	for _, b := range fn.Blocks {
		if defined["%"+b.name()] {
			return fmt.Errorf("%s: block %s has the name of a register", b.Pos, b.name())
		}
	}

	for _, b := range fn.Blocks {
		n := len(b.Instructions)
		if n == 0 || !terminators[b.Instructions[n-1].Op] {
			return fmt.Errorf("%s: block %s does not end in a terminator", b.Pos, b.name())
		}
		for i, inst := range b.Instructions {
			if i < n-1 && terminators[inst.Op] {
				return fmt.Errorf("%s: %s in the middle of block %s", inst.Pos, inst.Op, b.name())
			}
			if err := inst.verifyOperands(defined, labels, symbols, typeNames); err != nil {
				return err
			}
		}
	}
	return nil
}

// verifyOperands resolves every %name and @name an instruction mentions.
// A local after "label" is a block; otherwise it is a register or a named
// type.
func (inst *Instruction) verifyOperands(defined, labels, symbols, typeNames map[string]bool) error {
	for i, tok := range inst.Operands {
		switch {
		case strings.HasPrefix(tok, "%"):
			if i > 0 && inst.Operands[i-1] == "label" {
				if !labels[strings.TrimPrefix(tok, "%")] {
					return fmt.Errorf("%s: branch to unknown block %s", inst.Pos, tok)
				}
				continue
			}
			if !defined[tok] && !typeNames[tok] {
				return fmt.Errorf("%s: %s is never defined", inst.Pos, tok)
			}
		case strings.HasPrefix(tok, "@"):
			if !symbols[tok] {
				return fmt.Errorf("%s: unknown symbol %s", inst.Pos, tok)
			}
		}
	}
	return nil
}

func (b *Block) name() string {
	return strings.TrimSuffix(b.Label, ":")
}
