package parser

import (
	"fmt"
	"os"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/lexer"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ember.parser")

// Parser is a recursive-descent parser over a lexed token sequence. Parsing
// stops at the first error, which is returned as a *errors.CompilerError.
type Parser struct {
	stream   *tokenStream
	filename string
}

func NewParser(filename string, tokens []lexer.Token) *Parser {
	return &Parser{
		stream:   newTokenStream(tokens),
		filename: filename,
	}
}

// Parse builds the Program for a token sequence ending in EOF.
func Parse(filename string, tokens []lexer.Token) (*ast.Program, error) {
	return NewParser(filename, tokens).ParseProgram()
}

func ParseFile(path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseSource(path, string(source))
}

// ParseSource lexes and parses source. The first lexical error, if any, is
// returned before parsing starts.
func ParseSource(path string, source string) (*ast.Program, error) {
	tokens, scanErrors := lexer.ScanTokens(source, path)
	if len(scanErrors) > 0 {
		return nil, scanErrors[0]
	}
	return Parse(path, tokens)
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	start := p.peek()
	program := &ast.Program{Path: p.filename}

	for !p.isAtEnd() {
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		program.Body = append(program.Body, decl)
	}

	program.Pos = p.makePos(start)
	program.EndPos = p.makePos(p.peek())
	log.Debugf("parsed %s: %d top-level declarations", p.filename, len(program.Body))
	return program, nil
}

func (p *Parser) spanOf(tok lexer.Token) errors.Span {
	return errors.SpanFrom(tok.Pos, tok.End)
}
