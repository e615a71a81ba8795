package parser

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/lexer"
)

func (p *Parser) advance() lexer.Token {
	return p.stream.advance()
}

func (p *Parser) check(tt lexer.TokenType) bool {
	return p.peek().Type == tt
}

func (p *Parser) checkAt(n int, tt lexer.TokenType) bool {
	return p.stream.peekAt(n).Type == tt
}

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

// consume requires a token of type tt; what names it in the error message.
func (p *Parser) consume(tt lexer.TokenType, what string) (lexer.Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.expected(what)
}

func (p *Parser) expected(what string) error {
	found := p.peek()
	return errors.ExpectedToken(what, found.String(), p.spanOf(found))
}

func (p *Parser) unexpected(context string) error {
	found := p.peek()
	return errors.UnexpectedToken(found.String(), context, p.spanOf(found))
}

func (p *Parser) peek() lexer.Token {
	return p.stream.peek()
}

func (p *Parser) previous() lexer.Token {
	return p.stream.prev
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.EOF
}

func (p *Parser) makePos(tok lexer.Token) ast.Position {
	return tok.Pos
}

func (p *Parser) makeEndPos(tok lexer.Token) ast.Position {
	return tok.End
}

// loc spans from start to the most recently consumed token.
func (p *Parser) loc(start lexer.Token) ast.Loc {
	return ast.Loc{Pos: p.makePos(start), EndPos: p.makeEndPos(p.previous())}
}

// locFrom spans from a node's start to the most recently consumed token.
func (p *Parser) locFrom(n ast.Node) ast.Loc {
	return ast.Loc{Pos: n.NodePos(), EndPos: p.makeEndPos(p.previous())}
}

// makeIdent creates an ast.Ident from a token
func (p *Parser) makeIdent(tok lexer.Token) ast.Ident {
	return ast.Ident{
		Loc:   ast.Loc{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok)},
		Value: tok.Lexeme,
	}
}

// consumeIdent consumes an identifier token and returns an ast.Ident
func (p *Parser) consumeIdent(what string) (ast.Ident, error) {
	tok, err := p.consume(lexer.IDENTIFIER, what)
	if err != nil {
		return ast.Ident{}, err
	}
	return p.makeIdent(tok), nil
}

// parseIdentifierList parses a comma-separated list of identifiers
func (p *Parser) parseIdentifierList(what string) ([]ast.Ident, error) {
	var idents []ast.Ident

	for {
		ident, err := p.consumeIdent(what)
		if err != nil {
			return nil, err
		}
		idents = append(idents, ident)

		if !p.match(lexer.COMMA) {
			return idents, nil
		}
	}
}

// parseTypeParams parses an optional "<T, U>" list on a declaration.
func (p *Parser) parseTypeParams() ([]ast.Ident, error) {
	if !p.match(lexer.LESS) {
		return nil, nil
	}
	params, err := p.parseIdentifierList("type parameter name")
	if err != nil {
		return nil, err
	}
	if !p.stream.closeAngle() {
		return nil, p.expected("'>' to close type parameters")
	}
	return params, nil
}

func (p *Parser) consumeSemicolon(after string) error {
	_, err := p.consume(lexer.SEMICOLON, fmt.Sprintf("';' after %s", after))
	return err
}
