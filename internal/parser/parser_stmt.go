package parser

import (
	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/lexer"
)

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.peek().Type {
	case lexer.LOCAL:
		return p.parseVariableDecl(false)
	case lexer.IF:
		return p.parseIf()
	case lexer.LOOP:
		return p.parseLoop()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		tok := p.advance()
		if err := p.consumeSemicolon("break"); err != nil {
			return nil, err
		}
		return &ast.Break{Loc: p.loc(tok)}, nil
	case lexer.CONTINUE:
		tok := p.advance()
		if err := p.consumeSemicolon("continue"); err != nil {
			return nil, err
		}
		return &ast.Continue{Loc: p.loc(tok)}, nil
	case lexer.LEFT_BRACE:
		return p.parseBlock()
	case lexer.TRY:
		return p.parseTry()
	case lexer.THROW:
		return p.parseThrow()
	case lexer.SWITCH:
		return p.parseSwitch()
	case lexer.ASM:
		return p.parseAsm()
	case lexer.FRAME, lexer.STRUCT, lexer.IMPORT, lexer.EXPORT, lexer.EXTERN, lexer.TYPE, lexer.STATIC:
		return nil, p.unexpected("inside a function body; declarations belong at the top level")
	}

	return p.parseExpressionStmt()
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	start, err := p.consume(lexer.LEFT_BRACE, "'{' to open block")
	if err != nil {
		return nil, err
	}

	block := &ast.Block{}
	for !p.check(lexer.RIGHT_BRACE) && !p.isAtEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}

	if _, err := p.consume(lexer.RIGHT_BRACE, "'}' to close block"); err != nil {
		return nil, err
	}
	block.Loc = p.loc(start)
	return block, nil
}

func (p *Parser) parseExpressionStmt() (ast.Stmt, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon("expression"); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Loc: p.locFrom(expr), X: expr}, nil
}

// parseVariableDecl parses "local x: T = e;" and "local (a, b) = e;".
func (p *Parser) parseVariableDecl(global bool) (*ast.VariableDecl, error) {
	start := p.advance() // local
	decl := &ast.VariableDecl{Global: global}

	if p.match(lexer.LEFT_PAREN) {
		names, err := p.parseIdentifierList("variable name")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.RIGHT_PAREN, "')' after destructuring names"); err != nil {
			return nil, err
		}
		decl.Names = names
		decl.Destructure = true
	} else {
		name, err := p.consumeIdent("variable name after 'local'")
		if err != nil {
			return nil, err
		}
		decl.Names = []ast.Ident{name}
	}

	if p.match(lexer.COLON) {
		annotation, err := p.parseType()
		if err != nil {
			return nil, err
		}
		decl.Annotation = annotation
	}

	if p.match(lexer.EQUAL) {
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}

	if decl.Init == nil && (decl.Annotation == nil || decl.Destructure) {
		return nil, errors.New(errors.ErrorExpectedToken,
			"variable declaration needs a type annotation or an initializer", p.spanOf(start)).
			WithHint("write 'local name: Type;' or 'local name = value;'").
			Build()
	}

	if err := p.consumeSemicolon("variable declaration"); err != nil {
		return nil, err
	}
	decl.Loc = p.loc(start)
	return decl, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	start := p.advance()
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	stmt := &ast.If{Cond: cond, Then: then}
	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			stmt.Else, err = p.parseIf()
		} else {
			stmt.Else, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}

	stmt.Loc = p.loc(start)
	return stmt, nil
}

// parseLoop parses "loop (cond) { ... }" and the infinite "loop { ... }".
func (p *Parser) parseLoop() (ast.Stmt, error) {
	start := p.advance()
	stmt := &ast.Loop{}

	if p.check(lexer.LEFT_PAREN) {
		cond, err := p.parseCondition("loop")
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.Loc = p.loc(start)
	return stmt, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	start := p.advance()
	stmt := &ast.Return{}
	if !p.check(lexer.SEMICOLON) {
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	if err := p.consumeSemicolon("return"); err != nil {
		return nil, err
	}
	stmt.Loc = p.loc(start)
	return stmt, nil
}

// parseTry parses "try { } catch (e: T) { } ... catch { }". The untyped
// catch-all must come last.
func (p *Parser) parseTry() (ast.Stmt, error) {
	start := p.advance()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.Try{Body: body}

	for p.check(lexer.CATCH) {
		catchTok := p.advance()
		if stmt.CatchAll != nil {
			return nil, errors.UnexpectedToken("catch", "after the catch-all clause", p.spanOf(catchTok))
		}

		if !p.match(lexer.LEFT_PAREN) {
			all, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.CatchAll = all
			continue
		}

		name, err := p.consumeIdent("catch variable name")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.COLON, "':' after catch variable"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.RIGHT_PAREN, "')' after catch type"); err != nil {
			return nil, err
		}
		catchBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Catches = append(stmt.Catches, &ast.Catch{
			Loc:  p.loc(catchTok),
			Name: name,
			Type: typ,
			Body: catchBody,
		})
	}

	if len(stmt.Catches) == 0 && stmt.CatchAll == nil {
		return nil, p.expected("'catch' after try block")
	}
	stmt.Loc = p.loc(start)
	return stmt, nil
}

func (p *Parser) parseThrow() (ast.Stmt, error) {
	start := p.advance()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon("throw"); err != nil {
		return nil, err
	}
	return &ast.Throw{Loc: p.loc(start), Value: value}, nil
}

// parseSwitch parses "switch (x) { case 1, 2: stmts default: stmts }".
func (p *Parser) parseSwitch() (ast.Stmt, error) {
	start := p.advance()
	value, err := p.parseCondition("switch")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.LEFT_BRACE, "'{' to open switch body"); err != nil {
		return nil, err
	}

	stmt := &ast.Switch{Value: value}
	for !p.check(lexer.RIGHT_BRACE) {
		switch {
		case p.check(lexer.CASE):
			caseTok := p.advance()
			var values []ast.Expr
			for {
				v, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				values = append(values, v)
				if !p.match(lexer.COMMA) {
					break
				}
			}
			if _, err := p.consume(lexer.COLON, "':' after case values"); err != nil {
				return nil, err
			}
			body, err := p.parseCaseBody(caseTok)
			if err != nil {
				return nil, err
			}
			stmt.Cases = append(stmt.Cases, &ast.Case{Loc: p.loc(caseTok), Values: values, Body: body})

		case p.check(lexer.DEFAULT):
			defTok := p.advance()
			if stmt.Default != nil {
				return nil, errors.UnexpectedToken("default", "twice in one switch", p.spanOf(defTok))
			}
			if _, err := p.consume(lexer.COLON, "':' after default"); err != nil {
				return nil, err
			}
			body, err := p.parseCaseBody(defTok)
			if err != nil {
				return nil, err
			}
			stmt.Default = body

		default:
			return nil, p.expected("'case' or 'default'")
		}
	}

	p.advance() // }
	stmt.Loc = p.loc(start)
	return stmt, nil
}

// parseCaseBody collects statements up to the next case, default or '}'.
func (p *Parser) parseCaseBody(start lexer.Token) (*ast.Block, error) {
	body := &ast.Block{}
	for !p.check(lexer.CASE) && !p.check(lexer.DEFAULT) && !p.check(lexer.RIGHT_BRACE) && !p.isAtEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body.Stmts = append(body.Stmts, stmt)
	}
	body.Loc = p.loc(start)
	return body, nil
}

// parseAsm parses `asm("text");`.
func (p *Parser) parseAsm() (ast.Stmt, error) {
	start := p.advance()
	if _, err := p.consume(lexer.LEFT_PAREN, "'(' after asm"); err != nil {
		return nil, err
	}
	code, err := p.consume(lexer.STRING, "assembly string")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "')' after assembly string"); err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon("asm"); err != nil {
		return nil, err
	}
	return &ast.Asm{Loc: p.loc(start), Code: code.Literal.(string)}, nil
}
