package parser

import (
	"ember/internal/ast"
	"ember/internal/lexer"
)

// Precedence ladder, loosest first:
// assignment, ternary, ||, &&, |, ^, &, equality, relational, shift,
// additive, multiplicative, unary, postfix, primary.
// Every binary level is left-associative; assignment and ternary are
// right-associative.

var assignmentOps = []lexer.TokenType{
	lexer.EQUAL, lexer.PLUS_EQUAL, lexer.MINUS_EQUAL,
	lexer.STAR_EQUAL, lexer.SLASH_EQUAL, lexer.PERCENT_EQUAL,
}

func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	target, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if p.match(assignmentOps...) {
		op := p.previous()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{
			Loc:    p.locFrom(target),
			Op:     op.Lexeme,
			Target: target,
			Value:  value,
		}, nil
	}

	return target, nil
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if !p.match(lexer.QUESTION) {
		return cond, nil
	}

	then, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.COLON, "':' in conditional expression"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Loc: p.locFrom(cond), Cond: cond, Then: then, Else: els}, nil
}

// parseBinaryLevel parses a left-associative chain of operators from ops
// whose operands come from next.
func (p *Parser) parseBinaryLevel(next func() (ast.Expr, error), ops ...lexer.TokenType) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.match(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{
			Loc:   p.locFrom(left),
			Op:    op.Lexeme,
			Left:  left,
			Right: right,
		}
	}

	return left, nil
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, lexer.OR)
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseBitOr, lexer.AND)
}

func (p *Parser) parseBitOr() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseBitXor, lexer.PIPE)
}

func (p *Parser) parseBitXor() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseBitAnd, lexer.CARET)
}

func (p *Parser) parseBitAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseEquality, lexer.AMPERSAND)
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseRelational, lexer.EQUAL_EQUAL, lexer.BANG_EQUAL)
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseShift,
		lexer.LESS, lexer.LESS_EQUAL, lexer.GREATER, lexer.GREATER_EQUAL)
}

func (p *Parser) parseShift() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseAdditive, lexer.SHIFT_LEFT, lexer.SHIFT_RIGHT)
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, lexer.PLUS, lexer.MINUS)
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, lexer.STAR, lexer.SLASH, lexer.PERCENT)
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.match(lexer.MINUS, lexer.BANG, lexer.TILDE, lexer.STAR, lexer.AMPERSAND,
		lexer.INCREMENT, lexer.DECREMENT) {
		op := p.previous()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Loc: p.loc(op), Op: op.Lexeme, Operand: operand}, nil
	}

	return p.parsePostfix()
}

// parsePostfix applies generic instantiation, calls, indexing, member access,
// struct literals and postfix ++/-- until none apply.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.check(lexer.LESS) && isGenericBase(expr):
			inst, ok := p.tryGenericArgs(expr)
			if !ok {
				return expr, nil
			}
			expr = inst

		case p.match(lexer.LEFT_PAREN):
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Loc: p.locFrom(expr), Callee: expr, Args: args}

		case p.match(lexer.LEFT_BRACKET):
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(lexer.RIGHT_BRACKET, "']' after index"); err != nil {
				return nil, err
			}
			expr = &ast.Index{Loc: p.locFrom(expr), Object: expr, Index: index}

		case p.match(lexer.DOT):
			name, err := p.consumeIdent("member name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.Member{Loc: p.locFrom(expr), Object: expr, Name: name}

		case p.check(lexer.LEFT_BRACE) && p.startsStructLiteral(expr):
			lit, err := p.parseStructLiteral(expr)
			if err != nil {
				return nil, err
			}
			expr = lit

		case p.match(lexer.INCREMENT, lexer.DECREMENT):
			op := p.previous()
			expr = &ast.Unary{Loc: p.locFrom(expr), Op: op.Lexeme, Operand: expr, Postfix: true}

		default:
			return expr, nil
		}
	}
}

func isGenericBase(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.Member:
		return true
	}
	return false
}

// tryGenericArgs speculatively parses "<T, ...>" after base. It commits only
// when the argument list closes and is followed by '(', '.', ')', ',' or '{';
// otherwise the cursor is rolled back and '<' is left for the relational level.
func (p *Parser) tryGenericArgs(base ast.Expr) (ast.Expr, bool) {
	mark := p.stream.mark()
	p.advance() // <

	args, err := p.parseTypeList()
	if err != nil || !p.stream.closeAngle() {
		p.stream.reset(mark)
		return nil, false
	}

	switch p.peek().Type {
	case lexer.LEFT_PAREN, lexer.DOT, lexer.RIGHT_PAREN, lexer.COMMA, lexer.LEFT_BRACE:
	default:
		p.stream.reset(mark)
		return nil, false
	}

	return &ast.GenericInstantiation{Loc: p.locFrom(base), Base: base, TypeArgs: args}, true
}

// startsStructLiteral reports whether the '{' at the cursor opens a struct
// literal for expr: "Name {}" or "Name { field: ...".
func (p *Parser) startsStructLiteral(expr ast.Expr) bool {
	if structTypeOf(expr) == nil {
		return false
	}
	if p.checkAt(1, lexer.RIGHT_BRACE) {
		return true
	}
	return p.checkAt(1, lexer.IDENTIFIER) && p.checkAt(2, lexer.COLON)
}

func structTypeOf(expr ast.Expr) *ast.BasicType {
	switch e := expr.(type) {
	case *ast.Identifier:
		return &ast.BasicType{Loc: e.Loc, Name: e.Name}
	case *ast.GenericInstantiation:
		if id, ok := e.Base.(*ast.Identifier); ok {
			return &ast.BasicType{Loc: e.Loc, Name: id.Name, Generics: e.TypeArgs}
		}
	}
	return nil
}

func (p *Parser) parseStructLiteral(typeExpr ast.Expr) (ast.Expr, error) {
	p.advance() // {
	lit := &ast.StructLiteral{Struct: structTypeOf(typeExpr)}

	for !p.check(lexer.RIGHT_BRACE) {
		name, err := p.consumeIdent("field name in struct literal")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.COLON, "':' after field name"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		lit.Fields = append(lit.Fields, &ast.FieldInit{
			Loc:   ast.Loc{Pos: name.Pos, EndPos: value.NodeEndPos()},
			Name:  name,
			Value: value,
		})
		if !p.match(lexer.COMMA) {
			break
		}
	}

	if _, err := p.consume(lexer.RIGHT_BRACE, "'}' to close struct literal"); err != nil {
		return nil, err
	}
	lit.Loc = p.locFrom(typeExpr)
	return lit, nil
}

func (p *Parser) parseArguments() ([]ast.Expr, error) {
	var args []ast.Expr
	for !p.check(lexer.RIGHT_PAREN) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()

	switch tok.Type {
	case lexer.INT:
		p.advance()
		return p.literal(tok, ast.IntLiteral, tok.Literal), nil
	case lexer.FLOAT:
		p.advance()
		return p.literal(tok, ast.FloatLiteral, tok.Literal), nil
	case lexer.STRING:
		p.advance()
		return p.literal(tok, ast.StringLiteral, tok.Literal), nil
	case lexer.CHAR:
		p.advance()
		return p.literal(tok, ast.CharLiteral, tok.Literal), nil
	case lexer.TRUE, lexer.FALSE:
		p.advance()
		return p.literal(tok, ast.BoolLiteral, tok.Type == lexer.TRUE), nil
	case lexer.NULLPTR:
		p.advance()
		return p.literal(tok, ast.NullLiteral, nil), nil

	case lexer.IDENTIFIER, lexer.THIS:
		p.advance()
		return &ast.Identifier{Loc: p.loc(tok), Name: tok.Lexeme}, nil

	case lexer.LEFT_PAREN:
		return p.parseParenOrTuple()
	case lexer.LEFT_BRACKET:
		return p.parseArrayLiteral()
	case lexer.CAST:
		return p.parseCast()
	case lexer.SIZEOF:
		return p.parseSizeof()
	case lexer.MATCH:
		return p.parseMatch()
	}

	return nil, p.unexpected("in expression")
}

func (p *Parser) literal(tok lexer.Token, kind ast.LiteralKind, value any) *ast.Literal {
	return &ast.Literal{Loc: p.loc(tok), Kind: kind, Value: value, Raw: tok.Lexeme}
}

// parseParenOrTuple parses "(expr)" or "(a, b, ...)". Grouping parentheses
// do not produce a node.
func (p *Parser) parseParenOrTuple() (ast.Expr, error) {
	start := p.advance() // (
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if !p.check(lexer.COMMA) {
		if _, err := p.consume(lexer.RIGHT_PAREN, "')' after expression"); err != nil {
			return nil, err
		}
		return first, nil
	}

	elems := []ast.Expr{first}
	for p.match(lexer.COMMA) {
		if p.check(lexer.RIGHT_PAREN) {
			break
		}
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "')' to close tuple"); err != nil {
		return nil, err
	}
	return &ast.TupleLiteral{Loc: p.loc(start), Elements: elems}, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expr, error) {
	start := p.advance() // [
	var elems []ast.Expr
	for !p.check(lexer.RIGHT_BRACKET) {
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.consume(lexer.RIGHT_BRACKET, "']' to close array literal"); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Loc: p.loc(start), Elements: elems}, nil
}

// parseCast parses "cast<T>(expr)".
func (p *Parser) parseCast() (ast.Expr, error) {
	start := p.advance()
	if _, err := p.consume(lexer.LESS, "'<' after cast"); err != nil {
		return nil, err
	}
	target, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.stream.closeAngle() {
		return nil, p.expected("'>' after cast type")
	}
	if _, err := p.consume(lexer.LEFT_PAREN, "'(' after cast type"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "')' after cast operand"); err != nil {
		return nil, err
	}
	return &ast.Cast{Loc: p.loc(start), Target: target, Value: value}, nil
}

// parseSizeof parses "sizeof(T)".
func (p *Parser) parseSizeof() (ast.Expr, error) {
	start := p.advance()
	if _, err := p.consume(lexer.LEFT_PAREN, "'(' after sizeof"); err != nil {
		return nil, err
	}
	target, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "')' after sizeof type"); err != nil {
		return nil, err
	}
	return &ast.Sizeof{Loc: p.loc(start), Target: target}, nil
}

// parseMatch parses "match (x) { 1 => a, _ => b }".
func (p *Parser) parseMatch() (ast.Expr, error) {
	start := p.advance()
	value, err := p.parseCondition("match")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.LEFT_BRACE, "'{' to open match arms"); err != nil {
		return nil, err
	}

	m := &ast.Match{Value: value}
	for !p.check(lexer.RIGHT_BRACE) {
		armStart := p.peek()
		var pattern ast.Expr
		if armStart.Type == lexer.IDENTIFIER && armStart.Lexeme == "_" && p.checkAt(1, lexer.FAT_ARROW) {
			p.advance()
		} else if pattern, err = p.parseExpression(); err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.FAT_ARROW, "'=>' after match pattern"); err != nil {
			return nil, err
		}
		result, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		m.Arms = append(m.Arms, &ast.MatchArm{Loc: p.loc(armStart), Pattern: pattern, Value: result})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.consume(lexer.RIGHT_BRACE, "'}' to close match"); err != nil {
		return nil, err
	}
	m.Loc = p.loc(start)
	return m, nil
}

// parseCondition parses a parenthesized expression after keyword.
func (p *Parser) parseCondition(keyword string) (ast.Expr, error) {
	if _, err := p.consume(lexer.LEFT_PAREN, "'(' after "+keyword); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "')' after "+keyword+" condition"); err != nil {
		return nil, err
	}
	return cond, nil
}
