package parser

import (
	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/lexer"
)

// parseType parses pointer prefixes, a named, function or tuple type, generic
// arguments and array dimensions.
//
//	*Box<int>[4]   Func<int>(int, int)   (int, bool)
func (p *Parser) parseType() (ast.TypeNode, error) {
	start := p.peek()

	depth := 0
	for p.match(lexer.STAR) {
		depth++
	}

	if p.check(lexer.LEFT_PAREN) {
		if depth > 0 {
			return nil, errors.InvalidTypeSyntax("pointers to tuple types are not supported", p.spanOf(start))
		}
		return p.parseTupleType()
	}

	name, err := p.consume(lexer.IDENTIFIER, "type name")
	if err != nil {
		return nil, err
	}

	if name.Lexeme == "Func" && p.check(lexer.LESS) {
		if depth > 0 {
			return nil, errors.InvalidTypeSyntax("pointers to function types are not supported", p.spanOf(start))
		}
		return p.parseFunctionType(name)
	}

	typ := &ast.BasicType{Name: name.Lexeme, PointerDepth: depth}

	if p.match(lexer.LESS) {
		generics, err := p.parseTypeList()
		if err != nil {
			return nil, err
		}
		if !p.stream.closeAngle() {
			return nil, p.expected("'>' to close generic arguments")
		}
		typ.Generics = generics
	}

	for p.match(lexer.LEFT_BRACKET) {
		dim := ast.UnsizedDim
		if p.check(lexer.INT) {
			size := p.advance()
			dim = int(size.Literal.(int64))
			if dim <= 0 {
				return nil, errors.InvalidTypeSyntax("array size must be positive", p.spanOf(size))
			}
		}
		if _, err := p.consume(lexer.RIGHT_BRACKET, "']' after array size"); err != nil {
			return nil, err
		}
		typ.ArrayDims = append(typ.ArrayDims, dim)
	}

	typ.Loc = p.loc(start)
	return typ, nil
}

func (p *Parser) parseTypeList() ([]ast.TypeNode, error) {
	var types []ast.TypeNode
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		if !p.match(lexer.COMMA) {
			return types, nil
		}
	}
}

func (p *Parser) parseTupleType() (ast.TypeNode, error) {
	start := p.advance() // (
	var elems []ast.TypeNode
	if !p.check(lexer.RIGHT_PAREN) {
		var err error
		if elems, err = p.parseTypeList(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "')' to close tuple type"); err != nil {
		return nil, err
	}
	if len(elems) < 2 {
		return nil, errors.InvalidTypeSyntax("tuple types need at least two elements", p.spanOf(start))
	}
	return &ast.TupleType{Loc: p.loc(start), Elements: elems}, nil
}

// parseFunctionType parses the rest of "Func<Ret>(Params)" after "Func".
func (p *Parser) parseFunctionType(start lexer.Token) (ast.TypeNode, error) {
	p.advance() // <
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.stream.closeAngle() {
		return nil, p.expected("'>' after function return type")
	}
	if _, err := p.consume(lexer.LEFT_PAREN, "'(' to open function parameter types"); err != nil {
		return nil, err
	}

	fn := &ast.FunctionType{}
	if b, ok := ret.(*ast.BasicType); !ok || b.Name != "void" || !b.IsPlain() {
		fn.Return = ret
	}

	for !p.check(lexer.RIGHT_PAREN) {
		if p.match(lexer.ELLIPSIS) {
			fn.Variadic = true
			break
		}
		param, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, param)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "')' to close function parameter types"); err != nil {
		return nil, err
	}

	fn.Loc = p.loc(start)
	return fn, nil
}
