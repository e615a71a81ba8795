package parser

import (
	"ember/internal/ast"
	"ember/internal/errors"
	"ember/internal/lexer"
)

func (p *Parser) parseDeclaration() (ast.Stmt, error) {
	switch p.peek().Type {
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.EXPORT:
		return p.parseExport()
	case lexer.EXTERN:
		return p.parseExtern()
	case lexer.FRAME:
		return p.parseFunction("", false)
	case lexer.STRUCT:
		return p.parseStruct()
	case lexer.TYPE:
		return p.parseTypeAlias()
	case lexer.LOCAL:
		return p.parseVariableDecl(true)
	}
	return nil, p.unexpected("at top level; expected a declaration")
}

// parseImport parses `import { a, b } from "path";` or `import "path";`.
func (p *Parser) parseImport() (ast.Stmt, error) {
	start := p.advance()
	imp := &ast.Import{}

	if p.match(lexer.LEFT_BRACE) {
		imp.Names = []ast.Ident{}
		if !p.check(lexer.RIGHT_BRACE) {
			names, err := p.parseIdentifierList("imported name")
			if err != nil {
				return nil, err
			}
			imp.Names = names
		}
		if _, err := p.consume(lexer.RIGHT_BRACE, "'}' after imported names"); err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.FROM, "'from' after imported names"); err != nil {
			return nil, err
		}
	}

	path, err := p.consume(lexer.STRING, "module path string")
	if err != nil {
		return nil, err
	}
	imp.Path = path.Literal.(string)

	if err := p.consumeSemicolon("import"); err != nil {
		return nil, err
	}
	imp.Loc = p.loc(start)
	return imp, nil
}

func (p *Parser) parseExport() (ast.Stmt, error) {
	start := p.advance()
	var (
		decl ast.Stmt
		err  error
	)
	switch p.peek().Type {
	case lexer.FRAME:
		decl, err = p.parseFunction("", false)
	case lexer.STRUCT:
		decl, err = p.parseStruct()
	case lexer.TYPE:
		decl, err = p.parseTypeAlias()
	case lexer.LOCAL:
		decl, err = p.parseVariableDecl(true)
	case lexer.EXTERN:
		decl, err = p.parseExtern()
	default:
		return nil, p.unexpected("after 'export'")
	}
	if err != nil {
		return nil, err
	}
	return &ast.Export{Loc: p.loc(start), Decl: decl}, nil
}

// parseExtern parses "extern frame name(params[, ...]) ret T;".
func (p *Parser) parseExtern() (ast.Stmt, error) {
	start := p.advance()
	if !p.check(lexer.FRAME) {
		return nil, p.expected("'frame' after 'extern'")
	}
	fn, err := p.parseSignature("", true)
	if err != nil {
		return nil, err
	}
	if fn.IsGeneric() {
		return nil, errors.InvalidTypeSyntax("extern functions cannot be generic", errors.SpanOf(fn))
	}
	if err := p.consumeSemicolon("extern declaration"); err != nil {
		return nil, err
	}
	fn.Loc = p.loc(start)
	return &ast.Extern{Loc: p.loc(start), Fn: fn}, nil
}

// parseFunction parses a function with a body. owner is the enclosing
// struct name for methods.
func (p *Parser) parseFunction(owner string, static bool) (*ast.FunctionDecl, error) {
	start := p.peek()
	fn, err := p.parseSignature(owner, false)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	fn.IsStatic = static
	fn.IsMethod = owner != "" && !static
	fn.Loc = p.loc(start)
	return fn, nil
}

// parseSignature parses "frame name<T>(a: A, b: B) ret R".
func (p *Parser) parseSignature(owner string, allowVariadic bool) (*ast.FunctionDecl, error) {
	start := p.advance() // frame
	name, err := p.consumeIdent("function name after 'frame'")
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseTypeParams()
	if err != nil {
		return nil, err
	}

	fn := &ast.FunctionDecl{Name: name, TypeParams: typeParams, Owner: owner}

	if _, err := p.consume(lexer.LEFT_PAREN, "'(' after function name"); err != nil {
		return nil, err
	}
	for !p.check(lexer.RIGHT_PAREN) {
		if p.check(lexer.ELLIPSIS) {
			dots := p.advance()
			if !allowVariadic {
				return nil, errors.UnexpectedToken("...", "outside an extern declaration", p.spanOf(dots))
			}
			fn.Variadic = true
			break
		}

		paramStart := p.peek()
		paramName, err := p.consumeIdent("parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.COLON, "':' after parameter name"); err != nil {
			return nil, err
		}
		paramType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, &ast.Param{Loc: p.loc(paramStart), Name: paramName, Type: paramType})

		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "')' after parameters"); err != nil {
		return nil, err
	}

	if p.match(lexer.RET) {
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if b, ok := ret.(*ast.BasicType); !ok || b.Name != "void" || !b.IsPlain() {
			fn.Return = ret
		}
	}

	fn.Loc = p.loc(start)
	return fn, nil
}

// parseStruct parses a struct with fields and methods in declaration order.
//
//	struct Point3 : Point { z: int, frame len() ret int { ... } }
func (p *Parser) parseStruct() (ast.Stmt, error) {
	start := p.advance()
	name, err := p.consumeIdent("struct name")
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseTypeParams()
	if err != nil {
		return nil, err
	}
	decl := &ast.StructDecl{Name: name, TypeParams: typeParams}

	if p.match(lexer.COLON) {
		parent, err := p.parseType()
		if err != nil {
			return nil, err
		}
		basic, ok := parent.(*ast.BasicType)
		if !ok || !basic.IsPlain() {
			return nil, errors.InvalidTypeSyntax("a struct can only extend another struct", errors.SpanOf(parent))
		}
		decl.Parent = basic
	}

	if _, err := p.consume(lexer.LEFT_BRACE, "'{' to open struct body"); err != nil {
		return nil, err
	}

	for !p.check(lexer.RIGHT_BRACE) {
		switch {
		case p.check(lexer.FRAME):
			method, err := p.parseFunction(name.Value, false)
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, method)
			p.match(lexer.COMMA)

		case p.check(lexer.STATIC):
			p.advance()
			if !p.check(lexer.FRAME) {
				return nil, p.expected("'frame' after 'static'")
			}
			method, err := p.parseFunction(name.Value, true)
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, method)
			p.match(lexer.COMMA)

		case p.check(lexer.IDENTIFIER):
			fieldStart := p.peek()
			fieldName := p.makeIdent(p.advance())
			if _, err := p.consume(lexer.COLON, "':' after field name"); err != nil {
				return nil, err
			}
			fieldType, err := p.parseType()
			if err != nil {
				return nil, err
			}
			decl.Fields = append(decl.Fields, &ast.FieldDecl{Loc: p.loc(fieldStart), Name: fieldName, Type: fieldType})
			if !p.match(lexer.COMMA) && !p.check(lexer.RIGHT_BRACE) && !p.check(lexer.FRAME) && !p.check(lexer.STATIC) {
				return nil, p.expected("',' after struct field")
			}

		default:
			return nil, p.expected("field, method or '}' in struct body")
		}
	}
	p.advance() // }

	decl.Loc = p.loc(start)
	return decl, nil
}

// parseTypeAlias parses "type Name = T;".
func (p *Parser) parseTypeAlias() (ast.Stmt, error) {
	start := p.advance()
	name, err := p.consumeIdent("alias name after 'type'")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.EQUAL, "'=' after alias name"); err != nil {
		return nil, err
	}
	target, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon("type alias"); err != nil {
		return nil, err
	}
	return &ast.TypeAlias{Loc: p.loc(start), Name: name, Target: target}, nil
}
