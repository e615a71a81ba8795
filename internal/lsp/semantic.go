package lsp

import (
	"ember/internal/ast"
	"ember/internal/builtins"
	"ember/internal/lexer"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into the semanticTokenTypes array
// TokenModifiers is a bitmask based on semanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into semanticTokenTypes
	TokenModifiers int // bitmask
}

type declaration struct {
	tokenType string
	static    bool
}

// names is what the tree tells us about identifiers: where each one is
// declared and which names denote types or functions.
type names struct {
	decls      map[[2]int]declaration
	types      map[string]bool
	typeParams map[string]bool
	functions  map[string]bool
}

// collectSemanticTokens classifies the lexer's tokens in source order. The
// tree refines identifiers; without one (a file that does not parse) they
// all read as variables.
func collectSemanticTokens(tokens []lexer.Token, prog *ast.Program) []SemanticToken {
	var out []SemanticToken

	n := collectNames(prog)

	for i, tok := range tokens {
		switch {
		case tok.Type == lexer.EOF:
			continue
		case lexer.IsKeyword(tok.Type):
			out = append(out, makeToken(tok.Pos, tok.End, tok.Lexeme, "keyword", 0)...)
		case tok.Type == lexer.INT || tok.Type == lexer.FLOAT || tok.Type == lexer.CHAR:
			out = append(out, makeToken(tok.Pos, tok.End, tok.Lexeme, "number", 0)...)
		case tok.Type == lexer.STRING:
			out = append(out, makeToken(tok.Pos, tok.End, tok.Lexeme, "string", 0)...)
		case tok.Type == lexer.IDENTIFIER:
			out = append(out, n.classify(tokens, i)...)
		}
	}

	return out
}

func (n *names) classify(tokens []lexer.Token, i int) []SemanticToken {
	tok := tokens[i]

	if d, ok := n.decls[[2]int{tok.Pos.Line, tok.Pos.Column}]; ok {
		modifiers := 1 << indexOf("declaration", SemanticTokenModifiers)
		if d.static {
			modifiers |= 1 << indexOf("static", SemanticTokenModifiers)
		}
		return makeTokenWithModifiers(tok.Pos, tok.End, tok.Lexeme, d.tokenType, modifiers)
	}

	followedByCall := i+1 < len(tokens) && tokens[i+1].Type == lexer.LEFT_PAREN
	if i > 0 && tokens[i-1].Type == lexer.DOT {
		if followedByCall {
			return makeToken(tok.Pos, tok.End, tok.Lexeme, "function", 0)
		}
		return makeToken(tok.Pos, tok.End, tok.Lexeme, "property", 0)
	}

	switch {
	case n.typeParams[tok.Lexeme]:
		return makeToken(tok.Pos, tok.End, tok.Lexeme, "typeParameter", 0)
	case builtins.IsBuiltinType(tok.Lexeme) || n.types[tok.Lexeme]:
		return makeToken(tok.Pos, tok.End, tok.Lexeme, "type", 0)
	case n.functions[tok.Lexeme] || followedByCall:
		return makeToken(tok.Pos, tok.End, tok.Lexeme, "function", 0)
	}
	return makeToken(tok.Pos, tok.End, tok.Lexeme, "variable", 0)
}

func collectNames(prog *ast.Program) *names {
	n := &names{
		decls:      map[[2]int]declaration{},
		types:      map[string]bool{},
		typeParams: map[string]bool{},
		functions:  map[string]bool{},
	}
	if prog == nil {
		return n
	}

	declare := func(id ast.Ident, tokenType string, static bool) {
		n.decls[[2]int{id.Pos.Line, id.Pos.Column}] = declaration{tokenType, static}
	}
	declareTypeParams := func(params []ast.Ident) {
		for _, tp := range params {
			declare(tp, "typeParameter", false)
			n.typeParams[tp.Value] = true
		}
	}

	ast.Inspect(prog, func(node ast.Node) bool {
		switch d := node.(type) {
		case *ast.FunctionDecl:
			declare(d.Name, "function", d.IsStatic)
			if !d.IsMethod {
				n.functions[d.Name.Value] = true
			}
			declareTypeParams(d.TypeParams)
		case *ast.Param:
			declare(d.Name, "parameter", false)
		case *ast.StructDecl:
			declare(d.Name, "type", false)
			n.types[d.Name.Value] = true
			declareTypeParams(d.TypeParams)
		case *ast.FieldDecl:
			declare(d.Name, "property", false)
		case *ast.TypeAlias:
			declare(d.Name, "type", false)
			n.types[d.Name.Value] = true
		case *ast.VariableDecl:
			for _, name := range d.Names {
				declare(name, "variable", false)
			}
		case *ast.Catch:
			if d.Name.Value != "" {
				declare(d.Name, "variable", false)
			}
		}
		return true
	})

	return n
}

// makeToken creates a semantic token for a given position and text
func makeToken(pos, endPos ast.Position, value, tokenType string, declModifier int) []SemanticToken {
	return makeTokenWithModifiers(pos, endPos, value, tokenType, declModifier<<indexOf("declaration", SemanticTokenModifiers))
}

func makeTokenWithModifiers(pos, endPos ast.Position, value, tokenType string, modifiers int) []SemanticToken {
	if value == "" {
		return nil
	}

	length := endPos.Column - pos.Column
	if length <= 0 || endPos.Line != pos.Line {
		length = len(value)
	}

	return []SemanticToken{{
		Line:           uint32(pos.Line - 1),   // LSP uses 0-based line numbers
		StartChar:      uint32(pos.Column - 1), // LSP uses 0-based column numbers
		Length:         uint32(length),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: modifiers,
	}}
}

// indexOf returns the index of a string in a slice, or 0 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0 // Default to first token type if not found
}
