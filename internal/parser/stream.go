package parser

import (
	"ember/internal/lexer"
)

// tokenStream is a cursor over the token slice that can hand out the second
// half of a ">>" or ">=" token after the parser consumed its leading '>' as a
// generic close. The slice itself is never modified.
type tokenStream struct {
	tokens  []lexer.Token
	pos     int
	pending lexer.TokenType // type of the remaining half at pos, ILLEGAL if none
	prev    lexer.Token
}

// streamMark is a saved cursor for speculative parsing.
type streamMark struct {
	pos     int
	pending lexer.TokenType
	prev    lexer.Token
}

func newTokenStream(tokens []lexer.Token) *tokenStream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		tokens = append(tokens, lexer.Token{Type: lexer.EOF})
	}
	return &tokenStream{tokens: tokens}
}

func (s *tokenStream) peek() lexer.Token {
	tok := s.tokens[s.pos]
	if s.pending != lexer.ILLEGAL {
		return remainder(tok, s.pending)
	}
	return tok
}

// peekAt looks n logical tokens ahead.
func (s *tokenStream) peekAt(n int) lexer.Token {
	if n == 0 {
		return s.peek()
	}
	i := s.pos + n
	if i >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[i]
}

func (s *tokenStream) advance() lexer.Token {
	tok := s.peek()
	if tok.Type != lexer.EOF {
		s.pos++
	}
	s.pending = lexer.ILLEGAL
	s.prev = tok
	return tok
}

// closeAngle consumes one logical '>' closing a generic argument list.
func (s *tokenStream) closeAngle() bool {
	tok := s.peek()
	switch tok.Type {
	case lexer.GREATER:
		s.advance()
		return true
	case lexer.SHIFT_RIGHT:
		s.split(tok, lexer.GREATER)
		return true
	case lexer.GREATER_EQUAL:
		s.split(tok, lexer.EQUAL)
		return true
	}
	return false
}

func (s *tokenStream) split(tok lexer.Token, rest lexer.TokenType) {
	first := tok
	first.Type = lexer.GREATER
	first.Lexeme = ">"
	first.End = first.Pos
	first.End.Column++
	first.End.Offset++
	s.prev = first
	s.pending = rest
}

func (s *tokenStream) mark() streamMark {
	return streamMark{pos: s.pos, pending: s.pending, prev: s.prev}
}

func (s *tokenStream) reset(m streamMark) {
	s.pos = m.pos
	s.pending = m.pending
	s.prev = m.prev
}

// remainder is the token left after the leading '>' of tok was consumed.
func remainder(tok lexer.Token, rest lexer.TokenType) lexer.Token {
	tok.Type = rest
	tok.Lexeme = tok.Lexeme[1:]
	tok.Pos.Column++
	tok.Pos.Offset++
	return tok
}
