package lexer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"ember/internal/ast"
	"ember/internal/errors"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ember.lexer")

type Scanner struct {
	source      string
	file        string
	tokens      []Token
	start       int
	current     int
	line        int
	column      int
	startLine   int
	startColumn int
	errors      []*errors.CompilerError
}

func NewScanner(source, file string) *Scanner {
	return &Scanner{
		source: source,
		file:   file,
		line:   1,
		column: 1,
	}
}

// ScanTokens lexes source and returns every token followed by EOF, together
// with the lexical errors found along the way.
func ScanTokens(source, file string) ([]Token, []*errors.CompilerError) {
	s := NewScanner(source, file)
	tokens := s.ScanTokens()
	return tokens, s.Errors()
}

func (s *Scanner) ScanTokens() []Token {
	for !s.isAtEnd() {
		s.start = s.current
		s.startLine = s.line
		s.startColumn = s.column
		s.scanToken()
	}
	eof := s.position(s.current, s.line, s.column)
	s.tokens = append(s.tokens, Token{Type: EOF, Pos: eof, End: eof})
	log.Debugf("scanned %d tokens from %s (%d errors)", len(s.tokens), s.file, len(s.errors))
	return s.tokens
}

func (s *Scanner) Errors() []*errors.CompilerError {
	return s.errors
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	// Simple single-character tokens
	case '(':
		s.addToken(LEFT_PAREN)
	case ')':
		s.addToken(RIGHT_PAREN)
	case '{':
		s.addToken(LEFT_BRACE)
	case '}':
		s.addToken(RIGHT_BRACE)
	case '[':
		s.addToken(LEFT_BRACKET)
	case ']':
		s.addToken(RIGHT_BRACKET)
	case ',':
		s.addToken(COMMA)
	case ';':
		s.addToken(SEMICOLON)
	case ':':
		s.addToken(COLON)
	case '~':
		s.addToken(TILDE)
	case '?':
		s.addToken(QUESTION)
	case '^':
		s.addToken(CARET)

	// Operators with potential multi-character variants
	case '.':
		s.scanDotOperator()
	case '-':
		s.scanMinusOperator()
	case '+':
		s.scanPlusOperator()
	case '*':
		s.scanCompound(STAR, STAR_EQUAL)
	case '%':
		s.scanCompound(PERCENT, PERCENT_EQUAL)
	case '!':
		s.scanCompound(BANG, BANG_EQUAL)
	case '=':
		s.scanEqualOperator()
	case '&':
		s.scanDouble('&', AMPERSAND, AND)
	case '|':
		s.scanDouble('|', PIPE, OR)
	case '<':
		s.scanAngle('<', LESS, LESS_EQUAL, SHIFT_LEFT)
	case '>':
		s.scanAngle('>', GREATER, GREATER_EQUAL, SHIFT_RIGHT)
	case '/':
		s.scanSlashOperator()
	case '#':
		s.scanHashComment()

	// Whitespace (ignored)
	case ' ', '\r', '\t', '\n':

	case '"':
		s.scanString()
	case '\'':
		s.scanChar()

	default:
		s.scanDefault(c)
	}
}

func (s *Scanner) scanDotOperator() {
	if s.peek() == '.' && s.peekNext() == '.' {
		s.advance()
		s.advance()
		s.addToken(ELLIPSIS)
	} else {
		s.addToken(DOT)
	}
}

func (s *Scanner) scanMinusOperator() {
	if s.matchNext('-') {
		s.addToken(DECREMENT)
	} else if s.matchNext('=') {
		s.addToken(MINUS_EQUAL)
	} else {
		s.addToken(MINUS)
	}
}

func (s *Scanner) scanPlusOperator() {
	if s.matchNext('+') {
		s.addToken(INCREMENT)
	} else if s.matchNext('=') {
		s.addToken(PLUS_EQUAL)
	} else {
		s.addToken(PLUS)
	}
}

func (s *Scanner) scanCompound(single, withEqual TokenType) {
	if s.matchNext('=') {
		s.addToken(withEqual)
	} else {
		s.addToken(single)
	}
}

func (s *Scanner) scanEqualOperator() {
	if s.matchNext('=') {
		s.addToken(EQUAL_EQUAL)
	} else if s.matchNext('>') {
		s.addToken(FAT_ARROW)
	} else {
		s.addToken(EQUAL)
	}
}

func (s *Scanner) scanDouble(c byte, single, double TokenType) {
	if s.matchNext(c) {
		s.addToken(double)
	} else {
		s.addToken(single)
	}
}

// scanAngle handles < <= << and > >= >>. Shift-assign forms are not part of
// the language, so ">>=" is ">>" followed by "=".
func (s *Scanner) scanAngle(c byte, single, withEqual, shift TokenType) {
	if s.matchNext('=') {
		s.addToken(withEqual)
	} else if s.matchNext(c) {
		s.addToken(shift)
	} else {
		s.addToken(single)
	}
}

func (s *Scanner) scanSlashOperator() {
	if s.matchNext('=') {
		s.addToken(SLASH_EQUAL)
	} else if s.matchNext('/') {
		s.scanSingleLineComment()
	} else {
		s.addToken(SLASH)
	}
}

func (s *Scanner) scanHashComment() {
	if s.peek() == '#' && s.peekNext() == '#' {
		s.advance()
		s.advance()
		s.scanBlockComment()
		return
	}
	s.scanSingleLineComment()
}

func (s *Scanner) scanSingleLineComment() {
	for s.peek() != '\n' && !s.isAtEnd() {
		s.advance()
	}
}

// scanBlockComment consumes up to and including the closing ###.
func (s *Scanner) scanBlockComment() {
	for !s.isAtEnd() {
		if s.peek() == '#' && s.peekNext() == '#' && s.peekAt(2) == '#' {
			s.advance()
			s.advance()
			s.advance()
			return
		}
		s.advance()
	}
	s.reportError(errors.UnterminatedComment(s.span()))
}

func (s *Scanner) scanDefault(c byte) {
	if isDigit(c) {
		s.scanNumber(c)
	} else if isAlpha(c) {
		s.scanIdentifier()
	} else if c >= utf8.RuneSelf {
		r, size := utf8.DecodeRuneInString(s.source[s.start:])
		// one column and one error for the whole character
		s.current += size - 1
		s.reportError(errors.UnexpectedCharacter(r, s.span()))
	} else {
		s.reportError(errors.UnexpectedCharacter(rune(c), s.span()))
	}
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	if c == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return c
}

func (s *Scanner) matchNext(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) peek() byte {
	return s.peekAt(0)
}

func (s *Scanner) peekNext() byte {
	return s.peekAt(1)
}

func (s *Scanner) peekAt(n int) byte {
	if s.current+n >= len(s.source) {
		return 0
	}
	return s.source[s.current+n]
}

func (s *Scanner) addToken(tokenType TokenType) {
	s.addLiteral(tokenType, nil)
}

// follows reports whether the last token scanned has type t.
func (s *Scanner) follows(t TokenType) bool {
	return len(s.tokens) > 0 && s.tokens[len(s.tokens)-1].Type == t
}

func (s *Scanner) addLiteral(tokenType TokenType, literal any) {
	s.tokens = append(s.tokens, Token{
		Type:    tokenType,
		Lexeme:  s.source[s.start:s.current],
		Literal: literal,
		Pos:     s.position(s.start, s.startLine, s.startColumn),
		End:     s.position(s.current, s.line, s.column),
	})
}

func (s *Scanner) position(offset, line, column int) ast.Position {
	return ast.Position{Filename: s.file, Offset: offset, Line: line, Column: column}
}

func (s *Scanner) span() errors.Span {
	return errors.SpanFrom(s.position(s.start, s.startLine, s.startColumn), s.position(s.current, s.line, s.column))
}

func (s *Scanner) reportError(err *errors.CompilerError) {
	s.errors = append(s.errors, err)
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

// Helper functions.

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') ||
		('a' <= c && c <= 'f') ||
		('A' <= c && c <= 'F')
}

func isDigitIn(c byte, base int) bool {
	switch base {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return '0' <= c && c <= '7'
	case 16:
		return isHexDigit(c)
	}
	return isDigit(c)
}

func (s *Scanner) scanIdentifier() {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	s.addToken(lookupIdentifier(s.source[s.start:s.current]))
}

func (s *Scanner) scanNumber(first byte) {
	if first == '0' {
		base := 0
		switch s.peek() {
		case 'x', 'X':
			base = 16
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		}
		if base != 0 {
			s.advance()
			s.scanBasedInteger(base)
			return
		}
	}

	for isDigit(s.peek()) || s.peek() == '_' {
		s.advance()
	}

	isFloat := false
	if s.peek() == '.' && isDigit(s.peekNext()) {
		isFloat = true
		s.advance()
		for isDigit(s.peek()) || s.peek() == '_' {
			s.advance()
		}
	}
	if s.peek() == 'e' || s.peek() == 'E' {
		next := s.peekNext()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(s.peekAt(2))) {
			isFloat = true
			s.advance()
			if next == '+' || next == '-' {
				s.advance()
			}
			for isDigit(s.peek()) {
				s.advance()
			}
		}
	}

	lexeme := s.source[s.start:s.current]
	clean := strings.ReplaceAll(lexeme, "_", "")
	if strings.HasSuffix(lexeme, "_") {
		s.reportError(errors.InvalidNumber(lexeme, s.span()))
		return
	}

	if isFloat {
		value, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			s.reportError(errors.InvalidNumber(lexeme, s.span()))
			return
		}
		s.addLiteral(FLOAT, value)
		return
	}

	value, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		// 2^63 after a minus wraps to math.MinInt64, which negates to itself.
		if clean == "9223372036854775808" && s.follows(MINUS) {
			s.addLiteral(INT, int64(math.MinInt64))
			return
		}
		s.reportError(errors.InvalidNumber(lexeme, s.span()))
		return
	}
	s.addLiteral(INT, value)
}

func (s *Scanner) scanBasedInteger(base int) {
	for isDigitIn(s.peek(), base) || s.peek() == '_' {
		s.advance()
	}
	// trailing letters or digits of another base make the literal invalid
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}

	lexeme := s.source[s.start:s.current]
	digits := strings.ReplaceAll(lexeme[2:], "_", "")
	if digits == "" {
		s.reportError(errors.InvalidNumber(lexeme, s.span()))
		return
	}
	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		s.reportError(errors.InvalidNumber(lexeme, s.span()))
		return
	}
	s.addLiteral(INT, int64(value))
}

// readEscape decodes the character after a backslash. Unknown escapes stand
// for the escaped character itself.
func (s *Scanner) readEscape() byte {
	c := s.advance()
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return c
}

func (s *Scanner) scanString() {
	var value strings.Builder
	for s.peek() != '"' && !s.isAtEnd() {
		c := s.advance()
		if c == '\\' && !s.isAtEnd() {
			c = s.readEscape()
		}
		value.WriteByte(c)
	}
	if s.isAtEnd() {
		s.reportError(errors.UnterminatedString(s.span()))
		return
	}
	s.advance() // closing quote
	s.addLiteral(STRING, value.String())
}

func (s *Scanner) scanChar() {
	if s.peek() == '\'' || s.isAtEnd() {
		if !s.isAtEnd() {
			s.advance()
		}
		s.reportError(errors.InvalidChar("empty character literal", s.span()))
		return
	}

	c := s.advance()
	if c == '\\' && !s.isAtEnd() {
		c = s.readEscape()
	}

	if !s.matchNext('\'') {
		// skip to the closing quote on this line so scanning can resync
		for !s.isAtEnd() && s.peek() != '\'' && s.peek() != '\n' {
			s.advance()
		}
		s.matchNext('\'')
		s.reportError(errors.InvalidChar(
			fmt.Sprintf("invalid character literal %s", s.source[s.start:s.current]), s.span()))
		return
	}
	s.addLiteral(CHAR, c)
}
