package lexer

import (
	"fmt"

	"ember/internal/ast"
)

type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers + literals
	IDENTIFIER
	INT
	FLOAT
	STRING
	CHAR

	// Keywords
	FRAME
	STATIC
	RET
	RETURN
	LOCAL
	STRUCT
	TYPE
	IMPORT
	EXPORT
	EXTERN
	FROM
	ASM
	IF
	ELSE
	LOOP
	BREAK
	CONTINUE
	TRY
	CATCH
	THROW
	SWITCH
	CASE
	DEFAULT
	MATCH
	CAST
	SIZEOF
	TRUE
	FALSE
	NULLPTR
	THIS

	// Operators
	PLUS
	INCREMENT
	MINUS
	DECREMENT
	STAR
	SLASH
	PERCENT
	BANG
	BANG_EQUAL
	EQUAL
	EQUAL_EQUAL
	FAT_ARROW
	LESS
	LESS_EQUAL
	SHIFT_LEFT
	GREATER
	GREATER_EQUAL
	SHIFT_RIGHT
	AND
	AMPERSAND
	OR
	PIPE
	CARET
	TILDE
	QUESTION

	// Assignment operators
	PLUS_EQUAL
	MINUS_EQUAL
	STAR_EQUAL
	SLASH_EQUAL
	PERCENT_EQUAL

	// Separators
	COMMA
	DOT
	ELLIPSIS
	SEMICOLON
	COLON

	// Brackets
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	LEFT_BRACKET
	RIGHT_BRACKET
)

var tokenNames = map[TokenType]string{
	ILLEGAL:       "ILLEGAL",
	EOF:           "EOF",
	IDENTIFIER:    "IDENTIFIER",
	INT:           "INT",
	FLOAT:         "FLOAT",
	STRING:        "STRING",
	CHAR:          "CHAR",
	PLUS:          "+",
	INCREMENT:     "++",
	MINUS:         "-",
	DECREMENT:     "--",
	STAR:          "*",
	SLASH:         "/",
	PERCENT:       "%",
	BANG:          "!",
	BANG_EQUAL:    "!=",
	EQUAL:         "=",
	EQUAL_EQUAL:   "==",
	FAT_ARROW:     "=>",
	LESS:          "<",
	LESS_EQUAL:    "<=",
	SHIFT_LEFT:    "<<",
	GREATER:       ">",
	GREATER_EQUAL: ">=",
	SHIFT_RIGHT:   ">>",
	AND:           "&&",
	AMPERSAND:     "&",
	OR:            "||",
	PIPE:          "|",
	CARET:         "^",
	TILDE:         "~",
	QUESTION:      "?",
	PLUS_EQUAL:    "+=",
	MINUS_EQUAL:   "-=",
	STAR_EQUAL:    "*=",
	SLASH_EQUAL:   "/=",
	PERCENT_EQUAL: "%=",
	COMMA:         ",",
	DOT:           ".",
	ELLIPSIS:      "...",
	SEMICOLON:     ";",
	COLON:         ":",
	LEFT_PAREN:    "(",
	RIGHT_PAREN:   ")",
	LEFT_BRACE:    "{",
	RIGHT_BRACE:   "}",
	LEFT_BRACKET:  "[",
	RIGHT_BRACKET: "]",
}

func init() {
	for word, tt := range KEYWORDS {
		tokenNames[tt] = word
	}
}

// String returns the operator or keyword text for fixed tokens and the
// category name for the rest.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexeme. Literal is int64 for INT, float64 for FLOAT, the
// decoded text for STRING and a byte for CHAR. End is the position just past
// the lexeme.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Pos     ast.Position
	End     ast.Position
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of file"
	}
	return t.Lexeme
}
