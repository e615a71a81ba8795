package lexer

import (
	"math"
	"strings"
	"testing"

	"ember/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(t *testing.T, input string) []Token {
	t.Helper()
	tokens, errs := ScanTokens(input, "test.em")
	require.Empty(t, errs)
	return tokens
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := "frame static ret return local struct type import export extern from asm if else " +
		"loop break continue try catch throw switch case default match cast sizeof true false nullptr this customIdent _"
	expected := []TokenType{
		FRAME, STATIC, RET, RETURN, LOCAL, STRUCT, TYPE, IMPORT, EXPORT, EXTERN, FROM, ASM, IF, ELSE,
		LOOP, BREAK, CONTINUE, TRY, CATCH, THROW, SWITCH, CASE, DEFAULT, MATCH, CAST, SIZEOF,
		TRUE, FALSE, NULLPTR, THIS, IDENTIFIER, IDENTIFIER, EOF,
	}

	tokens := scan(t, input)

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, tokens[i].Type)
		}
	}
}

func TestOperatorsAndBrackets(t *testing.T) {
	input := `(){}[],.;: + ++ += - -- -= * *= / /= % %= ! != = == => < <= << > >= >> && & || | ^ ~ ? ...`
	expected := []TokenType{
		LEFT_PAREN, RIGHT_PAREN, LEFT_BRACE, RIGHT_BRACE, LEFT_BRACKET, RIGHT_BRACKET,
		COMMA, DOT, SEMICOLON, COLON,
		PLUS, INCREMENT, PLUS_EQUAL, MINUS, DECREMENT, MINUS_EQUAL, STAR, STAR_EQUAL,
		SLASH, SLASH_EQUAL, PERCENT, PERCENT_EQUAL, BANG, BANG_EQUAL, EQUAL, EQUAL_EQUAL, FAT_ARROW,
		LESS, LESS_EQUAL, SHIFT_LEFT, GREATER, GREATER_EQUAL, SHIFT_RIGHT,
		AND, AMPERSAND, OR, PIPE, CARET, TILDE, QUESTION, ELLIPSIS, EOF,
	}

	tokens := scan(t, input)

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, tokens[i].Type)
		}
	}
}

func TestShiftAssignIsNotOneToken(t *testing.T) {
	tokens := scan(t, "a >>= b")
	assert.Equal(t, []TokenType{IDENTIFIER, SHIFT_RIGHT, EQUAL, IDENTIFIER, EOF}, types(tokens))
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		typ     TokenType
		literal any
	}{
		{"42", INT, int64(42)},
		{"0", INT, int64(0)},
		{"1_000_000", INT, int64(1000000)},
		{"0x1F", INT, int64(31)},
		{"0xff_ff", INT, int64(65535)},
		{"0b1010", INT, int64(10)},
		{"0o17", INT, int64(15)},
		{"3.14", FLOAT, 3.14},
		{"1.5e3", FLOAT, 1500.0},
		{"2e-2", FLOAT, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := scan(t, tt.input)
			require.Len(t, tokens, 2)
			assert.Equal(t, tt.typ, tokens[0].Type)
			assert.Equal(t, tt.literal, tokens[0].Literal)
			assert.Equal(t, tt.input, tokens[0].Lexeme)
		})
	}
}

func TestMemberAccessOnNumberIsNotFloat(t *testing.T) {
	tokens := scan(t, "1.x")
	assert.Equal(t, []TokenType{INT, DOT, IDENTIFIER, EOF}, types(tokens))
}

func TestInvalidNumbers(t *testing.T) {
	for _, input := range []string{"0x", "0b102", "99999999999999999999", "1_"} {
		t.Run(input, func(t *testing.T) {
			_, errs := ScanTokens(input, "test.em")
			require.NotEmpty(t, errs)
			assert.Equal(t, errors.ErrorInvalidNumber, errs[0].Code)
		})
	}
}

func TestMostNegativeInteger(t *testing.T) {
	tokens := scan(t, "-9223372036854775808")
	assert.Equal(t, []TokenType{MINUS, INT, EOF}, types(tokens))
	assert.Equal(t, int64(math.MinInt64), tokens[1].Literal)

	t.Run("without minus", func(t *testing.T) {
		_, errs := ScanTokens("9223372036854775808", "test.em")
		require.Len(t, errs, 1)
		assert.Equal(t, errors.ErrorInvalidNumber, errs[0].Code)
	})

	t.Run("beyond the range", func(t *testing.T) {
		_, errs := ScanTokens("-9223372036854775809", "test.em")
		require.Len(t, errs, 1)
		assert.Equal(t, errors.ErrorInvalidNumber, errs[0].Code)
	})
}

func TestStrings(t *testing.T) {
	tokens := scan(t, `"hello" "a\tb\n\"q\"\\\0" "\z"`)

	assert.Equal(t, STRING, tokens[0].Type)
	assert.Equal(t, `"hello"`, tokens[0].Lexeme)
	assert.Equal(t, "hello", tokens[0].Literal)

	assert.Equal(t, "a\tb\n\"q\"\\\x00", tokens[1].Literal)
	assert.Equal(t, "z", tokens[2].Literal, "unknown escapes pass the character through")
}

func TestChars(t *testing.T) {
	tokens := scan(t, `'a' '\n' '\'' '\\'`)
	assert.Equal(t, []any{byte('a'), byte('\n'), byte('\''), byte('\\')},
		[]any{tokens[0].Literal, tokens[1].Literal, tokens[2].Literal, tokens[3].Literal})
	for _, tok := range tokens[:4] {
		assert.Equal(t, CHAR, tok.Type)
	}
}

func TestComments(t *testing.T) {
	input := "a // line comment\nb # hash comment\n### block\ncomment ### c"
	tokens := scan(t, input)
	assert.Equal(t, []TokenType{IDENTIFIER, IDENTIFIER, IDENTIFIER, EOF}, types(tokens))
	assert.Equal(t, 4, tokens[2].Pos.Line, "lines inside block comments are counted")
}

func TestPositions(t *testing.T) {
	input := "frame main() {\n  local s = \"x\ny\";\n  ret\n}"
	tokens := scan(t, input)

	assert.Equal(t, 1, tokens[0].Pos.Line)
	assert.Equal(t, 1, tokens[0].Pos.Column)
	assert.Equal(t, 7, tokens[1].Pos.Column)
	assert.Equal(t, "test.em", tokens[1].Pos.Filename)

	var str, ret Token
	for _, tok := range tokens {
		switch tok.Type {
		case STRING:
			str = tok
		case RET:
			ret = tok
		}
	}
	assert.Equal(t, 2, str.Pos.Line)
	assert.Equal(t, 13, str.Pos.Column)
	assert.Equal(t, 3, str.End.Line)
	assert.Equal(t, 4, ret.Pos.Line, "newlines inside strings advance the line counter")
	assert.Equal(t, 3, ret.Pos.Column)
}

func TestLexemesReproduceSource(t *testing.T) {
	input := `frame add(a: int, b: int) ret int { return a + b * 0x10; } local s: string = "hi";`
	tokens := scan(t, input)

	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Lexeme)
	}
	assert.Equal(t, strings.ReplaceAll(input, " ", ""), strings.ReplaceAll(b.String(), " ", ""))
	assert.Equal(t, EOF, tokens[len(tokens)-1].Type)
}

func TestErrorsDoNotStopScanning(t *testing.T) {
	tokens, errs := ScanTokens("a $ b @ c \"open", "test.em")

	require.Len(t, errs, 3)
	assert.Equal(t, errors.ErrorUnexpectedCharacter, errs[0].Code)
	assert.Equal(t, 3, errs[0].Span.StartColumn)
	assert.Equal(t, errors.ErrorUnexpectedCharacter, errs[1].Code)
	assert.Equal(t, errors.ErrorUnterminatedString, errs[2].Code)

	assert.Equal(t, []TokenType{IDENTIFIER, IDENTIFIER, IDENTIFIER, EOF}, types(tokens))
}

func TestNonASCIICharacterIsOneError(t *testing.T) {
	tokens, errs := ScanTokens("a é b 😀", "test.em")

	require.Len(t, errs, 2)
	assert.Equal(t, errors.ErrorUnexpectedCharacter, errs[0].Code)
	assert.Contains(t, errs[0].Message, "'é'")
	assert.Equal(t, 3, errs[0].Span.StartColumn)
	assert.Contains(t, errs[1].Message, "'😀'")
	assert.Equal(t, 7, errs[1].Span.StartColumn)

	assert.Equal(t, []TokenType{IDENTIFIER, IDENTIFIER, EOF}, types(tokens))
	assert.Equal(t, 5, tokens[1].Pos.Column)
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, errs := ScanTokens("a ### never closed", "test.em")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorUnterminatedComment, errs[0].Code)
}

func TestInvalidCharLiterals(t *testing.T) {
	tokens, errs := ScanTokens("'' 'ab' x", "test.em")
	require.Len(t, errs, 2)
	assert.Equal(t, errors.ErrorInvalidChar, errs[0].Code)
	assert.Equal(t, errors.ErrorInvalidChar, errs[1].Code)
	assert.Equal(t, []TokenType{IDENTIFIER, EOF}, types(tokens))
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "frame", FRAME.String())
	assert.Equal(t, ">>", SHIFT_RIGHT.String())
	assert.Equal(t, "IDENTIFIER", IDENTIFIER.String())
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}
