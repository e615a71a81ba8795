package errors

import "fmt"

// Lexical errors. The scanner collects these and keeps going.

func UnexpectedCharacter(ch rune, span Span) *CompilerError {
	return New(ErrorUnexpectedCharacter, fmt.Sprintf("unexpected character '%c'", ch), span).Build()
}

func UnterminatedString(span Span) *CompilerError {
	return New(ErrorUnterminatedString, "unterminated string literal", span).
		WithHint("add a closing '\"'").
		Build()
}

func UnterminatedComment(span Span) *CompilerError {
	return New(ErrorUnterminatedComment, "unterminated block comment", span).
		WithHint("block comments are closed with '###'").
		Build()
}

func InvalidNumber(lexeme string, span Span) *CompilerError {
	return New(ErrorInvalidNumber, fmt.Sprintf("invalid number literal '%s'", lexeme), span).Build()
}

func InvalidChar(message string, span Span) *CompilerError {
	return New(ErrorInvalidChar, message, span).
		WithHint("character literals hold exactly one character, such as 'a' or '\\n'").
		Build()
}

// Parser errors. The first one stops the parse.

// UnexpectedToken reports a token that cannot appear where it was found.
func UnexpectedToken(found, context string, span Span) *CompilerError {
	return New(ErrorUnexpectedToken, fmt.Sprintf("unexpected '%s' %s", found, context), span).Build()
}

// ExpectedToken reports a missing required token.
func ExpectedToken(expected, found string, span Span) *CompilerError {
	return New(ErrorExpectedToken, fmt.Sprintf("expected %s, found '%s'", expected, found), span).
		WithHint(fmt.Sprintf("insert %s here", expected)).
		Build()
}

// InvalidTypeSyntax reports a malformed type expression.
func InvalidTypeSyntax(message string, span Span) *CompilerError {
	return New(ErrorInvalidTypeSyntax, message, span).Build()
}

// InvalidExpression reports an expression used where it is not allowed.
func InvalidExpression(message string, span Span) *CompilerError {
	return New(ErrorInvalidExpression, message, span).Build()
}
