package errors

import (
	"strings"
	"testing"

	"ember/internal/ast"

	"github.com/stretchr/testify/assert"
)

func TestErrorReporter(t *testing.T) {
	source := `frame main() ret int {
    local x = unknownVar;
    return x;
}`

	reporter := NewErrorReporter("test.em", source)

	span := Span{File: "test.em", StartLine: 2, StartColumn: 15, EndLine: 2, EndColumn: 25}
	err := UndefinedVariable("unknownVar", span, []string{"knownVar", "anotherVar"})
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUndefinedVariable+"]")
	assert.Contains(t, formatted, "undefined variable")
	assert.Contains(t, formatted, "unknownVar")
	assert.Contains(t, formatted, "test.em:2:15")
	assert.Contains(t, formatted, "did you mean")
	assert.Contains(t, formatted, "knownVar")
	assert.Contains(t, formatted, "^^^^^^^^^^")
}

func TestCompilerErrorImplementsError(t *testing.T) {
	var err error = TypeMismatch("int", "string", Span{File: "a.em", StartLine: 3, StartColumn: 7})
	assert.Equal(t, "a.em:3:7: error[E0003]: type mismatch: expected int, found string", err.Error())
}

func TestSpanOf(t *testing.T) {
	node := &ast.Identifier{Loc: ast.Loc{
		Pos:    ast.Position{Filename: "f.em", Line: 4, Column: 2},
		EndPos: ast.Position{Filename: "f.em", Line: 4, Column: 6},
	}}
	span := SpanOf(node)
	assert.Equal(t, Span{File: "f.em", StartLine: 4, StartColumn: 2, EndLine: 4, EndColumn: 6}, span)
	assert.Equal(t, 4, span.Length())

	multi := Span{StartLine: 1, StartColumn: 5, EndLine: 3, EndColumn: 1}
	assert.Equal(t, 1, multi.Length())
}

func TestBuilder(t *testing.T) {
	err := New(ErrorInvalidCast, "bad cast", Span{}).
		WithHint("hint").
		WithNote("note one").
		WithSuggestion("try this").
		Build()

	assert.Equal(t, Error, err.Level)
	assert.Equal(t, "hint", err.Hint)
	assert.Equal(t, []string{"note one"}, err.Notes)
	assert.Equal(t, []string{"try this"}, err.Suggestions)

	warn := NewWarning(ErrorInternal, "w", Span{}).Build()
	assert.Equal(t, Warning, warn.Level)
}

func TestUndefinedVariableSuggestions(t *testing.T) {
	err := UndefinedVariable("coutn", Span{}, []string{"count", "total"})
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0], "did you mean 'count'")

	err = UndefinedVariable("xyz", Span{}, nil)
	assert.Empty(t, err.Suggestions)
	assert.Contains(t, err.Hint, "local")
}

func TestFieldNotFoundError(t *testing.T) {
	err := FieldNotFound("Point", "z", Span{}, []string{"x", "y"})
	assert.Equal(t, ErrorFieldNotFound, err.Code)
	assert.Contains(t, err.Message, "struct 'Point' has no member 'z'")
	assert.Len(t, err.Notes, 1)
	assert.Contains(t, err.Notes[0], "x, y")
}

func TestFlowErrors(t *testing.T) {
	err := MissingReturn("f", "int", Span{})
	assert.Equal(t, ErrorMissingReturn, err.Code)
	assert.Contains(t, err.Message, "might not return a value")

	err = LoopControl("break", Span{})
	assert.Equal(t, "break outside of loop", err.Message)
}

func TestSimilarNames(t *testing.T) {
	similar := SimilarNames("lenght", []string{"length", "width", "length", "lenght"})
	assert.Equal(t, []string{"length"}, similar)
	assert.Empty(t, SimilarNames("a", []string{"bb"}))
}

func TestErrorCategories(t *testing.T) {
	tests := map[string]string{
		ErrorTypeMismatch:       "Semantic Analysis",
		ErrorExpectedToken:      "Parser",
		ErrorGenericArity:       "Type System",
		ErrorMissingExport:      "Import/Module",
		ErrorMissingReturn:      "Flow Control",
		ErrorUnterminatedString: "Lexical",
		ErrorInternal:           "Internal",
	}
	for code, category := range tests {
		assert.Equal(t, category, GetErrorCategory(code), code)
		assert.NotEqual(t, "Unknown error code", GetErrorDescription(code), code)
	}
}

func TestFormatAll(t *testing.T) {
	reporter := NewErrorReporter("x.em", "a\nb\n")
	out := reporter.FormatAll([]*CompilerError{
		UnexpectedCharacter('$', Span{StartLine: 1, StartColumn: 1}),
		UnterminatedString(Span{StartLine: 2, StartColumn: 1}),
	})
	assert.Equal(t, 2, strings.Count(out, "error["))
}
