package stdlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/lexer"
	"ember/internal/parser"
)

func TestGetStandardModules(t *testing.T) {
	modules := GetStandardModules()

	io := modules["std::io"]
	require.NotNil(t, io, "std::io module should exist")
	assert.Equal(t, "io", io.Name)
	assert.Equal(t, "std::io", io.Path)

	printf := io.Functions["printf"]
	assert.True(t, printf.Variadic)
	assert.Equal(t, "int", printf.ReturnType.Name)
	require.Len(t, printf.Parameters, 1)
	assert.Equal(t, "format", printf.Parameters[0].Name)

	free := modules["std::mem"].Functions["free"]
	assert.Nil(t, free.ReturnType) // void function
	assert.Equal(t, "*char", free.Parameters[0].Type.String())
}

func TestIsKnownModule(t *testing.T) {
	assert.True(t, IsKnownModule("std::io"), "std::io should be known")
	assert.True(t, IsKnownModule("std::math"), "std::math should be known")
	assert.False(t, IsKnownModule("./io.em"), "file paths are not standard modules")
	assert.Nil(t, GetModuleDefinition("std::unknown"))
}

func TestSource(t *testing.T) {
	src := GetModuleDefinition("std::process").Source()
	assert.Equal(t, "export extern frame abort();\nexport extern frame exit(code: int);\n", src)

	assert.Contains(t, GetModuleDefinition("std::io").Source(),
		"export extern frame printf(format: string, ...) ret int;\n")
}

// Every module must be valid ember.
func TestSourcesParse(t *testing.T) {
	for path, m := range GetStandardModules() {
		tokens, lexErrors := lexer.ScanTokens(m.Source(), path)
		require.Empty(t, lexErrors, path)
		prog, err := parser.Parse(path, tokens)
		require.NoError(t, err, path)
		assert.Len(t, prog.Body, len(m.Functions), path)
	}
}
