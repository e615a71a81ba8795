package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/errors"
)

// TestStandardImportTypos checks that misspelled names imported from a
// standard module come with a suggestion
func TestStandardImportTypos(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		code       string
		suggestion string
	}{
		{
			name:       "misspelled function",
			src:        `import { pritnf } from "std::io";`,
			code:       errors.ErrorMissingExport,
			suggestion: "did you mean 'printf'?",
		},
		{
			name:       "several candidates",
			src:        `import { putchs } from "std::io";`,
			code:       errors.ErrorMissingExport,
			suggestion: "did you mean one of: 'putchar', 'puts'?",
		},
		{
			name: "unknown standard module",
			src:  `import { puts } from "std::iox";`,
			code: errors.ErrorModuleNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := check(t, tt.src)
			ce := requireCode(t, err, tt.code)
			if tt.suggestion != "" {
				require.NotEmpty(t, ce.Suggestions)
				assert.Equal(t, tt.suggestion, ce.Suggestions[0])
			}
		})
	}
}

func TestStandardImportsResolveWithoutFiles(t *testing.T) {
	read := func(path string) ([]byte, error) {
		t.Fatalf("unexpected read of %s", path)
		return nil, nil
	}
	prog := parse(t, "/virtual/main.em", `import { sqrt } from "std::math";
frame hyp(a: float, b: float) ret float { return sqrt(a * a + b * b); }`)

	c := NewChecker(WithReadFile(read))
	require.NoError(t, c.CheckProgram(prog))

	modules := c.Modules()
	require.Len(t, modules, 2)
	assert.Equal(t, "std::math", modules[0].Path)
	assert.Equal(t, "std::math", ImportedPath("/virtual/main.em", "std::math"))
}
