package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/errors"
)

func TestCompileProducesVerifiedIR(t *testing.T) {
	r := Compile("add.em", `frame add(a: int, b: int) ret int { return a + b; }`, Options{
		TargetTriple: "x86_64-pc-linux-gnu",
		Verify:       true,
	})

	require.Empty(t, r.Errors)
	assert.True(t, r.OK())
	assert.Equal(t, StageDone, r.Stage)
	assert.NotEmpty(t, r.Tokens)
	require.NotNil(t, r.Program)
	assert.Contains(t, r.IR, `target triple = "x86_64-pc-linux-gnu"`)
	assert.Contains(t, r.IR, "define i64 @add(i64 %a, i64 %b) {")
	assert.Empty(t, r.Imports())
}

func TestCompileStopsAtFirstFailingStage(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		stage Stage
		code  string
	}{
		{"lexical", "frame main() { local s = \"open; }", StageLex, errors.ErrorUnterminatedString},
		{"syntax", "frame main( {}", StageParse, ""},
		{"semantic", `frame main() { local x: int = "a"; }`, StageCheck, errors.ErrorTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Compile("bad.em", tt.src, Options{Verify: true})
			assert.False(t, r.OK())
			assert.Equal(t, tt.stage, r.Stage, r.Stage.String())
			require.NotEmpty(t, r.Errors)
			if tt.code != "" {
				assert.Equal(t, tt.code, r.Errors[0].Code)
			}
			assert.Empty(t, r.IR)
		})
	}
}

func TestWarningsDoNotFail(t *testing.T) {
	r := Compile("warn.em", `frame f() ret int { return 1; local x = 2; }`, Options{})
	assert.True(t, r.OK())
	require.NotEmpty(t, r.Warnings)
	assert.Equal(t, errors.Warning, r.Warnings[0].Level)
}

func TestCompileFileWithImports(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.em")
	require.NoError(t, os.WriteFile(lib, []byte(`export frame twice(v: int) ret int { return v * 2; }`), 0o644))
	main := filepath.Join(dir, "main.em")
	require.NoError(t, os.WriteFile(main, []byte(`import { twice } from "./lib.em"; frame main() ret int { return twice(21); }`), 0o644))

	r, err := CompileFile(main, Options{Verify: true})
	require.NoError(t, err)
	require.Empty(t, r.Errors)

	assert.Contains(t, r.IR, "declare i64 @twice(i64)")
	assert.Equal(t, []string{lib}, r.Imports())
}

func TestCompileFileUsesReadFile(t *testing.T) {
	files := map[string]string{
		"/virtual/main.em": `import { one } from "./one.em"; frame main() ret int { return one(); }`,
		"/virtual/one.em":  `export frame one() ret int { return 1; }`,
	}
	read := func(path string) ([]byte, error) {
		src, ok := files[path]
		if !ok {
			return nil, os.ErrNotExist
		}
		return []byte(src), nil
	}

	r, err := CompileFile("/virtual/main.em", Options{ReadFile: read})
	require.NoError(t, err)
	require.Empty(t, r.Errors)
	assert.Contains(t, r.IR, "declare i64 @one()")

	_, err = CompileFile("/virtual/missing.em", Options{ReadFile: read})
	assert.Error(t, err)
}

func TestStandardModules(t *testing.T) {
	r := Compile("hello.em", `import { printf } from "std::io";
import { malloc, free } from "std::mem";
frame main() ret int {
    local buf: *char = malloc(16);
    printf("%d\n", 42);
    free(buf);
    return 0;
}`, Options{Verify: true})

	require.Empty(t, r.Errors)
	assert.Contains(t, r.IR, "declare i64 @printf(i8*, ...)")
	assert.Contains(t, r.IR, "declare i8* @malloc(i64)")
	assert.Contains(t, r.IR, "declare void @free(i8*)")
	assert.Equal(t, []string{"std::io", "std::mem"}, r.Imports())

	r = Compile("bad.em", `import { nope } from "std::io";`, Options{})
	require.NotEmpty(t, r.Errors)
	assert.Equal(t, StageCheck, r.Stage)
}
