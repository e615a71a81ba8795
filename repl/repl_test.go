package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKeepsOnlyCompilingEntries(t *testing.T) {
	s := &Session{}

	r, added := s.Eval("frame one() ret int { return 1; }")
	require.True(t, r.OK())
	require.Len(t, added, 1)

	r, added = s.Eval("frame two() ret int { return one() + undefined; }")
	assert.False(t, r.OK())
	assert.Nil(t, added)
	assert.Equal(t, "frame one() ret int { return 1; }", s.Source())

	r, added = s.Eval("frame two() ret int { return one() + 1; }")
	require.True(t, r.OK())
	require.Len(t, added, 1)
	assert.Contains(t, s.IR(), "define i64 @two()")

	s.Reset()
	assert.Empty(t, s.Source())
	assert.Empty(t, s.IR())
}

func TestStartReadsMultilineEntries(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		"frame add(a: int, b: int) ret int {",
		"    return a + b;",
		"}",
		":ir",
		":quit",
		"frame never() {}",
	}, "\n"))
	var out bytes.Buffer

	Start(in, &out)

	text := out.String()
	assert.Contains(t, text, CONTINUE)
	assert.Contains(t, text, "define i64 @add(i64 %a, i64 %b) {")
	assert.NotContains(t, text, "@never")
}

func TestStartReportsErrors(t *testing.T) {
	var out bytes.Buffer
	Start(strings.NewReader("frame f() { local x: int = \"s\"; }\n:source\n"), &out)

	text := out.String()
	assert.Contains(t, text, "E0003")
	assert.Contains(t, text, "<repl>:1:")
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 1, depth("frame f() {"))
	assert.Equal(t, 0, depth("frame f() { if (true) { } }"))
	assert.Equal(t, 0, depth(`frame f() { local s = "{"; }`))
}
