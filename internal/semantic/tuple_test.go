package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/ast"
	"ember/internal/errors"
)

// TestTupleTypeSystem tests tuple type inference, returns and destructuring
func TestTupleTypeSystem(t *testing.T) {

	t.Run("InfersTupleElementTypes", func(t *testing.T) {
		prog, _ := checkOK(t, `frame pair() ret (int, bool) { return (256, true); }
frame main() { local p = pair(); }`)

		var decl *ast.VariableDecl
		ast.Inspect(prog, func(n ast.Node) bool {
			if v, ok := n.(*ast.VariableDecl); ok {
				decl = v
			}
			return true
		})
		require.NotNil(t, decl)
		assert.Equal(t, "(int, bool)", ast.TypeString(decl.Type))
	})

	t.Run("DetectsTupleElementTypeMismatch", func(t *testing.T) {
		_, _, err := check(t, `frame pair() ret (int, bool) { return (true, 42); }`)
		ce := requireCode(t, err, errors.ErrorInvalidReturnType)
		assert.Contains(t, ce.Message, "(int, bool)")
	})

	t.Run("DestructuresIntoLocals", func(t *testing.T) {
		checkOK(t, `frame main() ret int {
    local (a, b) = (1, 2.5);
    local f: float = b;
    return a;
}`)
	})

	t.Run("DestructureArityMustMatch", func(t *testing.T) {
		_, _, err := check(t, `frame main() { local (a, b, c) = (1, 2); }`)
		ce := requireCode(t, err, errors.ErrorTypeMismatch)
		assert.Contains(t, ce.Message, "cannot destructure 2 values into 3 names")
	})

	t.Run("OnlyTuplesDestructure", func(t *testing.T) {
		_, _, err := check(t, `frame main() { local (a, b) = 1; }`)
		ce := requireCode(t, err, errors.ErrorTypeMismatch)
		assert.Equal(t, "only tuples can be destructured", ce.Hint)
	})

	t.Run("DestructuredNamesShareScope", func(t *testing.T) {
		_, _, err := check(t, `frame main() { local a = 0; local (a, b) = (1, 2); }`)
		requireCode(t, err, errors.ErrorDuplicateDeclaration)
	})
}
