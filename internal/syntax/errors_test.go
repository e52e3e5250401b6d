package syntax_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/spindle/internal/syntax"
)

func TestErrorMessage(t *testing.T) {
	err := syntax.NewError("Rules can't end in commas.", 7)
	assert.Equal(t, "Rules can't end in commas. (line 7)", err.Error())

	err.Filename = "main.spin"
	assert.Equal(t, "Rules can't end in commas. (main.spin, line 7)", err.Error())
}

func TestErrorfFormats(t *testing.T) {
	err := syntax.Errorf(3, "Invalid variable: %q.", "!1bad")
	assert.Contains(t, err.Error(), `Invalid variable: "!1bad".`)
	assert.Equal(t, 3, err.Line)
}

func TestSentinel(t *testing.T) {
	err := syntax.NewError("boom", 1)
	assert.True(t, errors.Is(err, syntax.ErrSyntax))
}

func TestWrapForeignError(t *testing.T) {
	wrapped := syntax.Wrap(errors.New("file unreadable"), 12)
	assert.Equal(t, 12, wrapped.Line)
	assert.Contains(t, wrapped.Error(), "file unreadable")
	assert.True(t, errors.Is(wrapped, syntax.ErrSyntax))
}

func TestWrapPreservesExistingLine(t *testing.T) {
	inner := syntax.NewError("deep", 4)
	wrapped := syntax.Wrap(inner, 9)
	require.Equal(t, 4, wrapped.Line, "an already-attributed line is kept")
}
