package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/spindle/internal/ast"
	"bennypowers.dev/spindle/internal/config"
	"bennypowers.dev/spindle/internal/engine"
	"bennypowers.dev/spindle/internal/syntax"
)

func write(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestParseDefaults(t *testing.T) {
	root, err := engine.Parse("a\n  :color red\n", nil)
	require.NoError(t, err)
	require.Len(t, root.ChildNodes(), 1)
	require.NotNil(t, root.Options)
}

func TestParseFileSetsFilename(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "main.spin", "  broken\n")

	_, err := engine.ParseFile(path, nil)
	require.Error(t, err)

	var serr *syntax.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, path, serr.Filename)
}

func TestExpandImports(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "_colors.spin", "!red = #ff0000\n")
	write(t, dir, "base.spin", "@import colors\nb\n  :color !red\n")
	main := write(t, dir, "main.spin", "@import base\na\n  :margin 0\n")

	opts := config.New()
	opts.LoadPaths = []string{dir}
	root, err := engine.ParseFile(main, opts)
	require.NoError(t, err)

	imp := root.ChildNodes()[0].(*ast.FileImport)
	assert.Nil(t, imp.Imported, "imports stay deferred until expansion")

	require.NoError(t, engine.ExpandImports(root, opts))
	require.NotNil(t, imp.Imported)

	nested := imp.Imported.ChildNodes()[0].(*ast.FileImport)
	require.NotNil(t, nested.Imported, "expansion recurses into imported documents")
	assert.IsType(t, &ast.VariableBinding{}, nested.Imported.ChildNodes()[0])
}

func TestExpandImportsDetectsCycles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.spin", "@import b.spin\n")
	write(t, dir, "b.spin", "@import a.spin\n")

	opts := config.New()
	opts.LoadPaths = []string{dir}
	root, err := engine.ParseFile(filepath.Join(dir, "a.spin"), opts)
	require.NoError(t, err)

	err = engine.ExpandImports(root, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Circular import")
}

func TestExpandImportsPropagatesParseErrors(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "bad.spin", "a\n  b\nc\n    d\n")
	main := write(t, dir, "main.spin", "@import bad\n")

	opts := config.New()
	opts.LoadPaths = []string{dir}
	root, err := engine.ParseFile(main, opts)
	require.NoError(t, err)

	err = engine.ExpandImports(root, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, syntax.ErrSyntax)
}
