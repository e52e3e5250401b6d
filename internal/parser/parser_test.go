package parser_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/spindle/internal/ast"
	"bennypowers.dev/spindle/internal/config"
	"bennypowers.dev/spindle/internal/expr"
	"bennypowers.dev/spindle/internal/importer"
	"bennypowers.dev/spindle/internal/parser"
	"bennypowers.dev/spindle/internal/syntax"
)

func parse(t *testing.T, source string) *ast.Root {
	t.Helper()
	root, err := parser.New(nil).Parse(source)
	require.NoError(t, err)
	return root
}

func parseErr(t *testing.T, source string) *syntax.Error {
	t.Helper()
	_, err := parser.New(nil).Parse(source)
	require.Error(t, err)
	var serr *syntax.Error
	require.ErrorAs(t, err, &serr)
	return serr
}

// fakeResolver resolves import targets from a fixed table and fails
// everything else, so tests stay off the filesystem.
func fakeResolver(files map[string]string) parser.ImportResolver {
	return func(name string, searchDirs []string) (string, error) {
		if path, ok := files[name]; ok {
			return path, nil
		}
		return "", &importer.NotFoundError{Name: name}
	}
}

func TestParseRuleWithAttribute(t *testing.T) {
	root := parse(t, "a\n  :color red\n")

	require.Len(t, root.ChildNodes(), 1)
	rule, ok := root.ChildNodes()[0].(*ast.Rule)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, rule.Selectors)
	assert.Equal(t, 1, rule.Line())

	require.Len(t, rule.ChildNodes(), 1)
	attr, ok := rule.ChildNodes()[0].(*ast.Attribute)
	require.True(t, ok)
	assert.Equal(t, "color", attr.Name)
	assert.Equal(t, "red", attr.Value)
	assert.Nil(t, attr.Expr)
	assert.Equal(t, ast.AttributeOld, attr.Flavor)
}

func TestParseAttributeFlavors(t *testing.T) {
	root := parse(t, "a\n  :width = 5px + 2px\n  height: 10px\n  margin = !m\n")
	rule := root.ChildNodes()[0].(*ast.Rule)
	require.Len(t, rule.ChildNodes(), 3)

	width := rule.ChildNodes()[0].(*ast.Attribute)
	assert.Equal(t, ast.AttributeOld, width.Flavor)
	require.NotNil(t, width.Expr)
	_, ok := width.Expr.(*expr.BinaryOp)
	assert.True(t, ok)

	height := rule.ChildNodes()[1].(*ast.Attribute)
	assert.Equal(t, ast.AttributeNew, height.Flavor)
	assert.Equal(t, "10px", height.Value)

	margin := rule.ChildNodes()[2].(*ast.Attribute)
	assert.Equal(t, ast.AttributeNew, margin.Flavor)
	require.NotNil(t, margin.Expr)
}

// The attribute/rule precedence hangs on one lookahead: a colon
// followed by whitespace makes an attribute, a colon glued to the
// next word leaves a selector.
func TestAttributeRulePrecedence(t *testing.T) {
	root := parse(t, "a:hover\n  :color blue\n")
	_, ok := root.ChildNodes()[0].(*ast.Rule)
	assert.True(t, ok)

	root = parse(t, "a: hover\n")
	attr, ok := root.ChildNodes()[0].(*ast.Attribute)
	require.True(t, ok)
	assert.Equal(t, "a", attr.Name)
	assert.Equal(t, "hover", attr.Value)
}

func TestParseInvalidAttribute(t *testing.T) {
	serr := parseErr(t, "a\n  :color\n")
	assert.Equal(t, `Invalid attribute: ":color".`, serr.Message)
	assert.Equal(t, 2, serr.Line)
}

func TestPseudoElementEscape(t *testing.T) {
	root := parse(t, "::first-line\n  :color gray\n")
	rule, ok := root.ChildNodes()[0].(*ast.Rule)
	require.True(t, ok)
	assert.Equal(t, []string{"::first-line"}, rule.Selectors)
}

func TestEscapedLineIsVerbatimRule(t *testing.T) {
	root := parse(t, "\\:color red\n")
	rule, ok := root.ChildNodes()[0].(*ast.Rule)
	require.True(t, ok)
	assert.Equal(t, []string{":color red"}, rule.Selectors)
}

func TestParseVariableBindings(t *testing.T) {
	root := parse(t, "!width = 10px\n!depth ||= 2\n")

	first := root.ChildNodes()[0].(*ast.VariableBinding)
	assert.Equal(t, "width", first.Name)
	assert.False(t, first.Optional)
	require.IsType(t, &expr.Number{}, first.Expr)

	second := root.ChildNodes()[1].(*ast.VariableBinding)
	assert.Equal(t, "depth", second.Name)
	assert.True(t, second.Optional)
}

func TestParseInvalidVariable(t *testing.T) {
	serr := parseErr(t, "!2bad = 1\n")
	assert.Equal(t, `Invalid variable: "!2bad = 1".`, serr.Message)
}

func TestVariableChildrenForbidden(t *testing.T) {
	serr := parseErr(t, "!x = 1\n  a\n")
	assert.Equal(t, "Nothing may be nested beneath variable declarations.", serr.Message)

	// the children's own validity doesn't matter
	serr = parseErr(t, "!x = 1\n  :alsobroken\n")
	assert.Equal(t, "Nothing may be nested beneath variable declarations.", serr.Message)
}

func TestParseComments(t *testing.T) {
	root := parse(t, "// silent note\n/* loud note\na\n")
	require.Len(t, root.ChildNodes(), 3)

	silent := root.ChildNodes()[0].(*ast.Comment)
	assert.True(t, silent.Silent)
	assert.Equal(t, "silent note", silent.Text)

	loud := root.ChildNodes()[1].(*ast.Comment)
	assert.False(t, loud.Silent)
	assert.Equal(t, "loud note", loud.Text)
}

func TestCommentChildrenBecomeText(t *testing.T) {
	root := parse(t, "// first\n  second\n  third\n")
	comment := root.ChildNodes()[0].(*ast.Comment)
	assert.Equal(t, "first\nsecond\nthird", comment.Text)
	assert.Empty(t, comment.ChildNodes())
}

func TestSlashWithoutCommentMarkerIsRule(t *testing.T) {
	root := parse(t, "/deep selector\n")
	_, ok := root.ChildNodes()[0].(*ast.Rule)
	assert.True(t, ok)
}

func TestRuleContinuationMerges(t *testing.T) {
	root := parse(t, "a,\nb\n  :c d\n")

	require.Len(t, root.ChildNodes(), 1)
	rule := root.ChildNodes()[0].(*ast.Rule)
	assert.Equal(t, []string{"a", "b"}, rule.Selectors)
	assert.False(t, rule.Continued)
	require.Len(t, rule.ChildNodes(), 1)
	assert.IsType(t, &ast.Attribute{}, rule.ChildNodes()[0])
}

func TestRuleContinuationUnionsSelectors(t *testing.T) {
	root := parse(t, "a, b,\nb, c\n")
	rule := root.ChildNodes()[0].(*ast.Rule)
	assert.Equal(t, []string{"a", "b", "c"}, rule.Selectors)
}

func TestRuleContinuationErrors(t *testing.T) {
	cases := []string{
		"a,\n",             // dangling at end of siblings
		"a,\n!x = 1\n",     // non-rule sibling while accumulating
		"a,\n  :c d\nb\n",  // accumulating rule may not have children
		"a,\nb,\nc,\n",     // never closed
	}
	for _, source := range cases {
		serr := parseErr(t, source)
		assert.Equal(t, "Rules can't end in commas.", serr.Message, "source %q", source)
	}
}

func TestParseMixinDefinition(t *testing.T) {
	root := parse(t, "=foo(!a, !b = 2)\n  width: !a\n")

	require.Len(t, root.ChildNodes(), 1)
	def := root.ChildNodes()[0].(*ast.MixinDefinition)
	assert.Equal(t, "foo", def.Name)
	require.Len(t, def.Args, 2)
	assert.Equal(t, "a", def.Args[0].Name)
	assert.Nil(t, def.Args[0].Default)
	assert.Equal(t, "b", def.Args[1].Name)
	require.IsType(t, &expr.Number{}, def.Args[1].Default)
	require.Len(t, def.ChildNodes(), 1)
}

func TestParseMixinDefinitionNoArgs(t *testing.T) {
	root := parse(t, "=reset\n  :margin 0\n")
	def := root.ChildNodes()[0].(*ast.MixinDefinition)
	assert.Equal(t, "reset", def.Name)
	assert.Empty(t, def.Args)
}

func TestMixinDefinitionErrors(t *testing.T) {
	cases := map[string]string{
		"=\n":                 `Invalid mixin "".`,
		"=foo(!a = 1, !b)\n":  "Required arguments must not follow optional arguments.",
		"=foo(a)\n":           `Mixin argument "a" must begin with an exclamation point (!).`,
		"=foo(!a,,!b)\n":      "Mixin arguments can't be empty.",
		"=foo(!9)\n":          `Invalid variable: "!9".`,
	}
	for source, want := range cases {
		serr := parseErr(t, source)
		assert.Equal(t, want, serr.Message, "source %q", source)
	}
}

func TestMixinDefinitionAllowsTrailingComma(t *testing.T) {
	root := parse(t, "=foo(!a,)\n")
	def := root.ChildNodes()[0].(*ast.MixinDefinition)
	require.Len(t, def.Args, 1)
}

func TestMixinDefinitionRootOnly(t *testing.T) {
	serr := parseErr(t, "a\n  =foo\n")
	assert.Equal(t, "Mixins may only be defined at the root of a document.", serr.Message)
}

func TestParseMixinInclude(t *testing.T) {
	root := parse(t, "a\n  +foo(1px, !b + 2)\n")
	rule := root.ChildNodes()[0].(*ast.Rule)
	inc := rule.ChildNodes()[0].(*ast.MixinInclude)
	assert.Equal(t, "foo", inc.Name)
	require.Len(t, inc.Args, 2)
	assert.IsType(t, &expr.Number{}, inc.Args[0])
	assert.IsType(t, &expr.BinaryOp{}, inc.Args[1])
}

func TestBarePlusIsRule(t *testing.T) {
	root := parse(t, "+\n  :a b\n")
	rule, ok := root.ChildNodes()[0].(*ast.Rule)
	require.True(t, ok)
	assert.Equal(t, []string{"+"}, rule.Selectors)
}

func TestMixinIncludeChildrenForbidden(t *testing.T) {
	serr := parseErr(t, "+foo\n  a\n")
	assert.Equal(t, "Nothing may be nested beneath mixin directives.", serr.Message)
}

func TestParseForDirective(t *testing.T) {
	root := parse(t, "@for !i from 1 to 3\n  .item\n")

	require.Len(t, root.ChildNodes(), 1)
	loop := root.ChildNodes()[0].(*ast.For)
	assert.Equal(t, "i", loop.Variable)
	assert.False(t, loop.Inclusive)
	assert.Equal(t, float64(1), loop.From.(*expr.Number).Value)
	assert.Equal(t, float64(3), loop.To.(*expr.Number).Value)
	require.Len(t, loop.ChildNodes(), 1)
	assert.IsType(t, &ast.Rule{}, loop.ChildNodes()[0])
}

func TestParseForThroughIsInclusive(t *testing.T) {
	root := parse(t, "@for !i from 1 through 3\n")
	assert.True(t, root.ChildNodes()[0].(*ast.For).Inclusive)
}

func TestParseForErrors(t *testing.T) {
	cases := map[string]string{
		"@for\n":               "Invalid for directive '@for ': expected variable name.",
		"@for !i\n":            "Invalid for directive '@for !i': expected 'from <expr>'.",
		"@for !i from 1\n":     "Invalid for directive '@for !i from 1': expected 'to <expr>' or 'through <expr>'.",
		"@for 9i from 1 to 3\n": `Invalid variable: "9i".`,
	}
	for source, want := range cases {
		serr := parseErr(t, source)
		assert.Equal(t, want, serr.Message, "source %q", source)
	}
}

func TestParseIfElseChain(t *testing.T) {
	source := "@if !a\n  :x 1\n@else if !b\n  :x 2\n@else\n  :x 3\n"
	root := parse(t, source)

	require.Len(t, root.ChildNodes(), 1, "@else branches attach, they don't append")
	head := root.ChildNodes()[0].(*ast.If)
	require.NotNil(t, head.Expr)
	require.Len(t, head.ChildNodes(), 1)

	first := head.Else
	require.NotNil(t, first)
	require.NotNil(t, first.Expr, "chained '@else if' carries a guard")
	require.Len(t, first.ChildNodes(), 1)

	last := first.Else
	require.NotNil(t, last)
	assert.Nil(t, last.Expr, "bare @else has no guard")
	require.Len(t, last.ChildNodes(), 1)
}

func TestElseWithoutIf(t *testing.T) {
	serr := parseErr(t, "a\n@else\n  :x 1\n")
	assert.Equal(t, "@else must come after @if.", serr.Message)

	serr = parseErr(t, "@else\n")
	assert.Equal(t, "@else must come after @if.", serr.Message)
}

func TestElseInvalidTrailingText(t *testing.T) {
	serr := parseErr(t, "@if true\n@else banana\n")
	assert.Equal(t, "Invalid else directive '@else banana': expected 'if <expr>'.", serr.Message)
}

func TestConditionalDirectivesRequireExpressions(t *testing.T) {
	assert.Equal(t, "Invalid if directive '@if': expected 'if <expr>'.",
		parseErr(t, "@if\n").Message)
	assert.Equal(t, "Invalid while directive '@while': expected 'while <expr>'.",
		parseErr(t, "@while\n").Message)
	assert.Equal(t, "Invalid debug directive '@debug': expected 'debug <expr>'.",
		parseErr(t, "@debug\n").Message)
}

func TestParseWhile(t *testing.T) {
	root := parse(t, "@while !i > 0\n  .w\n")
	loop := root.ChildNodes()[0].(*ast.While)
	require.NotNil(t, loop.Expr)
	require.Len(t, loop.ChildNodes(), 1)
}

func TestDebugChildrenForbidden(t *testing.T) {
	serr := parseErr(t, "@debug 1\n  a\n")
	assert.Equal(t, "Nothing may be nested beneath debug directives.", serr.Message)
}

func TestUnknownDirectivePassesThrough(t *testing.T) {
	root := parse(t, "@media print\n  a\n    :b c\n")
	directive := root.ChildNodes()[0].(*ast.Directive)
	assert.Equal(t, "@media print", directive.Text)
	require.Len(t, directive.ChildNodes(), 1)
}

func TestParseImportClassifiesPerEntry(t *testing.T) {
	resolver := fakeResolver(map[string]string{
		"base":   filepath.Join("/styles", "base.spin"),
		"vendor": filepath.Join("/styles", "vendor.css"),
	})
	p := parser.NewWithCollaborators(nil, expr.Parse, resolver)

	root, err := p.Parse("@import url(print.css), base, \"theme.css\", vendor\n")
	require.NoError(t, err)

	nodes := root.ChildNodes()
	require.Len(t, nodes, 4, "multi-import results flatten in order")

	assert.Equal(t, "@import url(print.css)", nodes[0].(*ast.CSSImport).Text)
	assert.Equal(t, filepath.Join("/styles", "base.spin"), nodes[1].(*ast.FileImport).Path)
	assert.Equal(t, `@import "theme.css"`, nodes[2].(*ast.CSSImport).Text)
	assert.Equal(t, "@import url("+filepath.Join("/styles", "vendor.css")+")", nodes[3].(*ast.CSSImport).Text)
}

func TestImportNotFound(t *testing.T) {
	p := parser.NewWithCollaborators(nil, expr.Parse, fakeResolver(nil))
	_, err := p.Parse("a\n@import missing\n")
	require.Error(t, err)

	var serr *syntax.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 2, serr.Line)
	assert.Contains(t, serr.Message, "File to import not found or unreadable: missing.")
}

func TestImportChildrenForbidden(t *testing.T) {
	p := parser.NewWithCollaborators(nil, expr.Parse, fakeResolver(map[string]string{"x": "/x.spin"}))
	_, err := p.Parse("@import x\n  a\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nothing may be nested beneath import directives.")
}

func TestImportRootOnly(t *testing.T) {
	serr := parseErr(t, "a\n  @import url(x.css)\n")
	assert.Equal(t, "Import directives may only be used at the root of a document.", serr.Message)
}

func TestErrorsCarryFilenameAndOffset(t *testing.T) {
	opts := config.New()
	opts.Filename = "main.spin"
	opts.Line = 5

	_, err := parser.New(opts).Parse("!broken\n")
	require.Error(t, err)

	var serr *syntax.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "main.spin", serr.Filename)
	assert.Equal(t, 6, serr.Line, "fragment offset shifts reported lines")
	assert.Equal(t, 5, serr.Offset)
}

func TestRootCarriesOptions(t *testing.T) {
	opts := config.New()
	root, err := parser.New(opts).Parse("a\n")
	require.NoError(t, err)
	assert.Same(t, opts, root.Options)
}

// One Parser may serve documents on independent goroutines.
func TestParserIsReusableConcurrently(t *testing.T) {
	p := parser.New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				root, err := p.Parse("a\n  :color red\n  b\n    :x = 1 + 2\n")
				assert.NoError(t, err)
				assert.Len(t, root.ChildNodes(), 1)
			}
		}()
	}
	wg.Wait()
}
