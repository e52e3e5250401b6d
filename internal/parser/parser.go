// Package parser turns a nested logical-line tree into a validated
// Spindle AST. Classification dispatches on each line's leading
// character through a table of per-construct handlers; every
// construct-specific rule (placement, nesting, argument lists, rule
// continuation, @else chaining) is enforced here, and the first
// violation aborts the whole parse.
package parser

import (
	"errors"
	"regexp"
	"strings"

	"bennypowers.dev/spindle/internal/ast"
	"bennypowers.dev/spindle/internal/config"
	"bennypowers.dev/spindle/internal/expr"
	"bennypowers.dev/spindle/internal/importer"
	"bennypowers.dev/spindle/internal/lexer"
	"bennypowers.dev/spindle/internal/syntax"
)

// Leading characters the classifier dispatches on.
const (
	attributeChar    = ':'
	variableChar     = '!'
	commentChar      = '/'
	directiveChar    = '@'
	escapeChar       = '\\'
	mixinDefChar     = '='
	mixinIncludeChar = '+'
)

var (
	attributeOldRe = regexp.MustCompile(`^:([^\s=:]+)(\s*=|)(?:\s+|$)(.*)$`)
	// attributeNewLook decides the attribute-versus-rule precedence
	// for bare lines; attributeNewRe then extracts the parts. Both
	// shapes overlap with selectors on purpose: "a: hover" is an
	// attribute, "a:hover" is a rule.
	attributeNewLook = regexp.MustCompile(`^[^\s:"]+\s*[=:](\s|$)`)
	attributeNewRe   = regexp.MustCompile(`^([^\s=:]+)(\s*=|:)(?:\s+|$)(.*)$`)
	variableRe       = regexp.MustCompile(`^!([a-zA-Z_][\w-]*)\s*((?:\|\|)?=)\s*(.+)$`)
	validNameRe      = regexp.MustCompile(`^![a-zA-Z_][\w-]*$`)
	mixinDefRe       = regexp.MustCompile(`^=\s*([^(]+?)\s*(\(.*\))?$`)
	mixinIncludeRe   = regexp.MustCompile(`^\+\s*([^(]+?)\s*(\(.*\))?$`)
	forRe            = regexp.MustCompile(`^(\S+)\s+from\s+(.+?)\s+(to|through)\s+(.+)$`)
	forFromRe        = regexp.MustCompile(`^\S+\s+from\s+.+`)
	elseIfRe         = regexp.MustCompile(`^if\s+(.+)$`)
	cssImportRe      = regexp.MustCompile(`^(url\(|")`)
)

// ExpressionParser is the contract of the expression-language
// collaborator.
type ExpressionParser func(text string, line, offset int, filename string) (expr.Node, error)

// ImportResolver is the contract of the import-resolution
// collaborator.
type ImportResolver func(name string, searchDirs []string) (string, error)

// Parser parses whole Spindle documents. A Parser holds no
// per-document state, so one instance may parse many documents,
// concurrently included.
type Parser struct {
	options       *config.Options
	parseExpr     ExpressionParser
	resolveImport ImportResolver
}

// New creates a Parser with the in-repo collaborators wired in. A nil
// options bundle gets the defaults.
func New(options *config.Options) *Parser {
	return NewWithCollaborators(options, expr.Parse, importer.Resolve)
}

// NewWithCollaborators creates a Parser with explicit collaborator
// implementations, for embedding and for tests.
func NewWithCollaborators(options *config.Options, parseExpr ExpressionParser, resolveImport ImportResolver) *Parser {
	if options == nil {
		options = config.New()
	}
	return &Parser{
		options:       options,
		parseExpr:     parseExpr,
		resolveImport: resolveImport,
	}
}

// Parse tokenizes, structures, and classifies one document. The
// returned root carries the options bundle for the evaluation stage.
// On failure the document has no partial result: the error is the
// first violation found, stamped with its source line.
func (p *Parser) Parse(source string) (*ast.Root, error) {
	flat, err := lexer.Tokenize(source, p.options.Line, p.options.Filename)
	if err != nil {
		return nil, p.attribute(err)
	}
	nested, err := lexer.BuildTree(flat)
	if err != nil {
		return nil, p.attribute(err)
	}

	root := ast.NewRoot()
	root.Options = p.options
	if err := p.appendChildren(root, nested, true); err != nil {
		return nil, p.attribute(err)
	}
	return root, nil
}

// attribute stamps an error with the filename and fragment offset as
// it crosses the parse boundary.
func (p *Parser) attribute(err error) error {
	var serr *syntax.Error
	if errors.As(err, &serr) {
		if serr.Filename == "" {
			serr.Filename = p.options.Filename
		}
		serr.Offset = p.options.Line
		return serr
	}
	return err
}

// result is the tri-state outcome of classifying one line: exactly
// one node, several nodes (a multi-target @import), or nothing to
// append (@else mutates the preceding @if instead of producing a
// node).
type result struct {
	nodes []ast.Node
	noop  bool
}

func one(n ast.Node) result     { return result{nodes: []ast.Node{n}} }
func many(ns []ast.Node) result { return result{nodes: ns} }
func nothingToAppend() result   { return result{noop: true} }

// classifier is one entry of the leading-character dispatch table.
type classifier func(*Parser, *lexer.Line, ast.Node, bool) (result, error)

var dispatch map[byte]classifier

func init() {
	dispatch = map[byte]classifier{
		attributeChar:    (*Parser).classifyColonLead,
		variableChar:     (*Parser).classifyVariable,
		commentChar:      (*Parser).classifyComment,
		directiveChar:    (*Parser).classifyDirective,
		escapeChar:       (*Parser).classifyEscape,
		mixinDefChar:     (*Parser).classifyMixinDefinition,
		mixinIncludeChar: (*Parser).classifyMixinInclude,
	}
}

func (p *Parser) classify(line *lexer.Line, parent ast.Node, root bool) (result, error) {
	handler, ok := dispatch[line.Text[0]]
	if !ok {
		handler = (*Parser).classifyDefault
	}
	return handler(p, line, parent, root)
}

// appendChildren classifies each line in order and appends the
// produced nodes to parent, handling rule continuation along the way.
// A continued rule (trailing comma) is held back and merged with the
// following sibling rules until one without a trailing comma closes
// the set; the closing rule's body becomes the merged node's body.
func (p *Parser) appendChildren(parent ast.Node, lines []*lexer.Line, root bool) error {
	var pending *ast.Rule
	for _, line := range lines {
		res, err := p.classify(line, parent, root)
		if err != nil {
			return err
		}
		if res.noop {
			continue
		}
		for _, node := range res.nodes {
			rule, isRule := node.(*ast.Rule)
			if isRule && rule.Continued {
				if len(rule.ChildNodes()) > 0 {
					return syntax.NewError("Rules can't end in commas.", rule.Line())
				}
				if pending == nil {
					pending = rule
				} else {
					pending.Merge(rule)
				}
				continue
			}
			if pending != nil {
				if !isRule {
					return syntax.NewError("Rules can't end in commas.", pending.Line())
				}
				pending.Merge(rule)
				pending.SetChildren(rule.ChildNodes())
				node = pending
				pending = nil
			}
			if err := validatePlacement(node, root); err != nil {
				return err
			}
			parent.AppendChild(node)
		}
	}
	if pending != nil {
		return syntax.NewError("Rules can't end in commas.", pending.Line())
	}
	return nil
}

// validatePlacement enforces the root-only constructs.
func validatePlacement(node ast.Node, root bool) error {
	if root {
		return nil
	}
	switch node.(type) {
	case *ast.MixinDefinition:
		return syntax.NewError("Mixins may only be defined at the root of a document.", node.Line())
	case *ast.FileImport, *ast.CSSImport:
		return syntax.NewError("Import directives may only be used at the root of a document.", node.Line())
	}
	return nil
}

// container attaches the line's children to node and wraps it as a
// single-node result.
func (p *Parser) container(node ast.Node, line *lexer.Line) (result, error) {
	if err := p.appendChildren(node, line.Children, false); err != nil {
		return result{}, err
	}
	return one(node), nil
}

// classifyColonLead handles the colon-prefixed attribute flavor. A
// doubled colon is the pseudo-element escape and stays a rule.
func (p *Parser) classifyColonLead(line *lexer.Line, _ ast.Node, _ bool) (result, error) {
	if strings.HasPrefix(line.Text, "::") {
		return p.classifyRule(line, line.Text)
	}
	return p.parseAttribute(line, attributeOldRe, ast.AttributeOld)
}

// classifyVariable handles "!name = expr" bindings, with "||=" for
// assign-if-unset.
func (p *Parser) classifyVariable(line *lexer.Line, _ ast.Node, _ bool) (result, error) {
	m := variableRe.FindStringSubmatch(line.Text)
	if m == nil {
		return result{}, syntax.Errorf(line.Number, "Invalid variable: %q.", line.Text)
	}
	if len(line.Children) > 0 {
		return result{}, syntax.NewError("Nothing may be nested beneath variable declarations.", line.Number)
	}
	value, err := p.parseScript(line, m[3])
	if err != nil {
		return result{}, err
	}
	optional := m[2] == "||="
	return one(ast.NewVariableBinding(m[1], value, optional, line.Number, line.Filename)), nil
}

// classifyComment handles "//" (silent) and "/*" (loud) comments.
// Any other character after the slash leaves the line a rule. Child
// lines are comment continuation text, never classified.
func (p *Parser) classifyComment(line *lexer.Line, _ ast.Node, _ bool) (result, error) {
	text := line.Text
	if len(text) < 2 || (text[1] != commentChar && text[1] != '*') {
		return p.classifyRule(line, text)
	}
	silent := text[1] == commentChar
	parts := []string{strings.TrimSpace(text[2:])}
	parts = append(parts, flattenLines(line.Children)...)
	body := strings.TrimRight(strings.Join(parts, "\n"), "\n")
	return one(ast.NewComment(body, silent, line.Number, line.Filename)), nil
}

func flattenLines(lines []*lexer.Line) []string {
	var out []string
	for _, l := range lines {
		out = append(out, l.Text)
		out = append(out, flattenLines(l.Children)...)
	}
	return out
}

// classifyEscape strips the backslash and takes the remainder
// verbatim as a rule, bypassing every other interpretation.
func (p *Parser) classifyEscape(line *lexer.Line, _ ast.Node, _ bool) (result, error) {
	return p.classifyRule(line, line.Text[1:])
}

// classifyDefault resolves the bare-line ambiguity: the inline-colon
// attribute shape wins over a rule exactly when the lookahead
// matches.
func (p *Parser) classifyDefault(line *lexer.Line, _ ast.Node, _ bool) (result, error) {
	if attributeNewLook.MatchString(line.Text) {
		return p.parseAttribute(line, attributeNewRe, ast.AttributeNew)
	}
	return p.classifyRule(line, line.Text)
}

func (p *Parser) classifyRule(line *lexer.Line, text string) (result, error) {
	continued := strings.HasSuffix(text, ",")
	selectorText := strings.TrimSpace(strings.TrimSuffix(text, ","))
	rule := ast.NewRule(splitSelectors(selectorText), continued, line.Number, line.Filename)
	return p.container(rule, line)
}

func splitSelectors(text string) []string {
	var selectors []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			selectors = append(selectors, part)
		}
	}
	return selectors
}

// parseAttribute applies the flavor's capture pattern. A "=" in the
// operator slot marks the value as an expression, handed to the
// expression collaborator with the column the value starts at.
func (p *Parser) parseAttribute(line *lexer.Line, pattern *regexp.Regexp, flavor ast.AttributeFlavor) (result, error) {
	m := pattern.FindStringSubmatch(line.Text)
	if m == nil || m[1] == "" || m[3] == "" {
		return result{}, syntax.Errorf(line.Number, "Invalid attribute: %q.", line.Text)
	}
	name, op, value := m[1], m[2], m[3]
	if strings.HasPrefix(strings.TrimSpace(op), "=") {
		parsed, err := p.parseScript(line, value)
		if err != nil {
			return result{}, err
		}
		return p.container(ast.NewExprAttribute(name, parsed, flavor, line.Number, line.Filename), line)
	}
	return p.container(ast.NewLiteralAttribute(name, value, flavor, line.Number, line.Filename), line)
}

// classifyMixinDefinition parses "=name(!arg, !arg = default)".
func (p *Parser) classifyMixinDefinition(line *lexer.Line, _ ast.Node, _ bool) (result, error) {
	m := mixinDefRe.FindStringSubmatch(line.Text)
	if m == nil {
		return result{}, syntax.Errorf(line.Number, "Invalid mixin %q.", line.Text[1:])
	}
	args, err := p.parseMixinArgs(line, m[2])
	if err != nil {
		return result{}, err
	}
	node := ast.NewMixinDefinition(strings.TrimSpace(m[1]), args, line.Number, line.Filename)
	return p.container(node, line)
}

// parseMixinArgs splits a parenthesized argument list on commas. A
// trailing empty tail is tolerated; interior empties are not. Once
// one argument has a default every later one needs one too.
func (p *Parser) parseMixinArgs(line *lexer.Line, argString string) ([]ast.MixinArg, error) {
	parts := splitArgList(argString)
	var args []ast.MixinArg
	haveDefault := false
	for _, part := range parts {
		if part == "" {
			return nil, syntax.NewError("Mixin arguments can't be empty.", line.Number)
		}
		if part[0] != variableChar {
			return nil, syntax.Errorf(line.Number, "Mixin argument %q must begin with an exclamation point (!).", part)
		}
		nameText, defaultText, hasDefault := strings.Cut(part, "=")
		nameText = strings.TrimSpace(nameText)
		if !validNameRe.MatchString(nameText) {
			return nil, syntax.Errorf(line.Number, "Invalid variable: %q.", nameText)
		}
		var defaultExpr expr.Node
		if hasDefault {
			var err error
			if defaultExpr, err = p.parseScript(line, strings.TrimSpace(defaultText)); err != nil {
				return nil, err
			}
			haveDefault = true
		} else if haveDefault {
			return nil, syntax.NewError("Required arguments must not follow optional arguments.", line.Number)
		}
		args = append(args, ast.MixinArg{Name: strings.TrimPrefix(nameText, "!"), Default: defaultExpr})
	}
	return args, nil
}

// splitArgList strips the surrounding parens, splits on commas, and
// drops the empty tail a trailing comma leaves behind. Elements come
// back trimmed; interior empties survive for the callers to reject.
func splitArgList(argString string) []string {
	if argString == "" {
		return nil
	}
	parts := strings.Split(argString[1:len(argString)-1], ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// classifyMixinInclude parses "+name(expr, expr)". A lone "+" is a
// selector, not an include.
func (p *Parser) classifyMixinInclude(line *lexer.Line, _ ast.Node, _ bool) (result, error) {
	if strings.TrimSpace(line.Text[1:]) == "" {
		return p.classifyRule(line, line.Text)
	}
	m := mixinIncludeRe.FindStringSubmatch(line.Text)
	if m == nil {
		return result{}, syntax.Errorf(line.Number, "Invalid mixin include %q.", line.Text)
	}
	if len(line.Children) > 0 {
		return result{}, syntax.NewError("Nothing may be nested beneath mixin directives.", line.Number)
	}
	var args []expr.Node
	for _, part := range splitArgList(m[2]) {
		if part == "" {
			return result{}, syntax.NewError("Mixin arguments can't be empty.", line.Number)
		}
		arg, err := p.parseScript(line, part)
		if err != nil {
			return result{}, err
		}
		args = append(args, arg)
	}
	return one(ast.NewMixinInclude(strings.TrimSpace(m[1]), args, line.Number, line.Filename)), nil
}

// classifyDirective sub-dispatches on the keyword after the "@".
// Keywords the language attaches no semantics to pass through
// verbatim.
func (p *Parser) classifyDirective(line *lexer.Line, parent ast.Node, _ bool) (result, error) {
	rest := strings.TrimSpace(line.Text[1:])
	name, value := rest, ""
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		name, value = rest[:i], strings.TrimSpace(rest[i+1:])
	}

	switch name {
	case "import":
		return p.parseImport(line, value)
	case "for":
		return p.parseFor(line, value)
	case "else":
		return p.parseElse(line, parent, value)
	case "if":
		cond, err := p.requireExpr(line, name, value)
		if err != nil {
			return result{}, err
		}
		return p.container(ast.NewIf(cond, line.Number, line.Filename), line)
	case "while":
		cond, err := p.requireExpr(line, name, value)
		if err != nil {
			return result{}, err
		}
		return p.container(ast.NewWhile(cond, line.Number, line.Filename), line)
	case "debug":
		return p.parseDebug(line, value)
	default:
		return p.container(ast.NewDirective(line.Text, line.Number, line.Filename), line)
	}
}

// requireExpr parses the mandatory expression of an @if/@while/@debug
// directive.
func (p *Parser) requireExpr(line *lexer.Line, name, value string) (expr.Node, error) {
	if value == "" {
		return nil, syntax.Errorf(line.Number,
			"Invalid %s directive '@%s': expected '%s <expr>'.", name, name, name)
	}
	return p.parseScript(line, value)
}

func (p *Parser) parseDebug(line *lexer.Line, value string) (result, error) {
	val, err := p.requireExpr(line, "debug", value)
	if err != nil {
		return result{}, err
	}
	if len(line.Children) > 0 {
		return result{}, syntax.NewError("Nothing may be nested beneath debug directives.", line.Number)
	}
	return one(ast.NewDebug(val, line.Number, line.Filename)), nil
}

// parseImport classifies each comma-separated target independently:
// url(...) and quoted targets pass through as native CSS imports,
// everything else goes through the import resolver. Targets that
// resolve to a plain stylesheet also pass through; only Spindle
// sources become deferred file imports.
func (p *Parser) parseImport(line *lexer.Line, value string) (result, error) {
	if len(line.Children) > 0 {
		return result{}, syntax.NewError("Nothing may be nested beneath import directives.", line.Number)
	}
	if value == "" {
		return result{}, syntax.NewError("Invalid import directive '@import': expected 'import <file>'.", line.Number)
	}

	var nodes []ast.Node
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if cssImportRe.MatchString(entry) {
			nodes = append(nodes, ast.NewCSSImport("@import "+entry, line.Number, line.Filename))
			continue
		}
		path, err := p.resolveImport(entry, p.options.SearchDirs())
		if err != nil {
			return result{}, syntax.Wrap(err, line.Number)
		}
		if strings.HasSuffix(path, importer.CSSExt) {
			nodes = append(nodes, ast.NewCSSImport("@import url("+path+")", line.Number, line.Filename))
		} else {
			nodes = append(nodes, ast.NewFileImport(path, line.Number, line.Filename))
		}
	}
	return many(nodes), nil
}

// parseFor parses "@for !i from <expr> to|through <expr>"; the error
// message names whichever clause is missing.
func (p *Parser) parseFor(line *lexer.Line, value string) (result, error) {
	m := forRe.FindStringSubmatch(value)
	if m == nil {
		expected := "'to <expr>' or 'through <expr>'"
		switch {
		case strings.TrimSpace(value) == "":
			expected = "variable name"
		case !forFromRe.MatchString(value):
			expected = "'from <expr>'"
		}
		return result{}, syntax.Errorf(line.Number,
			"Invalid for directive '@for %s': expected %s.", value, expected)
	}
	variable, fromText, keyword, toText := m[1], m[2], m[3], m[4]
	if !validNameRe.MatchString(variable) {
		return result{}, syntax.Errorf(line.Number, "Invalid variable: %q.", variable)
	}
	from, err := p.parseScript(line, fromText)
	if err != nil {
		return result{}, err
	}
	to, err := p.parseScript(line, toText)
	if err != nil {
		return result{}, err
	}
	node := ast.NewFor(strings.TrimPrefix(variable, "!"), from, to, keyword == "through", line.Number, line.Filename)
	return p.container(node, line)
}

// parseElse attaches an alternate branch to the @if that must be the
// previously appended sibling. It produces no node of its own.
func (p *Parser) parseElse(line *lexer.Line, parent ast.Node, value string) (result, error) {
	siblings := parent.ChildNodes()
	var prev ast.Node
	if len(siblings) > 0 {
		prev = siblings[len(siblings)-1]
	}
	ifNode, ok := prev.(*ast.If)
	if !ok {
		return result{}, syntax.NewError("@else must come after @if.", line.Number)
	}

	var cond expr.Node
	if value != "" {
		m := elseIfRe.FindStringSubmatch(value)
		if m == nil {
			return result{}, syntax.Errorf(line.Number,
				"Invalid else directive '@else %s': expected 'if <expr>'.", value)
		}
		var err error
		if cond, err = p.parseScript(line, m[1]); err != nil {
			return result{}, err
		}
	}

	alt := ast.NewIf(cond, line.Number, line.Filename)
	if err := p.appendChildren(alt, line.Children, false); err != nil {
		return result{}, err
	}
	ifNode.SetElse(alt)
	return nothingToAppend(), nil
}

// parseScript hands value text to the expression collaborator,
// re-wrapping any failure as a syntax error on the current line. The
// column offset points at where the value sits in the original line.
func (p *Parser) parseScript(line *lexer.Line, value string) (expr.Node, error) {
	offset := line.Offset
	if i := strings.Index(line.Text, value); i >= 0 {
		offset += i
	}
	node, err := p.parseExpr(value, line.Number, offset, line.Filename)
	if err != nil {
		return nil, syntax.Wrap(err, line.Number)
	}
	return node, nil
}
