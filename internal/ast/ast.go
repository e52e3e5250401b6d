// Package ast defines the node variants of a parsed Spindle document.
// The variant set is closed: every construct of the language maps to
// exactly one of the types below, and the parser's dispatch over them
// is exhaustive. Nodes are immutable after construction except for the
// two accommodations the grammar requires: rule-continuation merging
// and @else chain attachment.
package ast

import (
	"bennypowers.dev/spindle/internal/collections"
	"bennypowers.dev/spindle/internal/expr"
)

// Node is the interface implemented by every AST node variant.
type Node interface {
	// Line returns the 1-based source line the node was parsed from
	Line() int

	// ChildNodes returns the node's ordered children
	ChildNodes() []Node

	// AppendChild attaches a child node
	AppendChild(Node)

	node()
}

// AttributeFlavor distinguishes the two attribute syntaxes.
type AttributeFlavor int

const (
	// AttributeOld is the colon-prefixed form, ":name value"
	AttributeOld AttributeFlavor = iota
	// AttributeNew is the inline-colon form, "name: value"
	AttributeNew
)

// base carries the fields common to all node variants.
type base struct {
	line     int
	filename string
	children []Node
}

func (b *base) Line() int          { return b.line }
func (b *base) Filename() string   { return b.filename }
func (b *base) ChildNodes() []Node { return b.children }
func (b *base) AppendChild(n Node) { b.children = append(b.children, n) }
func (b *base) node()              {}

// SetChildren replaces the node's children wholesale. Rule
// continuation uses it to move the terminal rule's body onto the
// merged node.
func (b *base) SetChildren(children []Node) { b.children = children }

// Root is the document root. It is the only node without a source
// line of its own; it carries the options the document was parsed
// with, for hand-off to the evaluation stage.
type Root struct {
	base

	// Options is the configuration bundle the document was parsed
	// with, forwarded opaquely
	Options interface{}
}

// NewRoot creates an empty document root.
func NewRoot() *Root { return &Root{} }

// Rule is a CSS rule: one or more selectors and a body. A rule whose
// source selector ended in a comma is a continuation head and must be
// merged with the following sibling rules.
type Rule struct {
	base

	// Selectors is the ordered, de-duplicated selector set
	Selectors []string

	// Continued reports whether the source selector ended in a
	// trailing comma and the rule still expects merge partners
	Continued bool
}

// Attribute is a single CSS declaration in either syntax flavor. The
// value is either literal text or a parsed expression, never both.
type Attribute struct {
	base
	Name   string
	Value  string
	Expr   expr.Node
	Flavor AttributeFlavor
}

// Comment is a comment line. Silent comments are dropped by the
// evaluation stage; loud ones are emitted into the output CSS.
type Comment struct {
	base
	Text   string
	Silent bool
}

// Directive is an at-rule the language attaches no semantics to; its
// text passes through to the output verbatim.
type Directive struct {
	base
	Text string
}

// VariableBinding binds a variable to an expression. With Optional
// set, the binding only takes effect if the variable is still unbound
// at evaluation time.
type VariableBinding struct {
	base
	Name     string
	Expr     expr.Node
	Optional bool
}

// MixinArg is one formal argument of a mixin definition.
type MixinArg struct {
	// Name is the argument name without its leading sigil
	Name string

	// Default is the default value expression, nil for required
	// arguments
	Default expr.Node
}

// MixinDefinition defines a named mixin. Once one argument carries a
// default, all following arguments carry one too.
type MixinDefinition struct {
	base
	Name string
	Args []MixinArg
}

// MixinInclude includes a mixin by name with call arguments.
type MixinInclude struct {
	base
	Name string
	Args []expr.Node
}

// If is a conditional branch. Else holds the chained alternate
// branch, itself an *If whose Expr is nil for a bare @else.
type If struct {
	base
	Expr expr.Node
	Else *If
}

// SetElse attaches an alternate branch at the end of the chain.
func (n *If) SetElse(alt *If) {
	last := n
	for last.Else != nil {
		last = last.Else
	}
	last.Else = alt
}

// While is a conditional loop over its children.
type While struct {
	base
	Expr expr.Node
}

// For is a counted loop. Inclusive distinguishes "through" from "to".
type For struct {
	base

	// Variable is the loop variable name without its leading sigil
	Variable  string
	From      expr.Node
	To        expr.Node
	Inclusive bool
}

// Debug evaluates an expression and reports its value at compile time.
type Debug struct {
	base
	Expr expr.Node
}

// FileImport is a language-level import, resolved to an absolute path
// and deferred for recursive parsing by the caller.
type FileImport struct {
	base

	// Path is the resolved path of the imported document
	Path string

	// Imported is the parsed subtree, attached by the engine when
	// imports are expanded; nil while deferred
	Imported *Root
}

// CSSImport is a native CSS @import, passed through verbatim and
// never resolved.
type CSSImport struct {
	base
	Text string
}

// NewRule creates a rule node. continued marks a trailing-comma
// selector awaiting continuation merging.
func NewRule(selectors []string, continued bool, line int, filename string) *Rule {
	return &Rule{
		base:      base{line: line, filename: filename},
		Selectors: selectors,
		Continued: continued,
	}
}

// Merge unions another rule's selectors into this one, preserving
// first-seen order, and adopts its continuation state.
func (n *Rule) Merge(other *Rule) {
	set := collections.NewOrderedSet(n.Selectors...)
	set.Add(other.Selectors...)
	n.Selectors = set.Members()
	n.Continued = other.Continued
}

// NewLiteralAttribute creates an attribute whose value is literal text.
func NewLiteralAttribute(name, value string, flavor AttributeFlavor, line int, filename string) *Attribute {
	return &Attribute{
		base:   base{line: line, filename: filename},
		Name:   name,
		Value:  value,
		Flavor: flavor,
	}
}

// NewExprAttribute creates an attribute whose value is a parsed
// expression.
func NewExprAttribute(name string, value expr.Node, flavor AttributeFlavor, line int, filename string) *Attribute {
	return &Attribute{
		base:   base{line: line, filename: filename},
		Name:   name,
		Expr:   value,
		Flavor: flavor,
	}
}

// NewComment creates a comment node.
func NewComment(text string, silent bool, line int, filename string) *Comment {
	return &Comment{
		base:   base{line: line, filename: filename},
		Text:   text,
		Silent: silent,
	}
}

// NewDirective creates a passthrough at-rule node.
func NewDirective(text string, line int, filename string) *Directive {
	return &Directive{base: base{line: line, filename: filename}, Text: text}
}

// NewVariableBinding creates a variable binding node.
func NewVariableBinding(name string, value expr.Node, optional bool, line int, filename string) *VariableBinding {
	return &VariableBinding{
		base:     base{line: line, filename: filename},
		Name:     name,
		Expr:     value,
		Optional: optional,
	}
}

// NewMixinDefinition creates a mixin definition node.
func NewMixinDefinition(name string, args []MixinArg, line int, filename string) *MixinDefinition {
	return &MixinDefinition{
		base: base{line: line, filename: filename},
		Name: name,
		Args: args,
	}
}

// NewMixinInclude creates a mixin include node.
func NewMixinInclude(name string, args []expr.Node, line int, filename string) *MixinInclude {
	return &MixinInclude{
		base: base{line: line, filename: filename},
		Name: name,
		Args: args,
	}
}

// NewIf creates a conditional node. A nil expression is a bare @else
// branch.
func NewIf(condition expr.Node, line int, filename string) *If {
	return &If{base: base{line: line, filename: filename}, Expr: condition}
}

// NewWhile creates a loop node.
func NewWhile(condition expr.Node, line int, filename string) *While {
	return &While{base: base{line: line, filename: filename}, Expr: condition}
}

// NewFor creates a counted-loop node.
func NewFor(variable string, from, to expr.Node, inclusive bool, line int, filename string) *For {
	return &For{
		base:      base{line: line, filename: filename},
		Variable:  variable,
		From:      from,
		To:        to,
		Inclusive: inclusive,
	}
}

// NewDebug creates a debug node.
func NewDebug(value expr.Node, line int, filename string) *Debug {
	return &Debug{base: base{line: line, filename: filename}, Expr: value}
}

// NewFileImport creates a deferred language-level import node.
func NewFileImport(path string, line int, filename string) *FileImport {
	return &FileImport{base: base{line: line, filename: filename}, Path: path}
}

// NewCSSImport creates a verbatim native CSS import node.
func NewCSSImport(text string, line int, filename string) *CSSImport {
	return &CSSImport{base: base{line: line, filename: filename}, Text: text}
}
