// Package expr parses the Spindle value expression language: the
// right-hand sides of variable bindings, expression-flavored attribute
// values, mixin call arguments, and the conditions of control
// directives. It produces an expression AST for the evaluation stage;
// no evaluation happens here.
package expr

import "github.com/mazznoer/csscolorparser"

// Node is the interface implemented by every expression AST node.
type Node interface {
	exprNode()
}

// Op identifies a unary or binary operator.
type Op string

// Operator values.
const (
	OpPlus   Op = "+"
	OpMinus  Op = "-"
	OpTimes  Op = "*"
	OpDiv    Op = "/"
	OpMod    Op = "%"
	OpEq     Op = "=="
	OpNeq    Op = "!="
	OpLt     Op = "<"
	OpGt     Op = ">"
	OpLte    Op = "<="
	OpGte    Op = ">="
	OpAnd    Op = "and"
	OpOr     Op = "or"
	OpNot    Op = "not"
	OpConcat Op = " "
)

// Number is a numeric literal, optionally carrying a unit such as
// "px" or "%".
type Number struct {
	Value float64
	Unit  string
}

// Color is a color literal: a hex value or a recognized CSS color
// name. Original preserves the source spelling for round-tripping.
type Color struct {
	Value    csscolorparser.Color
	Original string
}

// String is a string literal. Quoted distinguishes "..." strings from
// bare identifier-like words.
type String struct {
	Value  string
	Quoted bool
}

// Bool is a boolean literal.
type Bool struct {
	Value bool
}

// Variable references a bound variable by name, without its sigil.
type Variable struct {
	Name string
}

// UnaryOp applies an operator to a single operand.
type UnaryOp struct {
	Op      Op
	Operand Node
}

// BinaryOp applies an operator to two operands. OpConcat joins
// space-separated values.
type BinaryOp struct {
	Op    Op
	Left  Node
	Right Node
}

// FuncCall invokes a built-in or user function by name.
type FuncCall struct {
	Name string
	Args []Node
}

func (*Number) exprNode()   {}
func (*Color) exprNode()    {}
func (*String) exprNode()   {}
func (*Bool) exprNode()     {}
func (*Variable) exprNode() {}
func (*UnaryOp) exprNode()  {}
func (*BinaryOp) exprNode() {}
func (*FuncCall) exprNode() {}
