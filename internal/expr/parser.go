package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"

	"bennypowers.dev/spindle/internal/syntax"
)

// Parse parses one complete expression. line is the 1-based source
// line the text came from and offset the column at which the text
// starts within it; both feed diagnostics only. filename may be empty.
func Parse(text string, line, offset int, filename string) (Node, error) {
	p := &parser{
		tokens:   scan(text),
		line:     line,
		offset:   offset,
		filename: filename,
	}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorAt(tok, "unexpected %q", tok.text)
	}
	return node, nil
}

type parser struct {
	tokens   []token
	pos      int
	line     int
	offset   int
	filename string
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorAt(tok token, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	err := syntax.Errorf(p.line, "Invalid expression at column %d: %s.", p.offset+tok.col+1, msg)
	err.Filename = p.filename
	return err
}

// Precedence climbing, loosest first: or, and, equality, comparison,
// space concatenation, additive, multiplicative, unary, primary.

func (p *parser) parseExpr() (Node, error) { return p.parseOr() }

func (p *parser) parseOr() (Node, error) {
	return p.parseBinaryIdent("or", OpOr, p.parseAnd)
}

func (p *parser) parseAnd() (Node, error) {
	return p.parseBinaryIdent("and", OpAnd, p.parseEquality)
}

func (p *parser) parseBinaryIdent(word string, op Op, next func() (Node, error)) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokIdent && p.peek().text == word {
		p.next()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseEquality() (Node, error) {
	return p.parseBinaryOps(map[string]Op{"==": OpEq, "!=": OpNeq}, p.parseComparison)
}

func (p *parser) parseComparison() (Node, error) {
	ops := map[string]Op{"<": OpLt, ">": OpGt, "<=": OpLte, ">=": OpGte}
	return p.parseBinaryOps(ops, p.parseConcat)
}

func (p *parser) parseBinaryOps(ops map[string]Op, next func() (Node, error)) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp {
		op, ok := ops[p.peek().text]
		if !ok {
			break
		}
		p.next()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseConcat joins adjacent values with no operator between them,
// the way CSS shorthand values read: "1px solid red".
func (p *parser) parseConcat() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.startsOperand() {
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: OpConcat, Left: left, Right: right}
	}
	return left, nil
}

// startsOperand reports whether the next token can begin a value,
// which is what distinguishes concatenation from the end of the
// expression.
func (p *parser) startsOperand() bool {
	switch tok := p.peek(); tok.kind {
	case tokNumber, tokString, tokVariable, tokHexColor, tokLParen:
		return true
	case tokIdent:
		return tok.text != "and" && tok.text != "or"
	default:
		return false
	}
}

func (p *parser) parseAdditive() (Node, error) {
	return p.parseBinaryOps(map[string]Op{"+": OpPlus, "-": OpMinus}, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() (Node, error) {
	ops := map[string]Op{"*": OpTimes, "/": OpDiv, "%": OpMod}
	return p.parseBinaryOps(ops, p.parseUnary)
}

func (p *parser) parseUnary() (Node, error) {
	tok := p.peek()
	if tok.kind == tokOp && tok.text == "-" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: OpMinus, Operand: operand}, nil
	}
	if tok.kind == tokIdent && tok.text == "not" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: OpNot, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return parseNumber(tok.text)
	case tokString:
		return &String{Value: unquote(tok.text), Quoted: true}, nil
	case tokVariable:
		name := strings.TrimPrefix(tok.text, "!")
		if name == "" {
			return nil, p.errorAt(tok, "expected a variable name after %q", "!")
		}
		return &Variable{Name: name}, nil
	case tokHexColor:
		c, err := csscolorparser.Parse(tok.text)
		if err != nil {
			return nil, p.errorAt(tok, "invalid color %q", tok.text)
		}
		return &Color{Value: c, Original: tok.text}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorAt(closing, "expected %q", ")")
		}
		return inner, nil
	case tokIdent:
		return p.parseIdent(tok)
	case tokEOF:
		return nil, p.errorAt(tok, "expected a value, found end of expression")
	default:
		return nil, p.errorAt(tok, "unexpected %q", tok.text)
	}
}

// parseIdent resolves a bare word: boolean literal, function call,
// named color, or unquoted string, in that order.
func (p *parser) parseIdent(tok token) (Node, error) {
	switch tok.text {
	case "true":
		return &Bool{Value: true}, nil
	case "false":
		return &Bool{Value: false}, nil
	}
	if p.peek().kind == tokLParen {
		return p.parseFuncCall(tok)
	}
	if c, err := csscolorparser.Parse(tok.text); err == nil {
		return &Color{Value: c, Original: tok.text}, nil
	}
	return &String{Value: tok.text}, nil
}

func (p *parser) parseFuncCall(name token) (Node, error) {
	p.next() // consume "("
	call := &FuncCall{Name: name.text}
	if p.peek().kind == tokRParen {
		p.next()
		return call, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		switch tok := p.next(); tok.kind {
		case tokComma:
			continue
		case tokRParen:
			return call, nil
		default:
			return nil, p.errorAt(tok, "expected %q or %q in call to %q", ",", ")", name.text)
		}
	}
}

func parseNumber(text string) (Node, error) {
	digits := strings.TrimRight(text, "%abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		// scan guarantees digits form a float; unreachable in practice
		return nil, err
	}
	return &Number{Value: value, Unit: text[len(digits):]}, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		last := s[len(s)-1]
		if (s[0] == '"' || s[0] == '\'') && last == s[0] {
			return s[1 : len(s)-1]
		}
	}
	if len(s) >= 1 && (s[0] == '"' || s[0] == '\'') {
		return s[1:]
	}
	return s
}
