package expr

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokString
	tokVariable
	tokHexColor
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	// col is the 0-based column of the token within the scanned text
	col int
}

// multi-character operators first so scanOp prefers the longest match
var operators = []string{"==", "!=", "<=", ">=", "+", "-", "*", "/", "%", "<", ">"}

type scanner struct {
	src    string
	pos    int
	tokens []token
}

// scan tokenizes an expression string. It never fails on its own:
// any character it cannot place becomes a one-rune operator-kind
// token the parser will reject with a positioned error.
func scan(src string) []token {
	s := &scanner{src: src}
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t':
			s.pos++
		case c >= '0' && c <= '9' || c == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1]):
			s.scanNumber()
		case c == '"' || c == '\'':
			s.scanString(c)
		case c == '!':
			if strings.HasPrefix(s.src[s.pos:], "!=") {
				s.emit(tokOp, "!=", 2)
			} else {
				s.scanVariable()
			}
		case c == '#':
			s.scanHexColor()
		case c == '(':
			s.emit(tokLParen, "(", 1)
		case c == ')':
			s.emit(tokRParen, ")", 1)
		case c == ',':
			s.emit(tokComma, ",", 1)
		case c == '-':
			// minus, unless it leads an identifier like -moz-box
			if s.pos+1 < len(s.src) && unicode.IsLetter(rune(s.src[s.pos+1])) {
				s.scanIdent()
			} else {
				s.emit(tokOp, "-", 1)
			}
		case isIdentStart(rune(c)):
			s.scanIdent()
		default:
			if op := s.matchOperator(); op != "" {
				s.emit(tokOp, op, len(op))
			} else {
				s.emit(tokOp, string(c), 1)
			}
		}
	}
	s.tokens = append(s.tokens, token{kind: tokEOF, col: len(src)})
	return s.tokens
}

func (s *scanner) emit(kind tokenKind, text string, width int) {
	s.tokens = append(s.tokens, token{kind: kind, text: text, col: s.pos})
	s.pos += width
}

func (s *scanner) matchOperator() string {
	for _, op := range operators {
		if strings.HasPrefix(s.src[s.pos:], op) {
			return op
		}
	}
	return ""
}

func (s *scanner) scanNumber() {
	start := s.pos
	seenDot := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isDigit(c) || (c == '.' && !seenDot) {
			seenDot = seenDot || c == '.'
			s.pos++
			continue
		}
		break
	}
	// unit suffix: letters or a percent sign, e.g. 10px, 1.5em, 50%
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '%' {
			s.pos++
			break
		}
		if !unicode.IsLetter(rune(c)) {
			break
		}
		s.pos++
	}
	s.tokens = append(s.tokens, token{kind: tokNumber, text: s.src[start:s.pos], col: start})
}

func (s *scanner) scanString(quote byte) {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) && s.src[s.pos] != quote {
		s.pos++
	}
	if s.pos < len(s.src) {
		s.pos++
	}
	s.tokens = append(s.tokens, token{kind: tokString, text: s.src[start:s.pos], col: start})
}

func (s *scanner) scanVariable() {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) && isIdentPart(rune(s.src[s.pos])) {
		s.pos++
	}
	s.tokens = append(s.tokens, token{kind: tokVariable, text: s.src[start:s.pos], col: start})
}

func (s *scanner) scanHexColor() {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) && isHexDigit(s.src[s.pos]) {
		s.pos++
	}
	s.tokens = append(s.tokens, token{kind: tokHexColor, text: s.src[start:s.pos], col: start})
}

func (s *scanner) scanIdent() {
	start := s.pos
	for s.pos < len(s.src) && isIdentPart(rune(s.src[s.pos])) {
		s.pos++
	}
	s.tokens = append(s.tokens, token{kind: tokIdent, text: s.src[start:s.pos], col: start})
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '-'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}
