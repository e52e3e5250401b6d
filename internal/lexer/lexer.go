// Package lexer turns raw Spindle source text into a nested tree of
// logical lines. Tokenize measures each non-blank line's indentation
// depth against a single per-document indentation unit; BuildTree nests
// the flat sequence using depth comparisons only. All structural
// indentation errors are raised here, before any syntax is interpreted.
package lexer

import (
	"strings"

	"bennypowers.dev/spindle/internal/syntax"
)

// Tokenize splits source into an ordered sequence of flat logical
// lines. Blank lines never appear in the result. offset is added to
// physical line numbers, for parsing fragments embedded mid-document;
// pass 0 for a whole file. filename is attached to every line for
// diagnostics and relative import resolution; it may be empty.
//
// The first indented line fixes the document's indentation unit. The
// unit may be any run of a single whitespace character; mixing tabs and
// spaces, indenting the first line of the document, or indenting any
// line by a non-exact repetition of the unit is an error.
func Tokenize(source string, offset int, filename string) ([]*Line, error) {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")

	var lines []*Line
	unit := ""
	for i, raw := range strings.Split(source, "\n") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		number := i + 1 + offset
		indent := raw[:strings.Index(raw, text[:1])]

		var depth int
		switch {
		case indent == "":
			depth = 0
		case len(lines) == 0:
			return nil, syntax.NewError("Indenting at the beginning of the document is illegal.", number)
		case strings.ContainsRune(indent, '\t') && strings.ContainsRune(indent, ' '):
			return nil, syntax.NewError("Indentation can't use both tabs and spaces.", number)
		default:
			if unit == "" {
				unit = indent
			}
			n := len(indent) / len(unit)
			if n == 0 || indent != strings.Repeat(unit, n) {
				return nil, syntax.Errorf(number,
					"Inconsistent indentation: %q was used for indentation, but the rest of the document was indented using %q.",
					indent, unit)
			}
			depth = n
		}

		lines = append(lines, &Line{
			Text:     text,
			Depth:    depth,
			Number:   number,
			Offset:   len(indent),
			Filename: filename,
		})
	}
	return lines, nil
}

// BuildTree nests a flat line sequence produced by Tokenize. The
// result holds the depth-0 lines, each with its deeper lines attached
// as children, grandchildren and so on.
func BuildTree(lines []*Line) ([]*Line, error) {
	// The depth-0 call consumes every line: nothing can be shallower
	// than the document root.
	nested, _, err := buildTree(lines, 0)
	return nested, err
}

// buildTree consumes lines from index onward whose depth is at least
// the depth of the first remaining line (the base for this call).
// Equal depth starts a new sibling; base+1 recurses into the previous
// sibling's children; shallower depth returns to the caller without
// consuming; anything deeper than base+1 is an error naming the excess.
func buildTree(lines []*Line, index int) ([]*Line, int, error) {
	if index >= len(lines) {
		return nil, index, nil
	}
	base := lines[index].Depth

	var nested []*Line
	for index < len(lines) {
		line := lines[index]
		switch {
		case line.Depth < base:
			return nested, index, nil
		case line.Depth == base:
			nested = append(nested, line)
			index++
		case line.Depth == base+1:
			children, next, err := buildTree(lines, index)
			if err != nil {
				return nil, 0, err
			}
			nested[len(nested)-1].Children = children
			index = next
		default:
			return nil, 0, syntax.Errorf(line.Number,
				"The line was indented %d levels deeper than the previous line.",
				line.Depth-base)
		}
	}
	return nested, index, nil
}
