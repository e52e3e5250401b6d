package ast

import (
	"fmt"
	"strings"
)

// Dump renders a node tree in an indented debug form, one node per
// line. The output is for humans and tests; it is not Spindle source
// and does not round-trip.
func Dump(node Node) string {
	var b strings.Builder
	dump(&b, node, 0)
	return b.String()
}

func dump(b *strings.Builder, node Node, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString(describe(node))
	b.WriteByte('\n')
	for _, child := range node.ChildNodes() {
		dump(b, child, depth+1)
	}
	// alternate branches render at the same depth as their head
	if n, ok := node.(*If); ok {
		for alt := n.Else; alt != nil; alt = alt.Else {
			b.WriteString(indent)
			if alt.Expr != nil {
				fmt.Fprintf(b, "else if %v\n", alt.Expr)
			} else {
				b.WriteString("else\n")
			}
			for _, child := range alt.ChildNodes() {
				dump(b, child, depth+1)
			}
		}
	}
}

func describe(node Node) string {
	switch n := node.(type) {
	case *Root:
		return "root"
	case *Rule:
		return "rule " + strings.Join(n.Selectors, ", ")
	case *Attribute:
		if n.Expr != nil {
			return fmt.Sprintf("attribute %s = %v", n.Name, n.Expr)
		}
		return fmt.Sprintf("attribute %s: %s", n.Name, n.Value)
	case *Comment:
		kind := "loud"
		if n.Silent {
			kind = "silent"
		}
		return fmt.Sprintf("comment (%s) %s", kind, n.Text)
	case *Directive:
		return "directive " + n.Text
	case *VariableBinding:
		op := "="
		if n.Optional {
			op = "||="
		}
		return fmt.Sprintf("var !%s %s %v", n.Name, op, n.Expr)
	case *MixinDefinition:
		args := make([]string, len(n.Args))
		for i, arg := range n.Args {
			args[i] = "!" + arg.Name
			if arg.Default != nil {
				args[i] += fmt.Sprintf(" = %v", arg.Default)
			}
		}
		return fmt.Sprintf("mixin =%s(%s)", n.Name, strings.Join(args, ", "))
	case *MixinInclude:
		args := make([]string, len(n.Args))
		for i, arg := range n.Args {
			args[i] = fmt.Sprint(arg)
		}
		return fmt.Sprintf("include +%s(%s)", n.Name, strings.Join(args, ", "))
	case *If:
		return fmt.Sprintf("if %v", n.Expr)
	case *While:
		return fmt.Sprintf("while %v", n.Expr)
	case *For:
		keyword := "to"
		if n.Inclusive {
			keyword = "through"
		}
		return fmt.Sprintf("for !%s from %v %s %v", n.Variable, n.From, keyword, n.To)
	case *Debug:
		return fmt.Sprintf("debug %v", n.Expr)
	case *FileImport:
		return "import " + n.Path
	case *CSSImport:
		return "css-import " + n.Text
	default:
		return fmt.Sprintf("%T", node)
	}
}
