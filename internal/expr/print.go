package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the number the way it was most likely written:
// integral values without a decimal point, unit attached.
func (n *Number) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64) + n.Unit
}

func (n *Color) String() string { return n.Original }

func (n *String) String() string {
	if n.Quoted {
		return strconv.Quote(n.Value)
	}
	return n.Value
}

func (n *Bool) String() string { return strconv.FormatBool(n.Value) }

func (n *Variable) String() string { return "!" + n.Name }

func (n *UnaryOp) String() string {
	if n.Op == OpNot {
		return fmt.Sprintf("not %v", n.Operand)
	}
	return fmt.Sprintf("%s%v", n.Op, n.Operand)
}

func (n *BinaryOp) String() string {
	if n.Op == OpConcat {
		return fmt.Sprintf("%v %v", n.Left, n.Right)
	}
	return fmt.Sprintf("(%v %s %v)", n.Left, n.Op, n.Right)
}

func (n *FuncCall) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = fmt.Sprint(arg)
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
}
