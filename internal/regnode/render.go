package regnode

import (
	"fmt"
	"strings"
)

var opSymbols = map[Kind]string{
	KindAdd:  "+",
	KindAnd:  "&",
	KindOr:   "|",
	KindShl:  "<<",
	KindLshr: ">>",
}

// Render converts a tree to a human-readable expression string. It is pure
// and total: every well-formed node (including nil and malformed child
// counts) renders to some string, so it is safe to embed in emitted output
// without an error path.
func Render(n *Node) string {
	return render(n, 0)
}

// render carries the binary-op nesting depth: the outermost operator is
// printed bare, every nested one is parenthesized.
func render(n *Node, nested int) string {
	if n == nil {
		return "null"
	}

	switch n.Kind {
	case KindConstant:
		if n.Value == 0 {
			return "0"
		}
		return fmt.Sprintf("0x%x", n.Value)

	case KindCall:
		return fmt.Sprintf("call_%s()", n.idString())

	case KindNumType:
		return fmt.Sprintf("num_%s", n.idString())

	case KindCommon:
		return fmt.Sprintf("var_%s", n.idString())

	case KindArg:
		if len(n.Children) == 0 {
			return "arg(?)"
		}
		return "arg(" + renderList(n.Children, nested) + ")"

	case KindAdd, KindAnd, KindOr, KindShl, KindLshr:
		if len(n.Children) != 2 {
			return n.Kind.String() + "(?)"
		}
		left := render(n.Children[0], nested+1)
		right := render(n.Children[1], nested+1)
		expr := left + " " + opSymbols[n.Kind] + " " + right
		if nested > 0 {
			return "(" + expr + ")"
		}
		return expr

	case KindPhi:
		return "phi(" + renderList(n.Children, nested) + ")"

	case KindSelect:
		return "select(" + renderList(n.Children, nested) + ")"
	}

	return n.Kind.String() + "(?)"
}

func renderList(children []*Node, nested int) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = render(c, nested)
	}
	return strings.Join(parts, ", ")
}
