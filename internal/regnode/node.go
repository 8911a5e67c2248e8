// Package regnode implements the register-value expression tree extracted
// from device-model records: a small tagged-variant IR with a deterministic
// renderer, a randomized concrete evaluator, and a structural analyzer.
package regnode

import "fmt"

// Kind identifies a node variant. The set is closed: decoding input with a
// tag outside this set is a hard error, never a silent fallback.
type Kind int

const (
	KindConstant Kind = iota
	KindCall
	KindNumType
	KindCommon
	KindArg
	KindAdd
	KindAnd
	KindOr
	KindShl
	KindLshr
	KindPhi
	KindSelect
)

// MaxDepth bounds tree depth for construction and evaluation. Input records
// are externally controlled, so depth is checked rather than trusted.
const MaxDepth = 4096

var kindNames = map[Kind]string{
	KindConstant: "CONSTANT",
	KindCall:     "CALL",
	KindNumType:  "NUM_TYPE",
	KindCommon:   "COMMON",
	KindArg:      "ARG",
	KindAdd:      "ADD",
	KindAnd:      "AND",
	KindOr:       "OR",
	KindShl:      "SHL",
	KindLshr:     "LSHR",
	KindPhi:      "PHI",
	KindSelect:   "SELECT",
}

// wireTags maps the nodeValueType discriminants used by the device-model
// JSON to kinds.
var wireTags = map[string]Kind{
	"k_NODE_VALUE_CONSTANT": KindConstant,
	"k_NODE_VALUE_CALL":     KindCall,
	"k_NODE_VALUE_NUM_TYPE": KindNumType,
	"k_NODE_VALUE_COMMON":   KindCommon,
	"k_NODE_VALUE_ARG":      KindArg,
	"k_NODE_VALUE_ADD":      KindAdd,
	"k_NODE_VALUE_AND":      KindAnd,
	"k_NODE_VALUE_OR":       KindOr,
	"k_NODE_VALUE_SHL":      KindShl,
	"k_NODE_VALUE_LSHR":     KindLshr,
	"k_NODE_VALUE_PHI":      KindPhi,
	"k_NODE_VALUE_SELECT":   KindSelect,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a wire tag to its Kind. Unrecognized tags fail with
// UnknownKindError; callers must not degrade them to a placeholder.
func ParseKind(tag string) (Kind, error) {
	if k, ok := wireTags[tag]; ok {
		return k, nil
	}
	return 0, &UnknownKindError{Tag: tag}
}

// IsBinary reports whether the kind is a two-operand bit operation.
func (k Kind) IsBinary() bool {
	switch k {
	case KindAdd, KindAnd, KindOr, KindShl, KindLshr:
		return true
	}
	return false
}

// IsMerge reports whether the kind is a control-flow merge (Phi or Select).
func (k Kind) IsMerge() bool {
	return k == KindPhi || k == KindSelect
}

// Node is one regnode. A nil *Node is the null node: it renders as "null"
// and evaluates to 0. Trees are built once from an input record and are
// read-only afterwards; Render, Evaluate and Analyze never mutate them.
//
// Any node may carry an identifier (HasID). Evaluation records the node's
// value under that identifier so later Common nodes in the same traversal
// resolve to it; this is how the tree expresses shared sub-expressions
// without graph edges.
type Node struct {
	Kind     Kind
	Value    uint64 // Constant only
	ID       int64
	HasID    bool
	Children []*Node
}

// Bind attaches an identifier to the node and returns it, for use while
// assembling trees.
func (n *Node) Bind(id int64) *Node {
	n.ID = id
	n.HasID = true
	return n
}

// Constant returns a literal-value leaf.
func Constant(v uint64) *Node {
	return &Node{Kind: KindConstant, Value: v}
}

// Call returns a leaf standing for the result of an external function call.
func Call(id int64) *Node {
	return (&Node{Kind: KindCall}).Bind(id)
}

// NumType returns a leaf standing for the result of a numeric-type probe.
func NumType(id int64) *Node {
	return (&Node{Kind: KindNumType}).Bind(id)
}

// Common returns a reference to the value bound earlier under id.
func Common(id int64) *Node {
	return (&Node{Kind: KindCommon}).Bind(id)
}

// Arg returns a node holding alternative argument values; evaluation
// realizes exactly one of them.
func Arg(children ...*Node) *Node {
	return &Node{Kind: KindArg, Children: children}
}

// Binary returns a two-operand bit-operation node of the given kind.
func Binary(k Kind, left, right *Node) *Node {
	return &Node{Kind: k, Children: []*Node{left, right}}
}

// Phi returns a control-flow merge node.
func Phi(children ...*Node) *Node {
	return &Node{Kind: KindPhi, Children: children}
}

// Select returns a select merge node.
func Select(children ...*Node) *Node {
	return &Node{Kind: KindSelect, Children: children}
}

func (n *Node) idString() string {
	if n.HasID {
		return fmt.Sprintf("%d", n.ID)
	}
	return "?"
}
