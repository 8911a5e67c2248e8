package regnode

// Metrics summarizes the structural shape of a tree. The fields are flat
// integers so a Metrics value can be serialized or logged directly.
type Metrics struct {
	MaxDepth   int `json:"max_depth"`
	TotalNodes int `json:"total_nodes"`
	Constants  int `json:"constants"`
	Operations int `json:"operations"`
	Calls      int `json:"calls"`
	PhiNodes   int `json:"phi_nodes"`
}

// Analyze computes structural metrics for a tree. Pure and total: a nil
// node yields all-zero metrics. The root is at depth 0; MaxDepth is the
// depth of the deepest node. Calls counts CALL and NUM_TYPE nodes (both
// are externally-sourced unknowns), PhiNodes counts PHI and SELECT.
func Analyze(n *Node) Metrics {
	return analyze(n, 0)
}

func analyze(n *Node, depth int) Metrics {
	if n == nil {
		return Metrics{MaxDepth: depth}
	}

	m := Metrics{
		MaxDepth:   depth,
		TotalNodes: 1,
	}
	switch {
	case n.Kind == KindConstant:
		m.Constants = 1
	case n.Kind.IsBinary():
		m.Operations = 1
	case n.Kind == KindCall || n.Kind == KindNumType:
		m.Calls = 1
	case n.Kind.IsMerge():
		m.PhiNodes = 1
	}

	for _, c := range n.Children {
		cm := analyze(c, depth+1)
		if cm.MaxDepth > m.MaxDepth {
			m.MaxDepth = cm.MaxDepth
		}
		m.TotalNodes += cm.TotalNodes
		m.Constants += cm.Constants
		m.Operations += cm.Operations
		m.Calls += cm.Calls
		m.PhiNodes += cm.PhiNodes
	}

	return m
}
