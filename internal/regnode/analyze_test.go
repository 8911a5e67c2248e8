package regnode

import "testing"

func TestAnalyzeCountsByCategory(t *testing.T) {
	tree := Binary(KindAdd,
		Constant(1),
		Phi(Call(1), NumType(2)))

	m := Analyze(tree)
	want := Metrics{
		MaxDepth:   2,
		TotalNodes: 4,
		Constants:  1,
		Operations: 1,
		Calls:      2,
		PhiNodes:   1,
	}
	if m != want {
		t.Fatalf("Analyze = %+v, want %+v", m, want)
	}
}

func TestAnalyzeNullNode(t *testing.T) {
	if m := Analyze(nil); m != (Metrics{}) {
		t.Fatalf("Analyze(nil) = %+v, want zero metrics", m)
	}
}

func TestAnalyzeSingleLeaf(t *testing.T) {
	m := Analyze(Constant(5))
	want := Metrics{MaxDepth: 0, TotalNodes: 1, Constants: 1}
	if m != want {
		t.Fatalf("Analyze = %+v, want %+v", m, want)
	}
}

func TestAnalyzeDepthFollowsDeepestLeaf(t *testing.T) {
	deep := Binary(KindShl,
		Binary(KindAdd, Binary(KindOr, Constant(1), Constant(2)), Constant(3)),
		Constant(4))

	m := Analyze(deep)
	if m.MaxDepth != 3 {
		t.Fatalf("MaxDepth = %d, want 3", m.MaxDepth)
	}
	if m.TotalNodes != 7 {
		t.Fatalf("TotalNodes = %d, want 7", m.TotalNodes)
	}
	if m.Operations != 3 {
		t.Fatalf("Operations = %d, want 3", m.Operations)
	}
}

func TestAnalyzeSelectCountsAsPhi(t *testing.T) {
	m := Analyze(Select(Constant(1), Select(Constant(2), Constant(3))))
	if m.PhiNodes != 2 {
		t.Fatalf("PhiNodes = %d, want 2", m.PhiNodes)
	}
}

func TestAnalyzeCommonIsPlainNode(t *testing.T) {
	// COMMON references count toward the node total but none of the
	// categorized buckets.
	m := Analyze(Common(3))
	want := Metrics{TotalNodes: 1}
	if m != want {
		t.Fatalf("Analyze = %+v, want %+v", m, want)
	}
}
