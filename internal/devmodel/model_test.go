package devmodel

import (
	"errors"
	"testing"

	"github.com/virtfuzz/devilang/internal/regnode"
)

func uptr(v uint64) *uint64 { return &v }
func iptr(v int64) *int64   { return &v }

func TestBuildConstantLeaf(t *testing.T) {
	raw := &RawNode{NodeValueType: "k_NODE_VALUE_CONSTANT", Value: uptr(0x40)}
	node, err := raw.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if node.Kind != regnode.KindConstant || node.Value != 0x40 {
		t.Fatalf("node = %+v, want CONSTANT 0x40", node)
	}
	if node.HasID {
		t.Fatal("constant without varCnt should carry no identifier")
	}
}

func TestBuildBinaryTreeWithVarCnt(t *testing.T) {
	raw := &RawNode{
		NodeValueType: "k_NODE_VALUE_ADD",
		VarCnt:        iptr(5),
		Children: []*RawNode{
			{NodeValueType: "k_NODE_VALUE_CALL", VarCnt: iptr(1)},
			{NodeValueType: "k_NODE_VALUE_COMMON", VarCnt: iptr(1)},
		},
	}
	node, err := raw.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if node.Kind != regnode.KindAdd {
		t.Fatalf("kind = %v, want ADD", node.Kind)
	}
	if !node.HasID || node.ID != 5 {
		t.Fatalf("root id = (%v, %d), want (true, 5)", node.HasID, node.ID)
	}
	if len(node.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(node.Children))
	}
	if node.Children[0].Kind != regnode.KindCall || node.Children[1].Kind != regnode.KindCommon {
		t.Fatalf("child kinds = %v, %v", node.Children[0].Kind, node.Children[1].Kind)
	}
}

func TestBuildNullNodeCases(t *testing.T) {
	var absent *RawNode
	node, err := absent.Build()
	if err != nil || node != nil {
		t.Fatalf("nil RawNode: node=%v err=%v, want null node", node, err)
	}

	node, err = (&RawNode{}).Build()
	if err != nil || node != nil {
		t.Fatalf("empty tag: node=%v err=%v, want null node", node, err)
	}

	if got := regnode.Render(node); got != "null" {
		t.Fatalf("Render(null) = %q", got)
	}
}

func TestBuildRejectsUnknownTag(t *testing.T) {
	raw := &RawNode{NodeValueType: "k_NODE_VALUE_XOR"}
	_, err := raw.Build()
	var unknown *regnode.UnknownKindError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownKindError", err)
	}
	if unknown.Tag != "k_NODE_VALUE_XOR" {
		t.Fatalf("tag = %q", unknown.Tag)
	}
}

func TestBuildRejectsExcessiveDepth(t *testing.T) {
	leaf := &RawNode{NodeValueType: "k_NODE_VALUE_CONSTANT", Value: uptr(1)}
	root := leaf
	for i := 0; i < regnode.MaxDepth+8; i++ {
		root = &RawNode{
			NodeValueType: "k_NODE_VALUE_ADD",
			Children:      []*RawNode{root, leaf},
		}
	}
	_, err := root.Build()
	if !errors.Is(err, regnode.ErrDepthExceeded) {
		t.Fatalf("err = %v, want ErrDepthExceeded", err)
	}
}

func TestDecodeModel(t *testing.T) {
	data := []byte(`{
		"ops": [
			{"id": 1, "operation": {
				"type": "mmio", "rw": "W", "name": "ctrl", "size": 4,
				"reg": [64], "regionId": 2,
				"regNode": {"nodeValueType": "k_NODE_VALUE_CONSTANT", "value": 16}
			}},
			{"id": 2, "callee": {"name": "dma_start", "numArgs": 3, "returnType": "void"}}
		],
		"bb": {"bb_0": "1 2"},
		"funcs": {"reset": {"paths": {"0": "0"}}}
	}`)

	m, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.Ops) != 2 {
		t.Fatalf("ops = %d, want 2", len(m.Ops))
	}

	op := m.Ops[0]
	if op.Operation == nil || op.Callee != nil {
		t.Fatal("op 1 should be a register operation")
	}
	if !op.Operation.IsWrite() {
		t.Fatalf("rw %q should be a write", op.Operation.RW)
	}
	if op.Operation.Addr() != 64 {
		t.Fatalf("addr = %d, want 64", op.Operation.Addr())
	}

	node, err := op.Operation.RegNode.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := regnode.Render(node); got != "0x10" {
		t.Fatalf("Render = %q, want 0x10", got)
	}

	if m.Ops[1].Callee == nil || m.Ops[1].Callee.Name != "dma_start" {
		t.Fatalf("op 2 callee = %+v", m.Ops[1].Callee)
	}
	if m.Blocks["bb_0"] != "1 2" {
		t.Fatalf("bb = %v", m.Blocks)
	}
	if m.Funcs["reset"].Paths["0"] != "0" {
		t.Fatalf("funcs = %v", m.Funcs)
	}
}

func TestOperationAddrWithoutRegs(t *testing.T) {
	op := &Operation{}
	if op.Addr() != 0 {
		t.Fatalf("Addr = %d, want 0", op.Addr())
	}
}
