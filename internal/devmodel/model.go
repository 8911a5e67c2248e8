// Package devmodel decodes device-model JSON records: the per-device
// operation list, basic blocks, function paths and DMA structures produced
// by the upstream static analysis, plus construction of regnode trees from
// the raw per-operation value records.
package devmodel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/virtfuzz/devilang/internal/regnode"
)

// Model is one decoded device-model config file.
type Model struct {
	Ops        []Op              `json:"ops,omitempty"`
	Blocks     map[string]string `json:"bb,omitempty"`
	Funcs      map[string]Func   `json:"funcs,omitempty"`
	Structures []Structure       `json:"structures,omitempty"`

	// DMA bookkeeping carried through untouched; merging separate DMA
	// models is out of scope for this tool.
	DMANum *int64          `json:"dmaNum,omitempty"`
	DMAOps json.RawMessage `json:"dmaOps,omitempty"`
}

// Op is one entry of the ops list: either a register operation or a
// function call, distinguished by which of the two fields is present.
type Op struct {
	ID        int64      `json:"id"`
	Operation *Operation `json:"operation,omitempty"`
	Callee    *Callee    `json:"callee,omitempty"`
}

// Operation describes an MMIO/PIO register access.
type Operation struct {
	Type     string   `json:"type,omitempty"`
	RW       string   `json:"rw,omitempty"`
	Name     string   `json:"name,omitempty"`
	Size     int64    `json:"size,omitempty"`
	Reg      []int64  `json:"reg,omitempty"`
	RegionID int64    `json:"regionId,omitempty"`
	RegNode  *RawNode `json:"regNode,omitempty"`
}

// Addr returns the operation's register address: the first reg entry, or 0
// when none was recorded.
func (o *Operation) Addr() int64 {
	if len(o.Reg) == 0 {
		return 0
	}
	return o.Reg[0]
}

// Direction returns the operation's read/write tag lowered; the input is
// not case-normalized.
func (o *Operation) Direction() string { return strings.ToLower(o.RW) }

// IsWrite reports whether the operation writes the register.
func (o *Operation) IsWrite() bool { return o.Direction() == "w" }

// IsRead reports whether the operation reads the register.
func (o *Operation) IsRead() bool { return o.Direction() == "r" }

// Callee describes a function-call operation.
type Callee struct {
	Name       string `json:"name,omitempty"`
	NumArgs    int64  `json:"numArgs,omitempty"`
	ReturnType string `json:"returnType,omitempty"`
}

// Func holds the execution paths recorded for one device function. Each
// path value is a space-separated list of basic-block ids.
type Func struct {
	Paths map[string]string `json:"paths,omitempty"`
}

// Structure is one DMA structure description.
type Structure struct {
	Index  int64   `json:"index"`
	Name   string  `json:"name,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

// Field is one DMA structure field. The constraint annotations are
// mutually exclusive in practice but the input does not enforce that.
type Field struct {
	Name    string          `json:"name,omitempty"`
	Type    string          `json:"field_type,omitempty"`
	Values  json.RawMessage `json:"values,omitempty"`
	IntMask *int64          `json:"int_mask,omitempty"`
	IntMin  *int64          `json:"int_min,omitempty"`
	IntMax  *int64          `json:"int_max,omitempty"`
}

// RawNode is the wire form of a regnode, exactly as it appears under an
// operation's regNode key.
type RawNode struct {
	NodeValueType string     `json:"nodeValueType,omitempty"`
	Value         *uint64    `json:"value,omitempty"`
	VarCnt        *int64     `json:"varCnt,omitempty"`
	Children      []*RawNode `json:"children,omitempty"`
}

// Build constructs the immutable regnode tree for the raw record. A nil
// record or an absent/empty tag yields the null node. Tags outside the
// closed variant set and trees deeper than regnode.MaxDepth are hard
// errors; there is no placeholder fallback for unrecognized input.
func (r *RawNode) Build() (*regnode.Node, error) {
	return buildNode(r, 0)
}

func buildNode(r *RawNode, depth int) (*regnode.Node, error) {
	if depth > regnode.MaxDepth {
		return nil, fmt.Errorf("building regnode: %w", regnode.ErrDepthExceeded)
	}
	if r == nil || r.NodeValueType == "" {
		return nil, nil
	}

	kind, err := regnode.ParseKind(r.NodeValueType)
	if err != nil {
		return nil, fmt.Errorf("building regnode: %w", err)
	}

	node := &regnode.Node{Kind: kind}
	if r.Value != nil {
		node.Value = *r.Value
	}
	if r.VarCnt != nil {
		node.Bind(*r.VarCnt)
	}
	if len(r.Children) > 0 {
		node.Children = make([]*regnode.Node, len(r.Children))
		for i, c := range r.Children {
			child, err := buildNode(c, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children[i] = child
		}
	}
	return node, nil
}

// Decode unmarshals a device-model config from JSON bytes.
func Decode(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding device model: %w", err)
	}
	return &m, nil
}
