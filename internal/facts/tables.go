// Package facts flattens a decoded device model into relational tables:
// one row per operation, block membership, path step, function and DMA
// structure field. The flat shape serializes directly and is the input
// the policy engine queries.
package facts

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/virtfuzz/devilang/internal/devmodel"
	"github.com/virtfuzz/devilang/internal/regnode"
)

// Tables is the relational fact model for a single device model.
type Tables struct {
	Ops          []OpRow          `json:"ops"`
	Blocks       []BlockRow       `json:"blocks"`
	Paths        []PathRow        `json:"paths"`
	Funcs        []FuncRow        `json:"funcs"`
	Structs      []StructRow      `json:"structs"`
	StructFields []StructFieldRow `json:"struct_fields"`
}

// OpRow is one operation with its regnode summary inlined. Data holds the
// rendered value expression for write operations only; the structural
// metrics cover whatever regnode the operation carries. When witness
// evaluation is requested, Witness/WitnessOK/EvalError record the per-op
// outcome: an op whose evaluation fails keeps its row (with the error
// noted) and does not abort its siblings.
type OpRow struct {
	ID         int64  `json:"id"`
	Kind       string `json:"kind"`
	Direction  string `json:"direction,omitempty"`
	Name       string `json:"name,omitempty"`
	Size       int64  `json:"size,omitempty"`
	Region     int64  `json:"region,omitempty"`
	Address    string `json:"address,omitempty"`
	Callee     string `json:"callee,omitempty"`
	NumArgs    int64  `json:"num_args,omitempty"`
	ReturnType string `json:"return_type,omitempty"`
	Data       string `json:"data,omitempty"`

	MaxDepth   int `json:"max_depth"`
	TotalNodes int `json:"total_nodes"`
	Constants  int `json:"constants"`
	Operations int `json:"operations"`
	Calls      int `json:"calls"`
	PhiNodes   int `json:"phi_nodes"`

	Witness   uint64 `json:"witness,omitempty"`
	WitnessOK bool   `json:"witness_ok,omitempty"`
	EvalError string `json:"eval_error,omitempty"`
}

// BlockRow is one op membership in a basic block.
type BlockRow struct {
	Block string `json:"block"`
	OpID  string `json:"op_id"`
	Pos   int    `json:"pos"`
}

// PathRow is one basic-block step of an execution path.
type PathRow struct {
	Func  string `json:"func"`
	Path  string `json:"path"`
	Block string `json:"block"`
	Pos   int    `json:"pos"`
}

// FuncRow is one device function.
type FuncRow struct {
	Name      string `json:"name"`
	PathCount int    `json:"path_count"`
}

// StructRow is one DMA structure.
type StructRow struct {
	Index      int64  `json:"index"`
	Name       string `json:"name"`
	FieldCount int    `json:"field_count"`
}

// StructFieldRow is one DMA structure field with its constraint rendered
// as a single string.
type StructFieldRow struct {
	Struct     string `json:"struct"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Constraint string `json:"constraint,omitempty"`
}

// Options controls fact building.
type Options struct {
	// Evaluate computes a random witness value for every op that carries
	// a regnode, using one fresh environment and one RNG per op so a
	// failure or binding in one op never leaks into another.
	Evaluate bool
	// Seed makes witness evaluation reproducible. Each op derives its RNG
	// from Seed and its own id.
	Seed int64
}

// Sentinel addresses the analysis emits when the real offset is unknown.
const (
	addrUnknownA = 0xdeadbeef
	addrUnknownB = 0xdeadc0de
)

// Build flattens a model into fact tables.
func Build(m *devmodel.Model, opts Options) Tables {
	tables := emptyTables()

	for _, op := range m.Ops {
		tables.Ops = append(tables.Ops, buildOpRow(op, opts))
	}

	for _, block := range sortedKeys(m.Blocks) {
		for pos, opID := range strings.Fields(m.Blocks[block]) {
			tables.Blocks = append(tables.Blocks, BlockRow{
				Block: block,
				OpID:  opID,
				Pos:   pos,
			})
		}
	}

	for _, name := range sortedKeys(m.Funcs) {
		paths := m.Funcs[name].Paths
		tables.Funcs = append(tables.Funcs, FuncRow{
			Name:      name,
			PathCount: len(paths),
		})
		for _, pathID := range sortedKeys(paths) {
			for pos, bbID := range strings.Fields(paths[pathID]) {
				tables.Paths = append(tables.Paths, PathRow{
					Func:  name,
					Path:  pathID,
					Block: bbID,
					Pos:   pos,
				})
			}
		}
	}

	for _, st := range m.Structures {
		tables.Structs = append(tables.Structs, StructRow{
			Index:      st.Index,
			Name:       st.Name,
			FieldCount: len(st.Fields),
		})
		for _, f := range st.Fields {
			tables.StructFields = append(tables.StructFields, StructFieldRow{
				Struct:     st.Name,
				Name:       f.Name,
				Type:       f.Type,
				Constraint: fieldConstraint(f),
			})
		}
	}

	return tables
}

func buildOpRow(op devmodel.Op, opts Options) OpRow {
	row := OpRow{ID: op.ID, Kind: "unknown"}

	switch {
	case op.Operation != nil:
		o := op.Operation
		row.Kind = "mmio"
		row.Direction = o.Direction()
		row.Name = o.Name
		row.Size = o.Size
		row.Region = o.RegionID
		row.Address = formatAddr(o.Addr())

		node, err := o.RegNode.Build()
		if err != nil {
			row.EvalError = err.Error()
			return row
		}
		metrics := regnode.Analyze(node)
		row.MaxDepth = metrics.MaxDepth
		row.TotalNodes = metrics.TotalNodes
		row.Constants = metrics.Constants
		row.Operations = metrics.Operations
		row.Calls = metrics.Calls
		row.PhiNodes = metrics.PhiNodes

		if o.IsWrite() {
			row.Data = regnode.Render(node)
		}

		if opts.Evaluate && node != nil {
			rng := rand.New(rand.NewSource(opts.Seed ^ op.ID))
			v, err := regnode.Evaluate(node, regnode.Env{}, rng)
			if err != nil {
				row.EvalError = err.Error()
			} else {
				row.Witness = v
				row.WitnessOK = true
			}
		}

	case op.Callee != nil:
		row.Kind = "call"
		row.Callee = op.Callee.Name
		row.NumArgs = op.Callee.NumArgs
		row.ReturnType = op.Callee.ReturnType
	}

	return row
}

func formatAddr(addr int64) string {
	if addr == addrUnknownA || addr == addrUnknownB {
		return "unknown"
	}
	return fmt.Sprintf("%#x", addr)
}

func fieldConstraint(f devmodel.Field) string {
	switch {
	case len(f.Values) > 0:
		return "= " + string(f.Values)
	case f.IntMask != nil:
		return fmt.Sprintf("mask: %d", *f.IntMask)
	case f.IntMin != nil && f.IntMax != nil:
		return fmt.Sprintf("range: %d..%d", *f.IntMin, *f.IntMax)
	}
	return ""
}

func emptyTables() Tables {
	return Tables{
		Ops:          []OpRow{},
		Blocks:       []BlockRow{},
		Paths:        []PathRow{},
		Funcs:        []FuncRow{},
		Structs:      []StructRow{},
		StructFields: []StructFieldRow{},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
