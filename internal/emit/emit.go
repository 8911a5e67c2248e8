// Package emit renders a decoded device model as line-oriented DeviLang
// text: op blocks, basic blocks, execution paths, functions and DMA
// structures. Map-backed sections are emitted in sorted key order so the
// same model always produces the same bytes.
package emit

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/virtfuzz/devilang/internal/devmodel"
	"github.com/virtfuzz/devilang/internal/regnode"
)

// Addresses recorded by the analysis when the real register offset is
// unknown.
const (
	addrUnknownA = 0xdeadbeef
	addrUnknownB = 0xdeadc0de
)

// Options selects which sections Convert emits. With no section selected,
// every section present in the model is emitted.
type Options struct {
	OpsOnly     bool
	BlocksOnly  bool
	PathsOnly   bool
	FuncsOnly   bool
	StructsOnly bool
}

func (o Options) selective() bool {
	return o.OpsOnly || o.BlocksOnly || o.PathsOnly || o.FuncsOnly || o.StructsOnly
}

// Convert writes the DeviLang rendering of a model to w.
func Convert(m *devmodel.Model, opts Options, w io.Writer) error {
	wr := NewWriter(w)
	selective := opts.selective()

	if (!selective || opts.OpsOnly) && len(m.Ops) > 0 {
		if err := wr.Ops(m.Ops); err != nil {
			return err
		}
	}
	if (!selective || opts.BlocksOnly) && len(m.Blocks) > 0 {
		if err := wr.Blocks(m.Blocks); err != nil {
			return err
		}
	}
	if (!selective || opts.PathsOnly) && len(m.Funcs) > 0 {
		if err := wr.Paths(m.Funcs); err != nil {
			return err
		}
	}
	if (!selective || opts.FuncsOnly) && len(m.Funcs) > 0 {
		if err := wr.Funcs(m.Funcs); err != nil {
			return err
		}
	}
	if (!selective || opts.StructsOnly) && len(m.Structures) > 0 {
		if err := wr.Structures(m.Structures); err != nil {
			return err
		}
	}
	return nil
}

// Writer emits DeviLang sections to an underlying io.Writer. The first
// write error sticks and is returned by every subsequent method.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (wr *Writer) printf(format string, args ...interface{}) {
	if wr.err != nil {
		return
	}
	_, wr.err = fmt.Fprintf(wr.w, format, args...)
}

// Ops emits one op block per operation. Write operations carry a data
// field holding the rendered regnode expression; read operations never
// invoke the renderer. Sentinel addresses print as unknown.
func (wr *Writer) Ops(ops []devmodel.Op) error {
	for _, op := range ops {
		switch {
		case op.Operation != nil:
			if err := wr.mmioOp(op); err != nil {
				return err
			}
		case op.Callee != nil:
			wr.printf("op op_%d {\n", op.ID)
			wr.printf("    call %s;\n", op.Callee.Name)
			wr.printf("}\n\n")
		default:
			wr.printf("Op[%d] UNKNOWN_OP\n", op.ID)
		}
	}
	wr.printf("\n")
	return wr.err
}

func (wr *Writer) mmioOp(op devmodel.Op) error {
	o := op.Operation
	addr := o.Addr()

	wr.printf("op op_%d {\n", op.ID)
	switch {
	case o.IsWrite():
		expr, err := writeExpr(o)
		if err != nil {
			return fmt.Errorf("op %d: %w", op.ID, err)
		}
		wr.printf("    mmio %s_%d {\n", o.Name, op.ID)
		wr.printf("        direction=%s;\n", o.Direction())
		wr.printf("        region=%d;\n", o.RegionID)
		if addr == addrUnknownA || addr == addrUnknownB {
			wr.printf("        address=unknown;\n")
		} else {
			wr.printf("        address=%#x;\n", addr)
		}
		wr.printf("        size=%d;\n", o.Size)
		wr.printf("        data=%s;\n", expr)
		wr.printf("    }\n")
	case o.IsRead():
		wr.printf("    mmio %s_%d {\n", o.Name, op.ID)
		wr.printf("        direction=%s;\n", o.Direction())
		wr.printf("        region=%d;\n", o.RegionID)
		wr.printf("        address=%#x;\n", addr)
		wr.printf("        size=%d;\n", o.Size)
		wr.printf("    }\n")
	}
	wr.printf("}\n\n")
	return wr.err
}

func writeExpr(o *devmodel.Operation) (string, error) {
	node, err := o.RegNode.Build()
	if err != nil {
		return "", err
	}
	return regnode.Render(node), nil
}

// Blocks emits one bb block per basic block, listing its op ids.
func (wr *Writer) Blocks(blocks map[string]string) error {
	for _, key := range sortedKeys(blocks) {
		wr.printf("bb %s {\n", key)
		for _, opID := range strings.Fields(blocks[key]) {
			wr.printf("    op op_%s;\n", opID)
		}
		wr.printf("}\n\n")
	}
	return wr.err
}

// Paths emits the execution paths recorded for each function.
func (wr *Writer) Paths(funcs map[string]devmodel.Func) error {
	for _, name := range sortedKeys(funcs) {
		paths := funcs[name].Paths
		for _, pathID := range sortedKeys(paths) {
			bbIDs := strings.Fields(paths[pathID])
			wr.printf("path %s_%s {\n", name, pathID)
			for _, bbID := range bbIDs {
				wr.printf("    bb bb_%s\n", bbID)
			}
			wr.printf("}\n\n")
		}
	}
	return wr.err
}

// Funcs emits one func block per function, listing its path names.
func (wr *Writer) Funcs(funcs map[string]devmodel.Func) error {
	for _, name := range sortedKeys(funcs) {
		wr.printf("func %s {\n", name)
		for _, pathID := range sortedKeys(funcs[name].Paths) {
			wr.printf("    path path_%s_%s;\n", name, pathID)
		}
		wr.printf("}\n\n")
	}
	return wr.err
}

// Structures emits the DMA structure listing.
func (wr *Writer) Structures(structures []devmodel.Structure) error {
	banner := strings.Repeat("=", 80)
	wr.printf("%s\n", banner)
	wr.printf("DMA STRUCTURES (Total: %d)\n", len(structures))
	wr.printf("%s\n", banner)

	for _, st := range structures {
		wr.printf("  Struct[%d]: %s\n", st.Index, st.Name)
		for _, f := range st.Fields {
			wr.printf("    %s: %s", f.Name, f.Type)
			switch {
			case len(f.Values) > 0:
				wr.printf(" = %s", string(f.Values))
			case f.IntMask != nil:
				wr.printf(" (mask: %d)", *f.IntMask)
			case f.IntMin != nil && f.IntMax != nil:
				wr.printf(" (range: %d..%d)", *f.IntMin, *f.IntMax)
			}
			wr.printf("\n")
		}
		wr.printf("\n")
	}
	return wr.err
}

// sortedKeys orders map keys numerically when every key parses as an
// integer, lexicographically otherwise. Path and block ids are numeric
// strings, so plain string order would put "10" before "2".
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	allNumeric := true
	for k := range m {
		keys = append(keys, k)
		if _, err := strconv.Atoi(k); err != nil {
			allNumeric = false
		}
	}
	if allNumeric {
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
	} else {
		sort.Strings(keys)
	}
	return keys
}
