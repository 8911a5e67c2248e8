package facts

import "strconv"

// Delta captures added and removed fact rows between two snapshots of the
// same device model, e.g. across two runs of the upstream analysis.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two
// snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Ops = diffRows(from.Ops, to.Ops, opKey)
	out.Blocks = diffRows(from.Blocks, to.Blocks, blockKey)
	out.Paths = diffRows(from.Paths, to.Paths, pathKey)
	out.Funcs = diffRows(from.Funcs, to.Funcs, funcKey)
	out.Structs = diffRows(from.Structs, to.Structs, structKey)
	out.StructFields = diffRows(from.StructFields, to.StructFields, structFieldKey)

	return out
}

// opKey deliberately omits the witness fields: two snapshots of the same
// op differing only in the random witness drawn are the same fact.
func opKey(r OpRow) string {
	return int64Key(r.ID) + "|" + r.Kind + "|" + r.Direction + "|" + r.Name + "|" +
		int64Key(r.Size) + "|" + int64Key(r.Region) + "|" + r.Address + "|" +
		r.Callee + "|" + int64Key(r.NumArgs) + "|" + r.ReturnType + "|" + r.Data + "|" +
		intKey(r.MaxDepth) + "|" + intKey(r.TotalNodes) + "|" + intKey(r.Constants) + "|" +
		intKey(r.Operations) + "|" + intKey(r.Calls) + "|" + intKey(r.PhiNodes)
}

func blockKey(r BlockRow) string {
	return r.Block + "|" + r.OpID + "|" + intKey(r.Pos)
}

func pathKey(r PathRow) string {
	return r.Func + "|" + r.Path + "|" + r.Block + "|" + intKey(r.Pos)
}

func funcKey(r FuncRow) string {
	return r.Name + "|" + intKey(r.PathCount)
}

func structKey(r StructRow) string {
	return int64Key(r.Index) + "|" + r.Name + "|" + intKey(r.FieldCount)
}

func structFieldKey(r StructFieldRow) string {
	return r.Struct + "|" + r.Name + "|" + r.Type + "|" + r.Constraint
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]struct{}, len(from))
	for _, row := range from {
		fromSet[key(row)] = struct{}{}
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}

func intKey(v int) string {
	return strconv.Itoa(v)
}

func int64Key(v int64) string {
	return strconv.FormatInt(v, 10)
}
