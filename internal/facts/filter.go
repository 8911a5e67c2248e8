package facts

// FilterByDirection returns a new Tables keeping only mmio op rows with
// the given direction ("w" or "r") and the block memberships that still
// reference a surviving op. Path, func and structure rows are unaffected;
// they do not depend on op direction.
func FilterByDirection(tables Tables, direction string) Tables {
	out := emptyTables()
	out.Paths = append(out.Paths, tables.Paths...)
	out.Funcs = append(out.Funcs, tables.Funcs...)
	out.Structs = append(out.Structs, tables.Structs...)
	out.StructFields = append(out.StructFields, tables.StructFields...)

	kept := make(map[string]bool)
	for _, row := range tables.Ops {
		if row.Kind == "mmio" && row.Direction != direction {
			continue
		}
		out.Ops = append(out.Ops, row)
		kept[int64Key(row.ID)] = true
	}

	for _, row := range tables.Blocks {
		if kept[row.OpID] {
			out.Blocks = append(out.Blocks, row)
		}
	}

	return out
}
