package models

// Table is the rectangular reshaping of Records: one row per record, one
// column per attribute. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the cells of the named column.
func (t *Table) Column(name string) ([]Cell, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Clone returns a deep copy so a normalization pass leaves the raw table intact.
func (t *Table) Clone() *Table {
	cp := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cp.Rows[i] = append([]Cell(nil), row...)
	}
	return cp
}
