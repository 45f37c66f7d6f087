package schema

import "slices"

// Index is a named index of one Table. Column slots are filled by position
// and may briefly hold "" while the index is being assembled.
type Index struct {
	Name            string
	Table           *Table
	Unique          bool
	FilterCondition string
	columns         []string
}

// SetColumn stores name at the 1-based position pos, padding unseen slots.
// Positions below 1 are ignored.
func (ix *Index) SetColumn(pos int, name string) {
	if pos < 1 {
		return
	}
	ix.columns = setAt(ix.columns, pos-1, name)
}

// Columns returns the index columns in position order.
func (ix *Index) Columns() []string {
	return slices.Clone(ix.columns)
}

// Complete reports whether every position has a column.
func (ix *Index) Complete() bool {
	return len(ix.columns) > 0 && !slices.Contains(ix.columns, "")
}

// Covers reports whether ix lives on table and has exactly the ordered
// column list columns.
func (ix *Index) Covers(table *Table, columns []string) bool {
	return SameTable(ix.Table, table) && slices.Equal(ix.columns, columns)
}
