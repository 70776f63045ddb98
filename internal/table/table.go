// Package table holds the in-memory tabular model shared by the
// preprocessing pipelines: ordered named columns over rows of nullable
// scalar cells.
package table

import "fmt"

// Table is a row-major table with an ordered set of named columns.
// Column names are unique; cell access by an absent column name yields
// null rather than an error, which is what the capability-guarded
// normalizer steps rely on.
type Table struct {
	cols []string
	idx  map[string]int
	rows [][]Value
}

// New returns an empty table with the given columns.
func New(cols ...string) *Table {
	t := &Table{
		cols: append([]string(nil), cols...),
		idx:  make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, dup := t.idx[c]; dup {
			panic(fmt.Sprintf("table: duplicate column %q", c))
		}
		t.idx[c] = i
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.idx[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Append adds a row. The row length must match the column count.
func (t *Table) Append(row []Value) {
	if len(row) != len(t.cols) {
		panic(fmt.Sprintf("table: row has %d cells, table has %d columns", len(row), len(t.cols)))
	}
	t.rows = append(t.rows, row)
}

// Row returns row i. The slice is shared, not copied.
func (t *Table) Row(i int) []Value { return t.rows[i] }

// Value returns the cell at (row, col), or null if the column is absent.
func (t *Table) Value(row int, col string) Value {
	i, ok := t.idx[col]
	if !ok {
		return Null()
	}
	return t.rows[row][i]
}

// AddColumn appends a derived column, computing one cell per row from
// the existing cells. The column must not already exist.
func (t *Table) AddColumn(name string, derive func(row []Value) Value) {
	if t.HasColumn(name) {
		panic(fmt.Sprintf("table: column %q already exists", name))
	}
	t.idx[name] = len(t.cols)
	t.cols = append(t.cols, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], derive(t.rows[i]))
	}
}

// Rename renames a column in place. Renaming an absent column is a
// no-op; renaming onto an existing name panics.
func (t *Table) Rename(from, to string) {
	i, ok := t.idx[from]
	if !ok {
		return
	}
	if t.HasColumn(to) {
		panic(fmt.Sprintf("table: column %q already exists", to))
	}
	delete(t.idx, from)
	t.idx[to] = i
	t.cols[i] = to
}

// Select returns a new table restricted to the named columns, in the
// given order. Absent columns are skipped.
func (t *Table) Select(cols ...string) *Table {
	var keep []string
	var src []int
	for _, c := range cols {
		if i, ok := t.idx[c]; ok {
			keep = append(keep, c)
			src = append(src, i)
		}
	}
	out := New(keep...)
	for _, row := range t.rows {
		nr := make([]Value, len(src))
		for j, i := range src {
			nr[j] = row[i]
		}
		out.Append(nr)
	}
	return out
}

// Filter returns a new table holding only the rows keep reports true for.
func (t *Table) Filter(keep func(row []Value) bool) *Table {
	out := New(t.cols...)
	for _, row := range t.rows {
		if keep(row) {
			out.Append(append([]Value(nil), row...))
		}
	}
	return out
}

// DropNull returns a new table without the rows that are null in any of
// the named columns. Absent columns are ignored.
func (t *Table) DropNull(cols ...string) *Table {
	var src []int
	for _, c := range cols {
		if i, ok := t.idx[c]; ok {
			src = append(src, i)
		}
	}
	return t.Filter(func(row []Value) bool {
		for _, i := range src {
			if row[i].IsNull() {
				return false
			}
		}
		return true
	})
}
