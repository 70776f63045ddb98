package enem

import (
	"strings"

	"github.com/painel-enem/enem-cli/internal/table"
)

// group is one distinct combination of dimension values and the rows
// that carry it.
type group struct {
	dims []table.Value
	rows []int
}

// groupRows partitions the table by the named dimensions, in first-seen
// order. A null dimension value is a valid key, not a dropped row.
// Dimensions absent from the table key every row on null.
func groupRows(t *table.Table, dims []string) []*group {
	index := make(map[string]*group)
	var order []*group

	var key strings.Builder
	for i := 0; i < t.Len(); i++ {
		key.Reset()
		vals := make([]table.Value, len(dims))
		for j, d := range dims {
			vals[j] = t.Value(i, d)
			key.WriteString(vals[j].GroupKey())
			key.WriteByte(0x1f)
		}
		k := key.String()
		g, ok := index[k]
		if !ok {
			g = &group{dims: vals}
			index[k] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, i)
	}
	return order
}

// SummarizeOptions configures a dimensional summary.
type SummarizeOptions struct {
	Dims     []string
	Metrics  []string // candidate metric columns; absent ones are omitted
	CountCol string   // participant count column name, default "n"
	Means    bool     // emit media_<metric> means instead of sum_<metric> sums
}

// Summarize produces one row per distinct dimension combination with the
// group's row count and, per present metric, the sum (or mean) of its
// non-null values. Rows with a null metric value still count toward the
// group size; they just contribute nothing to that metric. Output order
// is first-seen and not part of the contract.
func Summarize(t *table.Table, opts SummarizeOptions) *table.Table {
	metrics := presentColumns(t, opts.Metrics)
	countCol := opts.CountCol
	if countCol == "" {
		countCol = "n"
	}
	prefix := "sum_"
	if opts.Means {
		prefix = "media_"
	}

	cols := append(append([]string(nil), opts.Dims...), countCol)
	for _, m := range metrics {
		cols = append(cols, prefix+m)
	}

	out := table.New(cols...)
	for _, g := range groupRows(t, opts.Dims) {
		row := make([]table.Value, 0, len(cols))
		row = append(row, g.dims...)
		row = append(row, table.Int(int64(len(g.rows))))
		for _, m := range metrics {
			var sum float64
			var n int
			for _, ri := range g.rows {
				if f, ok := t.Value(ri, m).Float64(); ok {
					sum += f
					n++
				}
			}
			switch {
			case opts.Means && n == 0:
				row = append(row, table.Null())
			case opts.Means:
				row = append(row, table.Float(sum/float64(n)))
			default:
				row = append(row, table.Float(sum))
			}
		}
		out.Append(row)
	}
	return out
}
