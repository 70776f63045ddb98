package enem

import (
	"github.com/rotisserie/eris"

	"github.com/painel-enem/enem-cli/internal/table"
)

// RedacaoSummary aggregates the essay score per dimension group: row
// count, score sum, the number of zero scores, the number of scores at
// 900 or above, and the group mean. Rows without an essay score are
// excluded before grouping, so n counts scored essays only.
//
// A result set without the essay column is a schema mismatch, not a
// skippable step: the essay artifacts cannot be produced from it.
func RedacaoSummary(t *table.Table, dims []string) (*table.Table, error) {
	if !t.HasColumn(RedacaoColumn) {
		return nil, eris.Errorf(
			"enem: column %s missing from the result set; the raw extract must include the essay score",
			RedacaoColumn)
	}
	t = t.DropNull(RedacaoColumn)

	cols := append(append([]string(nil), dims...),
		"n", "sum_redacao", "n_zero", "n_900mais", "media_redacao")
	out := table.New(cols...)

	for _, g := range groupRows(t, dims) {
		var sum float64
		var nZero, n900 int64
		for _, ri := range g.rows {
			f, _ := t.Value(ri, RedacaoColumn).Float64()
			sum += f
			if f == 0 {
				nZero++
			}
			if f >= 900 {
				n900++
			}
		}
		n := len(g.rows)
		row := make([]table.Value, 0, len(cols))
		row = append(row, g.dims...)
		row = append(row,
			table.Int(int64(n)),
			table.Float(sum),
			table.Int(nZero),
			table.Int(n900),
			table.Float(sum/float64(n)),
		)
		out.Append(row)
	}
	return out, nil
}
