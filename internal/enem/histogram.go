package enem

import "github.com/painel-enem/enem-cli/internal/table"

// Histogram geometry: 40 equal-width bins over the 0–1000 score scale,
// edges at multiples of 25.
const (
	HistBins = 40
	HistMin  = 0.0
	HistMax  = 1000.0
)

const histWidth = (HistMax - HistMin) / HistBins

// Histogram bins each metric's non-null values per dimension group.
// Bins are half-open [left, right), except the last, which includes the
// top of the scale. Values outside [0, 1000] are ignored. The output is
// sparse: zero-count bins are never emitted, and a group×metric with no
// non-null values emits nothing at all — consumers treat absence as
// count zero.
//
// withMetricCol adds a "metric" column naming the binned metric; the
// single-metric essay artifact omits it.
func Histogram(t *table.Table, dims []string, metrics []string, withMetricCol bool) *table.Table {
	metrics = presentColumns(t, metrics)

	cols := append([]string(nil), dims...)
	if withMetricCol {
		cols = append(cols, "metric")
	}
	cols = append(cols, "bin_idx", "bin_left", "bin_right", "count")
	out := table.New(cols...)

	for _, g := range groupRows(t, dims) {
		for _, m := range metrics {
			var counts [HistBins]int64
			seen := false
			for _, ri := range g.rows {
				f, ok := t.Value(ri, m).Float64()
				if !ok || f < HistMin || f > HistMax {
					continue
				}
				idx := int((f - HistMin) / histWidth)
				if idx == HistBins { // the top edge belongs to the last bin
					idx = HistBins - 1
				}
				counts[idx]++
				seen = true
			}
			if !seen {
				continue
			}
			for i, c := range counts {
				if c == 0 {
					continue
				}
				row := make([]table.Value, 0, len(cols))
				row = append(row, g.dims...)
				if withMetricCol {
					row = append(row, table.String(m))
				}
				row = append(row,
					table.Int(int64(i)),
					table.Float(HistMin+float64(i)*histWidth),
					table.Float(HistMin+float64(i+1)*histWidth),
					table.Int(c),
				)
				out.Append(row)
			}
		}
	}
	return out
}
