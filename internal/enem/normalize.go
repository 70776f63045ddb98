// Package enem implements the aggregation core: record normalization,
// dimensional summaries, score histograms, and the per-school rollup.
package enem

import (
	"go.uber.org/zap"

	"github.com/painel-enem/enem-cli/internal/table"
)

// Columns shared by the pipelines.
const (
	CompositeColumn = "nota_final"
	RedacaoColumn   = "NU_NOTA_REDACAO"
)

// BaseDims are the categorical dimensions every grouped artifact keys on.
var BaseDims = []string{"TIPO_ESCOLA", "LOCALIZACAO", "SG_UF_ESC"}

// MetricColumns lists the score columns the aggregations consume,
// composite score first.
var MetricColumns = []string{
	CompositeColumn,
	"NU_NOTA_CN",
	"NU_NOTA_CH",
	"NU_NOTA_LC",
	"NU_NOTA_MT",
	RedacaoColumn,
}

// subjectColumns feed the composite score derivation.
var subjectColumns = []string{
	"NU_NOTA_CN",
	"NU_NOTA_CH",
	"NU_NOTA_LC",
	"NU_NOTA_MT",
	RedacaoColumn,
}

var dependencyLabels = map[int64]string{
	1: "Federal",
	2: "Estadual",
	3: "Municipal",
	4: "Privada",
}

var redacaoStatusLabels = map[int64]string{
	1: "1. Sem Problemas (Válida)",
	2: "2. Anulada",
	3: "3. Cópia T. Motivador",
	4: "4. Não Atribuída/Em Branco",
	5: "5. Zero por Critério (Grave)",
	6: "6. Cancelada",
	9: "7. Outras Causas/Fuga",
}

var localizacaoLabels = map[int64]string{
	1: "Urbana",
	2: "Rural",
}

// step is one capability-guarded normalization stage: it runs only when
// the columns it needs are present, so a thinner extract skips it
// instead of failing.
type step struct {
	name    string
	applies func(t *table.Table) bool
	apply   func(t *table.Table) *table.Table
}

func normalizeSteps() []step {
	return []step{
		{
			name: "derive " + CompositeColumn,
			applies: func(t *table.Table) bool {
				return !t.HasColumn(CompositeColumn) && anyColumn(t, subjectColumns)
			},
			apply: deriveComposite,
		},
		{
			name: "drop rows without " + CompositeColumn,
			applies: func(t *table.Table) bool { return t.HasColumn(CompositeColumn) },
			apply: func(t *table.Table) *table.Table { return t.DropNull(CompositeColumn) },
		},
		{
			name:    "map TIPO_ESCOLA",
			applies: mapApplies("TP_DEPENDENCIA_ADM_ESC", "TIPO_ESCOLA"),
			apply:   mapCodes("TP_DEPENDENCIA_ADM_ESC", "TIPO_ESCOLA", dependencyLabels),
		},
		{
			name:    "map STATUS_REDACAO",
			applies: mapApplies("TP_STATUS_REDACAO", "STATUS_REDACAO"),
			apply:   mapCodes("TP_STATUS_REDACAO", "STATUS_REDACAO", redacaoStatusLabels),
		},
		{
			name:    "map LOCALIZACAO",
			applies: mapApplies("TP_LOCALIZACAO_ESC", "LOCALIZACAO"),
			apply:   mapCodes("TP_LOCALIZACAO_ESC", "LOCALIZACAO", localizacaoLabels),
		},
		{
			name: "derive MUNICIPIO_UF",
			applies: func(t *table.Table) bool {
				return t.HasColumn("NO_MUNICIPIO_ESC") && t.HasColumn("SG_UF_ESC") &&
					!t.HasColumn("MUNICIPIO_UF")
			},
			apply: deriveMunicipioUF,
		},
	}
}

// Normalize enriches and filters the raw result set: composite score,
// label mappings, and the municipality display string. Steps whose
// source columns are absent are skipped, never fatal. Numeric storage
// width is left to the snapshot writer, which narrows integer columns
// on write.
func Normalize(t *table.Table) *table.Table {
	log := zap.L().With(zap.String("component", "enem.normalize"))
	for _, s := range normalizeSteps() {
		if !s.applies(t) {
			log.Debug("step skipped", zap.String("step", s.name))
			continue
		}
		t = s.apply(t)
		log.Debug("step applied", zap.String("step", s.name), zap.Int("rows", t.Len()))
	}
	return t
}

// PresentMetrics filters MetricColumns to those present in the table.
// An absent metric is omitted from every downstream artifact schema.
func PresentMetrics(t *table.Table) []string {
	return presentColumns(t, MetricColumns)
}

func presentColumns(t *table.Table, cols []string) []string {
	var out []string
	for _, c := range cols {
		if t.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

func anyColumn(t *table.Table, cols []string) bool {
	for _, c := range cols {
		if t.HasColumn(c) {
			return true
		}
	}
	return false
}

// deriveComposite adds the composite score: the unweighted mean of
// whichever subject scores are non-null for the row, null when none are.
func deriveComposite(t *table.Table) *table.Table {
	present := presentColumns(t, subjectColumns)
	idx := make([]int, 0, len(present))
	cols := t.Columns()
	pos := make(map[string]int, len(cols))
	for i, c := range cols {
		pos[c] = i
	}
	for _, c := range present {
		idx = append(idx, pos[c])
	}

	t.AddColumn(CompositeColumn, func(row []table.Value) table.Value {
		var sum float64
		var n int
		for _, i := range idx {
			if f, ok := row[i].Float64(); ok {
				sum += f
				n++
			}
		}
		if n == 0 {
			return table.Null()
		}
		return table.Float(sum / float64(n))
	})
	return t
}

func mapApplies(src, dst string) func(t *table.Table) bool {
	return func(t *table.Table) bool {
		return t.HasColumn(src) && !t.HasColumn(dst)
	}
}

// mapCodes adds a label column derived from a categorical code column.
// Unmapped or non-integer codes become null, and a null label is still
// a valid group key downstream.
func mapCodes(src, dst string, labels map[int64]string) func(t *table.Table) *table.Table {
	return func(t *table.Table) *table.Table {
		i := columnIndex(t, src)
		t.AddColumn(dst, func(row []table.Value) table.Value {
			code, ok := row[i].Int64()
			if !ok {
				return table.Null()
			}
			label, ok := labels[code]
			if !ok {
				return table.Null()
			}
			return table.String(label)
		})
		return t
	}
}

func deriveMunicipioUF(t *table.Table) *table.Table {
	mi := columnIndex(t, "NO_MUNICIPIO_ESC")
	ui := columnIndex(t, "SG_UF_ESC")
	t.AddColumn("MUNICIPIO_UF", func(row []table.Value) table.Value {
		return table.String(row[mi].Display() + " - " + row[ui].Display())
	})
	return t
}

func columnIndex(t *table.Table, name string) int {
	for i, c := range t.Columns() {
		if c == name {
			return i
		}
	}
	return -1
}
