package enem

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/painel-enem/enem-cli/internal/table"
)

// Candidate columns for the school identifier and display name, in
// detection priority order. The first present column wins.
var (
	schoolIDColumns   = []string{"CO_ESCOLA", "ID_ESCOLA", "COD_ESCOLA", "ESCOLA_ID", "CO_ENTIDADE"}
	schoolNameColumns = []string{"NO_ESCOLA", "NOME_ESCOLA", "NM_ESCOLA"}
)

// Stable output names, independent of which source column matched.
const (
	SchoolIDColumn   = "school_id"
	SchoolNameColumn = "school_name"
)

// schoolBaseColumns must exist after normalization for the per-school
// rollup to make sense.
var schoolBaseColumns = []string{"TIPO_ESCOLA", "LOCALIZACAO", "SG_UF_ESC", CompositeColumn}

// DetectSchoolColumns resolves the school identifier column and the
// optional name column against the candidate lists. No identifier
// candidate is a fatal schema mismatch: guessing a column would
// silently attribute students to the wrong entity.
func DetectSchoolColumns(t *table.Table) (idCol, nameCol string, err error) {
	for _, c := range schoolIDColumns {
		if t.HasColumn(c) {
			idCol = c
			break
		}
	}
	if idCol == "" {
		return "", "", eris.Errorf(
			"enem: no school identifier column found (tried %s); check the raw extract for its real name, e.g. CO_ESCOLA or CO_ENTIDADE",
			strings.Join(schoolIDColumns, ", "))
	}
	for _, c := range schoolNameColumns {
		if t.HasColumn(c) {
			nameCol = c
			break
		}
	}
	return idCol, nameCol, nil
}

// SchoolSummary aggregates per school: participant count plus the mean
// of every metric. Rows without a school identifier are excluded before
// grouping — a record that names no school cannot be attributed to one.
// The identifier and name columns are renamed to school_id/school_name
// so consumers never depend on the raw schema's naming.
func SchoolSummary(t *table.Table) (*table.Table, error) {
	var missing []string
	for _, c := range append(append([]string(nil), schoolBaseColumns...), MetricColumns...) {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf(
			"enem: columns missing from the normalized result set: %s; run against a full raw extract",
			strings.Join(missing, ", "))
	}

	idCol, nameCol, err := DetectSchoolColumns(t)
	if err != nil {
		return nil, err
	}

	t = t.DropNull(idCol)

	dims := []string{idCol}
	if nameCol != "" {
		dims = append(dims, nameCol)
	}
	dims = append(dims, BaseDims...)

	out := Summarize(t, SummarizeOptions{
		Dims:     dims,
		Metrics:  MetricColumns,
		CountCol: "n_participantes",
		Means:    true,
	})
	out.Rename(idCol, SchoolIDColumn)
	if nameCol != "" {
		out.Rename(nameCol, SchoolNameColumn)
	}
	return out, nil
}
