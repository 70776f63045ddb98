package enem

import (
	"github.com/painel-enem/enem-cli/internal/table"
)

// buildTable assembles a table from literal rows.
func buildTable(cols []string, rows ...[]table.Value) *table.Table {
	t := table.New(cols...)
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

// Shorthand cell constructors for fixtures.
var (
	null = table.Null
	f    = table.Float
	i    = table.Int
	s    = table.String
)
