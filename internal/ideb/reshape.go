// Package ideb reads the IDEB release workbook and reshapes the
// wide year-per-column series into the long form the time-series
// chart consumes.
package ideb

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/painel-enem/enem-cli/internal/table"
)

// WorkbookName is the INEP release file expected in the data directory.
const WorkbookName = "divulgacao_brasil_ideb_2023.xlsx"

const (
	sheetName = "Brasil (EM) ajustado"
	// headerRow is the sheet row holding "Rede", "2005", "2007", ...
	headerRow = 4
)

// Only the two tracked networks are kept; any other label in the
// source ("Conveniada", totals, ...) is dropped. Intentional scope
// narrowing, matched exactly.
var trackedNetworks = map[string]bool{
	"Pública": true,
	"Privada": true,
}

// Load reads the workbook from dataDir and returns the long-form series:
// one (Rede, Ano, IDEB_Score) row per tracked network and year, skipping
// cells without a numeric score. Ano stays the 4-digit year label.
func Load(dataDir string) (*table.Table, error) {
	path := filepath.Join(dataDir, WorkbookName)
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Errorf(
			"ideb: workbook %s not found in %s; download the IDEB release and place it in the data directory",
			WorkbookName, dataDir)
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ideb: open workbook")
	}
	sheet, ok := f.Sheet[sheetName]
	if !ok {
		return nil, eris.Errorf("ideb: sheet %q not found in %s", sheetName, WorkbookName)
	}
	if len(sheet.Rows) <= headerRow {
		return nil, eris.Errorf("ideb: sheet %q is missing its header row", sheetName)
	}

	header := rowStrings(sheet.Rows[headerRow])

	redeIdx := -1
	var yearIdx []int
	for i, h := range header {
		switch {
		case h == "Rede":
			redeIdx = i
		case isDigits(h):
			yearIdx = append(yearIdx, i)
		}
	}
	if redeIdx < 0 {
		return nil, eris.Errorf("ideb: column \"Rede\" not found in sheet %q", sheetName)
	}
	if len(yearIdx) == 0 {
		return nil, eris.Errorf("ideb: no year columns (2005, 2007, ...) found in sheet %q", sheetName)
	}

	out := table.New("Rede", "Ano", "IDEB_Score")
	for _, row := range sheet.Rows[headerRow+1:] {
		if redeIdx >= len(row.Cells) {
			continue
		}
		rede := strings.TrimSpace(row.Cells[redeIdx].String())
		if !trackedNetworks[rede] {
			continue
		}
		for _, yi := range yearIdx {
			if yi >= len(row.Cells) {
				continue
			}
			score, err := row.Cells[yi].Float()
			if err != nil {
				continue // "-", blank, or otherwise non-numeric
			}
			out.Append([]table.Value{
				table.String(rede),
				table.String(header[yi]),
				table.Float(score),
			})
		}
	}

	zap.L().Info("reshaped IDEB series",
		zap.String("sheet", sheetName),
		zap.Int("years", len(yearIdx)),
		zap.Int("rows", out.Len()),
	)
	return out, nil
}

func rowStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		out[i] = strings.TrimSpace(cell.String())
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
