// Package source loads the raw ENEM result set from the data directory.
package source

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/painel-enem/enem-cli/internal/artifact"
	"github.com/painel-enem/enem-cli/internal/table"
)

// Raw input file names, as published by INEP.
const (
	RawParquetName = "RESULTADOS_2024.parquet"
	RawCSVName     = "RESULTADOS_2024.csv"
)

// LoadENEM reads the raw per-student result set. The parquet extract is
// preferred; the original ';'-separated ISO-8859-1 CSV is the fallback.
// Missing both is fatal: every downstream pipeline needs this file.
func LoadENEM(dataDir string) (*table.Table, error) {
	parquetPath := filepath.Join(dataDir, RawParquetName)
	if _, err := os.Stat(parquetPath); err == nil {
		zap.L().Info("loading raw results", zap.String("path", parquetPath))
		return artifact.ReadSnapshot(parquetPath)
	}

	csvPath := filepath.Join(dataDir, RawCSVName)
	if _, err := os.Stat(csvPath); err == nil {
		zap.L().Info("loading raw results", zap.String("path", csvPath))
		return readDelimited(csvPath)
	}

	return nil, eris.Errorf(
		"source: no raw result set in %s; place %s or %s there before running the pipelines",
		dataDir, RawParquetName, RawCSVName)
}

// readDelimited parses the CSV extract: ';' separator, ISO-8859-1
// encoding, first row is the header.
func readDelimited(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "source: open csv")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(f))
	r.Comma = ';'
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // short records pad with nulls

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "source: read csv header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := table.New(header...)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "source: read csv record")
		}
		row := make([]table.Value, len(header))
		for i := range row {
			if i < len(record) {
				row[i] = parseCell(record[i])
			} else {
				row[i] = table.Null()
			}
		}
		t.Append(row)
	}
	return t, nil
}

// parseCell types a CSV field: empty is null, integers and floats keep
// their numeric type, anything else stays a string.
func parseCell(s string) table.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return table.Null()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return table.Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return table.Float(f)
	}
	return table.String(s)
}
