// Package artifact reads and writes the columnar snapshot files the
// dashboard consumes, plus a read-through cache keyed by file identity.
package artifact

import (
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/rotisserie/eris"

	"github.com/painel-enem/enem-cli/internal/table"
)

// colType is the narrowest physical type that can hold every non-null
// cell of a column.
type colType uint8

const (
	colString colType = iota
	colInt32
	colInt64
	colDouble
)

// inferColumnTypes scans each column and picks its snapshot type.
// Integer columns narrow to INT32 when the values fit; a column with
// any string cell is stored as string; an all-null column defaults to
// string (optional, every value null).
func inferColumnTypes(t *table.Table) map[string]colType {
	cols := t.Columns()
	types := make(map[string]colType, len(cols))
	for _, c := range cols {
		var hasString, hasFloat, hasInt, wide bool
		for i := 0; i < t.Len(); i++ {
			v := t.Value(i, c)
			switch v.Kind() {
			case table.KindString:
				hasString = true
			case table.KindFloat:
				hasFloat = true
			case table.KindInt:
				hasInt = true
				if n, _ := v.Int64(); n < -1<<31 || n > 1<<31-1 {
					wide = true
				}
			}
		}
		switch {
		case hasString, !hasFloat && !hasInt:
			types[c] = colString
		case hasFloat:
			types[c] = colDouble
		case wide:
			types[c] = colInt64
		default:
			types[c] = colInt32
		}
	}
	return types
}

func snapshotSchema(t *table.Table, types map[string]colType) *parquet.Schema {
	group := parquet.Group{}
	for _, c := range t.Columns() {
		var node parquet.Node
		switch types[c] {
		case colInt32:
			node = parquet.Int(32)
		case colInt64:
			node = parquet.Int(64)
		case colDouble:
			node = parquet.Leaf(parquet.DoubleType)
		default:
			node = parquet.String()
		}
		group[c] = parquet.Optional(node)
	}
	return parquet.NewSchema("snapshot", group)
}

// leafOrder maps schema leaf positions back to column names. Group
// fields are sorted by name inside the schema, so the table's column
// order is not the leaf order.
func leafOrder(schema *parquet.Schema) []string {
	fields := schema.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// WriteSnapshot writes the table as a parquet snapshot, atomically: the
// file is staged in the target directory and renamed over path on
// success, so a failed run never leaves a partial artifact behind.
func WriteSnapshot(path string, t *table.Table) error {
	types := inferColumnTypes(t)
	schema := snapshotSchema(t, types)
	leaves := leafOrder(schema)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return eris.Wrap(err, "artifact: stage snapshot")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	w := parquet.NewWriter(tmp, schema)
	row := make(parquet.Row, len(leaves))
	for i := 0; i < t.Len(); i++ {
		for col, name := range leaves {
			v := t.Value(i, name)
			if v.IsNull() {
				row[col] = parquet.NullValue().Level(0, 0, col)
				continue
			}
			var pv parquet.Value
			switch types[name] {
			case colInt32:
				n, _ := v.Int64()
				pv = parquet.Int32Value(int32(n))
			case colInt64:
				n, _ := v.Int64()
				pv = parquet.Int64Value(n)
			case colDouble:
				f, _ := v.Float64()
				pv = parquet.DoubleValue(f)
			default:
				pv = parquet.ByteArrayValue([]byte(v.Display()))
			}
			row[col] = pv.Level(0, 1, col)
		}
		if _, err := w.WriteRows([]parquet.Row{row}); err != nil {
			_ = tmp.Close()
			return eris.Wrapf(err, "artifact: write snapshot %s", filepath.Base(path))
		}
	}
	if err := w.Close(); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "artifact: finalize snapshot %s", filepath.Base(path))
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return eris.Wrap(err, "artifact: sync snapshot")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "artifact: close snapshot")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return eris.Wrapf(err, "artifact: publish snapshot %s", filepath.Base(path))
	}
	return nil
}

// ReadSnapshot reads a flat parquet file into a table. It accepts any
// flat schema, which also makes it the reader for the raw parquet input.
func ReadSnapshot(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: open snapshot %s", filepath.Base(path))
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return nil, eris.Wrap(err, "artifact: stat snapshot")
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: parse snapshot %s", filepath.Base(path))
	}

	leaves := leafOrder(pf.Schema())
	out := table.New(leaves...)

	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquet.Row, 256)
		for {
			n, err := rows.ReadRows(buf)
			for _, pr := range buf[:n] {
				row := make([]table.Value, len(leaves))
				for _, pv := range pr {
					row[pv.Column()] = fromParquet(pv)
				}
				out.Append(row)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, eris.Wrapf(err, "artifact: read snapshot %s", filepath.Base(path))
			}
		}
		if err := rows.Close(); err != nil {
			return nil, eris.Wrap(err, "artifact: close row group")
		}
	}
	return out, nil
}

func fromParquet(v parquet.Value) table.Value {
	if v.IsNull() {
		return table.Null()
	}
	switch v.Kind() {
	case parquet.Boolean:
		if v.Boolean() {
			return table.Int(1)
		}
		return table.Int(0)
	case parquet.Int32:
		return table.Int(int64(v.Int32()))
	case parquet.Int64:
		return table.Int(v.Int64())
	case parquet.Float:
		return table.Float(float64(v.Float()))
	case parquet.Double:
		return table.Float(v.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return table.String(string(v.ByteArray()))
	default:
		return table.Null()
	}
}
