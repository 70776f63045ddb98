package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painel-enem/enem-cli/internal/table"
)

func sampleTable() *table.Table {
	t := table.New("SG_UF_ESC", "n", "media_nota_final")
	t.Append([]table.Value{table.String("DF"), table.Int(42), table.Float(612.5)})
	t.Append([]table.Value{table.String("SP"), table.Int(7), table.Null()})
	t.Append([]table.Value{table.Null(), table.Int(1), table.Float(300)})
	return t
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overview_stats.parquet")
	in := sampleTable()

	require.NoError(t, WriteSnapshot(path, in))

	out, err := ReadSnapshot(path)
	require.NoError(t, err)

	require.Equal(t, in.Len(), out.Len())
	require.ElementsMatch(t, in.Columns(), out.Columns())
	for ri := 0; ri < in.Len(); ri++ {
		for _, c := range in.Columns() {
			assert.True(t, in.Value(ri, c).Equal(out.Value(ri, c)),
				"row %d col %s: want %v got %v", ri, c, in.Value(ri, c), out.Value(ri, c))
		}
	}
}

func TestInferColumnTypes(t *testing.T) {
	tbl := table.New("uf", "small", "big", "score", "mixed", "empty")
	tbl.Append([]table.Value{
		table.String("DF"), table.Int(10), table.Int(1 << 40),
		table.Float(612.5), table.Int(3), table.Null(),
	})
	tbl.Append([]table.Value{
		table.String("SP"), table.Int(-5), table.Int(0),
		table.Null(), table.String("x"), table.Null(),
	})

	types := inferColumnTypes(tbl)

	assert.Equal(t, colString, types["uf"])
	assert.Equal(t, colInt32, types["small"])
	assert.Equal(t, colInt64, types["big"])
	assert.Equal(t, colDouble, types["score"])
	// Any string cell forces the whole column to string.
	assert.Equal(t, colString, types["mixed"])
	// All-null columns default to string, every value null.
	assert.Equal(t, colString, types["empty"])
}

func TestWriteSnapshotNarrowsInts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.parquet")
	in := table.New("n")
	in.Append([]table.Value{table.Int(1000)})

	require.NoError(t, WriteSnapshot(path, in))

	out, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, table.Int(1000), out.Value(0, "n"))
}

func TestWriteSnapshotReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.parquet")

	first := table.New("n")
	first.Append([]table.Value{table.Int(1)})
	require.NoError(t, WriteSnapshot(path, first))

	second := table.New("n")
	second.Append([]table.Value{table.Int(2)})
	second.Append([]table.Value{table.Int(3)})
	require.NoError(t, WriteSnapshot(path, second))

	out, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, table.Int(2), out.Value(0, "n"))

	// No staging temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "stats.parquet", entries[0].Name())
}

func TestWriteSnapshotEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	in := table.New("SG_UF_ESC", "n")

	require.NoError(t, WriteSnapshot(path, in))

	out, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.ElementsMatch(t, []string{"SG_UF_ESC", "n"}, out.Columns())
}

func TestReadSnapshotMissingFile(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.parquet"))
	require.Error(t, err)
}
