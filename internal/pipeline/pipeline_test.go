package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/painel-enem/enem-cli/internal/artifact"
	"github.com/painel-enem/enem-cli/internal/enem"
	"github.com/painel-enem/enem-cli/internal/ideb"
	"github.com/painel-enem/enem-cli/internal/source"
	"github.com/painel-enem/enem-cli/internal/table"
)

// testEnv stages a data directory with a small raw CSV extract and the
// IDEB workbook, so every pipeline can run end to end.
func testEnv(t *testing.T) Env {
	t.Helper()
	dataDir := t.TempDir()

	raw := "CO_ESCOLA;NO_ESCOLA;TP_DEPENDENCIA_ADM_ESC;TP_LOCALIZACAO_ESC;SG_UF_ESC;" +
		"NU_NOTA_CN;NU_NOTA_CH;NU_NOTA_LC;NU_NOTA_MT;NU_NOTA_REDACAO\n" +
		"11;Escola A;1;1;DF;500;600;700;800;900\n" +
		";;4;2;SP;;;;;\n" +
		"22;Escola B;2;1;DF;300;300;300;300;300\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, source.RawCSVName), []byte(raw), 0o644))

	f := xlsx.NewFile()
	sh, err := f.AddSheet("Brasil (EM) ajustado")
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		sh.AddRow().AddCell().SetString("banner")
	}
	for _, cells := range [][]string{
		{"Rede", "2005", "2023"},
		{"Pública", "3.1", "4.0"},
		{"Privada", "5.6", "6.0"},
		{"Conveniada", "4.0", "4.2"},
	} {
		row := sh.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	require.NoError(t, f.Save(filepath.Join(dataDir, ideb.WorkbookName)))

	return Env{DataDir: dataDir, ProcessedDir: filepath.Join(dataDir, "processed")}
}

func readArtifact(t *testing.T, env Env, file string) *table.Table {
	t.Helper()
	tbl, err := artifact.ReadSnapshot(filepath.Join(env.ProcessedDir, file))
	require.NoError(t, err)
	return tbl
}

func findRow(t *testing.T, tbl *table.Table, dims map[string]table.Value) int {
	t.Helper()
	for ri := 0; ri < tbl.Len(); ri++ {
		match := true
		for col, want := range dims {
			if !tbl.Value(ri, col).Equal(want) {
				match = false
				break
			}
		}
		if match {
			return ri
		}
	}
	t.Fatalf("no artifact row matching %v", dims)
	return -1
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, []string{"overview", "map-uf", "redacao", "schools", "ideb"}, reg.AllNames())
	assert.Len(t, reg.All(), 5)

	p, err := reg.Get("overview")
	require.NoError(t, err)
	assert.Equal(t, "overview", p.Name())

	_, err = reg.Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestOverviewPipeline(t *testing.T) {
	env := testEnv(t)
	require.NoError(t, Run(context.Background(), env, &Overview{}))

	stats := readArtifact(t, env, OverviewStatsFile)
	// The all-null score row drops out; two groups remain.
	require.Equal(t, 2, stats.Len())

	ri := findRow(t, stats, map[string]table.Value{"TIPO_ESCOLA": table.String("Federal")})
	assert.Equal(t, table.String("Urbana"), stats.Value(ri, "LOCALIZACAO"))
	assert.Equal(t, table.String("DF"), stats.Value(ri, "SG_UF_ESC"))
	assert.Equal(t, table.Int(1), stats.Value(ri, "n"))
	assert.Equal(t, table.Float(700), stats.Value(ri, "sum_nota_final"))
	assert.Equal(t, table.Float(900), stats.Value(ri, "sum_NU_NOTA_REDACAO"))

	ri = findRow(t, stats, map[string]table.Value{"TIPO_ESCOLA": table.String("Estadual")})
	assert.Equal(t, table.Float(300), stats.Value(ri, "sum_nota_final"))

	hist := readArtifact(t, env, OverviewHistFile)
	ri = findRow(t, hist, map[string]table.Value{
		"TIPO_ESCOLA": table.String("Federal"),
		"metric":      table.String("nota_final"),
	})
	assert.Equal(t, table.Int(28), hist.Value(ri, "bin_idx"))
	assert.Equal(t, table.Float(700), hist.Value(ri, "bin_left"))
	assert.Equal(t, table.Int(1), hist.Value(ri, "count"))
}

func TestMapUFPipeline(t *testing.T) {
	env := testEnv(t)
	require.NoError(t, Run(context.Background(), env, &MapUF{}))

	stats := readArtifact(t, env, MapUFFile)
	require.Equal(t, 2, stats.Len())
	assert.Contains(t, stats.Columns(), "n_participantes")

	ri := findRow(t, stats, map[string]table.Value{"SG_UF_ESC": table.String("DF"), "TIPO_ESCOLA": table.String("Federal")})
	assert.Equal(t, table.Int(1), stats.Value(ri, "n_participantes"))
}

func TestRedacaoPipeline(t *testing.T) {
	env := testEnv(t)
	require.NoError(t, Run(context.Background(), env, &Redacao{}))

	stats := readArtifact(t, env, RedacaoStatsFile)
	ri := findRow(t, stats, map[string]table.Value{"TIPO_ESCOLA": table.String("Federal")})
	assert.Equal(t, table.Int(1), stats.Value(ri, "n"))
	assert.Equal(t, table.Int(1), stats.Value(ri, "n_900mais"))
	assert.Equal(t, table.Float(900), stats.Value(ri, "media_redacao"))

	hist := readArtifact(t, env, RedacaoHistFile)
	assert.NotContains(t, hist.Columns(), "metric")
	ri = findRow(t, hist, map[string]table.Value{"TIPO_ESCOLA": table.String("Estadual")})
	assert.Equal(t, table.Int(12), hist.Value(ri, "bin_idx")) // 300 in [300, 325)
}

func TestSchoolsPipeline(t *testing.T) {
	env := testEnv(t)
	require.NoError(t, Run(context.Background(), env, &Schools{}))

	stats := readArtifact(t, env, SchoolsFile)
	require.Equal(t, 2, stats.Len())

	ri := findRow(t, stats, map[string]table.Value{enem.SchoolIDColumn: table.Int(11)})
	assert.Equal(t, table.String("Escola A"), stats.Value(ri, enem.SchoolNameColumn))
	assert.Equal(t, table.Int(1), stats.Value(ri, "n_participantes"))
	assert.Equal(t, table.Float(700), stats.Value(ri, "media_nota_final"))
}

func TestIDEBPipeline(t *testing.T) {
	env := testEnv(t)
	require.NoError(t, Run(context.Background(), env, &IDEB{}))

	series := readArtifact(t, env, IDEBFile)
	require.Equal(t, 4, series.Len())

	ri := findRow(t, series, map[string]table.Value{
		"Rede": table.String("Privada"),
		"Ano":  table.String("2023"),
	})
	assert.Equal(t, table.Float(6.0), series.Value(ri, "IDEB_Score"))
}

// Rerunning a pipeline over unchanged inputs republishes byte-identical
// artifacts.
func TestRunIsIdempotent(t *testing.T) {
	env := testEnv(t)
	require.NoError(t, Run(context.Background(), env, &Overview{}))

	firstStats, err := os.ReadFile(filepath.Join(env.ProcessedDir, OverviewStatsFile))
	require.NoError(t, err)
	firstHist, err := os.ReadFile(filepath.Join(env.ProcessedDir, OverviewHistFile))
	require.NoError(t, err)

	require.NoError(t, Run(context.Background(), env, &Overview{}))

	secondStats, err := os.ReadFile(filepath.Join(env.ProcessedDir, OverviewStatsFile))
	require.NoError(t, err)
	secondHist, err := os.ReadFile(filepath.Join(env.ProcessedDir, OverviewHistFile))
	require.NoError(t, err)

	assert.Equal(t, firstStats, secondStats)
	assert.Equal(t, firstHist, secondHist)
}

func TestRunFailsWithoutRawData(t *testing.T) {
	dataDir := t.TempDir()
	env := Env{DataDir: dataDir, ProcessedDir: filepath.Join(dataDir, "processed")}

	err := Run(context.Background(), env, &Overview{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overview")
	assert.Contains(t, err.Error(), source.RawCSVName)
}

func TestRunCreatesProcessedDir(t *testing.T) {
	env := testEnv(t)
	require.NoError(t, Run(context.Background(), env, &IDEB{}))

	info, err := os.Stat(env.ProcessedDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
