package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/painel-enem/enem-cli/internal/artifact"
	"github.com/painel-enem/enem-cli/internal/enem"
	"github.com/painel-enem/enem-cli/internal/source"
)

// MapUFFile is the per-region summary artifact.
const MapUFFile = "enem_map_uf.parquet"

// mapDims leads with the region so the choropleth join reads naturally.
var mapDims = []string{"SG_UF_ESC", "TIPO_ESCOLA", "LOCALIZACAO"}

// MapUF builds the per-region summary behind the map tab. Same
// aggregation discipline as the overview, but rows without a region are
// excluded — they have no place on a map.
type MapUF struct{}

func (*MapUF) Name() string { return "map-uf" }

func (*MapUF) Artifacts() []string { return []string{MapUFFile} }

func (*MapUF) Run(ctx context.Context, env Env) error {
	raw, err := source.LoadENEM(env.DataDir)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	df := enem.Normalize(raw)
	metrics := enem.PresentMetrics(df)
	df = df.Select(append(append([]string(nil), enem.BaseDims...), metrics...)...)
	df = df.DropNull("SG_UF_ESC")

	stats := enem.Summarize(df, enem.SummarizeOptions{
		Dims:     mapDims,
		Metrics:  metrics,
		CountCol: "n_participantes",
	})
	if err := artifact.WriteSnapshot(filepath.Join(env.ProcessedDir, MapUFFile), stats); err != nil {
		return err
	}

	zap.L().Info("map artifact written", zap.Int("rows", stats.Len()))
	return nil
}
