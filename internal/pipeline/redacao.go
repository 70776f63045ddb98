package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/painel-enem/enem-cli/internal/artifact"
	"github.com/painel-enem/enem-cli/internal/enem"
	"github.com/painel-enem/enem-cli/internal/source"
)

// Essay artifact file names.
const (
	RedacaoStatsFile = "redacao_stats.parquet"
	RedacaoHistFile  = "redacao_hist.parquet"
)

// Redacao builds the essay-score summary and histogram.
type Redacao struct{}

func (*Redacao) Name() string { return "redacao" }

func (*Redacao) Artifacts() []string {
	return []string{RedacaoStatsFile, RedacaoHistFile}
}

func (*Redacao) Run(ctx context.Context, env Env) error {
	raw, err := source.LoadENEM(env.DataDir)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	df := enem.Normalize(raw)
	df = df.Select(append(append([]string(nil), enem.BaseDims...), enem.RedacaoColumn)...)

	stats, err := enem.RedacaoSummary(df, enem.BaseDims)
	if err != nil {
		return err
	}
	if err := artifact.WriteSnapshot(filepath.Join(env.ProcessedDir, RedacaoStatsFile), stats); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	hist := enem.Histogram(df, enem.BaseDims, []string{enem.RedacaoColumn}, false)
	if err := artifact.WriteSnapshot(filepath.Join(env.ProcessedDir, RedacaoHistFile), hist); err != nil {
		return err
	}

	zap.L().Info("essay artifacts written",
		zap.Int("summary_rows", stats.Len()),
		zap.Int("hist_rows", hist.Len()),
	)
	return nil
}
