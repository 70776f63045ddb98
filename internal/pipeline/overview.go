package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/painel-enem/enem-cli/internal/artifact"
	"github.com/painel-enem/enem-cli/internal/enem"
	"github.com/painel-enem/enem-cli/internal/source"
)

// Overview artifact file names.
const (
	OverviewStatsFile = "overview_stats.parquet"
	OverviewHistFile  = "overview_hist.parquet"
)

// Overview builds the grouped summary and the score histograms behind
// the results-overview tab.
type Overview struct{}

func (*Overview) Name() string { return "overview" }

func (*Overview) Artifacts() []string {
	return []string{OverviewStatsFile, OverviewHistFile}
}

func (*Overview) Run(ctx context.Context, env Env) error {
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
	zap.L().Info("normalized result set", zap.Int("rows", df.Len()), zap.Strings("metrics", metrics))

	stats := enem.Summarize(df, enem.SummarizeOptions{Dims: enem.BaseDims, Metrics: metrics})
	if err := artifact.WriteSnapshot(filepath.Join(env.ProcessedDir, OverviewStatsFile), stats); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	hist := enem.Histogram(df, enem.BaseDims, metrics, true)
	if err := artifact.WriteSnapshot(filepath.Join(env.ProcessedDir, OverviewHistFile), hist); err != nil {
		return err
	}

	zap.L().Info("overview artifacts written",
		zap.Int("summary_rows", stats.Len()),
		zap.Int("hist_rows", hist.Len()),
	)
	return nil
}
