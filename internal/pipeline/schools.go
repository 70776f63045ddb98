package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/painel-enem/enem-cli/internal/artifact"
	"github.com/painel-enem/enem-cli/internal/enem"
	"github.com/painel-enem/enem-cli/internal/source"
)

// SchoolsFile is the per-school summary artifact.
const SchoolsFile = "schools_stats.parquet"

// Schools builds the per-school rollup: participant counts and mean
// scores keyed by the auto-detected school identifier.
type Schools struct{}

func (*Schools) Name() string { return "schools" }

func (*Schools) Artifacts() []string { return []string{SchoolsFile} }

func (*Schools) Run(ctx context.Context, env Env) error {
	raw, err := source.LoadENEM(env.DataDir)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	df := enem.Normalize(raw)
	stats, err := enem.SchoolSummary(df)
	if err != nil {
		return err
	}

	if err := artifact.WriteSnapshot(filepath.Join(env.ProcessedDir, SchoolsFile), stats); err != nil {
		return err
	}

	zap.L().Info("schools artifact written", zap.Int("rows", stats.Len()))
	return nil
}
