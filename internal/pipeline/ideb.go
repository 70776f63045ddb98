package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/painel-enem/enem-cli/internal/artifact"
	"github.com/painel-enem/enem-cli/internal/ideb"
)

// IDEBFile is the longitudinal index artifact.
const IDEBFile = "ideb_brasil_em.parquet"

// IDEB reshapes the education-quality index workbook into the long
// (Rede, Ano, IDEB_Score) series.
type IDEB struct{}

func (*IDEB) Name() string { return "ideb" }

func (*IDEB) Artifacts() []string { return []string{IDEBFile} }

func (*IDEB) Run(ctx context.Context, env Env) error {
	series, err := ideb.Load(env.DataDir)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := artifact.WriteSnapshot(filepath.Join(env.ProcessedDir, IDEBFile), series); err != nil {
		return err
	}

	zap.L().Info("ideb artifact written", zap.Int("rows", series.Len()))
	return nil
}
