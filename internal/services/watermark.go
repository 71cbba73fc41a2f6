package services

import (
	"context"
	"time"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/repos"
	"github.com/sgacademico/etl-backend/internal/types"
)

// DefaultVentanaInicial bounds the first extraction window when a proceso has
// never completed successfully.
const DefaultVentanaInicial = 30 * 24 * time.Hour

// WatermarkTracker persists per-proceso run outcomes and answers where the
// next incremental window should start. The control log is append-only, so
// the watermark is the most recent exitoso row, never the most recent row.
type WatermarkTracker interface {
	LastSuccessfulRun(ctx context.Context, proceso string) (time.Time, error)
	RecordRun(ctx context.Context, proceso, estado string, registros int, errores string) error
}

type watermarkTracker struct {
	repo repos.ControlRepo
	log  *logger.Logger
	now  func() time.Time
}

func NewWatermarkTracker(repo repos.ControlRepo, baseLog *logger.Logger) WatermarkTracker {
	return &watermarkTracker{
		repo: repo,
		log:  baseLog.With("service", "WatermarkTracker"),
		now:  time.Now,
	}
}

func (w *watermarkTracker) LastSuccessfulRun(ctx context.Context, proceso string) (time.Time, error) {
	row, err := w.repo.LastExitoso(ctx, nil, proceso)
	if err != nil {
		return time.Time{}, err
	}
	if row == nil {
		since := w.now().Add(-DefaultVentanaInicial)
		w.log.Debug("No prior exitoso run, using default window", "proceso", proceso, "since", since)
		return since, nil
	}
	return row.UltimaEjecucion, nil
}

func (w *watermarkTracker) RecordRun(ctx context.Context, proceso, estado string, registros int, errores string) error {
	row := &types.ControlETL{
		Proceso:             proceso,
		UltimaEjecucion:     w.now(),
		Estado:              estado,
		RegistrosProcesados: registros,
	}
	if errores != "" {
		row.Errores = &errores
	}
	return w.repo.Append(ctx, nil, row)
}
