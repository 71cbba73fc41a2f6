package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/types"
)

type fakeControlRepo struct {
	rows     []types.ControlETL
	appended []types.ControlETL
}

func (f *fakeControlRepo) Append(ctx context.Context, tx *gorm.DB, row *types.ControlETL) error {
	f.appended = append(f.appended, *row)
	return nil
}

func (f *fakeControlRepo) LastExitoso(ctx context.Context, tx *gorm.DB, proceso string) (*types.ControlETL, error) {
	var best *types.ControlETL
	for i := range f.rows {
		row := f.rows[i]
		if row.Proceso != proceso || row.Estado != types.EstadoExitoso {
			continue
		}
		if best == nil || row.UltimaEjecucion.After(best.UltimaEjecucion) {
			best = &f.rows[i]
		}
	}
	return best, nil
}

func (f *fakeControlRepo) ListRecent(ctx context.Context, tx *gorm.DB, proceso string, limit int) ([]types.ControlETL, error) {
	return f.rows, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestLastSuccessfulRunDefaultsToThirtyDays(t *testing.T) {
	repo := &fakeControlRepo{}
	w := &watermarkTracker{repo: repo, log: testLogger(t), now: func() time.Time {
		return time.Date(2025, time.March, 31, 12, 0, 0, 0, time.UTC)
	}}

	since, err := w.LastSuccessfulRun(context.Background(), types.ProcesoSyncAsistencias)
	if err != nil {
		t.Fatalf("LastSuccessfulRun: %v", err)
	}
	want := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	if !since.Equal(want) {
		t.Fatalf("since: got %v, want %v", since, want)
	}
}

func TestLastSuccessfulRunSkipsFallidoRows(t *testing.T) {
	exitoso := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	fallido := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	repo := &fakeControlRepo{rows: []types.ControlETL{
		{ID: 1, Proceso: types.ProcesoSyncNotas, UltimaEjecucion: exitoso, Estado: types.EstadoExitoso},
		{ID: 2, Proceso: types.ProcesoSyncNotas, UltimaEjecucion: fallido, Estado: types.EstadoFallido},
		{ID: 3, Proceso: types.ProcesoSyncAsistencias, UltimaEjecucion: fallido, Estado: types.EstadoExitoso},
	}}
	w := &watermarkTracker{repo: repo, log: testLogger(t), now: time.Now}

	since, err := w.LastSuccessfulRun(context.Background(), types.ProcesoSyncNotas)
	if err != nil {
		t.Fatalf("LastSuccessfulRun: %v", err)
	}
	// A fallido run never advances the watermark: its window is re-extracted.
	if !since.Equal(exitoso) {
		t.Fatalf("since: got %v, want %v", since, exitoso)
	}
}

func TestRecordRunAppendsOutcomeRow(t *testing.T) {
	repo := &fakeControlRepo{}
	now := time.Date(2025, time.April, 2, 8, 30, 0, 0, time.UTC)
	w := &watermarkTracker{repo: repo, log: testLogger(t), now: func() time.Time { return now }}

	if err := w.RecordRun(context.Background(), types.ProcesoSyncAsistencias, types.EstadoExitoso, 42, ""); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := w.RecordRun(context.Background(), types.ProcesoSyncAsistencias, types.EstadoFallido, 0, "connection refused"); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	if len(repo.appended) != 2 {
		t.Fatalf("appended rows: got %d, want 2", len(repo.appended))
	}
	first := repo.appended[0]
	if first.Estado != types.EstadoExitoso || first.RegistrosProcesados != 42 || first.Errores != nil {
		t.Fatalf("exitoso row malformed: %+v", first)
	}
	if !first.UltimaEjecucion.Equal(now) {
		t.Fatalf("ultima_ejecucion: got %v, want %v", first.UltimaEjecucion, now)
	}
	second := repo.appended[1]
	if second.Estado != types.EstadoFallido || second.Errores == nil || *second.Errores != "connection refused" {
		t.Fatalf("fallido row malformed: %+v", second)
	}
}
