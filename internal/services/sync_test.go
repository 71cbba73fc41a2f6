package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sgacademico/etl-backend/internal/types"
)

type fakeWatermark struct {
	since    time.Time
	sinceErr error
	records  []recordedRun
}

type recordedRun struct {
	proceso   string
	estado    string
	registros int
	errores   string
}

func (f *fakeWatermark) LastSuccessfulRun(ctx context.Context, proceso string) (time.Time, error) {
	return f.since, f.sinceErr
}

func (f *fakeWatermark) RecordRun(ctx context.Context, proceso, estado string, registros int, errores string) error {
	f.records = append(f.records, recordedRun{proceso: proceso, estado: estado, registros: registros, errores: errores})
	return nil
}

type fakeExtractor struct {
	asistencias []types.AsistenciaExtraida
	notas       []types.NotaExtraida
	err         error
	calls       int
}

func (f *fakeExtractor) ExtractAsistencias(ctx context.Context, since time.Time) ([]types.AsistenciaExtraida, error) {
	f.calls++
	return f.asistencias, f.err
}

func (f *fakeExtractor) ExtractNotas(ctx context.Context, since time.Time) ([]types.NotaExtraida, error) {
	f.calls++
	return f.notas, f.err
}

type fakeTransformer struct {
	factsAsistencia []types.FactAsistencia
	factsNota       []types.FactNota
	err             error
	calls           int
}

func (f *fakeTransformer) ToFactsAsistencia(ctx context.Context, rows []types.AsistenciaExtraida) ([]types.FactAsistencia, error) {
	f.calls++
	return f.factsAsistencia, f.err
}

func (f *fakeTransformer) ToFactsNota(ctx context.Context, rows []types.NotaExtraida, fechaCarga time.Time) ([]types.FactNota, error) {
	f.calls++
	return f.factsNota, f.err
}

type fakeLoader struct {
	n     int
	err   error
	calls int
}

func (f *fakeLoader) LoadAsistencias(ctx context.Context, facts []types.FactAsistencia) (int, error) {
	f.calls++
	return f.n, f.err
}

func (f *fakeLoader) LoadNotas(ctx context.Context, facts []types.FactNota) (int, error) {
	f.calls++
	return f.n, f.err
}

func newTestSync(t *testing.T, w *fakeWatermark, e *fakeExtractor, tr *fakeTransformer, l *fakeLoader) *syncService {
	t.Helper()
	return &syncService{
		watermark:   w,
		extractor:   e,
		transformer: tr,
		loader:      l,
		log:         testLogger(t),
		now:         time.Now,
	}
}

func TestRunAsistenciasEmptyExtractionShortCircuits(t *testing.T) {
	w := &fakeWatermark{since: time.Now().Add(-time.Hour)}
	e := &fakeExtractor{}
	tr := &fakeTransformer{}
	l := &fakeLoader{}
	s := newTestSync(t, w, e, tr, l)

	registros, err := s.RunAsistencias(context.Background())
	if err != nil {
		t.Fatalf("RunAsistencias: %v", err)
	}
	if registros != 0 {
		t.Fatalf("registros: got %d, want 0", registros)
	}
	if tr.calls != 0 || l.calls != 0 {
		t.Fatalf("transform/load must be skipped on empty extraction: transform=%d load=%d", tr.calls, l.calls)
	}
	if len(w.records) != 1 {
		t.Fatalf("records: got %d, want 1", len(w.records))
	}
	rec := w.records[0]
	if rec.estado != types.EstadoExitoso || rec.registros != 0 || rec.errores != "" {
		t.Fatalf("outcome: %+v", rec)
	}
}

func TestRunAsistenciasSuccessRecordsRowCount(t *testing.T) {
	w := &fakeWatermark{}
	e := &fakeExtractor{asistencias: []types.AsistenciaExtraida{{EstudianteID: 7, CursoID: 3}}}
	tr := &fakeTransformer{factsAsistencia: []types.FactAsistencia{{EstudianteKey: 1, CursoKey: 2, TiempoKey: 3}}}
	l := &fakeLoader{n: 1}
	s := newTestSync(t, w, e, tr, l)

	registros, err := s.RunAsistencias(context.Background())
	if err != nil {
		t.Fatalf("RunAsistencias: %v", err)
	}
	if registros != 1 {
		t.Fatalf("registros: got %d, want 1", registros)
	}
	if len(w.records) != 1 || w.records[0].estado != types.EstadoExitoso || w.records[0].registros != 1 {
		t.Fatalf("outcome: %+v", w.records)
	}
}

func TestRunNotasExtractFailureRecordsFallidoAndReRaises(t *testing.T) {
	w := &fakeWatermark{}
	e := &fakeExtractor{err: errors.New("connection refused")}
	tr := &fakeTransformer{}
	l := &fakeLoader{}
	s := newTestSync(t, w, e, tr, l)

	_, err := s.RunNotas(context.Background())
	if err == nil {
		t.Fatalf("RunNotas should re-raise the extract error")
	}
	if len(w.records) != 1 {
		t.Fatalf("records: got %d, want 1", len(w.records))
	}
	rec := w.records[0]
	if rec.proceso != types.ProcesoSyncNotas || rec.estado != types.EstadoFallido {
		t.Fatalf("outcome: %+v", rec)
	}
	if rec.errores == "" {
		t.Fatalf("fallido outcome must carry the error text")
	}
	if tr.calls != 0 || l.calls != 0 {
		t.Fatalf("transform/load must not run after extract failure")
	}
}

func TestRunNotasLoadFailureRecordsFallido(t *testing.T) {
	w := &fakeWatermark{}
	e := &fakeExtractor{notas: []types.NotaExtraida{{EstudianteID: 7, CursoID: 3, Unidad: 2, Calificacion: 15.5}}}
	tr := &fakeTransformer{factsNota: []types.FactNota{{EstudianteKey: 1, CursoKey: 2, TiempoKey: 3, Unidad: 2, Calificacion: 15.5}}}
	l := &fakeLoader{err: errors.New("deadlock detected")}
	s := newTestSync(t, w, e, tr, l)

	_, err := s.RunNotas(context.Background())
	if err == nil {
		t.Fatalf("RunNotas should re-raise the load error")
	}
	if len(w.records) != 1 || w.records[0].estado != types.EstadoFallido {
		t.Fatalf("outcome: %+v", w.records)
	}
}

func TestRunProcesoRejectsUnknownProceso(t *testing.T) {
	s := newTestSync(t, &fakeWatermark{}, &fakeExtractor{}, &fakeTransformer{}, &fakeLoader{})
	if _, err := s.RunProceso(context.Background(), "sync_recreos"); err == nil {
		t.Fatalf("RunProceso should reject an unknown proceso")
	}
}
