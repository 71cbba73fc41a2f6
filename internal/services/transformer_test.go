package services

import (
	"context"
	"testing"
	"time"

	"github.com/sgacademico/etl-backend/internal/types"
)

// fakeResolver assigns deterministic keys and counts how many times each
// dimension type is actually resolved.
type fakeResolver struct {
	nextKey         uint
	estudianteKeys  map[int64]uint
	cursoKeys       map[int64]uint
	docenteKeys     map[int64]uint
	gradoKeys       map[int64]uint
	seccionKeys     map[int64]uint
	tiempoKeys      map[string]uint
	estudianteCalls int
	tiempoCalls     int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		estudianteKeys: make(map[int64]uint),
		cursoKeys:      make(map[int64]uint),
		docenteKeys:    make(map[int64]uint),
		gradoKeys:      make(map[int64]uint),
		seccionKeys:    make(map[int64]uint),
		tiempoKeys:     make(map[string]uint),
	}
}

func (f *fakeResolver) assign(m map[int64]uint, id int64) uint {
	if key, ok := m[id]; ok {
		return key
	}
	f.nextKey++
	m[id] = f.nextKey
	return f.nextKey
}

func (f *fakeResolver) ResolveEstudiante(ctx context.Context, naturalID int64, nombre, email string) (uint, error) {
	f.estudianteCalls++
	return f.assign(f.estudianteKeys, naturalID), nil
}

func (f *fakeResolver) ResolveCurso(ctx context.Context, naturalID int64, nombre, codigo, docenteNombre, gradoNombre, seccionNombre string) (uint, error) {
	return f.assign(f.cursoKeys, naturalID), nil
}

func (f *fakeResolver) ResolveDocente(ctx context.Context, naturalID int64, nombre, email string) (uint, error) {
	return f.assign(f.docenteKeys, naturalID), nil
}

func (f *fakeResolver) ResolveGrado(ctx context.Context, naturalID int64, nombre string) (uint, error) {
	return f.assign(f.gradoKeys, naturalID), nil
}

func (f *fakeResolver) ResolveSeccion(ctx context.Context, naturalID int64, nombre string) (uint, error) {
	return f.assign(f.seccionKeys, naturalID), nil
}

func (f *fakeResolver) ResolveTiempo(ctx context.Context, fecha time.Time) (uint, error) {
	f.tiempoCalls++
	day := fecha.Format("2006-01-02")
	if key, ok := f.tiempoKeys[day]; ok {
		return key, nil
	}
	f.nextKey++
	f.tiempoKeys[day] = f.nextKey
	return f.nextKey, nil
}

func asistenciaRow(estudianteID, cursoID int64, fecha time.Time, estado string) types.AsistenciaExtraida {
	gradoID := int64(2)
	return types.AsistenciaExtraida{
		EstudianteID:     estudianteID,
		EstudianteNombre: "Ana Quispe",
		EstudianteEmail:  "ana@colegio.edu",
		CursoID:          cursoID,
		CursoNombre:      "Matematica",
		CursoCodigo:      "MAT-3A",
		DocenteID:        31,
		DocenteNombre:    "Luis Rojas",
		DocenteEmail:     "lrojas@colegio.edu",
		GradoID:          &gradoID,
		GradoNombre:      "Tercero",
		AnioAcademico:    2025,
		Fecha:            fecha,
		Estado:           estado,
	}
}

func TestToFactsAsistenciaResolvesEveryDimension(t *testing.T) {
	resolver := newFakeResolver()
	s := NewTransformer(resolver, testLogger(t))

	fecha := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	facts, err := s.ToFactsAsistencia(context.Background(), []types.AsistenciaExtraida{
		asistenciaRow(7, 3, fecha, types.EstadoAsistenciaPresente),
	})
	if err != nil {
		t.Fatalf("ToFactsAsistencia: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("facts: got %d, want 1", len(facts))
	}
	f := facts[0]
	if f.EstudianteKey == 0 || f.CursoKey == 0 || f.DocenteKey == 0 || f.TiempoKey == 0 {
		t.Fatalf("unresolved keys in fact: %+v", f)
	}
	if f.GradoKey == nil {
		t.Fatalf("grado_key should be resolved when grado_id is present")
	}
	if f.SeccionKey != nil {
		t.Fatalf("seccion_key should stay nil when seccion_id is absent")
	}
	if f.Estado != types.EstadoAsistenciaPresente {
		t.Fatalf("estado: got %q", f.Estado)
	}
	// Attendance facts are keyed by the event date.
	if resolver.tiempoKeys[fecha.Format("2006-01-02")] != f.TiempoKey {
		t.Fatalf("tiempo_key not derived from the event date")
	}
}

func TestToFactsAsistenciaCachesResolverWithinRun(t *testing.T) {
	resolver := newFakeResolver()
	s := NewTransformer(resolver, testLogger(t))

	fecha := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	rows := []types.AsistenciaExtraida{
		asistenciaRow(7, 3, fecha, types.EstadoAsistenciaPresente),
		asistenciaRow(7, 3, fecha, types.EstadoAsistenciaAusente),
		asistenciaRow(7, 3, fecha, types.EstadoAsistenciaTardanza),
	}
	if _, err := s.ToFactsAsistencia(context.Background(), rows); err != nil {
		t.Fatalf("ToFactsAsistencia: %v", err)
	}
	if resolver.estudianteCalls != 1 {
		t.Fatalf("estudiante resolved %d times within one run, want 1", resolver.estudianteCalls)
	}
	if resolver.tiempoCalls != 1 {
		t.Fatalf("tiempo resolved %d times within one run, want 1", resolver.tiempoCalls)
	}
}

func TestToFactsNotaUsesLoadTimeCalendarKey(t *testing.T) {
	resolver := newFakeResolver()
	s := NewTransformer(resolver, testLogger(t))

	fechaCarga := time.Date(2025, time.April, 2, 10, 15, 0, 0, time.UTC)
	facts, err := s.ToFactsNota(context.Background(), []types.NotaExtraida{
		{
			EstudianteID: 7, EstudianteNombre: "Ana Quispe", EstudianteEmail: "ana@colegio.edu",
			CursoID: 3, CursoNombre: "Matematica", CursoCodigo: "MAT-3A",
			DocenteID: 31, DocenteNombre: "Luis Rojas", DocenteEmail: "lrojas@colegio.edu",
			AnioAcademico: 2025, Unidad: 2, Calificacion: 15.5,
		},
	}, fechaCarga)
	if err != nil {
		t.Fatalf("ToFactsNota: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("facts: got %d, want 1", len(facts))
	}
	f := facts[0]
	if f.Unidad != 2 || f.Calificacion != 15.5 {
		t.Fatalf("payload: %+v", f)
	}
	// Grade facts land in the load-time calendar bucket, not an event date.
	if resolver.tiempoKeys[fechaCarga.Format("2006-01-02")] != f.TiempoKey {
		t.Fatalf("tiempo_key not derived from the load time")
	}
}
