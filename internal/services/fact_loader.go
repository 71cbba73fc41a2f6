package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/repos"
	"github.com/sgacademico/etl-backend/internal/types"
)

// FactInvalidationBus receives one event per (estudiante, curso) pair whose
// fact rows changed during a load call. The reporting cache layer subscribes
// to it; the loader never clears caches itself.
type FactInvalidationBus interface {
	Publish(ctx context.Context, estudianteKey, cursoKey uint) error
}

// FactLoader owns every fact-row mutation. Each fact record runs in its own
// transaction: lock the target row (or insert it), apply the single additive
// update, then recompute the derived aggregate from the locked row's
// counters. Any database error aborts the whole call; records already
// committed stay, which is accepted under the at-least-once contract.
type FactLoader interface {
	LoadAsistencias(ctx context.Context, facts []types.FactAsistencia) (int, error)
	LoadNotas(ctx context.Context, facts []types.FactNota) (int, error)
}

type factLoader struct {
	db   *gorm.DB
	repo repos.FactRepo
	bus  FactInvalidationBus
	log  *logger.Logger
}

func NewFactLoader(db *gorm.DB, repo repos.FactRepo, bus FactInvalidationBus, baseLog *logger.Logger) FactLoader {
	return &factLoader{
		db:   db,
		repo: repo,
		bus:  bus,
		log:  baseLog.With("service", "FactLoader"),
	}
}

type parEstudianteCurso struct {
	estudianteKey uint
	cursoKey      uint
}

func (s *factLoader) LoadAsistencias(ctx context.Context, facts []types.FactAsistencia) (int, error) {
	touched := make(map[parEstudianteCurso]struct{})
	for _, f := range facts {
		err := s.upsert(ctx, f.EstudianteKey, f.CursoKey, f.TiempoKey, func(row *types.FactRendimientoEstudiantil) error {
			row.DocenteKey = f.DocenteKey
			row.GradoKey = f.GradoKey
			row.SeccionKey = f.SeccionKey
			row.AnioAcademico = f.AnioAcademico
			AplicarEstadoAsistencia(row, f.Estado)
			return nil
		})
		if err != nil {
			return 0, err
		}
		touched[parEstudianteCurso{f.EstudianteKey, f.CursoKey}] = struct{}{}
	}
	s.publishInvalidations(ctx, touched)
	return len(facts), nil
}

func (s *factLoader) LoadNotas(ctx context.Context, facts []types.FactNota) (int, error) {
	touched := make(map[parEstudianteCurso]struct{})
	for _, f := range facts {
		unidad := f.Unidad
		calificacion := f.Calificacion
		err := s.upsert(ctx, f.EstudianteKey, f.CursoKey, f.TiempoKey, func(row *types.FactRendimientoEstudiantil) error {
			row.DocenteKey = f.DocenteKey
			row.GradoKey = f.GradoKey
			row.SeccionKey = f.SeccionKey
			row.AnioAcademico = f.AnioAcademico
			return AplicarNotaUnidad(row, unidad, calificacion)
		})
		if err != nil {
			return 0, err
		}
		touched[parEstudianteCurso{f.EstudianteKey, f.CursoKey}] = struct{}{}
	}
	s.publishInvalidations(ctx, touched)
	return len(facts), nil
}

// upsert applies one mutation to the fact row addressed by the composite
// key. The row is locked FOR UPDATE before the read-modify-write, so the
// recompute always sees the persisted counters, never a stale in-memory
// copy. A brand-new key cannot be locked; if two runs insert it at once the
// loser gets a duplicate-key error and retries, now finding a lockable row.
func (s *factLoader) upsert(ctx context.Context, estudianteKey, cursoKey, tiempoKey uint, apply func(*types.FactRendimientoEstudiantil) error) error {
	for intento := 0; intento < 2; intento++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			row, err := s.repo.GetForUpdate(ctx, tx, estudianteKey, cursoKey, tiempoKey)
			if err != nil {
				return err
			}
			if row == nil {
				row = &types.FactRendimientoEstudiantil{
					EstudianteKey: estudianteKey,
					CursoKey:      cursoKey,
					TiempoKey:     tiempoKey,
					FechaCarga:    time.Now(),
				}
				if err := apply(row); err != nil {
					return err
				}
				row.FechaActualizacion = time.Now()
				return s.repo.Create(ctx, tx, row)
			}
			if err := apply(row); err != nil {
				return err
			}
			row.FechaActualizacion = time.Now()
			return s.repo.Save(ctx, tx, row)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && intento == 0 {
			s.log.Debug("Fact insert lost creation race, retrying as update",
				"estudiante_key", estudianteKey, "curso_key", cursoKey, "tiempo_key", tiempoKey)
			continue
		}
		return err
	}
	return nil
}

func (s *factLoader) publishInvalidations(ctx context.Context, touched map[parEstudianteCurso]struct{}) {
	if s.bus == nil {
		return
	}
	for par := range touched {
		if err := s.bus.Publish(ctx, par.estudianteKey, par.cursoKey); err != nil {
			// Cache invalidation must never fail the load.
			s.log.Warn("Failed to publish fact invalidation",
				"estudiante_key", par.estudianteKey, "curso_key", par.cursoKey, "error", err)
		}
	}
}

// AplicarEstadoAsistencia applies one attendance event to the row's counters
// and recomputes the attendance percentage. Every event counts one class
// held; presente and tardanza have their own counters and anything else
// (ausente, justificado, unrecognized states) counts as a falta, which keeps
// presentes + faltas + tardanzas equal to clases.
func AplicarEstadoAsistencia(row *types.FactRendimientoEstudiantil, estado string) {
	row.TotalClases++
	switch estado {
	case types.EstadoAsistenciaPresente:
		row.TotalPresentes++
	case types.EstadoAsistenciaTardanza:
		row.TotalTardanzas++
	default:
		row.TotalFaltas++
	}
	row.PorcentajeAsistencia = PorcentajeAsistencia(row.TotalPresentes, row.TotalClases)
}

// PorcentajeAsistencia is presencias/clases*100 rounded to two decimals,
// zero when no classes have been held.
func PorcentajeAsistencia(presentes, clases int) float64 {
	if clases == 0 {
		return 0
	}
	return math.Round(float64(presentes)/float64(clases)*100*100) / 100
}

// AplicarNotaUnidad sets one per-unit grade slot and recomputes the average
// over the slots currently set. Re-loading a unit overwrites the slot (last
// write wins).
func AplicarNotaUnidad(row *types.FactRendimientoEstudiantil, unidad int, calificacion float64) error {
	switch unidad {
	case 1:
		row.NotaUnidad1 = &calificacion
	case 2:
		row.NotaUnidad2 = &calificacion
	case 3:
		row.NotaUnidad3 = &calificacion
	case 4:
		row.NotaUnidad4 = &calificacion
	default:
		return fmt.Errorf("unidad fuera de rango: %d", unidad)
	}
	row.PromedioNotas = PromedioNotas(row)
	return nil
}

// PromedioNotas is the arithmetic mean of the non-null unit slots, zero when
// none are set.
func PromedioNotas(row *types.FactRendimientoEstudiantil) float64 {
	var suma float64
	var n int
	for _, nota := range []*float64{row.NotaUnidad1, row.NotaUnidad2, row.NotaUnidad3, row.NotaUnidad4} {
		if nota != nil {
			suma += *nota
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return suma / float64(n)
}
