package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/repos"
	"github.com/sgacademico/etl-backend/internal/types"
)

// SyncService is the run controller: one call is one bounded pipeline run,
// extract -> transform -> load -> record outcome. An empty extraction records
// an exitoso outcome with zero rows and skips transform and load entirely.
// Any stage error is recorded as fallido and re-raised so the scheduler can
// apply its retry policy. The watermark only advances on exitoso, so a
// failed run's window is re-extracted by the next attempt.
type SyncService interface {
	RunAsistencias(ctx context.Context) (int, error)
	RunNotas(ctx context.Context) (int, error)
	RunDimensiones(ctx context.Context) (int, error)
	RunProceso(ctx context.Context, proceso string) (int, error)
}

type syncService struct {
	watermark   WatermarkTracker
	extractor   Extractor
	transformer Transformer
	loader      FactLoader
	resolver    DimensionResolver
	opRepo      repos.OperacionalRepo
	log         *logger.Logger
	now         func() time.Time
}

func NewSyncService(
	watermark WatermarkTracker,
	extractor Extractor,
	transformer Transformer,
	loader FactLoader,
	resolver DimensionResolver,
	opRepo repos.OperacionalRepo,
	baseLog *logger.Logger,
) SyncService {
	return &syncService{
		watermark:   watermark,
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		resolver:    resolver,
		opRepo:      opRepo,
		log:         baseLog.With("service", "SyncService"),
		now:         time.Now,
	}
}

func (s *syncService) RunProceso(ctx context.Context, proceso string) (int, error) {
	switch proceso {
	case types.ProcesoSyncAsistencias:
		return s.RunAsistencias(ctx)
	case types.ProcesoSyncNotas:
		return s.RunNotas(ctx)
	case types.ProcesoRefreshDimensiones:
		return s.RunDimensiones(ctx)
	default:
		return 0, fmt.Errorf("proceso desconocido: %s", proceso)
	}
}

// fail records the fallido outcome and re-raises the stage error. A failed
// outcome write is logged but never masks the original error.
func (s *syncService) fail(ctx context.Context, log *logger.Logger, proceso string, err error) (int, error) {
	log.Error("Pipeline run failed", "error", err)
	if recErr := s.watermark.RecordRun(ctx, proceso, types.EstadoFallido, 0, err.Error()); recErr != nil {
		log.Error("Failed to record fallido outcome", "error", recErr)
	}
	return 0, err
}

func (s *syncService) succeed(ctx context.Context, log *logger.Logger, proceso string, registros int) (int, error) {
	if err := s.watermark.RecordRun(ctx, proceso, types.EstadoExitoso, registros, ""); err != nil {
		// Without the exitoso row the watermark will not advance and the next
		// run re-extracts this window; surface it as a failed attempt.
		log.Error("Failed to record exitoso outcome", "error", err)
		return 0, err
	}
	log.Info("Pipeline run finished", "registros_procesados", registros)
	return registros, nil
}

func (s *syncService) RunAsistencias(ctx context.Context) (int, error) {
	proceso := types.ProcesoSyncAsistencias
	log := s.log.With("proceso", proceso, "run_id", uuid.New().String())
	log.Info("Starting pipeline run")

	since, err := s.watermark.LastSuccessfulRun(ctx, proceso)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("watermark: %w", err))
	}
	rows, err := s.extractor.ExtractAsistencias(ctx, since)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("extract: %w", err))
	}
	if len(rows) == 0 {
		log.Info("Nothing extracted, short-circuiting", "since", since)
		return s.succeed(ctx, log, proceso, 0)
	}
	facts, err := s.transformer.ToFactsAsistencia(ctx, rows)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("transform: %w", err))
	}
	registros, err := s.loader.LoadAsistencias(ctx, facts)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("load: %w", err))
	}
	return s.succeed(ctx, log, proceso, registros)
}

func (s *syncService) RunNotas(ctx context.Context) (int, error) {
	proceso := types.ProcesoSyncNotas
	log := s.log.With("proceso", proceso, "run_id", uuid.New().String())
	log.Info("Starting pipeline run")

	since, err := s.watermark.LastSuccessfulRun(ctx, proceso)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("watermark: %w", err))
	}
	rows, err := s.extractor.ExtractNotas(ctx, since)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("extract: %w", err))
	}
	if len(rows) == 0 {
		log.Info("Nothing extracted, short-circuiting", "since", since)
		return s.succeed(ctx, log, proceso, 0)
	}
	facts, err := s.transformer.ToFactsNota(ctx, rows, s.now())
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("transform: %w", err))
	}
	registros, err := s.loader.LoadNotas(ctx, facts)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("load: %w", err))
	}
	return s.succeed(ctx, log, proceso, registros)
}

// RunDimensiones is the hourly full refresh: every student, teacher, course,
// grade and section dimension gets its descriptive attributes re-applied
// (Type 1), and today's calendar row is ensured. No watermark; the pass is
// intentionally non-incremental.
func (s *syncService) RunDimensiones(ctx context.Context) (int, error) {
	proceso := types.ProcesoRefreshDimensiones
	log := s.log.With("proceso", proceso, "run_id", uuid.New().String())
	log.Info("Starting dimension refresh")

	registros := 0

	estudiantes, err := s.opRepo.ListUsuariosPorRol(ctx, types.RolEstudiante)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("list estudiantes: %w", err))
	}
	for _, u := range estudiantes {
		if _, err := s.resolver.ResolveEstudiante(ctx, u.ID, u.Nombre, u.Email); err != nil {
			return s.fail(ctx, log, proceso, fmt.Errorf("refresh estudiante %d: %w", u.ID, err))
		}
		registros++
	}

	docentes, err := s.opRepo.ListUsuariosPorRol(ctx, types.RolDocente)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("list docentes: %w", err))
	}
	for _, u := range docentes {
		if _, err := s.resolver.ResolveDocente(ctx, u.ID, u.Nombre, u.Email); err != nil {
			return s.fail(ctx, log, proceso, fmt.Errorf("refresh docente %d: %w", u.ID, err))
		}
		registros++
	}

	cursos, err := s.opRepo.ListCursosDenormalizados(ctx)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("list cursos: %w", err))
	}
	for _, c := range cursos {
		if _, err := s.resolver.ResolveCurso(ctx, c.ID, c.Nombre, c.Codigo, c.DocenteNombre, c.GradoNombre, c.SeccionNombre); err != nil {
			return s.fail(ctx, log, proceso, fmt.Errorf("refresh curso %d: %w", c.ID, err))
		}
		registros++
	}

	grados, err := s.opRepo.ListGrados(ctx)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("list grados: %w", err))
	}
	for _, g := range grados {
		if _, err := s.resolver.ResolveGrado(ctx, g.ID, g.Nombre); err != nil {
			return s.fail(ctx, log, proceso, fmt.Errorf("refresh grado %d: %w", g.ID, err))
		}
		registros++
	}

	secciones, err := s.opRepo.ListSecciones(ctx)
	if err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("list secciones: %w", err))
	}
	for _, sec := range secciones {
		if _, err := s.resolver.ResolveSeccion(ctx, sec.ID, sec.Nombre); err != nil {
			return s.fail(ctx, log, proceso, fmt.Errorf("refresh seccion %d: %w", sec.ID, err))
		}
		registros++
	}

	if _, err := s.resolver.ResolveTiempo(ctx, s.now()); err != nil {
		return s.fail(ctx, log, proceso, fmt.Errorf("ensure dim_tiempo: %w", err))
	}

	return s.succeed(ctx, log, proceso, registros)
}
