package services

import (
	"context"
	"time"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/types"
)

// Transformer shapes extracted rows into fact records with every surrogate
// key resolved. All analytical-store side effects happen through the
// resolver; the shaping itself is pure.
//
// Attendance facts are keyed by the event date. Grade facts are keyed by the
// calendar key of the load time ("current period"): grades for the same
// student and course loaded on the same day land in one row regardless of
// when the underlying evaluation happened.
type Transformer interface {
	ToFactsAsistencia(ctx context.Context, rows []types.AsistenciaExtraida) ([]types.FactAsistencia, error)
	ToFactsNota(ctx context.Context, rows []types.NotaExtraida, fechaCarga time.Time) ([]types.FactNota, error)
}

type transformer struct {
	resolver DimensionResolver
	log      *logger.Logger
}

func NewTransformer(resolver DimensionResolver, baseLog *logger.Logger) Transformer {
	return &transformer{
		resolver: resolver,
		log:      baseLog.With("service", "Transformer"),
	}
}

type resolvedDims struct {
	estudianteKey uint
	cursoKey      uint
	docenteKey    uint
	gradoKey      *uint
	seccionKey    *uint
}

func (s *transformer) resolveComunes(
	ctx context.Context,
	resolver DimensionResolver,
	estudianteID int64, estudianteNombre, estudianteEmail string,
	cursoID int64, cursoNombre, cursoCodigo string,
	docenteID int64, docenteNombre, docenteEmail string,
	gradoID *int64, gradoNombre string,
	seccionID *int64, seccionNombre string,
) (resolvedDims, error) {
	var out resolvedDims

	estudianteKey, err := resolver.ResolveEstudiante(ctx, estudianteID, estudianteNombre, estudianteEmail)
	if err != nil {
		return out, err
	}
	cursoKey, err := resolver.ResolveCurso(ctx, cursoID, cursoNombre, cursoCodigo, docenteNombre, gradoNombre, seccionNombre)
	if err != nil {
		return out, err
	}
	docenteKey, err := resolver.ResolveDocente(ctx, docenteID, docenteNombre, docenteEmail)
	if err != nil {
		return out, err
	}
	out = resolvedDims{estudianteKey: estudianteKey, cursoKey: cursoKey, docenteKey: docenteKey}

	if gradoID != nil {
		gradoKey, err := resolver.ResolveGrado(ctx, *gradoID, gradoNombre)
		if err != nil {
			return out, err
		}
		out.gradoKey = &gradoKey
	}
	if seccionID != nil {
		seccionKey, err := resolver.ResolveSeccion(ctx, *seccionID, seccionNombre)
		if err != nil {
			return out, err
		}
		out.seccionKey = &seccionKey
	}
	return out, nil
}

func (s *transformer) ToFactsAsistencia(ctx context.Context, rows []types.AsistenciaExtraida) ([]types.FactAsistencia, error) {
	resolver := NewRunResolverCache(s.resolver)
	facts := make([]types.FactAsistencia, 0, len(rows))
	for _, row := range rows {
		dims, err := s.resolveComunes(ctx, resolver,
			row.EstudianteID, row.EstudianteNombre, row.EstudianteEmail,
			row.CursoID, row.CursoNombre, row.CursoCodigo,
			row.DocenteID, row.DocenteNombre, row.DocenteEmail,
			row.GradoID, row.GradoNombre,
			row.SeccionID, row.SeccionNombre,
		)
		if err != nil {
			return nil, err
		}
		tiempoKey, err := resolver.ResolveTiempo(ctx, row.Fecha)
		if err != nil {
			return nil, err
		}
		facts = append(facts, types.FactAsistencia{
			EstudianteKey: dims.estudianteKey,
			CursoKey:      dims.cursoKey,
			DocenteKey:    dims.docenteKey,
			TiempoKey:     tiempoKey,
			GradoKey:      dims.gradoKey,
			SeccionKey:    dims.seccionKey,
			AnioAcademico: row.AnioAcademico,
			Estado:        row.Estado,
		})
	}
	return facts, nil
}

func (s *transformer) ToFactsNota(ctx context.Context, rows []types.NotaExtraida, fechaCarga time.Time) ([]types.FactNota, error) {
	resolver := NewRunResolverCache(s.resolver)
	facts := make([]types.FactNota, 0, len(rows))
	for _, row := range rows {
		dims, err := s.resolveComunes(ctx, resolver,
			row.EstudianteID, row.EstudianteNombre, row.EstudianteEmail,
			row.CursoID, row.CursoNombre, row.CursoCodigo,
			row.DocenteID, row.DocenteNombre, row.DocenteEmail,
			row.GradoID, row.GradoNombre,
			row.SeccionID, row.SeccionNombre,
		)
		if err != nil {
			return nil, err
		}
		tiempoKey, err := resolver.ResolveTiempo(ctx, fechaCarga)
		if err != nil {
			return nil, err
		}
		facts = append(facts, types.FactNota{
			EstudianteKey: dims.estudianteKey,
			CursoKey:      dims.cursoKey,
			DocenteKey:    dims.docenteKey,
			TiempoKey:     tiempoKey,
			GradoKey:      dims.gradoKey,
			SeccionKey:    dims.seccionKey,
			AnioAcademico: row.AnioAcademico,
			Unidad:        row.Unidad,
			Calificacion:  row.Calificacion,
		})
	}
	return facts, nil
}
