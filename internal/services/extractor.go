package services

import (
	"context"
	"time"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/repos"
	"github.com/sgacademico/etl-backend/internal/types"
)

// Extractor pulls operational rows changed strictly after the watermark,
// already joined with the current descriptive attributes. An empty result is
// a valid outcome, not an error.
type Extractor interface {
	ExtractAsistencias(ctx context.Context, since time.Time) ([]types.AsistenciaExtraida, error)
	ExtractNotas(ctx context.Context, since time.Time) ([]types.NotaExtraida, error)
}

type extractor struct {
	repo repos.OperacionalRepo
	log  *logger.Logger
}

func NewExtractor(repo repos.OperacionalRepo, baseLog *logger.Logger) Extractor {
	return &extractor{
		repo: repo,
		log:  baseLog.With("service", "Extractor"),
	}
}

func (s *extractor) ExtractAsistencias(ctx context.Context, since time.Time) ([]types.AsistenciaExtraida, error) {
	rows, err := s.repo.ExtractAsistencias(ctx, since)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Extracted asistencias", "since", since, "rows", len(rows))
	return rows, nil
}

func (s *extractor) ExtractNotas(ctx context.Context, since time.Time) ([]types.NotaExtraida, error) {
	rows, err := s.repo.ExtractNotas(ctx, since)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Extracted notas", "since", since, "rows", len(rows))
	return rows, nil
}
