package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/types"
)

// ControlRepo reads and appends run-control rows. The log is append-only:
// Append never overwrites, and LastExitoso must scan for the most recent
// exitoso row, not merely the most recent row.
type ControlRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *types.ControlETL) error
	LastExitoso(ctx context.Context, tx *gorm.DB, proceso string) (*types.ControlETL, error)
	ListRecent(ctx context.Context, tx *gorm.DB, proceso string, limit int) ([]types.ControlETL, error)
}

type controlRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewControlRepo(db *gorm.DB, baseLog *logger.Logger) ControlRepo {
	return &controlRepo{
		db:  db,
		log: baseLog.With("repo", "ControlRepo"),
	}
}

func (r *controlRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *controlRepo) Append(ctx context.Context, tx *gorm.DB, row *types.ControlETL) error {
	if row == nil {
		return errors.New("nil control row")
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *controlRepo) LastExitoso(ctx context.Context, tx *gorm.DB, proceso string) (*types.ControlETL, error) {
	var row types.ControlETL
	err := r.conn(tx).WithContext(ctx).
		Where("proceso = ? AND estado = ?", proceso, types.EstadoExitoso).
		Order("ultima_ejecucion DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *controlRepo) ListRecent(ctx context.Context, tx *gorm.DB, proceso string, limit int) ([]types.ControlETL, error) {
	if limit <= 0 {
		limit = 20
	}
	q := r.conn(tx).WithContext(ctx).Order("ultima_ejecucion DESC").Limit(limit)
	if proceso != "" {
		q = q.Where("proceso = ?", proceso)
	}
	var rows []types.ControlETL
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
