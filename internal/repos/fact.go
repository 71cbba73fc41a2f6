package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/types"
)

// FactRepo is the only writer of fact_rendimiento_estudiantil. GetForUpdate
// takes a row-level lock so the read-modify-write-recompute sequence in the
// loader is serialized per (estudiante, curso, tiempo) key.
type FactRepo interface {
	GetForUpdate(ctx context.Context, tx *gorm.DB, estudianteKey, cursoKey, tiempoKey uint) (*types.FactRendimientoEstudiantil, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.FactRendimientoEstudiantil) error
	Save(ctx context.Context, tx *gorm.DB, row *types.FactRendimientoEstudiantil) error
}

type factRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactRepo(db *gorm.DB, baseLog *logger.Logger) FactRepo {
	return &factRepo{
		db:  db,
		log: baseLog.With("repo", "FactRepo"),
	}
}

func (r *factRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *factRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, estudianteKey, cursoKey, tiempoKey uint) (*types.FactRendimientoEstudiantil, error) {
	var row types.FactRendimientoEstudiantil
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("estudiante_key = ? AND curso_key = ? AND tiempo_key = ?", estudianteKey, cursoKey, tiempoKey).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *factRepo) Create(ctx context.Context, tx *gorm.DB, row *types.FactRendimientoEstudiantil) error {
	if row == nil {
		return errors.New("nil fact row")
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *factRepo) Save(ctx context.Context, tx *gorm.DB, row *types.FactRendimientoEstudiantil) error {
	if row == nil {
		return errors.New("nil fact row")
	}
	return r.conn(tx).WithContext(ctx).Save(row).Error
}
