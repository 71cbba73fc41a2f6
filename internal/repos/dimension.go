package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/types"
)

// DimensionRepo owns every dimension-row read and write. Each Ensure method
// is the race-safe lookup-or-create sequence: find by natural id, refresh
// descriptive attributes in place when the row exists (Type 1, last write
// wins), otherwise insert and treat a duplicate-key error as "a concurrent
// run just created it" followed by a re-read. Surrogate keys never change
// once assigned.
type DimensionRepo interface {
	EnsureEstudiante(ctx context.Context, tx *gorm.DB, naturalID int64, nombre, email string) (uint, error)
	EnsureCurso(ctx context.Context, tx *gorm.DB, naturalID int64, nombre, codigo, docenteNombre, gradoNombre, seccionNombre string) (uint, error)
	EnsureDocente(ctx context.Context, tx *gorm.DB, naturalID int64, nombre, email string) (uint, error)
	EnsureGrado(ctx context.Context, tx *gorm.DB, naturalID int64, nombre string) (uint, error)
	EnsureSeccion(ctx context.Context, tx *gorm.DB, naturalID int64, nombre string) (uint, error)
	EnsureTiempo(ctx context.Context, tx *gorm.DB, fecha time.Time) (uint, error)
}

type dimensionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDimensionRepo(db *gorm.DB, baseLog *logger.Logger) DimensionRepo {
	return &dimensionRepo{
		db:  db,
		log: baseLog.With("repo", "DimensionRepo"),
	}
}

func (r *dimensionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *dimensionRepo) EnsureEstudiante(ctx context.Context, tx *gorm.DB, naturalID int64, nombre, email string) (uint, error) {
	transaction := r.conn(tx).WithContext(ctx)

	var row types.DimEstudiante
	err := transaction.Where("estudiante_id = ?", naturalID).First(&row).Error
	if err == nil {
		if row.Nombre != nombre || row.Email != email {
			updates := map[string]interface{}{"nombre": nombre, "email": email}
			if err := transaction.Model(&types.DimEstudiante{}).
				Where("estudiante_key = ?", row.EstudianteKey).
				Updates(updates).Error; err != nil {
				return 0, err
			}
		}
		return row.EstudianteKey, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row = types.DimEstudiante{EstudianteID: naturalID, Nombre: nombre, Email: email, FechaCarga: time.Now()}
	err = transaction.Create(&row).Error
	if err == nil {
		return row.EstudianteKey, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, err
	}
	// Lost the first-creation race; the winner's key is authoritative.
	r.log.Debug("Duplicate estudiante insert, re-reading", "estudiante_id", naturalID)
	var existing types.DimEstudiante
	if err := transaction.Where("estudiante_id = ?", naturalID).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.EstudianteKey, nil
}

func (r *dimensionRepo) EnsureCurso(ctx context.Context, tx *gorm.DB, naturalID int64, nombre, codigo, docenteNombre, gradoNombre, seccionNombre string) (uint, error) {
	transaction := r.conn(tx).WithContext(ctx)

	var row types.DimCurso
	err := transaction.Where("curso_id = ?", naturalID).First(&row).Error
	if err == nil {
		if row.Nombre != nombre || row.Codigo != codigo || row.DocenteNombre != docenteNombre ||
			row.GradoNombre != gradoNombre || row.SeccionNombre != seccionNombre {
			updates := map[string]interface{}{
				"nombre":         nombre,
				"codigo":         codigo,
				"docente_nombre": docenteNombre,
				"grado_nombre":   gradoNombre,
				"seccion_nombre": seccionNombre,
			}
			if err := transaction.Model(&types.DimCurso{}).
				Where("curso_key = ?", row.CursoKey).
				Updates(updates).Error; err != nil {
				return 0, err
			}
		}
		return row.CursoKey, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row = types.DimCurso{
		CursoID:       naturalID,
		Nombre:        nombre,
		Codigo:        codigo,
		DocenteNombre: docenteNombre,
		GradoNombre:   gradoNombre,
		SeccionNombre: seccionNombre,
		FechaCarga:    time.Now(),
	}
	err = transaction.Create(&row).Error
	if err == nil {
		return row.CursoKey, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, err
	}
	r.log.Debug("Duplicate curso insert, re-reading", "curso_id", naturalID)
	var existing types.DimCurso
	if err := transaction.Where("curso_id = ?", naturalID).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.CursoKey, nil
}

func (r *dimensionRepo) EnsureDocente(ctx context.Context, tx *gorm.DB, naturalID int64, nombre, email string) (uint, error) {
	transaction := r.conn(tx).WithContext(ctx)

	var row types.DimDocente
	err := transaction.Where("docente_id = ?", naturalID).First(&row).Error
	if err == nil {
		if row.Nombre != nombre || row.Email != email {
			updates := map[string]interface{}{"nombre": nombre, "email": email}
			if err := transaction.Model(&types.DimDocente{}).
				Where("docente_key = ?", row.DocenteKey).
				Updates(updates).Error; err != nil {
				return 0, err
			}
		}
		return row.DocenteKey, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row = types.DimDocente{DocenteID: naturalID, Nombre: nombre, Email: email, FechaCarga: time.Now()}
	err = transaction.Create(&row).Error
	if err == nil {
		return row.DocenteKey, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, err
	}
	r.log.Debug("Duplicate docente insert, re-reading", "docente_id", naturalID)
	var existing types.DimDocente
	if err := transaction.Where("docente_id = ?", naturalID).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.DocenteKey, nil
}

func (r *dimensionRepo) EnsureGrado(ctx context.Context, tx *gorm.DB, naturalID int64, nombre string) (uint, error) {
	transaction := r.conn(tx).WithContext(ctx)

	var row types.DimGrado
	err := transaction.Where("grado_id = ?", naturalID).First(&row).Error
	if err == nil {
		if row.Nombre != nombre {
			if err := transaction.Model(&types.DimGrado{}).
				Where("grado_key = ?", row.GradoKey).
				Update("nombre", nombre).Error; err != nil {
				return 0, err
			}
		}
		return row.GradoKey, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row = types.DimGrado{GradoID: naturalID, Nombre: nombre, FechaCarga: time.Now()}
	err = transaction.Create(&row).Error
	if err == nil {
		return row.GradoKey, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, err
	}
	r.log.Debug("Duplicate grado insert, re-reading", "grado_id", naturalID)
	var existing types.DimGrado
	if err := transaction.Where("grado_id = ?", naturalID).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.GradoKey, nil
}

func (r *dimensionRepo) EnsureSeccion(ctx context.Context, tx *gorm.DB, naturalID int64, nombre string) (uint, error) {
	transaction := r.conn(tx).WithContext(ctx)

	var row types.DimSeccion
	err := transaction.Where("seccion_id = ?", naturalID).First(&row).Error
	if err == nil {
		if row.Nombre != nombre {
			if err := transaction.Model(&types.DimSeccion{}).
				Where("seccion_key = ?", row.SeccionKey).
				Update("nombre", nombre).Error; err != nil {
				return 0, err
			}
		}
		return row.SeccionKey, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row = types.DimSeccion{SeccionID: naturalID, Nombre: nombre, FechaCarga: time.Now()}
	err = transaction.Create(&row).Error
	if err == nil {
		return row.SeccionKey, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, err
	}
	r.log.Debug("Duplicate seccion insert, re-reading", "seccion_id", naturalID)
	var existing types.DimSeccion
	if err := transaction.Where("seccion_id = ?", naturalID).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.SeccionKey, nil
}

func (r *dimensionRepo) EnsureTiempo(ctx context.Context, tx *gorm.DB, fecha time.Time) (uint, error) {
	transaction := r.conn(tx).WithContext(ctx)

	row := types.NewDimTiempo(fecha)

	var existing types.DimTiempo
	err := transaction.Where("fecha = ?", row.Fecha).First(&existing).Error
	if err == nil {
		// Calendar attributes derive from the date itself, nothing to refresh.
		return existing.TiempoKey, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	err = transaction.Create(&row).Error
	if err == nil {
		return row.TiempoKey, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, err
	}
	r.log.Debug("Duplicate tiempo insert, re-reading", "fecha", fecha)
	if err := transaction.Where("fecha = ?", row.Fecha).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.TiempoKey, nil
}
