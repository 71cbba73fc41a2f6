package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/types"
)

// OperacionalRepo is the read-only view over the transactional store. The
// extraction queries join the current descriptive attributes at read time;
// nothing here ever writes to the operational tables.
type OperacionalRepo interface {
	ExtractAsistencias(ctx context.Context, since time.Time) ([]types.AsistenciaExtraida, error)
	ExtractNotas(ctx context.Context, since time.Time) ([]types.NotaExtraida, error)
	ListUsuariosPorRol(ctx context.Context, rol string) ([]types.Usuario, error)
	ListCursosDenormalizados(ctx context.Context) ([]types.CursoDenormalizado, error)
	ListGrados(ctx context.Context) ([]types.Grado, error)
	ListSecciones(ctx context.Context) ([]types.Seccion, error)
}

type operacionalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOperacionalRepo(db *gorm.DB, baseLog *logger.Logger) OperacionalRepo {
	return &operacionalRepo{
		db:  db,
		log: baseLog.With("repo", "OperacionalRepo"),
	}
}

func (r *operacionalRepo) ExtractAsistencias(ctx context.Context, since time.Time) ([]types.AsistenciaExtraida, error) {
	var rows []types.AsistenciaExtraida
	err := r.db.WithContext(ctx).
		Table("asistencias AS a").
		Select(`a.id AS asistencia_id,
			a.estudiante_id, e.nombre AS estudiante_nombre, e.email AS estudiante_email,
			a.curso_id, c.nombre AS curso_nombre, c.codigo AS curso_codigo,
			c.docente_id, d.nombre AS docente_nombre, d.email AS docente_email,
			c.grado_id, COALESCE(g.nombre, '') AS grado_nombre,
			c.seccion_id, COALESCE(s.nombre, '') AS seccion_nombre,
			c.anio_academico, a.fecha, a.estado`).
		Joins("JOIN usuarios e ON e.id = a.estudiante_id").
		Joins("JOIN cursos c ON c.id = a.curso_id").
		Joins("JOIN usuarios d ON d.id = c.docente_id").
		Joins("LEFT JOIN grados g ON g.id = c.grado_id").
		Joins("LEFT JOIN secciones s ON s.id = c.seccion_id").
		Where("a.updated_at > ?", since).
		Order("a.updated_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *operacionalRepo) ExtractNotas(ctx context.Context, since time.Time) ([]types.NotaExtraida, error) {
	var rows []types.NotaExtraida
	err := r.db.WithContext(ctx).
		Table("notas_detalle AS n").
		Select(`n.id AS nota_id,
			n.estudiante_id, e.nombre AS estudiante_nombre, e.email AS estudiante_email,
			n.curso_id, c.nombre AS curso_nombre, c.codigo AS curso_codigo,
			c.docente_id, d.nombre AS docente_nombre, d.email AS docente_email,
			c.grado_id, COALESCE(g.nombre, '') AS grado_nombre,
			c.seccion_id, COALESCE(s.nombre, '') AS seccion_nombre,
			c.anio_academico, n.unidad, n.calificacion`).
		Joins("JOIN usuarios e ON e.id = n.estudiante_id").
		Joins("JOIN cursos c ON c.id = n.curso_id").
		Joins("JOIN usuarios d ON d.id = c.docente_id").
		Joins("LEFT JOIN grados g ON g.id = c.grado_id").
		Joins("LEFT JOIN secciones s ON s.id = c.seccion_id").
		Where("n.updated_at > ?", since).
		Order("n.updated_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *operacionalRepo) ListUsuariosPorRol(ctx context.Context, rol string) ([]types.Usuario, error) {
	var rows []types.Usuario
	if err := r.db.WithContext(ctx).Where("rol = ?", rol).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *operacionalRepo) ListCursosDenormalizados(ctx context.Context) ([]types.CursoDenormalizado, error) {
	var rows []types.CursoDenormalizado
	err := r.db.WithContext(ctx).
		Table("cursos AS c").
		Select(`c.id, c.nombre, c.codigo,
			COALESCE(d.nombre, '') AS docente_nombre,
			c.grado_id, COALESCE(g.nombre, '') AS grado_nombre,
			c.seccion_id, COALESCE(s.nombre, '') AS seccion_nombre`).
		Joins("LEFT JOIN usuarios d ON d.id = c.docente_id").
		Joins("LEFT JOIN grados g ON g.id = c.grado_id").
		Joins("LEFT JOIN secciones s ON s.id = c.seccion_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *operacionalRepo) ListGrados(ctx context.Context) ([]types.Grado, error) {
	var rows []types.Grado
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *operacionalRepo) ListSecciones(ctx context.Context) ([]types.Seccion, error) {
	var rows []types.Seccion
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
