package types

import (
	"time"
)

// FactRendimientoEstudiantil is the central fact table of the star schema.
// One row per (estudiante, curso, tiempo) combination; counters are additive
// and the derived columns are recomputed from the stored row after every
// mutation. Rows are never deleted by the pipeline.
type FactRendimientoEstudiantil struct {
	FactKey       uint  `gorm:"column:fact_key;primaryKey;autoIncrement" json:"fact_key"`
	EstudianteKey uint  `gorm:"column:estudiante_key;not null;uniqueIndex:idx_fact_est_curso_tiempo" json:"estudiante_key"`
	CursoKey      uint  `gorm:"column:curso_key;not null;uniqueIndex:idx_fact_est_curso_tiempo;index:idx_fact_curso_tiempo" json:"curso_key"`
	TiempoKey     uint  `gorm:"column:tiempo_key;not null;uniqueIndex:idx_fact_est_curso_tiempo;index:idx_fact_curso_tiempo" json:"tiempo_key"`
	DocenteKey    uint  `gorm:"column:docente_key;not null;index" json:"docente_key"`
	GradoKey      *uint `gorm:"column:grado_key" json:"grado_key,omitempty"`
	SeccionKey    *uint `gorm:"column:seccion_key" json:"seccion_key,omitempty"`
	AnioAcademico int   `gorm:"column:anio_academico;not null" json:"anio_academico"`

	TotalClases    int `gorm:"column:total_clases;not null;default:0" json:"total_clases"`
	TotalPresentes int `gorm:"column:total_presentes;not null;default:0" json:"total_presentes"`
	TotalFaltas    int `gorm:"column:total_faltas;not null;default:0" json:"total_faltas"`
	TotalTardanzas int `gorm:"column:total_tardanzas;not null;default:0" json:"total_tardanzas"`

	PorcentajeAsistencia float64 `gorm:"column:porcentaje_asistencia;not null;default:0" json:"porcentaje_asistencia"`

	NotaUnidad1   *float64 `gorm:"column:nota_unidad_1" json:"nota_unidad_1,omitempty"`
	NotaUnidad2   *float64 `gorm:"column:nota_unidad_2" json:"nota_unidad_2,omitempty"`
	NotaUnidad3   *float64 `gorm:"column:nota_unidad_3" json:"nota_unidad_3,omitempty"`
	NotaUnidad4   *float64 `gorm:"column:nota_unidad_4" json:"nota_unidad_4,omitempty"`
	PromedioNotas float64  `gorm:"column:promedio_notas;not null;default:0" json:"promedio_notas"`

	FechaCarga         time.Time `gorm:"column:fecha_carga;not null;default:now()" json:"fecha_carga"`
	FechaActualizacion time.Time `gorm:"column:fecha_actualizacion;not null;default:now()" json:"fecha_actualizacion"`
}

func (FactRendimientoEstudiantil) TableName() string { return "fact_rendimiento_estudiantil" }
