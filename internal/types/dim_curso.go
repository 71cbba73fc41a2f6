package types

import (
	"time"
)

type DimCurso struct {
	CursoKey      uint      `gorm:"column:curso_key;primaryKey;autoIncrement" json:"curso_key"`
	CursoID       int64     `gorm:"column:curso_id;not null;uniqueIndex:idx_dim_curso_id" json:"curso_id"`
	Nombre        string    `gorm:"column:nombre;not null" json:"nombre"`
	Codigo        string    `gorm:"column:codigo" json:"codigo"`
	DocenteNombre string    `gorm:"column:docente_nombre" json:"docente_nombre"`
	GradoNombre   string    `gorm:"column:grado_nombre" json:"grado_nombre"`
	SeccionNombre string    `gorm:"column:seccion_nombre" json:"seccion_nombre"`
	FechaCarga    time.Time `gorm:"column:fecha_carga;not null;default:now()" json:"fecha_carga"`
}

func (DimCurso) TableName() string { return "dim_curso" }
