package types

import (
	"time"
)

type DimEstudiante struct {
	EstudianteKey uint      `gorm:"column:estudiante_key;primaryKey;autoIncrement" json:"estudiante_key"`
	EstudianteID  int64     `gorm:"column:estudiante_id;not null;uniqueIndex:idx_dim_estudiante_id" json:"estudiante_id"`
	Nombre        string    `gorm:"column:nombre;not null" json:"nombre"`
	Email         string    `gorm:"column:email" json:"email"`
	FechaCarga    time.Time `gorm:"column:fecha_carga;not null;default:now()" json:"fecha_carga"`
}

func (DimEstudiante) TableName() string { return "dim_estudiante" }
