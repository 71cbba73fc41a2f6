package types

import (
	"time"
)

type DimDocente struct {
	DocenteKey uint      `gorm:"column:docente_key;primaryKey;autoIncrement" json:"docente_key"`
	DocenteID  int64     `gorm:"column:docente_id;not null;uniqueIndex:idx_dim_docente_id" json:"docente_id"`
	Nombre     string    `gorm:"column:nombre;not null" json:"nombre"`
	Email      string    `gorm:"column:email" json:"email"`
	FechaCarga time.Time `gorm:"column:fecha_carga;not null;default:now()" json:"fecha_carga"`
}

func (DimDocente) TableName() string { return "dim_docente" }
