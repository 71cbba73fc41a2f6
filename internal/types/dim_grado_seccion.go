package types

import (
	"time"
)

type DimGrado struct {
	GradoKey   uint      `gorm:"column:grado_key;primaryKey;autoIncrement" json:"grado_key"`
	GradoID    int64     `gorm:"column:grado_id;not null;uniqueIndex:idx_dim_grado_id" json:"grado_id"`
	Nombre     string    `gorm:"column:nombre;not null" json:"nombre"`
	FechaCarga time.Time `gorm:"column:fecha_carga;not null;default:now()" json:"fecha_carga"`
}

func (DimGrado) TableName() string { return "dim_grado" }

type DimSeccion struct {
	SeccionKey uint      `gorm:"column:seccion_key;primaryKey;autoIncrement" json:"seccion_key"`
	SeccionID  int64     `gorm:"column:seccion_id;not null;uniqueIndex:idx_dim_seccion_id" json:"seccion_id"`
	Nombre     string    `gorm:"column:nombre;not null" json:"nombre"`
	FechaCarga time.Time `gorm:"column:fecha_carga;not null;default:now()" json:"fecha_carga"`
}

func (DimSeccion) TableName() string { return "dim_seccion" }
