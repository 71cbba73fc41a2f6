package types

import (
	"time"

	"gorm.io/datatypes"
)

var nombresMes = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var nombresDia = [...]string{
	"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo",
}

type DimTiempo struct {
	TiempoKey uint           `gorm:"column:tiempo_key;primaryKey;autoIncrement" json:"tiempo_key"`
	Fecha     datatypes.Date `gorm:"column:fecha;not null;uniqueIndex:idx_dim_tiempo_fecha" json:"fecha"`
	Dia       int            `gorm:"column:dia;not null" json:"dia"`
	Mes       int            `gorm:"column:mes;not null" json:"mes"`
	Anio      int            `gorm:"column:anio;not null" json:"anio"`
	Trimestre int            `gorm:"column:trimestre;not null" json:"trimestre"`
	Semestre  int            `gorm:"column:semestre;not null" json:"semestre"`
	DiaSemana int            `gorm:"column:dia_semana;not null" json:"dia_semana"`
	NombreMes string         `gorm:"column:nombre_mes;not null" json:"nombre_mes"`
	NombreDia string         `gorm:"column:nombre_dia;not null" json:"nombre_dia"`
}

func (DimTiempo) TableName() string { return "dim_tiempo" }

// NewDimTiempo derives every calendar attribute from the date itself.
// Attributes are computed once at creation and never refreshed.
func NewDimTiempo(fecha time.Time) DimTiempo {
	fecha = time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 0, 0, 0, 0, fecha.Location())
	mes := int(fecha.Month())
	diaSemana := int(fecha.Weekday())
	if diaSemana == 0 {
		diaSemana = 7
	}
	semestre := 1
	if mes > 6 {
		semestre = 2
	}
	return DimTiempo{
		Fecha:     datatypes.Date(fecha),
		Dia:       fecha.Day(),
		Mes:       mes,
		Anio:      fecha.Year(),
		Trimestre: (mes-1)/3 + 1,
		Semestre:  semestre,
		DiaSemana: diaSemana,
		NombreMes: nombresMes[mes-1],
		NombreDia: nombresDia[diaSemana-1],
	}
}
