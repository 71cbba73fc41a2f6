package types

import (
	"time"
)

const (
	EstadoExitoso = "exitoso"
	EstadoFallido = "fallido"
)

const (
	ProcesoSyncAsistencias    = "sync_asistencias"
	ProcesoSyncNotas          = "sync_notas"
	ProcesoRefreshDimensiones = "refresh_dimensiones"
)

// ControlETL is the append-only run log. recordRun always inserts; the
// watermark query scans for the most recent exitoso row per proceso.
type ControlETL struct {
	ID                  uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Proceso             string    `gorm:"column:proceso;not null;index:idx_control_etl_proceso" json:"proceso"`
	UltimaEjecucion     time.Time `gorm:"column:ultima_ejecucion;not null" json:"ultima_ejecucion"`
	Estado              string    `gorm:"column:estado;not null" json:"estado"`
	RegistrosProcesados int       `gorm:"column:registros_procesados;not null;default:0" json:"registros_procesados"`
	Errores             *string   `gorm:"column:errores" json:"errores,omitempty"`
}

func (ControlETL) TableName() string { return "control_etl" }
