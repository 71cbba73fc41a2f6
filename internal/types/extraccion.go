package types

import (
	"time"
)

// Denormalized rows produced by the incremental extraction queries. Each row
// carries the descriptive attributes current at extraction time (not
// historized), so the transformer can resolve every dimension without going
// back to the operational store.

type AsistenciaExtraida struct {
	AsistenciaID     int64     `gorm:"column:asistencia_id" json:"asistencia_id"`
	EstudianteID     int64     `gorm:"column:estudiante_id" json:"estudiante_id"`
	EstudianteNombre string    `gorm:"column:estudiante_nombre" json:"estudiante_nombre"`
	EstudianteEmail  string    `gorm:"column:estudiante_email" json:"estudiante_email"`
	CursoID          int64     `gorm:"column:curso_id" json:"curso_id"`
	CursoNombre      string    `gorm:"column:curso_nombre" json:"curso_nombre"`
	CursoCodigo      string    `gorm:"column:curso_codigo" json:"curso_codigo"`
	DocenteID        int64     `gorm:"column:docente_id" json:"docente_id"`
	DocenteNombre    string    `gorm:"column:docente_nombre" json:"docente_nombre"`
	DocenteEmail     string    `gorm:"column:docente_email" json:"docente_email"`
	GradoID          *int64    `gorm:"column:grado_id" json:"grado_id,omitempty"`
	GradoNombre      string    `gorm:"column:grado_nombre" json:"grado_nombre"`
	SeccionID        *int64    `gorm:"column:seccion_id" json:"seccion_id,omitempty"`
	SeccionNombre    string    `gorm:"column:seccion_nombre" json:"seccion_nombre"`
	AnioAcademico    int       `gorm:"column:anio_academico" json:"anio_academico"`
	Fecha            time.Time `gorm:"column:fecha" json:"fecha"`
	Estado           string    `gorm:"column:estado" json:"estado"`
}

type NotaExtraida struct {
	NotaID           int64   `gorm:"column:nota_id" json:"nota_id"`
	EstudianteID     int64   `gorm:"column:estudiante_id" json:"estudiante_id"`
	EstudianteNombre string  `gorm:"column:estudiante_nombre" json:"estudiante_nombre"`
	EstudianteEmail  string  `gorm:"column:estudiante_email" json:"estudiante_email"`
	CursoID          int64   `gorm:"column:curso_id" json:"curso_id"`
	CursoNombre      string  `gorm:"column:curso_nombre" json:"curso_nombre"`
	CursoCodigo      string  `gorm:"column:curso_codigo" json:"curso_codigo"`
	DocenteID        int64   `gorm:"column:docente_id" json:"docente_id"`
	DocenteNombre    string  `gorm:"column:docente_nombre" json:"docente_nombre"`
	DocenteEmail     string  `gorm:"column:docente_email" json:"docente_email"`
	GradoID          *int64  `gorm:"column:grado_id" json:"grado_id,omitempty"`
	GradoNombre      string  `gorm:"column:grado_nombre" json:"grado_nombre"`
	SeccionID        *int64  `gorm:"column:seccion_id" json:"seccion_id,omitempty"`
	SeccionNombre    string  `gorm:"column:seccion_nombre" json:"seccion_nombre"`
	AnioAcademico    int     `gorm:"column:anio_academico" json:"anio_academico"`
	Unidad           int     `gorm:"column:unidad" json:"unidad"`
	Calificacion     float64 `gorm:"column:calificacion" json:"calificacion"`
}

// Fact-shaped records emitted by the transformer, ready for the loader.

type FactAsistencia struct {
	EstudianteKey uint
	CursoKey      uint
	DocenteKey    uint
	TiempoKey     uint
	GradoKey      *uint
	SeccionKey    *uint
	AnioAcademico int
	Estado        string
}

type FactNota struct {
	EstudianteKey uint
	CursoKey      uint
	DocenteKey    uint
	TiempoKey     uint
	GradoKey      *uint
	SeccionKey    *uint
	AnioAcademico int
	Unidad        int
	Calificacion  float64
}
