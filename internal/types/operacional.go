package types

import (
	"time"

	"gorm.io/datatypes"
)

// Operational (OLTP) rows. The pipeline only ever reads these tables; the
// transactional side that writes them lives outside this service.

const (
	EstadoAsistenciaPresente = "presente"
	EstadoAsistenciaTardanza = "tardanza"
	EstadoAsistenciaAusente  = "ausente"
)

const (
	RolEstudiante = "estudiante"
	RolDocente    = "docente"
)

type Usuario struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	Nombre    string    `gorm:"column:nombre" json:"nombre"`
	Email     string    `gorm:"column:email" json:"email"`
	Rol       string    `gorm:"column:rol" json:"rol"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Usuario) TableName() string { return "usuarios" }

type Curso struct {
	ID            int64     `gorm:"column:id;primaryKey" json:"id"`
	Nombre        string    `gorm:"column:nombre" json:"nombre"`
	Codigo        string    `gorm:"column:codigo" json:"codigo"`
	DocenteID     int64     `gorm:"column:docente_id" json:"docente_id"`
	GradoID       *int64    `gorm:"column:grado_id" json:"grado_id,omitempty"`
	SeccionID     *int64    `gorm:"column:seccion_id" json:"seccion_id,omitempty"`
	AnioAcademico int       `gorm:"column:anio_academico" json:"anio_academico"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Curso) TableName() string { return "cursos" }

type Grado struct {
	ID     int64  `gorm:"column:id;primaryKey" json:"id"`
	Nombre string `gorm:"column:nombre" json:"nombre"`
}

func (Grado) TableName() string { return "grados" }

type Seccion struct {
	ID     int64  `gorm:"column:id;primaryKey" json:"id"`
	Nombre string `gorm:"column:nombre" json:"nombre"`
}

func (Seccion) TableName() string { return "secciones" }

type Asistencia struct {
	ID           int64          `gorm:"column:id;primaryKey" json:"id"`
	EstudianteID int64          `gorm:"column:estudiante_id" json:"estudiante_id"`
	CursoID      int64          `gorm:"column:curso_id" json:"curso_id"`
	Fecha        datatypes.Date `gorm:"column:fecha" json:"fecha"`
	Estado       string         `gorm:"column:estado" json:"estado"`
	UpdatedAt    time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Asistencia) TableName() string { return "asistencias" }

type NotaDetalle struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	EstudianteID int64     `gorm:"column:estudiante_id" json:"estudiante_id"`
	CursoID      int64     `gorm:"column:curso_id" json:"curso_id"`
	Unidad       int       `gorm:"column:unidad" json:"unidad"`
	Calificacion float64   `gorm:"column:calificacion" json:"calificacion"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (NotaDetalle) TableName() string { return "notas_detalle" }

// CursoDenormalizado is the joined course row used by the hourly dimension
// refresh: a course with its teacher, grade and section names resolved.
type CursoDenormalizado struct {
	ID            int64  `gorm:"column:id" json:"id"`
	Nombre        string `gorm:"column:nombre" json:"nombre"`
	Codigo        string `gorm:"column:codigo" json:"codigo"`
	DocenteNombre string `gorm:"column:docente_nombre" json:"docente_nombre"`
	GradoID       *int64 `gorm:"column:grado_id" json:"grado_id,omitempty"`
	GradoNombre   string `gorm:"column:grado_nombre" json:"grado_nombre"`
	SeccionID     *int64 `gorm:"column:seccion_id" json:"seccion_id,omitempty"`
	SeccionNombre string `gorm:"column:seccion_nombre" json:"seccion_nombre"`
}
