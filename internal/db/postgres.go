package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/types"
	"github.com/sgacademico/etl-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "sga_analitica", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		// Duplicate-key conflicts must surface as gorm.ErrDuplicatedKey so the
		// dimension resolver can re-read after losing a concurrent insert race.
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

// AutoMigrateAll creates the analytical star schema plus the run-control log.
// The operational tables are owned by the transactional system and are only
// migrated here when ETL_MIGRATE_OPERACIONAL=true (local development).
func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating analytical tables...")
	err := s.db.AutoMigrate(
		&types.DimEstudiante{},
		&types.DimCurso{},
		&types.DimDocente{},
		&types.DimTiempo{},
		&types.DimGrado{},
		&types.DimSeccion{},
		&types.FactRendimientoEstudiantil{},
		&types.ControlETL{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for analytical tables", "error", err)
		return err
	}

	if utils.GetEnv("ETL_MIGRATE_OPERACIONAL", "false", nil) == "true" {
		s.log.Info("Auto migrating operational tables (development only)...")
		if err := s.db.AutoMigrate(
			&types.Usuario{},
			&types.Grado{},
			&types.Seccion{},
			&types.Curso{},
			&types.Asistencia{},
			&types.NotaDetalle{},
		); err != nil {
			s.log.Error("Auto migration failed for operational tables", "error", err)
			return err
		}
	}

	s.log.Info("Configuring foreign key relationships for fact table...")
	for name, stmt := range map[string]string{
		"fk_fact_estudiante_key": `
			ALTER TABLE "fact_rendimiento_estudiantil"
			ADD CONSTRAINT "fk_fact_estudiante_key"
			FOREIGN KEY ("estudiante_key")
			REFERENCES "dim_estudiante"("estudiante_key")
		`,
		"fk_fact_curso_key": `
			ALTER TABLE "fact_rendimiento_estudiantil"
			ADD CONSTRAINT "fk_fact_curso_key"
			FOREIGN KEY ("curso_key")
			REFERENCES "dim_curso"("curso_key")
		`,
		"fk_fact_docente_key": `
			ALTER TABLE "fact_rendimiento_estudiantil"
			ADD CONSTRAINT "fk_fact_docente_key"
			FOREIGN KEY ("docente_key")
			REFERENCES "dim_docente"("docente_key")
		`,
		"fk_fact_tiempo_key": `
			ALTER TABLE "fact_rendimiento_estudiantil"
			ADD CONSTRAINT "fk_fact_tiempo_key"
			FOREIGN KEY ("tiempo_key")
			REFERENCES "dim_tiempo"("tiempo_key")
		`,
		"fk_fact_grado_key": `
			ALTER TABLE "fact_rendimiento_estudiantil"
			ADD CONSTRAINT "fk_fact_grado_key"
			FOREIGN KEY ("grado_key")
			REFERENCES "dim_grado"("grado_key")
		`,
		"fk_fact_seccion_key": `
			ALTER TABLE "fact_rendimiento_estudiantil"
			ADD CONSTRAINT "fk_fact_seccion_key"
			FOREIGN KEY ("seccion_key")
			REFERENCES "dim_seccion"("seccion_key")
		`,
	} {
		var exists bool
		if err := s.db.Raw(
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, name,
		).Scan(&exists).Error; err != nil {
			return fmt.Errorf("Failed to check constraint %s: %w", name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("Failed to add %s: %w", name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
