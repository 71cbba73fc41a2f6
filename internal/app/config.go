package app

import (
	"time"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/utils"
)

type Config struct {
	HTTPAddr string

	ScheduleAsistencias string
	ScheduleNotas       string
	ScheduleDimensiones string

	AttemptTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		HTTPAddr:            utils.GetEnv("HTTP_ADDR", ":8080", log),
		ScheduleAsistencias: utils.GetEnv("ETL_SCHEDULE_ASISTENCIAS", "@every 5m", log),
		ScheduleNotas:       utils.GetEnv("ETL_SCHEDULE_NOTAS", "@every 5m", log),
		ScheduleDimensiones: utils.GetEnv("ETL_SCHEDULE_DIMENSIONES", "@every 1h", log),
		AttemptTimeout:      utils.GetEnvAsDuration("ETL_ATTEMPT_TIMEOUT", 10*time.Minute, log),
	}
}
