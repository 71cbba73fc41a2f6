package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	redisclient "github.com/sgacademico/etl-backend/internal/clients/redis"
	"github.com/sgacademico/etl-backend/internal/db"
	"github.com/sgacademico/etl-backend/internal/handlers"
	"github.com/sgacademico/etl-backend/internal/jobs"
	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/repos"
	"github.com/sgacademico/etl-backend/internal/server"
	"github.com/sgacademico/etl-backend/internal/services"
)

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Router    *gin.Engine
	Cfg       Config
	Scheduler *jobs.Scheduler
	Bus       redisclient.InvalidationBus
	cancel    context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	// The invalidation bus is optional: without REDIS_ADDR the loader simply
	// skips publishing and the cache layer falls back to TTL expiry.
	var bus redisclient.InvalidationBus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		bus, err = redisclient.NewInvalidationBus(log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init redis invalidation bus: %w", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set, fact invalidation events disabled")
	}

	// Repos
	dimensionRepo := repos.NewDimensionRepo(theDB, log)
	factRepo := repos.NewFactRepo(theDB, log)
	controlRepo := repos.NewControlRepo(theDB, log)
	operacionalRepo := repos.NewOperacionalRepo(theDB, log)

	// Services
	watermark := services.NewWatermarkTracker(controlRepo, log)
	resolver := services.NewDimensionResolver(dimensionRepo, log)
	extractor := services.NewExtractor(operacionalRepo, log)
	transformer := services.NewTransformer(resolver, log)
	var loaderBus services.FactInvalidationBus
	if bus != nil {
		loaderBus = bus
	}
	loader := services.NewFactLoader(theDB, factRepo, loaderBus, log)
	syncService := services.NewSyncService(watermark, extractor, transformer, loader, resolver, operacionalRepo, log)

	// Jobs
	registry := jobs.NewRegistry()
	if err := registry.Register(jobs.NewSyncAsistenciasJob(syncService, cfg.ScheduleAsistencias)); err != nil {
		return nil, err
	}
	if err := registry.Register(jobs.NewSyncNotasJob(syncService, cfg.ScheduleNotas)); err != nil {
		return nil, err
	}
	if err := registry.Register(jobs.NewRefreshDimensionesJob(syncService, cfg.ScheduleDimensiones)); err != nil {
		return nil, err
	}
	scheduler := jobs.NewScheduler(registry, log,
		jobs.WithAttemptTimeout(cfg.AttemptTimeout),
		jobs.WithTerminalFailure(func(proceso, runID string, attempts int, err error) {
			log.Error("Proceso permanently failed for this firing",
				"proceso", proceso, "run_id", runID, "attempts", attempts, "error", err)
		}),
	)

	// HTTP
	etlHandler := handlers.NewETLHandler(syncService, controlRepo)
	router := server.NewRouter(server.RouterConfig{ETLHandler: etlHandler})

	return &App{
		Log:       log,
		DB:        theDB,
		Router:    router,
		Cfg:       cfg,
		Scheduler: scheduler,
		Bus:       bus,
	}, nil
}

func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	return a.Scheduler.Start(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
