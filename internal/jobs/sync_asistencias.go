package jobs

import (
	"context"

	"github.com/sgacademico/etl-backend/internal/services"
	"github.com/sgacademico/etl-backend/internal/types"
)

type SyncAsistenciasJob struct {
	sync     services.SyncService
	schedule string
}

func NewSyncAsistenciasJob(sync services.SyncService, schedule string) *SyncAsistenciasJob {
	if schedule == "" {
		schedule = "@every 5m"
	}
	return &SyncAsistenciasJob{sync: sync, schedule: schedule}
}

func (j *SyncAsistenciasJob) Proceso() string  { return types.ProcesoSyncAsistencias }
func (j *SyncAsistenciasJob) Schedule() string { return j.schedule }

func (j *SyncAsistenciasJob) Run(ctx context.Context) (int, error) {
	return j.sync.RunAsistencias(ctx)
}
