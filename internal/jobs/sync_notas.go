package jobs

import (
	"context"

	"github.com/sgacademico/etl-backend/internal/services"
	"github.com/sgacademico/etl-backend/internal/types"
)

type SyncNotasJob struct {
	sync     services.SyncService
	schedule string
}

func NewSyncNotasJob(sync services.SyncService, schedule string) *SyncNotasJob {
	if schedule == "" {
		schedule = "@every 5m"
	}
	return &SyncNotasJob{sync: sync, schedule: schedule}
}

func (j *SyncNotasJob) Proceso() string  { return types.ProcesoSyncNotas }
func (j *SyncNotasJob) Schedule() string { return j.schedule }

func (j *SyncNotasJob) Run(ctx context.Context) (int, error) {
	return j.sync.RunNotas(ctx)
}
