package jobs

import (
	"context"

	"github.com/sgacademico/etl-backend/internal/services"
	"github.com/sgacademico/etl-backend/internal/types"
)

type RefreshDimensionesJob struct {
	sync     services.SyncService
	schedule string
}

func NewRefreshDimensionesJob(sync services.SyncService, schedule string) *RefreshDimensionesJob {
	if schedule == "" {
		schedule = "@every 1h"
	}
	return &RefreshDimensionesJob{sync: sync, schedule: schedule}
}

func (j *RefreshDimensionesJob) Proceso() string  { return types.ProcesoRefreshDimensiones }
func (j *RefreshDimensionesJob) Schedule() string { return j.schedule }

func (j *RefreshDimensionesJob) Run(ctx context.Context) (int, error) {
	return j.sync.RunDimensiones(ctx)
}
