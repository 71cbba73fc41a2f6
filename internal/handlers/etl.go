package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sgacademico/etl-backend/internal/repos"
	"github.com/sgacademico/etl-backend/internal/services"
	"github.com/sgacademico/etl-backend/internal/types"
)

// ETLHandler is the small operations surface of the pipeline: run history
// and manual re-triggering. Reporting users never touch this; it exists for
// operators.
type ETLHandler struct {
	sync    services.SyncService
	control repos.ControlRepo
}

func NewETLHandler(sync services.SyncService, control repos.ControlRepo) *ETLHandler {
	return &ETLHandler{sync: sync, control: control}
}

// GET /etl/runs?proceso=sync_asistencias&limit=20
func (h *ETLHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	rows, err := h.control.ListRecent(c.Request.Context(), nil, c.Query("proceso"), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "control_query_failed", err)
		return
	}
	RespondOK(c, gin.H{"runs": rows})
}

// POST /etl/run/:proceso
//
// Manual re-trigger: one attempt, no retry ladder. The outcome row is
// written exactly as a scheduled run would write it.
func (h *ETLHandler) TriggerRun(c *gin.Context) {
	proceso := c.Param("proceso")
	switch proceso {
	case types.ProcesoSyncAsistencias, types.ProcesoSyncNotas, types.ProcesoRefreshDimensiones:
	default:
		RespondError(c, http.StatusNotFound, "unknown_proceso", fmt.Errorf("proceso desconocido: %s", proceso))
		return
	}
	registros, err := h.sync.RunProceso(c.Request.Context(), proceso)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "run_failed", err)
		return
	}
	RespondOK(c, gin.H{"proceso": proceso, "registros_procesados": registros})
}
