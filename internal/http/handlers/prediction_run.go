package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/admitbridge-backend/internal/data/repos/runs"
	"github.com/yungbote/admitbridge-backend/internal/http/response"
	"github.com/yungbote/admitbridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

type PredictionRunHandler struct {
	runs runs.PredictionRunRepo
	log  *logger.Logger
}

func NewPredictionRunHandler(runRepo runs.PredictionRunRepo, baseLog *logger.Logger) *PredictionRunHandler {
	return &PredictionRunHandler{
		runs: runRepo,
		log:  baseLog.With("handler", "PredictionRunHandler"),
	}
}

// ListByStudent returns a student's runs, newest first.
func (h *PredictionRunHandler) ListByStudent(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}
	out, err := h.runs.ListByStudent(dbctx.Context{Ctx: c.Request.Context()}, studentID)
	if err != nil {
		h.log.Error("list prediction runs failed", "student_id", studentID, "error", err.Error())
		response.RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"runs": out})
}

// Get returns one run by id.
func (h *PredictionRunHandler) Get(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	run, err := h.runs.GetByID(dbctx.Context{Ctx: c.Request.Context()}, runID)
	if err != nil {
		h.log.Error("get prediction run failed", "run_id", runID, "error", err.Error())
		response.RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if run == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("run %s not found", runID))
		return
	}
	response.RespondOK(c, run)
}
