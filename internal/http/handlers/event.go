package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/admitbridge-backend/internal/http/response"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
	"github.com/yungbote/admitbridge-backend/internal/realtime"
	"github.com/yungbote/admitbridge-backend/internal/realtime/bus"
)

// EventHandler accepts internal student-created notifications from the
// intake service and forwards them onto the event bus.
type EventHandler struct {
	bus bus.Bus
	log *logger.Logger
}

func NewEventHandler(b bus.Bus, baseLog *logger.Logger) *EventHandler {
	return &EventHandler{
		bus: b,
		log: baseLog.With("handler", "EventHandler"),
	}
}

type studentCreatedRequest struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
	UserID    uuid.UUID `json:"user_id"`
}

// StudentCreated publishes the trigger and returns 202 immediately; the
// prediction run itself happens asynchronously on the subscriber side.
func (h *EventHandler) StudentCreated(c *gin.Context) {
	var req studentCreatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("malformed student-created event", "error", err.Error())
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.StudentID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("student_id is required"))
		return
	}

	evt := realtime.StudentCreatedEvent{StudentID: req.StudentID, UserID: req.UserID}
	if err := h.bus.Publish(c.Request.Context(), evt); err != nil {
		h.log.Error("failed to publish student-created event",
			"student_id", req.StudentID,
			"error", err.Error(),
		)
		response.RespondError(c, http.StatusInternalServerError, "publish_failed", err)
		return
	}
	response.RespondAccepted(c, gin.H{"status": "accepted", "student_id": req.StudentID})
}
