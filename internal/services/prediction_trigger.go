package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/admitbridge-backend/internal/domain"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
	"github.com/yungbote/admitbridge-backend/internal/realtime"
	"github.com/yungbote/admitbridge-backend/internal/realtime/bus"
)

// RunStarter is the orchestration entry point behind the trigger service.
type RunStarter interface {
	RunPrediction(ctx context.Context, studentID, userID uuid.UUID) (*domain.PredictionRun, error)
}

// PredictionTrigger consumes student-created events off the bus and starts
// one prediction run per event. Runs execute on their own goroutines so a
// slow prediction never blocks the subscription loop.
type PredictionTrigger struct {
	bus     bus.Bus
	starter RunStarter
	log     *logger.Logger
}

func NewPredictionTrigger(b bus.Bus, starter RunStarter, baseLog *logger.Logger) *PredictionTrigger {
	return &PredictionTrigger{
		bus:     b,
		starter: starter,
		log:     baseLog.With("service", "PredictionTrigger"),
	}
}

// Start subscribes to the event channel. It returns once the subscription
// is established; events are handled until ctx is cancelled.
func (t *PredictionTrigger) Start(ctx context.Context) error {
	return t.bus.StartForwarder(ctx, func(evt realtime.StudentCreatedEvent) {
		go t.handle(ctx, evt)
	})
}

func (t *PredictionTrigger) handle(ctx context.Context, evt realtime.StudentCreatedEvent) {
	// A panicking run must not take the subscriber down with it.
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("prediction run panic",
				"student_id", evt.StudentID,
				"panic", r,
			)
		}
	}()

	run, err := t.starter.RunPrediction(ctx, evt.StudentID, evt.UserID)
	if err != nil {
		t.log.Error("prediction run failed to start",
			"student_id", evt.StudentID,
			"error", err.Error(),
		)
		return
	}
	t.log.Info("prediction run triggered",
		"run_id", run.ID,
		"student_id", evt.StudentID,
		"status", run.Status,
	)
}
