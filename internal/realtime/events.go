package realtime

import "github.com/google/uuid"

// StudentCreatedEvent announces that a student profile finished intake and
// is ready for prediction. UserID is uuid.Nil for anonymous sessions.
type StudentCreatedEvent struct {
	StudentID uuid.UUID `json:"student_id"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
}
