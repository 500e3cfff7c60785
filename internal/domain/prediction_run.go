package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RunStatusProcessing = "PROCESSING"
	RunStatusCompleted  = "COMPLETED"
	RunStatusPartial    = "PARTIAL"
	RunStatusFailed     = "FAILED"
)

// PredictionRun is created in PROCESSING before any dispatch happens and
// finalized exactly once. Re-triggers for the same student append new rows.
type PredictionRun struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;index" json:"user_id"` // uuid.Nil for anonymous triggers
	Status    string         `gorm:"column:status;not null;index" json:"status"`
	L1Results datatypes.JSON `gorm:"column:l1_results;type:jsonb" json:"l1_results"`
	L2Results datatypes.JSON `gorm:"column:l2_results;type:jsonb" json:"l2_results"`
	Error     string         `gorm:"column:error" json:"error,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (PredictionRun) TableName() string { return "prediction_run" }
