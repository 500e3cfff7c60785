package domain

import (
	"time"

	"github.com/google/uuid"
)

// Admission is read-only catalogue reference data owned by a separate
// ingestion process.
type Admission struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code           string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	UniversityCode string    `gorm:"column:university_code;index" json:"university_code"`
	UniversityName string    `gorm:"column:university_name" json:"university_name"`
	MajorCode      string    `gorm:"column:major_code;index" json:"major_code"`
	MajorName      string    `gorm:"column:major_name" json:"major_name"`
	Method         string    `gorm:"column:method" json:"method"`
	Tuition        int64     `gorm:"column:tuition" json:"tuition"`
	Province       string    `gorm:"column:province" json:"province"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Admission) TableName() string { return "admission" }

// StudentAdmission links a student to a predicted admission. The composite
// unique index is what makes reconciliation idempotent under concurrency.
type StudentAdmission struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_admission;index" json:"student_id"`
	AdmissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_admission" json:"admission_id"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (StudentAdmission) TableName() string { return "student_admission" }
