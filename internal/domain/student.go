package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Student struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FullName  string         `gorm:"column:full_name;not null" json:"full_name"`
	Province  string         `gorm:"column:province" json:"province,omitempty"`
	Profile   datatypes.JSON `gorm:"column:profile;type:jsonb" json:"profile"`
	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Student) TableName() string { return "student" }
