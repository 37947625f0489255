package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnrollmentRoleParticipant = "participant"
	EnrollmentRoleCoach       = "coach"
	EnrollmentRoleFacilitator = "facilitator"

	EnrollmentStatusActive    = "active"
	EnrollmentStatusWithdrawn = "withdrawn"
)

// Enrollment is a participant's membership within a track. The engine only
// reads it: the assigned pathway drives rollup aggregation, everything else
// belongs to the enrollment subsystem.
type Enrollment struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	TrackID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"track_id"`
	PathwayID *uuid.UUID     `gorm:"type:uuid;index" json:"pathway_id,omitempty"`
	Pathway   *Pathway       `gorm:"constraint:OnDelete:SET NULL;foreignKey:PathwayID;references:ID" json:"pathway,omitempty"`
	Role      string         `gorm:"column:role;not null;default:'participant'" json:"role"`
	Status    string         `gorm:"column:status;not null;default:'active'" json:"status"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Enrollment) TableName() string { return "enrollment" }
