package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	CompletionStatusNotStarted = "not_started"
	CompletionStatusInProgress = "in_progress"
	CompletionStatusComplete   = "complete"
)

// ActivityState is the last known completion signal for one enrollment on one
// activity. Rows are written by the subsystems that observe real completion
// (assessment submission, coaching attendance, LMS sync) — the availability
// and rollup paths only read them.
type ActivityState struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EnrollmentID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_enrollment_activity,unique" json:"enrollment_id"`
	Enrollment        *Enrollment    `gorm:"constraint:OnDelete:CASCADE;foreignKey:EnrollmentID;references:ID" json:"enrollment,omitempty"`
	ActivityID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_enrollment_activity,unique" json:"activity_id"`
	Activity          *Activity      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ActivityID;references:ID" json:"activity,omitempty"`
	CompletionPercent int            `gorm:"column:completion_percent;not null;default:0" json:"completion_percent"`
	CompletionStatus  string         `gorm:"column:completion_status;not null;default:'not_started'" json:"completion_status"`
	CompletedAt       *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	LastComputedAt    time.Time      `gorm:"column:last_computed_at;not null;default:now()" json:"last_computed_at"`
	Metadata          datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ActivityState) TableName() string { return "activity_state" }

// IsComplete reports whether the state carries a terminal completion signal.
func (s *ActivityState) IsComplete() bool {
	return s != nil && s.CompletionStatus == CompletionStatusComplete
}
