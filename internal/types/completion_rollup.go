package types

import (
	"time"

	"github.com/google/uuid"
)

// CompletionRollup is the cached weighted completion percentage for an
// enrollment's assigned pathway. One row per enrollment, upserted on every
// recompute. It may lag the latest ActivityState writes until the next
// recompute signal lands; readers accept that.
type CompletionRollup struct {
	ID                       uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EnrollmentID             uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"enrollment_id"`
	Enrollment               *Enrollment `gorm:"constraint:OnDelete:CASCADE;foreignKey:EnrollmentID;references:ID" json:"enrollment,omitempty"`
	PathwayCompletionPercent float64     `gorm:"column:pathway_completion_percent;not null;default:0" json:"pathway_completion_percent"`
	TrackCompletionPercent   float64     `gorm:"column:track_completion_percent;not null;default:0" json:"track_completion_percent"`
	LastComputedAt           time.Time   `gorm:"column:last_computed_at;not null;default:now()" json:"last_computed_at"`
	CreatedAt                time.Time   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt                time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (CompletionRollup) TableName() string { return "completion_rollup" }
