package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	OverrideTypeExempt       = "exempt"
	OverrideTypeManualUnlock = "manual_unlock"
	OverrideTypeGraceUnlock  = "grace_unlock"
)

// Override is an administrator-applied exception to normal gating. Rows are
// append-only; only the most recently created row per (enrollment, activity)
// pair is in effect, earlier rows are kept as history.
//
// An exempt override affects gating only. It never synthesizes an
// ActivityState row, so rollup aggregation does not count it as completion.
type Override struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EnrollmentID uuid.UUID      `gorm:"type:uuid;not null;index:idx_override_pair" json:"enrollment_id"`
	Enrollment   *Enrollment    `gorm:"constraint:OnDelete:CASCADE;foreignKey:EnrollmentID;references:ID" json:"enrollment,omitempty"`
	ActivityID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_override_pair" json:"activity_id"`
	Activity     *Activity      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ActivityID;references:ID" json:"activity,omitempty"`
	OverrideType string         `gorm:"column:override_type;not null" json:"override_type"`
	AppliedBy    *uuid.UUID     `gorm:"type:uuid" json:"applied_by,omitempty"`
	Reason       string         `gorm:"column:reason" json:"reason,omitempty"`
	Metadata     datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Override) TableName() string { return "override" }
