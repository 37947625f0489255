package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DripTypeFixedDate            = "fixed_date"
	DripTypeAfterCompletionDelay = "after_completion_delay"
)

// DripRule is a time-based release gate on an activity. fixed_date rules
// carry ReleaseAt; after_completion_delay rules carry BaseActivityID and
// DelayDays, measured from the base activity's completion.
type DripRule struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ActivityID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"activity_id"`
	Activity       *Activity      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ActivityID;references:ID" json:"activity,omitempty"`
	DripType       string         `gorm:"column:drip_type;not null" json:"drip_type"`
	ReleaseAt      *time.Time     `gorm:"column:release_at" json:"release_at,omitempty"`
	BaseActivityID *uuid.UUID     `gorm:"type:uuid;index" json:"base_activity_id,omitempty"`
	BaseActivity   *Activity      `gorm:"constraint:OnDelete:CASCADE;foreignKey:BaseActivityID;references:ID" json:"base_activity,omitempty"`
	DelayDays      int            `gorm:"column:delay_days;not null;default:0" json:"delay_days"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DripRule) TableName() string { return "drip_rule" }
