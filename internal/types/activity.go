package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityTypeExternalCourse = "external_course"
	ActivityTypeSelfAssessment = "self_assessment"
	ActivityTypePeerAssessment = "peer_assessment"
	ActivityTypeAttendance     = "attendance"
	ActivityTypeObservation    = "observation"

	ActivityStatusActive  = "active"
	ActivityStatusRemoved = "removed"
)

type Activity struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PathwayID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"pathway_id"`
	Pathway      *Pathway       `gorm:"constraint:OnDelete:CASCADE;foreignKey:PathwayID;references:ID" json:"pathway,omitempty"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	ActivityType string         `gorm:"column:activity_type;not null;index" json:"activity_type"`
	Weight       float64        `gorm:"column:weight;not null;default:1" json:"weight"`
	OrderingHint int            `gorm:"column:ordering_hint;not null;default:0" json:"ordering_hint"`
	Status       string         `gorm:"column:status;not null;default:'active'" json:"status"`
	ExternalRef  string         `gorm:"column:external_ref" json:"external_ref,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Activity) TableName() string { return "activity" }

// EffectiveWeight normalizes the declared weight for aggregation. Catalog
// editors can leave weight unset or zero it out; both count as 1.
func (a *Activity) EffectiveWeight() float64 {
	if a == nil || a.Weight <= 0 {
		return 1.0
	}
	return a.Weight
}
