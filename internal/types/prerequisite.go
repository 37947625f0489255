package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PrereqTypeAllOf = "all_of"
	PrereqTypeAnyOf = "any_of"
	PrereqTypeNOfM  = "n_of_m"
)

// PrerequisiteGroup is one logical condition over other activities'
// completion. An activity is prerequisite-gated when it has at least one
// group; every group must be satisfied independently.
type PrerequisiteGroup struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ActivityID uuid.UUID           `gorm:"type:uuid;not null;index" json:"activity_id"`
	Activity   *Activity           `gorm:"constraint:OnDelete:CASCADE;foreignKey:ActivityID;references:ID" json:"activity,omitempty"`
	PrereqType string              `gorm:"column:prereq_type;not null;default:'all_of'" json:"prereq_type"`
	NRequired  int                 `gorm:"column:n_required;not null;default:0" json:"n_required"`
	Items      []PrerequisiteItem  `gorm:"foreignKey:GroupID;references:ID" json:"items,omitempty"`
	CreatedAt  time.Time           `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time           `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt      `gorm:"index" json:"deleted_at,omitempty"`
}

func (PrerequisiteGroup) TableName() string { return "prerequisite_group" }

type PrerequisiteItem struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GroupID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"group_id"`
	RequiredActivityID uuid.UUID      `gorm:"type:uuid;not null;index" json:"required_activity_id"`
	RequiredActivity   *Activity      `gorm:"constraint:OnDelete:CASCADE;foreignKey:RequiredActivityID;references:ID" json:"required_activity,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PrerequisiteItem) TableName() string { return "prerequisite_item" }
