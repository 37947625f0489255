package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PathwayStatusActive   = "active"
	PathwayStatusArchived = "archived"
)

type Pathway struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TrackID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"track_id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Status    string         `gorm:"column:status;not null;default:'active'" json:"status"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Pathway) TableName() string { return "pathway" }
