package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BoxStatus represents the operational status of a box
type BoxStatus string

const (
	BoxStatusActive      BoxStatus = "active"
	BoxStatusDisabled    BoxStatus = "disabled"
	BoxStatusMaintenance BoxStatus = "maintenance"
)

// Box represents a physical bookable room
type Box struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Hallway   string    `gorm:"type:varchar(255)" json:"hallway"`
	Status    BoxStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Equipment []string  `gorm:"serializer:json;type:jsonb" json:"equipment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Box) TableName() string {
	return "boxes"
}

// BeforeCreate hook
func (b *Box) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BoxRequest represents a request to create or update a box
type BoxRequest struct {
	Name      string    `json:"name"`
	Hallway   string    `json:"hallway"`
	Status    BoxStatus `json:"status"`
	Equipment []string  `json:"equipment"`
}
