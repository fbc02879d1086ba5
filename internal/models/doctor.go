package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorStatus represents a doctor's duty status
type DoctorStatus string

const (
	DoctorStatusOnDuty     DoctorStatus = "on-duty"
	DoctorStatusOffDuty    DoctorStatus = "off-duty"
	DoctorStatusOnVacation DoctorStatus = "on-vacation"
)

// Doctor represents a staff member who can be assigned to boxes
type Doctor struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Email       string       `gorm:"type:varchar(255)" json:"email"`
	Phone       string       `gorm:"type:varchar(50)" json:"phone"`
	SpecialtyID uuid.UUID    `gorm:"type:uuid;index" json:"specialty_id"`
	Status      DoctorStatus `gorm:"type:varchar(20);not null;default:'on-duty'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Doctor) TableName() string {
	return "doctors"
}

// BeforeCreate hook
func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DoctorRequest represents a request to create or update a doctor
type DoctorRequest struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	SpecialtyID uuid.UUID    `json:"specialty_id"`
	Status      DoctorStatus `json:"status"`
}
