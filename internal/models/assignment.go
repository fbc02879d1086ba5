package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the calendar-day key derived from an interval's start
const DateLayout = "2006-01-02"

// AssignmentStatus represents the status of an assignment
type AssignmentStatus string

const (
	AssignmentStatusScheduled AssignmentStatus = "SCHEDULED"
)

// Assignment reserves one box for one doctor over a time window.
// For a given box, and independently for a given doctor, assignment
// windows never overlap.
type Assignment struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BoxID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"box_id"`
	DoctorID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"doctor_id"`
	SpecialtyID uuid.UUID        `gorm:"type:uuid" json:"specialty_id"`
	Start       time.Time        `gorm:"column:start_time;not null" json:"start"`
	End         time.Time        `gorm:"column:end_time;not null" json:"end"`
	Date        string           `gorm:"type:varchar(10);not null;index" json:"date"`
	Status      AssignmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Assignment) TableName() string {
	return "assignments"
}

// BeforeCreate hook
func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AssignmentRequest represents a request to create an assignment
type AssignmentRequest struct {
	BoxID       uuid.UUID `json:"box_id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	SpecialtyID uuid.UUID `json:"specialty_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// AssignmentPatch represents a partial update; nil fields keep stored values
type AssignmentPatch struct {
	BoxID       *uuid.UUID `json:"box_id"`
	DoctorID    *uuid.UUID `json:"doctor_id"`
	SpecialtyID *uuid.UUID `json:"specialty_id"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
}

// AssignmentFilter selects which secondary index a list query uses
type AssignmentFilter struct {
	BoxID    *uuid.UUID
	DoctorID *uuid.UUID
	Date     string
}
