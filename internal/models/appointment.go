package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// SlotDuration is the fixed length of every appointment
const SlotDuration = 30 * time.Minute

// Appointment is a 30-minute patient booking nested inside one assignment.
// BoxID, DoctorID and SpecialtyID are copied from the parent assignment at
// creation and never change afterwards.
type Appointment struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	AssignmentID uuid.UUID         `gorm:"type:uuid;not null;index" json:"assignment_id"`
	BoxID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"box_id"`
	DoctorID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	SpecialtyID  uuid.UUID         `gorm:"type:uuid" json:"specialty_id"`
	Start        time.Time         `gorm:"column:start_time;not null" json:"start"`
	End          time.Time         `gorm:"column:end_time;not null" json:"end"`
	Date         string            `gorm:"type:varchar(10);not null;index" json:"date"`
	PatientName  string            `gorm:"type:varchar(255);not null" json:"patient_name"`
	PatientPhone string            `gorm:"type:varchar(50)" json:"patient_phone"`
	PatientEmail string            `gorm:"type:varchar(255)" json:"patient_email"`
	Reason       string            `gorm:"type:text" json:"reason"`
	Notes        string            `gorm:"type:text" json:"notes"`
	Status       AppointmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Appointment) TableName() string {
	return "appointments"
}

// BeforeCreate hook
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AppointmentRequest represents a request to create an appointment
type AppointmentRequest struct {
	ID           uuid.UUID `json:"id"`
	AssignmentID uuid.UUID `json:"assignment_id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	PatientName  string    `json:"patient_name"`
	PatientPhone string    `json:"patient_phone"`
	PatientEmail string    `json:"patient_email"`
	Reason       string    `json:"reason"`
	Notes        string    `json:"notes"`
}

// AppointmentPatch represents a partial update; nil fields keep stored
// values. AssignmentID, BoxID, DoctorID and SpecialtyID are deliberately
// absent: they are frozen at creation.
type AppointmentPatch struct {
	Start        *time.Time         `json:"start"`
	End          *time.Time         `json:"end"`
	PatientName  *string            `json:"patient_name"`
	PatientPhone *string            `json:"patient_phone"`
	PatientEmail *string            `json:"patient_email"`
	Reason       *string            `json:"reason"`
	Notes        *string            `json:"notes"`
	Status       *AppointmentStatus `json:"status"`
}

// AppointmentFilter selects which secondary index a list query uses
type AppointmentFilter struct {
	AssignmentID *uuid.UUID
	BoxID        *uuid.UUID
	DoctorID     *uuid.UUID
	Date         string
	Status       AppointmentStatus
}
