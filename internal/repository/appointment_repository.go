package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/clinicops/box-scheduler/internal/models"
)

// AppointmentStore is the storage surface the appointment booking engine
// works against
type AppointmentStore interface {
	Create(ctx context.Context, a *models.Appointment) error
	Save(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error)
	ListByAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) ([]models.Appointment, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.AppointmentFilter) ([]models.Appointment, error)
	LockResource(ctx context.Context, key string) error
	Transact(ctx context.Context, fn func(AppointmentStore) error) error
}

// AppointmentRepository implements AppointmentStore on PostgreSQL
type AppointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create persists a new appointment
func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// Save persists all fields of an existing appointment
func (r *AppointmentRepository) Save(ctx context.Context, a *models.Appointment) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

// Delete hard-deletes an appointment owned by the tenant
func (r *AppointmentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.Appointment{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete appointment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("appointment")
	}
	return nil
}

// GetByID retrieves an appointment by id. A tenant mismatch reads as not
// found.
func (r *AppointmentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("appointment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &a, nil
}

// ListByAssignment retrieves all appointments under one assignment
func (r *AppointmentRepository) ListByAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) ([]models.Appointment, error) {
	return r.List(ctx, tenantID, models.AppointmentFilter{AssignmentID: &assignmentID})
}

// List retrieves tenant-filtered appointments matching the filter, sorted
// by start ascending
func (r *AppointmentRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.AppointmentFilter) ([]models.Appointment, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}
	if filter.BoxID != nil {
		query = query.Where("box_id = ?", *filter.BoxID)
	}
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var appointments []models.Appointment
	if err := query.Order("start_time ASC").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// LockResource takes a transaction-scoped advisory lock on the given
// resource key
func (r *AppointmentRepository) LockResource(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
		return fmt.Errorf("failed to lock resource %s: %w", key, err)
	}
	return nil
}

// Transact runs fn against a repository bound to a single transaction
func (r *AppointmentRepository) Transact(ctx context.Context, fn func(AppointmentStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentRepository{db: tx})
	})
}
