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

// DoctorStore is the storage surface for the doctor directory
type DoctorStore interface {
	Create(ctx context.Context, d *models.Doctor) error
	Save(ctx context.Context, d *models.Doctor) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Doctor, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]models.Doctor, error)
}

// DoctorRepository implements DoctorStore on PostgreSQL
type DoctorRepository struct {
	db *gorm.DB
}

// NewDoctorRepository creates a new doctor repository
func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// Create persists a new doctor
func (r *DoctorRepository) Create(ctx context.Context, d *models.Doctor) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

// Save persists all fields of an existing doctor
func (r *DoctorRepository) Save(ctx context.Context, d *models.Doctor) error {
	if err := r.db.WithContext(ctx).Save(d).Error; err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}
	return nil
}

// Delete hard-deletes a doctor owned by the tenant
func (r *DoctorRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.Doctor{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete doctor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("doctor")
	}
	return nil
}

// GetByID retrieves a doctor by id. A tenant mismatch reads as not found.
func (r *DoctorRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Doctor, error) {
	var d models.Doctor
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("doctor")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &d, nil
}

// List retrieves all doctors of the tenant
func (r *DoctorRepository) List(ctx context.Context, tenantID uuid.UUID) ([]models.Doctor, error) {
	var doctors []models.Doctor
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
