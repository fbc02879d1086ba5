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

// BoxStore is the storage surface for the box directory
type BoxStore interface {
	Create(ctx context.Context, b *models.Box) error
	Save(ctx context.Context, b *models.Box) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Box, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]models.Box, error)
}

// BoxRepository implements BoxStore on PostgreSQL
type BoxRepository struct {
	db *gorm.DB
}

// NewBoxRepository creates a new box repository
func NewBoxRepository(db *gorm.DB) *BoxRepository {
	return &BoxRepository{db: db}
}

// Create persists a new box
func (r *BoxRepository) Create(ctx context.Context, b *models.Box) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create box: %w", err)
	}
	return nil
}

// Save persists all fields of an existing box
func (r *BoxRepository) Save(ctx context.Context, b *models.Box) error {
	if err := r.db.WithContext(ctx).Save(b).Error; err != nil {
		return fmt.Errorf("failed to update box: %w", err)
	}
	return nil
}

// Delete hard-deletes a box owned by the tenant
func (r *BoxRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.Box{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete box: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("box")
	}
	return nil
}

// GetByID retrieves a box by id. A tenant mismatch reads as not found.
func (r *BoxRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Box, error) {
	var b models.Box
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("box")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get box: %w", err)
	}
	return &b, nil
}

// List retrieves all boxes of the tenant
func (r *BoxRepository) List(ctx context.Context, tenantID uuid.UUID) ([]models.Box, error) {
	var boxes []models.Box
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&boxes).Error; err != nil {
		return nil, fmt.Errorf("failed to list boxes: %w", err)
	}
	return boxes, nil
}
