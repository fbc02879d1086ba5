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

// AssignmentStore is the storage surface the assignment scheduler works
// against. Transact runs fn against a store bound to one transaction;
// together with LockResource it turns the conflict-scan-then-write sequence
// into a single serialized unit.
type AssignmentStore interface {
	Create(ctx context.Context, a *models.Assignment) error
	Save(ctx context.Context, a *models.Assignment) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Assignment, error)
	ListByBox(ctx context.Context, tenantID, boxID uuid.UUID) ([]models.Assignment, error)
	ListByDoctor(ctx context.Context, tenantID, doctorID uuid.UUID) ([]models.Assignment, error)
	ListByDate(ctx context.Context, tenantID uuid.UUID, date string) ([]models.Assignment, error)
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Assignment, error)
	LockResource(ctx context.Context, key string) error
	Transact(ctx context.Context, fn func(AssignmentStore) error) error
}

// AssignmentRepository implements AssignmentStore on PostgreSQL
type AssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create persists a new assignment
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

// Save persists all fields of an existing assignment
func (r *AssignmentRepository) Save(ctx context.Context, a *models.Assignment) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	return nil
}

// Delete hard-deletes an assignment owned by the tenant
func (r *AssignmentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("assignment")
	}
	return nil
}

// GetByID retrieves an assignment by id. A tenant mismatch reads as not
// found.
func (r *AssignmentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Assignment, error) {
	var a models.Assignment
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("assignment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &a, nil
}

// ListByBox retrieves all assignments for a box
func (r *AssignmentRepository) ListByBox(ctx context.Context, tenantID, boxID uuid.UUID) ([]models.Assignment, error) {
	return r.list(ctx, "tenant_id = ? AND box_id = ?", tenantID, boxID)
}

// ListByDoctor retrieves all assignments for a doctor
func (r *AssignmentRepository) ListByDoctor(ctx context.Context, tenantID, doctorID uuid.UUID) ([]models.Assignment, error) {
	return r.list(ctx, "tenant_id = ? AND doctor_id = ?", tenantID, doctorID)
}

// ListByDate retrieves all assignments whose start falls on the given day
func (r *AssignmentRepository) ListByDate(ctx context.Context, tenantID uuid.UUID, date string) ([]models.Assignment, error) {
	return r.list(ctx, "tenant_id = ? AND date = ?", tenantID, date)
}

// ListAll retrieves every assignment of the tenant. Full scan, degraded
// path only.
func (r *AssignmentRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Assignment, error) {
	return r.list(ctx, "tenant_id = ?", tenantID)
}

func (r *AssignmentRepository) list(ctx context.Context, query string, args ...any) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("start_time ASC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// LockResource takes a transaction-scoped advisory lock on the given
// resource key. Concurrent writers for the same box, doctor or assignment
// serialize on it, so a conflict scan inside the transaction cannot miss a
// write that passed its own scan moments earlier.
func (r *AssignmentRepository) LockResource(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
		return fmt.Errorf("failed to lock resource %s: %w", key, err)
	}
	return nil
}

// Transact runs fn against a repository bound to a single transaction
func (r *AssignmentRepository) Transact(ctx context.Context, fn func(AssignmentStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AssignmentRepository{db: tx})
	})
}
