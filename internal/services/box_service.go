package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/rbac"
	"github.com/clinicops/box-scheduler/internal/repository"
)

// BoxService manages the box directory
type BoxService struct {
	boxes    repository.BoxStore
	resolver *rbac.Resolver
	audit    *auditor
}

// NewBoxService creates a new box service
func NewBoxService(boxes repository.BoxStore, resolver *rbac.Resolver, audit repository.AuditStore) *BoxService {
	return &BoxService{boxes: boxes, resolver: resolver, audit: &auditor{store: audit}}
}

// Create registers a new box
func (s *BoxService) Create(ctx context.Context, user models.UserContext, req *models.BoxRequest) (created *models.Box, err error) {
	started := time.Now()
	defer func() {
		id := ""
		if created != nil {
			id = created.ID.String()
		}
		s.audit.record(ctx, user, "box.create", "box", id, started, err)
	}()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionBoxesWrite); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperrors.Validation("name is required")
	}

	b := &models.Box{
		ID:        uuid.New(),
		TenantID:  user.TenantID,
		Name:      req.Name,
		Hallway:   req.Hallway,
		Status:    req.Status,
		Equipment: req.Equipment,
	}
	if b.Status == "" {
		b.Status = models.BoxStatusActive
	}
	if err = s.boxes.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Update applies the non-empty request fields over the stored box
func (s *BoxService) Update(ctx context.Context, user models.UserContext, id uuid.UUID, req *models.BoxRequest) (updated *models.Box, err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "box.update", "box", id.String(), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionBoxesWrite); err != nil {
		return nil, err
	}

	b, err := s.boxes.GetByID(ctx, user.TenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		b.Name = req.Name
	}
	if req.Hallway != "" {
		b.Hallway = req.Hallway
	}
	if req.Status != "" {
		b.Status = req.Status
	}
	if req.Equipment != nil {
		b.Equipment = req.Equipment
	}

	if err = s.boxes.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete hard-deletes a box
func (s *BoxService) Delete(ctx context.Context, user models.UserContext, id uuid.UUID) (err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "box.delete", "box", id.String(), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionBoxesWrite); err != nil {
		return err
	}
	return s.boxes.Delete(ctx, user.TenantID, id)
}

// Get retrieves one box
func (s *BoxService) Get(ctx context.Context, user models.UserContext, id uuid.UUID) (*models.Box, error) {
	if err := requirePermission(ctx, s.resolver, user, models.PermissionBoxesRead); err != nil {
		return nil, err
	}
	return s.boxes.GetByID(ctx, user.TenantID, id)
}

// List retrieves all boxes of the caller's tenant
func (s *BoxService) List(ctx context.Context, user models.UserContext) ([]models.Box, error) {
	if err := requirePermission(ctx, s.resolver, user, models.PermissionBoxesRead); err != nil {
		return nil, err
	}
	return s.boxes.List(ctx, user.TenantID)
}
