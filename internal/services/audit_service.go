package services

import (
	"context"

	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/rbac"
	"github.com/clinicops/box-scheduler/internal/repository"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

// AuditService exposes the audit trail to administrators
type AuditService struct {
	store    repository.AuditStore
	resolver *rbac.Resolver
}

// NewAuditService creates a new audit service
func NewAuditService(store repository.AuditStore, resolver *rbac.Resolver) *AuditService {
	return &AuditService{store: store, resolver: resolver}
}

// List retrieves the caller's tenant audit trail, newest first
func (s *AuditService) List(ctx context.Context, user models.UserContext, limit, offset int) ([]models.AuditLog, error) {
	if err := requirePermission(ctx, s.resolver, user, models.PermissionAuditRead); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > auditMaxLimit {
		limit = auditDefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByTenant(ctx, user.TenantID, limit, offset)
}
