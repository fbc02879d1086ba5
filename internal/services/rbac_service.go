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

// RBACService administers user-role bindings. Changes take effect on the
// next request because the resolver re-reads the store every time.
type RBACService struct {
	store    *rbac.Store
	resolver *rbac.Resolver
	audit    *auditor
}

// NewRBACService creates a new rbac administration service
func NewRBACService(store *rbac.Store, resolver *rbac.Resolver, audit repository.AuditStore) *RBACService {
	return &RBACService{store: store, resolver: resolver, audit: &auditor{store: audit}}
}

// AssignRoles replaces the role set bound to a user within the caller's
// tenant. Every role must exist in the catalog.
func (s *RBACService) AssignRoles(ctx context.Context, user models.UserContext, req *models.RoleBindingRequest) (binding *models.RoleBinding, err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "rbac.assign", "role_binding", req.UserID.String(), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionRBACWrite); err != nil {
		return nil, err
	}

	if req.UserID == uuid.Nil {
		return nil, apperrors.Validation("user_id is required")
	}
	if len(req.Roles) == 0 {
		return nil, apperrors.Validation("at least one role is required")
	}
	for _, role := range req.Roles {
		exists, err := s.store.RoleExists(ctx, role)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.Validation("unknown role %q", role)
		}
	}

	binding = &models.RoleBinding{
		TenantID: user.TenantID,
		UserID:   req.UserID,
		Roles:    req.Roles,
	}
	if err = s.store.SetBinding(ctx, *binding); err != nil {
		return nil, err
	}
	return binding, nil
}

// GetBinding returns the role set bound to a user within the caller's
// tenant
func (s *RBACService) GetBinding(ctx context.Context, user models.UserContext, userID uuid.UUID) (*models.RoleBinding, error) {
	if err := requirePermission(ctx, s.resolver, user, models.PermissionRBACWrite); err != nil {
		return nil, err
	}

	roles, err := s.store.Binding(ctx, user.TenantID, userID)
	if err != nil {
		return nil, err
	}
	return &models.RoleBinding{TenantID: user.TenantID, UserID: userID, Roles: roles}, nil
}
