package rbac

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/clinicops/box-scheduler/internal/models"
)

// PermissionSet is the effective set of permissions for one caller
type PermissionSet map[models.Permission]struct{}

// Has reports whether the set contains the permission
func (ps PermissionSet) Has(p models.Permission) bool {
	_, ok := ps[p]
	return ok
}

// Require returns an AuthorizationError when the permission is absent.
// Every mutating operation calls this before touching storage.
func (ps PermissionSet) Require(p models.Permission) error {
	if !ps.Has(p) {
		return &apperrors.AuthorizationError{Permission: string(p)}
	}
	return nil
}

// Resolver computes effective permission sets from the permission store
type Resolver struct {
	store *Store
}

// NewResolver creates a new resolver over the given store
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// ResolvePermissions unions the permissions of every role bound to
// (tenant, user). A caller with no binding gets an empty set, never an
// error: callers treat the empty set as fully unauthorized.
func (r *Resolver) ResolvePermissions(ctx context.Context, tenantID, userID uuid.UUID) (PermissionSet, error) {
	roles, err := r.store.Binding(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	set := make(PermissionSet)
	for _, role := range roles {
		perms, err := r.store.RolePermissions(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, p := range perms {
			set[p] = struct{}{}
		}
	}
	return set, nil
}
