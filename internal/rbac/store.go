// Package rbac resolves the effective permission set for a (tenant, user)
// pair. Role definitions and user bindings live in the key-value store; the
// resolver re-reads them on every request so role changes take effect on
// the next call with no propagation delay.
package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicops/box-scheduler/internal/cache"
	"github.com/clinicops/box-scheduler/internal/models"
)

// Store reads and writes role definitions and user-role bindings in the
// key-value store. Role definitions are an immutable catalog seeded at
// startup; bindings are written by the role-assignment operation and never
// expire.
type Store struct {
	kv cache.Cache
}

// NewStore creates a new permission store over the given key-value backend
func NewStore(kv cache.Cache) *Store {
	return &Store{kv: kv}
}

// SeedCatalog replaces the role catalog in the store. Role keys left over
// from an older catalog are cleared first, so the store always matches the
// binary.
func (s *Store) SeedCatalog(ctx context.Context, roles []models.Role) error {
	if err := s.kv.Clear(ctx, cache.RoleKey("*")); err != nil {
		return fmt.Errorf("failed to clear stale roles: %w", err)
	}
	for _, role := range roles {
		data, err := json.Marshal(role.Permissions)
		if err != nil {
			return fmt.Errorf("failed to encode role %s: %w", role.Name, err)
		}
		if err := s.kv.Set(ctx, cache.RoleKey(role.Name), data, 0); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}
	return nil
}

// RolePermissions returns the permission set of a role. An unknown role
// contributes no permissions.
func (s *Store) RolePermissions(ctx context.Context, role string) ([]models.Permission, error) {
	data, err := s.kv.Get(ctx, cache.RoleKey(role))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read role %s: %w", role, err)
	}

	var perms []models.Permission
	if err := json.Unmarshal(data, &perms); err != nil {
		return nil, fmt.Errorf("failed to decode role %s: %w", role, err)
	}
	return perms, nil
}

// RoleExists reports whether the catalog defines the named role
func (s *Store) RoleExists(ctx context.Context, role string) (bool, error) {
	return s.kv.Exists(ctx, cache.RoleKey(role))
}

// Binding returns the role names bound to (tenant, user). A missing
// binding returns an empty set, not an error.
func (s *Store) Binding(ctx context.Context, tenantID, userID uuid.UUID) ([]string, error) {
	data, err := s.kv.Get(ctx, cache.BindingKey(tenantID.String(), userID.String()))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read role binding: %w", err)
	}

	var roles []string
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("failed to decode role binding: %w", err)
	}
	return roles, nil
}

// SetBinding replaces the role set bound to (tenant, user)
func (s *Store) SetBinding(ctx context.Context, binding models.RoleBinding) error {
	data, err := json.Marshal(binding.Roles)
	if err != nil {
		return fmt.Errorf("failed to encode role binding: %w", err)
	}
	key := cache.BindingKey(binding.TenantID.String(), binding.UserID.String())
	if err := s.kv.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("failed to write role binding: %w", err)
	}
	return nil
}

// DeleteBinding removes the role set bound to (tenant, user)
func (s *Store) DeleteBinding(ctx context.Context, tenantID, userID uuid.UUID) error {
	key := cache.BindingKey(tenantID.String(), userID.String())
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete role binding: %w", err)
	}
	return nil
}
