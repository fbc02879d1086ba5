package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/clinicops/box-scheduler/internal/cache"
	"github.com/clinicops/box-scheduler/internal/models"
)

func newTestResolver(t *testing.T) (*Store, *Resolver) {
	t.Helper()
	kv := cache.NewMemoryCache()
	t.Cleanup(func() { kv.Close() })

	store := NewStore(kv)
	if err := store.SeedCatalog(context.Background(), models.DefaultRoles); err != nil {
		t.Fatalf("SeedCatalog: %v", err)
	}
	return store, NewResolver(store)
}

func TestResolveNoBinding(t *testing.T) {
	_, resolver := newTestResolver(t)

	set, err := resolver.ResolvePermissions(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("ResolvePermissions: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set for unbound user, got %v", set)
	}
}

func TestResolveUnionAcrossRoles(t *testing.T) {
	store, resolver := newTestResolver(t)
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	binding := models.RoleBinding{
		TenantID: tenantID,
		UserID:   userID,
		Roles:    []string{"viewer", "receptionist"},
	}
	if err := store.SetBinding(ctx, binding); err != nil {
		t.Fatalf("SetBinding: %v", err)
	}

	set, err := resolver.ResolvePermissions(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("ResolvePermissions: %v", err)
	}
	if !set.Has(models.PermissionAppointmentsWrite) {
		t.Error("receptionist role should grant appointments:write")
	}
	if !set.Has(models.PermissionBoxesRead) {
		t.Error("viewer role should grant boxes:read")
	}
	if set.Has(models.PermissionAssignmentsWrite) {
		t.Error("neither role grants assignments:write")
	}
}

func TestResolveIsTenantScoped(t *testing.T) {
	store, resolver := newTestResolver(t)
	ctx := context.Background()
	userID := uuid.New()
	tenantA, tenantB := uuid.New(), uuid.New()

	if err := store.SetBinding(ctx, models.RoleBinding{
		TenantID: tenantA,
		UserID:   userID,
		Roles:    []string{"admin"},
	}); err != nil {
		t.Fatalf("SetBinding: %v", err)
	}

	set, err := resolver.ResolvePermissions(ctx, tenantB, userID)
	if err != nil {
		t.Fatalf("ResolvePermissions: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("binding in tenant A must not grant permissions in tenant B, got %v", set)
	}
}

func TestResolveUnknownRoleContributesNothing(t *testing.T) {
	store, resolver := newTestResolver(t)
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	if err := store.SetBinding(ctx, models.RoleBinding{
		TenantID: tenantID,
		UserID:   userID,
		Roles:    []string{"no-such-role"},
	}); err != nil {
		t.Fatalf("SetBinding: %v", err)
	}

	set, err := resolver.ResolvePermissions(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("ResolvePermissions: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("unknown role must contribute no permissions, got %v", set)
	}
}

func TestRequire(t *testing.T) {
	set := PermissionSet{models.PermissionBoxesRead: {}}

	if err := set.Require(models.PermissionBoxesRead); err != nil {
		t.Errorf("Require on present permission: %v", err)
	}

	err := set.Require(models.PermissionBoxesWrite)
	var authErr *apperrors.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if authErr.Permission != string(models.PermissionBoxesWrite) {
		t.Errorf("error should name the missing permission, got %q", authErr.Permission)
	}
}

func TestSeedCatalogDropsStaleRoles(t *testing.T) {
	kv := cache.NewMemoryCache()
	t.Cleanup(func() { kv.Close() })
	store := NewStore(kv)
	ctx := context.Background()

	stale := models.Role{Name: "legacy-operator", Permissions: []models.Permission{models.PermissionBoxesWrite}}
	if err := store.SeedCatalog(ctx, []models.Role{stale}); err != nil {
		t.Fatalf("SeedCatalog: %v", err)
	}

	if err := store.SeedCatalog(ctx, models.DefaultRoles); err != nil {
		t.Fatalf("SeedCatalog: %v", err)
	}

	exists, err := store.RoleExists(ctx, "legacy-operator")
	if err != nil {
		t.Fatalf("RoleExists: %v", err)
	}
	if exists {
		t.Error("reseeding must drop roles absent from the new catalog")
	}
	exists, err = store.RoleExists(ctx, "admin")
	if err != nil {
		t.Fatalf("RoleExists: %v", err)
	}
	if !exists {
		t.Error("reseeding must keep the current catalog")
	}
}
