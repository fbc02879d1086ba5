package cache

import (
	"context"
	"time"
)

// Cache defines the key-value store interface. A ttl of zero means the key
// never expires; the permission store relies on that for role bindings.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, pattern string) error
	Ping(ctx context.Context) error
}

// RoleKey is the key holding a role's permission set
func RoleKey(role string) string {
	return "rbac:role:" + role
}

// BindingKey is the key holding the role set bound to a (tenant, user) pair
func BindingKey(tenantID, userID string) string {
	return "rbac:binding:" + tenantID + ":" + userID
}
