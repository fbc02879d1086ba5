package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityClaims are the verified claims minted by the external
// authentication service. This core trusts them as-is.
type IdentityClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	jwt.RegisteredClaims
}

// UserContext is the caller identity carried through the request context
type UserContext struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
}
