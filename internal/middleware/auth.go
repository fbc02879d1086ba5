package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/clinicops/box-scheduler/internal/models"
)

type contextKey string

const userContextKey contextKey = "user_context"

// Auth verifies the bearer token minted by the external authentication
// service and puts the caller's UserContext (user id + tenant id) into the
// request context. Requests without a valid identity get 401.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthenticated(w, "Authorization header is required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthenticated(w, "Authorization header must be a bearer token")
				return
			}

			claims, err := parseClaims(parts[1], secret)
			if err != nil {
				log.Warn().Err(err).Msg("Invalid identity token")
				unauthenticated(w, "Invalid identity token")
				return
			}

			user := models.UserContext{
				UserID:   claims.UserID,
				TenantID: claims.TenantID,
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseClaims(tokenString, secret string) (*models.IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.IdentityClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.IdentityClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.UserID == uuid.Nil || claims.TenantID == uuid.Nil {
		return nil, fmt.Errorf("token missing user or tenant identity")
	}
	return claims, nil
}

// GetUserContext extracts the caller identity from context
func GetUserContext(ctx context.Context) (models.UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(models.UserContext)
	return user, ok
}

// WithUserContext returns a context carrying the given caller identity.
// Handler tests use it to skip token parsing.
func WithUserContext(ctx context.Context, user models.UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func unauthenticated(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    apperrors.CodeUnauthenticated,
		"message": message,
	})
}
