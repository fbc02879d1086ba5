// Package apperrors defines the error taxonomy shared by services and
// handlers. Each type maps to one HTTP status and one machine-readable code.
package apperrors

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Machine-readable error codes returned in JSON bodies
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodePermissionDenied    = "PERMISSION_DENIED"
	CodeNotFound            = "NOT_FOUND"
	CodeAssignmentConflict  = "ASSIGNMENT_CONFLICT"
	CodeAppointmentConflict = "APPOINTMENT_CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
)

// ValidationError reports malformed or semantically invalid input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation builds a ValidationError from a format string
func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports a caller lacking a required permission
type AuthorizationError struct {
	Permission string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("missing required permission %q", e.Permission)
}

// NotFoundError reports an absent record. A record owned by another tenant
// is reported identically so existence never leaks across tenants.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NotFound builds a NotFoundError for the named resource
func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// Conflict describes one colliding interval
type Conflict struct {
	ID     uuid.UUID `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Detail string    `json:"detail,omitempty"`
}

// ConflictError reports interval collisions with enough detail for the
// caller to pick a different time
type ConflictError struct {
	Code      string
	Message   string
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return e.Message
}
