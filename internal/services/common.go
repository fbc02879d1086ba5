// Package services implements the scheduling core: the assignment
// scheduler, the appointment booking engine and the directory services,
// each gated by the permission resolver.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicops/box-scheduler/internal/metrics"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/rbac"
	"github.com/clinicops/box-scheduler/internal/repository"
)

// Advisory lock keys. Writers for the same box, doctor or assignment
// serialize on these, which makes the conflict-scan-then-write sequence
// atomic across concurrent requests.
func boxLockKey(boxID uuid.UUID) string {
	return "assignments:box:" + boxID.String()
}

func doctorLockKey(doctorID uuid.UUID) string {
	return "assignments:doctor:" + doctorID.String()
}

func assignmentLockKey(assignmentID uuid.UUID) string {
	return "appointments:assignment:" + assignmentID.String()
}

// requirePermission resolves the caller's effective permission set and
// checks the needed token. This is the single gate every mutation passes
// before touching storage.
func requirePermission(ctx context.Context, resolver *rbac.Resolver, user models.UserContext, needed models.Permission) error {
	set, err := resolver.ResolvePermissions(ctx, user.TenantID, user.UserID)
	if err != nil {
		return err
	}
	if err := set.Require(needed); err != nil {
		metrics.PermissionDenials.Inc()
		return err
	}
	return nil
}

// auditor records mutations in the audit trail. Audit failures are logged
// and never surfaced to the caller.
type auditor struct {
	store repository.AuditStore
}

func (a *auditor) record(ctx context.Context, user models.UserContext, action, resourceType, resourceID string, started time.Time, opErr error) {
	if a == nil || a.store == nil {
		return
	}

	entry := &models.AuditLog{
		TenantID:     user.TenantID,
		UserID:       user.UserID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       "success",
		Duration:     time.Since(started).Milliseconds(),
	}
	if opErr != nil {
		entry.Status = "failure"
		entry.ErrorMessage = opErr.Error()
	}

	if err := a.store.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to write audit log")
	}
}
