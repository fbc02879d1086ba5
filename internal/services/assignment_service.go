package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/clinicops/box-scheduler/internal/interval"
	"github.com/clinicops/box-scheduler/internal/metrics"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/rbac"
	"github.com/clinicops/box-scheduler/internal/repository"
)

// AssignmentService schedules doctor↔box time blocks. For one box, and
// independently for one doctor, assignment windows never overlap.
type AssignmentService struct {
	assignments  repository.AssignmentStore
	appointments repository.AppointmentStore
	resolver     *rbac.Resolver
	audit        *auditor
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	assignments repository.AssignmentStore,
	appointments repository.AppointmentStore,
	resolver *rbac.Resolver,
	audit repository.AuditStore,
) *AssignmentService {
	return &AssignmentService{
		assignments:  assignments,
		appointments: appointments,
		resolver:     resolver,
		audit:        &auditor{store: audit},
	}
}

// Create schedules a new assignment after checking the candidate window
// against every sibling assignment of the box and of the doctor. The scan
// and the write run in one locked transaction.
func (s *AssignmentService) Create(ctx context.Context, user models.UserContext, req *models.AssignmentRequest) (created *models.Assignment, err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "assignment.create", "assignment", idOrEmpty(created), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionAssignmentsWrite); err != nil {
		return nil, err
	}

	if req.BoxID == uuid.Nil || req.DoctorID == uuid.Nil {
		return nil, apperrors.Validation("box_id and doctor_id are required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, apperrors.Validation("start and end are required")
	}
	if !req.Start.Before(req.End) {
		return nil, apperrors.Validation("start must be before end")
	}

	a := &models.Assignment{
		ID:          uuid.New(),
		TenantID:    user.TenantID,
		BoxID:       req.BoxID,
		DoctorID:    req.DoctorID,
		SpecialtyID: req.SpecialtyID,
		Start:       req.Start,
		End:         req.End,
		Date:        req.Start.Format(models.DateLayout),
		Status:      models.AssignmentStatusScheduled,
	}

	err = s.assignments.Transact(ctx, func(tx repository.AssignmentStore) error {
		if err := tx.LockResource(ctx, boxLockKey(a.BoxID)); err != nil {
			return err
		}
		if err := tx.LockResource(ctx, doctorLockKey(a.DoctorID)); err != nil {
			return err
		}
		if err := s.checkWindowFree(ctx, tx, a, uuid.Nil); err != nil {
			return err
		}
		return tx.Create(ctx, a)
	})
	if err != nil {
		countConflict(err, "assignment")
		return nil, err
	}

	metrics.BookingsCreated.WithLabelValues("assignment").Inc()
	return a, nil
}

// Update merges the patch over the stored assignment. The full conflict
// check reruns only when box, doctor, start or end actually changed; a
// window change additionally re-validates that every child appointment
// still fits.
func (s *AssignmentService) Update(ctx context.Context, user models.UserContext, id uuid.UUID, patch *models.AssignmentPatch) (updated *models.Assignment, err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "assignment.update", "assignment", id.String(), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionAssignmentsWrite); err != nil {
		return nil, err
	}

	err = s.assignments.Transact(ctx, func(tx repository.AssignmentStore) error {
		existing, err := tx.GetByID(ctx, user.TenantID, id)
		if err != nil {
			return err
		}

		merged := *existing
		if patch.BoxID != nil {
			merged.BoxID = *patch.BoxID
		}
		if patch.DoctorID != nil {
			merged.DoctorID = *patch.DoctorID
		}
		if patch.SpecialtyID != nil {
			merged.SpecialtyID = *patch.SpecialtyID
		}
		if patch.Start != nil {
			merged.Start = *patch.Start
		}
		if patch.End != nil {
			merged.End = *patch.End
		}

		rescheduled := merged.BoxID != existing.BoxID ||
			merged.DoctorID != existing.DoctorID ||
			!merged.Start.Equal(existing.Start) ||
			!merged.End.Equal(existing.End)

		if rescheduled {
			if !merged.Start.Before(merged.End) {
				return apperrors.Validation("start must be before end")
			}
			if err := tx.LockResource(ctx, boxLockKey(merged.BoxID)); err != nil {
				return err
			}
			if err := tx.LockResource(ctx, doctorLockKey(merged.DoctorID)); err != nil {
				return err
			}
			if err := tx.LockResource(ctx, assignmentLockKey(merged.ID)); err != nil {
				return err
			}
			if err := s.checkWindowFree(ctx, tx, &merged, merged.ID); err != nil {
				return err
			}
			if err := s.checkChildrenContained(ctx, &merged); err != nil {
				return err
			}
		}

		merged.Date = merged.Start.Format(models.DateLayout)
		if err := tx.Save(ctx, &merged); err != nil {
			return err
		}
		updated = &merged
		return nil
	})
	if err != nil {
		countConflict(err, "assignment")
		return nil, err
	}
	return updated, nil
}

// Delete removes an assignment. An assignment that still has appointments
// cannot be deleted; the policy is reject, not cascade.
func (s *AssignmentService) Delete(ctx context.Context, user models.UserContext, id uuid.UUID) (err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "assignment.delete", "assignment", id.String(), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionAssignmentsWrite); err != nil {
		return err
	}

	err = s.assignments.Transact(ctx, func(tx repository.AssignmentStore) error {
		if err := tx.LockResource(ctx, assignmentLockKey(id)); err != nil {
			return err
		}
		if _, err := tx.GetByID(ctx, user.TenantID, id); err != nil {
			return err
		}

		children, err := s.appointments.ListByAssignment(ctx, user.TenantID, id)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return &apperrors.ConflictError{
				Code:      apperrors.CodeAssignmentConflict,
				Message:   "assignment still has appointments; cancel or move them first",
				Conflicts: appointmentConflicts(children),
			}
		}

		return tx.Delete(ctx, user.TenantID, id)
	})
	if err != nil {
		countConflict(err, "assignment")
	}
	return err
}

// Get retrieves one assignment
func (s *AssignmentService) Get(ctx context.Context, user models.UserContext, id uuid.UUID) (*models.Assignment, error) {
	if err := requirePermission(ctx, s.resolver, user, models.PermissionAssignmentsRead); err != nil {
		return nil, err
	}
	return s.assignments.GetByID(ctx, user.TenantID, id)
}

// List retrieves assignments via whichever secondary index the filter
// selects. With no filter it degrades to a full tenant scan.
func (s *AssignmentService) List(ctx context.Context, user models.UserContext, filter models.AssignmentFilter) ([]models.Assignment, error) {
	if err := requirePermission(ctx, s.resolver, user, models.PermissionAssignmentsRead); err != nil {
		return nil, err
	}

	switch {
	case filter.BoxID != nil:
		return s.assignments.ListByBox(ctx, user.TenantID, *filter.BoxID)
	case filter.DoctorID != nil:
		return s.assignments.ListByDoctor(ctx, user.TenantID, *filter.DoctorID)
	case filter.Date != "":
		return s.assignments.ListByDate(ctx, user.TenantID, filter.Date)
	default:
		return s.assignments.ListAll(ctx, user.TenantID)
	}
}

// checkWindowFree runs the candidate window against all sibling
// assignments of the box and, independently, of the doctor
func (s *AssignmentService) checkWindowFree(ctx context.Context, tx repository.AssignmentStore, a *models.Assignment, excludeID uuid.UUID) error {
	candidate := interval.Span{ID: a.ID, Start: a.Start, End: a.End}

	byBox, err := tx.ListByBox(ctx, a.TenantID, a.BoxID)
	if err != nil {
		return err
	}
	if conflicts := interval.FindConflicts(candidate, assignmentSpans(byBox), excludeID); len(conflicts) > 0 {
		return &apperrors.ConflictError{
			Code:      apperrors.CodeAssignmentConflict,
			Message:   "box is already assigned in the requested window",
			Conflicts: spanConflicts(conflicts),
		}
	}

	byDoctor, err := tx.ListByDoctor(ctx, a.TenantID, a.DoctorID)
	if err != nil {
		return err
	}
	if conflicts := interval.FindConflicts(candidate, assignmentSpans(byDoctor), excludeID); len(conflicts) > 0 {
		return &apperrors.ConflictError{
			Code:      apperrors.CodeAssignmentConflict,
			Message:   "doctor is already assigned in the requested window",
			Conflicts: spanConflicts(conflicts),
		}
	}

	return nil
}

// checkChildrenContained rejects a window change that would leave an
// existing appointment outside the new bounds
func (s *AssignmentService) checkChildrenContained(ctx context.Context, a *models.Assignment) error {
	children, err := s.appointments.ListByAssignment(ctx, a.TenantID, a.ID)
	if err != nil {
		return err
	}

	var outside []models.Appointment
	for _, child := range children {
		if !interval.Within(child.Start, child.End, a.Start, a.End) {
			outside = append(outside, child)
		}
	}
	if len(outside) > 0 {
		return &apperrors.ConflictError{
			Code:      apperrors.CodeAssignmentConflict,
			Message:   "new window would orphan existing appointments",
			Conflicts: appointmentConflicts(outside),
		}
	}
	return nil
}

func assignmentSpans(assignments []models.Assignment) []interval.Span {
	spans := make([]interval.Span, len(assignments))
	for i, a := range assignments {
		spans[i] = interval.Span{ID: a.ID, Start: a.Start, End: a.End}
	}
	return spans
}

func spanConflicts(spans []interval.Span) []apperrors.Conflict {
	conflicts := make([]apperrors.Conflict, len(spans))
	for i, s := range spans {
		conflicts[i] = apperrors.Conflict{ID: s.ID, Start: s.Start, End: s.End}
	}
	return conflicts
}

func appointmentConflicts(appointments []models.Appointment) []apperrors.Conflict {
	conflicts := make([]apperrors.Conflict, len(appointments))
	for i, a := range appointments {
		conflicts[i] = apperrors.Conflict{ID: a.ID, Start: a.Start, End: a.End, Detail: a.PatientName}
	}
	return conflicts
}

func countConflict(err error, resource string) {
	var conflictErr *apperrors.ConflictError
	if errors.As(err, &conflictErr) {
		metrics.SchedulingConflicts.WithLabelValues(resource).Inc()
	}
}

func idOrEmpty(a *models.Assignment) string {
	if a == nil {
		return ""
	}
	return a.ID.String()
}
