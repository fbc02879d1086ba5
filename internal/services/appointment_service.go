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

// AppointmentService books 30-minute patient visits inside an assignment's
// window. Appointments under the same assignment never overlap, and their
// box/doctor/specialty are frozen copies of the parent's at creation time.
type AppointmentService struct {
	appointments repository.AppointmentStore
	assignments  repository.AssignmentStore
	resolver     *rbac.Resolver
	audit        *auditor
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	appointments repository.AppointmentStore,
	assignments repository.AssignmentStore,
	resolver *rbac.Resolver,
	audit repository.AuditStore,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		assignments:  assignments,
		resolver:     resolver,
		audit:        &auditor{store: audit},
	}
}

// Create books a new appointment. The sibling scan and the write run in
// one transaction serialized per assignment.
func (s *AppointmentService) Create(ctx context.Context, user models.UserContext, req *models.AppointmentRequest) (created *models.Appointment, err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "appointment.create", "appointment", req.ID.String(), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionAppointmentsWrite); err != nil {
		return nil, err
	}

	if req.ID == uuid.Nil || req.AssignmentID == uuid.Nil {
		return nil, apperrors.Validation("id and assignment_id are required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, apperrors.Validation("start and end are required")
	}
	if req.PatientName == "" {
		return nil, apperrors.Validation("patient_name is required")
	}
	if err := validateSlot(req.Start, req.End); err != nil {
		return nil, err
	}

	var replayed bool
	err = s.appointments.Transact(ctx, func(tx repository.AppointmentStore) error {
		if err := tx.LockResource(ctx, assignmentLockKey(req.AssignmentID)); err != nil {
			return err
		}

		parent, err := s.parentAssignment(ctx, user.TenantID, req.AssignmentID)
		if err != nil {
			return err
		}
		if !interval.Within(req.Start, req.End, parent.Start, parent.End) {
			return apperrors.Validation(
				"appointment must lie within the assignment window %s to %s",
				parent.Start.Format(time.RFC3339), parent.End.Format(time.RFC3339),
			)
		}

		if err := s.checkSlotFree(ctx, tx, user.TenantID, req.AssignmentID, req.Start, req.End, req.ID); err != nil {
			return err
		}

		// Ids are client-supplied so retried requests carry the id of the
		// record they already created. The sibling scan above skips that id;
		// here the write must take the update path instead of tripping the
		// primary key.
		existing, err := tx.GetByID(ctx, user.TenantID, req.ID)
		var notFound *apperrors.NotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return err
		}
		replayed = existing != nil

		created = &models.Appointment{
			ID:           req.ID,
			TenantID:     user.TenantID,
			AssignmentID: parent.ID,
			BoxID:        parent.BoxID,
			DoctorID:     parent.DoctorID,
			SpecialtyID:  parent.SpecialtyID,
			Start:        req.Start,
			End:          req.End,
			Date:         req.Start.Format(models.DateLayout),
			PatientName:  req.PatientName,
			PatientPhone: req.PatientPhone,
			PatientEmail: req.PatientEmail,
			Reason:       req.Reason,
			Notes:        req.Notes,
			Status:       models.AppointmentStatusScheduled,
		}
		if replayed {
			created.CreatedAt = existing.CreatedAt
			return tx.Save(ctx, created)
		}
		return tx.Create(ctx, created)
	})
	if err != nil {
		countConflict(err, "appointment")
		return nil, err
	}

	if !replayed {
		metrics.BookingsCreated.WithLabelValues("appointment").Inc()
	}
	return created, nil
}

// Update merges the patch over the stored appointment. When the patch
// touches start or end it re-validates duration, alignment, containment
// within the existing assignment and sibling overlap. AssignmentID, box,
// doctor and specialty stay pinned to their stored values.
func (s *AppointmentService) Update(ctx context.Context, user models.UserContext, id uuid.UUID, patch *models.AppointmentPatch) (updated *models.Appointment, err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "appointment.update", "appointment", id.String(), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionAppointmentsWrite); err != nil {
		return nil, err
	}

	err = s.appointments.Transact(ctx, func(tx repository.AppointmentStore) error {
		existing, err := tx.GetByID(ctx, user.TenantID, id)
		if err != nil {
			return err
		}

		merged := *existing
		if patch.Start != nil {
			merged.Start = *patch.Start
		}
		if patch.End != nil {
			merged.End = *patch.End
		}
		if patch.PatientName != nil {
			merged.PatientName = *patch.PatientName
		}
		if patch.PatientPhone != nil {
			merged.PatientPhone = *patch.PatientPhone
		}
		if patch.PatientEmail != nil {
			merged.PatientEmail = *patch.PatientEmail
		}
		if patch.Reason != nil {
			merged.Reason = *patch.Reason
		}
		if patch.Notes != nil {
			merged.Notes = *patch.Notes
		}
		if patch.Status != nil {
			merged.Status = *patch.Status
		}

		moved := !merged.Start.Equal(existing.Start) || !merged.End.Equal(existing.End)
		if moved {
			if err := tx.LockResource(ctx, assignmentLockKey(existing.AssignmentID)); err != nil {
				return err
			}
			if err := validateSlot(merged.Start, merged.End); err != nil {
				return err
			}

			parent, err := s.parentAssignment(ctx, user.TenantID, existing.AssignmentID)
			if err != nil {
				return err
			}
			if !interval.Within(merged.Start, merged.End, parent.Start, parent.End) {
				return apperrors.Validation(
					"appointment must lie within the assignment window %s to %s",
					parent.Start.Format(time.RFC3339), parent.End.Format(time.RFC3339),
				)
			}

			if err := s.checkSlotFree(ctx, tx, user.TenantID, existing.AssignmentID, merged.Start, merged.End, merged.ID); err != nil {
				return err
			}
			merged.Date = merged.Start.Format(models.DateLayout)
		}

		if err := tx.Save(ctx, &merged); err != nil {
			return err
		}
		updated = &merged
		return nil
	})
	if err != nil {
		countConflict(err, "appointment")
		return nil, err
	}
	return updated, nil
}

// Delete removes an appointment owned by the caller's tenant
func (s *AppointmentService) Delete(ctx context.Context, user models.UserContext, id uuid.UUID) (err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "appointment.delete", "appointment", id.String(), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionAppointmentsWrite); err != nil {
		return err
	}
	return s.appointments.Delete(ctx, user.TenantID, id)
}

// Get retrieves one appointment
func (s *AppointmentService) Get(ctx context.Context, user models.UserContext, id uuid.UUID) (*models.Appointment, error) {
	if err := requirePermission(ctx, s.resolver, user, models.PermissionAppointmentsRead); err != nil {
		return nil, err
	}
	return s.appointments.GetByID(ctx, user.TenantID, id)
}

// List retrieves tenant-filtered appointments sorted by start ascending
func (s *AppointmentService) List(ctx context.Context, user models.UserContext, filter models.AppointmentFilter) ([]models.Appointment, error) {
	if err := requirePermission(ctx, s.resolver, user, models.PermissionAppointmentsRead); err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, user.TenantID, filter)
}

// parentAssignment loads the parent assignment. An absent parent, or one
// owned by another tenant, reads as a validation failure so the booking
// surface never distinguishes the two.
func (s *AppointmentService) parentAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) (*models.Assignment, error) {
	parent, err := s.assignments.GetByID(ctx, tenantID, assignmentID)
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		return nil, apperrors.Validation("assignment %s not found", assignmentID)
	}
	if err != nil {
		return nil, err
	}
	return parent, nil
}

// checkSlotFree scans sibling appointments under the assignment for
// overlap, skipping excludeID
func (s *AppointmentService) checkSlotFree(ctx context.Context, tx repository.AppointmentStore, tenantID, assignmentID uuid.UUID, start, end time.Time, excludeID uuid.UUID) error {
	siblings, err := tx.ListByAssignment(ctx, tenantID, assignmentID)
	if err != nil {
		return err
	}

	candidate := interval.Span{ID: excludeID, Start: start, End: end}
	spans := make([]interval.Span, len(siblings))
	for i, sibling := range siblings {
		spans[i] = interval.Span{ID: sibling.ID, Start: sibling.Start, End: sibling.End}
	}

	conflicting := interval.FindConflicts(candidate, spans, excludeID)
	if len(conflicting) == 0 {
		return nil
	}

	conflicts := make([]apperrors.Conflict, len(conflicting))
	for i, span := range conflicting {
		conflicts[i] = apperrors.Conflict{ID: span.ID, Start: span.Start, End: span.End}
		for _, sibling := range siblings {
			if sibling.ID == span.ID {
				conflicts[i].Detail = sibling.PatientName
				break
			}
		}
	}
	return &apperrors.ConflictError{
		Code:      apperrors.CodeAppointmentConflict,
		Message:   "slot is already booked",
		Conflicts: conflicts,
	}
}

// validateSlot enforces the fixed 30-minute duration and the on-the-hour
// or half-hour start alignment
func validateSlot(start, end time.Time) error {
	if d := end.Sub(start); d != models.SlotDuration {
		return apperrors.Validation("appointment duration must be exactly 30 minutes, got %s", d)
	}
	if m := start.Minute(); m != 0 && m != 30 {
		return apperrors.Validation("appointment must start on the hour or half-hour, got minute %d", m)
	}
	if start.Second() != 0 || start.Nanosecond() != 0 {
		return apperrors.Validation("appointment start must align to a whole minute")
	}
	return nil
}
