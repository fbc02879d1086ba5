// Package interval implements the half-open interval checks used by the
// assignment scheduler and the appointment booking engine.
package interval

import (
	"time"

	"github.com/google/uuid"
)

// Span is a half-open time interval [Start, End) tagged with the owning
// record's id so updates can skip their own prior state.
type Span struct {
	ID    uuid.UUID
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// An interval ending exactly when another begins does not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Within reports whether [childStart, childEnd) lies entirely inside
// [parentStart, parentEnd).
func Within(childStart, childEnd, parentStart, parentEnd time.Time) bool {
	return !childStart.Before(parentStart) && !childEnd.After(parentEnd)
}

// FindConflicts returns every span in existing that overlaps candidate,
// skipping the span whose id equals excludeID. Pass uuid.Nil to exclude
// nothing.
func FindConflicts(candidate Span, existing []Span, excludeID uuid.UUID) []Span {
	var conflicts []Span
	for _, s := range existing {
		if excludeID != uuid.Nil && s.ID == excludeID {
			continue
		}
		if Overlaps(candidate.Start, candidate.End, s.Start, s.End) {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts
}
