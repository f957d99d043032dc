package domain

import (
	"fmt"
	"time"
)

// Replay rebuilds an event projection from its audit trail.
// Entries must be in creation order and start with INITIATED.
func Replay(entries []*AuditEntry) (*Event, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyAuditTrail
	}
	if entries[0].Action != AuditActionInitiated {
		return nil, fmt.Errorf("first audit entry is %s, want %s", entries[0].Action, AuditActionInitiated)
	}

	event := &Event{}
	for _, entry := range entries {
		if err := event.Apply(entry); err != nil {
			return nil, fmt.Errorf("apply audit entry %d: %w", entry.ID, err)
		}
	}
	return event, nil
}

// CompareProjection reports the first difference between a stored event and
// the projection replayed from its trail.
func CompareProjection(stored, replayed *Event) error {
	mismatch := func(field string, got, want any) error {
		return fmt.Errorf("%w: event %s %s is %v, trail says %v", ErrProjectionMismatch, stored.ID, field, got, want)
	}

	if stored.Status != replayed.Status {
		return mismatch("status", stored.Status, replayed.Status)
	}
	if stored.Revision != replayed.Revision {
		return mismatch("revision", stored.Revision, replayed.Revision)
	}
	if stored.RejectionCount != replayed.RejectionCount {
		return mismatch("rejection_count", stored.RejectionCount, replayed.RejectionCount)
	}
	if deref(stored.ClearedBy) != deref(replayed.ClearedBy) {
		return mismatch("cleared_by", deref(stored.ClearedBy), deref(replayed.ClearedBy))
	}
	if !sameInstant(stored.ClearedAt, replayed.ClearedAt) {
		return mismatch("cleared_at", stored.ClearedAt, replayed.ClearedAt)
	}
	if len(stored.Steps) != len(replayed.Steps) {
		return mismatch("step count", len(stored.Steps), len(replayed.Steps))
	}
	for i := range stored.Steps {
		s, r := stored.Steps[i], replayed.Steps[i]
		if s.StepNumber != r.StepNumber || s.Status != r.Status || s.RequiredRole != r.RequiredRole {
			return mismatch(fmt.Sprintf("step %d", s.StepNumber), s.Status, r.Status)
		}
		if deref(s.CompletedBy) != deref(r.CompletedBy) {
			return mismatch(fmt.Sprintf("step %d completed_by", s.StepNumber), deref(s.CompletedBy), deref(r.CompletedBy))
		}
	}
	if len(stored.Evidence) != len(replayed.Evidence) {
		return mismatch("evidence count", len(stored.Evidence), len(replayed.Evidence))
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// sameInstant compares timestamps at microsecond precision, which is what
// PostgreSQL keeps.
func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Truncate(time.Microsecond).Equal(b.Truncate(time.Microsecond))
}
