package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Decision is the outcome an approver records on a pending clearance.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// IsValid checks if the decision is one of the allowed values.
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// The functions below only describe a transition as an audit entry.
// Callers validate first, then Apply the entry to the projection and persist both.

// Initiation builds the INITIATED entry for a freshly created event.
func Initiation(e *Event, steps []StepTemplate) (*AuditEntry, error) {
	payload, err := json.Marshal(InitiationPayload{
		EventNumber:      e.EventNumber,
		ScopeType:        e.ScopeType,
		ScopeID:          e.ScopeID,
		ScopeDescription: e.ScopeDescription,
		ReasonCode:       e.ReasonCode,
		Severity:         e.Severity,
		Description:      e.Description,
		Steps:            steps,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal initiation payload: %w", err)
	}

	newStatus := EventStatusActive
	return &AuditEntry{
		EventID:         e.ID,
		Action:          AuditActionInitiated,
		Description:     fmt.Sprintf("Stop work %s initiated on %s %s (%s)", e.EventNumber, e.ScopeType, e.ScopeID, e.ReasonCode),
		PerformedBy:     e.InitiatedBy,
		PerformedByRole: e.InitiatedByRole,
		PerformedAt:     e.InitiatedAt,
		NewStatus:       &newStatus,
		Payload:         payload,
	}, nil
}

// StatusAfterStep returns the event status once stepNumber is completed.
func StatusAfterStep(e *Event, stepNumber int) EventStatus {
	remaining := 0
	for _, s := range e.Steps {
		if s.Status != StepStatusCompleted && s.StepNumber != stepNumber {
			remaining++
		}
	}

	switch {
	case remaining == 0:
		return EventStatusPendingApproval
	case remaining == 1:
		return EventStatusPendingVerification
	case e.Status == EventStatusActive:
		return EventStatusUnderInvestigation
	default:
		return e.Status
	}
}

// StepCompletion builds the STEP_COMPLETED entry.
func StepCompletion(e *Event, stepNumber int, actor Actor, notes string, at time.Time) *AuditEntry {
	oldStatus := e.Status
	newStatus := StatusAfterStep(e, stepNumber)
	title := ""
	if s := e.Step(stepNumber); s != nil {
		title = s.Title
	}

	return &AuditEntry{
		EventID:         e.ID,
		Action:          AuditActionStepCompleted,
		Description:     fmt.Sprintf("Step %d completed: %s", stepNumber, title),
		PerformedBy:     actor.ID,
		PerformedByRole: actor.Role,
		PerformedAt:     at,
		OldStatus:       &oldStatus,
		NewStatus:       &newStatus,
		StepNumber:      &stepNumber,
		Notes:           notes,
	}
}

// EvidenceAddition builds the EVIDENCE_ADDED entry.
func EvidenceAddition(e *Event, ev Evidence) (*AuditEntry, error) {
	payload, err := json.Marshal(EvidencePayload{
		EvidenceID:  ev.ID,
		Type:        ev.Type,
		Description: ev.Description,
		FileRef:     ev.FileRef,
		ContentType: ev.ContentType,
		StepNumber:  ev.StepNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal evidence payload: %w", err)
	}

	return &AuditEntry{
		EventID:         e.ID,
		Action:          AuditActionEvidenceAdded,
		Description:     fmt.Sprintf("%s evidence attached: %s", ev.Type, ev.Description),
		PerformedBy:     ev.UploadedBy,
		PerformedByRole: ev.UploadedByRole,
		PerformedAt:     ev.UploadedAt,
		StepNumber:      ev.StepNumber,
		Payload:         payload,
	}, nil
}

// ApprovalRequest builds the APPROVAL_REQUESTED entry.
func ApprovalRequest(e *Event, actor Actor, at time.Time) *AuditEntry {
	oldStatus := e.Status
	newStatus := EventStatusPendingApproval
	return &AuditEntry{
		EventID:         e.ID,
		Action:          AuditActionApprovalRequested,
		Description:     "Clearance approval requested",
		PerformedBy:     actor.ID,
		PerformedByRole: actor.Role,
		PerformedAt:     at,
		OldStatus:       &oldStatus,
		NewStatus:       &newStatus,
	}
}

// Rejection builds the CLEARANCE_REJECTED entry. When escalate is set the
// event moves to ESCALATED instead of back to mitigation.
func Rejection(e *Event, actor Actor, notes string, escalate bool, at time.Time) *AuditEntry {
	oldStatus := e.Status
	newStatus := EventStatusMitigationInProgress
	description := "Clearance rejected, returned to mitigation"
	if escalate {
		newStatus = EventStatusEscalated
		description = "Clearance rejected, event escalated"
	}
	return &AuditEntry{
		EventID:         e.ID,
		Action:          AuditActionClearanceRejected,
		Description:     description,
		PerformedBy:     actor.ID,
		PerformedByRole: actor.Role,
		PerformedAt:     at,
		OldStatus:       &oldStatus,
		NewStatus:       &newStatus,
		Notes:           notes,
	}
}

// Clearance builds the CLEARED entry.
func Clearance(e *Event, actor Actor, notes string, at time.Time) *AuditEntry {
	oldStatus := e.Status
	newStatus := EventStatusCleared
	return &AuditEntry{
		EventID:         e.ID,
		Action:          AuditActionCleared,
		Description:     fmt.Sprintf("Stop work %s cleared, work may resume", e.EventNumber),
		PerformedBy:     actor.ID,
		PerformedByRole: actor.Role,
		PerformedAt:     at,
		OldStatus:       &oldStatus,
		NewStatus:       &newStatus,
		Notes:           notes,
	}
}

// Apply folds one audit entry into the event projection.
// Every successful call bumps Revision, so Revision equals the trail length.
func (e *Event) Apply(entry *AuditEntry) error {
	switch entry.Action {
	case AuditActionInitiated:
		var p InitiationPayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return fmt.Errorf("decode initiation payload: %w", err)
		}
		*e = Event{
			ID:               entry.EventID,
			EventNumber:      p.EventNumber,
			ScopeType:        p.ScopeType,
			ScopeID:          p.ScopeID,
			ScopeDescription: p.ScopeDescription,
			ReasonCode:       p.ReasonCode,
			Severity:         p.Severity,
			Description:      p.Description,
			Status:           EventStatusActive,
			InitiatedBy:      entry.PerformedBy,
			InitiatedByRole:  entry.PerformedByRole,
			InitiatedAt:      entry.PerformedAt,
			Steps:            InstantiateSteps(p.Steps),
		}
		for i := range e.Steps {
			e.Steps[i].EventID = e.ID
		}

	case AuditActionStepCompleted:
		if entry.StepNumber == nil || entry.NewStatus == nil {
			return fmt.Errorf("step completion entry %d is missing step or status", entry.ID)
		}
		step := e.Step(*entry.StepNumber)
		if step == nil {
			return fmt.Errorf("%w: step %d", ErrStepNotFound, *entry.StepNumber)
		}
		at := entry.PerformedAt
		by := entry.PerformedBy
		role := entry.PerformedByRole
		step.Status = StepStatusCompleted
		step.CompletedBy = &by
		step.CompletedByRole = &role
		step.CompletedAt = &at
		step.Notes = entry.Notes
		if next := e.CurrentStep(); next != nil {
			next.Status = StepStatusInProgress
		}
		e.Status = *entry.NewStatus

	case AuditActionEvidenceAdded:
		var p EvidencePayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return fmt.Errorf("decode evidence payload: %w", err)
		}
		e.Evidence = append(e.Evidence, Evidence{
			ID:             p.EvidenceID,
			EventID:        e.ID,
			StepNumber:     p.StepNumber,
			Type:           p.Type,
			Description:    p.Description,
			FileRef:        p.FileRef,
			ContentType:    p.ContentType,
			UploadedBy:     entry.PerformedBy,
			UploadedByRole: entry.PerformedByRole,
			UploadedAt:     entry.PerformedAt,
		})

	case AuditActionApprovalRequested:
		e.Status = EventStatusPendingApproval

	case AuditActionClearanceRejected:
		if entry.NewStatus == nil {
			return fmt.Errorf("rejection entry %d is missing status", entry.ID)
		}
		e.Status = *entry.NewStatus
		e.RejectionCount++
		if e.Status == EventStatusEscalated && e.EscalatedAt == nil {
			at := entry.PerformedAt
			e.EscalatedAt = &at
		}

	case AuditActionCleared:
		at := entry.PerformedAt
		by := entry.PerformedBy
		role := entry.PerformedByRole
		e.Status = EventStatusCleared
		e.ClearedBy = &by
		e.ClearedByRole = &role
		e.ClearedAt = &at

	default:
		return fmt.Errorf("unknown audit action %q", entry.Action)
	}

	e.Revision++
	e.UpdatedAt = entry.PerformedAt
	return nil
}
