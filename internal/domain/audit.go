package domain

import (
	"encoding/json"
	"time"
)

// AuditAction tags the kind of transition an audit entry records.
type AuditAction string

const (
	AuditActionInitiated         AuditAction = "INITIATED"
	AuditActionStepCompleted     AuditAction = "STEP_COMPLETED"
	AuditActionEvidenceAdded     AuditAction = "EVIDENCE_ADDED"
	AuditActionApprovalRequested AuditAction = "APPROVAL_REQUESTED"
	AuditActionClearanceRejected AuditAction = "CLEARANCE_REJECTED"
	AuditActionCleared           AuditAction = "CLEARED"
)

// AuditEntry is an append-only record of one state-affecting call.
// Entries reference their event by id only and are never updated.
type AuditEntry struct {
	ID              int64
	EventID         string
	Action          AuditAction
	Description     string
	PerformedBy     string
	PerformedByRole Role
	PerformedAt     time.Time
	OldStatus       *EventStatus
	NewStatus       *EventStatus
	StepNumber      *int
	Notes           string
	Payload         json.RawMessage
}

// InitiationPayload is the snapshot stored on the INITIATED entry.
type InitiationPayload struct {
	EventNumber      string         `json:"event_number"`
	ScopeType        ScopeType      `json:"scope_type"`
	ScopeID          string         `json:"scope_id"`
	ScopeDescription string         `json:"scope_description"`
	ReasonCode       string         `json:"reason_code"`
	Severity         Severity       `json:"severity"`
	Description      string         `json:"description"`
	Steps            []StepTemplate `json:"steps"`
}

// EvidencePayload is stored on EVIDENCE_ADDED entries.
type EvidencePayload struct {
	EvidenceID  string       `json:"evidence_id"`
	Type        EvidenceType `json:"type"`
	Description string       `json:"description"`
	FileRef     string       `json:"file_ref"`
	ContentType string       `json:"content_type,omitempty"`
	StepNumber  *int         `json:"step_number,omitempty"`
}
