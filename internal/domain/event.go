package domain

import "time"

// ScopeType is the kind of resource a stop-work event halts.
type ScopeType string

const (
	ScopeTypeJob        ScopeType = "JOB"
	ScopeTypeWorkCenter ScopeType = "WORK_CENTER"
	ScopeTypeAsset      ScopeType = "ASSET"
	ScopeTypeArea       ScopeType = "AREA"
	ScopeTypeLocation   ScopeType = "LOCATION"
	ScopeTypeOperation  ScopeType = "OPERATION"
)

// IsValid checks if the scope type is one of the allowed values.
func (s ScopeType) IsValid() bool {
	switch s {
	case ScopeTypeJob, ScopeTypeWorkCenter, ScopeTypeAsset,
		ScopeTypeArea, ScopeTypeLocation, ScopeTypeOperation:
		return true
	default:
		return false
	}
}

// PropagatesToJobs reports whether jobs scheduled on the scope are blocked too.
func (s ScopeType) PropagatesToJobs() bool {
	return s == ScopeTypeWorkCenter || s == ScopeTypeAsset
}

// Severity ranks how dangerous the stopped condition is.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// IsValid checks if the severity is one of the allowed values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// EventStatus represents the status of a stop-work event.
type EventStatus string

const (
	EventStatusActive               EventStatus = "ACTIVE"
	EventStatusUnderInvestigation   EventStatus = "UNDER_INVESTIGATION"
	EventStatusMitigationInProgress EventStatus = "MITIGATION_IN_PROGRESS"
	EventStatusPendingVerification  EventStatus = "PENDING_VERIFICATION"
	EventStatusPendingApproval      EventStatus = "PENDING_APPROVAL"
	EventStatusCleared              EventStatus = "CLEARED"
	EventStatusEscalated            EventStatus = "ESCALATED"
)

// IsTerminal returns true if the status is terminal (no transitions allowed).
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusCleared
}

// IsValid checks if the status is one of the allowed values.
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusActive, EventStatusUnderInvestigation, EventStatusMitigationInProgress,
		EventStatusPendingVerification, EventStatusPendingApproval, EventStatusCleared,
		EventStatusEscalated:
		return true
	default:
		return false
	}
}

// Event is one stop-work occurrence. It owns its clearance steps and evidence.
type Event struct {
	ID               string
	EventNumber      string
	ScopeType        ScopeType
	ScopeID          string
	ScopeDescription string
	ReasonCode       string
	Severity         Severity
	Description      string
	Status           EventStatus
	InitiatedBy      string
	InitiatedByRole  Role
	InitiatedAt      time.Time
	ClearedBy        *string
	ClearedByRole    *Role
	ClearedAt        *time.Time
	EscalatedAt      *time.Time
	RejectionCount   int
	Revision         int64
	UpdatedAt        time.Time

	Steps    []ClearanceStep
	Evidence []Evidence
}

// IsBlocking reports whether the event still contributes to the blocked set.
func (e *Event) IsBlocking() bool {
	return e.Status != EventStatusCleared
}

// IsEscalated reports whether the event was ever escalated.
func (e *Event) IsEscalated() bool {
	return e.EscalatedAt != nil
}

// Step returns the step with the given number, or nil.
func (e *Event) Step(stepNumber int) *ClearanceStep {
	for i := range e.Steps {
		if e.Steps[i].StepNumber == stepNumber {
			return &e.Steps[i]
		}
	}
	return nil
}

// CurrentStep returns the lowest-numbered step that is not COMPLETED,
// or nil when every step is done.
func (e *Event) CurrentStep() *ClearanceStep {
	var current *ClearanceStep
	for i := range e.Steps {
		s := &e.Steps[i]
		if s.Status == StepStatusCompleted {
			continue
		}
		if current == nil || s.StepNumber < current.StepNumber {
			current = s
		}
	}
	return current
}

// AllStepsCompleted reports whether every clearance step is COMPLETED.
func (e *Event) AllStepsCompleted() bool {
	return e.CurrentStep() == nil
}

// CompletedBy returns the ids of every actor who completed a step.
func (e *Event) CompletedBy() []string {
	var ids []string
	for _, s := range e.Steps {
		if s.CompletedBy != nil {
			ids = append(ids, *s.CompletedBy)
		}
	}
	return ids
}
