package dto

// CreateEventRequest represents the request body for POST /stop-work.
type CreateEventRequest struct {
	ScopeType        string `json:"scopeType"`
	ScopeID          string `json:"scopeId"`
	ScopeDescription string `json:"scopeDescription,omitempty"`
	ReasonCode       string `json:"reasonCode"`
	Severity         string `json:"severity"`
	Description      string `json:"description"`
}

// CompleteStepRequest represents the request body for POST /stop-work/{id}/steps/{n}/complete.
type CompleteStepRequest struct {
	Notes string `json:"notes"`
}

// AddEvidenceRequest represents the JSON body for POST /stop-work/{id}/evidence.
// Multipart uploads carry the same fields as form values plus a "file" part.
type AddEvidenceRequest struct {
	EvidenceType string `json:"evidenceType"`
	Description  string `json:"description"`
	FileRef      string `json:"fileRef"`
	StepNumber   *int   `json:"stepNumber,omitempty"`
}

// ClearanceRequest represents the request body for POST /stop-work/{id}/clearance.
type ClearanceRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

// ListEventsFilters represents query parameters for GET /stop-work.
type ListEventsFilters struct {
	Status      []string // Multiple statuses: ?status=ACTIVE,ESCALATED
	Severity    []string // ?severity=HIGH,CRITICAL
	ScopeType   *string  // ?scope_type=WORK_CENTER
	ScopeID     *string  // ?scope_id=WC-SAW-001
	ReasonCode  *string  // ?reason_code=MISSING_LOTO_PERMIT
	InitiatedBy *string  // ?initiated_by=<actor id> or ?initiated_by=me
	Active      bool     // ?active=true
	Overdue     bool     // ?overdue=true
	Sort        []string // ?sort=-severity,initiated_at
	Limit       int      // ?limit=50
	Offset      int      // ?offset=0
}

// StatsFilters represents query parameters for GET /stop-work/stats.
type StatsFilters struct {
	Period    string  // day, week, month, all
	ScopeType *string // Filter by scope type
}
