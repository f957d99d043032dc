package dto

import (
	"time"

	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/taxonomy"
)

// ActorRef identifies who performed an action.
type ActorRef struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// EventResponse represents a stop-work event with embedded steps and evidence.
type EventResponse struct {
	ID               string             `json:"id"`
	EventNumber      string             `json:"eventNumber"`
	ScopeType        string             `json:"scopeType"`
	ScopeID          string             `json:"scopeId"`
	ScopeDescription string             `json:"scopeDescription"`
	ReasonCode       string             `json:"reasonCode"`
	Severity         string             `json:"severity"`
	Description      string             `json:"description"`
	Status           string             `json:"status"`
	InitiatedBy      ActorRef           `json:"initiatedBy"`
	InitiatedAt      time.Time          `json:"initiatedAt"`
	ClearedBy        *ActorRef          `json:"clearedBy"`
	ClearedAt        *time.Time         `json:"clearedAt"`
	EscalatedAt      *time.Time         `json:"escalatedAt,omitempty"`
	RejectionCount   int                `json:"rejectionCount"`
	Revision         int64              `json:"revision"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	CurrentStep      *int               `json:"currentStep"`
	IsOverdue        bool               `json:"isOverdue"`
	ClearanceSteps   []StepResponse     `json:"clearanceSteps"`
	Evidence         []EvidenceResponse `json:"evidence"`
	Warnings         []string           `json:"warnings,omitempty"`
}

// StepResponse represents one clearance step.
type StepResponse struct {
	StepNumber   int        `json:"stepNumber"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	RequiredRole string     `json:"requiredRole"`
	Status       string     `json:"status"`
	CompletedBy  *ActorRef  `json:"completedBy"`
	CompletedAt  *time.Time `json:"completedAt"`
	Notes        string     `json:"notes"`
}

// EvidenceResponse represents one evidence attachment.
type EvidenceResponse struct {
	ID           string    `json:"id"`
	EvidenceType string    `json:"evidenceType"`
	Description  string    `json:"description"`
	FileRef      string    `json:"fileRef"`
	ContentType  string    `json:"contentType,omitempty"`
	StepNumber   *int      `json:"stepNumber,omitempty"`
	UploadedBy   ActorRef  `json:"uploadedBy"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// EventsListResponse represents the response for GET /stop-work.
type EventsListResponse struct {
	Events []EventResponse `json:"events"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ActiveEventsResponse represents the response for GET /stop-work/active.
type ActiveEventsResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}

// AuditEntryResponse represents one audit trail entry.
type AuditEntryResponse struct {
	ID              int64     `json:"id"`
	Action          string    `json:"action"`
	Description     string    `json:"description"`
	PerformedBy     string    `json:"performedBy"`
	PerformedByRole string    `json:"performedByRole"`
	PerformedAt     time.Time `json:"performedAt"`
	OldStatus       *string   `json:"oldStatus"`
	NewStatus       *string   `json:"newStatus"`
	StepNumber      *int      `json:"stepNumber,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// AuditTrailResponse represents the response for GET /stop-work/{id}/audit.
type AuditTrailResponse struct {
	EventID string               `json:"eventId"`
	Entries []AuditEntryResponse `json:"entries"`
}

// BlockingEventResponse is one reason a resource is blocked.
type BlockingEventResponse struct {
	EventID     string `json:"eventId"`
	EventNumber string `json:"eventNumber"`
	Reason      string `json:"reason"`
	Severity    string `json:"severity"`
}

// BlockedItemResponse is a blocked resource and the events blocking it.
type BlockedItemResponse struct {
	ID        string                  `json:"id"`
	BlockedBy []BlockingEventResponse `json:"blockedBy"`
}

// BlockedResourcesResponse represents GET /stop-work/blocked-resources and
// every message on the blocked-resource feed.
type BlockedResourcesResponse struct {
	Revision    int64                 `json:"revision"`
	GeneratedAt time.Time             `json:"generatedAt"`
	WorkCenters []BlockedItemResponse `json:"workCenters"`
	Assets      []BlockedItemResponse `json:"assets"`
	Jobs        []BlockedItemResponse `json:"jobs"`
	Areas       []BlockedItemResponse `json:"areas"`
	Locations   []BlockedItemResponse `json:"locations"`
	Operations  []BlockedItemResponse `json:"operations"`
}

// BlockedCheckResponse answers a single dispatch check (?kind=&id=).
type BlockedCheckResponse struct {
	Revision  int64                   `json:"revision"`
	Kind      string                  `json:"kind"`
	ID        string                  `json:"id"`
	Blocked   bool                    `json:"blocked"`
	BlockedBy []BlockingEventResponse `json:"blockedBy"`
}

// ReasonCodeResponse represents one taxonomy entry.
type ReasonCodeResponse struct {
	Code  string                 `json:"code"`
	Label string                 `json:"label"`
	Steps []StepTemplateResponse `json:"steps"`
}

// StepTemplateResponse represents a step a reason code will instantiate.
type StepTemplateResponse struct {
	StepNumber   int    `json:"stepNumber"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	RequiredRole string `json:"requiredRole"`
}

// StatsResponse represents stop-work statistics.
type StatsResponse struct {
	Period            string         `json:"period"`
	PeriodStart       time.Time      `json:"periodStart"`
	PeriodEnd         time.Time      `json:"periodEnd"`
	Initiated         int            `json:"initiated"`
	Cleared           int            `json:"cleared"`
	Active            int            `json:"active"`
	Escalated         int            `json:"escalated"`
	Overdue           int            `json:"overdue"`
	AvgMinutesToClear float64        `json:"avgMinutesToClear"`
	EventsByStatus    map[string]int `json:"eventsByStatus"`
	ActiveBySeverity  map[string]int `json:"activeBySeverity"`
	Reasons           []ReasonStats  `json:"reasons"`
}

// ReasonStats represents statistics for a single reason code.
type ReasonStats struct {
	ReasonCode        string  `json:"reasonCode"`
	Initiated         int     `json:"initiated"`
	Cleared           int     `json:"cleared"`
	AvgMinutesToClear float64 `json:"avgMinutesToClear"`
}

func actorRef(id *string, role *domain.Role) *ActorRef {
	if id == nil {
		return nil
	}
	ref := &ActorRef{ID: *id}
	if role != nil {
		ref.Role = string(*role)
	}
	return ref
}

func statusPtr(s *domain.EventStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// ToEventResponse converts domain.Event to EventResponse.
func ToEventResponse(e *domain.Event, isOverdue bool) EventResponse {
	resp := EventResponse{
		ID:               e.ID,
		EventNumber:      e.EventNumber,
		ScopeType:        string(e.ScopeType),
		ScopeID:          e.ScopeID,
		ScopeDescription: e.ScopeDescription,
		ReasonCode:       e.ReasonCode,
		Severity:         string(e.Severity),
		Description:      e.Description,
		Status:           string(e.Status),
		InitiatedBy:      ActorRef{ID: e.InitiatedBy, Role: string(e.InitiatedByRole)},
		InitiatedAt:      e.InitiatedAt,
		ClearedBy:        actorRef(e.ClearedBy, e.ClearedByRole),
		ClearedAt:        e.ClearedAt,
		EscalatedAt:      e.EscalatedAt,
		RejectionCount:   e.RejectionCount,
		Revision:         e.Revision,
		UpdatedAt:        e.UpdatedAt,
		IsOverdue:        isOverdue,
		ClearanceSteps:   make([]StepResponse, 0, len(e.Steps)),
		Evidence:         make([]EvidenceResponse, 0, len(e.Evidence)),
	}

	if current := e.CurrentStep(); current != nil {
		n := current.StepNumber
		resp.CurrentStep = &n
	}

	for _, s := range e.Steps {
		resp.ClearanceSteps = append(resp.ClearanceSteps, StepResponse{
			StepNumber:   s.StepNumber,
			Title:        s.Title,
			Description:  s.Description,
			RequiredRole: string(s.RequiredRole),
			Status:       string(s.Status),
			CompletedBy:  actorRef(s.CompletedBy, s.CompletedByRole),
			CompletedAt:  s.CompletedAt,
			Notes:        s.Notes,
		})
	}

	for _, ev := range e.Evidence {
		resp.Evidence = append(resp.Evidence, EvidenceResponse{
			ID:           ev.ID,
			EvidenceType: string(ev.Type),
			Description:  ev.Description,
			FileRef:      ev.FileRef,
			ContentType:  ev.ContentType,
			StepNumber:   ev.StepNumber,
			UploadedBy:   ActorRef{ID: ev.UploadedBy, Role: string(ev.UploadedByRole)},
			UploadedAt:   ev.UploadedAt,
		})
	}

	return resp
}

// ToAuditTrailResponse converts an event's audit entries.
func ToAuditTrailResponse(eventID string, entries []*domain.AuditEntry) AuditTrailResponse {
	resp := AuditTrailResponse{
		EventID: eventID,
		Entries: make([]AuditEntryResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, AuditEntryResponse{
			ID:              entry.ID,
			Action:          string(entry.Action),
			Description:     entry.Description,
			PerformedBy:     entry.PerformedBy,
			PerformedByRole: string(entry.PerformedByRole),
			PerformedAt:     entry.PerformedAt,
			OldStatus:       statusPtr(entry.OldStatus),
			NewStatus:       statusPtr(entry.NewStatus),
			StepNumber:      entry.StepNumber,
			Notes:           entry.Notes,
		})
	}
	return resp
}

func toBlockingEvents(in []domain.BlockingEvent) []BlockingEventResponse {
	out := make([]BlockingEventResponse, 0, len(in))
	for _, b := range in {
		out = append(out, BlockingEventResponse{
			EventID:     b.EventID,
			EventNumber: b.EventNumber,
			Reason:      string(b.Reason),
			Severity:    string(b.Severity),
		})
	}
	return out
}

func toBlockedItems(items []domain.BlockedItem) []BlockedItemResponse {
	out := make([]BlockedItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, BlockedItemResponse{
			ID:        item.ResourceID,
			BlockedBy: toBlockingEvents(item.BlockedBy),
		})
	}
	return out
}

// ToBlockedResourcesResponse converts the blocked view. Every kind is
// present, empty kinds as [] so consumers never see null.
func ToBlockedResourcesResponse(v *domain.BlockedResourceView) BlockedResourcesResponse {
	return BlockedResourcesResponse{
		Revision:    v.Revision,
		GeneratedAt: v.GeneratedAt,
		WorkCenters: toBlockedItems(v.Resources[domain.ScopeTypeWorkCenter]),
		Assets:      toBlockedItems(v.Resources[domain.ScopeTypeAsset]),
		Jobs:        toBlockedItems(v.Resources[domain.ScopeTypeJob]),
		Areas:       toBlockedItems(v.Resources[domain.ScopeTypeArea]),
		Locations:   toBlockedItems(v.Resources[domain.ScopeTypeLocation]),
		Operations:  toBlockedItems(v.Resources[domain.ScopeTypeOperation]),
	}
}

// ToBlockedCheckResponse answers whether one resource is blocked.
func ToBlockedCheckResponse(v *domain.BlockedResourceView, kind domain.ScopeType, id string) BlockedCheckResponse {
	blockers := v.Lookup(kind, id)
	return BlockedCheckResponse{
		Revision:  v.Revision,
		Kind:      string(kind),
		ID:        id,
		Blocked:   len(blockers) > 0,
		BlockedBy: toBlockingEvents(blockers),
	}
}

// ToReasonCodeResponse converts a taxonomy entry.
func ToReasonCodeResponse(r *taxonomy.Reason) ReasonCodeResponse {
	resp := ReasonCodeResponse{
		Code:  r.Code,
		Label: r.Label,
		Steps: make([]StepTemplateResponse, 0, len(r.Steps)),
	}
	for i, s := range r.Steps {
		resp.Steps = append(resp.Steps, StepTemplateResponse{
			StepNumber:   i + 1,
			Title:        s.Title,
			Description:  s.Description,
			RequiredRole: string(s.RequiredRole),
		})
	}
	return resp
}
