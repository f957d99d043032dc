package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/handler/dto"
	"github.com/mtlprog/stopwork/internal/report"
	"github.com/mtlprog/stopwork/internal/repository"
	"github.com/mtlprog/stopwork/internal/service"
)

// handleCreateEvent initiates a stop-work event.
// @Summary Initiate stop work
// @Description Creates a stop-work event, instantiates the clearance steps of its reason code and blocks its scope.
// @Tags stop-work
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event creation request"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work [post]
func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	// Parse request body
	var req dto.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	event, err := h.service.CreateEvent(ctx, service.CreateEventInput{
		ScopeType:        domain.ScopeType(req.ScopeType),
		ScopeID:          req.ScopeID,
		ScopeDescription: req.ScopeDescription,
		ReasonCode:       req.ReasonCode,
		Severity:         domain.Severity(req.Severity),
		Description:      req.Description,
	}, actor)

	h.respondEvent(w, http.StatusCreated, event, err)
}

// handleGetEvent retrieves one event with its steps and evidence.
// @Summary Get stop-work event
// @Tags stop-work
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work/{id} [get]
func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, ok := extractEventID(w, r)
	if !ok {
		return
	}

	event, err := h.service.GetEvent(ctx, eventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToEventResponse(event, h.service.SLA().IsOverdue(event, h.service.Now())))
}

// handleGetActiveEvents lists every event that is not CLEARED.
// @Summary List active stop-work events
// @Tags stop-work
// @Produce json
// @Success 200 {object} dto.ActiveEventsResponse
// @Security BearerAuth
// @Router /stop-work/active [get]
func (h *Handler) handleGetActiveEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.service.GetActiveEvents(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ActiveEventsResponse{
		Events: h.toEventResponses(events),
		Count:  len(events),
	})
}

// handleListEvents lists events with filters and pagination.
// @Summary List stop-work events
// @Tags stop-work
// @Produce json
// @Param status query string false "Comma-separated statuses: ACTIVE,ESCALATED"
// @Param severity query string false "Comma-separated severities: HIGH,CRITICAL"
// @Param scope_type query string false "Scope type"
// @Param scope_id query string false "Scope id"
// @Param reason_code query string false "Reason code"
// @Param initiated_by query string false "'me' or an actor id"
// @Param active query bool false "Exclude CLEARED events"
// @Param overdue query bool false "Only active events past their clearance target"
// @Param sort query string false "Sort fields: -severity,initiated_at"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} dto.EventsListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work [get]
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	filters, err := parseListFilters(r, actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	events, total, err := h.service.ListEvents(ctx, repository.EventListFilters{
		Statuses:    filters.Status,
		Severities:  filters.Severity,
		ScopeType:   filters.ScopeType,
		ScopeID:     filters.ScopeID,
		ReasonCode:  filters.ReasonCode,
		InitiatedBy: filters.InitiatedBy,
		ActiveOnly:  filters.Active,
		Sort:        filters.Sort,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
	}, filters.Overdue)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list events")
		return
	}

	respondJSON(w, http.StatusOK, dto.EventsListResponse{
		Events: h.toEventResponses(events),
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// parseListFilters reads and validates the list query parameters.
func parseListFilters(r *http.Request, actor domain.Actor) (dto.ListEventsFilters, error) {
	query := r.URL.Query()
	filters := dto.ListEventsFilters{Limit: 50}

	// Parse statuses (comma-separated)
	if statusParam := query.Get("status"); statusParam != "" {
		filters.Status = splitAndTrim(statusParam, ",")
		for _, s := range filters.Status {
			if !domain.EventStatus(s).IsValid() {
				return filters, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, s)
			}
		}
	}

	// Parse severities (comma-separated)
	if severityParam := query.Get("severity"); severityParam != "" {
		filters.Severity = splitAndTrim(severityParam, ",")
		for _, s := range filters.Severity {
			if !domain.Severity(s).IsValid() {
				return filters, fmt.Errorf("%w: %q", domain.ErrInvalidSeverity, s)
			}
		}
	}

	if scopeType := query.Get("scope_type"); scopeType != "" {
		if !domain.ScopeType(scopeType).IsValid() {
			return filters, fmt.Errorf("%w: %q", domain.ErrUnknownScopeType, scopeType)
		}
		filters.ScopeType = &scopeType
	}
	if scopeID := query.Get("scope_id"); scopeID != "" {
		filters.ScopeID = &scopeID
	}
	if reasonCode := query.Get("reason_code"); reasonCode != "" {
		filters.ReasonCode = &reasonCode
	}

	// Parse initiator
	if initiatedBy := query.Get("initiated_by"); initiatedBy != "" {
		if initiatedBy == "me" {
			initiatedBy = actor.ID
		}
		filters.InitiatedBy = &initiatedBy
	}

	// Parse boolean filters
	filters.Active = query.Get("active") == "true"
	filters.Overdue = query.Get("overdue") == "true"

	// Parse sort (comma-separated)
	if sortParam := query.Get("sort"); sortParam != "" {
		filters.Sort = splitAndTrim(sortParam, ",")
		for _, key := range filters.Sort {
			if !repository.IsSortable(key) {
				return filters, fmt.Errorf("%w: cannot sort by %q", domain.ErrValidation, key)
			}
		}
	}

	// Parse pagination
	if limitParam := query.Get("limit"); limitParam != "" {
		n, err := strconv.Atoi(limitParam)
		if err != nil || n < 1 || n > 200 {
			return filters, fmt.Errorf("%w: limit must be between 1 and 200", domain.ErrValidation)
		}
		filters.Limit = n
	}
	if offsetParam := query.Get("offset"); offsetParam != "" {
		n, err := strconv.Atoi(offsetParam)
		if err != nil || n < 0 {
			return filters, fmt.Errorf("%w: offset must be a non-negative integer", domain.ErrValidation)
		}
		filters.Offset = n
	}

	return filters, nil
}

// handleCompleteStep completes the current clearance step.
// @Summary Complete clearance step
// @Description Completes step n. Steps complete strictly in order and only by their required role.
// @Tags clearance
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param n path int true "Step number"
// @Param request body dto.CompleteStepRequest false "Completion notes"
// @Success 200 {object} dto.EventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work/{id}/steps/{n}/complete [post]
func (h *Handler) handleCompleteStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	eventID, ok := extractEventID(w, r)
	if !ok {
		return
	}

	stepNumber, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || stepNumber < 1 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "step number must be a positive integer")
		return
	}

	// Body is optional
	var req dto.CompleteStepRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	event, err := h.service.CompleteStep(ctx, eventID, stepNumber, actor, req.Notes)
	h.respondEvent(w, http.StatusOK, event, err)
}

// handleAddEvidence attaches evidence to an event.
// @Summary Add evidence
// @Description Attaches a photo or document. Send JSON with a fileRef, or multipart/form-data with a "file" part when object storage is configured.
// @Tags clearance
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.AddEvidenceRequest false "Evidence reference"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work/{id}/evidence [post]
func (h *Handler) handleAddEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	eventID, ok := extractEventID(w, r)
	if !ok {
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.handleUploadEvidence(w, r, eventID, actor)
		return
	}

	var req dto.AddEvidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	event, err := h.service.AddEvidence(ctx, eventID, service.EvidenceInput{
		Type:        domain.EvidenceType(req.EvidenceType),
		Description: req.Description,
		FileRef:     req.FileRef,
		StepNumber:  req.StepNumber,
	}, actor)
	h.respondEvent(w, http.StatusCreated, event, err)
}

func (h *Handler) handleUploadEvidence(w http.ResponseWriter, r *http.Request, eventID string, actor domain.Actor) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxEvidenceBytes+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", fmt.Sprintf("evidence file exceeds %d bytes", h.maxEvidenceBytes))
			return
		}
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "multipart evidence needs a file part")
		return
	}
	defer file.Close()

	if fileHeader.Size > h.maxEvidenceBytes {
		respondError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", fmt.Sprintf("evidence file exceeds %d bytes", h.maxEvidenceBytes))
		return
	}

	in := service.EvidenceInput{
		Type:        domain.EvidenceType(r.FormValue("evidenceType")),
		Description: r.FormValue("description"),
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	if step := r.FormValue("stepNumber"); step != "" {
		n, err := strconv.Atoi(step)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "stepNumber must be an integer")
			return
		}
		in.StepNumber = &n
	}

	event, err := h.service.UploadEvidence(ctx, eventID, in, fileHeader.Filename, file, fileHeader.Size, actor)
	h.respondEvent(w, http.StatusCreated, event, err)
}

// handleRequestApproval returns a fully completed event to PENDING_APPROVAL.
// @Summary Request clearance approval
// @Tags clearance
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work/{id}/request-approval [post]
func (h *Handler) handleRequestApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	eventID, ok := extractEventID(w, r)
	if !ok {
		return
	}

	event, err := h.service.RequestApproval(ctx, eventID, actor)
	h.respondEvent(w, http.StatusOK, event, err)
}

// handleClearance records the approval decision.
// @Summary Decide clearance
// @Description APPROVE clears the event and releases its resources. REJECT returns it to mitigation and needs notes.
// @Tags clearance
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.ClearanceRequest true "Decision"
// @Success 200 {object} dto.EventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work/{id}/clearance [post]
func (h *Handler) handleClearance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	eventID, ok := extractEventID(w, r)
	if !ok {
		return
	}

	var req dto.ClearanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	event, err := h.service.Decide(ctx, eventID, actor, domain.Decision(strings.ToUpper(req.Decision)), req.Notes)
	h.respondEvent(w, http.StatusOK, event, err)
}

// handleGetAuditTrail lists the audit entries of an event.
// @Summary Get audit trail
// @Tags audit
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.AuditTrailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work/{id}/audit [get]
func (h *Handler) handleGetAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, ok := extractEventID(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListAuditTrail(ctx, eventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToAuditTrailResponse(eventID, entries))
}

// handleGetReport renders the clearance record PDF.
// @Summary Clearance record
// @Tags audit
// @Produce application/pdf
// @Param id path string true "Event ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work/{id}/report.pdf [get]
func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, ok := extractEventID(w, r)
	if !ok {
		return
	}

	event, err := h.service.GetEvent(ctx, eventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	entries, err := h.service.ListAuditTrail(ctx, eventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	pdf, err := report.ClearanceRecord(event, entries, h.service.Now())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, event.EventNumber))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// handleListReasonCodes lists the reason-code taxonomy.
// @Summary List reason codes
// @Tags stop-work
// @Produce json
// @Success 200 {array} dto.ReasonCodeResponse
// @Security BearerAuth
// @Router /stop-work/reason-codes [get]
func (h *Handler) handleListReasonCodes(w http.ResponseWriter, r *http.Request) {
	reasons := h.service.Catalog().List()

	response := make([]dto.ReasonCodeResponse, len(reasons))
	for i, reason := range reasons {
		response[i] = dto.ToReasonCodeResponse(reason)
	}

	respondJSON(w, http.StatusOK, response)
}

func (h *Handler) toEventResponses(events []*domain.Event) []dto.EventResponse {
	now := h.service.Now()
	sla := h.service.SLA()

	response := make([]dto.EventResponse, len(events))
	for i, e := range events {
		response[i] = dto.ToEventResponse(e, sla.IsOverdue(e, now))
	}
	return response
}

// decodeOptionalJSON decodes the body into v unless it is empty.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// splitAndTrim splits a string by delimiter and trims whitespace.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
