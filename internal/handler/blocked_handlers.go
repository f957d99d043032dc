package handler

import (
	"net/http"

	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/handler/dto"
)

// handleBlockedResources returns the blocked resource set, or answers a
// single check when kind and id are given.
// @Summary Blocked resources
// @Description Every resource currently blocked by an active stop-work event. With kind and id, answers whether that one resource is blocked.
// @Tags dispatch
// @Produce json
// @Param kind query string false "Resource kind: WORK_CENTER, ASSET, JOB, AREA, LOCATION, OPERATION"
// @Param id query string false "Resource id, required with kind"
// @Success 200 {object} dto.BlockedResourcesResponse
// @Success 200 {object} dto.BlockedCheckResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work/blocked-resources [get]
func (h *Handler) handleBlockedResources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	kind, id := query.Get("kind"), query.Get("id")
	if (kind == "") != (id == "") {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "kind and id must be given together")
		return
	}
	if kind != "" && !domain.ScopeType(kind).IsValid() {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown resource kind: "+kind)
		return
	}

	view, err := h.service.BlockedResources(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load blocked resources")
		return
	}

	if kind != "" {
		respondJSON(w, http.StatusOK, dto.ToBlockedCheckResponse(view, domain.ScopeType(kind), id))
		return
	}
	respondJSON(w, http.StatusOK, dto.ToBlockedResourcesResponse(view))
}
