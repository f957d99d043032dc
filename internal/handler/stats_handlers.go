package handler

import (
	"net/http"
	"time"

	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/handler/dto"
)

// handleGetStats returns stop-work statistics.
// @Summary Get statistics
// @Description Counts, clearance times and per-reason breakdown for a given period
// @Tags stats
// @Produce json
// @Param period query string false "Period: day, week (default), month, all"
// @Param scope_type query string false "Filter by scope type"
// @Success 200 {object} dto.StatsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stop-work/stats [get]
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse period parameter
	query := r.URL.Query()
	period := query.Get("period")
	if period == "" {
		period = "week"
	}

	// Calculate period boundaries
	now := h.service.Now()
	var periodStart time.Time
	switch period {
	case "day":
		periodStart = now.AddDate(0, 0, -1)
	case "week":
		periodStart = now.AddDate(0, 0, -7)
	case "month":
		periodStart = now.AddDate(0, -1, 0)
	case "all":
		periodStart = time.Time{} // Beginning of time
	default:
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid period, must be: day, week, month, all")
		return
	}

	// Parse scope_type filter
	var scopeTypeFilter *string
	if scopeType := query.Get("scope_type"); scopeType != "" {
		if !domain.ScopeType(scopeType).IsValid() {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown scope type: "+scopeType)
			return
		}
		scopeTypeFilter = &scopeType
	}

	stats, err := h.service.Stats(ctx, periodStart, scopeTypeFilter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch stats")
		return
	}

	// Build response
	reasons := make([]dto.ReasonStats, len(stats.Reasons))
	for i, rs := range stats.Reasons {
		reasons[i] = dto.ReasonStats{
			ReasonCode:        rs.ReasonCode,
			Initiated:         rs.Initiated,
			Cleared:           rs.Cleared,
			AvgMinutesToClear: rs.AvgClearSeconds / 60,
		}
	}

	response := dto.StatsResponse{
		Period:            period,
		PeriodStart:       stats.PeriodStart,
		PeriodEnd:         stats.PeriodEnd,
		Initiated:         stats.Events.InitiatedInPeriod,
		Cleared:           stats.Events.ClearedInPeriod,
		Active:            stats.Events.ActiveCount,
		Escalated:         stats.Events.EscalatedCount,
		Overdue:           stats.Overdue,
		AvgMinutesToClear: stats.Events.AvgClearSeconds / 60,
		EventsByStatus:    stats.Events.EventsByStatus,
		ActiveBySeverity:  stats.Events.ActiveBySeverity,
		Reasons:           reasons,
	}

	respondJSON(w, http.StatusOK, response)
}
