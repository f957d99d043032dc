package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mtlprog/stopwork/internal/domain"
)

// StatsFilters holds filters for statistics queries.
type StatsFilters struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	ScopeType   *string // Optional: restrict to one scope type
}

// ReasonStatsResult holds counters for a single reason code.
type ReasonStatsResult struct {
	ReasonCode      string
	Initiated       int
	Cleared         int
	AvgClearSeconds float64
}

// EventStatsResult holds overall stop-work statistics.
type EventStatsResult struct {
	InitiatedInPeriod int
	ClearedInPeriod   int
	ActiveCount       int
	EscalatedCount    int
	EventsByStatus    map[string]int
	ActiveBySeverity  map[string]int
	AvgClearSeconds   float64
}

// GetReasonStats aggregates events initiated within the period by reason code.
func (r *EventRepository) GetReasonStats(ctx context.Context, filters StatsFilters) ([]ReasonStatsResult, error) {
	query := `
		SELECT
			reason_code,
			COUNT(*) AS initiated,
			COUNT(CASE WHEN status = 'CLEARED' THEN 1 END) AS cleared,
			COALESCE(AVG(EXTRACT(EPOCH FROM cleared_at - initiated_at)), 0) AS avg_clear_seconds
		FROM events
		WHERE initiated_at >= $1 AND initiated_at <= $2
	`

	args := []interface{}{filters.PeriodStart, filters.PeriodEnd}

	if filters.ScopeType != nil {
		query += " AND scope_type = $3"
		args = append(args, *filters.ScopeType)
	}

	query += " GROUP BY reason_code ORDER BY initiated DESC, reason_code"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reason stats: %w", err)
	}
	defer rows.Close()

	var results []ReasonStatsResult
	for rows.Next() {
		var result ReasonStatsResult
		err := rows.Scan(
			&result.ReasonCode,
			&result.Initiated,
			&result.Cleared,
			&result.AvgClearSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reason stats: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reason stats rows: %w", err)
	}

	return results, nil
}

// GetEventStats retrieves overall statistics for the period and the current state.
func (r *EventRepository) GetEventStats(ctx context.Context, filters StatsFilters) (*EventStatsResult, error) {
	scopeClause := ""
	args := []interface{}{filters.PeriodStart, filters.PeriodEnd}
	if filters.ScopeType != nil {
		scopeClause = " AND scope_type = $3"
		args = append(args, *filters.ScopeType)
	}

	result := &EventStatsResult{
		EventsByStatus:   make(map[string]int),
		ActiveBySeverity: make(map[string]int),
	}

	// Period counters
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(CASE WHEN initiated_at >= $1 AND initiated_at <= $2 THEN 1 END),
			COUNT(CASE WHEN cleared_at >= $1 AND cleared_at <= $2 THEN 1 END),
			COALESCE(AVG(CASE WHEN cleared_at >= $1 AND cleared_at <= $2
				THEN EXTRACT(EPOCH FROM cleared_at - initiated_at) END), 0)
		FROM events
		WHERE TRUE`+scopeClause,
		args...,
	).Scan(&result.InitiatedInPeriod, &result.ClearedInPeriod, &result.AvgClearSeconds)
	if err != nil {
		return nil, fmt.Errorf("count period events: %w", err)
	}

	// Current state, not historical
	stateQuery := `SELECT status, severity, COUNT(*) FROM events`
	var stateArgs []interface{}
	if filters.ScopeType != nil {
		stateQuery += " WHERE scope_type = $1"
		stateArgs = append(stateArgs, *filters.ScopeType)
	}
	stateQuery += " GROUP BY status, severity"

	rows, err := r.pool.Query(ctx, stateQuery, stateArgs...)
	if err != nil {
		return nil, fmt.Errorf("query events by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, severity string
		var count int
		if err := rows.Scan(&status, &severity, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		result.EventsByStatus[status] += count
		if status != string(domain.EventStatusCleared) {
			result.ActiveCount += count
			result.ActiveBySeverity[severity] += count
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status rows: %w", err)
	}

	result.EscalatedCount = result.EventsByStatus[string(domain.EventStatusEscalated)]

	return result, nil
}
