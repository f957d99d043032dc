package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mtlprog/stopwork/internal/domain"
)

// severityRank orders CRITICAL first.
const severityRank = "CASE severity WHEN 'CRITICAL' THEN 1 WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 3 WHEN 'LOW' THEN 4 END"

// sortableEventFields maps public sort keys to SQL expressions.
var sortableEventFields = map[string]string{
	"initiated_at": "initiated_at",
	"updated_at":   "updated_at",
	"event_number": "event_number",
	"severity":     severityRank,
	"status":       "status",
}

// EventListFilters holds all supported filters for event listing.
type EventListFilters struct {
	Statuses    []string   // Optional: filter by status
	Severities  []string   // Optional: filter by severity
	ScopeType   *string    // Optional: filter by scope type
	ScopeID     *string    // Optional: filter by scope id (usually with ScopeType)
	ReasonCode  *string    // Optional: filter by reason code
	InitiatedBy *string    // Optional: filter by initiator id
	ActiveOnly  bool       // Optional: exclude CLEARED events
	Since       *time.Time // Optional: initiated at or after
	Until       *time.Time // Optional: initiated before
	Sort        []string   // Optional: sort fields (with - prefix for DESC)
	Limit       int        // Required: page size
	Offset      int        // Required: page offset

	// OverdueCutoffs keeps only active events initiated before the cutoff for their severity.
	OverdueCutoffs map[domain.Severity]time.Time
}

// IsSortable reports whether key (with or without a - prefix) is a known sort field.
func IsSortable(key string) bool {
	_, ok := sortableEventFields[strings.TrimPrefix(key, "-")]
	return ok
}

func (f EventListFilters) apply(qb sq.SelectBuilder) sq.SelectBuilder {
	if len(f.Statuses) > 0 {
		qb = qb.Where(sq.Eq{"status": f.Statuses})
	}
	if len(f.Severities) > 0 {
		qb = qb.Where(sq.Eq{"severity": f.Severities})
	}
	if f.ScopeType != nil {
		qb = qb.Where(sq.Eq{"scope_type": *f.ScopeType})
	}
	if f.ScopeID != nil {
		qb = qb.Where(sq.Eq{"scope_id": *f.ScopeID})
	}
	if f.ReasonCode != nil {
		qb = qb.Where(sq.Eq{"reason_code": *f.ReasonCode})
	}
	if f.InitiatedBy != nil {
		qb = qb.Where(sq.Eq{"initiated_by": *f.InitiatedBy})
	}
	if f.ActiveOnly {
		qb = qb.Where(sq.NotEq{"status": domain.EventStatusCleared})
	}
	if f.Since != nil {
		qb = qb.Where(sq.GtOrEq{"initiated_at": *f.Since})
	}
	if f.Until != nil {
		qb = qb.Where(sq.Lt{"initiated_at": *f.Until})
	}
	if len(f.OverdueCutoffs) > 0 {
		overdue := sq.Or{}
		for severity, cutoff := range f.OverdueCutoffs {
			overdue = append(overdue, sq.And{
				sq.Eq{"severity": severity},
				sq.Lt{"initiated_at": cutoff},
			})
		}
		qb = qb.Where(sq.NotEq{"status": domain.EventStatusCleared}).Where(overdue)
	}
	return qb
}

// List retrieves events with filters and pagination, plus the unpaginated total.
// Steps and evidence are attached to every returned event.
func (r *EventRepository) List(ctx context.Context, filters EventListFilters) ([]*domain.Event, int, error) {
	qb := filters.apply(psql.Select(eventColumns...).From("events"))

	// Default: newest first
	if len(filters.Sort) == 0 {
		qb = qb.OrderBy("initiated_at DESC")
	}
	for _, sort := range filters.Sort {
		dir := " ASC"
		if strings.HasPrefix(sort, "-") {
			dir = " DESC"
			sort = sort[1:]
		}
		expr, ok := sortableEventFields[sort]
		if !ok {
			continue
		}
		qb = qb.OrderBy(expr + dir)
	}
	qb = qb.OrderBy("event_number ASC")

	qb = qb.Limit(uint64(filters.Limit)).Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query events: %w", err)
	}

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := filters.apply(psql.Select("COUNT(*)").From("events")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	if err := r.loadChildren(ctx, r.pool, events); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
