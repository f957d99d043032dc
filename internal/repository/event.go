package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/stopwork/internal/domain"
)

// eventColumns is the shared list of columns for event queries.
var eventColumns = []string{
	"id", "event_number", "scope_type", "scope_id", "scope_description",
	"reason_code", "severity", "description", "status",
	"initiated_by", "initiated_by_role", "initiated_at",
	"cleared_by", "cleared_by_role", "cleared_at", "escalated_at",
	"rejection_count", "revision", "updated_at",
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EventRepository handles database operations for stop-work events
// and the steps and evidence they own.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// scanEvent scans a single row into an Event struct.
func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.EventNumber,
		&e.ScopeType,
		&e.ScopeID,
		&e.ScopeDescription,
		&e.ReasonCode,
		&e.Severity,
		&e.Description,
		&e.Status,
		&e.InitiatedBy,
		&e.InitiatedByRole,
		&e.InitiatedAt,
		&e.ClearedBy,
		&e.ClearedByRole,
		&e.ClearedAt,
		&e.EscalatedAt,
		&e.RejectionCount,
		&e.Revision,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of Event structs.
func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return events, nil
}

// Create inserts the event together with its clearance steps.
func (r *EventRepository) Create(ctx context.Context, tx pgx.Tx, e *domain.Event) error {
	query, args, err := psql.
		Insert("events").
		Columns(eventColumns...).
		Values(
			e.ID, e.EventNumber, e.ScopeType, e.ScopeID, e.ScopeDescription,
			e.ReasonCode, e.Severity, e.Description, e.Status,
			e.InitiatedBy, e.InitiatedByRole, e.InitiatedAt,
			e.ClearedBy, e.ClearedByRole, e.ClearedAt, e.EscalatedAt,
			e.RejectionCount, e.Revision, e.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for event: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return r.insertSteps(ctx, tx, e.Steps)
}

// GetByID retrieves an event with its steps and evidence.
func (r *EventRepository) GetByID(ctx context.Context, eventID string) (*domain.Event, error) {
	return r.get(ctx, r.pool, eventID, "")
}

// GetByIDForUpdate retrieves an event with FOR UPDATE lock (within transaction).
// Concurrent writers on the same event queue here and then see fresh state.
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, eventID string) (*domain.Event, error) {
	return r.get(ctx, tx, eventID, "FOR UPDATE")
}

func (r *EventRepository) get(ctx context.Context, db DBTX, eventID, suffix string) (*domain.Event, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, eventID)
	}

	qb := psql.
		Select(eventColumns...).
		From("events").
		Where(sq.Eq{"id": eventID})
	if suffix != "" {
		qb = qb.Suffix(suffix)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query for event %s: %w", eventID, err)
	}

	e, err := scanEvent(db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, db, []*domain.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// ListActive returns every event that is not CLEARED, newest first.
func (r *EventRepository) ListActive(ctx context.Context) ([]*domain.Event, error) {
	query, args, err := psql.
		Select(eventColumns...).
		From("events").
		Where(sq.NotEq{"status": domain.EventStatusCleared}).
		OrderBy("initiated_at DESC", "event_number DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListActive query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active events: %w", err)
	}

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, r.pool, events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListIDs returns the id of every event ever recorded, oldest first.
func (r *EventRepository) ListIDs(ctx context.Context) ([]string, error) {
	query, args, err := psql.
		Select("id").
		From("events").
		OrderBy("initiated_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListIDs query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query event ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect event ids: %w", err)
	}
	return ids, nil
}

// SaveState writes the mutable event fields with optimistic locking.
// Returns ErrConcurrentModification if the stored revision is not expectedRevision.
func (r *EventRepository) SaveState(ctx context.Context, tx pgx.Tx, e *domain.Event, expectedRevision int64) error {
	query, args, err := psql.
		Update("events").
		Set("status", e.Status).
		Set("cleared_by", e.ClearedBy).
		Set("cleared_by_role", e.ClearedByRole).
		Set("cleared_at", e.ClearedAt).
		Set("escalated_at", e.EscalatedAt).
		Set("rejection_count", e.RejectionCount).
		Set("revision", e.Revision).
		Set("updated_at", e.UpdatedAt).
		Where(sq.Eq{
			"id":       e.ID,
			"revision": expectedRevision,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build SaveState query for event %s: %w", e.ID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update event state: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: event %s revision %d", domain.ErrConcurrentModification, e.ID, expectedRevision)
	}

	return nil
}

// NextEventNumber allocates the next human-readable number for the year,
// e.g. SWA-2026-0042. The counter row lock serializes concurrent creates.
func (r *EventRepository) NextEventNumber(ctx context.Context, tx pgx.Tx, year int) (string, error) {
	query, args, err := psql.
		Insert("event_counters").
		Columns("year", "last_value").
		Values(year, 1).
		Suffix("ON CONFLICT (year) DO UPDATE SET last_value = event_counters.last_value + 1 RETURNING last_value").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build NextEventNumber query: %w", err)
	}

	var seq int
	if err := tx.QueryRow(ctx, query, args...).Scan(&seq); err != nil {
		return "", fmt.Errorf("allocate event number: %w", err)
	}

	return fmt.Sprintf("SWA-%d-%04d", year, seq), nil
}

// loadChildren attaches steps and evidence to the given events.
func (r *EventRepository) loadChildren(ctx context.Context, db DBTX, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Event, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	steps, err := r.listSteps(ctx, db, ids)
	if err != nil {
		return err
	}
	for _, s := range steps {
		if e, ok := byID[s.EventID]; ok {
			e.Steps = append(e.Steps, s)
		}
	}

	evidence, err := r.listEvidence(ctx, db, ids)
	if err != nil {
		return err
	}
	for _, ev := range evidence {
		if e, ok := byID[ev.EventID]; ok {
			e.Evidence = append(e.Evidence, ev)
		}
	}

	return nil
}
