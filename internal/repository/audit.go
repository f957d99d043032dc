package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/stopwork/internal/domain"
)

// AuditRepository handles the append-only audit trail.
// It offers no update or delete; the table trigger rejects both anyway.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Append writes an audit entry inside the transition's transaction
// and fills its sequence id.
func (r *AuditRepository) Append(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error {
	query, args, err := psql.
		Insert("audit_entries").
		Columns(
			"event_id", "action", "description", "performed_by", "performed_by_role",
			"performed_at", "old_status", "new_status", "step_number", "notes", "payload",
		).
		Values(
			entry.EventID, entry.Action, entry.Description, entry.PerformedBy, entry.PerformedByRole,
			entry.PerformedAt, entry.OldStatus, entry.NewStatus, entry.StepNumber, entry.Notes, payloadArg(entry),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}

	return nil
}

// ListByEvent returns the trail of one event in append order.
func (r *AuditRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.AuditEntry, error) {
	query, args, err := psql.
		Select(
			"id", "event_id", "action", "description", "performed_by", "performed_by_role",
			"performed_at", "old_status", "new_status", "step_number", "notes", "payload",
		).
		From("audit_entries").
		Where(sq.Eq{"event_id": eventID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var payload []byte
		err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.Action,
			&entry.Description,
			&entry.PerformedBy,
			&entry.PerformedByRole,
			&entry.PerformedAt,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.StepNumber,
			&entry.Notes,
			&payload,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.Payload = payload
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}

// payloadArg keeps empty payloads as SQL NULL rather than invalid JSONB.
func payloadArg(entry *domain.AuditEntry) any {
	if len(entry.Payload) == 0 {
		return nil
	}
	return string(entry.Payload)
}
