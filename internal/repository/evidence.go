package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/mtlprog/stopwork/internal/domain"
)

var evidenceColumns = []string{
	"id", "event_id", "step_number", "evidence_type", "description", "file_ref",
	"content_type", "uploaded_by", "uploaded_by_role", "uploaded_at",
}

// AddEvidence inserts an evidence record. Evidence rows are never updated.
func (r *EventRepository) AddEvidence(ctx context.Context, tx pgx.Tx, ev *domain.Evidence) error {
	query, args, err := psql.
		Insert("evidence").
		Columns(evidenceColumns...).
		Values(
			ev.ID, ev.EventID, ev.StepNumber, ev.Type, ev.Description, ev.FileRef,
			ev.ContentType, ev.UploadedBy, ev.UploadedByRole, ev.UploadedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build AddEvidence query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert evidence: %w", err)
	}
	return nil
}

func (r *EventRepository) listEvidence(ctx context.Context, db DBTX, eventIDs []string) ([]domain.Evidence, error) {
	query, args, err := psql.
		Select(evidenceColumns...).
		From("evidence").
		Where(sq.Eq{"event_id": eventIDs}).
		OrderBy("uploaded_at ASC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build listEvidence query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query evidence: %w", err)
	}
	defer rows.Close()

	var items []domain.Evidence
	for rows.Next() {
		var ev domain.Evidence
		err := rows.Scan(
			&ev.ID,
			&ev.EventID,
			&ev.StepNumber,
			&ev.Type,
			&ev.Description,
			&ev.FileRef,
			&ev.ContentType,
			&ev.UploadedBy,
			&ev.UploadedByRole,
			&ev.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		items = append(items, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return items, nil
}
