package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/mtlprog/stopwork/internal/domain"
)

var stepColumns = []string{
	"id", "event_id", "step_number", "title", "description", "required_role",
	"status", "completed_by", "completed_by_role", "completed_at", "notes",
}

func (r *EventRepository) insertSteps(ctx context.Context, tx pgx.Tx, steps []domain.ClearanceStep) error {
	if len(steps) == 0 {
		return nil
	}

	qb := psql.Insert("clearance_steps").Columns(stepColumns...)
	for _, s := range steps {
		qb = qb.Values(
			s.ID, s.EventID, s.StepNumber, s.Title, s.Description, s.RequiredRole,
			s.Status, s.CompletedBy, s.CompletedByRole, s.CompletedAt, s.Notes,
		)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build insert steps query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert clearance steps: %w", err)
	}
	return nil
}

// SaveSteps writes the status and completion fields of the given steps, in order.
// Callers pass the completed step before the one moving to IN_PROGRESS.
func (r *EventRepository) SaveSteps(ctx context.Context, tx pgx.Tx, steps ...*domain.ClearanceStep) error {
	for _, s := range steps {
		query, args, err := psql.
			Update("clearance_steps").
			Set("status", s.Status).
			Set("completed_by", s.CompletedBy).
			Set("completed_by_role", s.CompletedByRole).
			Set("completed_at", s.CompletedAt).
			Set("notes", s.Notes).
			Where(sq.Eq{
				"event_id":    s.EventID,
				"step_number": s.StepNumber,
			}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build SaveSteps query for step %d: %w", s.StepNumber, err)
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update clearance step %d: %w", s.StepNumber, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: step %d of event %s", domain.ErrStepNotFound, s.StepNumber, s.EventID)
		}
	}
	return nil
}

func (r *EventRepository) listSteps(ctx context.Context, db DBTX, eventIDs []string) ([]domain.ClearanceStep, error) {
	query, args, err := psql.
		Select(stepColumns...).
		From("clearance_steps").
		Where(sq.Eq{"event_id": eventIDs}).
		OrderBy("event_id", "step_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build listSteps query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clearance steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.ClearanceStep
	for rows.Next() {
		var s domain.ClearanceStep
		err := rows.Scan(
			&s.ID,
			&s.EventID,
			&s.StepNumber,
			&s.Title,
			&s.Description,
			&s.RequiredRole,
			&s.Status,
			&s.CompletedBy,
			&s.CompletedByRole,
			&s.CompletedAt,
			&s.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan clearance step: %w", err)
		}
		steps = append(steps, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return steps, nil
}
