package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/stopwork/internal/domain"
)

// BlockedRepository maintains the materialized blocked set.
// Every write happens inside the transaction of the transition that caused it.
type BlockedRepository struct {
	pool *pgxpool.Pool
}

// NewBlockedRepository creates a new BlockedRepository.
func NewBlockedRepository(pool *pgxpool.Pool) *BlockedRepository {
	return &BlockedRepository{pool: pool}
}

// ReplaceForEvent swaps the event's contribution for rows.
func (r *BlockedRepository) ReplaceForEvent(ctx context.Context, tx pgx.Tx, eventID string, rows []domain.BlockedResource) error {
	if err := r.DeleteForEvent(ctx, tx, eventID); err != nil {
		return err
	}
	return r.insert(ctx, tx, rows, "")
}

// AddForEvent inserts rows, keeping whatever the event already contributes.
// Used when job resolution failed and the previous contribution must survive.
func (r *BlockedRepository) AddForEvent(ctx context.Context, tx pgx.Tx, rows []domain.BlockedResource) error {
	return r.insert(ctx, tx, rows, "ON CONFLICT (resource_kind, resource_id, event_id) DO NOTHING")
}

// DeleteForEvent removes every row the event contributes.
func (r *BlockedRepository) DeleteForEvent(ctx context.Context, tx pgx.Tx, eventID string) error {
	query, args, err := psql.
		Delete("blocked_resources").
		Where(sq.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build DeleteForEvent query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete blocked resources of event %s: %w", eventID, err)
	}
	return nil
}

func (r *BlockedRepository) insert(ctx context.Context, tx pgx.Tx, rows []domain.BlockedResource, suffix string) error {
	if len(rows) == 0 {
		return nil
	}

	qb := psql.
		Insert("blocked_resources").
		Columns("resource_kind", "resource_id", "event_id", "reason")
	for _, row := range rows {
		qb = qb.Values(row.Kind, row.ResourceID, row.EventID, row.Reason)
	}
	if suffix != "" {
		qb = qb.Suffix(suffix)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build insert blocked resources query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert blocked resources: %w", err)
	}
	return nil
}

// BumpRevision increments the blocked set revision and returns the new value.
// The single state row stays locked until tx ends, which orders all transitions.
func (r *BlockedRepository) BumpRevision(ctx context.Context, tx pgx.Tx) (int64, error) {
	query, args, err := psql.
		Update("blocked_set_state").
		Set("revision", sq.Expr("revision + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": 1}).
		Suffix("RETURNING revision").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build BumpRevision query: %w", err)
	}

	var revision int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&revision); err != nil {
		return 0, fmt.Errorf("bump blocked set revision: %w", err)
	}
	return revision, nil
}

// Snapshot reads the blocked set and its revision from one consistent snapshot.
func (r *BlockedRepository) Snapshot(ctx context.Context) (*domain.BlockedResourceView, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback snapshot transaction", "error", err)
		}
	}()

	var revision int64
	err = tx.QueryRow(ctx, `SELECT revision FROM blocked_set_state WHERE id = 1`).Scan(&revision)
	if err != nil {
		return nil, fmt.Errorf("read blocked set revision: %w", err)
	}

	query, args, err := psql.
		Select("b.resource_kind", "b.resource_id", "b.event_id", "e.event_number", "e.severity", "b.reason").
		From("blocked_resources b").
		Join("events e ON e.id = b.event_id").
		OrderBy("b.resource_kind", "b.resource_id", "e.event_number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Snapshot query: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query blocked resources: %w", err)
	}
	defer rows.Close()

	var resources []domain.BlockedResource
	for rows.Next() {
		var br domain.BlockedResource
		if err := rows.Scan(&br.Kind, &br.ResourceID, &br.EventID, &br.EventNumber, &br.Severity, &br.Reason); err != nil {
			return nil, fmt.Errorf("scan blocked resource: %w", err)
		}
		resources = append(resources, br)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return domain.BuildBlockedView(revision, time.Now().UTC(), resources), nil
}
