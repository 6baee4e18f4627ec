package transaction

import (
	"context"
	"errors"
	"fmt"

	"dealflow/pipeline"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the pgx-backed Store implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed store implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID fetches a transaction by its primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (Transaction, error) {
	const query = `
		SELECT id, pipeline_kind, current_stage, contact_id, property_id, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	var txn Transaction
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&txn.ID,
		&txn.Kind,
		&txn.CurrentStage,
		&txn.ContactID,
		&txn.PropertyID,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, fmt.Errorf("transaction: query by id: %w", err)
	}
	return txn, nil
}

// UpdateStageIfCurrent writes the new stage, conditioned on the persisted
// stage still equalling from. Losing the race surfaces ErrStaleTransition;
// a missing row surfaces ErrNotFound.
func (r *Repository) UpdateStageIfCurrent(ctx context.Context, id string, from, to pipeline.Stage) error {
	const update = `
		UPDATE transactions
		SET current_stage = $3,
		    updated_at = now()
		WHERE id = $1 AND current_stage = $2
	`
	tag, err := r.pool.Exec(ctx, update, id, from, to)
	if err != nil {
		return fmt.Errorf("transaction: update stage: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id=$1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("transaction: verify existence: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStaleTransition
}

// ApplyTransition writes the conditioned stage update and the transition
// record in one database transaction. The stage update's row lock serializes
// concurrent appliers per transaction, so record order always follows stage
// order.
func (r *Repository) ApplyTransition(ctx context.Context, rec TransitionRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("transaction: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const update = `
		UPDATE transactions
		SET current_stage = $3,
		    updated_at = now()
		WHERE id = $1 AND current_stage = $2
	`
	tag, err := tx.Exec(ctx, update, rec.TransactionID, rec.FromStage, rec.ToStage)
	if err != nil {
		return fmt.Errorf("transaction: update stage: %w", err)
	}
	if tag.RowsAffected() != 1 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id=$1)`, rec.TransactionID).Scan(&exists); err != nil {
			return fmt.Errorf("transaction: verify existence: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStaleTransition
	}

	const insert = `
		INSERT INTO stage_transitions (id, transaction_id, seq, from_stage, to_stage, actor_id, reason, created_at)
		SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4, $5, $6, $7
		FROM stage_transitions
		WHERE transaction_id = $2
	`
	if _, err := tx.Exec(ctx, insert,
		rec.ID,
		rec.TransactionID,
		rec.FromStage,
		rec.ToStage,
		rec.ActorID,
		rec.Reason,
		rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("transaction: append record: %w", err)
	}

	return tx.Commit(ctx)
}

// AppendRecord inserts a transition record with the next per-transaction
// sequence number. Records are never updated or deleted.
func (r *Repository) AppendRecord(ctx context.Context, rec TransitionRecord) error {
	const insert = `
		INSERT INTO stage_transitions (id, transaction_id, seq, from_stage, to_stage, actor_id, reason, created_at)
		SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4, $5, $6, $7
		FROM stage_transitions
		WHERE transaction_id = $2
	`
	if _, err := r.pool.Exec(ctx, insert,
		rec.ID,
		rec.TransactionID,
		rec.FromStage,
		rec.ToStage,
		rec.ActorID,
		rec.Reason,
		rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("transaction: append record: %w", err)
	}
	return nil
}

// ListRecords returns the transition records for a transaction in sequence
// order.
func (r *Repository) ListRecords(ctx context.Context, transactionID string) ([]TransitionRecord, error) {
	const query = `
		SELECT id, transaction_id, seq, from_stage, to_stage, actor_id, reason, created_at
		FROM stage_transitions
		WHERE transaction_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction: list records: %w", err)
	}
	defer rows.Close()

	out := make([]TransitionRecord, 0, 8)
	for rows.Next() {
		var rec TransitionRecord
		if err := rows.Scan(&rec.ID, &rec.TransactionID, &rec.Seq, &rec.FromStage, &rec.ToStage, &rec.ActorID, &rec.Reason, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("transaction: scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transaction: iterate records: %w", err)
	}
	return out, nil
}
