package keydate

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the key date does not exist.
	ErrNotFound = errors.New("keydate: not found")
	// ErrAlreadyCompleted signals an attempt to complete a date twice.
	ErrAlreadyCompleted = errors.New("keydate: already completed")
)

// Repository provides access to key dates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed key date repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const keyDateColumns = `
	id, transaction_id, label, target_at, critical, reminder_lead_days,
	completed, completed_at, created_at, updated_at
`

func scanKeyDate(row pgx.Row) (KeyDate, error) {
	var kd KeyDate
	err := row.Scan(
		&kd.ID,
		&kd.TransactionID,
		&kd.Label,
		&kd.TargetAt,
		&kd.Critical,
		&kd.ReminderLeadDays,
		&kd.Completed,
		&kd.CompletedAt,
		&kd.CreatedAt,
		&kd.UpdatedAt,
	)
	return kd, err
}

// GetByID fetches a key date by its primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (KeyDate, error) {
	query := `SELECT ` + keyDateColumns + ` FROM key_dates WHERE id = $1`
	kd, err := scanKeyDate(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return KeyDate{}, ErrNotFound
		}
		return KeyDate{}, fmt.Errorf("keydate: query by id: %w", err)
	}
	return kd, nil
}

// Create inserts a new key date.
func (r *Repository) Create(ctx context.Context, kd KeyDate) (KeyDate, error) {
	query := `
		INSERT INTO key_dates (id, transaction_id, label, target_at, critical, reminder_lead_days)
		VALUES ($1,$2,$3,$4,$5,COALESCE($6,'{}'::int[]))
		RETURNING ` + keyDateColumns
	out, err := scanKeyDate(r.pool.QueryRow(ctx, query,
		kd.ID,
		kd.TransactionID,
		kd.Label,
		kd.TargetAt,
		kd.Critical,
		kd.ReminderLeadDays,
	))
	if err != nil {
		return KeyDate{}, fmt.Errorf("keydate: create: %w", err)
	}
	return out, nil
}

// ListForTransaction returns the key dates for a transaction ordered by
// target timestamp.
func (r *Repository) ListForTransaction(ctx context.Context, transactionID string) ([]KeyDate, error) {
	query := `SELECT ` + keyDateColumns + ` FROM key_dates WHERE transaction_id = $1 ORDER BY target_at ASC`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("keydate: list: %w", err)
	}
	defer rows.Close()

	out := make([]KeyDate, 0, 8)
	for rows.Next() {
		kd, err := scanKeyDate(rows)
		if err != nil {
			return nil, fmt.Errorf("keydate: scan: %w", err)
		}
		out = append(out, kd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keydate: iterate: %w", err)
	}
	return out, nil
}

// MarkCompleted records completion as a one-way, explicit fact.
func (r *Repository) MarkCompleted(ctx context.Context, id string) (KeyDate, error) {
	query := `
		UPDATE key_dates
		SET completed = TRUE,
		    completed_at = now(),
		    updated_at = now()
		WHERE id = $1 AND completed = FALSE
		RETURNING ` + keyDateColumns
	kd, err := scanKeyDate(r.pool.QueryRow(ctx, query, id))
	if err == nil {
		return kd, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return KeyDate{}, fmt.Errorf("keydate: mark completed: %w", err)
	}

	var completed bool
	if err := r.pool.QueryRow(ctx, `SELECT completed FROM key_dates WHERE id=$1`, id).Scan(&completed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return KeyDate{}, ErrNotFound
		}
		return KeyDate{}, fmt.Errorf("keydate: mark completed fetch: %w", err)
	}
	if completed {
		return KeyDate{}, ErrAlreadyCompleted
	}
	return KeyDate{}, ErrNotFound
}
