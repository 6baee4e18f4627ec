package diligence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the checklist or item does not exist.
	ErrNotFound = errors.New("diligence: not found")
)

// Repository persists checklists and keeps the derived completion fields
// consistent with the items inside a single transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed checklist repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a checklist with its items in position order.
func (r *Repository) Get(ctx context.Context, checklistID string) (Checklist, error) {
	const headSQL = `
		SELECT id, transaction_id, jurisdiction, property_type, completion_pct, status, created_at, updated_at
		FROM dd_checklists
		WHERE id = $1
	`
	var cl Checklist
	err := r.pool.QueryRow(ctx, headSQL, checklistID).Scan(
		&cl.ID,
		&cl.TransactionID,
		&cl.Jurisdiction,
		&cl.PropertyType,
		&cl.CompletionPct,
		&cl.Status,
		&cl.CreatedAt,
		&cl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Checklist{}, ErrNotFound
		}
		return Checklist{}, fmt.Errorf("diligence: query checklist: %w", err)
	}

	items, err := r.listItems(ctx, r.pool, checklistID)
	if err != nil {
		return Checklist{}, err
	}
	cl.Items = items
	return cl, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repository) listItems(ctx context.Context, q queryer, checklistID string) ([]Item, error) {
	const itemSQL = `
		SELECT id, checklist_id, category, status, assignee_role, blocking, critical,
		       due_at, completed_at, document_refs, position, created_at, updated_at
		FROM dd_items
		WHERE checklist_id = $1
		ORDER BY position ASC
	`
	rows, err := q.Query(ctx, itemSQL, checklistID)
	if err != nil {
		return nil, fmt.Errorf("diligence: list items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0, 16)
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID,
			&it.ChecklistID,
			&it.Category,
			&it.Status,
			&it.AssigneeRole,
			&it.Blocking,
			&it.Critical,
			&it.DueAt,
			&it.CompletedAt,
			&it.DocumentRefs,
			&it.Position,
			&it.CreatedAt,
			&it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("diligence: scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("diligence: iterate items: %w", err)
	}
	return items, nil
}

// SetItemStatusParams enumerates one item status change.
type SetItemStatusParams struct {
	ItemID      string
	Status      ItemStatus
	CompletedAt *time.Time
}

// SetItemStatus updates one item and rewrites the checklist's derived fields
// from the full item set, all inside one transaction so readers never observe
// a checklist whose completion disagrees with its items.
func (r *Repository) SetItemStatus(ctx context.Context, params SetItemStatusParams) (Summary, error) {
	if !validItemStatus(params.Status) {
		return Summary{}, fmt.Errorf("%w: %q", ErrUnknownItemStatus, params.Status)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("diligence: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var checklistID string
	if err := tx.QueryRow(ctx, `SELECT checklist_id FROM dd_items WHERE id=$1 FOR UPDATE`, params.ItemID).Scan(&checklistID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Summary{}, ErrNotFound
		}
		return Summary{}, fmt.Errorf("diligence: lock item: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT 1 FROM dd_checklists WHERE id=$1 FOR UPDATE`, checklistID); err != nil {
		return Summary{}, fmt.Errorf("diligence: lock checklist: %w", err)
	}

	completedAt := params.CompletedAt
	if params.Status == ItemCompleted && completedAt == nil {
		now := time.Now().UTC()
		completedAt = &now
	}
	if _, err := tx.Exec(ctx, `
		UPDATE dd_items
		SET status = $2,
		    completed_at = $3,
		    updated_at = now()
		WHERE id = $1
	`, params.ItemID, params.Status, completedAt); err != nil {
		return Summary{}, fmt.Errorf("diligence: update item: %w", err)
	}

	items, err := r.listItems(ctx, tx, checklistID)
	if err != nil {
		return Summary{}, err
	}
	summary, err := Recompute(items)
	if err != nil {
		return Summary{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE dd_checklists
		SET completion_pct = $2,
		    status = $3,
		    updated_at = now()
		WHERE id = $1
	`, checklistID, summary.CompletionPct, summary.Status); err != nil {
		return Summary{}, fmt.Errorf("diligence: update checklist: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Summary{}, fmt.Errorf("diligence: commit: %w", err)
	}
	return summary, nil
}

// AddItem appends an item at the next position and refreshes the checklist's
// derived fields in the same transaction.
func (r *Repository) AddItem(ctx context.Context, item Item) (Item, error) {
	if !validItemStatus(item.Status) {
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownItemStatus, item.Status)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("diligence: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT 1 FROM dd_checklists WHERE id=$1 FOR UPDATE`, item.ChecklistID); err != nil {
		return Item{}, fmt.Errorf("diligence: lock checklist: %w", err)
	}

	const insertSQL = `
		INSERT INTO dd_items (id, checklist_id, category, status, assignee_role, blocking, critical, due_at, document_refs, position)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, '{}'::text[]), COALESCE(MAX(position), 0) + 1
		FROM dd_items
		WHERE checklist_id = $2
		RETURNING id, checklist_id, category, status, assignee_role, blocking, critical,
		          due_at, completed_at, document_refs, position, created_at, updated_at
	`
	var out Item
	if err := tx.QueryRow(ctx, insertSQL,
		item.ID,
		item.ChecklistID,
		item.Category,
		item.Status,
		item.AssigneeRole,
		item.Blocking,
		item.Critical,
		item.DueAt,
		item.DocumentRefs,
	).Scan(
		&out.ID,
		&out.ChecklistID,
		&out.Category,
		&out.Status,
		&out.AssigneeRole,
		&out.Blocking,
		&out.Critical,
		&out.DueAt,
		&out.CompletedAt,
		&out.DocumentRefs,
		&out.Position,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return Item{}, fmt.Errorf("diligence: insert item: %w", err)
	}

	items, err := r.listItems(ctx, tx, item.ChecklistID)
	if err != nil {
		return Item{}, err
	}
	summary, err := Recompute(items)
	if err != nil {
		return Item{}, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE dd_checklists
		SET completion_pct = $2, status = $3, updated_at = now()
		WHERE id = $1
	`, item.ChecklistID, summary.CompletionPct, summary.Status); err != nil {
		return Item{}, fmt.Errorf("diligence: refresh checklist: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Item{}, fmt.Errorf("diligence: commit: %w", err)
	}
	return out, nil
}
