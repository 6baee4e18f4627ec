package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate signals the property is already matched against the brief.
var ErrDuplicate = errors.New("match: already exists for property and brief")

// Repository is the pgx-backed Store implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed match repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const matchColumns = `
	id, property_id, brief_id, overall_score,
	price_score, location_score, size_score, feature_score, investor_score,
	status, rejection_reason, agent_notes, created_at, updated_at
`

func scanMatch(row pgx.Row) (Match, error) {
	var m Match
	err := row.Scan(
		&m.ID,
		&m.PropertyID,
		&m.BriefID,
		&m.Overall,
		&m.Breakdown.Price,
		&m.Breakdown.Location,
		&m.Breakdown.Size,
		&m.Breakdown.Feature,
		&m.Breakdown.Investor,
		&m.Status,
		&m.RejectionReason,
		&m.AgentNotes,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

// GetByID fetches a match by its primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (Match, error) {
	query := `SELECT ` + matchColumns + ` FROM property_matches WHERE id = $1`
	m, err := scanMatch(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Match{}, ErrNotFound
		}
		return Match{}, fmt.Errorf("match: query by id: %w", err)
	}
	return m, nil
}

// Create inserts a new match.
func (r *Repository) Create(ctx context.Context, m Match) (Match, error) {
	query := `
		INSERT INTO property_matches
			(id, property_id, brief_id, overall_score,
			 price_score, location_score, size_score, feature_score, investor_score,
			 status, agent_notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING ` + matchColumns
	out, err := scanMatch(r.pool.QueryRow(ctx, query,
		m.ID,
		m.PropertyID,
		m.BriefID,
		m.Overall,
		m.Breakdown.Price,
		m.Breakdown.Location,
		m.Breakdown.Size,
		m.Breakdown.Feature,
		m.Breakdown.Investor,
		m.Status,
		m.AgentNotes,
		m.CreatedAt,
		m.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Match{}, ErrDuplicate
		}
		return Match{}, fmt.Errorf("match: create: %w", err)
	}
	return out, nil
}

// UpdateStatus writes the new status and, for rejections, the reason.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, rejectionReason *string) (Match, error) {
	query := `
		UPDATE property_matches
		SET status = $2,
		    rejection_reason = COALESCE($3, rejection_reason),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + matchColumns
	m, err := scanMatch(r.pool.QueryRow(ctx, query, id, status, rejectionReason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Match{}, ErrNotFound
		}
		return Match{}, fmt.Errorf("match: update status: %w", err)
	}
	return m, nil
}

// UpdateScore writes the derived overall score together with the breakdown
// it was derived from.
func (r *Repository) UpdateScore(ctx context.Context, id string, overall int, b Breakdown) (Match, error) {
	query := `
		UPDATE property_matches
		SET overall_score = $2,
		    price_score = $3,
		    location_score = $4,
		    size_score = $5,
		    feature_score = $6,
		    investor_score = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + matchColumns
	m, err := scanMatch(r.pool.QueryRow(ctx, query, id, overall, b.Price, b.Location, b.Size, b.Feature, b.Investor))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Match{}, ErrNotFound
		}
		return Match{}, fmt.Errorf("match: update score: %w", err)
	}
	return m, nil
}

// ListForBrief returns the matches for a client brief, newest first.
func (r *Repository) ListForBrief(ctx context.Context, briefID string) ([]Match, error) {
	query := `SELECT ` + matchColumns + ` FROM property_matches WHERE brief_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, briefID)
	if err != nil {
		return nil, fmt.Errorf("match: list for brief: %w", err)
	}
	defer rows.Close()

	out := make([]Match, 0, 8)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("match: scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match: iterate: %w", err)
	}
	return out, nil
}
