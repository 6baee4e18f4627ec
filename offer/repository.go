package offer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the pgx-backed Store implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed offer repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const offerColumns = `
	id, transaction_id, property_id, client_id, sale_method, status,
	max_price_cents, recommended_cents, walk_away_cents, conditions, settlement_terms,
	created_at, updated_at
`

func scanOffer(row pgx.Row) (Offer, error) {
	var o Offer
	err := row.Scan(
		&o.ID,
		&o.TransactionID,
		&o.PropertyID,
		&o.ClientID,
		&o.SaleMethod,
		&o.Status,
		&o.MaxPriceCents,
		&o.RecommendedCents,
		&o.WalkAwayCents,
		&o.Conditions,
		&o.SettlementTerms,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

// GetByID fetches an offer by its primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	o, err := scanOffer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Offer{}, ErrNotFound
		}
		return Offer{}, fmt.Errorf("offer: query by id: %w", err)
	}
	return o, nil
}

// UpdateStatus writes the offer's coarse status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status) (Offer, error) {
	query := `
		UPDATE offers
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + offerColumns
	o, err := scanOffer(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Offer{}, ErrNotFound
		}
		return Offer{}, fmt.Errorf("offer: update status: %w", err)
	}
	return o, nil
}

const roundColumns = `
	id, offer_id, seq, amount_cents, conditions, response, counter_amount_cents, notes, created_at
`

func scanRound(row pgx.Row) (Round, error) {
	var rd Round
	err := row.Scan(
		&rd.ID,
		&rd.OfferID,
		&rd.Seq,
		&rd.AmountCents,
		&rd.Conditions,
		&rd.Response,
		&rd.CounterAmountCents,
		&rd.Notes,
		&rd.CreatedAt,
	)
	return rd, err
}

// AppendRound inserts a round with the next per-offer sequence number.
func (r *Repository) AppendRound(ctx context.Context, round Round) (Round, error) {
	query := `
		INSERT INTO offer_rounds (id, offer_id, seq, amount_cents, conditions, response, notes, created_at)
		SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, COALESCE($4, '{}'::text[]), $5, $6, $7
		FROM offer_rounds
		WHERE offer_id = $2
		RETURNING ` + roundColumns
	out, err := scanRound(r.pool.QueryRow(ctx, query,
		round.ID,
		round.OfferID,
		round.AmountCents,
		round.Conditions,
		round.Response,
		round.Notes,
		round.CreatedAt,
	))
	if err != nil {
		return Round{}, fmt.Errorf("offer: append round: %w", err)
	}
	return out, nil
}

// SetRoundResponse writes a single round's response. Amount, conditions and
// seq stay immutable.
func (r *Repository) SetRoundResponse(ctx context.Context, roundID string, response Response, counterAmountCents *int64) (Round, error) {
	query := `
		UPDATE offer_rounds
		SET response = $2,
		    counter_amount_cents = $3
		WHERE id = $1
		RETURNING ` + roundColumns
	rd, err := scanRound(r.pool.QueryRow(ctx, query, roundID, response, counterAmountCents))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Round{}, ErrNotFound
		}
		return Round{}, fmt.Errorf("offer: set round response: %w", err)
	}
	return rd, nil
}

// ListRounds returns the offer's rounds in sequence order.
func (r *Repository) ListRounds(ctx context.Context, offerID string) ([]Round, error) {
	query := `SELECT ` + roundColumns + ` FROM offer_rounds WHERE offer_id = $1 ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query, offerID)
	if err != nil {
		return nil, fmt.Errorf("offer: list rounds: %w", err)
	}
	defer rows.Close()

	out := make([]Round, 0, 8)
	for rows.Next() {
		rd, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("offer: scan round: %w", err)
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("offer: iterate rounds: %w", err)
	}
	return out, nil
}

// UpsertAuctionEvent creates or updates the single auction event for an
// offer. Uniqueness is enforced by the offer_id primary key.
func (r *Repository) UpsertAuctionEvent(ctx context.Context, ev AuctionEvent) (AuctionEvent, error) {
	const query = `
		INSERT INTO auction_events (offer_id, auction_at, registration_number, bidding_strategy, result, final_price_cents, bidder_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (offer_id) DO UPDATE
		SET auction_at = EXCLUDED.auction_at,
		    registration_number = EXCLUDED.registration_number,
		    bidding_strategy = EXCLUDED.bidding_strategy,
		    result = EXCLUDED.result,
		    final_price_cents = EXCLUDED.final_price_cents,
		    bidder_count = EXCLUDED.bidder_count,
		    updated_at = now()
		RETURNING offer_id, auction_at, registration_number, bidding_strategy, result, final_price_cents, bidder_count, created_at, updated_at
	`
	var out AuctionEvent
	if err := r.pool.QueryRow(ctx, query,
		ev.OfferID,
		ev.AuctionAt,
		ev.RegistrationNumber,
		ev.BiddingStrategy,
		ev.Result,
		ev.FinalPriceCents,
		ev.BidderCount,
	).Scan(
		&out.OfferID,
		&out.AuctionAt,
		&out.RegistrationNumber,
		&out.BiddingStrategy,
		&out.Result,
		&out.FinalPriceCents,
		&out.BidderCount,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return AuctionEvent{}, fmt.Errorf("offer: upsert auction event: %w", err)
	}
	return out, nil
}
