package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dealflow/diligence"
	"dealflow/match"
	"dealflow/offer"
	"dealflow/pipeline"
	"dealflow/transaction"
)

// StageMover reads the transaction's current stage and races a random legal
// move against the other movers. Losing the conditioned update surfaces as
// ErrStaleTransition, which is expected under contention and simply retried
// from a fresh read.
func StageMover(ctx context.Context, pool *pgxpool.Pool, transactionID, actorID string, stop <-chan struct{}) error {
	repo := transaction.NewRepository(pool)
	svc := transaction.NewService(repo)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		txn, err := repo.GetByID(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("mover read: %w", err)
		}
		g, err := pipeline.GraphFor(txn.Kind)
		if err != nil {
			return err
		}

		var nexts []pipeline.Stage
		for _, candidate := range g.Stages() {
			if g.CanTransition(txn.CurrentStage, candidate) {
				nexts = append(nexts, candidate)
			}
		}
		if len(nexts) == 0 {
			// Terminal stage; nothing left to race over.
			return nil
		}

		_, err = svc.Transition(ctx, transaction.TransitionParams{
			TransactionID: transactionID,
			Kind:          txn.Kind,
			FromStage:     txn.CurrentStage,
			ToStage:       nexts[rand.Intn(len(nexts))],
			ActorID:       actorID,
		})
		if err != nil && !errors.Is(err, transaction.ErrStaleTransition) {
			return fmt.Errorf("mover transition: %w", err)
		}
		time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
	}
}

// RoundWriter appends negotiation rounds and records a response on each one
// it creates, never revisiting earlier rounds.
func RoundWriter(ctx context.Context, pool *pgxpool.Pool, offerID string, stop <-chan struct{}) error {
	svc := offer.NewService(offer.NewRepository(pool))
	responses := []offer.Response{offer.ResponseCountered, offer.ResponseRejected, offer.ResponseAccepted}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		amount := int64(90_000_000 + rand.Intn(20_000_000))
		rd, err := svc.AddRound(ctx, offer.RoundParams{OfferID: offerID, AmountCents: amount})
		if err != nil {
			return fmt.Errorf("round writer append: %w", err)
		}

		resp := responses[rand.Intn(len(responses))]
		var counter *int64
		if resp == offer.ResponseCountered {
			c := amount + int64(1+rand.Intn(5_000_000))
			counter = &c
		}
		if _, err := svc.SetRoundResponse(ctx, rd.ID, resp, counter); err != nil {
			return fmt.Errorf("round writer respond: %w", err)
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

// Rescorer rewrites a match's breakdown with random component scores so the
// stored overall score is recomputed continuously under concurrent readers.
func Rescorer(ctx context.Context, pool *pgxpool.Pool, matchID string, stop <-chan struct{}) error {
	svc := match.NewService(match.NewRepository(pool), match.NewScorer(match.DefaultWeights()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		b := match.Breakdown{
			Price:    rand.Intn(101),
			Location: rand.Intn(101),
			Size:     rand.Intn(101),
			Feature:  rand.Intn(101),
		}
		if rand.Intn(2) == 0 {
			inv := rand.Intn(101)
			b.Investor = &inv
		}
		if _, err := svc.Rescore(ctx, matchID, b); err != nil {
			return fmt.Errorf("rescorer: %w", err)
		}
		time.Sleep(time.Duration(15+rand.Intn(30)) * time.Millisecond)
	}
}

// ItemTicker flips checklist item statuses at random so the checklist's
// derived completion fields are constantly rewritten while oracles read them.
func ItemTicker(ctx context.Context, pool *pgxpool.Pool, itemIDs []string, stop <-chan struct{}) error {
	repo := diligence.NewRepository(pool)
	statuses := []diligence.ItemStatus{
		diligence.ItemNotStarted,
		diligence.ItemInProgress,
		diligence.ItemCompleted,
		diligence.ItemIssueFound,
		diligence.ItemNotApplicable,
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		params := diligence.SetItemStatusParams{
			ItemID: itemIDs[rand.Intn(len(itemIDs))],
			Status: statuses[rand.Intn(len(statuses))],
		}
		if _, err := repo.SetItemStatus(ctx, params); err != nil {
			return fmt.Errorf("item ticker: %w", err)
		}
		time.Sleep(time.Duration(25+rand.Intn(50)) * time.Millisecond)
	}
}
