package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealflow/pipeline"

	"github.com/google/uuid"
)

var (
	// ErrStaleTransition signals the persisted stage no longer matches the
	// caller's assumed from-stage. Re-fetch and re-decide; do not retry with
	// the old from-stage.
	ErrStaleTransition = errors.New("transaction: stage changed concurrently")
	// ErrIncompleteWrite signals the stage write succeeded but the transition
	// record write failed. The stage is already correct; only the record
	// append needs a compensating retry.
	ErrIncompleteWrite = errors.New("transaction: transition record write failed after stage write")
	// ErrNotFound signals the transaction does not exist.
	ErrNotFound = errors.New("transaction: not found")
)

// Store is the persistence collaborator the lifecycle service operates
// against. UpdateStageIfCurrent must condition the write on the persisted
// stage still equalling from, returning ErrStaleTransition otherwise.
type Store interface {
	GetByID(ctx context.Context, id string) (Transaction, error)
	UpdateStageIfCurrent(ctx context.Context, id string, from, to pipeline.Stage) error
	AppendRecord(ctx context.Context, rec TransitionRecord) error
	ListRecords(ctx context.Context, transactionID string) ([]TransitionRecord, error)
}

// atomicApplier is an optional Store upgrade: stores that can write the stage
// and the record in one database transaction implement it, which keeps record
// order causal under concurrent movers. Stores without it fall back to the
// two-phase path, where a failed record append surfaces as ErrIncompleteWrite.
type atomicApplier interface {
	ApplyTransition(ctx context.Context, rec TransitionRecord) error
}

// Service orchestrates stage transitions: validate against the pipeline
// graph, write the new stage, append the audit record.
type Service struct {
	store Store
	now   func() time.Time
	idGen func() string
}

// NewService builds a lifecycle service over the given store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		idGen: func() string { return uuid.NewString() },
	}
}

// WithClock overrides the service clock, for deterministic tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Transition attempts a stage move. It fails with
// pipeline.ErrInvalidTransition before touching storage when the move is not
// in the kind's edge set, surfaces ErrStaleTransition from the conditioned
// stage write, and wraps a failed record append in ErrIncompleteWrite rather
// than reporting success.
func (s *Service) Transition(ctx context.Context, params TransitionParams) (TransitionRecord, error) {
	if params.TransactionID == "" {
		return TransitionRecord{}, fmt.Errorf("transaction: transaction id required")
	}
	if params.ActorID == "" {
		return TransitionRecord{}, fmt.Errorf("transaction: actor id required")
	}
	if err := pipeline.Validate(params.Kind, params.FromStage, params.ToStage); err != nil {
		return TransitionRecord{}, err
	}

	rec := TransitionRecord{
		ID:            s.idGen(),
		TransactionID: params.TransactionID,
		FromStage:     params.FromStage,
		ToStage:       params.ToStage,
		ActorID:       params.ActorID,
		Reason:        params.Reason,
		CreatedAt:     s.now(),
	}

	if applier, ok := s.store.(atomicApplier); ok {
		if err := applier.ApplyTransition(ctx, rec); err != nil {
			return TransitionRecord{}, err
		}
		return rec, nil
	}

	if err := s.store.UpdateStageIfCurrent(ctx, params.TransactionID, params.FromStage, params.ToStage); err != nil {
		return TransitionRecord{}, err
	}
	if err := s.store.AppendRecord(ctx, rec); err != nil {
		return rec, fmt.Errorf("%w: %w", ErrIncompleteWrite, err)
	}
	return rec, nil
}

// Replay folds the ordered transition records for a transaction from the
// pipeline's initial stage and returns the stage reached. Used as an audit
// oracle: the result must equal the persisted current stage.
func (s *Service) Replay(ctx context.Context, transactionID string, kind pipeline.Kind) (pipeline.Stage, error) {
	g, err := pipeline.GraphFor(kind)
	if err != nil {
		return "", err
	}
	recs, err := s.store.ListRecords(ctx, transactionID)
	if err != nil {
		return "", err
	}
	current := g.Initial()
	for _, rec := range recs {
		if rec.FromStage != current {
			return "", fmt.Errorf("transaction: record %s replays from %s but history is at %s", rec.ID, rec.FromStage, current)
		}
		current = rec.ToStage
	}
	return current, nil
}
