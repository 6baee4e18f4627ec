package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidStatusTransition signals a status move outside the match
	// state machine.
	ErrInvalidStatusTransition = errors.New("match: invalid status transition")
	// ErrRejectionReason signals a rejection attempted without a reason.
	ErrRejectionReason = errors.New("match: rejection requires a non-empty reason")
	// ErrUnknownStatus signals a status value outside the closed set.
	ErrUnknownStatus = errors.New("match: unknown status")
	// ErrNotFound signals the match does not exist.
	ErrNotFound = errors.New("match: not found")
)

// Store is the persistence collaborator for matches.
type Store interface {
	GetByID(ctx context.Context, id string) (Match, error)
	Create(ctx context.Context, m Match) (Match, error)
	UpdateStatus(ctx context.Context, id string, status Status, rejectionReason *string) (Match, error)
	UpdateScore(ctx context.Context, id string, overall int, b Breakdown) (Match, error)
	ListForBrief(ctx context.Context, briefID string) ([]Match, error)
}

// Service orchestrates match creation, rescoring and status changes.
type Service struct {
	store  Store
	scorer *Scorer
	now    func() time.Time
	idGen  func() string
}

// NewService builds a match service with the given store and scorer.
func NewService(store Store, scorer *Scorer) *Service {
	if scorer == nil {
		scorer = NewScorer(DefaultWeights())
	}
	return &Service{
		store:  store,
		scorer: scorer,
		now:    time.Now,
		idGen:  func() string { return uuid.NewString() },
	}
}

// CreateParams enumerates the fields required to record a new match.
type CreateParams struct {
	PropertyID string
	BriefID    string
	Breakdown  Breakdown
	AgentNotes *string
}

// Create records a new match in status new with its derived overall score.
func (s *Service) Create(ctx context.Context, params CreateParams) (Match, error) {
	if params.PropertyID == "" || params.BriefID == "" {
		return Match{}, fmt.Errorf("match: property and brief ids required")
	}
	overall, err := s.scorer.Score(params.Breakdown)
	if err != nil {
		return Match{}, err
	}
	m := Match{
		ID:         s.idGen(),
		PropertyID: params.PropertyID,
		BriefID:    params.BriefID,
		Overall:    overall,
		Breakdown:  params.Breakdown,
		Status:     StatusNew,
		AgentNotes: params.AgentNotes,
		CreatedAt:  s.now(),
		UpdatedAt:  s.now(),
	}
	return s.store.Create(ctx, m)
}

// UpdateStatusParams enumerates one attempted status change.
type UpdateStatusParams struct {
	MatchID         string
	NewStatus       Status
	RejectionReason *string
	ActorID         string
}

// UpdateStatus applies one status change after checking the match state
// machine. Rejection requires a non-empty reason; rejected is terminal.
// Status changes never alter the score.
func (s *Service) UpdateStatus(ctx context.Context, params UpdateStatusParams) (Match, error) {
	if !validStatus(params.NewStatus) {
		return Match{}, fmt.Errorf("%w: %q", ErrUnknownStatus, params.NewStatus)
	}

	m, err := s.store.GetByID(ctx, params.MatchID)
	if err != nil {
		return Match{}, err
	}
	if m.Status == params.NewStatus {
		return m, nil
	}
	if !canTransition(m.Status, params.NewStatus) {
		return Match{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, m.Status, params.NewStatus)
	}

	var reason *string
	if params.NewStatus == StatusRejected {
		if params.RejectionReason == nil || strings.TrimSpace(*params.RejectionReason) == "" {
			return Match{}, ErrRejectionReason
		}
		reason = params.RejectionReason
	}

	return s.store.UpdateStatus(ctx, params.MatchID, params.NewStatus, reason)
}

// Rescore recomputes the overall score from a new breakdown and persists
// score and breakdown together, so the stored overall can never diverge from
// its derivation.
func (s *Service) Rescore(ctx context.Context, matchID string, b Breakdown) (Match, error) {
	overall, err := s.scorer.Score(b)
	if err != nil {
		return Match{}, err
	}
	return s.store.UpdateScore(ctx, matchID, overall, b)
}

// ListForBrief returns the matches recorded against a client brief.
func (s *Service) ListForBrief(ctx context.Context, briefID string) ([]Match, error) {
	return s.store.ListForBrief(ctx, briefID)
}
