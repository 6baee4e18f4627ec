package keydate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dates abstracts repository operations for the service.
type Dates interface {
	GetByID(ctx context.Context, id string) (KeyDate, error)
	Create(ctx context.Context, kd KeyDate) (KeyDate, error)
	ListForTransaction(ctx context.Context, transactionID string) ([]KeyDate, error)
	MarkCompleted(ctx context.Context, id string) (KeyDate, error)
}

// Dated pairs a key date with its urgency at read time.
type Dated struct {
	KeyDate
	Status Status
}

// Service derives urgency over persisted key dates. The clock is injected so
// scenarios stay deterministic.
type Service struct {
	repo   Dates
	policy Policy
	now    func() time.Time
	idGen  func() string
}

// NewService builds a key date service with the given policy.
func NewService(repo Dates, policy Policy) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		now:    time.Now,
		idGen:  func() string { return uuid.NewString() },
	}
}

// WithClock overrides the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateParams enumerates the fields for a new key date.
type CreateParams struct {
	TransactionID    string
	Label            string
	TargetAt         time.Time
	Critical         bool
	ReminderLeadDays []int
}

// Create records a new key date.
func (s *Service) Create(ctx context.Context, params CreateParams) (KeyDate, error) {
	if params.TransactionID == "" {
		return KeyDate{}, fmt.Errorf("keydate: transaction id required")
	}
	if strings.TrimSpace(params.Label) == "" {
		return KeyDate{}, fmt.Errorf("keydate: label required")
	}
	if params.TargetAt.IsZero() {
		return KeyDate{}, fmt.Errorf("keydate: target timestamp required")
	}
	for _, d := range params.ReminderLeadDays {
		if d < 0 {
			return KeyDate{}, fmt.Errorf("keydate: negative reminder lead %d", d)
		}
	}
	return s.repo.Create(ctx, KeyDate{
		ID:               s.idGen(),
		TransactionID:    params.TransactionID,
		Label:            params.Label,
		TargetAt:         params.TargetAt,
		Critical:         params.Critical,
		ReminderLeadDays: params.ReminderLeadDays,
	})
}

// List returns the transaction's key dates with urgency computed against the
// injected clock.
func (s *Service) List(ctx context.Context, transactionID string) ([]Dated, error) {
	dates, err := s.repo.ListForTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]Dated, 0, len(dates))
	for _, kd := range dates {
		out = append(out, Dated{KeyDate: kd, Status: s.policy.StatusOf(now, kd)})
	}
	return out, nil
}

// MarkCompleted records completion, a one-way fact.
func (s *Service) MarkCompleted(ctx context.Context, id string) (KeyDate, error) {
	return s.repo.MarkCompleted(ctx, id)
}
