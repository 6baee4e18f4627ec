package match

import (
	"context"
	"errors"
	"testing"
)

func TestUpdateStatusHappyPath(t *testing.T) {
	store := newFakeStore(Match{ID: "m1", Status: StatusNew, Overall: 75})
	svc := NewService(store, nil)
	ctx := context.Background()

	steps := []Status{StatusSentToClient, StatusClientInterested, StatusInspectionBooked}
	for _, next := range steps {
		m, err := svc.UpdateStatus(ctx, UpdateStatusParams{MatchID: "m1", NewStatus: next, ActorID: "agent-1"})
		if err != nil {
			t.Fatalf("-> %s: %v", next, err)
		}
		if m.Status != next {
			t.Fatalf("status = %s, want %s", m.Status, next)
		}
	}
}

func TestUpdateStatusRejectsIllegalMoves(t *testing.T) {
	cases := []struct {
		current Status
		next    Status
	}{
		{StatusNew, StatusClientInterested},
		{StatusNew, StatusInspectionBooked},
		{StatusSentToClient, StatusInspectionBooked},
		{StatusUnderReview, StatusSentToClient},
		{StatusInspectionBooked, StatusClientInterested},
	}
	for _, c := range cases {
		store := newFakeStore(Match{ID: "m1", Status: c.current})
		svc := NewService(store, nil)
		_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{MatchID: "m1", NewStatus: c.next, ActorID: "agent-1"})
		if !errors.Is(err, ErrInvalidStatusTransition) {
			t.Errorf("%s -> %s: expected ErrInvalidStatusTransition, got %v", c.current, c.next, err)
		}
	}
}

func TestRejectionRequiresReason(t *testing.T) {
	store := newFakeStore(Match{ID: "m1", Status: StatusSentToClient})
	svc := NewService(store, nil)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, UpdateStatusParams{MatchID: "m1", NewStatus: StatusRejected, ActorID: "agent-1"})
	if !errors.Is(err, ErrRejectionReason) {
		t.Fatalf("expected ErrRejectionReason, got %v", err)
	}

	blank := "   "
	_, err = svc.UpdateStatus(ctx, UpdateStatusParams{MatchID: "m1", NewStatus: StatusRejected, RejectionReason: &blank, ActorID: "agent-1"})
	if !errors.Is(err, ErrRejectionReason) {
		t.Fatalf("blank reason: expected ErrRejectionReason, got %v", err)
	}

	reason := "too far from schools"
	m, err := svc.UpdateStatus(ctx, UpdateStatusParams{MatchID: "m1", NewStatus: StatusRejected, RejectionReason: &reason, ActorID: "agent-1"})
	if err != nil {
		t.Fatalf("reject with reason: %v", err)
	}
	if m.Status != StatusRejected || m.RejectionReason == nil || *m.RejectionReason != reason {
		t.Fatalf("unexpected match after rejection: %+v", m)
	}
}

func TestRejectedIsTerminal(t *testing.T) {
	store := newFakeStore(Match{ID: "m1", Status: StatusRejected})
	svc := NewService(store, nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{MatchID: "m1", NewStatus: StatusSentToClient, ActorID: "agent-1"})
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition out of rejected, got %v", err)
	}
}

func TestRejectionReachableFromAnyNonTerminal(t *testing.T) {
	reason := "client bought elsewhere"
	for _, current := range []Status{StatusNew, StatusSentToClient, StatusClientInterested, StatusInspectionBooked, StatusUnderReview} {
		store := newFakeStore(Match{ID: "m1", Status: current})
		svc := NewService(store, nil)
		if _, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{MatchID: "m1", NewStatus: StatusRejected, RejectionReason: &reason, ActorID: "agent-1"}); err != nil {
			t.Errorf("reject from %s: %v", current, err)
		}
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := newFakeStore(Match{ID: "m1", Status: StatusNew})
	svc := NewService(store, nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{MatchID: "m1", NewStatus: "archived", ActorID: "agent-1"})
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestStatusChangeNeverAltersScore(t *testing.T) {
	store := newFakeStore(Match{ID: "m1", Status: StatusNew, Overall: 91})
	svc := NewService(store, nil)

	m, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{MatchID: "m1", NewStatus: StatusSentToClient, ActorID: "agent-1"})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if m.Overall != 91 {
		t.Fatalf("status change altered score: %d", m.Overall)
	}
}

func TestRescoreWritesDerivedOverall(t *testing.T) {
	store := newFakeStore(Match{ID: "m1", Status: StatusSentToClient, Overall: 10})
	svc := NewService(store, nil)

	m, err := svc.Rescore(context.Background(), "m1", Breakdown{Price: 80, Location: 90, Size: 70, Feature: 60})
	if err != nil {
		t.Fatalf("rescore: %v", err)
	}
	if m.Overall != 75 {
		t.Fatalf("overall = %d, want 75", m.Overall)
	}
	if m.Status != StatusSentToClient {
		t.Fatalf("rescore must not touch status, got %s", m.Status)
	}
}

func TestRescoreRejectsBadBreakdownBeforeWrite(t *testing.T) {
	store := newFakeStore(Match{ID: "m1", Status: StatusNew})
	svc := NewService(store, nil)

	_, err := svc.Rescore(context.Background(), "m1", Breakdown{Price: 200, Location: 50, Size: 50, Feature: 50})
	if !errors.Is(err, ErrScoreOutOfRange) {
		t.Fatalf("expected ErrScoreOutOfRange, got %v", err)
	}
	if store.scoreWrites != 0 {
		t.Fatal("no write may happen for an out-of-range breakdown")
	}
}

type fakeStore struct {
	matches     map[string]Match
	scoreWrites int
}

func newFakeStore(seed ...Match) *fakeStore {
	f := &fakeStore{matches: make(map[string]Match)}
	for _, m := range seed {
		f.matches[m.ID] = m
	}
	return f
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return Match{}, ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) Create(ctx context.Context, m Match) (Match, error) {
	f.matches[m.ID] = m
	return m, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id string, status Status, rejectionReason *string) (Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return Match{}, ErrNotFound
	}
	m.Status = status
	if rejectionReason != nil {
		m.RejectionReason = rejectionReason
	}
	f.matches[id] = m
	return m, nil
}

func (f *fakeStore) UpdateScore(ctx context.Context, id string, overall int, b Breakdown) (Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return Match{}, ErrNotFound
	}
	m.Overall = overall
	m.Breakdown = b
	f.matches[id] = m
	f.scoreWrites++
	return m, nil
}

func (f *fakeStore) ListForBrief(ctx context.Context, briefID string) ([]Match, error) {
	out := make([]Match, 0, len(f.matches))
	for _, m := range f.matches {
		if m.BriefID == briefID {
			out = append(out, m)
		}
	}
	return out, nil
}
