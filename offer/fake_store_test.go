package offer

import (
	"context"
	"time"
)

func testTime() time.Time {
	return time.Date(2026, 7, 18, 10, 0, 0, 0, time.UTC)
}

type fakeStore struct {
	offers        map[string]Offer
	rounds        []Round
	auctions      map[string]AuctionEvent
	auctionWrites int
}

func newFakeStore(seed ...Offer) *fakeStore {
	f := &fakeStore{
		offers:   make(map[string]Offer),
		auctions: make(map[string]AuctionEvent),
	}
	for _, o := range seed {
		f.offers[o.ID] = o
	}
	return f
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (Offer, error) {
	o, ok := f.offers[id]
	if !ok {
		return Offer{}, ErrNotFound
	}
	return o, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id string, status Status) (Offer, error) {
	o, ok := f.offers[id]
	if !ok {
		return Offer{}, ErrNotFound
	}
	o.Status = status
	f.offers[id] = o
	return o, nil
}

func (f *fakeStore) AppendRound(ctx context.Context, round Round) (Round, error) {
	seq := 1
	for _, rd := range f.rounds {
		if rd.OfferID == round.OfferID {
			seq++
		}
	}
	round.Seq = seq
	f.rounds = append(f.rounds, round)
	return round, nil
}

func (f *fakeStore) SetRoundResponse(ctx context.Context, roundID string, response Response, counterAmountCents *int64) (Round, error) {
	for i, rd := range f.rounds {
		if rd.ID == roundID {
			f.rounds[i].Response = response
			f.rounds[i].CounterAmountCents = counterAmountCents
			return f.rounds[i], nil
		}
	}
	return Round{}, ErrNotFound
}

func (f *fakeStore) ListRounds(ctx context.Context, offerID string) ([]Round, error) {
	out := make([]Round, 0, len(f.rounds))
	for _, rd := range f.rounds {
		if rd.OfferID == offerID {
			out = append(out, rd)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertAuctionEvent(ctx context.Context, ev AuctionEvent) (AuctionEvent, error) {
	f.auctionWrites++
	f.auctions[ev.OfferID] = ev
	return ev, nil
}
