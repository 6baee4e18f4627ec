package offer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidStatusTransition signals a status move outside the offer
	// state machine.
	ErrInvalidStatusTransition = errors.New("offer: invalid status transition")
	// ErrUnknownStatus signals a status outside the closed set.
	ErrUnknownStatus = errors.New("offer: unknown status")
	// ErrUnknownResponse signals a round response outside the closed set.
	ErrUnknownResponse = errors.New("offer: unknown round response")
	// ErrNotAuction signals auction result data on a non-auction offer.
	ErrNotAuction = errors.New("offer: sale method is not auction")
	// ErrNotFound signals the offer or round does not exist.
	ErrNotFound = errors.New("offer: not found")
)

// Store is the persistence collaborator for offers, rounds and auction
// events.
type Store interface {
	GetByID(ctx context.Context, id string) (Offer, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Offer, error)
	AppendRound(ctx context.Context, round Round) (Round, error)
	SetRoundResponse(ctx context.Context, roundID string, response Response, counterAmountCents *int64) (Round, error)
	ListRounds(ctx context.Context, offerID string) ([]Round, error)
	UpsertAuctionEvent(ctx context.Context, ev AuctionEvent) (AuctionEvent, error)
}

// Service orchestrates offer negotiation state.
type Service struct {
	store Store
	now   func() time.Time
	idGen func() string
}

// NewService builds an offer service over the given store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		idGen: func() string { return uuid.NewString() },
	}
}

// AdvanceStatus moves the offer's coarse status after checking the machine.
// Round responses never advance the offer automatically; this is the explicit
// caller action that does.
func (s *Service) AdvanceStatus(ctx context.Context, offerID string, next Status, actorID string) (Offer, error) {
	if !validStatus(next) {
		return Offer{}, fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}
	o, err := s.store.GetByID(ctx, offerID)
	if err != nil {
		return Offer{}, err
	}
	if !statusTransitions[o.Status][next] {
		return Offer{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, next)
	}
	return s.store.UpdateStatus(ctx, offerID, next)
}

// RoundParams enumerates the fields for a new negotiation round.
type RoundParams struct {
	OfferID     string
	AmountCents int64
	Conditions  []string
	Notes       *string
}

// AddRound appends a new round in response pending. Rounds are never edited
// or removed once created.
func (s *Service) AddRound(ctx context.Context, params RoundParams) (Round, error) {
	if params.OfferID == "" {
		return Round{}, fmt.Errorf("offer: offer id required")
	}
	if params.AmountCents <= 0 {
		return Round{}, fmt.Errorf("offer: round amount must be positive")
	}
	if _, err := s.store.GetByID(ctx, params.OfferID); err != nil {
		return Round{}, err
	}
	return s.store.AppendRound(ctx, Round{
		ID:          s.idGen(),
		OfferID:     params.OfferID,
		AmountCents: params.AmountCents,
		Conditions:  params.Conditions,
		Response:    ResponsePending,
		Notes:       params.Notes,
		CreatedAt:   s.now(),
	})
}

// SetRoundResponse records the vendor's response on a single round. Earlier
// rounds keep their stored responses; the parent offer is untouched.
func (s *Service) SetRoundResponse(ctx context.Context, roundID string, response Response, counterAmountCents *int64) (Round, error) {
	if !validResponse(response) {
		return Round{}, fmt.Errorf("%w: %q", ErrUnknownResponse, response)
	}
	if response != ResponseCountered && counterAmountCents != nil {
		return Round{}, fmt.Errorf("offer: counter amount only valid on a countered response")
	}
	return s.store.SetRoundResponse(ctx, roundID, response, counterAmountCents)
}

// Rounds returns the offer's rounds in creation order.
func (s *Service) Rounds(ctx context.Context, offerID string) ([]Round, error) {
	return s.store.ListRounds(ctx, offerID)
}

// AuctionParams enumerates the auction outcome fields.
type AuctionParams struct {
	OfferID            string
	AuctionAt          time.Time
	RegistrationNumber *string
	BiddingStrategy    *string
	Result             *AuctionResult
	FinalPriceCents    *int64
	BidderCount        *int
}

// RecordAuction creates or updates the offer's single auction event. Auction
// result fields only have meaning when the sale method is auction; anything
// else is rejected with ErrNotAuction before any write.
func (s *Service) RecordAuction(ctx context.Context, params AuctionParams) (AuctionEvent, error) {
	o, err := s.store.GetByID(ctx, params.OfferID)
	if err != nil {
		return AuctionEvent{}, err
	}
	if o.SaleMethod != MethodAuction {
		return AuctionEvent{}, fmt.Errorf("%w: %s", ErrNotAuction, o.SaleMethod)
	}
	if params.AuctionAt.IsZero() {
		return AuctionEvent{}, fmt.Errorf("offer: auction date required")
	}
	if params.Result != nil && !validResult(*params.Result) {
		return AuctionEvent{}, fmt.Errorf("offer: unknown auction result %q", *params.Result)
	}
	return s.store.UpsertAuctionEvent(ctx, AuctionEvent{
		OfferID:            params.OfferID,
		AuctionAt:          params.AuctionAt,
		RegistrationNumber: params.RegistrationNumber,
		BiddingStrategy:    params.BiddingStrategy,
		Result:             params.Result,
		FinalPriceCents:    params.FinalPriceCents,
		BidderCount:        params.BidderCount,
	})
}
