package diligence

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Checklists abstracts repository operations for the service.
type Checklists interface {
	Get(ctx context.Context, checklistID string) (Checklist, error)
	SetItemStatus(ctx context.Context, params SetItemStatusParams) (Summary, error)
	AddItem(ctx context.Context, item Item) (Item, error)
}

// Service exposes business-level checklist operations.
type Service struct {
	repo  Checklists
	idGen func() string
}

// NewService builds a Service using the provided repository.
func NewService(repo Checklists) *Service {
	return &Service{
		repo:  repo,
		idGen: func() string { return uuid.NewString() },
	}
}

// Get returns the checklist with its items and derived fields.
func (s *Service) Get(ctx context.Context, checklistID string) (Checklist, error) {
	return s.repo.Get(ctx, checklistID)
}

// SetItemStatus applies one item status change and returns the refreshed
// completion summary.
func (s *Service) SetItemStatus(ctx context.Context, itemID string, status ItemStatus, completedAt *time.Time) (Summary, error) {
	return s.repo.SetItemStatus(ctx, SetItemStatusParams{
		ItemID:      itemID,
		Status:      status,
		CompletedAt: completedAt,
	})
}

// AddItemParams enumerates the fields for a new checklist item.
type AddItemParams struct {
	ChecklistID  string
	Category     Category
	AssigneeRole AssigneeRole
	Blocking     bool
	Critical     bool
	DueAt        *time.Time
	DocumentRefs []string
}

// AddItem appends a new item in status not_started.
func (s *Service) AddItem(ctx context.Context, params AddItemParams) (Item, error) {
	return s.repo.AddItem(ctx, Item{
		ID:           s.idGen(),
		ChecklistID:  params.ChecklistID,
		Category:     params.Category,
		Status:       ItemNotStarted,
		AssigneeRole: params.AssigneeRole,
		Blocking:     params.Blocking,
		Critical:     params.Critical,
		DueAt:        params.DueAt,
		DocumentRefs: params.DocumentRefs,
	})
}
