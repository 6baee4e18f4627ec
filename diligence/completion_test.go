package diligence

import (
	"errors"
	"testing"
)

func item(status ItemStatus, blocking bool) Item {
	return Item{Category: CategoryLegal, Status: status, AssigneeRole: RoleSolicitor, Blocking: blocking}
}

func TestRecomputeEmptyChecklist(t *testing.T) {
	got, err := Recompute(nil)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got.CompletionPct != 0 || got.Status != StatusNotStarted {
		t.Fatalf("got %+v, want 0%% not_started", got)
	}
}

func TestRecomputeAllNotApplicable(t *testing.T) {
	items := []Item{
		item(ItemNotApplicable, false),
		item(ItemNotApplicable, true),
	}
	got, err := Recompute(items)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got.CompletionPct != 0 {
		t.Errorf("completion = %d, want 0 when denominator is 0", got.CompletionPct)
	}
	if got.Status != StatusNotStarted {
		t.Errorf("status = %s, want not_started", got.Status)
	}
}

func TestRecomputeBlockingIssueOverridesCompletion(t *testing.T) {
	items := []Item{
		item(ItemCompleted, false),
		item(ItemCompleted, false),
		item(ItemCompleted, false),
		item(ItemIssueFound, true),
	}
	got, err := Recompute(items)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got.Status != StatusBlocked {
		t.Fatalf("status = %s, want blocked regardless of percentage", got.Status)
	}
	if got.CompletionPct != 75 {
		t.Errorf("completion = %d, want 75", got.CompletionPct)
	}
}

func TestRecomputeNonBlockingIssueIsInProgress(t *testing.T) {
	items := []Item{
		item(ItemIssueFound, false),
		item(ItemNotStarted, false),
	}
	got, err := Recompute(items)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Fatalf("status = %s, want in_progress", got.Status)
	}
}

func TestRecomputeAllEligibleCompleted(t *testing.T) {
	items := []Item{
		item(ItemCompleted, false),
		item(ItemCompleted, false),
		item(ItemNotApplicable, false),
	}
	got, err := Recompute(items)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got.CompletionPct != 100 || got.Status != StatusCompleted {
		t.Fatalf("got %+v, want 100%% completed", got)
	}
}

func TestRecomputePercentageRoundsDown(t *testing.T) {
	items := []Item{
		item(ItemCompleted, false),
		item(ItemNotStarted, false),
		item(ItemNotStarted, false),
	}
	got, err := Recompute(items)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got.CompletionPct != 33 {
		t.Fatalf("completion = %d, want 33 (floor of 33.3)", got.CompletionPct)
	}
	if got.Status != StatusInProgress {
		t.Errorf("status = %s, want in_progress", got.Status)
	}
}

func TestRecomputeUntouchedChecklistIsNotStarted(t *testing.T) {
	items := []Item{
		item(ItemNotStarted, false),
		item(ItemNotStarted, true),
		item(ItemNotApplicable, false),
	}
	got, err := Recompute(items)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got.Status != StatusNotStarted || got.CompletionPct != 0 {
		t.Fatalf("got %+v, want 0%% not_started", got)
	}
}

func TestRecomputeBlockingIssueOnNotApplicableStillBlocks(t *testing.T) {
	// A blocking issue_found always blocks; only not_applicable is excluded
	// from the denominator, and an item with an issue is by definition not NA.
	items := []Item{
		item(ItemIssueFound, true),
		item(ItemNotApplicable, false),
	}
	got, err := Recompute(items)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got.Status != StatusBlocked {
		t.Fatalf("status = %s, want blocked", got.Status)
	}
}

func TestRecomputeRejectsUnknownStatus(t *testing.T) {
	items := []Item{item("paused", false)}
	if _, err := Recompute(items); !errors.Is(err, ErrUnknownItemStatus) {
		t.Fatalf("expected ErrUnknownItemStatus, got %v", err)
	}
}
