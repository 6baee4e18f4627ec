package diligence

import (
	"errors"
	"fmt"
)

// ErrUnknownItemStatus signals an item status outside the closed set.
var ErrUnknownItemStatus = errors.New("diligence: unknown item status")

// Summary is the derived completion state of a checklist.
type Summary struct {
	CompletionPct int
	Status        OverallStatus
}

// Recompute derives the checklist's completion percentage and overall status
// from its items. Percentage is completed over eligible (everything except
// not_applicable), rounded down, 0 when nothing is eligible. Status policy in
// priority order: a blocking issue_found forces blocked regardless of
// percentage; all eligible completed; anything started; else not_started.
func Recompute(items []Item) (Summary, error) {
	var eligible, completed, started int
	blocked := false

	for _, item := range items {
		if !validItemStatus(item.Status) {
			return Summary{}, fmt.Errorf("%w: %q", ErrUnknownItemStatus, item.Status)
		}
		if item.Status == ItemIssueFound && item.Blocking {
			blocked = true
		}
		if item.Status == ItemNotApplicable {
			continue
		}
		eligible++
		if item.Status == ItemCompleted {
			completed++
		}
		if item.Status != ItemNotStarted {
			started++
		}
	}

	pct := 0
	if eligible > 0 {
		pct = completed * 100 / eligible
	}

	switch {
	case blocked:
		return Summary{CompletionPct: pct, Status: StatusBlocked}, nil
	case eligible > 0 && completed == eligible:
		return Summary{CompletionPct: pct, Status: StatusCompleted}, nil
	case started > 0:
		return Summary{CompletionPct: pct, Status: StatusInProgress}, nil
	default:
		return Summary{CompletionPct: pct, Status: StatusNotStarted}, nil
	}
}
