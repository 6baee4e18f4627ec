package keydate

import "time"

// DefaultDueSoonWindow is the lookahead within which a date counts as
// due_soon. Tunable per deployment via Policy.
const DefaultDueSoonWindow = 72 * time.Hour

// Policy configures urgency derivation.
type Policy struct {
	DueSoonWindow time.Duration
}

// DefaultPolicy returns the standard three-day lookahead.
func DefaultPolicy() Policy {
	return Policy{DueSoonWindow: DefaultDueSoonWindow}
}

// Status derives a key date's urgency from the clock the caller supplies.
// Completion wins unconditionally: a completed date is never overdue.
func (p Policy) Status(now, target time.Time, completed bool) Status {
	if completed {
		return StatusCompleted
	}
	if target.Before(now) {
		return StatusOverdue
	}
	window := p.DueSoonWindow
	if window <= 0 {
		window = DefaultDueSoonWindow
	}
	if !target.After(now.Add(window)) {
		return StatusDueSoon
	}
	return StatusUpcoming
}

// StatusOf applies the policy to a key date record.
func (p Policy) StatusOf(now time.Time, kd KeyDate) Status {
	return p.Status(now, kd.TargetAt, kd.Completed)
}
