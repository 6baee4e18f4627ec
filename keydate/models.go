package keydate

import "time"

// Status is the urgency of a key date. Completed is a terminal, explicitly
// recorded fact; the other states are derived from the target timestamp
// whenever read.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusDueSoon   Status = "due_soon"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// KeyDate is a deadline attached to a transaction.
type KeyDate struct {
	ID               string
	TransactionID    string
	Label            string
	TargetAt         time.Time
	Critical         bool
	ReminderLeadDays []int
	Completed        bool
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
