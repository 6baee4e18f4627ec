package diligence

import "time"

// Category classifies a due-diligence item.
type Category string

const (
	CategoryLegal         Category = "legal"
	CategoryPhysical      Category = "physical"
	CategoryFinancial     Category = "financial"
	CategoryEnvironmental Category = "environmental"
	CategoryCouncil       Category = "council"
	CategoryStrata        Category = "strata"
)

// ItemStatus represents the state of one checklist item.
type ItemStatus string

const (
	ItemNotStarted    ItemStatus = "not_started"
	ItemInProgress    ItemStatus = "in_progress"
	ItemCompleted     ItemStatus = "completed"
	ItemIssueFound    ItemStatus = "issue_found"
	ItemNotApplicable ItemStatus = "not_applicable"
)

// AssigneeRole designates which party works an item.
type AssigneeRole string

const (
	RoleAgent     AssigneeRole = "agent"
	RoleSolicitor AssigneeRole = "solicitor"
	RoleBroker    AssigneeRole = "broker"
	RoleInspector AssigneeRole = "inspector"
	RoleClient    AssigneeRole = "client"
)

// OverallStatus is the derived state of a whole checklist.
type OverallStatus string

const (
	StatusNotStarted OverallStatus = "not_started"
	StatusInProgress OverallStatus = "in_progress"
	StatusCompleted  OverallStatus = "completed"
	StatusBlocked    OverallStatus = "blocked"
)

// Item is one due-diligence task. not_applicable items are excluded from the
// completion denominator.
type Item struct {
	ID           string
	ChecklistID  string
	Category     Category
	Status       ItemStatus
	AssigneeRole AssigneeRole
	Blocking     bool
	Critical     bool
	DueAt        *time.Time
	CompletedAt  *time.Time
	DocumentRefs []string
	Position     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Checklist holds one transaction's due-diligence state. CompletionPct and
// Status are pure functions of the items and are never mutated independently.
type Checklist struct {
	ID            string
	TransactionID string
	Jurisdiction  string
	PropertyType  string
	CompletionPct int
	Status        OverallStatus
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func validItemStatus(s ItemStatus) bool {
	switch s {
	case ItemNotStarted, ItemInProgress, ItemCompleted, ItemIssueFound, ItemNotApplicable:
		return true
	default:
		return false
	}
}
